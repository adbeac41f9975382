package iso7816

import (
	"fmt"
	"strings"
)

// TRANSACTION:
// A Transaction represents the atomic unit of communication defined in ISO 7816-3:
// one Command APDU (C-APDU) sent by the terminal, followed by one Response APDU (R-APDU)
// sent back by the card.
//
// TRACE:
// A Trace is a chronological sequence of Transactions. It captures the full history of a
// logical operation. A single logical intent (e.g., "Get Data") may result in multiple
// physical transactions due to protocol mechanisms:
// 1. "61 XX" (Process Completed): The card has XX extra bytes. The terminal sends GET RESPONSE.
// 2. "6C XX" (Wrong Length): The terminal may re-send the command with Le = XX.
//
// In these cases, the Trace contains the entire conversation, IsSuccess() evaluates
// the final outcome and Data() reassembles the response payload.

// Transaction represents a completed Command-Response pair.
type Transaction struct {
	Command  *CommandAPDU
	Response *ResponseAPDU
}

// IsSuccess checks if the transaction ended with a successful status.
// It returns false if the response is missing.
func (t *Transaction) IsSuccess() bool {
	if t.Response == nil {
		return false
	}
	return t.Response.Status.IsSuccess()
}

// Trace is a sequence of transactions (Command-Response pairs).
// It represents the full history of a logical exchange (including 61xx/6Cxx handling).
type Trace []Transaction

// Last returns the final transaction of the trace.
// Returns nil if the trace is empty.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess checks if the FINAL transaction in the trace was successful.
// This determines if the overall logical operation succeeded, regardless of
// intermediate warnings (like 61XX) in previous transactions.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}

// Status returns the status word of the final response, or 0 for an empty trace.
func (t Trace) Status() StatusWord {
	last := t.Last()
	if last == nil || last.Response == nil {
		return 0
	}
	return last.Response.Status
}

// Data concatenates the response data of the last command and of the GET RESPONSE
// commands that followed it. A 6CXX answer that was re-sent contributes nothing.
func (t Trace) Data() []byte {
	start := 0
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Command != nil && t[i].Command.Instruction.Raw != INS_GET_RESPONSE {
			start = i
			break
		}
	}

	var out []byte
	for _, tx := range t[start:] {
		if tx.Response != nil {
			out = append(out, tx.Response.Data...)
		}
	}
	return out
}

// Describe generates an ASCII report of the exchange: the initial request, the
// protocol auto-handling steps and the reassembled payload.
func (t Trace) Describe() string {
	var sb strings.Builder

	sb.WriteString("=== APDU EXCHANGE REPORT ===\n")
	if len(t) == 0 {
		sb.WriteString("(no transaction)\n")
		return sb.String()
	}

	for i, tx := range t {
		label := "Command"
		if i > 0 {
			label = "Protocol"
		}

		cmd := tx.Command
		if cmd == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("[%d] %s: %s\n", i+1, label, cmd.Instruction.Raw))
		sb.WriteString(fmt.Sprintf("    + Header:  %02X %02X %02X %02X\n", cmd.Class.Raw, byte(cmd.Instruction.Raw), cmd.P1, cmd.P2))
		if len(cmd.Data) > 0 {
			sb.WriteString(fmt.Sprintf("    + Data:    %X\n", cmd.Data))
		}
		if cmd.Ne > 0 {
			sb.WriteString(fmt.Sprintf("    + Le:      %d\n", cmd.Ne))
		}

		if tx.Response == nil {
			sb.WriteString("    + Result:  (no response)\n")
			continue
		}
		sw := tx.Response.Status
		mark := "[OK]"
		if !sw.IsSuccess() {
			mark = "[!!]"
		}
		sb.WriteString(fmt.Sprintf("    + Result:  [%02X %02X] %s %s\n", sw.SW1(), sw.SW2(), mark, sw.Verbose()))
		if len(tx.Response.Data) > 0 {
			sb.WriteString(fmt.Sprintf("    + Payload: %d bytes\n", len(tx.Response.Data)))
		}
	}

	data := t.Data()
	sb.WriteString(fmt.Sprintf("\n[=] Final Payload: %d bytes\n", len(data)))
	if len(data) > 0 {
		sb.WriteString(fmt.Sprintf("    %X\n", data))
	}

	return sb.String()
}
