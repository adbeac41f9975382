package iso7816

import (
	"fmt"
)

// CLIENT & PROTOCOL LOGIC:
// The Client runs one logical exchange over the physical connection and handles
// the ISO 7816-3 transport behaviors that T=0 readers expose to the application:
//
// 1. "61 XX" (Response Available):
//    The card indicates that XX bytes are waiting ('00' means 256). The client
//    sends GET RESPONSE on the same channel until the card stops answering 61XX.
//    This is part of the exchange, not a retry.
//
// 2. "6C XX" (Wrong Length):
//    The card indicates that the expected length (Le) was incorrect and suggests XX.
//    When ResendOnWrongLength is set, the client re-sends the original command
//    with Le = XX. Otherwise the 6CXX response is returned as is.
//
// The Send() method returns a Trace, which is a log of all atomic transactions
// occurred to fulfill the logical request.

// MaxResponseChain bounds the number of GET RESPONSE commands issued for one exchange.
const MaxResponseChain = 256

// Transmitter abstracts the physical card connection.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Client manages the high-level communication with the card.
type Client struct {
	Card Transmitter

	// ResendOnWrongLength re-issues a command answered with 6CXX using Le = XX.
	ResendOnWrongLength bool
}

// NewClient creates a new Client instance. 6CXX answers are not re-sent.
func NewClient(card Transmitter) *Client {
	return &Client{Card: card}
}

// Send transmits a command and handles protocol logic (61xx, optionally 6Cxx).
// On a transport error the returned trace holds the transactions completed so far.
func (c *Client) Send(cmd *CommandAPDU) (Trace, error) {
	return c.send(cmd, 0, true)
}

func (c *Client) send(cmd *CommandAPDU, chained int, allowResend bool) (Trace, error) {
	rawCmd, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	rawResp, err := c.Card.Transmit(rawCmd)
	if err != nil {
		return nil, fmt.Errorf("transmission error: %w", err)
	}

	resp, err := ParseResponseAPDU(rawResp)
	if err != nil {
		return nil, err
	}

	trace := Trace{{Command: cmd, Response: resp}}

	sw2 := resp.Status.SW2()

	switch {
	case resp.Status.IsResponseAvailable():
		if chained >= MaxResponseChain {
			return trace, fmt.Errorf("response chain exceeds %d GET RESPONSE commands", MaxResponseChain)
		}

		ne := int(sw2)
		if ne == 0 {
			ne = MaxShortLe
		}

		subTrace, err := c.send(GetResponse(cmd.Class, ne), chained+1, false)
		trace = append(trace, subTrace...)
		return trace, err

	case resp.Status.IsWrongLength() && c.ResendOnWrongLength && allowResend:
		// Clone command to update Le without mutating the original pointer
		newCmd := *cmd
		newCmd.Ne = int(sw2)
		if newCmd.Ne == 0 {
			newCmd.Ne = MaxShortLe
		}

		subTrace, err := c.send(&newCmd, chained, false)
		trace = append(trace, subTrace...)
		return trace, err
	}

	return trace, nil
}
