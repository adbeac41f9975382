package iso7816

import (
	"bytes"
	"fmt"
)

// COMMAND APDU (C-APDU), ISO/IEC 7816-3 and 7816-4:
//   - Header: CLA, INS, P1, P2.
//   - Body:   [Lc + Data] [Le].
//
// ENCODING CASES:
// - Case 1: Header only.
// - Case 2: Header + Le.
// - Case 3: Header + Lc + Data.
// - Case 4: Header + Lc + Data + Le. (PIV SELECT and GET DATA)
//
// LENGTH MODES:
//   - Short: Lc/Le on 1 byte (Nc <= 255, Ne <= 256, Le '00' means 256).
//   - Extended: '00' + 2 bytes, used when Nc > 255 or Ne > 256.
//
// RESPONSE APDU (R-APDU): [Data] SW1 SW2.

// APDU Limits and Constants according to ISO 7816-3.
const (
	// MaxShortLc is the maximum data length (Nc) encodable in Short Length mode (1 byte).
	MaxShortLc = 255

	// MaxShortLe is the maximum expected response length (Ne) in Short Length mode.
	MaxShortLe = 256

	// MaxExtendedLc is the limit for Lc in Extended mode (16-bit unsigned).
	MaxExtendedLc = 65535

	// MaxExtendedLe is the maximum Ne encodable in Extended Length mode.
	MaxExtendedLe = 65536

	// HeaderSize is the size of CLA, INS, P1 and P2.
	HeaderSize = 4
)

// CommandAPDU represents a command sent to the card.
type CommandAPDU struct {
	Class       Class
	Instruction Instruction
	P1, P2      byte
	Data        []byte
	Ne          int // Expected response length (0 means none)
}

// NewCommandAPDU creates a basic command.
func NewCommandAPDU(cla Class, ins Instruction, p1, p2 byte, data []byte, ne int) *CommandAPDU {
	return &CommandAPDU{
		Class:       cla,
		Instruction: ins,
		P1:          p1,
		P2:          p2,
		Data:        data,
		Ne:          ne,
	}
}

// Bytes encodes the CommandAPDU into its byte representation (C-APDU).
// Short or Extended encoding is chosen from Nc and Ne.
func (c *CommandAPDU) Bytes() ([]byte, error) {
	nc := len(c.Data)
	ne := c.Ne

	if nc > MaxExtendedLc {
		return nil, fmt.Errorf("command data too long: %d bytes", nc)
	}
	if ne < 0 || ne > MaxExtendedLe {
		return nil, fmt.Errorf("expected length out of range: %d", ne)
	}

	class, err := c.Class.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode Class: %w", err)
	}

	buf := new(bytes.Buffer)
	buf.Write([]byte{class, byte(c.Instruction.Raw), c.P1, c.P2})

	isExtended := nc > MaxShortLc || ne > MaxShortLe

	if nc > 0 {
		if isExtended {
			buf.Write([]byte{0x00, byte(nc >> 8), byte(nc)})
		} else {
			buf.WriteByte(byte(nc))
		}
		buf.Write(c.Data)
	}

	if ne > 0 {
		switch {
		case !isExtended:
			// '00' stands for 256
			buf.WriteByte(byte(ne))
		default:
			// Case 2 Extended needs the leading '00' that Lc would have carried.
			if nc == 0 {
				buf.WriteByte(0x00)
			}
			// '0000' stands for 65536
			buf.Write([]byte{byte(ne >> 8), byte(ne)})
		}
	}

	return buf.Bytes(), nil
}

// ParseCommandAPDU decodes a C-APDU. It is the card side of Bytes and is used
// by simulated cards.
func ParseCommandAPDU(raw []byte) (*CommandAPDU, error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("command too short: length %d", len(raw))
	}

	cla, err := NewClass(raw[0])
	if err != nil {
		return nil, err
	}
	ins, err := NewInstruction(InsCode(raw[1]))
	if err != nil {
		return nil, err
	}

	cmd := &CommandAPDU{Class: cla, Instruction: ins, P1: raw[2], P2: raw[3]}
	body := raw[HeaderSize:]

	n := len(body)

	switch {
	case n == 0:
		// Case 1
	case n == 1:
		// Case 2 Short
		cmd.Ne = decodeLe(body, false)
	case body[0] != 0x00:
		// Case 3/4 Short
		nc := int(body[0])
		switch n {
		case 1 + nc:
			cmd.Data = body[1:]
		case 2 + nc:
			cmd.Data = body[1 : 1+nc]
			cmd.Ne = decodeLe(body[1+nc:], false)
		default:
			return nil, fmt.Errorf("inconsistent short Lc %d for body of %d bytes", nc, n)
		}
	case n == 3:
		// Case 2 Extended
		cmd.Ne = decodeLe(body[1:], true)
	case n > 3:
		// Case 3/4 Extended
		nc := int(body[1])<<8 | int(body[2])
		switch {
		case nc > 0 && n == 3+nc:
			cmd.Data = body[3:]
		case nc > 0 && n == 5+nc:
			cmd.Data = body[3 : 3+nc]
			cmd.Ne = decodeLe(body[3+nc:], true)
		default:
			return nil, fmt.Errorf("inconsistent extended Lc %d for body of %d bytes", nc, n)
		}
	default:
		return nil, fmt.Errorf("malformed command body of %d bytes", n)
	}

	return cmd, nil
}

func decodeLe(le []byte, extended bool) int {
	if !extended {
		if le[0] == 0x00 {
			return MaxShortLe
		}
		return int(le[0])
	}
	v := int(le[0])<<8 | int(le[1])
	if v == 0 {
		return MaxExtendedLe
	}
	return v
}

// String returns a readable representation of the command meta-data.
func (c *CommandAPDU) String() string {
	return fmt.Sprintf("%s | P1: %02X, P2: %02X | Lc: %d | Le: %d",
		c.Instruction.Verbose(), c.P1, c.P2, len(c.Data), c.Ne)
}

// ResponseAPDU represents the reply from the card (R-APDU).
type ResponseAPDU struct {
	Data   []byte
	Status StatusWord
}

// ParseResponseAPDU parses raw bytes received from the card into a ResponseAPDU.
// The input must contain at least 2 bytes (SW1, SW2).
func ParseResponseAPDU(raw []byte) (*ResponseAPDU, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("response too short: length %d", len(raw))
	}

	indexSW1 := len(raw) - 2
	data := make([]byte, indexSW1)
	copy(data, raw[:indexSW1])

	return &ResponseAPDU{
		Data:   data,
		Status: NewStatusWord(raw[indexSW1], raw[indexSW1+1]),
	}, nil
}

// Bytes encodes the response as the card sends it.
func (r *ResponseAPDU) Bytes() []byte {
	out := make([]byte, 0, len(r.Data)+2)
	out = append(out, r.Data...)
	return append(out, r.Status.SW1(), r.Status.SW2())
}

// String returns a readable representation of the response.
func (r *ResponseAPDU) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status.Verbose())
}
