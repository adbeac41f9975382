package iso7816

import (
	"fmt"

	"github.com/gregLibert/piv-conformance/pkg/bits"
)

// CLASS BYTE (ISO/IEC 7816-4, 5.4.1):
// PIV commands are sent with CLA '00'. Card edge commands whose data does not fit
// one APDU (PUT DATA, GENERAL AUTHENTICATE) set the chaining bit, giving '10'.
//
//	b8      1 = proprietary, the rest is not interpreted
//	b7      0 = first interindustry (channels 0-3), 1 = further (channels 4-19)
//	b5      command chaining
//	b4-b3   secure messaging, first interindustry only
//	b6      secure messaging, further interindustry only
//	b2-b1   channel (first) / b4-b1 channel minus 4 (further)

// SecureMessaging is the SM indication of the class byte.
type SecureMessaging int

const (
	SMNone         SecureMessaging = 0
	SMProprietary  SecureMessaging = 1
	SMHeaderNoProc SecureMessaging = 2 // ISO SM, header not processed
	SMHeaderAuth   SecureMessaging = 3 // ISO SM, header authenticated
)

// BasicClass is CLA '00': first interindustry, no SM, no chaining, channel 0.
var BasicClass = Class{Raw: 0x00}

// Class is a decoded CLA byte.
type Class struct {
	Raw             byte
	IsProprietary   bool
	IsChained       bool
	SecureMessaging SecureMessaging
	Channel         uint8 // 0-19
}

// NewClass decodes a CLA byte. 'FF' is reserved for PPS and rejected.
func NewClass(cla byte) (Class, error) {
	if cla == 0xFF {
		return Class{}, fmt.Errorf("invalid CLA value: 0xFF is reserved")
	}

	c := Class{Raw: cla}
	switch {
	case bits.IsSet(cla, 8):
		c.IsProprietary = true
	case bits.IsSet(cla, 7):
		c.IsChained = bits.IsSet(cla, 5)
		if bits.IsSet(cla, 6) {
			c.SecureMessaging = SMHeaderNoProc
		}
		c.Channel = bits.GetRange(cla, 4, 1) + 4
	default:
		c.IsChained = bits.IsSet(cla, 5)
		c.SecureMessaging = SecureMessaging(bits.GetRange(cla, 4, 3))
		c.Channel = bits.GetRange(cla, 2, 1)
	}
	return c, nil
}

// Encode rebuilds the CLA byte. Proprietary classes keep their raw value.
func (c *Class) Encode() (byte, error) {
	if c.IsProprietary {
		return c.Raw, nil
	}
	if c.Channel > 19 {
		return 0, fmt.Errorf("channel %d out of range (max 19)", c.Channel)
	}

	var res byte
	if c.IsChained {
		res = bits.Set(res, 5)
	}

	if c.Channel <= 3 {
		return res | byte(c.SecureMessaging)<<2 | c.Channel, nil
	}

	if c.SecureMessaging == SMProprietary || c.SecureMessaging == SMHeaderAuth {
		return 0, fmt.Errorf("SM indicator %d not supported on channel %d", c.SecureMessaging, c.Channel)
	}
	res = bits.Set(res, 7)
	if c.SecureMessaging != SMNone {
		res = bits.Set(res, 6)
	}
	return res | (c.Channel - 4), nil
}

// WithChaining returns a copy of the class with the chaining bit set or cleared.
func (c Class) WithChaining(chained bool) Class {
	if c.IsProprietary {
		return c
	}
	c.IsChained = chained
	if raw, err := c.Encode(); err == nil {
		c.Raw = raw
	}
	return c
}

func (c Class) String() string {
	if c.IsProprietary {
		return fmt.Sprintf("CLA %02X (proprietary)", c.Raw)
	}
	return fmt.Sprintf("CLA %02X (channel %d, SM %d, chained %t)", c.Raw, c.Channel, c.SecureMessaging, c.IsChained)
}
