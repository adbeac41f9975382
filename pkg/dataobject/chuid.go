package dataobject

import (
	"fmt"
	"time"
)

// CARD HOLDER UNIQUE IDENTIFIER (SP 800-73-4 Part 1, Table 9):
//
//   - 'EE' Buffer Length (deprecated), '30' FASC-N, '32' Organizational Identifier,
//     '33' DUNS, '34' GUID (16 bytes), '35' Expiration Date (YYYYMMDD),
//     '36' Cardholder UUID, '3D' Authentication Key Map (deprecated),
//     '3E' Issuer Asymmetric Signature (CMS), 'FE' Error Detection Code.

// ExpirationDateLayout is the ASCII layout of tag '35'.
const ExpirationDateLayout = "20060102"

type CHUIDFields struct {
	BufferLength              []byte `tlv:"EE"`
	FASCN                     []byte `tlv:"30"`
	OrganizationalIdentifier  []byte `tlv:"32"`
	DUNS                      []byte `tlv:"33"`
	GUID                      []byte `tlv:"34"`
	ExpirationDate            []byte `tlv:"35" fmt:"ascii"`
	CardholderUUID            []byte `tlv:"36"`
	AuthenticationKeyMap      []byte `tlv:"3D"`
	IssuerAsymmetricSignature []byte `tlv:"3E"`
	ErrorDetectionCode        bool   `tlv:"FE,presence"`
}

// CHUID is the Card Holder Unique Identifier.
type CHUID struct {
	Object
	CHUIDFields
}

func NewCHUID() *CHUID {
	c := &CHUID{}
	c.SetOID(OIDCHUID)
	return c
}

func (c *CHUID) Decode() error {
	c.CHUIDFields = CHUIDFields{}
	return c.decode(&c.CHUIDFields)
}

func (c *CHUID) Describe() string {
	return describe(&c.Object, "CHUID", c.CHUIDFields)
}

// Expiration parses the expiration date.
func (c *CHUID) Expiration() (time.Time, error) {
	if c.ExpirationDate == nil {
		return time.Time{}, fmt.Errorf("CHUID has no expiration date")
	}
	return time.Parse(ExpirationDateLayout, string(c.ExpirationDate))
}

// IsExpired reports whether the card expired before now.
func (c *CHUID) IsExpired(now time.Time) (bool, error) {
	exp, err := c.Expiration()
	if err != nil {
		return false, err
	}
	// The card is valid through the whole expiration day.
	return now.After(exp.AddDate(0, 0, 1)), nil
}
