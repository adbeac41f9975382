package simcard

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"

	"github.com/gregLibert/piv-conformance/pkg/dataobject"
	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

// PIVApplicationID is the AID the PIV profile registers.
var PIVApplicationID = tlv.Hex("A0 00 00 03 08 00 00 10 00 01 00")

// PIVApplicationProperties is the Application Property Template of the profile.
var PIVApplicationProperties = tlv.Hex(
	"61 19",
	"4F 06 000010000100",
	"79 07 4F 05 A000000308",
	"AC 06 80 01 11 80 01 14",
)

// Envelope wraps data object fields in the '53' envelope.
func Envelope(fields ...tlv.Node) []byte {
	return tlv.Encode(tlv.NewOpaque(tlv.Tag{0x53}, tlv.Encode(fields...)))
}

func field(tag, value string) tlv.Node {
	return tlv.NewOpaque(tlv.MustParseTag(tag), tlv.Hex(value))
}

// NewPIVCard returns a card holding the PIV application and a representative set
// of data objects. PIN-protected objects answer '6982' until VerifyPIN.
func NewPIVCard(opts ...Option) (*Card, error) {
	cert, err := selfSignedCertificate("PIV Authentication")
	if err != nil {
		return nil, fmt.Errorf("simulated certificate: %w", err)
	}

	c := New(opts...)
	c.AddApplication(PIVApplicationID, PIVApplicationProperties)

	objects := map[string][]byte{
		dataobject.OIDCardCapabilityContainer: Envelope(
			field("F0", "A0 00 00 01 16"),
			field("F1", "21"),
			field("F2", "21"),
			field("F3", ""),
			field("F4", ""),
			field("F5", "10"),
			field("F6", ""),
			field("F7", ""),
			field("FA", ""),
			field("FB", ""),
			field("FC", ""),
			field("FD", ""),
			field("FE", ""),
		),
		dataobject.OIDCHUID: Envelope(
			field("30", "D4 32 10 D8 21 0C 2C 19 A0 84 61 6D 83 68 5A 10 82 10 8C E7 39 84 10 C3 E3"),
			field("34", "00 11 22 33 44 55 66 77 88 99 AA BB CC DD EE FF"),
			field("35", "3230333031323331"),
			field("3E", ""),
			field("FE", ""),
		),
		dataobject.OIDPIVAuthenticationCertificate: Envelope(
			tlv.NewOpaque(tlv.Tag{0x70}, cert),
			field("71", "00"),
			field("FE", ""),
		),
		dataobject.OIDDiscoveryObject: tlv.Encode(tlv.NewOpaque(tlv.Tag{0x7E}, tlv.Encode(
			field("4F", "A0 00 00 03 08 00 00 10 00 01 00"),
			field("5F2F", "40 00"),
		))),
		dataobject.OIDKeyHistoryObject: Envelope(
			field("C1", "00"),
			field("C2", "00"),
			field("FE", ""),
		),
		dataobject.OIDPrintedInformation: Envelope(
			field("01", "4A6F686E20446F65"),
			field("04", "323033304445433331"),
			field("FE", ""),
		),
		dataobject.OIDCardholderFacialImage: Envelope(
			field("BC", "00 01 02 03"),
			field("FE", ""),
		),
	}

	for oid, contents := range objects {
		entry, ok := dataobject.Lookup(oid)
		if !ok {
			return nil, fmt.Errorf("%s: %w", oid, dataobject.ErrUnknownObjectIdentifier)
		}
		c.PutObject(entry.Tag, contents)
		if entry.Access == dataobject.AccessPIN {
			c.Protect(entry.Tag)
		}
	}
	return c, nil
}

func selfSignedCertificate(cn string) ([]byte, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.AddDate(1, 0, 0),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	return x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
}
