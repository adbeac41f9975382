package dataobject

import (
	"bytes"
	"compress/gzip"
	"crypto/x509"
	"fmt"
	"io"

	"github.com/gregLibert/piv-conformance/pkg/bits"
)

// X.509 CERTIFICATE CONTAINERS (SP 800-73-4 Part 1, Tables 10-15, 38-39):
//
//   - '70' Certificate (DER, optionally gzip compressed).
//   - '71' CertInfo: bit 1 = gzip compression, bits 3-2 = not X.509.
//   - '72' MSCUID (deprecated).
//   - '7F21' Intermediate CVC (Secure Messaging Certificate Signer only).
//   - 'FE' Error Detection Code.

type CertificateFields struct {
	RawCertificate     []byte `tlv:"70"`
	CertInfo           []byte `tlv:"71"`
	MSCUID             []byte `tlv:"72"`
	IntermediateCVC    []byte `tlv:"7F21"`
	ErrorDetectionCode bool   `tlv:"FE,presence"`
}

// CertificateContainer holds one of the X.509 certificate objects, including
// the retired key management slots and the secure messaging signer.
type CertificateContainer struct {
	Object
	CertificateFields
}

func NewCertificateContainer(oid string) *CertificateContainer {
	c := &CertificateContainer{}
	c.SetOID(oid)
	return c
}

func (c *CertificateContainer) Decode() error {
	c.CertificateFields = CertificateFields{}
	return c.decode(&c.CertificateFields)
}

func (c *CertificateContainer) Describe() string {
	return describe(&c.Object, "Cert", c.CertificateFields)
}

// IsCompressed reports the gzip flag of CertInfo.
func (c *CertificateContainer) IsCompressed() bool {
	return len(c.CertInfo) > 0 && bits.IsSet(c.CertInfo[0], 1)
}

// Certificate parses the X.509 certificate, inflating it first when CertInfo
// announces gzip compression.
func (c *CertificateContainer) Certificate() (*x509.Certificate, error) {
	if len(c.RawCertificate) == 0 {
		return nil, fmt.Errorf("%s: no certificate", Name(c.OID()))
	}

	der := c.RawCertificate
	if c.IsCompressed() {
		zr, err := gzip.NewReader(bytes.NewReader(der))
		if err != nil {
			return nil, fmt.Errorf("%s: gzip: %w", Name(c.OID()), err)
		}
		defer zr.Close()

		if der, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("%s: gzip: %w", Name(c.OID()), err)
		}
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", Name(c.OID()), err)
	}
	return cert, nil
}
