package dataobject

import (
	"bytes"
	"compress/gzip"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

func TestCHUID_Decode(t *testing.T) {
	chuid := NewCHUID()
	chuid.SetBytes(envelope(
		field("30", "D4 32 10 D8 21 0C 2C 19 A0 84 61 6D 83 68 5A 10 82 10 8C E7 39 84 10 C3 E3"),
		field("34", "00 11 22 33 44 55 66 77 88 99 AA BB CC DD EE FF"),
		field("35", "3230333031323331"), // "20301231"
		field("3E", ""),
		field("FE", ""),
	))

	require.NoError(t, chuid.Decode())
	assert.Len(t, chuid.FASCN, 25)
	assert.Len(t, chuid.GUID, 16)
	assert.True(t, chuid.ErrorDetectionCode)
	assert.NotNil(t, chuid.IssuerAsymmetricSignature)

	exp, err := chuid.Expiration()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, time.December, 31, 0, 0, 0, 0, time.UTC), exp)

	expired, err := chuid.IsExpired(time.Date(2030, time.December, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, expired)

	expired, err = chuid.IsExpired(time.Date(2031, time.January, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestCHUID_NoExpiration(t *testing.T) {
	chuid := NewCHUID()
	chuid.SetBytes(envelope(field("30", "00")))
	require.NoError(t, chuid.Decode())

	_, err := chuid.Expiration()
	assert.Error(t, err)
}

func selfSignedDER(t *testing.T) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(42),
		Subject:      pkix.Name{CommonName: "PIV Authentication"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return der
}

func TestCertificateContainer_Certificate(t *testing.T) {
	der := selfSignedDER(t)

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, err := zw.Write(der)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	tests := []struct {
		name     string
		cert     []byte
		certInfo byte
	}{
		{"Uncompressed", der, 0x00},
		{"Gzip", gz.Bytes(), 0x01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCertificateContainer(OIDPIVAuthenticationCertificate)
			c.SetBytes(envelope(
				tlv.NewOpaque(tlv.Tag{0x70}, tt.cert),
				tlv.NewOpaque(tlv.Tag{0x71}, []byte{tt.certInfo}),
				field("FE", ""),
			))

			require.NoError(t, c.Decode())
			assert.Equal(t, tt.certInfo == 0x01, c.IsCompressed())

			cert, err := c.Certificate()
			require.NoError(t, err)
			assert.Equal(t, "PIV Authentication", cert.Subject.CommonName)
		})
	}
}

func TestCertificateContainer_Errors(t *testing.T) {
	c := NewCertificateContainer(OIDCardAuthenticationCertificate)
	c.SetBytes(envelope(field("71", "00")))
	require.NoError(t, c.Decode())

	_, err := c.Certificate()
	assert.ErrorContains(t, err, "no certificate")

	c.SetBytes(envelope(field("70", "30 03 02 01 01"), field("71", "01")))
	require.NoError(t, c.Decode())
	_, err = c.Certificate()
	assert.ErrorContains(t, err, "gzip")
}

func TestPrintedInformation_Decode(t *testing.T) {
	p := NewPrintedInformation()
	p.SetBytes(envelope(
		tlv.NewOpaque(tlv.Tag{0x01}, []byte("DOE, JANE")),
		tlv.NewOpaque(tlv.Tag{0x02}, []byte("Employee")),
		tlv.NewOpaque(tlv.Tag{0x04}, []byte("2030DEC31")),
		field("FE", ""),
	))

	require.NoError(t, p.Decode())
	assert.Equal(t, "DOE, JANE", string(p.Name))
	assert.Equal(t, "2030DEC31", string(p.ExpirationDate))
	assert.Contains(t, p.Describe(), `Printed.Name (01): 444F452C204A414E45 ("DOE, JANE")`)
}

func TestDiscovery_Decode(t *testing.T) {
	d := NewDiscovery()
	d.SetBytes(tlv.Hex(
		"7E 12",
		"4F 0B A0 00 00 03 08 00 00 10 00 01 00",
		"5F 2F 02 60 20",
	))

	require.NoError(t, d.Decode())
	assert.Equal(t, tlv.Hex("A0 00 00 03 08 00 00 10 00 01 00"), d.ApplicationAID)
	assert.True(t, d.ApplicationPINSatisfiesACR())
	assert.True(t, d.GlobalPINSatisfiesACR())
	assert.False(t, d.OCCSatisfiesACR())
	assert.False(t, d.PairingCodeImplemented())
	assert.True(t, d.GlobalPINPrimary())
}

func TestKeyHistory_Decode(t *testing.T) {
	k := NewKeyHistory()
	k.SetBytes(envelope(
		field("C1", "02"),
		field("C2", "01"),
		tlv.NewOpaque(tlv.Tag{0xF3}, []byte("http://pki.example.gov/kh")),
		field("FE", ""),
	))

	require.NoError(t, k.Decode())
	assert.Equal(t, 2, k.OnCardCerts())
	assert.Equal(t, 1, k.OffCardCerts())
	assert.Equal(t, "http://pki.example.gov/kh", string(k.OffCardCertURL))
}

func TestSecurityObject_ContainerIDs(t *testing.T) {
	s := NewSecurityObject()
	s.SetBytes(envelope(
		field("BA", "01 30 00 02 60 10"),
		field("BB", "30 00"),
		field("FE", ""),
	))

	require.NoError(t, s.Decode())
	assert.Equal(t, map[byte][2]byte{
		0x01: {0x30, 0x00},
		0x02: {0x60, 0x10},
	}, s.ContainerIDs())
}

func TestBiometric_Decode(t *testing.T) {
	b := NewBiometric(OIDCardholderFacialImage)
	b.SetBytes(envelope(field("BC", "01 02 03"), field("FE", "")))

	require.NoError(t, b.Decode())
	assert.Equal(t, []byte{1, 2, 3}, b.BiometricData)
	assert.True(t, b.ErrorDetectionCode)
}

func TestGeneric_Decode(t *testing.T) {
	g := NewGeneric(OIDBiometricGroupTemplate)
	g.SetBytes(tlv.Hex(
		"7F 61 09",
		"02 01 01",
		"7F 60 03 80 01 00",
	))

	require.NoError(t, g.Decode())
	require.Len(t, g.Elements, 2)
	assert.Equal(t, "02", g.Elements[0].Tag().String())
	assert.Equal(t, "7F60", g.Elements[1].Tag().String())
	assert.Contains(t, g.Describe(), "Object.Unknown Tag 7F60: 800100")
}

func TestDescribe(t *testing.T) {
	ccc := NewCapabilityContainer()
	assert.Equal(t, strings.Join([]string{
		"=== CARD CAPABILITY CONTAINER ===",
		"[i] OID:   2.16.840.1.101.3.7.1.219.0",
		"[i] State: empty",
	}, "\n"), ccc.Describe())

	ccc.SetBytes(envelope(field("F0", "A0 00 00 01 16"), field("F3", "01"), field("F7", "")))
	require.NoError(t, ccc.Decode())

	report := ccc.Describe()
	assert.Contains(t, report, "[i] State: parsed")
	assert.Contains(t, report, "    - CCC.CardIdentifier (F0): A000000116")
	assert.Contains(t, report, "    - CCC.ApplicationsCardURL (F3)[1]: 01")
	assert.Contains(t, report, "    - CCC.CardAPDUs (F7): present")
	assert.NotContains(t, report, "RedirectionTag")
}
