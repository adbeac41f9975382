package simcard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/piv-conformance/pkg/dataobject"
	"github.com/gregLibert/piv-conformance/pkg/iso7816"
	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

func transmit(t *testing.T, c *Card, cmd string) *iso7816.ResponseAPDU {
	t.Helper()
	raw, err := c.Transmit(tlv.Hex(cmd))
	require.NoError(t, err)
	resp, err := iso7816.ParseResponseAPDU(raw)
	require.NoError(t, err)
	return resp
}

func TestCard_Select(t *testing.T) {
	c := New()
	c.AddApplication(PIVApplicationID, PIVApplicationProperties)

	tests := []struct {
		name string
		cmd  string
		sw   iso7816.StatusWord
	}{
		{"full AID", "00 A4 04 00 0B A0000003080000100001 00 00", iso7816.SW_NO_ERROR},
		{"truncated AID", "00 A4 04 00 05 A000000308 00", iso7816.SW_NO_ERROR},
		{"unknown AID", "00 A4 04 00 05 A000000001 00", iso7816.SW_ERR_FILE_NOT_FOUND},
		{"select by file ID", "00 A4 00 00 02 3F00 00", iso7816.SW_ERR_INCORRECT_PARAMS_P1P2},
		{"unsupported INS", "00 B0 00 00 00", iso7816.SW_ERR_INS_INVALID},
		{"malformed", "00 A4 04", iso7816.SW_ERR_WRONG_LENGTH},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := transmit(t, c, tt.cmd)
			assert.Equal(t, tt.sw, resp.Status)
			if tt.sw == iso7816.SW_NO_ERROR {
				assert.Equal(t, PIVApplicationProperties, resp.Data)
			}
		})
	}
}

func TestCard_GetData(t *testing.T) {
	c := New()
	c.AddApplication(PIVApplicationID, PIVApplicationProperties)
	c.PutObject(tlv.MustParseTag("5FC107"), tlv.Hex("53 03 F0 01 AA"))
	c.PutObject(tlv.MustParseTag("5FC109"), tlv.Hex("53 03 01 01 41"))
	c.Protect(tlv.MustParseTag("5FC109"))

	resp := transmit(t, c, "00 CB 3F FF 05 5C 03 5FC107 00")
	assert.Equal(t, iso7816.SW_ERR_COND_OF_USE_NOT_SAT, resp.Status, "no application selected")

	transmit(t, c, "00 A4 04 00 0B A0000003080000100001 00 00")

	resp = transmit(t, c, "00 CB 3F FF 05 5C 03 5FC107 00")
	assert.Equal(t, iso7816.SW_NO_ERROR, resp.Status)
	assert.Equal(t, tlv.Hex("53 03 F0 01 AA"), resp.Data)

	resp = transmit(t, c, "00 CB 3F FF 05 5C 03 5FC102 00")
	assert.Equal(t, iso7816.SW_ERR_FILE_NOT_FOUND, resp.Status)

	resp = transmit(t, c, "00 CB 3F FF 05 5C 03 5FC109 00")
	assert.Equal(t, iso7816.SW_ERR_SECURITY_STATUS_NOT_SAT, resp.Status)

	c.VerifyPIN()
	resp = transmit(t, c, "00 CB 3F FF 05 5C 03 5FC109 00")
	assert.Equal(t, iso7816.SW_NO_ERROR, resp.Status)

	resp = transmit(t, c, "00 CB 3F FE 05 5C 03 5FC107 00")
	assert.Equal(t, iso7816.SW_ERR_INCORRECT_PARAMS_P1P2, resp.Status)

	resp = transmit(t, c, "00 CB 3F FF 03 01 01 00 00")
	assert.Equal(t, iso7816.SW_ERR_INCORRECT_PARAMS_DATA, resp.Status)
}

func TestCard_Chunking(t *testing.T) {
	c := New(WithChunkSize(4))
	c.AddApplication(PIVApplicationID, PIVApplicationProperties)

	resp := transmit(t, c, "00 A4 04 00 0B A0000003080000100001 00 00")
	assert.Equal(t, iso7816.NewStatusWord(0x61, byte(len(PIVApplicationProperties)-4)), resp.Status)
	assert.Equal(t, PIVApplicationProperties[:4], resp.Data)

	// The iso7816 client drains the chain.
	trace, err := iso7816.NewClient(c).Send(iso7816.SelectByAID(iso7816.BasicClass, PIVApplicationID))
	require.NoError(t, err)
	assert.True(t, trace.IsSuccess())
	assert.Equal(t, PIVApplicationProperties, trace.Data())
	assert.Greater(t, len(trace), 2)
}

func TestCard_GetResponseWithoutPending(t *testing.T) {
	c := New()
	resp := transmit(t, c, "00 C0 00 00 00")
	assert.Equal(t, iso7816.SW_ERR_COND_OF_USE_NOT_SAT, resp.Status)
}

func TestCard_FailWith(t *testing.T) {
	c := New()
	boom := errors.New("reader removed")
	c.FailWith(boom)

	_, err := c.Transmit(tlv.Hex("00 A4 04 00 01 A0 00"))
	assert.ErrorIs(t, err, boom)

	c.FailWith(nil)
	_, err = c.Transmit(tlv.Hex("00 A4 04 00 01 A0 00"))
	assert.NoError(t, err)
	assert.Len(t, c.Received(), 2)
}

func TestNewPIVCard(t *testing.T) {
	c, err := NewPIVCard()
	require.NoError(t, err)

	transmit(t, c, "00 A4 04 00 0B A0000003080000100001 00 00")

	ccc := transmit(t, c, "00 CB 3F FF 05 5C 03 5FC107 00")
	require.Equal(t, iso7816.SW_NO_ERROR, ccc.Status)

	obj := dataobject.NewCapabilityContainer()
	obj.SetBytes(ccc.Data)
	require.NoError(t, obj.Decode())
	assert.Equal(t, tlv.Hex("A0 00 00 01 16"), obj.CardIdentifier)

	cert := transmit(t, c, "00 CB 3F FF 05 5C 03 5FC105 00")
	require.Equal(t, iso7816.SW_NO_ERROR, cert.Status)
	container := dataobject.NewCertificateContainer(dataobject.OIDPIVAuthenticationCertificate)
	container.SetBytes(cert.Data)
	require.NoError(t, container.Decode())
	parsed, err := container.Certificate()
	require.NoError(t, err)
	assert.Equal(t, "PIV Authentication", parsed.Subject.CommonName)

	printed := transmit(t, c, "00 CB 3F FF 05 5C 03 5FC109 00")
	assert.Equal(t, iso7816.SW_ERR_SECURITY_STATUS_NOT_SAT, printed.Status)

	discovery := transmit(t, c, "00 CB 3F FF 03 5C 01 7E 00")
	assert.Equal(t, iso7816.SW_NO_ERROR, discovery.Status)
}
