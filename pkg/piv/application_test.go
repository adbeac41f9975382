package piv

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/piv-conformance/pkg/simcard"
	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

func TestParseApplicationID(t *testing.T) {
	aid, err := ParseApplicationID("A0 00 00 03 08 00 00 10 00 01 00")
	require.NoError(t, err)
	assert.Equal(t, PIVApplicationID, aid)
	assert.Equal(t, "A000000308000010000100", aid.String())

	_, err = ParseApplicationID("")
	assert.True(t, errors.Is(err, ErrEmptyApplicationID))

	_, err = ParseApplicationID("A0 0")
	assert.Error(t, err)
}

func TestApplicationProperties_SetBytes(t *testing.T) {
	var props ApplicationProperties
	assert.False(t, props.IsSet())

	src := tlv.Hex("61 00")
	props.SetBytes(src)
	src[0] = 0xFF

	assert.True(t, props.IsSet())
	assert.Equal(t, tlv.Hex("61 00"), props.Bytes())
}

func TestApplicationProperties_Template(t *testing.T) {
	var props ApplicationProperties
	props.SetBytes(simcard.PIVApplicationProperties)

	apt, err := props.Template()
	require.NoError(t, err)

	assert.Equal(t, tlv.Hex("00 00 10 00 01 00"), apt.AID)
	assert.Equal(t, tlv.Hex("A0 00 00 03 08"), apt.Authority.AID)
	assert.Equal(t, []byte{0x11, 0x14}, apt.AlgorithmIDs())
	assert.Empty(t, apt.Unknown)

	report := apt.Describe()
	assert.True(t, strings.HasPrefix(report, "=== APPLICATION PROPERTY TEMPLATE ==="))
	assert.Contains(t, report, "APT.Authority")
}

func TestApplicationProperties_TemplateLabel(t *testing.T) {
	var props ApplicationProperties
	props.SetBytes(tlv.Hex(
		"61 0D",
		"4F 02 0001",
		"50 03 504956",
		"99 02 CAFE",
	))

	apt, err := props.Template()
	require.NoError(t, err)
	assert.Equal(t, []byte("PIV"), apt.Label)
	require.Len(t, apt.Unknown, 1)
	assert.Equal(t, "99", apt.Unknown[0].Tag)
}

func TestApplicationProperties_TemplateEmpty(t *testing.T) {
	var props ApplicationProperties
	_, err := props.Template()
	assert.Error(t, err)
}
