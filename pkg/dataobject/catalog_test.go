package dataobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

func TestCatalog(t *testing.T) {
	entries := Catalog()
	require.Len(t, entries, 16+RetiredKeyManagementSlots)

	seenTags := make(map[string]string)
	for _, e := range entries {
		if prev, dup := seenTags[e.Tag.String()]; dup {
			t.Errorf("tag %s used by %s and %s", e.Tag, prev, e.OID)
		}
		seenTags[e.Tag.String()] = e.OID

		got, ok := LookupTag(e.Tag)
		require.True(t, ok)
		assert.Equal(t, e.OID, got.OID)
	}

	assert.Equal(t, "5FC101", entries[0].Tag.String())
	assert.Equal(t, "7F61", entries[len(entries)-1].Tag.String())
}

func TestRetiredKeyManagementTags(t *testing.T) {
	first, ok := Lookup(OIDRetiredKeyManagementCertificate(1))
	require.True(t, ok)
	assert.Equal(t, tlv.Hex("5F C1 0D"), []byte(first.Tag))

	last, ok := Lookup(OIDRetiredKeyManagementCertificate(RetiredKeyManagementSlots))
	require.True(t, ok)
	assert.Equal(t, tlv.Hex("5F C1 20"), []byte(last.Tag))
	assert.Equal(t, "Retired X.509 Certificate for Key Management 20", last.Name)
}

func TestTagOf(t *testing.T) {
	tag, err := TagOf(OIDCardCapabilityContainer)
	require.NoError(t, err)
	assert.Equal(t, "5FC107", tag.String())

	tag, err = TagOf(OIDDiscoveryObject)
	require.NoError(t, err)
	assert.Equal(t, "7E", tag.String())

	_, err = TagOf("1.2.3")
	assert.ErrorIs(t, err, ErrUnknownObjectIdentifier)

	assert.Equal(t, "Card Holder Unique Identifier", Name(OIDCHUID))
	assert.Equal(t, "1.2.3", Name("1.2.3"))
}

func TestAccess(t *testing.T) {
	for _, oid := range []string{OIDCardholderFingerprints, OIDCardholderFacialImage, OIDPrintedInformation, OIDCardholderIrisImages} {
		e, _ := Lookup(oid)
		assert.Equal(t, AccessPIN, e.Access, oid)
	}
	e, _ := Lookup(OIDCHUID)
	assert.Equal(t, "Always", e.Access.String())
}

func TestNew(t *testing.T) {
	for _, e := range Catalog() {
		obj, err := New(e.OID)
		require.NoError(t, err, e.OID)
		assert.Equal(t, e.OID, obj.OID())
		assert.Equal(t, StateEmpty, obj.State())
	}

	tests := []struct {
		oid  string
		want interface{}
	}{
		{OIDCardCapabilityContainer, &CapabilityContainer{}},
		{OIDCHUID, &CHUID{}},
		{OIDKeyManagementCertificate, &CertificateContainer{}},
		{OIDRetiredKeyManagementCertificate(7), &CertificateContainer{}},
		{OIDSecureMessagingCertSigner, &CertificateContainer{}},
		{OIDCardholderIrisImages, &Biometric{}},
		{OIDPrintedInformation, &PrintedInformation{}},
		{OIDDiscoveryObject, &Discovery{}},
		{OIDKeyHistoryObject, &KeyHistory{}},
		{OIDSecurityObject, &SecurityObject{}},
		{OIDPairingCodeReferenceData, &Generic{}},
	}
	for _, tt := range tests {
		obj, err := New(tt.oid)
		require.NoError(t, err)
		assert.IsType(t, tt.want, obj, tt.oid)
	}

	_, err := New("2.16.840.1.101.3.7.2.16.99")
	assert.ErrorIs(t, err, ErrUnknownObjectIdentifier)
}
