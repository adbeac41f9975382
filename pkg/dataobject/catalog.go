package dataobject

import (
	"fmt"
	"sort"

	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

// OBJECT CATALOG (SP 800-73-4 Part 1, Table 3):
// Every PIV data object is named by an OID and stored on the card under a BER
// tag. GET DATA carries the tag; conformance checks and reports use the OID.
// The read access rule tells whether GET DATA needs a verified PIN first.

// Access is the read access rule of a data object.
type Access int

const (
	AccessAlways Access = iota + 1
	AccessPIN
)

func (a Access) String() string {
	switch a {
	case AccessAlways:
		return "Always"
	case AccessPIN:
		return "PIN"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// Data object identifiers.
const (
	OIDCardCapabilityContainer       = "2.16.840.1.101.3.7.1.219.0"
	OIDCHUID                         = "2.16.840.1.101.3.7.2.48.0"
	OIDPIVAuthenticationCertificate  = "2.16.840.1.101.3.7.2.1.1"
	OIDCardholderFingerprints        = "2.16.840.1.101.3.7.2.96.16"
	OIDSecurityObject                = "2.16.840.1.101.3.7.2.144.0"
	OIDCardholderFacialImage         = "2.16.840.1.101.3.7.2.96.48"
	OIDDigitalSignatureCertificate   = "2.16.840.1.101.3.7.2.1.0"
	OIDKeyManagementCertificate      = "2.16.840.1.101.3.7.2.1.2"
	OIDCardAuthenticationCertificate = "2.16.840.1.101.3.7.2.5.0"
	OIDPrintedInformation            = "2.16.840.1.101.3.7.2.48.1"
	OIDDiscoveryObject               = "2.16.840.1.101.3.7.2.96.80"
	OIDKeyHistoryObject              = "2.16.840.1.101.3.7.2.96.96"
	OIDCardholderIrisImages          = "2.16.840.1.101.3.7.2.16.21"
	OIDBiometricGroupTemplate        = "2.16.840.1.101.3.7.2.16.22"
	OIDSecureMessagingCertSigner     = "2.16.840.1.101.3.7.2.16.23"
	OIDPairingCodeReferenceData      = "2.16.840.1.101.3.7.2.16.24"
)

// RetiredKeyManagementSlots is the number of retired key management certificates.
const RetiredKeyManagementSlots = 20

// OIDRetiredKeyManagementCertificate returns the OID of retired slot n (1..20).
func OIDRetiredKeyManagementCertificate(n int) string {
	return fmt.Sprintf("2.16.840.1.101.3.7.2.16.%d", n)
}

// Entry describes one catalog object.
type Entry struct {
	OID    string
	Tag    tlv.Tag
	Name   string
	Access Access
}

var catalog = buildCatalog()

func buildCatalog() map[string]Entry {
	entries := []Entry{
		{OIDCardCapabilityContainer, tlv.MustParseTag("5FC107"), "Card Capability Container", AccessAlways},
		{OIDCHUID, tlv.MustParseTag("5FC102"), "Card Holder Unique Identifier", AccessAlways},
		{OIDPIVAuthenticationCertificate, tlv.MustParseTag("5FC105"), "X.509 Certificate for PIV Authentication", AccessAlways},
		{OIDCardholderFingerprints, tlv.MustParseTag("5FC103"), "Cardholder Fingerprints", AccessPIN},
		{OIDSecurityObject, tlv.MustParseTag("5FC106"), "Security Object", AccessAlways},
		{OIDCardholderFacialImage, tlv.MustParseTag("5FC108"), "Cardholder Facial Image", AccessPIN},
		{OIDDigitalSignatureCertificate, tlv.MustParseTag("5FC10A"), "X.509 Certificate for Digital Signature", AccessAlways},
		{OIDKeyManagementCertificate, tlv.MustParseTag("5FC10B"), "X.509 Certificate for Key Management", AccessAlways},
		{OIDCardAuthenticationCertificate, tlv.MustParseTag("5FC101"), "X.509 Certificate for Card Authentication", AccessAlways},
		{OIDPrintedInformation, tlv.MustParseTag("5FC109"), "Printed Information", AccessPIN},
		{OIDDiscoveryObject, tlv.MustParseTag("7E"), "Discovery Object", AccessAlways},
		{OIDKeyHistoryObject, tlv.MustParseTag("5FC10C"), "Key History Object", AccessAlways},
		{OIDCardholderIrisImages, tlv.MustParseTag("5FC121"), "Cardholder Iris Images", AccessPIN},
		{OIDBiometricGroupTemplate, tlv.MustParseTag("7F61"), "Biometric Information Templates Group Template", AccessAlways},
		{OIDSecureMessagingCertSigner, tlv.MustParseTag("5FC122"), "Secure Messaging Certificate Signer", AccessAlways},
		{OIDPairingCodeReferenceData, tlv.MustParseTag("5FC123"), "Pairing Code Reference Data Container", AccessAlways},
	}

	// Retired key management certificates occupy '5FC10D' to '5FC120'.
	for n := 1; n <= RetiredKeyManagementSlots; n++ {
		entries = append(entries, Entry{
			OID:    OIDRetiredKeyManagementCertificate(n),
			Tag:    tlv.Tag{0x5F, 0xC1, byte(0x0C + n)},
			Name:   fmt.Sprintf("Retired X.509 Certificate for Key Management %d", n),
			Access: AccessAlways,
		})
	}

	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.OID] = e
	}
	return m
}

// Lookup returns the catalog entry of oid.
func Lookup(oid string) (Entry, bool) {
	e, ok := catalog[oid]
	return e, ok
}

// TagOf returns the wire tag of oid, or ErrUnknownObjectIdentifier.
func TagOf(oid string) (tlv.Tag, error) {
	e, ok := catalog[oid]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownObjectIdentifier, oid)
	}
	return e.Tag, nil
}

// Name returns the display name of oid, or the OID itself when unknown.
func Name(oid string) string {
	if e, ok := catalog[oid]; ok {
		return e.Name
	}
	return oid
}

// LookupTag returns the catalog entry stored under tag.
func LookupTag(tag tlv.Tag) (Entry, bool) {
	for _, e := range catalog {
		if e.Tag.Equal(tag) {
			return e, true
		}
	}
	return Entry{}, false
}

// Catalog returns every entry, ordered by wire tag.
func Catalog() []Entry {
	out := make([]Entry, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Tag.String() < out[j].Tag.String()
	})
	return out
}
