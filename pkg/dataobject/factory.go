package dataobject

import (
	"fmt"
	"strings"
)

const retiredOIDPrefix = "2.16.840.1.101.3.7.2.16."

// New returns an empty decoder for oid.
func New(oid string) (DataObject, error) {
	if _, ok := Lookup(oid); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownObjectIdentifier, oid)
	}

	switch oid {
	case OIDCardCapabilityContainer:
		return NewCapabilityContainer(), nil
	case OIDCHUID:
		return NewCHUID(), nil
	case OIDPIVAuthenticationCertificate, OIDDigitalSignatureCertificate,
		OIDKeyManagementCertificate, OIDCardAuthenticationCertificate,
		OIDSecureMessagingCertSigner:
		return NewCertificateContainer(oid), nil
	case OIDCardholderFingerprints, OIDCardholderFacialImage, OIDCardholderIrisImages:
		return NewBiometric(oid), nil
	case OIDPrintedInformation:
		return NewPrintedInformation(), nil
	case OIDDiscoveryObject:
		return NewDiscovery(), nil
	case OIDKeyHistoryObject:
		return NewKeyHistory(), nil
	case OIDSecurityObject:
		return NewSecurityObject(), nil
	}

	if isRetiredKeyManagement(oid) {
		return NewCertificateContainer(oid), nil
	}
	return NewGeneric(oid), nil
}

func isRetiredKeyManagement(oid string) bool {
	if !strings.HasPrefix(oid, retiredOIDPrefix) {
		return false
	}
	for n := 1; n <= RetiredKeyManagementSlots; n++ {
		if oid == OIDRetiredKeyManagementCertificate(n) {
			return true
		}
	}
	return false
}
