package dataobject

import (
	"github.com/gregLibert/piv-conformance/pkg/bits"
)

// DISCOVERY OBJECT (SP 800-73-4 Part 1, Table 18):
//
// '7E' template with '4F' PIV Card Application AID and '5F2F' PIN Usage Policy.
//
// PIN Usage Policy, first byte:
//   - Bit 7: PIV Card Application PIN satisfies the PIV access control rules.
//   - Bit 6: Global PIN satisfies the PIV access control rules.
//   - Bit 5: On-Card Comparison satisfies the PIV access control rules.
//   - Bit 4: Virtual Contact Interface pairing code is implemented.
//
// Second byte: '10' PIV Card Application PIN is primary, '20' Global PIN is primary.

const (
	PrimaryApplicationPIN byte = 0x10
	PrimaryGlobalPIN      byte = 0x20
)

type DiscoveryFields struct {
	ApplicationAID []byte `tlv:"4F"`
	PINUsagePolicy []byte `tlv:"5F2F"`
}

type Discovery struct {
	Object
	DiscoveryFields
}

func NewDiscovery() *Discovery {
	d := &Discovery{}
	d.SetOID(OIDDiscoveryObject)
	return d
}

func (d *Discovery) Decode() error {
	d.DiscoveryFields = DiscoveryFields{}
	return d.decode(&d.DiscoveryFields)
}

func (d *Discovery) Describe() string {
	return describe(&d.Object, "Discovery", d.DiscoveryFields)
}

func (d *Discovery) policyBit(n uint) bool {
	return len(d.PINUsagePolicy) > 0 && bits.IsSet(d.PINUsagePolicy[0], n)
}

// ApplicationPINSatisfiesACR reports bit 7 of the PIN Usage Policy.
func (d *Discovery) ApplicationPINSatisfiesACR() bool { return d.policyBit(7) }

// GlobalPINSatisfiesACR reports bit 6 of the PIN Usage Policy.
func (d *Discovery) GlobalPINSatisfiesACR() bool { return d.policyBit(6) }

// OCCSatisfiesACR reports bit 5 of the PIN Usage Policy.
func (d *Discovery) OCCSatisfiesACR() bool { return d.policyBit(5) }

// PairingCodeImplemented reports bit 4 of the PIN Usage Policy.
func (d *Discovery) PairingCodeImplemented() bool { return d.policyBit(4) }

// GlobalPINPrimary reports a Global PIN declared as primary. It is only
// meaningful when both PINs satisfy the access control rules.
func (d *Discovery) GlobalPINPrimary() bool {
	return len(d.PINUsagePolicy) > 1 && d.PINUsagePolicy[1] == PrimaryGlobalPIN
}
