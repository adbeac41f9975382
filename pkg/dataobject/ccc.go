package dataobject

import (
	"strings"

	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

// CARD CAPABILITY CONTAINER (SP 800-73-4 Part 1, Table 8):
//
// '53' envelope with:
//   - 'F0' Card Identifier (GSC-RID || manufacturer ID || card type || card ID).
//   - 'F1' Capability Container version, 'F2' Capability Grammar version.
//   - 'F3' Applications CardURL (repeated), 'E3' Extended Application CardURL (repeated).
//   - 'F4' PKCS#15, 'F5' Registered Data Model number, 'F6' Access Control Rule Table.
//   - 'F7' Card APDUs, 'FA' Redirection Tag, 'FB' Capability Tuples, 'FC' Status Tuples,
//     'FD' Next CCC: present but empty in PIV.
//   - 'B4' Security Object Buffer, 'FE' Error Detection Code.

// CapabilityContainerFields are the decoded CCC fields.
type CapabilityContainerFields struct {
	CardIdentifier                   []byte   `tlv:"F0"`
	CapabilityContainerVersionNumber []byte   `tlv:"F1"`
	CapabilityGrammarVersionNumber   []byte   `tlv:"F2"`
	ApplicationsCardURL              [][]byte `tlv:"F3"`
	PKCS15                           []byte   `tlv:"F4"`
	RegisteredDataModelNumber        []byte   `tlv:"F5"`
	AccessControlRuleTable           []byte   `tlv:"F6"`
	CardAPDUs                        bool     `tlv:"F7,presence"`
	RedirectionTag                   bool     `tlv:"FA,presence"`
	CapabilityTuples                 bool     `tlv:"FB,presence"`
	StatusTuples                     bool     `tlv:"FC,presence"`
	NextCCC                          bool     `tlv:"FD,presence"`
	ExtendedApplicationCardURL       [][]byte `tlv:"E3"`
	SecurityObjectBuffer             []byte   `tlv:"B4"`
	ErrorDetectionCode               bool     `tlv:"FE,presence"`
}

// CapabilityContainer is the Card Capability Container.
type CapabilityContainer struct {
	Object
	CapabilityContainerFields
}

// NewCapabilityContainer returns an empty CCC.
func NewCapabilityContainer() *CapabilityContainer {
	c := &CapabilityContainer{}
	c.SetOID(OIDCardCapabilityContainer)
	return c
}

// Decode fills the CCC fields from the raw bytes.
func (c *CapabilityContainer) Decode() error {
	c.CapabilityContainerFields = CapabilityContainerFields{}
	return c.decode(&c.CapabilityContainerFields)
}

// Describe renders the decoded fields.
func (c *CapabilityContainer) Describe() string {
	return describe(&c.Object, "CCC", c.CapabilityContainerFields)
}

// describe is the report shared by all decoders.
func describe(o *Object, prefix string, fields interface{}) string {
	var sb strings.Builder
	sb.WriteString("=== " + strings.ToUpper(Name(o.oid)) + " ===\n")
	sb.WriteString("[i] OID:   " + o.oid + "\n")
	sb.WriteString("[i] State: " + o.state.String())

	if o.state == StateParsed {
		tlv.WriteStructFields(&sb, prefix, fields)
	}
	return sb.String()
}
