package piv

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

// APPLICATION PROPERTY TEMPLATE (SP 800-73-4 Part 2, Table 3):
// A successful SELECT answers with:
//
//	'61' Application Property Template
//	  '4F'   Application identifier of application (PIX of the AID)
//	  '79'   Coexistent tag allocation authority
//	         '4F' Application identifier
//	  '50'   Application label (text)
//	  '5F50' Uniform resource locator
//	  'AC'   Cryptographic algorithms supported
//	         '80' Algorithm identifier (repeated)
//	         '06' Object identifier
//
// Unlike data objects, every constructed tag here holds nested TLVs.

// ApplicationID is the AID of a card application.
type ApplicationID []byte

// PIVApplicationID is the PIV Card Application AID, version 1.0.
var PIVApplicationID = ApplicationID{0xA0, 0x00, 0x00, 0x03, 0x08, 0x00, 0x00, 0x10, 0x00, 0x01, 0x00}

// ParseApplicationID decodes an AID given in hex.
func ParseApplicationID(s string) (ApplicationID, error) {
	raw, err := hex.DecodeString(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return nil, fmt.Errorf("application identifier %q: %w", s, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyApplicationID
	}
	return ApplicationID(raw), nil
}

// Bytes returns a copy of the AID.
func (a ApplicationID) Bytes() []byte {
	return append([]byte(nil), a...)
}

func (a ApplicationID) String() string {
	return strings.ToUpper(hex.EncodeToString(a))
}

// ApplicationProperties receives the SELECT response payload.
type ApplicationProperties struct {
	raw []byte
	set bool
}

// SetBytes stores a copy of the payload.
func (p *ApplicationProperties) SetBytes(raw []byte) {
	p.raw = append([]byte(nil), raw...)
	p.set = true
}

// Bytes returns the stored payload.
func (p *ApplicationProperties) Bytes() []byte {
	return p.raw
}

// IsSet reports whether a successful SELECT wrote the payload.
func (p *ApplicationProperties) IsSet() bool {
	return p.set
}

// CoexistentTagAllocationAuthority is template '79'.
type CoexistentTagAllocationAuthority struct {
	AID []byte `tlv:"4F"`
}

// CryptographicAlgorithms is template 'AC'.
type CryptographicAlgorithms struct {
	Identifiers      [][]byte `tlv:"80"`
	ObjectIdentifier []byte   `tlv:"06"`
}

// ApplicationPropertyTemplate is the decoded '61' template.
type ApplicationPropertyTemplate struct {
	AID        []byte                           `tlv:"4F"`
	Authority  CoexistentTagAllocationAuthority `tlv:"79"`
	Label      []byte                           `tlv:"50" fmt:"ascii"`
	URL        []byte                           `tlv:"5F50" fmt:"ascii"`
	Algorithms CryptographicAlgorithms          `tlv:"AC"`
	Unknown    []bertlv.TLV                     `tlv:",unknown"`
}

type selectResponse struct {
	Template ApplicationPropertyTemplate `tlv:"61"`
}

// Template decodes the Application Property Template.
func (p *ApplicationProperties) Template() (*ApplicationPropertyTemplate, error) {
	if len(p.raw) == 0 {
		return nil, fmt.Errorf("no application properties")
	}

	var resp selectResponse
	if err := tlv.Unmarshal(p.raw, &resp); err != nil {
		return nil, fmt.Errorf("application property template: %w", err)
	}
	return &resp.Template, nil
}

// AlgorithmIDs returns the algorithm identifiers advertised in 'AC'.
func (t *ApplicationPropertyTemplate) AlgorithmIDs() []byte {
	var ids []byte
	for _, id := range t.Algorithms.Identifiers {
		if len(id) > 0 {
			ids = append(ids, id[0])
		}
	}
	return ids
}

// Describe renders the template.
func (t *ApplicationPropertyTemplate) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== APPLICATION PROPERTY TEMPLATE ===")
	tlv.WriteStructFields(&sb, "APT", t)
	tlv.WriteStructFields(&sb, "APT.Authority", t.Authority)
	tlv.WriteStructFields(&sb, "APT.Algorithms", t.Algorithms)
	return sb.String()
}
