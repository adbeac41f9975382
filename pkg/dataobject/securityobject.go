package dataobject

// SECURITY OBJECT (SP 800-73-4 Part 1, Table 12):
//
//   - 'BA' Mapping of DG to Container ID.
//   - 'BB' Security Object (CMS signed LDS security object).
//   - 'FE' Error Detection Code.

type SecurityObjectFields struct {
	Mapping            []byte `tlv:"BA"`
	SecurityObject     []byte `tlv:"BB"`
	ErrorDetectionCode bool   `tlv:"FE,presence"`
}

type SecurityObject struct {
	Object
	SecurityObjectFields
}

func NewSecurityObject() *SecurityObject {
	s := &SecurityObject{}
	s.SetOID(OIDSecurityObject)
	return s
}

func (s *SecurityObject) Decode() error {
	s.SecurityObjectFields = SecurityObjectFields{}
	return s.decode(&s.SecurityObjectFields)
}

func (s *SecurityObject) Describe() string {
	return describe(&s.Object, "SecurityObject", s.SecurityObjectFields)
}

// ContainerIDs returns the data group to container ID mapping: each entry of
// 'BA' is one data group number followed by a two-byte container ID.
func (s *SecurityObject) ContainerIDs() map[byte][2]byte {
	out := make(map[byte][2]byte)
	for i := 0; i+2 < len(s.Mapping); i += 3 {
		out[s.Mapping[i]] = [2]byte{s.Mapping[i+1], s.Mapping[i+2]}
	}
	return out
}
