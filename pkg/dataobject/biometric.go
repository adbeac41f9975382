package dataobject

// BIOMETRIC OBJECTS (SP 800-73-4 Part 1, Tables 11, 13 and 40):
// Cardholder fingerprints, facial image and iris images share one layout:
// 'BC' CBEFF biometric record and 'FE' Error Detection Code.

type BiometricFields struct {
	BiometricData      []byte `tlv:"BC"`
	ErrorDetectionCode bool   `tlv:"FE,presence"`
}

type Biometric struct {
	Object
	BiometricFields
}

func NewBiometric(oid string) *Biometric {
	b := &Biometric{}
	b.SetOID(oid)
	return b
}

func (b *Biometric) Decode() error {
	b.BiometricFields = BiometricFields{}
	return b.decode(&b.BiometricFields)
}

func (b *Biometric) Describe() string {
	return describe(&b.Object, "Biometric", b.BiometricFields)
}
