package dataobject

// KEY HISTORY OBJECT (SP 800-73-4 Part 1, Table 19):
//
//   - 'C1' keysWithOnCardCerts: number of retired slots with an on-card certificate.
//   - 'C2' keysWithOffCardCerts: number of retired keys whose certificate is off card.
//   - 'F3' offCardCertURL, required when 'C2' is not zero.
//   - 'FE' Error Detection Code.

type KeyHistoryFields struct {
	KeysWithOnCardCerts  []byte `tlv:"C1" fmt:"int"`
	KeysWithOffCardCerts []byte `tlv:"C2" fmt:"int"`
	OffCardCertURL       []byte `tlv:"F3" fmt:"ascii"`
	ErrorDetectionCode   bool   `tlv:"FE,presence"`
}

type KeyHistory struct {
	Object
	KeyHistoryFields
}

func NewKeyHistory() *KeyHistory {
	k := &KeyHistory{}
	k.SetOID(OIDKeyHistoryObject)
	return k
}

func (k *KeyHistory) Decode() error {
	k.KeyHistoryFields = KeyHistoryFields{}
	return k.decode(&k.KeyHistoryFields)
}

func (k *KeyHistory) Describe() string {
	return describe(&k.Object, "KeyHistory", k.KeyHistoryFields)
}

// OnCardCerts returns keysWithOnCardCerts, or 0 when absent.
func (k *KeyHistory) OnCardCerts() int {
	return counter(k.KeysWithOnCardCerts)
}

// OffCardCerts returns keysWithOffCardCerts, or 0 when absent.
func (k *KeyHistory) OffCardCerts() int {
	return counter(k.KeysWithOffCardCerts)
}

func counter(b []byte) int {
	var n int
	for _, v := range b {
		n = n<<8 | int(v)
	}
	return n
}
