package tlv

import "bytes"

// Encode concatenates the encodings of nodes using minimal definite lengths.
func Encode(nodes ...Node) []byte {
	buf := new(bytes.Buffer)
	for _, n := range nodes {
		buf.Write(n.tag)
		buf.Write(EncodeLength(len(n.contents)))
		buf.Write(n.contents)
	}
	return buf.Bytes()
}

// EncodeLength returns the minimal definite length field for n.
func EncodeLength(n int) []byte {
	switch {
	case n < 0x80:
		return []byte{byte(n)}
	case n <= 0xFF:
		return []byte{0x81, byte(n)}
	case n <= 0xFFFF:
		return []byte{0x82, byte(n >> 8), byte(n)}
	case n <= 0xFFFFFF:
		return []byte{0x83, byte(n >> 16), byte(n >> 8), byte(n)}
	default:
		return []byte{0x84, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	}
}
