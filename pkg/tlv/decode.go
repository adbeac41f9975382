package tlv

import (
	"fmt"

	"github.com/gregLibert/piv-conformance/pkg/bits"
)

// LENGTH ENCODING (X.690 definite form):
//   - Short form: one byte '00'..'7F'.
//   - Long form:  '81' + 1 byte, '82' + 2 bytes, '83' + 3 bytes, '84' + 4 bytes.
//   - '80' (indefinite form) is not allowed in ISO/IEC 7816 and is rejected.

// MaxDepth bounds the nesting level accepted by Parse and Node.Nested.
// The deepest PIV objects (biometric group templates) nest 4 levels.
const MaxDepth = 8

const maxLengthBytes = 4

// Parse decodes data into the sequence of top-level nodes.
// Constructed values are not expanded; use Node.Children or Node.Nested.
func Parse(data []byte) ([]Node, error) {
	return parseAt(data, 0)
}

// ParseAll decodes data and checks that every constructed node, recursively,
// holds a well-formed TLV sequence within MaxDepth.
func ParseAll(data []byte) ([]Node, error) {
	nodes, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := walk(nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func walk(nodes []Node) error {
	for _, n := range nodes {
		if !n.IsConstructed() {
			continue
		}
		children, err := n.Children()
		if err != nil {
			return fmt.Errorf("in %s: %w", n.tag, err)
		}
		if err := walk(children); err != nil {
			return err
		}
	}
	return nil
}

func parseAt(data []byte, depth int) ([]Node, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: level %d (max %d)", ErrDepthExceeded, depth, MaxDepth)
	}

	var nodes []Node
	offset := 0

	for offset < len(data) {
		tag, tagLen, err := readTag(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("at offset %d: %w", offset, err)
		}
		offset += tagLen

		length, lenLen, err := readLength(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("tag %s at offset %d: %w", tag, offset, err)
		}
		offset += lenLen

		if remaining := len(data) - offset; length > remaining {
			return nil, fmt.Errorf("%w: tag %s declares %d bytes, %d remaining", ErrTruncatedEncoding, tag, length, remaining)
		}

		contents := make([]byte, length)
		copy(contents, data[offset:offset+length])
		offset += length

		nodes = append(nodes, Node{tag: tag, contents: contents, depth: depth})
	}

	return nodes, nil
}

// readLength reads a definite length field and returns it with its size.
func readLength(data []byte) (int, int, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("%w: missing length", ErrTruncatedEncoding)
	}

	first := data[0]
	if !bits.IsSet(first, 8) {
		return int(first), 1, nil
	}

	count := int(bits.GetRange(first, 7, 1))
	if count == 0 {
		return 0, 0, fmt.Errorf("%w: indefinite length", ErrInvalidLength)
	}
	if count > maxLengthBytes {
		return 0, 0, fmt.Errorf("%w: %d length bytes", ErrInvalidLength, count)
	}
	if len(data) < 1+count {
		return 0, 0, fmt.Errorf("%w: length needs %d bytes", ErrTruncatedEncoding, count)
	}

	length := 0
	for _, b := range data[1 : 1+count] {
		length = length<<8 | int(b)
	}
	if length < 0 {
		return 0, 0, fmt.Errorf("%w: length overflow", ErrInvalidLength)
	}

	return length, 1 + count, nil
}
