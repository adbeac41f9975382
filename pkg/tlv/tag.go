package tlv

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gregLibert/piv-conformance/pkg/bits"
)

// TAG ENCODING (ISO/IEC 8825-1 / X.690, as profiled by ISO/IEC 7816-4):
//
// First byte:
//   - Bits 8-7: Class (Universal, Application, Context-specific, Private).
//   - Bit 6:    Form (0 = Primitive, 1 = Constructed).
//   - Bits 5-1: Tag number, or '11111' when subsequent bytes follow.
//
// Subsequent bytes:
//   - Bit 8:    1 = another byte follows, 0 = last byte.
//   - Bits 7-1: Tag number bits. The first subsequent byte must not be '80'.
//
// PIV tags are compared as byte sequences ('5FC107' is not a number).

// MaxTagLength bounds multi-byte tags. PIV uses at most 3 bytes.
const MaxTagLength = 4

// Class is the tag class carried by bits 8-7 of the first tag byte.
type Class byte

const (
	ClassUniversal   Class = 0
	ClassApplication Class = 1
	ClassContext     Class = 2
	ClassPrivate     Class = 3
)

func (c Class) String() string {
	switch c {
	case ClassUniversal:
		return "Universal"
	case ClassApplication:
		return "Application"
	case ClassContext:
		return "Context-specific"
	case ClassPrivate:
		return "Private"
	default:
		return fmt.Sprintf("Class(%d)", byte(c))
	}
}

// Tag is the raw encoding of a BER tag.
type Tag []byte

// ParseTag builds a Tag from its hex form ("5FC107", "5F C1 07").
func ParseTag(s string) (Tag, error) {
	raw, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		return nil, fmt.Errorf("tag %q: %w", s, err)
	}
	t, n, err := readTag(raw)
	if err != nil {
		return nil, err
	}
	if n != len(raw) {
		return nil, fmt.Errorf("%w: tag %q has %d trailing bytes", ErrInvalidTagEncoding, s, len(raw)-n)
	}
	return t, nil
}

// MustParseTag is ParseTag for package-level tag tables.
func MustParseTag(s string) Tag {
	t, err := ParseTag(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Equal compares tags byte for byte.
func (t Tag) Equal(other Tag) bool {
	return bytes.Equal(t, other)
}

// Constructed reports the form announced by bit 6 of the first byte.
func (t Tag) Constructed() bool {
	return len(t) > 0 && bits.IsSet(t[0], 6)
}

// Class returns the tag class.
func (t Tag) Class() Class {
	if len(t) == 0 {
		return ClassUniversal
	}
	return Class(bits.GetRange(t[0], 8, 7))
}

// String returns the upper-case hex form, as used in struct tags.
func (t Tag) String() string {
	return strings.ToUpper(hex.EncodeToString(t))
}

// readTag reads one tag from the start of data and returns it with its size.
func readTag(data []byte) (Tag, int, error) {
	if len(data) == 0 {
		return nil, 0, fmt.Errorf("%w: missing tag", ErrTruncatedEncoding)
	}

	if !bits.AllSet(data[0], 5, 1) {
		return Tag{data[0]}, 1, nil
	}

	i := 1
	for {
		if i >= len(data) {
			return nil, 0, fmt.Errorf("%w: tag %X ends while continuation bit is set", ErrInvalidTagEncoding, data)
		}
		if i == 1 && data[i] == 0x80 {
			return nil, 0, fmt.Errorf("%w: tag %X has a zero leading tag number byte", ErrInvalidTagEncoding, data[:2])
		}
		if i+1 > MaxTagLength {
			return nil, 0, fmt.Errorf("%w: tag %X exceeds %d bytes", ErrInvalidTagEncoding, data[:i+1], MaxTagLength)
		}
		last := !bits.IsSet(data[i], 8)
		i++
		if last {
			break
		}
	}

	t := make(Tag, i)
	copy(t, data[:i])
	return t, i, nil
}
