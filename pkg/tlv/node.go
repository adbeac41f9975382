package tlv

import (
	"bytes"
	"fmt"
)

// Node is one tag-length-value element.
//
// A node is either primitive (Value) or constructed (Children), as announced by
// its tag. Both forms keep the raw content octets (Contents) because PIV
// containers carry opaque bytes under tags that have the constructed bit set.
// Nested content is parsed on demand, so a Node never shares mutable state.
type Node struct {
	tag      Tag
	contents []byte
	depth    int
}

// NewPrimitive builds a primitive node. It panics if tag announces a constructed form.
func NewPrimitive(tag Tag, value []byte) Node {
	if tag.Constructed() {
		panic(fmt.Sprintf("tlv: NewPrimitive with constructed tag %s", tag))
	}
	return Node{tag: cloneBytes(tag), contents: cloneBytes(value)}
}

// NewConstructed builds a constructed node from its children.
// It panics if tag announces a primitive form.
func NewConstructed(tag Tag, children ...Node) Node {
	if !tag.Constructed() {
		panic(fmt.Sprintf("tlv: NewConstructed with primitive tag %s", tag))
	}
	return Node{tag: cloneBytes(tag), contents: Encode(children...)}
}

// NewOpaque builds a node that carries raw contents whatever its tag form.
// PIV data objects use it for fields such as '53' envelopes or 'F0' identifiers.
func NewOpaque(tag Tag, contents []byte) Node {
	return Node{tag: cloneBytes(tag), contents: cloneBytes(contents)}
}

// Tag returns the node tag.
func (n Node) Tag() Tag {
	return n.tag
}

// Len returns the length field: the size of the encoded value.
func (n Node) Len() int {
	return len(n.contents)
}

// Depth is the nesting level the node was parsed at (0 for the outer sequence).
func (n Node) Depth() int {
	return n.depth
}

// IsConstructed reports the form announced by the tag.
func (n Node) IsConstructed() bool {
	return n.tag.Constructed()
}

// Value returns the value of a primitive node.
// Calling it on a constructed node is a programming error and panics.
func (n Node) Value() []byte {
	if n.IsConstructed() {
		panic(fmt.Sprintf("tlv: Value called on constructed node %s", n.tag))
	}
	return n.contents
}

// Children parses the value of a constructed node.
// Calling it on a primitive node is a programming error and panics.
func (n Node) Children() ([]Node, error) {
	if !n.IsConstructed() {
		panic(fmt.Sprintf("tlv: Children called on primitive node %s", n.tag))
	}
	return n.Nested()
}

// Contents returns the raw content octets, whatever the form.
func (n Node) Contents() []byte {
	return n.contents
}

// Nested parses the contents as a TLV sequence one level deeper, whatever the
// form announced by the tag.
func (n Node) Nested() ([]Node, error) {
	return parseAt(n.contents, n.depth+1)
}

// Bytes returns the full encoding of the node.
func (n Node) Bytes() []byte {
	return Encode(n)
}

// String returns a short hex description.
func (n Node) String() string {
	return fmt.Sprintf("%s [%d] %X", n.tag, n.Len(), n.contents)
}

// Equal compares tag, form, length and content, recursing into constructed children.
func Equal(a, b Node) bool {
	if !a.tag.Equal(b.tag) || a.Len() != b.Len() {
		return false
	}
	if !a.IsConstructed() {
		return bytes.Equal(a.contents, b.contents)
	}

	ac, errA := a.Nested()
	bc, errB := b.Nested()
	if errA != nil || errB != nil {
		// Opaque contents under a constructed tag.
		return (errA != nil) == (errB != nil) && bytes.Equal(a.contents, b.contents)
	}
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

// Find returns the first node carrying tag.
func Find(nodes []Node, tag Tag) (Node, bool) {
	for _, n := range nodes {
		if n.tag.Equal(tag) {
			return n, true
		}
	}
	return Node{}, false
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
