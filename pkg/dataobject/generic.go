package dataobject

import (
	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

// GenericFields keeps every depth-1 node of objects without a dedicated layout
// (biometric group template, pairing code reference data).
type GenericFields struct {
	Elements []tlv.Node `tlv:",unknown"`
}

// Generic only checks the structure of its object.
type Generic struct {
	Object
	GenericFields
}

func NewGeneric(oid string) *Generic {
	g := &Generic{}
	g.SetOID(oid)
	return g
}

func (g *Generic) Decode() error {
	g.GenericFields = GenericFields{}
	return g.decode(&g.GenericFields)
}

func (g *Generic) Describe() string {
	return describe(&g.Object, "Object", g.GenericFields)
}
