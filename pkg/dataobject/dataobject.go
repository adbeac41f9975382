/*
Package dataobject decodes the PIV data objects read with GET DATA.

Each object kind has a decoder that fills typed fields from the card bytes. The
decoders share one algorithm:

 1. An empty buffer fails with ErrEmptyBuffer.
 2. The buffer is parsed as a TLV sequence (the outer envelope, usually '53').
 3. Each container node is parsed one level deeper. Other outer nodes are skipped.
 4. Depth-1 nodes are dispatched on their exact tag bytes, through the `tlv` struct
    tags of the typed fields: scalar fields keep the first occurrence, repeated
    fields collect every occurrence in order, presence flags only record the tag.
 5. Unknown tags are skipped without error.
 6. The object is then parsed, even if no field was populated.

Structural faults (truncation, bad tag or length, excessive nesting) are returned
as *DecodeError and leave the object in StateFailed. Semantic checks on the fields
belong to the conformance layer.

# Usage Example

	obj, err := dataobject.New(dataobject.OIDCardCapabilityContainer)
	if err != nil {
	    return err
	}
	obj.SetBytes(payload)
	if err := obj.Decode(); err != nil {
	    return err
	}
	ccc := obj.(*dataobject.CapabilityContainer)
	fmt.Printf("%X\n", ccc.CardIdentifier)
*/
package dataobject

import (
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

var (
	ErrEmptyBuffer             = errors.New("no buffer to decode")
	ErrUnknownObjectIdentifier = errors.New("unknown data object identifier")
)

// DecodeError reports a data object whose content is unusable for conformance checks.
type DecodeError struct {
	OID string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", Name(e.OID), e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// State is the lifecycle step of a data object.
type State int

const (
	StateEmpty State = iota
	StateRaw
	StateParsed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateRaw:
		return "raw"
	case StateParsed:
		return "parsed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DataObject is implemented by every decoder.
type DataObject interface {
	OID() string
	SetOID(oid string)
	Bytes() []byte
	SetBytes(raw []byte)
	State() State
	Parsed() bool
	Decode() error
	Describe() string
}

// Object holds the identity, raw bytes and state shared by all decoders.
// Decoders embed it.
type Object struct {
	oid    string
	raw    []byte
	state  State
	Logger log.Interface
}

// OID returns the object identifier.
func (o *Object) OID() string {
	return o.oid
}

// SetOID names the object.
func (o *Object) SetOID(oid string) {
	o.oid = oid
}

// Bytes returns the raw bytes fetched from the card.
func (o *Object) Bytes() []byte {
	return o.raw
}

// SetBytes stores a copy of the fetched bytes and moves the object to StateRaw.
func (o *Object) SetBytes(raw []byte) {
	o.raw = append([]byte(nil), raw...)
	o.state = StateRaw
}

// State returns the lifecycle step.
func (o *Object) State() State {
	return o.state
}

// Parsed reports whether the last Decode succeeded.
func (o *Object) Parsed() bool {
	return o.state == StateParsed
}

func (o *Object) logger() log.Interface {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Log
}

// decode runs the shared algorithm and maps depth-1 nodes into fields.
// fields must be a pointer to a zeroed struct with `tlv` tags.
func (o *Object) decode(fields interface{}) error {
	logger := o.logger().WithField("oid", o.oid)

	if len(o.raw) == 0 {
		return o.fail(logger, ErrEmptyBuffer)
	}

	outer, err := tlv.Parse(o.raw)
	if err != nil {
		return o.fail(logger, err)
	}

	var inner []tlv.Node
	for _, n := range outer {
		if !isContainer(n) {
			logger.WithField("tag", n.Tag().String()).Debug("skipping outer primitive node")
			continue
		}
		nested, err := n.Nested()
		if err != nil {
			return o.fail(logger, fmt.Errorf("container %s: %w", n.Tag(), err))
		}
		inner = append(inner, nested...)
	}

	unknown, err := tlv.UnmarshalNodes(inner, fields)
	if err != nil {
		return o.fail(logger, err)
	}
	for _, n := range unknown {
		logger.WithField("tag", n.Tag().String()).Debug("unknown tag skipped")
	}

	o.state = StateParsed
	return nil
}

func (o *Object) fail(logger log.Interface, err error) error {
	o.state = StateFailed
	logger.WithError(err).Errorf("error decoding %s", Name(o.oid))
	return &DecodeError{OID: o.oid, Err: err}
}

// envelopeTag is the '53' data object envelope. Its BER form bit says primitive
// but PIV always stores a TLV sequence in it.
var envelopeTag = tlv.Tag{0x53}

func isContainer(n tlv.Node) bool {
	return n.IsConstructed() || n.Tag().Equal(envelopeTag)
}
