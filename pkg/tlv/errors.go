package tlv

import "errors"

// Encoding errors reported by Parse.
var (
	ErrTruncatedEncoding  = errors.New("truncated TLV encoding")
	ErrInvalidTagEncoding = errors.New("invalid TLV tag encoding")
	ErrInvalidLength      = errors.New("invalid TLV length encoding")
	ErrDepthExceeded      = errors.New("TLV nesting depth exceeded")
)
