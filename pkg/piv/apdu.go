package piv

import (
	"errors"
	"fmt"

	"github.com/gregLibert/piv-conformance/pkg/dataobject"
	"github.com/gregLibert/piv-conformance/pkg/iso7816"
	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

var (
	ErrEmptyApplicationID      = errors.New("empty application identifier")
	ErrUnknownObjectIdentifier = dataobject.ErrUnknownObjectIdentifier
	ErrMalformedResponse       = errors.New("malformed response APDU")
	ErrNoConnection            = errors.New("no live card connection")

	// ErrSecurityViolation is returned by transports when the platform refuses an
	// exchange on security grounds. GET DATA maps it to StatusSecurityConditionsNotSatisfied.
	ErrSecurityViolation = errors.New("security violation")
)

// TagObjectIDList is the '5C' tag list carrying the requested data object tag.
var TagObjectIDList = tlv.Tag{0x5C}

// SelectCommand builds SELECT for aid on the basic channel.
func SelectCommand(aid []byte) (*iso7816.CommandAPDU, error) {
	if len(aid) == 0 {
		return nil, ErrEmptyApplicationID
	}
	if len(aid) > iso7816.MaxShortLc {
		return nil, fmt.Errorf("application identifier of %d bytes exceeds %d", len(aid), iso7816.MaxShortLc)
	}
	return iso7816.SelectByAID(iso7816.BasicClass, aid), nil
}

// BuildSelect returns the SELECT command bytes: 00 A4 04 00 Lc <AID> 00.
func BuildSelect(aid []byte) ([]byte, error) {
	cmd, err := SelectCommand(aid)
	if err != nil {
		return nil, err
	}
	return cmd.Bytes()
}

// GetDataCommand builds GET DATA for a catalog OID.
// An OID outside the catalog fails with ErrUnknownObjectIdentifier.
func GetDataCommand(oid string) (*iso7816.CommandAPDU, error) {
	tag, err := dataobject.TagOf(oid)
	if err != nil {
		return nil, err
	}
	data := tlv.Encode(tlv.NewPrimitive(TagObjectIDList, tag))
	return iso7816.GetData(iso7816.BasicClass, data), nil
}

// BuildGetData returns the GET DATA command bytes: 00 CB 3F FF Lc 5C <len> <tag> 00.
func BuildGetData(oid string) ([]byte, error) {
	cmd, err := GetDataCommand(oid)
	if err != nil {
		return nil, err
	}
	return cmd.Bytes()
}

// ParseResponse splits a response into its status word and payload.
// Fewer than two bytes fail with ErrMalformedResponse.
func ParseResponse(raw []byte) (iso7816.StatusWord, []byte, error) {
	resp, err := iso7816.ParseResponseAPDU(raw)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return resp.Status, resp.Data, nil
}
