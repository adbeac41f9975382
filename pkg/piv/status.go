package piv

import "fmt"

// Status is the outcome of one card operation.
type Status int

const (
	StatusOK Status = iota
	StatusCardApplicationNotFound
	StatusSecurityConditionsNotSatisfied
	StatusDataObjectNotFound
	StatusConnectionFailure
	StatusInvalidCardHandle
	StatusInvalidOID
	StatusFunctionNotSupported
)

var statusNames = map[Status]string{
	StatusOK:                             "PIV_OK",
	StatusCardApplicationNotFound:        "PIV_CARD_APPLICATION_NOT_FOUND",
	StatusSecurityConditionsNotSatisfied: "PIV_SECURITY_CONDITIONS_NOT_SATISFIED",
	StatusDataObjectNotFound:             "PIV_DATA_OBJECT_NOT_FOUND",
	StatusConnectionFailure:              "PIV_CONNECTION_FAILURE",
	StatusInvalidCardHandle:              "PIV_INVALID_CARD_HANDLE",
	StatusInvalidOID:                     "PIV_INVALID_OID",
	StatusFunctionNotSupported:           "PIV_FUNCTION_NOT_SUPPORTED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}
