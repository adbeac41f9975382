package piv

import (
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/gregLibert/piv-conformance/pkg/dataobject"
	"github.com/gregLibert/piv-conformance/pkg/iso7816"
)

// Client runs PIV card operations. It is stateless and may be shared.
type Client struct {
	log log.Interface
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default is the apex/log package logger.
func WithLogger(l log.Interface) Option {
	return func(c *Client) {
		c.log = l
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{log: log.Log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectApplication selects aid and writes the response payload into props.
// props is left untouched unless the status is StatusOK.
func (c *Client) SelectApplication(h *Handle, aid ApplicationID, props *ApplicationProperties) Status {
	logger := c.log.WithField("aid", aid.String())

	if !h.Connected() {
		logger.Error("no live connection on card handle")
		return StatusInvalidCardHandle
	}

	cmd, err := SelectCommand(aid)
	if err != nil {
		logger.WithError(err).Error("cannot build SELECT")
		return StatusCardApplicationNotFound
	}

	trace, err := c.exchange(h, cmd)
	switch {
	case errors.Is(err, ErrNoConnection):
		return StatusInvalidCardHandle
	case err != nil:
		logger.WithError(err).Error("error selecting card application")
		return StatusConnectionFailure
	}

	switch sw := trace.Status(); sw {
	case iso7816.SW_NO_ERROR:
		if props != nil {
			props.SetBytes(trace.Data())
		}
		return StatusOK
	case iso7816.SW_ERR_FILE_NOT_FOUND:
		logger.Info("card application not found")
		return StatusCardApplicationNotFound
	default:
		logger.WithField("sw", swHex(sw)).Error("error selecting card application")
		return StatusConnectionFailure
	}
}

// GetData reads the data object oid and hands its bytes to obj.
// An OID outside the catalog is never sent and yields StatusInvalidOID.
func (c *Client) GetData(h *Handle, oid string, obj dataobject.DataObject) Status {
	logger := c.log.WithField("oid", oid)

	if !h.Connected() {
		logger.Error("no live connection on card handle")
		return StatusInvalidCardHandle
	}

	cmd, err := GetDataCommand(oid)
	if err != nil {
		logger.WithError(err).Error("cannot build GET DATA")
		return StatusInvalidOID
	}

	trace, err := c.exchange(h, cmd)
	switch {
	case errors.Is(err, ErrNoConnection):
		return StatusInvalidCardHandle
	case errors.Is(err, ErrSecurityViolation):
		logger.WithError(err).Info("error retrieving data from the card application")
		return StatusSecurityConditionsNotSatisfied
	case err != nil:
		logger.WithError(err).Info("error retrieving data from the card application")
		return StatusConnectionFailure
	}

	switch sw := trace.Status(); sw {
	case iso7816.SW_NO_ERROR:
		if obj != nil {
			obj.SetOID(oid)
			obj.SetBytes(trace.Data())
		}
		return StatusOK
	case iso7816.SW_ERR_FILE_NOT_FOUND:
		logger.Info("data object not found")
		return StatusDataObjectNotFound
	case iso7816.SW_ERR_SECURITY_STATUS_NOT_SAT:
		logger.Info("security status not satisfied")
		return StatusSecurityConditionsNotSatisfied
	default:
		logger.WithField("sw", swHex(sw)).Error("error retrieving data from the card application")
		return StatusConnectionFailure
	}
}

// Login would verify the cardholder PIN. It is not supported.
func (c *Client) Login(h *Handle, authenticators []byte) Status {
	return StatusFunctionNotSupported
}

// Logout would reset the security status. It is not supported.
func (c *Client) Logout(h *Handle) Status {
	return StatusFunctionNotSupported
}

// Crypt would run GENERAL AUTHENTICATE with keyReference. It is not supported
// and leaves output untouched.
func (c *Client) Crypt(h *Handle, algorithm, keyReference byte, input []byte, output *[]byte) Status {
	return StatusFunctionNotSupported
}

// exchange sends cmd on the handle channel. The channel is only used inside the
// handle lock and is not retained.
func (c *Client) exchange(h *Handle, cmd *iso7816.CommandAPDU) (iso7816.Trace, error) {
	var trace iso7816.Trace
	err := h.Exchange(func(ch iso7816.Transmitter) error {
		var err error
		trace, err = iso7816.NewClient(ch).Send(cmd)
		return err
	})
	if err == nil {
		c.log.WithField("sw", swHex(trace.Status())).Debugf("%s: %d transaction(s)", cmd.Instruction.Raw, len(trace))
	}
	return trace, err
}

func swHex(sw iso7816.StatusWord) string {
	return fmt.Sprintf("%04X", uint16(sw))
}
