// Package reader connects to PIV cards through PC/SC.
package reader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ebfe/scard"

	"github.com/gregLibert/piv-conformance/pkg/piv"
)

// Connection is a PC/SC card connection. It implements iso7816.Transmitter.
type Connection struct {
	ctx    *scard.Context
	card   *scard.Card
	Reader string
}

// List returns the names of the connected readers.
func List() ([]string, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establish context: %w", err)
	}
	defer ctx.Release()

	readers, err := ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("list readers: %w", err)
	}
	return readers, nil
}

// Connect opens the reader whose name contains name, or the reader at index
// when name is empty.
func Connect(name string, index int) (*Connection, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establish context: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil || len(readers) == 0 {
		_ = ctx.Release()
		return nil, fmt.Errorf("no readers found: %v", err)
	}

	reader, err := pick(readers, name, index)
	if err != nil {
		_ = ctx.Release()
		return nil, err
	}

	card, err := ctx.Connect(reader, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		_ = ctx.Release()
		return nil, fmt.Errorf("connect %q: %w", reader, err)
	}

	return &Connection{ctx: ctx, card: card, Reader: reader}, nil
}

func pick(readers []string, name string, index int) (string, error) {
	if name != "" {
		for _, r := range readers {
			if strings.Contains(r, name) {
				return r, nil
			}
		}
		return "", fmt.Errorf("no reader matching %q", name)
	}
	if index < 0 || index >= len(readers) {
		return "", fmt.Errorf("reader index %d out of range (0..%d)", index, len(readers)-1)
	}
	return readers[index], nil
}

// Transmit sends one APDU. A PC/SC security violation is reported as
// piv.ErrSecurityViolation.
func (c *Connection) Transmit(cmd []byte) ([]byte, error) {
	if c == nil || c.card == nil {
		return nil, piv.ErrNoConnection
	}
	resp, err := c.card.Transmit(cmd)
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

func mapError(err error) error {
	if errors.Is(err, scard.ErrSecurityViolation) {
		return fmt.Errorf("%w: %v", piv.ErrSecurityViolation, err)
	}
	return err
}

// Close disconnects the card, leaving it powered, and releases the context.
func (c *Connection) Close() error {
	if c == nil {
		return nil
	}

	var errs []error
	if c.card != nil {
		if err := c.card.Disconnect(scard.LeaveCard); err != nil {
			errs = append(errs, fmt.Errorf("disconnect: %w", err))
		}
		c.card = nil
	}
	if c.ctx != nil {
		if err := c.ctx.Release(); err != nil {
			errs = append(errs, fmt.Errorf("release context: %w", err))
		}
		c.ctx = nil
	}
	return errors.Join(errs...)
}
