package piv

import (
	"sync"

	"github.com/gregLibert/piv-conformance/pkg/iso7816"
)

// Handle owns the channel to one card. One exchange runs at a time; the channel
// handed to an exchange must not be kept after it returns, since the handle may
// be rebound to another connection.
type Handle struct {
	mu   sync.Mutex
	card iso7816.Transmitter
}

// NewHandle binds a handle to card. A nil card gives an unconnected handle.
func NewHandle(card iso7816.Transmitter) *Handle {
	return &Handle{card: card}
}

// Connected reports whether the handle holds a live connection.
func (h *Handle) Connected() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.card != nil
}

// Rebind switches the handle to another connection once the running exchange ends.
func (h *Handle) Rebind(card iso7816.Transmitter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.card = card
}

// Release detaches the connection and returns it to the caller for closing.
func (h *Handle) Release() iso7816.Transmitter {
	h.mu.Lock()
	defer h.mu.Unlock()
	card := h.card
	h.card = nil
	return card
}

// Exchange runs fn with exclusive use of the channel.
func (h *Handle) Exchange(fn func(ch iso7816.Transmitter) error) error {
	if h == nil {
		return ErrNoConnection
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.card == nil {
		return ErrNoConnection
	}
	return fn(h.card)
}
