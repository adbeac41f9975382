/*
Package simcard simulates a PIV card behind the Transmit contract of a real
reader. It answers SELECT, GET DATA and GET RESPONSE the way SP 800-73-4 Part 2
cards do, which lets conformance scenarios run without hardware.

	card := simcard.New()
	card.AddApplication(aid, apt)
	card.PutObject(tlv.MustParseTag("5FC107"), ccc)
	handle := piv.NewHandle(card)
*/
package simcard

import (
	"encoding/hex"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"

	"github.com/gregLibert/piv-conformance/pkg/iso7816"
	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

// Card is an in-memory PIV card. It is safe for concurrent use and records
// commands that arrive while another one is still being processed.
type Card struct {
	mu        sync.Mutex
	apps      map[string][]byte
	selected  string
	objects   map[string][]byte
	protected map[string]bool
	verified  bool
	pending   []byte
	fault     error
	received  [][]byte

	inflight int32
	overlaps int32

	// ChunkSize splits responses longer than it with '61XX'. Zero disables chaining.
	ChunkSize int
	// Latency delays every answer.
	Latency time.Duration

	log log.Interface
}

// Option configures a Card.
type Option func(*Card)

// WithChunkSize sets Card.ChunkSize.
func WithChunkSize(n int) Option {
	return func(c *Card) { c.ChunkSize = n }
}

// WithLatency sets Card.Latency.
func WithLatency(d time.Duration) Option {
	return func(c *Card) { c.Latency = d }
}

// WithLogger sets the logger used to trace commands.
func WithLogger(l log.Interface) Option {
	return func(c *Card) { c.log = l }
}

// New returns a card without applications.
func New(opts ...Option) *Card {
	c := &Card{
		apps:      make(map[string][]byte),
		objects:   make(map[string][]byte),
		protected: make(map[string]bool),
		log:       log.Log,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("module", "simcard")
	return c
}

// AddApplication registers an application and the payload its SELECT returns.
func (c *Card) AddApplication(aid, properties []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apps[hexKey(aid)] = append([]byte(nil), properties...)
}

// PutObject stores the GET DATA answer for tag, usually a '53' envelope.
func (c *Card) PutObject(tag tlv.Tag, contents []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[tag.String()] = append([]byte(nil), contents...)
}

// Protect makes GET DATA on tag answer '6982' until VerifyPIN is called.
func (c *Card) Protect(tag tlv.Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.protected[tag.String()] = true
}

// VerifyPIN sets the PIN verified security status.
func (c *Card) VerifyPIN() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verified = true
}

// FailWith makes Transmit return err until called again with nil.
func (c *Card) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fault = err
}

// Received returns the commands transmitted so far.
func (c *Card) Received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.received))
	copy(out, c.received)
	return out
}

// Overlaps returns how many commands arrived while another was in flight.
func (c *Card) Overlaps() int {
	return int(atomic.LoadInt32(&c.overlaps))
}

// Transmit processes one command APDU.
func (c *Card) Transmit(cmd []byte) ([]byte, error) {
	if atomic.AddInt32(&c.inflight, 1) > 1 {
		atomic.AddInt32(&c.overlaps, 1)
	}
	defer atomic.AddInt32(&c.inflight, -1)

	if c.Latency > 0 {
		time.Sleep(c.Latency)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.received = append(c.received, append([]byte(nil), cmd...))
	if c.fault != nil {
		return nil, c.fault
	}

	resp := c.process(cmd)
	c.log.WithFields(log.Fields{
		"cmd": strings.ToUpper(hex.EncodeToString(cmd)),
		"sw":  resp.Status.String(),
	}).Debug("apdu")
	return resp.Bytes(), nil
}

func (c *Card) process(raw []byte) *iso7816.ResponseAPDU {
	cmd, err := iso7816.ParseCommandAPDU(raw)
	if err != nil {
		return status(iso7816.SW_ERR_WRONG_LENGTH)
	}

	if cmd.Instruction.Raw != iso7816.INS_GET_RESPONSE {
		c.pending = nil
	}

	switch cmd.Instruction.Raw {
	case iso7816.INS_SELECT:
		return c.selectApplication(cmd)
	case iso7816.INS_GET_DATA_BER:
		return c.getData(cmd)
	case iso7816.INS_GET_RESPONSE:
		return c.getResponse(cmd)
	default:
		return status(iso7816.SW_ERR_INS_INVALID)
	}
}

func (c *Card) selectApplication(cmd *iso7816.CommandAPDU) *iso7816.ResponseAPDU {
	if cmd.P1 != byte(iso7816.SelectByDFName) || cmd.P2 != 0x00 {
		return status(iso7816.SW_ERR_INCORRECT_PARAMS_P1P2)
	}

	// A truncated AID selects the application it prefixes.
	want := hexKey(cmd.Data)
	for aid, props := range c.apps {
		if len(want) > 0 && strings.HasPrefix(aid, want) {
			c.selected = aid
			return c.respond(props)
		}
	}

	c.selected = ""
	return status(iso7816.SW_ERR_FILE_NOT_FOUND)
}

func (c *Card) getData(cmd *iso7816.CommandAPDU) *iso7816.ResponseAPDU {
	if cmd.P1 != iso7816.GetDataP1 || cmd.P2 != iso7816.GetDataP2 {
		return status(iso7816.SW_ERR_INCORRECT_PARAMS_P1P2)
	}
	if c.selected == "" {
		return status(iso7816.SW_ERR_COND_OF_USE_NOT_SAT)
	}

	tag, err := tlv.GetValue(cmd.Data, 0x5C)
	if err != nil || len(tag) == 0 {
		return status(iso7816.SW_ERR_INCORRECT_PARAMS_DATA)
	}

	key := tlv.Tag(tag).String()
	contents, ok := c.objects[key]
	if !ok {
		return status(iso7816.SW_ERR_FILE_NOT_FOUND)
	}
	if c.protected[key] && !c.verified {
		return status(iso7816.SW_ERR_SECURITY_STATUS_NOT_SAT)
	}
	return c.respond(contents)
}

func (c *Card) getResponse(cmd *iso7816.CommandAPDU) *iso7816.ResponseAPDU {
	if len(c.pending) == 0 {
		return status(iso7816.SW_ERR_COND_OF_USE_NOT_SAT)
	}
	data := c.pending
	c.pending = nil
	return c.respond(data)
}

// respond answers data, keeping what exceeds ChunkSize for GET RESPONSE.
func (c *Card) respond(data []byte) *iso7816.ResponseAPDU {
	if c.ChunkSize <= 0 || len(data) <= c.ChunkSize {
		return &iso7816.ResponseAPDU{Data: append([]byte(nil), data...), Status: iso7816.SW_NO_ERROR}
	}

	c.pending = append([]byte(nil), data[c.ChunkSize:]...)
	left := len(c.pending)
	if left > iso7816.MaxShortLe {
		left = iso7816.MaxShortLe
	}
	return &iso7816.ResponseAPDU{
		Data:   append([]byte(nil), data[:c.ChunkSize]...),
		Status: iso7816.NewStatusWord(0x61, byte(left)),
	}
}

func status(sw iso7816.StatusWord) *iso7816.ResponseAPDU {
	return &iso7816.ResponseAPDU{Status: sw}
}

func hexKey(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}
