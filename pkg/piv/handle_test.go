package piv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/piv-conformance/pkg/iso7816"
	"github.com/gregLibert/piv-conformance/pkg/simcard"
)

func TestHandle_Exchange(t *testing.T) {
	card := simcard.New()
	h := NewHandle(card)
	require.True(t, h.Connected())

	var got iso7816.Transmitter
	require.NoError(t, h.Exchange(func(ch iso7816.Transmitter) error {
		got = ch
		return nil
	}))
	assert.Same(t, card, got)

	boom := errors.New("boom")
	assert.ErrorIs(t, h.Exchange(func(iso7816.Transmitter) error { return boom }), boom)
}

func TestHandle_NoConnection(t *testing.T) {
	called := false
	fn := func(iso7816.Transmitter) error {
		called = true
		return nil
	}

	var nilHandle *Handle
	assert.False(t, nilHandle.Connected())
	assert.ErrorIs(t, nilHandle.Exchange(fn), ErrNoConnection)

	h := NewHandle(simcard.New())
	h.Release()
	assert.ErrorIs(t, h.Exchange(fn), ErrNoConnection)
	assert.False(t, called)

	assert.Nil(t, h.Release())
}
