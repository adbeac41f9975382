package piv

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/piv-conformance/pkg/dataobject"
	"github.com/gregLibert/piv-conformance/pkg/simcard"
	"github.com/gregLibert/piv-conformance/pkg/tlv"
)

// transmitFunc answers every command with the same function.
type transmitFunc func(cmd []byte) ([]byte, error)

func (f transmitFunc) Transmit(cmd []byte) ([]byte, error) { return f(cmd) }

func newTestClient() (*Client, *memory.Handler) {
	h := memory.New()
	return NewClient(WithLogger(&log.Logger{Handler: h, Level: log.DebugLevel})), h
}

func entriesAt(h *memory.Handler, level log.Level) []*log.Entry {
	var out []*log.Entry
	for _, e := range h.Entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func newSelectedCard(t *testing.T, opts ...simcard.Option) (*simcard.Card, *Handle, *Client) {
	t.Helper()
	card, err := simcard.NewPIVCard(opts...)
	require.NoError(t, err)

	h := NewHandle(card)
	c, _ := newTestClient()
	require.Equal(t, StatusOK, c.SelectApplication(h, PIVApplicationID, nil))
	return card, h, c
}

func TestClient_SelectApplication(t *testing.T) {
	card, err := simcard.NewPIVCard()
	require.NoError(t, err)
	c, _ := newTestClient()

	var props ApplicationProperties
	st := c.SelectApplication(NewHandle(card), PIVApplicationID, &props)

	require.Equal(t, StatusOK, st)
	assert.True(t, props.IsSet())
	assert.Equal(t, simcard.PIVApplicationProperties, props.Bytes())
}

func TestClient_SelectApplication_NotFound(t *testing.T) {
	card, err := simcard.NewPIVCard()
	require.NoError(t, err)
	c, logs := newTestClient()

	var props ApplicationProperties
	st := c.SelectApplication(NewHandle(card), ApplicationID{0xA0, 0x00, 0x00, 0x00, 0x01}, &props)

	assert.Equal(t, StatusCardApplicationNotFound, st)
	assert.False(t, props.IsSet())
	assert.Nil(t, props.Bytes())

	infos := entriesAt(logs, log.InfoLevel)
	require.Len(t, infos, 1)
	assert.Equal(t, "A000000001", infos[0].Fields["aid"])
}

func TestClient_SelectApplication_Chained(t *testing.T) {
	card, err := simcard.NewPIVCard(simcard.WithChunkSize(5))
	require.NoError(t, err)
	c, _ := newTestClient()

	var props ApplicationProperties
	require.Equal(t, StatusOK, c.SelectApplication(NewHandle(card), PIVApplicationID, &props))
	assert.Equal(t, simcard.PIVApplicationProperties, props.Bytes())
	assert.Greater(t, len(card.Received()), 1)
}

func TestClient_SelectApplication_EmptyAID(t *testing.T) {
	card := simcard.New()
	c, _ := newTestClient()

	var props ApplicationProperties
	assert.Equal(t, StatusCardApplicationNotFound, c.SelectApplication(NewHandle(card), nil, &props))
	assert.False(t, props.IsSet())
	assert.Empty(t, card.Received())
}

func TestClient_GetData_CapabilityContainer(t *testing.T) {
	_, h, c := newSelectedCard(t)

	obj := dataobject.NewCapabilityContainer()
	st := c.GetData(h, dataobject.OIDCardCapabilityContainer, obj)

	require.Equal(t, StatusOK, st)
	assert.Equal(t, dataobject.OIDCardCapabilityContainer, obj.OID())
	assert.Equal(t, dataobject.StateRaw, obj.State())

	require.NoError(t, obj.Decode())
	assert.Equal(t, tlv.Hex("A0 00 00 01 16"), obj.CardIdentifier)
}

func TestClient_GetData_Chained(t *testing.T) {
	_, h, c := newSelectedCard(t, simcard.WithChunkSize(16))

	obj := dataobject.NewCertificateContainer(dataobject.OIDPIVAuthenticationCertificate)
	require.Equal(t, StatusOK, c.GetData(h, dataobject.OIDPIVAuthenticationCertificate, obj))
	require.NoError(t, obj.Decode())

	cert, err := obj.Certificate()
	require.NoError(t, err)
	assert.Equal(t, "PIV Authentication", cert.Subject.CommonName)
}

func TestClient_GetData_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		oid  string
		want Status
	}{
		{"present", dataobject.OIDCHUID, StatusOK},
		{"absent", dataobject.OIDSecurityObject, StatusDataObjectNotFound},
		{"pin protected", dataobject.OIDPrintedInformation, StatusSecurityConditionsNotSatisfied},
		{"unknown oid", "1.2.3.4", StatusInvalidOID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h, c := newSelectedCard(t)
			obj := dataobject.NewGeneric(tt.oid)

			assert.Equal(t, tt.want, c.GetData(h, tt.oid, obj))
			if tt.want != StatusOK {
				assert.Equal(t, dataobject.StateEmpty, obj.State())
			}
		})
	}
}

func TestClient_GetData_AfterVerify(t *testing.T) {
	card, h, c := newSelectedCard(t)
	card.VerifyPIN()

	obj := dataobject.NewPrintedInformation()
	require.Equal(t, StatusOK, c.GetData(h, dataobject.OIDPrintedInformation, obj))
	require.NoError(t, obj.Decode())
	assert.Equal(t, []byte("John Doe"), obj.Name)
}

func TestClient_GetData_UnknownOIDIsNotTransmitted(t *testing.T) {
	card, h, c := newSelectedCard(t)
	before := len(card.Received())

	assert.Equal(t, StatusInvalidOID, c.GetData(h, "2.16.840.1.101.3.7.2.99.99", nil))
	assert.Len(t, card.Received(), before)
}

func TestClient_GetData_SecurityViolation(t *testing.T) {
	card, h, c := newSelectedCard(t)
	card.FailWith(fmt.Errorf("reader: %w", ErrSecurityViolation))

	assert.Equal(t, StatusSecurityConditionsNotSatisfied, c.GetData(h, dataobject.OIDCHUID, nil))
}

func TestClient_TransportFailure(t *testing.T) {
	card, h, c := newSelectedCard(t)
	card.FailWith(errors.New("card removed"))

	assert.Equal(t, StatusConnectionFailure, c.GetData(h, dataobject.OIDCHUID, nil))
	assert.Equal(t, StatusConnectionFailure, c.SelectApplication(h, PIVApplicationID, nil))
}

func TestClient_UnexpectedStatusWord(t *testing.T) {
	card := transmitFunc(func([]byte) ([]byte, error) {
		return tlv.Hex("6F 00"), nil
	})
	c, logs := newTestClient()
	h := NewHandle(card)

	var props ApplicationProperties
	assert.Equal(t, StatusConnectionFailure, c.SelectApplication(h, PIVApplicationID, &props))
	assert.False(t, props.IsSet())

	obj := dataobject.NewCHUID()
	assert.Equal(t, StatusConnectionFailure, c.GetData(h, dataobject.OIDCHUID, obj))
	assert.Nil(t, obj.Bytes())

	errs := entriesAt(logs, log.ErrorLevel)
	require.Len(t, errs, 2)
	assert.Equal(t, "6F00", errs[0].Fields["sw"])
}

func TestClient_MalformedResponse(t *testing.T) {
	card := transmitFunc(func([]byte) ([]byte, error) {
		return []byte{0x90}, nil
	})
	c, _ := newTestClient()

	assert.Equal(t, StatusConnectionFailure, c.GetData(NewHandle(card), dataobject.OIDCHUID, nil))
}

func TestClient_InvalidHandle(t *testing.T) {
	c, _ := newTestClient()

	handles := map[string]*Handle{
		"nil handle":      nil,
		"nil card":        NewHandle(nil),
		"released handle": releasedHandle(),
	}

	for name, h := range handles {
		t.Run(name, func(t *testing.T) {
			var props ApplicationProperties
			assert.Equal(t, StatusInvalidCardHandle, c.SelectApplication(h, PIVApplicationID, &props))
			assert.False(t, props.IsSet())
			assert.Equal(t, StatusInvalidCardHandle, c.GetData(h, dataobject.OIDCHUID, nil))
		})
	}
}

func releasedHandle() *Handle {
	h := NewHandle(simcard.New())
	h.Release()
	return h
}

func TestClient_UnsupportedOperations(t *testing.T) {
	_, h, c := newSelectedCard(t)

	assert.Equal(t, StatusFunctionNotSupported, c.Login(h, []byte("123456")))
	assert.Equal(t, StatusFunctionNotSupported, c.Logout(h))

	var out []byte
	assert.Equal(t, StatusFunctionNotSupported, c.Crypt(h, 0x11, 0x9A, []byte{0x01}, &out))
	assert.Nil(t, out)
}

func TestClient_OneExchangePerHandle(t *testing.T) {
	card, h, c := newSelectedCard(t, simcard.WithLatency(time.Millisecond), simcard.WithChunkSize(8))

	var wg sync.WaitGroup
	statuses := make([]Status, 16)
	for i := range statuses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i] = c.GetData(h, dataobject.OIDCardCapabilityContainer, dataobject.NewCapabilityContainer())
		}(i)
	}
	wg.Wait()

	for _, st := range statuses {
		assert.Equal(t, StatusOK, st)
	}
	assert.Zero(t, card.Overlaps())
}

func TestClient_Rebind(t *testing.T) {
	first, h, c := newSelectedCard(t)

	second := simcard.New()
	second.AddApplication(simcard.PIVApplicationID, simcard.PIVApplicationProperties)
	h.Rebind(second)

	assert.Equal(t, StatusOK, c.SelectApplication(h, PIVApplicationID, nil))
	assert.Equal(t, StatusDataObjectNotFound, c.GetData(h, dataobject.OIDCardCapabilityContainer, nil))

	assert.Len(t, first.Received(), 1)
	assert.Len(t, second.Received(), 2)
	assert.Same(t, second, h.Release())
	assert.False(t, h.Connected())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "PIV_OK", StatusOK.String())
	assert.Equal(t, "PIV_DATA_OBJECT_NOT_FOUND", StatusDataObjectNotFound.String())
	assert.Equal(t, "PIV_FUNCTION_NOT_SUPPORTED", StatusFunctionNotSupported.String())
	assert.Equal(t, "Status(42)", Status(42).String())
}
