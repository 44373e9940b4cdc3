package loopback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/port"
)

func TestSession_DeclareIsIdempotent(t *testing.T) {
	s := NewSession()
	id1 := s.Declare("cable", port.Input, port.TransportVirtual)
	id2 := s.Declare("cable", port.Input, port.TransportVirtual)
	assert.Equal(t, id1, id2)
	assert.Len(t, s.list(port.Input), 1)
}

func TestSession_DeliverRoutesToMatchingInput(t *testing.T) {
	s := NewSession()
	out := newOut(s)
	in := newIn(s)

	var gotBytes []byte
	require.NoError(t, in.OpenVirtual("cable"))
	in.SetReceiver(func(raw drivers.RawMessage) { gotBytes = raw.Bytes })

	require.NoError(t, out.OpenVirtual("cable"))
	require.NoError(t, out.Send([]byte{0x90, 0x3C, 0x7F}))

	assert.Equal(t, []byte{0x90, 0x3C, 0x7F}, gotBytes)
}

func TestSession_DeliverWithNoSubscriberErrors(t *testing.T) {
	s := NewSession()
	out := newOut(s)
	require.NoError(t, out.OpenVirtual("nobody-home"))
	err := out.Send([]byte{0x80, 0x3C, 0x00})
	require.Error(t, err)
}

func TestSession_RemoveUnregistersPort(t *testing.T) {
	s := NewSession()
	s.Declare("cable", port.Output, port.TransportVirtual)
	require.Len(t, s.list(port.Output), 1)
	s.Remove("cable", port.Output)
	assert.Empty(t, s.list(port.Output))
}

func TestUMPOut_RejectsMIDI1Send(t *testing.T) {
	s := NewSession()
	out := newUMPOut(s)
	require.NoError(t, out.OpenVirtual("cable"))
	err := out.Send([]byte{0x90, 0x3C, 0x7F})
	require.Error(t, err)
}

func TestInBackend_CloseWithoutOpenErrors(t *testing.T) {
	in := newIn(NewSession())
	err := in.Close()
	require.Error(t, err)
}
