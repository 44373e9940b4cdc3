package passthrough

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-audio/midi/drivers"
	_ "github.com/kestrel-audio/midi/drivers/loopback"
	"github.com/kestrel-audio/midi/input"
	"github.com/kestrel-audio/midi/output"
	"github.com/kestrel-audio/midi/port"
)

func TestRouter_ForwardFansOutToAllOutputs(t *testing.T) {
	var gotA, gotB []byte
	inA, err := input.New(drivers.Loopback, port.ProtocolMIDI1, input.Config{
		GenericInConfig: drivers.GenericInConfig{OnMessage: func(b []byte, _ int64) { gotA = b }},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, inA.OpenVirtual("passthrough-test-out-a"))

	inB, err := input.New(drivers.Loopback, port.ProtocolMIDI1, input.Config{
		GenericInConfig: drivers.GenericInConfig{OnMessage: func(b []byte, _ int64) { gotB = b }},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, inB.OpenVirtual("passthrough-test-out-b"))

	outA, err := output.New(drivers.Loopback, port.ProtocolMIDI1, output.Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, outA.OpenVirtual("passthrough-test-out-a"))

	outB, err := output.New(drivers.Loopback, port.ProtocolMIDI1, output.Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, outB.OpenVirtual("passthrough-test-out-b"))

	r := New(nil)
	route := r.AddRoute("test-route", inA, outA, outB)

	r.Forward(route, []byte{0x90, 0x3C, 0x7F}, 0)

	assert.Equal(t, []byte{0x90, 0x3C, 0x7F}, gotA)
	assert.Equal(t, []byte{0x90, 0x3C, 0x7F}, gotB)

	require.NoError(t, r.Close())
}

func TestRouter_AutoOpenMatchIsCaseInsensitive(t *testing.T) {
	r := New(nil)
	r.EnableAutoOpen(nil, "USB")
	assert.True(t, r.Matches("My USB Keyboard"))
	assert.True(t, r.Matches("my usb keyboard"))
	assert.False(t, r.Matches("Bluetooth Controller"))
}

func TestRouter_MatchesFalseBeforeAutoOpenEnabled(t *testing.T) {
	r := New(nil)
	assert.False(t, r.Matches("anything"))
}

func TestRouter_RoutesReturnsSnapshot(t *testing.T) {
	r := New(nil)
	assert.Empty(t, r.Routes())
	r.AddRoute("a", nil)
	require.Len(t, r.Routes(), 1)
	assert.Equal(t, "a", r.Routes()[0].Name)
}
