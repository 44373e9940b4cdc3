package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/drivers/loopback"
	"github.com/kestrel-audio/midi/midi1"
	"github.com/kestrel-audio/midi/midierr"
	"github.com/kestrel-audio/midi/output"
	"github.com/kestrel-audio/midi/port"
)

func TestIn_ReceivesDecodedMIDI1Message(t *testing.T) {
	session := loopback.Default()
	session.Declare("input-test-cable", port.Output, port.TransportVirtual)

	var got []byte
	in, err := New(drivers.Loopback, port.ProtocolMIDI1, Config{
		GenericInConfig: drivers.GenericInConfig{
			OnMessage: func(b []byte, _ int64) { got = b },
		},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, in.OpenVirtual("input-test-cable"))

	out, err := output.New(drivers.Loopback, port.ProtocolMIDI1, output.Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, out.OpenVirtual("input-test-cable"))

	require.NoError(t, out.SendMessage(midi1.Message{Bytes: []byte{0x91, 0x40, 0x7F}}))
	assert.Equal(t, []byte{0x91, 0x40, 0x7F}, got)
}

func TestIn_ManualPollAgainstLoopbackDeliversOnSend(t *testing.T) {
	session := loopback.Default()
	session.Declare("input-test-manual-poll", port.Output, port.TransportVirtual)

	var got []byte
	in, err := New(drivers.Loopback, port.ProtocolMIDI1, Config{
		GenericInConfig: drivers.GenericInConfig{
			ManualPoll: true,
			OnMessage:  func(b []byte, _ int64) { got = b },
		},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, in.OpenVirtual("input-test-manual-poll"))

	out, err := output.New(drivers.Loopback, port.ProtocolMIDI1, output.Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, out.OpenVirtual("input-test-manual-poll"))

	require.NoError(t, out.SendMessage(midi1.Message{Bytes: []byte{0x90, 0x3C, 0x40}}))
	assert.Equal(t, []byte{0x90, 0x3C, 0x40}, got)
	assert.True(t, in.Poll())
}

func TestIn_PollReturnsFalseWithoutManualPoll(t *testing.T) {
	in := &In{}
	assert.False(t, in.Poll())
}

func TestIn_MalformedRawMessageReportsError(t *testing.T) {
	var gotErr error
	in := &In{cfg: Config{GenericInConfig: drivers.GenericInConfig{OnError: func(e error) { gotErr = e }}}}
	in.receive(drivers.RawMessage{})

	require.Error(t, gotErr)
	me, ok := gotErr.(*midierr.Error)
	require.True(t, ok)
	assert.Equal(t, midierr.Malformed, me.Kind)
}
