package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-audio/midi/midi1"
	"github.com/kestrel-audio/midi/ump"
)

func TestUMPToMIDI1_LossyVelocityScaling(t *testing.T) {
	p := ump.Packet{Words: []uint32{0x40913C00, 0xFFFF0000}}
	msg, err := UMPToMIDI1(p, nil)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, []byte{0x91, 0x3C, 0x7F}, msg.Bytes)
}

func TestUMPToMIDI1_NoteOnVelocityZeroPreserved(t *testing.T) {
	// Velocity 0 is preserved rather than remapped to note-off.
	p := ump.Packet{Words: []uint32{0x40913C00, 0x00000000}}
	msg, err := UMPToMIDI1(p, nil)
	require.NoError(t, err)
	assert.Equal(t, byte(0), msg.Bytes[2])
}

func TestMIDI1ToUMP_RoundTripChannelVoice(t *testing.T) {
	// ump_to_midi1(midi1_to_ump(m)) == m, for messages representable in UMP.
	cases := []midi1.Message{
		{Bytes: []byte{0x91, 0x3C, 0x64}},
		{Bytes: []byte{0x81, 0x3C, 0x00}},
		{Bytes: []byte{0xB2, 0x07, 0x7F}},
		{Bytes: []byte{0xC3, 0x05}},
		{Bytes: []byte{0xD4, 0x10}},
		{Bytes: []byte{0xE5, 0x00, 0x40}},
	}
	for _, m := range cases {
		var ctx Context
		pkts, err := ctx.MIDI1ToUMP(m)
		require.NoError(t, err)
		require.Len(t, pkts, 1)
		got, err := UMPToMIDI1(pkts[0], nil)
		require.NoError(t, err)
		assert.Equal(t, m.Bytes, got.Bytes, "roundtrip %x", m.Bytes)
	}
}

func TestSysExAccumulator_MultiPacketReassembly(t *testing.T) {
	var ctx Context
	ctx.Group = 0
	body := make([]byte, 14) // forces start+continue+end (6+6+2)
	for i := range body {
		body[i] = byte(i + 1)
	}
	m := midi1.Message{Bytes: append(append([]byte{midi1.SysExStart}, body...), midi1.SysExEnd)}

	pkts, err := ctx.MIDI1ToUMP(m)
	require.NoError(t, err)
	require.Len(t, pkts, 3)

	var acc SysExAccumulator
	var final *midi1.Message
	for _, p := range pkts {
		msg, err := acc.Feed(p)
		require.NoError(t, err)
		if msg != nil {
			final = msg
		}
	}
	require.NotNil(t, final)
	assert.Equal(t, m.Bytes, final.Bytes)
}

func TestUMPToMIDI1_Unrepresentable(t *testing.T) {
	// a type-4 opcode with no MIDI1 analog (e.g. 0xF0 per-note management,
	// not a real channel-voice opcode) should be reported Unrepresentable.
	p := ump.Packet{Words: []uint32{0x40F00000, 0x00000000}}
	_, err := UMPToMIDI1(p, nil)
	assert.Error(t, err)
}
