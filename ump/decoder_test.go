package ump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_SingleWordPacket(t *testing.T) {
	var d Decoder
	// type 0x2 (MIDI1 channel voice) -> 1 word.
	pkts, err := d.Feed([]uint32{0x20913C7F}, 42)
	require.NoError(t, err)
	require.Len(t, pkts, 1)
	assert.Equal(t, []uint32{0x20913C7F}, pkts[0].Words)
	assert.Equal(t, int64(42), pkts[0].Timestamp)
	assert.Equal(t, MessageType(0x2), pkts[0].Type())
}

func TestDecoder_MultiWordPacket(t *testing.T) {
	var d Decoder
	// type 0x4 (MIDI2 channel voice) -> 2 words, delivered across two Feeds.
	pkts, err := d.Feed([]uint32{0x40913C00}, 1)
	require.NoError(t, err)
	assert.Empty(t, pkts)
	assert.True(t, d.Pending())

	pkts, err = d.Feed([]uint32{0xFFFF0000}, 2)
	require.NoError(t, err)
	require.Len(t, pkts, 1)
	assert.Equal(t, []uint32{0x40913C00, 0xFFFF0000}, pkts[0].Words)
	assert.Equal(t, int64(1), pkts[0].Timestamp)
}

func TestDecoder_TypeCIsNotAnUnknownType(t *testing.T) {
	var d Decoder
	_, err := d.Feed([]uint32{0xC0000000}, 0)
	assert.NoError(t, err) // 0xC is a valid 3-word type; not an error by itself
}

func TestSizeInWords_PureFunctionOfNibble(t *testing.T) {
	for nibble, want := range map[uint32]int{
		0x0: 1, 0x1: 1, 0x2: 1, 0x3: 2, 0x4: 2,
		0x5: 4, 0x6: 1, 0x7: 1, 0x8: 2, 0x9: 2,
		0xA: 2, 0xB: 3, 0xC: 3, 0xD: 4, 0xE: 4, 0xF: 4,
	} {
		got, err := SizeInWords(nibble << 28)
		require.NoError(t, err)
		assert.Equal(t, want, got, "nibble %X", nibble)
	}
}

func TestDecoder_RoundTripSingle(t *testing.T) {
	var d Decoder
	pkts, err := d.Feed([]uint32{0x00000000}, 5)
	require.NoError(t, err)
	require.Len(t, pkts, 1)
	assert.Equal(t, 1, func() int { n, _ := SizeInWords(pkts[0].Words[0]); return n }())
}
