package midi1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_RunningStatus(t *testing.T) {
	var d Decoder
	msgs := d.Feed([]byte{0x90, 0x3C, 0x7F, 0x3E, 0x7F, 0x40, 0x00}, 100)
	require.Len(t, msgs, 3)
	assert.Equal(t, []byte{0x90, 0x3C, 0x7F}, msgs[0].Bytes)
	assert.Equal(t, []byte{0x90, 0x3E, 0x7F}, msgs[1].Bytes)
	assert.Equal(t, []byte{0x90, 0x40, 0x00}, msgs[2].Bytes)
	for _, m := range msgs {
		assert.Equal(t, int64(100), m.Timestamp)
	}
}

func TestDecoder_RealTimeInsideSysEx(t *testing.T) {
	var d Decoder
	msgs := d.FeedFunc([]byte{0xF0, 0x7E, 0x7F, 0x06, 0x01, 0xF8, 0xF7}, func(i int) int64 {
		return int64(i)
	})
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte{0xF8}, msgs[0].Bytes)
	assert.Equal(t, int64(5), msgs[0].Timestamp)
	assert.Equal(t, []byte{0xF0, 0x7E, 0x7F, 0x06, 0x01, 0xF7}, msgs[1].Bytes)
	assert.Equal(t, int64(0), msgs[1].Timestamp)
}

func TestDecoder_SysExTruncatedByStatus(t *testing.T) {
	var warnings []string
	d := Decoder{OnWarning: func(s string) { warnings = append(warnings, s) }}
	msgs := d.Feed([]byte{0xF0, 0x01, 0x02, 0x90, 0x3C, 0x40}, 1)
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte{0xF0, 0x01, 0x02}, msgs[0].Bytes)
	assert.Equal(t, []byte{0x90, 0x3C, 0x40}, msgs[1].Bytes)
	assert.NotEmpty(t, warnings)
}

func TestDecoder_DataByteWithNoRunningStatus(t *testing.T) {
	var warnings []string
	d := Decoder{OnWarning: func(s string) { warnings = append(warnings, s) }}
	msgs := d.Feed([]byte{0x01, 0x02}, 1)
	assert.Empty(t, msgs)
	assert.Len(t, warnings, 2)
}

func TestDecoder_SystemCommonClearsRunningStatus(t *testing.T) {
	var d Decoder
	// note-on running status, then a song-select system common, then a bare
	// data byte (which must now be discarded, not interpreted as note-on).
	var warnings []string
	d.OnWarning = func(s string) { warnings = append(warnings, s) }
	msgs := d.Feed([]byte{0x90, 0x3C, 0x7F, 0xF3, 0x01, 0x02}, 1)
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte{0x90, 0x3C, 0x7F}, msgs[0].Bytes)
	assert.Equal(t, []byte{0xF3, 0x01}, msgs[1].Bytes)
	assert.NotEmpty(t, warnings) // trailing 0x02 has no status
}

func TestRoundTrip_EncodeDecode(t *testing.T) {
	var d Decoder
	msgs := d.Feed([]byte{0x90, 0x3C, 0x7F, 0x3E, 0x7F}, 0)
	e := Encoder{UseRunningStatus: true}
	got := e.EncodeAll(msgs)
	assert.Equal(t, []byte{0x90, 0x3C, 0x7F, 0x3E, 0x7F}, got)
}

func TestRoundTrip_SingleMessage(t *testing.T) {
	// decode([m.status ++ m.data]) should yield exactly [m].
	for _, b := range [][]byte{
		{0x80, 0x40, 0x00},
		{0xC0, 0x05},
		{0xF8},
		{0xF0, 0x01, 0x02, 0xF7},
	} {
		var d Decoder
		msgs := d.Feed(b, 1)
		require.Len(t, msgs, 1, "%x", b)
		assert.Equal(t, b, msgs[0].Bytes)
	}
}
