package output

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-audio/midi/drivers"
	_ "github.com/kestrel-audio/midi/drivers/loopback"
	"github.com/kestrel-audio/midi/input"
	"github.com/kestrel-audio/midi/midi1"
	"github.com/kestrel-audio/midi/port"
	"github.com/kestrel-audio/midi/ump"
)

func TestOut_SendMessageChunksLongSysEx(t *testing.T) {
	var mu sync.Mutex
	var chunks [][]byte
	// Observe the raw backend deliveries: an input.In would run them through
	// its decoder and reassemble the chunks into one SysEx message.
	c, err := drivers.Select(drivers.Loopback, drivers.Want(port.ProtocolMIDI1))
	require.NoError(t, err)
	in, err := c.NewIn(drivers.GenericInConfig{}, nil)
	require.NoError(t, err)
	in.SetReceiver(func(raw drivers.RawMessage) {
		mu.Lock()
		defer mu.Unlock()
		cp := make([]byte, len(raw.Bytes))
		copy(cp, raw.Bytes)
		chunks = append(chunks, cp)
	})
	require.NoError(t, in.OpenVirtual("output-test-chunking"))

	out, err := New(drivers.Loopback, port.ProtocolMIDI1, Config{
		GenericOutConfig: drivers.GenericOutConfig{
			Chunking: drivers.ChunkingParams{
				Size:     2,
				Interval: time.Millisecond,
				Wait:     func(time.Duration, int) bool { return true },
			},
		},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, out.OpenVirtual("output-test-chunking"))

	body := []byte{0xF0, 0x01, 0x02, 0x03, 0x04, 0xF7}
	require.NoError(t, out.SendMessage(midi1.Message{Bytes: body}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, chunks, 3)
	assert.Equal(t, []byte{0xF0, 0x01}, chunks[0])
	assert.Equal(t, []byte{0x02, 0x03}, chunks[1])
	assert.Equal(t, []byte{0x04, 0xF7}, chunks[2])
}

func TestOut_SendMessageWithoutChunkingSendsWhole(t *testing.T) {
	var mu sync.Mutex
	var chunks [][]byte
	in, err := input.New(drivers.Loopback, port.ProtocolMIDI1, input.Config{
		GenericInConfig: drivers.GenericInConfig{
			OnMessage: func(b []byte, _ int64) {
				mu.Lock()
				defer mu.Unlock()
				cp := make([]byte, len(b))
				copy(cp, b)
				chunks = append(chunks, cp)
			},
		},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, in.OpenVirtual("output-test-whole"))

	out, err := New(drivers.Loopback, port.ProtocolMIDI1, Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, out.OpenVirtual("output-test-whole"))

	body := []byte{0xF0, 0x01, 0x02, 0x03, 0x04, 0xF7}
	require.NoError(t, out.SendMessage(midi1.Message{Bytes: body}))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, chunks, 1)
	assert.Equal(t, body, chunks[0])
}

func TestOut_SendUMPSkipsNoopPacket(t *testing.T) {
	var mu sync.Mutex
	var received [][]uint32
	in, err := input.New(drivers.LoopbackUMP, port.ProtocolMIDI2, input.Config{
		GenericInConfig: drivers.GenericInConfig{
			OnUMP: func(words []uint32, _ int64) {
				mu.Lock()
				defer mu.Unlock()
				cp := make([]uint32, len(words))
				copy(cp, words)
				received = append(received, cp)
			},
		},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, in.OpenVirtual("output-test-ump-noop"))

	out, err := New(drivers.LoopbackUMP, port.ProtocolMIDI2, Config{}, nil)
	require.NoError(t, err)
	require.NoError(t, out.OpenVirtual("output-test-ump-noop"))

	packets := []ump.Packet{
		{Words: []uint32{0x00000000}},   // NOOP utility message
		{Words: []uint32{0x40913C00, 0x40000000}},
	}
	err = out.SendUMP(packets)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, uint32(0x40913C00), received[0][0])
}
