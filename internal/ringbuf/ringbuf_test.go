package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	r := New(16)
	n, ok := r.Write([]byte("hello"))
	require.True(t, ok)
	assert.Equal(t, 5, n)

	buf := make([]byte, 5)
	got := r.Read(buf)
	assert.Equal(t, 5, got)
	assert.Equal(t, "hello", string(buf))
}

func TestWriteRejectsOverflow(t *testing.T) {
	r := New(4)
	_, ok := r.Write([]byte("toolong!!"))
	assert.False(t, ok)
}

func TestGrowPreservesUnreadData(t *testing.T) {
	r := New(4)
	r.Write([]byte("ab"))
	r.Grow()
	assert.Equal(t, 8, r.Cap())
	buf := make([]byte, 2)
	r.Read(buf)
	assert.Equal(t, "ab", string(buf))
}
