package timestamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngine_NoTimestamp(t *testing.T) {
	e := Engine{Mode: NoTimestamp}
	e.Open()
	assert.Equal(t, int64(0), e.Next(func() int64 { return 999 }, 0))
}

func TestEngine_RelativeMonotonicNonDecreasing(t *testing.T) {
	e := Engine{Mode: Relative, Backend: BackendInfo{HasAbsoluteTimestamps: true}}
	e.Open()
	clock := int64(100)
	toNS := func() int64 { return clock }

	first := e.Next(toNS, 0)
	assert.Equal(t, int64(0), first)

	clock = 150
	second := e.Next(toNS, 0)
	assert.Equal(t, int64(50), second)

	clock = 400
	third := e.Next(toNS, 0)
	assert.Equal(t, int64(250), third)
}

func TestEngine_AbsoluteEpochAtOpen(t *testing.T) {
	e := Engine{Mode: Absolute, Backend: BackendInfo{HasAbsoluteTimestamps: true}}
	e.Open()
	clock := int64(1000)
	toNS := func() int64 { return clock }

	assert.Equal(t, int64(0), e.Next(toNS, 0))
	clock = 1500
	assert.Equal(t, int64(500), e.Next(toNS, 0))
}

func TestEngine_SystemMonotonicFallback(t *testing.T) {
	e := Engine{
		Mode:               SystemMonotonic,
		Backend:            BackendInfo{AbsoluteIsMonotonic: false},
		ProcessMonotonicNS: func() int64 { return 77 },
	}
	e.Open()
	assert.Equal(t, int64(77), e.Next(func() int64 { return 1 }, 0))
}

func TestEngine_AudioFrameFallsThroughToAbsolute(t *testing.T) {
	e := Engine{Mode: AudioFrame, Backend: BackendInfo{HasSamples: false, HasAbsoluteTimestamps: true}}
	e.Open()
	clock := int64(10)
	toNS := func() int64 { return clock }
	assert.Equal(t, int64(0), e.Next(toNS, 0))
	clock = 30
	assert.Equal(t, int64(20), e.Next(toNS, 0))
}

func TestEngine_AudioFrameUsesSampleWhenAvailable(t *testing.T) {
	e := Engine{Mode: AudioFrame, Backend: BackendInfo{HasSamples: true}}
	e.Open()
	assert.Equal(t, int64(4096), e.Next(func() int64 { return 0 }, 4096))
}

func TestEngine_MonotonicNonDecreasingAcrossModes(t *testing.T) {
	for _, mode := range []Mode{Relative, Absolute, SystemMonotonic} {
		e := Engine{Mode: mode, Backend: BackendInfo{HasAbsoluteTimestamps: true, AbsoluteIsMonotonic: true}}
		e.Open()
		clock := int64(0)
		toNS := func() int64 { return clock }
		var prev int64 = -1
		for i := 0; i < 5; i++ {
			clock += 10
			ts := e.Next(toNS, 0)
			assert.GreaterOrEqual(t, ts, prev, "mode %v", mode)
			prev = ts
		}
	}
}
