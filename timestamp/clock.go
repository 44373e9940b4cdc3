// Package timestamp implements the per-message timestamp engine,
// deriving a signed-nanosecond timestamp for every emitted message under one
// of five modes.
package timestamp

// Mode selects how a message's outgoing Timestamp is derived.
type Mode int

const (
	// NoTimestamp always yields 0.
	NoTimestamp Mode = iota
	// Relative yields the delta since the previous message on this port
	// session (0 for the first message).
	Relative
	// Absolute yields monotonic nanoseconds since an epoch established at
	// port open.
	Absolute
	// SystemMonotonic yields raw backend-clock nanoseconds when the backend
	// clock is itself monotonic, else a process-monotonic fallback.
	SystemMonotonic
	// AudioFrame yields the backend's sample index when available, else it
	// falls through to Absolute.
	AudioFrame
)

// BackendInfo describes what timestamp facilities a backend offers.
type BackendInfo struct {
	HasAbsoluteTimestamps bool
	AbsoluteIsMonotonic   bool
	HasSamples            bool
}

// Engine computes one outgoing timestamp per emitted message. It
// is thread-agnostic: Next may be called from whatever thread the backend
// dispatches on, and holds only the per-port-session state needed to derive
// relative deltas and the absolute epoch.
type Engine struct {
	Mode    Mode
	Backend BackendInfo

	// ProcessMonotonicNS supplies the process-monotonic fallback clock used
	// by SystemMonotonic when the backend's own clock isn't monotonic, and
	// by Relative/Absolute/AudioFrame when the backend has no absolute
	// timestamps. If nil, those fallback readings are 0.
	ProcessMonotonicNS func() int64

	epoch   int64
	epochOK bool
	lastNS  int64
	first   bool
}

// Open resets per-session state; call once when a port is opened.
func (e *Engine) Open() {
	e.epochOK = false
	e.lastNS = 0
	e.first = true
}

// Next computes the timestamp for a message whose backend-supplied absolute
// clock reading is toNS() and whose sample index (if any) is sample.
func (e *Engine) Next(toNS func() int64, sample int64) int64 {
	switch e.Mode {
	case NoTimestamp:
		return 0

	case Relative:
		now := e.resolveNS(toNS)
		if e.first {
			e.first = false
			e.lastNS = now
			return 0
		}
		delta := now - e.lastNS
		e.lastNS = now
		return delta

	case Absolute:
		return e.absolute(toNS)

	case SystemMonotonic:
		if e.Backend.AbsoluteIsMonotonic {
			return toNS()
		}
		return e.processClock()

	case AudioFrame:
		if e.Backend.HasSamples {
			return sample
		}
		return e.absolute(toNS)
	}
	return 0
}

func (e *Engine) resolveNS(toNS func() int64) int64 {
	if e.Backend.HasAbsoluteTimestamps {
		return toNS()
	}
	return e.processClock()
}

func (e *Engine) absolute(toNS func() int64) int64 {
	now := e.resolveNS(toNS)
	if !e.epochOK {
		e.epoch = now
		e.epochOK = true
	}
	return now - e.epoch
}

func (e *Engine) processClock() int64 {
	if e.ProcessMonotonicNS == nil {
		return 0
	}
	return e.ProcessMonotonicNS()
}
