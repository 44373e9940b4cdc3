package drivers

import (
	"time"

	"github.com/kestrel-audio/midi/timestamp"
)

// APIConfig is the marker interface for an API-specific configuration
// record. The registered Constructor for api must type-assert this to
// the concrete struct it expects; a mismatch is reported as
// ApiConfigMismatch by Select's caller.
type APIConfig interface {
	api() API
}

// ChunkingParams configures SysEx chunked emission pacing.
type ChunkingParams struct {
	Size     int
	Interval time.Duration
	// Wait is called between chunks with the elapsed duration (== Interval)
	// and the cumulative byte count written so far; returning false aborts
	// the send.
	Wait func(elapsed time.Duration, bytesWritten int) bool
}

// Enabled reports whether chunking parameters are configured at all.
func (c ChunkingParams) Enabled() bool { return c.Size > 0 }

// GenericObserverConfig is shared across every API.
type GenericObserverConfig struct {
	TrackHardware       bool
	TrackVirtual        bool
	TrackNetwork        bool
	TrackAny            bool
	NotifyInConstructor bool
	RequireMIDI1        bool
	RequireMIDI2        bool
	RequireInput        bool
	RequireOutput       bool
	RequireBidirectional bool

	OnWarning func(error)
}

// ObserverConfig wraps the generic record; the API-specific record is passed
// to the observer constructor separately, as an APIConfig.
type ObserverConfig struct {
	Generic GenericObserverConfig
}

// GenericInConfig is the generic per-instance configuration shared by every
// midi_in backend.
type GenericInConfig struct {
	ClientName    string
	TimestampMode timestamp.Mode
	OnMessage     func(bytes []byte, ts int64)
	OnUMP         func(words []uint32, ts int64)
	OnError       func(error)
	OnWarning     func(string)
	ManualPoll    bool
}

// GenericOutConfig is the generic per-instance configuration shared by every
// midi_out backend.
type GenericOutConfig struct {
	ClientName      string
	Chunking        ChunkingParams
	RingBufferSize  int
	OnError         func(error)
	OnWarning       func(string)
}
