package drivers

import "github.com/kestrel-audio/midi/port"

// EventKind distinguishes observer hot-plug notifications.
type EventKind int

const (
	EventAdded EventKind = iota
	EventRemoved
	EventUpdated
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// Event is a single hot-plug notification for one port.
type Event struct {
	Kind     EventKind
	Port     port.ID
	Endpoint *port.EndpointInfo
}

// ObserverBackend is the contract every backend satisfies for enumeration
// and hot-plug.
type ObserverBackend interface {
	ListInputs() ([]port.ID, error)
	ListOutputs() ([]port.ID, error)
	ListEndpoints() ([]port.EndpointInfo, error)
	// Events returns a channel of hot-plug notifications, delivered on the
	// backend's own notification thread. The channel is
	// closed when Close is called.
	Events() <-chan Event
	Close() error
}

// RawMessage is what a backend hands the input state machine: either raw
// MIDI 1 bytes or raw UMP words (never both), plus the backend's own clock
// reading for the timestamp engine to normalize.
type RawMessage struct {
	Bytes     []byte
	Words     []uint32
	ClockNS   int64
	SampleIdx int64
}

// ReceiveFunc is how a backend delivers framed(-ish)/raw data to the input
// state machine. The backend guarantees at-most-one concurrent invocation
// per port.
type ReceiveFunc func(RawMessage)

// InputBackend is the contract every backend satisfies for receiving.
type InputBackend interface {
	Open(id port.ID, localName string) error
	// OpenVirtual opens a software-only port advertised under name. Backends
	// that cannot create virtual ports return UnsupportedOperation.
	OpenVirtual(name string) error
	Close() error
	IsConnected() bool
	AbsoluteTimestamp() int64
	SetReceiver(ReceiveFunc)
	TimestampInfo() TimestampBackendInfo
}

// OutputBackend is the contract every backend satisfies for sending. A
// backend supporting only one wire format refuses the other with
// UnsupportedOperation.
type OutputBackend interface {
	Open(id port.ID, localName string) error
	OpenVirtual(name string) error
	Close() error
	IsConnected() bool
	Send(data []byte) error
	SendUMP(words []uint32) error
	// GrowBuffers is the buffer-grow hook the output engine invokes once on
	// NoBufferSpace/EAGAIN before retrying a send.
	GrowBuffers()
}

// ManualPoller is an optional capability: a backend exposing it lets the
// caller drive delivery from its own event loop instead of a background
// thread. Poll returning false
// terminates polling.
type ManualPoller interface {
	Poll() bool
}

// TimestampBackendInfo mirrors timestamp.BackendInfo field for field, so the
// input façade can convert one to the other directly.
type TimestampBackendInfo struct {
	HasAbsoluteTimestamps bool
	AbsoluteIsMonotonic   bool
	HasSamples            bool
}
