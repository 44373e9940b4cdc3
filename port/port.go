// Package port defines the port and endpoint identity records shared by
// every backend.
package port

import "github.com/google/uuid"

// Direction is a port's data direction.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Transport tags the physical or logical medium a port is reached through.
type Transport int

const (
	TransportUnknown Transport = iota
	TransportHardware
	TransportVirtual
	TransportNetwork
	TransportUSB
	TransportBluetooth
	TransportPCI
)

func (t Transport) String() string {
	switch t {
	case TransportHardware:
		return "hardware"
	case TransportVirtual:
		return "virtual"
	case TransportNetwork:
		return "network"
	case TransportUSB:
		return "usb"
	case TransportBluetooth:
		return "bluetooth"
	case TransportPCI:
		return "pci"
	default:
		return "unknown"
	}
}

// ID is a stable, opaque handle plus the human-readable identity of a port.
// Two IDs compare equal iff their Handles are equal within the same backend
// session.
type ID struct {
	Handle       uuid.UUID
	PortName     string
	DisplayName  string
	DeviceName   string
	Manufacturer string
	Direction    Direction
	Transport    Transport
}

// Equal reports identifier equality: same opaque handle.
func (id ID) Equal(other ID) bool { return id.Handle == other.Handle }

// NewHandle mints a fresh opaque port handle. Backends call this once per
// physical/virtual port discovered in a session; the handle must remain
// stable across add/update notifications for the same port and must change
// on remove+re-add.
func NewHandle() uuid.UUID { return uuid.New() }

// ProtocolFamily distinguishes the MIDI 1 byte-oriented wire format from
// MIDI 2's UMP word format, used by the façade's protocol-mismatch check.
type ProtocolFamily int

const (
	ProtocolMIDI1 ProtocolFamily = iota
	ProtocolMIDI2
)

// FunctionBlock is a UMP-layer addressing unit within an Endpoint.
type FunctionBlock struct {
	Name      string
	Group     uint8
	Direction Direction
	IsStatic  bool
}

// UMPVersion is a UMP endpoint's supported protocol major.minor.
type UMPVersion struct {
	Major, Minor uint8
}

// EndpointInfo describes a UMP endpoint.
type EndpointInfo struct {
	ID               ID
	ProductInstance  string
	Version          UMPVersion
	SupportedProtos  []ProtocolFamily
	FunctionBlocks   []FunctionBlock
	BlocksAreStatic  bool
}

// SupportsProtocol reports whether p is in SupportedProtos.
func (e EndpointInfo) SupportsProtocol(p ProtocolFamily) bool {
	for _, got := range e.SupportedProtos {
		if got == p {
			return true
		}
	}
	return false
}
