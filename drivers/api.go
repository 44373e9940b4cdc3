// Package drivers defines the abstract backend contract and the
// process-wide registry/façade selection logic. Concrete OS backends (ALSA,
// CoreMIDI, WinMM/WinRT, PipeWire, JACK, AMidi, WebMIDI, KDMAPI, network UDP
// transports) are not implemented here; drivers/loopback is the one backend
// this module ships, used by tests, examples, and as the fallback when no
// OS backend is registered.
package drivers

import "github.com/kestrel-audio/midi/port"

// API identifies a backend implementation. Values carry both a symbolic
// (String) and a stable numeric identity so a caller can persist or
// transmit a choice of backend without depending on the String form.
type API int32

const (
	Unspecified API = 0
	Loopback    API = 1
	LoopbackUMP API = 2
	ALSASeq     API = 10
	ALSARaw     API = 11
	CoreMIDI    API = 20
	WinMM       API = 30
	WinMIDI     API = 31
	WinUWP      API = 32
	PipeWire    API = 40
	JACK        API = 41
	AMidi       API = 50
	WebMIDI     API = 60
	KDMAPI      API = 70
	Network     API = 80
)

func (a API) String() string {
	switch a {
	case Unspecified:
		return "unspecified"
	case Loopback:
		return "loopback"
	case LoopbackUMP:
		return "loopback-ump"
	case ALSASeq:
		return "alsa-seq"
	case ALSARaw:
		return "alsa-raw"
	case CoreMIDI:
		return "coremidi"
	case WinMM:
		return "winmm"
	case WinMIDI:
		return "winmidi"
	case WinUWP:
		return "winuwp"
	case PipeWire:
		return "pipewire"
	case JACK:
		return "jack"
	case AMidi:
		return "amidi"
	case WebMIDI:
		return "webmidi"
	case KDMAPI:
		return "kdmapi"
	case Network:
		return "network"
	default:
		return "unknown"
	}
}

// Metadata is the static descriptive information each backend registers
// with the process-wide registry at init time.
type Metadata struct {
	API         API
	ShortName   string
	DisplayName string
	Protocol    port.ProtocolFamily
	// Available reports whether this backend is usable in the current
	// process (compiled in and its native library, if any, loadable).
	Available func() bool
}

// platformPreference lists compiled-in backends in the order Unspecified
// selection should try them. This module only compiles
// drivers/loopback in; it is always first/only in practice, but the table
// documents where OS backends would be inserted by platform.
var platformPreference = []API{
	CoreMIDI, WinMIDI, WinMM, WinUWP, ALSASeq, PipeWire, WebMIDI, Loopback,
}
