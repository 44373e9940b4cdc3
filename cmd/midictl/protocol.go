package main

import (
	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/port"
)

// protocolFor returns ProtocolMIDI2 for LoopbackUMP and ProtocolMIDI1 for
// every other API, including Unspecified (auto-selection).
func protocolFor(api drivers.API) port.ProtocolFamily {
	if api == drivers.LoopbackUMP {
		return port.ProtocolMIDI2
	}
	return port.ProtocolMIDI1
}
