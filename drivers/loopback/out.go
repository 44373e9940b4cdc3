package loopback

import (
	"sync"
	"time"

	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/midierr"
	"github.com/kestrel-audio/midi/port"
)

type outBackend struct {
	session  *Session
	protocol port.ProtocolFamily
	mu       sync.Mutex
	opened   bool
	name     string
	grown    int
}

func newOut(s *Session) *outBackend {
	return &outBackend{session: s, protocol: port.ProtocolMIDI1}
}

func newUMPOut(s *Session) *outBackend {
	return &outBackend{session: s, protocol: port.ProtocolMIDI2}
}

func (b *outBackend) Open(id port.ID, localName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.Declare(id.PortName, port.Output, id.Transport)
	b.name = id.PortName
	b.opened = true
	return nil
}

func (b *outBackend) OpenVirtual(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.Declare(name, port.Output, port.TransportVirtual)
	b.name = name
	b.opened = true
	return nil
}

func (b *outBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.opened {
		return midierr.New(midierr.DomainLoopback, midierr.NotConnected, "output not open")
	}
	b.opened = false
	return nil
}

func (b *outBackend) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}

func (b *outBackend) Send(data []byte) error {
	if b.protocol != port.ProtocolMIDI1 {
		return midierr.New(midierr.DomainLoopback, midierr.UnsupportedOperation, "this loopback output is UMP-only")
	}
	b.mu.Lock()
	name, opened := b.name, b.opened
	b.mu.Unlock()
	if !opened {
		return midierr.New(midierr.DomainLoopback, midierr.NotConnected, "output not open")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return b.session.deliver(name, drivers.RawMessage{Bytes: cp, ClockNS: time.Now().UnixNano()})
}

func (b *outBackend) SendUMP(words []uint32) error {
	if b.protocol != port.ProtocolMIDI2 {
		return midierr.New(midierr.DomainLoopback, midierr.UnsupportedOperation, "this loopback output is MIDI1-only")
	}
	b.mu.Lock()
	name, opened := b.name, b.opened
	b.mu.Unlock()
	if !opened {
		return midierr.New(midierr.DomainLoopback, midierr.NotConnected, "output not open")
	}
	cp := make([]uint32, len(words))
	copy(cp, words)
	return b.session.deliver(name, drivers.RawMessage{Words: cp, ClockNS: time.Now().UnixNano()})
}

func (b *outBackend) GrowBuffers() {
	b.mu.Lock()
	b.grown++
	b.mu.Unlock()
}
