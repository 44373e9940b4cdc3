package loopback

import (
	"sync"
	"time"

	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/midierr"
	"github.com/kestrel-audio/midi/port"
)

type inBackend struct {
	session *Session
	mu      sync.Mutex
	opened  bool
	name    string
	start   time.Time
	recv    drivers.ReceiveFunc
}

func newIn(s *Session) *inBackend { return &inBackend{session: s} }

func (b *inBackend) Open(id port.ID, localName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.Declare(id.PortName, port.Input, id.Transport)
	b.name = id.PortName
	b.opened = true
	b.start = time.Now()
	if b.recv != nil {
		b.session.addReceiver(b.name, b.recv)
	}
	return nil
}

func (b *inBackend) OpenVirtual(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session.Declare(name, port.Input, port.TransportVirtual)
	b.name = name
	b.opened = true
	b.start = time.Now()
	if b.recv != nil {
		b.session.addReceiver(b.name, b.recv)
	}
	return nil
}

func (b *inBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.opened {
		return midierr.New(midierr.DomainLoopback, midierr.NotConnected, "input not open")
	}
	b.opened = false
	return nil
}

func (b *inBackend) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}

func (b *inBackend) AbsoluteTimestamp() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.opened {
		return 0
	}
	return time.Since(b.start).Nanoseconds()
}

func (b *inBackend) SetReceiver(fn drivers.ReceiveFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recv = fn
	if b.opened {
		b.session.addReceiver(b.name, fn)
	}
}

func (b *inBackend) TimestampInfo() drivers.TimestampBackendInfo {
	return drivers.TimestampBackendInfo{HasAbsoluteTimestamps: true, AbsoluteIsMonotonic: true}
}

// Poll satisfies drivers.ManualPoller. Loopback delivers in-process the
// instant Send is called, so there is no background thread for manual
// polling to stand in for; Poll does no work and only reports whether the
// port is open, which lets input.Config.ManualPoll be exercised against this
// backend.
func (b *inBackend) Poll() bool { return b.IsConnected() }
