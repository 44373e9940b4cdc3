// Package loopback is an in-process backend implementing the contract in
// package drivers. It models what a real OS backend would provide: a
// registry of named virtual ports, hot-plug events, and direct in-process
// delivery between an Out and any In subscribed to the same port name. It
// is registered under drivers.Loopback and used by this module's own
// tests, by cmd/midictl's examples, and as the Unspecified fallback when no
// OS backend is compiled in.
package loopback

import (
	"sync"

	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/midierr"
	"github.com/kestrel-audio/midi/port"
)

func init() {
	drivers.Register(drivers.Constructor{
		Metadata: drivers.Metadata{
			API:         drivers.Loopback,
			ShortName:   "loopback",
			DisplayName: "In-process loopback",
			Protocol:    port.ProtocolMIDI1,
			Available:   func() bool { return true },
		},
		NewObserver: func(oc drivers.ObserverConfig, _ drivers.APIConfig) (drivers.ObserverBackend, error) {
			return newObserver(Default()), nil
		},
		NewIn: func(gc drivers.GenericInConfig, _ drivers.APIConfig) (drivers.InputBackend, error) {
			return newIn(Default()), nil
		},
		NewOut: func(gc drivers.GenericOutConfig, _ drivers.APIConfig) (drivers.OutputBackend, error) {
			return newOut(Default()), nil
		},
	})

	drivers.Register(drivers.Constructor{
		Metadata: drivers.Metadata{
			API:         drivers.LoopbackUMP,
			ShortName:   "loopback-ump",
			DisplayName: "In-process loopback (UMP)",
			Protocol:    port.ProtocolMIDI2,
			Available:   func() bool { return true },
		},
		NewObserver: func(oc drivers.ObserverConfig, _ drivers.APIConfig) (drivers.ObserverBackend, error) {
			return newObserver(Default()), nil
		},
		NewIn: func(gc drivers.GenericInConfig, _ drivers.APIConfig) (drivers.InputBackend, error) {
			return newIn(Default()), nil
		},
		NewOut: func(gc drivers.GenericOutConfig, _ drivers.APIConfig) (drivers.OutputBackend, error) {
			return newUMPOut(Default()), nil
		},
	})
}

// Session is the shared, process-wide registry of loopback ports: the
// in-memory stand-in for an OS MIDI subsystem. Tests construct their own
// Session to get an isolated port namespace; production code normally uses
// Default().
type Session struct {
	mu    sync.Mutex
	ports map[string]*namedPort
	subs  []chan drivers.Event
}

type namedPort struct {
	id        port.ID
	direction port.Direction
	receivers []drivers.ReceiveFunc
}

var defaultSession = NewSession()

// Default returns the process-wide Session used by backends constructed
// through the drivers registry.
func Default() *Session { return defaultSession }

// NewSession creates an isolated loopback port namespace.
func NewSession() *Session {
	return &Session{ports: make(map[string]*namedPort)}
}

// Declare registers a named port (as a hot-plug "added" event) if it does
// not already exist, simulating a device appearing on the bus.
func (s *Session) Declare(name string, dir port.Direction, transport port.Transport) port.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dir.String() + ":" + name
	if np, ok := s.ports[key]; ok {
		return np.id
	}
	id := port.ID{
		Handle:    port.NewHandle(),
		PortName:  name,
		DisplayName: name,
		DeviceName:  name,
		Direction: dir,
		Transport: transport,
	}
	np := &namedPort{id: id, direction: dir}
	s.ports[key] = np
	s.broadcast(drivers.Event{Kind: drivers.EventAdded, Port: id})
	return id
}

// Remove simulates a hot-unplug of a previously Declared port.
func (s *Session) Remove(name string, dir port.Direction) {
	s.mu.Lock()
	key := dir.String() + ":" + name
	np, ok := s.ports[key]
	if ok {
		delete(s.ports, key)
	}
	s.mu.Unlock()
	if ok {
		s.broadcast(drivers.Event{Kind: drivers.EventRemoved, Port: np.id})
	}
}

func (s *Session) broadcast(ev drivers.Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Session) list(dir port.Direction) []port.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []port.ID
	for _, np := range s.ports {
		if np.direction == dir {
			out = append(out, np.id)
		}
	}
	return out
}

func (s *Session) subscribe() chan drivers.Event {
	ch := make(chan drivers.Event, 64)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Session) unsubscribe(ch chan drivers.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.subs {
		if c == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	close(ch)
}

func (s *Session) addReceiver(name string, fn drivers.ReceiveFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := port.Input.String() + ":" + name
	np, ok := s.ports[key]
	if !ok {
		return
	}
	np.receivers = append(np.receivers, fn)
}

// deliver sends a RawMessage to every input receiver registered under
// portName, simulating a physical cable between an Out and every In opened
// on the same named port.
func (s *Session) deliver(portName string, msg drivers.RawMessage) error {
	s.mu.Lock()
	key := port.Input.String() + ":" + portName
	np, ok := s.ports[key]
	var receivers []drivers.ReceiveFunc
	if ok {
		receivers = append(receivers, np.receivers...)
	}
	s.mu.Unlock()
	if !ok {
		return midierr.New(midierr.DomainLoopback, midierr.NotConnected, "no input port named "+portName)
	}
	for _, fn := range receivers {
		fn(msg)
	}
	return nil
}
