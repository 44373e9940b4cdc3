package loopback

import (
	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/port"
)

type observerBackend struct {
	session *Session
	events  chan drivers.Event
}

func newObserver(s *Session) *observerBackend {
	return &observerBackend{session: s, events: s.subscribe()}
}

func (o *observerBackend) ListInputs() ([]port.ID, error)  { return o.session.list(port.Input), nil }
func (o *observerBackend) ListOutputs() ([]port.ID, error) { return o.session.list(port.Output), nil }

func (o *observerBackend) ListEndpoints() ([]port.EndpointInfo, error) {
	var out []port.EndpointInfo
	for _, id := range o.session.list(port.Input) {
		out = append(out, port.EndpointInfo{ID: id, SupportedProtos: []port.ProtocolFamily{port.ProtocolMIDI1}})
	}
	for _, id := range o.session.list(port.Output) {
		out = append(out, port.EndpointInfo{ID: id, SupportedProtos: []port.ProtocolFamily{port.ProtocolMIDI1}})
	}
	return out, nil
}

func (o *observerBackend) Events() <-chan drivers.Event { return o.events }

func (o *observerBackend) Close() error {
	o.session.unsubscribe(o.events)
	return nil
}
