// Package observer implements the port/endpoint enumeration and hot-plug
// notification core, built atop a
// drivers.ObserverBackend.
package observer

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/port"
)

// Config is the observer's filter and delivery configuration.
type Config struct {
	drivers.GenericObserverConfig

	OnPortAdded   func(port.ID)
	OnPortRemoved func(port.ID)
	OnPortUpdated func(old, updated port.ID)

	Logger *zap.Logger
}

// Observer maintains the authoritative present-port set for its backend and
// delivers added/removed/updated callbacks in order.
type Observer struct {
	backend  drivers.ObserverBackend
	cfg      Config
	logger   *zap.Logger
	protocol port.ProtocolFamily

	mu      sync.Mutex
	present map[string]port.ID // key: direction + handle

	group  *errgroup.Group
	closed chan struct{}
}

// New constructs an Observer against the backend selected for api. If
// cfg.NotifyInConstructor is set, every port already present synthesizes an
// Added callback before New returns.
func New(api drivers.API, cfg Config, apiConfig drivers.APIConfig) (*Observer, error) {
	c, err := drivers.Select(api, drivers.AnyProtocol)
	if err != nil {
		return nil, err
	}
	backend, err := c.NewObserver(drivers.ObserverConfig{Generic: cfg.GenericObserverConfig}, apiConfig)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Observer{
		backend:  backend,
		cfg:      cfg,
		logger:   logger,
		protocol: c.Metadata.Protocol,
		present:  make(map[string]port.ID),
		closed:   make(chan struct{}),
	}

	if cfg.NotifyInConstructor {
		o.synthesizeInitialAdds()
	}

	g := &errgroup.Group{}
	o.group = g
	g.Go(o.dispatchLoop)

	return o, nil
}

func key(dir port.Direction, handle [16]byte) string {
	return dir.String() + ":" + string(handle[:])
}

func (o *Observer) synthesizeInitialAdds() {
	ins, err := o.backend.ListInputs()
	if err != nil {
		o.logger.Warn("observer: list inputs failed", zap.Error(err))
	}
	outs, err := o.backend.ListOutputs()
	if err != nil {
		o.logger.Warn("observer: list outputs failed", zap.Error(err))
	}
	o.mu.Lock()
	for _, id := range ins {
		o.present[key(port.Input, id.Handle)] = id
	}
	for _, id := range outs {
		o.present[key(port.Output, id.Handle)] = id
	}
	o.mu.Unlock()

	for _, id := range ins {
		if o.passesFilter(id) && o.cfg.OnPortAdded != nil {
			o.cfg.OnPortAdded(id)
		}
	}
	for _, id := range outs {
		if o.passesFilter(id) && o.cfg.OnPortAdded != nil {
			o.cfg.OnPortAdded(id)
		}
	}
}

func (o *Observer) dispatchLoop() error {
	ch := o.backend.Events()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			o.handle(ev)
		case <-o.closed:
			return nil
		}
	}
}

func (o *Observer) handle(ev drivers.Event) {
	k := key(ev.Port.Direction, ev.Port.Handle)
	switch ev.Kind {
	case drivers.EventAdded:
		o.mu.Lock()
		o.present[k] = ev.Port
		o.mu.Unlock()
		if o.passesFilter(ev.Port) && o.cfg.OnPortAdded != nil {
			o.cfg.OnPortAdded(ev.Port)
		}
	case drivers.EventRemoved:
		o.mu.Lock()
		delete(o.present, k)
		o.mu.Unlock()
		if o.passesFilter(ev.Port) && o.cfg.OnPortRemoved != nil {
			o.cfg.OnPortRemoved(ev.Port)
		}
	case drivers.EventUpdated:
		o.mu.Lock()
		old := o.present[k]
		o.present[k] = ev.Port
		o.mu.Unlock()
		if o.passesFilter(ev.Port) && o.cfg.OnPortUpdated != nil {
			o.cfg.OnPortUpdated(old, ev.Port)
		}
	}
}

// passesFilter applies the configured track-*/require-* flag logic.
func (o *Observer) passesFilter(id port.ID) bool {
	g := o.cfg.GenericObserverConfig

	transportOK := g.TrackAny ||
		(g.TrackHardware && id.Transport == port.TransportHardware) ||
		(g.TrackVirtual && id.Transport == port.TransportVirtual) ||
		(g.TrackNetwork && id.Transport == port.TransportNetwork) ||
		(!g.TrackHardware && !g.TrackVirtual && !g.TrackNetwork && !g.TrackAny)

	if !transportOK {
		return false
	}

	if g.RequireMIDI1 && o.protocol != port.ProtocolMIDI1 {
		return false
	}
	if g.RequireMIDI2 && o.protocol != port.ProtocolMIDI2 {
		return false
	}
	if g.RequireInput && id.Direction != port.Input {
		return false
	}
	if g.RequireOutput && id.Direction != port.Output {
		return false
	}
	if g.RequireBidirectional && !o.hasOppositeDirection(id) {
		return false
	}
	return true
}

func (o *Observer) hasOppositeDirection(id port.ID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	opposite := port.Output
	if id.Direction == port.Output {
		opposite = port.Input
	}
	for k, other := range o.present {
		_ = k
		if other.PortName == id.PortName && other.Direction == opposite {
			return true
		}
	}
	return false
}

// ListInputPorts returns the current snapshot of input ports.
func (o *Observer) ListInputPorts() ([]port.ID, error) { return o.backend.ListInputs() }

// ListOutputPorts returns the current snapshot of output ports.
func (o *Observer) ListOutputPorts() ([]port.ID, error) { return o.backend.ListOutputs() }

// ListEndpoints returns the current UMP endpoint snapshot.
func (o *Observer) ListEndpoints() ([]port.EndpointInfo, error) { return o.backend.ListEndpoints() }

// Close joins the notification thread before returning.
func (o *Observer) Close() error {
	close(o.closed)
	err := o.backend.Close()
	_ = o.group.Wait()
	return err
}
