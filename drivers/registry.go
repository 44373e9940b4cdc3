package drivers

import (
	"github.com/kestrel-audio/midi/midierr"
	"github.com/kestrel-audio/midi/port"
)

// ProtocolWant expresses what protocol family the caller's configuration
// requires; AnyProtocol matches every backend.
type ProtocolWant struct {
	Any    bool
	Family port.ProtocolFamily
}

// AnyProtocol matches any backend's protocol family.
var AnyProtocol = ProtocolWant{Any: true}

// Want pins the selection to a specific protocol family.
func Want(f port.ProtocolFamily) ProtocolWant { return ProtocolWant{Family: f} }

// Matches reports whether backend family f satisfies this want.
func (w ProtocolWant) Matches(f port.ProtocolFamily) bool {
	return w.Any || w.Family == f
}

// Constructor is the per-API trio of factory functions plus static
// metadata, registered once at backend init time.
type Constructor struct {
	Metadata    Metadata
	NewObserver func(ObserverConfig, APIConfig) (ObserverBackend, error)
	NewIn       func(GenericInConfig, APIConfig) (InputBackend, error)
	NewOut      func(GenericOutConfig, APIConfig) (OutputBackend, error)
}

var registry = map[API]Constructor{}

// Register adds (or replaces) a backend's constructor trio. Concrete OS
// backends call this from an init() in their own package; this module only
// registers Loopback and LoopbackUMP by default (see drivers/loopback).
func Register(c Constructor) {
	registry[c.Metadata.API] = c
}

// Registered reports every API currently registered in this process.
func Registered() []API {
	out := make([]API, 0, len(registry))
	for api := range registry {
		out = append(out, api)
	}
	return out
}

// MetadataFor returns the registered Metadata for api, if any.
func MetadataFor(api API) (Metadata, bool) {
	c, ok := registry[api]
	return c.Metadata, ok
}

// Select resolves the caller's requested API to a Constructor:
//  1. Unspecified iterates platformPreference in order, picking the first
//     registered and Available() backend whose protocol family matches
//     wanted; if none does, it returns BackendUnavailable.
//  2. A specific, unregistered API returns BackendUnavailable.
//  3. A protocol-family mismatch between the requested API and wanted
//     returns ApiConfigMismatch.
func Select(api API, wanted ProtocolWant) (Constructor, error) {
	if api == Unspecified {
		for _, candidate := range platformPreference {
			c, ok := registry[candidate]
			if !ok {
				continue
			}
			if c.Metadata.Available != nil && !c.Metadata.Available() {
				continue
			}
			if !wanted.Matches(c.Metadata.Protocol) {
				continue
			}
			return c, nil
		}
		return Constructor{}, midierr.New(midierr.DomainCore, midierr.BackendUnavailable, "no compiled-in backend is available")
	}

	c, ok := registry[api]
	if !ok {
		return Constructor{}, midierr.New(midierr.DomainCore, midierr.BackendUnavailable, api.String()+" is not compiled in")
	}
	if c.Metadata.Available != nil && !c.Metadata.Available() {
		return Constructor{}, midierr.New(midierr.DomainCore, midierr.BackendUnavailable, api.String()+" is not available at runtime")
	}
	if !wanted.Matches(c.Metadata.Protocol) {
		return Constructor{}, midierr.New(midierr.DomainCore, midierr.ApiConfigMismatch, "configuration protocol family does not match "+api.String())
	}
	return c, nil
}
