// Package passthrough implements a multi-port router: N inputs feeding a
// shared callback that forwards to M outputs via errgroup-based fan-out,
// plus a name-pattern match for hot-plug auto-open (the caller opens and
// routes matching ports itself).
package passthrough

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kestrel-audio/midi/input"
	"github.com/kestrel-audio/midi/midi1"
	"github.com/kestrel-audio/midi/observer"
	"github.com/kestrel-audio/midi/output"
)

// Route names one input-to-outputs forwarding rule.
type Route struct {
	Name    string
	Input   *input.In
	Outputs []*output.Out
}

// Router forwards every message arriving on each registered In to every Out
// in its Route.
type Router struct {
	mu     sync.Mutex
	routes []*Route
	logger *zap.Logger

	observer  *observer.Observer
	autoMatch func(name string) bool
}

// New creates an empty Router.
func New(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{logger: logger}
}

// AddRoute wires in to fan out to outs. Callers still need to set
// in's Config.OnMessage to call Forward with the returned *Route.
func (r *Router) AddRoute(name string, in *input.In, outs ...*output.Out) *Route {
	route := &Route{Name: name, Input: in, Outputs: outs}
	r.mu.Lock()
	r.routes = append(r.routes, route)
	r.mu.Unlock()
	return route
}

// Forward fans bytes/ts out to every output in route concurrently via
// errgroup, logging and continuing past a failed destination rather than
// aborting the rest of the fan-out. A slow or blocked output no longer holds
// up delivery to the others.
func (r *Router) Forward(route *Route, bytes []byte, ts int64) {
	m := midi1.Message{Bytes: bytes, Timestamp: ts}
	var g errgroup.Group
	for i, out := range route.Outputs {
		i, out := i, out
		g.Go(func() error {
			if err := out.SendMessage(m); err != nil {
				r.logger.Warn("passthrough: forward failed",
					zap.String("route", route.Name),
					zap.Int("output", i),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// EnableAutoOpen arms hot-plug auto-open: the caller's own Observer.Config
// OnPortAdded callback should check Matches(name) and, if true, open and
// AddRoute the new port; EnableAutoOpen only records the match predicate
// since opening a port needs API-specific configuration this package does
// not own.
func (r *Router) EnableAutoOpen(obs *observer.Observer, pattern string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observer = obs
	r.autoMatch = func(name string) bool {
		return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
	}
}

// Matches reports whether name satisfies the auto-open pattern configured by
// EnableAutoOpen; false if auto-open was never enabled.
func (r *Router) Matches(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.autoMatch != nil && r.autoMatch(name)
}

// Routes returns a snapshot of the currently registered routes.
func (r *Router) Routes() []*Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Close closes every route's Input and Outputs concurrently via errgroup,
// returning the first error encountered across all of them.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var g errgroup.Group
	for _, route := range r.routes {
		route := route
		g.Go(route.Input.Close)
		for _, out := range route.Outputs {
			out := out
			g.Go(out.Close)
		}
	}
	return g.Wait()
}
