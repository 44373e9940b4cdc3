// Package midi is the module root: it re-exports the API enum and provides
// Client, a convenience bundle of one Observer, one In, and one Out against
// a single backend choice, for callers who don't need the three façades
// managed independently.
package midi

import (
	"github.com/pkg/errors"

	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/input"
	"github.com/kestrel-audio/midi/observer"
	"github.com/kestrel-audio/midi/output"
	"github.com/kestrel-audio/midi/port"
)

// API re-exports drivers.API so callers need not import the drivers package
// just to name a backend.
type API = drivers.API

const (
	Unspecified = drivers.Unspecified
	Loopback    = drivers.Loopback
	LoopbackUMP = drivers.LoopbackUMP
)

// ClientConfig configures all three façades of a Client at once.
type ClientConfig struct {
	API      API
	Protocol port.ProtocolFamily

	Observer observer.Config
	In       input.Config
	Out      output.Config

	APIConfig drivers.APIConfig
}

// Client bundles an Observer, an In, and an Out against one backend choice.
// Any of the three may be left unused by the caller; Close tears down
// whichever were constructed.
type Client struct {
	Observer *observer.Observer
	In       *input.In
	Out      *output.Out
}

// NewClient constructs the observer, input, and output façades named in
// cfg. A zero-value field for Observer/In/Out config is still valid: it just
// produces a façade with no callbacks wired, which the caller can configure
// further before opening a port.
func NewClient(cfg ClientConfig) (*Client, error) {
	obs, err := observer.New(cfg.API, cfg.Observer, cfg.APIConfig)
	if err != nil {
		return nil, errors.Wrap(err, "construct observer façade")
	}
	in, err := input.New(cfg.API, cfg.Protocol, cfg.In, cfg.APIConfig)
	if err != nil {
		obs.Close()
		return nil, errors.Wrap(err, "construct input façade")
	}
	out, err := output.New(cfg.API, cfg.Protocol, cfg.Out, cfg.APIConfig)
	if err != nil {
		obs.Close()
		in.Close()
		return nil, errors.Wrap(err, "construct output façade")
	}
	return &Client{Observer: obs, In: in, Out: out}, nil
}

// Close tears down every façade the Client owns, returning the first error
// encountered.
func (c *Client) Close() error {
	var firstErr error
	if c.In != nil {
		if err := c.In.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.Out != nil {
		if err := c.Out.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.Observer != nil {
		if err := c.Observer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
