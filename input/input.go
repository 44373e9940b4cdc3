// Package input implements the receiving façade: it wires a
// drivers.InputBackend to the midi1/ump decoders and the timestamp engine,
// and dispatches decoded messages to caller callbacks.
package input

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/midi1"
	"github.com/kestrel-audio/midi/midierr"
	"github.com/kestrel-audio/midi/port"
	"github.com/kestrel-audio/midi/timestamp"
	"github.com/kestrel-audio/midi/ump"
)

// Config configures an In instance. Exactly one of OnMessage/OnUMP is
// expected to be meaningful, matching the protocol family of the backend
// selected for API; the other is simply never invoked.
type Config struct {
	drivers.GenericInConfig
	Logger *zap.Logger
}

// In receives from one opened port and delivers decoded, timestamped
// messages to the configured callbacks. A backend guarantees at most one
// concurrent ReceiveFunc invocation per port; In relies on that guarantee
// and does no additional internal queueing, so a slow OnMessage/OnUMP
// callback applies backpressure straight back to the backend.
type In struct {
	backend drivers.InputBackend
	cfg     Config
	logger  *zap.Logger

	dec1 midi1.Decoder
	dec2 ump.Decoder
	ts   timestamp.Engine

	protocol port.ProtocolFamily
	poller   drivers.ManualPoller // non-nil only when cfg.ManualPoll is set

	mu sync.Mutex
}

// New resolves api to a backend and constructs an In against it, without
// opening a port yet. If cfg.ManualPoll is set, the backend must implement
// drivers.ManualPoller; the core then never drives delivery on its own and
// the caller is expected to call Poll in its own loop instead.
func New(api drivers.API, protocol port.ProtocolFamily, cfg Config, apiConfig drivers.APIConfig) (*In, error) {
	c, err := drivers.Select(api, drivers.Want(protocol))
	if err != nil {
		return nil, err
	}
	backend, err := c.NewIn(cfg.GenericInConfig, apiConfig)
	if err != nil {
		return nil, err
	}

	var poller drivers.ManualPoller
	if cfg.ManualPoll {
		poller, _ = backend.(drivers.ManualPoller)
		if poller == nil {
			return nil, midierr.New(midierr.DomainCore, midierr.ApiConfigMismatch, "ManualPoll requested but backend does not implement ManualPoller")
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	in := &In{
		backend:  backend,
		cfg:      cfg,
		logger:   logger,
		protocol: protocol,
		poller:   poller,
	}
	in.dec1.OnWarning = in.warn
	in.dec2.OnWarning = in.warn
	in.ts.Mode = cfg.TimestampMode
	in.ts.Backend = timestamp.BackendInfo(backend.TimestampInfo())
	in.ts.ProcessMonotonicNS = processMonotonic

	backend.SetReceiver(in.receive)
	return in, nil
}

// Poll drives one iteration of backend delivery for a manual-poll In,
// returning false once the backend has nothing left to replace a
// background thread with. It is a no-op returning false if the instance was
// not constructed with ManualPoll set.
func (in *In) Poll() bool {
	if in.poller == nil {
		return false
	}
	return in.poller.Poll()
}

func (in *In) warn(msg string) {
	if in.cfg.OnWarning != nil {
		in.cfg.OnWarning(msg)
	}
	in.logger.Debug("input: decoder warning", zap.String("msg", msg))
}

// Open opens id for receiving.
func (in *In) Open(id port.ID, localName string) error {
	if err := in.backend.Open(id, localName); err != nil {
		return err
	}
	in.ts.Open()
	return nil
}

// OpenVirtual opens a software-only port.
func (in *In) OpenVirtual(name string) error {
	if err := in.backend.OpenVirtual(name); err != nil {
		return err
	}
	in.ts.Open()
	return nil
}

// Close closes the underlying backend port.
func (in *In) Close() error { return in.backend.Close() }

// IsConnected reports whether the port is currently open.
func (in *In) IsConnected() bool { return in.backend.IsConnected() }

// receive is the backend's ReceiveFunc. The backend contract guarantees this
// is never invoked concurrently with itself for the same port.
func (in *In) receive(raw drivers.RawMessage) {
	in.mu.Lock()
	defer in.mu.Unlock()

	toNS := func() int64 { return raw.ClockNS }

	switch {
	case raw.Bytes != nil:
		msgs := in.dec1.FeedFunc(raw.Bytes, func(int) int64 {
			return in.ts.Next(toNS, raw.SampleIdx)
		})
		if in.cfg.OnMessage == nil {
			return
		}
		for _, m := range msgs {
			in.cfg.OnMessage(m.Bytes, m.Timestamp)
		}

	case raw.Words != nil:
		ts := in.ts.Next(toNS, raw.SampleIdx)
		packets, err := in.dec2.Feed(raw.Words, ts)
		if err != nil {
			if in.cfg.OnError != nil {
				in.cfg.OnError(err)
			}
			return
		}
		if in.cfg.OnUMP == nil {
			return
		}
		for _, p := range packets {
			in.cfg.OnUMP(p.Words, p.Timestamp)
		}

	default:
		if in.cfg.OnError != nil {
			in.cfg.OnError(midierr.New(midierr.DomainCore, midierr.Malformed, "backend delivered an empty RawMessage"))
		}
	}
}
