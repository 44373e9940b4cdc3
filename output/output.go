// Package output implements the sending façade: SysEx chunked emission,
// UMP segmentation, and the buffer-grow-and-retry-once policy on
// NoBufferSpace, backed by an internal/ringbuf staging buffer.
package output

import (
	"encoding/binary"
	"time"

	"go.uber.org/zap"

	"github.com/kestrel-audio/midi/drivers"
	"github.com/kestrel-audio/midi/internal/ringbuf"
	"github.com/kestrel-audio/midi/midi1"
	"github.com/kestrel-audio/midi/midierr"
	"github.com/kestrel-audio/midi/port"
	"github.com/kestrel-audio/midi/ump"
)

// Config configures an Out instance.
type Config struct {
	drivers.GenericOutConfig
	Logger *zap.Logger
}

// Out sends to one opened port, chunking long SysEx bodies and retrying
// once on a backend-reported buffer-full condition. Every send is staged
// through a preallocated ringbuf.Ring and read back into reused scratch
// buffers, so the steady-state send path allocates nothing.
type Out struct {
	backend drivers.OutputBackend
	cfg     Config
	logger  *zap.Logger

	staging     *ringbuf.Ring
	scratch     []byte   // reused staging read-out buffer
	wordBytes   []byte   // reused UMP word->byte encode buffer
	wordScratch []uint32 // reused UMP byte->word decode buffer
}

// New resolves api to a backend and constructs an Out against it.
func New(api drivers.API, protocol port.ProtocolFamily, cfg Config, apiConfig drivers.APIConfig) (*Out, error) {
	c, err := drivers.Select(api, drivers.Want(protocol))
	if err != nil {
		return nil, err
	}
	backend, err := c.NewOut(cfg.GenericOutConfig, apiConfig)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.RingBufferSize
	if size <= 0 {
		size = 4096
	}
	staging := ringbuf.New(size)
	return &Out{
		backend:     backend,
		cfg:         cfg,
		logger:      logger,
		staging:     staging,
		scratch:     make([]byte, staging.Cap()),
		wordBytes:   make([]byte, staging.Cap()),
		wordScratch: make([]uint32, staging.Cap()/4),
	}, nil
}

// Open opens id for sending.
func (o *Out) Open(id port.ID, localName string) error { return o.backend.Open(id, localName) }

// OpenVirtual opens a software-only port for sending.
func (o *Out) OpenVirtual(name string) error { return o.backend.OpenVirtual(name) }

// Close closes the underlying backend port.
func (o *Out) Close() error { return o.backend.Close() }

// IsConnected reports whether the port is currently open.
func (o *Out) IsConnected() bool { return o.backend.IsConnected() }

// SendMessage sends one complete MIDI 1 message, chunking it first if it is
// a SysEx body longer than the configured chunk size. Non-SysEx messages are
// always sent whole.
func (o *Out) SendMessage(m midi1.Message) error {
	if !o.cfg.Chunking.Enabled() || !m.IsSysEx() || len(m.Bytes) <= o.cfg.Chunking.Size {
		return o.sendOnce(m.Bytes)
	}
	return o.sendChunked(m.Bytes)
}

// sendChunked preserves the leading 0xF0 on the first chunk and the trailing
// 0xF7 on the last, invoking the configured Wait callback between chunks;
// Wait returning false aborts the remaining send with Aborted.
func (o *Out) sendChunked(body []byte) error {
	size := o.cfg.Chunking.Size
	written := 0
	for off := 0; off < len(body); off += size {
		end := off + size
		if end > len(body) {
			end = len(body)
		}
		chunk := body[off:end]
		if err := o.sendOnce(chunk); err != nil {
			return err
		}
		written += len(chunk)
		if end < len(body) && o.cfg.Chunking.Wait != nil {
			if !o.cfg.Chunking.Wait(o.cfg.Chunking.Interval, written) {
				return midierr.New(midierr.DomainCore, midierr.Aborted, "SysEx chunked send aborted by caller")
			}
			time.Sleep(o.cfg.Chunking.Interval)
		}
	}
	return nil
}

// stage copies data through the preallocated staging ring and hands back a
// reused scratch slice holding the same bytes, so the caller never
// allocates to stand up the buffer it sends from. On overflow it grows the
// ring once (the real-time path's one-shot buffer-grow policy) and retries;
// a message that still doesn't fit after growing is reported as
// NoBufferSpace rather than silently dropped.
func (o *Out) stage(data []byte) ([]byte, error) {
	if _, ok := o.staging.Write(data); !ok {
		o.staging.Grow()
		if _, ok := o.staging.Write(data); !ok {
			return nil, midierr.New(midierr.DomainCore, midierr.NoBufferSpace, "message exceeds staging ring buffer capacity")
		}
	}
	if len(data) > len(o.scratch) {
		o.scratch = make([]byte, len(data))
	}
	n := o.staging.Read(o.scratch)
	return o.scratch[:n], nil
}

// sendOnce stages data through the ring, then sends it, growing the
// backend's own buffers and retrying exactly once if the backend reports
// NoBufferSpace.
func (o *Out) sendOnce(data []byte) error {
	buf, err := o.stage(data)
	if err != nil {
		return err
	}
	err = o.backend.Send(buf)
	if err == nil {
		return nil
	}
	if !isNoBufferSpace(err) {
		return err
	}
	o.backend.GrowBuffers()
	return o.backend.Send(buf)
}

// SendUMP sends a sequence of UMP packets one at a time, skipping NOOP
// packets and applying the same grow-and-retry-once policy per packet.
func (o *Out) SendUMP(packets []ump.Packet) error {
	for _, p := range packets {
		if p.Type() == ump.TypeUtility && len(p.Words) > 0 && p.Words[0]&0x00F00000 == 0 {
			continue // NOOP utility message: nothing to transmit.
		}
		if err := o.sendUMPOnce(p.Words); err != nil {
			return err
		}
	}
	return nil
}

// sendUMPOnce encodes words into the reused byte scratch, stages them
// through the same ring sendOnce uses, decodes back into a reused word
// buffer, and sends with the same grow-and-retry-once policy.
func (o *Out) sendUMPOnce(words []uint32) error {
	n := len(words) * 4
	if n > len(o.wordBytes) {
		o.wordBytes = make([]byte, n)
	}
	wb := o.wordBytes[:n]
	for i, w := range words {
		binary.BigEndian.PutUint32(wb[i*4:], w)
	}

	buf, err := o.stage(wb)
	if err != nil {
		return err
	}
	if len(words) > len(o.wordScratch) {
		o.wordScratch = make([]uint32, len(words))
	}
	out := o.wordScratch[:len(words)]
	for i := range out {
		out[i] = binary.BigEndian.Uint32(buf[i*4:])
	}

	err = o.backend.SendUMP(out)
	if err == nil {
		return nil
	}
	if !isNoBufferSpace(err) {
		return err
	}
	o.backend.GrowBuffers()
	return o.backend.SendUMP(out)
}

func isNoBufferSpace(err error) bool {
	me, ok := err.(*midierr.Error)
	return ok && me.Kind == midierr.NoBufferSpace
}
