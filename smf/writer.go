package smf

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/kestrel-audio/midi/internal/vlq"
	"github.com/kestrel-audio/midi/midi1"
	"github.com/kestrel-audio/midi/midierr"
)

// WriterOptions configures serialization. UseRunningStatus mirrors
// midi1.Encoder's knob; Division lets a caller override the source SMF's
// division (e.g. re-quantizing a format-0 capture to SMPTE).
type WriterOptions struct {
	UseRunningStatus bool
	Division         *Division
}

// Write serializes s to w: one MThd chunk followed by len(s.Tracks) MTrk
// chunks, each ending with a mandatory end-of-track meta-event even if the
// caller's Track didn't include one explicitly.
func Write(w io.Writer, s *SMF, opts WriterOptions) error {
	if s.Format == Format0 && len(s.Tracks) != 1 {
		return midierr.New(midierr.DomainCore, midierr.Malformed, "format-0 output must carry exactly one track")
	}

	division := s.Division
	if opts.Division != nil {
		division = *opts.Division
	}

	var hdr [14]byte
	copy(hdr[0:4], "MThd")
	binary.BigEndian.PutUint32(hdr[4:8], 6)
	binary.BigEndian.PutUint16(hdr[8:10], uint16(s.Format))
	binary.BigEndian.PutUint16(hdr[10:12], uint16(len(s.Tracks)))
	binary.BigEndian.PutUint16(hdr[12:14], division.Raw())
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	for _, track := range s.Tracks {
		body, err := encodeTrack(track, opts)
		if err != nil {
			return err
		}
		var chunkHdr [8]byte
		copy(chunkHdr[0:4], "MTrk")
		binary.BigEndian.PutUint32(chunkHdr[4:8], uint32(len(body)))
		if _, err := w.Write(chunkHdr[:]); err != nil {
			return err
		}
		if _, err := w.Write(body); err != nil {
			return err
		}
	}
	return nil
}

func encodeTrack(track Track, opts WriterOptions) ([]byte, error) {
	var buf bytes.Buffer
	var running byte
	hasEndOfTrack := false

	for _, ev := range track.Events {
		buf.Write(vlq.Encode(nil, ev.DeltaTicks))

		switch ev.Kind {
		case EventMIDI:
			if len(ev.Bytes) == 0 {
				return nil, midierr.New(midierr.DomainCore, midierr.Malformed, "MIDI event with no bytes")
			}
			status := ev.Bytes[0]
			isChannelVoice := status >= midi1.NoteOff && status < midi1.SysExStart
			if opts.UseRunningStatus && isChannelVoice && status == running {
				buf.Write(ev.Bytes[1:])
			} else {
				buf.Write(ev.Bytes)
			}
			if isChannelVoice {
				running = status
			} else {
				running = 0
			}

		case EventSysEx:
			lead := byte(midi1.SysExStart)
			if ev.Continuation {
				lead = midi1.SysExEnd
			}
			buf.WriteByte(lead)
			buf.Write(vlq.Encode(nil, uint32(len(ev.Data))))
			buf.Write(ev.Data)
			running = 0

		case EventMeta:
			buf.WriteByte(0xFF)
			buf.WriteByte(ev.MetaType)
			buf.Write(vlq.Encode(nil, uint32(len(ev.Data))))
			buf.Write(ev.Data)
			if ev.MetaType == MetaEndOfTrack {
				hasEndOfTrack = true
			}
			running = 0
		}
	}

	if !hasEndOfTrack {
		buf.Write(vlq.Encode(nil, 0))
		buf.WriteByte(0xFF)
		buf.WriteByte(MetaEndOfTrack)
		buf.WriteByte(0x00)
	}

	return buf.Bytes(), nil
}
