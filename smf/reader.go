package smf

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/kestrel-audio/midi/internal/vlq"
	"github.com/kestrel-audio/midi/midi1"
	"github.com/kestrel-audio/midi/midierr"
)

// Read parses a Standard MIDI File from r.
func Read(r io.Reader) (*SMF, error) {
	br := bufio.NewReader(r)

	format, division, ntracks, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	s := &SMF{Format: format, Division: division}

	if format == Format0 && ntracks != 1 {
		return nil, midierr.New(midierr.DomainCore, midierr.Malformed, "format-0 file must declare exactly one track")
	}

	for i := 0; i < int(ntracks); i++ {
		track, err := readTrack(br, s)
		if err != nil {
			return nil, midierr.Wrap(midierr.DomainCore, midierr.Malformed, err, "track body")
		}
		s.Tracks = append(s.Tracks, track)
	}
	return s, nil
}

func readChunkHeader(br *bufio.Reader) (id [4]byte, length uint32, err error) {
	if _, err = io.ReadFull(br, id[:]); err != nil {
		return id, 0, err
	}
	var lenBuf [4]byte
	if _, err = io.ReadFull(br, lenBuf[:]); err != nil {
		return id, 0, err
	}
	return id, binary.BigEndian.Uint32(lenBuf[:]), nil
}

func readHeader(br *bufio.Reader) (format Format, division Division, ntracks uint16, err error) {
	id, length, err := readChunkHeader(br)
	if err != nil {
		return 0, Division{}, 0, midierr.Wrap(midierr.DomainCore, midierr.Malformed, err, "MThd chunk header")
	}
	if id != [4]byte{'M', 'T', 'h', 'd'} {
		return 0, Division{}, 0, midierr.New(midierr.DomainCore, midierr.Malformed, "missing MThd chunk")
	}
	if length < 6 {
		return 0, Division{}, 0, midierr.New(midierr.DomainCore, midierr.Malformed, "MThd chunk shorter than 6 bytes")
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(br, body); err != nil {
		return 0, Division{}, 0, midierr.Wrap(midierr.DomainCore, midierr.Truncated, err, "MThd chunk body")
	}

	format = Format(binary.BigEndian.Uint16(body[0:2]))
	if format > Format2 {
		return 0, Division{}, 0, midierr.New(midierr.DomainCore, midierr.Malformed, "header format must be 0, 1, or 2")
	}
	ntracks = binary.BigEndian.Uint16(body[2:4])
	if ntracks < 1 {
		return 0, Division{}, 0, midierr.New(midierr.DomainCore, midierr.Malformed, "header declares zero tracks")
	}
	division = ParseDivision(binary.BigEndian.Uint16(body[4:6]))
	return format, division, ntracks, nil
}

func readTrack(br *bufio.Reader, s *SMF) (Track, error) {
	id, length, err := readChunkHeader(br)
	if err != nil {
		return Track{}, midierr.Wrap(midierr.DomainCore, midierr.Malformed, err, "MTrk chunk header")
	}
	if id != [4]byte{'M', 'T', 'r', 'k'} {
		return Track{}, midierr.New(midierr.DomainCore, midierr.Malformed, "expected MTrk chunk")
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(br, body); err != nil {
		return Track{}, midierr.Wrap(midierr.DomainCore, midierr.Truncated, err, "MTrk chunk body")
	}
	tr := bufio.NewReader(bytes.NewReader(body))

	var track Track
	var running byte
	var sawEndOfTrack bool

	for {
		delta, _, err := vlq.Read(tr)
		if err == io.EOF {
			break
		}
		if err != nil {
			s.warn("track: malformed delta-time VLQ: %v", err)
			break
		}

		first, err := tr.ReadByte()
		if err != nil {
			s.warn("track: truncated after delta-time")
			break
		}

		switch {
		case first == midi1.SysExStart || first == midi1.SysExEnd:
			length, _, err := vlq.Read(tr)
			if err != nil {
				s.warn("track: malformed SysEx length VLQ: %v", err)
				goto doneTrack
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(tr, data); err != nil {
				s.warn("track: truncated SysEx body")
				goto doneTrack
			}
			track.Events = append(track.Events, Event{
				DeltaTicks:   delta,
				Kind:         EventSysEx,
				Data:         data,
				Continuation: first == midi1.SysExEnd,
			})
			running = 0

		case first == 0xFF:
			metaType, err := tr.ReadByte()
			if err != nil {
				s.warn("track: truncated meta event")
				goto doneTrack
			}
			length, _, err := vlq.Read(tr)
			if err != nil {
				s.warn("track: malformed meta length VLQ: %v", err)
				goto doneTrack
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(tr, data); err != nil {
				s.warn("track: truncated meta body")
				goto doneTrack
			}
			track.Events = append(track.Events, Event{DeltaTicks: delta, Kind: EventMeta, MetaType: metaType, Data: data})
			if metaType == MetaEndOfTrack {
				sawEndOfTrack = true
			}

		case first&0x80 != 0:
			n, ok := midi1DataCount(first)
			if !ok {
				s.warn("track: unsupported status byte 0x%02X", first)
				goto doneTrack
			}
			data := make([]byte, n)
			if _, err := io.ReadFull(tr, data); err != nil {
				s.warn("track: truncated channel event")
				goto doneTrack
			}
			track.Events = append(track.Events, Event{DeltaTicks: delta, Kind: EventMIDI, Bytes: append([]byte{first}, data...)})
			running = first

		default:
			// Running status: first is actually the first data byte.
			if running == 0 {
				s.warn("track: data byte with no running status")
				goto doneTrack
			}
			n, _ := midi1DataCount(running)
			data := make([]byte, n)
			data[0] = first
			if n > 1 {
				if _, err := io.ReadFull(tr, data[1:]); err != nil {
					s.warn("track: truncated running-status event")
					goto doneTrack
				}
			}
			track.Events = append(track.Events, Event{DeltaTicks: delta, Kind: EventMIDI, Bytes: append([]byte{running}, data...)})
		}
	}

doneTrack:
	if !sawEndOfTrack {
		s.warn("track missing mandatory end-of-track meta event")
	}
	return track, nil
}

func midi1DataCount(status byte) (int, bool) {
	switch status & 0xF0 {
	case midi1.NoteOff, midi1.NoteOn, midi1.PolyAftertouch, midi1.ControlChange, midi1.PitchBend:
		return 2, true
	case midi1.ProgramChange, midi1.ChannelPressure:
		return 1, true
	}
	return 0, false
}
