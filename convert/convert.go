// Package convert implements the bidirectional MIDI 1 <-> UMP translator.
package convert

import (
	"github.com/kestrel-audio/midi/midi1"
	"github.com/kestrel-audio/midi/midierr"
	"github.com/kestrel-audio/midi/ump"
)

// Context carries the running-status state needed for the MIDI1->UMP
// direction; it is caller-owned so multiple independent streams can convert
// concurrently.
type Context struct {
	Group   uint8 // 0-15, caller-selected, default 0
	running byte
}

func chanVoiceOpcode(status byte) uint32 {
	return uint32(status & 0xF0)
}

// MIDI1ToUMP converts a single MIDI 1 message to its UMP representation,
// which may be 1 packet (channel voice, real-time, system common) or several
// packets (a SysEx7 body chunked into 6-byte payload groups).
func (c *Context) MIDI1ToUMP(m midi1.Message) ([]ump.Packet, error) {
	if len(m.Bytes) == 0 {
		return nil, midierr.New(midierr.DomainCore, midierr.Malformed, "empty MIDI1 message")
	}

	status := m.Bytes[0]
	group := uint32(c.Group&0x0F) << 24

	switch {
	case m.IsRealTime():
		word := uint32(ump.TypeSystemRealTime)<<28 | group | uint32(status)<<16
		return []ump.Packet{{Words: []uint32{word}, Timestamp: m.Timestamp}}, nil

	case status >= 0xF1 && status <= 0xF6:
		word := uint32(ump.TypeSystemRealTime)<<28 | group | uint32(status)<<16
		if len(m.Bytes) > 1 {
			word |= uint32(m.Bytes[1]) << 8
		}
		if len(m.Bytes) > 2 {
			word |= uint32(m.Bytes[2])
		}
		return []ump.Packet{{Words: []uint32{word}, Timestamp: m.Timestamp}}, nil

	case m.IsSysEx():
		c.running = 0
		return c.sysex7ToUMP(m)

	case m.IsChannelVoice():
		c.running = status
		data1, data2 := byte(0), byte(0)
		if len(m.Bytes) > 1 {
			data1 = m.Bytes[1]
		}
		if len(m.Bytes) > 2 {
			data2 = m.Bytes[2]
		}
		word := uint32(ump.TypeMIDI1ChannelVoi)<<28 | group | chanVoiceOpcode(status)<<16 |
			uint32(status&0x0F)<<16 | uint32(data1)<<8 | uint32(data2)
		return []ump.Packet{{Words: []uint32{word}, Timestamp: m.Timestamp}}, nil

	default:
		return nil, midierr.New(midierr.DomainCore, midierr.Unrepresentable, "no UMP mapping for status")
	}
}

// sysex7Status bits distinguish single/start/continue/end SysEx7 packets.
const (
	sysex7Single   = 0x0
	sysex7Start    = 0x1
	sysex7Continue = 0x2
	sysex7End      = 0x3
)

func (c *Context) sysex7ToUMP(m midi1.Message) ([]ump.Packet, error) {
	// Strip the bracketing 0xF0/0xF7; chunk the body into <=6-byte groups.
	body := m.Bytes
	if len(body) > 0 && body[0] == midi1.SysExStart {
		body = body[1:]
	}
	if len(body) > 0 && body[len(body)-1] == midi1.SysExEnd {
		body = body[:len(body)-1]
	}

	group := uint32(c.Group&0x0F) << 24
	var packets []ump.Packet
	if len(body) == 0 {
		word0 := uint32(ump.TypeData64SysEx7)<<28 | group | uint32(sysex7Single)<<20
		return []ump.Packet{{Words: []uint32{word0, 0}, Timestamp: m.Timestamp}}, nil
	}

	for off := 0; off < len(body); off += 6 {
		end := off + 6
		if end > len(body) {
			end = len(body)
		}
		chunk := body[off:end]

		var status uint32
		switch {
		case off == 0 && end == len(body):
			status = sysex7Single
		case off == 0:
			status = sysex7Start
		case end == len(body):
			status = sysex7End
		default:
			status = sysex7Continue
		}

		word0 := uint32(ump.TypeData64SysEx7)<<28 | group | status<<20 | uint32(len(chunk))<<16
		var word1 uint32
		for i, b := range chunk {
			shift := 24 - 8*i
			word1 |= uint32(b) << shift
		}
		packets = append(packets, ump.Packet{Words: []uint32{word0, word1}, Timestamp: m.Timestamp})
	}
	return packets, nil
}

// scaleVelocity16To7 rounds a 16-bit velocity down to 7 bits, half-up, and
// clamps to >=1 for note-on unless the original value was exactly 0, which
// is preserved to keep note-off semantics.
func scaleVelocity16To7(v uint16, isNoteOn bool) byte {
	if v == 0 {
		return 0
	}
	scaled := (uint32(v)*127 + 32768) / 65535
	if isNoteOn && scaled == 0 {
		scaled = 1
	}
	if scaled > 127 {
		scaled = 127
	}
	return byte(scaled)
}

func scaleController32To7(v uint32) byte {
	return byte(v >> 25)
}

func scalePitch16To14(v uint16) (lsb, msb byte) {
	v14 := uint16(uint32(v) >> 2)
	return byte(v14 & 0x7F), byte((v14 >> 7) & 0x7F)
}

// SysExAccumulator reassembles a UMP SysEx7 Start/Continue/.../End chunk
// sequence into a single bracketed MIDI 1 SysEx message. UMP->MIDI1
// conversion is otherwise stateless; this is the one piece of per-stream
// state it needs. A converter processing multiple interleaved group
// streams should keep one accumulator per group.
type SysExAccumulator struct {
	buf    []byte
	active bool
	ts     int64
}

// Feed consumes one SysEx7 packet, returning a completed Message when status
// bits are Single or End, or (nil, nil) when more chunks are expected.
func (a *SysExAccumulator) Feed(p ump.Packet) (*midi1.Message, error) {
	if len(p.Words) != 2 {
		return nil, midierr.New(midierr.DomainCore, midierr.Malformed, "sysex7 UMP must be 2 words")
	}
	status := (p.Words[0] >> 20) & 0x0F
	n := int((p.Words[0] >> 16) & 0x0F)
	w1 := p.Words[1]
	var data []byte
	for i := 0; i < n && i < 6; i++ {
		shift := 24 - 8*i
		data = append(data, byte((w1>>shift)&0xFF))
	}

	switch status {
	case sysex7Single:
		msg := midi1.Message{Bytes: append(append([]byte{midi1.SysExStart}, data...), midi1.SysExEnd), Timestamp: p.Timestamp}
		return &msg, nil
	case sysex7Start:
		a.buf = append([]byte{}, data...)
		a.active = true
		a.ts = p.Timestamp
		return nil, nil
	case sysex7Continue:
		if !a.active {
			return nil, midierr.New(midierr.DomainCore, midierr.Malformed, "sysex7 continue with no start")
		}
		a.buf = append(a.buf, data...)
		return nil, nil
	case sysex7End:
		if !a.active {
			return nil, midierr.New(midierr.DomainCore, midierr.Malformed, "sysex7 end with no start")
		}
		a.buf = append(a.buf, data...)
		bytes := append(append([]byte{midi1.SysExStart}, a.buf...), midi1.SysExEnd)
		msg := midi1.Message{Bytes: bytes, Timestamp: a.ts}
		a.buf = nil
		a.active = false
		return &msg, nil
	}
	return nil, midierr.New(midierr.DomainCore, midierr.Malformed, "unknown sysex7 status bits")
}

// UMPToMIDI1 converts a single UMP packet to its MIDI 1 representation.
// sysex may be nil if the caller knows no SysEx7 traffic will arrive;
// passing one is required to correctly reassemble multi-packet SysEx7
// sequences. Type-4 (MIDI 2 channel voice) messages with no MIDI-1 analog
// (per-note controllers, registered per-note, 32-bit NRPN data) return an
// Unrepresentable error; callers decide whether to drop them.
func UMPToMIDI1(p ump.Packet, sysex *SysExAccumulator) (*midi1.Message, error) {
	if len(p.Words) == 0 {
		return nil, midierr.New(midierr.DomainCore, midierr.Malformed, "empty UMP packet")
	}

	switch p.Type() {
	case ump.TypeSystemRealTime:
		status := byte((p.Words[0] >> 16) & 0xFF)
		b := []byte{status}
		if status >= 0xF1 && status <= 0xF6 {
			switch status {
			case midi1.SysCommonSongPos:
				b = append(b, byte((p.Words[0]>>8)&0x7F), byte(p.Words[0]&0x7F))
			case midi1.SysCommonMTC, midi1.SysCommonSongSel:
				b = append(b, byte((p.Words[0]>>8)&0x7F))
			}
		}
		msg := midi1.Message{Bytes: b, Timestamp: p.Timestamp}
		return &msg, nil

	case ump.TypeMIDI1ChannelVoi:
		w := p.Words[0]
		status := byte((w >> 16) & 0xF0) | byte((w>>16)&0x0F)
		data1 := byte((w >> 8) & 0x7F)
		data2 := byte(w & 0x7F)
		n, _ := midi1DataCount(status)
		bytes := []byte{status}
		if n >= 1 {
			bytes = append(bytes, data1)
		}
		if n >= 2 {
			bytes = append(bytes, data2)
		}
		msg := midi1.Message{Bytes: bytes, Timestamp: p.Timestamp}
		return &msg, nil

	case ump.TypeData64SysEx7:
		if sysex == nil {
			sysex = &SysExAccumulator{}
		}
		return sysex.Feed(p)

	case ump.TypeMIDI2ChannelVoi:
		msg, err := midi2ChannelVoiceToMIDI1(p)
		if err != nil {
			return nil, err
		}
		return &msg, nil

	default:
		return nil, midierr.New(midierr.DomainCore, midierr.Unrepresentable, "UMP type has no MIDI1 mapping")
	}
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

// midi2ChannelVoiceToMIDI1 down-scales a type-4 packet for the subset of
// status kinds representable in MIDI 1.
func midi2ChannelVoiceToMIDI1(p ump.Packet) (midi1.Message, error) {
	if len(p.Words) != 2 {
		return midi1.Message{}, midierr.New(midierr.DomainCore, midierr.Malformed, "MIDI2 channel voice UMP must be 2 words")
	}
	w0, w1 := p.Words[0], p.Words[1]
	opcode := byte((w0 >> 16) & 0xF0)
	channel := byte((w0 >> 16) & 0x0F)

	switch opcode {
	case midi1.NoteOff, midi1.NoteOn:
		velocity16 := uint16(w1 >> 16)
		vel7 := scaleVelocity16To7(velocity16, opcode == midi1.NoteOn)
		note := byte((w0 >> 8) & 0x7F)
		return midi1.Message{Bytes: []byte{opcode | channel, note, vel7}, Timestamp: p.Timestamp}, nil

	case midi1.PolyAftertouch:
		note := byte((w0 >> 8) & 0x7F)
		pressure := scaleController32To7(w1)
		return midi1.Message{Bytes: []byte{opcode | channel, note, pressure}, Timestamp: p.Timestamp}, nil

	case midi1.ControlChange:
		index := byte((w0 >> 8) & 0x7F)
		value := scaleController32To7(w1)
		return midi1.Message{Bytes: []byte{opcode | channel, index, value}, Timestamp: p.Timestamp}, nil

	case midi1.ProgramChange:
		program := byte((w1 >> 24) & 0x7F)
		return midi1.Message{Bytes: []byte{opcode | channel, program}, Timestamp: p.Timestamp}, nil

	case midi1.ChannelPressure:
		pressure := scaleController32To7(w1)
		return midi1.Message{Bytes: []byte{opcode | channel, pressure}, Timestamp: p.Timestamp}, nil

	case midi1.PitchBend:
		pitch16 := uint16(w1 >> 16)
		lsb, msb := scalePitch16To14(pitch16)
		return midi1.Message{Bytes: []byte{opcode | channel, lsb, msb}, Timestamp: p.Timestamp}, nil

	default:
		// Per-note controllers, registered per-note controllers, and 32-bit
		// NRPN data have no MIDI 1 analog.
		return midi1.Message{}, midierr.New(midierr.DomainCore, midierr.Unrepresentable, "MIDI2 channel voice opcode has no MIDI1 analog")
	}
}
