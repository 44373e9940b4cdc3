package midi1

// Decoder is a byte-stream state machine with four states: IDLE,
// CHANNEL_VOICE(status,n), SYSTEM_COMMON(status,n), and SYSEX. It frames a
// raw MIDI 1 byte stream into well-formed Messages, honoring running status
// and reassembling System Exclusive bodies.
type Decoder struct {
	// OnWarning, if set, is called for each non-fatal resync event.
	OnWarning func(msg string)

	state   decState
	status  byte
	need    int
	data    []byte
	startTs int64
	running byte // 0 means "no running status"

	sysexBuf []byte
	sysexTs  int64
}

type decState int

const (
	stIdle decState = iota
	stChannel
	stSysCommon
	stSysEx
)

func isChannelVoiceStatus(b byte) bool {
	return b >= NoteOff && b < SysExStart
}

func isStatusByte(b byte) bool { return b&0x80 != 0 }

func (d *Decoder) warn(msg string) {
	if d.OnWarning != nil {
		d.OnWarning(msg)
	}
}

// Reset clears all decoder state, including running status. Callers should
// Reset a Decoder when a port is closed and reopened: a fresh session has no
// running status carried over from the last one.
func (d *Decoder) Reset() {
	*d = Decoder{OnWarning: d.OnWarning}
}

// Feed decodes data, using ts as the timestamp for every message whose first
// byte lies within this call (a per-buffer timestamp hint). It returns zero
// or more completed Messages, in order.
func (d *Decoder) Feed(data []byte, ts int64) []Message {
	return d.FeedFunc(data, func(int) int64 { return ts })
}

// FeedFunc is like Feed but calls tsAt(i) to obtain the timestamp hint for
// byte data[i], supporting per-byte timestamp sources.
func (d *Decoder) FeedFunc(data []byte, tsAt func(i int) int64) []Message {
	var out []Message
	i := 0
	for i < len(data) {
		b := data[i]
		i++
		d.pushByte(b, tsAt(i-1), &out)
	}
	return out
}

func (d *Decoder) pushByte(b byte, ts int64, out *[]Message) {
	// System Real-Time bytes are standalone messages that never disturb the
	// prevailing state, even mid-SysEx.
	if b >= RealTimeFirst {
		*out = append(*out, Message{Bytes: []byte{b}, Timestamp: ts})
		return
	}

	if b == SysExEnd {
		if d.state == stSysEx {
			d.sysexBuf = append(d.sysexBuf, b)
			*out = append(*out, Message{Bytes: d.sysexBuf, Timestamp: d.sysexTs})
			d.sysexBuf = nil
			d.state = stIdle
			return
		}
		d.warn("stray SysEx end byte with no SysEx in progress")
		return
	}

	if isStatusByte(b) {
		if d.state == stSysEx {
			// Any non-real-time, non-0xF7 status interrupts SysEx: emit the
			// truncated body with a warning, then reprocess b as a new
			// status.
			*out = append(*out, Message{Bytes: d.sysexBuf, Timestamp: d.sysexTs})
			d.sysexBuf = nil
			d.state = stIdle
			d.warn("status byte interrupted SysEx; truncated message emitted")
		}
		d.startStatus(b, ts, out)
		return
	}

	// Data byte (high bit clear).
	switch d.state {
	case stSysEx:
		d.sysexBuf = append(d.sysexBuf, b)
	case stChannel, stSysCommon:
		d.data = append(d.data, b)
		if len(d.data) == d.need {
			d.emitCollected(out)
		}
	case stIdle:
		if d.running == 0 {
			d.warn("data byte with no status and no running status; discarded")
			return
		}
		// Running status: this data byte begins an implied channel-voice
		// message carrying the last channel-voice status forward.
		n, _ := dataBytesFor(d.running)
		d.status = d.running
		d.need = n
		d.data = append(d.data[:0], b)
		d.startTs = ts
		d.state = stChannel
		if len(d.data) == d.need {
			d.emitCollected(out)
		}
	}
}

func (d *Decoder) startStatus(status byte, ts int64, out *[]Message) {
	if status == SysExStart {
		d.sysexBuf = []byte{status}
		d.sysexTs = ts
		d.state = stSysEx
		return
	}

	n, ok := dataBytesFor(status)
	if !ok {
		d.warn("unknown status byte")
		d.state = stIdle
		return
	}

	if !isChannelVoiceStatus(status) {
		// System Common clears running status.
		d.running = 0
	}

	if n == 0 {
		*out = append(*out, Message{Bytes: []byte{status}, Timestamp: ts})
		d.state = stIdle
		return
	}

	d.status = status
	d.need = n
	d.data = d.data[:0]
	d.startTs = ts
	if isChannelVoiceStatus(status) {
		d.state = stChannel
	} else {
		d.state = stSysCommon
	}
}

func (d *Decoder) emitCollected(out *[]Message) {
	bytes := make([]byte, 0, 1+len(d.data))
	bytes = append(bytes, d.status)
	bytes = append(bytes, d.data...)
	*out = append(*out, Message{Bytes: bytes, Timestamp: d.startTs})
	if d.state == stChannel {
		d.running = d.status
	}
	d.state = stIdle
}
