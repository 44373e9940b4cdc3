package midi1

// Encoder serializes Messages back to a MIDI 1 byte stream, optionally
// applying running status. It is the inverse of Decoder: encoding what
// Decoder parsed reproduces the original bytes modulo running-status
// collapsing.
type Encoder struct {
	// UseRunningStatus, when true, omits a channel-voice status byte that
	// repeats the previous one written by this Encoder.
	UseRunningStatus bool

	running byte
}

// Reset clears the encoder's running-status memory.
func (e *Encoder) Reset() { e.running = 0 }

// Encode appends m's wire bytes to dst and returns the result.
func (e *Encoder) Encode(dst []byte, m Message) []byte {
	if len(m.Bytes) == 0 {
		return dst
	}
	status := m.Bytes[0]
	if e.UseRunningStatus && isChannelVoiceStatus(status) && status == e.running {
		dst = append(dst, m.Bytes[1:]...)
	} else {
		dst = append(dst, m.Bytes...)
	}
	if isChannelVoiceStatus(status) {
		e.running = status
	} else if !m.IsRealTime() {
		e.running = 0
	}
	return dst
}

// EncodeAll is a convenience wrapper encoding a full message slice.
func (e *Encoder) EncodeAll(msgs []Message) []byte {
	var dst []byte
	for _, m := range msgs {
		dst = e.Encode(dst, m)
	}
	return dst
}
