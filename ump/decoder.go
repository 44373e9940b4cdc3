package ump

import "github.com/kestrel-audio/midi/midierr"

// Decoder frames a stream of 32-bit words into Packets of the size their
// leading word declares.
type Decoder struct {
	// OnWarning reports a skipped/resynced word, mirroring midi1.Decoder.
	OnWarning func(msg string)

	pending []uint32
	want    int
	ts      int64
}

func (d *Decoder) warn(msg string) {
	if d.OnWarning != nil {
		d.OnWarning(msg)
	}
}

// Feed decodes words, attaching ts as the timestamp for every packet whose
// first word arrives in this call.
func (d *Decoder) Feed(words []uint32, ts int64) ([]Packet, error) {
	var out []Packet
	for _, w := range words {
		if d.want == 0 {
			n, err := sizeInWords(w)
			if err != nil {
				d.warn(err.Error())
				return out, midierr.Wrap(midierr.DomainCore, midierr.Malformed, err, "unknown UMP type nibble")
			}
			d.want = n
			d.ts = ts
			d.pending = d.pending[:0]
		}
		d.pending = append(d.pending, w)
		if len(d.pending) == d.want {
			words := make([]uint32, len(d.pending))
			copy(words, d.pending)
			out = append(out, Packet{Words: words, Timestamp: d.ts})
			d.want = 0
			d.pending = d.pending[:0]
		}
	}
	return out, nil
}

// Reset discards any partially accumulated packet.
func (d *Decoder) Reset() {
	d.pending = nil
	d.want = 0
}

// Pending reports whether a packet is mid-accumulation; end-of-stream while
// pending means the final packet was truncated.
func (d *Decoder) Pending() bool { return d.want != 0 }
