// Package ringbuf implements a single-producer single-consumer byte ring
// buffer, preallocated at construction so the real-time send path never
// allocates on a backend's audio callback thread.
package ringbuf

import "sync/atomic"

// Ring is an SPSC ring buffer sized once at construction.
type Ring struct {
	buf        []byte
	mask       uint64
	writeIdx   atomic.Uint64
	readIdx    atomic.Uint64
}

// New creates a Ring whose capacity is the next power of two >= size.
func New(size int) *Ring {
	capacity := 1
	for capacity < size {
		capacity <<= 1
	}
	return &Ring{buf: make([]byte, capacity), mask: uint64(capacity - 1)}
}

// Cap returns the buffer's allocated capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Len returns the number of unread bytes currently buffered.
func (r *Ring) Len() int {
	return int(r.writeIdx.Load() - r.readIdx.Load())
}

// Free returns the number of bytes that can be written without overwriting
// unread data.
func (r *Ring) Free() int { return len(r.buf) - r.Len() }

// Write copies all of p and returns (len(p), true), or, if p does not fit in
// full, writes nothing and returns (0, false). Callers typically invoke a
// buffer-grow hook and retry once on this condition.
func (r *Ring) Write(p []byte) (n int, ok bool) {
	if len(p) > r.Free() {
		return 0, false
	}
	w := r.writeIdx.Load()
	for i, b := range p {
		r.buf[(w+uint64(i))&r.mask] = b
	}
	r.writeIdx.Store(w + uint64(len(p)))
	return len(p), true
}

// Read copies up to len(p) unread bytes into p, returning the count.
func (r *Ring) Read(p []byte) int {
	avail := r.Len()
	n := len(p)
	if n > avail {
		n = avail
	}
	rd := r.readIdx.Load()
	for i := 0; i < n; i++ {
		p[i] = r.buf[(rd+uint64(i))&r.mask]
	}
	r.readIdx.Store(rd + uint64(n))
	return n
}

// Grow reallocates the ring at double its current capacity, preserving
// unread bytes. Not safe to call concurrently with Write/Read; it is meant
// for the output engine's buffer-grow hook between sends, not the realtime
// callback itself.
func (r *Ring) Grow() {
	old := r.buf
	oldMask := r.mask
	newCap := len(old) * 2
	nb := make([]byte, newCap)
	rd := r.readIdx.Load()
	w := r.writeIdx.Load()
	n := int(w - rd)
	for i := 0; i < n; i++ {
		nb[i] = old[(rd+uint64(i))&oldMask]
	}
	r.buf = nb
	r.mask = uint64(newCap - 1)
	r.readIdx.Store(0)
	r.writeIdx.Store(uint64(n))
}
