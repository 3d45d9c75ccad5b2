package base

import "bytes"

// LineBuffer accumulates the inbound byte stream of one connection and extracts
// complete newline terminated lines from it.
//
// The buffer is owned by exactly one connection and must not be shared.
type LineBuffer struct {
	buf []byte
	off int // start of the unconsumed data
}

// NewLineBuffer creates an empty buffer with the given initial capacity
func NewLineBuffer(capacity int) *LineBuffer {
	return &LineBuffer{buf: make([]byte, 0, capacity)}
}

// Write appends p to the buffer. It never fails.
func (b *LineBuffer) Write(p []byte) (int, error) {
	// reclaim the consumed prefix before growing
	if b.off > 0 && len(b.buf)+len(p) > cap(b.buf) {
		n := copy(b.buf, b.buf[b.off:])
		b.buf = b.buf[:n]
		b.off = 0
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// NextLine removes the first complete line from the buffer and returns it without
// the trailing newline. ok is false if the buffer holds no complete line.
//
// The returned slice aliases the buffer and is only valid until the next call to Write.
func (b *LineBuffer) NextLine() (line []byte, ok bool) {
	i := bytes.IndexByte(b.buf[b.off:], '\n')
	if i < 0 {
		return nil, false
	}

	line = b.buf[b.off : b.off+i]
	b.off += i + 1

	if b.off == len(b.buf) {
		// everything consumed, restart at the beginning of the backing array.
		// line still points into the array, but its bytes are only overwritten by the next Write.
		b.buf = b.buf[:0]
		b.off = 0
	}
	return line, true
}

// Len returns the number of buffered bytes that have not been consumed yet
func (b *LineBuffer) Len() int {
	return len(b.buf) - b.off
}

// Pending returns a copy of the unconsumed bytes
func (b *LineBuffer) Pending() []byte {
	return append([]byte(nil), b.buf[b.off:]...)
}

// DrainLines passes every complete line to fn in order. It stops early if fn returns false.
func (b *LineBuffer) DrainLines(fn func(line []byte) bool) {
	for {
		line, ok := b.NextLine()
		if !ok || !fn(line) {
			return
		}
	}
}
