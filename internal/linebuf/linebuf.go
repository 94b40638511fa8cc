// Package linebuf accumulates bytes read from a file and splits them into
// newline-terminated lines inside a buffer of fixed capacity.
package linebuf

import "bytes"

// DefaultCapacity matches the buffer size notify-tail has always used.
const DefaultCapacity = 4096

const minCapacity = 2

// Buffer holds at most Cap()-1 bytes of an unfinished line. Lines longer
// than that are emitted in Cap()-1 sized fragments.
type Buffer struct {
	data []byte
	fill int
}

func New(capacity int) *Buffer {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	return &Buffer{data: make([]byte, capacity)}
}

func (b *Buffer) Cap() int {
	return len(b.data)
}

func (b *Buffer) Len() int {
	return b.fill
}

// Space returns the writable region after the fill cursor. The final byte of
// the buffer is never handed out, so a full read leaves fill at Cap()-1.
func (b *Buffer) Space() []byte {
	return b.data[b.fill : len(b.data)-1]
}

// Commit advances the fill cursor after n bytes were written into Space().
func (b *Buffer) Commit(n int) {
	if n <= 0 {
		return
	}
	limit := len(b.data) - 1
	b.fill += n
	if b.fill > limit {
		b.fill = limit
	}
}

// Pending returns the unterminated bytes waiting for a separator.
func (b *Buffer) Pending() []byte {
	return b.data[:b.fill]
}

func (b *Buffer) Reset() {
	b.fill = 0
}

// Split emits every complete line in the buffer, excluding the separator,
// and moves the remainder to the front. Empty lines are skipped. The slice
// passed to emit is only valid for the duration of the call.
//
// If the remainder fills the buffer it is emitted as is and Split reports
// forced = true.
func (b *Buffer) Split(emit func(line []byte)) (forced bool) {
	start := 0
	for {
		index := bytes.IndexByte(b.data[start:b.fill], '\n')
		if index < 0 {
			break
		}
		if index > 0 {
			emit(b.data[start : start+index])
		}
		start += index + 1
	}

	if start > 0 {
		b.fill = copy(b.data, b.data[start:b.fill])
	}

	if b.fill >= len(b.data)-1 {
		emit(b.data[:b.fill])
		b.fill = 0
		return true
	}
	return false
}

// Feed pushes p through the buffer as a sequence of bounded reads and
// returns how many forced emissions happened.
func (b *Buffer) Feed(p []byte, emit func(line []byte)) int {
	forced := 0
	for len(p) > 0 {
		n := copy(b.Space(), p)
		b.Commit(n)
		p = p[n:]
		if b.Split(emit) {
			forced++
		}
	}
	return forced
}
