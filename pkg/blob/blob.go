// Package blob provides the owned-byte-buffer type and binary I/O
// primitives shared by every codec in echotools: big/little endian
// fixed-width reads and writes, and MIDI-style variable-length
// quantities.
//
// Grounded on the teacher's field-by-field binary.Write/binary.Read
// calls in pkg/vm/audio/{midi.go,wav.go}, generalized into reusable
// reader/writer types so each codec package doesn't hand-roll its own
// byte-cursor bookkeeping.
package blob

import "github.com/zurustar/echotools/pkg/echoerr"

// Blob is an owned byte buffer with a known length. Every loaded file,
// instrument record, PCM sample and intermediate codec output in this
// module is a Blob: its length is always exactly the number of valid
// bytes, with no implicit NUL terminator (spec.md §3).
type Blob []byte

// Reader walks a Blob front-to-back, tracking a byte offset so errors can
// be reported with useful context.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential reading.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int { return len(r.data) - r.pos }

// Bytes returns the full underlying buffer, for hex-dump error context.
func (r *Reader) Bytes() []byte { return r.data }

func (r *Reader) need(n int) error {
	if r.Len() < n {
		return echoerr.AtWithContext(echoerr.MalformedInput, r.pos, r.data,
			"need %d bytes, only %d remain", n, r.Len())
	}
	return nil
}

// U8 reads one byte.
func (r *Reader) U8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// Take reads n raw bytes.
func (r *Reader) Take(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, nil
}

// Skip advances the cursor n bytes without returning them.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.pos += n
	return nil
}

// BE16 reads a big-endian uint16.
func (r *Reader) BE16() (uint16, error) {
	b, err := r.Take(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// BE32 reads a big-endian uint32.
func (r *Reader) BE32() (uint32, error) {
	b, err := r.Take(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// BE24 reads a big-endian 24-bit unsigned integer (used by the SLZ24 size
// header).
func (r *Reader) BE24() (uint32, error) {
	b, err := r.Take(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// LE16 reads a little-endian uint16.
func (r *Reader) LE16() (uint16, error) {
	b, err := r.Take(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// LE32 reads a little-endian uint32.
func (r *Reader) LE32() (uint32, error) {
	b, err := r.Take(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// VLQ reads a MIDI-style variable-length quantity: 7 data bits per byte,
// high bit set on every byte but the last, up to 4 bytes (spec.md §4.1.1).
func (r *Reader) VLQ() (uint32, error) {
	var value uint32
	for i := 0; i < 4; i++ {
		b, err := r.U8()
		if err != nil {
			return 0, err
		}
		value = value<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return value, nil
		}
	}
	return 0, echoerr.AtWithContext(echoerr.MalformedInput, r.pos, r.data, "variable-length quantity exceeds 4 bytes")
}

// Writer accumulates output bytes for a codec's serialized form.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// U8 appends one byte.
func (w *Writer) U8(b byte) { w.buf = append(w.buf, b) }

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// BE16 appends a big-endian uint16.
func (w *Writer) BE16(v uint16) { w.buf = append(w.buf, byte(v>>8), byte(v)) }

// BE24 appends a big-endian 24-bit unsigned integer.
func (w *Writer) BE24(v uint32) { w.buf = append(w.buf, byte(v>>16), byte(v>>8), byte(v)) }

// BE32 appends a big-endian uint32.
func (w *Writer) BE32(v uint32) {
	w.buf = append(w.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// LE16 appends a little-endian uint16.
func (w *Writer) LE16(v uint16) { w.buf = append(w.buf, byte(v), byte(v>>8)) }

// LE32 appends a little-endian uint32.
func (w *Writer) LE32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// VLQ appends v as a MIDI-style variable-length quantity.
func (w *Writer) VLQ(v uint32) {
	var stack [4]byte
	n := 0
	stack[n] = byte(v & 0x7F)
	n++
	v >>= 7
	for v > 0 {
		stack[n] = byte(v&0x7F) | 0x80
		n++
		v >>= 7
	}
	for i := n - 1; i >= 0; i-- {
		w.buf = append(w.buf, stack[i])
	}
}
