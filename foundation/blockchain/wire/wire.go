// Package wire provides the little-endian binary codec helpers shared by
// the transaction and block header serializers.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Reader walks a fixed-layout byte buffer, consuming one field at a time.
type Reader struct {
	buf []byte
	pos int
}

// NewReader constructs a Reader over buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *Reader) take(n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("wire: short read, need %d bytes, have %d", n, r.Remaining())
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Uint8 reads a single byte.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint32 reads a little-endian uint32.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Int32 reads a little-endian int32.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Fixed32 reads a fixed 32 byte field, such as a hash, unchanged.
func (r *Reader) Fixed32() ([32]byte, error) {
	var out [32]byte
	b, err := r.take(32)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// Fixed reads n raw bytes.
func (r *Reader) Fixed(n int) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// =============================================================================

// Writer accumulates a fixed-layout byte buffer one field at a time.
type Writer struct {
	buf []byte
}

// NewWriter constructs an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Uint8 appends a single byte.
func (w *Writer) Uint8(v uint8) {
	w.buf = append(w.buf, v)
}

// Uint32 appends a little-endian uint32.
func (w *Writer) Uint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Int32 appends a little-endian int32.
func (w *Writer) Int32(v int32) {
	w.Uint32(uint32(v))
}

// Fixed32 appends a 32 byte field unchanged.
func (w *Writer) Fixed32(v [32]byte) {
	w.buf = append(w.buf, v[:]...)
}

// Fixed appends raw bytes unchanged.
func (w *Writer) Fixed(b []byte) {
	w.buf = append(w.buf, b...)
}

// =============================================================================

// Reverse returns a new slice with the byte order of b reversed. Used to
// convert between a hash's internal (natural double-SHA-256 output) byte
// order and the reversed byte order used for ids on the wire and in hex.
func Reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
