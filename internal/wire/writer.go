package wire

import (
	"encoding/binary"
	"math"
)

// Writer is an append-only byte buffer for building request frames,
// using this protocol's own framing (packed integers, not 4-byte-
// aligned XDR).
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with a pre-sized backing array.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated buffer. The returned slice aliases the
// Writer's internal storage and must not be retained across further
// writes.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteByte appends a single byte.
func (w *Writer) WriteByte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBool appends a one-byte boolean (0 or 1).
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteInt16 appends a fixed-width big-endian int16.
func (w *Writer) WriteInt16(v int16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], uint16(v))
	w.buf = append(w.buf, tmp[:]...)
}

// WriteInt32 appends a fixed-width big-endian int32.
func (w *Writer) WriteInt32(v int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	w.buf = append(w.buf, tmp[:]...)
}

// WriteInt64 appends a fixed-width big-endian int64.
func (w *Writer) WriteInt64(v int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	w.buf = append(w.buf, tmp[:]...)
}

// WriteFloat64 appends a fixed-width big-endian IEEE-754 double.
func (w *Writer) WriteFloat64(v float64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v))
	w.buf = append(w.buf, tmp[:]...)
}

// WritePackedInt32 appends v in packed sorted-integer form (spec §4.1).
func (w *Writer) WritePackedInt32(v int32) {
	w.buf = WritePackedInt32(w.buf, v)
}

// WritePackedInt64 appends v in packed sorted-integer form (spec §4.1).
func (w *Writer) WritePackedInt64(v int64) {
	w.buf = WritePackedInt64(w.buf, v)
}

// WriteString writes a packed-i32 byte length followed by the UTF-8
// bytes of s. An absent string is encoded as length -1 via WriteNullString.
func (w *Writer) WriteString(s string) {
	w.WritePackedInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteNullString encodes the absence of a string as packed-i32(-1),
// per spec §4.2 ("-1 denotes absent").
func (w *Writer) WriteNullString() {
	w.WritePackedInt32(-1)
}

// WriteBinary writes a packed-i32 length followed by the raw bytes.
func (w *Writer) WriteBinary(b []byte) {
	w.WritePackedInt32(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteInt32AtOffset patches a previously-written 4-byte big-endian slot
// at off with v. Used to back-patch a nested block's byte length after
// the block has been fully emitted (spec §4.2). Map encoding does not
// use it: a Map's length prefix is packed, not a fixed 4-byte slot.
func (w *Writer) WriteInt32AtOffset(v int32, off int) {
	binary.BigEndian.PutUint32(w.buf[off:off+4], uint32(v))
}

// Reserve appends n zero bytes and returns the offset they start at, for
// later patching with WriteInt32AtOffset.
func (w *Writer) Reserve(n int) int {
	off := len(w.buf)
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
	return off
}
