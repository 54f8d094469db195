package wire

import (
	"encoding/binary"
	"math"
)

// Reader decodes a response frame from a byte slice, tracking a cursor.
// Every read that would cross the end of the buffer fails with
// BadProtocolMessage (spec §4.2) instead of panicking, since the buffer
// comes straight off the wire.
type Reader struct {
	buf    []byte
	offset int
}

// NewReader wraps buf for sequential decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Offset returns the current read cursor.
func (r *Reader) Offset() int { return r.offset }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.offset }

func (r *Reader) need(n int) error {
	if r.offset+n > len(r.buf) {
		return protoErrf("read past end of buffer: need %d bytes at offset %d, have %d", n, r.offset, len(r.buf))
	}
	return nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	b := r.buf[r.offset]
	r.offset++
	return b, nil
}

// ReadBool reads a one-byte boolean.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadInt16 reads a fixed-width big-endian int16.
func (r *Reader) ReadInt16() (int16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := int16(binary.BigEndian.Uint16(r.buf[r.offset:]))
	r.offset += 2
	return v, nil
}

// ReadInt32 reads a fixed-width big-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(r.buf[r.offset:]))
	r.offset += 4
	return v, nil
}

// ReadInt64 reads a fixed-width big-endian int64.
func (r *Reader) ReadInt64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(r.buf[r.offset:]))
	r.offset += 8
	return v, nil
}

// ReadFloat64 reads a fixed-width big-endian IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	bits := binary.BigEndian.Uint64(r.buf[r.offset:])
	r.offset += 8
	return math.Float64frombits(bits), nil
}

// ReadPackedInt32 reads a packed sorted int32 (spec §4.1).
func (r *Reader) ReadPackedInt32() (int32, error) {
	return ReadPackedInt32(r.buf, &r.offset)
}

// ReadPackedInt64 reads a packed sorted int64 (spec §4.1).
func (r *Reader) ReadPackedInt64() (int64, error) {
	return ReadPackedInt64(r.buf, &r.offset)
}

// ReadString reads a packed-i32 length followed by that many UTF-8
// bytes. A length of -1 denotes an absent string and yields ("", false).
func (r *Reader) ReadString() (string, bool, error) {
	n, err := r.ReadPackedInt32()
	if err != nil {
		return "", false, err
	}
	if n < 0 {
		return "", false, nil
	}
	if err := r.need(int(n)); err != nil {
		return "", false, err
	}
	s := string(r.buf[r.offset : r.offset+int(n)])
	r.offset += int(n)
	return s, true, nil
}

// ReadBinary reads a packed-i32 length followed by that many raw bytes.
// A zero or negative length yields nil, so an empty continuation key
// decodes as a nil one.
func (r *Reader) ReadBinary() ([]byte, error) {
	n, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.buf[r.offset:r.offset+int(n)])
	r.offset += int(n)
	return b, nil
}

// Skip advances the cursor by n bytes without interpreting them.
func (r *Reader) Skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.offset += n
	return nil
}
