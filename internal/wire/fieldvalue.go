package wire

import (
	"time"

	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// FieldValue type tags (spec §4.3). One byte precedes every encoded
// value; the codec has no reason to match the server's internal tag
// values beyond self-consistency, since it is the only reader of its own
// wire format within this SDK.
const (
	tagInteger byte = iota
	tagLong
	tagDouble
	tagNumber
	tagString
	tagBoolean
	tagBinary
	tagTimestamp
	tagArray
	tagMap
	tagNull
	tagJSONNull
	tagEmpty
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// EncodeFieldValue appends the type tag and variant-specific body for v.
func EncodeFieldValue(w *Writer, v types.FieldValue) error {
	switch v.Kind {
	case types.KindInteger:
		w.WriteByte(tagInteger)
		iv, _ := v.AsInteger()
		w.WritePackedInt32(iv)
	case types.KindLong:
		w.WriteByte(tagLong)
		lv, _ := v.AsLong()
		w.WritePackedInt64(lv)
	case types.KindDouble:
		w.WriteByte(tagDouble)
		dv, _ := v.AsDouble()
		w.WriteFloat64(dv)
	case types.KindNumber:
		w.WriteByte(tagNumber)
		nv, _ := v.AsNumber()
		w.WriteString(nv)
	case types.KindString:
		w.WriteByte(tagString)
		sv, _ := v.AsString()
		w.WriteString(sv)
	case types.KindBoolean:
		w.WriteByte(tagBoolean)
		bv, _ := v.AsBoolean()
		w.WriteBool(bv)
	case types.KindBinary:
		w.WriteByte(tagBinary)
		bin, _ := v.AsBinary()
		w.WriteBinary(bin)
	case types.KindTimestamp:
		w.WriteByte(tagTimestamp)
		ts, _ := v.AsTimestamp()
		w.WriteString(ts.UTC().Format(timestampLayout))
	case types.KindArray:
		w.WriteByte(tagArray)
		arr, _ := v.AsArray()
		w.WritePackedInt32(int32(len(arr)))
		for _, elem := range arr {
			if err := EncodeFieldValue(w, elem); err != nil {
				return err
			}
		}
	case types.KindMap:
		w.WriteByte(tagMap)
		m, _ := v.AsMap()
		return encodeMapBody(w, m)
	case types.KindNull:
		w.WriteByte(tagNull)
	case types.KindJSONNull:
		w.WriteByte(tagJSONNull)
	case types.KindEmpty:
		w.WriteByte(tagEmpty)
	default:
		return protoErrf("encode FieldValue: unknown kind %v", v.Kind)
	}
	return nil
}

// encodeMapBody writes a Map's packed-i32 byte-length, packed-i32
// element count, then each key-string + value pair in insertion order.
// A packed length has no fixed width to back-patch, so the body is
// built in a scratch Writer first and its length written ahead of it.
func encodeMapBody(w *Writer, m *types.MapValue) error {
	body := NewWriter(64)
	body.WritePackedInt32(int32(m.Len()))
	for _, key := range m.Keys() {
		val, _ := m.Get(key)
		body.WriteString(key)
		if err := EncodeFieldValue(body, val); err != nil {
			return err
		}
	}

	w.WritePackedInt32(int32(body.Len()))
	w.buf = append(w.buf, body.Bytes()...)
	return nil
}

// EncodeMap is the entry point for encoding a top-level row/key Map,
// equivalent to EncodeFieldValue(w, types.NewMap(m)) but without the
// leading type tag (used where the frame format already implies a Map,
// e.g. Put's value field).
func EncodeMap(w *Writer, m *types.MapValue) error {
	return encodeMapBody(w, m)
}

// DecodeFieldValue reads a type tag and its variant-specific body.
func DecodeFieldValue(r *Reader) (types.FieldValue, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return types.FieldValue{}, err
	}
	switch tag {
	case tagInteger:
		v, err := r.ReadPackedInt32()
		if err != nil {
			return types.FieldValue{}, err
		}
		return types.NewInteger(v), nil
	case tagLong:
		v, err := r.ReadPackedInt64()
		if err != nil {
			return types.FieldValue{}, err
		}
		return types.NewLong(v), nil
	case tagDouble:
		v, err := r.ReadFloat64()
		if err != nil {
			return types.FieldValue{}, err
		}
		return types.NewDouble(v), nil
	case tagNumber:
		s, _, err := r.ReadString()
		if err != nil {
			return types.FieldValue{}, err
		}
		return types.NewNumber(s), nil
	case tagString:
		s, _, err := r.ReadString()
		if err != nil {
			return types.FieldValue{}, err
		}
		return types.NewString(s), nil
	case tagBoolean:
		b, err := r.ReadBool()
		if err != nil {
			return types.FieldValue{}, err
		}
		return types.NewBoolean(b), nil
	case tagBinary:
		b, err := r.ReadBinary()
		if err != nil {
			return types.FieldValue{}, err
		}
		return types.NewBinary(b), nil
	case tagTimestamp:
		s, _, err := r.ReadString()
		if err != nil {
			return types.FieldValue{}, err
		}
		t, perr := time.Parse(timestampLayout, s)
		if perr != nil {
			return types.FieldValue{}, protoErrf("decode Timestamp: %v", perr)
		}
		return types.NewTimestamp(t), nil
	case tagArray:
		n, err := r.ReadPackedInt32()
		if err != nil {
			return types.FieldValue{}, err
		}
		arr := make([]types.FieldValue, 0, n)
		for i := int32(0); i < n; i++ {
			elem, err := DecodeFieldValue(r)
			if err != nil {
				return types.FieldValue{}, err
			}
			arr = append(arr, elem)
		}
		return types.NewArray(arr), nil
	case tagMap:
		m, err := decodeMapBody(r)
		if err != nil {
			return types.FieldValue{}, err
		}
		return types.NewMap(m), nil
	case tagNull:
		return types.Null(), nil
	case tagJSONNull:
		return types.JSONNull(), nil
	case tagEmpty:
		return types.Empty(), nil
	default:
		return types.FieldValue{}, protoErrf("decode FieldValue: unknown type tag %d", tag)
	}
}

func decodeMapBody(r *Reader) (*types.MapValue, error) {
	byteLen, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	bodyStart := r.Offset()

	count, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	m := types.NewMapValue()
	for i := int32(0); i < count; i++ {
		key, _, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		val, err := DecodeFieldValue(r)
		if err != nil {
			return nil, err
		}
		m.Put(key, val)
	}

	if consumed := r.Offset() - bodyStart; consumed != int(byteLen) {
		return nil, protoErrf("decode Map: body length mismatch, header said %d bytes, consumed %d", byteLen, consumed)
	}
	return m, nil
}

// DecodeMap is the counterpart to EncodeMap.
func DecodeMap(r *Reader) (*types.MapValue, error) {
	return decodeMapBody(r)
}
