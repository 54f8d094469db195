package types

// MapValue is an insertion-order-preserving string-keyed map of
// FieldValue. Order matters: server-side row encoding is
// primary-key-projection-sensitive (spec §3), so MapValue is not backed
// by a plain Go map.
type MapValue struct {
	keys   []string
	values map[string]FieldValue
}

// NewMapValue returns an empty MapValue ready for chained Put calls,
// mirroring the builder style of the original SDK's `MapValue::new()`.
func NewMapValue() *MapValue {
	return &MapValue{values: make(map[string]FieldValue)}
}

// Put inserts or overwrites key with value, preserving the original
// insertion position on overwrite. Returns the receiver for chaining.
func (m *MapValue) Put(key string, value FieldValue) *MapValue {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

// PutInt is a convenience chain for Put(key, NewInteger(v)).
func (m *MapValue) PutInt(key string, v int32) *MapValue { return m.Put(key, NewInteger(v)) }

// PutLong is a convenience chain for Put(key, NewLong(v)).
func (m *MapValue) PutLong(key string, v int64) *MapValue { return m.Put(key, NewLong(v)) }

// PutDouble is a convenience chain for Put(key, NewDouble(v)).
func (m *MapValue) PutDouble(key string, v float64) *MapValue { return m.Put(key, NewDouble(v)) }

// PutString is a convenience chain for Put(key, NewString(v)).
func (m *MapValue) PutString(key string, v string) *MapValue { return m.Put(key, NewString(v)) }

// PutBool is a convenience chain for Put(key, NewBoolean(v)).
func (m *MapValue) PutBool(key string, v bool) *MapValue { return m.Put(key, NewBoolean(v)) }

// Get returns the value for key and whether it was present.
func (m *MapValue) Get(key string) (FieldValue, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. The returned slice must not
// be mutated by the caller.
func (m *MapValue) Keys() []string { return m.keys }

// Len returns the number of entries.
func (m *MapValue) Len() int { return len(m.keys) }

// Clone returns a deep-enough copy: a new key slice and map, sharing
// FieldValue leaves (which are themselves copy-on-write safe for
// scalars, and Array/Map leaves are re-walked by callers that need a
// true deep copy).
func (m *MapValue) Clone() *MapValue {
	if m == nil {
		return nil
	}
	out := &MapValue{
		keys:   append([]string(nil), m.keys...),
		values: make(map[string]FieldValue, len(m.values)),
	}
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// Equal reports whether m and other have the same key/value pairs,
// independent of insertion order (order matters for wire encoding, not
// for logical equality).
func (m *MapValue) Equal(other *MapValue) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.keys) != len(other.keys) {
		return false
	}
	for k, v := range m.values {
		ov, ok := other.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
