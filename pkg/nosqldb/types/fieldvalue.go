// Package types holds the wire-agnostic data model shared by every
// request and result: FieldValue, MapValue (a Row's value), and Version.
// It has no dependency on the wire codec or transport, mirroring the
// teacher's leaf `pkg/metadata/errors` package ("designed to be imported
// without causing circular imports").
package types

import "time"

// Kind discriminates the FieldValue variants (spec §3).
type Kind int

const (
	KindInteger Kind = iota
	KindLong
	KindDouble
	KindNumber
	KindString
	KindBoolean
	KindBinary
	KindTimestamp
	KindArray
	KindMap
	KindNull    // SQL NULL
	KindJSONNull // JSON null, distinct from SQL NULL
	KindEmpty   // absence marker used by the query engine
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindLong:
		return "Long"
	case KindDouble:
		return "Double"
	case KindNumber:
		return "Number"
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	case KindBinary:
		return "Binary"
	case KindTimestamp:
		return "Timestamp"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindNull:
		return "Null"
	case KindJSONNull:
		return "JsonNull"
	case KindEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// FieldValue is a tagged sum type over the scalar and structured values
// the wire protocol can carry (spec §3). The zero value is an Integer
// holding 0 (KindInteger is the first Kind); SQL NULL is Null().
//
// Only the field matching Kind is meaningful; callers should use the
// New* constructors and the As* accessors rather than touching fields
// directly, since a future Kind may be added without widening every
// existing field.
type FieldValue struct {
	Kind Kind

	intVal   int32
	longVal  int64
	dblVal   float64
	numVal   string // decimal-string, exactness-preserving
	strVal   string
	boolVal  bool
	binVal   []byte
	tsVal    time.Time
	arrVal   []FieldValue
	mapVal   *MapValue
}

// NewInteger builds a KindInteger FieldValue.
func NewInteger(v int32) FieldValue { return FieldValue{Kind: KindInteger, intVal: v} }

// NewLong builds a KindLong FieldValue.
func NewLong(v int64) FieldValue { return FieldValue{Kind: KindLong, longVal: v} }

// NewDouble builds a KindDouble FieldValue.
func NewDouble(v float64) FieldValue { return FieldValue{Kind: KindDouble, dblVal: v} }

// NewNumber builds a KindNumber FieldValue from an exact decimal string
// (e.g. "12345678901234567890.123456789"), preserving precision that
// float64 cannot.
func NewNumber(decimal string) FieldValue { return FieldValue{Kind: KindNumber, numVal: decimal} }

// NewString builds a KindString FieldValue.
func NewString(v string) FieldValue { return FieldValue{Kind: KindString, strVal: v} }

// NewBoolean builds a KindBoolean FieldValue.
func NewBoolean(v bool) FieldValue { return FieldValue{Kind: KindBoolean, boolVal: v} }

// NewBinary builds a KindBinary FieldValue. The byte slice is stored by
// reference; callers should not mutate it afterward.
func NewBinary(v []byte) FieldValue { return FieldValue{Kind: KindBinary, binVal: v} }

// NewTimestamp builds a KindTimestamp FieldValue rounded to the nearest
// millisecond, per spec §3 ("Timestamp(instant, ms precision)").
func NewTimestamp(t time.Time) FieldValue {
	return FieldValue{Kind: KindTimestamp, tsVal: t.Round(time.Millisecond)}
}

// NewArray builds a KindArray FieldValue over an ordered sequence.
func NewArray(v []FieldValue) FieldValue { return FieldValue{Kind: KindArray, arrVal: v} }

// NewMap builds a KindMap FieldValue wrapping an existing MapValue.
func NewMap(v *MapValue) FieldValue { return FieldValue{Kind: KindMap, mapVal: v} }

// Null is the SQL NULL FieldValue.
func Null() FieldValue { return FieldValue{Kind: KindNull} }

// JSONNull is the JSON null FieldValue, distinct from SQL NULL.
func JSONNull() FieldValue { return FieldValue{Kind: KindJSONNull} }

// Empty is the query engine's absence marker (not a legal row value).
func Empty() FieldValue { return FieldValue{Kind: KindEmpty} }

// AsInteger returns the Integer value and whether Kind was KindInteger.
func (f FieldValue) AsInteger() (int32, bool) { return f.intVal, f.Kind == KindInteger }

// AsLong returns the Long value and whether Kind was KindLong.
func (f FieldValue) AsLong() (int64, bool) { return f.longVal, f.Kind == KindLong }

// AsDouble returns the Double value and whether Kind was KindDouble.
func (f FieldValue) AsDouble() (float64, bool) { return f.dblVal, f.Kind == KindDouble }

// AsNumber returns the Number decimal string and whether Kind was KindNumber.
func (f FieldValue) AsNumber() (string, bool) { return f.numVal, f.Kind == KindNumber }

// AsString returns the String value and whether Kind was KindString.
func (f FieldValue) AsString() (string, bool) { return f.strVal, f.Kind == KindString }

// AsBoolean returns the Boolean value and whether Kind was KindBoolean.
func (f FieldValue) AsBoolean() (bool, bool) { return f.boolVal, f.Kind == KindBoolean }

// AsBinary returns the Binary value and whether Kind was KindBinary.
func (f FieldValue) AsBinary() ([]byte, bool) { return f.binVal, f.Kind == KindBinary }

// AsTimestamp returns the Timestamp value and whether Kind was KindTimestamp.
func (f FieldValue) AsTimestamp() (time.Time, bool) { return f.tsVal, f.Kind == KindTimestamp }

// AsArray returns the Array elements and whether Kind was KindArray.
func (f FieldValue) AsArray() ([]FieldValue, bool) { return f.arrVal, f.Kind == KindArray }

// AsMap returns the Map and whether Kind was KindMap.
func (f FieldValue) AsMap() (*MapValue, bool) { return f.mapVal, f.Kind == KindMap }

// IsNull reports whether this is the SQL NULL value.
func (f FieldValue) IsNull() bool { return f.Kind == KindNull }

// IsJSONNull reports whether this is the JSON null value.
func (f FieldValue) IsJSONNull() bool { return f.Kind == KindJSONNull }

// IsEmpty reports whether this is the query engine's absence marker.
func (f FieldValue) IsEmpty() bool { return f.Kind == KindEmpty }

// Equal reports structural equality. Maps compare by key/value pairs
// regardless of insertion order; Array order matters.
func (f FieldValue) Equal(other FieldValue) bool {
	if f.Kind != other.Kind {
		// Integer/Long/Double/Number coerce under SQL numeric comparison
		// (spec §4.3); Equal is the strict structural check used by
		// round-trip tests, so no cross-kind coercion here.
		return false
	}
	switch f.Kind {
	case KindInteger:
		return f.intVal == other.intVal
	case KindLong:
		return f.longVal == other.longVal
	case KindDouble:
		return f.dblVal == other.dblVal
	case KindNumber:
		return f.numVal == other.numVal
	case KindString:
		return f.strVal == other.strVal
	case KindBoolean:
		return f.boolVal == other.boolVal
	case KindBinary:
		return bytesEqual(f.binVal, other.binVal)
	case KindTimestamp:
		return f.tsVal.Equal(other.tsVal)
	case KindArray:
		if len(f.arrVal) != len(other.arrVal) {
			return false
		}
		for i := range f.arrVal {
			if !f.arrVal[i].Equal(other.arrVal[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return f.mapVal.Equal(other.mapVal)
	default:
		return true // Null, JsonNull, Empty carry no payload
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
