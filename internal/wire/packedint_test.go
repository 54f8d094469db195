package wire

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackedInt32_RoundTrip(t *testing.T) {
	values := []int32{
		0, 1, -1, 120, -119, 121, -120, 122, -121,
		math.MaxInt32, math.MinInt32, 1000, -1000, 1 << 20, -(1 << 20),
	}
	for _, v := range values {
		buf := WritePackedInt32(nil, v)
		offset := 0
		got, err := ReadPackedInt32(buf, &offset)
		require.NoError(t, err)
		assert.Equal(t, v, got, "round-trip mismatch for %d", v)
		assert.Equal(t, len(buf), offset, "reader should consume the whole encoding")
	}
}

func TestPackedInt64_RoundTrip(t *testing.T) {
	values := []int64{
		0, 1, -1, 120, -119, 121, -120,
		math.MaxInt64, math.MinInt64, 1 << 40, -(1 << 40),
	}
	for _, v := range values {
		buf := WritePackedInt64(nil, v)
		offset := 0
		got, err := ReadPackedInt64(buf, &offset)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(buf), offset)
	}
}

func TestPackedInt32_SingleByteRange(t *testing.T) {
	for v := int32(-119); v <= 120; v++ {
		buf := WritePackedInt32(nil, v)
		assert.Lenf(t, buf, 1, "value %d should encode to a single byte", v)
	}
}

func TestPackedInt32_LexicographicOrderMatchesNumeric(t *testing.T) {
	values := []int32{math.MinInt32, -1 << 20, -1000, -120, -119, 0, 120, 121, 1000, 1 << 20, math.MaxInt32}
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			a := WritePackedInt32(nil, values[i])
			b := WritePackedInt32(nil, values[j])
			assert.Negativef(t, bytes.Compare(a, b), "lex order broken: %d should sort before %d", values[i], values[j])
		}
	}
}

func TestPackedInt32_TruncatedBufferFails(t *testing.T) {
	buf := WritePackedInt32(nil, 1<<20) // multi-byte encoding
	truncated := buf[:len(buf)-1]
	offset := 0
	_, err := ReadPackedInt32(truncated, &offset)
	require.Error(t, err)

	offset = 0
	_, err = ReadPackedInt32(nil, &offset)
	require.Error(t, err)
}
