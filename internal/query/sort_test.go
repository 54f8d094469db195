package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dittonosql/go-sdk/internal/query/plan"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

func TestRowLess_OrdersByDeclaredKeysFirst(t *testing.T) {
	a := row("rank", types.NewInteger(1), "name", types.NewString("zeta"))
	b := row("rank", types.NewInteger(2), "name", types.NewString("alpha"))
	keys := []plan.SortSpec{{FieldName: "rank"}}
	assert.True(t, rowLess(a, b, keys))
	assert.False(t, rowLess(b, a, keys))
}

func TestRowLess_TiesOnDeclaredKeysBreakOnEncodedProjection(t *testing.T) {
	keys := []plan.SortSpec{{FieldName: "rank"}}
	a := row("rank", types.NewInteger(1), "name", types.NewString("alpha"))
	b := row("rank", types.NewInteger(1), "name", types.NewString("beta"))

	// Neither row has any declared key left to distinguish them; the
	// tiebreak must be a strict, consistent order rather than "equal".
	aLessB := rowLess(a, b, keys)
	bLessA := rowLess(b, a, keys)
	assert.NotEqual(t, aLessB, bLessA, "tiebreak must impose a strict order, not leave rows equal")

	assert.Equal(t, aLessB, rowBytes(a) < rowBytes(b))
}

func TestRowLess_IdenticalRowsAreNeitherLess(t *testing.T) {
	keys := []plan.SortSpec{{FieldName: "rank"}}
	a := row("rank", types.NewInteger(1), "name", types.NewString("alpha"))
	b := row("rank", types.NewInteger(1), "name", types.NewString("alpha"))
	assert.False(t, rowLess(a, b, keys))
	assert.False(t, rowLess(b, a, keys))
}

func TestRowLess_NoDeclaredKeysStillBreaksTiesByProjection(t *testing.T) {
	a := row("name", types.NewString("alpha"))
	b := row("name", types.NewString("beta"))
	// The tiebreak is byte-lex over the encoded row, whose first byte is
	// the packed body length: "beta"'s body is one byte shorter, so b
	// sorts first even though "alpha" < "beta" as strings.
	assert.False(t, rowLess(a, b, nil))
	assert.True(t, rowLess(b, a, nil))
}
