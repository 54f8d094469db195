package query

import (
	"context"

	"github.com/dittonosql/go-sdk/internal/query/plan"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// accumulator folds a stream of FieldValues into one result, the shape
// shared by SUM, MIN/MAX and COLLECT whether they run standalone (over
// an entire query's output) or per-group inside a Group iterator (spec
// §4.8).
type accumulator interface {
	update(v types.FieldValue)
	result() types.FieldValue
}

type sumAccumulator struct {
	sum  float64
	seen bool
}

func newSumAccumulator() *sumAccumulator { return &sumAccumulator{} }

func (a *sumAccumulator) update(v types.FieldValue) {
	if v.IsNull() || v.IsJSONNull() {
		return
	}
	f, ok := asFloat(v)
	if !ok {
		return
	}
	a.sum += f
	a.seen = true
}

func (a *sumAccumulator) result() types.FieldValue {
	if !a.seen {
		return types.Null() // SUM over zero non-null rows is SQL NULL
	}
	return types.NewDouble(a.sum)
}

type minMaxAccumulator struct {
	kind    plan.MinMaxKind
	current types.FieldValue
	seen    bool
}

func newMinMaxAccumulator(kind plan.MinMaxKind) *minMaxAccumulator {
	return &minMaxAccumulator{kind: kind}
}

func (a *minMaxAccumulator) update(v types.FieldValue) {
	if v.IsNull() || v.IsJSONNull() {
		return
	}
	if !a.seen {
		a.current = v
		a.seen = true
		return
	}
	cmp := compareFieldValues(v, a.current)
	if (a.kind == plan.MinMaxMin && cmp < 0) || (a.kind == plan.MinMaxMax && cmp > 0) {
		a.current = v
	}
}

func (a *minMaxAccumulator) result() types.FieldValue {
	if !a.seen {
		return types.Null()
	}
	return a.current
}

type collectAccumulator struct {
	values []types.FieldValue
}

func newCollectAccumulator() *collectAccumulator { return &collectAccumulator{} }

func (a *collectAccumulator) update(v types.FieldValue) {
	if v.IsNull() || v.IsJSONNull() {
		return
	}
	a.values = append(a.values, v)
}

func (a *collectAccumulator) result() types.FieldValue {
	return types.NewArray(a.values)
}

func newAccumulator(it *plan.Iterator) accumulator {
	switch it.Kind {
	case plan.KindFnSum:
		return newSumAccumulator()
	case plan.KindFnMinMax:
		return newMinMaxAccumulator(it.MinMax)
	case plan.KindFnCollect:
		return newCollectAccumulator()
	default:
		return newCollectAccumulator()
	}
}

// fnAggregateState drains it.Children[0] to completion on first use,
// folding every value it produces into a single accumulator, then
// replays the one resulting value exactly once. Used when a Fn*
// iterator runs standalone rather than inside a Group (a bare `SELECT
// SUM(x) FROM t` with no GROUP BY still produces one row, spec §4.8).
type fnAggregateState struct {
	done bool
}

func (d *Driver) nextFnAggregate(ctx context.Context, it *plan.Iterator, acc accumulator) (bool, error) {
	st, _ := d.states[it].(*fnAggregateState)
	if st == nil {
		st = &fnAggregateState{}
		d.states[it] = st
	}
	if st.done {
		return false, nil
	}
	child := it.Children[0]
	for {
		advanced, err := d.next(ctx, child)
		if err != nil {
			return false, err
		}
		if !advanced {
			break
		}
		acc.update(d.regs[child.ResultReg])
	}
	d.regs[it.ResultReg] = acc.result()
	st.done = true
	return true, nil
}

// nextFnSize evaluates the scalar size() function: the element count of
// an Array or Map, or the byte length of a Binary, per spec §4.3.
func (d *Driver) nextFnSize(ctx context.Context, it *plan.Iterator) (bool, error) {
	child := it.Children[0]
	advanced, err := d.next(ctx, child)
	if err != nil || !advanced {
		return false, err
	}
	v := d.regs[child.ResultReg]
	switch v.Kind {
	case types.KindArray:
		arr, _ := v.AsArray()
		d.regs[it.ResultReg] = types.NewInteger(int32(len(arr)))
	case types.KindMap:
		m, _ := v.AsMap()
		d.regs[it.ResultReg] = types.NewInteger(int32(m.Len()))
	case types.KindBinary:
		b, _ := v.AsBinary()
		d.regs[it.ResultReg] = types.NewInteger(int32(len(b)))
	case types.KindNull, types.KindJSONNull:
		d.regs[it.ResultReg] = types.Null()
	default:
		d.regs[it.ResultReg] = types.Null()
	}
	return true, nil
}
