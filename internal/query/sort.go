package query

import (
	"context"
	"sort"

	"github.com/dittonosql/go-sdk/internal/query/plan"
	"github.com/dittonosql/go-sdk/internal/wire"
	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// sortState buffers every row its child produces, sorts once the child
// is exhausted, then replays the sorted buffer. Sort and SortV2 differ
// only in how the server represents sort keys on the wire (SortV2 adds
// support for sorting on an expression rather than a bare field); both
// decode into the same plan.SortSpec list, so they share this execution
// (spec §4.8).
type sortState struct {
	rows   []*types.MapValue
	pos    int
	sorted bool
}

func (d *Driver) nextSort(ctx context.Context, it *plan.Iterator) (bool, error) {
	st, _ := d.states[it].(*sortState)
	if st == nil {
		st = &sortState{}
		d.states[it] = st
	}

	if !st.sorted {
		child := it.Children[0]
		for {
			advanced, err := d.next(ctx, child)
			if err != nil {
				return false, err
			}
			if !advanced {
				break
			}
			v := d.regs[child.ResultReg]
			m, isMap := v.AsMap()
			if !isMap {
				return false, nosqlerr.BadProtocol("query driver: Sort input is not a Map row")
			}
			st.rows = append(st.rows, m)
		}
		sort.SliceStable(st.rows, func(i, j int) bool {
			return rowLess(st.rows[i], st.rows[j], it.SortKeys)
		})
		st.sorted = true
	}

	if st.pos >= len(st.rows) {
		return false, nil
	}
	d.regs[it.ResultReg] = types.NewMap(st.rows[st.pos])
	st.pos++
	return true, nil
}

// rowLess orders a before b by keys, in priority order. A SQL NULL or
// missing field sorts according to each key's NullsFirst flag,
// independent of Descending (spec §4.8, "Sort / nulls ordering"). Once
// every declared key compares equal, ties break on the byte-lex order of
// the row's full encoded projection rather than leaving the order
// undefined, so repeated runs over the same input are reproducible.
func rowLess(a, b *types.MapValue, keys []plan.SortSpec) bool {
	for _, key := range keys {
		av, aHas := a.Get(key.FieldName)
		bv, bHas := b.Get(key.FieldName)
		aNull := !aHas || av.IsNull() || av.IsJSONNull()
		bNull := !bHas || bv.IsNull() || bv.IsJSONNull()

		if aNull && bNull {
			continue
		}
		if aNull || bNull {
			if aNull {
				return key.NullsFirst
			}
			return !key.NullsFirst
		}

		cmp := compareFieldValues(av, bv)
		if cmp == 0 {
			continue
		}
		if key.Descending {
			return cmp > 0
		}
		return cmp < 0
	}
	return rowBytes(a) < rowBytes(b)
}

// rowBytes encodes a row's projection to its canonical wire form for the
// byte-lex tiebreak in rowLess. Encoding errors can't occur here: these
// rows already round-tripped through the decoder that produced them.
func rowBytes(m *types.MapValue) string {
	w := wire.NewWriter(64)
	if err := wire.EncodeMap(w, m); err != nil {
		return ""
	}
	return string(w.Bytes())
}
