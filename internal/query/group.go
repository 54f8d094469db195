package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/dittonosql/go-sdk/internal/query/plan"
	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// groupEntry is one group's running state: its key field values (copied
// verbatim into the output row) and one accumulator per AggregateFuncs
// entry.
type groupEntry struct {
	keyNames  []string
	keyValues []types.FieldValue
	accs      []accumulator
}

// groupState hash-aggregates the child's rows by their leading
// GroupByFieldCount fields, in first-seen order (spec §4.8: "Group...
// hash-aggregation in insertion order"), then replays one output row per
// group once the child is exhausted.
type groupState struct {
	order   []string
	entries map[string]*groupEntry
	done    bool
	pos     int
}

func (d *Driver) nextGroup(ctx context.Context, it *plan.Iterator) (bool, error) {
	st, _ := d.states[it].(*groupState)
	if st == nil {
		st = &groupState{entries: make(map[string]*groupEntry)}
		d.states[it] = st
	}

	if !st.done {
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
			row, isMap := v.AsMap()
			if !isMap {
				return false, nosqlerr.BadProtocol("query driver: Group input is not a Map row")
			}
			keys := row.Keys()
			if len(keys) < it.GroupByFieldCount+len(it.AggregateFuncs) {
				return false, nosqlerr.BadProtocol(
					"query driver: Group input row has %d fields, need %d group-by + %d aggregate inputs",
					len(keys), it.GroupByFieldCount, len(it.AggregateFuncs))
			}

			keyNames := make([]string, it.GroupByFieldCount)
			keyValues := make([]types.FieldValue, it.GroupByFieldCount)
			var sb strings.Builder
			for i := 0; i < it.GroupByFieldCount; i++ {
				keyNames[i] = keys[i]
				v, _ := row.Get(keys[i])
				keyValues[i] = v
				fmt.Fprintf(&sb, "%v\x1f", v)
			}
			groupKey := sb.String()

			entry, exists := st.entries[groupKey]
			if !exists {
				entry = &groupEntry{keyNames: keyNames, keyValues: keyValues, accs: make([]accumulator, len(it.AggregateFuncs))}
				for i, fn := range it.AggregateFuncs {
					entry.accs[i] = newAccumulator(fn)
				}
				st.entries[groupKey] = entry
				st.order = append(st.order, groupKey)
			}
			for i := range it.AggregateFuncs {
				fieldVal, _ := row.Get(keys[it.GroupByFieldCount+i])
				entry.accs[i].update(fieldVal)
			}
		}
		st.done = true
	}

	if st.pos >= len(st.order) {
		return false, nil
	}
	entry := st.entries[st.order[st.pos]]
	st.pos++

	out := types.NewMapValue()
	for i, name := range entry.keyNames {
		out.Put(name, entry.keyValues[i])
	}
	for i, fn := range it.AggregateFuncs {
		name := fn.FieldName
		if name == "" {
			name = aggregateColumnName(i)
		}
		out.Put(name, entry.accs[i].result())
	}
	d.regs[it.ResultReg] = types.NewMap(out)
	return true, nil
}

func aggregateColumnName(i int) string { return fmt.Sprintf("agg_col_%d", i) }
