package query

import (
	"context"

	"github.com/dittonosql/go-sdk/internal/query/plan"
	"github.com/dittonosql/go-sdk/internal/wire"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// receiveState tracks one Receive iterator's progress across shards: the
// current shard's buffered rows, its continuation key, and which shards
// remain to visit. initialized flips to true once the first fetch for
// the current shard has happened, so the loop in nextReceive knows
// whether a nil continuation key means "shard exhausted" or "not started
// yet" (spec §4.8: Receive round-trips per shard until each shard's
// continuation key comes back empty).
type receiveState struct {
	pendingShards []int32
	currentShard  int32
	currentCK     []byte
	initialized   bool
	buffer        []*types.MapValue
	bufPos        int
	exhausted     bool
}

func (d *Driver) nextReceive(ctx context.Context, it *plan.Iterator) (bool, error) {
	st, _ := d.states[it].(*receiveState)
	if st == nil {
		st = &receiveState{currentShard: -1}
		if it.IsPartitioned && len(d.topology.ShardIDs) > 0 {
			st.pendingShards = append([]int32(nil), d.topology.ShardIDs...)
			st.currentShard = st.pendingShards[0]
			st.pendingShards = st.pendingShards[1:]
		}
		d.states[it] = st
	}
	if st.exhausted {
		return false, nil
	}

	for {
		if st.bufPos < len(st.buffer) {
			row := st.buffer[st.bufPos]
			st.bufPos++
			d.regs[it.ResultReg] = types.NewMap(row)
			return true, nil
		}

		if st.initialized && st.currentCK == nil {
			if !it.IsPartitioned || len(st.pendingShards) == 0 {
				st.exhausted = true
				return false, nil
			}
			st.currentShard = st.pendingShards[0]
			st.pendingShards = st.pendingShards[1:]
			st.initialized = false
		}

		res, err := d.fetchReceiveBatch(ctx, it, st)
		if err != nil {
			return false, err
		}
		st.initialized = true
		st.buffer = res.Rows
		st.bufPos = 0
		st.currentCK = res.ContinuationKey
	}
}

func (d *Driver) fetchReceiveBatch(ctx context.Context, it *plan.Iterator, st *receiveState) (*wire.QueryResult, error) {
	shardID := int32(-1)
	if it.IsPartitioned {
		shardID = st.currentShard
	}
	return d.executor.ExecuteQuery(ctx, d.tableName, wire.QueryParams{
		Kind:            wire.QueryOpAdvanced,
		PreparedQuery:   d.preparedQuery,
		BindVariables:   d.externalVars,
		Consistency:     d.consistency,
		MaxReadKB:       d.maxReadKB,
		ContinuationKey: st.currentCK,
		ShardID:         shardID,
	})
}
