// Package query drives a compiled plan-iterator tree client-side. The
// server compiles a query statement once (via a Prepare round trip) into
// a tree of plan.Iterator nodes; this package walks that tree, issuing
// Receive round trips over the wire for rows and evaluating the
// relational operators (Sort, Group, SFW, arithmetic, aggregates) in Go,
// the way the original driver evaluates against a register file rather
// than a class-hierarchy of iterator objects (spec §4.8, §9).
package query

import (
	"context"

	"github.com/dittonosql/go-sdk/internal/query/plan"
	"github.com/dittonosql/go-sdk/internal/wire"
	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// Executor is the subset of the public Handle's behavior the driver
// needs: issue one Query wire call and get back a batch of rows plus a
// continuation key. The public package wires its retrying Handle.execute
// loop in here; tests can supply a fake.
type Executor interface {
	ExecuteQuery(ctx context.Context, tableName string, p wire.QueryParams) (*wire.QueryResult, error)
}

// Topology is the set of shards a partitioned Receive iterator must
// visit. A nil/empty ShardIDs means "not partitioned, single round-trip
// stream" (spec §4.8).
type Topology struct {
	ShardIDs []int32
}

// Driver walks one PreparedStatement's plan-iterator tree to produce
// result rows one at a time, fetching more data from the server only
// when the buffered rows run out.
type Driver struct {
	root          *plan.Iterator
	tableName     string
	preparedQuery []byte
	executor      Executor
	topology      Topology
	regs          []types.FieldValue
	externalVars  map[string]types.FieldValue
	consistency   types.Consistency
	maxReadKB     int32
	timeoutMs     int32

	states map[*plan.Iterator]any // per-node mutable execution state, keyed by tree identity
}

// NewDriver builds a Driver for stmt, ready to produce rows via Next.
func NewDriver(stmt *wire.PreparedStatement, tableName string, executor Executor, topology Topology, externalVars map[string]types.FieldValue) *Driver {
	return &Driver{
		root:          stmt.RootIterator,
		tableName:     tableName,
		preparedQuery: stmt.CompiledQuery,
		executor:      executor,
		topology:      topology,
		regs:          make([]types.FieldValue, stmt.RegisterCount),
		externalVars:  externalVars,
		consistency:   types.ConsistencyAbsolute,
		states:        make(map[*plan.Iterator]any),
	}
}

// WithConsistency sets the read consistency used for Receive round trips.
func (d *Driver) WithConsistency(c types.Consistency) *Driver { d.consistency = c; return d }

// WithMaxReadKB caps the per-round-trip read size.
func (d *Driver) WithMaxReadKB(kb int32) *Driver { d.maxReadKB = kb; return d }

// WithTimeoutMs records a per-round-trip timeout on the Driver. Receive
// round trips do not pass it to the Executor, which applies its own.
func (d *Driver) WithTimeoutMs(ms int32) *Driver { d.timeoutMs = ms; return d }

// Next produces the next result row, or ok=false once the query is
// exhausted. It may issue any number of Receive round trips internally.
func (d *Driver) Next(ctx context.Context) (row *types.MapValue, ok bool, err error) {
	if d.root == nil {
		return nil, false, nosqlerr.New(nosqlerr.IllegalState, "query driver has no plan to execute")
	}
	advanced, err := d.next(ctx, d.root)
	if err != nil {
		return nil, false, err
	}
	if !advanced {
		return nil, false, nil
	}
	v := d.regs[d.root.ResultReg]
	m, isMap := v.AsMap()
	if !isMap {
		return nil, false, nosqlerr.BadProtocol("query driver: root iterator produced non-Map result %s", v.Kind)
	}
	return m, true, nil
}

// next advances it, leaving its freshly produced value in
// regs[it.ResultReg] and returning whether a value was produced (false
// means this subtree is exhausted).
func (d *Driver) next(ctx context.Context, it *plan.Iterator) (bool, error) {
	switch it.Kind {
	case plan.KindReceive:
		return d.nextReceive(ctx, it)
	case plan.KindSort, plan.KindSortV2:
		return d.nextSort(ctx, it)
	case plan.KindGroup:
		return d.nextGroup(ctx, it)
	case plan.KindSFW:
		return d.nextSFW(ctx, it)
	case plan.KindConstant:
		d.regs[it.ResultReg] = it.ConstantValue.(types.FieldValue)
		return true, nil
	case plan.KindVarRef:
		d.regs[it.ResultReg] = d.regs[it.VarReg]
		return true, nil
	case plan.KindExternalVar:
		v, ok := d.externalVars[it.VarName]
		if !ok {
			return false, nosqlerr.IllegalArg("query: unbound external variable %q", it.VarName)
		}
		d.regs[it.ResultReg] = v
		return true, nil
	case plan.KindFieldStep:
		return d.nextFieldStep(ctx, it)
	case plan.KindArithOp:
		return d.nextArithOp(ctx, it)
	case plan.KindFnSize:
		return d.nextFnSize(ctx, it)
	case plan.KindFnSum:
		return d.nextFnAggregate(ctx, it, newSumAccumulator())
	case plan.KindFnMinMax:
		return d.nextFnAggregate(ctx, it, newMinMaxAccumulator(it.MinMax))
	case plan.KindFnCollect:
		return d.nextFnAggregate(ctx, it, newCollectAccumulator())
	default:
		return false, nosqlerr.BadProtocol("query driver: unsupported iterator kind %d", it.Kind)
	}
}

// nextFieldStep evaluates FieldName against its child's Map result.
func (d *Driver) nextFieldStep(ctx context.Context, it *plan.Iterator) (bool, error) {
	advanced, err := d.next(ctx, it.Children[0])
	if err != nil || !advanced {
		return false, err
	}
	src := d.regs[it.Children[0].ResultReg]
	m, isMap := src.AsMap()
	if !isMap {
		d.regs[it.ResultReg] = types.Empty()
		return true, nil
	}
	v, found := m.Get(it.FieldName)
	if !found {
		d.regs[it.ResultReg] = types.Null()
	} else {
		d.regs[it.ResultReg] = v
	}
	return true, nil
}
