package nosqldb

import (
	"context"
	"time"

	"github.com/dittonosql/go-sdk/internal/query"
	"github.com/dittonosql/go-sdk/internal/wire"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// ExecuteQuery implements internal/query.Executor, letting a Driver
// issue Receive round trips through this handle's retrying executor
// rather than a bare transport call.
func (h *Handle) ExecuteQuery(ctx context.Context, tableName string, p wire.QueryParams) (*wire.QueryResult, error) {
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		return wire.EncodeQueryRequest(version, timeoutMs(0, h.timeout), tableName, p)
	}
	decode := func(r *wire.Reader) (*wire.QueryResult, error) {
		return wire.DecodeQueryResult(r)
	}
	res, err := execute(ctx, h, "Query", 0, encode, decode)
	if err != nil {
		return nil, err
	}
	if res.Capacity.ReadUnits > 0 && h.readLimit != nil {
		h.readLimit.Consume(res.Capacity.ReadUnits)
	}
	return res, nil
}

var _ query.Executor = (*Handle)(nil)

// PrepareRequest compiles a query statement into a reusable
// PreparedStatement (spec.md §4.8: required for ORDER BY/GROUP BY/
// aggregation, optional otherwise).
type PrepareRequest struct {
	Statement    string
	GetQueryPlan bool
	Timeout      time.Duration
}

// WithTimeout overrides the handle's default timeout for this call.
func (r *PrepareRequest) WithTimeout(d time.Duration) *PrepareRequest { r.Timeout = d; return r }

// PreparedStatement is a compiled query ready to be bound and executed,
// possibly many times.
type PreparedStatement struct {
	inner *wire.PreparedStatement
}

// BindVariables returns the ordered names of the statement's bind
// variables.
func (p *PreparedStatement) BindVariables() []string { return p.inner.BindVariables }

// QueryPlanText returns the server's human-readable plan description,
// empty unless PrepareRequest.GetQueryPlan was set.
func (p *PreparedStatement) QueryPlanText() string { return p.inner.QueryPlanText }

// Prepare compiles req.Statement.
func (h *Handle) Prepare(ctx context.Context, req *PrepareRequest) (*PreparedStatement, error) {
	params := wire.PrepareParams{Statement: req.Statement, GetQueryPlan: req.GetQueryPlan}
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		return wire.EncodePrepareRequest(version, timeoutMs(req.Timeout, h.timeout), params), nil
	}
	decode := func(r *wire.Reader) (*wire.PreparedStatement, error) {
		return wire.DecodePreparedStatement(r)
	}
	res, err := execute(ctx, h, "Prepare", req.Timeout, encode, decode)
	if err != nil {
		return nil, err
	}
	return &PreparedStatement{inner: res}, nil
}

// QueryRequest executes a statement directly (the simple path, spec.md
// §4.8) or a previously Prepared statement (the advanced path, required
// for ORDER BY/GROUP BY/cross-shard aggregation).
type QueryRequest struct {
	TableName     string
	Statement     string // simple path
	Prepared      *PreparedStatement
	BindVariables map[string]types.FieldValue
	Topology      query.Topology // advanced path, partitioned Receive iterators only
	Consistency   types.Consistency
	MaxReadKB     int32
	Limit         int32
	Timeout       time.Duration
}

// WithConsistency sets the read consistency.
func (r *QueryRequest) WithConsistency(c types.Consistency) *QueryRequest { r.Consistency = c; return r }

// WithMaxReadKB caps the per-round-trip read size.
func (r *QueryRequest) WithMaxReadKB(kb int32) *QueryRequest { r.MaxReadKB = kb; return r }

// WithLimit caps the number of rows a single Query call returns.
func (r *QueryRequest) WithLimit(n int32) *QueryRequest { r.Limit = n; return r }

// WithTimeout overrides the handle's default timeout for this call.
func (r *QueryRequest) WithTimeout(d time.Duration) *QueryRequest { r.Timeout = d; return r }

// QueryIterator streams result rows, transparently issuing further
// round trips as earlier batches are exhausted.
type QueryIterator struct {
	driver          *query.Driver // advanced path only
	handle          *Handle       // simple path only
	req             *QueryRequest
	continuationKey []byte
	buffer          []*types.MapValue
	bufPos          int
	done            bool
}

// Query starts a QueryIterator over req. The advanced path (req.Prepared
// set) drives a client-side plan-iterator tree; the simple path issues
// bare Query round trips and is valid only for statements with no
// ORDER BY/GROUP BY/cross-shard aggregation (spec.md §4.8).
func (h *Handle) Query(req *QueryRequest) *QueryIterator {
	if req.Prepared != nil {
		d := query.NewDriver(req.Prepared.inner, req.TableName, h, req.Topology, req.BindVariables)
		d.WithConsistency(req.Consistency).WithMaxReadKB(req.MaxReadKB).WithTimeoutMs(timeoutMs(req.Timeout, h.timeout))
		return &QueryIterator{driver: d, req: req}
	}
	return &QueryIterator{handle: h, req: req}
}

// Next produces the next result row, or ok=false once the query is
// exhausted.
func (it *QueryIterator) Next(ctx context.Context) (*types.MapValue, bool, error) {
	if it.driver != nil {
		return it.driver.Next(ctx)
	}
	for {
		if it.bufPos < len(it.buffer) {
			row := it.buffer[it.bufPos]
			it.bufPos++
			return row, true, nil
		}
		if it.done {
			return nil, false, nil
		}
		res, err := it.handle.ExecuteQuery(ctx, it.req.TableName, wire.QueryParams{
			Kind:            wire.QueryOpSimple,
			Statement:       it.req.Statement,
			Consistency:     it.req.Consistency,
			MaxReadKB:       it.req.MaxReadKB,
			Limit:           it.req.Limit,
			ContinuationKey: it.continuationKey,
			ShardID:         -1,
		})
		if err != nil {
			return nil, false, err
		}
		it.buffer = res.Rows
		it.bufPos = 0
		it.continuationKey = res.ContinuationKey
		if it.continuationKey == nil {
			it.done = true
		}
	}
}
