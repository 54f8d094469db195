package nosqldb

import (
	"context"
	"time"

	"github.com/dittonosql/go-sdk/internal/wire"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

// TableRequest issues a DDL statement (create/alter/drop table) against
// TableName. DDL is asynchronous: the immediate TableResult carries an
// OperationID to poll via WaitForCompletion.
type TableRequest struct {
	TableName string
	Statement string
	Limits    *types.TableLimits // Cloud mode only (SPEC_FULL.md §C)
	Timeout   time.Duration
}

// WithLimits sets Cloud-mode provisioned throughput limits.
func (r *TableRequest) WithLimits(limits types.TableLimits) *TableRequest {
	r.Limits = &limits
	return r
}

// WithTimeout overrides the handle's default timeout for this call.
func (r *TableRequest) WithTimeout(d time.Duration) *TableRequest { r.Timeout = d; return r }

// TableResult is the outcome of a TableRequest or GetTable.
type TableResult struct {
	TableName   string
	State       types.TableState
	Schema      string
	OperationID string

	handle *Handle
}

// Table submits req and returns the immediate (typically Creating/
// Dropping) TableResult; call WaitForCompletion to block until the DDL
// finishes.
func (h *Handle) Table(ctx context.Context, req *TableRequest) (*TableResult, error) {
	params := wire.TableRequestParams{Statement: req.Statement, Limits: req.Limits}
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		return wire.EncodeTableRequest(version, timeoutMs(req.Timeout, h.timeout), req.TableName, params), nil
	}
	decode := func(r *wire.Reader) (*wire.TableResult, error) {
		return wire.DecodeTableResult(r)
	}
	res, err := execute(ctx, h, "TableRequest", req.Timeout, encode, decode)
	if err != nil {
		return nil, err
	}
	return toTableResult(res, h), nil
}

// GetTableRequest polls the current state of a table, or the outcome of
// a prior asynchronous TableRequest identified by OperationID.
type GetTableRequest struct {
	TableName   string
	OperationID string
	Timeout     time.Duration
}

// WithTimeout overrides the handle's default timeout for this call.
func (r *GetTableRequest) WithTimeout(d time.Duration) *GetTableRequest { r.Timeout = d; return r }

// GetTable executes req.
func (h *Handle) GetTable(ctx context.Context, req *GetTableRequest) (*TableResult, error) {
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		return wire.EncodeGetTableRequest(version, timeoutMs(req.Timeout, h.timeout), req.TableName, req.OperationID), nil
	}
	decode := func(r *wire.Reader) (*wire.TableResult, error) {
		return wire.DecodeTableResult(r)
	}
	res, err := execute(ctx, h, "GetTable", req.Timeout, encode, decode)
	if err != nil {
		return nil, err
	}
	return toTableResult(res, h), nil
}

func toTableResult(res *wire.TableResult, h *Handle) *TableResult {
	return &TableResult{
		TableName:   res.TableName,
		State:       res.State,
		Schema:      res.Schema,
		OperationID: res.OperationID,
		handle:      h,
	}
}

// WaitForCompletion polls GetTable every pollInterval until the table
// reaches TableStateActive or TableStateDropped, or totalTimeout
// elapses (spec.md §4.7). It returns the final TableResult observed.
func (r *TableResult) WaitForCompletion(ctx context.Context, totalTimeout, pollInterval time.Duration) (*TableResult, error) {
	ctx, cancel := context.WithTimeout(ctx, totalTimeout)
	defer cancel()

	current := r
	for {
		if current.State == types.TableStateActive || current.State == types.TableStateDropped {
			return current, nil
		}
		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return current, nosqlerr.New(nosqlerr.RequestTimeout, "WaitForCompletion: table %q did not reach Active/Dropped within %s", r.TableName, totalTimeout)
		case <-timer.C:
		}
		next, err := r.handle.GetTable(ctx, &GetTableRequest{TableName: r.TableName, OperationID: r.OperationID})
		if err != nil {
			return current, err
		}
		next.handle = r.handle
		current = next
	}
}

// ListTablesRequest lists table names visible to the caller's identity.
type ListTablesRequest struct {
	StartIndex int32
	Limit      int32
	Timeout    time.Duration
}

// WithTimeout overrides the handle's default timeout for this call.
func (r *ListTablesRequest) WithTimeout(d time.Duration) *ListTablesRequest { r.Timeout = d; return r }

// ListTablesResult is the outcome of a ListTables call.
type ListTablesResult struct {
	Tables    []string
	LastIndex int32
}

// ListTables executes req.
func (h *Handle) ListTables(ctx context.Context, req *ListTablesRequest) (*ListTablesResult, error) {
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		return wire.EncodeListTablesRequest(version, timeoutMs(req.Timeout, h.timeout), req.StartIndex, req.Limit), nil
	}
	decode := func(r *wire.Reader) (*ListTablesResult, error) {
		res, err := wire.DecodeListTablesResult(r)
		if err != nil {
			return nil, err
		}
		return &ListTablesResult{Tables: res.Tables, LastIndex: res.LastIndex}, nil
	}
	return execute(ctx, h, "ListTables", req.Timeout, encode, decode)
}

// TableUsageRequest retrieves historical read/write/storage usage
// samples for a table between StartMs and EndMs (epoch milliseconds).
type TableUsageRequest struct {
	TableName string
	StartMs   int64
	EndMs     int64
	Limit     int32
	Timeout   time.Duration
}

// WithTimeout overrides the handle's default timeout for this call.
func (r *TableUsageRequest) WithTimeout(d time.Duration) *TableUsageRequest { r.Timeout = d; return r }

// TableUsageRecord is a single usage sample.
type TableUsageRecord struct {
	StartMs    int64
	ReadUnits  int32
	WriteUnits int32
	StorageGB  int32
}

// TableUsageResult is the outcome of a TableUsage call.
type TableUsageResult struct {
	Records []TableUsageRecord
}

// TableUsage executes req.
func (h *Handle) TableUsage(ctx context.Context, req *TableUsageRequest) (*TableUsageResult, error) {
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		return wire.EncodeTableUsageRequest(version, timeoutMs(req.Timeout, h.timeout), req.TableName, req.StartMs, req.EndMs, req.Limit), nil
	}
	decode := func(r *wire.Reader) (*TableUsageResult, error) {
		res, err := wire.DecodeTableUsageResult(r)
		if err != nil {
			return nil, err
		}
		records := make([]TableUsageRecord, len(res.Records))
		for i, rec := range res.Records {
			records[i] = TableUsageRecord{StartMs: rec.StartMs, ReadUnits: rec.ReadUnits, WriteUnits: rec.WriteUnits, StorageGB: rec.StorageGB}
		}
		return &TableUsageResult{Records: records}, nil
	}
	return execute(ctx, h, "TableUsage", req.Timeout, encode, decode)
}
