package nosqldb

import (
	"context"
	"time"

	"github.com/dittonosql/go-sdk/internal/wire"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// WriteMultipleRequest applies a batch of Put/Delete operations against
// one table atomically.
type WriteMultipleRequest struct {
	TableName string
	ops       []wire.WriteOp
	Timeout   time.Duration
}

// AddPut appends a put operation to the batch. abortIfUnsuccessful, if
// true, aborts the whole batch when this operation fails (e.g. a failed
// conditional put).
func (r *WriteMultipleRequest) AddPut(req *PutRequest, abortIfUnsuccessful bool) *WriteMultipleRequest {
	r.ops = append(r.ops, wire.WriteOp{
		IsDelete: false,
		Put: wire.PutParams{
			Value:      req.Value,
			Option:     req.option,
			IfVersion:  req.ifVersion,
			TTL:        req.ttl,
			UpdateTTL:  req.updateTTL,
			Durability: req.Durability,
			ReturnRow:  req.ReturnRow,
		},
		AbortIfUnsuccessful: abortIfUnsuccessful,
	})
	return r
}

// AddDelete appends a delete operation to the batch.
func (r *WriteMultipleRequest) AddDelete(req *DeleteRequest, abortIfUnsuccessful bool) *WriteMultipleRequest {
	r.ops = append(r.ops, wire.WriteOp{
		IsDelete: true,
		Delete: wire.DeleteParams{
			Key:        req.Key,
			IfVersion:  req.ifVersion,
			Durability: req.Durability,
			ReturnRow:  req.ReturnRow,
		},
		AbortIfUnsuccessful: abortIfUnsuccessful,
	})
	return r
}

// WithTimeout overrides the handle's default timeout for this call.
func (r *WriteMultipleRequest) WithTimeout(d time.Duration) *WriteMultipleRequest {
	r.Timeout = d
	return r
}

// WriteMultipleOpResult is the per-operation outcome within a
// WriteMultiple response.
type WriteMultipleOpResult struct {
	Success         bool
	Version         types.Version
	ExistingVersion types.Version
	ExistingValue   *types.MapValue
}

// WriteMultipleResult is the outcome of a WriteMultiple. AbortedIndex is
// -1 unless the batch failed on an operation marked AbortIfUnsuccessful.
type WriteMultipleResult struct {
	Results      []WriteMultipleOpResult
	AbortedIndex int32
	Capacity     types.Capacity
}

// WriteMultiple executes req.
func (h *Handle) WriteMultiple(ctx context.Context, req *WriteMultipleRequest) (*WriteMultipleResult, error) {
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		if h.writeLimit != nil {
			h.writeLimit.Wait(ctx.Done())
		}
		return wire.EncodeWriteMultipleRequest(version, timeoutMs(req.Timeout, h.timeout), req.TableName, req.ops)
	}
	decode := func(r *wire.Reader) (*WriteMultipleResult, error) {
		res, err := wire.DecodeWriteMultipleResult(r)
		if err != nil {
			return nil, err
		}
		if res.Capacity.WriteUnits > 0 && h.writeLimit != nil {
			h.writeLimit.Consume(res.Capacity.WriteUnits)
		}
		results := make([]WriteMultipleOpResult, len(res.Results))
		for i, opRes := range res.Results {
			results[i] = WriteMultipleOpResult{
				Success:         opRes.Success,
				Version:         opRes.Version,
				ExistingVersion: opRes.ExistingVersion,
				ExistingValue:   opRes.ExistingValue,
			}
		}
		return &WriteMultipleResult{Results: results, AbortedIndex: res.AbortedIndex, Capacity: res.Capacity}, nil
	}
	return execute(ctx, h, "WriteMultiple", req.Timeout, encode, decode)
}
