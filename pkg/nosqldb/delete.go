package nosqldb

import (
	"context"
	"time"

	"github.com/dittonosql/go-sdk/internal/wire"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// DeleteRequest removes one row by primary key.
type DeleteRequest struct {
	TableName string
	Key       *types.MapValue

	ifVersion types.Version

	Durability types.Durability
	ReturnRow  bool
	Timeout    time.Duration
}

// IfVersion makes the delete succeed only if the stored row's version
// equals v; otherwise it returns a non-error DeleteResult with
// Success=false and ExistingVersion populated (spec.md §8).
func (r *DeleteRequest) IfVersion(v types.Version) *DeleteRequest { r.ifVersion = v; return r }

// WithDurability overrides the commit/sync mode for this write.
func (r *DeleteRequest) WithDurability(d types.Durability) *DeleteRequest { r.Durability = d; return r }

// WithReturnRow requests the existing row back when a conditional
// delete fails.
func (r *DeleteRequest) WithReturnRow() *DeleteRequest { r.ReturnRow = true; return r }

// WithTimeout overrides the handle's default timeout for this call.
func (r *DeleteRequest) WithTimeout(d time.Duration) *DeleteRequest { r.Timeout = d; return r }

// DeleteResult is the outcome of a Delete.
type DeleteResult struct {
	Success         bool
	ExistingVersion types.Version
	ExistingValue   *types.MapValue
	Capacity        types.Capacity
}

// Delete executes req.
func (h *Handle) Delete(ctx context.Context, req *DeleteRequest) (*DeleteResult, error) {
	params := wire.DeleteParams{
		Key:        req.Key,
		IfVersion:  req.ifVersion,
		Durability: req.Durability,
		ReturnRow:  req.ReturnRow,
	}
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		if h.writeLimit != nil {
			h.writeLimit.Wait(ctx.Done())
		}
		return wire.EncodeDeleteRequest(version, timeoutMs(req.Timeout, h.timeout), req.TableName, params)
	}
	decode := func(r *wire.Reader) (*DeleteResult, error) {
		res, err := wire.DecodeDeleteResult(r)
		if err != nil {
			return nil, err
		}
		if res.Capacity.WriteUnits > 0 && h.writeLimit != nil {
			h.writeLimit.Consume(res.Capacity.WriteUnits)
		}
		return &DeleteResult{
			Success:         res.Success,
			ExistingVersion: res.ExistingVersion,
			ExistingValue:   res.ExistingValue,
			Capacity:        res.Capacity,
		}, nil
	}
	return execute(ctx, h, "Delete", req.Timeout, encode, decode)
}

// MultiDeleteRequest deletes all rows sharing Key's shard-key prefix,
// optionally resuming from a prior batch's ContinuationKey
// (SPEC_FULL.md §C).
type MultiDeleteRequest struct {
	TableName       string
	Key             *types.MapValue
	MaxWriteKB      int32
	ContinuationKey []byte
	Timeout         time.Duration
}

// WithTimeout overrides the handle's default timeout for this call.
func (r *MultiDeleteRequest) WithTimeout(d time.Duration) *MultiDeleteRequest { r.Timeout = d; return r }

// MultiDeleteResult is the outcome of a MultiDelete; a non-nil
// ContinuationKey means more rows remain to be deleted in a follow-up
// call.
type MultiDeleteResult struct {
	DeletedCount    int32
	ContinuationKey []byte
	Capacity        types.Capacity
}

// MultiDelete executes req, deleting up to MaxWriteKB worth of rows in
// one round trip.
func (h *Handle) MultiDelete(ctx context.Context, req *MultiDeleteRequest) (*MultiDeleteResult, error) {
	params := wire.MultiDeleteParams{
		Key:             req.Key,
		MaxWriteKB:      req.MaxWriteKB,
		ContinuationKey: req.ContinuationKey,
	}
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		if h.writeLimit != nil {
			h.writeLimit.Wait(ctx.Done())
		}
		return wire.EncodeMultiDeleteRequest(version, timeoutMs(req.Timeout, h.timeout), req.TableName, params)
	}
	decode := func(r *wire.Reader) (*MultiDeleteResult, error) {
		res, err := wire.DecodeMultiDeleteResult(r)
		if err != nil {
			return nil, err
		}
		if res.Capacity.WriteUnits > 0 && h.writeLimit != nil {
			h.writeLimit.Consume(res.Capacity.WriteUnits)
		}
		return &MultiDeleteResult{
			DeletedCount:    res.DeletedCount,
			ContinuationKey: res.ContinuationKey,
			Capacity:        res.Capacity,
		}, nil
	}
	return execute(ctx, h, "MultiDelete", req.Timeout, encode, decode)
}
