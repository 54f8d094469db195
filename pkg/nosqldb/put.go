package nosqldb

import (
	"context"
	"time"

	"github.com/dittonosql/go-sdk/internal/wire"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// PutRequest writes one row.
type PutRequest struct {
	TableName string
	Value     *types.MapValue

	option    wire.PutOption
	ifVersion types.Version
	ttl       *types.TTL
	updateTTL bool

	Durability types.Durability
	ReturnRow  bool
	Timeout    time.Duration
}

// IfAbsent makes the put succeed only if no row currently exists for
// the key (spec.md §3).
func (r *PutRequest) IfAbsent() *PutRequest { r.option = wire.PutOptionIfAbsent; return r }

// IfPresent makes the put succeed only if a row already exists.
func (r *PutRequest) IfPresent() *PutRequest { r.option = wire.PutOptionIfPresent; return r }

// IfVersion makes the put succeed only if the stored row's version
// equals v (optimistic concurrency control).
func (r *PutRequest) IfVersion(v types.Version) *PutRequest {
	r.option = wire.PutOptionIfVersion
	r.ifVersion = v
	return r
}

// WithTTL sets the row's time-to-live.
func (r *PutRequest) WithTTL(ttl types.TTL) *PutRequest { r.ttl = &ttl; return r }

// WithUpdateTTL requests the row's TTL be recomputed from WithTTL even
// when the put is otherwise an update of an existing row (by default an
// update leaves an existing row's TTL untouched).
func (r *PutRequest) WithUpdateTTL() *PutRequest { r.updateTTL = true; return r }

// WithDurability overrides the commit/sync mode for this write.
func (r *PutRequest) WithDurability(d types.Durability) *PutRequest { r.Durability = d; return r }

// WithReturnRow requests the existing row back when a conditional put
// fails.
func (r *PutRequest) WithReturnRow() *PutRequest { r.ReturnRow = true; return r }

// WithTimeout overrides the handle's default timeout for this call.
func (r *PutRequest) WithTimeout(d time.Duration) *PutRequest { r.Timeout = d; return r }

// PutResult is the outcome of a Put.
type PutResult struct {
	Success         bool
	Version         types.Version
	ExistingVersion types.Version
	ExistingValue   *types.MapValue
	Capacity        types.Capacity
}

// Put executes req.
func (h *Handle) Put(ctx context.Context, req *PutRequest) (*PutResult, error) {
	params := wire.PutParams{
		Value:      req.Value,
		Option:     req.option,
		IfVersion:  req.ifVersion,
		TTL:        req.ttl,
		UpdateTTL:  req.updateTTL,
		Durability: req.Durability,
		ReturnRow:  req.ReturnRow,
	}
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		if h.writeLimit != nil {
			h.writeLimit.Wait(ctx.Done())
		}
		return wire.EncodePutRequest(version, timeoutMs(req.Timeout, h.timeout), req.TableName, params)
	}
	decode := func(r *wire.Reader) (*PutResult, error) {
		res, err := wire.DecodePutResult(r)
		if err != nil {
			return nil, err
		}
		if res.Capacity.WriteUnits > 0 && h.writeLimit != nil {
			h.writeLimit.Consume(res.Capacity.WriteUnits)
		}
		return &PutResult{
			Success:         res.Success,
			Version:         res.Version,
			ExistingVersion: res.ExistingVersion,
			ExistingValue:   res.ExistingValue,
			Capacity:        res.Capacity,
		}, nil
	}
	return execute(ctx, h, "Put", req.Timeout, encode, decode)
}
