package nosqldb

import (
	"context"
	"time"

	"github.com/dittonosql/go-sdk/internal/wire"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// GetRequest fetches one row by primary key.
type GetRequest struct {
	TableName   string
	Key         *types.MapValue
	Consistency types.Consistency
	Timeout     time.Duration
}

// WithConsistency sets the read consistency, defaulting to
// ConsistencyAbsolute if never called.
func (r *GetRequest) WithConsistency(c types.Consistency) *GetRequest { r.Consistency = c; return r }

// WithTimeout overrides the handle's default timeout for this call.
func (r *GetRequest) WithTimeout(d time.Duration) *GetRequest { r.Timeout = d; return r }

// GetResult is the outcome of a Get.
type GetResult struct {
	Row      *types.MapValue
	Version  types.Version
	Capacity types.Capacity
}

// Get executes req and returns the matching row, or a GetResult with a
// nil Row if no row matches the key.
func (h *Handle) Get(ctx context.Context, req *GetRequest) (*GetResult, error) {
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		if h.readLimit != nil {
			h.readLimit.Wait(ctx.Done())
		}
		return wire.EncodeGetRequest(version, timeoutMs(req.Timeout, h.timeout), req.TableName, req.Key, req.Consistency), nil
	}
	decode := func(r *wire.Reader) (*GetResult, error) {
		res, err := wire.DecodeGetResult(r)
		if err != nil {
			return nil, err
		}
		if res.Capacity.ReadUnits > 0 && h.readLimit != nil {
			h.readLimit.Consume(res.Capacity.ReadUnits)
		}
		return &GetResult{Row: res.Row, Version: res.Version, Capacity: res.Capacity}, nil
	}
	return execute(ctx, h, "Get", req.Timeout, encode, decode)
}

func timeoutMs(requestTimeout, defaultTimeout time.Duration) int32 {
	d := requestTimeout
	if d <= 0 {
		d = defaultTimeout
	}
	if d <= 0 {
		d = DefaultTimeout
	}
	return int32(d.Milliseconds())
}
