package nosqldb

import (
	"context"
	"time"

	"github.com/dittonosql/go-sdk/internal/wire"
)

// SystemRequest issues an administrative statement that is not table
// DDL (namespace or user management). Like TableRequest, it is
// asynchronous: poll the outcome with SystemStatusRequest.
type SystemRequest struct {
	Statement string
	Timeout   time.Duration
}

// WithTimeout overrides the handle's default timeout for this call.
func (r *SystemRequest) WithTimeout(d time.Duration) *SystemRequest { r.Timeout = d; return r }

// SystemResult is the outcome of a SystemRequest or SystemStatusRequest.
type SystemResult struct {
	OperationID string
	State       string
	ResultText  string
}

// SystemRequest executes req.
func (h *Handle) SystemRequest(ctx context.Context, req *SystemRequest) (*SystemResult, error) {
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		return wire.EncodeSystemRequest(version, timeoutMs(req.Timeout, h.timeout), req.Statement), nil
	}
	decode := func(r *wire.Reader) (*wire.SystemResult, error) {
		return wire.DecodeSystemResult(r)
	}
	res, err := execute(ctx, h, "SystemRequest", req.Timeout, encode, decode)
	if err != nil {
		return nil, err
	}
	return &SystemResult{OperationID: res.OperationID, State: res.State, ResultText: res.ResultText}, nil
}

// SystemStatusRequest polls the outcome of a prior SystemRequest by
// operation id.
type SystemStatusRequest struct {
	OperationID string
	Timeout     time.Duration
}

// WithTimeout overrides the handle's default timeout for this call.
func (r *SystemStatusRequest) WithTimeout(d time.Duration) *SystemStatusRequest { r.Timeout = d; return r }

// SystemStatus executes req.
func (h *Handle) SystemStatus(ctx context.Context, req *SystemStatusRequest) (*SystemResult, error) {
	encode := func(version wire.ProtocolVersion) ([]byte, error) {
		return wire.EncodeSystemStatusRequest(version, timeoutMs(req.Timeout, h.timeout), req.OperationID), nil
	}
	decode := func(r *wire.Reader) (*wire.SystemResult, error) {
		return wire.DecodeSystemResult(r)
	}
	res, err := execute(ctx, h, "SystemStatusRequest", req.Timeout, encode, decode)
	if err != nil {
		return nil, err
	}
	return &SystemResult{OperationID: res.OperationID, State: res.State, ResultText: res.ResultText}, nil
}
