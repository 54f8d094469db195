package wire

// EncodeSystemRequest writes a SystemRequest frame (administrative
// statements that are not table DDL, e.g. namespace or user management).
func EncodeSystemRequest(version ProtocolVersion, timeoutMs int32, statement string) []byte {
	w := NewWriter(64 + len(statement))
	WriteRequestHeader(w, version, OpSystemRequest, timeoutMs, "")
	w.WriteString(statement)
	return w.Bytes()
}

// SystemResult is the decoded body of a SystemRequest/SystemStatusRequest response.
type SystemResult struct {
	OperationID string
	State       string
	ResultText  string
}

// DecodeSystemResult reads a SystemRequest response body.
func DecodeSystemResult(r *Reader) (*SystemResult, error) {
	opID, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	state, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	text, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return &SystemResult{OperationID: opID, State: state, ResultText: text}, nil
}

// EncodeSystemStatusRequest writes a SystemStatusRequest frame, polling
// the outcome of a prior SystemRequest by operation id.
func EncodeSystemStatusRequest(version ProtocolVersion, timeoutMs int32, operationID string) []byte {
	w := NewWriter(64)
	WriteRequestHeader(w, version, OpSystemStatusRequest, timeoutMs, "")
	w.WriteString(operationID)
	return w.Bytes()
}
