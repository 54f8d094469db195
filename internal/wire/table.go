package wire

import "github.com/dittonosql/go-sdk/pkg/nosqldb/types"

// TableRequestParams carries the fields of a DDL TableRequest.
type TableRequestParams struct {
	Statement string
	Limits    *types.TableLimits // Cloud mode only (SPEC_FULL.md §C)
}

// EncodeTableRequest writes a TableRequest (DDL) frame.
func EncodeTableRequest(version ProtocolVersion, timeoutMs int32, tableName string, p TableRequestParams) []byte {
	w := NewWriter(128 + len(p.Statement))
	WriteRequestHeader(w, version, OpTableRequest, timeoutMs, tableName)
	w.WriteString(p.Statement)
	if p.Limits != nil {
		w.WriteBool(true)
		w.WritePackedInt32(p.Limits.ReadUnits)
		w.WritePackedInt32(p.Limits.WriteUnits)
		w.WritePackedInt32(p.Limits.StorageGB)
	} else {
		w.WriteBool(false)
	}
	return w.Bytes()
}

// TableResult is the decoded body of a TableRequest/GetTable response.
type TableResult struct {
	TableName   string
	State       types.TableState
	Schema      string
	OperationID string
}

// DecodeTableResult reads a TableRequest/GetTable response body.
func DecodeTableResult(r *Reader) (*TableResult, error) {
	name, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	state, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	schema, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	opID, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return &TableResult{
		TableName:   name,
		State:       types.TableState(state),
		Schema:      schema,
		OperationID: opID,
	}, nil
}

// EncodeGetTableRequest writes a GetTable frame. operationID is non-empty
// when polling the outcome of an async TableRequest (spec §4.7).
func EncodeGetTableRequest(version ProtocolVersion, timeoutMs int32, tableName, operationID string) []byte {
	w := NewWriter(64)
	WriteRequestHeader(w, version, OpGetTable, timeoutMs, tableName)
	if operationID == "" {
		w.WriteNullString()
	} else {
		w.WriteString(operationID)
	}
	return w.Bytes()
}

// EncodeListTablesRequest writes a ListTables frame.
func EncodeListTablesRequest(version ProtocolVersion, timeoutMs int32, startIndex, limit int32) []byte {
	w := NewWriter(32)
	WriteRequestHeader(w, version, OpListTables, timeoutMs, "")
	w.WritePackedInt32(startIndex)
	w.WritePackedInt32(limit)
	return w.Bytes()
}

// ListTablesResult is the decoded body of a ListTables response.
type ListTablesResult struct {
	Tables     []string
	LastIndex  int32
}

// DecodeListTablesResult reads a ListTables response body.
func DecodeListTablesResult(r *Reader) (*ListTablesResult, error) {
	n, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	tables := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		name, _, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	lastIndex, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	return &ListTablesResult{Tables: tables, LastIndex: lastIndex}, nil
}

// EncodeTableUsageRequest writes a TableUsage frame.
func EncodeTableUsageRequest(version ProtocolVersion, timeoutMs int32, tableName string, startMs, endMs int64, limit int32) []byte {
	w := NewWriter(64)
	WriteRequestHeader(w, version, OpTableUsage, timeoutMs, tableName)
	w.WriteInt64(startMs)
	w.WriteInt64(endMs)
	w.WritePackedInt32(limit)
	return w.Bytes()
}

// TableUsageRecord is a single per-second (or per-interval) usage sample.
type TableUsageRecord struct {
	StartMs    int64
	ReadUnits  int32
	WriteUnits int32
	StorageGB  int32
}

// TableUsageResult is the decoded body of a TableUsage response.
type TableUsageResult struct {
	Records []TableUsageRecord
}

// DecodeTableUsageResult reads a TableUsage response body.
func DecodeTableUsageResult(r *Reader) (*TableUsageResult, error) {
	n, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	records := make([]TableUsageRecord, 0, n)
	for i := int32(0); i < n; i++ {
		var rec TableUsageRecord
		if rec.StartMs, err = r.ReadInt64(); err != nil {
			return nil, err
		}
		if rec.ReadUnits, err = r.ReadPackedInt32(); err != nil {
			return nil, err
		}
		if rec.WriteUnits, err = r.ReadPackedInt32(); err != nil {
			return nil, err
		}
		if rec.StorageGB, err = r.ReadPackedInt32(); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return &TableUsageResult{Records: records}, nil
}
