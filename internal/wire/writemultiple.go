package wire

import "github.com/dittonosql/go-sdk/pkg/nosqldb/types"

// WriteOp is one operation within a WriteMultiple request, either a Put
// or a Delete against the same table.
type WriteOp struct {
	IsDelete bool
	Put      PutParams
	Delete   DeleteParams
	AbortIfUnsuccessful bool
}

// EncodeWriteMultipleRequest writes a WriteMultiple request frame: all
// operations target the same table and are applied atomically.
func EncodeWriteMultipleRequest(version ProtocolVersion, timeoutMs int32, tableName string, ops []WriteOp) ([]byte, error) {
	w := NewWriter(256 * len(ops))
	WriteRequestHeader(w, version, OpWriteMultiple, timeoutMs, tableName)
	w.WritePackedInt32(int32(len(ops)))
	for _, op := range ops {
		w.WriteBool(op.IsDelete)
		w.WriteBool(op.AbortIfUnsuccessful)
		if op.IsDelete {
			w.WriteByte(byte(op.Delete.Durability))
			w.WriteBool(op.Delete.ReturnRow)
			if len(op.Delete.IfVersion) > 0 {
				w.WriteBool(true)
				w.WriteBinary(op.Delete.IfVersion)
			} else {
				w.WriteBool(false)
			}
			if err := EncodeMap(w, op.Delete.Key); err != nil {
				return nil, err
			}
		} else {
			w.WriteByte(byte(op.Put.Option))
			if op.Put.Option == PutOptionIfVersion {
				w.WriteBinary(op.Put.IfVersion)
			}
			w.WriteByte(byte(op.Put.Durability))
			w.WriteBool(op.Put.ReturnRow)
			if err := EncodeMap(w, op.Put.Value); err != nil {
				return nil, err
			}
		}
	}
	return w.Bytes(), nil
}

// WriteMultipleOpResult is the per-operation outcome within a
// WriteMultiple response.
type WriteMultipleOpResult struct {
	Success         bool
	Version         types.Version
	ExistingVersion types.Version
	ExistingValue   *types.MapValue
}

// WriteMultipleResult is the decoded body of a WriteMultiple response.
// AbortedIndex is -1 unless the batch failed and a dependent operation
// specified AbortIfUnsuccessful.
type WriteMultipleResult struct {
	Results      []WriteMultipleOpResult
	AbortedIndex int32
	Capacity     types.Capacity
}

// DecodeWriteMultipleResult reads a WriteMultiple response body.
func DecodeWriteMultipleResult(r *Reader) (*WriteMultipleResult, error) {
	aborted, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	n, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	results := make([]WriteMultipleOpResult, 0, n)
	for i := int32(0); i < n; i++ {
		var opRes WriteMultipleOpResult
		success, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		opRes.Success = success
		if success {
			v, err := r.ReadBinary()
			if err != nil {
				return nil, err
			}
			opRes.Version = types.Version(v)
		} else {
			hasExisting, err := r.ReadBool()
			if err != nil {
				return nil, err
			}
			if hasExisting {
				ev, err := r.ReadBinary()
				if err != nil {
					return nil, err
				}
				opRes.ExistingVersion = types.Version(ev)
				hasRow, err := r.ReadBool()
				if err != nil {
					return nil, err
				}
				if hasRow {
					row, err := DecodeMap(r)
					if err != nil {
						return nil, err
					}
					opRes.ExistingValue = row
				}
			}
		}
		results = append(results, opRes)
	}
	res := &WriteMultipleResult{Results: results, AbortedIndex: aborted}
	if err := decodeCapacity(r, &res.Capacity); err != nil {
		return nil, err
	}
	return res, nil
}
