package wire

import "github.com/dittonosql/go-sdk/pkg/nosqldb/types"

// DeleteParams carries the caller-supplied fields of a Delete request.
type DeleteParams struct {
	Key        *types.MapValue
	IfVersion  types.Version // empty means unconditional delete
	Durability types.Durability
	ReturnRow  bool
}

// EncodeDeleteRequest writes a Delete request frame.
func EncodeDeleteRequest(version ProtocolVersion, timeoutMs int32, tableName string, p DeleteParams) ([]byte, error) {
	w := NewWriter(128)
	WriteRequestHeader(w, version, OpDelete, timeoutMs, tableName)
	w.WriteByte(byte(p.Durability))
	w.WriteBool(p.ReturnRow)
	if len(p.IfVersion) > 0 {
		w.WriteBool(true)
		w.WriteBinary(p.IfVersion)
	} else {
		w.WriteBool(false)
	}
	if err := EncodeMap(w, p.Key); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DeleteResult is the decoded body of a Delete response. A conditional
// delete whose if_version does not match the stored version is not a
// wire-level error: it comes back as Success=false with ExistingVersion
// populated (spec §8, "Conditional put/delete").
type DeleteResult struct {
	Success         bool
	ExistingVersion types.Version
	ExistingValue   *types.MapValue
	Capacity        types.Capacity
}

// DecodeDeleteResult reads a Delete response body.
func DecodeDeleteResult(r *Reader) (*DeleteResult, error) {
	res := &DeleteResult{}
	success, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	res.Success = success
	if !success {
		hasExisting, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if hasExisting {
			ev, err := r.ReadBinary()
			if err != nil {
				return nil, err
			}
			res.ExistingVersion = types.Version(ev)
			hasRow, err := r.ReadBool()
			if err != nil {
				return nil, err
			}
			if hasRow {
				row, err := DecodeMap(r)
				if err != nil {
					return nil, err
				}
				res.ExistingValue = row
			}
		}
	}
	if err := decodeCapacity(r, &res.Capacity); err != nil {
		return nil, err
	}
	return res, nil
}

// MultiDeleteParams carries the fields of a batch MultiDelete request
// (SPEC_FULL.md §C: a supplemented sibling of WriteMultiple, deleting
// every row under a shared shard key; there is no sub-range field).
type MultiDeleteParams struct {
	Key             *types.MapValue // partial primary key (shard key)
	MaxWriteKB      int32
	ContinuationKey []byte
}

// EncodeMultiDeleteRequest writes a MultiDelete request frame.
func EncodeMultiDeleteRequest(version ProtocolVersion, timeoutMs int32, tableName string, p MultiDeleteParams) ([]byte, error) {
	w := NewWriter(128)
	WriteRequestHeader(w, version, OpMultiDelete, timeoutMs, tableName)
	w.WritePackedInt32(p.MaxWriteKB)
	if err := EncodeMap(w, p.Key); err != nil {
		return nil, err
	}
	w.WriteBinary(p.ContinuationKey)
	return w.Bytes(), nil
}

// MultiDeleteResult is the decoded body of a MultiDelete response.
type MultiDeleteResult struct {
	DeletedCount    int32
	ContinuationKey []byte
	Capacity        types.Capacity
}

// DecodeMultiDeleteResult reads a MultiDelete response body.
func DecodeMultiDeleteResult(r *Reader) (*MultiDeleteResult, error) {
	res := &MultiDeleteResult{}
	n, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	res.DeletedCount = n
	ck, err := r.ReadBinary()
	if err != nil {
		return nil, err
	}
	res.ContinuationKey = ck
	if err := decodeCapacity(r, &res.Capacity); err != nil {
		return nil, err
	}
	return res, nil
}
