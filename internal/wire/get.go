package wire

import "github.com/dittonosql/go-sdk/pkg/nosqldb/types"

// EncodeGetRequest writes a Get request frame (spec §4.4).
func EncodeGetRequest(version ProtocolVersion, timeoutMs int32, tableName string, key *types.MapValue, consistency types.Consistency) []byte {
	w := NewWriter(128)
	WriteRequestHeader(w, version, OpGet, timeoutMs, tableName)
	w.WriteByte(byte(consistency))
	if err := EncodeMap(w, key); err != nil {
		// key is caller-constructed and always encodable; EncodeMap only
		// fails on an unknown FieldValue kind, which cannot occur for
		// values built through the public constructors.
		panic(err)
	}
	return w.Bytes()
}

// GetResult is the decoded body of a Get response.
type GetResult struct {
	Row      *types.MapValue // nil if the row does not exist
	Version  types.Version
	Capacity types.Capacity
}

// DecodeGetResult reads a Get response body (the error envelope must
// already have been consumed by the caller via ReadResponseEnvelope).
func DecodeGetResult(r *Reader) (*GetResult, error) {
	found, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	res := &GetResult{}
	if !found {
		if err := decodeCapacity(r, &res.Capacity); err != nil {
			return nil, err
		}
		return res, nil
	}
	version, err := r.ReadBinary()
	if err != nil {
		return nil, err
	}
	res.Version = types.Version(version)
	row, err := DecodeMap(r)
	if err != nil {
		return nil, err
	}
	res.Row = row
	if err := decodeCapacity(r, &res.Capacity); err != nil {
		return nil, err
	}
	return res, nil
}

func decodeCapacity(r *Reader, c *types.Capacity) error {
	var err error
	if c.ReadUnits, err = r.ReadPackedInt32(); err != nil {
		return err
	}
	if c.ReadKB, err = r.ReadPackedInt32(); err != nil {
		return err
	}
	if c.WriteUnits, err = r.ReadPackedInt32(); err != nil {
		return err
	}
	if c.WriteKB, err = r.ReadPackedInt32(); err != nil {
		return err
	}
	return nil
}
