package wire

import "github.com/dittonosql/go-sdk/pkg/nosqldb/types"

// PutOption selects the conditional-write mode. ifAbsent/ifPresent get
// their own opcode (OpPutIfAbsent/OpPutIfPresent) rather than being
// expressed as a condition byte within OpPut.
type PutOption byte

const (
	PutOptionPlain PutOption = iota
	PutOptionIfAbsent
	PutOptionIfPresent
	PutOptionIfVersion
)

// putOpCode picks the wire opcode for option: ifAbsent/ifPresent get a
// dedicated opcode, so the server never needs to inspect a condition
// byte to tell them apart from an unconditional or if-version put.
func putOpCode(option PutOption) OpCode {
	switch option {
	case PutOptionIfAbsent:
		return OpPutIfAbsent
	case PutOptionIfPresent:
		return OpPutIfPresent
	default:
		return OpPut
	}
}

// PutParams carries the caller-supplied fields of a Put request.
type PutParams struct {
	Value       *types.MapValue
	Option      PutOption
	IfVersion   types.Version // only meaningful when Option == PutOptionIfVersion
	TTL         *types.TTL
	UpdateTTL   bool
	Durability  types.Durability
	ReturnRow   bool // request the existing row back on a failed conditional put
}

// EncodePutRequest writes a Put request frame. ifAbsent/ifPresent are
// dispatched under their own opcode; OpPut itself only ever carries an
// unconditional put or an if-version condition.
func EncodePutRequest(version ProtocolVersion, timeoutMs int32, tableName string, p PutParams) ([]byte, error) {
	w := NewWriter(256)
	op := putOpCode(p.Option)
	WriteRequestHeader(w, version, op, timeoutMs, tableName)
	if op == OpPut {
		w.WriteByte(byte(p.Option))
		if p.Option == PutOptionIfVersion {
			if len(p.IfVersion) == 0 {
				return nil, protoErrf("PutOptionIfVersion requires a non-empty version")
			}
			w.WriteBinary(p.IfVersion)
		}
	}
	w.WriteByte(byte(p.Durability))
	w.WriteBool(p.ReturnRow)

	if p.TTL != nil {
		if err := p.TTL.Validate(); err != nil {
			return nil, err
		}
		w.WriteBool(true)
		w.WriteByte(byte(p.TTL.Unit))
		w.WritePackedInt64(p.TTL.Value)
	} else {
		w.WriteBool(false)
	}
	w.WriteBool(p.UpdateTTL)

	if err := EncodeMap(w, p.Value); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// PutResult is the decoded body of a Put response.
type PutResult struct {
	Success         bool
	Version         types.Version
	ExistingVersion types.Version   // populated on a failed conditional put
	ExistingValue   *types.MapValue // populated on a failed conditional put, if requested
	Capacity        types.Capacity
}

// DecodePutResult reads a Put response body.
func DecodePutResult(r *Reader) (*PutResult, error) {
	res := &PutResult{}
	success, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	res.Success = success
	if success {
		version, err := r.ReadBinary()
		if err != nil {
			return nil, err
		}
		res.Version = types.Version(version)
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
