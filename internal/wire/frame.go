package wire

import "github.com/dittonosql/go-sdk/pkg/nosqlerr"

// WriteRequestHeader emits the common request preamble shared by every
// opcode (spec §4.4): protocol-version, opcode, timeout-ms, table-name
// (absent-capable).
func WriteRequestHeader(w *Writer, version ProtocolVersion, op OpCode, timeoutMs int32, tableName string) {
	w.WritePackedInt32(int32(version))
	w.WriteByte(byte(op))
	w.WritePackedInt32(timeoutMs)
	if tableName == "" {
		w.WriteNullString()
	} else {
		w.WriteString(tableName)
	}
}

// ReadResponseEnvelope reads the error-code prefix common to every
// response (spec §4.4). If the code is non-zero, it also reads the
// message string and returns a populated *nosqlerr.Error; the caller
// must not attempt to decode an opcode-specific body in that case.
func ReadResponseEnvelope(r *Reader) (code int32, errOut *nosqlerr.Error, decodeErr error) {
	code, decodeErr = r.ReadPackedInt32()
	if decodeErr != nil {
		return 0, nil, decodeErr
	}
	if code == 0 {
		return 0, nil, nil
	}
	msg, _, err := r.ReadString()
	if err != nil {
		return code, nil, err
	}
	wireCode := nosqlerr.FromInt(code)
	return code, nosqlerr.New(wireCode, "%s", msg), nil
}
