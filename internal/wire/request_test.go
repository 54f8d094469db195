package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

func readRequestHeader(t *testing.T, r *Reader) (version ProtocolVersion, op OpCode, timeoutMs int32, tableName string) {
	t.Helper()
	v, err := r.ReadPackedInt32()
	require.NoError(t, err)
	b, err := r.ReadByte()
	require.NoError(t, err)
	ms, err := r.ReadPackedInt32()
	require.NoError(t, err)
	name, _, err := r.ReadString()
	require.NoError(t, err)
	return ProtocolVersion(v), OpCode(b), ms, name
}

func TestEncodePutRequest_HeaderAndBodyRoundTrip(t *testing.T) {
	value := types.NewMapValue().PutInt("id", 42).PutString("name", "jane")
	buf, err := EncodePutRequest(ProtocolV4, 5000, "users", PutParams{
		Value:      value,
		Option:     PutOptionIfVersion,
		IfVersion:  types.Version("v1"),
		Durability: types.Durability(0),
		ReturnRow:  true,
	})
	require.NoError(t, err)

	r := NewReader(buf)
	version, op, timeoutMs, tableName := readRequestHeader(t, r)
	assert.Equal(t, ProtocolV4, version)
	assert.Equal(t, OpPut, op)
	assert.Equal(t, int32(5000), timeoutMs)
	assert.Equal(t, "users", tableName)

	option, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(PutOptionIfVersion), option)
	ifVersion, err := r.ReadBinary()
	require.NoError(t, err)
	assert.Equal(t, types.Version("v1"), types.Version(ifVersion))
}

func TestEncodePutRequest_IfAbsentAndIfPresentUseDedicatedOpcodes(t *testing.T) {
	value := types.NewMapValue().PutInt("id", 1)

	absentBuf, err := EncodePutRequest(ProtocolV4, 1000, "t", PutParams{Value: value, Option: PutOptionIfAbsent})
	require.NoError(t, err)
	_, op, _, _ := readRequestHeader(t, NewReader(absentBuf))
	assert.Equal(t, OpPutIfAbsent, op)

	presentBuf, err := EncodePutRequest(ProtocolV4, 1000, "t", PutParams{Value: value, Option: PutOptionIfPresent})
	require.NoError(t, err)
	_, op2, _, _ := readRequestHeader(t, NewReader(presentBuf))
	assert.Equal(t, OpPutIfPresent, op2)

	// Neither opcode carries the PutOption discriminant byte: the next
	// field after the header is Durability, not a condition byte.
	r := NewReader(absentBuf)
	readRequestHeader(t, r)
	durability, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0), durability)
}

func TestEncodePutRequest_IfVersionWithoutVersionFails(t *testing.T) {
	_, err := EncodePutRequest(ProtocolV4, 1000, "t", PutParams{
		Value:  types.NewMapValue().PutInt("id", 1),
		Option: PutOptionIfVersion,
	})
	require.Error(t, err)
}

func TestPutResult_RoundTripSuccessAndFailure(t *testing.T) {
	w := NewWriter(64)
	require.NoError(t, writePutResultSuccess(w, "v1", types.Capacity{ReadUnits: 1, WriteUnits: 2, ReadKB: 1, WriteKB: 2}))
	res, err := DecodePutResult(NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, types.Version("v1"), res.Version)
	assert.Equal(t, int32(2), res.Capacity.WriteUnits)

	w2 := NewWriter(64)
	w2.WriteBool(false)
	w2.WriteBool(true) // hasExisting
	w2.WriteBinary([]byte("v-old"))
	w2.WriteBool(false) // no row returned
	w2.WritePackedInt32(0)
	w2.WritePackedInt32(0)
	w2.WritePackedInt32(0)
	w2.WritePackedInt32(0)
	res2, err := DecodePutResult(NewReader(w2.Bytes()))
	require.NoError(t, err)
	assert.False(t, res2.Success)
	assert.Equal(t, types.Version("v-old"), res2.ExistingVersion)
	assert.Nil(t, res2.ExistingValue)
}

func writePutResultSuccess(w *Writer, version string, capacity types.Capacity) error {
	w.WriteBool(true)
	w.WriteBinary([]byte(version))
	w.WritePackedInt32(capacity.ReadUnits)
	w.WritePackedInt32(capacity.ReadKB)
	w.WritePackedInt32(capacity.WriteUnits)
	w.WritePackedInt32(capacity.WriteKB)
	return nil
}

func TestEncodeGetRequest_HeaderAndBodyRoundTrip(t *testing.T) {
	key := types.NewMapValue().PutInt("id", 7)
	buf := EncodeGetRequest(ProtocolV3, 3000, "users", key, types.ConsistencyAbsolute)

	r := NewReader(buf)
	version, op, timeoutMs, tableName := readRequestHeader(t, r)
	assert.Equal(t, ProtocolV3, version)
	assert.Equal(t, OpGet, op)
	assert.Equal(t, int32(3000), timeoutMs)
	assert.Equal(t, "users", tableName)

	consistency, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(types.ConsistencyAbsolute), consistency)

	gotKey, err := DecodeMap(r)
	require.NoError(t, err)
	assert.True(t, key.Equal(gotKey))
}

func TestGetResult_RoundTripFoundAndNotFound(t *testing.T) {
	w := NewWriter(64)
	w.WriteBool(true)
	w.WriteBinary([]byte("v1"))
	row := types.NewMapValue().PutInt("id", 1)
	require.NoError(t, EncodeMap(w, row))
	w.WritePackedInt32(1)
	w.WritePackedInt32(1)
	w.WritePackedInt32(0)
	w.WritePackedInt32(0)
	res, err := DecodeGetResult(NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, types.Version("v1"), res.Version)
	assert.True(t, row.Equal(res.Row))

	w2 := NewWriter(16)
	w2.WriteBool(false)
	w2.WritePackedInt32(0)
	w2.WritePackedInt32(0)
	w2.WritePackedInt32(0)
	w2.WritePackedInt32(0)
	res2, err := DecodeGetResult(NewReader(w2.Bytes()))
	require.NoError(t, err)
	assert.Nil(t, res2.Row)
}

func TestEncodeDeleteRequest_HeaderAndBodyRoundTrip(t *testing.T) {
	key := types.NewMapValue().PutInt("id", 9)
	buf, err := EncodeDeleteRequest(ProtocolV4, 2000, "users", DeleteParams{
		Key:       key,
		IfVersion: types.Version("v2"),
		ReturnRow: true,
	})
	require.NoError(t, err)

	r := NewReader(buf)
	_, op, _, tableName := readRequestHeader(t, r)
	assert.Equal(t, OpDelete, op)
	assert.Equal(t, "users", tableName)

	_, err = r.ReadByte() // durability
	require.NoError(t, err)
	returnRow, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, returnRow)
	hasIfVersion, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, hasIfVersion)
	ifVersion, err := r.ReadBinary()
	require.NoError(t, err)
	assert.Equal(t, types.Version("v2"), types.Version(ifVersion))
}

func TestDeleteResult_ConditionalFailureIsNotAWireError(t *testing.T) {
	w := NewWriter(64)
	w.WriteBool(false)
	w.WriteBool(true)
	w.WriteBinary([]byte("v-current"))
	w.WriteBool(false)
	w.WritePackedInt32(0)
	w.WritePackedInt32(0)
	w.WritePackedInt32(0)
	w.WritePackedInt32(0)

	res, err := DecodeDeleteResult(NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, types.Version("v-current"), res.ExistingVersion)
}

func TestEncodeTableRequest_WithLimitsRoundTrip(t *testing.T) {
	limits := types.ProvisionedLimits(100, 50, 25)
	buf := EncodeTableRequest(ProtocolV4, 15000, "users", TableRequestParams{
		Statement: "create table users(id integer, primary key(id))",
		Limits:    &limits,
	})

	r := NewReader(buf)
	_, op, _, tableName := readRequestHeader(t, r)
	assert.Equal(t, OpTableRequest, op)
	assert.Equal(t, "users", tableName)

	stmt, _, err := r.ReadString()
	require.NoError(t, err)
	assert.Contains(t, stmt, "create table users")

	hasLimits, err := r.ReadBool()
	require.NoError(t, err)
	require.True(t, hasLimits)
	readUnits, err := r.ReadPackedInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(100), readUnits)
}

func TestDecodeTableResult_RoundTrip(t *testing.T) {
	w := NewWriter(64)
	w.WriteString("users")
	w.WriteByte(byte(types.TableStateActive))
	w.WriteString(`{"id":"integer"}`)
	w.WriteString("op-123")

	res, err := DecodeTableResult(NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "users", res.TableName)
	assert.Equal(t, types.TableStateActive, res.State)
	assert.Equal(t, `{"id":"integer"}`, res.Schema)
	assert.Equal(t, "op-123", res.OperationID)
}

func TestEncodeSystemRequest_RoundTrip(t *testing.T) {
	buf := EncodeSystemRequest(ProtocolV4, 10000, "grant role foo to bar")
	r := NewReader(buf)
	_, op, timeoutMs, tableName := readRequestHeader(t, r)
	assert.Equal(t, OpSystemRequest, op)
	assert.Equal(t, int32(10000), timeoutMs)
	assert.Equal(t, "", tableName)

	stmt, _, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "grant role foo to bar", stmt)
}

func TestDecodeSystemResult_RoundTrip(t *testing.T) {
	w := NewWriter(32)
	w.WriteString("op-1")
	w.WriteString("COMPLETE")
	w.WriteString("granted")

	res, err := DecodeSystemResult(NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "op-1", res.OperationID)
	assert.Equal(t, "COMPLETE", res.State)
	assert.Equal(t, "granted", res.ResultText)
}

func TestEncodeWriteMultipleRequest_MixedPutAndDeleteRoundTrip(t *testing.T) {
	ops := []WriteOp{
		{IsDelete: false, Put: PutParams{Value: types.NewMapValue().PutInt("id", 1), Option: PutOptionPlain}},
		{IsDelete: true, Delete: DeleteParams{Key: types.NewMapValue().PutInt("id", 2)}, AbortIfUnsuccessful: true},
	}
	buf, err := EncodeWriteMultipleRequest(ProtocolV4, 5000, "users", ops)
	require.NoError(t, err)

	r := NewReader(buf)
	_, op, _, tableName := readRequestHeader(t, r)
	assert.Equal(t, OpWriteMultiple, op)
	assert.Equal(t, "users", tableName)

	count, err := r.ReadPackedInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(2), count)

	isDelete, err := r.ReadBool()
	require.NoError(t, err)
	assert.False(t, isDelete)
	abort, err := r.ReadBool()
	require.NoError(t, err)
	assert.False(t, abort)
}

func TestDecodeWriteMultipleResult_RoundTrip(t *testing.T) {
	w := NewWriter(128)
	w.WritePackedInt32(-1) // AbortedIndex: nothing aborted
	w.WritePackedInt32(2)  // two op results

	// op 0: success
	w.WriteBool(true)
	w.WriteBinary([]byte("v1"))

	// op 1: failed conditional op with existing row
	w.WriteBool(false)
	w.WriteBool(true)
	w.WriteBinary([]byte("v-existing"))
	w.WriteBool(true)
	require.NoError(t, EncodeMap(w, types.NewMapValue().PutInt("id", 2)))

	w.WritePackedInt32(1)
	w.WritePackedInt32(1)
	w.WritePackedInt32(1)
	w.WritePackedInt32(1)

	res, err := DecodeWriteMultipleResult(NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, int32(-1), res.AbortedIndex)
	require.Len(t, res.Results, 2)
	assert.True(t, res.Results[0].Success)
	assert.Equal(t, types.Version("v1"), res.Results[0].Version)
	assert.False(t, res.Results[1].Success)
	assert.Equal(t, types.Version("v-existing"), res.Results[1].ExistingVersion)
	require.NotNil(t, res.Results[1].ExistingValue)
}

func TestReadResponseEnvelope_SuccessAndError(t *testing.T) {
	w := NewWriter(16)
	w.WritePackedInt32(0)
	code, errOut, decodeErr := ReadResponseEnvelope(NewReader(w.Bytes()))
	require.NoError(t, decodeErr)
	assert.Equal(t, int32(0), code)
	assert.Nil(t, errOut)

	w2 := NewWriter(32)
	w2.WritePackedInt32(4) // IllegalArgument
	w2.WriteString("bad row")
	code2, errOut2, decodeErr2 := ReadResponseEnvelope(NewReader(w2.Bytes()))
	require.NoError(t, decodeErr2)
	assert.Equal(t, int32(4), code2)
	require.NotNil(t, errOut2)
	assert.Contains(t, errOut2.Error(), "bad row")
}

func TestEncodeMultiDeleteRequest_HeaderAndBodyRoundTrip(t *testing.T) {
	key := types.NewMapValue().PutString("shard", "us")
	buf, err := EncodeMultiDeleteRequest(ProtocolV4, 4000, "events", MultiDeleteParams{
		Key:             key,
		MaxWriteKB:      512,
		ContinuationKey: []byte("from-prior-batch"),
	})
	require.NoError(t, err)

	r := NewReader(buf)
	version, op, timeoutMs, tableName := readRequestHeader(t, r)
	assert.Equal(t, ProtocolV4, version)
	assert.Equal(t, OpMultiDelete, op)
	assert.Equal(t, int32(4000), timeoutMs)
	assert.Equal(t, "events", tableName)

	maxWriteKB, err := r.ReadPackedInt32()
	require.NoError(t, err)
	assert.Equal(t, int32(512), maxWriteKB)

	decodedKey, err := DecodeMap(r)
	require.NoError(t, err)
	assert.True(t, key.Equal(decodedKey))

	ck, err := r.ReadBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte("from-prior-batch"), ck)
}

func TestDecodeMultiDeleteResult_RoundTripWithAndWithoutContinuation(t *testing.T) {
	w := NewWriter(32)
	w.WritePackedInt32(17) // DeletedCount
	w.WriteBinary([]byte("next-batch"))
	w.WritePackedInt32(1) // ReadUnits
	w.WritePackedInt32(1) // ReadKB
	w.WritePackedInt32(2) // WriteUnits
	w.WritePackedInt32(2) // WriteKB

	res, err := DecodeMultiDeleteResult(NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, int32(17), res.DeletedCount)
	assert.Equal(t, []byte("next-batch"), res.ContinuationKey)
	assert.Equal(t, int32(2), res.Capacity.WriteUnits)

	w2 := NewWriter(32)
	w2.WritePackedInt32(3)
	w2.WriteBinary(nil)
	w2.WritePackedInt32(0)
	w2.WritePackedInt32(0)
	w2.WritePackedInt32(0)
	w2.WritePackedInt32(0)

	res2, err := DecodeMultiDeleteResult(NewReader(w2.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, int32(3), res2.DeletedCount)
	assert.Nil(t, res2.ContinuationKey)
}
