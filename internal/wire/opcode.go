package wire

// OpCode identifies a request/response pair on the wire (spec §4.4).
type OpCode byte

const (
	OpDelete OpCode = iota
	OpPut
	OpGet
	OpQuery
	OpPrepare
	OpTableRequest
	OpGetTable
	OpListTables
	OpTableUsage
	OpSystemRequest
	OpSystemStatusRequest
	OpWriteMultiple
	OpMultiDelete
	OpPutIfAbsent
	OpPutIfPresent
)

// ProtocolVersion is the packed-i32 protocol-version field every frame
// starts with (spec §4.4). Versions decrease monotonically as the
// executor negotiates down against an older server (spec §4.7).
type ProtocolVersion int32

const (
	ProtocolV4 ProtocolVersion = 4
	ProtocolV3 ProtocolVersion = 3
	ProtocolV2 ProtocolVersion = 2

	MinProtocolVersion = ProtocolV2
	MaxProtocolVersion = ProtocolV4
)
