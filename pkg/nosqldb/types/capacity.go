package types

// Capacity holds the read/write units a request consumed, carried on
// every Result (spec §3).
type Capacity struct {
	ReadUnits  int32
	WriteUnits int32
	ReadKB     int32
	WriteKB    int32
}

// TableState is the lifecycle state of a table, polled by
// TableRequest.WaitForCompletion (spec §4.7).
type TableState int

const (
	TableStateCreating TableState = iota
	TableStateDropping
	TableStateDropped
	TableStateActive
	TableStateUpdating
)

func (s TableState) String() string {
	switch s {
	case TableStateCreating:
		return "Creating"
	case TableStateDropping:
		return "Dropping"
	case TableStateDropped:
		return "Dropped"
	case TableStateActive:
		return "Active"
	case TableStateUpdating:
		return "Updating"
	default:
		return "Unknown"
	}
}

// TableLimits holds provisioned throughput limits for Cloud-mode tables
// (SPEC_FULL.md §C, supplemented from the original SDK's quickstart
// example: `TableLimits::provisioned(read, write, storageGB)`).
type TableLimits struct {
	ReadUnits    int32
	WriteUnits   int32
	StorageGB    int32
}

// ProvisionedLimits builds a TableLimits for Cloud mode.
func ProvisionedLimits(readUnits, writeUnits, storageGB int32) TableLimits {
	return TableLimits{ReadUnits: readUnits, WriteUnits: writeUnits, StorageGB: storageGB}
}
