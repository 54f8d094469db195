package types

import (
	"time"

	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

// Consistency selects how strongly a read must reflect the latest write
// (spec §3).
type Consistency int

const (
	ConsistencyAbsolute Consistency = iota
	ConsistencyEventual
)

// Durability selects the server-side commit/sync mode for a write (spec §3).
type Durability int

const (
	DurabilityCommitSync Durability = iota
	DurabilityCommitNoSync
	DurabilityCommitWriteNoSync
)

// TTLUnit is the unit a TTL duration is expressed in (spec §3: "a
// non-negative integer multiple of one hour or one day").
type TTLUnit int

const (
	TTLHours TTLUnit = iota
	TTLDays
)

// TTL is a row time-to-live, always a whole number of hours or days.
type TTL struct {
	Value int64
	Unit  TTLUnit
}

// Hours builds a TTL of n whole hours.
func Hours(n int64) TTL { return TTL{Value: n, Unit: TTLHours} }

// Days builds a TTL of n whole days.
func Days(n int64) TTL { return TTL{Value: n, Unit: TTLDays} }

// FromDuration converts d to a whole-hour or whole-day TTL, matching the
// original SDK's quickstart usage (`TableRequest`/`PutRequest.ttl(&Duration)`).
// d must be an exact multiple of an hour; the codec rejects anything else
// at encode time (spec §4.4), so this only covers the common case of
// constructing a TTL from a caller's time.Duration.
func FromDuration(d time.Duration) (TTL, error) {
	if d < 0 || d%time.Hour != 0 {
		return TTL{}, nosqlerr.IllegalArg("ttl duration %s is not a non-negative whole number of hours", d)
	}
	hours := int64(d / time.Hour)
	if hours%24 == 0 && hours > 0 {
		return Days(hours / 24), nil
	}
	return Hours(hours), nil
}

// Validate checks that the TTL obeys spec §3's invariant: a non-negative
// integer multiple of one hour or one day. Since Value/Unit are already
// constrained by construction, this only rejects a negative Value that a
// caller built by hand via the zero value's struct literal.
func (t TTL) Validate() error {
	if t.Value < 0 {
		return nosqlerr.IllegalArg("ttl must be non-negative, got %d", t.Value)
	}
	return nil
}
