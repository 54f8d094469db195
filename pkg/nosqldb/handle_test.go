package nosqldb

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dittonosql/go-sdk/internal/auth"
	"github.com/dittonosql/go-sdk/internal/transport"
	"github.com/dittonosql/go-sdk/internal/wire"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

func TestDowngradeProtocolVersion_DecrementsByOne(t *testing.T) {
	h := &Handle{version: int32(wire.MaxProtocolVersion)}
	ok := h.downgradeProtocolVersion(wire.MaxProtocolVersion)
	assert.True(t, ok)
	assert.Equal(t, wire.MaxProtocolVersion-1, h.protocolVersion())
}

func TestDowngradeProtocolVersion_NeverGoesBelowMinimum(t *testing.T) {
	h := &Handle{version: int32(wire.MinProtocolVersion)}
	ok := h.downgradeProtocolVersion(wire.MinProtocolVersion)
	assert.False(t, ok)
	assert.Equal(t, wire.MinProtocolVersion, h.protocolVersion())
}

func TestDowngradeProtocolVersion_StaleObserverLosesRace(t *testing.T) {
	// A caller holding a version observed before a concurrent downgrade
	// already happened must not downgrade again against its own stale
	// observation.
	h := &Handle{version: int32(wire.MaxProtocolVersion)}
	require.True(t, h.downgradeProtocolVersion(wire.MaxProtocolVersion))
	assert.False(t, h.downgradeProtocolVersion(wire.MaxProtocolVersion))
	assert.Equal(t, wire.MaxProtocolVersion-1, h.protocolVersion())
}

func TestDowngradeProtocolVersion_ConcurrentObserversDowngradeExactlyOnce(t *testing.T) {
	h := &Handle{version: int32(wire.MaxProtocolVersion)}
	var succeeded int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.downgradeProtocolVersion(wire.MaxProtocolVersion) {
				atomic.AddInt32(&succeeded, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), succeeded, "exactly one concurrent observer should win the downgrade")
	assert.Equal(t, wire.MaxProtocolVersion-1, h.protocolVersion())
}

func TestRetryBackoff_NeverExceedsCapAndNeverNegative(t *testing.T) {
	for attempt := 0; attempt < 10; attempt++ {
		d := retryBackoff(attempt)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, time.Second)
	}
}

// --- end-to-end executor retry behavior against a fake server ---

func testHandleAgainstServer(t *testing.T, handler http.HandlerFunc) *Handle {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	provider := auth.NewSimpleProvider("t", "u", "fp", "us-ashburn-1", key)

	h, err := NewBuilder().
		Mode(transport.ModeCloud).
		Endpoint(srv.URL).
		Auth(provider).
		Timeout(5 * time.Second).
		Build(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func encodeErrorEnvelope(code nosqlerr.Code, message string) []byte {
	w := wire.NewWriter(32)
	w.WritePackedInt32(int32(code))
	w.WriteString(message)
	return w.Bytes()
}

func encodePutSuccess() []byte {
	w := wire.NewWriter(64)
	w.WritePackedInt32(0) // NoError envelope
	w.WriteBool(true)     // PutResult.Success
	w.WriteBinary([]byte("v1"))
	w.WritePackedInt32(1) // ReadUnits
	w.WritePackedInt32(1) // ReadKB
	w.WritePackedInt32(1) // WriteUnits
	w.WritePackedInt32(1) // WriteKB
	return w.Bytes()
}

func simplePutRequest() *PutRequest {
	return &PutRequest{TableName: "t", Value: types.NewMapValue().PutInt("id", 1)}
}

func TestExecute_NonRetryableErrorSurfacesImmediately(t *testing.T) {
	var calls int32
	h := testHandleAgainstServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write(encodeErrorEnvelope(nosqlerr.IllegalArgument, "bad row"))
	})

	_, err := h.Put(context.Background(), simplePutRequest())
	require.Error(t, err)
	nerr, ok := nosqlerr.AsError(err)
	require.True(t, ok)
	assert.Equal(t, nosqlerr.IllegalArgument, nerr.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a non-retryable error must not be retried")
}

func TestExecute_RetryableThenSuccessReturnsSuccess(t *testing.T) {
	var calls int32
	h := testHandleAgainstServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			_, _ = w.Write(encodeErrorEnvelope(nosqlerr.ServerError, "transient"))
			return
		}
		_, _ = w.Write(encodePutSuccess())
	})

	res, err := h.Put(context.Background(), simplePutRequest())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestExecute_DeadlineExceededStopsRetryingPromptly(t *testing.T) {
	h := testHandleAgainstServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(encodeErrorEnvelope(nosqlerr.ServerError, "always busy"))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := h.Put(ctx, simplePutRequest())
	elapsed := time.Since(start)

	require.Error(t, err)
	// One backoff quantum is capped at 1s; the loop must not run far past
	// the deadline waiting on a sleep that outlives it.
	assert.Less(t, elapsed, 300*time.Millisecond+time.Second)
}

func TestExecute_UnsupportedProtocolDowngradesThenFailsAtMinimum(t *testing.T) {
	var calls int32
	h := testHandleAgainstServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write(encodeErrorEnvelope(nosqlerr.UnsupportedProtocol, "too new"))
	})

	_, err := h.Put(context.Background(), simplePutRequest())
	require.Error(t, err)
	nerr, ok := nosqlerr.AsError(err)
	require.True(t, ok)
	assert.Equal(t, nosqlerr.UnsupportedProtocol, nerr.Code)

	wantAttempts := int32(wire.MaxProtocolVersion - wire.MinProtocolVersion + 1)
	assert.Equal(t, wantAttempts, atomic.LoadInt32(&calls))
	assert.Equal(t, wire.MinProtocolVersion, h.protocolVersion())
}

func TestExecute_ConcurrentUnsupportedProtocolLosersRetryInsteadOfFailing(t *testing.T) {
	// Many goroutines hit UnsupportedProtocol at once; only one per version
	// wins the downgradeProtocolVersion CAS. Every loser must re-read the
	// now-lower version and retry rather than surface the stale error.
	const numGoroutines = 16
	var calls int32
	h := testHandleAgainstServer(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= numGoroutines {
			_, _ = w.Write(encodeErrorEnvelope(nosqlerr.UnsupportedProtocol, "too new"))
			return
		}
		_, _ = w.Write(encodePutSuccess())
	})

	var wg sync.WaitGroup
	errs := make([]error, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.Put(context.Background(), simplePutRequest())
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "goroutine %d: a losing racer on the downgrade CAS must retry, not fail", i)
	}
}
