package nosqldb

import (
	"sync"
	"time"
)

// RateLimiter throttles a Handle's outbound request rate client-side,
// fed by each Result's consumed read/write units (spec.md §3, "Handle
// owns ... a rate limiter (optional)"; SPEC_FULL.md §C, "a concrete
// token-bucket implementation, stdlib time.Ticker-driven").
//
// A RateLimiter is scoped to one resource (reads or writes); a Handle
// typically pairs two, one per direction.
type RateLimiter interface {
	// Consume records a spend of units tokens without blocking; the
	// balance may go negative, which later Wait calls then wait out.
	// units is the unit count a just-completed Result reported; this
	// simple design admits the spend after the fact to avoid predicting
	// the server's actual charge, matching the original's "the client-side
	// driver uses a client-side read/write-unit token bucket fed by each
	// Result's consumed-units count" design.
	Consume(units int32)
	// Wait blocks until the bucket holds at least one token, or the
	// channel closes/fires first.
	Wait(done <-chan struct{})
	// Close releases any Wait callers blocked on the limiter.
	Close()
}

// TokenBucket is a simple, stdlib-only token bucket: capacity tokens
// refilled at a constant rate, drained by Consume and gating Wait.
type TokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // tokens/sec
	last     time.Time

	closeOnce sync.Once
	closed    chan struct{}
}

var _ RateLimiter = (*TokenBucket)(nil)

// NewTokenBucket builds a bucket that holds at most capacity tokens and
// refills at ratePerSecond tokens/sec, starting full.
func NewTokenBucket(capacity, ratePerSecond float64) *TokenBucket {
	return &TokenBucket{
		tokens:   capacity,
		capacity: capacity,
		rate:     ratePerSecond,
		last:     time.Now(),
		closed:   make(chan struct{}),
	}
}

func (b *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(b.last).Seconds()
	b.last = now
	b.tokens += elapsed * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
}

// Consume reports a spend that already happened (the server already
// performed the work; this only lets future Wait calls account for it).
func (b *TokenBucket) Consume(units int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	b.tokens -= float64(units)
}

// Wait blocks in a short poll loop until at least one token is available.
func (b *TokenBucket) Wait(done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		b.mu.Lock()
		b.refill()
		ready := b.tokens >= 1
		b.mu.Unlock()
		if ready {
			return
		}
		select {
		case <-done:
			return
		case <-b.closed:
			return
		case <-ticker.C:
		}
	}
}

// Close releases Wait callers blocked on this bucket.
func (b *TokenBucket) Close() {
	b.closeOnce.Do(func() { close(b.closed) })
}
