// Package nosqldb is the public client SDK: Builder/Handle construction,
// fluent Request/Result types per opcode, and the executor retry loop
// (spec.md §4.7) that drives them over internal/transport and
// internal/wire.
package nosqldb

import (
	"context"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dittonosql/go-sdk/internal/auth"
	"github.com/dittonosql/go-sdk/internal/transport"
	"github.com/dittonosql/go-sdk/internal/wire"
	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

var tracer = otel.Tracer("github.com/dittonosql/go-sdk/pkg/nosqldb")

// Handle is the SDK's top-level client: one per application, safe for
// concurrent use by many goroutines (spec.md §5, "many independent
// requests may be in flight concurrently"). Build one with NewBuilder.
type Handle struct {
	transport *transport.Transport
	provider  auth.Provider
	logger    *slog.Logger
	timeout   time.Duration

	// version is the negotiated protocol version, the one piece of
	// shared mutable state besides the auth provider's own internal
	// state (spec.md §5). Stored as an int32 and accessed via
	// sync/atomic so concurrent requests never race decrementing it;
	// it only ever decreases for the life of the handle.
	version int32

	readLimit  RateLimiter
	writeLimit RateLimiter
	metrics    *metrics
}

func maxProtocolVersion() int32 { return int32(wire.MaxProtocolVersion) }

// protocolVersion returns the currently negotiated version.
func (h *Handle) protocolVersion() wire.ProtocolVersion {
	return wire.ProtocolVersion(atomic.LoadInt32(&h.version))
}

// downgradeProtocolVersion decrements the negotiated version by one,
// unless it is already at the minimum or a concurrent caller already
// moved it below the version this caller observed (spec.md §4.7,
// "monotonic: the version never increases again").
func (h *Handle) downgradeProtocolVersion(observed wire.ProtocolVersion) bool {
	if observed <= wire.MinProtocolVersion {
		return false
	}
	return atomic.CompareAndSwapInt32(&h.version, int32(observed), int32(observed)-1)
}

// Close releases the handle's authentication provider resources (e.g.
// the on-prem provider's logout call, or an instance-principal
// provider's background state).
func (h *Handle) Close() error {
	if h.provider != nil {
		return h.provider.Close()
	}
	return nil
}

// Logger returns the handle's structured logger.
func (h *Handle) Logger() *slog.Logger { return h.logger }

// retryBackoff computes the exponential-with-jitter delay for the nth
// throttling/server-error retry (0-indexed), initial ~200ms, capped at
// 1s (spec.md §4.7).
func retryBackoff(attempt int) time.Duration {
	const (
		initial = 200 * time.Millisecond
		cap_    = time.Second
	)
	d := initial << attempt
	if d <= 0 || d > cap_ {
		d = cap_
	}
	jitter := time.Duration(rand.Int63n(int64(d) / 2))
	return d/2 + jitter
}

// execute is the retry loop shared by every opcode (spec.md §4.7): it
// encodes against the currently negotiated version, signs and sends via
// the transport, decodes the response, and retries per the error band
// returned. encode is called again on every attempt (after a protocol
// downgrade the frame must be re-encoded at the new version); decode
// receives only the opcode-specific body — the shared error envelope
// has already been consumed.
func execute[T any](ctx context.Context, h *Handle, opName string, requestTimeout time.Duration, encode func(wire.ProtocolVersion) ([]byte, error), decode func(*wire.Reader) (T, error)) (T, error) {
	var zero T

	ctx, span := tracer.Start(ctx, "nosqldb.execute", trace.WithAttributes(attribute.String("nosqldb.op", opName)))
	defer span.End()

	deadline, hasDeadline := ctx.Deadline()
	attempt := 0
	for {
		select {
		case <-ctx.Done():
			span.SetStatus(codes.Error, "deadline exceeded")
			return zero, nosqlerr.New(nosqlerr.RequestTimeout, "%s: %v", opName, ctx.Err())
		default:
		}

		var remaining time.Duration
		if hasDeadline {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return zero, nosqlerr.New(nosqlerr.RequestTimeout, "%s: deadline exceeded", opName)
			}
		}
		effective := transport.EffectiveTimeout(requestTimeout, h.timeout, remaining)
		attemptCtx := ctx
		var cancel context.CancelFunc
		if effective > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, effective)
		}

		version := h.protocolVersion()
		body, err := encode(version)
		if err != nil {
			if cancel != nil {
				cancel()
			}
			return zero, err
		}

		resp, sendErr := h.transport.Send(attemptCtx, transport.DataPath(int(version)), body)
		if cancel != nil {
			cancel()
		}
		if sendErr != nil {
			nerr, _ := nosqlerr.AsError(sendErr)
			if nerr != nil && nerr.Code.Retryable() && h.sleepForRetry(ctx, nerr.Code, attempt, opName) {
				attempt++
				continue
			}
			span.SetStatus(codes.Error, sendErr.Error())
			return zero, sendErr
		}

		span.SetAttributes(attribute.String("nosqldb.request_id", resp.RequestID))

		r := wire.NewReader(resp.Body)
		code, wireErr, decodeErr := wire.ReadResponseEnvelope(r)
		if decodeErr != nil {
			span.SetStatus(codes.Error, decodeErr.Error())
			return zero, nosqlerr.New(nosqlerr.IllegalArgument, "%s: decode response envelope: %v", opName, decodeErr)
		}

		if code == int32(nosqlerr.NoError) {
			result, err := decode(r)
			if err != nil {
				span.SetStatus(codes.Error, err.Error())
				return zero, nosqlerr.New(nosqlerr.IllegalArgument, "%s: decode response body: %v", opName, err)
			}
			return result, nil
		}

		if code == int32(nosqlerr.UnsupportedProtocol) {
			if h.downgradeProtocolVersion(version) {
				h.metrics.protocolDowngrade.Inc()
				h.logger.Debug("protocol downgraded", "op", opName, "from", version)
				continue
			}
			if h.protocolVersion() < version {
				// A concurrent caller already downgraded past the version
				// this attempt observed; retry immediately at the
				// now-current version instead of failing on a stale read
				// (spec.md §4.7, "retry immediately").
				continue
			}
			span.SetStatus(codes.Error, wireErr.Error())
			return zero, wireErr
		}

		if code == int32(nosqlerr.BadProtocolMessage) {
			err := nosqlerr.New(nosqlerr.IllegalArgument, "%s: %s", opName, wireErr.Message)
			span.SetStatus(codes.Error, err.Error())
			return zero, err
		}

		if wireErr.Code.Retryable() {
			h.metrics.retryCount.WithLabelValues(opName, wireErr.Code.String()).Inc()
			if wireErr.Code.Band() == nosqlerr.BandThrottling {
				h.metrics.throttleCount.WithLabelValues(opName).Inc()
			}
			if h.sleepForRetry(ctx, wireErr.Code, attempt, opName) {
				attempt++
				continue
			}
		}

		h.logger.Debug("request failed", "op", opName, "request_id", resp.RequestID, "code", wireErr.Code.String())
		span.SetStatus(codes.Error, wireErr.Error())
		return zero, wireErr
	}
}

// sleepForRetry sleeps the appropriate delay for a retryable code and
// reports whether the caller should retry (false if the context was
// cancelled/expired while sleeping).
func (h *Handle) sleepForRetry(ctx context.Context, code nosqlerr.Code, attempt int, opName string) bool {
	var delay time.Duration
	switch code {
	case nosqlerr.SecurityInfoUnavailable:
		delay = 100 * time.Millisecond
	default:
		delay = retryBackoff(attempt)
	}
	h.logger.Debug("retrying request", "op", opName, "code", code.String(), "delay", delay)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
