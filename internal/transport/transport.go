// Package transport is the thin HTTP layer the executor (pkg/nosqldb)
// sends encoded frames through: it signs the request via an
// internal/auth.Provider, applies the effective per-request timeout, and
// translates transport-level failures into the SDK's error taxonomy
// (spec.md §4.6).
package transport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dittonosql/go-sdk/internal/auth"
	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

// contentType is fixed for every data-path request; the signer defaults
// to application/json for generic OCI services, but this SDK always
// carries a binary frame (spec.md §6, "content-type
// application/octet-stream; the auth signer defaults to application/json
// but the request-level transport overrides it").
const contentType = "application/octet-stream"

// Transport sends pre-encoded frames to a single base URL over HTTP,
// signing each one with the configured auth.Provider.
type Transport struct {
	httpClient *http.Client
	baseURL    string
	provider   auth.Provider
	userAgent  string
}

// New builds a Transport against baseURL (already mode/region-resolved by
// the caller — see ResolveEndpoint) using httpClient, or a fresh
// *http.Client with no default timeout if nil (the per-request deadline
// is enforced via context instead, so a client-wide Timeout would double
// up with it).
func New(httpClient *http.Client, baseURL string, provider auth.Provider, userAgent string) *Transport {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Transport{httpClient: httpClient, baseURL: baseURL, provider: provider, userAgent: userAgent}
}

// Response is a successfully-received HTTP response: status code and
// body, left undecoded since opcode-specific decoding happens in
// internal/wire. RequestID is the client-generated correlation id sent
// with the request, echoed back so callers can tie a log line or a
// support ticket to one specific attempt.
type Response struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

// Send POSTs body to path under the transport's base URL, signing per
// internal/auth's OCI-style scheme, and enforces the deadline already set
// on ctx (the caller — the executor — computes
// min(request.timeout, handle.default_timeout, remaining_budget) before
// calling Send; Send itself applies no additional timeout logic).
func (t *Transport) Send(ctx context.Context, path string, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "transport: build request: %v", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Length", fmt.Sprintf("%d", len(body)))
	req.Header.Set("Host", req.URL.Host)
	req.Header.Set("Date", time.Now().UTC().Format(http.TimeFormat))
	req.Header.Set("opc-client-request-id", requestID)
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	bodyHash := sha256.Sum256(body)
	req.Header.Set("x-content-sha256", base64.StdEncoding.EncodeToString(bodyHash[:]))

	if t.provider != nil {
		headerNames := []string{"date", "(request-target)", "host", "content-type", "content-length", "x-content-sha256"}
		headerValue := func(name string) string {
			if name == "(request-target)" {
				return auth.RequestTarget(http.MethodPost, req.URL.RequestURI())
			}
			return req.Header.Get(name)
		}
		signingString := auth.SigningString(headerNames, headerValue)
		authHeader, err := t.provider.AuthorizationHeader(ctx, headerNames, signingString)
		if err != nil {
			return nil, err
		}
		if authHeader != "" {
			req.Header.Set("Authorization", authHeader)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, translateSendError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, translateSendError(ctx, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: respBody, RequestID: requestID}, nil
}

// translateSendError maps a transport-level failure to the SDK's error
// taxonomy (spec.md §4.6, §7): a deadline that elapsed becomes
// RequestTimeout, anything else becomes ServerError.
func translateSendError(ctx context.Context, err error) *nosqlerr.Error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return nosqlerr.New(nosqlerr.RequestTimeout, "transport: request deadline exceeded: %v", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return nosqlerr.New(nosqlerr.RequestTimeout, "transport: network timeout: %v", err)
	}
	return nosqlerr.New(nosqlerr.ServerError, "transport: %v", err)
}

// EffectiveTimeout computes the per-request timeout the executor applies
// before each attempt: min(request.timeout, handle.default_timeout,
// remaining_budget) (spec.md §4.6). A zero duration means "no limit from
// that source" and is ignored when present alongside a positive one.
func EffectiveTimeout(requestTimeout, defaultTimeout, remainingBudget time.Duration) time.Duration {
	result := time.Duration(0)
	for _, d := range []time.Duration{requestTimeout, defaultTimeout, remainingBudget} {
		if d <= 0 {
			continue
		}
		if result == 0 || d < result {
			result = d
		}
	}
	return result
}
