// Package auth implements the pluggable authentication providers the
// public Handle builds against: the capability interface every mode
// (Simple, config-file, instance-principal, resource-principal, on-prem)
// satisfies, and the HTTP request signer shared by all of them (spec.md
// §4.5).
package auth

import (
	"context"
	"crypto/rsa"
)

// Provider is the capability interface a concrete authentication mode
// exposes to the transport layer (spec.md §4.5, "AuthenticationProvider
// capability interface exposing tenancy_id/user_id/fingerprint/
// private_key()/key_id()/region_id()"). AuthorizationHeader returns the
// Authorization header value a request should carry; providers that
// don't sign requests themselves (on-prem bearer token) instead return a
// pre-built header value without invoking the RSA signer.
type Provider interface {
	// KeyID returns the signing key identifier, e.g.
	// "tenancy/user/fingerprint" for OCI-style providers.
	KeyID(ctx context.Context) (string, error)

	// PrivateKey returns the RSA private key used to sign requests.
	PrivateKey(ctx context.Context) (*rsa.PrivateKey, error)

	// RegionID returns the region this provider is scoped to, or ""
	// if the provider is region-agnostic (on-prem).
	RegionID() string

	// AuthorizationHeader builds the full Authorization header value for
	// one outbound request, given the canonical signing string the
	// transport layer has already assembled (spec.md §4.5, "(request-
	// target) pseudo-header, \n-joined signing string").
	AuthorizationHeader(ctx context.Context, headerNames []string, signingString string) (string, error)

	// Close releases any background resources (token refresh goroutines,
	// cached sessions). Providers without background state no-op.
	Close() error
}
