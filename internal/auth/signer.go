package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

// RequestTarget builds the `(request-target)` pseudo-header value: the
// lower-cased method, a space, then the path (spec.md §4.5).
func RequestTarget(method, path string) string {
	return fmt.Sprintf("%s %s", strings.ToLower(method), path)
}

// SigningString builds one "name: value" line per entry of headerNames,
// in that order, and joins them with \n; headerValue supplies every
// value, the `(request-target)` pseudo-header's included (spec.md §4.5:
// "`\n`-joined signing string").
func SigningString(headerNames []string, headerValue func(name string) string) string {
	lines := make([]string, len(headerNames))
	for i, name := range headerNames {
		lines[i] = fmt.Sprintf("%s: %s", name, headerValue(name))
	}
	return strings.Join(lines, "\n")
}

// Sign produces the base64-encoded PKCS#1 v1.5 RSA-SHA256 signature over
// signingString, per spec.md §4.5.
func Sign(key *rsa.PrivateKey, signingString string) (string, error) {
	digest := sha256.Sum256([]byte(signingString))
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", nosqlerr.New(nosqlerr.IllegalState, "sign request: %v", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// AuthorizationHeaderValue builds the full header value:
//
//	Signature version="1",keyId="...",algorithm="rsa-sha256",headers="...",signature="..."
//
// (spec.md §4.5).
func AuthorizationHeaderValue(keyID string, headerNames []string, signature string) string {
	return fmt.Sprintf(
		`Signature version="1",keyId="%s",algorithm="rsa-sha256",headers="%s",signature="%s"`,
		keyID, strings.Join(headerNames, " "), signature,
	)
}

// SignRequest is the convenience entry point OCI-style providers use:
// build the signing string, sign it, and format the Authorization header
// value in one call.
func SignRequest(key *rsa.PrivateKey, keyID string, headerNames []string, headerValue func(name string) string) (string, error) {
	signingString := SigningString(headerNames, headerValue)
	sig, err := Sign(key, signingString)
	if err != nil {
		return "", err
	}
	return AuthorizationHeaderValue(keyID, headerNames, sig), nil
}
