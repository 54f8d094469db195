package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTarget(t *testing.T) {
	assert.Equal(t, "post /v0/nosql/data", RequestTarget("POST", "/v0/nosql/data"))
	assert.Equal(t, "get /v0/nosql/tables/foo", RequestTarget("GET", "/v0/nosql/tables/foo"))
}

func TestSigningString_OrderAndJoin(t *testing.T) {
	values := map[string]string{
		"date":              "Thu, 05 Mar 2026 12:00:00 GMT",
		"(request-target)":  "post /v0/nosql/data",
		"host":              "nosql.us-ashburn-1.oci.oraclecloud.com",
		"content-type":      "application/octet-stream",
		"content-length":    "128",
	}
	names := []string{"date", "(request-target)", "host", "content-type", "content-length"}
	got := SigningString(names, func(name string) string { return values[name] })

	want := "date: Thu, 05 Mar 2026 12:00:00 GMT\n" +
		"(request-target): post /v0/nosql/data\n" +
		"host: nosql.us-ashburn-1.oci.oraclecloud.com\n" +
		"content-type: application/octet-stream\n" +
		"content-length: 128"
	assert.Equal(t, want, got)
}

func TestSign_DeterministicUnderRSAPKCS1v15(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	// PKCS#1 v1.5 signing has no randomized padding, so the same key and
	// signing string always produce the same signature bytes.
	sigA, err := Sign(key, "date: x\n(request-target): post /v0/nosql/data")
	require.NoError(t, err)
	sigB, err := Sign(key, "date: x\n(request-target): post /v0/nosql/data")
	require.NoError(t, err)
	assert.Equal(t, sigA, sigB)
}

func TestSign_DifferentStringsProduceDifferentSignatures(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	sigA, err := Sign(key, "date: x")
	require.NoError(t, err)
	sigB, err := Sign(key, "date: y")
	require.NoError(t, err)
	assert.NotEqual(t, sigA, sigB)
}

func TestAuthorizationHeaderValue_Format(t *testing.T) {
	got := AuthorizationHeaderValue("tenancy/user/fp", []string{"date", "(request-target)", "host"}, "c2lnbmF0dXJl")
	want := `Signature version="1",keyId="tenancy/user/fp",algorithm="rsa-sha256",headers="date (request-target) host",signature="c2lnbmF0dXJl"`
	assert.Equal(t, want, got)
}

func TestSignRequest_BuildsHeaderFromSigningInputs(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	values := map[string]string{
		"date":             "Thu, 05 Mar 2026 12:00:00 GMT",
		"(request-target)": "post /v0/nosql/data",
	}
	names := []string{"date", "(request-target)"}

	header, err := SignRequest(key, "tenancy/user/fp", names, func(name string) string { return values[name] })
	require.NoError(t, err)
	assert.Contains(t, header, `keyId="tenancy/user/fp"`)
	assert.Contains(t, header, `algorithm="rsa-sha256"`)
	assert.Contains(t, header, `headers="date (request-target)"`)

	// Same inputs, same key, must sign identically (PKCS#1 v1.5 is
	// deterministic).
	header2, err := SignRequest(key, "tenancy/user/fp", names, func(name string) string { return values[name] })
	require.NoError(t, err)
	assert.Equal(t, header, header2)
}
