package nosqldb

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dittonosql/go-sdk/internal/auth"
	"github.com/dittonosql/go-sdk/internal/transport"
)

func TestBuilder_Build_CloudsimNeedsNoAuth(t *testing.T) {
	h, err := NewBuilder().Mode(transport.ModeCloudsim).Endpoint("localhost").Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, DefaultTimeout, h.timeout)
}

func TestBuilder_Build_CloudsimRequiresEndpoint(t *testing.T) {
	_, err := NewBuilder().Mode(transport.ModeCloudsim).Build(context.Background())
	require.Error(t, err)
}

func TestBuilder_Build_CloudModeRequiresProvider(t *testing.T) {
	_, err := NewBuilder().Mode(transport.ModeCloud).Region("us-ashburn-1").Build(context.Background())
	require.Error(t, err)
}

func TestBuilder_Build_CloudModeWithAuthSucceeds(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	provider := auth.NewSimpleProvider("t", "u", "fp", "us-ashburn-1", key)

	h, err := NewBuilder().Mode(transport.ModeCloud).Region("us-ashburn-1").Auth(provider).Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, h)
}

func TestBuilder_Build_OnpremWithoutCredentialsFails(t *testing.T) {
	_, err := NewBuilder().Mode(transport.ModeOnprem).Endpoint("proxy.internal").Build(context.Background())
	require.Error(t, err)
}

func TestBuilder_Build_OnpremReadsUserPassFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "creds.txt")
	require.NoError(t, os.WriteFile(path, []byte("alice\nsecret\n"), 0o600))

	h, err := NewBuilder().Mode(transport.ModeOnprem).Endpoint("proxy.internal").OnpremAuthFromFile(path).Build(context.Background())
	require.NoError(t, err)
	require.NotNil(t, h)
}

func TestBuilder_OnpremAuthFromFile_MissingFileRecordsError(t *testing.T) {
	_, err := NewBuilder().Mode(transport.ModeOnprem).Endpoint("proxy.internal").OnpremAuthFromFile("/no/such/file").Build(context.Background())
	require.Error(t, err)
}

func TestBuilder_FromEnvironment_OverridesDefaults(t *testing.T) {
	t.Setenv("NOSQL_ENDPOINT", "us-ashburn-1")
	t.Setenv("NOSQL_MODE", "cloud")
	t.Setenv("NOSQL_REGION", "us-phoenix-1")
	t.Setenv("NOSQL_TIMEOUT_MS", "5000")

	b := NewBuilder().FromEnvironment()
	assert.Equal(t, "us-ashburn-1", b.endpoint)
	assert.Equal(t, transport.ModeCloud, b.mode)
	assert.Equal(t, "us-phoenix-1", b.region)
	assert.Equal(t, 5*time.Second, b.timeout)
}

func TestBuilder_FromEnvironment_LaterCallOverridesEnvironment(t *testing.T) {
	t.Setenv("NOSQL_ENDPOINT", "us-ashburn-1")

	b := NewBuilder().FromEnvironment().Endpoint("us-phoenix-1")
	assert.Equal(t, "us-phoenix-1", b.endpoint)
}

func TestBuilder_FromEnvironment_InvalidModeRecordsError(t *testing.T) {
	t.Setenv("NOSQL_MODE", "not-a-real-mode")
	b := NewBuilder().FromEnvironment()
	require.Len(t, b.errs, 1)
}

func TestBuilder_FromEnvironment_InvalidTimeoutRecordsError(t *testing.T) {
	t.Setenv("NOSQL_TIMEOUT_MS", "not-a-number")
	b := NewBuilder().FromEnvironment()
	require.Len(t, b.errs, 1)
}

func TestBuilder_FromEnvironment_ConfigFileAuthTypeUsesDefaultPath(t *testing.T) {
	t.Setenv("NOSQL_AUTH_TYPE", "config-file")
	t.Setenv("NOSQL_CONFIG_FILE", "/no/such/oci/config")
	b := NewBuilder().FromEnvironment()
	// The config file doesn't exist, so CloudAuthFromFile records an
	// error rather than leaving the provider unset silently.
	require.Len(t, b.errs, 1)
}

func TestBuilder_Errors_ShortCircuitBuild(t *testing.T) {
	b := NewBuilder().Mode(transport.ModeOnprem).OnpremAuthFromFile("/no/such/file")
	_, err := b.Build(context.Background())
	require.Error(t, err)
}
