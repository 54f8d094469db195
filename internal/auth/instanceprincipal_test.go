package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport redirects every outbound request to target's host,
// regardless of what URL the caller built. This lets the instance
// principal provider's hardcoded metadata and dynamically-built
// federation URLs both land on a single httptest.Server.
type rewriteTransport struct {
	target *url.URL
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func generateLeafCertificate(t *testing.T, tenancyOCID string) (certPEM, keyPEM string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			OrganizationalUnit: []string{"opc-tenant:" + tenancyOCID},
			CommonName:         "ocid1.instance.oc1.iad.test",
		},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	certPEM = string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
	keyPEM = string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
	return certPEM, keyPEM
}

func fakeSecurityToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"exp": expiry.Unix()}
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return signed
}

// newTestProvider starts a fake metadata+federation server, builds a
// provider against it (bypassing the hardcoded instanceMetadataBaseURL
// via a rewriting RoundTripper), and returns it along with a counter of
// how many times the federation endpoint was hit.
func newTestProvider(t *testing.T, tokenExpiry time.Time) (*InstancePrincipalProvider, *int32) {
	t.Helper()
	tenancyOCID := "ocid1.tenancy.oc1..aaaaaaaatest"
	leafCertPEM, leafKeyPEM := generateLeafCertificate(t, tenancyOCID)
	intermediatePEM, _ := generateLeafCertificate(t, tenancyOCID)
	token := fakeSecurityToken(t, tokenExpiry)

	var federationCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/opc/v2/identity/cert.pem", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(leafCertPEM)) })
	mux.HandleFunc("/opc/v2/identity/key.pem", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(leafKeyPEM)) })
	mux.HandleFunc("/opc/v2/identity/intermediate.pem", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(intermediatePEM)) })
	mux.HandleFunc("/opc/v2/instance/canonicalRegionName", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("us-ashburn-1")) })
	mux.HandleFunc("/opc/v2/instance/regionInfo/realmDomainComponent", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("oraclecloud.com")) })
	mux.HandleFunc("/v1/x509", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&federationCalls, 1)
		resp, err := json.Marshal(map[string]string{"token": token})
		require.NoError(t, err)
		_, _ = w.Write(resp)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)

	httpClient := &http.Client{Transport: &rewriteTransport{target: target}}
	p, err := NewInstancePrincipalProvider(t.Context(), httpClient)
	require.NoError(t, err)
	return p, &federationCalls
}

func TestInstancePrincipalProvider_FederatesOnConstruction(t *testing.T) {
	p, calls := newTestProvider(t, time.Now().Add(time.Hour))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Equal(t, "us-ashburn-1", p.RegionID())
	assert.True(t, strings.HasPrefix(p.token, "ST$"))
}

func TestInstancePrincipalProvider_KeyIDAndPrivateKeyReuseCachedToken(t *testing.T) {
	p, calls := newTestProvider(t, time.Now().Add(time.Hour))

	keyID, err := p.KeyID(t.Context())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(keyID, "ST$"))

	key, err := p.PrivateKey(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, key)

	// Still fresh: neither accessor should trigger a second federation.
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestInstancePrincipalProvider_ReFederatesWhenTokenIsNearExpiry(t *testing.T) {
	// Token expires in under tokenRefreshSkew, so the very next access
	// must trigger a re-federation.
	p, calls := newTestProvider(t, time.Now().Add(30*time.Second))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	_, err := p.KeyID(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestInstancePrincipalProvider_ConcurrentRefreshIsSingleFlight(t *testing.T) {
	p, calls := newTestProvider(t, time.Now().Add(30*time.Second))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	const n = 20
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		go func() {
			_, _ = p.KeyID(t.Context())
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}

	// However many goroutines raced the staleness check, singleflight
	// collapses them into exactly one additional federation call.
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestInstancePrincipalProvider_AuthorizationHeaderSignsWithSessionKey(t *testing.T) {
	p, _ := newTestProvider(t, time.Now().Add(time.Hour))
	header, err := p.AuthorizationHeader(t.Context(), []string{"date", "(request-target)"}, "date: x\n(request-target): post /v0/nosql/data")
	require.NoError(t, err)
	assert.Contains(t, header, "algorithm=\"rsa-sha256\"")
	assert.Contains(t, header, `keyId="ST$`)
}

func TestTenancyFromCertificate_MissingOUFails(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	template := &x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "no-tenant-ou"}}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	_, err = tenancyFromCertificate(cert)
	require.Error(t, err)
}

func TestTokenExpiry_UnparseableTokenYieldsZeroTime(t *testing.T) {
	assert.True(t, tokenExpiry("not-a-jwt").IsZero())
}

func TestTokenExpiry_ReadsExpClaim(t *testing.T) {
	want := time.Now().Add(time.Hour).Truncate(time.Second)
	token := fakeSecurityToken(t, want)
	got := tokenExpiry(token)
	assert.WithinDuration(t, want, got, time.Second)
}
