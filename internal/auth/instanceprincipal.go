package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

// tokenRefreshSkew is how far ahead of the token's actual expiry the
// provider pre-emptively re-federates, so a request built just before
// expiry doesn't race the server's clock (spec.md §4.5, "cached until
// near expiry and refreshed lazily on next use").
const tokenRefreshSkew = 2 * time.Minute

// instanceMetadataBaseURL is the IMDS v2 endpoint every OCI compute
// instance exposes on its local link.
const instanceMetadataBaseURL = "http://169.254.169.254/opc/v2"

// InstancePrincipalProvider federates the compute instance's identity
// certificate (fetched from instance metadata) into a short-lived security
// token, then signs requests with a session key it generates itself. No
// tenancy/user/fingerprint is supplied by the caller: everything is derived
// from the instance's own leaf certificate.
type InstancePrincipalProvider struct {
	httpClient *http.Client
	refresh    singleflight.Group

	mu         sync.RWMutex
	token      string
	expiry     time.Time
	sessionKey *rsa.PrivateKey
	tenancyID  string
	region     string
}

var _ Provider = (*InstancePrincipalProvider)(nil)

// NewInstancePrincipalProvider federates against the local instance
// metadata service using httpClient (a 5s-timeout client is used if nil).
func NewInstancePrincipalProvider(ctx context.Context, httpClient *http.Client) (*InstancePrincipalProvider, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	p := &InstancePrincipalProvider{httpClient: httpClient}
	if err := p.federate(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *InstancePrincipalProvider) federate(ctx context.Context) error {
	leafCertPEM, err := p.getMetadata(ctx, "/identity/cert.pem")
	if err != nil {
		return err
	}
	leafKeyPEM, err := p.getMetadata(ctx, "/identity/key.pem")
	if err != nil {
		return err
	}
	intermediatePEM, err := p.getMetadata(ctx, "/identity/intermediate.pem")
	if err != nil {
		return err
	}
	region, err := p.getMetadata(ctx, "/instance/canonicalRegionName")
	if err != nil {
		return err
	}
	domain, err := p.getMetadata(ctx, "/instance/regionInfo/realmDomainComponent")
	if err != nil {
		return err
	}

	leafCert, err := parseCertificatePEM(leafCertPEM)
	if err != nil {
		return err
	}
	tenancyID, err := tenancyFromCertificate(leafCert)
	if err != nil {
		return err
	}
	fingerprint := sha256Fingerprint(leafCert.Raw)

	leafKey, err := ParsePrivateKeyPEM([]byte(leafKeyPEM), "")
	if err != nil {
		return err
	}

	sessionKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nosqlerr.New(nosqlerr.IllegalState, "instance principal: generate session key: %v", err)
	}
	sessionPubDER, err := x509.MarshalPKIXPublicKey(&sessionKey.PublicKey)
	if err != nil {
		return nosqlerr.New(nosqlerr.IllegalState, "instance principal: marshal session public key: %v", err)
	}
	sessionPubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: sessionPubDER})

	jwtBody := federationRequestBody(leafCertPEM, string(sessionPubPEM), intermediatePEM)

	keyID := fmt.Sprintf("%s/fed-x509-sha256/%s", tenancyID, fingerprint)
	authURL := fmt.Sprintf("https://auth.%s.%s/v1/x509", strings.ToLower(region), strings.ToLower(domain))
	token, err := requestSecurityToken(ctx, p.httpClient, authURL, jwtBody, leafKey, keyID)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.token = "ST$" + token
	p.expiry = tokenExpiry(token)
	p.sessionKey = sessionKey
	p.tenancyID = tenancyID
	p.region = strings.ToLower(region)
	p.mu.Unlock()
	return nil
}

// tokenExpiry reads the "exp" claim from the security token (itself a
// JWT) so ensureFresh knows when to re-federate. A token this SDK
// cannot parse as a JWT is treated as never needing proactive refresh;
// the executor does not re-federate on a 401 either.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// ensureFresh re-federates if the cached token is within tokenRefreshSkew
// of expiry (or has no recorded expiry and was never federated), using
// singleflight so concurrent callers on the same handle trigger exactly
// one federation round trip (spec.md §4.5, "refresh is single-flight per
// handle").
func (p *InstancePrincipalProvider) ensureFresh(ctx context.Context) error {
	p.mu.RLock()
	stale := p.token == "" || (!p.expiry.IsZero() && time.Now().After(p.expiry.Add(-tokenRefreshSkew)))
	p.mu.RUnlock()
	if !stale {
		return nil
	}
	_, err, _ := p.refresh.Do("federate", func() (any, error) {
		return nil, p.federate(ctx)
	})
	return err
}

func (p *InstancePrincipalProvider) getMetadata(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, instanceMetadataBaseURL+path, nil)
	if err != nil {
		return "", nosqlerr.New(nosqlerr.IllegalState, "instance principal: build metadata request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer Oracle")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", nosqlerr.New(nosqlerr.RequestTimeout, "instance principal: metadata request %s: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nosqlerr.New(nosqlerr.IllegalState, "instance principal: read metadata response %s: %v", path, err)
	}
	if resp.StatusCode >= 400 {
		return "", nosqlerr.New(nosqlerr.IllegalState, "instance principal: metadata %s returned status %d", path, resp.StatusCode)
	}
	return strings.TrimSpace(string(body)), nil
}

func requestSecurityToken(ctx context.Context, client *http.Client, url, body string, signingKey *rsa.PrivateKey, keyID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		return "", nosqlerr.New(nosqlerr.IllegalState, "instance principal: build federation request: %v", err)
	}
	req.Header.Set("date", time.Now().UTC().Format(time.RFC1123))
	req.Header.Set("host", req.URL.Host)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("content-length", fmt.Sprintf("%d", len(body)))
	bodyHash := sha256.Sum256([]byte(body))
	req.Header.Set("x-content-sha256", base64.StdEncoding.EncodeToString(bodyHash[:]))

	headerNames := []string{"date", "(request-target)", "host", "content-type", "content-length", "x-content-sha256"}
	headerValue := func(name string) string {
		if name == "(request-target)" {
			return RequestTarget(http.MethodPost, req.URL.RequestURI())
		}
		return req.Header.Get(name)
	}
	authHeader, err := SignRequest(signingKey, keyID, headerNames, headerValue)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", authHeader)

	resp, err := client.Do(req)
	if err != nil {
		return "", nosqlerr.New(nosqlerr.RequestTimeout, "instance principal: federation request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nosqlerr.New(nosqlerr.IllegalState, "instance principal: read federation response: %v", err)
	}
	if resp.StatusCode >= 400 {
		return "", nosqlerr.New(nosqlerr.RetryAuthentication, "instance principal: auth service returned status %d: %s", resp.StatusCode, respBody)
	}

	var decoded struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", nosqlerr.New(nosqlerr.IllegalState, "instance principal: decode federation response: %v", err)
	}
	return decoded.Token, nil
}

func federationRequestBody(leafCertPEM, sessionPubPEM, intermediatePEM string) string {
	leaf := sanitizeCertificatePEM(leafCertPEM)
	intermediate := sanitizeCertificatePEM(intermediatePEM)
	pub := sanitizeCertificatePEM(sessionPubPEM)
	return fmt.Sprintf(
		`{"certificate":"%s","intermediateCertificates":["%s"],"publicKey":"%s","fingerprintAlgorithm":"SHA256","purpose":"DEFAULT"}`,
		leaf, intermediate, pub,
	)
}

func sanitizeCertificatePEM(s string) string {
	replacer := strings.NewReplacer(
		"-----BEGIN CERTIFICATE-----", "",
		"-----END CERTIFICATE-----", "",
		"-----BEGIN PUBLIC KEY-----", "",
		"-----END PUBLIC KEY-----", "",
		"\n", "",
	)
	return replacer.Replace(s)
}

func parseCertificatePEM(s string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil {
		return nil, nosqlerr.New(nosqlerr.IllegalState, "instance principal: no PEM block in leaf certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, nosqlerr.New(nosqlerr.IllegalState, "instance principal: parse leaf certificate: %v", err)
	}
	return cert, nil
}

// tenancyFromCertificate extracts the "opc-tenant:<ocid>" organizational
// unit the identity service embeds in every instance leaf certificate's
// subject (spec.md §4.5, Open Question: "tenancy is derived from the leaf
// certificate, not supplied by the caller").
func tenancyFromCertificate(cert *x509.Certificate) (string, error) {
	for _, ou := range cert.Subject.OrganizationalUnit {
		if strings.HasPrefix(ou, "opc-tenant:") {
			return strings.TrimPrefix(ou, "opc-tenant:"), nil
		}
	}
	return "", nosqlerr.New(nosqlerr.IllegalState, "instance principal: no opc-tenant OU in certificate subject %v", cert.Subject.OrganizationalUnit)
}

func sha256Fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":")
}

func (p *InstancePrincipalProvider) KeyID(ctx context.Context) (string, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return "", err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token, nil
}

func (p *InstancePrincipalProvider) PrivateKey(ctx context.Context) (*rsa.PrivateKey, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sessionKey, nil
}

func (p *InstancePrincipalProvider) RegionID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.region
}

func (p *InstancePrincipalProvider) AuthorizationHeader(ctx context.Context, headerNames []string, signingString string) (string, error) {
	if err := p.ensureFresh(ctx); err != nil {
		return "", err
	}
	p.mu.RLock()
	key, keyID := p.sessionKey, p.token
	p.mu.RUnlock()

	sig, err := Sign(key, signingString)
	if err != nil {
		return "", err
	}
	return AuthorizationHeaderValue(keyID, headerNames, sig), nil
}

func (p *InstancePrincipalProvider) Close() error { return nil }
