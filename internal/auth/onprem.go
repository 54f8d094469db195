package auth

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

// OnPremProvider authenticates against an on-premises proxy's /login
// endpoint and attaches the bearer token it receives to every request
// instead of signing with an RSA key. It re-logs in automatically once the
// cached token's JWT expiry claim has passed, and calls /logout on Close
// so the proxy can revoke the session immediately rather than waiting out
// the token's natural expiry.
type OnPremProvider struct {
	httpClient *http.Client
	loginURL   string
	logoutURL  string
	username   string
	password   string

	mu    sync.Mutex
	token string
}

var _ Provider = (*OnPremProvider)(nil)

// NewOnPremProvider does not log in eagerly; the first AuthorizationHeader
// call triggers /login.
func NewOnPremProvider(httpClient *http.Client, baseURL, username, password string) *OnPremProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OnPremProvider{
		httpClient: httpClient,
		loginURL:   baseURL + "/login",
		logoutURL:  baseURL + "/logout",
		username:   username,
		password:   password,
	}
}

// KeyID is unused by on-prem auth; the bearer token carries identity.
func (p *OnPremProvider) KeyID(ctx context.Context) (string, error) { return "", nil }

// PrivateKey is unused by on-prem auth; requests aren't RSA-signed.
func (p *OnPremProvider) PrivateKey(ctx context.Context) (*rsa.PrivateKey, error) { return nil, nil }

// RegionID is empty: on-prem deployments aren't region-scoped.
func (p *OnPremProvider) RegionID() string { return "" }

// AuthorizationHeader ignores headerNames/signingString (on-prem auth
// doesn't sign requests) and returns "Bearer <token>", logging in or
// refreshing first if the cached token is missing or expired.
func (p *OnPremProvider) AuthorizationHeader(ctx context.Context, headerNames []string, signingString string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token == "" || tokenExpired(p.token) {
		token, err := p.login(ctx)
		if err != nil {
			return "", err
		}
		p.token = token
	}
	return "Bearer " + p.token, nil
}

// Reauthenticate forces a fresh /login call and replaces the cached
// token. Nothing in the SDK calls it: the transport and the executor
// return an InvalidAuthorization response to the caller unchanged.
func (p *OnPremProvider) Reauthenticate(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	token, err := p.login(ctx)
	if err != nil {
		return err
	}
	p.token = token
	return nil
}

func (p *OnPremProvider) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{p.username, p.password})
	if err != nil {
		return "", nosqlerr.New(nosqlerr.IllegalState, "on-prem: marshal login request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.loginURL, bytes.NewReader(body))
	if err != nil {
		return "", nosqlerr.New(nosqlerr.IllegalState, "on-prem: build login request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", nosqlerr.New(nosqlerr.RequestTimeout, "on-prem: login request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nosqlerr.New(nosqlerr.IllegalState, "on-prem: read login response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", nosqlerr.New(nosqlerr.InvalidAuthorization, "on-prem: login returned status %d: %s", resp.StatusCode, respBody)
	}

	var decoded struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", nosqlerr.New(nosqlerr.IllegalState, "on-prem: decode login response: %v", err)
	}
	if decoded.Token == "" {
		return "", nosqlerr.New(nosqlerr.InvalidAuthorization, "on-prem: login response carried no token")
	}
	return decoded.Token, nil
}

// Close logs the current session out, if one is active.
func (p *OnPremProvider) Close() error {
	p.mu.Lock()
	token := p.token
	p.token = ""
	p.mu.Unlock()
	if token == "" {
		return nil
	}

	req, err := http.NewRequest(http.MethodPost, p.logoutURL, nil)
	if err != nil {
		return nosqlerr.New(nosqlerr.IllegalState, "on-prem: build logout request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nosqlerr.New(nosqlerr.RequestTimeout, "on-prem: logout request: %v", err)
	}
	return resp.Body.Close()
}

// tokenExpired parses the token as a JWT and reports whether its "exp"
// claim has passed. A token the on-prem proxy didn't issue as a JWT (or
// one with no exp claim) is treated as never expiring; such a token is
// replaced only by an explicit Reauthenticate call.
func tokenExpired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Now().After(exp.Time)
}
