package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
)

// SimpleProvider carries OCI user credentials supplied directly by the
// caller rather than read from a config file or instance metadata —
// "the provider to use when credentials aren't read from a config file".
type SimpleProvider struct {
	tenancyID   string
	userID      string
	fingerprint string
	regionID    string
	privateKey  *rsa.PrivateKey
}

var _ Provider = (*SimpleProvider)(nil)

// NewSimpleProvider builds a SimpleProvider from an already-parsed private
// key. Use LoadPrivateKeyFile or ParsePrivateKeyPEM to obtain one.
func NewSimpleProvider(tenancyID, userID, fingerprint, regionID string, privateKey *rsa.PrivateKey) *SimpleProvider {
	return &SimpleProvider{
		tenancyID:   tenancyID,
		userID:      userID,
		fingerprint: fingerprint,
		regionID:    regionID,
		privateKey:  privateKey,
	}
}

func (p *SimpleProvider) KeyID(ctx context.Context) (string, error) {
	return fmt.Sprintf("%s/%s/%s", p.tenancyID, p.userID, p.fingerprint), nil
}

func (p *SimpleProvider) PrivateKey(ctx context.Context) (*rsa.PrivateKey, error) {
	return p.privateKey, nil
}

func (p *SimpleProvider) RegionID() string { return p.regionID }

func (p *SimpleProvider) AuthorizationHeader(ctx context.Context, headerNames []string, signingString string) (string, error) {
	keyID, err := p.KeyID(ctx)
	if err != nil {
		return "", err
	}
	sig, err := Sign(p.privateKey, signingString)
	if err != nil {
		return "", err
	}
	return AuthorizationHeaderValue(keyID, headerNames, sig), nil
}

func (p *SimpleProvider) Close() error { return nil }
