package auth

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

// ResourcePrincipalProvider signs requests using a pre-issued resource
// principal session token (RPST) and its matching session private key,
// e.g. the credentials OCI Functions injects into a function's
// environment. Unlike InstancePrincipalProvider it never talks to the
// metadata service itself: the token and key are handed in by the caller
// (spec.md §4.5).
type ResourcePrincipalProvider struct {
	token      string
	sessionKey *rsa.PrivateKey
	tenancyID  string
	region     string
}

var _ Provider = (*ResourcePrincipalProvider)(nil)

// NewResourcePrincipalProvider validates and wraps a resource principal
// session token and its session key.
func NewResourcePrincipalProvider(rpst string, sessionKey *rsa.PrivateKey, tenancyID, region string) (*ResourcePrincipalProvider, error) {
	if region == "" {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "resource principal: region cannot be empty")
	}
	if tenancyID == "" {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "resource principal: tenancy id cannot be empty")
	}
	if rpst == "" {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "resource principal: token cannot be empty")
	}
	return &ResourcePrincipalProvider{
		token:      rpst,
		sessionKey: sessionKey,
		tenancyID:  tenancyID,
		region:     region,
	}, nil
}

func (p *ResourcePrincipalProvider) KeyID(ctx context.Context) (string, error) {
	return fmt.Sprintf("ST$%s", p.token), nil
}

func (p *ResourcePrincipalProvider) PrivateKey(ctx context.Context) (*rsa.PrivateKey, error) {
	return p.sessionKey, nil
}

func (p *ResourcePrincipalProvider) RegionID() string { return p.region }

func (p *ResourcePrincipalProvider) AuthorizationHeader(ctx context.Context, headerNames []string, signingString string) (string, error) {
	keyID, _ := p.KeyID(ctx)
	sig, err := Sign(p.sessionKey, signingString)
	if err != nil {
		return "", err
	}
	return AuthorizationHeaderValue(keyID, headerNames, sig), nil
}

func (p *ResourcePrincipalProvider) Close() error { return nil }
