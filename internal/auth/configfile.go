package auth

import (
	"gopkg.in/ini.v1"

	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

// DefaultConfigFilePath is where the OCI CLI and SDKs conventionally store
// user credentials.
const DefaultConfigFilePath = "~/.oci/config"

// DefaultConfigProfile is the INI section read when the caller doesn't
// name one explicitly.
const DefaultConfigProfile = "DEFAULT"

// ConfigFileProvider reads tenancy/user/fingerprint/key_file/region from an
// OCI-style INI config file, the same layout the OCI CLI writes to
// ~/.oci/config. Profiles let one file hold credentials for more than one
// tenancy or region.
type ConfigFileProvider struct {
	*SimpleProvider
}

var _ Provider = (*ConfigFileProvider)(nil)

// NewConfigFileProvider loads profile (or DEFAULT if empty) from path (or
// DefaultConfigFilePath if empty), expanding a leading "~/" in both the
// config path and its key_file entry.
func NewConfigFileProvider(path, profile string) (*ConfigFileProvider, error) {
	if path == "" {
		path = DefaultConfigFilePath
	}
	if profile == "" {
		profile = DefaultConfigProfile
	}

	cfg, err := ini.Load(ExpandHome(path))
	if err != nil {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "config file %q: %v", path, err)
	}
	section, err := cfg.GetSection(profile)
	if err != nil {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "config file %q: profile %q: %v", path, profile, err)
	}

	required := func(key string) (string, error) {
		k := section.Key(key)
		if k.String() == "" {
			return "", nosqlerr.New(nosqlerr.IllegalArgument, "config file %q: profile %q missing required key %q", path, profile, key)
		}
		return k.String(), nil
	}

	tenancyID, err := required("tenancy")
	if err != nil {
		return nil, err
	}
	userID, err := required("user")
	if err != nil {
		return nil, err
	}
	fingerprint, err := required("fingerprint")
	if err != nil {
		return nil, err
	}
	region, err := required("region")
	if err != nil {
		return nil, err
	}
	keyFile, err := required("key_file")
	if err != nil {
		return nil, err
	}
	passphrase := section.Key("pass_phrase").String()

	key, err := LoadPrivateKeyFile(keyFile, passphrase)
	if err != nil {
		return nil, err
	}

	return &ConfigFileProvider{SimpleProvider: NewSimpleProvider(tenancyID, userID, fingerprint, region, key)}, nil
}
