package nosqldb

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dittonosql/go-sdk/internal/auth"
	"github.com/dittonosql/go-sdk/internal/logging"
	"github.com/dittonosql/go-sdk/internal/transport"
	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

// DefaultTimeout is the handle-wide request timeout applied when no
// per-request or builder timeout overrides it (the original's quickstart
// comment: "default is 30 seconds").
const DefaultTimeout = 30 * time.Second

// Builder assembles a Handle. Calls are applied in the order made, so a
// later call overrides an earlier one — including values pulled in by
// FromEnvironment, which is why the original's quickstart calls it last
// among the methods it wants to let the environment override (spec.md
// §6, "Later builder calls override earlier ones, including environment
// values").
type Builder struct {
	endpoint   string
	mode       transport.Mode
	region     string
	timeout    time.Duration
	logger     *slog.Logger
	httpClient *http.Client
	provider   auth.Provider
	readLimit  RateLimiter
	writeLimit RateLimiter

	onpremUserPassFile string
	onpremCertFile     string

	errs []error
}

// NewBuilder starts a Builder with only the timeout set, to
// DefaultTimeout; Endpoint and Mode (or
// an equivalent FromEnvironment call) are required before Build.
func NewBuilder() *Builder {
	return &Builder{timeout: DefaultTimeout}
}

// Endpoint sets the target endpoint: a bare region code (Cloud mode
// only), or a full "host[:port]"/"scheme://host[:port]" override.
func (b *Builder) Endpoint(endpoint string) *Builder {
	b.endpoint = endpoint
	return b
}

// Mode selects Cloudsim, Cloud, or Onprem (spec.md §6).
func (b *Builder) Mode(mode transport.Mode) *Builder {
	b.mode = mode
	return b
}

// Region sets the Cloud-mode region code used when Endpoint is not a
// full URL override.
func (b *Builder) Region(region string) *Builder {
	b.region = region
	return b
}

// Timeout sets the handle-wide default request timeout.
func (b *Builder) Timeout(d time.Duration) *Builder {
	b.timeout = d
	return b
}

// Logger sets the structured logger the handle and executor write to;
// defaults to logging.Default() (text, INFO, stderr) if never called.
func (b *Builder) Logger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// HTTPClient overrides the *http.Client the transport sends through.
func (b *Builder) HTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// Auth sets the authentication provider directly, for callers who built
// one themselves (e.g. NewSimpleProvider) rather than going through one
// of the Cloud*/Onprem* convenience methods below.
func (b *Builder) Auth(provider auth.Provider) *Builder {
	b.provider = provider
	return b
}

// CloudAuthFromFile configures a config-file (OCI ini) auth provider.
func (b *Builder) CloudAuthFromFile(path, profile string) *Builder {
	p, err := auth.NewConfigFileProvider(path, profile)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.provider = p
	if b.region == "" {
		b.region = p.RegionID()
	}
	return b
}

// CloudAuthFromInstance configures an instance-principal provider,
// federating against the local IMDS v2 metadata service.
func (b *Builder) CloudAuthFromInstance(ctx context.Context) *Builder {
	p, err := auth.NewInstancePrincipalProvider(ctx, b.httpClient)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.provider = p
	if b.region == "" {
		b.region = p.RegionID()
	}
	return b
}

// CloudAuthFromResource configures a resource-principal provider from a
// pre-issued RPST and session key, typically read from the standard
// OCI_RESOURCE_PRINCIPAL_* environment variables by the caller.
func (b *Builder) CloudAuthFromResource(provider *auth.ResourcePrincipalProvider) *Builder {
	b.provider = provider
	if b.region == "" {
		b.region = provider.RegionID()
	}
	return b
}

// OnpremAuthFromFile registers a credentials or certificate file for
// Onprem mode; called twice (once per kind), mirroring the original's
// two `.onprem_auth_from_file(...)` calls distinguished by file content.
// A file containing "username\npassword" is treated as login
// credentials; anything that parses as a PEM certificate is treated as
// a TLS trust anchor.
func (b *Builder) OnpremAuthFromFile(path string) *Builder {
	data, err := os.ReadFile(auth.ExpandHome(path))
	if err != nil {
		b.errs = append(b.errs, nosqlerr.New(nosqlerr.IllegalArgument, "onprem auth file %q: %v", path, err))
		return b
	}
	if strings.Contains(string(data), "-----BEGIN CERTIFICATE-----") {
		b.onpremCertFile = path
	} else {
		b.onpremUserPassFile = path
	}
	return b
}

// RateLimiter installs client-side read and write rate limiters; either
// may be nil to leave that direction unthrottled.
func (b *Builder) RateLimiter(readLimiter, writeLimiter RateLimiter) *Builder {
	b.readLimit = readLimiter
	b.writeLimit = writeLimiter
	return b
}

// FromEnvironment reads the nine recognized environment variables
// (spec.md §6) and applies each one present, overriding whatever the
// builder already held — matching the original's "later calls override
// earlier ones" contract and the reason the original's quickstart places
// this call after its commented-out manual examples. Uses os.LookupEnv
// directly: a fixed nine-variable read does not earn a config library
// (SPEC_FULL.md §A.3).
func (b *Builder) FromEnvironment() *Builder {
	if v, ok := os.LookupEnv("NOSQL_ENDPOINT"); ok && v != "" {
		b.endpoint = v
	}
	if v, ok := os.LookupEnv("NOSQL_MODE"); ok && v != "" {
		mode, err := parseMode(v)
		if err != nil {
			b.errs = append(b.errs, err)
		} else {
			b.mode = mode
		}
	}
	if v, ok := os.LookupEnv("NOSQL_REGION"); ok && v != "" {
		b.region = v
	}
	if v, ok := os.LookupEnv("NOSQL_TIMEOUT_MS"); ok && v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			b.errs = append(b.errs, nosqlerr.New(nosqlerr.IllegalArgument, "NOSQL_TIMEOUT_MS: %v", err))
		} else {
			b.timeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v, ok := os.LookupEnv("NOSQL_USER_PASS_FILE"); ok && v != "" {
		b.onpremUserPassFile = v
	}
	if v, ok := os.LookupEnv("NOSQL_CERT_FILE"); ok && v != "" {
		b.onpremCertFile = v
	}

	authType, hasAuthType := os.LookupEnv("NOSQL_AUTH_TYPE")
	configFile, hasConfigFile := os.LookupEnv("NOSQL_CONFIG_FILE")
	profile := os.Getenv("NOSQL_PROFILE")

	switch {
	case hasAuthType && authType == "instance-principal":
		b.CloudAuthFromInstance(context.Background())
	case hasAuthType && authType == "resource-principal":
		b.errs = append(b.errs, nosqlerr.New(nosqlerr.IllegalArgument, "NOSQL_AUTH_TYPE=resource-principal requires Builder.CloudAuthFromResource; it cannot be constructed from environment alone"))
	case hasAuthType && authType == "onprem":
		// onprem credentials are picked up from NOSQL_USER_PASS_FILE/
		// NOSQL_CERT_FILE above and applied in Build, once the endpoint
		// is known.
	case hasConfigFile || (hasAuthType && authType == "config-file"):
		path := configFile
		if path == "" {
			path = auth.DefaultConfigFilePath
		}
		b.CloudAuthFromFile(path, profile)
	}
	return b
}

func parseMode(s string) (transport.Mode, error) {
	switch strings.ToLower(s) {
	case "cloudsim":
		return transport.ModeCloudsim, nil
	case "cloud":
		return transport.ModeCloud, nil
	case "onprem":
		return transport.ModeOnprem, nil
	default:
		return 0, nosqlerr.New(nosqlerr.IllegalArgument, "NOSQL_MODE: unrecognized mode %q", s)
	}
}

// Build validates the accumulated configuration and constructs a Handle.
func (b *Builder) Build(ctx context.Context) (*Handle, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if b.endpoint == "" && b.mode != transport.ModeCloud {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "nosqldb: Endpoint is required")
	}

	logger := b.logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := b.httpClient
	if b.mode == transport.ModeOnprem && b.onpremCertFile != "" {
		client, err := onpremHTTPClient(b.onpremCertFile, httpClient)
		if err != nil {
			return nil, err
		}
		httpClient = client
	}

	provider := b.provider
	if provider == nil && b.mode == transport.ModeOnprem {
		if b.onpremUserPassFile == "" {
			return nil, nosqlerr.New(nosqlerr.IllegalArgument, "nosqldb: Onprem mode requires OnpremAuthFromFile or NOSQL_USER_PASS_FILE")
		}
		username, password, err := readUserPassFile(b.onpremUserPassFile)
		if err != nil {
			return nil, err
		}
		baseURL, err := transport.ResolveEndpoint(b.mode, b.endpoint)
		if err != nil {
			return nil, err
		}
		provider = auth.NewOnPremProvider(httpClient, baseURL, username, password)
	}
	if provider == nil && b.mode == transport.ModeCloud {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "nosqldb: Cloud mode requires an authentication provider (Auth/CloudAuthFromFile/CloudAuthFromInstance/CloudAuthFromResource)")
	}

	endpoint := b.endpoint
	if endpoint == "" {
		endpoint = b.region
	}
	baseURL, err := transport.ResolveEndpoint(b.mode, endpoint)
	if err != nil {
		return nil, err
	}

	tr := transport.New(httpClient, baseURL, provider, nosqlerr.UserAgent)

	h := &Handle{
		transport:  tr,
		provider:   provider,
		logger:     logger,
		timeout:    b.timeout,
		version:    maxProtocolVersion(),
		readLimit:  b.readLimit,
		writeLimit: b.writeLimit,
	}
	h.metrics = newMetrics()
	logger.Info("nosql handle created", "mode", b.mode.String(), "endpoint", baseURL)
	return h, nil
}

func readUserPassFile(path string) (username, password string, err error) {
	data, readErr := os.ReadFile(auth.ExpandHome(path))
	if readErr != nil {
		return "", "", nosqlerr.New(nosqlerr.IllegalArgument, "onprem user/pass file %q: %v", path, readErr)
	}
	lines := strings.SplitN(strings.TrimSpace(string(data)), "\n", 2)
	if len(lines) != 2 {
		return "", "", nosqlerr.New(nosqlerr.IllegalArgument, "onprem user/pass file %q: expected two lines, username then password", path)
	}
	return strings.TrimSpace(lines[0]), strings.TrimSpace(lines[1]), nil
}

func onpremHTTPClient(certFile string, base *http.Client) (*http.Client, error) {
	data, err := os.ReadFile(auth.ExpandHome(certFile))
	if err != nil {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "onprem cert file %q: %v", certFile, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, nosqlerr.New(nosqlerr.IllegalArgument, "onprem cert file %q: no certificates found", certFile)
	}
	client := &http.Client{}
	if base != nil {
		*client = *base
	}
	rt, _ := client.Transport.(*http.Transport)
	if rt == nil {
		rt = &http.Transport{}
	} else {
		rt = rt.Clone()
	}
	rt.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	client.Transport = rt
	return client, nil
}

