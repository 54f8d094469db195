package transport

import (
	"fmt"
	"strings"

	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
)

// Mode selects the URL shape, whether authentication is required, and the
// default port for a Handle (spec.md §6).
type Mode int

const (
	// ModeCloudsim is the unauthenticated local simulator, used for
	// development against a single-process emulator.
	ModeCloudsim Mode = iota
	// ModeCloud is the production OCI NoSQL Database Cloud Service,
	// authenticated via an internal/auth.Provider.
	ModeCloud
	// ModeOnprem targets an on-premises proxy in front of an on-prem
	// NoSQL Database deployment, authenticated via bearer token.
	ModeOnprem
)

func (m Mode) String() string {
	switch m {
	case ModeCloudsim:
		return "cloudsim"
	case ModeCloud:
		return "cloud"
	case ModeOnprem:
		return "onprem"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DataPath returns the fixed request path for the given protocol major
// version (spec.md §6, "All requests are POST <base>/V<major>/nosql/data").
func DataPath(majorVersion int) string {
	return fmt.Sprintf("/V%d/nosql/data", majorVersion)
}

// cloudRegionDomain maps a short region code to the realm domain
// component its Cloud Service URL is built from. Only the most common
// commercial-realm regions are seeded; an unrecognized code with no
// explicit endpoint override is an IllegalArgument.
var cloudRegionDomain = map[string]string{
	"us-ashburn-1":    "oraclecloud.com",
	"us-phoenix-1":    "oraclecloud.com",
	"uk-london-1":     "oraclecloud.com",
	"eu-frankfurt-1":  "oraclecloud.com",
	"ap-tokyo-1":      "oraclecloud.com",
	"ap-mumbai-1":     "oraclecloud.com",
	"sa-saopaulo-1":   "oraclecloud.com",
	"ca-toronto-1":    "oraclecloud.com",
	"eu-zurich-1":     "oraclecloud.com",
	"ap-singapore-1":  "oraclecloud.com",
	"ap-sydney-1":     "oraclecloud.com",
	"me-jeddah-1":     "oraclecloud.com",
}

// ResolveEndpoint computes the base URL (scheme + host, no trailing
// slash, no path) a Handle sends requests to. endpoint may be a region
// code (Cloud mode only) or a full "host[:port]" / "scheme://host[:port]"
// override, which always takes precedence over region-code mapping
// (spec.md §6, "Cloud endpoints accept either a region code ... or a full
// endpoint URL override").
func ResolveEndpoint(mode Mode, endpoint string) (string, error) {
	if endpoint == "" {
		return "", nosqlerr.New(nosqlerr.IllegalArgument, "transport: endpoint must not be empty")
	}
	if strings.Contains(endpoint, "://") || strings.Contains(endpoint, ".") || strings.Contains(endpoint, ":") {
		return normalizeExplicitEndpoint(mode, endpoint), nil
	}

	switch mode {
	case ModeCloud:
		domain, ok := cloudRegionDomain[endpoint]
		if !ok {
			return "", nosqlerr.New(nosqlerr.IllegalArgument, "transport: unrecognized region code %q; pass a full endpoint URL instead", endpoint)
		}
		return fmt.Sprintf("https://nosql.%s.%s", endpoint, domain), nil
	case ModeCloudsim:
		return fmt.Sprintf("http://%s:8080", endpoint), nil
	case ModeOnprem:
		return fmt.Sprintf("https://%s:443", endpoint), nil
	default:
		return "", nosqlerr.New(nosqlerr.IllegalArgument, "transport: unknown mode %v", mode)
	}
}

func normalizeExplicitEndpoint(mode Mode, endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return strings.TrimSuffix(endpoint, "/")
	}
	scheme := "https"
	if mode == ModeCloudsim {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s", scheme, endpoint)
}
