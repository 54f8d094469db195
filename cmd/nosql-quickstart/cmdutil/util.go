// Package cmdutil provides shared utilities for nosql-quickstart commands.
package cmdutil

import (
	"context"
	"fmt"
	"time"

	"github.com/dittonosql/go-sdk/internal/transport"
	"github.com/dittonosql/go-sdk/pkg/nosqldb"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the values of the root command's persistent flags.
type GlobalFlags struct {
	Endpoint   string
	Mode       string
	Region     string
	ConfigFile string
	Profile    string
	Timeout    time.Duration
}

// GetHandle builds a Handle from the global flags, falling back to
// FromEnvironment for anything a flag left unset.
func GetHandle(ctx context.Context) (*nosqldb.Handle, error) {
	b := nosqldb.NewBuilder().FromEnvironment()

	if Flags.Endpoint != "" {
		b.Endpoint(Flags.Endpoint)
	}
	if Flags.Region != "" {
		b.Region(Flags.Region)
	}
	if Flags.Timeout > 0 {
		b.Timeout(Flags.Timeout)
	}
	if Flags.Mode != "" {
		mode, err := parseMode(Flags.Mode)
		if err != nil {
			return nil, err
		}
		b.Mode(mode)
	}
	if Flags.ConfigFile != "" || Flags.Profile != "" {
		b.CloudAuthFromFile(Flags.ConfigFile, Flags.Profile)
	}

	h, err := b.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build handle: %w", err)
	}
	return h, nil
}

func parseMode(s string) (transport.Mode, error) {
	switch s {
	case "cloudsim":
		return transport.ModeCloudsim, nil
	case "cloud":
		return transport.ModeCloud, nil
	case "onprem":
		return transport.ModeOnprem, nil
	default:
		return 0, fmt.Errorf("unrecognized --mode %q (want cloudsim, cloud, or onprem)", s)
	}
}
