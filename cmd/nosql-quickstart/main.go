// Command nosql-quickstart is a small example program built against
// pkg/nosqldb: create a table, write and read a row, run a query, and
// tear the table back down.
package main

import (
	"fmt"
	"os"

	"github.com/dittonosql/go-sdk/cmd/nosql-quickstart/cmdutil"
	"github.com/dittonosql/go-sdk/cmd/nosql-quickstart/commands"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "nosql-quickstart",
		Short:         "Example client for the NoSQL database Go SDK",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cmdutil.Flags.Endpoint, "endpoint", "", "target endpoint (host[:port], or a bare Cloud region code)")
	flags.StringVar(&cmdutil.Flags.Mode, "mode", "", "cloudsim, cloud, or onprem (defaults to NOSQL_MODE)")
	flags.StringVar(&cmdutil.Flags.Region, "region", "", "Cloud region code")
	flags.StringVar(&cmdutil.Flags.ConfigFile, "config-file", "", "OCI-style config file for Cloud auth (defaults to ~/.oci/config)")
	flags.StringVar(&cmdutil.Flags.Profile, "profile", "", "config file profile name")
	flags.DurationVar(&cmdutil.Flags.Timeout, "timeout", 0, "default per-request timeout")

	root.AddCommand(
		commands.NewRunCommand(),
		commands.NewTableCreateCommand(),
		commands.NewQueryCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
