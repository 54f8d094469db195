package commands

import (
	"fmt"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/dittonosql/go-sdk/cmd/nosql-quickstart/cmdutil"
	"github.com/dittonosql/go-sdk/pkg/nosqldb"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// NewTableCreateCommand builds the "table-create" subcommand: issue a
// DDL statement and wait for the table to become active.
func NewTableCreateCommand() *cobra.Command {
	var tableName string
	var readUnits, writeUnits, storageGB int32
	var dropExisting bool
	var waitTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "table-create <ddl statement>",
		Short: "Create a table and wait for it to become active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := cmdutil.GetHandle(ctx)
			if err != nil {
				return err
			}
			defer h.Close()

			if dropExisting {
				prompt := promptui.Prompt{Label: fmt.Sprintf("Drop existing table %q first", tableName), IsConfirm: true}
				if _, err := prompt.Run(); err != nil {
					return fmt.Errorf("aborted")
				}
				dropRes, err := h.Table(ctx, &nosqldb.TableRequest{
					TableName: tableName,
					Statement: fmt.Sprintf("drop table if exists %s", tableName),
				})
				if err != nil {
					return fmt.Errorf("drop existing table: %w", err)
				}
				if _, err := dropRes.WaitForCompletion(ctx, waitTimeout, 500*time.Millisecond); err != nil {
					return fmt.Errorf("wait for drop: %w", err)
				}
			}

			req := &nosqldb.TableRequest{TableName: tableName, Statement: args[0]}
			if readUnits > 0 || writeUnits > 0 || storageGB > 0 {
				req.WithLimits(types.ProvisionedLimits(readUnits, writeUnits, storageGB))
			}
			res, err := h.Table(ctx, req)
			if err != nil {
				return fmt.Errorf("create table: %w", err)
			}
			final, err := res.WaitForCompletion(ctx, waitTimeout, 500*time.Millisecond)
			if err != nil {
				return fmt.Errorf("wait for table creation: %w", err)
			}
			fmt.Printf("table %q is %s\n", final.TableName, final.State)
			return nil
		},
	}

	cmd.Flags().StringVar(&tableName, "table", "", "table name (required)")
	cmd.Flags().Int32Var(&readUnits, "read-units", 0, "Cloud mode: provisioned read units")
	cmd.Flags().Int32Var(&writeUnits, "write-units", 0, "Cloud mode: provisioned write units")
	cmd.Flags().Int32Var(&storageGB, "storage-gb", 0, "Cloud mode: provisioned storage, in GB")
	cmd.Flags().BoolVar(&dropExisting, "drop-existing", false, "drop the table first, with a confirmation prompt")
	cmd.Flags().DurationVar(&waitTimeout, "wait", 30*time.Second, "how long to wait for the DDL to complete")
	_ = cmd.MarkFlagRequired("table")

	return cmd
}
