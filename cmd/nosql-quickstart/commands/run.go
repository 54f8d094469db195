package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/dittonosql/go-sdk/cmd/nosql-quickstart/cmdutil"
	"github.com/dittonosql/go-sdk/pkg/nosqldb"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// NewRunCommand builds the "run" subcommand: an end-to-end walkthrough
// of table creation, writes, reads, and a query against one scratch
// table, mirroring the original SDK's quickstart example.
func NewRunCommand() *cobra.Command {
	var tableName string
	var keepTable bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Create a scratch table, write and read a few rows, then drop it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := cmdutil.GetHandle(ctx)
			if err != nil {
				return err
			}
			defer h.Close()

			return runQuickstart(ctx, h, tableName, keepTable)
		},
	}

	cmd.Flags().StringVar(&tableName, "table", "quickstartUsers", "scratch table name")
	cmd.Flags().BoolVar(&keepTable, "keep", false, "skip the confirmation and table drop at the end")

	return cmd
}

func runQuickstart(ctx context.Context, h *nosqldb.Handle, tableName string, keepTable bool) error {
	fmt.Printf("creating table %q...\n", tableName)
	createStmt := fmt.Sprintf(
		"create table if not exists %s (id integer, name string, created timestamp(3), primary key(id))",
		tableName,
	)
	tableRes, err := h.Table(ctx, (&nosqldb.TableRequest{
		TableName: tableName,
		Statement: createStmt,
	}).WithLimits(types.ProvisionedLimits(1000, 1000, 10)))
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if _, err := tableRes.WaitForCompletion(ctx, 15*time.Second, 500*time.Millisecond); err != nil {
		return fmt.Errorf("wait for table creation: %w", err)
	}

	putRes, err := h.Put(ctx, (&nosqldb.PutRequest{
		TableName: tableName,
		Value:     types.NewMapValue().PutInt("id", 10).PutString("name", "jane"),
	}).WithTTL(types.Hours(2)))
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	if putRes.Version.IsEmpty() {
		return fmt.Errorf("put should have returned a version, but did not")
	}
	fmt.Printf("put id=10 name=jane, version=%x\n", []byte(putRes.Version))

	putRes2, err := h.Put(ctx, (&nosqldb.PutRequest{
		TableName: tableName,
		Value:     types.NewMapValue().PutInt("id", 10).PutString("name", "john"),
	}).IfVersion(putRes.Version).WithTTL(types.Hours(2)))
	if err != nil {
		return fmt.Errorf("conditional put: %w", err)
	}
	fmt.Printf("conditional put success=%v\n", putRes2.Success)

	getRes, err := h.Get(ctx, (&nosqldb.GetRequest{
		TableName: tableName,
		Key:       types.NewMapValue().PutInt("id", 10),
	}).WithConsistency(types.ConsistencyEventual))
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	if getRes.Version.IsEmpty() {
		return fmt.Errorf("get should have returned a version, but did not")
	}
	fmt.Printf("get id=10 -> row=%v version=%x\n", rowToStrings(getRes.Row), []byte(getRes.Version))

	for i := int32(20); i < 30; i++ {
		if _, err := h.Put(ctx, &nosqldb.PutRequest{
			TableName: tableName,
			Value:     types.NewMapValue().PutInt("id", i).PutString("name", "somename"),
		}); err != nil {
			return fmt.Errorf("put id=%d: %w", i, err)
		}
	}

	if err := printAllRows(ctx, h, tableName, fmt.Sprintf("select * from %s order by id", tableName)); err != nil {
		return err
	}

	if _, err := h.Delete(ctx, (&nosqldb.DeleteRequest{
		TableName: tableName,
		Key:       types.NewMapValue().PutInt("id", 10),
	}).IfVersion(getRes.Version)); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if keepTable {
		fmt.Println("--keep set, leaving table in place")
		return nil
	}

	prompt := promptui.Prompt{Label: fmt.Sprintf("Drop table %q", tableName), IsConfirm: true}
	if _, err := prompt.Run(); err != nil {
		fmt.Println("leaving table in place")
		return nil
	}

	dropRes, err := h.Table(ctx, &nosqldb.TableRequest{
		TableName: tableName,
		Statement: fmt.Sprintf("drop table if exists %s", tableName),
	})
	if err != nil {
		return fmt.Errorf("drop table: %w", err)
	}
	if _, err := dropRes.WaitForCompletion(ctx, 15*time.Second, 500*time.Millisecond); err != nil {
		return fmt.Errorf("wait for table drop: %w", err)
	}
	fmt.Println("table dropped")
	return nil
}

func printAllRows(ctx context.Context, h *nosqldb.Handle, tableName, statement string) error {
	it := h.Query(&nosqldb.QueryRequest{TableName: tableName, Statement: statement})
	var rows [][]string
	for {
		row, ok, err := it.Next(ctx)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		if !ok {
			break
		}
		rows = append(rows, rowToStrings(row))
	}
	fmt.Printf("query returned %d rows\n", len(rows))
	for _, r := range rows {
		fmt.Println(r)
	}
	return nil
}
