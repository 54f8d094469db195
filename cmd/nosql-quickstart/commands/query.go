package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dittonosql/go-sdk/cmd/nosql-quickstart/cmdutil"
	"github.com/dittonosql/go-sdk/pkg/nosqldb"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// NewQueryCommand builds the "query" subcommand: run a statement and
// render the rows it returns as a table.
func NewQueryCommand() *cobra.Command {
	var tableName string

	cmd := &cobra.Command{
		Use:   "query <statement>",
		Short: "Run a query statement and print the rows it returns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			h, err := cmdutil.GetHandle(ctx)
			if err != nil {
				return err
			}
			defer h.Close()

			if tableName == "" {
				return fmt.Errorf("--table is required")
			}
			return runQueryAndRender(ctx, h, tableName, args[0])
		},
	}

	cmd.Flags().StringVar(&tableName, "table", "", "table the statement reads from (required)")
	return cmd
}

func runQueryAndRender(ctx context.Context, h *nosqldb.Handle, tableName, statement string) error {
	it := h.Query(&nosqldb.QueryRequest{TableName: tableName, Statement: statement})

	var header []string
	var rows [][]string
	for {
		row, ok, err := it.Next(ctx)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		if !ok {
			break
		}
		if header == nil {
			header = row.Keys()
		}
		rows = append(rows, rowToStrings(row))
	}

	if len(rows) == 0 {
		fmt.Println("no rows")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.AppendBulk(rows)
	table.Render()
	return nil
}

// rowToStrings renders row's values in key order for table display.
func rowToStrings(row *types.MapValue) []string {
	keys := row.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		v, _ := row.Get(k)
		out[i] = fieldValueString(v)
	}
	return out
}

func fieldValueString(v types.FieldValue) string {
	switch v.Kind {
	case types.KindInteger:
		n, _ := v.AsInteger()
		return strconv.FormatInt(int64(n), 10)
	case types.KindLong:
		n, _ := v.AsLong()
		return strconv.FormatInt(n, 10)
	case types.KindDouble:
		n, _ := v.AsDouble()
		return strconv.FormatFloat(n, 'g', -1, 64)
	case types.KindNumber:
		n, _ := v.AsNumber()
		return n
	case types.KindString:
		s, _ := v.AsString()
		return s
	case types.KindBoolean:
		b, _ := v.AsBoolean()
		return strconv.FormatBool(b)
	case types.KindBinary:
		b, _ := v.AsBinary()
		return fmt.Sprintf("<%d bytes>", len(b))
	case types.KindTimestamp:
		t, _ := v.AsTimestamp()
		return t.Format("2006-01-02T15:04:05.000Z07:00")
	case types.KindArray:
		a, _ := v.AsArray()
		return fmt.Sprintf("<array of %d>", len(a))
	case types.KindMap:
		m, _ := v.AsMap()
		return fmt.Sprintf("<map of %d>", m.Len())
	case types.KindNull, types.KindJSONNull:
		return "NULL"
	default:
		return ""
	}
}
