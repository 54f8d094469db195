package query

import (
	"context"

	"github.com/dittonosql/go-sdk/internal/query/plan"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// nextSFW drives the child (the FROM source) row by row, evaluates the
// WHERE expression fresh against each row, skips rows it rejects, and
// projects the SELECT list into a fresh Map in column-declaration order
// (spec §4.8, "SFW" = Select-From-Where).
func (d *Driver) nextSFW(ctx context.Context, it *plan.Iterator) (bool, error) {
	child := it.Children[0]
	for {
		advanced, err := d.next(ctx, child)
		if err != nil {
			return false, err
		}
		if !advanced {
			return false, nil
		}

		if it.WhereExpr != nil {
			whereAdvanced, err := d.next(ctx, it.WhereExpr)
			if err != nil {
				return false, err
			}
			if !whereAdvanced || !isTruthy(d.regs[it.WhereExpr.ResultReg]) {
				continue
			}
		}

		out := types.NewMapValue()
		for _, proj := range it.ProjectExprs {
			advanced, err := d.next(ctx, proj.Expr)
			if err != nil {
				return false, err
			}
			if !advanced {
				return false, nil
			}
			out.Put(proj.ColumnName, d.regs[proj.Expr.ResultReg])
		}
		d.regs[it.ResultReg] = types.NewMap(out)
		return true, nil
	}
}

// isTruthy evaluates a WHERE predicate's FieldValue as a boolean. SQL
// NULL and JSON null are falsy, matching three-valued-logic collapse to
// "don't include the row" rather than propagating an error (spec §4.8).
func isTruthy(v types.FieldValue) bool {
	if v.IsNull() || v.IsJSONNull() {
		return false
	}
	b, isBool := v.AsBoolean()
	return isBool && b
}
