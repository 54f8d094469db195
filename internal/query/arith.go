package query

import (
	"context"
	"strconv"
	"strings"

	"github.com/dittonosql/go-sdk/internal/query/plan"
	"github.com/dittonosql/go-sdk/pkg/nosqlerr"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// numericRank orders the numeric kinds by SQL promotion width: an
// ArithOp or comparison between two differently-kinded numbers widens
// both operands to the wider kind before operating (spec §4.3, "SQL
// numeric promotion").
func numericRank(k types.Kind) int {
	switch k {
	case types.KindInteger:
		return 0
	case types.KindLong:
		return 1
	case types.KindDouble:
		return 2
	case types.KindNumber:
		return 3
	default:
		return -1
	}
}

// asFloat widens any numeric FieldValue to float64 for comparison and
// arithmetic. Number (exact decimal) values lose precision here; callers
// that need exact decimal arithmetic should compare Number to Number
// directly via their decimal string instead of going through this path.
func asFloat(v types.FieldValue) (float64, bool) {
	switch v.Kind {
	case types.KindInteger:
		iv, _ := v.AsInteger()
		return float64(iv), true
	case types.KindLong:
		lv, _ := v.AsLong()
		return float64(lv), true
	case types.KindDouble:
		dv, _ := v.AsDouble()
		return dv, true
	case types.KindNumber:
		nv, _ := v.AsNumber()
		f, err := strconv.ParseFloat(nv, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// compareFieldValues orders two FieldValues per SQL comparison
// semantics: numerics compare numerically regardless of kind, strings
// compare lexicographically, booleans compare false < true. Comparing
// across non-numeric kinds is not well-defined by the statement compiler
// (the server rejects it during Prepare), so it falls back to comparing
// Kind order to stay total.
func compareFieldValues(a, b types.FieldValue) int {
	if numericRank(a.Kind) >= 0 && numericRank(b.Kind) >= 0 {
		af, _ := asFloat(a)
		bf, _ := asFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	if a.Kind == types.KindString && b.Kind == types.KindString {
		as, _ := a.AsString()
		bs, _ := b.AsString()
		return strings.Compare(as, bs)
	}
	if a.Kind == types.KindBoolean && b.Kind == types.KindBoolean {
		av, _ := a.AsBoolean()
		bv, _ := b.AsBoolean()
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	}
	if a.Kind < b.Kind {
		return -1
	}
	if a.Kind > b.Kind {
		return 1
	}
	return 0
}

func (d *Driver) nextArithOp(ctx context.Context, it *plan.Iterator) (bool, error) {
	operands := make([]types.FieldValue, 0, len(it.Children))
	for _, child := range it.Children {
		advanced, err := d.next(ctx, child)
		if err != nil {
			return false, err
		}
		if !advanced {
			return false, nil
		}
		operands = append(operands, d.regs[child.ResultReg])
	}
	if len(operands) == 0 {
		return false, nosqlerr.New(nosqlerr.IllegalState, "query driver: ArithOp has no operands")
	}
	for _, v := range operands {
		if v.IsNull() {
			d.regs[it.ResultReg] = types.Null()
			return true, nil
		}
	}

	resultKind := types.KindInteger
	for _, v := range operands {
		if numericRank(v.Kind) < 0 {
			return false, nosqlerr.BadProtocol("query driver: ArithOp operand is not numeric (%s)", v.Kind)
		}
		if numericRank(v.Kind) > numericRank(resultKind) {
			resultKind = v.Kind
		}
	}

	acc, _ := asFloat(operands[0])
	for _, v := range operands[1:] {
		f, _ := asFloat(v)
		switch it.Operator {
		case plan.ArithAdd:
			acc += f
		case plan.ArithSubtract:
			acc -= f
		case plan.ArithMultiply:
			acc *= f
		case plan.ArithDivide:
			if f == 0 {
				return false, nosqlerr.IllegalArg("query: division by zero")
			}
			acc /= f
			resultKind = types.KindDouble // division always promotes to Double per SQL semantics
		}
	}

	switch resultKind {
	case types.KindInteger:
		d.regs[it.ResultReg] = types.NewInteger(int32(acc))
	case types.KindLong:
		d.regs[it.ResultReg] = types.NewLong(int64(acc))
	default:
		d.regs[it.ResultReg] = types.NewDouble(acc)
	}
	return true, nil
}
