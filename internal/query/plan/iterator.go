// Package plan holds the plan-iterator tree shape the server compiler
// emits inside a PreparedStatement (spec §3, §4.8). It is a leaf package:
// pure data, no execution logic, no dependency on the transport or the
// driver that walks it (spec §9 Design Notes: "Avoid inheritance: each
// variant is data; a single next() dispatch function pattern-matches the
// variant").
package plan

// Kind discriminates PlanIterator variants.
type Kind int

const (
	KindReceive Kind = iota
	KindSort
	KindSortV2
	KindGroup
	KindSFW
	KindConstant
	KindVarRef
	KindExternalVar
	KindFieldStep
	KindArithOp
	KindFnSize
	KindFnSum
	KindFnMinMax
	KindFnCollect
)

// SortSpec describes one ORDER BY key.
type SortSpec struct {
	FieldName string
	Descending bool
	NullsFirst bool
}

// ArithOperator is the operator an ArithOp iterator folds across its
// children, under SQL numeric promotion rules (spec §4.8).
type ArithOperator int

const (
	ArithAdd ArithOperator = iota
	ArithSubtract
	ArithMultiply
	ArithDivide
)

// MinMaxKind selects whether an FnMinMax iterator tracks the minimum or
// maximum of its input.
type MinMaxKind int

const (
	MinMaxMin MinMaxKind = iota
	MinMaxMax
)

// Iterator is one node of the plan-iterator tree. Only the fields
// relevant to Kind are populated; this mirrors the FieldValue tagged-sum
// pattern used throughout the wire codec (spec §9).
type Iterator struct {
	Kind        Kind
	ResultReg   int   // register file slot this node writes its result into
	Location    string // source location, for error messages

	Children []*Iterator

	// Receive
	IsPartitioned bool
	ShardKeys     []string

	// Sort / SortV2
	SortKeys []SortSpec

	// Group
	GroupByFieldCount int
	AggregateFuncs    []*Iterator // FnSum/FnMinMax/FnCollect nodes, one per aggregate column

	// SFW. WhereExpr and each ProjectExprs[i].Expr are sub-trees rooted at
	// a Constant/VarRef/FieldStep/ArithOp/Fn* node; they read the current
	// row via a VarRef bound to Children[0].ResultReg, so nextSFW can
	// drive them fresh for every row the source produces.
	WhereExpr    *Iterator // nil if the query has no WHERE clause
	ProjectExprs []ProjectExpr

	// Constant
	ConstantValue any // a types.FieldValue, boxed to keep this package leaf-level

	// VarRef / ExternalVar
	VarName string
	VarReg  int

	// FieldStep
	FieldName string

	// ArithOp
	Operator ArithOperator

	// FnMinMax
	MinMax MinMaxKind
}

// ProjectExpr is one output column of an SFW projection: the column
// name and the expression sub-tree producing its value for the current
// row.
type ProjectExpr struct {
	ColumnName string
	Expr       *Iterator
}

// RegisterCount returns the number of register slots required to execute
// this tree, i.e. one greater than the highest ResultReg anywhere in it.
func (it *Iterator) RegisterCount() int {
	max := it.ResultReg
	raise := func(n int) {
		if n > max {
			max = n
		}
	}
	for _, c := range it.Children {
		raise(c.RegisterCount() - 1)
	}
	for _, a := range it.AggregateFuncs {
		raise(a.RegisterCount() - 1)
	}
	if it.WhereExpr != nil {
		raise(it.WhereExpr.RegisterCount() - 1)
	}
	for _, p := range it.ProjectExprs {
		if p.Expr != nil {
			raise(p.Expr.RegisterCount() - 1)
		}
	}
	return max + 1
}
