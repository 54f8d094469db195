package wire

import (
	"github.com/dittonosql/go-sdk/internal/query/plan"
	"github.com/dittonosql/go-sdk/pkg/nosqldb/types"
)

// QueryOpKind distinguishes the simple (single-shard, no ORDER BY/GROUP
// BY/DISTINCT) query path from the advanced path, which always goes
// through a Prepare round trip and a client-driven plan-iterator tree
// (spec §4.8).
type QueryOpKind byte

const (
	QueryOpSimple QueryOpKind = iota
	QueryOpAdvanced
)

// PrepareParams carries the fields of a Prepare request.
type PrepareParams struct {
	Statement  string
	GetQueryPlan bool // request the server's human-readable plan description too
}

// EncodePrepareRequest writes a Prepare request frame.
func EncodePrepareRequest(version ProtocolVersion, timeoutMs int32, p PrepareParams) []byte {
	w := NewWriter(64 + len(p.Statement))
	WriteRequestHeader(w, version, OpPrepare, timeoutMs, "")
	w.WriteString(p.Statement)
	w.WriteBool(p.GetQueryPlan)
	return w.Bytes()
}

// PreparedStatement is the decoded body of a Prepare response: the
// opaque bytes the server needs to re-identify the plan on later Query
// calls, the driver-side plan-iterator tree, the number of bind
// variables, and (if requested) a human-readable plan description.
type PreparedStatement struct {
	CompiledQuery []byte
	RootIterator  *plan.Iterator
	RegisterCount int
	BindVariables []string
	QueryPlanText string // empty unless PrepareParams.GetQueryPlan was set
	TableName     string
}

// DecodePreparedStatement reads a Prepare response body.
func DecodePreparedStatement(r *Reader) (*PreparedStatement, error) {
	compiled, err := r.ReadBinary()
	if err != nil {
		return nil, err
	}
	tableName, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	hasPlan, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	var root *plan.Iterator
	if hasPlan {
		root, err = decodePlanIterator(r)
		if err != nil {
			return nil, err
		}
	}
	nVars, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	bindVars := make([]string, 0, nVars)
	for i := int32(0); i < nVars; i++ {
		name, _, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		bindVars = append(bindVars, name)
	}
	planText, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	regCount := 0
	if root != nil {
		regCount = root.RegisterCount()
	}
	return &PreparedStatement{
		CompiledQuery: compiled,
		RootIterator:  root,
		RegisterCount: regCount,
		BindVariables: bindVars,
		QueryPlanText: planText,
		TableName:     tableName,
	}, nil
}

// decodePlanIterator reads one node of the plan-iterator tree and its
// children, recursively. The on-wire shape mirrors plan.Kind: a tag
// byte, the result register and source location common to every node,
// then variant-specific fields (spec §4.8, §9).
func decodePlanIterator(r *Reader) (*plan.Iterator, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	it := &plan.Iterator{Kind: plan.Kind(kindByte)}

	reg, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	it.ResultReg = int(reg)

	loc, _, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	it.Location = loc

	switch it.Kind {
	case plan.KindReceive:
		partitioned, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		it.IsPartitioned = partitioned
		n, err := r.ReadPackedInt32()
		if err != nil {
			return nil, err
		}
		keys := make([]string, 0, n)
		for i := int32(0); i < n; i++ {
			k, _, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
		}
		it.ShardKeys = keys

	case plan.KindSort, plan.KindSortV2:
		n, err := r.ReadPackedInt32()
		if err != nil {
			return nil, err
		}
		specs := make([]plan.SortSpec, 0, n)
		for i := int32(0); i < n; i++ {
			name, _, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			desc, err := r.ReadBool()
			if err != nil {
				return nil, err
			}
			nullsFirst, err := r.ReadBool()
			if err != nil {
				return nil, err
			}
			specs = append(specs, plan.SortSpec{FieldName: name, Descending: desc, NullsFirst: nullsFirst})
		}
		it.SortKeys = specs
		child, err := decodePlanIterator(r)
		if err != nil {
			return nil, err
		}
		it.Children = []*plan.Iterator{child}

	case plan.KindGroup:
		gbCount, err := r.ReadPackedInt32()
		if err != nil {
			return nil, err
		}
		it.GroupByFieldCount = int(gbCount)
		nAgg, err := r.ReadPackedInt32()
		if err != nil {
			return nil, err
		}
		aggs := make([]*plan.Iterator, 0, nAgg)
		for i := int32(0); i < nAgg; i++ {
			a, err := decodePlanIterator(r)
			if err != nil {
				return nil, err
			}
			aggs = append(aggs, a)
		}
		it.AggregateFuncs = aggs
		child, err := decodePlanIterator(r)
		if err != nil {
			return nil, err
		}
		it.Children = []*plan.Iterator{child}

	case plan.KindSFW:
		hasWhere, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if hasWhere {
			whereExpr, err := decodePlanIterator(r)
			if err != nil {
				return nil, err
			}
			it.WhereExpr = whereExpr
		}
		nProj, err := r.ReadPackedInt32()
		if err != nil {
			return nil, err
		}
		projs := make([]plan.ProjectExpr, 0, nProj)
		for i := int32(0); i < nProj; i++ {
			name, _, err := r.ReadString()
			if err != nil {
				return nil, err
			}
			expr, err := decodePlanIterator(r)
			if err != nil {
				return nil, err
			}
			projs = append(projs, plan.ProjectExpr{ColumnName: name, Expr: expr})
		}
		it.ProjectExprs = projs
		child, err := decodePlanIterator(r)
		if err != nil {
			return nil, err
		}
		it.Children = []*plan.Iterator{child}

	case plan.KindConstant:
		v, err := DecodeFieldValue(r)
		if err != nil {
			return nil, err
		}
		it.ConstantValue = v

	case plan.KindVarRef, plan.KindExternalVar:
		name, _, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		it.VarName = name
		varReg, err := r.ReadPackedInt32()
		if err != nil {
			return nil, err
		}
		it.VarReg = int(varReg)

	case plan.KindFieldStep:
		name, _, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		it.FieldName = name
		child, err := decodePlanIterator(r)
		if err != nil {
			return nil, err
		}
		it.Children = []*plan.Iterator{child}

	case plan.KindArithOp:
		op, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		it.Operator = plan.ArithOperator(op)
		children, err := decodePlanIteratorChildren(r)
		if err != nil {
			return nil, err
		}
		it.Children = children

	case plan.KindFnMinMax:
		mm, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		it.MinMax = plan.MinMaxKind(mm)
		children, err := decodePlanIteratorChildren(r)
		if err != nil {
			return nil, err
		}
		it.Children = children

	case plan.KindFnSize, plan.KindFnSum, plan.KindFnCollect:
		children, err := decodePlanIteratorChildren(r)
		if err != nil {
			return nil, err
		}
		it.Children = children

	default:
		return nil, protoErrf("decode PlanIterator: unknown kind %d", kindByte)
	}

	return it, nil
}

// decodePlanIteratorChildren reads a packed-i32 count followed by that
// many child iterators, the shape shared by the variable-arity node
// kinds (ArithOp, FnSize, FnSum, FnMinMax, FnCollect).
func decodePlanIteratorChildren(r *Reader) ([]*plan.Iterator, error) {
	n, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	children := make([]*plan.Iterator, 0, n)
	for i := int32(0); i < n; i++ {
		c, err := decodePlanIterator(r)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	return children, nil
}

// QueryParams carries the fields of a Query request, covering both the
// simple path (Statement set, no prior Prepare) and the advanced path
// (PreparedQuery set to a PreparedStatement.CompiledQuery, with bound
// variables and a continuation key from a prior batch).
type QueryParams struct {
	Kind            QueryOpKind
	Statement       string // simple path only
	PreparedQuery   []byte // advanced path only
	BindVariables   map[string]types.FieldValue
	Consistency     types.Consistency
	MaxReadKB       int32
	Limit           int32
	ContinuationKey []byte
	ShardID         int32 // -1 means "not pinned to a shard"
}

// EncodeQueryRequest writes a Query request frame.
func EncodeQueryRequest(version ProtocolVersion, timeoutMs int32, tableName string, p QueryParams) ([]byte, error) {
	w := NewWriter(256)
	WriteRequestHeader(w, version, OpQuery, timeoutMs, tableName)
	w.WriteByte(byte(p.Kind))
	w.WriteByte(byte(p.Consistency))
	w.WritePackedInt32(p.MaxReadKB)
	w.WritePackedInt32(p.Limit)
	w.WriteBinary(p.ContinuationKey)
	w.WritePackedInt32(p.ShardID)

	switch p.Kind {
	case QueryOpSimple:
		w.WriteString(p.Statement)
	case QueryOpAdvanced:
		w.WriteBinary(p.PreparedQuery)
	default:
		return nil, protoErrf("encode Query: unknown QueryOpKind %d", p.Kind)
	}

	w.WritePackedInt32(int32(len(p.BindVariables)))
	for name, val := range p.BindVariables {
		w.WriteString(name)
		if err := EncodeFieldValue(w, val); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// QueryResult is the decoded body of a Query response: a batch of
// result rows plus the continuation key to fetch the next batch, or a
// nil ContinuationKey when the query is exhausted (spec §4.8).
type QueryResult struct {
	Rows            []*types.MapValue
	ContinuationKey []byte
	Capacity        types.Capacity
	ReachedLimit    bool
}

// DecodeQueryResult reads a Query response body.
func DecodeQueryResult(r *Reader) (*QueryResult, error) {
	n, err := r.ReadPackedInt32()
	if err != nil {
		return nil, err
	}
	rows := make([]*types.MapValue, 0, n)
	for i := int32(0); i < n; i++ {
		row, err := DecodeMap(r)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	ck, err := r.ReadBinary()
	if err != nil {
		return nil, err
	}
	reachedLimit, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	res := &QueryResult{Rows: rows, ContinuationKey: ck, ReachedLimit: reachedLimit}
	if err := decodeCapacity(r, &res.Capacity); err != nil {
		return nil, err
	}
	return res, nil
}
