/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package query is the physical query planner and executor: it lowers a
parsed MATCH/WALK statement into a tree of PlanOp nodes and runs that
tree against a graph.Store to produce column-named result rows.
*/
package query

import (
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/value"
)

// PlanOpKind discriminates the physical operator tagged union.
type PlanOpKind int

const (
	OpNodeScan PlanOpKind = iota
	OpIndexScan
	OpEdgeJoin
	OpFilter
	OpProject
	OpSort
	OpLimitOffset
	OpAggregate
	OpCrossJoin
	OpLeftOuterJoin
	OpTransitiveClosure
	OpDistinct
	OpEmpty
)

func (k PlanOpKind) String() string {
	switch k {
	case OpNodeScan:
		return "NodeScan"
	case OpIndexScan:
		return "IndexScan"
	case OpEdgeJoin:
		return "EdgeJoin"
	case OpFilter:
		return "Filter"
	case OpProject:
		return "Project"
	case OpSort:
		return "Sort"
	case OpLimitOffset:
		return "LimitOffset"
	case OpAggregate:
		return "Aggregate"
	case OpCrossJoin:
		return "CrossJoin"
	case OpLeftOuterJoin:
		return "LeftOuterJoin"
	case OpTransitiveClosure:
		return "TransitiveClosure"
	case OpDistinct:
		return "Distinct"
	case OpEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// AggregateKind names one of the five aggregate functions a RETURN
// projection can call.
type AggregateKind int

const (
	AggCount AggregateKind = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

// AggregateSpec is one aggregate projection: Alias is the output
// column name, Kind the function, and Arg its argument expression
// (nil for count(*)).
type AggregateSpec struct {
	Alias string
	Kind  AggregateKind
	Arg   *parser.Expr
}

// ProjectionSpec is one RETURN projection lowered to a column name and
// the expression producing it.
type ProjectionSpec struct {
	Alias string
	Expr  *parser.Expr
}

// OrderSpec is one ORDER BY term.
type OrderSpec struct {
	Expr      *parser.Expr
	Direction parser.OrderDirection
}

// PlanOp is one node of a QueryPlan tree. Only the fields relevant to
// Kind are populated; Input (and Left/Right for the two join shapes)
// link to child operators.
type PlanOp struct {
	Kind PlanOpKind

	Input *PlanOp
	Left  *PlanOp
	Right *PlanOp

	// OpNodeScan / OpIndexScan
	Var    string
	TypeID value.TypeId
	Attr   string     // OpIndexScan only
	Search *parser.Expr // OpIndexScan only: evaluated once per input row against that row's bindings

	// OpEdgeJoin
	EdgeTypeID value.EdgeTypeId
	FromVars   []string
	EdgeVar    string

	// OpFilter
	Condition *parser.Expr

	// OpProject
	Projections []ProjectionSpec

	// OpSort
	OrderBy []OrderSpec
	// Columns names the preceding OpProject's output columns, positionally
	// aligned with a row's Values; Sort consults it so an ORDER BY term
	// that's a bare alias reference reads the projected value instead of
	// re-evaluating against the original bindings.
	Columns []string

	// OpLimitOffset
	Limit  *int64
	Offset *int64

	// OpAggregate
	GroupBy    []ProjectionSpec
	Aggregates []AggregateSpec

	// OpLeftOuterJoin
	JoinCondition *parser.Expr
	RightVars     []string

	// OpTransitiveClosure
	StartVar  string
	StartExpr *parser.Expr
	EdgeTypes []value.EdgeTypeId
	AnyType   bool // true when the FOLLOW clause named "*"
	Direction parser.WalkDirection
	MinDepth  int64
	MaxDepth  int64
}

// QueryPlan is the root of one planned statement plus the ordered
// output column names ExecutePlan's caller uses to build result rows.
type QueryPlan struct {
	Root    *PlanOp
	Columns []string
}
