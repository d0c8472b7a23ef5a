/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package query

import (
	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/registry"
)

// internalWalkVar names the node variable TransitiveClosure steps bind
// the current frontier node to; WALK statements have no surface-level
// variable of their own to reuse.
const internalWalkVar = "_walk"

// Planner lowers a parsed MATCH or WALK statement into a QueryPlan.
type Planner struct {
	reg *registry.Registry
}

func NewPlanner(reg *registry.Registry) *Planner {
	return &Planner{reg: reg}
}

// PlanMatch builds the physical plan for a standalone MATCH statement.
func (p *Planner) PlanMatch(stmt *parser.MatchStmt) (*QueryPlan, error) {
	root, bound, err := p.planPattern(stmt.Pattern, stmt.Where, nil)
	if err != nil {
		return nil, err
	}

	for _, opt := range stmt.OptionalMatches {
		optRoot, optBound, err := p.planPattern(opt.Pattern, opt.Where, bound)
		if err != nil {
			return nil, err
		}
		rightVars := make([]string, 0, len(optBound))
		for v := range optBound {
			if !bound[v] {
				rightVars = append(rightVars, v)
			}
		}
		root = &PlanOp{
			Kind:      OpLeftOuterJoin,
			Left:      root,
			Right:     optRoot,
			RightVars: rightVars,
		}
		for v := range optBound {
			bound[v] = true
		}
	}

	return p.planTail(root, stmt.Return, stmt.OrderBy, stmt.Limit, stmt.Offset)
}

// planTail applies Project/Sort/LimitOffset/Distinct/Aggregate over
// root, following the MATCH planner rule order.
func (p *Planner) planTail(root *PlanOp, ret parser.ReturnClause, orderBy []parser.OrderTerm, limit, offset *int64) (*QueryPlan, error) {
	groupBy, aggs := splitAggregates(ret.Projections)

	var columns []string
	if len(aggs) > 0 {
		for _, g := range groupBy {
			columns = append(columns, g.Alias)
		}
		for _, a := range aggs {
			columns = append(columns, a.Alias)
		}
		root = &PlanOp{Kind: OpAggregate, Input: root, GroupBy: groupBy, Aggregates: aggs}
	} else {
		projs := make([]ProjectionSpec, len(ret.Projections))
		for i, pr := range ret.Projections {
			projs[i] = projectionSpec(pr)
			columns = append(columns, projs[i].Alias)
		}
		root = &PlanOp{Kind: OpProject, Input: root, Projections: projs}
	}

	if len(orderBy) > 0 {
		order := make([]OrderSpec, len(orderBy))
		for i, o := range orderBy {
			order[i] = OrderSpec{Expr: o.Expr, Direction: o.Direction}
		}
		root = &PlanOp{Kind: OpSort, Input: root, OrderBy: order, Columns: append([]string(nil), columns...)}
	}

	if limit != nil || offset != nil {
		root = &PlanOp{Kind: OpLimitOffset, Input: root, Limit: limit, Offset: offset}
	}

	if ret.Distinct {
		root = &PlanOp{Kind: OpDistinct, Input: root}
	}

	return &QueryPlan{Root: root, Columns: columns}, nil
}

// projectionSpec lowers one RETURN projection, defaulting its alias to
// the source variable name when the projection is a bare variable
// reference and no explicit alias was given.
func projectionSpec(pr parser.Projection) ProjectionSpec {
	alias := pr.Alias
	if alias == "" && pr.Expr.K == parser.ExprVar {
		alias = pr.Expr.Name
	}
	return ProjectionSpec{Alias: alias, Expr: pr.Expr}
}

// splitAggregates partitions projections into plain group-by columns
// and aggregate specs, recognizing count/sum/avg/min/max called with
// exactly one argument (count(*) included); a call with any other
// argument count stays a plain projection (two-arg min/max is the
// scalar builtin).
func splitAggregates(projections []parser.Projection) ([]ProjectionSpec, []AggregateSpec) {
	var groupBy []ProjectionSpec
	var aggs []AggregateSpec

	for _, pr := range projections {
		if kind, arg, ok := aggregateCall(pr.Expr); ok {
			alias := pr.Alias
			if alias == "" {
				alias = pr.Expr.Name
			}
			aggs = append(aggs, AggregateSpec{Alias: alias, Kind: kind, Arg: arg})
			continue
		}
		groupBy = append(groupBy, projectionSpec(pr))
	}

	return groupBy, aggs
}

func aggregateCall(e *parser.Expr) (AggregateKind, *parser.Expr, bool) {
	if e.K != parser.ExprFuncCall {
		return 0, nil, false
	}
	switch e.Name {
	case "count":
		if len(e.Args) == 1 && isStarArg(e.Args[0]) {
			return AggCount, nil, true
		}
		if len(e.Args) == 1 {
			return AggCount, e.Args[0], true
		}
	case "sum":
		if len(e.Args) == 1 {
			return AggSum, e.Args[0], true
		}
	case "avg":
		if len(e.Args) == 1 {
			return AggAvg, e.Args[0], true
		}
	case "min":
		if len(e.Args) == 1 {
			return AggMin, e.Args[0], true
		}
	case "max":
		if len(e.Args) == 1 {
			return AggMax, e.Args[0], true
		}
	}
	return 0, nil, false
}

func isStarArg(e *parser.Expr) bool {
	return e.K == parser.ExprVar && e.Name == "*"
}

// planPattern lowers a pattern element list plus its WHERE clause into
// a scan/join chain, preferring an IndexScan when an equality
// conjunct fixes a freshly-scanned variable's attribute value.
// preboundVars marks variables an enclosing MATCH already bound (used
// for OPTIONAL MATCH, whose pattern may reference them).
func (p *Planner) planPattern(elems []parser.PatternElement, where *parser.Expr, preboundVars map[string]bool) (*PlanOp, map[string]bool, error) {
	bound := make(map[string]bool, len(preboundVars))
	for v := range preboundVars {
		bound[v] = true
	}

	conjuncts := splitConjuncts(where)
	used := make([]bool, len(conjuncts))

	var root *PlanOp

	for _, elem := range elems {
		switch e := elem.(type) {
		case *parser.NodePattern:
			if e.TypeName == "" {
				bound[e.Var] = true
				continue
			}
			td, ok := p.reg.GetTypeByName(e.TypeName)
			if !ok {
				return nil, nil, mewerr.NewAt(mewerr.ErrUnknownType, e.TypeName, e.Span())
			}
			if bound[e.Var] {
				continue
			}

			op := &PlanOp{Kind: OpNodeScan, Input: root, Var: e.Var, TypeID: td.ID}
			if idx := findEqualityConjunct(conjuncts, used, e.Var); idx >= 0 {
				attr, val := conjuncts[idx].Left, conjuncts[idx].Right
				if attr.K != parser.ExprPropertyAccess {
					attr, val = val, attr
				}
				op = &PlanOp{Kind: OpIndexScan, Input: root, Var: e.Var, TypeID: td.ID, Attr: attr.Name, Search: val}
				used[idx] = true
			}
			root = op
			bound[e.Var] = true

		case *parser.EdgePattern:
			et, ok := p.reg.GetEdgeTypeByName(e.EdgeType)
			if !ok {
				return nil, nil, mewerr.NewAt(mewerr.ErrUnknownEdgeType, e.EdgeType, e.Span())
			}
			root = &PlanOp{
				Kind:       OpEdgeJoin,
				Input:      root,
				EdgeTypeID: et.ID,
				FromVars:   append([]string(nil), e.Targets...),
				EdgeVar:    e.Var,
			}
			if e.Var != "" {
				bound[e.Var] = true
			}
		}
	}

	if root == nil {
		root = &PlanOp{Kind: OpEmpty}
	}

	for i, c := range conjuncts {
		if used[i] {
			continue
		}
		root = &PlanOp{Kind: OpFilter, Input: root, Condition: c.full}
	}

	return root, bound, nil
}

type equalityConjunct struct {
	full        *parser.Expr
	Left, Right *parser.Expr
}

// splitConjuncts flattens a WHERE expression's top-level AND chain
// into individual equality-testable conjuncts.
func splitConjuncts(where *parser.Expr) []equalityConjunct {
	if where == nil {
		return nil
	}
	var out []equalityConjunct
	var walk func(e *parser.Expr)
	walk = func(e *parser.Expr) {
		if e.K == parser.ExprBinary && e.Op == "and" {
			walk(e.Left)
			walk(e.Right)
			return
		}
		c := equalityConjunct{full: e}
		if e.K == parser.ExprBinary && e.Op == "=" {
			c.Left, c.Right = e.Left, e.Right
		}
		out = append(out, c)
	}
	walk(where)
	return out
}

// findEqualityConjunct returns the index of an unused conjunct of the
// shape `v.attr = <literal not referencing v>`, or -1.
func findEqualityConjunct(conjuncts []equalityConjunct, used []bool, v string) int {
	for i, c := range conjuncts {
		if used[i] || c.Left == nil {
			continue
		}
		attr, val := c.Left, c.Right
		if attr.K != parser.ExprPropertyAccess {
			attr, val = val, attr
		}
		if attr.K != parser.ExprPropertyAccess || attr.Base == nil || attr.Base.K != parser.ExprVar || attr.Base.Name != v {
			continue
		}
		if referencesVar(val, v) {
			continue
		}
		return i
	}
	return -1
}

func referencesVar(e *parser.Expr, v string) bool {
	if e == nil {
		return false
	}
	switch e.K {
	case parser.ExprVar:
		return e.Name == v
	case parser.ExprPropertyAccess:
		return referencesVar(e.Base, v)
	case parser.ExprUnary:
		return referencesVar(e.Arg, v)
	case parser.ExprBinary:
		return referencesVar(e.Left, v) || referencesVar(e.Right, v)
	case parser.ExprFuncCall:
		for _, a := range e.Args {
			if referencesVar(a, v) {
				return true
			}
		}
		return false
	case parser.ExprListLiteral:
		for _, a := range e.Items {
			if referencesVar(a, v) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// PlanWalk builds the physical plan for a WALK statement: one
// TransitiveClosure per FOLLOW clause, chained so each step's
// frontier feeds the next, with an optional UNTIL filter applied to
// the final frontier.
func (p *Planner) PlanWalk(stmt *parser.WalkStmt) (*QueryPlan, error) {
	root := &PlanOp{
		Kind:      OpTransitiveClosure,
		StartVar:  internalWalkVar,
		StartExpr: stmt.From,
		MinDepth:  0,
		MaxDepth:  0,
	}
	if err := p.fillFollow(root, stmt.Follow[0]); err != nil {
		return nil, err
	}

	for _, follow := range stmt.Follow[1:] {
		next := &PlanOp{
			Kind:     OpTransitiveClosure,
			Input:    root,
			StartVar: internalWalkVar,
		}
		if err := p.fillFollow(next, follow); err != nil {
			return nil, err
		}
		root = next
	}

	if stmt.Until != nil {
		root = &PlanOp{Kind: OpFilter, Input: root, Condition: stmt.Until}
	}

	columns := walkColumns(stmt.ReturnType)
	return &QueryPlan{Root: root, Columns: columns}, nil
}

func (p *Planner) fillFollow(op *PlanOp, f parser.FollowClause) error {
	op.Direction = f.Direction
	if f.MinDepth != nil {
		op.MinDepth = *f.MinDepth
	} else {
		op.MinDepth = 0
	}
	if f.MaxDepth != nil {
		op.MaxDepth = *f.MaxDepth
	} else {
		op.MaxDepth = 100
	}

	for _, name := range f.EdgeTypes {
		if name == "*" {
			op.AnyType = true
			continue
		}
		et, ok := p.reg.GetEdgeTypeByName(name)
		if !ok {
			return mewerr.New(mewerr.ErrUnknownEdgeType, name)
		}
		op.EdgeTypes = append(op.EdgeTypes, et.ID)
	}
	return nil
}

func walkColumns(ret parser.WalkReturn) []string {
	switch ret.Kind {
	case parser.WalkReturnPath:
		return []string{"path"}
	case parser.WalkReturnNodes:
		return []string{"node"}
	case parser.WalkReturnEdges:
		return []string{"edge"}
	case parser.WalkReturnTerminal:
		return []string{"node"}
	default:
		cols := make([]string, len(ret.Projections))
		for i, pr := range ret.Projections {
			cols[i] = projectionSpec(pr).Alias
		}
		return cols
	}
}
