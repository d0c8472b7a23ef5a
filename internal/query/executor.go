/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package query

import (
	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// Executor plans and runs MATCH/WALK statements against one Store,
// converting a PlanOp tree's rows into column-named QueryResults.
type Executor struct {
	reg     *registry.Registry
	store   *graph.Store
	ctx     *Context
	planner *Planner
}

func NewExecutor(reg *registry.Registry, store *graph.Store) *Executor {
	return &Executor{reg: reg, store: store, ctx: NewContext(reg, store), planner: NewPlanner(reg)}
}

// ExecuteMatch plans and runs a standalone MATCH statement.
func (x *Executor) ExecuteMatch(stmt *parser.MatchStmt) (*QueryResult, error) {
	return x.ExecuteMatchWithBindings(stmt, pattern.NewBindings())
}

// Plan builds a MATCH statement's physical plan without running it,
// for EXPLAIN.
func (x *Executor) Plan(stmt *parser.MatchStmt) (*QueryPlan, error) {
	return x.planner.PlanMatch(stmt)
}

// PlanWalk builds a WALK statement's physical plan without running it,
// for EXPLAIN.
func (x *Executor) PlanWalk(stmt *parser.WalkStmt) (*QueryPlan, error) {
	return x.planner.PlanWalk(stmt)
}

// ExecuteMatchWithBindings is ExecuteMatch seeded with variables an
// enclosing statement already bound (used by MATCH ... mutation
// bodies sharing the matched row's bindings with their actions).
func (x *Executor) ExecuteMatchWithBindings(stmt *parser.MatchStmt, initial pattern.Bindings) (*QueryResult, error) {
	plan, err := x.planner.PlanMatch(stmt)
	if err != nil {
		return nil, err
	}
	return x.ExecutePlan(plan, initial)
}

// ExecutePlan runs an already-built plan from initial and shapes the
// resulting rows into a QueryResult keyed by plan.Columns, preferring
// a row's projected Values over a raw binding lookup.
func (x *Executor) ExecutePlan(plan *QueryPlan, initial pattern.Bindings) (*QueryResult, error) {
	rows, err := x.ctx.Execute(plan.Root, initial)
	if err != nil {
		return nil, err
	}

	out := &QueryResult{Columns: plan.Columns}
	for _, row := range rows {
		if len(row.Values) > 0 {
			out.Rows = append(out.Rows, QueryRow{Values: row.Values})
			continue
		}
		vals := make([]value.Value, len(plan.Columns))
		for i, col := range plan.Columns {
			if v, ok := row.Bindings.Get(col); ok {
				vals[i] = v
			} else {
				vals[i] = value.Null()
			}
		}
		out.Rows = append(out.Rows, QueryRow{Values: vals})
	}
	return out, nil
}

// ExecuteWalk plans and runs a WALK statement, shaping its
// TransitiveClosure rows per the statement's RETURN clause
// (PATH/NODES/EDGES/TERMINAL/projections).
func (x *Executor) ExecuteWalk(stmt *parser.WalkStmt) (*QueryResult, error) {
	return x.ExecuteWalkWithBindings(stmt, pattern.NewBindings())
}

// ExecuteWalkWithBindings is ExecuteWalk seeded with variables an
// enclosing MATCH already bound, so stmt.From may reference one of them
// (the MATCH ... WALK FROM compound form).
func (x *Executor) ExecuteWalkWithBindings(stmt *parser.WalkStmt, initial pattern.Bindings) (*QueryResult, error) {
	plan, err := x.planner.PlanWalk(stmt)
	if err != nil {
		return nil, err
	}

	rows, err := x.ctx.Execute(plan.Root, initial)
	if err != nil {
		return nil, err
	}

	switch stmt.ReturnType.Kind {
	case parser.WalkReturnPath:
		return x.shapePaths(plan.Columns, rows), nil
	case parser.WalkReturnNodes:
		return x.shapeNodes(plan.Columns, rows), nil
	case parser.WalkReturnEdges:
		return x.shapeEdges(plan.Columns, rows), nil
	case parser.WalkReturnTerminal:
		lastOp := terminalOp(plan.Root)
		return x.shapeTerminal(plan.Columns, rows, lastOp), nil
	default:
		return x.shapeProjections(plan.Columns, rows, stmt.ReturnType)
	}
}

// ExecuteMatchWalk runs stmt's pattern to completion, then runs the
// nested WALK once per matched row with that row's bindings in scope,
// concatenating every row's walk output under the walk's own columns.
func (x *Executor) ExecuteMatchWalk(stmt *parser.MatchWalkStmt) (*QueryResult, error) {
	compiled, err := pattern.Compile(stmt.Pattern, x.reg)
	if err != nil {
		return nil, err
	}
	if stmt.Where != nil {
		compiled = compiled.WithFilter(stmt.Where)
	}

	matcher := pattern.NewMatcher(x.reg, x.store)
	matchRows, err := matcher.FindAll(compiled, pattern.NewBindings())
	if err != nil {
		return nil, err
	}

	var out *QueryResult
	for _, b := range matchRows {
		res, err := x.ExecuteWalkWithBindings(stmt.Walk, b)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = &QueryResult{Columns: res.Columns}
		}
		out.Rows = append(out.Rows, res.Rows...)
	}
	if out == nil {
		out = &QueryResult{}
	}
	return out, nil
}

func (x *Executor) shapePaths(cols []string, rows []Row) *QueryResult {
	out := &QueryResult{Columns: cols}
	for _, row := range rows {
		path := make([]value.Value, len(row.Path))
		for i, ent := range row.Path {
			if ent.IsNode() {
				path[i] = value.NodeRef(ent.Node)
			} else {
				path[i] = value.EdgeRef(ent.Edge)
			}
		}
		out.Rows = append(out.Rows, QueryRow{Values: []value.Value{value.List(path)}})
	}
	return out
}

func (x *Executor) shapeNodes(cols []string, rows []Row) *QueryResult {
	out := &QueryResult{Columns: cols}
	seen := make(map[value.NodeId]bool)
	for _, row := range rows {
		if len(row.Path) == 0 {
			continue
		}
		ent := row.Path[len(row.Path)-1]
		if !ent.IsNode() || seen[ent.Node] {
			continue
		}
		seen[ent.Node] = true
		out.Rows = append(out.Rows, QueryRow{Values: []value.Value{value.NodeRef(ent.Node)}})
	}
	return out
}

func (x *Executor) shapeEdges(cols []string, rows []Row) *QueryResult {
	out := &QueryResult{Columns: cols}
	seen := make(map[value.EdgeId]bool)
	for _, row := range rows {
		for _, ent := range row.Path {
			if !ent.IsEdge() || seen[ent.Edge] {
				continue
			}
			seen[ent.Edge] = true
			out.Rows = append(out.Rows, QueryRow{Values: []value.Value{value.EdgeRef(ent.Edge)}})
		}
	}
	return out
}

// shapeTerminal keeps only rows whose node has nothing left to expand
// (a dead end reached within the depth bound), per op's own direction
// and edge-type filter.
func (x *Executor) shapeTerminal(cols []string, rows []Row, op *PlanOp) *QueryResult {
	out := &QueryResult{Columns: cols}
	seen := make(map[value.NodeId]bool)
	for _, row := range rows {
		if len(row.Path) == 0 {
			continue
		}
		last := row.Path[len(row.Path)-1]
		if !last.IsNode() || seen[last.Node] {
			continue
		}
		if op != nil && len(x.ctx.expand(op, last.Node)) > 0 {
			continue
		}
		seen[last.Node] = true
		out.Rows = append(out.Rows, QueryRow{Values: []value.Value{value.NodeRef(last.Node)}})
	}
	return out
}

func (x *Executor) shapeProjections(cols []string, rows []Row, ret parser.WalkReturn) (*QueryResult, error) {
	out := &QueryResult{Columns: cols}
	for _, row := range rows {
		b := row.Bindings.Clone()
		if ret.Alias != "" {
			if v, ok := row.Bindings.Get(internalWalkVar); ok {
				b.Insert(ret.Alias, v)
			}
		}
		vals := make([]value.Value, len(ret.Projections))
		for i, p := range ret.Projections {
			v, err := x.ctx.eval.Eval(p.Expr, b)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		out.Rows = append(out.Rows, QueryRow{Values: vals})
	}
	return out, nil
}

// terminalOp walks down Input to the innermost TransitiveClosure,
// skipping any UNTIL filter the planner wrapped around it.
func terminalOp(op *PlanOp) *PlanOp {
	for op != nil && op.Kind != OpTransitiveClosure {
		op = op.Input
	}
	return op
}
