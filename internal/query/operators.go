/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package query

import (
	"fmt"
	"sort"

	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// Row is one intermediate result: the binding environment plus,
// once a Project or Aggregate op has run, the ordered output values
// and, for a TransitiveClosure chain, the path walked to reach it.
type Row struct {
	Bindings pattern.Bindings
	Values   []value.Value
	Path     []value.EntityId
}

// Context carries the registry, store, matcher and evaluator every
// physical operator needs; it never mutates the graph.
type Context struct {
	reg   *registry.Registry
	store *graph.Store
	match *pattern.Matcher
	eval  *pattern.Evaluator
}

func NewContext(reg *registry.Registry, store *graph.Store) *Context {
	return &Context{
		reg:   reg,
		store: store,
		match: pattern.NewMatcher(reg, store),
		eval:  pattern.NewEvaluator(reg, store),
	}
}

// Execute runs op against a single seed row and returns every
// resulting row.
func (c *Context) Execute(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	switch op.Kind {
	case OpEmpty:
		return []Row{{Bindings: initial.Clone()}}, nil
	case OpNodeScan:
		return c.execNodeScan(op, initial)
	case OpIndexScan:
		return c.execIndexScan(op, initial)
	case OpEdgeJoin:
		return c.execEdgeJoin(op, initial)
	case OpFilter:
		return c.execFilter(op, initial)
	case OpProject:
		return c.execProject(op, initial)
	case OpSort:
		return c.execSort(op, initial)
	case OpLimitOffset:
		return c.execLimitOffset(op, initial)
	case OpAggregate:
		return c.execAggregate(op, initial)
	case OpCrossJoin:
		return c.execCrossJoin(op, initial)
	case OpLeftOuterJoin:
		return c.execLeftOuterJoin(op, initial)
	case OpTransitiveClosure:
		return c.execTransitiveClosure(op, initial)
	case OpDistinct:
		return c.execDistinct(op, initial)
	default:
		return nil, mewerr.New(mewerr.ErrExprTypeError, "unknown plan op")
	}
}

func (c *Context) inputRows(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	if op.Input == nil {
		return []Row{{Bindings: initial.Clone()}}, nil
	}
	return c.Execute(op.Input, initial)
}

func (c *Context) execNodeScan(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	rows, err := c.inputRows(op, initial)
	if err != nil {
		return nil, err
	}

	typeIDs := append([]value.TypeId{op.TypeID}, c.reg.GetSubtypes(op.TypeID)...)

	var out []Row
	for _, row := range rows {
		if existing, ok := row.Bindings.Get(op.Var); ok {
			id, ok := existing.AsNodeRef()
			if !ok {
				continue
			}
			n, ok := c.store.GetNode(id)
			if ok && typeMatches(n.Type, typeIDs) {
				out = append(out, row)
			}
			continue
		}
		for _, tid := range typeIDs {
			for _, n := range c.store.NodesByType(tid) {
				out = append(out, Row{Bindings: row.Bindings.ExtendWith(op.Var, value.NodeRef(n.ID))})
			}
		}
	}
	return out, nil
}

func typeMatches(t value.TypeId, ids []value.TypeId) bool {
	for _, id := range ids {
		if id == t {
			return true
		}
	}
	return false
}

// execIndexScan evaluates op.Search once per input row; a Null result
// falls back to a full type scan filtered by equality, otherwise it
// consults the attribute index directly.
func (c *Context) execIndexScan(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	rows, err := c.inputRows(op, initial)
	if err != nil {
		return nil, err
	}

	typeIDs := append([]value.TypeId{op.TypeID}, c.reg.GetSubtypes(op.TypeID)...)

	var out []Row
	for _, row := range rows {
		search, err := c.eval.Eval(op.Search, row.Bindings)
		if err != nil {
			return nil, err
		}
		if search.IsNull() {
			for _, tid := range typeIDs {
				for _, n := range c.store.NodesByType(tid) {
					v, ok := n.Attrs[op.Attr]
					if !ok {
						v = value.Null()
					}
					if !value.Equal(v, search) {
						continue
					}
					out = append(out, Row{Bindings: row.Bindings.ExtendWith(op.Var, value.NodeRef(n.ID))})
				}
			}
			continue
		}
		for _, tid := range typeIDs {
			for _, n := range c.store.NodesByAttrEqual(tid, op.Attr, search) {
				out = append(out, Row{Bindings: row.Bindings.ExtendWith(op.Var, value.NodeRef(n.ID))})
			}
		}
	}
	return out, nil
}

// execEdgeJoin delegates to the pattern package's FollowEdge/CheckEdge
// physical ops, one query-plan row at a time, reusing its symmetric-edge
// reverse search and dedup rather than duplicating it here.
func (c *Context) execEdgeJoin(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	rows, err := c.inputRows(op, initial)
	if err != nil {
		return nil, err
	}

	var patOp pattern.PatternOp
	if len(op.FromVars) > 0 && op.FromVars[0] != "_" {
		patOp = pattern.PatternOp{
			Kind:       pattern.OpFollowEdge,
			EdgeTypeID: op.EdgeTypeID,
			FromVars:   op.FromVars,
			EdgeVar:    op.EdgeVar,
		}
	} else {
		patOp = pattern.PatternOp{
			Kind:       pattern.OpCheckEdge,
			EdgeTypeID: op.EdgeTypeID,
			TargetVars: op.FromVars,
		}
	}
	compiled := &pattern.CompiledPattern{Ops: []pattern.PatternOp{patOp}}

	var out []Row
	for _, row := range rows {
		results, err := c.match.FindAllWithInitial(compiled, row.Bindings)
		if err != nil {
			return nil, err
		}
		for _, b := range results {
			out = append(out, Row{Bindings: b})
		}
	}
	return out, nil
}

func (c *Context) execFilter(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	rows, err := c.inputRows(op, initial)
	if err != nil {
		return nil, err
	}
	var out []Row
	for _, row := range rows {
		ok, err := c.eval.EvalBool(op.Condition, row.Bindings)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (c *Context) execProject(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	rows, err := c.inputRows(op, initial)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		vals := make([]value.Value, len(op.Projections))
		for i, p := range op.Projections {
			v, err := c.eval.Eval(p.Expr, row.Bindings)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		out = append(out, Row{Bindings: row.Bindings, Values: vals})
	}
	return out, nil
}

func (c *Context) execSort(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	rows, err := c.inputRows(op, initial)
	if err != nil {
		return nil, err
	}

	keys := make([][]value.Value, len(rows))
	for i, row := range rows {
		env := sortEnv(row, op.Columns)
		k := make([]value.Value, len(op.OrderBy))
		for j, term := range op.OrderBy {
			v, err := c.eval.Eval(term.Expr, env)
			if err != nil {
				return nil, err
			}
			k[j] = v
		}
		keys[i] = k
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := idx[a], idx[b]
		for j, term := range op.OrderBy {
			cmp := value.CmpSortable(keys[ra][j], keys[rb][j])
			if term.Direction == parser.OrderDesc {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})

	out := make([]Row, len(rows))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out, nil
}

// sortEnv extends row's bindings with its projected Values under their
// column aliases, so an ORDER BY term that bare-references a RETURN
// alias resolves to the projected value rather than failing as an
// unbound variable.
func sortEnv(row Row, columns []string) pattern.Bindings {
	if len(columns) == 0 || len(row.Values) != len(columns) {
		return row.Bindings
	}
	env := row.Bindings.Clone()
	for i, col := range columns {
		env.Insert(col, row.Values[i])
	}
	return env
}

func (c *Context) execLimitOffset(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	rows, err := c.inputRows(op, initial)
	if err != nil {
		return nil, err
	}

	offset := int64(0)
	if op.Offset != nil {
		offset = *op.Offset
	}
	if offset >= int64(len(rows)) {
		return nil, nil
	}
	rows = rows[offset:]

	if op.Limit != nil && *op.Limit < int64(len(rows)) {
		rows = rows[:*op.Limit]
	}
	return rows, nil
}

func (c *Context) execCrossJoin(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	left, err := c.Execute(op.Left, initial)
	if err != nil {
		return nil, err
	}
	right, err := c.Execute(op.Right, initial)
	if err != nil {
		return nil, err
	}

	var out []Row
	for _, l := range left {
		for _, r := range right {
			merged := l.Bindings.Clone()
			for _, name := range r.Bindings.Names() {
				v, _ := r.Bindings.Get(name)
				merged.Insert(name, v)
			}
			out = append(out, Row{Bindings: merged})
		}
	}
	return out, nil
}

func (c *Context) execLeftOuterJoin(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	left, err := c.Execute(op.Left, initial)
	if err != nil {
		return nil, err
	}

	var out []Row
	for _, l := range left {
		right, err := c.Execute(op.Right, l.Bindings)
		if err != nil {
			return nil, err
		}

		if op.JoinCondition != nil {
			filtered := right[:0]
			for _, r := range right {
				ok, err := c.eval.EvalBool(op.JoinCondition, r.Bindings)
				if err != nil {
					return nil, err
				}
				if ok {
					filtered = append(filtered, r)
				}
			}
			right = filtered
		}

		if len(right) == 0 {
			b := l.Bindings.Clone()
			for _, v := range op.RightVars {
				b.Insert(v, value.Null())
			}
			out = append(out, Row{Bindings: b})
			continue
		}
		out = append(out, right...)
	}
	return out, nil
}

func (c *Context) execDistinct(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	rows, err := c.inputRows(op, initial)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rows))
	var out []Row
	for _, row := range rows {
		key := rowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, row)
	}
	return out, nil
}

func rowKey(row Row) string {
	if len(row.Values) > 0 {
		return fmt.Sprint(row.Values)
	}
	names := row.Bindings.Names()
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		v, _ := row.Bindings.Get(n)
		parts[i] = n + "=" + v.String()
	}
	return fmt.Sprint(parts)
}
