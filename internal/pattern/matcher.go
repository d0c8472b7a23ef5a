/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pattern

import (
	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// Matcher runs a CompiledPattern against a graph.Store, expanding one
// candidate Bindings row into zero or more rows per op.
type Matcher struct {
	reg   *registry.Registry
	store *graph.Store
	eval  *Evaluator
}

func NewMatcher(reg *registry.Registry, store *graph.Store) *Matcher {
	return &Matcher{reg: reg, store: store, eval: NewEvaluator(reg, store)}
}

// FindAll returns every complete binding row matching pattern, seeded
// from initial.
func (m *Matcher) FindAll(pattern *CompiledPattern, initial Bindings) ([]Bindings, error) {
	return m.FindAllWithInitial(pattern, initial)
}

// FindAllWithInitial is FindAll; the explicit name mirrors the
// initial-seeded entry point used when a subpattern (EXISTS, NOT
// EXISTS) must start from variables already bound by an outer match.
func (m *Matcher) FindAllWithInitial(pattern *CompiledPattern, initial Bindings) ([]Bindings, error) {
	candidates := []Bindings{initial}
	var symmetricEdgeVars []string

	for _, op := range pattern.Ops {
		var next []Bindings
		for _, b := range candidates {
			results, err := m.executeOp(op, b)
			if err != nil {
				return nil, err
			}
			next = append(next, results...)
		}
		candidates = next

		if op.Kind == OpFollowEdge && op.EdgeVar != "" {
			if et, ok := m.reg.GetEdgeType(op.EdgeTypeID); ok && et.Symmetric {
				symmetricEdgeVars = append(symmetricEdgeVars, op.EdgeVar)
			}
		}
	}

	for _, edgeVar := range symmetricEdgeVars {
		candidates = dedupSymmetric(candidates, edgeVar)
	}

	return candidates, nil
}

// Exists reports whether pattern has at least one match starting from
// initial. It computes the full match set and does not stop at the
// first complete row.
func (m *Matcher) Exists(pattern *CompiledPattern, initial Bindings) (bool, error) {
	matches, err := m.FindAllWithInitial(pattern, initial)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// dedupSymmetric collapses a cross-matched symmetric edge (forward and
// reverse direction both producing a row for the same EdgeId) down to a
// single row, preferring the forward (non-reverse-marked) match.
func dedupSymmetric(candidates []Bindings, edgeVar string) []Bindings {
	reverseMarker := reversePrefix + edgeVar
	byEdge := map[value.EdgeId][]Bindings{}
	var rest []Bindings

	for _, b := range candidates {
		v, ok := b.Get(edgeVar)
		if !ok {
			rest = append(rest, b)
			continue
		}
		id, ok := v.AsEdgeRef()
		if !ok {
			rest = append(rest, b)
			continue
		}
		byEdge[id] = append(byEdge[id], b)
	}

	out := rest
	for _, rows := range byEdge {
		if len(rows) == 1 {
			out = append(out, rows[0])
			continue
		}
		var forward, reverse *Bindings
		for i := range rows {
			if _, marked := rows[i].Get(reverseMarker); marked {
				reverse = &rows[i]
			} else {
				forward = &rows[i]
			}
		}
		if forward != nil {
			out = append(out, *forward)
		} else if reverse != nil {
			out = append(out, *reverse)
		}
	}
	return out
}

func (m *Matcher) executeOp(op PatternOp, b Bindings) ([]Bindings, error) {
	switch op.Kind {
	case OpScanNodes:
		return m.execScanNodes(op, b)
	case OpFollowEdge:
		return m.execFollowEdge(op, b)
	case OpCheckEdge:
		return m.execCheckEdge(op, b)
	case OpFilter:
		return m.execFilter(op, b)
	case OpNotExists:
		return m.execNotExists(op, b)
	default:
		return nil, mewerr.New(mewerr.ErrExprTypeError, "unknown pattern op")
	}
}

func (m *Matcher) execScanNodes(op PatternOp, b Bindings) ([]Bindings, error) {
	typeIDs := append([]value.TypeId{op.TypeID}, m.reg.GetSubtypes(op.TypeID)...)

	var out []Bindings
	for _, tid := range typeIDs {
		for _, n := range m.store.NodesByType(tid) {
			out = append(out, b.ExtendWith(op.Var, value.NodeRef(n.ID)))
		}
	}
	return out, nil
}

func (m *Matcher) execFollowEdge(op PatternOp, b Bindings) ([]Bindings, error) {
	if len(op.FromVars) == 0 {
		return []Bindings{b}, nil
	}

	sourceVal, ok := b.Get(op.FromVars[0])
	if !ok {
		return nil, mewerr.New(mewerr.ErrUnboundVariable, op.FromVars[0])
	}
	sourceID, ok := sourceVal.AsNodeRef()
	if !ok {
		return nil, mewerr.New(mewerr.ErrExprTypeError, op.FromVars[0]+" is not a node reference")
	}

	var out []Bindings
	for _, edge := range m.store.EdgesFrom(sourceID, &op.EdgeTypeID) {
		if rowMatchesTargets(b, op.FromVars, edge.Targets, false) {
			out = append(out, extendWithEdge(b, op.EdgeVar, edge.ID, false))
		}
	}

	et, ok := m.reg.GetEdgeType(op.EdgeTypeID)
	if ok && et.Symmetric && len(op.FromVars) == 2 {
		for _, edge := range m.store.EdgesTo(sourceID, &op.EdgeTypeID) {
			if rowMatchesTargets(b, op.FromVars, edge.Targets, true) {
				out = append(out, extendWithEdge(b, op.EdgeVar, edge.ID, true))
			}
		}
	}

	return out, nil
}

// rowMatchesTargets checks that every already-bound var in fromVars
// agrees with edge's target tuple at the matching position. reverse
// swaps the two positions, used for a symmetric edge's reverse search.
func rowMatchesTargets(b Bindings, fromVars []string, targets []value.NodeId, reverse bool) bool {
	for i, v := range fromVars {
		pos := i
		if reverse {
			pos = len(targets) - 1 - i
		}
		val, ok := b.Get(v)
		if !ok {
			continue
		}
		id, ok := val.AsNodeRef()
		if !ok {
			return false
		}
		if pos < 0 || pos >= len(targets) || targets[pos] != id {
			return false
		}
	}
	return true
}

func extendWithEdge(b Bindings, edgeVar string, id value.EdgeId, reverse bool) Bindings {
	if edgeVar == "" {
		return b.Clone()
	}
	out := b.ExtendWith(edgeVar, value.EdgeRef(id))
	if reverse {
		out.Insert(reversePrefix+edgeVar, value.Bool(true))
	}
	return out
}

func (m *Matcher) execCheckEdge(op PatternOp, b Bindings) ([]Bindings, error) {
	bound := make([]*value.NodeId, len(op.TargetVars))
	firstBound := -1

	for i, v := range op.TargetVars {
		if v == "_" {
			continue
		}
		val, ok := b.Get(v)
		if !ok {
			return nil, mewerr.New(mewerr.ErrUnboundVariable, v)
		}
		id, ok := val.AsNodeRef()
		if !ok {
			return nil, mewerr.New(mewerr.ErrExprTypeError, v+" is not a node reference")
		}
		bound[i] = &id
		if firstBound == -1 {
			firstBound = i
		}
	}

	if firstBound == -1 {
		// Every target is a wildcard: there is no node to pivot the
		// adjacency index from, so no candidate edges can be produced.
		return nil, nil
	}

	var edges []*graph.Edge
	if firstBound == 0 {
		edges = m.store.EdgesFrom(*bound[0], &op.EdgeTypeID)
	} else {
		edges = m.store.EdgesTo(*bound[firstBound], &op.EdgeTypeID)
	}

	for _, edge := range edges {
		match := true
		for i, id := range bound {
			if id == nil {
				continue
			}
			if i >= len(edge.Targets) || edge.Targets[i] != *id {
				match = false
				break
			}
		}
		if match {
			return []Bindings{b.Clone()}, nil
		}
	}
	return nil, nil
}

func (m *Matcher) execFilter(op PatternOp, b Bindings) ([]Bindings, error) {
	ok, err := m.eval.EvalBool(op.Condition, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return []Bindings{b}, nil
}

func (m *Matcher) execNotExists(op PatternOp, b Bindings) ([]Bindings, error) {
	matches, err := m.FindAllWithInitial(op.Subpattern, b.Clone())
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		return nil, nil
	}
	return []Bindings{b}, nil
}
