/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mutation

import (
	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/value"
)

// resolveTargetAsNode resolves a KILL target known to name a node.
func (x *Executor) resolveTargetAsNode(t parser.Target, b pattern.Bindings) (value.NodeId, error) {
	switch t.Kind {
	case parser.TargetVar:
		v, ok := b.Get(t.Var)
		if !ok {
			return 0, mewerr.New(mewerr.ErrUnboundVariable, t.Var)
		}
		id, ok := v.AsNodeRef()
		if !ok {
			return 0, mewerr.New(mewerr.ErrTargetTypeMismatch, t.Var+" is not a node")
		}
		return id, nil
	case parser.TargetID:
		n, err := parseID(t.ID)
		if err != nil {
			return 0, err
		}
		return value.NodeId(n), nil
	case parser.TargetPattern:
		v, err := x.resolveSinglePattern(t.Pattern)
		if err != nil {
			return 0, err
		}
		id, ok := v.AsNodeRef()
		if !ok {
			return 0, mewerr.New(mewerr.ErrTargetTypeMismatch, "pattern target is not a node")
		}
		return id, nil
	default:
		return 0, mewerr.New(mewerr.ErrTargetTypeMismatch, "an edge pattern cannot resolve to a node")
	}
}

// resolveTargetAsEdge resolves an UNLINK target known to name an edge.
func (x *Executor) resolveTargetAsEdge(t parser.Target, b pattern.Bindings) (value.EdgeId, error) {
	switch t.Kind {
	case parser.TargetVar:
		v, ok := b.Get(t.Var)
		if !ok {
			return 0, mewerr.New(mewerr.ErrUnboundVariable, t.Var)
		}
		id, ok := v.AsEdgeRef()
		if !ok {
			return 0, mewerr.New(mewerr.ErrTargetTypeMismatch, t.Var+" is not an edge")
		}
		return id, nil
	case parser.TargetID:
		n, err := parseID(t.ID)
		if err != nil {
			return 0, err
		}
		return value.EdgeId(n), nil
	case parser.TargetPattern:
		v, err := x.resolveSinglePattern(t.Pattern)
		if err != nil {
			return 0, err
		}
		id, ok := v.AsEdgeRef()
		if !ok {
			return 0, mewerr.New(mewerr.ErrTargetTypeMismatch, "pattern target is not an edge")
		}
		return id, nil
	case parser.TargetEdgePattern:
		return x.resolveEdgeByPattern(t, b)
	default:
		return 0, mewerr.New(mewerr.ErrTargetTypeMismatch, "unsupported edge target")
	}
}

// resolveTargetAny resolves a SET target, which may name either a node
// or an edge.
func (x *Executor) resolveTargetAny(t parser.Target, b pattern.Bindings) (value.EntityId, error) {
	switch t.Kind {
	case parser.TargetVar:
		v, ok := b.Get(t.Var)
		if !ok {
			return value.EntityId{}, mewerr.New(mewerr.ErrUnboundVariable, t.Var)
		}
		if id, ok := v.AsNodeRef(); ok {
			return value.NewNodeEntity(id), nil
		}
		if id, ok := v.AsEdgeRef(); ok {
			return value.NewEdgeEntity(id), nil
		}
		return value.EntityId{}, mewerr.New(mewerr.ErrTargetTypeMismatch, t.Var+" is not a node or edge")
	case parser.TargetID:
		n, err := parseID(t.ID)
		if err != nil {
			return value.EntityId{}, err
		}
		if _, ok := x.store.GetNode(value.NodeId(n)); ok {
			return value.NewNodeEntity(value.NodeId(n)), nil
		}
		if _, ok := x.store.GetEdge(value.EdgeId(n)); ok {
			return value.NewEdgeEntity(value.EdgeId(n)), nil
		}
		return value.EntityId{}, mewerr.New(mewerr.ErrEntityNotFound, "no node or edge with that id")
	case parser.TargetPattern:
		v, err := x.resolveSinglePattern(t.Pattern)
		if err != nil {
			return value.EntityId{}, err
		}
		if id, ok := v.AsNodeRef(); ok {
			return value.NewNodeEntity(id), nil
		}
		if id, ok := v.AsEdgeRef(); ok {
			return value.NewEdgeEntity(id), nil
		}
		return value.EntityId{}, mewerr.New(mewerr.ErrTargetTypeMismatch, "pattern target is not a node or edge")
	case parser.TargetEdgePattern:
		id, err := x.resolveEdgeByPattern(t, b)
		if err != nil {
			return value.EntityId{}, err
		}
		return value.NewEdgeEntity(id), nil
	default:
		return value.EntityId{}, mewerr.New(mewerr.ErrTargetTypeMismatch, "unsupported target")
	}
}

// resolveSinglePattern runs an inline {MATCH ... RETURN x} target
// pattern and requires it to yield exactly one row of exactly one
// column, per the grammar's "yielding exactly one binding" contract.
func (x *Executor) resolveSinglePattern(m *parser.MatchStmt) (value.Value, error) {
	res, err := x.query.ExecuteMatch(m)
	if err != nil {
		return value.Value{}, err
	}
	if len(res.Rows) != 1 || len(res.Rows[0].Values) != 1 {
		return value.Value{}, mewerr.New(mewerr.ErrEntityNotFound, "target pattern must match exactly one entity")
	}
	return res.Rows[0].Values[0], nil
}

// resolveEdgeByPattern resolves a `edge_type(a, b, ...)` target by
// searching edges_from(a, edge_type) for an edge whose target tuple
// matches every resolved position, per spec's session-coordinator
// resolution rule for KILL/UNLINK edge-pattern targets. A symmetric
// edge type also accepts the reversed tuple, since it is stored once.
func (x *Executor) resolveEdgeByPattern(t parser.Target, b pattern.Bindings) (value.EdgeId, error) {
	et, ok := x.reg.GetEdgeTypeByName(t.EdgeType)
	if !ok {
		return 0, mewerr.New(mewerr.ErrUnknownEdgeType, t.EdgeType)
	}
	if len(t.EdgeTargets) != et.Arity() {
		return 0, mewerr.New(mewerr.ErrEdgeArityMismatch, t.EdgeType)
	}

	ids := make([]value.NodeId, len(t.EdgeTargets))
	for i, name := range t.EdgeTargets {
		v, ok := b.Get(name)
		if !ok {
			return 0, mewerr.New(mewerr.ErrUnboundVariable, name)
		}
		id, ok := v.AsNodeRef()
		if !ok {
			return 0, mewerr.New(mewerr.ErrTargetTypeMismatch, name+" is not a node")
		}
		ids[i] = id
	}

	etID := et.ID
	for _, e := range x.store.EdgesFrom(ids[0], &etID) {
		if tupleEqual(e.Targets, ids) {
			return e.ID, nil
		}
	}
	if et.Symmetric && len(ids) == 2 {
		reversed := []value.NodeId{ids[1], ids[0]}
		for _, e := range x.store.EdgesFrom(ids[1], &etID) {
			if tupleEqual(e.Targets, reversed) {
				return e.ID, nil
			}
		}
	}
	return 0, mewerr.New(mewerr.ErrEntityNotFound, "no matching edge")
}

func tupleEqual(a, b []value.NodeId) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
