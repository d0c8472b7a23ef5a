/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mutation

import (
	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// linkPosition is one resolved target position: the raw node id slot
// stored on the edge, and whether that slot is a node or a cast edge
// id (a higher-order target).
type linkPosition struct {
	nodeSlot value.NodeId
	isEdge   bool
	edgeID   value.EdgeId
	typeID   value.TypeId
	edgeType value.EdgeTypeId
}

// Link creates one edge of the named type, pre-checking arity, per-
// position type compatibility, no_self, per-position cardinality,
// uniqueness and acyclicity before the first store write.
func (x *Executor) Link(stmt *parser.LinkStmt, b pattern.Bindings) (*Result, error) {
	et, ok := x.reg.GetEdgeTypeByName(stmt.EdgeType)
	if !ok {
		return nil, mewerr.New(mewerr.ErrUnknownEdgeType, stmt.EdgeType)
	}
	if len(stmt.Targets) != et.Arity() {
		return nil, mewerr.New(mewerr.ErrEdgeArityMismatch, stmt.EdgeType)
	}

	positions := make([]linkPosition, len(stmt.Targets))
	for i, t := range stmt.Targets {
		pos, err := x.resolveLinkPosition(et.Params[i], t, b)
		if err != nil {
			return nil, err
		}
		positions[i] = pos
	}

	if et.NoSelf {
		for i := 0; i < len(positions); i++ {
			for j := i + 1; j < len(positions); j++ {
				if positions[i].nodeSlot == positions[j].nodeSlot && positions[i].isEdge == positions[j].isEdge {
					return nil, mewerr.New(mewerr.ErrNoSelf, stmt.EdgeType)
				}
			}
		}
	}

	for i, param := range et.Params {
		if err := checkCardinality(x.store, et.ID, i, positions, param.Cardinality); err != nil {
			return nil, err
		}
	}

	targets := make([]value.NodeId, len(positions))
	for i, p := range positions {
		targets[i] = p.nodeSlot
	}

	if et.Unique && edgeTupleExists(x.store, et, targets) {
		return nil, mewerr.New(mewerr.ErrUniqueViolation, stmt.EdgeType)
	}

	if et.Acyclic && len(targets) == 2 && pathExists(x.store, et.ID, targets[1], targets[0]) {
		return nil, mewerr.New(mewerr.ErrAcyclic, stmt.EdgeType)
	}

	values, err := x.evalAssignments(stmt.Attrs, b)
	if err != nil {
		return nil, err
	}
	for name, v := range values {
		def, ok := et.Attributes[name]
		if !ok {
			return nil, mewerr.New(mewerr.ErrUnknownAttribute, name)
		}
		if err := validateAttr(def, v); err != nil {
			return nil, err
		}
	}
	for name, def := range et.Attributes {
		if _, ok := values[name]; ok {
			continue
		}
		if def.Default != nil {
			values[name] = *def.Default
			continue
		}
		if def.Required {
			return nil, mewerr.New(mewerr.ErrRequiredMissing, name)
		}
	}

	var higherOrder map[int]bool
	for i, p := range positions {
		if p.isEdge {
			if higherOrder == nil {
				higherOrder = make(map[int]bool, len(positions))
			}
			higherOrder[i] = true
		}
	}

	e, err := x.store.CreateEdgeHigherOrder(et.ID, targets, higherOrder, values)
	if err != nil {
		return nil, err
	}

	if stmt.Var != "" {
		b.Insert(stmt.Var, value.EdgeRef(e.ID))
	}

	res := &Result{EdgesAffected: 1}
	if stmt.Returning != nil {
		cols, vals := x.returningEdgeRow(stmt.Returning, e)
		res.Returning = singleNodeReturning(cols, vals)
	}
	return res, nil
}

// resolveLinkPosition resolves one LINK target position, distinguishing
// a plain node target from a higher-order target (the param's type
// constraint names an edge type, so the resolved id is an EdgeId cast
// into the NodeId slot the store expects).
func (x *Executor) resolveLinkPosition(param registry.EdgeParam, t parser.TargetRef, b pattern.Bindings) (linkPosition, error) {
	if param.TypeConstraint != "any" {
		if et, ok := x.reg.GetEdgeTypeByName(param.TypeConstraint); ok {
			edgeID, err := x.resolveTargetRefAsEdge(t, b)
			if err != nil {
				return linkPosition{}, err
			}
			return linkPosition{nodeSlot: value.NodeId(edgeID), isEdge: true, edgeID: edgeID, edgeType: et.ID}, nil
		}
	}

	nodeID, typeID, err := x.resolveTargetRefAsNode(t, b)
	if err != nil {
		return linkPosition{}, err
	}
	if param.TypeConstraint != "any" {
		wantType, ok := x.reg.GetTypeByName(param.TypeConstraint)
		if !ok {
			return linkPosition{}, mewerr.New(mewerr.ErrUnknownType, param.TypeConstraint)
		}
		if !x.reg.IsSubtype(typeID, wantType.ID) {
			return linkPosition{}, mewerr.New(mewerr.ErrTypeMismatch, param.Name)
		}
	}
	return linkPosition{nodeSlot: nodeID, typeID: typeID}, nil
}

func (x *Executor) resolveTargetRefAsNode(t parser.TargetRef, b pattern.Bindings) (value.NodeId, value.TypeId, error) {
	v, err := x.resolveTargetRefValue(t, b)
	if err != nil {
		return 0, 0, err
	}
	id, ok := v.AsNodeRef()
	if !ok {
		return 0, 0, mewerr.New(mewerr.ErrTargetTypeMismatch, "target is not a node")
	}
	n, ok := x.store.GetNode(id)
	if !ok {
		return 0, 0, mewerr.New(mewerr.ErrEntityNotFound, "no such node")
	}
	return id, n.Type, nil
}

func (x *Executor) resolveTargetRefAsEdge(t parser.TargetRef, b pattern.Bindings) (value.EdgeId, error) {
	v, err := x.resolveTargetRefValue(t, b)
	if err != nil {
		return 0, err
	}
	id, ok := v.AsEdgeRef()
	if !ok {
		return 0, mewerr.New(mewerr.ErrTargetTypeMismatch, "target is not an edge")
	}
	if _, ok := x.store.GetEdge(id); !ok {
		return 0, mewerr.New(mewerr.ErrEntityNotFound, "no such edge")
	}
	return id, nil
}

func (x *Executor) resolveTargetRefValue(t parser.TargetRef, b pattern.Bindings) (value.Value, error) {
	switch t.Kind {
	case parser.TargetVar:
		v, ok := b.Get(t.Var)
		if !ok {
			return value.Value{}, mewerr.New(mewerr.ErrUnboundVariable, t.Var)
		}
		return v, nil
	case parser.TargetID:
		n, err := parseID(t.ID)
		if err != nil {
			return value.Value{}, err
		}
		if node, ok := x.store.GetNode(value.NodeId(n)); ok {
			return value.NodeRef(node.ID), nil
		}
		if edge, ok := x.store.GetEdge(value.EdgeId(n)); ok {
			return value.EdgeRef(edge.ID), nil
		}
		return value.Value{}, mewerr.New(mewerr.ErrEntityNotFound, "no node or edge with that id")
	case parser.TargetPattern:
		return x.resolveSinglePattern(t.Pattern)
	default:
		return value.Value{}, mewerr.New(mewerr.ErrTargetTypeMismatch, "unsupported LINK target")
	}
}

// checkCardinality counts how many existing edges of et sit at param
// position i with the same node bound there, and rejects the new link
// if adding it would exceed the declared max (the min bound is only
// meaningful as a post-hoc graph invariant; LINK never checks it since
// the edge being created always raises the count).
func checkCardinality(store *graph.Store, et value.EdgeTypeId, pos int, positions []linkPosition, card registry.Cardinality) error {
	if card.Max == nil {
		return nil
	}
	node := positions[pos].nodeSlot
	var edges []*graph.Edge
	if pos == 0 {
		edges = store.EdgesFrom(node, &et)
	} else {
		edges = store.EdgesTo(node, &et)
	}
	count := 0
	for _, e := range edges {
		if pos < len(e.Targets) && e.Targets[pos] == node {
			count++
		}
	}
	if uint32(count)+1 > *card.Max {
		return mewerr.New(mewerr.ErrCardinality, "")
	}
	return nil
}

func edgeTupleExists(store *graph.Store, et registry.EdgeTypeDef, targets []value.NodeId) bool {
	for _, e := range store.EdgesByType(et.ID) {
		if tupleEqual(e.Targets, targets) {
			return true
		}
		if et.Symmetric && len(targets) == 2 && tupleEqual(e.Targets, []value.NodeId{targets[1], targets[0]}) {
			return true
		}
	}
	return false
}

// pathExists runs a breadth-first search along edgeType edges from
// start looking for goal, used to reject a binary edge that would
// close a cycle in an acyclic edge type.
func pathExists(store *graph.Store, edgeType value.EdgeTypeId, start, goal value.NodeId) bool {
	if start == goal {
		return true
	}
	seen := map[value.NodeId]bool{start: true}
	queue := []value.NodeId{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range store.EdgesFrom(cur, &edgeType) {
			if len(e.Targets) != 2 {
				continue
			}
			next := e.Targets[1]
			if next == goal {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
