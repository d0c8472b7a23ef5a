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
	"github.com/bdjafer/mew/internal/value"
)

// Set resolves target to a node or an edge and applies the assignments
// in place, validating each against the owning type's attribute
// constraints with the target's own current value excluded from any
// uniqueness probe.
func (x *Executor) Set(stmt *parser.SetStmt, b pattern.Bindings) (*Result, error) {
	entity, err := x.resolveTargetAny(stmt.Target, b)
	if err != nil {
		return nil, err
	}

	values, err := x.evalAssignments(stmt.Assignments, b)
	if err != nil {
		return nil, err
	}

	if entity.Kind == value.EntityNode {
		return x.setNode(stmt, entity.Node, values)
	}
	return x.setEdge(stmt, entity.Edge, values)
}

func (x *Executor) setNode(stmt *parser.SetStmt, id value.NodeId, values map[string]value.Value) (*Result, error) {
	n, ok := x.store.GetNode(id)
	if !ok {
		return nil, mewerr.New(mewerr.ErrEntityNotFound, "no such node")
	}
	td, ok := x.reg.GetType(n.Type)
	if !ok {
		return nil, mewerr.New(mewerr.ErrUnknownType, "")
	}

	for name, v := range values {
		def, ok := td.Attributes[name]
		if !ok {
			return nil, mewerr.New(mewerr.ErrUnknownAttribute, name)
		}
		if err := validateAttr(def, v); err != nil {
			return nil, err
		}
		if def.Unique && attrUniqueViolationNode(x.store, td.ID, name, v, id) {
			return nil, mewerr.New(mewerr.ErrUniqueViolation, name)
		}
	}

	for name, v := range values {
		if err := x.store.SetNodeAttr(id, name, v); err != nil {
			return nil, err
		}
	}

	res := &Result{NodesAffected: 1}
	if stmt.Returning != nil {
		updated, _ := x.store.GetNode(id)
		cols, vals := x.returningNodeRow(stmt.Returning, updated)
		res.Returning = singleNodeReturning(cols, vals)
	}
	return res, nil
}

func (x *Executor) setEdge(stmt *parser.SetStmt, id value.EdgeId, values map[string]value.Value) (*Result, error) {
	e, ok := x.store.GetEdge(id)
	if !ok {
		return nil, mewerr.New(mewerr.ErrEntityNotFound, "no such edge")
	}
	et, ok := x.reg.GetEdgeType(e.Type)
	if !ok {
		return nil, mewerr.New(mewerr.ErrUnknownEdgeType, "")
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

	for name, v := range values {
		if err := x.store.SetEdgeAttr(id, name, v); err != nil {
			return nil, err
		}
	}

	res := &Result{EdgesAffected: 1}
	if stmt.Returning != nil {
		updated, _ := x.store.GetEdge(id)
		cols, vals := x.returningEdgeRow(stmt.Returning, updated)
		res.Returning = singleNodeReturning(cols, vals)
	}
	return res, nil
}

// attrUniqueViolationNode reports whether any node other than self
// already carries attr == v in typeID.
func attrUniqueViolationNode(store *graph.Store, typeID value.TypeId, attr string, v value.Value, self value.NodeId) bool {
	for _, n := range store.NodesByAttrEqual(typeID, attr, v) {
		if n.ID != self {
			return true
		}
	}
	return false
}
