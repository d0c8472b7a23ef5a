/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package session

import (
	"strconv"

	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/query"
	"github.com/bdjafer/mew/internal/value"
)

// inspect looks up a bare #id against the store, preferring a node match
// over an edge match, and shapes either its declared RETURN projections
// or (with no RETURN clause) a full attribute dump. An id resolving to
// neither a live node nor edge reports {found: false} rather than an error.
func (s *Session) inspect(stmt *parser.InspectStmt) (*query.QueryResult, error) {
	raw, err := strconv.ParseUint(stmt.ID, 10, 64)
	if err != nil {
		return notFoundResult(), nil
	}

	if node, ok := s.store.GetNode(value.NodeId(raw)); ok {
		typeName := "Unknown"
		if def, ok := s.reg.GetType(node.Type); ok {
			typeName = def.Name
		}
		return inspectNode(stmt, node, value.NodeId(raw), typeName), nil
	}
	if edge, ok := s.store.GetEdge(value.EdgeId(raw)); ok {
		typeName := "Unknown"
		if def, ok := s.reg.GetEdgeType(edge.Type); ok {
			typeName = def.Name
		}
		return inspectEdge(stmt, edge, value.EdgeId(raw), typeName), nil
	}
	return notFoundResult(), nil
}

func notFoundResult() *query.QueryResult {
	return &query.QueryResult{
		Columns: []string{"found"},
		Rows:    []query.QueryRow{{Values: []value.Value{value.Bool(false)}}},
	}
}

func inspectNode(stmt *parser.InspectStmt, n *graph.Node, id value.NodeId, typeName string) *query.QueryResult {
	self := value.NodeRef(id)
	if stmt.Projections == nil {
		cols := []string{"_type", "_id"}
		vals := []value.Value{value.String(typeName), self}
		for attr, v := range n.Attrs {
			cols = append(cols, attr)
			vals = append(vals, v)
		}
		return &query.QueryResult{Columns: cols, Rows: []query.QueryRow{{Values: vals}}}
	}

	var cols []string
	var vals []value.Value
	for _, p := range stmt.Projections {
		name := projectionName(p)
		switch name {
		case "_type":
			cols = append(cols, name)
			vals = append(vals, value.String(typeName))
		case "_id":
			cols = append(cols, name)
			vals = append(vals, self)
		case "*":
			for attr, v := range n.Attrs {
				cols = append(cols, attr)
				vals = append(vals, v)
			}
		default:
			cols = append(cols, name)
			if v, ok := n.Attrs[name]; ok {
				vals = append(vals, v)
			} else {
				vals = append(vals, value.Null())
			}
		}
	}
	return &query.QueryResult{Columns: cols, Rows: []query.QueryRow{{Values: vals}}}
}

func inspectEdge(stmt *parser.InspectStmt, e *graph.Edge, id value.EdgeId, typeName string) *query.QueryResult {
	self := value.EdgeRef(id)
	if stmt.Projections == nil {
		cols := []string{"_type", "_id"}
		vals := []value.Value{value.String(typeName), self}
		for attr, v := range e.Attrs {
			cols = append(cols, attr)
			vals = append(vals, v)
		}
		return &query.QueryResult{Columns: cols, Rows: []query.QueryRow{{Values: vals}}}
	}

	var cols []string
	var vals []value.Value
	for _, p := range stmt.Projections {
		name := projectionName(p)
		switch name {
		case "_type":
			cols = append(cols, name)
			vals = append(vals, value.String(typeName))
		case "_id":
			cols = append(cols, name)
			vals = append(vals, self)
		case "*":
			for attr, v := range e.Attrs {
				cols = append(cols, attr)
				vals = append(vals, v)
			}
		default:
			cols = append(cols, name)
			if v, ok := e.Attrs[name]; ok {
				vals = append(vals, v)
			} else {
				vals = append(vals, value.Null())
			}
		}
	}
	return &query.QueryResult{Columns: cols, Rows: []query.QueryRow{{Values: vals}}}
}

// projectionName resolves a RETURN projection to its output column name:
// an explicit alias, else the bare variable name, else the attribute name
// of a property access, else "?".
func projectionName(p parser.Projection) string {
	if p.Alias != "" {
		return p.Alias
	}
	switch p.Expr.K {
	case parser.ExprVar:
		return p.Expr.Name
	case parser.ExprPropertyAccess:
		return p.Expr.Name
	default:
		return "?"
	}
}
