/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mutation

import (
	"sort"

	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/query"
	"github.com/bdjafer/mew/internal/value"
)

// returningNodeRow builds one RETURNING output row for an affected node.
// ReturningAll lists every attribute the node's type declares (filled
// with Null where unset) so every row of a multi-node RETURNING * has
// the same columns; ReturningFields looks up exactly the named fields,
// "id" included.
func (x *Executor) returningNodeRow(ret *parser.ReturningClause, n *graph.Node) ([]string, []value.Value) {
	switch ret.Kind {
	case parser.ReturningID:
		return []string{"id"}, []value.Value{value.NodeRef(n.ID)}
	case parser.ReturningAll:
		td, _ := x.reg.GetType(n.Type)
		names := make([]string, 0, len(td.Attributes))
		for name := range td.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		cols := append([]string{"id"}, names...)
		vals := make([]value.Value, len(cols))
		vals[0] = value.NodeRef(n.ID)
		for i, name := range names {
			vals[i+1] = attrOrNull(n.Attrs, name)
		}
		return cols, vals
	default:
		cols := append([]string(nil), ret.Fields...)
		vals := make([]value.Value, len(cols))
		for i, f := range cols {
			if f == "id" {
				vals[i] = value.NodeRef(n.ID)
				continue
			}
			vals[i] = attrOrNull(n.Attrs, f)
		}
		return cols, vals
	}
}

func (x *Executor) returningEdgeRow(ret *parser.ReturningClause, e *graph.Edge) ([]string, []value.Value) {
	switch ret.Kind {
	case parser.ReturningID:
		return []string{"id"}, []value.Value{value.EdgeRef(e.ID)}
	case parser.ReturningAll:
		et, _ := x.reg.GetEdgeType(e.Type)
		names := make([]string, 0, len(et.Attributes))
		for name := range et.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		cols := append([]string{"id"}, names...)
		vals := make([]value.Value, len(cols))
		vals[0] = value.EdgeRef(e.ID)
		for i, name := range names {
			vals[i+1] = attrOrNull(e.Attrs, name)
		}
		return cols, vals
	default:
		cols := append([]string(nil), ret.Fields...)
		vals := make([]value.Value, len(cols))
		for i, f := range cols {
			if f == "id" {
				vals[i] = value.EdgeRef(e.ID)
				continue
			}
			vals[i] = attrOrNull(e.Attrs, f)
		}
		return cols, vals
	}
}

func attrOrNull(attrs map[string]value.Value, name string) value.Value {
	if v, ok := attrs[name]; ok {
		return v
	}
	return value.Null()
}

func singleNodeReturning(cols []string, vals []value.Value) *query.QueryResult {
	return &query.QueryResult{Columns: cols, Rows: []query.QueryRow{{Values: vals}}}
}
