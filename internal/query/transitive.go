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
	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/value"
)

type frontier struct {
	node  value.NodeId
	depth int64
	path  []value.EntityId
}

// execTransitiveClosure runs a breadth-first search per starting row,
// yielding one row per reachable node whose depth falls within
// [MinDepth, MaxDepth]; a visited set prevents revisiting a node
// within the same FOLLOW leg, which is what makes a cyclic graph
// terminate.
func (c *Context) execTransitiveClosure(op *PlanOp, initial pattern.Bindings) ([]Row, error) {
	starts, err := c.walkStarts(op, initial)
	if err != nil {
		return nil, err
	}

	var out []Row
	for _, start := range starts {
		rows, err := c.bfs(op, start)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

type walkStart struct {
	bindings pattern.Bindings
	node     value.NodeId
	path     []value.EntityId
}

func (c *Context) walkStarts(op *PlanOp, initial pattern.Bindings) ([]walkStart, error) {
	if op.Input == nil {
		v, err := c.eval.Eval(op.StartExpr, initial)
		if err != nil {
			return nil, err
		}
		id, ok := v.AsNodeRef()
		if !ok {
			return nil, mewerr.New(mewerr.ErrExprTypeError, "WALK FROM expression is not a node reference")
		}
		return []walkStart{{
			bindings: initial.Clone(),
			node:     id,
			path:     []value.EntityId{value.NewNodeEntity(id)},
		}}, nil
	}

	rows, err := c.Execute(op.Input, initial)
	if err != nil {
		return nil, err
	}

	starts := make([]walkStart, 0, len(rows))
	for _, row := range rows {
		v, ok := row.Bindings.Get(op.StartVar)
		if !ok {
			continue
		}
		id, ok := v.AsNodeRef()
		if !ok {
			continue
		}
		starts = append(starts, walkStart{bindings: row.Bindings, node: id, path: row.Path})
	}
	return starts, nil
}

func (c *Context) bfs(op *PlanOp, start walkStart) ([]Row, error) {
	visited := map[value.NodeId]bool{start.node: true}
	queue := []frontier{{node: start.node, depth: 0, path: start.path}}

	var out []Row
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.depth >= op.MinDepth && cur.depth <= op.MaxDepth {
			b := start.bindings.ExtendWith(op.StartVar, value.NodeRef(cur.node))
			out = append(out, Row{Bindings: b, Path: cur.path})
		}
		if cur.depth >= op.MaxDepth {
			continue
		}

		for _, nb := range c.expand(op, cur.node) {
			if visited[nb.node] {
				continue
			}
			visited[nb.node] = true
			path := append(append([]value.EntityId(nil), cur.path...), value.NewEdgeEntity(nb.edge), value.NewNodeEntity(nb.node))
			queue = append(queue, frontier{node: nb.node, depth: cur.depth + 1, path: path})
		}
	}
	return out, nil
}

type neighbor struct {
	edge value.EdgeId
	node value.NodeId
}

func (c *Context) expand(op *PlanOp, node value.NodeId) []neighbor {
	var out []neighbor
	if op.Direction == parser.WalkOutbound || op.Direction == parser.WalkAny {
		out = append(out, c.expandOutbound(op, node)...)
	}
	if op.Direction == parser.WalkInbound || op.Direction == parser.WalkAny {
		out = append(out, c.expandInbound(op, node)...)
	}
	return out
}

func (c *Context) expandOutbound(op *PlanOp, node value.NodeId) []neighbor {
	var out []neighbor
	for _, e := range c.edgesFrom(op, node) {
		for pos, t := range e.Targets {
			if pos == 0 {
				continue
			}
			out = append(out, neighbor{edge: e.ID, node: t})
		}
	}
	return out
}

func (c *Context) expandInbound(op *PlanOp, node value.NodeId) []neighbor {
	var out []neighbor
	for _, e := range c.edgesTo(op, node) {
		if len(e.Targets) == 0 {
			continue
		}
		out = append(out, neighbor{edge: e.ID, node: e.Targets[0]})
	}
	return out
}

func (c *Context) edgesFrom(op *PlanOp, node value.NodeId) []*graph.Edge {
	if op.AnyType {
		return c.store.EdgesFrom(node, nil)
	}
	var out []*graph.Edge
	for _, et := range op.EdgeTypes {
		et := et
		out = append(out, c.store.EdgesFrom(node, &et)...)
	}
	return out
}

func (c *Context) edgesTo(op *PlanOp, node value.NodeId) []*graph.Edge {
	if op.AnyType {
		return c.store.EdgesTo(node, nil)
	}
	var out []*graph.Edge
	for _, et := range op.EdgeTypes {
		et := et
		out = append(out, c.store.EdgesTo(node, &et)...)
	}
	return out
}
