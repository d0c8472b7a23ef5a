/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package graph is the in-memory property-graph store: node and edge
tables plus the five indexes (type, edge-type, adjacency, attribute,
higher-order) a Session's Graph keeps current as mutations apply.

The shape mirrors the teacher's Manager: a single struct guarding its
tables behind one mutex, with narrow typed accessors standing in for
the teacher's on-disk HTree-backed node/edge storage — this store has
no disk component, everything lives in Go maps for the lifetime of the
process.
*/
package graph

import (
	"sort"
	"sync"

	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// Node is one stored vertex.
type Node struct {
	ID    value.NodeId
	Type  value.TypeId
	Attrs map[string]value.Value
}

// Edge is one stored edge; Targets is the ordered tuple of node ids
// bound to the edge type's declared params.
type Edge struct {
	ID      value.EdgeId
	Type    value.EdgeTypeId
	Targets []value.NodeId
	Attrs   map[string]value.Value
}

type adjRef struct {
	Edge value.EdgeId
	Pos  int
}

type attrIndexEntry struct {
	Val value.Value
	Node value.NodeId
}

// Store is one Session's Graph: node/edge tables, the type and
// edge-type indexes, the per-node adjacency index, the per-(type,attr)
// range-scannable attribute index, and the higher-order index of edges
// that target another edge.
type Store struct {
	mu sync.RWMutex

	reg *registry.Registry

	nextNode value.NodeId
	nextEdge value.EdgeId

	nodes map[value.NodeId]*Node
	edges map[value.EdgeId]*Edge

	byType     map[value.TypeId]map[value.NodeId]struct{}
	byEdgeType map[value.EdgeTypeId]map[value.EdgeId]struct{}

	adjacency map[value.NodeId][]adjRef

	attrIndex map[attrIndexKey][]attrIndexEntry

	higherOrder map[value.EdgeId]map[value.EdgeId]struct{}
}

type attrIndexKey struct {
	Type value.TypeId
	Attr string
}

// New creates an empty Store bound to reg, consulted for the edge
// types' on-kill referential actions when a node is deleted.
func New(reg *registry.Registry) *Store {
	return &Store{
		reg:         reg,
		nextNode:    1,
		nextEdge:    1,
		nodes:       make(map[value.NodeId]*Node),
		edges:       make(map[value.EdgeId]*Edge),
		byType:      make(map[value.TypeId]map[value.NodeId]struct{}),
		byEdgeType:  make(map[value.EdgeTypeId]map[value.EdgeId]struct{}),
		adjacency:   make(map[value.NodeId][]adjRef),
		attrIndex:   make(map[attrIndexKey][]attrIndexEntry),
		higherOrder: make(map[value.EdgeId]map[value.EdgeId]struct{}),
	}
}

// CreateNode allocates a fresh id, inserts the row, and indexes it by
// type and by every attribute value supplied.
func (s *Store) CreateNode(typ value.TypeId, attrs map[string]value.Value) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextNode
	s.nextNode++

	n := &Node{ID: id, Type: typ, Attrs: copyAttrs(attrs)}
	s.nodes[id] = n

	s.indexNodeType(n)
	for name, v := range n.Attrs {
		s.indexAttrInsert(typ, name, v, id)
	}

	return n
}

func (s *Store) indexNodeType(n *Node) {
	if s.byType[n.Type] == nil {
		s.byType[n.Type] = make(map[value.NodeId]struct{})
	}
	s.byType[n.Type][n.ID] = struct{}{}
}

// GetNode returns a node by id.
func (s *Store) GetNode(id value.NodeId) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	return n, ok
}

// SetNodeAttr removes the old (type, name, value) index entry before
// recording the new one, mirroring spec's set_node_attr contract.
func (s *Store) SetNodeAttr(id value.NodeId, name string, v value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return mewerr.New(mewerr.ErrEntityNotFound, "node not found")
	}

	if old, had := n.Attrs[name]; had {
		s.indexAttrRemove(n.Type, name, old, id)
	}

	if v.IsNull() {
		delete(n.Attrs, name)
	} else {
		n.Attrs[name] = v
		s.indexAttrInsert(n.Type, name, v, id)
	}

	return nil
}

// SetEdgeAttr sets or clears one attribute on an edge. Edges carry no
// attribute index today, so unlike SetNodeAttr this is a direct map
// mutation under the store lock.
func (s *Store) SetEdgeAttr(id value.EdgeId, name string, v value.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.edges[id]
	if !ok {
		return mewerr.New(mewerr.ErrEntityNotFound, "edge not found")
	}

	if v.IsNull() {
		delete(e.Attrs, name)
	} else {
		e.Attrs[name] = v
	}

	return nil
}

// CreateEdge validates that every target exists, allocates an id, and
// inserts into the edge-type and adjacency indexes. Every target is
// treated as a plain node reference; use CreateEdgeHigherOrder when a
// position's param type constraint names an edge type instead.
func (s *Store) CreateEdge(typ value.EdgeTypeId, targets []value.NodeId, attrs map[string]value.Value) (*Edge, error) {
	return s.CreateEdgeHigherOrder(typ, targets, nil, attrs)
}

// CreateEdgeHigherOrder is CreateEdge, except the position index set
// named by higherOrder holds node ids that are really EdgeIds cast
// into the NodeId slot: those positions are validated and indexed
// against the edge table and the higher-order index instead of the
// node table, all within the same critical section as the new edge's
// own insert so the result is never observed half-registered.
func (s *Store) CreateEdgeHigherOrder(typ value.EdgeTypeId, targets []value.NodeId, higherOrder map[int]bool, attrs map[string]value.Value) (*Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for pos, t := range targets {
		if higherOrder[pos] {
			if _, ok := s.edges[value.EdgeId(t)]; !ok {
				return nil, mewerr.New(mewerr.ErrEntityNotFound, "higher-order edge target does not exist")
			}
			continue
		}
		if _, ok := s.nodes[t]; !ok {
			return nil, mewerr.New(mewerr.ErrEntityNotFound, "edge target does not exist")
		}
	}

	id := s.nextEdge
	s.nextEdge++

	e := &Edge{ID: id, Type: typ, Targets: append([]value.NodeId(nil), targets...), Attrs: copyAttrs(attrs)}
	s.edges[id] = e

	if s.byEdgeType[typ] == nil {
		s.byEdgeType[typ] = make(map[value.EdgeId]struct{})
	}
	s.byEdgeType[typ][id] = struct{}{}

	for pos, t := range targets {
		if higherOrder[pos] {
			about := value.EdgeId(t)
			if s.higherOrder[about] == nil {
				s.higherOrder[about] = make(map[value.EdgeId]struct{})
			}
			s.higherOrder[about][id] = struct{}{}
			continue
		}
		s.adjacency[t] = append(s.adjacency[t], adjRef{Edge: id, Pos: pos})
	}

	return e, nil
}

// GetEdge returns an edge by id.
func (s *Store) GetEdge(id value.EdgeId) (*Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[id]
	return e, ok
}

// DeleteEdge recursively removes any higher-order edges about it, then
// its own index entries and row.
func (s *Store) DeleteEdge(id value.EdgeId) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteEdgeLocked(id)
}

func (s *Store) deleteEdgeLocked(id value.EdgeId) error {
	e, ok := s.edges[id]
	if !ok {
		return mewerr.New(mewerr.ErrEntityNotFound, "edge not found")
	}

	for about := range s.higherOrder[id] {
		if err := s.deleteEdgeLocked(about); err != nil {
			return err
		}
	}
	delete(s.higherOrder, id)

	for _, about := range e.Targets {
		if ids, ok := s.higherOrder[value.EdgeId(about)]; ok {
			delete(ids, id)
		}
	}

	delete(s.byEdgeType[e.Type], id)
	for pos, t := range e.Targets {
		s.adjacency[t] = removeAdjRef(s.adjacency[t], id, pos)
	}

	delete(s.edges, id)
	return nil
}

// DeleteNode enumerates every edge referencing id via the adjacency
// index and applies the edge type's per-position referential action:
// Cascade and Unlink both remove the edge (together with any
// higher-order edges about it), Restrict aborts the whole deletion.
// Only once every reference is resolved is the node row removed.
func (s *Store) DeleteNode(id value.NodeId) error {
	return s.DeleteNodeWithOverride(id, nil)
}

// DeleteNodeWithOverride is DeleteNode, except when override is non-nil
// every referencing edge's per-position action is replaced with it,
// implementing KILL's explicit CASCADE / NO CASCADE clause: CASCADE
// forces every reference to be removed regardless of its declared
// action, NO CASCADE forces every reference to Restrict so the kill
// aborts if the node is referenced at all.
func (s *Store) DeleteNodeWithOverride(id value.NodeId, override *registry.ReferentialAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return mewerr.New(mewerr.ErrEntityNotFound, "node not found")
	}

	refs := append([]adjRef(nil), s.adjacency[id]...)
	for _, ref := range refs {
		e, ok := s.edges[ref.Edge]
		if !ok {
			continue // already removed by a prior cascade in this loop
		}
		et, ok := s.reg.GetEdgeType(e.Type)
		if !ok {
			continue
		}
		action := registry.Unlink
		if ref.Pos < len(et.OnKill) {
			action = et.OnKill[ref.Pos]
		}
		if override != nil {
			action = *override
		}
		switch action {
		case registry.Restrict:
			return mewerr.New(mewerr.ErrRestrict, "node is referenced by a restrict edge")
		case registry.Cascade, registry.Unlink:
			if err := s.deleteEdgeLocked(ref.Edge); err != nil {
				return err
			}
		}
	}

	for name, v := range n.Attrs {
		s.indexAttrRemove(n.Type, name, v, id)
	}
	delete(s.byType[n.Type], id)
	delete(s.adjacency, id)
	delete(s.nodes, id)

	return nil
}

// ---- Query surface ----

// NodesByType returns every node whose type is exactly typeID (callers
// wanting polymorphic matching additionally consult registry.GetSubtypes).
func (s *Store) NodesByType(typeID value.TypeId) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Node
	for id := range s.byType[typeID] {
		out = append(out, s.nodes[id])
	}
	return out
}

// NodesByAttrEqual returns nodes of typeID whose attr equals v.
func (s *Store) NodesByAttrEqual(typeID value.TypeId, attr string, v value.Value) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.attrIndex[attrIndexKey{typeID, attr}]
	var out []*Node
	for _, e := range entries {
		if value.Equal(e.Val, v) {
			out = append(out, s.nodes[e.Node])
		}
	}
	return out
}

// NodesByAttrRange returns nodes of typeID whose attr is comparable
// and falls within [min, max] inclusive, using the sorted attribute
// index for a range scan instead of a full table scan.
func (s *Store) NodesByAttrRange(typeID value.TypeId, attr string, min, max value.Value) []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.attrIndex[attrIndexKey{typeID, attr}]
	lo := sort.Search(len(entries), func(i int) bool {
		return value.CmpSortable(entries[i].Val, min) >= 0
	})

	var out []*Node
	for i := lo; i < len(entries); i++ {
		if value.CmpSortable(entries[i].Val, max) > 0 {
			break
		}
		out = append(out, s.nodes[entries[i].Node])
	}
	return out
}

// EdgesByType returns every edge of the given type.
func (s *Store) EdgesByType(typ value.EdgeTypeId) []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Edge
	for id := range s.byEdgeType[typ] {
		out = append(out, s.edges[id])
	}
	return out
}

// EdgesFrom returns edges with node bound at position 0 (the source),
// optionally filtered to a single edge type.
func (s *Store) EdgesFrom(node value.NodeId, edgeType *value.EdgeTypeId) []*Edge {
	return s.edgesAtPosition(node, edgeType, func(pos int) bool { return pos == 0 })
}

// EdgesTo returns edges with node bound at any position other than 0,
// optionally filtered to a single edge type.
func (s *Store) EdgesTo(node value.NodeId, edgeType *value.EdgeTypeId) []*Edge {
	return s.edgesAtPosition(node, edgeType, func(pos int) bool { return pos > 0 })
}

func (s *Store) edgesAtPosition(node value.NodeId, edgeType *value.EdgeTypeId, accept func(pos int) bool) []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Edge
	for _, ref := range s.adjacency[node] {
		if !accept(ref.Pos) {
			continue
		}
		e, ok := s.edges[ref.Edge]
		if !ok {
			continue
		}
		if edgeType != nil && e.Type != *edgeType {
			continue
		}
		out = append(out, e)
	}
	return out
}

// EdgesAbout returns the higher-order edges that take edgeID as a target.
func (s *Store) EdgesAbout(edgeID value.EdgeId) []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Edge
	for id := range s.higherOrder[edgeID] {
		out = append(out, s.edges[id])
	}
	return out
}

func (s *Store) indexAttrInsert(typ value.TypeId, attr string, v value.Value, id value.NodeId) {
	key := attrIndexKey{typ, attr}
	entries := s.attrIndex[key]
	i := sort.Search(len(entries), func(i int) bool {
		return value.CmpSortable(entries[i].Val, v) >= 0
	})
	entries = append(entries, attrIndexEntry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = attrIndexEntry{Val: v, Node: id}
	s.attrIndex[key] = entries
}

func (s *Store) indexAttrRemove(typ value.TypeId, attr string, v value.Value, id value.NodeId) {
	key := attrIndexKey{typ, attr}
	entries := s.attrIndex[key]
	for i, e := range entries {
		if e.Node == id && value.Equal(e.Val, v) {
			s.attrIndex[key] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

func removeAdjRef(refs []adjRef, edge value.EdgeId, pos int) []adjRef {
	for i, r := range refs {
		if r.Edge == edge && r.Pos == pos {
			return append(refs[:i], refs[i+1:]...)
		}
	}
	return refs
}

func copyAttrs(attrs map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(attrs))
	for k, v := range attrs {
		if !v.IsNull() {
			out[k] = v
		}
	}
	return out
}
