/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package value holds the scalar Value type and the opaque identifier types
shared by every MEW component: NodeId, EdgeId, TypeId, EdgeTypeId and the
EntityId tagged union over the first two.
*/
package value

import "fmt"

// NodeId opaquely identifies a node. Allocated monotonically per session,
// never reused.
type NodeId uint64

// EdgeId opaquely identifies an edge. Allocated monotonically per session,
// never reused, and in a namespace distinct from NodeId.
type EdgeId uint64

// TypeId opaquely identifies a node type within a Registry.
type TypeId uint32

// EdgeTypeId opaquely identifies an edge type within a Registry.
type EdgeTypeId uint32

// EntityKind distinguishes the two members of the EntityId union.
type EntityKind int

const (
	EntityNode EntityKind = iota
	EntityEdge
)

// EntityId is a tagged union of {Node, Edge}, used wherever an edge target
// or a WALK path element may reference either kind of graph entity.
type EntityId struct {
	Kind EntityKind
	Node NodeId
	Edge EdgeId
}

func NewNodeEntity(id NodeId) EntityId { return EntityId{Kind: EntityNode, Node: id} }
func NewEdgeEntity(id EdgeId) EntityId { return EntityId{Kind: EntityEdge, Edge: id} }

func (e EntityId) IsNode() bool { return e.Kind == EntityNode }
func (e EntityId) IsEdge() bool { return e.Kind == EntityEdge }

func (e EntityId) String() string {
	if e.IsNode() {
		return fmt.Sprintf("node#%d", e.Node)
	}
	return fmt.Sprintf("edge#%d", e.Edge)
}

// Kind enumerates the Value sum type's tags.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTimestamp
	KindDuration
	KindNodeRef
	KindEdgeRef
	KindList
)

// Value is the tagged union over Null, Bool, Int, Float, String, Timestamp
// (ms since Unix epoch), Duration (ms), NodeRef, EdgeRef and List of Value.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	node  NodeId
	edge  EdgeId
	list  []Value
}

func Null() Value                  { return Value{kind: KindNull} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func Int(i int64) Value            { return Value{kind: KindInt, i: i} }
func Float(f float64) Value        { return Value{kind: KindFloat, f: f} }
func String(s string) Value        { return Value{kind: KindString, s: s} }
func Timestamp(ms int64) Value     { return Value{kind: KindTimestamp, i: ms} }
func Duration(ms int64) Value      { return Value{kind: KindDuration, i: ms} }
func NodeRef(id NodeId) Value      { return Value{kind: KindNodeRef, node: id} }
func EdgeRef(id EdgeId) Value      { return Value{kind: KindEdgeRef, edge: id} }
func List(vs []Value) Value        { return Value{kind: KindList, list: vs} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)         { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)         { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool)     { return v.f, v.kind == KindFloat }
func (v Value) AsString() (string, bool)     { return v.s, v.kind == KindString }
func (v Value) AsTimestamp() (int64, bool)   { return v.i, v.kind == KindTimestamp }
func (v Value) AsDuration() (int64, bool)    { return v.i, v.kind == KindDuration }
func (v Value) AsNodeRef() (NodeId, bool)    { return v.node, v.kind == KindNodeRef }
func (v Value) AsEdgeRef() (EdgeId, bool)    { return v.edge, v.kind == KindEdgeRef }
func (v Value) AsList() ([]Value, bool)      { return v.list, v.kind == KindList }

// IsNumeric reports whether v is Int or Float.
func (v Value) IsNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// Numeric widens an Int or Float value to float64.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindString:
		return v.s
	case KindTimestamp:
		return fmt.Sprintf("@%dms", v.i)
	case KindDuration:
		return fmt.Sprintf("%dms", v.i)
	case KindNodeRef:
		return fmt.Sprintf("node#%d", v.node)
	case KindEdgeRef:
		return fmt.Sprintf("edge#%d", v.edge)
	case KindList:
		return fmt.Sprintf("%v", v.list)
	}
	return "<invalid>"
}

// Equal implements Value equality: Null equals only Null; numeric
// cross-type (Int<->Float) comparisons promote Int; lists compare
// element-wise.
func Equal(a, b Value) bool {
	if a.kind == KindNull || b.kind == KindNull {
		return a.kind == KindNull && b.kind == KindNull
	}
	if a.IsNumeric() && b.IsNumeric() {
		af, _ := a.Numeric()
		bf, _ := b.Numeric()
		return af == bf
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindTimestamp, KindDuration:
		return a.i == b.i
	case KindNodeRef:
		return a.node == b.node
	case KindEdgeRef:
		return a.edge == b.edge
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// CmpSortable orders two values for Sort/ORDER BY. Null sorts least.
// Cross-kind values that are not otherwise comparable order by Kind.
func CmpSortable(a, b Value) int {
	if a.kind == KindNull && b.kind == KindNull {
		return 0
	}
	if a.kind == KindNull {
		return -1
	}
	if b.kind == KindNull {
		return 1
	}
	if a.IsNumeric() && b.IsNumeric() {
		af, _ := a.Numeric()
		bf, _ := b.Numeric()
		return cmpFloat(af, bf)
	}
	if a.kind != b.kind {
		return cmpInt(int(a.kind), int(b.kind))
	}
	switch a.kind {
	case KindBool:
		return cmpBool(a.b, b.b)
	case KindString:
		return cmpStr(a.s, b.s)
	case KindTimestamp, KindDuration:
		return cmpInt64(a.i, b.i)
	case KindNodeRef:
		return cmpUint64(uint64(a.node), uint64(b.node))
	case KindEdgeRef:
		return cmpUint64(uint64(a.edge), uint64(b.edge))
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}

func cmpStr(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
