/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package registry holds the frozen schema catalog a compiled ontology
produces: type and edge-type definitions, their constraints and rules,
and the subtype index used for polymorphic matching.

The Registry is immutable once built and is shared by reference across
every Session in a process, mirroring the teacher's Manager pattern of
a single long-lived catalog guarded against concurrent writers by never
allowing writes after construction.
*/
package registry

import "github.com/bdjafer/mew/internal/value"

// ReferentialAction is the per-edge-param policy applied when the entity
// at that position is killed.
type ReferentialAction int

const (
	Cascade ReferentialAction = iota
	Unlink
	Restrict
)

func (a ReferentialAction) String() string {
	switch a {
	case Cascade:
		return "cascade"
	case Unlink:
		return "unlink"
	case Restrict:
		return "restrict"
	default:
		return "unknown"
	}
}

// Cardinality bounds the number of edges of a given type permitted at a
// single edge-param position. Max == nil means unbounded.
type Cardinality struct {
	Min uint32
	Max *uint32
}

// AttrDef records one attribute slot of a TypeDef or EdgeTypeDef.
type AttrDef struct {
	Name     string
	TypeName string // semantic type name, e.g. "String", "Int", "Float", "Bool", "Timestamp", "Duration"
	Nullable bool
	Required bool
	Unique   bool
	Default  *value.Value

	HasRange bool
	RangeMin float64
	RangeMax float64

	HasEnum bool
	Enum    []string

	HasRegex bool
	Regex    string
}

// TypeDef is a node type: a name, stable id, parent ids (multi-
// inheritance DAG), its attribute map, and the {abstract, sealed} flags.
type TypeDef struct {
	ID         value.TypeId
	Name       string
	ParentIDs  []value.TypeId
	Attributes map[string]AttrDef
	IsAbstract bool
	IsSealed   bool
}

// EdgeParam is one ordered target position of an EdgeTypeDef.
type EdgeParam struct {
	Name           string
	TypeConstraint string // concrete type name, ancestor name, or "any"
	Cardinality    Cardinality
	Indexed        bool // supplemental `indexed` edge modifier (see SPEC_FULL.md §3)
}

// EdgeTypeDef is an edge type: a name, stable id, ordered params, its
// attribute map, and the {symmetric, acyclic, unique, no_self} flags
// plus a per-position referential-action vector applied when a target
// is killed.
type EdgeTypeDef struct {
	ID         value.EdgeTypeId
	Name       string
	Params     []EdgeParam
	Attributes map[string]AttrDef
	Symmetric  bool
	Acyclic    bool
	Unique     bool
	NoSelf     bool
	OnKill     []ReferentialAction // one entry per Params position
}

func (e EdgeTypeDef) Arity() int { return len(e.Params) }

// ConstraintDef is a generated or explicit constraint record, keyed by
// the type or edge type it applies to. The condition is the rule body's
// opaque textual production, per the Open Question resolved in
// SPEC_FULL.md §9.
type ConstraintDef struct {
	ID         uint32
	Name       string
	TypeID     *value.TypeId
	EdgeTypeID *value.EdgeTypeId
	Hard       bool
	Deferred   bool
	Condition  string
}

// RuleDef is a declarative rule: pattern, priority, auto flag and an
// opaque production string. Firing rule bodies is out of scope; the
// Registry only stores and indexes them.
type RuleDef struct {
	ID         uint32
	Name       string
	TypeID     *value.TypeId
	EdgeTypeID *value.EdgeTypeId
	Priority   int32
	Auto       bool
	Production string
}
