/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package registry

import "github.com/bdjafer/mew/internal/value"

// Registry is the immutable schema catalog produced by Build. It is safe
// for concurrent read-only use by any number of Sessions.
type Registry struct {
	types     map[value.TypeId]TypeDef
	typeNames map[string]value.TypeId

	edgeTypes     map[value.EdgeTypeId]EdgeTypeDef
	edgeTypeNames map[string]value.EdgeTypeId

	constraints          []ConstraintDef
	constraintsByType    map[value.TypeId][]int
	constraintsByEdgeType map[value.EdgeTypeId][]int

	rules          []RuleDef // sorted by priority descending
	rulesByType    map[value.TypeId][]int
	rulesByEdgeType map[value.EdgeTypeId][]int

	subtypes subtypeIndex
}

func (r *Registry) GetTypeByName(name string) (TypeDef, bool) {
	id, ok := r.typeNames[name]
	if !ok {
		return TypeDef{}, false
	}
	return r.types[id], true
}

func (r *Registry) GetType(id value.TypeId) (TypeDef, bool) {
	t, ok := r.types[id]
	return t, ok
}

func (r *Registry) GetEdgeTypeByName(name string) (EdgeTypeDef, bool) {
	id, ok := r.edgeTypeNames[name]
	if !ok {
		return EdgeTypeDef{}, false
	}
	return r.edgeTypes[id], true
}

func (r *Registry) GetEdgeType(id value.EdgeTypeId) (EdgeTypeDef, bool) {
	t, ok := r.edgeTypes[id]
	return t, ok
}

// IsSubtype reports whether a is b, or a transitively-declared descendant
// of b. Reflexive, transitive, antisymmetric over the declared `: parent`
// DAG.
func (r *Registry) IsSubtype(a, b value.TypeId) bool {
	return r.subtypes.isSubtype(a, b)
}

// GetSubtypes returns the strict transitive descendants of id.
func (r *Registry) GetSubtypes(id value.TypeId) []value.TypeId {
	return r.subtypes.subtypesOf(id)
}

func (r *Registry) ConstraintsForType(id value.TypeId) []ConstraintDef {
	idxs := r.constraintsByType[id]
	out := make([]ConstraintDef, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, r.constraints[i])
	}
	return out
}

func (r *Registry) ConstraintsForEdgeType(id value.EdgeTypeId) []ConstraintDef {
	idxs := r.constraintsByEdgeType[id]
	out := make([]ConstraintDef, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, r.constraints[i])
	}
	return out
}

func (r *Registry) DeferredConstraints() []ConstraintDef {
	var out []ConstraintDef
	for _, c := range r.constraints {
		if c.Deferred {
			out = append(out, c)
		}
	}
	return out
}

// RulesForType returns the rules applicable to id, sorted by priority
// descending (Registry build time already sorted r.rules globally).
func (r *Registry) RulesForType(id value.TypeId) []RuleDef {
	idxs := r.rulesByType[id]
	out := make([]RuleDef, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, r.rules[i])
	}
	return out
}

func (r *Registry) RulesForEdgeType(id value.EdgeTypeId) []RuleDef {
	idxs := r.rulesByEdgeType[id]
	out := make([]RuleDef, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, r.rules[i])
	}
	return out
}

// AllTypes returns every registered node type, for diagnostics/INSPECT.
func (r *Registry) AllTypes() []TypeDef {
	out := make([]TypeDef, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	return out
}

// AllEdgeTypes returns every registered edge type.
func (r *Registry) AllEdgeTypes() []EdgeTypeDef {
	out := make([]EdgeTypeDef, 0, len(r.edgeTypes))
	for _, t := range r.edgeTypes {
		out = append(out, t)
	}
	return out
}
