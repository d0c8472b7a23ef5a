/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package registry

import (
	"fmt"

	"github.com/bdjafer/mew/internal/value"
)

// Builder constructs an immutable Registry. The ontology compiler is the
// only intended caller; Builder itself does no source parsing.
type Builder struct {
	nextTypeID       uint32
	nextEdgeTypeID   uint32
	nextConstraintID uint32
	nextRuleID       uint32

	types     map[value.TypeId]TypeDef
	typeNames map[string]value.TypeId

	edgeTypes     map[value.EdgeTypeId]EdgeTypeDef
	edgeTypeNames map[string]value.EdgeTypeId

	constraints []ConstraintDef
	rules       []RuleDef
}

func NewBuilder() *Builder {
	return &Builder{
		types:         make(map[value.TypeId]TypeDef),
		typeNames:     make(map[string]value.TypeId),
		edgeTypes:     make(map[value.EdgeTypeId]EdgeTypeDef),
		edgeTypeNames: make(map[string]value.EdgeTypeId),
	}
}

func (b *Builder) TypeID(name string) (value.TypeId, bool) {
	id, ok := b.typeNames[name]
	return id, ok
}

func (b *Builder) EdgeTypeID(name string) (value.EdgeTypeId, bool) {
	id, ok := b.edgeTypeNames[name]
	return id, ok
}

// AddType begins building a node type named name.
func (b *Builder) AddType(name string) *TypeBuilder {
	id := value.TypeId(b.nextTypeID)
	b.nextTypeID++
	return &TypeBuilder{
		b:          b,
		id:         id,
		name:       name,
		attributes: make(map[string]AttrDef),
	}
}

// AddEdgeType begins building an edge type named name.
func (b *Builder) AddEdgeType(name string) *EdgeTypeBuilder {
	id := value.EdgeTypeId(b.nextEdgeTypeID)
	b.nextEdgeTypeID++
	return &EdgeTypeBuilder{
		b:          b,
		id:         id,
		name:       name,
		attributes: make(map[string]AttrDef),
	}
}

// AddConstraint begins building a generated or explicit constraint.
func (b *Builder) AddConstraint(name, condition string) *ConstraintBuilder {
	id := b.nextConstraintID
	b.nextConstraintID++
	return &ConstraintBuilder{b: b, id: id, name: name, condition: condition, hard: true}
}

// AddRule begins building a rule.
func (b *Builder) AddRule(name, production string) *RuleBuilder {
	id := b.nextRuleID
	b.nextRuleID++
	return &RuleBuilder{b: b, id: id, name: name, production: production}
}

// Build freezes the accumulated definitions into a Registry.
func (b *Builder) Build() (*Registry, error) {
	subtypes := buildSubtypeIndex(b.types)

	constraintsByType := make(map[value.TypeId][]int)
	constraintsByEdgeType := make(map[value.EdgeTypeId][]int)
	for i, c := range b.constraints {
		if c.TypeID != nil {
			constraintsByType[*c.TypeID] = append(constraintsByType[*c.TypeID], i)
		}
		if c.EdgeTypeID != nil {
			constraintsByEdgeType[*c.EdgeTypeID] = append(constraintsByEdgeType[*c.EdgeTypeID], i)
		}
	}

	rules := append([]RuleDef(nil), b.rules...)
	stableSortRulesByPriorityDesc(rules)

	rulesByType := make(map[value.TypeId][]int)
	rulesByEdgeType := make(map[value.EdgeTypeId][]int)
	for i, r := range rules {
		if r.TypeID != nil {
			rulesByType[*r.TypeID] = append(rulesByType[*r.TypeID], i)
		}
		if r.EdgeTypeID != nil {
			rulesByEdgeType[*r.EdgeTypeID] = append(rulesByEdgeType[*r.EdgeTypeID], i)
		}
	}

	return &Registry{
		types:                 b.types,
		typeNames:             b.typeNames,
		edgeTypes:             b.edgeTypes,
		edgeTypeNames:         b.edgeTypeNames,
		constraints:           b.constraints,
		constraintsByType:     constraintsByType,
		constraintsByEdgeType: constraintsByEdgeType,
		rules:                 rules,
		rulesByType:           rulesByType,
		rulesByEdgeType:       rulesByEdgeType,
		subtypes:              subtypes,
	}, nil
}

func stableSortRulesByPriorityDesc(rules []RuleDef) {
	// insertion sort: the rule count per ontology is small and this keeps
	// equal-priority rules in declaration order, matching Rust's stable sort_by.
	for i := 1; i < len(rules); i++ {
		j := i
		for j > 0 && rules[j-1].Priority < rules[j].Priority {
			rules[j-1], rules[j] = rules[j], rules[j-1]
			j--
		}
	}
}

// TypeBuilder builds one TypeDef.
type TypeBuilder struct {
	b           *Builder
	id          value.TypeId
	name        string
	parentNames []string
	attributes  map[string]AttrDef
	isAbstract  bool
	isSealed    bool
}

func (t *TypeBuilder) Extends(parentName string) *TypeBuilder {
	t.parentNames = append(t.parentNames, parentName)
	return t
}

func (t *TypeBuilder) Attr(a AttrDef) *TypeBuilder {
	t.attributes[a.Name] = a
	return t
}

func (t *TypeBuilder) Abstract() *TypeBuilder {
	t.isAbstract = true
	return t
}

func (t *TypeBuilder) Sealed() *TypeBuilder {
	t.isSealed = true
	return t
}

func (t *TypeBuilder) Done() (value.TypeId, error) {
	if _, exists := t.b.typeNames[t.name]; exists {
		return 0, fmt.Errorf("duplicate type name: %s", t.name)
	}

	parentIDs := make([]value.TypeId, 0, len(t.parentNames))
	for _, pn := range t.parentNames {
		pid, ok := t.b.typeNames[pn]
		if !ok {
			return 0, fmt.Errorf("unknown parent type: %s", pn)
		}
		parentIDs = append(parentIDs, pid)
	}

	t.b.types[t.id] = TypeDef{
		ID:         t.id,
		Name:       t.name,
		ParentIDs:  parentIDs,
		Attributes: t.attributes,
		IsAbstract: t.isAbstract,
		IsSealed:   t.isSealed,
	}
	t.b.typeNames[t.name] = t.id

	return t.id, nil
}

// EdgeTypeBuilder builds one EdgeTypeDef.
type EdgeTypeBuilder struct {
	b          *Builder
	id         value.EdgeTypeId
	name       string
	params     []EdgeParam
	attributes map[string]AttrDef
	symmetric  bool
	acyclic    bool
	unique     bool
	noSelf     bool
	onKill     []ReferentialAction
}

func (e *EdgeTypeBuilder) Param(name, typeConstraint string) *EdgeTypeBuilder {
	e.params = append(e.params, EdgeParam{Name: name, TypeConstraint: typeConstraint})
	return e
}

func (e *EdgeTypeBuilder) WithCardinality(paramName string, min uint32, max *uint32) *EdgeTypeBuilder {
	for i := range e.params {
		if e.params[i].Name == paramName {
			e.params[i].Cardinality = Cardinality{Min: min, Max: max}
			break
		}
	}
	return e
}

func (e *EdgeTypeBuilder) Indexed(paramName string) *EdgeTypeBuilder {
	for i := range e.params {
		if e.params[i].Name == paramName {
			e.params[i].Indexed = true
			break
		}
	}
	return e
}

func (e *EdgeTypeBuilder) Attr(a AttrDef) *EdgeTypeBuilder {
	e.attributes[a.Name] = a
	return e
}

func (e *EdgeTypeBuilder) Symmetric() *EdgeTypeBuilder {
	e.symmetric = true
	return e
}

func (e *EdgeTypeBuilder) Acyclic() *EdgeTypeBuilder {
	e.acyclic = true
	return e
}

func (e *EdgeTypeBuilder) UniqueEdge() *EdgeTypeBuilder {
	e.unique = true
	return e
}

func (e *EdgeTypeBuilder) NoSelf() *EdgeTypeBuilder {
	e.noSelf = true
	return e
}

// OnKillAt sets the referential action applied at paramIndex when that
// target is killed. Positions left unset default to Unlink.
func (e *EdgeTypeBuilder) OnKillAt(paramIndex int, action ReferentialAction) *EdgeTypeBuilder {
	for len(e.onKill) <= paramIndex {
		e.onKill = append(e.onKill, Unlink)
	}
	e.onKill[paramIndex] = action
	return e
}

func (e *EdgeTypeBuilder) Done() (value.EdgeTypeId, error) {
	if _, exists := e.b.edgeTypeNames[e.name]; exists {
		return 0, fmt.Errorf("duplicate edge type name: %s", e.name)
	}

	onKill := e.onKill
	if len(onKill) == 0 {
		onKill = make([]ReferentialAction, len(e.params))
		for i := range onKill {
			onKill[i] = Unlink
		}
	}
	for len(onKill) < len(e.params) {
		onKill = append(onKill, Unlink)
	}

	e.b.edgeTypes[e.id] = EdgeTypeDef{
		ID:         e.id,
		Name:       e.name,
		Params:     e.params,
		Attributes: e.attributes,
		Symmetric:  e.symmetric,
		Acyclic:    e.acyclic,
		Unique:     e.unique,
		NoSelf:     e.noSelf,
		OnKill:     onKill,
	}
	e.b.edgeTypeNames[e.name] = e.id

	return e.id, nil
}

// ConstraintBuilder builds one ConstraintDef.
type ConstraintBuilder struct {
	b          *Builder
	id         uint32
	name       string
	typeName   string
	edgeName   string
	hard       bool
	deferred   bool
	condition  string
}

func (c *ConstraintBuilder) ForType(name string) *ConstraintBuilder     { c.typeName = name; return c }
func (c *ConstraintBuilder) ForEdgeType(name string) *ConstraintBuilder { c.edgeName = name; return c }
func (c *ConstraintBuilder) Soft() *ConstraintBuilder                   { c.hard = false; return c }
func (c *ConstraintBuilder) Deferred() *ConstraintBuilder               { c.deferred = true; return c }

func (c *ConstraintBuilder) Done() (uint32, error) {
	var typeID *value.TypeId
	if c.typeName != "" {
		id, ok := c.b.typeNames[c.typeName]
		if !ok {
			return 0, fmt.Errorf("unknown type in constraint: %s", c.typeName)
		}
		typeID = &id
	}

	var edgeTypeID *value.EdgeTypeId
	if c.edgeName != "" {
		id, ok := c.b.edgeTypeNames[c.edgeName]
		if !ok {
			return 0, fmt.Errorf("unknown edge type in constraint: %s", c.edgeName)
		}
		edgeTypeID = &id
	}

	c.b.constraints = append(c.b.constraints, ConstraintDef{
		ID:         c.id,
		Name:       c.name,
		TypeID:     typeID,
		EdgeTypeID: edgeTypeID,
		Hard:       c.hard,
		Deferred:   c.deferred,
		Condition:  c.condition,
	})

	return c.id, nil
}

// RuleBuilder builds one RuleDef.
type RuleBuilder struct {
	b          *Builder
	id         uint32
	name       string
	typeName   string
	edgeName   string
	priority   int32
	auto       bool
	production string
}

func (r *RuleBuilder) ForType(name string) *RuleBuilder     { r.typeName = name; return r }
func (r *RuleBuilder) ForEdgeType(name string) *RuleBuilder { r.edgeName = name; return r }
func (r *RuleBuilder) Priority(p int32) *RuleBuilder         { r.priority = p; return r }
func (r *RuleBuilder) Auto() *RuleBuilder                    { r.auto = true; return r }

func (r *RuleBuilder) Done() (uint32, error) {
	var typeID *value.TypeId
	if r.typeName != "" {
		if id, ok := r.b.typeNames[r.typeName]; ok {
			typeID = &id
		}
	}
	var edgeTypeID *value.EdgeTypeId
	if r.edgeName != "" {
		if id, ok := r.b.edgeTypeNames[r.edgeName]; ok {
			edgeTypeID = &id
		}
	}

	r.b.rules = append(r.b.rules, RuleDef{
		ID:         r.id,
		Name:       r.name,
		TypeID:     typeID,
		EdgeTypeID: edgeTypeID,
		Priority:   r.priority,
		Auto:       r.auto,
		Production: r.production,
	})

	return r.id, nil
}
