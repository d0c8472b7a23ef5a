/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package ontology compiles ontology source text into a registry.Registry.

Pass 1 parses the source and collects every type-alias, node-type, and
edge-type name, rejecting duplicates. Pass 2 registers node types in
topological order (parents before children, since registry.TypeBuilder
resolves Extends immediately), registers edge types, then registers
constraints and rules against the now-complete type/edge-type name
sets. Attribute and edge modifiers are lifted directly into the
registry's AttrDef/EdgeTypeDef fields rather than into a parallel set
of generated constraint strings: the mutation executor already enforces
required/unique/range/enum/regex straight off those fields
(mutation.validateAttr checks range/enum/regex, Spawn checks required,
Spawn and Set check unique), so a second, string-keyed bookkeeping
layer would have no reader.
*/
package ontology

import (
	"math"

	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/registry"
)

var builtinScalars = map[string]bool{
	"String":    true,
	"Int":       true,
	"Float":     true,
	"Bool":      true,
	"Timestamp": true,
	"Duration":  true,
}

// Compile parses ontology source and lowers it into an immutable Registry.
func Compile(source string) (*registry.Registry, error) {
	defs, err := parser.New(source).ParseOntology()
	if err != nil {
		return nil, err
	}
	return newCompiler().compile(defs)
}

type compiler struct {
	typeNames     map[string]bool
	edgeTypeNames map[string]bool
	aliases       map[string]*parser.TypeAliasDef
	nodeDefs      map[string]*parser.NodeTypeDef
	nodeOrder     []string
	edgeDefs      []*parser.EdgeTypeDef

	eval *pattern.Evaluator
}

func mapKeys(m map[string]bool) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	return names
}

// resolvableTypeNames lists every name resolveTypeAlias would accept:
// builtin scalars, declared type aliases, and node type names (a node
// type is not itself a valid attribute type, but a typo'd alias
// reference is often a node type name, so it's worth suggesting).
func (c *compiler) resolvableTypeNames() []string {
	names := []string{"String", "Int", "Float", "Bool", "Timestamp", "Duration"}
	for name := range c.aliases {
		names = append(names, name)
	}
	for name := range c.typeNames {
		names = append(names, name)
	}
	return names
}

func newCompiler() *compiler {
	return &compiler{
		typeNames:     make(map[string]bool),
		edgeTypeNames: make(map[string]bool),
		aliases:       make(map[string]*parser.TypeAliasDef),
		nodeDefs:      make(map[string]*parser.NodeTypeDef),
		eval:          pattern.NewEvaluator(nil, nil),
	}
}

func (c *compiler) compile(defs []*parser.OntologyDef) (*registry.Registry, error) {
	for _, def := range defs {
		switch def.Kind {
		case parser.DefTypeAlias:
			name := def.TypeAlias.Name
			if c.aliases[name] != nil || c.typeNames[name] {
				return nil, mewerr.NewAt(mewerr.ErrDuplicateName, name, def.Span)
			}
			c.aliases[name] = def.TypeAlias
		case parser.DefNode:
			name := def.Node.Name
			if c.typeNames[name] || c.aliases[name] != nil {
				return nil, mewerr.NewAt(mewerr.ErrDuplicateName, name, def.Span)
			}
			c.typeNames[name] = true
			c.nodeDefs[name] = def.Node
			c.nodeOrder = append(c.nodeOrder, name)
		case parser.DefEdge:
			name := def.Edge.Name
			if c.edgeTypeNames[name] {
				return nil, mewerr.NewAt(mewerr.ErrDuplicateName, name, def.Span)
			}
			c.edgeTypeNames[name] = true
			c.edgeDefs = append(c.edgeDefs, def.Edge)
		}
	}

	b := registry.NewBuilder()

	sorted, err := topoSortNodes(c.nodeOrder, c.nodeDefs)
	if err != nil {
		return nil, err
	}
	for _, name := range sorted {
		if err := c.addNodeType(b, c.nodeDefs[name]); err != nil {
			return nil, err
		}
	}

	for _, e := range c.edgeDefs {
		if err := c.addEdgeType(b, e); err != nil {
			return nil, err
		}
	}

	for _, def := range defs {
		switch def.Kind {
		case parser.DefConstraint:
			if err := c.addConstraint(b, def.Constraint); err != nil {
				return nil, err
			}
		case parser.DefRule:
			if err := c.addRule(b, def.Rule); err != nil {
				return nil, err
			}
		}
	}

	return b.Build()
}

// topoSortNodes orders node-type names parents-before-children via a
// depth-first visit, so a type declared before its parent in source
// order still registers after it. Cycles are rejected.
func topoSortNodes(order []string, defs map[string]*parser.NodeTypeDef) ([]string, error) {
	const (
		white = iota
		gray
		black
	)
	state := make(map[string]int, len(defs))
	var sorted []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case black:
			return nil
		case gray:
			return mewerr.NewAt(mewerr.ErrUnknownParent, "cyclic inheritance involving "+name, defs[name].Span)
		}
		state[name] = gray
		def := defs[name]
		for _, p := range def.Parents {
			if _, ok := defs[p]; !ok {
				names := make([]string, 0, len(defs))
				for n := range defs {
					names = append(names, n)
				}
				return mewerr.NewAt(mewerr.ErrUnknownParent,
					mewerr.WithSuggestion(p, p, names), def.Span)
			}
			if err := visit(p); err != nil {
				return err
			}
		}
		state[name] = black
		sorted = append(sorted, name)
		return nil
	}

	for _, name := range order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

func (c *compiler) addNodeType(b *registry.Builder, n *parser.NodeTypeDef) error {
	tb := b.AddType(n.Name)
	for _, p := range n.Parents {
		tb = tb.Extends(p)
	}
	if n.IsAbstract {
		tb = tb.Abstract()
	}
	if n.IsSealed {
		tb = tb.Sealed()
	}
	for _, a := range n.Attrs {
		attr, err := c.resolveAttr(a)
		if err != nil {
			return err
		}
		tb = tb.Attr(attr)
	}
	_, err := tb.Done()
	return err
}

func (c *compiler) addEdgeType(b *registry.Builder, e *parser.EdgeTypeDef) error {
	for _, p := range e.Params {
		if p.Type != "any" && !c.typeNames[p.Type] {
			return mewerr.NewAt(mewerr.ErrUnknownType,
				mewerr.WithSuggestion(p.Type, p.Type, mapKeys(c.typeNames)), e.Span)
		}
	}

	eb := b.AddEdgeType(e.Name)
	for _, p := range e.Params {
		eb = eb.Param(p.Name, p.Type)
	}
	for _, a := range e.Attrs {
		attr, err := c.resolveAttr(a)
		if err != nil {
			return err
		}
		eb = eb.Attr(attr)
	}

	sourceIdx := 0
	targetIdx := len(e.Params) - 1

	for _, m := range e.Modifiers {
		switch m.Kind {
		case parser.EdgeModAcyclic:
			eb = eb.Acyclic()
		case parser.EdgeModUnique:
			eb = eb.UniqueEdge()
		case parser.EdgeModNoSelf:
			eb = eb.NoSelf()
		case parser.EdgeModSymmetric:
			eb = eb.Symmetric()
		case parser.EdgeModIndexed:
			// The surface syntax names no param for `indexed`; it flags
			// the whole edge type's adjacency entries (SPEC_FULL.md §3),
			// so every param position is marked.
			for _, p := range e.Params {
				eb = eb.Indexed(p.Name)
			}
		case parser.EdgeModOnKillTarget:
			if targetIdx >= 0 {
				eb = eb.OnKillAt(targetIdx, referentialAction(m.OnKill))
			}
		case parser.EdgeModOnKillSource:
			eb = eb.OnKillAt(sourceIdx, referentialAction(m.OnKill))
		case parser.EdgeModCardinality:
			var max *uint32
			if m.CardMax != nil {
				mv := uint32(*m.CardMax)
				max = &mv
			}
			eb = eb.WithCardinality(m.CardParam, uint32(m.CardMin), max)
		}
	}

	_, err := eb.Done()
	return err
}

func (c *compiler) addConstraint(b *registry.Builder, cd *parser.ConstraintDef) error {
	subject, isEdge, err := c.primarySubject(cd.Pattern, cd.Span)
	if err != nil {
		return err
	}
	cb := b.AddConstraint(cd.Name, cd.Condition)
	if isEdge {
		if !c.edgeTypeNames[subject] {
			return mewerr.NewAt(mewerr.ErrUnknownEdgeType,
				mewerr.WithSuggestion(subject, subject, mapKeys(c.edgeTypeNames)), cd.Span)
		}
		cb = cb.ForEdgeType(subject)
	} else {
		if !c.typeNames[subject] {
			return mewerr.NewAt(mewerr.ErrUnknownType,
				mewerr.WithSuggestion(subject, subject, mapKeys(c.typeNames)), cd.Span)
		}
		cb = cb.ForType(subject)
	}
	if cd.Modifiers.Soft {
		cb = cb.Soft()
	}
	_, err = cb.Done()
	return err
}

func (c *compiler) addRule(b *registry.Builder, rd *parser.RuleDef) error {
	subject, isEdge, err := c.primarySubject(rd.Pattern, rd.Span)
	if err != nil {
		return err
	}
	rb := b.AddRule(rd.Name, rd.Production)
	if isEdge {
		if !c.edgeTypeNames[subject] {
			return mewerr.NewAt(mewerr.ErrUnknownEdgeType,
				mewerr.WithSuggestion(subject, subject, mapKeys(c.edgeTypeNames)), rd.Span)
		}
		rb = rb.ForEdgeType(subject)
	} else {
		if !c.typeNames[subject] {
			return mewerr.NewAt(mewerr.ErrUnknownType,
				mewerr.WithSuggestion(subject, subject, mapKeys(c.typeNames)), rd.Span)
		}
		rb = rb.ForType(subject)
	}
	if rd.Auto {
		rb = rb.Auto()
	}
	if rd.Priority != nil {
		rb = rb.Priority(int32(*rd.Priority))
	}
	_, err = rb.Done()
	return err
}

// primarySubject re-parses a constraint/rule's captured pattern text
// (stored opaquely on ConstraintDef/RuleDef) and returns the type or
// edge type name its first pattern element names, mirroring the
// original compiler's "first node pattern, else first edge pattern"
// rule for picking what a constraint or rule is declared against.
func (c *compiler) primarySubject(patternText string, span mewerr.Span) (string, bool, error) {
	elems, err := parser.New(patternText).ParsePattern()
	if err != nil {
		return "", false, mewerr.NewAt(mewerr.ErrUnknownType, "malformed constraint/rule pattern", span)
	}
	for _, el := range elems {
		if np, ok := el.(*parser.NodePattern); ok && np.TypeName != "" {
			return np.TypeName, false, nil
		}
	}
	for _, el := range elems {
		if ep, ok := el.(*parser.EdgePattern); ok {
			return ep.EdgeType, true, nil
		}
	}
	return "", false, mewerr.NewAt(mewerr.ErrUnknownType, "constraint/rule pattern has no type reference", span)
}

// resolveAttr resolves attr_def's type alias chain down to a builtin
// scalar name and lifts its modifiers (the alias's own, then the
// attribute's own, so a use-site modifier can refine an aliased one)
// into a registry.AttrDef.
func (c *compiler) resolveAttr(a parser.AttrDecl) (registry.AttrDef, error) {
	baseType, aliasMods, err := c.resolveTypeAlias(a.TypeName, a.Span)
	if err != nil {
		return registry.AttrDef{}, err
	}

	attr := registry.AttrDef{Name: a.Name, TypeName: baseType, Nullable: a.Nullable}

	for _, m := range aliasMods {
		if err := c.applyAttrModifier(&attr, m, a.Span); err != nil {
			return registry.AttrDef{}, err
		}
	}
	for _, m := range a.Modifiers {
		if err := c.applyAttrModifier(&attr, m, a.Span); err != nil {
			return registry.AttrDef{}, err
		}
	}

	if a.DefaultValue != nil {
		v, err := c.eval.Eval(a.DefaultValue, nil)
		if err != nil {
			return registry.AttrDef{}, mewerr.NewAt(mewerr.ErrInvalidModifier, "default value must be a literal", a.Span)
		}
		attr.Default = &v
	}

	return attr, nil
}

func (c *compiler) resolveTypeAlias(name string, span mewerr.Span) (string, []parser.AttrModifier, error) {
	if builtinScalars[name] {
		return name, nil, nil
	}

	var mods []parser.AttrModifier
	seen := make(map[string]bool)
	cur := name
	for {
		if seen[cur] {
			return "", nil, mewerr.NewAt(mewerr.ErrCyclicAlias, cur, span)
		}
		seen[cur] = true

		alias, ok := c.aliases[cur]
		if !ok {
			return "", nil, mewerr.NewAt(mewerr.ErrUnresolvedAlias,
				mewerr.WithSuggestion(cur, cur, c.resolvableTypeNames()), span)
		}
		mods = append(mods, alias.Modifiers...)

		if builtinScalars[alias.BaseType] {
			return alias.BaseType, mods, nil
		}
		cur = alias.BaseType
	}
}

func (c *compiler) applyAttrModifier(attr *registry.AttrDef, m parser.AttrModifier, span mewerr.Span) error {
	switch m.Kind {
	case parser.ModRequired:
		attr.Required = true
	case parser.ModUnique:
		attr.Unique = true
	case parser.ModDefault:
		v, err := c.eval.Eval(m.Default, nil)
		if err != nil {
			return mewerr.NewAt(mewerr.ErrInvalidModifier, "default value must be a literal", span)
		}
		attr.Default = &v
	case parser.ModInValues:
		attr.HasEnum = true
		for _, ve := range m.Values {
			v, err := c.eval.Eval(ve, nil)
			if err != nil {
				return mewerr.NewAt(mewerr.ErrInvalidModifier, "enum value must be a literal", span)
			}
			attr.Enum = append(attr.Enum, v.String())
		}
	case parser.ModMatch:
		attr.HasRegex = true
		attr.Regex = m.Pattern
	case parser.ModRangeMin:
		f, err := c.evalNumeric(m.Min, span)
		if err != nil {
			return err
		}
		ensureRange(attr)
		attr.RangeMin = f
	case parser.ModRangeMax:
		f, err := c.evalNumeric(m.Max, span)
		if err != nil {
			return err
		}
		ensureRange(attr)
		attr.RangeMax = f
	case parser.ModRange:
		minV, err := c.evalNumeric(m.Min, span)
		if err != nil {
			return err
		}
		maxV, err := c.evalNumeric(m.Max, span)
		if err != nil {
			return err
		}
		ensureRange(attr)
		attr.RangeMin = minV
		attr.RangeMax = maxV
	}
	return nil
}

func (c *compiler) evalNumeric(expr *parser.Expr, span mewerr.Span) (float64, error) {
	v, err := c.eval.Eval(expr, nil)
	if err != nil {
		return 0, mewerr.NewAt(mewerr.ErrInvalidModifier, "range bound must be a literal", span)
	}
	f, ok := v.Numeric()
	if !ok {
		return 0, mewerr.NewAt(mewerr.ErrInvalidModifier, "range bound must be numeric", span)
	}
	return f, nil
}

// ensureRange opens an unbounded range the first time either bound is
// set, so a one-sided `[>= 0]` modifier doesn't leave the unset side
// at its float64 zero value.
func ensureRange(attr *registry.AttrDef) {
	if !attr.HasRange {
		attr.HasRange = true
		attr.RangeMin = math.Inf(-1)
		attr.RangeMax = math.Inf(1)
	}
}

func referentialAction(a parser.ReferentialActionName) registry.ReferentialAction {
	switch a {
	case parser.RefCascade:
		return registry.Cascade
	case parser.RefUnlink:
		return registry.Unlink
	default:
		return registry.Restrict
	}
}
