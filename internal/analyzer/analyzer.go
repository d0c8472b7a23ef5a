/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package analyzer performs name resolution and static type checking on a
parsed statement before it ever touches the pattern engine or the
graph store: every pattern variable is resolved or declared exactly
once per scope, every type/edge-type name must resolve against the
Registry, edge pattern arity must match the edge type's declared
params, and every operator's operand types must admit a result.
*/
package analyzer

import (
	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/registry"
)

// Analyzer walks statement ASTs against a fixed Registry, threading a
// lexically scoped variable environment through nested patterns.
type Analyzer struct {
	reg   *registry.Registry
	scope *scope
}

// New creates an Analyzer bound to reg.
func New(reg *registry.Registry) *Analyzer {
	return &Analyzer{reg: reg, scope: newScope()}
}

func (a *Analyzer) typeNames() []string {
	types := a.reg.AllTypes()
	names := make([]string, len(types))
	for i, td := range types {
		names[i] = td.Name
	}
	return names
}

func (a *Analyzer) edgeTypeNames() []string {
	edgeTypes := a.reg.AllEdgeTypes()
	names := make([]string, len(edgeTypes))
	for i, et := range edgeTypes {
		names[i] = et.Name
	}
	return names
}

func attrNames(attrs map[string]registry.AttrDef) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	return names
}

// Reset clears accumulated scope state so the Analyzer can be reused
// for a fresh statement.
func (a *Analyzer) Reset() {
	a.scope = newScope()
}

// AnalyzeStmt type-checks stmt and returns its static result type.
func (a *Analyzer) AnalyzeStmt(stmt *parser.Stmt) (Type, error) {
	switch stmt.Kind {
	case parser.StmtMatch:
		return a.analyzeMatch(stmt.Match)
	case parser.StmtMatchMutate:
		return a.analyzeMatchMutate(stmt.MatchMutate)
	case parser.StmtMatchWalk:
		return a.analyzeMatchWalk(stmt.MatchWalk)
	case parser.StmtSpawn:
		return a.analyzeSpawn(stmt.Spawn)
	case parser.StmtKill:
		return a.analyzeKill(stmt.Kill)
	case parser.StmtLink:
		return a.analyzeLink(stmt.Link)
	case parser.StmtUnlink:
		return a.analyzeUnlink(stmt.Unlink)
	case parser.StmtSet:
		return a.analyzeSet(stmt.Set)
	case parser.StmtWalk:
		return a.analyzeWalk(stmt.Walk)
	case parser.StmtInspect:
		return Any, nil
	case parser.StmtTxnBegin, parser.StmtTxnCommit, parser.StmtTxnRollback:
		return Null, nil
	case parser.StmtExplain, parser.StmtProfile:
		if _, err := a.AnalyzeStmt(stmt.Inner); err != nil {
			return Type{}, err
		}
		return Any, nil
	default:
		return Any, nil
	}
}

func (a *Analyzer) analyzeMatch(stmt *parser.MatchStmt) (Type, error) {
	a.scope.push()
	defer a.scope.pop()

	if err := a.analyzePattern(stmt.Pattern); err != nil {
		return Type{}, err
	}

	if stmt.Where != nil {
		wt, err := a.AnalyzeExpr(stmt.Where)
		if err != nil {
			return Type{}, err
		}
		if wt.Kind != TBool && wt.Kind != TAny && wt.Kind != TNull {
			return Type{}, mewerr.NewAt(mewerr.ErrTypeMismatch, "WHERE clause must be boolean", stmt.Where.Span())
		}
	}

	for _, opt := range stmt.OptionalMatches {
		a.scope.push()
		if err := a.analyzePattern(opt.Pattern); err != nil {
			a.scope.pop()
			return Type{}, err
		}
		if opt.Where != nil {
			if _, err := a.AnalyzeExpr(opt.Where); err != nil {
				a.scope.pop()
				return Type{}, err
			}
		}
		a.scope.pop()
	}

	for _, p := range stmt.Return.Projections {
		if _, err := a.AnalyzeExpr(p.Expr); err != nil {
			return Type{}, err
		}
	}

	for _, term := range stmt.OrderBy {
		if _, err := a.AnalyzeExpr(term.Expr); err != nil {
			return Type{}, err
		}
	}

	return Any, nil
}

func (a *Analyzer) analyzeMatchMutate(stmt *parser.MatchMutateStmt) (Type, error) {
	a.scope.push()
	defer a.scope.pop()

	if err := a.analyzePattern(stmt.Pattern); err != nil {
		return Type{}, err
	}
	if stmt.Where != nil {
		if _, err := a.AnalyzeExpr(stmt.Where); err != nil {
			return Type{}, err
		}
	}

	for _, m := range stmt.Mutations {
		var err error
		switch m.Kind {
		case parser.ActionLink:
			_, err = a.analyzeLink(m.Link)
		case parser.ActionSet:
			_, err = a.analyzeSet(m.Set)
		case parser.ActionKill:
			_, err = a.analyzeKill(m.Kill)
		case parser.ActionUnlink:
			_, err = a.analyzeUnlink(m.Unlink)
		}
		if err != nil {
			return Type{}, err
		}
	}

	return Int, nil
}

func (a *Analyzer) analyzeMatchWalk(stmt *parser.MatchWalkStmt) (Type, error) {
	a.scope.push()
	defer a.scope.pop()

	if err := a.analyzePattern(stmt.Pattern); err != nil {
		return Type{}, err
	}
	if stmt.Where != nil {
		if _, err := a.AnalyzeExpr(stmt.Where); err != nil {
			return Type{}, err
		}
	}
	if _, err := a.analyzeWalk(stmt.Walk); err != nil {
		return Type{}, err
	}
	return Any, nil
}

func (a *Analyzer) analyzePattern(elems []parser.PatternElement) error {
	for _, elem := range elems {
		switch e := elem.(type) {
		case *parser.NodePattern:
			if err := a.analyzeNodePattern(e); err != nil {
				return err
			}
		case *parser.EdgePattern:
			if err := a.analyzeEdgePattern(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Analyzer) analyzeNodePattern(p *parser.NodePattern) error {
	if p.TypeName == "" {
		// Bare variable: must already be bound.
		if !a.scope.isDefined(p.Var) {
			return mewerr.NewAt(mewerr.ErrUnknownVariable,
				mewerr.WithSuggestion(p.Var, p.Var, a.scope.names()), p.Span())
		}
		return nil
	}

	td, ok := a.reg.GetTypeByName(p.TypeName)
	if !ok {
		return mewerr.NewAt(mewerr.ErrUnknownType,
			mewerr.WithSuggestion(p.TypeName, p.TypeName, a.typeNames()), p.Span())
	}

	if a.scope.isDefinedInCurrent(p.Var) {
		return mewerr.NewAt(mewerr.ErrDuplicateVariable, p.Var, p.Span())
	}
	a.scope.define(p.Var, NodeRef(td.ID))
	return nil
}

func (a *Analyzer) analyzeEdgePattern(p *parser.EdgePattern) error {
	et, ok := a.reg.GetEdgeTypeByName(p.EdgeType)
	if !ok {
		return mewerr.NewAt(mewerr.ErrUnknownEdgeType,
			mewerr.WithSuggestion(p.EdgeType, p.EdgeType, a.edgeTypeNames()), p.Span())
	}

	if et.Arity() != len(p.Targets) {
		return mewerr.NewAt(mewerr.ErrEdgeArityMismatch, p.EdgeType, p.Span())
	}

	for _, t := range p.Targets {
		if t != "_" && !a.scope.isDefined(t) {
			return mewerr.NewAt(mewerr.ErrUnknownVariable,
				mewerr.WithSuggestion(t, t, a.scope.names()), p.Span())
		}
	}

	if p.Var != "" {
		if a.scope.isDefinedInCurrent(p.Var) {
			return mewerr.NewAt(mewerr.ErrDuplicateVariable, p.Var, p.Span())
		}
		a.scope.define(p.Var, EdgeRef(et.ID))
	}

	return nil
}

func (a *Analyzer) analyzeSpawn(stmt *parser.SpawnStmt) (Type, error) {
	td, ok := a.reg.GetTypeByName(stmt.TypeName)
	if !ok {
		return Type{}, mewerr.NewAt(mewerr.ErrUnknownType,
			mewerr.WithSuggestion(stmt.TypeName, stmt.TypeName, a.typeNames()), stmt.Span)
	}
	if td.IsAbstract {
		return Type{}, mewerr.NewAt(mewerr.ErrTypeMismatch, "cannot spawn abstract type "+stmt.TypeName, stmt.Span)
	}

	for _, attr := range stmt.Attrs {
		if err := a.analyzeAttrAssignment(attr, td); err != nil {
			return Type{}, err
		}
	}

	if stmt.Var != "" {
		if !a.scope.define(stmt.Var, NodeRef(td.ID)) {
			return Type{}, mewerr.NewAt(mewerr.ErrDuplicateVariable, stmt.Var, stmt.Span)
		}
	}

	return NodeRef(td.ID), nil
}

func (a *Analyzer) analyzeAttrAssignment(attr parser.AttrAssignment, td registry.TypeDef) error {
	if _, ok := td.Attributes[attr.Name]; !ok {
		detail := mewerr.WithSuggestion(attr.Name, attr.Name, attrNames(td.Attributes))
		return mewerr.NewAt(mewerr.ErrUnknownAttribute, detail+" on "+td.Name, attr.Span)
	}
	_, err := a.AnalyzeExpr(attr.Value)
	return err
}

func (a *Analyzer) analyzeKill(stmt *parser.KillStmt) (Type, error) {
	if _, err := a.analyzeTarget(stmt.Target); err != nil {
		return Type{}, err
	}
	return Null, nil
}

func (a *Analyzer) analyzeLink(stmt *parser.LinkStmt) (Type, error) {
	et, ok := a.reg.GetEdgeTypeByName(stmt.EdgeType)
	if !ok {
		return Type{}, mewerr.NewAt(mewerr.ErrUnknownEdgeType,
			mewerr.WithSuggestion(stmt.EdgeType, stmt.EdgeType, a.edgeTypeNames()), stmt.Span)
	}
	if et.Arity() != len(stmt.Targets) {
		return Type{}, mewerr.NewAt(mewerr.ErrEdgeArityMismatch, stmt.EdgeType, stmt.Span)
	}

	for _, t := range stmt.Targets {
		if _, err := a.analyzeTargetRef(t); err != nil {
			return Type{}, err
		}
	}

	for _, attr := range stmt.Attrs {
		if _, ok := et.Attributes[attr.Name]; !ok {
			detail := mewerr.WithSuggestion(attr.Name, attr.Name, attrNames(et.Attributes))
			return Type{}, mewerr.NewAt(mewerr.ErrUnknownAttribute, detail+" on "+et.Name, attr.Span)
		}
		if _, err := a.AnalyzeExpr(attr.Value); err != nil {
			return Type{}, err
		}
	}

	if stmt.Var != "" {
		if !a.scope.define(stmt.Var, EdgeRef(et.ID)) {
			return Type{}, mewerr.NewAt(mewerr.ErrDuplicateVariable, stmt.Var, stmt.Span)
		}
	}

	return EdgeRef(et.ID), nil
}

func (a *Analyzer) analyzeUnlink(stmt *parser.UnlinkStmt) (Type, error) {
	if _, err := a.analyzeTarget(stmt.Target); err != nil {
		return Type{}, err
	}
	return Null, nil
}

func (a *Analyzer) analyzeSet(stmt *parser.SetStmt) (Type, error) {
	targetType, err := a.analyzeTarget(stmt.Target)
	if err != nil {
		return Type{}, err
	}

	if targetType.Kind == TNodeRef {
		td, ok := a.reg.GetType(targetType.TypeID)
		if ok {
			for _, attr := range stmt.Assignments {
				if _, has := td.Attributes[attr.Name]; !has {
					detail := mewerr.WithSuggestion(attr.Name, attr.Name, attrNames(td.Attributes))
					return Type{}, mewerr.NewAt(mewerr.ErrUnknownAttribute, detail+" on "+td.Name, attr.Span)
				}
				if _, err := a.AnalyzeExpr(attr.Value); err != nil {
					return Type{}, err
				}
			}
			return Null, nil
		}
	}

	for _, attr := range stmt.Assignments {
		if _, err := a.AnalyzeExpr(attr.Value); err != nil {
			return Type{}, err
		}
	}
	return Null, nil
}

func (a *Analyzer) analyzeWalk(stmt *parser.WalkStmt) (Type, error) {
	fromType, err := a.AnalyzeExpr(stmt.From)
	if err != nil {
		return Type{}, err
	}
	if !fromType.IsRef() && fromType.Kind != TAny {
		return Type{}, mewerr.NewAt(mewerr.ErrNotAReference, "WALK FROM must be a node or edge reference", stmt.Span)
	}

	for _, follow := range stmt.Follow {
		for _, name := range follow.EdgeTypes {
			if name == "*" {
				continue
			}
			if _, ok := a.reg.GetEdgeTypeByName(name); !ok {
				return Type{}, mewerr.NewAt(mewerr.ErrUnknownEdgeType,
					mewerr.WithSuggestion(name, name, a.edgeTypeNames()), follow.Span)
			}
		}
	}

	if stmt.Until != nil {
		ut, err := a.AnalyzeExpr(stmt.Until)
		if err != nil {
			return Type{}, err
		}
		if ut.Kind != TBool && ut.Kind != TAny && ut.Kind != TNull {
			return Type{}, mewerr.NewAt(mewerr.ErrTypeMismatch, "UNTIL clause must be boolean", stmt.Until.Span())
		}
	}

	for _, p := range stmt.ReturnType.Projections {
		if _, err := a.AnalyzeExpr(p.Expr); err != nil {
			return Type{}, err
		}
	}

	return Any, nil
}

func (a *Analyzer) analyzeTarget(t parser.Target) (Type, error) {
	switch t.Kind {
	case parser.TargetVar:
		typ, ok := a.scope.lookup(t.Var)
		if !ok {
			return Type{}, mewerr.NewAt(mewerr.ErrUnknownVariable,
				mewerr.WithSuggestion(t.Var, t.Var, a.scope.names()), t.Span)
		}
		return typ, nil
	case parser.TargetID:
		return AnyNode, nil
	case parser.TargetPattern:
		if _, err := a.analyzeMatch(t.Pattern); err != nil {
			return Type{}, err
		}
		return Any, nil
	case parser.TargetEdgePattern:
		return AnyEdge, nil
	default:
		return Any, nil
	}
}

func (a *Analyzer) analyzeTargetRef(t parser.TargetRef) (Type, error) {
	switch t.Kind {
	case parser.TargetVar:
		typ, ok := a.scope.lookup(t.Var)
		if !ok {
			return Type{}, mewerr.NewAt(mewerr.ErrUnknownVariable,
				mewerr.WithSuggestion(t.Var, t.Var, a.scope.names()), t.Span)
		}
		return typ, nil
	case parser.TargetID:
		return AnyNode, nil
	case parser.TargetPattern:
		if _, err := a.analyzeMatch(t.Pattern); err != nil {
			return Type{}, err
		}
		return Any, nil
	default:
		return Any, nil
	}
}
