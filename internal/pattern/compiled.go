/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pattern

import (
	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// PatternOpKind discriminates the small set of physical operations a
// pattern element list lowers to.
type PatternOpKind int

const (
	OpScanNodes PatternOpKind = iota
	OpFollowEdge
	OpCheckEdge
	OpFilter
	OpNotExists
)

// PatternOp is one step of a CompiledPattern, executed left to right
// over a growing set of candidate Bindings.
type PatternOp struct {
	Kind PatternOpKind

	// OpScanNodes
	Var    string
	TypeID value.TypeId

	// OpFollowEdge / OpCheckEdge
	EdgeTypeID value.EdgeTypeId
	FromVars   []string // OpFollowEdge: every target var, in declared order
	EdgeVar    string    // OpFollowEdge: optional edge alias, "" if unnamed
	TargetVars []string  // OpCheckEdge: targets including "_" wildcards

	// OpFilter
	Condition *parser.Expr

	// OpNotExists
	Subpattern *CompiledPattern
}

// CompiledPattern is an ordered list of PatternOps produced from a
// parsed pattern element list.
type CompiledPattern struct {
	Ops []PatternOp
}

// WithFilter appends a Filter op evaluating cond against each surviving
// binding row, used to lower a MATCH/EXISTS statement's WHERE clause.
func (c *CompiledPattern) WithFilter(cond *parser.Expr) *CompiledPattern {
	ops := append(append([]PatternOp(nil), c.Ops...), PatternOp{Kind: OpFilter, Condition: cond})
	return &CompiledPattern{Ops: ops}
}

// Compile lowers elems into a CompiledPattern against reg.
func Compile(elems []parser.PatternElement, reg *registry.Registry) (*CompiledPattern, error) {
	return CompileWithPrebound(elems, reg, nil)
}

// CompileWithPrebound is Compile, seeded with variable names already
// bound by an outer scope (used for EXISTS/NOT EXISTS subpatterns,
// which may reference the enclosing match's variables).
func CompileWithPrebound(elems []parser.PatternElement, reg *registry.Registry, prebound []string) (*CompiledPattern, error) {
	bound := make(map[string]bool, len(prebound))
	for _, v := range prebound {
		bound[v] = true
	}

	var ops []PatternOp

	for _, elem := range elems {
		switch e := elem.(type) {
		case *parser.NodePattern:
			if e.TypeName == "" {
				// Bare reference to an already-bound variable: no op needed.
				bound[e.Var] = true
				continue
			}
			td, ok := reg.GetTypeByName(e.TypeName)
			if !ok {
				return nil, mewerr.NewAt(mewerr.ErrUnknownType, e.TypeName, e.Span())
			}
			if bound[e.Var] {
				continue
			}
			ops = append(ops, PatternOp{Kind: OpScanNodes, Var: e.Var, TypeID: td.ID})
			bound[e.Var] = true

		case *parser.EdgePattern:
			et, ok := reg.GetEdgeTypeByName(e.EdgeType)
			if !ok {
				return nil, mewerr.NewAt(mewerr.ErrUnknownEdgeType, e.EdgeType, e.Span())
			}

			if len(e.Targets) > 0 && e.Targets[0] != "_" {
				ops = append(ops, PatternOp{
					Kind:       OpFollowEdge,
					EdgeTypeID: et.ID,
					FromVars:   append([]string(nil), e.Targets...),
					EdgeVar:    e.Var,
				})
			} else {
				// First target is a wildcard: FollowEdge has no source
				// node to pivot from, so fall back to CheckEdge, which
				// pivots on the first bound target's adjacency and
				// filters by whichever targets ARE bound (it yields
				// nothing when every target is a wildcard). This op
				// cannot bind an edge alias, matching
				// the same limitation in the pattern this is grounded on.
				ops = append(ops, PatternOp{
					Kind:       OpCheckEdge,
					EdgeTypeID: et.ID,
					TargetVars: append([]string(nil), e.Targets...),
				})
			}

			if e.Var != "" {
				bound[e.Var] = true
			}
		}
	}

	return &CompiledPattern{Ops: ops}, nil
}
