/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mutation

import (
	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/value"
)

// Spawn creates one node of the named type, applying declared defaults
// for attributes the statement leaves unassigned and rejecting the
// statement in full if any assigned or defaulted attribute violates
// its declared constraints, or if the type is abstract.
func (x *Executor) Spawn(stmt *parser.SpawnStmt, b pattern.Bindings) (*Result, error) {
	td, ok := x.reg.GetTypeByName(stmt.TypeName)
	if !ok {
		return nil, mewerr.New(mewerr.ErrUnknownType, stmt.TypeName)
	}
	if td.IsAbstract {
		return nil, mewerr.New(mewerr.ErrAbstractType, stmt.TypeName)
	}

	assigned := make(map[string]bool, len(stmt.Attrs))

	values, err := x.evalAssignments(stmt.Attrs, b)
	if err != nil {
		return nil, err
	}
	for name := range values {
		assigned[name] = true
	}

	for name, def := range td.Attributes {
		if assigned[name] {
			continue
		}
		if def.Default != nil {
			values[name] = *def.Default
			continue
		}
		if def.Required {
			return nil, mewerr.New(mewerr.ErrRequiredMissing, name)
		}
	}

	for name, v := range values {
		def, ok := td.Attributes[name]
		if !ok {
			return nil, mewerr.New(mewerr.ErrUnknownAttribute, name)
		}
		if err := validateAttr(def, v); err != nil {
			return nil, err
		}
		if def.Unique && len(x.store.NodesByAttrEqual(td.ID, name, v)) > 0 {
			return nil, mewerr.New(mewerr.ErrUniqueViolation, name)
		}
	}

	n := x.store.CreateNode(td.ID, values)

	if stmt.Var != "" {
		b.Insert(stmt.Var, value.NodeRef(n.ID))
	}

	res := &Result{NodesAffected: 1}
	if stmt.Returning != nil {
		cols, vals := x.returningNodeRow(stmt.Returning, n)
		res.Returning = singleNodeReturning(cols, vals)
	}
	return res, nil
}

func (x *Executor) evalAssignments(attrs []parser.AttrAssignment, b pattern.Bindings) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(attrs))
	for _, a := range attrs {
		v, err := x.eval.Eval(a.Value, b)
		if err != nil {
			return nil, err
		}
		out[a.Name] = v
	}
	return out, nil
}
