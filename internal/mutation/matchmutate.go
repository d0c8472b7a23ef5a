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
)

// MatchMutate compiles the pattern once, then for every binding row it
// produces runs the declared mutation actions in order with that row's
// bindings available as variables, aggregating affected counts across
// every row. The statement carries no RETURNING clause of its own; an
// embedded action's own RETURNING is honored and the last one executed
// wins, matching the session's "last write" textual order. initial seeds
// the match with variables already bound by earlier statements in the
// same session, so a mutation action can reference them alongside the
// pattern's own variables.
func (x *Executor) MatchMutate(stmt *parser.MatchMutateStmt, initial pattern.Bindings) (*Result, error) {
	compiled, err := pattern.Compile(stmt.Pattern, x.reg)
	if err != nil {
		return nil, err
	}
	if stmt.Where != nil {
		compiled = compiled.WithFilter(stmt.Where)
	}

	rows, err := x.match.FindAll(compiled, initial)
	if err != nil {
		return nil, err
	}

	total := &Result{}
	for _, b := range rows {
		row := b.Clone()
		for _, action := range stmt.Mutations {
			r, err := x.runAction(action, row)
			if err != nil {
				return nil, err
			}
			total.NodesAffected += r.NodesAffected
			total.EdgesAffected += r.EdgesAffected
			if r.Returning != nil {
				total.Returning = r.Returning
			}
		}
	}
	return total, nil
}

func (x *Executor) runAction(action parser.MutationAction, b pattern.Bindings) (*Result, error) {
	switch action.Kind {
	case parser.ActionLink:
		return x.Link(action.Link, b)
	case parser.ActionSet:
		return x.Set(action.Set, b)
	case parser.ActionKill:
		return x.Kill(action.Kill, b)
	case parser.ActionUnlink:
		return x.Unlink(action.Unlink, b)
	default:
		return nil, mewerr.New(mewerr.ErrTargetTypeMismatch, "unknown mutation action")
	}
}
