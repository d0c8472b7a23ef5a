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
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// Kill resolves target to a node and deletes it, honoring an explicit
// CASCADE/NO CASCADE override over the edge types' declared on_kill
// actions. The RETURNING row is captured before the delete removes the
// node's attributes.
func (x *Executor) Kill(stmt *parser.KillStmt, b pattern.Bindings) (*Result, error) {
	id, err := x.resolveTargetAsNode(stmt.Target, b)
	if err != nil {
		return nil, err
	}
	n, ok := x.store.GetNode(id)
	if !ok {
		return nil, mewerr.New(mewerr.ErrEntityNotFound, "no such node")
	}

	var cols []string
	var vals []value.Value
	if stmt.Returning != nil {
		cols, vals = x.returningNodeRow(stmt.Returning, n)
	}

	var override *registry.ReferentialAction
	if stmt.Cascade != nil {
		if *stmt.Cascade {
			a := registry.Cascade
			override = &a
		} else {
			a := registry.Restrict
			override = &a
		}
	}

	if err := x.store.DeleteNodeWithOverride(id, override); err != nil {
		return nil, err
	}

	res := &Result{NodesAffected: 1}
	if stmt.Returning != nil {
		res.Returning = singleNodeReturning(cols, vals)
	}
	return res, nil
}
