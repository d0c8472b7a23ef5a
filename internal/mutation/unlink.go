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

// Unlink resolves target to an edge and deletes it, cascading into any
// higher-order edges about it. The RETURNING row is captured before
// the delete.
func (x *Executor) Unlink(stmt *parser.UnlinkStmt, b pattern.Bindings) (*Result, error) {
	id, err := x.resolveTargetAsEdge(stmt.Target, b)
	if err != nil {
		return nil, err
	}
	e, ok := x.store.GetEdge(id)
	if !ok {
		return nil, mewerr.New(mewerr.ErrEntityNotFound, "no such edge")
	}

	res := &Result{EdgesAffected: 1}
	if stmt.Returning != nil {
		cols, vals := x.returningEdgeRow(stmt.Returning, e)
		res.Returning = singleNodeReturning(cols, vals)
	}

	if err := x.store.DeleteEdge(id); err != nil {
		return nil, err
	}
	return res, nil
}
