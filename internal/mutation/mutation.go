/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package mutation executes SPAWN, KILL, LINK, UNLINK and SET statements
against a graph.Store, pre-checking every Registry constraint before
the first write so a statement either completes in full or leaves the
graph untouched.
*/
package mutation

import (
	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/query"
	"github.com/bdjafer/mew/internal/registry"
)

// Executor runs mutation statements against one Store, sharing the
// registry and a pattern Evaluator/Matcher with the query pipeline so
// attribute expressions and edge-pattern targets evaluate identically
// in both places.
type Executor struct {
	reg   *registry.Registry
	store *graph.Store
	eval  *pattern.Evaluator
	match *pattern.Matcher
	query *query.Executor
}

func NewExecutor(reg *registry.Registry, store *graph.Store) *Executor {
	return &Executor{
		reg:   reg,
		store: store,
		eval:  pattern.NewEvaluator(reg, store),
		match: pattern.NewMatcher(reg, store),
		query: query.NewExecutor(reg, store),
	}
}

// Result is one mutation statement's outcome: the affected-entity
// counts, plus the RETURNING projection when the statement carried one.
type Result struct {
	NodesAffected int64
	EdgesAffected int64
	Returning     *query.QueryResult
}
