/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package session

import (
	"time"

	"github.com/bdjafer/mew/internal/query"
)

// ResultKind tags which of Result's sub-fields a statement produced.
type ResultKind int

const (
	ResultQuery ResultKind = iota
	ResultMutation
	ResultTransaction
)

// TransactionState is the outcome of a BEGIN/COMMIT/ROLLBACK statement.
type TransactionState int

const (
	TxnBegun TransactionState = iota
	TxnCommitted
	TxnRolledBack
)

// MutationSummary is a mutation statement's outcome: affected-entity
// counts plus the last RETURNING projection any of its actions carried.
type MutationSummary struct {
	NodesAffected int64
	EdgesAffected int64
	Returning     *query.QueryResult
}

// Result is one statement's outcome, exactly one of whose Kind-selected
// fields is populated: a MATCH/WALK's QueryResult, a mutation's affected
// counts, or a transaction statement's new state.
type Result struct {
	Kind        ResultKind
	Query       *query.QueryResult
	Mutation    *MutationSummary
	Transaction TransactionState

	// Elapsed is set only when the statement ran under PROFILE.
	Elapsed time.Duration
}
