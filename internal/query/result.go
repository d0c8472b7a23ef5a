/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package query

import "github.com/bdjafer/mew/internal/value"

// QueryRow is one output row, positionally aligned with its
// QueryResult's Columns.
type QueryRow struct {
	Values []value.Value
}

// Get returns the value under column name, using cols (normally the
// owning QueryResult's Columns) to resolve the position.
func (r QueryRow) Get(cols []string, name string) (value.Value, bool) {
	for i, c := range cols {
		if c == name && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return value.Null(), false
}

// QueryResult is a MATCH or WALK statement's output: named columns
// plus the rows produced against them.
type QueryResult struct {
	Columns []string
	Rows    []QueryRow
}

// Get is QueryRow.Get against this result's own Columns.
func (res *QueryResult) Get(row QueryRow, name string) (value.Value, bool) {
	return row.Get(res.Columns, name)
}
