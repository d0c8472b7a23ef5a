/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mew_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bdjafer/mew"
)

func TestCompileAndSessionEndToEnd(t *testing.T) {
	reg, err := mew.Compile(`
		node Person {
			name: String [required, unique]
			age: Int [0..150]
		}
		node Task {
			title: String [required]
		}
		edge owns(owner: Person, task: Task) [on_kill_target: cascade]
	`)
	require.NoError(t, err)

	s := mew.NewSession(1, reg)
	require.False(t, s.InTransaction())

	res, err := s.Execute(`SPAWN p:Person{name="Alice", age=30}`)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Mutation.NodesAffected)

	_, err = s.Execute(`SPAWN tk:Task{title="write report"}`)
	require.NoError(t, err)

	res, err = s.Execute(`LINK owns(p, tk)`)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Mutation.EdgesAffected)

	res, err = s.Execute(`MATCH p: Person RETURN p.name`)
	require.NoError(t, err)
	require.Len(t, res.Query.Rows, 1)
}

func TestCompileRejectsDuplicateType(t *testing.T) {
	_, err := mew.Compile(`
		node Task { title: String }
		node Task { other: String }
	`)
	require.Error(t, err)
}
