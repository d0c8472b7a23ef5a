/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mutation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bdjafer/mew/internal/mutation"
	"github.com/bdjafer/mew/internal/pattern"
)

func TestMatchMutateLinksEveryMatchedRow(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p1", "Alice")
	spawnTask(t, x, b, "t1", "write report")
	spawnTask(t, x, b, "t2", "review PR")

	stmt := parseOne(t, `MATCH p: Person, tk: Task LINK owns(p, tk)`)
	res, err := x.MatchMutate(stmt.MatchMutate, pattern.NewBindings())
	require.NoError(t, err)
	require.Equal(t, int64(2), res.EdgesAffected)

	et := edgeTypeID(t, reg, "owns")
	require.Len(t, store.EdgesByType(et), 2)
}

func TestMatchMutateAppliesSetAcrossRows(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnTask(t, x, b, "t1", "write report")
	spawnTask(t, x, b, "t2", "review PR")

	stmt := parseOne(t, `MATCH tk: Task SET tk{status="done"}`)
	res, err := x.MatchMutate(stmt.MatchMutate, pattern.NewBindings())
	require.NoError(t, err)
	require.Equal(t, int64(2), res.NodesAffected)

	typeID := typeID(t, reg, "Task")
	for _, n := range store.NodesByType(typeID) {
		status, ok := n.Attrs["status"]
		require.True(t, ok)
		s, ok := status.AsString()
		require.True(t, ok)
		require.Equal(t, "done", s)
	}
}

func TestMatchMutateKillsFilteredRows(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	stmt1 := parseOne(t, `SPAWN t1:Task{title="write report", priority=5}`)
	_, err := x.Spawn(stmt1.Spawn, b)
	require.NoError(t, err)
	stmt2 := parseOne(t, `SPAWN t2:Task{title="review PR", priority=1}`)
	_, err = x.Spawn(stmt2.Spawn, b)
	require.NoError(t, err)

	stmt := parseOne(t, `MATCH tk: Task WHERE tk.priority = 5 KILL tk`)
	res, err := x.MatchMutate(stmt.MatchMutate, pattern.NewBindings())
	require.NoError(t, err)
	require.Equal(t, int64(1), res.NodesAffected)

	typeID := typeID(t, reg, "Task")
	require.Len(t, store.NodesByType(typeID), 1)
}
