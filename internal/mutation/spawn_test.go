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
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/pattern"
)

func TestSpawnAppliesDefaultAndBindsVar(t *testing.T) {
	reg, store := newFixture(t)
	taskID := typeID(t, reg, "Task")

	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	stmt := parseOne(t, `SPAWN tk:Task{title="write report"}`)
	require.Equal(t, parser.StmtSpawn, stmt.Kind)

	res, err := x.Spawn(stmt.Spawn, b)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.NodesAffected)

	v, ok := b.Get("tk")
	require.True(t, ok)
	id, ok := v.AsNodeRef()
	require.True(t, ok)

	n, ok := store.GetNode(id)
	require.True(t, ok)
	require.Equal(t, taskID, n.Type)

	p, ok := n.Attrs["priority"]
	require.True(t, ok)
	i, ok := p.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(1), i)
}

func TestSpawnRejectsAbstractType(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)

	stmt := parseOne(t, `SPAWN e:Entity{}`)
	_, err := x.Spawn(stmt.Spawn, pattern.NewBindings())
	require.Error(t, err)
}

func TestSpawnRejectsRequiredMissing(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)

	stmt := parseOne(t, `SPAWN tk:Task{}`)
	_, err := x.Spawn(stmt.Spawn, pattern.NewBindings())
	require.Error(t, err)
}

func TestSpawnRejectsEnumViolation(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)

	stmt := parseOne(t, `SPAWN tk:Task{title="x", status="bogus"}`)
	_, err := x.Spawn(stmt.Spawn, pattern.NewBindings())
	require.Error(t, err)
}

func TestSpawnRejectsUniqueViolation(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)

	stmt := parseOne(t, `SPAWN p:Person{name="Alice"}`)
	_, err := x.Spawn(stmt.Spawn, pattern.NewBindings())
	require.NoError(t, err)

	stmt2 := parseOne(t, `SPAWN p2:Person{name="Alice"}`)
	_, err = x.Spawn(stmt2.Spawn, pattern.NewBindings())
	require.Error(t, err)
}

func TestSpawnReturningID(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)

	stmt := parseOne(t, `SPAWN p:Person{name="Bob"} RETURNING id`)
	res, err := x.Spawn(stmt.Spawn, pattern.NewBindings())
	require.NoError(t, err)
	require.NotNil(t, res.Returning)
	require.Equal(t, []string{"id"}, res.Returning.Columns)
	require.Len(t, res.Returning.Rows, 1)
}
