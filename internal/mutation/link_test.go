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

func spawnPerson(t *testing.T, x *mutation.Executor, b pattern.Bindings, v, name string) {
	t.Helper()
	stmt := parseOne(t, `SPAWN `+v+`:Person{name="`+name+`"}`)
	_, err := x.Spawn(stmt.Spawn, b)
	require.NoError(t, err)
}

func spawnTask(t *testing.T, x *mutation.Executor, b pattern.Bindings, v, title string) {
	t.Helper()
	stmt := parseOne(t, `SPAWN `+v+`:Task{title="`+title+`"}`)
	_, err := x.Spawn(stmt.Spawn, b)
	require.NoError(t, err)
}

func TestLinkCreatesEdgeAndBindsVar(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p", "Alice")
	spawnTask(t, x, b, "tk", "write report")

	stmt := parseOne(t, `LINK lnk:owns(p, tk) RETURNING id`)
	res, err := x.Link(stmt.Link, b)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.EdgesAffected)
	require.NotNil(t, res.Returning)

	v, ok := b.Get("lnk")
	require.True(t, ok)
	id, ok := v.AsEdgeRef()
	require.True(t, ok)

	e, ok := store.GetEdge(id)
	require.True(t, ok)
	require.Equal(t, edgeTypeID(t, reg, "owns"), e.Type)
}

func TestLinkRejectsCardinalityViolation(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p1", "Alice")
	spawnPerson(t, x, b, "p2", "Bob")
	spawnTask(t, x, b, "tk", "write report")

	stmt1 := parseOne(t, `LINK owns(p1, tk)`)
	_, err := x.Link(stmt1.Link, b)
	require.NoError(t, err)

	stmt2 := parseOne(t, `LINK owns(p2, tk)`)
	_, err = x.Link(stmt2.Link, b)
	require.Error(t, err)
}

func TestLinkRejectsNoSelfViolation(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p", "Alice")

	stmt := parseOne(t, `LINK reports_to(p, p)`)
	_, err := x.Link(stmt.Link, b)
	require.Error(t, err)
}

func TestLinkRejectsAcyclicViolation(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "a", "Alice")
	spawnPerson(t, x, b, "c", "Carol")

	stmt1 := parseOne(t, `LINK reports_to(a, c)`)
	_, err := x.Link(stmt1.Link, b)
	require.NoError(t, err)

	stmt2 := parseOne(t, `LINK reports_to(c, a)`)
	_, err = x.Link(stmt2.Link, b)
	require.Error(t, err)
}

func TestLinkRejectsSymmetricDuplicate(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "a", "Alice")
	spawnPerson(t, x, b, "c", "Carol")

	stmt1 := parseOne(t, `LINK friend_of(a, c)`)
	_, err := x.Link(stmt1.Link, b)
	require.NoError(t, err)

	stmt2 := parseOne(t, `LINK friend_of(c, a)`)
	_, err = x.Link(stmt2.Link, b)
	require.Error(t, err)
}

func TestLinkHigherOrderEdge(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p", "Alice")
	spawnTask(t, x, b, "tk", "write report")

	ownsStmt := parseOne(t, `LINK ownsEdge:owns(p, tk)`)
	_, err := x.Link(ownsStmt.Link, b)
	require.NoError(t, err)

	flagStmt := parseOne(t, `LINK flagged(ownsEdge){reason="needs review"}`)
	res, err := x.Link(flagStmt.Link, b)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.EdgesAffected)
}
