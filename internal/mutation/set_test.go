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

func TestSetNodeAttrApplies(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p", "Alice")

	stmt := parseOne(t, `SET p.age = 30`)
	res, err := x.Set(stmt.Set, b)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.NodesAffected)

	v, ok := b.Get("p")
	require.True(t, ok)
	id, ok := v.AsNodeRef()
	require.True(t, ok)
	n, ok := store.GetNode(id)
	require.True(t, ok)
	age, ok := n.Attrs["age"]
	require.True(t, ok)
	i, ok := age.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(30), i)
}

func TestSetRejectsRangeViolation(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p", "Alice")

	stmt := parseOne(t, `SET p.age = 200`)
	_, err := x.Set(stmt.Set, b)
	require.Error(t, err)
}

func TestSetRejectsEnumViolation(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnTask(t, x, b, "tk", "write report")

	stmt := parseOne(t, `SET tk.status = "bogus"`)
	_, err := x.Set(stmt.Set, b)
	require.Error(t, err)
}

func TestSetAllowsReassigningOwnCurrentUniqueValue(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p", "Alice")

	stmt := parseOne(t, `SET p{name="Alice"}`)
	_, err := x.Set(stmt.Set, b)
	require.NoError(t, err)
}

func TestSetRejectsUniqueViolationAgainstOtherNode(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "a", "Alice")
	spawnPerson(t, x, b, "c", "Carol")

	stmt := parseOne(t, `SET c.name = "Alice"`)
	_, err := x.Set(stmt.Set, b)
	require.Error(t, err)
}

func TestSetEdgeAttrApplies(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p", "Alice")
	spawnTask(t, x, b, "tk", "write report")
	linkStmt := parseOne(t, `LINK ownsEdge:owns(p, tk)`)
	_, err := x.Link(linkStmt.Link, b)
	require.NoError(t, err)

	flagStmt := parseOne(t, `LINK f:flagged(ownsEdge){reason="initial"}`)
	_, err = x.Link(flagStmt.Link, b)
	require.NoError(t, err)

	setStmt := parseOne(t, `SET f.reason = "updated"`)
	res, err := x.Set(setStmt.Set, b)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.EdgesAffected)

	v, ok := b.Get("f")
	require.True(t, ok)
	edgeID, ok := v.AsEdgeRef()
	require.True(t, ok)
	e, ok := store.GetEdge(edgeID)
	require.True(t, ok)
	reason, ok := e.Attrs["reason"]
	require.True(t, ok)
	s, ok := reason.AsString()
	require.True(t, ok)
	require.Equal(t, "updated", s)
}

func TestSetResolvesBareIDAgainstNodeOrEdge(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p", "Alice")
	v, ok := b.Get("p")
	require.True(t, ok)
	nodeID, ok := v.AsNodeRef()
	require.True(t, ok)

	stmt := parseOne(t, `SET #`+itoa(uint64(nodeID))+`.age = 40`)
	res, err := x.Set(stmt.Set, b)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.NodesAffected)
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
