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

func TestKillDefersToDeclaredOnKillAction(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p", "Alice")
	spawnTask(t, x, b, "tk", "write report")
	linkStmt := parseOne(t, `LINK lnk:owns(p, tk)`)
	_, err := x.Link(linkStmt.Link, b)
	require.NoError(t, err)

	lnk, ok := b.Get("lnk")
	require.True(t, ok)
	edgeID, ok := lnk.AsEdgeRef()
	require.True(t, ok)

	killStmt := parseOne(t, `KILL tk`)
	_, err = x.Kill(killStmt.Kill, b)
	require.NoError(t, err)

	_, ok = store.GetEdge(edgeID)
	require.False(t, ok, "owns edge should cascade away with its Task per OnKillAt(1, Cascade)")
}

func TestKillExplicitNoCascadeRejectsWhenReferenced(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p", "Alice")
	spawnTask(t, x, b, "tk", "write report")
	linkStmt := parseOne(t, `LINK owns(p, tk)`)
	_, err := x.Link(linkStmt.Link, b)
	require.NoError(t, err)

	killStmt := parseOne(t, `KILL tk NO CASCADE`)
	_, err = x.Kill(killStmt.Kill, b)
	require.Error(t, err)
}

func TestKillDefaultRestrictBlocksKill(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "boss", "Alice")
	spawnPerson(t, x, b, "sub", "Bob")
	linkStmt := parseOne(t, `LINK supervises(boss, sub)`)
	_, err := x.Link(linkStmt.Link, b)
	require.NoError(t, err)

	killStmt := parseOne(t, `KILL sub`)
	_, err = x.Kill(killStmt.Kill, b)
	require.Error(t, err)
}

func TestKillExplicitCascadeOverridesRestrict(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "boss", "Alice")
	spawnPerson(t, x, b, "sub", "Bob")
	linkStmt := parseOne(t, `LINK supervises(boss, sub)`)
	_, err := x.Link(linkStmt.Link, b)
	require.NoError(t, err)

	killStmt := parseOne(t, `KILL sub CASCADE`)
	res, err := x.Kill(killStmt.Kill, b)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.NodesAffected)
}

func TestUnlinkByVarRemovesEdge(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "a", "Alice")
	spawnPerson(t, x, b, "c", "Carol")
	linkStmt := parseOne(t, `LINK f:friend_of(a, c)`)
	_, err := x.Link(linkStmt.Link, b)
	require.NoError(t, err)

	f, ok := b.Get("f")
	require.True(t, ok)
	edgeID, ok := f.AsEdgeRef()
	require.True(t, ok)

	unlinkStmt := parseOne(t, `UNLINK f RETURNING id`)
	res, err := x.Unlink(unlinkStmt.Unlink, b)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.EdgesAffected)
	require.NotNil(t, res.Returning)

	_, ok = store.GetEdge(edgeID)
	require.False(t, ok)
}

func TestUnlinkByEdgePattern(t *testing.T) {
	reg, store := newFixture(t)
	x := mutation.NewExecutor(reg, store)
	b := pattern.NewBindings()

	spawnPerson(t, x, b, "p", "Alice")
	spawnTask(t, x, b, "tk", "write report")
	linkStmt := parseOne(t, `LINK owns(p, tk)`)
	_, err := x.Link(linkStmt.Link, b)
	require.NoError(t, err)

	unlinkStmt := parseOne(t, `UNLINK owns(p, tk)`)
	res, err := x.Unlink(unlinkStmt.Unlink, b)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.EdgesAffected)
}
