/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bdjafer/mew/internal/value"
)

// TestMatchSingleType mirrors a bare node scan: GIVEN two tasks and one
// person, WHEN matching `tk: Task`, THEN only the two tasks come back.
func TestMatchSingleType(t *testing.T) {
	reg, store := newFixture(t)
	taskID := taskTypeID(t, reg)
	personID := personTypeID(t, reg)

	store.CreateNode(taskID, map[string]value.Value{"title": value.String("Task A")})
	store.CreateNode(taskID, map[string]value.Value{"title": value.String("Task B")})
	store.CreateNode(personID, map[string]value.Value{"name": value.String("Carol")})

	rows := compileAndMatch(t, reg, store, "MATCH tk: Task RETURN tk")
	require.Len(t, rows, 2)
}

// TestMatchWithEdge mirrors an edge follow: GIVEN alice owns task1,
// WHEN matching `p: Person, tk: Task, owns(p, tk)`, THEN exactly one
// row binds p to alice and tk to task1.
func TestMatchWithEdge(t *testing.T) {
	reg, store := newFixture(t)
	personID := personTypeID(t, reg)
	taskID := taskTypeID(t, reg)
	ownsID := ownsEdgeTypeID(t, reg)

	alice := store.CreateNode(personID, map[string]value.Value{"name": value.String("Alice")})
	bob := store.CreateNode(personID, map[string]value.Value{"name": value.String("Bob")})
	task1 := store.CreateNode(taskID, map[string]value.Value{"title": value.String("Task1")})
	_ = bob

	_, err := store.CreateEdge(ownsID, []value.NodeId{alice.ID, task1.ID}, nil)
	require.NoError(t, err)

	rows := compileAndMatch(t, reg, store, "MATCH p: Person, tk: Task, owns(p, tk) RETURN p, tk")
	require.Len(t, rows, 1)

	p, ok := rows[0].Get("p")
	require.True(t, ok)
	pid, ok := p.AsNodeRef()
	require.True(t, ok)
	require.Equal(t, alice.ID, pid)

	tk, ok := rows[0].Get("tk")
	require.True(t, ok)
	tkid, ok := tk.AsNodeRef()
	require.True(t, ok)
	require.Equal(t, task1.ID, tkid)
}

// TestMatchWithWhereFilter mirrors a Filter op narrowing a node scan:
// GIVEN tasks of priority 1, 5 and 10, WHEN matching `tk: Task WHERE
// tk.priority > 3`, THEN only the two higher-priority tasks survive.
func TestMatchWithWhereFilter(t *testing.T) {
	reg, store := newFixture(t)
	taskID := taskTypeID(t, reg)

	store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(1)})
	store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(5)})
	store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(10)})

	rows := compileAndMatch(t, reg, store, "MATCH tk: Task WHERE tk.priority > 3 RETURN tk")
	require.Len(t, rows, 2)
}

// TestMatchSymmetricEdgeReverse asserts that a symmetric edge matched
// via a two-node cross-join collapses to exactly one row, not two —
// the forward direction and the synthesized reverse search both reach
// the same underlying edge, and the dedup pass must keep only one.
func TestMatchSymmetricEdgeReverse(t *testing.T) {
	reg, store := newFixture(t)
	personID := personTypeID(t, reg)
	friendID := friendEdgeTypeID(t, reg)

	alice := store.CreateNode(personID, map[string]value.Value{"name": value.String("alice")})
	bob := store.CreateNode(personID, map[string]value.Value{"name": value.String("bob")})

	_, err := store.CreateEdge(friendID, []value.NodeId{alice.ID, bob.ID}, nil)
	require.NoError(t, err)

	rows := compileAndMatch(t, reg, store, "MATCH a: Person, b: Person, f: friend_of(a, b) RETURN a, b")
	require.Len(t, rows, 1)
}

// TestMatchNoEdgeNoMatch asserts FollowEdge yields nothing when the
// pivot node has no outgoing edge of the requested type.
func TestMatchNoEdgeNoMatch(t *testing.T) {
	reg, store := newFixture(t)
	personID := personTypeID(t, reg)
	taskID := taskTypeID(t, reg)

	store.CreateNode(personID, map[string]value.Value{"name": value.String("Dave")})
	store.CreateNode(taskID, map[string]value.Value{"title": value.String("Lonely Task")})

	rows := compileAndMatch(t, reg, store, "MATCH p: Person, tk: Task, owns(p, tk) RETURN p, tk")
	require.Empty(t, rows)
}
