/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package query_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/query"
	"github.com/bdjafer/mew/internal/value"
)

// TestExecuteMatchBasicScan mirrors a bare node scan reaching the
// executor's top-level entry point.
func TestExecuteMatchBasicScan(t *testing.T) {
	reg, store := newQueryFixture(t)
	taskID := typeID(t, reg, "Task")

	store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(1), "title": value.String("a")})
	store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(5), "title": value.String("b")})

	exec := query.NewExecutor(reg, store)
	res, err := exec.ExecuteMatch(parseMatch(t, "MATCH tk: Task RETURN tk"))
	require.NoError(t, err)
	require.Equal(t, []string{"tk"}, res.Columns)
	require.Len(t, res.Rows, 2)
}

// TestExecuteMatchIndexScanFilter exercises the IndexScan path: an
// equality WHERE conjunct against a freshly-scanned variable's
// attribute should plan to IndexScan and still return the right rows.
func TestExecuteMatchIndexScanFilter(t *testing.T) {
	reg, store := newQueryFixture(t)
	taskID := typeID(t, reg, "Task")

	store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(1), "title": value.String("a")})
	store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(5), "title": value.String("b")})
	store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(5), "title": value.String("c")})

	exec := query.NewExecutor(reg, store)
	res, err := exec.ExecuteMatch(parseMatch(t, "MATCH tk: Task WHERE tk.priority = 5 RETURN tk.title AS title"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	var titles []string
	for _, row := range res.Rows {
		v, ok := res.Get(row, "title")
		require.True(t, ok)
		s, ok := v.AsString()
		require.True(t, ok)
		titles = append(titles, s)
	}
	require.ElementsMatch(t, []string{"b", "c"}, titles)
}

// TestExecuteMatchSortLimitOffset checks that ORDER BY / LIMIT /
// OFFSET compose as the planner rule orders them.
func TestExecuteMatchSortLimitOffset(t *testing.T) {
	reg, store := newQueryFixture(t)
	taskID := typeID(t, reg, "Task")

	for _, p := range []int64{3, 1, 2} {
		store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(p)})
	}

	exec := query.NewExecutor(reg, store)
	res, err := exec.ExecuteMatch(parseMatch(t, "MATCH tk: Task RETURN tk.priority AS p ORDER BY p LIMIT 2 OFFSET 1"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	p0, _ := res.Get(res.Rows[0], "p")
	p1, _ := res.Get(res.Rows[1], "p")
	i0, _ := p0.AsInt()
	i1, _ := p1.AsInt()
	require.Equal(t, int64(2), i0)
	require.Equal(t, int64(3), i1)
}

// TestExecuteMatchAggregateCount mirrors a group-less COUNT(*) query.
func TestExecuteMatchAggregateCount(t *testing.T) {
	reg, store := newQueryFixture(t)
	taskID := typeID(t, reg, "Task")

	store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(1)})
	store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(2)})

	exec := query.NewExecutor(reg, store)
	res, err := exec.ExecuteMatch(parseMatch(t, "MATCH tk: Task RETURN count(*) AS n"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	n, ok := res.Get(res.Rows[0], "n")
	require.True(t, ok)
	i, ok := n.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(2), i)
}

// TestExecuteMatchAggregateEmptyCountZero mirrors spec's rule that an
// empty input with no group-by still returns one row, COUNT = 0.
func TestExecuteMatchAggregateEmptyCountZero(t *testing.T) {
	reg, store := newQueryFixture(t)

	exec := query.NewExecutor(reg, store)
	res, err := exec.ExecuteMatch(parseMatch(t, "MATCH tk: Task RETURN count(*) AS n, sum(tk.priority) AS total"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	n, _ := res.Get(res.Rows[0], "n")
	i, _ := n.AsInt()
	require.Equal(t, int64(0), i)

	total, _ := res.Get(res.Rows[0], "total")
	require.True(t, total.IsNull())
}

// TestExecuteMatchOwnsEdge mirrors the owns(Person, Task) join used
// throughout the fixture, confirming EdgeJoin delegates correctly to
// the pattern package's FollowEdge.
func TestExecuteMatchOwnsEdge(t *testing.T) {
	reg, store := newQueryFixture(t)
	personID := typeID(t, reg, "Person")
	taskID := typeID(t, reg, "Task")
	ownsID := edgeTypeID(t, reg, "owns")

	alice := store.CreateNode(personID, map[string]value.Value{"name": value.String("alice")})
	task := store.CreateNode(taskID, map[string]value.Value{"title": value.String("write")})
	_, err := store.CreateEdge(ownsID, []value.NodeId{alice.ID, task.ID}, nil)
	require.NoError(t, err)

	exec := query.NewExecutor(reg, store)
	res, err := exec.ExecuteMatch(parseMatch(t, "MATCH p: Person, tk: Task, owns(p, tk) RETURN p, tk"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
}

// TestExecuteMatchOptionalMatch mirrors OPTIONAL MATCH's
// LeftOuterJoin: a person with no owned task still appears, with the
// task column bound to Null.
func TestExecuteMatchOptionalMatch(t *testing.T) {
	reg, store := newQueryFixture(t)
	personID := typeID(t, reg, "Person")

	store.CreateNode(personID, map[string]value.Value{"name": value.String("dave")})

	exec := query.NewExecutor(reg, store)
	res, err := exec.ExecuteMatch(parseMatch(t,
		"MATCH p: Person OPTIONAL MATCH tk: Task, owns(p, tk) RETURN p, tk"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	tk, ok := res.Get(res.Rows[0], "tk")
	require.True(t, ok)
	require.True(t, tk.IsNull())
}

// TestExecuteWalkNodesWithCycle mirrors the WALK worked example: chain
// A->B->C plus a back-edge C->A on reports_to; RETURN NODES yields A,
// B, C exactly once each despite the cycle.
func TestExecuteWalkNodesWithCycle(t *testing.T) {
	reg, store := newQueryFixture(t)
	personID := typeID(t, reg, "Person")
	reportsID := edgeTypeID(t, reg, "reports_to")

	a := store.CreateNode(personID, map[string]value.Value{"name": value.String("A")})
	b := store.CreateNode(personID, map[string]value.Value{"name": value.String("B")})
	c := store.CreateNode(personID, map[string]value.Value{"name": value.String("C")})

	_, err := store.CreateEdge(reportsID, []value.NodeId{a.ID, b.ID}, nil)
	require.NoError(t, err)
	_, err = store.CreateEdge(reportsID, []value.NodeId{b.ID, c.ID}, nil)
	require.NoError(t, err)
	_, err = store.CreateEdge(reportsID, []value.NodeId{c.ID, a.ID}, nil)
	require.NoError(t, err)

	exec := query.NewExecutor(reg, store)
	res, err := exec.ExecuteWalk(parseWalk(t, "WALK FROM #"+idOf(a)+" FOLLOW reports_to RETURN NODES"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	var ids []value.NodeId
	for _, row := range res.Rows {
		v, _ := res.Get(row, "node")
		id, ok := v.AsNodeRef()
		require.True(t, ok)
		ids = append(ids, id)
	}
	require.ElementsMatch(t, []value.NodeId{a.ID, b.ID, c.ID}, ids)
}

// TestExecuteWalkDepthBound mirrors the same fixture with an explicit
// DEPTH:1..1 bound, yielding only B.
func TestExecuteWalkDepthBound(t *testing.T) {
	reg, store := newQueryFixture(t)
	personID := typeID(t, reg, "Person")
	reportsID := edgeTypeID(t, reg, "reports_to")

	a := store.CreateNode(personID, map[string]value.Value{"name": value.String("A")})
	b := store.CreateNode(personID, map[string]value.Value{"name": value.String("B")})
	c := store.CreateNode(personID, map[string]value.Value{"name": value.String("C")})

	_, err := store.CreateEdge(reportsID, []value.NodeId{a.ID, b.ID}, nil)
	require.NoError(t, err)
	_, err = store.CreateEdge(reportsID, []value.NodeId{b.ID, c.ID}, nil)
	require.NoError(t, err)
	_, err = store.CreateEdge(reportsID, []value.NodeId{c.ID, a.ID}, nil)
	require.NoError(t, err)

	exec := query.NewExecutor(reg, store)
	res, err := exec.ExecuteWalk(parseWalk(t, "WALK FROM #"+idOf(a)+" FOLLOW reports_to [DEPTH: 1..1] RETURN NODES"))
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	v, _ := res.Get(res.Rows[0], "node")
	id, _ := v.AsNodeRef()
	require.Equal(t, b.ID, id)
}

func idOf(n *graph.Node) string {
	return strconv.FormatUint(uint64(n.ID), 10)
}
