/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package session_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bdjafer/mew/internal/session"
)

func TestNewSessionDefaults(t *testing.T) {
	s := newSession(t)
	require.Equal(t, session.ID(1), s.ID())
	require.True(t, s.IsAutoCommit())
	require.False(t, s.InTransaction())
}

func TestExecuteSpawnBindsVarAcrossCalls(t *testing.T) {
	s := newSession(t)

	res, err := s.Execute(`SPAWN p:Person{name="Alice"}`)
	require.NoError(t, err)
	require.Equal(t, session.ResultMutation, res.Kind)
	require.Equal(t, int64(1), res.Mutation.NodesAffected)

	_, err = s.Execute(`SPAWN tk:Task{title="write report"}`)
	require.NoError(t, err)

	res, err = s.Execute(`LINK owns(p, tk) RETURNING id`)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Mutation.EdgesAffected)
	require.NotNil(t, res.Mutation.Returning)
	_, ok := res.Mutation.Returning.Rows[0].Values[0].AsEdgeRef()
	require.True(t, ok)
}

func TestExecuteAllAggregatesMutationCounts(t *testing.T) {
	s := newSession(t)

	res, err := s.ExecuteAll(`
		SPAWN p:Person{name="Alice"}
		SPAWN tk:Task{title="write report"}
		LINK owns(p, tk)
	`)
	require.NoError(t, err)
	require.Equal(t, session.ResultMutation, res.Kind)
	require.Equal(t, int64(2), res.Mutation.NodesAffected)
	require.Equal(t, int64(1), res.Mutation.EdgesAffected)
}

func TestExecuteAllEmptyInputReturnsZeroMutation(t *testing.T) {
	s := newSession(t)
	res, err := s.ExecuteAll("   ")
	require.NoError(t, err)
	require.Equal(t, session.ResultMutation, res.Kind)
	require.Equal(t, int64(0), res.Mutation.NodesAffected)
	require.Equal(t, int64(0), res.Mutation.EdgesAffected)
}

func TestTransactionLifecycle(t *testing.T) {
	s := newSession(t)

	res, err := s.Execute("BEGIN")
	require.NoError(t, err)
	require.Equal(t, session.ResultTransaction, res.Kind)
	require.Equal(t, session.TxnBegun, res.Transaction)
	require.True(t, s.InTransaction())

	_, err = s.Execute("BEGIN")
	require.Error(t, err)

	res, err = s.Execute("COMMIT")
	require.NoError(t, err)
	require.Equal(t, session.TxnCommitted, res.Transaction)
	require.False(t, s.InTransaction())

	_, err = s.Execute("COMMIT")
	require.Error(t, err)

	_, err = s.Execute("ROLLBACK")
	require.Error(t, err)
}

func TestRollbackFlipsTransactionState(t *testing.T) {
	s := newSession(t)
	_, err := s.Execute("BEGIN")
	require.NoError(t, err)

	res, err := s.Execute("ROLLBACK")
	require.NoError(t, err)
	require.Equal(t, session.TxnRolledBack, res.Transaction)
	require.False(t, s.InTransaction())
}

func TestMatchMutateSeesSessionBoundVariable(t *testing.T) {
	s := newSession(t)

	_, err := s.Execute(`SPAWN p:Person{name="Alice"}`)
	require.NoError(t, err)
	_, err = s.Execute(`SPAWN tk:Task{title="write report"}`)
	require.NoError(t, err)

	res, err := s.Execute(`MATCH t2: Task WHERE t2.title = "write report" LINK owns(p, t2)`)
	require.NoError(t, err)
	require.Equal(t, session.ResultMutation, res.Kind)
	require.Equal(t, int64(1), res.Mutation.EdgesAffected)
}

func TestInspectFullDumpAndNotFound(t *testing.T) {
	s := newSession(t)

	_, err := s.Execute(`SPAWN p:Person{name="Alice", age=30}`)
	require.NoError(t, err)

	res, err := s.Execute(`INSPECT #1`)
	require.NoError(t, err)
	require.Equal(t, session.ResultQuery, res.Kind)
	require.Contains(t, res.Query.Columns, "_type")
	require.Contains(t, res.Query.Columns, "name")

	res, err = s.Execute(`INSPECT #999`)
	require.NoError(t, err)
	require.Equal(t, []string{"found"}, res.Query.Columns)
	found, ok := res.Query.Rows[0].Values[0].AsBool()
	require.True(t, ok)
	require.False(t, found)
}

func TestInspectProjection(t *testing.T) {
	s := newSession(t)
	_, err := s.Execute(`SPAWN p:Person{name="Alice", age=30}`)
	require.NoError(t, err)

	res, err := s.Execute(`INSPECT #1 RETURN name, _type`)
	require.NoError(t, err)
	require.Equal(t, []string{"name", "_type"}, res.Query.Columns)
	name, ok := res.Query.Rows[0].Values[0].AsString()
	require.True(t, ok)
	require.Equal(t, "Alice", name)
}

func TestExplainMatchDescribesPlanTree(t *testing.T) {
	s := newSession(t)
	res, err := s.Execute(`EXPLAIN MATCH p: Person RETURN p`)
	require.NoError(t, err)
	require.Equal(t, session.ResultQuery, res.Kind)
	require.Equal(t, []string{"plan"}, res.Query.Columns)
	require.NotEmpty(t, res.Query.Rows)
}

func TestProfileSpawnReportsElapsed(t *testing.T) {
	s := newSession(t)
	res, err := s.Execute(`PROFILE SPAWN p:Person{name="Alice"}`)
	require.NoError(t, err)
	require.Equal(t, session.ResultMutation, res.Kind)
	require.Equal(t, int64(1), res.Mutation.NodesAffected)
	require.GreaterOrEqual(t, res.Elapsed.Nanoseconds(), int64(0))
}
