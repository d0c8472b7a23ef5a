/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package query_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/query"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// buildRegistry builds Task/Person node types, an owns(Person, Task)
// edge type, and a reports_to(Person, Person) edge type used by the
// WALK tests.
func buildRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	b := registry.NewBuilder()

	_, err := b.AddType("Task").
		Attr(registry.AttrDef{Name: "priority", TypeName: "Int"}).
		Attr(registry.AttrDef{Name: "title", TypeName: "String"}).
		Done()
	require.NoError(t, err)

	_, err = b.AddType("Person").
		Attr(registry.AttrDef{Name: "name", TypeName: "String"}).
		Done()
	require.NoError(t, err)

	_, err = b.AddEdgeType("owns").
		Param("owner", "Person").
		Param("task", "Task").
		Done()
	require.NoError(t, err)

	_, err = b.AddEdgeType("reports_to").
		Param("sub", "Person").
		Param("mgr", "Person").
		Done()
	require.NoError(t, err)

	reg, err := b.Build()
	require.NoError(t, err)
	return reg
}

func newQueryFixture(t *testing.T) (*registry.Registry, *graph.Store) {
	t.Helper()
	reg := buildRegistry(t)
	return reg, graph.New(reg)
}

func typeID(t *testing.T, reg *registry.Registry, name string) value.TypeId {
	t.Helper()
	td, ok := reg.GetTypeByName(name)
	require.True(t, ok)
	return td.ID
}

func edgeTypeID(t *testing.T, reg *registry.Registry, name string) value.EdgeTypeId {
	t.Helper()
	et, ok := reg.GetEdgeTypeByName(name)
	require.True(t, ok)
	return et.ID
}

func parseMatch(t *testing.T, src string) *parser.MatchStmt {
	t.Helper()
	stmts, err := parser.New(src).ParseStmts()
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	require.Equal(t, parser.StmtMatch, stmts[0].Kind)
	return stmts[0].Match
}

func parseWalk(t *testing.T, src string) *parser.WalkStmt {
	t.Helper()
	stmts, err := parser.New(src).ParseStmts()
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	require.Equal(t, parser.StmtWalk, stmts[0].Kind)
	return stmts[0].Walk
}
