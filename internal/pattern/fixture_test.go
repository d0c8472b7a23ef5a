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

	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// buildTaskRegistry builds Task/Person types, an owns(Person, Task)
// edge type and a symmetric friend_of(Person, Person) edge type.
func buildTaskRegistry(t *testing.T) *registry.Registry {
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

	_, err = b.AddEdgeType("friend_of").
		Param("a", "Person").
		Param("b", "Person").
		Symmetric().
		Done()
	require.NoError(t, err)

	reg, err := b.Build()
	require.NoError(t, err)
	return reg
}

func mustParsePattern(t *testing.T, matchSrc string) *parser.MatchStmt {
	t.Helper()

	stmts, err := parser.New(matchSrc).ParseStmts()
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	require.Equal(t, parser.StmtMatch, stmts[0].Kind)
	return stmts[0].Match
}

func newFixture(t *testing.T) (*registry.Registry, *graph.Store) {
	t.Helper()
	reg := buildTaskRegistry(t)
	return reg, graph.New(reg)
}

func taskTypeID(t *testing.T, reg *registry.Registry) value.TypeId {
	t.Helper()
	td, ok := reg.GetTypeByName("Task")
	require.True(t, ok)
	return td.ID
}

func personTypeID(t *testing.T, reg *registry.Registry) value.TypeId {
	t.Helper()
	td, ok := reg.GetTypeByName("Person")
	require.True(t, ok)
	return td.ID
}

func ownsEdgeTypeID(t *testing.T, reg *registry.Registry) value.EdgeTypeId {
	t.Helper()
	et, ok := reg.GetEdgeTypeByName("owns")
	require.True(t, ok)
	return et.ID
}

func friendEdgeTypeID(t *testing.T, reg *registry.Registry) value.EdgeTypeId {
	t.Helper()
	et, ok := reg.GetEdgeTypeByName("friend_of")
	require.True(t, ok)
	return et.ID
}

// compileAndMatch compiles matchSrc's pattern (plus WHERE, if any)
// against reg/store and returns every resulting binding row.
func compileAndMatch(t *testing.T, reg *registry.Registry, store *graph.Store, matchSrc string) []pattern.Bindings {
	t.Helper()

	m := mustParsePattern(t, matchSrc)
	compiled, err := pattern.Compile(m.Pattern, reg)
	require.NoError(t, err)
	if m.Where != nil {
		compiled = compiled.WithFilter(m.Where)
	}

	matcher := pattern.NewMatcher(reg, store)
	rows, err := matcher.FindAll(compiled, pattern.NewBindings())
	require.NoError(t, err)
	return rows
}
