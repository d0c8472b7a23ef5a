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

	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// buildRegistry builds Person/Task node types, an abstract Entity type,
// and owns/reports_to/friend_of/flagged/supervises edge types exercising
// unique/acyclic/symmetric/no_self/cardinality/on_kill constraints and a
// higher-order edge.
func buildRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	b := registry.NewBuilder()

	_, err := b.AddType("Entity").Abstract().Done()
	require.NoError(t, err)

	_, err = b.AddType("Person").
		Extends("Entity").
		Attr(registry.AttrDef{Name: "name", TypeName: "String", Required: true, Unique: true}).
		Attr(registry.AttrDef{Name: "age", TypeName: "Int", Nullable: true, HasRange: true, RangeMin: 0, RangeMax: 150}).
		Done()
	require.NoError(t, err)

	_, err = b.AddType("Task").
		Attr(registry.AttrDef{Name: "title", TypeName: "String", Required: true}).
		Attr(registry.AttrDef{Name: "priority", TypeName: "Int", Nullable: true, Default: defaultInt(1)}).
		Attr(registry.AttrDef{Name: "status", TypeName: "String", Nullable: true, HasEnum: true, Enum: []string{"open", "done"}}).
		Done()
	require.NoError(t, err)

	one := uint32(1)
	_, err = b.AddEdgeType("owns").
		Param("owner", "Person").
		Param("task", "Task").
		WithCardinality("task", 0, &one).
		OnKillAt(1, registry.Cascade).
		Done()
	require.NoError(t, err)

	_, err = b.AddEdgeType("reports_to").
		Param("sub", "Person").
		Param("mgr", "Person").
		Acyclic().
		NoSelf().
		Done()
	require.NoError(t, err)

	_, err = b.AddEdgeType("friend_of").
		Param("a", "Person").
		Param("b", "Person").
		Symmetric().
		UniqueEdge().
		NoSelf().
		Done()
	require.NoError(t, err)

	_, err = b.AddEdgeType("flagged").
		Param("about", "owns").
		Attr(registry.AttrDef{Name: "reason", TypeName: "String", Nullable: true}).
		Done()
	require.NoError(t, err)

	_, err = b.AddEdgeType("supervises").
		Param("boss", "Person").
		Param("sub", "Person").
		OnKillAt(1, registry.Restrict).
		Done()
	require.NoError(t, err)

	reg, err := b.Build()
	require.NoError(t, err)
	return reg
}

func defaultInt(n int64) *value.Value {
	v := value.Int(n)
	return &v
}

func newFixture(t *testing.T) (*registry.Registry, *graph.Store) {
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

func parseOne(t *testing.T, src string) *parser.Stmt {
	t.Helper()
	stmts, err := parser.New(src).ParseStmts()
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	return stmts[0]
}
