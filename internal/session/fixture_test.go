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

	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/session"
	"github.com/bdjafer/mew/internal/value"
)

// buildRegistry builds Person/Task node types and an owns edge type,
// enough to exercise every statement kind a Session dispatches.
func buildRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	b := registry.NewBuilder()

	_, err := b.AddType("Person").
		Attr(registry.AttrDef{Name: "name", TypeName: "String", Required: true, Unique: true}).
		Attr(registry.AttrDef{Name: "age", TypeName: "Int", Nullable: true}).
		Done()
	require.NoError(t, err)

	_, err = b.AddType("Task").
		Attr(registry.AttrDef{Name: "title", TypeName: "String", Required: true}).
		Attr(registry.AttrDef{Name: "priority", TypeName: "Int", Nullable: true, Default: defaultInt(1)}).
		Done()
	require.NoError(t, err)

	_, err = b.AddEdgeType("owns").
		Param("owner", "Person").
		Param("task", "Task").
		OnKillAt(1, registry.Cascade).
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

func newSession(t *testing.T) *session.Session {
	t.Helper()
	reg := buildRegistry(t)
	return session.New(1, reg)
}
