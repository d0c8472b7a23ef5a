/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package mew is the embeddable entry point: compile an ontology into a
Registry, then open one or more Sessions against it.

	reg, err := mew.Compile(ontologySource)
	if err != nil {
		// CompileError carrying a source span
	}
	s := mew.NewSession(1, reg)
	result, err := s.Execute(`SPAWN p:Person{name="Alice"}`)
*/
package mew

import (
	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/ontology"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/session"
)

// Registry is the frozen schema catalog Compile produces and Session
// reads from; re-exported so callers never need to import internal/registry.
type Registry = registry.Registry

// Session is one graph plus its own session-scoped binding table.
type Session = session.Session

// SessionID identifies a Session within a process.
type SessionID = session.ID

// Result is the tagged union of outcomes Session.Execute/ExecuteAll return.
type Result = session.Result

// Store is one Session's private in-memory graph.
type Store = graph.Store

/*
Compile parses ontology source and lowers it into an immutable
Registry, resolving type-alias chains, lifting attribute and edge
modifiers into the registered types' constraint fields, and
registering node types parents-before-children. A Registry is never
mutated after Compile returns, so it may be shared by every Session
built on top of it.
*/
func Compile(ontologySource string) (*Registry, error) {
	return ontology.Compile(ontologySource)
}

/*
NewSession opens a new Session against reg with its own private graph
store and variable binding table.
*/
func NewSession(id SessionID, reg *Registry) *Session {
	return session.New(id, reg)
}

/*
NewSessionWithStore opens a Session against an existing graph store
instead of a fresh one, for callers that already hold one (e.g. a
coordinator handing out one store shared by several sessions).
*/
func NewSessionWithStore(id SessionID, reg *Registry, store *Store) *Session {
	return session.WithStore(id, reg, store)
}
