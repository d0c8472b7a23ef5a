/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package registry

import "github.com/bdjafer/mew/internal/value"

// subtypeIndex maps each TypeId to the set of its transitive descendants,
// built once from the parent-id DAG after every type has been registered.
type subtypeIndex struct {
	descendants map[value.TypeId][]value.TypeId
	ancestors   map[value.TypeId]map[value.TypeId]bool
}

func buildSubtypeIndex(types map[value.TypeId]TypeDef) subtypeIndex {
	ancestors := make(map[value.TypeId]map[value.TypeId]bool, len(types))

	var resolve func(id value.TypeId) map[value.TypeId]bool
	resolve = func(id value.TypeId) map[value.TypeId]bool {
		if a, ok := ancestors[id]; ok {
			return a
		}
		a := make(map[value.TypeId]bool)
		ancestors[id] = a // break cycles defensively; the compiler rejects cyclic parents earlier
		def, ok := types[id]
		if !ok {
			return a
		}
		for _, p := range def.ParentIDs {
			a[p] = true
			for anc := range resolve(p) {
				a[anc] = true
			}
		}
		return a
	}

	for id := range types {
		resolve(id)
	}

	descendants := make(map[value.TypeId][]value.TypeId)
	for id, a := range ancestors {
		for anc := range a {
			descendants[anc] = append(descendants[anc], id)
		}
	}

	return subtypeIndex{descendants: descendants, ancestors: ancestors}
}

func (s subtypeIndex) isSubtype(a, b value.TypeId) bool {
	if a == b {
		return true
	}
	return s.ancestors[a][b]
}

func (s subtypeIndex) subtypesOf(id value.TypeId) []value.TypeId {
	return s.descendants[id]
}
