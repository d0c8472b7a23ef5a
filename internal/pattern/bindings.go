/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package pattern compiles parsed pattern element lists into a small set
of physical ops, matches them breadth-first against a graph.Store, and
evaluates MEW expressions (binary/unary operators, function calls,
EXISTS subpatterns) against one row of variable bindings at a time.
*/
package pattern

import "github.com/bdjafer/mew/internal/value"

const reversePrefix = "_reverse_"

// Bindings maps pattern variable names to the node/edge/scalar value
// bound to them in one partial (or complete) match.
type Bindings map[string]value.Value

// NewBindings returns an empty binding row.
func NewBindings() Bindings {
	return make(Bindings)
}

func (b Bindings) Get(name string) (value.Value, bool) {
	v, ok := b[name]
	return v, ok
}

func (b Bindings) Insert(name string, v value.Value) {
	b[name] = v
}

// Clone returns an independent copy so extending one candidate never
// mutates a sibling candidate sharing the same prefix.
func (b Bindings) Clone() Bindings {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// ExtendWith returns a clone of b with name bound to v.
func (b Bindings) ExtendWith(name string, v value.Value) Bindings {
	out := b.Clone()
	out[name] = v
	return out
}

// Names returns every currently bound variable name.
func (b Bindings) Names() []string {
	out := make([]string, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	return out
}
