/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mewerr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bdjafer/mew/internal/mewerr"
)

func TestSuggestPicksClosestCandidate(t *testing.T) {
	got := mewerr.Suggest("Persn", []string{"Person", "Task", "Project"})
	require.Equal(t, "Person", got)
}

func TestSuggestReturnsEmptyWhenNothingClose(t *testing.T) {
	got := mewerr.Suggest("Xyzzy", []string{"Person", "Task", "Project"})
	require.Empty(t, got)
}

func TestSuggestIgnoresExactMatch(t *testing.T) {
	got := mewerr.Suggest("Person", []string{"Person"})
	require.Empty(t, got)
}

func TestWithSuggestionAppendsHint(t *testing.T) {
	got := mewerr.WithSuggestion("Persn", "Persn", []string{"Person"})
	require.Contains(t, got, `did you mean "Person"?`)
}

func TestWithSuggestionLeavesDetailUnchangedWhenNoCandidate(t *testing.T) {
	got := mewerr.WithSuggestion("Xyzzy", "Xyzzy", []string{"Person"})
	require.Equal(t, "Xyzzy", got)
}
