/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mewerr

import "github.com/krotik/common/stringutil"

// Suggest returns the candidate closest to name by Levenshtein distance,
// for "did you mean" diagnostics on an unknown type/attribute/edge-type/
// variable name. It returns "" when nothing is close enough to plausibly
// be a typo of name rather than an unrelated identifier.
func Suggest(name string, candidates []string) string {
	best := ""
	bestDist := -1
	maxDist := len(name)/3 + 1

	for _, c := range candidates {
		d := stringutil.LevenshteinDistance(name, c)
		if d == 0 || d > maxDist {
			continue
		}
		if bestDist == -1 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// WithSuggestion appends a "did you mean X?" hint to detail when Suggest
// finds a plausible candidate, otherwise returns detail unchanged.
func WithSuggestion(detail, name string, candidates []string) string {
	if s := Suggest(name, candidates); s != "" {
		return detail + ` (did you mean "` + s + `"?)`
	}
	return detail
}
