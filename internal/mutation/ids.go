/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package mutation

import (
	"strconv"

	"github.com/bdjafer/mew/internal/mewerr"
)

// parseID parses a #id target's digit string into its raw numeric id.
func parseID(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, mewerr.New(mewerr.ErrEntityNotFound, "invalid id reference")
	}
	return n, nil
}
