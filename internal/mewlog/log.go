/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package mewlog wires the session coordinator into krotik/common's leveled
logging infrastructure.

Logging never sits on the hot match/evaluate path: the pattern engine and
query executor are pure transformations and do not log. Only the session's
mutation-statement dispatch logs, and only at Debug (applied statement) or
Warn (rejected statement) level.
*/
package mewlog

import (
	"fmt"

	"github.com/krotik/common/logutil"
)

// Scope is the logutil scope used by every MEW logger.
const Scope = "mew"

// Log returns the shared scoped logger for MEW components.
func Log() logutil.Logger {
	return logutil.GetLogger(Scope)
}

// Debugf logs an applied-statement style debug message.
func Debugf(format string, args ...interface{}) {
	Log().Debug(fmt.Sprintf(format, args...))
}

// Warnf logs a rejected-statement style warning message.
func Warnf(format string, args ...interface{}) {
	Log().Warning(fmt.Sprintf(format, args...))
}
