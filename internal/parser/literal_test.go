/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bdjafer/mew/internal/parser"
)

// TestParseExprTimestampLiteral confirms an @-prefixed timestamp
// literal is lowered into its millisecond value at parse time (not
// left at the Expr's int zero value), exercising the civil-calendar
// leap-year arithmetic via a post-leap-day date.
func TestParseExprTimestampLiteral(t *testing.T) {
	e, err := parser.New("@2000-03-01T00:00:00Z").ParseExpr()
	require.NoError(t, err)
	require.Equal(t, parser.LitTimestamp, e.LitKind)
	require.Equal(t, int64(951868800000), e.Int)
}

func TestParseExprTimestampLiteralWithOffsetAndFraction(t *testing.T) {
	base, err := parser.New("@2000-03-01T00:00:00Z").ParseExpr()
	require.NoError(t, err)

	// A +02:00 offset at 02:00 local is the same instant as the base.
	offset, err := parser.New("@2000-03-01T02:00:00+02:00").ParseExpr()
	require.NoError(t, err)
	require.Equal(t, base.Int, offset.Int)

	frac, err := parser.New("@2000-03-01T00:00:00.500Z").ParseExpr()
	require.NoError(t, err)
	require.Equal(t, base.Int+500, frac.Int)
}

func TestParseExprTimestampLiteralRejectsMalformedDate(t *testing.T) {
	_, err := parser.New("@2024/01/01").ParseExpr()
	require.Error(t, err)
}

func TestParseExprDurationLiteral(t *testing.T) {
	e, err := parser.New("5d").ParseExpr()
	require.NoError(t, err)
	require.Equal(t, parser.LitDuration, e.LitKind)
	require.Equal(t, int64(5*86_400_000), e.Int)

	e, err = parser.New("100ms").ParseExpr()
	require.NoError(t, err)
	require.Equal(t, int64(100), e.Int)

	e, err = parser.New("1h").ParseExpr()
	require.NoError(t, err)
	require.Equal(t, int64(3_600_000), e.Int)
}
