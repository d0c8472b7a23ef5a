/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pattern_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/pattern"
	"github.com/bdjafer/mew/internal/value"
)

// parseExpr parses src as a standalone expression, via the WHERE
// clause of a throwaway MATCH, and returns its expression tree.
func parseExpr(t *testing.T, src string) *parser.Expr {
	t.Helper()
	stmts, err := parser.New("MATCH x: Task WHERE " + src + " RETURN x").ParseStmts()
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	return stmts[0].Match.Where
}

// TestEvalArithmetic checks straightforward Int arithmetic: the result
// stays Int, and Int division truncates.
func TestEvalArithmetic(t *testing.T) {
	reg, store := newFixture(t)
	ev := pattern.NewEvaluator(reg, store)

	v, err := ev.Eval(parseExpr(t, "1 + 2 = 3"), pattern.NewBindings())
	require.NoError(t, err)
	b, ok := v.AsBool()
	require.True(t, ok)
	require.True(t, b)

	v, err = ev.Eval(parseExpr(t, "(10 - 4) * 2"), pattern.NewBindings())
	require.NoError(t, err)
	i, ok := v.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(12), i)

	v, err = ev.Eval(parseExpr(t, "7 / 2"), pattern.NewBindings())
	require.NoError(t, err)
	i, ok = v.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(3), i)
}

// TestEvalComparison checks ordering and the three-valued AND truth
// table for NULL operands.
func TestEvalComparison(t *testing.T) {
	reg, store := newFixture(t)
	ev := pattern.NewEvaluator(reg, store)

	v, err := ev.Eval(parseExpr(t, "3 < 5"), pattern.NewBindings())
	require.NoError(t, err)
	b, _ := v.AsBool()
	require.True(t, b)

	v, err = ev.Eval(parseExpr(t, "null and true"), pattern.NewBindings())
	require.NoError(t, err)
	require.True(t, v.IsNull())

	v, err = ev.Eval(parseExpr(t, "null and false"), pattern.NewBindings())
	require.NoError(t, err)
	b, ok := v.AsBool()
	require.True(t, ok)
	require.False(t, b)

	v, err = ev.Eval(parseExpr(t, "null or true"), pattern.NewBindings())
	require.NoError(t, err)
	b, ok = v.AsBool()
	require.True(t, ok)
	require.True(t, b)
}

// TestEvalAttributeAccess resolves a node attribute through a bound
// variable.
func TestEvalAttributeAccess(t *testing.T) {
	reg, store := newFixture(t)
	taskID := taskTypeID(t, reg)
	task := store.CreateNode(taskID, map[string]value.Value{"priority": value.Int(7)})

	ev := pattern.NewEvaluator(reg, store)
	b := pattern.NewBindings()
	b.Insert("tk", value.NodeRef(task.ID))

	v, err := ev.Eval(parseExpr(t, "tk.priority"), b)
	require.NoError(t, err)
	i, ok := v.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(7), i)
}

// TestEvalUnboundVariableError reports ErrUnboundVariable rather than
// silently evaluating to Null.
func TestEvalUnboundVariableError(t *testing.T) {
	reg, store := newFixture(t)
	ev := pattern.NewEvaluator(reg, store)

	_, err := ev.Eval(parseExpr(t, "ghost"), pattern.NewBindings())
	require.Error(t, err)
	require.ErrorIs(t, err, mewerr.ErrUnboundVariable)
}

// TestEvalDivisionByZero reports ErrDivisionByZero for Int division.
func TestEvalDivisionByZero(t *testing.T) {
	reg, store := newFixture(t)
	ev := pattern.NewEvaluator(reg, store)

	_, err := ev.Eval(parseExpr(t, "1 / 0"), pattern.NewBindings())
	require.Error(t, err)
	require.ErrorIs(t, err, mewerr.ErrDivisionByZero)
}

// TestEvalBuiltinStringFunctions exercises a representative slice of
// the builtin function table.
func TestEvalBuiltinStringFunctions(t *testing.T) {
	reg, store := newFixture(t)
	ev := pattern.NewEvaluator(reg, store)

	v, err := ev.Eval(parseExpr(t, "upper(\"abc\") = \"ABC\""), pattern.NewBindings())
	require.NoError(t, err)
	b, _ := v.AsBool()
	require.True(t, b)

	v, err = ev.Eval(parseExpr(t, "starts_with(\"hello\", \"he\")"), pattern.NewBindings())
	require.NoError(t, err)
	b, _ = v.AsBool()
	require.True(t, b)

	v, err = ev.Eval(parseExpr(t, "coalesce(null, null, 5)"), pattern.NewBindings())
	require.NoError(t, err)
	i, ok := v.AsInt()
	require.True(t, ok)
	require.Equal(t, int64(5), i)
}

// TestEvalTimestampLiteral confirms an @-prefixed timestamp literal is
// actually parsed into its millisecond value, via the civil-calendar
// formula, rather than evaluating to the zero value regardless of what
// was written (2000-03-01 falls after the Feb 29 leap day, exercising
// DaysFromCivil's leap-year handling).
func TestEvalTimestampLiteral(t *testing.T) {
	reg, store := newFixture(t)
	ev := pattern.NewEvaluator(reg, store)

	v, err := ev.Eval(parseExpr(t, "@2000-03-01T00:00:00Z"), pattern.NewBindings())
	require.NoError(t, err)
	ms, ok := v.AsTimestamp()
	require.True(t, ok)
	require.Equal(t, value.CivilToTimestamp(2000, 3, 1, 0, 0, 0, 0, 0), ms)
	require.NotZero(t, ms)

	// A positive UTC offset shifts the instant earlier.
	v, err = ev.Eval(parseExpr(t, "@2000-03-01T02:00:00+02:00"), pattern.NewBindings())
	require.NoError(t, err)
	offsetMs, ok := v.AsTimestamp()
	require.True(t, ok)
	require.Equal(t, ms, offsetMs)

	v, err = ev.Eval(parseExpr(t, "@2000-03-01T00:00:00.500Z"), pattern.NewBindings())
	require.NoError(t, err)
	fracMs, ok := v.AsTimestamp()
	require.True(t, ok)
	require.Equal(t, ms+500, fracMs)
}

// TestEvalDurationLiteral confirms duration suffix literals parse into
// their millisecond value rather than always evaluating to 0.
func TestEvalDurationLiteral(t *testing.T) {
	reg, store := newFixture(t)
	ev := pattern.NewEvaluator(reg, store)

	v, err := ev.Eval(parseExpr(t, "5d"), pattern.NewBindings())
	require.NoError(t, err)
	d, ok := v.AsDuration()
	require.True(t, ok)
	require.Equal(t, int64(5*86_400_000), d)

	v, err = ev.Eval(parseExpr(t, "100ms"), pattern.NewBindings())
	require.NoError(t, err)
	d, ok = v.AsDuration()
	require.True(t, ok)
	require.Equal(t, int64(100), d)

	v, err = ev.Eval(parseExpr(t, "1h"), pattern.NewBindings())
	require.NoError(t, err)
	d, ok = v.AsDuration()
	require.True(t, ok)
	require.Equal(t, int64(3_600_000), d)
}
