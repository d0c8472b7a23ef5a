/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package pattern

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bdjafer/mew/internal/graph"
	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
	"github.com/bdjafer/mew/internal/registry"
	"github.com/bdjafer/mew/internal/value"
)

// Evaluator computes the runtime Value of an expression tree against
// one row of variable Bindings. Null propagates through arithmetic and
// comparisons; AND/OR follow Kleene three-valued logic, skipping the
// right operand only when the left one already decides the result
// (false for AND, true for OR).
type Evaluator struct {
	reg   *registry.Registry
	store *graph.Store
}

func NewEvaluator(reg *registry.Registry, store *graph.Store) *Evaluator {
	return &Evaluator{reg: reg, store: store}
}

// Eval computes the value of expr under bindings b.
func (e *Evaluator) Eval(expr *parser.Expr, b Bindings) (value.Value, error) {
	switch expr.K {
	case parser.ExprLiteral:
		return e.evalLiteral(expr), nil
	case parser.ExprVar:
		v, ok := b.Get(expr.Name)
		if !ok {
			return value.Null(), mewerr.New(mewerr.ErrUnboundVariable, expr.Name)
		}
		return v, nil
	case parser.ExprPropertyAccess:
		return e.evalPropertyAccess(expr, b)
	case parser.ExprBinary:
		return e.evalBinary(expr, b)
	case parser.ExprUnary:
		return e.evalUnary(expr, b)
	case parser.ExprFuncCall:
		return e.evalFuncCall(expr, b)
	case parser.ExprIDRef:
		n, err := strconv.ParseUint(expr.Str, 10, 64)
		if err != nil {
			return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "malformed id reference")
		}
		return value.NodeRef(value.NodeId(n)), nil
	case parser.ExprParam:
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "unbound query parameter "+expr.Name)
	case parser.ExprListLiteral:
		items := make([]value.Value, len(expr.Items))
		for i, it := range expr.Items {
			v, err := e.Eval(it, b)
			if err != nil {
				return value.Null(), err
			}
			items[i] = v
		}
		return value.List(items), nil
	case parser.ExprExists:
		ok, err := e.evalExists(expr, b)
		if err != nil {
			return value.Null(), err
		}
		if expr.Negated {
			ok = !ok
		}
		return value.Bool(ok), nil
	default:
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "unsupported expression")
	}
}

// EvalBool evaluates expr as a boolean, as used for WHERE clauses and
// pattern filters: a Null result counts as false, and any other
// non-boolean result is an error.
func (e *Evaluator) EvalBool(expr *parser.Expr, b Bindings) (bool, error) {
	v, err := e.Eval(expr, b)
	if err != nil {
		return false, err
	}
	bv, ok := v.AsBool()
	if !ok {
		if v.IsNull() {
			return false, nil
		}
		return false, mewerr.New(mewerr.ErrExprTypeError, "expected boolean")
	}
	return bv, nil
}

func (e *Evaluator) evalLiteral(expr *parser.Expr) value.Value {
	switch expr.LitKind {
	case parser.LitNull:
		return value.Null()
	case parser.LitBool:
		return value.Bool(expr.Bool)
	case parser.LitInt:
		return value.Int(expr.Int)
	case parser.LitFloat:
		return value.Float(expr.Float)
	case parser.LitString:
		return value.String(expr.Str)
	case parser.LitTimestamp:
		return value.Timestamp(expr.Int)
	case parser.LitDuration:
		return value.Duration(expr.Int)
	default:
		return value.Null()
	}
}

func (e *Evaluator) evalPropertyAccess(expr *parser.Expr, b Bindings) (value.Value, error) {
	base, err := e.Eval(expr.Base, b)
	if err != nil {
		return value.Null(), err
	}

	if base.IsNull() {
		return value.Null(), nil
	}

	if nodeID, ok := base.AsNodeRef(); ok {
		n, ok := e.store.GetNode(nodeID)
		if !ok {
			return value.Null(), mewerr.New(mewerr.ErrEntityNotFound, "node")
		}
		v, ok := n.Attrs[expr.Name]
		if !ok {
			return value.Null(), nil
		}
		return v, nil
	}

	if edgeID, ok := base.AsEdgeRef(); ok {
		edge, ok := e.store.GetEdge(edgeID)
		if !ok {
			return value.Null(), mewerr.New(mewerr.ErrEntityNotFound, "edge")
		}
		v, ok := edge.Attrs[expr.Name]
		if !ok {
			return value.Null(), nil
		}
		return v, nil
	}

	return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "property access on a non-reference value")
}

func (e *Evaluator) evalUnary(expr *parser.Expr, b Bindings) (value.Value, error) {
	arg, err := e.Eval(expr.Arg, b)
	if err != nil {
		return value.Null(), err
	}

	switch expr.Op {
	case "is_null":
		return value.Bool(arg.IsNull()), nil
	case "is_not_null":
		return value.Bool(!arg.IsNull()), nil
	case "not":
		if arg.IsNull() {
			return value.Null(), nil
		}
		bv, ok := arg.AsBool()
		if !ok {
			return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "NOT requires a boolean operand")
		}
		return value.Bool(!bv), nil
	case "neg":
		if arg.IsNull() {
			return value.Null(), nil
		}
		if i, ok := arg.AsInt(); ok {
			return value.Int(-i), nil
		}
		if f, ok := arg.AsFloat(); ok {
			return value.Float(-f), nil
		}
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "unary - requires a numeric operand")
	default:
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "unknown unary operator "+expr.Op)
	}
}

func (e *Evaluator) evalBinary(expr *parser.Expr, b Bindings) (value.Value, error) {
	switch expr.Op {
	case "and":
		return e.evalAnd(expr, b)
	case "or":
		return e.evalOr(expr, b)
	}

	left, err := e.Eval(expr.Left, b)
	if err != nil {
		return value.Null(), err
	}
	right, err := e.Eval(expr.Right, b)
	if err != nil {
		return value.Null(), err
	}

	switch expr.Op {
	case "??":
		if !left.IsNull() {
			return left, nil
		}
		return right, nil
	case "=":
		if left.IsNull() || right.IsNull() {
			return value.Null(), nil
		}
		return value.Bool(value.Equal(left, right)), nil
	case "!=":
		if left.IsNull() || right.IsNull() {
			return value.Null(), nil
		}
		return value.Bool(!value.Equal(left, right)), nil
	case "<", "<=", ">", ">=":
		return e.evalOrder(expr.Op, left, right)
	case "xor":
		return e.evalXor(left, right)
	case "in":
		return e.evalIn(left, right)
	case "+":
		return e.evalAdd(left, right)
	case "-":
		return e.evalSub(left, right)
	case "*":
		return e.evalArith(left, right, func(a, b float64) float64 { return a * b })
	case "/":
		return e.evalDiv(left, right)
	case "%":
		return e.evalMod(left, right)
	default:
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "unknown binary operator "+expr.Op)
	}
}

// evalAnd implements Kleene three-valued AND: NULL and true = NULL,
// NULL and false = false, NULL and NULL = NULL.
func (e *Evaluator) evalAnd(expr *parser.Expr, b Bindings) (value.Value, error) {
	left, err := e.Eval(expr.Left, b)
	if err != nil {
		return value.Null(), err
	}
	if lb, ok := left.AsBool(); ok && !lb {
		return value.Bool(false), nil
	}
	right, err := e.Eval(expr.Right, b)
	if err != nil {
		return value.Null(), err
	}
	if rb, ok := right.AsBool(); ok && !rb {
		return value.Bool(false), nil
	}
	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}
	lb, lok := left.AsBool()
	rb, rok := right.AsBool()
	if !lok || !rok {
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "AND requires boolean operands")
	}
	return value.Bool(lb && rb), nil
}

// evalOr implements Kleene three-valued OR: NULL or true = true,
// NULL or false = NULL, NULL or NULL = NULL.
func (e *Evaluator) evalOr(expr *parser.Expr, b Bindings) (value.Value, error) {
	left, err := e.Eval(expr.Left, b)
	if err != nil {
		return value.Null(), err
	}
	if lb, ok := left.AsBool(); ok && lb {
		return value.Bool(true), nil
	}
	right, err := e.Eval(expr.Right, b)
	if err != nil {
		return value.Null(), err
	}
	if rb, ok := right.AsBool(); ok && rb {
		return value.Bool(true), nil
	}
	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}
	lb, lok := left.AsBool()
	rb, rok := right.AsBool()
	if !lok || !rok {
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "OR requires boolean operands")
	}
	return value.Bool(lb || rb), nil
}

func (e *Evaluator) evalXor(left, right value.Value) (value.Value, error) {
	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}
	lb, lok := left.AsBool()
	rb, rok := right.AsBool()
	if !lok || !rok {
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "XOR requires boolean operands")
	}
	return value.Bool(lb != rb), nil
}

func (e *Evaluator) evalIn(needle, haystack value.Value) (value.Value, error) {
	if needle.IsNull() || haystack.IsNull() {
		return value.Null(), nil
	}
	items, ok := haystack.AsList()
	if !ok {
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "IN requires a list on the right")
	}
	for _, item := range items {
		if value.Equal(needle, item) {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func (e *Evaluator) evalOrder(op string, left, right value.Value) (value.Value, error) {
	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}
	cmp := value.CmpSortable(left, right)
	var result bool
	switch op {
	case "<":
		result = cmp < 0
	case "<=":
		result = cmp <= 0
	case ">":
		result = cmp > 0
	case ">=":
		result = cmp >= 0
	}
	return value.Bool(result), nil
}

func (e *Evaluator) evalAdd(left, right value.Value) (value.Value, error) {
	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}
	if ls, ok := left.AsString(); ok {
		if rs, ok := right.AsString(); ok {
			return value.String(ls + rs), nil
		}
	}
	if lt, ok := left.AsTimestamp(); ok {
		if rd, ok := right.AsDuration(); ok {
			return value.Timestamp(lt + rd), nil
		}
	}
	if ld, ok := left.AsDuration(); ok {
		if rt, ok := right.AsTimestamp(); ok {
			return value.Timestamp(ld + rt), nil
		}
		if rd, ok := right.AsDuration(); ok {
			return value.Duration(ld + rd), nil
		}
	}
	return e.evalArith(left, right, func(a, b float64) float64 { return a + b })
}

func (e *Evaluator) evalSub(left, right value.Value) (value.Value, error) {
	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}
	if lt, ok := left.AsTimestamp(); ok {
		if rd, ok := right.AsDuration(); ok {
			return value.Timestamp(lt - rd), nil
		}
		if rt, ok := right.AsTimestamp(); ok {
			return value.Duration(lt - rt), nil
		}
	}
	if ld, ok := left.AsDuration(); ok {
		if rd, ok := right.AsDuration(); ok {
			return value.Duration(ld - rd), nil
		}
	}
	return e.evalArith(left, right, func(a, b float64) float64 { return a - b })
}

func (e *Evaluator) evalDiv(left, right value.Value) (value.Value, error) {
	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}
	if li, lok := left.AsInt(); lok {
		if ri, rok := right.AsInt(); rok {
			if ri == 0 {
				return value.Null(), mewerr.New(mewerr.ErrDivisionByZero, "")
			}
			return value.Int(li / ri), nil
		}
	}
	lf, lok := left.Numeric()
	rf, rok := right.Numeric()
	if !lok || !rok {
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "/ requires numeric operands")
	}
	if rf == 0 {
		return value.Null(), mewerr.New(mewerr.ErrDivisionByZero, "")
	}
	return value.Float(lf / rf), nil
}

func (e *Evaluator) evalMod(left, right value.Value) (value.Value, error) {
	if left.IsNull() || right.IsNull() {
		return value.Null(), nil
	}
	li, lok := left.AsInt()
	ri, rok := right.AsInt()
	if lok && rok {
		if ri == 0 {
			return value.Null(), mewerr.New(mewerr.ErrDivisionByZero, "")
		}
		return value.Int(li % ri), nil
	}
	lf, lok := left.Numeric()
	rf, rok := right.Numeric()
	if !lok || !rok {
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "%% requires numeric operands")
	}
	if rf == 0 {
		return value.Null(), mewerr.New(mewerr.ErrDivisionByZero, "")
	}
	return value.Float(math.Mod(lf, rf)), nil
}

// evalArith applies op to two numeric operands, staying Int when both
// sides are Int and promoting to Float otherwise.
func (e *Evaluator) evalArith(left, right value.Value, op func(a, b float64) float64) (value.Value, error) {
	if li, lok := left.AsInt(); lok {
		if ri, rok := right.AsInt(); rok {
			return value.Int(int64(op(float64(li), float64(ri)))), nil
		}
	}
	lf, lok := left.Numeric()
	rf, rok := right.Numeric()
	if !lok || !rok {
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "arithmetic requires numeric operands")
	}
	return value.Float(op(lf, rf)), nil
}

func (e *Evaluator) evalFuncCall(expr *parser.Expr, b Bindings) (value.Value, error) {
	args := make([]value.Value, len(expr.Args))
	for i, a := range expr.Args {
		v, err := e.Eval(a, b)
		if err != nil {
			return value.Null(), err
		}
		args[i] = v
	}
	return e.callBuiltin(strings.ToLower(expr.Name), args)
}

func (e *Evaluator) callBuiltin(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "now":
		return value.Timestamp(time.Now().UnixMilli()), nil

	case "year", "month", "day":
		ts, null, err := oneTimestamp(args)
		if null || err != nil {
			return value.Null(), err
		}
		y, m, d := value.TimestampToDate(ts)
		switch name {
		case "year":
			return value.Int(y), nil
		case "month":
			return value.Int(int64(m)), nil
		default:
			return value.Int(int64(d)), nil
		}

	case "hour", "minute", "second":
		ts, null, err := oneTimestamp(args)
		if null || err != nil {
			return value.Null(), err
		}
		h, mi, s := value.TimestampToTime(ts)
		switch name {
		case "hour":
			return value.Int(int64(h)), nil
		case "minute":
			return value.Int(int64(mi)), nil
		default:
			return value.Int(int64(s)), nil
		}

	case "count":
		items, err := oneList(args)
		if err != nil {
			return value.Null(), err
		}
		return value.Int(int64(len(items))), nil

	case "sum", "avg":
		items, err := oneList(args)
		if err != nil {
			return value.Null(), err
		}
		var total float64
		var n int
		for _, it := range items {
			f, ok := it.Numeric()
			if !ok {
				continue
			}
			total += f
			n++
		}
		if name == "sum" {
			return value.Float(total), nil
		}
		if n == 0 {
			return value.Null(), nil
		}
		return value.Float(total / float64(n)), nil

	case "min", "max":
		if len(args) == 2 {
			args = []value.Value{value.List(args)}
		}
		items, err := oneList(args)
		if err != nil {
			return value.Null(), err
		}
		var best *value.Value
		for i := range items {
			if items[i].IsNull() {
				continue
			}
			if best == nil {
				best = &items[i]
				continue
			}
			cmp := value.CmpSortable(items[i], *best)
			if (name == "min" && cmp < 0) || (name == "max" && cmp > 0) {
				best = &items[i]
			}
		}
		if best == nil {
			return value.Null(), nil
		}
		return *best, nil

	case "coalesce":
		for _, a := range args {
			if !a.IsNull() {
				return a, nil
			}
		}
		return value.Null(), nil

	case "upper", "lower":
		s, null, err := oneString(args)
		if null || err != nil {
			return value.Null(), err
		}
		if name == "upper" {
			return value.String(strings.ToUpper(s)), nil
		}
		return value.String(strings.ToLower(s)), nil

	case "abs":
		if len(args) != 1 {
			return value.Null(), wrongArgCount(name)
		}
		if args[0].IsNull() {
			return value.Null(), nil
		}
		if i, ok := args[0].AsInt(); ok {
			if i < 0 {
				i = -i
			}
			return value.Int(i), nil
		}
		if f, ok := args[0].AsFloat(); ok {
			return value.Float(math.Abs(f)), nil
		}
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "abs requires a numeric argument")

	case "is_null":
		if len(args) != 1 {
			return value.Null(), wrongArgCount(name)
		}
		return value.Bool(args[0].IsNull()), nil

	case "is_not_null":
		if len(args) != 1 {
			return value.Null(), wrongArgCount(name)
		}
		return value.Bool(!args[0].IsNull()), nil

	case "length", "len":
		if len(args) != 1 {
			return value.Null(), wrongArgCount(name)
		}
		if args[0].IsNull() {
			return value.Null(), nil
		}
		if s, ok := args[0].AsString(); ok {
			return value.Int(int64(len(s))), nil
		}
		if items, ok := args[0].AsList(); ok {
			return value.Int(int64(len(items))), nil
		}
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "length requires a string or list argument")

	case "concat":
		var sb strings.Builder
		for _, a := range args {
			if a.IsNull() {
				return value.Null(), nil
			}
			sb.WriteString(a.String())
		}
		return value.String(sb.String()), nil

	case "substring", "substr":
		if len(args) < 2 {
			return value.Null(), wrongArgCount(name)
		}
		s, null, err := oneString(args[:1])
		if null || err != nil {
			return value.Null(), err
		}
		start, ok := args[1].AsInt()
		if !ok {
			return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "substring requires an integer start")
		}
		runes := []rune(s)
		if start < 0 {
			start = 0
		}
		if int(start) > len(runes) {
			start = int64(len(runes))
		}
		end := int64(len(runes))
		if len(args) >= 3 {
			length, ok := args[2].AsInt()
			if !ok {
				return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "substring requires an integer length")
			}
			end = start + length
			if end > int64(len(runes)) {
				end = int64(len(runes))
			}
		}
		if end < start {
			end = start
		}
		return value.String(string(runes[start:end])), nil

	case "trim":
		s, null, err := oneString(args)
		if null || err != nil {
			return value.Null(), err
		}
		return value.String(strings.TrimSpace(s)), nil

	case "starts_with":
		a, b2, err := twoStrings(args)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(strings.HasPrefix(a, b2)), nil

	case "ends_with":
		a, b2, err := twoStrings(args)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(strings.HasSuffix(a, b2)), nil

	case "contains":
		if len(args) != 2 {
			return value.Null(), wrongArgCount(name)
		}
		if items, ok := args[1].AsList(); ok {
			for _, it := range items {
				if value.Equal(args[0], it) {
					return value.Bool(true), nil
				}
			}
			return value.Bool(false), nil
		}
		a, b2, err := twoStrings(args)
		if err != nil {
			return value.Null(), err
		}
		return value.Bool(strings.Contains(a, b2)), nil

	case "in":
		if len(args) != 2 {
			return value.Null(), wrongArgCount(name)
		}
		return e.evalIn(args[0], args[1])

	case "replace":
		if len(args) != 3 {
			return value.Null(), wrongArgCount(name)
		}
		s, old, new, err := threeStrings(args)
		if err != nil {
			return value.Null(), err
		}
		return value.String(strings.ReplaceAll(s, old, new)), nil

	case "floor", "ceil", "ceiling", "round":
		if len(args) != 1 {
			return value.Null(), wrongArgCount(name)
		}
		if args[0].IsNull() {
			return value.Null(), nil
		}
		f, ok := args[0].Numeric()
		if !ok {
			return value.Null(), mewerr.New(mewerr.ErrExprTypeError, name+" requires a numeric argument")
		}
		switch name {
		case "floor":
			return value.Int(int64(math.Floor(f))), nil
		case "ceil", "ceiling":
			return value.Int(int64(math.Ceil(f))), nil
		default:
			return value.Int(int64(math.Round(f))), nil
		}

	default:
		return value.Null(), mewerr.New(mewerr.ErrExprTypeError, "unknown function "+name)
	}
}

func wrongArgCount(name string) error {
	return mewerr.New(mewerr.ErrExprTypeError, name+": wrong number of arguments")
}

func oneTimestamp(args []value.Value) (int64, bool, error) {
	if len(args) != 1 {
		return 0, false, wrongArgCount("timestamp function")
	}
	if args[0].IsNull() {
		return 0, true, nil
	}
	ts, ok := args[0].AsTimestamp()
	if !ok {
		return 0, false, mewerr.New(mewerr.ErrExprTypeError, "expected a timestamp argument")
	}
	return ts, false, nil
}

func oneString(args []value.Value) (string, bool, error) {
	if len(args) != 1 {
		return "", false, wrongArgCount("string function")
	}
	if args[0].IsNull() {
		return "", true, nil
	}
	s, ok := args[0].AsString()
	if !ok {
		return "", false, mewerr.New(mewerr.ErrExprTypeError, "expected a string argument")
	}
	return s, false, nil
}

func twoStrings(args []value.Value) (string, string, error) {
	if len(args) != 2 {
		return "", "", wrongArgCount("string function")
	}
	a, ok := args[0].AsString()
	b, ok2 := args[1].AsString()
	if !ok || !ok2 {
		return "", "", mewerr.New(mewerr.ErrExprTypeError, "expected string arguments")
	}
	return a, b, nil
}

func threeStrings(args []value.Value) (string, string, string, error) {
	if len(args) != 3 {
		return "", "", "", wrongArgCount("string function")
	}
	a, ok1 := args[0].AsString()
	b, ok2 := args[1].AsString()
	c, ok3 := args[2].AsString()
	if !ok1 || !ok2 || !ok3 {
		return "", "", "", mewerr.New(mewerr.ErrExprTypeError, "expected string arguments")
	}
	return a, b, c, nil
}

func oneList(args []value.Value) ([]value.Value, error) {
	if len(args) != 1 {
		return nil, wrongArgCount("aggregate function")
	}
	items, ok := args[0].AsList()
	if !ok {
		return nil, mewerr.New(mewerr.ErrExprTypeError, "expected a list argument")
	}
	return items, nil
}

// evalExists compiles expr's subpattern with every variable already
// bound in b available as prebound, applies the WHERE clause as a
// trailing filter, and reports whether any match exists.
func (e *Evaluator) evalExists(expr *parser.Expr, b Bindings) (bool, error) {
	compiled, err := CompileWithPrebound(expr.Pattern, e.reg, b.Names())
	if err != nil {
		return false, err
	}
	if expr.Where != nil {
		compiled = compiled.WithFilter(expr.Where)
	}
	matcher := NewMatcher(e.reg, e.store)
	return matcher.Exists(compiled, b.Clone())
}
