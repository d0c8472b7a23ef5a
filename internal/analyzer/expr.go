/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package analyzer

import (
	"strings"

	"github.com/bdjafer/mew/internal/mewerr"
	"github.com/bdjafer/mew/internal/parser"
)

// AnalyzeExpr resolves names and checks operand types through expr,
// returning its static result Type.
func (a *Analyzer) AnalyzeExpr(expr *parser.Expr) (Type, error) {
	switch expr.K {
	case parser.ExprLiteral:
		return a.analyzeLiteral(expr), nil
	case parser.ExprVar:
		t, ok := a.scope.lookup(expr.Name)
		if !ok {
			return Type{}, mewerr.NewAt(mewerr.ErrUnknownVariable,
				mewerr.WithSuggestion(expr.Name, expr.Name, a.scope.names()), expr.Span())
		}
		return t, nil
	case parser.ExprPropertyAccess:
		return a.analyzePropertyAccess(expr)
	case parser.ExprBinary:
		return a.analyzeBinary(expr)
	case parser.ExprUnary:
		return a.analyzeUnary(expr)
	case parser.ExprFuncCall:
		return a.analyzeFuncCall(expr)
	case parser.ExprIDRef:
		return AnyNode, nil
	case parser.ExprParam:
		return Any, nil
	case parser.ExprExists:
		return a.analyzeExists(expr)
	case parser.ExprListLiteral:
		for _, item := range expr.Items {
			if _, err := a.AnalyzeExpr(item); err != nil {
				return Type{}, err
			}
		}
		return Any, nil
	default:
		return Any, nil
	}
}

func (a *Analyzer) analyzeLiteral(expr *parser.Expr) Type {
	switch expr.LitKind {
	case parser.LitNull:
		return Null
	case parser.LitBool:
		return Bool
	case parser.LitInt:
		return Int
	case parser.LitFloat:
		return Float
	case parser.LitString:
		return String
	case parser.LitTimestamp:
		return Timestamp
	case parser.LitDuration:
		return Duration
	default:
		return Any
	}
}

func (a *Analyzer) analyzePropertyAccess(expr *parser.Expr) (Type, error) {
	baseType, err := a.AnalyzeExpr(expr.Base)
	if err != nil {
		return Type{}, err
	}

	switch baseType.Kind {
	case TNodeRef:
		td, ok := a.reg.GetType(baseType.TypeID)
		if !ok {
			return Any, nil
		}
		attr, ok := td.Attributes[expr.Name]
		if !ok {
			detail := mewerr.WithSuggestion(expr.Name, expr.Name, attrNames(td.Attributes))
			return Type{}, mewerr.NewAt(mewerr.ErrUnknownAttribute, detail+" on "+td.Name, expr.Span())
		}
		return attrType(attr.TypeName), nil
	case TEdgeRef:
		et, ok := a.reg.GetEdgeType(baseType.EdgeTypeID)
		if !ok {
			return Any, nil
		}
		if _, ok := et.Attributes[expr.Name]; !ok {
			detail := mewerr.WithSuggestion(expr.Name, expr.Name, attrNames(et.Attributes))
			return Type{}, mewerr.NewAt(mewerr.ErrUnknownAttribute, detail+" on "+et.Name, expr.Span())
		}
		return Any, nil
	case TAnyNodeRef, TAnyEdgeRef, TAny:
		return Any, nil
	default:
		return Type{}, mewerr.NewAt(mewerr.ErrNotAReference, "cannot access attribute on this type", expr.Span())
	}
}

func attrType(name string) Type {
	switch strings.ToLower(name) {
	case "bool":
		return Bool
	case "int":
		return Int
	case "float":
		return Float
	case "string":
		return String
	case "timestamp":
		return Timestamp
	case "duration":
		return Duration
	default:
		return Any
	}
}

func (a *Analyzer) analyzeBinary(expr *parser.Expr) (Type, error) {
	leftType, err := a.AnalyzeExpr(expr.Left)
	if err != nil {
		return Type{}, err
	}
	rightType, err := a.AnalyzeExpr(expr.Right)
	if err != nil {
		return Type{}, err
	}

	result, ok := leftType.BinaryResult(expr.Op, rightType)
	if !ok {
		return Type{}, mewerr.NewAt(mewerr.ErrTypeMismatch, "operator "+expr.Op+" not defined for these operand types", expr.Span())
	}
	return result, nil
}

func (a *Analyzer) analyzeUnary(expr *parser.Expr) (Type, error) {
	operandType, err := a.AnalyzeExpr(expr.Arg)
	if err != nil {
		return Type{}, err
	}
	result, ok := UnaryResult(expr.Op, operandType)
	if !ok {
		return Type{}, mewerr.NewAt(mewerr.ErrTypeMismatch, "operator "+expr.Op+" not defined for this operand type", expr.Span())
	}
	return result, nil
}

// function result types are deliberately coarse: the registry has no
// builtin-function catalog, so only the handful of well-known
// aggregate/scalar names get a narrower type than Any.
func (a *Analyzer) analyzeFuncCall(expr *parser.Expr) (Type, error) {
	for _, arg := range expr.Args {
		if _, err := a.AnalyzeExpr(arg); err != nil {
			return Type{}, err
		}
	}

	switch strings.ToLower(expr.Name) {
	case "count":
		return Int, nil
	case "sum", "avg", "min", "max":
		return Float, nil
	case "concat", "upper", "lower", "trim":
		return String, nil
	case "now":
		return Timestamp, nil
	case "coalesce":
		if len(expr.Args) > 0 {
			return a.AnalyzeExpr(expr.Args[0])
		}
		return Any, nil
	default:
		return Any, nil
	}
}

func (a *Analyzer) analyzeExists(expr *parser.Expr) (Type, error) {
	a.scope.push()
	defer a.scope.pop()

	if err := a.analyzePattern(expr.Pattern); err != nil {
		return Type{}, err
	}

	if expr.Where != nil {
		wt, err := a.AnalyzeExpr(expr.Where)
		if err != nil {
			return Type{}, err
		}
		if wt.Kind != TBool && wt.Kind != TAny && wt.Kind != TNull {
			return Type{}, mewerr.NewAt(mewerr.ErrTypeMismatch, "WHERE clause must be boolean", expr.Where.Span())
		}
	}

	return Bool, nil
}
