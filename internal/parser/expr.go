/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package parser

import (
	"strconv"
	"strings"

	"github.com/bdjafer/mew/internal/lexer"
)

// ParseExpr parses a single expression; exported for callers (ontology
// default values, attribute modifiers) that need an expression without
// a surrounding statement.
func (p *Parser) ParseExpr() (*Expr, error) {
	return p.parseCoalesce()
}

func (p *Parser) parseCoalesce() (*Expr, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TokenCOALESCE) {
		p.advance()
		right, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		left = p.binary("??", left, right)
	}
	return left, nil
}

func (p *Parser) parseOr() (*Expr, error) {
	left, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TokenOR) {
		p.advance()
		right, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		left = p.binary("or", left, right)
	}
	return left, nil
}

func (p *Parser) parseXor() (*Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TokenXOR) {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = p.binary("xor", left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (*Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TokenAND) {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = p.binary("and", left, right)
	}
	return left, nil
}

func (p *Parser) parseNot() (*Expr, error) {
	if p.check(lexer.TokenNOT) {
		t := p.advance()
		if strings.EqualFold(p.peek().Val, "exists") && p.peekAt(1).ID == lexer.TokenLPAREN {
			return p.parseExists(true)
		}
		arg, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Expr{K: ExprUnary, Op: "not", Arg: arg, span: p.spanFrom(p.span(t))}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (*Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().ID {
		case lexer.TokenEQ, lexer.TokenNEQ, lexer.TokenLT, lexer.TokenLTE, lexer.TokenGT, lexer.TokenGTE:
			op := p.advance()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = p.binary(op.Val, left, right)
		case lexer.TokenIN:
			p.advance()
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = p.binary("in", left, right)
		case lexer.TokenIS:
			p.advance()
			negated := false
			if p.check(lexer.TokenNOT) {
				p.advance()
				negated = true
			}
			if _, err := p.expect(lexer.TokenNULL, "null"); err != nil {
				return nil, err
			}
			op := "is_null"
			if negated {
				op = "is_not_null"
			}
			left = &Expr{K: ExprUnary, Op: op, Arg: left, span: left.span}
		default:
			return left, nil
		}
	}
}

func (p *Parser) parseAdditive() (*Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TokenPLUS) || p.check(lexer.TokenMINUS) {
		op := p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = p.binary(op.Val, left, right)
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (*Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TokenSTAR) || p.check(lexer.TokenSLASH) || p.check(lexer.TokenPERCENT) {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = p.binary(op.Val, left, right)
	}
	return left, nil
}

func (p *Parser) parseUnary() (*Expr, error) {
	if p.check(lexer.TokenMINUS) {
		t := p.advance()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expr{K: ExprUnary, Op: "neg", Arg: arg, span: p.spanFrom(p.span(t))}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (*Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.check(lexer.TokenDOT) {
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		expr = &Expr{K: ExprPropertyAccess, Base: expr, Name: name, span: p.spanFrom(expr.span)}
	}

	return expr, nil
}

func (p *Parser) binary(op string, left, right *Expr) *Expr {
	return &Expr{K: ExprBinary, Op: op, Left: left, Right: right, span: Span{
		Start: left.span.Start, End: right.span.End, Line: left.span.Line, Col: left.span.Col,
	}}
}

func (p *Parser) parsePrimary() (*Expr, error) {
	t := p.peek()

	switch t.ID {
	case lexer.TokenLPAREN:
		p.advance()
		inner, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRPAREN, ")"); err != nil {
			return nil, err
		}
		return inner, nil

	case lexer.TokenLBRACKET:
		return p.parseListLiteral()

	case lexer.TokenNOT:
		// EXISTS may be written as `not exists(...)`; fall through to
		// the general NOT handling in parseNot for everything else.
		return p.parseNot()

	case lexer.TokenIDENTIFIER:
		if strings.EqualFold(t.Val, "exists") && p.peekAt(1).ID == lexer.TokenLPAREN {
			return p.parseExists(false)
		}
		p.advance()
		name := t.Val
		if p.check(lexer.TokenLPAREN) {
			return p.parseFuncCall(name, p.span(t))
		}
		return &Expr{K: ExprVar, Name: name, span: p.span(t)}, nil

	case lexer.TokenSTAR:
		p.advance()
		return &Expr{K: ExprVar, Name: "*", span: p.span(t)}, nil

	case lexer.TokenPARAM:
		p.advance()
		return &Expr{K: ExprParam, Name: t.Val, span: p.span(t)}, nil

	case lexer.TokenIDREF:
		p.advance()
		return &Expr{K: ExprIDRef, Str: t.Val, span: p.span(t)}, nil

	case lexer.TokenINT:
		p.advance()
		n, err := strconv.ParseInt(t.Val, 10, 64)
		if err != nil {
			return nil, err
		}
		return &Expr{K: ExprLiteral, LitKind: LitInt, Int: n, span: p.span(t)}, nil

	case lexer.TokenFLOAT:
		p.advance()
		f, err := strconv.ParseFloat(t.Val, 64)
		if err != nil {
			return nil, err
		}
		return &Expr{K: ExprLiteral, LitKind: LitFloat, Float: f, span: p.span(t)}, nil

	case lexer.TokenSTRING:
		p.advance()
		return &Expr{K: ExprLiteral, LitKind: LitString, Str: t.Val, span: p.span(t)}, nil

	case lexer.TokenTIMESTAMP:
		p.advance()
		ms, err := parseTimestampLiteral(t.Val)
		if err != nil {
			return nil, err
		}
		return &Expr{K: ExprLiteral, LitKind: LitTimestamp, Int: ms, Str: t.Val, span: p.span(t)}, nil

	case lexer.TokenDURATION:
		p.advance()
		ms, err := parseDurationLiteral(t.Val)
		if err != nil {
			return nil, err
		}
		return &Expr{K: ExprLiteral, LitKind: LitDuration, Int: ms, Str: t.Val, span: p.span(t)}, nil

	case lexer.TokenTRUE:
		p.advance()
		return &Expr{K: ExprLiteral, LitKind: LitBool, Bool: true, span: p.span(t)}, nil

	case lexer.TokenFALSE:
		p.advance()
		return &Expr{K: ExprLiteral, LitKind: LitBool, Bool: false, span: p.span(t)}, nil

	case lexer.TokenNULL:
		p.advance()
		return &Expr{K: ExprLiteral, LitKind: LitNull, span: p.span(t)}, nil

	default:
		return nil, p.errorf(t, "expression")
	}
}

func (p *Parser) parseListLiteral() (*Expr, error) {
	start := p.advance() // consume '['
	var items []*Expr
	for !p.check(lexer.TokenRBRACKET) {
		item, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.check(lexer.TokenCOMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.TokenRBRACKET, "]"); err != nil {
		return nil, err
	}
	return &Expr{K: ExprListLiteral, Items: items, span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseFuncCall(name string, start Span) (*Expr, error) {
	p.advance() // consume '('
	var args []*Expr
	for !p.check(lexer.TokenRPAREN) {
		arg, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.check(lexer.TokenCOMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.TokenRPAREN, ")"); err != nil {
		return nil, err
	}
	return &Expr{K: ExprFuncCall, Name: name, Args: args, span: p.spanFrom(start)}, nil
}

// parseExists parses EXISTS(pattern [WHERE expr]); negated is true
// when the caller already consumed a leading NOT.
func (p *Parser) parseExists(negated bool) (*Expr, error) {
	start := p.advance() // consume 'exists' identifier
	if _, err := p.expect(lexer.TokenLPAREN, "("); err != nil {
		return nil, err
	}
	pattern, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	var where *Expr
	if p.check(lexer.TokenWHERE) {
		p.advance()
		where, err = p.ParseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.TokenRPAREN, ")"); err != nil {
		return nil, err
	}
	return &Expr{K: ExprExists, Negated: negated, Pattern: pattern, Where: where, span: p.spanFrom(p.span(start))}, nil
}
