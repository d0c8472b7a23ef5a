/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package parser

import "github.com/bdjafer/mew/internal/lexer"

// ParseOntology parses every type/node/edge/constraint/rule definition
// in the source, optionally wrapped in a single `ontology Name { ... }` block.
func (p *Parser) ParseOntology() ([]*OntologyDef, error) {
	var defs []*OntologyDef

	for !p.check(lexer.TokenEOF) {
		if p.peek().ID == lexer.TokenIDENTIFIER && p.peek().Val == "ontology" {
			p.advance()
			if _, err := p.expectIdent(); err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.TokenLBRACE, "{"); err != nil {
				return nil, err
			}
			for !p.check(lexer.TokenRBRACE) && !p.check(lexer.TokenEOF) {
				def, err := p.parseOntologyDef()
				if err != nil {
					return nil, err
				}
				defs = append(defs, def)
			}
			if _, err := p.expect(lexer.TokenRBRACE, "}"); err != nil {
				return nil, err
			}
			continue
		}

		def, err := p.parseOntologyDef()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return defs, nil
}

func (p *Parser) parseOntologyDef() (*OntologyDef, error) {
	if p.peek().ID == lexer.TokenABSTRACT || p.peek().ID == lexer.TokenSEALED {
		var isAbstract, isSealed bool
		for p.peek().ID == lexer.TokenABSTRACT || p.peek().ID == lexer.TokenSEALED {
			if p.peek().ID == lexer.TokenABSTRACT {
				isAbstract = true
			} else {
				isSealed = true
			}
			p.advance()
		}
		if _, err := p.expect(lexer.TokenNODE, "node"); err != nil {
			return nil, err
		}
		d, err := p.parseNodeTypeDefBody()
		if err != nil {
			return nil, err
		}
		d.IsAbstract = isAbstract
		d.IsSealed = isSealed
		return &OntologyDef{Kind: DefNode, Node: d, Span: d.Span}, nil
	}

	switch p.peek().ID {
	case lexer.TokenTYPE:
		d, err := p.parseTypeAliasDef()
		return &OntologyDef{Kind: DefTypeAlias, TypeAlias: d, Span: d.Span}, err
	case lexer.TokenNODE:
		d, err := p.parseNodeTypeDef()
		return &OntologyDef{Kind: DefNode, Node: d, Span: d.Span}, err
	case lexer.TokenEDGE:
		d, err := p.parseEdgeTypeDef()
		return &OntologyDef{Kind: DefEdge, Edge: d, Span: d.Span}, err
	case lexer.TokenCONSTRAINT:
		d, err := p.parseConstraintDef()
		return &OntologyDef{Kind: DefConstraint, Constraint: d, Span: d.Span}, err
	case lexer.TokenRULE:
		d, err := p.parseRuleDef()
		return &OntologyDef{Kind: DefRule, Rule: d, Span: d.Span}, err
	default:
		return nil, p.errorf(p.peek(), "type, node, edge, constraint, or rule")
	}
}

// ==================== TYPE ALIAS ====================

func (p *Parser) parseTypeAliasDef() (*TypeAliasDef, error) {
	start := p.advance() // consume TYPE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenEQ, "="); err != nil {
		return nil, err
	}
	base, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var mods []AttrModifier
	if p.check(lexer.TokenLBRACKET) {
		mods, err = p.parseAttrModifiers()
		if err != nil {
			return nil, err
		}
	}

	return &TypeAliasDef{Name: name, BaseType: base, Modifiers: mods, Span: p.spanFrom(p.span(start))}, nil
}

// ==================== NODE TYPE ====================

func (p *Parser) parseNodeTypeDef() (*NodeTypeDef, error) {
	p.advance() // consume NODE
	return p.parseNodeTypeDefBody()
}

// parseNodeTypeDefBody parses everything after the NODE keyword; split out
// so a preceding ABSTRACT/SEALED modifier can share the same body parse.
func (p *Parser) parseNodeTypeDefBody() (*NodeTypeDef, error) {
	start := p.peek()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var parents []string
	if p.check(lexer.TokenCOLON) {
		p.advance()
		parent, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		parents = append(parents, parent)
		for p.check(lexer.TokenCOMMA) {
			p.advance()
			if p.check(lexer.TokenLBRACE) {
				break
			}
			parent, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			parents = append(parents, parent)
		}
	}

	var attrs []AttrDecl
	if p.check(lexer.TokenLBRACE) {
		attrs, err = p.parseAttrDecls()
		if err != nil {
			return nil, err
		}
	}

	return &NodeTypeDef{Name: name, Parents: parents, Attrs: attrs, Span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseAttrDecls() ([]AttrDecl, error) {
	p.advance() // consume '{'

	var attrs []AttrDecl
	for !p.check(lexer.TokenRBRACE) && !p.check(lexer.TokenEOF) {
		a, err := p.parseAttrDecl()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
		if p.check(lexer.TokenCOMMA) {
			p.advance()
		}
	}

	if _, err := p.expect(lexer.TokenRBRACE, "}"); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (p *Parser) parseAttrDecl() (AttrDecl, error) {
	start := p.peek()
	name, err := p.expectName()
	if err != nil {
		return AttrDecl{}, err
	}
	if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
		return AttrDecl{}, err
	}
	typeName, err := p.expectIdent()
	if err != nil {
		return AttrDecl{}, err
	}

	nullable := false
	if p.check(lexer.TokenQUESTION) {
		p.advance()
		nullable = true
	}

	var mods []AttrModifier
	if p.check(lexer.TokenLBRACKET) {
		mods, err = p.parseAttrModifiers()
		if err != nil {
			return AttrDecl{}, err
		}
	}

	var def *Expr
	if p.check(lexer.TokenEQ) {
		p.advance()
		def, err = p.ParseExpr()
		if err != nil {
			return AttrDecl{}, err
		}
	}

	return AttrDecl{
		Name: name, TypeName: typeName, Nullable: nullable,
		Modifiers: mods, DefaultValue: def, Span: p.spanFrom(p.span(start)),
	}, nil
}

func (p *Parser) parseAttrModifiers() ([]AttrModifier, error) {
	p.advance() // consume '['

	var mods []AttrModifier
	for !p.check(lexer.TokenRBRACKET) && !p.check(lexer.TokenEOF) {
		m, err := p.parseAttrModifier()
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
		if p.check(lexer.TokenCOMMA) {
			p.advance()
		}
	}

	if _, err := p.expect(lexer.TokenRBRACKET, "]"); err != nil {
		return nil, err
	}
	return mods, nil
}

func (p *Parser) parseAttrModifier() (AttrModifier, error) {
	t := p.peek()

	switch {
	case t.ID == lexer.TokenREQUIRED:
		p.advance()
		return AttrModifier{Kind: ModRequired}, nil

	case t.ID == lexer.TokenUNIQUE:
		p.advance()
		return AttrModifier{Kind: ModUnique}, nil

	case t.ID == lexer.TokenDEFAULT:
		p.advance()
		if p.check(lexer.TokenEQ) || p.check(lexer.TokenCOLON) {
			p.advance()
		} else {
			return AttrModifier{}, p.errorf(p.peek(), "= or :")
		}
		value, err := p.ParseExpr()
		if err != nil {
			return AttrModifier{}, err
		}
		return AttrModifier{Kind: ModDefault, Default: value}, nil

	case t.ID == lexer.TokenIN:
		p.advance()
		if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
			return AttrModifier{}, err
		}
		values, err := p.parseExprArrayLiteral()
		if err != nil {
			return AttrModifier{}, err
		}
		return AttrModifier{Kind: ModInValues, Values: values}, nil

	case t.ID == lexer.TokenMATCH:
		p.advance()
		if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
			return AttrModifier{}, err
		}
		pattern, err := p.expectString()
		if err != nil {
			return AttrModifier{}, err
		}
		return AttrModifier{Kind: ModMatch, Pattern: pattern}, nil

	case t.ID == lexer.TokenGTE:
		p.advance()
		min, err := p.ParseExpr()
		if err != nil {
			return AttrModifier{}, err
		}
		return AttrModifier{Kind: ModRangeMin, Min: min}, nil

	case t.ID == lexer.TokenLTE:
		p.advance()
		max, err := p.ParseExpr()
		if err != nil {
			return AttrModifier{}, err
		}
		return AttrModifier{Kind: ModRangeMax, Max: max}, nil

	case t.ID == lexer.TokenINT:
		// Range shorthand: [N..M]
		minTok := p.advance()
		if !p.check(lexer.TokenDOTDOT) {
			return AttrModifier{}, p.errorf(p.peek(), "'..' for range")
		}
		p.advance()
		maxTok, err := p.expect(lexer.TokenINT, "integer for range end")
		if err != nil {
			return AttrModifier{}, err
		}
		minVal, err := parseIntLiteral(minTok.Val)
		if err != nil {
			return AttrModifier{}, err
		}
		maxVal, err := parseIntLiteral(maxTok.Val)
		if err != nil {
			return AttrModifier{}, err
		}
		return AttrModifier{
			Kind: ModRange,
			Min:  &Expr{K: ExprLiteral, LitKind: LitInt, Int: minVal},
			Max:  &Expr{K: ExprLiteral, LitKind: LitInt, Int: maxVal},
		}, nil

	default:
		return AttrModifier{}, p.errorf(t, "modifier")
	}
}

func (p *Parser) parseExprArrayLiteral() ([]*Expr, error) {
	if _, err := p.expect(lexer.TokenLBRACKET, "["); err != nil {
		return nil, err
	}
	var values []*Expr
	for !p.check(lexer.TokenRBRACKET) && !p.check(lexer.TokenEOF) {
		v, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if p.check(lexer.TokenCOMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(lexer.TokenRBRACKET, "]"); err != nil {
		return nil, err
	}
	return values, nil
}

// ==================== EDGE TYPE ====================

func (p *Parser) parseEdgeTypeDef() (*EdgeTypeDef, error) {
	start := p.advance() // consume EDGE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TokenLPAREN, "("); err != nil {
		return nil, err
	}
	var params []EdgeParamDecl
	for !p.check(lexer.TokenRPAREN) && !p.check(lexer.TokenEOF) {
		pname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
			return nil, err
		}
		var ptype string
		if p.peek().ID == lexer.TokenIDENTIFIER && p.peek().Val == "any" {
			ptype = p.advance().Val
		} else {
			ptype, err = p.expectIdent()
			if err != nil {
				return nil, err
			}
		}
		params = append(params, EdgeParamDecl{Name: pname, Type: ptype})
		if p.check(lexer.TokenCOMMA) {
			p.advance()
		}
	}
	if _, err := p.expect(lexer.TokenRPAREN, ")"); err != nil {
		return nil, err
	}

	var mods []EdgeModifier
	if p.check(lexer.TokenLBRACKET) {
		mods, err = p.parseEdgeModifiers()
		if err != nil {
			return nil, err
		}
	}

	var attrs []AttrDecl
	if p.check(lexer.TokenLBRACE) {
		attrs, err = p.parseAttrDecls()
		if err != nil {
			return nil, err
		}
	}

	if len(mods) == 0 && p.check(lexer.TokenLBRACKET) {
		mods, err = p.parseEdgeModifiers()
		if err != nil {
			return nil, err
		}
	}

	return &EdgeTypeDef{Name: name, Params: params, Attrs: attrs, Modifiers: mods, Span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseEdgeModifiers() ([]EdgeModifier, error) {
	p.advance() // consume '['

	var mods []EdgeModifier
	for !p.check(lexer.TokenRBRACKET) && !p.check(lexer.TokenEOF) {
		m, err := p.parseEdgeModifier()
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
		if p.check(lexer.TokenCOMMA) {
			p.advance()
		}
	}

	if _, err := p.expect(lexer.TokenRBRACKET, "]"); err != nil {
		return nil, err
	}
	return mods, nil
}

func (p *Parser) parseEdgeModifier() (EdgeModifier, error) {
	t := p.peek()

	switch {
	case t.ID == lexer.TokenACYCLIC:
		p.advance()
		return EdgeModifier{Kind: EdgeModAcyclic}, nil
	case t.ID == lexer.TokenUNIQUE:
		p.advance()
		return EdgeModifier{Kind: EdgeModUnique}, nil
	case t.ID == lexer.TokenIDENTIFIER && t.Val == "no_self":
		p.advance()
		return EdgeModifier{Kind: EdgeModNoSelf}, nil
	case t.ID == lexer.TokenSYMMETRIC:
		p.advance()
		return EdgeModifier{Kind: EdgeModSymmetric}, nil
	case t.ID == lexer.TokenINDEXED:
		p.advance()
		return EdgeModifier{Kind: EdgeModIndexed}, nil
	case t.ID == lexer.TokenIDENTIFIER && t.Val == "on_kill_target":
		p.advance()
		if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
			return EdgeModifier{}, err
		}
		action, err := p.parseReferentialAction()
		return EdgeModifier{Kind: EdgeModOnKillTarget, OnKill: action}, err
	case t.ID == lexer.TokenIDENTIFIER && t.Val == "on_kill_source":
		p.advance()
		if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
			return EdgeModifier{}, err
		}
		action, err := p.parseReferentialAction()
		return EdgeModifier{Kind: EdgeModOnKillSource, OnKill: action}, err
	case t.ID == lexer.TokenIDENTIFIER:
		param := p.advance().Val
		if !p.check(lexer.TokenARROW) {
			return EdgeModifier{}, p.errorf(p.peek(), "-> for cardinality constraint")
		}
		p.advance()
		min, max, err := p.parseCardinality()
		if err != nil {
			return EdgeModifier{}, err
		}
		return EdgeModifier{Kind: EdgeModCardinality, CardParam: param, CardMin: min, CardMax: max}, nil
	default:
		return EdgeModifier{}, p.errorf(t, "edge modifier")
	}
}

func (p *Parser) parseReferentialAction() (ReferentialActionName, error) {
	t := p.peek()
	switch {
	case t.ID == lexer.TokenCASCADE || (t.ID == lexer.TokenIDENTIFIER && t.Val == "cascade"):
		p.advance()
		return RefCascade, nil
	case t.ID == lexer.TokenUNLINK || (t.ID == lexer.TokenIDENTIFIER && t.Val == "unlink"):
		p.advance()
		return RefUnlink, nil
	case t.ID == lexer.TokenRESTRICT || (t.ID == lexer.TokenIDENTIFIER && t.Val == "restrict"):
		p.advance()
		return RefRestrict, nil
	default:
		return 0, p.errorf(t, "cascade, unlink, or restrict")
	}
}

func (p *Parser) parseCardinality() (int64, *int64, error) {
	if p.check(lexer.TokenSTAR) {
		p.advance()
		return 0, nil, nil
	}

	min, err := p.expectInt()
	if err != nil {
		return 0, nil, err
	}

	if p.check(lexer.TokenDOTDOT) {
		p.advance()
		if p.check(lexer.TokenSTAR) {
			p.advance()
			return min, nil, nil
		}
		max, err := p.expectInt()
		if err != nil {
			return 0, nil, err
		}
		return min, &max, nil
	}

	return min, &min, nil
}

// ==================== CONSTRAINT / RULE (opaque bodies) ====================

func (p *Parser) parseConstraintDef() (*ConstraintDef, error) {
	start := p.advance() // consume CONSTRAINT
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	mods := ConstraintModifiers{}
	if p.check(lexer.TokenLBRACKET) {
		mods, err = p.parseConstraintModifiers()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
		return nil, err
	}

	patternText, err := p.captureSpanText(func() error {
		_, err := p.parsePattern()
		return err
	})
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TokenFATARROW, "=>"); err != nil {
		return nil, err
	}

	conditionText, err := p.captureSpanText(func() error {
		_, err := p.ParseExpr()
		return err
	})
	if err != nil {
		return nil, err
	}

	return &ConstraintDef{
		Name: name, Pattern: patternText, Condition: conditionText,
		Modifiers: mods, Span: p.spanFrom(p.span(start)),
	}, nil
}

func (p *Parser) parseConstraintModifiers() (ConstraintModifiers, error) {
	p.advance() // consume '['

	var mods ConstraintModifiers
	for !p.check(lexer.TokenRBRACKET) && !p.check(lexer.TokenEOF) {
		switch {
		case p.peek().ID == lexer.TokenSOFT:
			p.advance()
			mods.Soft = true
		case p.peek().ID == lexer.TokenHARD:
			p.advance()
			mods.Soft = false
		case p.peek().ID == lexer.TokenIDENTIFIER && p.peek().Val == "message":
			p.advance()
			if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
				return mods, err
			}
			s, err := p.expectString()
			if err != nil {
				return mods, err
			}
			mods.Message = s
		case p.check(lexer.TokenCOMMA):
			p.advance()
		default:
			return mods, p.errorf(p.peek(), "soft, hard, message, or ]")
		}
	}

	if _, err := p.expect(lexer.TokenRBRACKET, "]"); err != nil {
		return mods, err
	}
	return mods, nil
}

func (p *Parser) parseRuleDef() (*RuleDef, error) {
	start := p.advance() // consume RULE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	auto := true
	var priority *int64

	if p.check(lexer.TokenLBRACKET) {
		p.advance()
		for !p.check(lexer.TokenRBRACKET) && !p.check(lexer.TokenEOF) {
			switch {
			case p.peek().ID == lexer.TokenAUTO:
				p.advance()
				auto = true
			case p.peek().ID == lexer.TokenIDENTIFIER && p.peek().Val == "manual":
				p.advance()
				auto = false
			case p.peek().ID == lexer.TokenPRIORITY:
				p.advance()
				if p.check(lexer.TokenCOLON) || p.check(lexer.TokenEQ) {
					p.advance()
				}
				n, err := p.expectInt()
				if err != nil {
					return nil, err
				}
				priority = &n
			case p.check(lexer.TokenCOMMA):
				p.advance()
			default:
				return nil, p.errorf(p.peek(), "auto, manual, priority, or ]")
			}
		}
		if _, err := p.expect(lexer.TokenRBRACKET, "]"); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
		return nil, err
	}

	patternText, err := p.captureSpanText(func() error {
		_, err := p.parsePattern()
		return err
	})
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(lexer.TokenFATARROW, "=>"); err != nil {
		return nil, err
	}

	productionText, err := p.captureSpanText(func() error {
		if err := p.skipRuleAction(); err != nil {
			return err
		}
		for p.check(lexer.TokenCOMMA) {
			p.advance()
			if err := p.skipRuleAction(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RuleDef{
		Name: name, Pattern: patternText, Production: productionText,
		Auto: auto, Priority: priority, Span: p.spanFrom(p.span(start)),
	}, nil
}

// skipRuleAction consumes one SPAWN/KILL/LINK/UNLINK/SET production
// action's tokens without building an AST for it; the rule body is
// stored as opaque source text, so only token-accurate consumption
// (to find where the action ends) matters here.
func (p *Parser) skipRuleAction() error {
	switch p.peek().ID {
	case lexer.TokenSPAWN:
		p.advance()
		if _, err := p.expectIdent(); err != nil {
			return err
		}
		if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
			return err
		}
		if _, err := p.expectIdent(); err != nil {
			return err
		}
		if p.check(lexer.TokenLBRACE) {
			if _, err := p.parseAttrBlock(); err != nil {
				return err
			}
		}
		return nil
	case lexer.TokenKILL:
		p.advance()
		_, err := p.expectIdent()
		return err
	case lexer.TokenLINK:
		p.advance()
		if _, err := p.expectIdent(); err != nil {
			return err
		}
		if _, err := p.expect(lexer.TokenLPAREN, "("); err != nil {
			return err
		}
		for !p.check(lexer.TokenRPAREN) {
			if _, err := p.expectIdent(); err != nil {
				return err
			}
			if p.check(lexer.TokenCOMMA) {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.TokenRPAREN, ")"); err != nil {
			return err
		}
		if p.check(lexer.TokenAS) {
			p.advance()
			if _, err := p.expectIdent(); err != nil {
				return err
			}
		}
		if p.check(lexer.TokenLBRACE) {
			if _, err := p.parseAttrBlock(); err != nil {
				return err
			}
		}
		return nil
	case lexer.TokenUNLINK:
		p.advance()
		_, err := p.expectIdent()
		return err
	case lexer.TokenSET:
		p.advance()
		if _, err := p.expectIdent(); err != nil {
			return err
		}
		if _, err := p.expect(lexer.TokenDOT, "."); err != nil {
			return err
		}
		if _, err := p.expectIdent(); err != nil {
			return err
		}
		if _, err := p.expect(lexer.TokenEQ, "="); err != nil {
			return err
		}
		_, err := p.ParseExpr()
		return err
	default:
		return p.errorf(p.peek(), "SPAWN, KILL, LINK, UNLINK, or SET")
	}
}

// captureSpanText runs parse, then returns the exact source text the
// tokens it consumed cover — used to store constraint/rule bodies as
// opaque productions per the Open Question resolution in DESIGN.md.
func (p *Parser) captureSpanText(parse func() error) (string, error) {
	startTok := p.peek()
	if err := parse(); err != nil {
		return "", err
	}
	if p.pos == 0 {
		return "", nil
	}
	endTok := p.tokens[p.pos-1]
	end := endTok.Pos + len(endTok.Val)
	if endTok.ID == lexer.TokenSTRING {
		// Val holds the unquoted text; rescan the raw literal for its end.
		quote := p.source[endTok.Pos]
		for end = endTok.Pos + 1; end < len(p.source); end++ {
			if p.source[end] == '\\' {
				end++
			} else if p.source[end] == quote {
				end++
				break
			}
		}
	}
	return p.source[startTok.Pos:end], nil
}
