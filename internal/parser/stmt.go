/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package parser

import (
	"strings"

	"github.com/bdjafer/mew/internal/lexer"
)

// ParseStmts parses every statement in the source up to EOF.
func (p *Parser) ParseStmts() ([]*Stmt, error) {
	var stmts []*Stmt
	for !p.check(lexer.TokenEOF) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *Parser) parseStmt() (*Stmt, error) {
	switch p.peek().ID {
	case lexer.TokenMATCH:
		return p.parseMatchOrMutate()
	case lexer.TokenSPAWN:
		s, err := p.parseSpawn()
		return &Stmt{Kind: StmtSpawn, Span: s.Span, Spawn: s}, err
	case lexer.TokenKILL:
		s, err := p.parseKill()
		return &Stmt{Kind: StmtKill, Span: s.Span, Kill: s}, err
	case lexer.TokenLINK:
		s, err := p.parseLink()
		return &Stmt{Kind: StmtLink, Span: s.Span, Link: s}, err
	case lexer.TokenUNLINK:
		s, err := p.parseUnlink()
		return &Stmt{Kind: StmtUnlink, Span: s.Span, Unlink: s}, err
	case lexer.TokenSET:
		s, err := p.parseSet()
		return &Stmt{Kind: StmtSet, Span: s.Span, Set: s}, err
	case lexer.TokenWALK:
		s, err := p.parseWalk()
		return &Stmt{Kind: StmtWalk, Span: s.Span, Walk: s}, err
	case lexer.TokenINSPECT:
		s, err := p.parseInspect()
		return &Stmt{Kind: StmtInspect, Span: s.Span, Inspect: s}, err
	case lexer.TokenBEGIN:
		return p.parseBegin()
	case lexer.TokenCOMMIT:
		t := p.advance()
		return &Stmt{Kind: StmtTxnCommit, Span: p.span(t)}, nil
	case lexer.TokenROLLBACK:
		t := p.advance()
		return &Stmt{Kind: StmtTxnRollback, Span: p.span(t)}, nil
	case lexer.TokenEXPLAIN:
		t := p.advance()
		inner, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtExplain, Span: p.spanFrom(p.span(t)), Inner: inner}, nil
	case lexer.TokenPROFILE:
		t := p.advance()
		inner, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		return &Stmt{Kind: StmtProfile, Span: p.spanFrom(p.span(t)), Inner: inner}, nil
	default:
		return nil, p.errorf(p.peek(), "statement")
	}
}

func (p *Parser) parseBegin() (*Stmt, error) {
	start := p.advance() // consume BEGIN

	var isolation *IsolationLevel
	// Read committed / serializable are expressed as two identifiers
	// ("read", "committed") since they are not reserved keywords of
	// their own; MEW instead treats the whole clause as optional
	// bare-identifier text following BEGIN.
	if p.check(lexer.TokenIDENTIFIER) {
		switch strings.ToLower(p.peek().Val) {
		case "read":
			p.advance()
			if _, err := p.expectIdentText("committed"); err != nil {
				return nil, err
			}
			lvl := IsolationReadCommitted
			isolation = &lvl
		case "serializable":
			p.advance()
			lvl := IsolationSerializable
			isolation = &lvl
		}
	}

	return &Stmt{Kind: StmtTxnBegin, Span: p.spanFrom(p.span(start)), Isolation: isolation}, nil
}

func (p *Parser) expectIdentText(want string) (string, error) {
	t := p.peek()
	if t.ID == lexer.TokenIDENTIFIER && strings.EqualFold(t.Val, want) {
		p.advance()
		return t.Val, nil
	}
	return "", p.errorf(t, want)
}

// parseMatchOrMutate parses MATCH ... followed by RETURN (a query),
// LINK/SET/KILL/UNLINK (a compound mutation), or WALK (a compound walk).
func (p *Parser) parseMatchOrMutate() (*Stmt, error) {
	start := p.advance() // consume MATCH

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

	optionals, err := p.parseOptionalMatches()
	if err != nil {
		return nil, err
	}

	switch {
	case p.check(lexer.TokenRETURN):
		ret, err := p.parseReturnClause()
		if err != nil {
			return nil, err
		}

		var orderBy []OrderTerm
		if p.check(lexer.TokenORDER) {
			p.advance()
			if _, err := p.expect(lexer.TokenBY, "by"); err != nil {
				return nil, err
			}
			orderBy, err = p.parseOrderTerms()
			if err != nil {
				return nil, err
			}
		}

		var limit, offset *int64
		if p.check(lexer.TokenLIMIT) {
			p.advance()
			n, err := p.expectInt()
			if err != nil {
				return nil, err
			}
			limit = &n
		}
		if p.check(lexer.TokenOFFSET) {
			p.advance()
			n, err := p.expectInt()
			if err != nil {
				return nil, err
			}
			offset = &n
		}

		m := &MatchStmt{
			Pattern: pattern, Where: where, OptionalMatches: optionals,
			Return: ret, OrderBy: orderBy, Limit: limit, Offset: offset,
			Span: p.spanFrom(p.span(start)),
		}
		return &Stmt{Kind: StmtMatch, Span: m.Span, Match: m}, nil

	case p.isMutationKeyword():
		var mutations []MutationAction
		for p.isMutationKeyword() {
			action, err := p.parseMutationAction()
			if err != nil {
				return nil, err
			}
			mutations = append(mutations, action)
		}
		mm := &MatchMutateStmt{Pattern: pattern, Where: where, Mutations: mutations, Span: p.spanFrom(p.span(start))}
		return &Stmt{Kind: StmtMatchMutate, Span: mm.Span, MatchMutate: mm}, nil

	case p.check(lexer.TokenWALK):
		walk, err := p.parseWalk()
		if err != nil {
			return nil, err
		}
		mw := &MatchWalkStmt{Pattern: pattern, Where: where, Walk: walk, Span: p.spanFrom(p.span(start))}
		return &Stmt{Kind: StmtMatchWalk, Span: mw.Span, MatchWalk: mw}, nil

	default:
		return nil, p.errorf(p.peek(), "RETURN, a mutation, or WALK")
	}
}

// parseMatch parses a full MATCH ... RETURN query, used both as a
// top-level statement and inside {pattern} target/target-ref positions.
func (p *Parser) parseMatch() (*MatchStmt, error) {
	start := p.advance() // consume MATCH

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

	optionals, err := p.parseOptionalMatches()
	if err != nil {
		return nil, err
	}

	ret, err := p.parseReturnClause()
	if err != nil {
		return nil, err
	}

	var orderBy []OrderTerm
	if p.check(lexer.TokenORDER) {
		p.advance()
		if _, err := p.expect(lexer.TokenBY, "by"); err != nil {
			return nil, err
		}
		orderBy, err = p.parseOrderTerms()
		if err != nil {
			return nil, err
		}
	}

	var limit, offset *int64
	if p.check(lexer.TokenLIMIT) {
		p.advance()
		n, err := p.expectInt()
		if err != nil {
			return nil, err
		}
		limit = &n
	}
	if p.check(lexer.TokenOFFSET) {
		p.advance()
		n, err := p.expectInt()
		if err != nil {
			return nil, err
		}
		offset = &n
	}

	return &MatchStmt{
		Pattern: pattern, Where: where, OptionalMatches: optionals,
		Return: ret, OrderBy: orderBy, Limit: limit, Offset: offset,
		Span: p.spanFrom(p.span(start)),
	}, nil
}

func (p *Parser) parseOptionalMatches() ([]OptionalMatch, error) {
	var out []OptionalMatch
	for p.check(lexer.TokenOPTIONAL) {
		start := p.advance()
		if _, err := p.expect(lexer.TokenMATCH, "match"); err != nil {
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
		out = append(out, OptionalMatch{Pattern: pattern, Where: where, Span: p.spanFrom(p.span(start))})
	}
	return out, nil
}

func (p *Parser) isMutationKeyword() bool {
	switch p.peek().ID {
	case lexer.TokenLINK, lexer.TokenSET, lexer.TokenKILL, lexer.TokenUNLINK:
		return true
	}
	return false
}

func (p *Parser) parseMutationAction() (MutationAction, error) {
	switch p.peek().ID {
	case lexer.TokenLINK:
		s, err := p.parseLink()
		return MutationAction{Kind: ActionLink, Link: s}, err
	case lexer.TokenSET:
		s, err := p.parseSet()
		return MutationAction{Kind: ActionSet, Set: s}, err
	case lexer.TokenKILL:
		s, err := p.parseKill()
		return MutationAction{Kind: ActionKill, Kill: s}, err
	case lexer.TokenUNLINK:
		s, err := p.parseUnlink()
		return MutationAction{Kind: ActionUnlink, Unlink: s}, err
	default:
		return MutationAction{}, p.errorf(p.peek(), "mutation (LINK, SET, KILL, UNLINK)")
	}
}

func (p *Parser) parseReturnClause() (ReturnClause, error) {
	start := p.advance() // consume RETURN

	distinct := false
	if p.check(lexer.TokenDISTINCT) {
		p.advance()
		distinct = true
	}

	projections, err := p.parseProjections()
	if err != nil {
		return ReturnClause{}, err
	}

	return ReturnClause{Distinct: distinct, Projections: projections, Span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseProjections() ([]Projection, error) {
	var out []Projection
	proj, err := p.parseProjection()
	if err != nil {
		return nil, err
	}
	out = append(out, proj)

	for p.check(lexer.TokenCOMMA) {
		p.advance()
		proj, err := p.parseProjection()
		if err != nil {
			return nil, err
		}
		out = append(out, proj)
	}

	return out, nil
}

func (p *Parser) parseProjection() (Projection, error) {
	start := p.peek()

	if p.check(lexer.TokenSTAR) {
		p.advance()
		sp := p.span(start)
		return Projection{Expr: &Expr{K: ExprVar, Name: "*", span: sp}, Span: sp}, nil
	}

	expr, err := p.ParseExpr()
	if err != nil {
		return Projection{}, err
	}

	alias := ""
	if p.check(lexer.TokenAS) {
		p.advance()
		alias, err = p.expectIdent()
		if err != nil {
			return Projection{}, err
		}
	}

	return Projection{Expr: expr, Alias: alias, Span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseOrderTerms() ([]OrderTerm, error) {
	var out []OrderTerm
	term, err := p.parseOrderTerm()
	if err != nil {
		return nil, err
	}
	out = append(out, term)

	for p.check(lexer.TokenCOMMA) {
		p.advance()
		term, err := p.parseOrderTerm()
		if err != nil {
			return nil, err
		}
		out = append(out, term)
	}

	return out, nil
}

func (p *Parser) parseOrderTerm() (OrderTerm, error) {
	start := p.peek()
	expr, err := p.ParseExpr()
	if err != nil {
		return OrderTerm{}, err
	}

	dir := OrderAsc
	if p.check(lexer.TokenASC) {
		p.advance()
	} else if p.check(lexer.TokenDESC) {
		p.advance()
		dir = OrderDesc
	}

	return OrderTerm{Expr: expr, Direction: dir, Span: p.spanFrom(p.span(start))}, nil
}

// ==================== SPAWN ====================

func (p *Parser) parseSpawn() (*SpawnStmt, error) {
	start := p.advance() // consume SPAWN

	v, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
		return nil, err
	}
	typeName, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var attrs []AttrAssignment
	if p.check(lexer.TokenLBRACE) {
		attrs, err = p.parseAttrBlock()
		if err != nil {
			return nil, err
		}
	}

	returning, err := p.parseOptionalReturning()
	if err != nil {
		return nil, err
	}

	return &SpawnStmt{Var: v, TypeName: typeName, Attrs: attrs, Returning: returning, Span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseAttrBlock() ([]AttrAssignment, error) {
	p.advance() // consume '{'

	var attrs []AttrAssignment
	for !p.check(lexer.TokenRBRACE) {
		a, err := p.parseAttrAssignment()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
		if p.check(lexer.TokenCOMMA) {
			p.advance()
			continue
		}
		break
	}

	if _, err := p.expect(lexer.TokenRBRACE, "}"); err != nil {
		return nil, err
	}
	return attrs, nil
}

func (p *Parser) parseAttrAssignment() (AttrAssignment, error) {
	start := p.peek()
	name, err := p.expectName()
	if err != nil {
		return AttrAssignment{}, err
	}
	if _, err := p.expect(lexer.TokenEQ, "="); err != nil {
		return AttrAssignment{}, err
	}
	value, err := p.ParseExpr()
	if err != nil {
		return AttrAssignment{}, err
	}
	return AttrAssignment{Name: name, Value: value, Span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseOptionalReturning() (*ReturningClause, error) {
	if !p.check(lexer.TokenRETURNING) {
		return nil, nil
	}
	start := p.advance()

	if p.peek().ID == lexer.TokenIDENTIFIER && strings.EqualFold(p.peek().Val, "id") {
		p.advance()
		return &ReturningClause{Kind: ReturningID, Span: p.spanFrom(p.span(start))}, nil
	}
	if p.check(lexer.TokenSTAR) {
		p.advance()
		return &ReturningClause{Kind: ReturningAll, Span: p.spanFrom(p.span(start))}, nil
	}

	var fields []string
	f, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	fields = append(fields, f)
	for p.check(lexer.TokenCOMMA) {
		p.advance()
		f, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	return &ReturningClause{Kind: ReturningFields, Fields: fields, Span: p.spanFrom(p.span(start))}, nil
}

// ==================== KILL / targets ====================

func (p *Parser) parseKill() (*KillStmt, error) {
	start := p.advance() // consume KILL

	target, err := p.parseTarget()
	if err != nil {
		return nil, err
	}

	var cascade *bool
	if p.check(lexer.TokenCASCADE) {
		p.advance()
		v := true
		cascade = &v
	} else if p.peek().ID == lexer.TokenIDENTIFIER && strings.EqualFold(p.peek().Val, "no") {
		p.advance()
		if _, err := p.expect(lexer.TokenCASCADE, "cascade"); err != nil {
			return nil, err
		}
		v := false
		cascade = &v
	}

	returning, err := p.parseOptionalReturning()
	if err != nil {
		return nil, err
	}

	return &KillStmt{Target: target, Cascade: cascade, Returning: returning, Span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseTarget() (Target, error) {
	start := p.peek()

	if p.check(lexer.TokenIDREF) {
		t := p.advance()
		return Target{Kind: TargetID, ID: t.Val, Span: p.span(t)}, nil
	}

	if p.check(lexer.TokenLBRACE) {
		p.advance()
		m, err := p.parseMatch()
		if err != nil {
			return Target{}, err
		}
		if _, err := p.expect(lexer.TokenRBRACE, "}"); err != nil {
			return Target{}, err
		}
		return Target{Kind: TargetPattern, Pattern: m, Span: p.spanFrom(p.span(start))}, nil
	}

	ident, err := p.expectIdent()
	if err != nil {
		return Target{}, err
	}

	if p.check(lexer.TokenLPAREN) {
		targets, err := p.parseEdgeTargets()
		if err != nil {
			return Target{}, err
		}
		return Target{Kind: TargetEdgePattern, EdgeType: ident, EdgeTargets: targets, Span: p.spanFrom(p.span(start))}, nil
	}

	return Target{Kind: TargetVar, Var: ident, Span: p.span(start)}, nil
}

// ==================== LINK ====================

func (p *Parser) parseLink() (*LinkStmt, error) {
	start := p.advance() // consume LINK

	ident, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var v, edgeType string
	if p.check(lexer.TokenCOLON) {
		p.advance()
		edgeType, err = p.expectIdent()
		if err != nil {
			return nil, err
		}
		v = ident
	} else {
		edgeType = ident
	}

	if _, err := p.expect(lexer.TokenLPAREN, "("); err != nil {
		return nil, err
	}

	var targets []TargetRef
	for !p.check(lexer.TokenRPAREN) {
		t, err := p.parseTargetRef()
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
		if p.check(lexer.TokenCOMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.TokenRPAREN, ")"); err != nil {
		return nil, err
	}

	var attrs []AttrAssignment
	if p.check(lexer.TokenLBRACE) {
		attrs, err = p.parseAttrBlock()
		if err != nil {
			return nil, err
		}
	}

	returning, err := p.parseOptionalReturning()
	if err != nil {
		return nil, err
	}

	return &LinkStmt{Var: v, EdgeType: edgeType, Targets: targets, Attrs: attrs, Returning: returning, Span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseTargetRef() (TargetRef, error) {
	start := p.peek()

	if p.check(lexer.TokenIDREF) {
		t := p.advance()
		return TargetRef{Kind: TargetID, ID: t.Val, Span: p.span(t)}, nil
	}

	if p.check(lexer.TokenLBRACE) {
		p.advance()
		m, err := p.parseMatch()
		if err != nil {
			return TargetRef{}, err
		}
		if _, err := p.expect(lexer.TokenRBRACE, "}"); err != nil {
			return TargetRef{}, err
		}
		return TargetRef{Kind: TargetPattern, Pattern: m, Span: p.spanFrom(p.span(start))}, nil
	}

	v, err := p.expectIdent()
	if err != nil {
		return TargetRef{}, err
	}
	return TargetRef{Kind: TargetVar, Var: v, Span: p.span(start)}, nil
}

// ==================== UNLINK ====================

func (p *Parser) parseUnlink() (*UnlinkStmt, error) {
	start := p.advance() // consume UNLINK
	target, err := p.parseTarget()
	if err != nil {
		return nil, err
	}
	returning, err := p.parseOptionalReturning()
	if err != nil {
		return nil, err
	}
	return &UnlinkStmt{Target: target, Returning: returning, Span: p.spanFrom(p.span(start))}, nil
}

// ==================== SET ====================

func (p *Parser) parseSet() (*SetStmt, error) {
	start := p.advance() // consume SET

	target, err := p.parseTarget()
	if err != nil {
		return nil, err
	}

	var assignments []AttrAssignment
	if p.check(lexer.TokenLBRACE) {
		assignments, err = p.parseAttrBlock()
		if err != nil {
			return nil, err
		}
	} else {
		attrStart := p.peek()
		if _, err := p.expect(lexer.TokenDOT, "."); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenEQ, "="); err != nil {
			return nil, err
		}
		value, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		assignments = []AttrAssignment{{Name: name, Value: value, Span: p.spanFrom(p.span(attrStart))}}
	}

	returning, err := p.parseOptionalReturning()
	if err != nil {
		return nil, err
	}

	return &SetStmt{Target: target, Assignments: assignments, Returning: returning, Span: p.spanFrom(p.span(start))}, nil
}

// ==================== WALK ====================

func (p *Parser) parseWalk() (*WalkStmt, error) {
	start := p.advance() // consume WALK

	if _, err := p.expectIdentText("from"); err != nil {
		return nil, err
	}
	from, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}

	var follow []FollowClause
	for p.peek().ID == lexer.TokenIDENTIFIER && strings.EqualFold(p.peek().Val, "follow") {
		fc, err := p.parseFollowClause()
		if err != nil {
			return nil, err
		}
		follow = append(follow, fc)
	}

	var until *Expr
	if p.peek().ID == lexer.TokenIDENTIFIER && strings.EqualFold(p.peek().Val, "until") {
		p.advance()
		until, err = p.ParseExpr()
		if err != nil {
			return nil, err
		}
	}

	retType, err := p.parseWalkReturn()
	if err != nil {
		return nil, err
	}

	return &WalkStmt{From: from, Follow: follow, Until: until, ReturnType: retType, Span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseFollowClause() (FollowClause, error) {
	start := p.advance() // consume 'follow'

	var edgeTypes []string
	if p.check(lexer.TokenSTAR) {
		p.advance()
		edgeTypes = append(edgeTypes, "*")
	} else {
		name, err := p.expectIdent()
		if err != nil {
			return FollowClause{}, err
		}
		edgeTypes = append(edgeTypes, name)
		for p.check(lexer.TokenPIPE) {
			p.advance()
			name, err := p.expectIdent()
			if err != nil {
				return FollowClause{}, err
			}
			edgeTypes = append(edgeTypes, name)
		}
	}

	dir := WalkOutbound
	if p.peek().ID == lexer.TokenIDENTIFIER {
		switch strings.ToLower(p.peek().Val) {
		case "outbound":
			p.advance()
		case "inbound":
			p.advance()
			dir = WalkInbound
		case "any":
			p.advance()
			dir = WalkAny
		}
	}

	var minDepth, maxDepth *int64
	if p.check(lexer.TokenLBRACKET) {
		p.advance()
		if _, err := p.expectIdentText("depth"); err != nil {
			return FollowClause{}, err
		}
		if _, err := p.expect(lexer.TokenCOLON, ":"); err != nil {
			return FollowClause{}, err
		}
		min, err := p.expectInt()
		if err != nil {
			return FollowClause{}, err
		}
		minDepth = &min
		if p.check(lexer.TokenDOTDOT) {
			p.advance()
			max, err := p.expectInt()
			if err != nil {
				return FollowClause{}, err
			}
			maxDepth = &max
		}
		if _, err := p.expect(lexer.TokenRBRACKET, "]"); err != nil {
			return FollowClause{}, err
		}
	}

	return FollowClause{EdgeTypes: edgeTypes, Direction: dir, MinDepth: minDepth, MaxDepth: maxDepth, Span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseWalkReturn() (WalkReturn, error) {
	if _, err := p.expect(lexer.TokenRETURN, "return"); err != nil {
		return WalkReturn{}, err
	}

	if p.peek().ID == lexer.TokenIDENTIFIER {
		switch strings.ToLower(p.peek().Val) {
		case "path":
			p.advance()
			alias, err := p.parseOptionalAsAlias()
			return WalkReturn{Kind: WalkReturnPath, Alias: alias}, err
		case "nodes":
			p.advance()
			alias, err := p.parseOptionalAsAlias()
			return WalkReturn{Kind: WalkReturnNodes, Alias: alias}, err
		case "edges":
			p.advance()
			alias, err := p.parseOptionalAsAlias()
			return WalkReturn{Kind: WalkReturnEdges, Alias: alias}, err
		case "terminal":
			p.advance()
			alias, err := p.parseOptionalAsAlias()
			return WalkReturn{Kind: WalkReturnTerminal, Alias: alias}, err
		}
	}

	projections, err := p.parseProjections()
	return WalkReturn{Kind: WalkReturnProjections, Projections: projections}, err
}

func (p *Parser) parseOptionalAsAlias() (string, error) {
	if !p.check(lexer.TokenAS) {
		return "", nil
	}
	p.advance()
	return p.expectIdent()
}

// ==================== INSPECT ====================

func (p *Parser) parseInspect() (*InspectStmt, error) {
	start := p.advance() // consume INSPECT

	if _, err := p.expect(lexer.TokenIDREF, "#id"); err != nil {
		return nil, err
	}
	id := p.tokens[p.pos-1].Val

	var projections []Projection
	if p.check(lexer.TokenRETURN) {
		p.advance()
		var err error
		projections, err = p.parseProjections()
		if err != nil {
			return nil, err
		}
	}

	return &InspectStmt{ID: id, Projections: projections, Span: p.spanFrom(p.span(start))}, nil
}
