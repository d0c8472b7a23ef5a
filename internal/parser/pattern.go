/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package parser

import "github.com/bdjafer/mew/internal/lexer"

// ParsePattern parses a standalone comma-separated pattern element list,
// exported so callers outside the parser (the ontology compiler resolving
// a constraint or rule's subject type) can walk the structured form
// instead of re-scanning the opaque captured source text.
func (p *Parser) ParsePattern() ([]PatternElement, error) {
	return p.parsePattern()
}

// parsePattern parses a comma-separated list of pattern elements, each
// either a node declaration (var: Type), a bare variable reference to
// an already-bound variable, or an edge pattern ([var:] edge_type(targets...)).
func (p *Parser) parsePattern() ([]PatternElement, error) {
	var elems []PatternElement

	elem, err := p.parsePatternElement()
	if err != nil {
		return nil, err
	}
	elems = append(elems, elem)

	for p.check(lexer.TokenCOMMA) {
		p.advance()
		elem, err := p.parsePatternElement()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
	}

	return elems, nil
}

func (p *Parser) parsePatternElement() (PatternElement, error) {
	start := p.peek()

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if p.check(lexer.TokenCOLON) {
		p.advance()
		typeOrEdge, err := p.expectIdent()
		if err != nil {
			return nil, err
		}

		if p.check(lexer.TokenLPAREN) {
			targets, err := p.parseEdgeTargets()
			if err != nil {
				return nil, err
			}
			return &EdgePattern{Var: name, EdgeType: typeOrEdge, Targets: targets, span: p.spanFrom(p.span(start))}, nil
		}

		return &NodePattern{Var: name, TypeName: typeOrEdge, span: p.spanFrom(p.span(start))}, nil
	}

	if p.check(lexer.TokenLPAREN) {
		targets, err := p.parseEdgeTargets()
		if err != nil {
			return nil, err
		}
		return &EdgePattern{EdgeType: name, Targets: targets, span: p.spanFrom(p.span(start))}, nil
	}

	// A bare identifier re-references an already-bound variable.
	return &NodePattern{Var: name, span: p.spanFrom(p.span(start))}, nil
}

func (p *Parser) parseEdgeTargets() ([]string, error) {
	p.advance() // consume '('

	var targets []string
	for !p.check(lexer.TokenRPAREN) {
		if p.check(lexer.TokenIDENTIFIER) {
			targets = append(targets, p.advance().Val)
		} else {
			return nil, p.errorf(p.peek(), "target variable or '_'")
		}
		if p.check(lexer.TokenCOMMA) {
			p.advance()
			continue
		}
		break
	}

	if _, err := p.expect(lexer.TokenRPAREN, ")"); err != nil {
		return nil, err
	}

	return targets, nil
}
