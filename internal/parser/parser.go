/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package parser

import (
	"fmt"

	"github.com/bdjafer/mew/internal/lexer"
	"github.com/bdjafer/mew/internal/mewerr"
)

// Parser walks a fully materialized token slice by index, peeking
// ahead with peek/peekAt and never backtracking — the lexer's channel
// is drained up front so the parser can look past the next token,
// unlike the lexer's own single-pass state machine.
type Parser struct {
	source string
	tokens []lexer.LexToken
	pos    int
}

// New lexes source in full and returns a Parser ready to parse it.
func New(source string) *Parser {
	return &Parser{source: source, tokens: lexer.LexToList("input", source)}
}

func (p *Parser) peek() lexer.LexToken {
	if p.pos >= len(p.tokens) {
		return lexer.LexToken{ID: lexer.TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekAt(offset int) lexer.LexToken {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return lexer.LexToken{ID: lexer.TokenEOF}
	}
	return p.tokens[i]
}

func (p *Parser) advance() lexer.LexToken {
	t := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return t
}

func (p *Parser) check(id lexer.LexTokenID) bool {
	return p.peek().ID == id
}

func (p *Parser) span(t lexer.LexToken) Span {
	return Span{Start: t.Pos, End: t.Pos + len(t.Val), Line: t.Line, Col: t.Col}
}

func (p *Parser) spanFrom(start Span) Span {
	end := start
	if p.pos > 0 {
		prev := p.tokens[p.pos-1]
		end = p.span(prev)
	}
	return Span{Start: start.Start, End: end.End, Line: start.Line, Col: start.Col}
}

func (p *Parser) errorf(t lexer.LexToken, want string) error {
	return mewerr.NewAt(mewerr.ErrUnexpectedToken,
		fmt.Sprintf("expected %s, found %q", want, t.Val), p.span(t))
}

func (p *Parser) expect(id lexer.LexTokenID, want string) (lexer.LexToken, error) {
	if p.check(id) {
		return p.advance(), nil
	}
	return lexer.LexToken{}, p.errorf(p.peek(), want)
}

func (p *Parser) expectIdent() (string, error) {
	t, err := p.expect(lexer.TokenIDENTIFIER, "identifier")
	return t.Val, err
}

// expectName accepts an identifier or any keyword spelled as bare
// text, so ontology attribute/param names may reuse keywords like
// "order" the same way the original grammar allows.
func (p *Parser) expectName() (string, error) {
	t := p.peek()
	if t.ID == lexer.TokenIDENTIFIER || isKeywordToken(t.ID) {
		p.advance()
		return t.Val, nil
	}
	return "", p.errorf(t, "name")
}

func (p *Parser) expectInt() (int64, error) {
	t, err := p.expect(lexer.TokenINT, "integer")
	if err != nil {
		return 0, err
	}
	return parseIntLiteral(t.Val)
}

func (p *Parser) expectString() (string, error) {
	t, err := p.expect(lexer.TokenSTRING, "string")
	return t.Val, err
}

func isKeywordToken(id lexer.LexTokenID) bool {
	return id >= lexer.TokenMATCH && id <= lexer.TokenON
}

func parseIntLiteral(s string) (int64, error) {
	var n int64
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
