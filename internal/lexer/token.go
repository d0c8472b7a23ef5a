/*
 * MEW
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

/*
Package lexer turns MEW source text (query/mutation statements and
ontology declarations) into a stream of tokens.

The scanner follows the teacher's channel-based lexFunc state machine:
a lexFunc examines the input and returns the next lexFunc to run,
emitting LexTokens onto a channel as it goes.
*/
package lexer

import "fmt"

// LexTokenID identifies the lexical class of a LexToken.
type LexTokenID int

const (
	TokenError LexTokenID = iota
	TokenEOF

	TokenIDENTIFIER
	TokenINT
	TokenFLOAT
	TokenSTRING
	TokenTIMESTAMP  // @2024-01-01T00:00:00Z
	TokenDURATION   // 5s, 10m, 1h, 2d style suffix literal
	TokenPARAM      // $name
	TokenIDREF      // #123

	// Keywords

	TokenMATCH
	TokenOPTIONAL
	TokenWHERE
	TokenRETURN
	TokenRETURNING
	TokenORDER
	TokenBY
	TokenASC
	TokenDESC
	TokenLIMIT
	TokenOFFSET
	TokenAS
	TokenDISTINCT
	TokenAND
	TokenOR
	TokenNOT
	TokenXOR
	TokenIN
	TokenIS
	TokenNULL
	TokenTRUE
	TokenFALSE

	TokenSPAWN
	TokenKILL
	TokenLINK
	TokenUNLINK
	TokenSET
	TokenWALK
	TokenINSPECT
	TokenBEGIN
	TokenCOMMIT
	TokenROLLBACK
	TokenEXPLAIN
	TokenPROFILE

	TokenTYPE
	TokenNODE
	TokenEDGE
	TokenCONSTRAINT
	TokenRULE
	TokenABSTRACT
	TokenSEALED
	TokenSYMMETRIC
	TokenACYCLIC
	TokenUNIQUE
	TokenREQUIRED
	TokenDEFAULT
	TokenINDEXED
	TokenCASCADE
	TokenRESTRICT
	TokenHARD
	TokenSOFT
	TokenDEFERRED
	TokenPRIORITY
	TokenAUTO
	TokenON

	// Punctuation and operators

	TokenLPAREN
	TokenRPAREN
	TokenLBRACE
	TokenRBRACE
	TokenLBRACKET
	TokenRBRACKET
	TokenCOMMA
	TokenCOLON
	TokenSEMICOLON
	TokenDOT
	TokenDOTDOT
	TokenARROW     // ->
	TokenFATARROW  // =>
	TokenQUESTION  // ?
	TokenCOALESCE  // ??
	TokenEQ        // =
	TokenNEQ       // !=
	TokenLT        // <
	TokenLTE       // <=
	TokenGT        // >
	TokenGTE       // >=
	TokenPLUS      // +
	TokenMINUS     // -
	TokenSTAR      // *
	TokenSLASH     // /
	TokenPERCENT   // %
	TokenPIPE      // |
)

var tokenIDNames = map[LexTokenID]string{
	TokenError:      "error",
	TokenEOF:        "EOF",
	TokenIDENTIFIER: "identifier",
	TokenINT:        "int",
	TokenFLOAT:      "float",
	TokenSTRING:     "string",
	TokenTIMESTAMP:  "timestamp",
	TokenDURATION:   "duration",
	TokenPARAM:      "parameter",
	TokenIDREF:      "id reference",
}

// keywordMap maps lowercase keyword spellings to their token id. The
// scanner itself is case-insensitive about keywords but preserves the
// original casing of the lexed value for identifiers.
var keywordMap = map[string]LexTokenID{
	"match":      TokenMATCH,
	"optional":   TokenOPTIONAL,
	"where":      TokenWHERE,
	"return":     TokenRETURN,
	"returning":  TokenRETURNING,
	"order":      TokenORDER,
	"by":         TokenBY,
	"asc":        TokenASC,
	"desc":       TokenDESC,
	"limit":      TokenLIMIT,
	"offset":     TokenOFFSET,
	"as":         TokenAS,
	"distinct":   TokenDISTINCT,
	"and":        TokenAND,
	"or":         TokenOR,
	"not":        TokenNOT,
	"xor":        TokenXOR,
	"in":         TokenIN,
	"is":         TokenIS,
	"null":       TokenNULL,
	"true":       TokenTRUE,
	"false":      TokenFALSE,

	"spawn":      TokenSPAWN,
	"kill":       TokenKILL,
	"link":       TokenLINK,
	"unlink":     TokenUNLINK,
	"set":        TokenSET,
	"walk":       TokenWALK,
	"inspect":    TokenINSPECT,
	"begin":      TokenBEGIN,
	"commit":     TokenCOMMIT,
	"rollback":   TokenROLLBACK,
	"explain":    TokenEXPLAIN,
	"profile":    TokenPROFILE,

	"type":       TokenTYPE,
	"node":       TokenNODE,
	"edge":       TokenEDGE,
	"constraint": TokenCONSTRAINT,
	"rule":       TokenRULE,
	"abstract":   TokenABSTRACT,
	"sealed":     TokenSEALED,
	"symmetric":  TokenSYMMETRIC,
	"acyclic":    TokenACYCLIC,
	"unique":     TokenUNIQUE,
	"required":   TokenREQUIRED,
	"default":    TokenDEFAULT,
	"indexed":    TokenINDEXED,
	"cascade":    TokenCASCADE,
	"restrict":   TokenRESTRICT,
	"hard":       TokenHARD,
	"soft":       TokenSOFT,
	"deferred":   TokenDEFERRED,
	"priority":   TokenPRIORITY,
	"auto":       TokenAUTO,
	"on":         TokenON,
}

// LexToken is a single scanned token: its class, source value, and
// position (byte offset plus 1-based line/column for diagnostics).
type LexToken struct {
	ID   LexTokenID
	Pos  int
	Val  string
	Line int
	Col  int
}

// PosString renders the token's position as "line:col".
func (t LexToken) PosString() string {
	return fmt.Sprintf("%v:%v", t.Line, t.Col)
}

func (t LexToken) String() string {
	if t.ID == TokenError {
		return fmt.Sprintf("Error: %v (%v)", t.Val, t.PosString())
	}
	if name, ok := tokenIDNames[t.ID]; ok {
		return fmt.Sprintf("%v('%v')", name, t.Val)
	}
	return fmt.Sprintf("'%v'", t.Val)
}
