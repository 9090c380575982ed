package cypher

import "fmt"

// tokenType classifies lexed tokens. Keywords are not distinguished at the
// lexer level; clause and operator words arrive as tokenIdent and are matched
// case-insensitively by the parser, mirroring Cypher's case-insensitive
// keywords.
type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdent
	tokenEscapedName // `backtick quoted`
	tokenString      // quotes included
	tokenInteger
	tokenFloat
	tokenSymbol // punctuation and operators, Text holds the exact lexeme
)

// token is a single lexed token with its position in the source text.
type token struct {
	Type tokenType
	Text string
	Pos  int // byte offset
	Line int // 1-based
	Col  int // 0-based, matching ANTLR's charPositionInLine
}

func (t token) String() string {
	if t.Type == tokenEOF {
		return "<EOF>"
	}
	return fmt.Sprintf("%q", t.Text)
}
