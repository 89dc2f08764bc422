// Package token defines the lexical tokens of Simple C.
package token

import "github.com/simplec/scc/pkg/ast"

// Kind identifies a token's lexical category.
type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	String

	// Keywords
	KwInt
	KwChar
	KwVoid
	KwIf
	KwElse
	KwWhile
	KwFor
	KwBreak
	KwReturn

	// Punctuation and operators
	LParen
	RParen
	LBrace
	RBrace
	Semi
	Comma
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Bang
	Lt
	Gt
	Le
	Ge
	EqEq
	NotEq
	AndAnd
	OrOr
)

var keywords = map[string]Kind{
	"int":    KwInt,
	"char":   KwChar,
	"void":   KwVoid,
	"if":     KwIf,
	"else":   KwElse,
	"while":  KwWhile,
	"for":    KwFor,
	"break":  KwBreak,
	"return": KwReturn,
}

// Lookup returns the keyword kind for ident, or (Ident, false) if it is
// not a keyword.
func Lookup(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	if !ok {
		return Ident, false
	}
	return k, true
}

// Token is one scanned lexeme.
type Token struct {
	Kind   Kind
	Text   string // raw source text (identifiers, keywords, decimal literals); empty for operators
	IntVal int64  // Number / char-literal value
	StrVal string // String literal's decoded payload
	Pos    ast.Position
}
