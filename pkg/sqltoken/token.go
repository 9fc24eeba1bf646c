package sqltoken

import "strings"

// Kind identifies the category of a SQL token.
type Kind int

const (
	KindEOF Kind = iota
	KindWhitespace
	KindSingleLineComment
	KindMultiLineComment
	KindWord
	KindNumber
	KindSingleQuotedString
	KindDoubleQuotedString
	KindAtSign
	KindComma
	KindLParen
	KindRParen
	KindSemicolon
	KindOperator
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindWhitespace:
		return "whitespace"
	case KindSingleLineComment:
		return "single-line comment"
	case KindMultiLineComment:
		return "multi-line comment"
	case KindWord:
		return "word"
	case KindNumber:
		return "number"
	case KindSingleQuotedString:
		return "string literal"
	case KindDoubleQuotedString:
		return "double-quoted string"
	case KindAtSign:
		return "@"
	case KindComma:
		return ","
	case KindLParen:
		return "("
	case KindRParen:
		return ")"
	case KindSemicolon:
		return ";"
	case KindOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of SQL text.
//
// Text holds the token's value: the bare word for KindWord, the
// unquoted content for string literals, the literal spelling for
// numbers and operators, the raw run for whitespace, and the comment
// body (including its trailing newline, when present) for comments.
// Prefix is set only on comment tokens ("--" or "#") and on quoted
// words, where it holds the opening quote character.
type Token struct {
	Kind   Kind
	Text   string
	Prefix string
}

// Word builds an unquoted word token.
func Word(text string) Token { return Token{Kind: KindWord, Text: text} }

// Number builds a numeric literal token from its decimal spelling.
func Number(text string) Token { return Token{Kind: KindNumber, Text: text} }

// StringLiteral builds a single-quoted string literal token wrapping
// text verbatim. Quoting and escaping happen in String, never by the
// caller splicing text.
func StringLiteral(text string) Token {
	return Token{Kind: KindSingleQuotedString, Text: text}
}

// Comma, LParen, RParen are the punctuation tokens the renderer emits
// when encoding array values.
var (
	Comma  = Token{Kind: KindComma, Text: ","}
	LParen = Token{Kind: KindLParen, Text: "("}
	RParen = Token{Kind: KindRParen, Text: ")"}
)

// String renders the token back to SQL text. For every token produced
// by Tokenize the output reproduces the source bytes, except string
// literals, which are re-quoted canonically (embedded quotes doubled).
func (t Token) String() string {
	switch t.Kind {
	case KindEOF:
		return ""
	case KindSingleLineComment:
		return t.Prefix + t.Text
	case KindMultiLineComment:
		return "/*" + t.Text + "*/"
	case KindWord:
		if t.Prefix != "" {
			return t.Prefix + t.Text + closingQuote(t.Prefix)
		}
		return t.Text
	case KindSingleQuotedString:
		return "'" + strings.ReplaceAll(t.Text, "'", "''") + "'"
	case KindDoubleQuotedString:
		return `"` + strings.ReplaceAll(t.Text, `"`, `""`) + `"`
	default:
		return t.Text
	}
}

func closingQuote(open string) string {
	if open == "[" {
		return "]"
	}
	return open
}

// IsKeyword reports whether the token is a word spelling the given
// keyword, compared case-insensitively.
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == KindWord && t.Prefix == "" && strings.EqualFold(t.Text, kw)
}
