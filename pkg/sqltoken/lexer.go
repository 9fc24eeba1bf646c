package sqltoken

import (
	"fmt"
	"strings"
)

// TokenizeError reports a lexical failure with its source position.
type TokenizeError struct {
	Line int
	Col  int
	Msg  string
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("tokenize error at line %d, column %d: %s", e.Line, e.Col, e.Msg)
}

type lexer struct {
	dialect Dialect
	src     string
	pos     int
}

// Tokenize splits src into a flat token stream, comments and
// whitespace included, terminated by an implicit EOF (not emitted).
func Tokenize(dialect Dialect, src string) ([]Token, error) {
	l := &lexer{dialect: dialect, src: src}
	var tokens []Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == KindEOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (l *lexer) errorf(at int, format string, args ...any) error {
	line := 1 + strings.Count(l.src[:at], "\n")
	col := at - strings.LastIndexByte(l.src[:at], '\n')
	return &TokenizeError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) next() (Token, error) {
	if l.pos >= len(l.src) {
		return Token{Kind: KindEOF}, nil
	}
	ch := l.src[l.pos]
	switch {
	case isSpace(ch):
		return l.lexWhitespace(), nil
	case ch == '-' && l.peekAt(1) == '-':
		return l.lexLineComment("--"), nil
	case ch == '#' && l.dialect.hashComments():
		return l.lexLineComment("#"), nil
	case ch == '/' && l.peekAt(1) == '*':
		return l.lexBlockComment()
	case ch == '\'':
		return l.lexQuoted('\'', KindSingleQuotedString)
	case ch == '"':
		return l.lexQuoted('"', KindDoubleQuotedString)
	case isWordStart(ch):
		return l.lexWord(), nil
	case isDigit(ch) || (ch == '.' && isDigit(l.peekAt(1))):
		return l.lexNumber(), nil
	}
	if close, ok := l.dialect.identQuote(ch); ok {
		return l.lexQuotedWord(ch, close)
	}
	l.pos++
	switch ch {
	case '@':
		return Token{Kind: KindAtSign, Text: "@"}, nil
	case ',':
		return Comma, nil
	case '(':
		return LParen, nil
	case ')':
		return RParen, nil
	case ';':
		return Token{Kind: KindSemicolon, Text: ";"}, nil
	}
	// Greedy two-character operators, then single characters.
	if l.pos < len(l.src) {
		two := string(ch) + string(l.src[l.pos])
		switch two {
		case "<=", ">=", "<>", "!=", "||", "::", ":=", "->", "=>", "&&", ">>", "<<":
			l.pos++
			return Token{Kind: KindOperator, Text: two}, nil
		}
	}
	return Token{Kind: KindOperator, Text: string(ch)}, nil
}

func (l *lexer) lexWhitespace() Token {
	start := l.pos
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	return Token{Kind: KindWhitespace, Text: l.src[start:l.pos]}
}

// lexLineComment consumes a single-line comment. The comment text
// excludes the prefix but includes the terminating newline when one
// is present, so that concatenating tokens reproduces the source.
func (l *lexer) lexLineComment(prefix string) Token {
	l.pos += len(prefix)
	start := l.pos
	for l.pos < len(l.src) {
		if l.src[l.pos] == '\n' {
			l.pos++
			break
		}
		l.pos++
	}
	return Token{Kind: KindSingleLineComment, Text: l.src[start:l.pos], Prefix: prefix}
}

func (l *lexer) lexBlockComment() (Token, error) {
	at := l.pos
	l.pos += 2
	start := l.pos
	for l.pos+1 < len(l.src) {
		if l.src[l.pos] == '*' && l.src[l.pos+1] == '/' {
			text := l.src[start:l.pos]
			l.pos += 2
			return Token{Kind: KindMultiLineComment, Text: text}, nil
		}
		l.pos++
	}
	return Token{}, l.errorf(at, "unterminated block comment")
}

// lexQuoted consumes a quoted literal. A doubled quote inside the
// literal is an escaped quote character.
func (l *lexer) lexQuoted(quote byte, kind Kind) (Token, error) {
	at := l.pos
	l.pos++
	var b strings.Builder
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == quote {
			if l.peekAt(1) == quote {
				b.WriteByte(quote)
				l.pos += 2
				continue
			}
			l.pos++
			return Token{Kind: kind, Text: b.String()}, nil
		}
		b.WriteByte(ch)
		l.pos++
	}
	return Token{}, l.errorf(at, "unterminated string literal")
}

func (l *lexer) lexQuotedWord(open, close byte) (Token, error) {
	at := l.pos
	l.pos++
	start := l.pos
	for l.pos < len(l.src) {
		if l.src[l.pos] == close {
			text := l.src[start:l.pos]
			l.pos++
			return Token{Kind: KindWord, Text: text, Prefix: string(open)}, nil
		}
		l.pos++
	}
	return Token{}, l.errorf(at, "unterminated quoted identifier")
}

func (l *lexer) lexWord() Token {
	start := l.pos
	for l.pos < len(l.src) && isWordPart(l.src[l.pos]) {
		l.pos++
	}
	return Token{Kind: KindWord, Text: l.src[start:l.pos]}
}

func (l *lexer) lexNumber() Token {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	} else if l.peek() == '.' && l.pos > start {
		// trailing dot as in "1." is part of the number
		l.pos++
	}
	if ch := l.peek(); ch == 'e' || ch == 'E' {
		// exponent only when followed by digits (optionally signed)
		off := 1
		if s := l.peekAt(1); s == '+' || s == '-' {
			off = 2
		}
		if isDigit(l.peekAt(off)) {
			l.pos += off
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}
	return Token{Kind: KindNumber, Text: l.src[start:l.pos]}
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isWordStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isWordPart(ch byte) bool { return isWordStart(ch) || isDigit(ch) }
