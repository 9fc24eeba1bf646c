package sqltoken

import (
	"fmt"
	"strings"
)

// statementKeywords are the words that may open a statement. The
// parser checks syntactic well-formedness only; whether the statement
// makes sense is the backend's call.
var statementKeywords = map[string]struct{}{
	"SELECT": {}, "INSERT": {}, "UPDATE": {}, "DELETE": {}, "REPLACE": {},
	"CREATE": {}, "DROP": {}, "ALTER": {}, "TRUNCATE": {}, "RENAME": {},
	"WITH": {}, "VALUES": {}, "SHOW": {}, "SET": {}, "USE": {},
	"EXPLAIN": {}, "DESCRIBE": {}, "DESC": {}, "PRAGMA": {}, "ANALYZE": {},
	"VACUUM": {}, "GRANT": {}, "REVOKE": {}, "BEGIN": {}, "START": {},
	"COMMIT": {}, "ROLLBACK": {}, "CALL": {}, "EXEC": {}, "EXECUTE": {},
}

// ParseStatementError reports an ill-formed statement in the token
// stream handed to the parser.
type ParseStatementError struct {
	Found Token
	Msg   string
}

func (e *ParseStatementError) Error() string {
	if e.Found.Kind == KindEOF {
		return fmt.Sprintf("parse error: %s, found end of input", e.Msg)
	}
	return fmt.Sprintf("parse error: %s, found %q", e.Msg, e.Found.String())
}

// Statement is one parsed SQL statement: the token span it covers,
// with surrounding whitespace intact. The trailing statement
// delimiter is not part of the span.
type Statement struct {
	tokens []Token
}

// Tokens returns the statement's token span.
func (s Statement) Tokens() []Token { return s.tokens }

// Keyword returns the upper-cased leading keyword of the statement.
func (s Statement) Keyword() string {
	for _, t := range s.tokens {
		if t.Kind == KindWord {
			return strings.ToUpper(t.Text)
		}
	}
	return ""
}

// String reassembles the statement's SQL text, trimmed of the
// whitespace that surrounded it in the source.
func (s Statement) String() string {
	var b strings.Builder
	for _, t := range s.tokens {
		b.WriteString(t.String())
	}
	return strings.TrimSpace(b.String())
}

// Parser walks a token stream in statement-sequence mode. It exposes
// the three operations the renderer needs: peek the next significant
// token, consume a statement delimiter if one is next, and parse one
// statement.
type Parser struct {
	tokens []Token
	pos    int
}

func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// skipSpace advances past whitespace and comments, which carry no
// statement structure.
func (p *Parser) skipSpace() {
	for p.pos < len(p.tokens) {
		k := p.tokens[p.pos].Kind
		if k != KindWhitespace && k != KindSingleLineComment && k != KindMultiLineComment {
			return
		}
		p.pos++
	}
}

// PeekToken returns the next significant token without consuming it.
func (p *Parser) PeekToken() Token {
	p.skipSpace()
	if p.pos >= len(p.tokens) {
		return Token{Kind: KindEOF}
	}
	return p.tokens[p.pos]
}

// ConsumeIf consumes the next significant token when it has the given
// kind and reports whether it did.
func (p *Parser) ConsumeIf(kind Kind) bool {
	if p.PeekToken().Kind == kind {
		p.pos++
		return true
	}
	return false
}

// ParseStatement parses one statement: a leading statement keyword
// followed by tokens with balanced parentheses, up to (not including)
// the next top-level statement delimiter or end of input.
func (p *Parser) ParseStatement() (Statement, error) {
	lead := p.PeekToken()
	if lead.Kind != KindWord {
		return Statement{}, &ParseStatementError{Found: lead, Msg: "expected a statement keyword"}
	}
	if _, ok := statementKeywords[strings.ToUpper(lead.Text)]; !ok {
		return Statement{}, &ParseStatementError{Found: lead, Msg: "expected a statement keyword"}
	}
	start := p.pos
	depth := 0
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		switch tok.Kind {
		case KindLParen:
			depth++
		case KindRParen:
			depth--
			if depth < 0 {
				return Statement{}, &ParseStatementError{Found: tok, Msg: "unbalanced closing parenthesis"}
			}
		case KindSemicolon:
			if depth == 0 {
				return Statement{tokens: p.tokens[start:p.pos]}, nil
			}
		}
		p.pos++
	}
	if depth != 0 {
		return Statement{}, &ParseStatementError{Found: Token{Kind: KindEOF}, Msg: "unbalanced opening parenthesis"}
	}
	return Statement{tokens: p.tokens[start:p.pos]}, nil
}
