package template

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PrivateRookie/psql/pkg/sqltoken"
)

// Program is the compiled, validated form of one annotated SQL
// source: its ordered token sequence plus the declared parameters.
// Construction guarantees that the set of names referenced as @name
// equals exactly the set of declared parameter names, so render-time
// lookups can only fail on an incomplete Context, never on an unknown
// name. A Program is immutable and safe to share across goroutines.
type Program struct {
	params []Param
	tokens []VariableToken
}

// Build tokenizes annotated SQL text, separates parameter-declaration
// comments from ordinary tokens, resolves @name references and
// cross-validates the result.
func Build(dialect sqltoken.Dialect, src string) (*Program, error) {
	tokens, err := sqltoken.Tokenize(dialect, src)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	var (
		processed  []VariableToken
		params     []Param
		expectWord bool
	)
	for _, tok := range tokens {
		switch tok.Kind {
		case sqltoken.KindAtSign:
			if expectWord {
				return nil, &InvalidVariableError{Found: tok}
			}
			expectWord = true
		case sqltoken.KindWord:
			if expectWord {
				processed = append(processed, VariableToken{Name: tok.Text})
				expectWord = false
			} else {
				processed = append(processed, VariableToken{Token: tok})
			}
		case sqltoken.KindSingleLineComment:
			if strings.HasPrefix(tok.Text, "?") {
				// Declarations are invisible in the rendered SQL.
				param, err := ParseAnnotation(tok.Text)
				if err != nil {
					return nil, err
				}
				params = append(params, param)
			} else {
				processed = append(processed, VariableToken{Token: tok})
			}
		case sqltoken.KindWhitespace, sqltoken.KindMultiLineComment:
			processed = append(processed, VariableToken{Token: tok})
		default:
			if expectWord {
				return nil, &InvalidVariableError{Found: tok}
			}
			processed = append(processed, VariableToken{Token: tok})
		}
	}

	return validate(params, processed)
}

// validate is the construction gate: no duplicate declarations, and
// declared/referenced name sets must be equal.
func validate(params []Param, tokens []VariableToken) (*Program, error) {
	declared := make(map[string]struct{}, len(params))
	for _, p := range params {
		if _, dup := declared[p.Name]; dup {
			return nil, &DuplicatedParamError{Name: p.Name}
		}
		declared[p.Name] = struct{}{}
	}

	referenced := make(map[string]struct{})
	for _, t := range tokens {
		if t.IsVar() {
			referenced[t.Name] = struct{}{}
		}
	}

	if missing := difference(referenced, declared); len(missing) > 0 {
		return nil, &MissingParamsError{Names: missing}
	}
	if unused := difference(declared, referenced); len(unused) > 0 {
		return nil, &UnusedParamsError{Names: unused}
	}
	return &Program{params: params, tokens: tokens}, nil
}

// difference returns a−b, sorted for deterministic errors.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for name := range a {
		if _, ok := b[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Params returns the declared parameters in declaration order, for
// surfacing as CLI flags or OpenAPI parameters.
func (p *Program) Params() []Param {
	out := make([]Param, len(p.params))
	copy(out, p.params)
	return out
}

// Render replaces each variable reference with the token encoding of
// its bound value and re-parses the result in statement-sequence
// mode. Defaults are not applied here: binding sources fill them into
// the Context before calling Render.
func (p *Program) Render(dialect sqltoken.Dialect, ctx Context) ([]sqltoken.Statement, error) {
	var transformed []sqltoken.Token
	for _, t := range p.tokens {
		if !t.IsVar() {
			transformed = append(transformed, t.Token)
			continue
		}
		val, ok := ctx[t.Name]
		if !ok {
			return nil, &MissingContextValueError{Name: t.Name}
		}
		encoded, err := val.encode(dialect)
		if err != nil {
			return nil, err
		}
		transformed = append(transformed, encoded...)
	}

	parser := sqltoken.NewParser(transformed)
	var stmts []sqltoken.Statement
	expectingDelimiter := false
	for {
		// ignore empty statements between successive delimiters
		for parser.ConsumeIf(sqltoken.KindSemicolon) {
			expectingDelimiter = false
		}
		if parser.PeekToken().Kind == sqltoken.KindEOF {
			break
		}
		if expectingDelimiter {
			return nil, &ExpectEndOfStatementError{Found: parser.PeekToken()}
		}
		stmt, err := parser.ParseStatement()
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		stmts = append(stmts, stmt)
		expectingDelimiter = true
	}
	return stmts, nil
}
