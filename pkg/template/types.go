// Package template implements the parameterized-SQL templating engine:
// typed parameter declarations extracted from annotation comments,
// cross-validation of declarations against @name references, and
// rendering of bound values back into a syntactically valid statement.
//
// A compiled Program is immutable and safe for concurrent use; Build
// and Render are pure functions over their inputs.
package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PrivateRookie/psql/pkg/sqltoken"
)

// InnerType defines how a textual default or argument is parsed and
// how a bound value is encoded back into SQL tokens.
type InnerType int

const (
	InnerString InnerType = iota
	InnerNumber
	InnerRaw
)

func (t InnerType) String() string {
	switch t {
	case InnerString:
		return "str"
	case InnerNumber:
		return "num"
	case InnerRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// ParamType is either a scalar of an inner type or an array of it.
// Arrays render as a parenthesized, comma-joined list, for use in
// IN (...) positions.
type ParamType struct {
	Inner   InnerType
	IsArray bool
}

func (t ParamType) String() string {
	if t.IsArray {
		return "[" + t.Inner.String() + "]"
	}
	return t.Inner.String()
}

// ParamValue is a bound parameter value. The four variants are Str,
// Num, Raw and Array. An Array's elements are homogeneous in the type
// implied by the declaring Param; this is enforced when values are
// parsed or bound, never re-checked at render time.
type ParamValue interface {
	fmt.Stringer
	encode(dialect sqltoken.Dialect) ([]sqltoken.Token, error)
}

// Str is a string value, encoded as a single string-literal token.
type Str string

// Num is a numeric value, encoded as a numeric literal in canonical
// decimal form.
type Num float64

// Raw is a SQL fragment spliced in verbatim after re-tokenization.
// It is the deliberate escape hatch for callers who need to inject
// SQL syntax and receives no injection protection: raw values must be
// trusted input.
type Raw string

// Array is a homogeneous list value.
type Array []ParamValue

func (v Str) String() string { return "'" + string(v) + "'" }
func (v Num) String() string { return formatNum(float64(v)) }
func (v Raw) String() string { return string(v) }

func (v Array) String() string {
	items := make([]string, len(v))
	for i, item := range v {
		items[i] = item.String()
	}
	return "(" + strings.Join(items, ", ") + ")"
}

func (v Str) encode(sqltoken.Dialect) ([]sqltoken.Token, error) {
	return []sqltoken.Token{sqltoken.StringLiteral(string(v))}, nil
}

func (v Num) encode(sqltoken.Dialect) ([]sqltoken.Token, error) {
	return []sqltoken.Token{sqltoken.Number(formatNum(float64(v)))}, nil
}

func (v Raw) encode(dialect sqltoken.Dialect) ([]sqltoken.Token, error) {
	tokens, err := sqltoken.Tokenize(dialect, string(v))
	if err != nil {
		return nil, fmt.Errorf("encode raw fragment: %w", err)
	}
	return tokens, nil
}

func (v Array) encode(dialect sqltoken.Dialect) ([]sqltoken.Token, error) {
	tokens := []sqltoken.Token{sqltoken.LParen}
	for i, item := range v {
		enc, err := item.encode(dialect)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, enc...)
		if i+1 != len(v) {
			tokens = append(tokens, sqltoken.Comma)
		}
	}
	return append(tokens, sqltoken.RParen), nil
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Param is one declared parameter of a Program, created at parse time
// from an annotation comment and immutable thereafter. A nil Default
// means the parameter is mandatory at bind time.
type Param struct {
	Name    string
	Type    ParamType
	Default ParamValue
	Help    string
}

// Required reports whether a caller must supply a value.
func (p Param) Required() bool { return p.Default == nil }

// VariableToken is the template's atomic unit: either a named
// placeholder or an opaque literal SQL token passed through unchanged.
type VariableToken struct {
	// Name is non-empty for a variable reference.
	Name string
	// Token is the literal token when Name is empty.
	Token sqltoken.Token
}

// IsVar reports whether the entry is a variable reference.
func (t VariableToken) IsVar() bool { return t.Name != "" }

// Context maps parameter names to bound values for one render call.
// Binding sources are expected to have applied defaults already.
type Context map[string]ParamValue
