package template

import (
	"fmt"
	"strings"

	"github.com/PrivateRookie/psql/pkg/sqltoken"
)

// Build-time, render-time and binding-time errors are all defects in
// either the statement's authoring or the caller's input; none are
// retriable and the engine never recovers from them itself.

// InvalidVariableError reports malformed @ usage: an at-sign followed
// by anything other than an identifier, or a degenerate @@.
type InvalidVariableError struct {
	Found sqltoken.Token
}

func (e *InvalidVariableError) Error() string {
	return fmt.Sprintf("invalid variable, expect identifier, found %q", e.Found.String())
}

// ParamParseError reports a malformed parameter annotation. It is
// fatal to the owning Program's construction.
type ParamParseError struct {
	Comment string
	Msg     string
}

func (e *ParamParseError) Error() string {
	return fmt.Sprintf("malformed parameter annotation %q: %s", strings.TrimSpace(e.Comment), e.Msg)
}

// DuplicatedParamError reports the first parameter name declared more
// than once.
type DuplicatedParamError struct {
	Name string
}

func (e *DuplicatedParamError) Error() string {
	return fmt.Sprintf("duplicated param %q", e.Name)
}

// MissingParamsError reports @name references with no declaration.
type MissingParamsError struct {
	Names []string // sorted
}

func (e *MissingParamsError) Error() string {
	return fmt.Sprintf("missing params %v", e.Names)
}

// UnusedParamsError reports declared parameters never referenced.
// An unused declaration is an authoring error, not silently ignored.
type UnusedParamsError struct {
	Names []string // sorted
}

func (e *UnusedParamsError) Error() string {
	return fmt.Sprintf("unused params %v", e.Names)
}

// MissingContextValueError is the only render-time failure tied to
// parameter resolution: the context did not supply a declared name.
type MissingContextValueError struct {
	Name string
}

func (e *MissingContextValueError) Error() string {
	return fmt.Sprintf("missing context value for %q", e.Name)
}

// ExpectEndOfStatementError reports a statement following another
// without a delimiter between them.
type ExpectEndOfStatementError struct {
	Found sqltoken.Token
}

func (e *ExpectEndOfStatementError) Error() string {
	return fmt.Sprintf("expected end of statement, found %q", e.Found.String())
}

// ParseError wraps a failure to re-parse the substituted token
// stream. It indicates a type or encoding mismatch that produced
// invalid SQL.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// InvalidArgValueError reports a textual argument that does not parse
// as the declared inner type.
type InvalidArgValueError struct {
	Value string
	Type  InnerType
}

func (e *InvalidArgValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Type)
}

// RequiredParamError reports a parameter with no supplied value and
// no default.
type RequiredParamError struct {
	Name string
}

func (e *RequiredParamError) Error() string {
	return fmt.Sprintf("%s is required", e.Name)
}

// ExpectSingleValueError reports a scalar parameter bound to zero or
// several values.
type ExpectSingleValueError struct {
	Name  string
	Count int
}

func (e *ExpectSingleValueError) Error() string {
	return fmt.Sprintf("%s expect single value, got %d", e.Name, e.Count)
}
