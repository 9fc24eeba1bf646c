package template

import (
	"strconv"
	"strings"
)

// The annotation grammar, over a single-line-comment payload:
//
//	"?" ws* ident ws* ":" ws* type ws* ["=" ws* default]? ws* ["//" ws* help]?
//
// where type is str | num | raw | "[" ws* (str|num|raw) ws* "]".
// Whitespace around punctuation is insignificant except newlines,
// which terminate the declaration.

type scanner struct {
	src string
	pos int
}

func (s *scanner) rest() string { return s.src[s.pos:] }

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

// skipSpace consumes spaces and tabs, never newlines.
func (s *scanner) skipSpace() {
	for s.pos < len(s.src) && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func (s *scanner) consume(prefix string) bool {
	if strings.HasPrefix(s.rest(), prefix) {
		s.pos += len(prefix)
		return true
	}
	return false
}

// ident consumes a name: a letter or underscore followed by any run
// of alphanumerics and underscores.
func (s *scanner) ident() (string, bool) {
	start := s.pos
	if s.eof() {
		return "", false
	}
	ch := s.src[s.pos]
	if ch != '_' && !isAlpha(ch) {
		return "", false
	}
	s.pos++
	for s.pos < len(s.src) {
		ch := s.src[s.pos]
		if ch != '_' && !isAlpha(ch) && !(ch >= '0' && ch <= '9') {
			break
		}
		s.pos++
	}
	return s.src[start:s.pos], true
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// ParseAnnotation parses one parameter declaration from a comment
// payload beginning with "?". The payload may carry a trailing
// newline from the tokenizer.
func ParseAnnotation(comment string) (Param, error) {
	fail := func(msg string) (Param, error) {
		return Param{}, &ParamParseError{Comment: comment, Msg: msg}
	}
	s := &scanner{src: comment}
	if !s.consume("?") {
		return fail("expected leading '?'")
	}
	s.skipSpace()
	name, ok := s.ident()
	if !ok {
		return fail("expected parameter name")
	}
	s.skipSpace()
	if !s.consume(":") {
		return fail("expected ':' after parameter name")
	}
	s.skipSpace()
	ty, err := parseType(s)
	if err != nil {
		return Param{}, err
	}

	param := Param{Name: name, Type: ty}

	// Optional default: only committed when '=' follows.
	mark := s.pos
	s.skipSpace()
	if s.consume("=") {
		s.skipSpace()
		def, err := scanValue(s, ty)
		if err != nil {
			return Param{}, err
		}
		param.Default = def
	} else {
		s.pos = mark
	}

	// Optional help text: the remainder of the line after "//".
	mark = s.pos
	s.skipSpace()
	if s.consume("//") {
		s.skipSpace()
		help := s.rest()
		if i := strings.IndexAny(help, "\r\n"); i >= 0 {
			help = help[:i]
		}
		param.Help = help
	} else {
		s.pos = mark
	}
	return param, nil
}

func parseType(s *scanner) (ParamType, error) {
	if s.consume("[") {
		s.skipSpace()
		inner, err := parseInnerType(s)
		if err != nil {
			return ParamType{}, err
		}
		s.skipSpace()
		if !s.consume("]") {
			return ParamType{}, &ParamParseError{Comment: s.src, Msg: "expected ']' closing array type"}
		}
		return ParamType{Inner: inner, IsArray: true}, nil
	}
	inner, err := parseInnerType(s)
	if err != nil {
		return ParamType{}, err
	}
	return ParamType{Inner: inner}, nil
}

func parseInnerType(s *scanner) (InnerType, error) {
	switch {
	case s.consume("str"):
		return InnerString, nil
	case s.consume("num"):
		return InnerNumber, nil
	case s.consume("raw"):
		return InnerRaw, nil
	default:
		return 0, &ParamParseError{Comment: s.src, Msg: "expected type str, num, raw or an array of one of them"}
	}
}

// scanValue parses a default value in its textual encoding for the
// given type: quoted string, float literal, #...# fragment, or a
// bracketed comma-list of the scalar form.
func scanValue(s *scanner, ty ParamType) (ParamValue, error) {
	if ty.IsArray {
		return scanArray(s, ty.Inner)
	}
	return scanInner(s, ty.Inner)
}

func scanInner(s *scanner, inner InnerType) (ParamValue, error) {
	switch inner {
	case InnerString:
		return scanQuoted(s)
	case InnerNumber:
		return scanNumber(s)
	default:
		return scanRawFragment(s)
	}
}

// scanQuoted parses a single- or double-quoted string. The content
// must be non-empty and may not contain the quote character or a
// backslash; there is no escape syntax.
func scanQuoted(s *scanner) (ParamValue, error) {
	if s.eof() || (s.src[s.pos] != '\'' && s.src[s.pos] != '"') {
		return nil, &ParamParseError{Comment: s.src, Msg: "expected quoted string"}
	}
	quote := s.src[s.pos]
	s.pos++
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != quote && s.src[s.pos] != '\\' {
		s.pos++
	}
	if s.pos == start || s.eof() || s.src[s.pos] != quote {
		return nil, &ParamParseError{Comment: s.src, Msg: "unterminated or empty string value"}
	}
	val := s.src[start:s.pos]
	s.pos++
	return Str(val), nil
}

// scanNumber parses the longest prefix that forms a floating-point
// literal and leaves the remainder in place.
func scanNumber(s *scanner) (ParamValue, error) {
	text, width := floatPrefix(s.rest())
	if width == 0 {
		return nil, &ParamParseError{Comment: s.src, Msg: "expected numeric value"}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, &ParamParseError{Comment: s.src, Msg: "expected numeric value"}
	}
	s.pos += width
	return Num(f), nil
}

// floatPrefix returns the longest leading substring of str forming a
// float literal (optional sign, digits with optional fraction, or a
// leading-dot fraction, optional exponent) and its byte width.
func floatPrefix(str string) (string, int) {
	i := 0
	if i < len(str) && (str[i] == '+' || str[i] == '-') {
		i++
	}
	intDigits := 0
	for i < len(str) && str[i] >= '0' && str[i] <= '9' {
		i++
		intDigits++
	}
	fracDigits := 0
	if i < len(str) && str[i] == '.' {
		j := i + 1
		for j < len(str) && str[j] >= '0' && str[j] <= '9' {
			j++
			fracDigits++
		}
		if fracDigits > 0 || intDigits > 0 {
			i = j
		}
	}
	if intDigits == 0 && fracDigits == 0 {
		return "", 0
	}
	if i < len(str) && (str[i] == 'e' || str[i] == 'E') {
		j := i + 1
		if j < len(str) && (str[j] == '+' || str[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(str) && str[j] >= '0' && str[j] <= '9' {
			j++
			expDigits++
		}
		if expDigits > 0 {
			i = j
		}
	}
	return str[:i], i
}

// scanRawFragment parses a #...#-delimited SQL fragment. The content
// must be non-empty and may not contain '#' or a backslash.
func scanRawFragment(s *scanner) (ParamValue, error) {
	if !s.consume("#") {
		return nil, &ParamParseError{Comment: s.src, Msg: "expected '#' opening raw fragment"}
	}
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '#' && s.src[s.pos] != '\\' {
		s.pos++
	}
	if s.pos == start || s.eof() || s.src[s.pos] != '#' {
		return nil, &ParamParseError{Comment: s.src, Msg: "unterminated or empty raw fragment"}
	}
	val := s.src[start:s.pos]
	s.pos++
	return Raw(val), nil
}

// scanArray parses "[" ws* (item (ws* "," ws* item)*)? ws* "]" with
// each item in the scalar encoding of inner.
func scanArray(s *scanner, inner InnerType) (ParamValue, error) {
	if !s.consume("[") {
		return nil, &ParamParseError{Comment: s.src, Msg: "expected '[' opening array value"}
	}
	arr := Array{}
	s.skipSpace()
	if s.consume("]") {
		return arr, nil
	}
	for {
		item, err := scanInner(s, inner)
		if err != nil {
			return nil, err
		}
		arr = append(arr, item)
		s.skipSpace()
		if s.consume(",") {
			s.skipSpace()
			continue
		}
		if s.consume("]") {
			return arr, nil
		}
		return nil, &ParamParseError{Comment: s.src, Msg: "expected ',' or ']' in array value"}
	}
}
