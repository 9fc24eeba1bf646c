// Package sqltoken provides a dialect-aware SQL tokenizer and a
// syntactic statement parser over its token stream. It recognizes the
// token categories the templating engine needs (words, literals, the
// at-sign, comments with their raw text) and reproduces everything
// else byte-for-byte. It deliberately does not understand SQL
// semantics: table and column names, type compatibility and query
// planning are the backend's problem.
package sqltoken

// Dialect selects dialect-specific lexing rules: which quote
// characters delimit identifiers and which prefixes start a
// single-line comment.
type Dialect int

const (
	DialectMySQL Dialect = iota
	DialectSQLite
	DialectPostgres
	DialectSQLServer
)

func (d Dialect) String() string {
	switch d {
	case DialectMySQL:
		return "mysql"
	case DialectSQLite:
		return "sqlite"
	case DialectPostgres:
		return "postgres"
	case DialectSQLServer:
		return "sqlserver"
	default:
		return "unknown"
	}
}

// identQuote reports whether ch opens a quoted identifier in this
// dialect, and returns the matching closing character.
func (d Dialect) identQuote(ch byte) (byte, bool) {
	switch ch {
	case '`':
		if d == DialectMySQL || d == DialectSQLite {
			return '`', true
		}
	case '[':
		if d == DialectSQLServer || d == DialectSQLite {
			return ']', true
		}
	}
	return 0, false
}

// hashComments reports whether '#' starts a single-line comment.
// MySQL treats '#' as a comment prefix; the other dialects do not.
func (d Dialect) hashComments() bool {
	return d == DialectMySQL
}
