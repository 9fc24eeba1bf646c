package sqltoken

import (
	"errors"
	"strings"
	"testing"
)

func TestTokenizeSelect(t *testing.T) {
	tokens, err := Tokenize(DialectMySQL, "SELECT name, age FROM people WHERE age >= 21")
	if err != nil {
		t.Fatal(err)
	}
	want := []Token{
		Word("SELECT"),
		{Kind: KindWhitespace, Text: " "},
		Word("name"),
		Comma,
		{Kind: KindWhitespace, Text: " "},
		Word("age"),
		{Kind: KindWhitespace, Text: " "},
		Word("FROM"),
		{Kind: KindWhitespace, Text: " "},
		Word("people"),
		{Kind: KindWhitespace, Text: " "},
		Word("WHERE"),
		{Kind: KindWhitespace, Text: " "},
		Word("age"),
		{Kind: KindWhitespace, Text: " "},
		{Kind: KindOperator, Text: ">="},
		{Kind: KindWhitespace, Text: " "},
		Number("21"),
	}
	assertTokens(t, want, tokens)
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{"1.", "1."},
		{".5", ".5"},
		{"1e10", "1e10"},
		{"2.5E-3", "2.5E-3"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(DialectMySQL, tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if len(tokens) != 1 || tokens[0].Kind != KindNumber || tokens[0].Text != tt.want {
				t.Errorf("Tokenize(%q) = %v, want single number %q", tt.input, tokens, tt.want)
			}
		})
	}
}

func TestTokenizeStringLiteral(t *testing.T) {
	tokens, err := Tokenize(DialectMySQL, "'it''s fine'")
	if err != nil {
		t.Fatal(err)
	}
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}
	if tokens[0].Kind != KindSingleQuotedString || tokens[0].Text != "it's fine" {
		t.Errorf("got %+v, want unescaped content", tokens[0])
	}
	if got := tokens[0].String(); got != "'it''s fine'" {
		t.Errorf("String() = %q, want re-quoted source form", got)
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := Tokenize(DialectMySQL, "SELECT 'oops")
	var tokErr *TokenizeError
	if !errors.As(err, &tokErr) {
		t.Fatalf("expected TokenizeError, got %v", err)
	}
	if tokErr.Line != 1 || tokErr.Col != 8 {
		t.Errorf("position = %d:%d, want 1:8", tokErr.Line, tokErr.Col)
	}
}

func TestTokenizeComments(t *testing.T) {
	src := "-- leading\nSELECT 1 /* inline */ # trailing"
	tokens, err := Tokenize(DialectMySQL, src)
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Kind != KindSingleLineComment || tokens[0].Prefix != "--" || tokens[0].Text != " leading\n" {
		t.Errorf("unexpected leading comment token %+v", tokens[0])
	}
	var block, hash *Token
	for i := range tokens {
		switch tokens[i].Kind {
		case KindMultiLineComment:
			block = &tokens[i]
		case KindSingleLineComment:
			if tokens[i].Prefix == "#" {
				hash = &tokens[i]
			}
		}
	}
	if block == nil || block.Text != " inline " {
		t.Errorf("missing or wrong block comment: %+v", block)
	}
	if hash == nil || hash.Text != " trailing" {
		t.Errorf("missing or wrong hash comment: %+v", hash)
	}
}

func TestTokenizeHashIsOperatorOutsideMySQL(t *testing.T) {
	tokens, err := Tokenize(DialectPostgres, "# nope")
	if err != nil {
		t.Fatal(err)
	}
	if tokens[0].Kind != KindOperator || tokens[0].Text != "#" {
		t.Errorf("expected operator token for '#' in postgres, got %+v", tokens[0])
	}
}

func TestTokenizeQuotedIdentifiers(t *testing.T) {
	tests := []struct {
		dialect Dialect
		input   string
		prefix  string
		text    string
	}{
		{DialectMySQL, "`order`", "`", "order"},
		{DialectSQLite, "[order]", "[", "order"},
		{DialectSQLServer, "[select]", "[", "select"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := Tokenize(tt.dialect, tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d", len(tokens))
			}
			tok := tokens[0]
			if tok.Kind != KindWord || tok.Prefix != tt.prefix || tok.Text != tt.text {
				t.Errorf("got %+v, want quoted word %q", tok, tt.text)
			}
			if tok.String() != tt.input {
				t.Errorf("String() = %q, want %q", tok.String(), tt.input)
			}
		})
	}
}

func TestTokenizeAtSign(t *testing.T) {
	tokens, err := Tokenize(DialectMySQL, "WHERE id = @id")
	if err != nil {
		t.Fatal(err)
	}
	var sawAt bool
	for i, tok := range tokens {
		if tok.Kind == KindAtSign {
			sawAt = true
			if i+1 >= len(tokens) || tokens[i+1] != Word("id") {
				t.Errorf("expected word right after @, got %+v", tokens[i+1])
			}
		}
	}
	if !sawAt {
		t.Error("no at-sign token produced")
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	sources := []string{
		"SELECT a, b FROM t WHERE a <> b AND c::int = 1;",
		"-- note\nINSERT INTO t (a) VALUES (1), (2)",
		"UPDATE t SET a = a << 2 WHERE b != 'x'",
		"SELECT 1 /* keep\nme */ , .5",
	}
	for _, src := range sources {
		tokens, err := Tokenize(DialectPostgres, src)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", src, err)
		}
		var b strings.Builder
		for _, tok := range tokens {
			b.WriteString(tok.String())
		}
		if b.String() != src {
			t.Errorf("round trip of %q produced %q", src, b.String())
		}
	}
}

func assertTokens(t *testing.T, want, got []Token) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("token count = %d, want %d\ngot: %v", len(got), len(want), got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
