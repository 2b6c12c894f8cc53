package scan

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lox-lang/lox/ast"
)

func scanSource(t *testing.T, source string) ([]ast.Token, bool, string) {
	t.Helper()
	stdErr := &bytes.Buffer{}
	tokens, hadError := NewScanner(source, stdErr).ScanTokens()
	return tokens, hadError, stdErr.String()
}

func tokenTypes(tokens []ast.Token) []ast.TokenType {
	types := make([]ast.TokenType, len(tokens))
	for i, tkn := range tokens {
		types[i] = tkn.TokenType
	}
	return types
}

func Test_ScanOperators(t *testing.T) {
	tests := []struct {
		name   string
		source string
		types  []ast.TokenType
	}{
		{"single chars", "( ) { } , ; ? .",
			[]ast.TokenType{ast.TokenLeftParen, ast.TokenRightParen, ast.TokenLeftBrace,
				ast.TokenRightBrace, ast.TokenComma, ast.TokenSemicolon, ast.TokenQuestionMark,
				ast.TokenDot, ast.TokenEof}},
		{"bang and equal", "! != = ==",
			[]ast.TokenType{ast.TokenBang, ast.TokenBangEqual, ast.TokenEqual,
				ast.TokenEqualEqual, ast.TokenEof}},
		{"less family", "< <= <<",
			[]ast.TokenType{ast.TokenLess, ast.TokenLessEqual, ast.TokenLeftShift, ast.TokenEof}},
		{"greater family", "> >= >>",
			[]ast.TokenType{ast.TokenGreater, ast.TokenGreaterEqual, ast.TokenRightShift, ast.TokenEof}},
		{"plus family", "+ += ++",
			[]ast.TokenType{ast.TokenPlus, ast.TokenPlusEqual, ast.TokenIncrement, ast.TokenEof}},
		{"minus family", "- -= --",
			[]ast.TokenType{ast.TokenMinus, ast.TokenMinusEqual, ast.TokenDecrement, ast.TokenEof}},
		{"star family", "* *=",
			[]ast.TokenType{ast.TokenStar, ast.TokenStarEqual, ast.TokenEof}},
		{"slash family", "/ /=",
			[]ast.TokenType{ast.TokenSlash, ast.TokenSlashEqual, ast.TokenEof}},
		{"colon family", ": :+",
			[]ast.TokenType{ast.TokenColon, ast.TokenConcat, ast.TokenEof}},
		{"range", ". .. ...",
			[]ast.TokenType{ast.TokenDot, ast.TokenRange, ast.TokenRange, ast.TokenDot, ast.TokenEof}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, hadError, _ := scanSource(t, tt.source)
			if hadError {
				t.Fatalf("unexpected scan error for %q", tt.source)
			}
			got := tokenTypes(tokens)
			if len(got) != len(tt.types) {
				t.Fatalf("got %d tokens, expected %d", len(got), len(tt.types))
			}
			for i := range got {
				if got[i] != tt.types[i] {
					t.Fatalf("token %d: got type %d, expected %d", i, got[i], tt.types[i])
				}
			}
		})
	}
}

func Test_ScanNumbers(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		literal float64
	}{
		{"integer", "123", 123},
		{"fraction", "3.25", 3.25},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, _, _ := scanSource(t, tt.source)
			if tokens[0].TokenType != ast.TokenNumber {
				t.Fatalf("got type %d, expected a number token", tokens[0].TokenType)
			}
			if tokens[0].Literal != tt.literal {
				t.Fatalf("got literal %v, expected %v", tokens[0].Literal, tt.literal)
			}
		})
	}

	t.Run("trailing dot is not part of the number", func(t *testing.T) {
		tokens, _, _ := scanSource(t, "1.")
		got := tokenTypes(tokens)
		want := []ast.TokenType{ast.TokenNumber, ast.TokenDot, ast.TokenEof}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("token %d: got type %d, expected %d", i, got[i], want[i])
			}
		}
	})

	t.Run("leading dot is not part of the number", func(t *testing.T) {
		tokens, _, _ := scanSource(t, ".5")
		got := tokenTypes(tokens)
		want := []ast.TokenType{ast.TokenDot, ast.TokenNumber, ast.TokenEof}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("token %d: got type %d, expected %d", i, got[i], want[i])
			}
		}
	})

	t.Run("range between numbers", func(t *testing.T) {
		tokens, _, _ := scanSource(t, "1..5")
		got := tokenTypes(tokens)
		want := []ast.TokenType{ast.TokenNumber, ast.TokenRange, ast.TokenNumber, ast.TokenEof}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("token %d: got type %d, expected %d", i, got[i], want[i])
			}
		}
	})
}

func Test_ScanStrings(t *testing.T) {
	t.Run("literal is the quoted text", func(t *testing.T) {
		tokens, hadError, _ := scanSource(t, `"hello world"`)
		if hadError {
			t.Fatal("unexpected scan error")
		}
		if tokens[0].Literal != "hello world" {
			t.Fatalf("got literal %q, expected %q", tokens[0].Literal, "hello world")
		}
	})

	t.Run("embedded newlines count lines", func(t *testing.T) {
		tokens, hadError, _ := scanSource(t, "\"hello\nworld\"")
		if hadError {
			t.Fatal("unexpected scan error")
		}
		if tokens[0].Literal != "hello\nworld" {
			t.Fatalf("got literal %q", tokens[0].Literal)
		}
		eof := tokens[len(tokens)-1]
		if eof.Line != 2 {
			t.Fatalf("got eof line %d, expected 2", eof.Line)
		}
	})

	t.Run("unterminated string", func(t *testing.T) {
		_, hadError, stdErr := scanSource(t, `"abc`)
		if !hadError {
			t.Fatal("expected a scan error")
		}
		if !strings.Contains(stdErr, "Unterminated string.") {
			t.Fatalf("got error output %q", stdErr)
		}
	})
}

func Test_ScanComments(t *testing.T) {
	t.Run("line comment", func(t *testing.T) {
		tokens, hadError, _ := scanSource(t, "// hello\n1;")
		if hadError {
			t.Fatal("unexpected scan error")
		}
		got := tokenTypes(tokens)
		want := []ast.TokenType{ast.TokenNumber, ast.TokenSemicolon, ast.TokenEof}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("token %d: got type %d, expected %d", i, got[i], want[i])
			}
		}
	})

	t.Run("nested block comment closes at depth zero", func(t *testing.T) {
		tokens, hadError, _ := scanSource(t, "/* a /* b */ c */ 1;")
		if hadError {
			t.Fatal("unexpected scan error")
		}
		got := tokenTypes(tokens)
		want := []ast.TokenType{ast.TokenNumber, ast.TokenSemicolon, ast.TokenEof}
		if len(got) != len(want) {
			t.Fatalf("got %d tokens, expected %d", len(got), len(want))
		}
	})

	t.Run("unnested comment leaves trailing tokens", func(t *testing.T) {
		tokens, hadError, _ := scanSource(t, "/* a */ c */")
		if hadError {
			t.Fatal("unexpected scan error")
		}
		got := tokenTypes(tokens)
		want := []ast.TokenType{ast.TokenIdentifier, ast.TokenStar, ast.TokenSlash, ast.TokenEof}
		if len(got) != len(want) {
			t.Fatalf("got %d tokens, expected %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("token %d: got type %d, expected %d", i, got[i], want[i])
			}
		}
	})

	t.Run("block comment tracks lines", func(t *testing.T) {
		tokens, _, _ := scanSource(t, "/* a\nb\nc */ 1;")
		if tokens[0].Line != 3 {
			t.Fatalf("got line %d, expected 3", tokens[0].Line)
		}
	})

	t.Run("unterminated block comment", func(t *testing.T) {
		_, hadError, stdErr := scanSource(t, "/* a /* b */")
		if !hadError {
			t.Fatal("expected a scan error")
		}
		if !strings.Contains(stdErr, "Unterminated block comment.") {
			t.Fatalf("got error output %q", stdErr)
		}
	})
}

func Test_ScanKeywords(t *testing.T) {
	tests := []struct {
		lexeme    string
		tokenType ast.TokenType
	}{
		{"and", ast.TokenAnd},
		{"break", ast.TokenBreak},
		{"loop", ast.TokenLoop},
		{"until", ast.TokenUntil},
		{"unless", ast.TokenUnless},
		{"var", ast.TokenVar},
		{"int", ast.TokenTypeInt},
		{"num", ast.TokenTypeNum},
		{"nil", ast.TokenNil},
		// almost-keywords stay identifiers
		{"breaker", ast.TokenIdentifier},
		{"vars", ast.TokenIdentifier},
		{"_loop", ast.TokenIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.lexeme, func(t *testing.T) {
			tokens, _, _ := scanSource(t, tt.lexeme)
			if tokens[0].TokenType != tt.tokenType {
				t.Fatalf("got type %d, expected %d", tokens[0].TokenType, tt.tokenType)
			}
			if tokens[0].Lexeme != tt.lexeme {
				t.Fatalf("got lexeme %q, expected %q", tokens[0].Lexeme, tt.lexeme)
			}
		})
	}
}

func Test_ScanUnexpectedCharacter(t *testing.T) {
	tokens, hadError, stdErr := scanSource(t, "@1;")
	if !hadError {
		t.Fatal("expected a scan error")
	}
	if !strings.Contains(stdErr, "Unexpected character.") {
		t.Fatalf("got error output %q", stdErr)
	}

	// the offending character is skipped, not fatal
	got := tokenTypes(tokens)
	want := []ast.TokenType{ast.TokenNumber, ast.TokenSemicolon, ast.TokenEof}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got type %d, expected %d", i, got[i], want[i])
		}
	}
}

func Test_ScanAlwaysEndsWithEof(t *testing.T) {
	for _, source := range []string{"", "   ", "1 + 2", `"unterminated`, "@"} {
		tokens, _, _ := scanSource(t, source)
		if len(tokens) == 0 || tokens[len(tokens)-1].TokenType != ast.TokenEof {
			t.Fatalf("scan of %q did not end with eof", source)
		}
	}
}
