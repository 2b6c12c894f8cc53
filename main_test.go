package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox-lang/lox/ast"
	"github.com/lox-lang/lox/parse"
	"github.com/lox-lang/lox/scan"
)

func newTestRunner(stdOut, stdErr io.Writer) *runner {
	return newRunner(stdOut, stdErr, log.New(io.Discard))
}

func Test_Run(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"print 1 + 2 * 3;", "7\n"},
		{"print \"hello\" :+ \", \" :+ \"world\";", "hello, world\n"},
		{"var a = 1; { var a = 2; print a; } print a;", "2\n1\n"},
		{"for (var i = 0; i < 5; i = i + 1) { if (i == 3) break; print i; }", "0\n1\n2\n"},
		{"var i = 10; loop { print i; i -= 3; } until (i < 0);", "10\n7\n4\n1\n"},
		{"unless (false) print \"reached\";", "reached\n"},
		{"print 1 == 2 ? \"eq\" : \"ne\";", "ne\n"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			var out, errOut strings.Builder
			hadError, hadRuntimeError, _ := newTestRunner(&out, &errOut).run(tt.source)
			if hadError || hadRuntimeError {
				t.Fatalf("unexpected error: %s", errOut.String())
			}
			if out.String() != tt.want {
				t.Fatalf("got %q, expected %q", out.String(), tt.want)
			}
		})
	}
}

// A lex or parse error must keep the interpreter from running at all, even
// for the statements that parsed cleanly.
func Test_RunSkipsInterpreterOnParseError(t *testing.T) {
	var out, errOut strings.Builder
	hadError, hadRuntimeError, _ := newTestRunner(&out, &errOut).run("print 1; 1 +")
	if !hadError {
		t.Fatal("expected a parse error")
	}
	if hadRuntimeError {
		t.Fatal("the interpreter must not have run")
	}
	if out.String() != "" {
		t.Fatalf("got output %q, expected none", out.String())
	}
	if !strings.Contains(errOut.String(), "Expect expression.") {
		t.Fatalf("got %q, expected the parse error report", errOut.String())
	}
}

func Test_RunSkipsInterpreterOnLexError(t *testing.T) {
	var out, errOut strings.Builder
	hadError, _, _ := newTestRunner(&out, &errOut).run("print 1; @")
	if !hadError {
		t.Fatal("expected a lex error")
	}
	if out.String() != "" {
		t.Fatalf("got output %q, expected none", out.String())
	}
}

func Test_RunRuntimeError(t *testing.T) {
	var out, errOut strings.Builder
	hadError, hadRuntimeError, _ := newTestRunner(&out, &errOut).run("print 1; print -\"a\";")
	if hadError {
		t.Fatalf("unexpected static error: %s", errOut.String())
	}
	if !hadRuntimeError {
		t.Fatal("expected a runtime error")
	}
	if out.String() != "1\n" {
		t.Fatalf("got %q, expected execution up to the failing statement", out.String())
	}
	if !strings.Contains(errOut.String(), "Operand must be a number.") {
		t.Fatalf("got %q, expected the runtime error report", errOut.String())
	}
}

func Test_RunResultForPrompt(t *testing.T) {
	var out, errOut strings.Builder
	r := newTestRunner(&out, &errOut)

	_, _, result := r.run("1 + 2;")
	if result != 3.0 {
		t.Fatalf("got %v, expected the expression value for echoing", result)
	}

	// state survives between prompt lines
	r.run("var a = 40;")
	_, _, result = r.run("a + 2;")
	if result != 42.0 {
		t.Fatalf("got %v, expected the earlier binding to be visible", result)
	}
}

// Printing an expression yields source text that parses back into a tree
// with the same evaluation semantics. The reparsed tree is not identical,
// since the outer parentheses come back as a grouping node, so the check
// compares what the two trees evaluate to.
func Test_PrintedExprRoundTrips(t *testing.T) {
	sources := []string{
		"1 + 2 * 3",
		"-(1 + 2) :+ \"x\"",
		"\"a\nb\" :+ \"c\\d\"",
		"nil or \"fallback\" and !false",
		"1 < 2 ? \"lo\" : 3 > 4 ? \"mid\" : \"hi\"",
		"10 - 4 - 3 / 3",
	}

	printer := ast.Printer{}
	for _, source := range sources {
		t.Run(source, func(t *testing.T) {
			printed := printer.Print(parseExprFromSource(t, source+";"))

			var original, reparsed strings.Builder
			var errOut strings.Builder
			if hadError, hadRuntimeError, _ := newTestRunner(&original, &errOut).run("print " + source + ";"); hadError || hadRuntimeError {
				t.Fatalf("unexpected error: %s", errOut.String())
			}
			if hadError, hadRuntimeError, _ := newTestRunner(&reparsed, &errOut).run("print " + printed + ";"); hadError || hadRuntimeError {
				t.Fatalf("printed form %q did not run: %s", printed, errOut.String())
			}

			if original.String() != reparsed.String() {
				t.Fatalf("got %q from %q, expected %q", reparsed.String(), printed, original.String())
			}
		})
	}
}

func parseExprFromSource(t *testing.T, source string) ast.Expr {
	t.Helper()
	var errOut strings.Builder
	tokens, hadLexError := scan.NewScanner(source, &errOut).ScanTokens()
	if hadLexError {
		t.Fatalf("unexpected lex error: %s", errOut.String())
	}
	statements, hadParseError := parse.NewParser(tokens, &errOut).Parse()
	if hadParseError {
		t.Fatalf("unexpected parse error: %s", errOut.String())
	}
	if len(statements) != 1 {
		t.Fatalf("got %d statements, expected 1", len(statements))
	}
	return statements[0].(ast.ExpressionStmt).Expr
}

func Test_LoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != defaultConfig() {
		t.Fatalf("got %+v, expected the defaults", cfg)
	}
}

func Test_LoadConfigExplicitMissingPath(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected an error for an explicitly named missing file")
	}
}

func Test_LoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lox.toml")
	contents := "prompt = \"lox> \"\ncolor = false\nlog_level = \"debug\"\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := config{Prompt: "lox> ", Color: false, LogLevel: "debug"}
	if cfg != want {
		t.Fatalf("got %+v, expected %+v", cfg, want)
	}
}

func Test_ErrWriterPassthroughWithoutColor(t *testing.T) {
	var out strings.Builder
	w := errWriter(&out, config{Color: false})
	if w != io.Writer(&out) {
		t.Fatal("expected the writer to be returned unstyled")
	}
}

func Test_StyledWriterReportsFullLength(t *testing.T) {
	var out strings.Builder
	w := errWriter(&out, config{Color: true})

	msg := "[line 1] Error: bad\n"
	n, err := w.Write([]byte(msg))
	if err != nil {
		t.Fatal(err)
	}
	if n != len(msg) {
		t.Fatalf("got %d, expected %d", n, len(msg))
	}
	if !strings.Contains(out.String(), "bad") {
		t.Fatalf("got %q, expected the message text", out.String())
	}
}
