//go:generate go run ./cmd/astgen
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lox-lang/lox/interpret"
	"github.com/lox-lang/lox/parse"
	"github.com/lox-lang/lox/scan"
)

// exit codes from sysexits.h, matching the reference interpreters
const (
	exitUsage   = 64
	exitDataErr = 65 // lex or parse error
	exitRuntime = 70 // runtime error
)

func main() {
	var (
		configPath string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "lox [script]",
		Short: "A tree-walking interpreter for the Lox scripting language",
		Long: "lox runs a Lox script file, or starts an interactive prompt " +
			"when no script is given.",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, verbose)

			if len(args) == 1 {
				runFile(args[0], logger)
				return nil
			}
			runPrompt(cfg, logger)
			return nil
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a lox.toml config file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log interpreter pipeline stages")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

func newLogger(cfg config, verbose bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	if verbose {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

func runFile(path string, logger *log.Logger) {
	file, err := os.ReadFile(path)
	if err != nil {
		logger.Error("could not read script", "path", path, "err", err)
		os.Exit(exitUsage)
	}

	r := newRunner(os.Stdout, os.Stderr, logger)
	hadError, hadRuntimeError, _ := r.run(string(file))
	if hadError {
		os.Exit(exitDataErr)
	}
	if hadRuntimeError {
		os.Exit(exitRuntime)
	}
}

// runPrompt runs the interactive prompt. One interpreter survives across
// lines, so definitions accumulate; the error flag resets per line.
func runPrompt(cfg config, logger *log.Logger) {
	stdErr := errWriter(os.Stderr, cfg)
	r := newRunner(os.Stdout, stdErr, logger)

	inputScanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(cfg.Prompt)
		if !inputScanner.Scan() {
			break
		}

		_, _, result := r.run(inputScanner.Text())
		if result != nil {
			fmt.Println(result)
		}
	}
}

// errWriter returns the diagnostics writer for the prompt,
// styled when color is enabled
func errWriter(out io.Writer, cfg config) io.Writer {
	if !cfg.Color {
		return out
	}
	return styledWriter{out: out, style: lipgloss.NewStyle().Foreground(lipgloss.Color("9"))}
}

type styledWriter struct {
	out   io.Writer
	style lipgloss.Style
}

func (w styledWriter) Write(p []byte) (int, error) {
	rendered := w.style.Render(strings.TrimRight(string(p), "\n"))
	_, err := io.WriteString(w.out, rendered+"\n")
	return len(p), err
}

type runner struct {
	interpreter *interpret.Interpreter
	stdErr      io.Writer
	logger      *log.Logger
}

func newRunner(stdOut io.Writer, stdErr io.Writer, logger *log.Logger) *runner {
	return &runner{
		interpreter: interpret.NewInterpreter(stdOut, stdErr),
		stdErr:      stdErr,
		logger:      logger,
	}
}

// run feeds the source through the scanner, parser and interpreter. The
// interpreter never runs when scanning or parsing reported an error.
func (r *runner) run(source string) (hadError, hadRuntimeError bool, result interface{}) {
	tokens, hadLexError := scan.NewScanner(source, r.stdErr).ScanTokens()
	r.logger.Debug("scanned source", "tokens", len(tokens))

	statements, hadParseError := parse.NewParser(tokens, r.stdErr).Parse()
	r.logger.Debug("parsed source", "statements", len(statements))

	if hadLexError || hadParseError {
		return true, false, nil
	}

	result, hadRuntimeError = r.interpreter.Interpret(statements)
	r.logger.Debug("interpreted source", "runtimeError", hadRuntimeError)
	return false, hadRuntimeError, result
}
