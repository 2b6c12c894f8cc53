package scan

import (
	"fmt"
	"io"
	"strconv"

	"github.com/lox-lang/lox/ast"
)

// Scanner converts a source text into a slice of ast.Token-s
type Scanner struct {
	start    int
	current  int
	line     int
	source   string
	tokens   []ast.Token
	hadError bool
	stdErr   io.Writer
}

// NewScanner returns a new Scanner that reports lexical errors to stdErr
func NewScanner(source string, stdErr io.Writer) *Scanner {
	return &Scanner{source: source, line: 1, stdErr: stdErr}
}

// ScanTokens returns the tokens representing the source text and whether
// any lexical error occurred. Errors never abort the scan: the offending
// characters are reported and skipped.
func (s *Scanner) ScanTokens() ([]ast.Token, bool) {
	for !s.isAtEnd() {
		// we're at the beginning of the next lexeme
		s.start = s.current
		s.scanToken()
	}

	s.tokens = append(s.tokens, ast.Token{TokenType: ast.TokenEof, Line: s.line})
	return s.tokens, s.hadError
}

func (s *Scanner) scanToken() {
	char := s.advance()
	switch char {
	case '(':
		s.addToken(ast.TokenLeftParen)
	case ')':
		s.addToken(ast.TokenRightParen)
	case '{':
		s.addToken(ast.TokenLeftBrace)
	case '}':
		s.addToken(ast.TokenRightBrace)
	case ',':
		s.addToken(ast.TokenComma)
	case ';':
		s.addToken(ast.TokenSemicolon)
	case '?':
		s.addToken(ast.TokenQuestionMark)

	// with one-character look-ahead
	case '!':
		if s.match('=') {
			s.addToken(ast.TokenBangEqual)
		} else {
			s.addToken(ast.TokenBang)
		}
	case '=':
		if s.match('=') {
			s.addToken(ast.TokenEqualEqual)
		} else {
			s.addToken(ast.TokenEqual)
		}
	case '<':
		if s.match('=') {
			s.addToken(ast.TokenLessEqual)
		} else if s.match('<') {
			s.addToken(ast.TokenLeftShift)
		} else {
			s.addToken(ast.TokenLess)
		}
	case '>':
		if s.match('=') {
			s.addToken(ast.TokenGreaterEqual)
		} else if s.match('>') {
			s.addToken(ast.TokenRightShift)
		} else {
			s.addToken(ast.TokenGreater)
		}
	case '+':
		if s.match('=') {
			s.addToken(ast.TokenPlusEqual)
		} else if s.match('+') {
			s.addToken(ast.TokenIncrement)
		} else {
			s.addToken(ast.TokenPlus)
		}
	case '-':
		if s.match('=') {
			s.addToken(ast.TokenMinusEqual)
		} else if s.match('-') {
			s.addToken(ast.TokenDecrement)
		} else {
			s.addToken(ast.TokenMinus)
		}
	case '*':
		if s.match('=') {
			s.addToken(ast.TokenStarEqual)
		} else {
			s.addToken(ast.TokenStar)
		}
	case '.':
		if s.match('.') {
			s.addToken(ast.TokenRange)
		} else {
			s.addToken(ast.TokenDot)
		}
	case ':':
		if s.match('+') {
			s.addToken(ast.TokenConcat)
		} else {
			s.addToken(ast.TokenColon)
		}
	case '/':
		if s.match('/') {
			// a line comment runs to the end of the line
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else if s.match('*') {
			s.blockComment()
		} else if s.match('=') {
			s.addToken(ast.TokenSlashEqual)
		} else {
			s.addToken(ast.TokenSlash)
		}

	// whitespace
	case ' ', '\r', '\t':
	case '\n':
		s.line++

	case '"':
		s.string()

	default:
		if s.isDigit(char) {
			s.number()
		} else if s.isAlpha(char) {
			s.identifier()
		} else {
			s.error("Unexpected character.")
		}
	}
}

// blockComment consumes a /* ... */ comment. Block comments nest: the
// comment only ends when the nesting depth returns to zero.
func (s *Scanner) blockComment() {
	depth := 1
	for depth > 0 {
		if s.isAtEnd() {
			s.error("Unterminated block comment.")
			return
		}
		if s.peek() == '\n' {
			s.line++
		}
		if s.peek() == '/' && s.peekNext() == '*' {
			s.advance()
			s.advance()
			depth++
			continue
		}
		if s.peek() == '*' && s.peekNext() == '/' {
			s.advance()
			s.advance()
			depth--
			continue
		}
		s.advance()
	}
}

func (s *Scanner) string() {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}

	if s.isAtEnd() {
		s.error("Unterminated string.")
		return
	}

	s.advance() // the closing "

	// trim the surrounding quotes
	value := s.source[s.start+1 : s.current-1]
	s.addTokenWithLiteral(ast.TokenString, value)
}

func (s *Scanner) number() {
	for s.isDigit(s.peek()) {
		s.advance()
	}

	// look for a fractional part; the '.' is only
	// consumed when a digit follows it
	if s.peek() == '.' && s.isDigit(s.peekNext()) {
		s.advance()
		for s.isDigit(s.peek()) {
			s.advance()
		}
	}

	val, _ := strconv.ParseFloat(s.source[s.start:s.current], 64)
	s.addTokenWithLiteral(ast.TokenNumber, val)
}

var keywords = map[string]ast.TokenType{
	"and":    ast.TokenAnd,
	"class":  ast.TokenClass,
	"else":   ast.TokenElse,
	"false":  ast.TokenFalse,
	"for":    ast.TokenFor,
	"fun":    ast.TokenFun,
	"if":     ast.TokenIf,
	"nil":    ast.TokenNil,
	"or":     ast.TokenOr,
	"print":  ast.TokenPrint,
	"return": ast.TokenReturn,
	"super":  ast.TokenSuper,
	"this":   ast.TokenThis,
	"true":   ast.TokenTrue,
	"var":    ast.TokenVar,
	"while":  ast.TokenWhile,
	"break":  ast.TokenBreak,
	"loop":   ast.TokenLoop,
	"until":  ast.TokenUntil,
	"unless": ast.TokenUnless,
	"int":    ast.TokenTypeInt,
	"float":  ast.TokenTypeFloat,
	"bool":   ast.TokenTypeBool,
	"str":    ast.TokenTypeStr,
	"char":   ast.TokenTypeChar,
	"num":    ast.TokenTypeNum,
}

func (s *Scanner) identifier() {
	for s.isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[s.start:s.current]
	tokenType, found := keywords[text]
	if !found {
		tokenType = ast.TokenIdentifier
	}
	s.addToken(tokenType)
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func (s *Scanner) advance() rune {
	curr := rune(s.source[s.current])
	s.current++
	return curr
}

func (s *Scanner) match(expected rune) bool {
	if s.isAtEnd() {
		return false
	}
	if rune(s.source[s.current]) != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() rune {
	if s.isAtEnd() {
		return '\000'
	}
	return rune(s.source[s.current])
}

func (s *Scanner) peekNext() rune {
	if s.current+1 >= len(s.source) {
		return '\000'
	}
	return rune(s.source[s.current+1])
}

func (s *Scanner) isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (s *Scanner) isAlpha(char rune) bool {
	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char == '_')
}

func (s *Scanner) isAlphaNumeric(char rune) bool {
	return s.isAlpha(char) || s.isDigit(char)
}

func (s *Scanner) addToken(tokenType ast.TokenType) {
	s.addTokenWithLiteral(tokenType, nil)
}

func (s *Scanner) addTokenWithLiteral(tokenType ast.TokenType, literal interface{}) {
	text := s.source[s.start:s.current]
	s.tokens = append(s.tokens, ast.Token{TokenType: tokenType, Lexeme: text, Literal: literal, Line: s.line})
}

func (s *Scanner) error(message string) {
	s.hadError = true
	_, _ = fmt.Fprintf(s.stdErr, "[line %d] Error: %s\n", s.line, message)
}
