package ast

import "fmt"

type TokenType uint8

const (
	// single-character tokens
	TokenLeftParen TokenType = iota
	TokenRightParen
	TokenLeftBrace
	TokenRightBrace
	TokenComma
	TokenDot
	TokenMinus
	TokenPlus
	TokenSemicolon
	TokenSlash
	TokenStar
	TokenBang
	TokenEqual
	TokenLess
	TokenGreater
	TokenColon
	TokenQuestionMark

	// one or two character tokens
	TokenBangEqual
	TokenEqualEqual
	TokenGreaterEqual
	TokenLessEqual
	TokenLeftShift
	TokenRightShift
	TokenRange
	TokenFloor // never produced: "//" always opens a line comment
	TokenIncrement
	TokenDecrement
	TokenConcat
	TokenPlusEqual
	TokenMinusEqual
	TokenStarEqual
	TokenSlashEqual

	// literals
	TokenIdentifier
	TokenString
	TokenNumber

	// keywords
	TokenAnd
	TokenClass
	TokenElse
	TokenFalse
	TokenFun
	TokenFor
	TokenIf
	TokenNil
	TokenOr
	TokenPrint
	TokenReturn
	TokenSuper
	TokenThis
	TokenTrue
	TokenVar
	TokenWhile
	TokenBreak
	TokenLoop
	TokenUntil
	TokenUnless

	// type annotation keywords, treated as declarative no-ops
	TokenTypeInt
	TokenTypeFloat
	TokenTypeBool
	TokenTypeStr
	TokenTypeChar
	TokenTypeNum

	TokenEof
)

type Token struct {
	TokenType TokenType
	Lexeme    string
	Literal   interface{}
	Line      int
}

func (t Token) String() string {
	return fmt.Sprintf("%d %s %v", t.TokenType, t.Lexeme, t.Literal)
}
