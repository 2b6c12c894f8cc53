package parse

import (
	"fmt"
	"io"

	"github.com/lox-lang/lox/ast"
)

type parseError struct {
	msg string
}

func (p parseError) Error() string {
	return p.msg
}

// Parser parses a flat list of tokens into
// an AST representation of the source program
type Parser struct {
	tokens   []ast.Token
	current  int
	loop     int
	hadError bool
	stdErr   io.Writer
}

// NewParser returns a new Parser that reads a list of tokens
func NewParser(tokens []ast.Token, stdErr io.Writer) *Parser {
	return &Parser{tokens: tokens, stdErr: stdErr}
}

/**
Parser grammar:

	program       => declaration* EOF
	declaration   => varDecl | statement
	varDecl       => ( "var" | typeKeyword ) IDENTIFIER ( "=" expression )? ";"
	statement     => exprStmt | printStmt | ifStmt | unlessStmt | whileStmt
	                 | forStmt | loopStmt | breakStmt | block
	exprStmt      => expression ";"
	printStmt     => "print" expression ";"
	ifStmt        => "if" "(" expression ")" statement ( "else" statement )?
	unlessStmt    => "unless" "(" expression ")" statement ( "else" statement )?
	whileStmt     => "while" "(" expression ")" statement
	forStmt       => "for" "(" ( varDecl | exprStmt | ";" ) expression? ";" expression? ")" statement
	loopStmt      => "loop" statement ( "until" "(" expression ")" ";" )?
	breakStmt     => "break" ";"
	block         => "{" declaration* "}"
	expression    => assignment
	assignment    => IDENTIFIER ( "=" | "+=" | "-=" | "*=" | "/=" ) assignment | ternary
	ternary       => logic_or ( "?" expression ":" ternary )?
	logic_or      => logic_and ( "or" logic_and )*
	logic_and     => equality ( "and" equality )*
	equality      => comparison ( ( "!=" | "==" ) comparison )*
	comparison    => concatenation ( ( ">" | ">=" | "<" | "<=" ) concatenation )*
	concatenation => term ( ":+" term )*
	term          => factor ( ( "-" | "+" ) factor )*
	factor        => unary ( ( "/" | "*" ) unary )*
	unary         => ( "!" | "-" ) unary | primary
	primary       => NUMBER | STRING | "true" | "false" | "nil"
	                 | "(" expression ")" | IDENTIFIER

"for", "loop"/"until" and "unless" are desugared here in the parser, so the
interpreter only ever sees While, Block and If nodes.
*/

// Parse reads the list of tokens and returns a list of statements
// representing the source program, plus whether any parse error occurred
func (p *Parser) Parse() ([]ast.Stmt, bool) {
	var statements []ast.Stmt
	for !p.isAtEnd() {
		stmt := p.declaration()
		if stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return statements, p.hadError
}

// declaration parses declaration statements. A declaration statement is a
// variable declaration or a regular statement. If the statement contains a
// parse error, it skips to the start of the next statement and returns nil.
func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if err := recover(); err != nil {
			// If the error is a parseError, synchronize to
			// the next statement. If not, propagate the panic.
			if _, ok := err.(parseError); ok {
				p.hadError = true
				p.synchronize()
				stmt = nil
			} else {
				panic(err)
			}
		}
	}()

	// A type annotation keyword opens a variable declaration
	// exactly like "var"; the annotation itself binds nothing.
	if p.match(ast.TokenVar, ast.TokenTypeInt, ast.TokenTypeFloat, ast.TokenTypeBool,
		ast.TokenTypeStr, ast.TokenTypeChar, ast.TokenTypeNum) {
		return p.varDeclaration()
	}
	return p.statement()
}

func (p *Parser) varDeclaration() ast.Stmt {
	name := p.consume(ast.TokenIdentifier, "Expect variable name.")
	var initializer ast.Expr
	if p.match(ast.TokenEqual) {
		initializer = p.expression()
	}
	p.consume(ast.TokenSemicolon, "Expect ';' after variable declaration.")
	return ast.VarStmt{Name: name, Initializer: initializer}
}

// statement parses statements. A statement can be a print, block, if,
// unless, while, for, loop or break statement, or an expression statement.
func (p *Parser) statement() ast.Stmt {
	if p.match(ast.TokenPrint) {
		return p.printStatement()
	}
	if p.match(ast.TokenLeftBrace) {
		return ast.BlockStmt{Statements: p.block()}
	}
	if p.match(ast.TokenIf) {
		return p.ifStatement()
	}
	if p.match(ast.TokenUnless) {
		return p.unlessStatement()
	}
	if p.match(ast.TokenWhile) {
		p.loop++
		defer func() { p.loop-- }()
		return p.whileStatement()
	}
	if p.match(ast.TokenFor) {
		p.loop++
		defer func() { p.loop-- }()
		return p.forStatement()
	}
	if p.match(ast.TokenLoop) {
		p.loop++
		defer func() { p.loop-- }()
		return p.loopStatement()
	}
	if p.match(ast.TokenBreak) {
		if p.loop == 0 {
			p.reportError(p.previous(), "Break outside loop.")
		}
		p.consume(ast.TokenSemicolon, "Expect ';' after break.")
		return ast.BreakStmt{}
	}
	return p.expressionStatement()
}

func (p *Parser) printStatement() ast.Stmt {
	expr := p.expression()
	p.consume(ast.TokenSemicolon, "Expect ';' after value.")
	return ast.PrintStmt{Expr: expr}
}

func (p *Parser) block() []ast.Stmt {
	var statements []ast.Stmt
	for !p.check(ast.TokenRightBrace) && !p.isAtEnd() {
		stmt := p.declaration()
		if stmt != nil {
			statements = append(statements, stmt)
		}
	}
	p.consume(ast.TokenRightBrace, "Expect '}' after block.")
	return statements
}

func (p *Parser) ifStatement() ast.Stmt {
	p.consume(ast.TokenLeftParen, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(ast.TokenRightParen, "Expect ')' after if condition.")

	thenBranch := p.statement()
	var elseBranch ast.Stmt
	if p.match(ast.TokenElse) {
		elseBranch = p.statement()
	}

	return ast.IfStmt{Condition: condition, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

// unlessStatement parses an unless statement as an if statement
// with the condition negated once at parse time.
func (p *Parser) unlessStatement() ast.Stmt {
	keyword := p.previous()
	p.consume(ast.TokenLeftParen, "Expect '(' after 'unless'.")
	condition := p.expression()
	p.consume(ast.TokenRightParen, "Expect ')' after unless condition.")

	thenBranch := p.statement()
	var elseBranch ast.Stmt
	if p.match(ast.TokenElse) {
		elseBranch = p.statement()
	}

	negated := ast.UnaryExpr{
		Operator: ast.Token{TokenType: ast.TokenBang, Lexeme: "!", Line: keyword.Line},
		Right:    condition,
	}
	return ast.IfStmt{Condition: negated, ThenBranch: thenBranch, ElseBranch: elseBranch}
}

func (p *Parser) whileStatement() ast.Stmt {
	p.consume(ast.TokenLeftParen, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(ast.TokenRightParen, "Expect ')' after while condition.")
	body := p.statement()
	return ast.WhileStmt{Condition: condition, Body: body}
}

// forStatement parses a for statement and desugars it
// into while and block statements.
func (p *Parser) forStatement() ast.Stmt {
	p.consume(ast.TokenLeftParen, "Expect '(' after 'for'.")

	var initializer ast.Stmt
	if p.match(ast.TokenSemicolon) {
		initializer = nil
	} else if p.match(ast.TokenVar, ast.TokenTypeInt, ast.TokenTypeFloat, ast.TokenTypeBool,
		ast.TokenTypeStr, ast.TokenTypeChar, ast.TokenTypeNum) {
		initializer = p.varDeclaration()
	} else {
		initializer = p.expressionStatement()
	}

	var condition ast.Expr
	if !p.check(ast.TokenSemicolon) {
		condition = p.expression()
	}
	p.consume(ast.TokenSemicolon, "Expect ';' after loop condition.")

	var increment ast.Expr
	if !p.check(ast.TokenRightParen) {
		increment = p.expression()
	}
	p.consume(ast.TokenRightParen, "Expect ')' after for clauses.")
	body := p.statement()

	if increment != nil {
		body = ast.BlockStmt{Statements: []ast.Stmt{body, ast.ExpressionStmt{Expr: increment}}}
	}

	if condition == nil {
		condition = ast.LiteralExpr{Value: true}
	}
	body = ast.WhileStmt{Condition: condition, Body: body}

	if initializer != nil {
		body = ast.BlockStmt{Statements: []ast.Stmt{initializer, body}}
	}

	return body
}

// loopStatement parses a loop statement and desugars it into a block that
// runs the body once followed by a while statement guarding the repetitions.
// The until condition, if any, is negated once here at parse time, and the
// same body node is reused as the while body.
func (p *Parser) loopStatement() ast.Stmt {
	body := p.statement()

	var condition ast.Expr
	if p.match(ast.TokenUntil) {
		keyword := p.previous()
		p.consume(ast.TokenLeftParen, "Expect '(' after 'until'.")
		expr := p.expression()
		p.consume(ast.TokenRightParen, "Expect ')' after until condition.")
		p.consume(ast.TokenSemicolon, "Expect ';' after until clause.")
		condition = ast.UnaryExpr{
			Operator: ast.Token{TokenType: ast.TokenBang, Lexeme: "!", Line: keyword.Line},
			Right:    expr,
		}
	} else {
		condition = ast.LiteralExpr{Value: true}
	}

	return ast.BlockStmt{Statements: []ast.Stmt{
		body,
		ast.WhileStmt{Condition: condition, Body: body},
	}}
}

// expressionStatement parses expression statements
func (p *Parser) expressionStatement() ast.Stmt {
	expr := p.expression()
	p.consume(ast.TokenSemicolon, "Expect ';' after value.")
	return ast.ExpressionStmt{Expr: expr}
}

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

// assignment parses plain and compound assignments. The assignment target
// must have parsed as a bare variable reference: anything else is reported,
// and the left-hand expression is returned as-is.
func (p *Parser) assignment() ast.Expr {
	expr := p.ternary()

	if p.match(ast.TokenEqual, ast.TokenPlusEqual, ast.TokenMinusEqual,
		ast.TokenStarEqual, ast.TokenSlashEqual) {
		operator := p.previous()
		value := p.assignment()

		if varExpr, ok := expr.(ast.VariableExpr); ok {
			return ast.AssignExpr{Name: varExpr.Name, Operator: operator, Value: value}
		}
		p.reportError(operator, "Invalid assignment target.")
	}

	return expr
}

// ternary parses ternary conditionals. The true branch re-enters the full
// expression rule so it can contain an assignment; the false branch recurses
// into ternary, making the operator right-associative.
func (p *Parser) ternary() ast.Expr {
	expr := p.or()

	if p.match(ast.TokenQuestionMark) {
		left := p.expression()
		p.consume(ast.TokenColon, "Expect ':' after then branch of ternary expression.")
		right := p.ternary()
		expr = ast.TernaryExpr{Cond: expr, Left: left, Right: right}
	}

	return expr
}

func (p *Parser) or() ast.Expr {
	expr := p.and()

	for p.match(ast.TokenOr) {
		operator := p.previous()
		right := p.and()
		expr = ast.LogicalExpr{Left: expr, Operator: operator, Right: right}
	}
	return expr
}

func (p *Parser) and() ast.Expr {
	expr := p.equality()

	for p.match(ast.TokenAnd) {
		operator := p.previous()
		right := p.equality()
		expr = ast.LogicalExpr{Left: expr, Operator: operator, Right: right}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	expr := p.comparison()

	for p.match(ast.TokenBangEqual, ast.TokenEqualEqual) {
		operator := p.previous()
		right := p.comparison()
		expr = ast.BinaryExpr{Left: expr, Operator: operator, Right: right}
	}

	return expr
}

func (p *Parser) comparison() ast.Expr {
	expr := p.concatenation()

	for p.match(ast.TokenGreater, ast.TokenGreaterEqual, ast.TokenLess, ast.TokenLessEqual) {
		operator := p.previous()
		right := p.concatenation()
		expr = ast.BinaryExpr{Left: expr, Operator: operator, Right: right}
	}

	return expr
}

func (p *Parser) concatenation() ast.Expr {
	expr := p.term()

	for p.match(ast.TokenConcat) {
		operator := p.previous()
		right := p.term()
		expr = ast.BinaryExpr{Left: expr, Operator: operator, Right: right}
	}

	return expr
}

func (p *Parser) term() ast.Expr {
	expr := p.factor()

	for p.match(ast.TokenMinus, ast.TokenPlus) {
		operator := p.previous()
		right := p.factor()
		expr = ast.BinaryExpr{Left: expr, Operator: operator, Right: right}
	}

	return expr
}

func (p *Parser) factor() ast.Expr {
	expr := p.unary()

	for p.match(ast.TokenSlash, ast.TokenStar) {
		operator := p.previous()
		right := p.unary()
		expr = ast.BinaryExpr{Left: expr, Operator: operator, Right: right}
	}

	return expr
}

func (p *Parser) unary() ast.Expr {
	if p.match(ast.TokenBang, ast.TokenMinus) {
		operator := p.previous()
		right := p.unary()
		return ast.UnaryExpr{Operator: operator, Right: right}
	}

	return p.primary()
}

func (p *Parser) primary() ast.Expr {
	switch {
	case p.match(ast.TokenFalse):
		return ast.LiteralExpr{Value: false}
	case p.match(ast.TokenTrue):
		return ast.LiteralExpr{Value: true}
	case p.match(ast.TokenNil):
		return ast.LiteralExpr{}
	case p.match(ast.TokenNumber, ast.TokenString):
		return ast.LiteralExpr{Value: p.previous().Literal}
	case p.match(ast.TokenLeftParen):
		expr := p.expression()
		p.consume(ast.TokenRightParen, "Expect ')' after expression.")
		return ast.GroupingExpr{Expression: expr}
	case p.match(ast.TokenIdentifier):
		return ast.VariableExpr{Name: p.previous()}
	}

	return p.errorProduction()
}

// errorProduction handles a binary operator appearing where an operand was
// expected. The missing operand is reported once, the right-hand side of the
// operator is parsed at the same precedence level and discarded to keep the
// token stream aligned, and the parser unwinds to the statement boundary.
func (p *Parser) errorProduction() ast.Expr {
	switch {
	case p.match(ast.TokenBangEqual, ast.TokenEqualEqual):
		p.reportError(p.previous(), "Missing left-hand operand.")
		p.equality()
	case p.match(ast.TokenGreater, ast.TokenGreaterEqual, ast.TokenLess, ast.TokenLessEqual):
		p.reportError(p.previous(), "Missing left-hand operand.")
		p.comparison()
	case p.match(ast.TokenConcat):
		p.reportError(p.previous(), "Missing left-hand operand.")
		p.concatenation()
	case p.match(ast.TokenPlus):
		p.reportError(p.previous(), "Missing left-hand operand.")
		p.term()
	case p.match(ast.TokenSlash, ast.TokenStar):
		p.reportError(p.previous(), "Missing left-hand operand.")
		p.factor()
	default:
		p.error(p.peek(), "Expect expression.")
	}

	// already reported; unwind without a second report
	panic(parseError{})
}

// consume checks that the next token is of the given type and then advances
// to the next token. If the check fails, it panics with the given message.
func (p *Parser) consume(tokenType ast.TokenType, message string) ast.Token {
	if p.check(tokenType) {
		return p.advance()
	}
	p.error(p.peek(), message)
	return ast.Token{}
}

// error reports a parse error at the given token and
// unwinds to the enclosing declaration
func (p *Parser) error(token ast.Token, message string) {
	err := tokenError(token, message)
	_, _ = p.stdErr.Write([]byte(err.msg))
	panic(err)
}

// reportError reports a parse error without unwinding; parsing continues
func (p *Parser) reportError(token ast.Token, message string) {
	p.hadError = true
	_, _ = p.stdErr.Write([]byte(tokenError(token, message).msg))
}

// synchronize discards tokens until a likely statement boundary: just past a
// semicolon, or just before a keyword that begins a new statement. This
// bounds an error cascade to roughly one statement.
func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().TokenType == ast.TokenSemicolon {
			return
		}

		switch p.peek().TokenType {
		case ast.TokenClass, ast.TokenFun, ast.TokenVar, ast.TokenFor,
			ast.TokenIf, ast.TokenWhile, ast.TokenPrint, ast.TokenReturn:
			return
		}

		p.advance()
	}
}

func (p *Parser) match(types ...ast.TokenType) bool {
	for _, tokenType := range types {
		if p.check(tokenType) {
			p.advance()
			return true
		}
	}

	return false
}

func (p *Parser) check(tokenType ast.TokenType) bool {
	if p.isAtEnd() {
		return false
	}

	return p.peek().TokenType == tokenType
}

func (p *Parser) advance() ast.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().TokenType == ast.TokenEof
}

func (p *Parser) peek() ast.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() ast.Token {
	return p.tokens[p.current-1]
}

func tokenError(token ast.Token, message string) parseError {
	var where string
	if token.TokenType == ast.TokenEof {
		where = " at end"
	} else {
		where = " at '" + token.Lexeme + "'"
	}

	return parseError{msg: fmt.Sprintf("[line %d] Error%s: %s\n", token.Line, where, message)}
}
