package interpret

import (
	"fmt"
	"io"
	"strconv"

	"github.com/lox-lang/lox/ast"
)

type runtimeError struct {
	token ast.Token
	msg   string
}

func (r runtimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d]", r.msg, r.token.Line)
}

// uninitialized marks an environment slot declared without an initializer.
// It is distinguishable from nil, so a program can never read it as an
// ordinary value.
type uninitialized struct{}

// loopBreak unwinds statement execution to the nearest enclosing while loop
type loopBreak struct{}

// Interpreter holds the global and current execution
// environment for a program to be executed
type Interpreter struct {
	// current execution environment
	environment *Environment
	// global variables
	globals *Environment
	// standard output
	stdOut io.Writer
	// standard error
	stdErr io.Writer
}

// NewInterpreter sets up a new interpreter with its environment and config
func NewInterpreter(stdOut io.Writer, stdErr io.Writer) *Interpreter {
	globals := &Environment{}
	return &Interpreter{
		globals:     globals,
		environment: globals,
		stdOut:      stdOut,
		stdErr:      stdErr,
	}
}

// Interpret executes a list of statements within the interpreter's
// environment. A runtime error aborts the remaining statements: it is
// reported to the interpreter's standard error and flagged in the return
// value, but it is not fatal to the interpreter itself.
func (in *Interpreter) Interpret(stmts []ast.Stmt) (result interface{}, hadRuntimeError bool) {
	defer func() {
		if err := recover(); err != nil {
			if e, ok := err.(runtimeError); ok {
				_, _ = in.stdErr.Write([]byte(e.Error() + "\n"))
				hadRuntimeError = true
			} else {
				panic(err)
			}
		}
	}()

	for _, statement := range stmts {
		result = in.execute(statement)
	}

	return
}

func (in *Interpreter) execute(stmt ast.Stmt) interface{} {
	return stmt.Accept(in)
}

func (in *Interpreter) evaluate(expr ast.Expr) interface{} {
	return expr.Accept(in)
}

func (in *Interpreter) error(token ast.Token, message string) {
	panic(runtimeError{token: token, msg: message})
}

func (in *Interpreter) VisitBlockStmt(stmt ast.BlockStmt) interface{} {
	in.executeBlock(stmt.Statements, &Environment{Enclosing: in.environment})
	return nil
}

// executeBlock executes the statements with the given environment active,
// restoring the previous environment on every exit path
func (in *Interpreter) executeBlock(statements []ast.Stmt, env *Environment) {
	previous := in.environment
	defer func() {
		in.environment = previous
	}()

	in.environment = env
	for _, statement := range statements {
		in.execute(statement)
	}
}

// VisitVarStmt defines the variable in the current environment. A variable
// declared without an initializer is bound to the uninitialized marker and
// becomes readable only after its first assignment.
func (in *Interpreter) VisitVarStmt(stmt ast.VarStmt) interface{} {
	var val interface{} = uninitialized{}
	if stmt.Initializer != nil {
		val = in.evaluate(stmt.Initializer)
	}
	in.environment.Define(stmt.Name.Lexeme, val)
	return nil
}

func (in *Interpreter) VisitExpressionStmt(stmt ast.ExpressionStmt) interface{} {
	return in.evaluate(stmt.Expr)
}

// VisitPrintStmt evaluates the statement's expression and prints
// the result to the interpreter's standard output
func (in *Interpreter) VisitPrintStmt(stmt ast.PrintStmt) interface{} {
	value := in.evaluate(stmt.Expr)
	_, _ = in.stdOut.Write([]byte(in.stringify(value) + "\n"))
	return nil
}

func (in *Interpreter) VisitIfStmt(stmt ast.IfStmt) interface{} {
	if in.isTruthy(in.evaluate(stmt.Condition)) {
		in.execute(stmt.ThenBranch)
	} else if stmt.ElseBranch != nil {
		in.execute(stmt.ElseBranch)
	}
	return nil
}

// VisitWhileStmt loops over the body while the condition stays truthy. A
// break inside the body unwinds to here and is swallowed: it terminates
// this loop only, never an enclosing one.
func (in *Interpreter) VisitWhileStmt(stmt ast.WhileStmt) interface{} {
	defer func() {
		if err := recover(); err != nil {
			if _, ok := err.(loopBreak); !ok {
				panic(err)
			}
		}
	}()

	for in.isTruthy(in.evaluate(stmt.Condition)) {
		in.execute(stmt.Body)
	}
	return nil
}

func (in *Interpreter) VisitBreakStmt(_ ast.BreakStmt) interface{} {
	panic(loopBreak{})
}

func (in *Interpreter) VisitLiteralExpr(expr ast.LiteralExpr) interface{} {
	return expr.Value
}

func (in *Interpreter) VisitGroupingExpr(expr ast.GroupingExpr) interface{} {
	return in.evaluate(expr.Expression)
}

func (in *Interpreter) VisitUnaryExpr(expr ast.UnaryExpr) interface{} {
	right := in.evaluate(expr.Right)
	switch expr.Operator.TokenType {
	case ast.TokenBang:
		return !in.isTruthy(right)
	case ast.TokenMinus:
		in.checkNumberOperand(expr.Operator, right)
		return -right.(float64)
	}
	return nil
}

func (in *Interpreter) VisitBinaryExpr(expr ast.BinaryExpr) interface{} {
	left := in.evaluate(expr.Left)
	right := in.evaluate(expr.Right)

	switch expr.Operator.TokenType {
	case ast.TokenPlus:
		if l, ok := left.(float64); ok {
			if r, ok := right.(float64); ok {
				return l + r
			}
		}
		if l, ok := left.(string); ok {
			if r, ok := right.(string); ok {
				return l + r
			}
		}
		in.error(expr.Operator, "Operands must be two numbers or two strings.")
	case ast.TokenMinus:
		in.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) - right.(float64)
	case ast.TokenSlash:
		in.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) / right.(float64)
	case ast.TokenStar:
		in.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) * right.(float64)
	// the concatenation operator stringifies both operands,
	// so it accepts any two values
	case ast.TokenConcat:
		return in.stringify(left) + in.stringify(right)
	// comparison
	case ast.TokenGreater:
		in.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) > right.(float64)
	case ast.TokenGreaterEqual:
		in.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) >= right.(float64)
	case ast.TokenLess:
		in.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) < right.(float64)
	case ast.TokenLessEqual:
		in.checkNumberOperands(expr.Operator, left, right)
		return left.(float64) <= right.(float64)
	// equality
	case ast.TokenEqualEqual:
		return in.isEqual(left, right)
	case ast.TokenBangEqual:
		return !in.isEqual(left, right)
	}
	return nil
}

// VisitLogicalExpr evaluates a short-circuit logical expression. The result
// is the raw value of whichever operand decided the outcome, not a boolean.
func (in *Interpreter) VisitLogicalExpr(expr ast.LogicalExpr) interface{} {
	left := in.evaluate(expr.Left)
	if expr.Operator.TokenType == ast.TokenOr {
		if in.isTruthy(left) {
			return left
		}
	} else { // and
		if !in.isTruthy(left) {
			return left
		}
	}
	return in.evaluate(expr.Right)
}

// VisitTernaryExpr evaluates the condition and then exactly
// one of the two branches
func (in *Interpreter) VisitTernaryExpr(expr ast.TernaryExpr) interface{} {
	if in.isTruthy(in.evaluate(expr.Cond)) {
		return in.evaluate(expr.Left)
	}
	return in.evaluate(expr.Right)
}

func (in *Interpreter) VisitVariableExpr(expr ast.VariableExpr) interface{} {
	val, err := in.environment.Get(expr.Name)
	if err != nil {
		panic(err)
	}
	if _, ok := val.(uninitialized); ok {
		in.error(expr.Name, fmt.Sprintf("Variable '%s' must be initialized before use.", expr.Name.Lexeme))
	}
	return val
}

// VisitAssignExpr evaluates an assignment and returns the assigned value.
// A compound assignment reads the current binding, requires both it and the
// new value to be numbers, and combines them per the operator.
func (in *Interpreter) VisitAssignExpr(expr ast.AssignExpr) interface{} {
	value := in.evaluate(expr.Value)

	if expr.Operator.TokenType != ast.TokenEqual {
		current, err := in.environment.Get(expr.Name)
		if err != nil {
			panic(err)
		}
		if _, ok := current.(uninitialized); ok {
			in.error(expr.Name, fmt.Sprintf("Variable '%s' must be initialized before use.", expr.Name.Lexeme))
		}
		in.checkNumberOperands(expr.Operator, current, value)

		switch expr.Operator.TokenType {
		case ast.TokenPlusEqual:
			value = current.(float64) + value.(float64)
		case ast.TokenMinusEqual:
			value = current.(float64) - value.(float64)
		case ast.TokenStarEqual:
			value = current.(float64) * value.(float64)
		case ast.TokenSlashEqual:
			value = current.(float64) / value.(float64)
		}
	}

	if err := in.environment.Assign(expr.Name, value); err != nil {
		panic(err)
	}
	return value
}

// isTruthy maps a value to a boolean for use in conditionals:
// nil is false, booleans are themselves, everything else is true
func (in *Interpreter) isTruthy(val interface{}) bool {
	if val == nil {
		return false
	}
	if v, ok := val.(bool); ok {
		return v
	}
	return true
}

// isEqual compares two values: nil equals only nil, and values of
// different types are unequal rather than an error
func (in *Interpreter) isEqual(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a == b
}

func (in *Interpreter) checkNumberOperand(operator ast.Token, operand interface{}) {
	if _, ok := operand.(float64); ok {
		return
	}
	in.error(operator, "Operand must be a number.")
}

func (in *Interpreter) checkNumberOperands(operator ast.Token, left, right interface{}) {
	if _, ok := left.(float64); ok {
		if _, ok = right.(float64); ok {
			return
		}
	}
	in.error(operator, "Operands must be numbers.")
}

// stringify renders a runtime value for printing. An integral number prints
// without a trailing ".0".
func (in *Interpreter) stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
