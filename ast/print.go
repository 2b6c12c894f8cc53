package ast

import (
	"fmt"
	"strconv"
)

// Printer writes an Expr back out as parenthesized source text. Because the
// output is valid source, scanning and parsing a printed expression yields a
// tree with the same evaluation semantics as the original.
type Printer struct{}

// Print returns the source representation of an Expr node
func (a Printer) Print(expr Expr) string {
	return expr.Accept(a).(string)
}

func (a Printer) VisitAssignExpr(expr AssignExpr) interface{} {
	return "(" + expr.Name.Lexeme + " " + expr.Operator.Lexeme + " " + a.Print(expr.Value) + ")"
}

func (a Printer) VisitBinaryExpr(expr BinaryExpr) interface{} {
	return "(" + a.Print(expr.Left) + " " + expr.Operator.Lexeme + " " + a.Print(expr.Right) + ")"
}

func (a Printer) VisitGroupingExpr(expr GroupingExpr) interface{} {
	return "(" + a.Print(expr.Expression) + ")"
}

func (a Printer) VisitLiteralExpr(expr LiteralExpr) interface{} {
	switch v := expr.Value.(type) {
	case nil:
		return "nil"
	// strings are wrapped raw: the scanner has no escape sequences, so a
	// literal can hold any character except '"' and re-quoting is lossless
	case string:
		return "\"" + v + "\""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func (a Printer) VisitLogicalExpr(expr LogicalExpr) interface{} {
	return "(" + a.Print(expr.Left) + " " + expr.Operator.Lexeme + " " + a.Print(expr.Right) + ")"
}

func (a Printer) VisitTernaryExpr(expr TernaryExpr) interface{} {
	return "(" + a.Print(expr.Cond) + " ? " + a.Print(expr.Left) + " : " + a.Print(expr.Right) + ")"
}

func (a Printer) VisitUnaryExpr(expr UnaryExpr) interface{} {
	return "(" + expr.Operator.Lexeme + a.Print(expr.Right) + ")"
}

func (a Printer) VisitVariableExpr(expr VariableExpr) interface{} {
	return expr.Name.Lexeme
}
