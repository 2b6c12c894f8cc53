// Generates the AST node boilerplate in ast/expr.go and ast/stmt.go from
// the declarative node definitions in nodes.yaml.
package main

import (
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type node struct {
	Name   string   `yaml:"name"`
	Fields []string `yaml:"fields"`
}

type definitions struct {
	Expr []node `yaml:"expr"`
	Stmt []node `yaml:"stmt"`
}

func main() {
	data, err := os.ReadFile(filepath.Join("cmd", "astgen", "nodes.yaml"))
	if err != nil {
		panic(err)
	}

	var defs definitions
	if err = yaml.Unmarshal(data, &defs); err != nil {
		panic(err)
	}

	writeAst("Expr", defs.Expr)
	writeAst("Stmt", defs.Stmt)
}

func writeAst(name string, nodes []node) {
	src, err := defineAst(name, nodes)
	if err != nil {
		panic(err)
	}

	path := filepath.Join("ast", strings.ToLower(name)+".go")
	if err = os.WriteFile(path, src, 0o644); err != nil {
		panic(err)
	}
}

func defineAst(name string, nodes []node) ([]byte, error) {
	var str string

	str += "// Code generated by cmd/astgen. DO NOT EDIT.\n"
	str += "package ast\n"
	str += defineInterface(name)
	str += defineTypes(name, nodes)
	str += defineVisitor(name, nodes)

	// format the generated source with go fmt
	return format.Source([]byte(str))
}

func defineInterface(name string) string {
	return fmt.Sprintf(`
type %s interface {
	Accept(visitor %sVisitor) interface{}
}
`, name, name)
}

func defineTypes(name string, nodes []node) (str string) {
	for _, n := range nodes {
		typeName := n.Name + name
		str += fmt.Sprintf("\ntype %s struct {\n", typeName)
		for _, field := range n.Fields {
			str += fmt.Sprintf("\t%s\n", field)
		}
		str += "}\n"

		str += fmt.Sprintf(`
func (b %s) Accept(visitor %sVisitor) interface{} {
	return visitor.Visit%s(b)
}
`, typeName, name, typeName)
	}
	return str
}

func defineVisitor(name string, nodes []node) (str string) {
	str += fmt.Sprintf("\ntype %sVisitor interface {\n", name)
	for _, n := range nodes {
		typeName := n.Name + name
		str += fmt.Sprintf("\tVisit%s(%s %s) interface{}\n", typeName, strings.ToLower(name), typeName)
	}
	str += "}\n"
	return str
}
