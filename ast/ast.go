package ast

import (
	"bytes"
	"strings"

	"github.com/minic-lang/minic/token"
)

// The base Node interface
type Node interface {
	Tok() token.Token
	String() string
}

// All statement nodes implement this
type Statement interface {
	Node
	statementNode()
}

// All expression nodes implement this
type Expression interface {
	Node
	expressionNode()
}

// Program is one source file: an ordered list of function definitions.
type Program struct {
	Functions []*Function
}

func (p *Program) Tok() token.Token {
	if len(p.Functions) > 0 {
		return p.Functions[0].Tok()
	}
	return token.Token{Type: token.EOF, Literal: ""}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, f := range p.Functions {
		out.WriteString(f.String())
		out.WriteString("\n")
	}

	return out.String()
}

// Function is `int name(int a, int b) { ... }`. Parameters keep source
// order; they occupy the first slots of the function's frame.
type Function struct {
	Token      token.Token // the function name token
	Name       string
	Parameters []*Identifier
	Body       *BlockStatement
}

func (f *Function) Tok() token.Token { return f.Token }
func (f *Function) String() string {
	var out bytes.Buffer

	params := []string{}
	for _, p := range f.Parameters {
		params = append(params, "int "+p.String())
	}

	out.WriteString("int ")
	out.WriteString(f.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") ")
	out.WriteString(f.Body.String())

	return out.String()
}

type BlockStatement struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()   {}
func (bs *BlockStatement) Tok() token.Token { return bs.Token }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString(" ")
	}
	out.WriteString("}")

	return out.String()
}

// Declarator is one name in a declaration list, with an optional
// initializer.
type Declarator struct {
	Name  *Identifier
	Value Expression // nil when uninitialized
}

func (d *Declarator) String() string {
	if d.Value == nil {
		return d.Name.String()
	}
	return d.Name.String() + " = " + d.Value.String()
}

// DeclStatement is `int a, b = expr, c;`.
type DeclStatement struct {
	Token       token.Token // the `int` token
	Declarators []*Declarator
}

func (ds *DeclStatement) statementNode()   {}
func (ds *DeclStatement) Tok() token.Token { return ds.Token }
func (ds *DeclStatement) String() string {
	parts := []string{}
	for _, d := range ds.Declarators {
		parts = append(parts, d.String())
	}
	return "int " + strings.Join(parts, ", ") + ";"
}

// AssignStatement is `name = expr;`.
type AssignStatement struct {
	Token token.Token // the `=` token
	Name  *Identifier
	Value Expression
}

func (as *AssignStatement) statementNode()   {}
func (as *AssignStatement) Tok() token.Token { return as.Token }
func (as *AssignStatement) String() string {
	return as.Name.String() + " = " + as.Value.String() + ";"
}

type IfStatement struct {
	Token     token.Token // the `if` token
	Condition Expression
	Body      *BlockStatement
}

func (is *IfStatement) statementNode()   {}
func (is *IfStatement) Tok() token.Token { return is.Token }
func (is *IfStatement) String() string {
	return "if (" + is.Condition.String() + ") " + is.Body.String()
}

type WhileStatement struct {
	Token     token.Token // the `while` token
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()   {}
func (ws *WhileStatement) Tok() token.Token { return ws.Token }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

type BreakStatement struct {
	Token token.Token
}

func (bs *BreakStatement) statementNode()   {}
func (bs *BreakStatement) Tok() token.Token { return bs.Token }
func (bs *BreakStatement) String() string   { return "break;" }

type ContinueStatement struct {
	Token token.Token
}

func (cs *ContinueStatement) statementNode()   {}
func (cs *ContinueStatement) Tok() token.Token { return cs.Token }
func (cs *ContinueStatement) String() string   { return "continue;" }

type ReturnStatement struct {
	Token token.Token // the `return` token
	Value Expression
}

func (rs *ReturnStatement) statementNode()   {}
func (rs *ReturnStatement) Tok() token.Token { return rs.Token }
func (rs *ReturnStatement) String() string {
	return "return " + rs.Value.String() + ";"
}

// Expressions

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()  {}
func (i *Identifier) Tok() token.Token { return i.Token }
func (i *Identifier) String() string   { return i.Value }

type IntegerLiteral struct {
	Token token.Token
	Value int32
}

func (il *IntegerLiteral) expressionNode()  {}
func (il *IntegerLiteral) Tok() token.Token { return il.Token }
func (il *IntegerLiteral) String() string   { return il.Token.Literal }

// InfixExpression is a single binary operation over two direct values.
// The grammar admits no nesting: Left and Right are always *Identifier or
// *IntegerLiteral, enforced by the parser.
type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()  {}
func (ie *InfixExpression) Tok() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

// CallExpression arguments are direct values only, enforced by the parser.
type CallExpression struct {
	Token     token.Token // the callee name token
	Function  *Identifier
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()  {}
func (ce *CallExpression) Tok() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}
	return ce.Function.String() + "(" + strings.Join(args, ", ") + ")"
}

// IsDirectValue reports whether e is a bare identifier or constant.
func IsDirectValue(e Expression) bool {
	switch e.(type) {
	case *Identifier, *IntegerLiteral:
		return true
	}
	return false
}
