package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minic-lang/minic/ast"
	"github.com/minic-lang/minic/lexer"
	"github.com/minic-lang/minic/token"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	p := New(lexer.New(input))
	program := p.Parse()
	require.Empty(t, p.Errors())
	require.NotNil(t, program)
	return program
}

func parseError(t *testing.T, input string) *token.CompileError {
	t.Helper()
	p := New(lexer.New(input))
	program := p.Parse()
	require.Nil(t, program)
	require.NotEmpty(t, p.Errors())
	return p.Errors()[0]
}

func TestParseFunction(t *testing.T) {
	input := `
int add(int a, int b) {
	int res;
	res = a + b;
	return res;
}
`
	program := parseProgram(t, input)
	require.Len(t, program.Functions, 1)

	fn := program.Functions[0]
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Parameters, 2)
	require.Equal(t, "a", fn.Parameters[0].Value)
	require.Equal(t, "b", fn.Parameters[1].Value)
	require.Len(t, fn.Body.Statements, 3)

	decl, ok := fn.Body.Statements[0].(*ast.DeclStatement)
	require.True(t, ok)
	require.Len(t, decl.Declarators, 1)
	require.Equal(t, "res", decl.Declarators[0].Name.Value)
	require.Nil(t, decl.Declarators[0].Value)

	assign, ok := fn.Body.Statements[1].(*ast.AssignStatement)
	require.True(t, ok)
	require.Equal(t, "res", assign.Name.Value)
	infix, ok := assign.Value.(*ast.InfixExpression)
	require.True(t, ok)
	require.Equal(t, "+", infix.Operator)

	ret, ok := fn.Body.Statements[2].(*ast.ReturnStatement)
	require.True(t, ok)
	ident, ok := ret.Value.(*ast.Identifier)
	require.True(t, ok)
	require.Equal(t, "res", ident.Value)
}

func TestDeclaratorList(t *testing.T) {
	input := `
int f() {
	int a, b = 2, c = b + 1;
	return c;
}
`
	program := parseProgram(t, input)
	decl := program.Functions[0].Body.Statements[0].(*ast.DeclStatement)
	require.Len(t, decl.Declarators, 3)
	require.Nil(t, decl.Declarators[0].Value)
	require.NotNil(t, decl.Declarators[1].Value)
	require.NotNil(t, decl.Declarators[2].Value)

	lit, ok := decl.Declarators[1].Value.(*ast.IntegerLiteral)
	require.True(t, ok)
	require.Equal(t, int32(2), lit.Value)
}

func TestIntegerLiterals(t *testing.T) {
	input := `
int f() {
	int a = 0x1f, b = 0o17, c = 0b101, d = -42, e = 007;
	return a;
}
`
	program := parseProgram(t, input)
	decl := program.Functions[0].Body.Statements[0].(*ast.DeclStatement)

	wants := []int32{31, 15, 5, -42, 7}
	for i, want := range wants {
		lit, ok := decl.Declarators[i].Value.(*ast.IntegerLiteral)
		require.True(t, ok)
		require.Equal(t, want, lit.Value)
	}
}

func TestCallExpression(t *testing.T) {
	input := `
int add(int a, int b) {
	return a + b;
}
int f(int n) {
	int r = add(n, 1);
	return r;
}
`
	program := parseProgram(t, input)
	decl := program.Functions[1].Body.Statements[0].(*ast.DeclStatement)
	call, ok := decl.Declarators[0].Value.(*ast.CallExpression)
	require.True(t, ok)
	require.Equal(t, "add", call.Function.Value)
	require.Len(t, call.Arguments, 2)
	for _, arg := range call.Arguments {
		require.True(t, ast.IsDirectValue(arg))
	}
}

func TestForwardCall(t *testing.T) {
	// callee defined after caller: the signature pre-pass must resolve it
	input := `
int f(int n) {
	return g(n);
}
int g(int n) {
	return n;
}
`
	parseProgram(t, input)
}

func TestMutualRecursion(t *testing.T) {
	input := `
int even(int n) {
	if (n == 0) {
		return 1;
	}
	n = n - 1;
	return odd(n);
}
int odd(int n) {
	if (n == 0) {
		return 0;
	}
	n = n - 1;
	return even(n);
}
`
	parseProgram(t, input)
}

func TestSemanticErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  token.ErrorKind
	}{
		{
			"redeclaration",
			"int f() { int x; int x; return x; }",
			token.ErrRedeclaration,
		},
		{
			"parameter redeclared",
			"int f(int x) { int x; return x; }",
			token.ErrRedeclaration,
		},
		{
			"use before declaration",
			"int f() { x = 1; return x; }",
			token.ErrUndeclared,
		},
		{
			"use in initializer before visible",
			"int f() { int x = x; return x; }",
			token.ErrUndeclared,
		},
		{
			"undefined callee",
			"int f() { return g(1); }",
			token.ErrUndeclared,
		},
		{
			"too few arguments",
			"int add(int a, int b) { return a + b; } int f() { return add(1); }",
			token.ErrArityMismatch,
		},
		{
			"too many arguments",
			"int add(int a, int b) { return a + b; } int f() { return add(1, 2, 3); }",
			token.ErrArityMismatch,
		},
		{
			"break outside loop",
			"int f() { break; return 0; }",
			token.ErrBreakOutsideLoop,
		},
		{
			"continue outside loop",
			"int f() { continue; return 0; }",
			token.ErrContinueOutsideLoop,
		},
		{
			"break in if outside loop",
			"int f(int n) { if (n) { break; } return 0; }",
			token.ErrBreakOutsideLoop,
		},
		{
			"missing return",
			"int f(int n) { n = 1; }",
			token.ErrMissingReturn,
		},
		{
			"empty body",
			"int f() { }",
			token.ErrMissingReturn,
		},
		{
			"return only inside if",
			"int f(int n) { if (n) { return 1; } }",
			token.ErrMissingReturn,
		},
		{
			"function redefined",
			"int f() { return 0; } int f() { return 1; }",
			token.ErrRedeclaration,
		},
		{
			"unrecognized character",
			"int f() { return 1 $ 2; }",
			token.ErrLex,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(t, tt.input)
			require.Equal(t, tt.kind, err.Kind, "got %s", err)
		})
	}
}

func TestRejectCompoundExpressions(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			"chained binary operators",
			"int f(int a, int b, int c) { return a + b + c; }",
		},
		{
			"parenthesized operand",
			"int f(int a, int b) { return (a + b) * 2; }",
		},
		{
			"compound call argument",
			"int g(int n) { return n; } int f(int a, int b) { return g(a + b); }",
		},
		{
			"call as operand",
			"int g(int n) { return n; } int f(int a) { return g(a) + 1; }",
		},
		{
			"bare call statement",
			"int g(int n) { return n; } int f(int a) { g(a); return 0; }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(lexer.New(tt.input))
			require.Nil(t, p.Parse())
			require.NotEmpty(t, p.Errors())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing semicolon", "int f() { int x = 1 return x; }"},
		{"missing close paren", "int f() { if (1 { return 0; } return 1; }"},
		{"missing close brace", "int f() { return 0;"},
		{"malformed declarator list", "int f() { int x,; return x; }"},
		{"statement outside function", "x = 1;"},
		{"garbage integer", "int f() { return 0q12; }"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError(t, tt.input)
			require.Equal(t, token.ErrParse, err.Kind, "got %s", err)
		})
	}
}

func TestErrorPosition(t *testing.T) {
	err := parseError(t, "int f() {\n\ty = 1;\n\treturn 0;\n}")
	require.Equal(t, token.ErrUndeclared, err.Kind)
	require.Equal(t, 2, err.Token.Pos.Line)
}
