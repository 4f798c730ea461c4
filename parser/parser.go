package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minic-lang/minic/ast"
	"github.com/minic-lang/minic/lexer"
	"github.com/minic-lang/minic/token"
)

// Parser turns the token stream into one ast.Function per definition,
// checking the grammar and the semantic rules as it goes: declaration
// before use, no redeclaration, call arity, break/continue placement, and
// the direct-value restriction on operands and arguments. The first error
// aborts the parse.
type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	errors []*token.CompileError

	// function name -> parameter count, collected in a pre-pass so calls
	// may target functions defined later in the file
	sigs map[string]int

	// current function's flat symbol table: name -> frame slot, built in
	// declaration order (parameters first)
	symbols map[string]int

	loopDepth int
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		sigs:   map[string]int{},
		errors: []*token.CompileError{},
	}

	for {
		tok := l.NextToken()
		p.tokens = append(p.tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) Errors() []*token.CompileError {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	p.addError(token.ErrParse, p.peekToken,
		fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken))
}

func (p *Parser) addError(kind token.ErrorKind, tok token.Token, msg string) {
	p.errors = append(p.errors, &token.CompileError{Kind: kind, Token: tok, Msg: msg})
}

func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// Parse consumes the whole token stream and returns the program, or nil if
// any error was recorded.
func (p *Parser) Parse() *ast.Program {
	if !p.checkLex() {
		return nil
	}
	p.collectSignatures()
	if p.failed() {
		return nil
	}

	program := &ast.Program{}
	for !p.curTokenIs(token.EOF) {
		fn := p.parseFunction()
		if p.failed() {
			return nil
		}
		program.Functions = append(program.Functions, fn)
	}
	return program
}

// checkLex surfaces the first ILLEGAL token as a lex error before any
// parsing happens.
func (p *Parser) checkLex() bool {
	for _, tok := range p.tokens {
		if tok.Type == token.ILLEGAL {
			p.addError(token.ErrLex, tok,
				fmt.Sprintf("unrecognized character %q", tok.Literal))
			return false
		}
	}
	return true
}

// collectSignatures records every function name and arity before bodies are
// parsed, so self- and mutually recursive calls resolve regardless of
// definition order.
func (p *Parser) collectSignatures() {
	depth := 0
	for i, tok := range p.tokens {
		switch tok.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
		case token.KWINT:
			if depth != 0 || i+2 >= len(p.tokens) {
				continue
			}
			if p.tokens[i+1].Type != token.IDENT || p.tokens[i+2].Type != token.LPAREN {
				continue
			}
			name := p.tokens[i+1]
			if _, ok := p.sigs[name.Literal]; ok {
				p.addError(token.ErrRedeclaration, name,
					fmt.Sprintf("function %s has been previously defined", name.Literal))
				return
			}
			arity := 0
			for j := i + 3; j < len(p.tokens) && p.tokens[j].Type != token.RPAREN; j++ {
				if p.tokens[j].Type == token.KWINT {
					arity++
				}
			}
			p.sigs[name.Literal] = arity
		}
	}
}

func (p *Parser) parseFunction() *ast.Function {
	if !p.curTokenIs(token.KWINT) {
		p.addError(token.ErrParse, p.curToken,
			fmt.Sprintf("expected function definition, got %s", p.curToken))
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}

	fn := &ast.Function{Token: p.curToken, Name: p.curToken.Literal}
	p.symbols = map[string]int{}
	p.loopDepth = 0

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	fn.Parameters = p.parseFunctionParameters()
	if p.failed() {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockStatement()
	if p.failed() {
		return nil
	}
	p.nextToken()

	// Control falls off the end unless the final top-level statement
	// returns; nothing after a return can run, so this check suffices.
	n := len(fn.Body.Statements)
	if n == 0 {
		p.addError(token.ErrMissingReturn, fn.Token,
			fmt.Sprintf("function %s has an empty body", fn.Name))
		return nil
	}
	if _, ok := fn.Body.Statements[n-1].(*ast.ReturnStatement); !ok {
		p.addError(token.ErrMissingReturn, fn.Body.Statements[n-1].Tok(),
			fmt.Sprintf("function %s does not end in a return statement", fn.Name))
		return nil
	}
	return fn
}

func (p *Parser) parseFunctionParameters() []*ast.Identifier {
	identifiers := []*ast.Identifier{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return identifiers
	}

	for {
		if !p.expectPeek(token.KWINT) {
			return nil
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		p.declare(ident)
		identifiers = append(identifiers, ident)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return identifiers
}

// declare adds name to the current function's symbol table, assigning the
// next frame slot in declaration order.
func (p *Parser) declare(name *ast.Identifier) {
	if _, ok := p.symbols[name.Value]; ok {
		p.addError(token.ErrRedeclaration, name.Token,
			fmt.Sprintf("%s has already been declared in this function", name.Value))
		return
	}
	p.symbols[name.Value] = len(p.symbols)
}

func (p *Parser) checkDeclared(name *ast.Identifier) {
	if _, ok := p.symbols[name.Value]; !ok {
		p.addError(token.ErrUndeclared, name.Token,
			fmt.Sprintf("%s is used before its declaration", name.Value))
	}
}

// parseBlockStatement parses statements until the matching }. On entry
// curToken is {; on exit curToken is }.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.addError(token.ErrParse, p.curToken, "expected }, got EOF")
			return nil
		}
		stmt := p.parseStatement()
		if p.failed() {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}

	return block
}

// parseStatement dispatches on the leading token. A bare call or
// expression as a statement is not admitted by the grammar.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.KWINT:
		return p.parseDeclStatement()
	case token.BREAK:
		return p.parseBreakStatement()
	case token.CONTINUE:
		return p.parseContinueStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IDENT:
		return p.parseAssignStatement()
	default:
		p.addError(token.ErrParse, p.curToken,
			fmt.Sprintf("expected statement, got %s", p.curToken))
		return nil
	}
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression()
	if p.failed() {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Condition = p.parseExpression()
	if p.failed() {
		return nil
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	p.loopDepth++
	stmt.Body = p.parseBlockStatement()
	p.loopDepth--
	return stmt
}

func (p *Parser) parseDeclStatement() ast.Statement {
	stmt := &ast.DeclStatement{Token: p.curToken}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		decl := &ast.Declarator{
			Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
		}

		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			decl.Value = p.parseExpression()
			if p.failed() {
				return nil
			}
		}

		// The initializer is evaluated before the name becomes visible,
		// so `int x = x;` is rejected.
		p.declare(decl.Name)
		if p.failed() {
			return nil
		}
		stmt.Declarators = append(stmt.Declarators, decl)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseAssignStatement() ast.Statement {
	name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	p.checkDeclared(name)
	if p.failed() {
		return nil
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	stmt := &ast.AssignStatement{Token: p.curToken, Name: name}

	p.nextToken()
	stmt.Value = p.parseExpression()
	if p.failed() {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseBreakStatement() ast.Statement {
	stmt := &ast.BreakStatement{Token: p.curToken}
	if p.loopDepth == 0 {
		p.addError(token.ErrBreakOutsideLoop, p.curToken,
			"break is not inside any loop")
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseContinueStatement() ast.Statement {
	stmt := &ast.ContinueStatement{Token: p.curToken}
	if p.loopDepth == 0 {
		p.addError(token.ErrContinueOutsideLoop, p.curToken,
			"continue is not inside any loop")
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	p.nextToken()
	stmt.Value = p.parseExpression()
	if p.failed() {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return stmt
}

// parseExpression parses the restricted expression grammar: a direct
// value, a single binary operation over two direct values, or a call with
// direct-value arguments. On exit curToken is the expression's last token.
func (p *Parser) parseExpression() ast.Expression {
	if p.curTokenIs(token.IDENT) && p.peekTokenIs(token.LPAREN) {
		return p.parseCallExpression()
	}

	left := p.parseDirectValue()
	if p.failed() {
		return nil
	}

	if !p.peekToken.IsBinaryOp() {
		return left
	}

	p.nextToken()
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	p.nextToken()
	expression.Right = p.parseDirectValue()
	if p.failed() {
		return nil
	}
	return expression
}

// parseDirectValue admits a declared identifier or an integer constant,
// optionally preceded by a sign. Anything else, in particular a nested
// expression, is a parse error.
func (p *Parser) parseDirectValue() ast.Expression {
	switch p.curToken.Type {
	case token.IDENT:
		ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		p.checkDeclared(ident)
		return ident
	case token.INT:
		return p.parseIntegerLiteral(false)
	case token.SUB:
		if !p.expectPeek(token.INT) {
			return nil
		}
		return p.parseIntegerLiteral(true)
	default:
		p.addError(token.ErrParse, p.curToken,
			fmt.Sprintf("expected identifier or constant, got %s", p.curToken))
		return nil
	}
}

func (p *Parser) parseIntegerLiteral(negate bool) ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := parseConst(p.curToken.Literal)
	if err != nil {
		p.addError(token.ErrParse, p.curToken,
			fmt.Sprintf("could not parse %q as integer", p.curToken.Literal))
		return nil
	}

	if negate {
		value = -value
	}
	lit.Value = value
	return lit
}

// parseConst reads a decimal constant, or a radix-prefixed one: 0x hex,
// 0o octal, 0b binary.
func parseConst(literal string) (int32, error) {
	if v, err := strconv.ParseInt(literal, 10, 32); err == nil {
		return int32(v), nil
	}

	trimmed := strings.TrimLeft(literal, "0")
	var radix int
	switch {
	case strings.HasPrefix(trimmed, "x"):
		radix = 16
	case strings.HasPrefix(trimmed, "o"):
		radix = 8
	case strings.HasPrefix(trimmed, "b"):
		radix = 2
	default:
		return 0, fmt.Errorf("invalid integer literal %q", literal)
	}
	v, err := strconv.ParseInt(trimmed[1:], radix, 32)
	return int32(v), err
}

func (p *Parser) parseCallExpression() ast.Expression {
	exp := &ast.CallExpression{
		Token:    p.curToken,
		Function: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
	}

	arity, ok := p.sigs[exp.Function.Value]
	if !ok {
		p.addError(token.ErrUndeclared, exp.Token,
			fmt.Sprintf("call to undefined function %s", exp.Function.Value))
		return nil
	}

	p.nextToken() // the ( token

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
	} else {
		for {
			p.nextToken()
			arg := p.parseDirectValue()
			if p.failed() {
				return nil
			}
			exp.Arguments = append(exp.Arguments, arg)

			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(token.RPAREN) {
			return nil
		}
	}

	if len(exp.Arguments) != arity {
		p.addError(token.ErrArityMismatch, exp.Token,
			fmt.Sprintf("%s takes %d arguments, got %d", exp.Function.Value, arity, len(exp.Arguments)))
		return nil
	}
	return exp
}
