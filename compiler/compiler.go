package compiler

import (
	"fmt"
	"strings"

	"github.com/minic-lang/minic/ast"
	"github.com/minic-lang/minic/token"
)

// Compiler walks a parsed program function by function and emits x86-64
// assembly in GAS Intel syntax.
//
// Calling convention: arguments are pushed right to left, the caller pops
// them after the call, and the return value travels in eax. Nothing lives
// in registers across a call, so every caller's in-progress state sits in
// its own frame and recursive calls cannot clobber it.
type Compiler struct {
	out       strings.Builder
	nextLabel int // shared across all functions, labels never collide
	loopStack []LoopLabel
	frame     *Frame
	Errors    []*token.CompileError
}

// LoopLabel is one active while loop's jump targets. break goes to Exit,
// continue goes to Test.
type LoopLabel struct {
	Test string
	Exit string
}

func NewCompiler() *Compiler {
	return &Compiler{
		Errors: []*token.CompileError{},
	}
}

// Compile emits assembly for every function in declaration order. On error
// the partial output must be discarded by the caller.
func (c *Compiler) Compile(program *ast.Program) []*token.CompileError {
	c.raw("\t.intel_syntax noprefix")
	c.raw("\t.text")

	for _, fn := range program.Functions {
		if err := c.compileFunction(fn); err != nil {
			c.Errors = append(c.Errors, &token.CompileError{
				Kind:  token.ErrCodegen,
				Token: fn.Token,
				Msg:   fmt.Sprintf("in function %s: %s", fn.Name, err),
			})
			return c.Errors
		}
	}
	return c.Errors
}

// Assembly returns the emitted text. Only meaningful when Compile reported
// no errors.
func (c *Compiler) Assembly() string {
	return c.out.String()
}

func (c *Compiler) raw(line string) {
	c.out.WriteString(line)
	c.out.WriteByte('\n')
}

func (c *Compiler) label(name string) {
	c.raw(name + ":")
}

func (c *Compiler) ins(format string, args ...any) {
	c.raw("\t" + fmt.Sprintf(format, args...))
}

func (c *Compiler) newLabelID() int {
	id := c.nextLabel
	c.nextLabel++
	return id
}

func (c *Compiler) compileFunction(fn *ast.Function) error {
	c.frame = newFrame(fn)
	c.loopStack = c.loopStack[:0]

	c.raw("")
	c.ins(".globl %s", fn.Name)
	c.label(fn.Name)
	c.ins("push rbp")
	c.ins("mov rbp, rsp")
	if size := c.frame.size(); size > 0 {
		c.ins("sub rsp, %d", size)
	}

	return c.compileBlock(fn.Body)
}

func (c *Compiler) compileBlock(block *ast.BlockStatement) error {
	for _, stmt := range block.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.DeclStatement:
		return c.compileDecl(s)
	case *ast.AssignStatement:
		return c.compileStore(s.Name, s.Value)
	case *ast.IfStatement:
		return c.compileIf(s)
	case *ast.WhileStatement:
		return c.compileWhile(s)
	case *ast.BreakStatement:
		if len(c.loopStack) == 0 {
			return fmt.Errorf("break with no enclosing loop")
		}
		c.ins("jmp %s", c.loopStack[len(c.loopStack)-1].Exit)
		return nil
	case *ast.ContinueStatement:
		if len(c.loopStack) == 0 {
			return fmt.Errorf("continue with no enclosing loop")
		}
		c.ins("jmp %s", c.loopStack[len(c.loopStack)-1].Test)
		return nil
	case *ast.ReturnStatement:
		if err := c.compileExpression(s.Value); err != nil {
			return err
		}
		c.ins("leave")
		c.ins("ret")
		return nil
	default:
		return fmt.Errorf("unknown statement %T", stmt)
	}
}

func (c *Compiler) compileDecl(s *ast.DeclStatement) error {
	for _, d := range s.Declarators {
		if d.Value == nil {
			continue
		}
		if err := c.compileStore(d.Name, d.Value); err != nil {
			return err
		}
	}
	return nil
}

// compileStore evaluates value into eax and writes it to name's slot.
func (c *Compiler) compileStore(name *ast.Identifier, value ast.Expression) error {
	if err := c.compileExpression(value); err != nil {
		return err
	}
	slot, err := c.memOperand(name)
	if err != nil {
		return err
	}
	c.ins("mov %s, eax", slot)
	return nil
}

func (c *Compiler) compileIf(s *ast.IfStatement) error {
	end := fmt.Sprintf(".Lend%d", c.newLabelID())

	if err := c.compileCondition(s.Condition, end); err != nil {
		return err
	}
	if err := c.compileBlock(s.Body); err != nil {
		return err
	}
	c.label(end)
	return nil
}

func (c *Compiler) compileWhile(s *ast.WhileStatement) error {
	id := c.newLabelID()
	loop := LoopLabel{
		Test: fmt.Sprintf(".Ltest%d", id),
		Exit: fmt.Sprintf(".Lexit%d", id),
	}

	c.label(loop.Test)
	if err := c.compileCondition(s.Condition, loop.Exit); err != nil {
		return err
	}

	c.loopStack = append(c.loopStack, loop)
	err := c.compileBlock(s.Body)
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	if err != nil {
		return err
	}

	c.ins("jmp %s", loop.Test)
	c.label(loop.Exit)
	return nil
}

// compileCondition evaluates cond and branches to skip when it is zero.
func (c *Compiler) compileCondition(cond ast.Expression, skip string) error {
	if err := c.compileExpression(cond); err != nil {
		return err
	}
	c.ins("cmp eax, 0")
	c.ins("je %s", skip)
	return nil
}

// compileExpression leaves the expression's value in eax. The restricted
// grammar means this is at most a handful of instructions: one load, and
// either a single operation over a direct value or a call.
func (c *Compiler) compileExpression(expr ast.Expression) error {
	switch e := expr.(type) {
	case *ast.Identifier, *ast.IntegerLiteral:
		op, err := c.operand(expr)
		if err != nil {
			return err
		}
		c.ins("mov eax, %s", op)
		return nil
	case *ast.InfixExpression:
		lhs, err := c.operand(e.Left)
		if err != nil {
			return err
		}
		rhs, err := c.operand(e.Right)
		if err != nil {
			return err
		}
		c.ins("mov eax, %s", lhs)
		return c.compileBinaryOp(e.Token, rhs)
	case *ast.CallExpression:
		return c.compileCall(e)
	default:
		return fmt.Errorf("unknown expression %T", expr)
	}
}

// compileCall pushes the arguments right to left, calls, and pops them.
// The return value arrives in eax.
func (c *Compiler) compileCall(call *ast.CallExpression) error {
	for i := len(call.Arguments) - 1; i >= 0; i-- {
		if err := c.compileExpression(call.Arguments[i]); err != nil {
			return err
		}
		c.ins("push rax")
	}
	c.ins("call %s", call.Function.Value)
	if n := len(call.Arguments); n > 0 {
		c.ins("add rsp, %d", n*slotSize)
	}
	return nil
}

// operand renders a direct value as an instruction operand: a frame slot
// for identifiers, an immediate for constants.
func (c *Compiler) operand(expr ast.Expression) (string, error) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return c.memOperand(e)
	case *ast.IntegerLiteral:
		return fmt.Sprintf("%d", e.Value), nil
	default:
		return "", fmt.Errorf("operand %T is not a direct value", expr)
	}
}

func (c *Compiler) memOperand(name *ast.Identifier) (string, error) {
	off, err := c.frame.offset(name.Value)
	if err != nil {
		return "", err
	}
	if off < 0 {
		return fmt.Sprintf("dword ptr [rbp-%d]", -off), nil
	}
	return fmt.Sprintf("dword ptr [rbp+%d]", off), nil
}
