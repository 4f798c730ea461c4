package compiler

import (
	"fmt"

	"github.com/minic-lang/minic/token"
)

// opFunc emits the instructions for one binary operation. The left operand
// is already in eax; rhs is the right operand in assembly syntax. The
// result is left in eax.
type opFunc func(c *Compiler, rhs string)

func arithmeticOp(mnemonic string) opFunc {
	return func(c *Compiler, rhs string) {
		c.ins("%s eax, %s", mnemonic, rhs)
	}
}

// comparisonOp materializes the flag as a 0/1 integer so a comparison
// result is directly usable as a condition.
func comparisonOp(setcc string) opFunc {
	return func(c *Compiler, rhs string) {
		c.ins("cmp eax, %s", rhs)
		c.ins("%s al", setcc)
		c.ins("movzx eax, al")
	}
}

var defaultOps = map[token.TokenType]opFunc{
	token.ADD: arithmeticOp("add"),
	token.SUB: arithmeticOp("sub"),
	token.AND: arithmeticOp("and"),
	token.OR:  arithmeticOp("or"),
	token.XOR: arithmeticOp("xor"),

	token.LSS: comparisonOp("setl"),
	token.LEQ: comparisonOp("setle"),
	token.GTR: comparisonOp("setg"),
	token.GEQ: comparisonOp("setge"),
	token.EQL: comparisonOp("sete"),
	token.NEQ: comparisonOp("setne"),

	// imul has no form taking an immediate rhs in the accumulator
	// pattern, and idiv takes no immediate at all; both go through ecx.
	token.MUL: func(c *Compiler, rhs string) {
		c.ins("mov ecx, %s", rhs)
		c.ins("imul eax, ecx")
	},
	token.QUO: func(c *Compiler, rhs string) {
		c.ins("mov ecx, %s", rhs)
		c.ins("cdq")
		c.ins("idiv ecx")
	},
	token.REM: func(c *Compiler, rhs string) {
		c.ins("mov ecx, %s", rhs)
		c.ins("cdq")
		c.ins("idiv ecx")
		c.ins("mov eax, edx")
	},
}

func (c *Compiler) compileBinaryOp(op token.Token, rhs string) error {
	fn, ok := defaultOps[op.Type]
	if !ok {
		return fmt.Errorf("no codegen for operator %s", op)
	}
	fn(c, rhs)
	return nil
}
