package compiler

import (
	"fmt"

	"github.com/minic-lang/minic/ast"
)

// Frame assigns each of a function's identifiers an rbp-relative stack
// slot. Parameters sit above the saved rbp and return address, where the
// caller pushed them; locals sit below. Slots are 8 bytes wide so pushes
// keep the stack aligned; values themselves are 32-bit.
//
// Scoping is flat: if/while bodies share the function's namespace, so a
// single table per activation is enough. Every call gets its own frame off
// rsp, which is what keeps in-progress locals alive across recursion.
type Frame struct {
	offsets map[string]int
	locals  int
}

const slotSize = 8

// paramBase is the rbp offset of the first parameter: saved rbp plus the
// return address pushed by call.
const paramBase = 2 * slotSize

// newFrame lays out fn's frame: parameters in declaration order, then every
// local declared anywhere in the body, in statement order.
func newFrame(fn *ast.Function) *Frame {
	f := &Frame{offsets: make(map[string]int)}
	for i, p := range fn.Parameters {
		f.offsets[p.Value] = paramBase + i*slotSize
	}
	f.collect(fn.Body)
	return f
}

func (f *Frame) collect(block *ast.BlockStatement) {
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.DeclStatement:
			for _, d := range s.Declarators {
				f.locals++
				f.offsets[d.Name.Value] = -f.locals * slotSize
			}
		case *ast.IfStatement:
			f.collect(s.Body)
		case *ast.WhileStatement:
			f.collect(s.Body)
		}
	}
}

// size is the frame reservation for locals, kept 16-byte aligned.
func (f *Frame) size() int {
	n := f.locals * slotSize
	return (n + 15) &^ 15
}

// offset resolves name to its rbp-relative slot. The parser guarantees
// every used identifier was declared, so a miss is an internal invariant
// violation.
func (f *Frame) offset(name string) (int, error) {
	off, ok := f.offsets[name]
	if !ok {
		return 0, fmt.Errorf("no frame slot for %s", name)
	}
	return off, nil
}
