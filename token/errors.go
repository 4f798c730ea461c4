package token

import "fmt"

// ErrorKind classifies a CompileError. Every kind aborts compilation at the
// point of detection; there is no recovery or multi-error reporting.
type ErrorKind int

const (
	ErrLex ErrorKind = iota
	ErrParse
	ErrUndeclared
	ErrRedeclaration
	ErrArityMismatch
	ErrBreakOutsideLoop
	ErrContinueOutsideLoop
	ErrMissingReturn
	ErrCodegen
)

var kinds = [...]string{
	ErrLex:                 "lex error",
	ErrParse:               "parse error",
	ErrUndeclared:          "undeclared identifier",
	ErrRedeclaration:       "redeclaration",
	ErrArityMismatch:       "arity mismatch",
	ErrBreakOutsideLoop:    "break outside loop",
	ErrContinueOutsideLoop: "continue outside loop",
	ErrMissingReturn:       "missing return",
	ErrCodegen:             "codegen error",
}

func (k ErrorKind) String() string {
	if 0 <= k && int(k) < len(kinds) {
		return kinds[k]
	}
	return fmt.Sprintf("error(%d)", int(k))
}

// CompileError is a diagnostic tied to the token where it was detected.
type CompileError struct {
	Kind  ErrorKind
	Token Token
	Msg   string
}

func (ce *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ce.Token.Pos, ce.Kind, ce.Msg)
}
