package token

import "strconv"

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	literal_beg
	// Identifiers + literals
	IDENT // add, fibb, x, y, ...
	INT   // 1343456, 0x1f, 0o17, 0b101
	literal_end

	keyword_beg
	KWINT    // int
	IF       // if
	WHILE    // while
	BREAK    // break
	CONTINUE // continue
	RETURN   // return
	keyword_end

	operator_beg
	ASSIGN // =

	ADD // +
	SUB // -
	MUL // *
	QUO // /
	REM // %

	AND // &
	OR  // |
	XOR // ^

	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	SEMICOLON // ;
	operator_end

	comparison_beg
	EQL // ==
	NEQ // !=
	LSS // <
	LEQ // <=
	GTR // >
	GEQ // >=
	comparison_end
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",

	IDENT: "IDENT",
	INT:   "INT",

	KWINT:    "int",
	IF:       "if",
	WHILE:    "while",
	BREAK:    "break",
	CONTINUE: "continue",
	RETURN:   "return",

	ASSIGN: "=",

	ADD: "+",
	SUB: "-",
	MUL: "*",
	QUO: "/",
	REM: "%",

	AND: "&",
	OR:  "|",
	XOR: "^",

	LPAREN:    "(",
	RPAREN:    ")",
	LBRACE:    "{",
	RBRACE:    "}",
	COMMA:     ",",
	SEMICOLON: ";",

	EQL: "==",
	NEQ: "!=",
	LSS: "<",
	LEQ: "<=",
	GTR: ">",
	GEQ: ">=",
}

var keywords = map[string]TokenType{
	"int":      KWINT,
	"if":       IF,
	"while":    WHILE,
	"break":    BREAK,
	"continue": CONTINUE,
	"return":   RETURN,
}

// LookupIdent maps an identifier literal to its keyword token type,
// or IDENT if it is not a keyword.
func LookupIdent(ident string) TokenType {
	if kw, ok := keywords[ident]; ok {
		return kw
	}
	return IDENT
}

// Position is a source location, 1-based in both fields.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

func (t Token) IsKeyword() bool {
	return keyword_beg < t.Type && t.Type < keyword_end
}

func (t Token) IsComparison() bool {
	return comparison_beg < t.Type && t.Type < comparison_end
}

// IsBinaryOp reports whether the token is one of the admitted binary
// operators: arithmetic, bitwise, or comparison.
func (t Token) IsBinaryOp() bool {
	switch t.Type {
	case ADD, SUB, MUL, QUO, REM, AND, OR, XOR:
		return true
	}
	return t.IsComparison()
}

func (t Token) String() string {
	return t.Type.String()
}

func (tokenType TokenType) String() string {
	s := ""
	if 0 <= tokenType && tokenType < TokenType(len(tokens)) {
		s = tokens[tokenType]
	}

	if s == "" {
		s = "token(" + strconv.Itoa(int(tokenType)) + ")"
	}

	return s
}
