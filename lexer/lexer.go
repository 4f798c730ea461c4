package lexer

import "github.com/minic-lang/minic/token"

type Lexer struct {
	input        []rune
	position     int  // current position in input (points to current rune)
	readPosition int  // current reading position in input (after current rune)
	curr         rune // current rune under examination

	line int // 1-based line of curr
	col  int // 1-based column of curr
}

func New(input string) *Lexer {
	l := &Lexer{input: []rune(input), line: 1, col: 0}
	l.readRune()
	return l
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.pos()
	var tok token.Token

	switch l.curr {
	case '=':
		if l.peekRune() == '=' {
			l.readRune()
			tok = token.Token{Type: token.EQL, Literal: "==", Pos: pos}
		} else {
			tok = l.newToken(token.ASSIGN, pos)
		}
	case '!':
		if l.peekRune() == '=' {
			l.readRune()
			tok = token.Token{Type: token.NEQ, Literal: "!=", Pos: pos}
		} else {
			tok = l.newToken(token.ILLEGAL, pos)
		}
	case '<':
		if l.peekRune() == '=' {
			l.readRune()
			tok = token.Token{Type: token.LEQ, Literal: "<=", Pos: pos}
		} else {
			tok = l.newToken(token.LSS, pos)
		}
	case '>':
		if l.peekRune() == '=' {
			l.readRune()
			tok = token.Token{Type: token.GEQ, Literal: ">=", Pos: pos}
		} else {
			tok = l.newToken(token.GTR, pos)
		}
	case '+':
		tok = l.newToken(token.ADD, pos)
	case '-':
		tok = l.newToken(token.SUB, pos)
	case '*':
		tok = l.newToken(token.MUL, pos)
	case '/':
		tok = l.newToken(token.QUO, pos)
	case '%':
		tok = l.newToken(token.REM, pos)
	case '&':
		tok = l.newToken(token.AND, pos)
	case '|':
		tok = l.newToken(token.OR, pos)
	case '^':
		tok = l.newToken(token.XOR, pos)
	case '(':
		tok = l.newToken(token.LPAREN, pos)
	case ')':
		tok = l.newToken(token.RPAREN, pos)
	case '{':
		tok = l.newToken(token.LBRACE, pos)
	case '}':
		tok = l.newToken(token.RBRACE, pos)
	case ',':
		tok = l.newToken(token.COMMA, pos)
	case ';':
		tok = l.newToken(token.SEMICOLON, pos)
	case 0:
		tok = token.Token{Type: token.EOF, Literal: "", Pos: pos}
	default:
		if isLetter(l.curr) {
			lit := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(lit), Literal: lit, Pos: pos}
		} else if isDigit(l.curr) {
			return token.Token{Type: token.INT, Literal: l.readNumber(), Pos: pos}
		}
		tok = l.newToken(token.ILLEGAL, pos)
	}

	l.readRune()
	return tok
}

func (l *Lexer) pos() token.Position {
	return token.Position{Line: l.line, Column: l.col}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.curr == ' ' || l.curr == '\t' || l.curr == '\n' || l.curr == '\r' {
			l.readRune()
		}
		if l.curr == '/' && l.peekRune() == '/' {
			for l.curr != '\n' && l.curr != 0 {
				l.readRune()
			}
			continue
		}
		if l.curr == '/' && l.peekRune() == '*' {
			l.readRune()
			l.readRune()
			for l.curr != 0 && !(l.curr == '*' && l.peekRune() == '/') {
				l.readRune()
			}
			if l.curr != 0 {
				l.readRune()
				l.readRune()
			}
			continue
		}
		return
	}
}

func (l *Lexer) readRune() {
	if l.curr == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPosition >= len(l.input) {
		l.curr = 0
	} else {
		l.curr = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.col++
}

func (l *Lexer) peekRune() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.curr) || isDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

// readNumber scans a digit run. Radix prefixes (0x, 0o, 0b) are scanned as
// part of the literal; the parser validates the digits.
func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.curr) || isLetter(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) newToken(tokenType token.TokenType, pos token.Position) token.Token {
	return token.Token{Type: tokenType, Literal: string(l.curr), Pos: pos}
}
