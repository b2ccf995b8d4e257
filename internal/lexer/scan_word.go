package lexer

import (
	"rmspp/internal/token"
)

const utf8RuneSelf = 0x80

// scanWord сканирует идентификатор или число.
// Слова, начинающиеся с цифры, но содержащие буквы (2v2_lands), - Ident.
func (lx *Lexer) scanWord() token.Token {
	start := lx.cursor.Mark()

	r, _ := lx.peekRune()
	if r >= utf8RuneSelf && !isIdentStartRune(r) {
		return lx.scanOther()
	}

	kind := token.Ident
	if isDec(lx.cursor.Peek()) {
		kind = token.Number
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
			lx.cursor.Bump()
			for isDec(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
		}
	}

	for {
		r, sz := lx.peekRune()
		if sz == 0 || !isIdentContinueRune(r) {
			break
		}
		kind = token.Ident
		lx.bumpRune()
	}

	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.file.Text(sp)}
}

// scanDirective: '#' + [A-Za-z0-9_]*. A bare '#' is Text.
func (lx *Lexer) scanDirective() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '#'
	for isIdentContinueByte(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	kind := token.Directive
	if sp.Len() == 1 {
		kind = token.Text
	}
	return token.Token{Kind: kind, Span: sp, Text: lx.file.Text(sp)}
}
