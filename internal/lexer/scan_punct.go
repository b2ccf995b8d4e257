package lexer

import (
	"rmspp/internal/token"
)

var punct = [utf8RuneSelf]token.Kind{
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	',': token.Comma,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'=': token.Assign,
	'<': token.Lt,
	'>': token.Gt,
}

// scanPunct - односимвольные операторы; всё остальное - Text.
func (lx *Lexer) scanPunct() token.Token {
	start := lx.cursor.Mark()
	ch := lx.cursor.Peek()
	if ch < utf8RuneSelf && punct[ch] != token.Invalid {
		lx.cursor.Bump()
		sp := lx.cursor.SpanFrom(start)
		return token.Token{Kind: punct[ch], Span: sp, Text: lx.file.Text(sp)}
	}
	return lx.scanOther()
}

// scanOther consumes one rune as Text.
func (lx *Lexer) scanOther() token.Token {
	start := lx.cursor.Mark()
	if _, sz := lx.peekRune(); sz <= 1 {
		lx.cursor.Bump()
	} else {
		lx.bumpRune()
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Text, Span: sp, Text: lx.file.Text(sp)}
}
