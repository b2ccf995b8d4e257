package lexer

import (
	"rmspp/internal/source"
	"rmspp/internal/token"
)

// Lexer turns one script into significant tokens with leading trivia.
type Lexer struct {
	file      *source.File
	cursor    Cursor
	opts      Options
	look      *token.Token   // 1 элементный буфер для токена
	hold      []token.Trivia // накопленные leading trivia
	rawHeader bool           // следующий токен - тело заголовка
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
	}
}

// Tokenize lexes the whole file. The result always ends with EOF, which
// carries the trailing trivia of the file.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	toks := make([]token.Token, 0, len(file.Content)/4+1)
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

// Next возвращает следующий значимый токен с уже собранным Leading.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	if lx.rawHeader {
		lx.rawHeader = false
		if tok, ok := lx.scanHeaderBody(); ok {
			return tok
		}
	}

	lx.collectLeadingTrivia()

	if lx.cursor.EOF() {
		return token.Token{
			Kind:    token.EOF,
			Span:    lx.emptySpan(),
			Leading: lx.takeHold(),
		}
	}

	ch := lx.cursor.Peek()
	var tok token.Token

	switch {
	case isIdentStartByte(ch) || isDec(ch):
		tok = lx.scanWord()
	case ch >= utf8RuneSelf:
		tok = lx.scanWord()
	case ch == '#':
		tok = lx.scanDirective()
	case ch == '"':
		tok = lx.scanString()
	default:
		tok = lx.scanPunct()
	}

	tok.Leading = lx.takeHold()
	if tok.Kind == token.Directive && tok.Directive() == token.DirHeaderStart {
		lx.rawHeader = true
	}
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

var headerEnd = []byte("#HEADER_END")

// scanHeaderBody returns everything up to the next #HEADER_END (or EOF) as one
// Raw token. Nothing inside a header is interpreted.
func (lx *Lexer) scanHeaderBody() (token.Token, bool) {
	start := lx.cursor.Mark()
	n := lx.cursor.IndexFold(headerEnd)
	if n < 0 {
		n = len(lx.cursor.Rest())
	}
	if n == 0 {
		return token.Token{}, false
	}
	lx.cursor.Skip(n)
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: token.Raw, Span: sp, Text: lx.file.Text(sp)}, true
}

func (lx *Lexer) takeHold() []token.Trivia {
	h := lx.hold
	lx.hold = nil
	return h
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}
