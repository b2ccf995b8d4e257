package macro

import (
	"rmspp/internal/lexer"
	"rmspp/internal/source"
	"rmspp/internal/token"
)

// generated lexes macro output. Every token is attributed to the invocation
// at, and the first one inherits at's leading trivia so the expansion sits
// where the directive was.
func generated(text string, at token.Token) []token.Token {
	return generatedWithLeading(text, at, at.Leading)
}

func generatedWithLeading(text string, at token.Token, leading []token.Trivia) []token.Token {
	scratch := &source.File{ID: at.Span.File, Path: "<macro>", Content: []byte(text)}
	toks := lexer.Tokenize(scratch, lexer.Options{})
	toks = toks[:len(toks)-1] // EOF
	for i := range toks {
		toks[i].Span = at.Span
		for j := range toks[i].Leading {
			toks[i].Leading[j].Span = at.Span
		}
	}
	if len(toks) > 0 {
		toks[0].Leading = leading
	}
	return toks
}

func newlineTrivia(sp source.Span) []token.Trivia {
	return []token.Trivia{{Kind: token.TriviaNewline, Span: sp, Text: "\n"}}
}

func spaceTrivia(sp source.Span) []token.Trivia {
	return []token.Trivia{{Kind: token.TriviaSpace, Span: sp, Text: " "}}
}
