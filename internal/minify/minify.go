// Package minify strips comments and reduces whitespace to the separators
// the game needs to read the script the same way.
package minify

import (
	"rmspp/internal/block"
	"rmspp/internal/source"
	"rmspp/internal/token"
)

// Separator choices for one trivia run.
const (
	sepNone    = ""
	sepSpace   = " "
	sepNewline = "\n"
)

// run summarizes the trivia between two significant tokens, Elided
// placeholders included.
type run struct {
	empty   bool
	newline bool
}

func (r *run) add(tv []token.Trivia) {
	for _, t := range tv {
		r.empty = false
		if t.HasNewline() {
			r.newline = true
		}
	}
}

// Apply rewrites every Literal of root in place. Elided placeholders are
// removed and each remaining token gets a single-trivia (or empty) leading
// run. Header blocks are not touched.
func Apply(root *block.Block) {
	var prev *token.Token
	cur := run{empty: true}
	block.Walk(root, func(b *block.Block) bool {
		if b.Kind == block.Header {
			return false
		}
		if b.Kind != block.Literal {
			return true
		}
		out := b.Tokens[:0]
		for _, t := range b.Tokens {
			cur.add(t.Leading)
			if t.Kind == token.Elided {
				continue
			}
			t.Leading = leading(separator(prev, t, cur), t.Span)
			out = append(out, t)
			prev = &out[len(out)-1]
			cur = run{empty: true}
		}
		b.Tokens = out
		return false
	})
}

// separator picks the text that replaces the trivia run r between prev and
// next. prev is nil at the start of the document.
func separator(prev *token.Token, next token.Token, r run) string {
	switch {
	case prev == nil || next.Kind == token.EOF:
		return sepNone
	case r.newline:
		return sepNewline
	case r.empty:
		if prev.Kind.IsWordLike() && next.Kind.IsWordLike() {
			return sepSpace
		}
		return sepNone
	case prev.Kind == token.LParen || prev.Kind == token.Comma:
		return sepNone
	case next.Kind == token.LParen || next.Kind == token.RParen || next.Kind == token.Comma:
		return sepNone
	default:
		return sepSpace
	}
}

func leading(sep string, at source.Span) []token.Trivia {
	sp := source.Span{File: at.File, Start: at.Start, End: at.Start}
	switch sep {
	case sepNewline:
		return []token.Trivia{{Kind: token.TriviaNewline, Span: sp, Text: sep}}
	case sepSpace:
		return []token.Trivia{{Kind: token.TriviaSpace, Span: sp, Text: sep}}
	default:
		return nil
	}
}
