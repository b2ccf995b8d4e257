// Package truncate cuts an expanded document at its first #BREAK.
package truncate

import (
	"rmspp/internal/block"
	"rmspp/internal/token"
)

// Apply drops the first #BREAK and every body token after it. Header
// blocks are kept wherever they stand: the emitter writes them before the
// body anyway. The EOF token survives without its trailing trivia.
// Apply reports whether a #BREAK was found.
func Apply(root *block.Block) bool {
	at, k := find(root)
	if at < 0 {
		return false
	}
	eof := lastEOF(root)

	cut := root.Children[at]
	cut.Tokens = cut.Tokens[:k:k]
	kept := root.Children[:at+1:at+1]
	for _, b := range root.Children[at+1:] {
		if b.Kind == block.Header {
			kept = append(kept, b)
		}
	}
	if eof != nil {
		end := token.Synth(token.EOF, "", eof.Span)
		kept = append(kept, block.NewLiteral([]token.Token{end}))
	}
	root.Children = kept
	return true
}

func find(root *block.Block) (child, tok int) {
	for i, b := range root.Children {
		if b.Kind != block.Literal {
			continue
		}
		for k, t := range b.Tokens {
			if t.Kind == token.Directive && t.Directive() == token.DirBreak {
				return i, k
			}
		}
	}
	return -1, -1
}

func lastEOF(root *block.Block) *token.Token {
	for i := len(root.Children) - 1; i >= 0; i-- {
		b := root.Children[i]
		if b.Kind == block.Literal && len(b.Tokens) > 0 && b.Tokens[len(b.Tokens)-1].Kind == token.EOF {
			return &b.Tokens[len(b.Tokens)-1]
		}
	}
	return nil
}
