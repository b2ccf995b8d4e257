package macro

import (
	"rmspp/internal/block"
	"rmspp/internal/diag"
	"rmspp/internal/symbols"
)

// DefaultMaxTokens bounds the size of a document after #REPEAT expansion.
const DefaultMaxTokens = 4 << 20

// Options tune the expander.
type Options struct {
	// MaxTokens caps the number of tokens repeat expansion may produce.
	MaxTokens int
}

type expander struct {
	table    *symbols.Table
	reporter diag.Reporter
	opts     Options
	produced int
}

// Expand rewrites the tree in place: every #REPEAT is unrolled (innermost
// first), then pattern macros and per-player object macros are replaced by
// the commands they stand for. Afterwards root holds only Header and
// Literal children.
func Expand(root *block.Block, table *symbols.Table, reporter diag.Reporter, opts Options) {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	x := &expander{table: table, reporter: reporter, opts: opts}
	root.Children = mergeLiterals(x.repeats(root.Children))
	for _, b := range root.Children {
		if b.Kind != block.Literal {
			continue
		}
		b.Tokens = x.patterns(b.Tokens)
		b.Tokens = x.objects(b.Tokens)
	}
}

// mergeLiterals joins adjacent Literal blocks so later passes see each
// command as one contiguous token run.
func mergeLiterals(bs []*block.Block) []*block.Block {
	out := make([]*block.Block, 0, len(bs))
	for _, b := range bs {
		if b.Kind == block.Literal && len(out) > 0 && out[len(out)-1].Kind == block.Literal {
			prev := out[len(out)-1]
			prev.Tokens = append(prev.Tokens, b.Tokens...)
			prev.Span = prev.Span.Cover(b.Span)
			continue
		}
		out = append(out, b)
	}
	return out
}
