package macro

import (
	"strconv"

	"rmspp/internal/block"
	"rmspp/internal/diag"
	"rmspp/internal/token"
)

// repeats unrolls every Repeat in bs. Bodies are expanded before they are
// copied, so nested repeats unroll from the innermost outward. Every copy
// is a deep clone followed by the Close placeholder, which carries the line
// break that separated the body from #END_REPEAT.
func (x *expander) repeats(bs []*block.Block) []*block.Block {
	out := make([]*block.Block, 0, len(bs))
	for _, b := range bs {
		if b.Kind != block.Repeat {
			out = append(out, b)
			continue
		}
		body := x.repeats(b.Children)
		n := max(b.Count, 0)
		size := tokenCount(body) + 1
		if n > 0 && n > (x.opts.MaxTokens-x.produced)/size {
			diag.ReportError(x.reporter, diag.MacExpansionTooLarge, b.Open.Span,
				"expanding "+b.Open.Text+"("+strconv.Itoa(b.Count)+") exceeds the limit of "+
					strconv.Itoa(x.opts.MaxTokens)+" tokens").Emit()
			n = 0
		}
		x.produced += size * n
		for range n {
			for _, c := range body {
				out = append(out, c.Clone())
			}
			out = append(out, block.NewLiteral([]token.Token{b.Close.Clone()}))
		}
	}
	return out
}

func tokenCount(bs []*block.Block) int {
	n := 0
	for _, b := range bs {
		n += len(b.Tokens)
		n += tokenCount(b.Children)
	}
	return n
}
