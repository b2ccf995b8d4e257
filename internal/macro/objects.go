package macro

import (
	"strconv"

	"rmspp/internal/diag"
	"rmspp/internal/token"
)

// maxPlayers is the largest lobby the engine supports.
const maxPlayers = 8

// objects handles #SET_PLACE_FOR_EVERY_PLAYER[(n)] and #PLACE8 inside
// create_object commands: the object is written once per land id 1..n,
// each copy ending with "place_on_specific_land_id k".
func (x *expander) objects(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == token.Ident && t.Text == "create_object" {
			if end, ok := objectEnd(toks, i); ok {
				out = append(out, x.object(toks[i:end+1])...)
				i = end
				continue
			}
		}
		if isPlacementMacro(t) {
			diag.ReportError(x.reporter, diag.MacMisplaced, t.Span,
				t.Text+" is only allowed inside create_object").Emit()
			_, next, _, _ := x.parseArgs(toks, i)
			i = next - 1
			continue
		}
		out = append(out, t)
	}
	return out
}

func isPlacementMacro(t token.Token) bool {
	if t.Kind != token.Directive {
		return false
	}
	k := t.Directive()
	return k == token.DirEveryPlayer || k == token.DirPlace8
}

// objectEnd returns the index of the '}' closing the object that starts at
// toks[i].
func objectEnd(toks []token.Token, i int) (int, bool) {
	j := i + 1
	for j < len(toks) && toks[j].Kind != token.LBrace {
		if toks[j].Kind == token.EOF || toks[j].Kind == token.RBrace ||
			(toks[j].Kind == token.Ident && toks[j].Text == "create_object") {
			return 0, false
		}
		j++
	}
	depth := 0
	for ; j < len(toks); j++ {
		switch toks[j].Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				return j, true
			}
		}
	}
	return 0, false
}

func (x *expander) object(obj []token.Token) []token.Token {
	n := 0
	body := make([]token.Token, 0, len(obj))
	for k := 0; k < len(obj); k++ {
		t := obj[k]
		if !isPlacementMacro(t) {
			body = append(body, t)
			continue
		}
		if t.Directive() == token.DirPlace8 {
			n = 8
			continue
		}
		args, next, hasParens, ok := x.parseArgs(obj, k)
		k = next - 1
		switch {
		case !ok:
			return obj
		case !hasParens:
			n = 2
		case len(args) != 1 || args[0].Value < 1 || args[0].Value > maxPlayers ||
			args[0].Value != float64(int(args[0].Value)):
			diag.ReportErrorf(x.reporter, diag.MacBadArgument, t.Span,
				"%s takes one integer player count in 1..%d", t.Text, maxPlayers).Emit()
			return obj
		default:
			n = int(args[0].Value)
		}
	}
	if n == 0 {
		return obj
	}
	size := len(body) + 2
	if n > (x.opts.MaxTokens-x.produced)/size {
		diag.ReportErrorf(x.reporter, diag.MacExpansionTooLarge, obj[0].Span,
			"placing the object for %d players exceeds the limit of %d tokens", n, x.opts.MaxTokens).Emit()
		return obj
	}
	x.produced += n * size

	closing := body[len(body)-1]
	head := body[:len(body)-1]
	out := make([]token.Token, 0, n*(len(body)+2))
	for land := 1; land <= n; land++ {
		copied := token.CloneTokens(head)
		if land > 1 && !copied[0].NewlineBefore() {
			copied[0].Leading = newlineTrivia(copied[0].Span)
		}
		out = append(out, copied...)

		place := token.Synth(token.Ident, "place_on_specific_land_id", closing.Span)
		place.Leading = newlineTrivia(closing.Span)
		id := token.Synth(token.Number, strconv.Itoa(land), closing.Span)
		id.Leading = spaceTrivia(closing.Span)
		out = append(out, place, id)

		c := closing.Clone()
		if !c.NewlineBefore() {
			c.Leading = newlineTrivia(closing.Span)
		}
		out = append(out, c)
	}
	return out
}
