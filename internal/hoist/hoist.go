// Package hoist moves every rnd(...) expression of an expanded document to
// a #const declaration at the top of the document, so truncated output
// still shows which random values were in effect.
package hoist

import (
	"strconv"

	"rmspp/internal/block"
	"rmspp/internal/source"
	"rmspp/internal/symbols"
	"rmspp/internal/token"
)

// DefaultPrefix is prepended to the counter of generated constant names.
const DefaultPrefix = "C"

// Options configure the hoister.
type Options struct {
	// Prefix of generated names (C1, C2, ...). Empty means DefaultPrefix.
	Prefix string
}

// Hoist rewrites every rnd(...) occurrence in root to a fresh constant and
// declares the constants, in first-seen order, in a Literal inserted before
// the body. A line "#const NAME rnd(...)" is already a hoisted declaration
// and is left as it is. Hoist returns the number of generated constants.
//
// root must already be expanded: only Header and Literal children are
// expected.
func Hoist(root *block.Block, table *symbols.Table, opts Options) int {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	h := &hoister{prefix: prefix, used: usedNames(root, table)}

	for _, b := range root.Children {
		if b.Kind == block.Literal {
			b.Tokens = h.rewrite(b.Tokens)
		}
	}
	if len(h.decls) == 0 {
		return 0
	}

	// тело должно начинаться с новой строки после объявлений
	for _, b := range root.Children {
		if b.Kind != block.Literal || len(b.Tokens) == 0 {
			continue
		}
		first := &b.Tokens[0]
		if !first.NewlineBefore() {
			first.Leading = append([]token.Trivia{newline(first.Span)}, first.Leading...)
		}
		break
	}

	decls := block.NewLiteral(h.decls)
	root.Children = append([]*block.Block{decls}, root.Children...)
	return h.count
}

type hoister struct {
	prefix string
	used   map[string]struct{}
	next   int
	count  int
	decls  []token.Token
}

func usedNames(root *block.Block, table *symbols.Table) map[string]struct{} {
	used := make(map[string]struct{})
	if table != nil {
		for _, name := range table.Names() {
			used[name] = struct{}{}
		}
	}
	for _, tok := range block.Flatten(root) {
		if tok.Kind == token.Ident {
			used[tok.Text] = struct{}{}
		}
	}
	return used
}

// fresh returns the next unused name. Names the document already uses are
// skipped: with C2 declared by the script the sequence is C1, C3, C4.
func (h *hoister) fresh() string {
	for {
		h.next++
		name := h.prefix + strconv.Itoa(h.next)
		if _, taken := h.used[name]; !taken {
			h.used[name] = struct{}{}
			return name
		}
	}
}

func (h *hoister) rewrite(toks []token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if isHoistedDecl(toks, i) {
			end := lineEnd(toks, i)
			out = append(out, toks[i:end]...)
			i = end - 1
			continue
		}
		if !isRnd(toks, i) {
			out = append(out, t)
			continue
		}
		end, ok := callEnd(toks, i)
		if !ok {
			out = append(out, t)
			continue
		}
		name := h.fresh()
		h.declare(name, toks[i:end])
		ref := token.Synth(token.Ident, name, t.Span.Cover(toks[end-1].Span))
		ref.Leading = t.Leading
		out = append(out, ref)
		i = end - 1
	}
	return out
}

// declare appends "#const NAME rnd(...)" to the declaration block.
func (h *hoister) declare(name string, call []token.Token) {
	sp := call[0].Span.Cover(call[len(call)-1].Span)
	kw := token.Synth(token.Directive, "#const", sp)
	if len(h.decls) > 0 {
		kw.Leading = []token.Trivia{newline(sp)}
	}
	id := token.Synth(token.Ident, name, sp)
	id.Leading = []token.Trivia{space(sp)}
	value := token.CloneTokens(call)
	value[0].Leading = []token.Trivia{space(sp)}

	h.decls = append(h.decls, kw, id)
	h.decls = append(h.decls, value...)
	h.count++
}

func isRnd(toks []token.Token, i int) bool {
	return toks[i].Kind == token.Ident && toks[i].Text == "rnd" &&
		i+1 < len(toks) && toks[i+1].Kind == token.LParen && !toks[i+1].NewlineBefore()
}

// isHoistedDecl matches "#const NAME rnd(" on one line.
func isHoistedDecl(toks []token.Token, i int) bool {
	if toks[i].Kind != token.Directive || toks[i].DirectiveName() != "CONST" {
		return false
	}
	if i+2 >= len(toks) || toks[i+1].Kind != token.Ident || toks[i+1].NewlineBefore() {
		return false
	}
	return !toks[i+2].NewlineBefore() && isRnd(toks, i+2)
}

// callEnd returns the index after the ')' that closes the call at toks[i].
// Calls never span lines.
func callEnd(toks []token.Token, i int) (int, bool) {
	depth := 0
	for k := i + 1; k < len(toks); k++ {
		t := toks[k]
		if t.Kind == token.EOF || (k > i+1 && t.NewlineBefore()) {
			return 0, false
		}
		switch t.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return k + 1, true
			}
		}
	}
	return 0, false
}

func lineEnd(toks []token.Token, i int) int {
	k := i + 1
	for k < len(toks) && toks[k].Kind != token.EOF && !toks[k].NewlineBefore() {
		k++
	}
	return k
}

func newline(sp source.Span) token.Trivia {
	return token.Trivia{Kind: token.TriviaNewline, Span: source.Span{File: sp.File, Start: sp.Start, End: sp.Start}, Text: "\n"}
}

func space(sp source.Span) token.Trivia {
	return token.Trivia{Kind: token.TriviaSpace, Span: source.Span{File: sp.File, Start: sp.Start, End: sp.Start}, Text: " "}
}
