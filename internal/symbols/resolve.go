package symbols

import (
	"strconv"

	"fortio.org/safecast"

	"rmspp/internal/block"
	"rmspp/internal/diag"
	"rmspp/internal/token"
)

// constDecl locates one "#const NAME expr" inside a Literal block.
type constDecl struct {
	blk       *block.Block
	at        int // index of the #const directive
	exprStart int
	exprEnd   int
	id        SymbolID // NoSymbolID for a duplicate
}

// Resolve folds constants, assigns named-area IDs and resolves #REPEAT
// counts. All rewriting happens in place on the tree.
func Resolve(root *block.Block, table *Table, reporter diag.Reporter) {
	r := &resolver{table: table, reporter: reporter}
	decls := r.collectConsts(root)
	r.foldConsts(decls)
	r.resolveAreas(root)
	r.resolveCounts(root)
}

type resolver struct {
	table    *Table
	reporter diag.Reporter
}

func literals(root *block.Block, fn func(*block.Block)) {
	block.Walk(root, func(b *block.Block) bool {
		if b.Kind == block.Literal {
			fn(b)
		}
		return true
	})
}

// lineEnd returns the index of the first token after i that starts a new
// line (or is EOF).
func lineEnd(toks []token.Token, i int) int {
	j := i + 1
	for j < len(toks) && toks[j].Kind != token.EOF && !toks[j].NewlineBefore() {
		j++
	}
	return j
}

func (r *resolver) collectConsts(root *block.Block) []constDecl {
	var decls []constDecl
	literals(root, func(b *block.Block) {
		toks := b.Tokens
		for i := 0; i < len(toks); i++ {
			t := toks[i]
			if t.Kind != token.Directive || t.DirectiveName() != "CONST" {
				continue
			}
			end := lineEnd(toks, i)
			if i+1 >= end || toks[i+1].Kind != token.Ident {
				diag.ReportError(r.reporter, diag.SymBadConstExpr, t.Span,
					t.Text+" requires a name").Emit()
				i = end - 1
				continue
			}
			name := toks[i+1]
			d := constDecl{blk: b, at: i, exprStart: i + 2, exprEnd: end}
			sym := Symbol{
				Name: name.Text,
				Decl: t.Span.Cover(name.Span),
				Expr: toks[i+2 : end],
			}
			id, isNew := r.table.DeclareConst(sym)
			if isNew {
				d.id = id
			} else {
				first := r.table.Symbols.Get(id)
				diag.ReportWarning(r.reporter, diag.SymDuplicateConstant, sym.Decl,
					"constant "+name.Text+" is already declared; the first declaration wins").
					WithNote(first.Decl, "first declared here").
					Emit()
			}
			decls = append(decls, d)
			i = end - 1
		}
	})
	return decls
}

// foldConsts evaluates every declaration and rewrites arithmetic ones to
// their value. Rewrites go back to front so earlier indices stay valid.
func (r *resolver) foldConsts(decls []constDecl) {
	e := newEvaluator(r.table, r.reporter)
	values := make([]int64, len(decls))
	outs := make([]outcome, len(decls))
	for i, d := range decls {
		if d.id.IsValid() {
			outs[i] = e.constant(d.id)
			values[i] = r.table.Symbols.Get(d.id).Value
			continue
		}
		expr := d.blk.Tokens[d.exprStart:d.exprEnd]
		values[i], outs[i] = e.eval(expr, d.blk.Tokens[d.at].Span)
	}

	for i := len(decls) - 1; i >= 0; i-- {
		d := decls[i]
		if outs[i] != outValue {
			continue
		}
		expr := d.blk.Tokens[d.exprStart:d.exprEnd]
		text := strconv.FormatInt(values[i], 10)
		if len(expr) == 1 && expr[0].Text == text {
			continue
		}
		num := token.Synth(token.Number, text, expr[0].Span.Cover(expr[len(expr)-1].Span))
		num.Leading = expr[0].Leading
		d.blk.Tokens = splice(d.blk.Tokens, d.exprStart, d.exprEnd, num)
	}
}

func splice(toks []token.Token, from, to int, repl ...token.Token) []token.Token {
	out := make([]token.Token, 0, len(toks)-(to-from)+len(repl))
	out = append(out, toks[:from]...)
	out = append(out, repl...)
	out = append(out, toks[to:]...)
	return out
}

// Позиция имени области среди аргументов команды (1-based).
var areaDecls = map[string]int{
	"create_actor_area": 3,
	"actor_area":        1,
}

var areaRefs = map[string]bool{
	"avoid_actor_area":       true,
	"actor_area_to_place_in": true,
	"actor_area_match":       true,
}

func (r *resolver) resolveAreas(root *block.Block) {
	literals(root, func(b *block.Block) {
		toks := b.Tokens
		for i, t := range toks {
			if t.Kind != token.Ident {
				continue
			}
			if pos, ok := areaDecls[t.Text]; ok {
				if j, ok := argIndex(toks, i, pos); ok {
					r.declareArea(toks, j)
				}
				continue
			}
			if areaRefs[t.Text] {
				if j, ok := argIndex(toks, i, 1); ok {
					r.referenceArea(toks, j)
				}
			}
		}
	})
}

// argIndex finds the n-th argument of the command at toks[i] on the same line.
func argIndex(toks []token.Token, i, n int) (int, bool) {
	j := i + n
	if j >= lineEnd(toks, i) {
		return 0, false
	}
	return j, true
}

func (r *resolver) declareArea(toks []token.Token, j int) {
	arg := toks[j]
	if arg.Kind != token.Ident {
		return
	}
	if c := r.table.Const(arg.Text); c != nil {
		diag.ReportWarning(r.reporter, diag.SymAreaNameIsConstant, arg.Span,
			arg.Text+" is a constant; it is used as the area ID").
			WithNote(c.Decl, arg.Text+" is declared here").
			Emit()
		return
	}
	id, _ := r.table.DeclareArea(arg.Text, arg.Span)
	toks[j] = areaToken(arg, id)
}

func (r *resolver) referenceArea(toks []token.Token, j int) {
	arg := toks[j]
	if arg.Kind != token.Ident || r.table.Const(arg.Text) != nil {
		return
	}
	area := r.table.Area(arg.Text)
	if area == nil {
		diag.ReportErrorf(r.reporter, diag.SymUnresolved, arg.Span,
			"unresolved named area %s", arg.Text).Emit()
		return
	}
	toks[j] = areaToken(arg, area.Value)
}

func areaToken(name token.Token, id int64) token.Token {
	t := token.Synth(token.Number, strconv.FormatInt(id, 10), name.Span)
	t.Leading = name.Leading
	return t
}

// resolveCounts fills Block.Count of every well-formed #REPEAT.
func (r *resolver) resolveCounts(root *block.Block) {
	block.Walk(root, func(b *block.Block) bool {
		if b.Kind == block.Repeat && !b.Malformed {
			b.Count = r.count(b)
		}
		return true
	})
}

func (r *resolver) count(b *block.Block) int {
	bad := func(msg string) int {
		sp := b.Open.Span
		if len(b.Args) > 0 {
			sp = b.Args[0].Span.Cover(b.Args[len(b.Args)-1].Span)
		}
		diag.ReportError(r.reporter, diag.MacBadArgument, sp, msg).Emit()
		return -1
	}

	switch {
	case len(b.Args) == 0:
		return bad(b.Open.Text + " requires a count")
	case len(b.Args) == 2 && b.Args[0].Kind == token.Minus && b.Args[1].Kind == token.Number:
		return bad("repeat count must not be negative")
	case len(b.Args) != 1:
		return bad("repeat count must be an integer literal or a constant")
	}

	arg := b.Args[0]
	switch arg.Kind {
	case token.Number:
		n, err := strconv.Atoi(arg.Text)
		if err != nil {
			return bad("repeat count " + arg.Text + " is not an integer")
		}
		return n
	case token.Ident:
		c := r.table.Const(arg.Text)
		if c == nil {
			diag.ReportErrorf(r.reporter, diag.SymUnresolved, arg.Span,
				"unresolved name %s", arg.Text).Emit()
			return -1
		}
		if c.Flags&SymbolFlagFailed != 0 {
			return -1
		}
		if !c.Evaluated() {
			return bad("constant " + arg.Text + " has no compile-time integer value")
		}
		if c.Value <= 0 {
			return 0
		}
		n, err := safecast.Conv[int](c.Value)
		if err != nil {
			return bad("repeat count " + arg.Text + " is too large")
		}
		return n
	default:
		return bad("repeat count must be an integer literal or a constant")
	}
}
