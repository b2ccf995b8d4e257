package symbols

import (
	"math"
	"strconv"
	"strings"

	"rmspp/internal/diag"
	"rmspp/internal/source"
	"rmspp/internal/token"
)

// outcome of evaluating one constant definition.
type outcome uint8

const (
	outValue  outcome = iota // integer value known
	outOpaque                // passed through as written
	outFailed                // an error has been reported
)

type evalState uint8

const (
	stateUnvisited evalState = iota
	stateInProgress
	stateDone
)

// evaluator folds constant definitions with a depth-first walk over
// references. The path stack is used to name every member of a cycle.
type evaluator struct {
	table    *Table
	reporter diag.Reporter
	state    map[SymbolID]evalState
	path     []SymbolID
}

func newEvaluator(t *Table, r diag.Reporter) *evaluator {
	return &evaluator{table: t, reporter: r, state: make(map[SymbolID]evalState)}
}

// constant evaluates the symbol once and records the result in its flags.
func (e *evaluator) constant(id SymbolID) outcome {
	sym := e.table.Symbols.Get(id)
	switch e.state[id] {
	case stateDone:
		return symbolOutcome(sym)
	case stateInProgress:
		e.reportCycle(id)
		return outFailed
	}

	e.state[id] = stateInProgress
	e.path = append(e.path, id)
	v, out := e.eval(sym.Expr, sym.Decl)
	e.path = e.path[:len(e.path)-1]
	e.state[id] = stateDone

	// член цикла мог быть помечен, пока мы были ниже по стеку
	if sym.Flags&SymbolFlagFailed != 0 {
		return outFailed
	}
	switch out {
	case outValue:
		sym.Value = v
		sym.Flags |= SymbolFlagEvaluated
	case outOpaque:
		sym.Flags |= SymbolFlagOpaque
	default:
		sym.Flags |= SymbolFlagFailed
	}
	return out
}

func symbolOutcome(sym *Symbol) outcome {
	switch {
	case sym.Flags&SymbolFlagFailed != 0:
		return outFailed
	case sym.Evaluated():
		return outValue
	default:
		return outOpaque
	}
}

func (e *evaluator) reportCycle(id SymbolID) {
	start := 0
	for i, p := range e.path {
		if p == id {
			start = i
			break
		}
	}
	cycle := e.path[start:]
	names := make([]string, 0, len(cycle)+1)
	for _, p := range cycle {
		names = append(names, e.table.Symbols.Get(p).Name)
	}
	head := e.table.Symbols.Get(id)
	names = append(names, head.Name)

	b := diag.ReportErrorf(e.reporter, diag.SymCyclicConstant, head.Decl,
		"cyclic constant definition: %s", strings.Join(names, " -> "))
	for _, p := range cycle {
		sym := e.table.Symbols.Get(p)
		sym.Flags |= SymbolFlagFailed
		if p != id {
			b.WithNote(sym.Decl, sym.Name+" is declared here")
		}
	}
	b.Emit()
}

// eval folds a definition. A lone non-integer operand (rnd(1,5), an engine
// name, a float) is opaque; anything with a top-level operator must fold.
func (e *evaluator) eval(expr []token.Token, decl source.Span) (int64, outcome) {
	if len(expr) == 0 {
		diag.ReportError(e.reporter, diag.SymBadConstExpr, decl, "constant has no value").Emit()
		return 0, outFailed
	}
	if !isArithmetic(expr) {
		return e.operand(expr)
	}
	p := &exprParser{e: e, toks: expr}
	v, ok := p.add()
	if !ok {
		return 0, outFailed
	}
	if p.pos < len(p.toks) {
		t := p.toks[p.pos]
		diag.ReportErrorf(e.reporter, diag.SymBadConstExpr, t.Span,
			"unexpected %q in constant expression", t.Text).Emit()
		return 0, outFailed
	}
	return v, outValue
}

// operand handles a definition without top-level operators.
func (e *evaluator) operand(expr []token.Token) (int64, outcome) {
	if len(expr) != 1 {
		return 0, outOpaque
	}
	t := expr[0]
	switch t.Kind {
	case token.Number:
		if v, err := strconv.ParseInt(t.Text, 10, 64); err == nil {
			return v, outValue
		}
		return 0, outOpaque
	case token.Ident:
		id, ok := e.table.consts[t.Text]
		if !ok {
			return 0, outOpaque
		}
		out := e.constant(id)
		return e.table.Symbols.Get(id).Value, out
	default:
		return 0, outOpaque
	}
}

// isArithmetic reports whether expr has an operator or a bare parenthesized
// group at the top level. Call arguments such as rnd(-1,5) do not count.
func isArithmetic(expr []token.Token) bool {
	for i := 0; i < len(expr); i++ {
		t := expr[i]
		switch t.Kind {
		case token.Plus, token.Minus, token.Star, token.Slash, token.Percent:
			return true
		case token.LParen:
			if i == 0 || expr[i-1].Kind != token.Ident {
				return true
			}
			i = skipGroup(expr, i)
		}
	}
	return false
}

// skipGroup returns the index of the ')' matching expr[i].
func skipGroup(expr []token.Token, i int) int {
	depth := 0
	for ; i < len(expr); i++ {
		switch expr[i].Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(expr) - 1
}

// exprParser - рекурсивный спуск:
//
//	Add  = Mul { ('+' | '-') Mul }
//	Mul  = Unary { ('*' | '/' | '%') Unary }
//	Unary = '-' Unary | Term
//	Term = integer | const | '(' Add ')'
type exprParser struct {
	e    *evaluator
	toks []token.Token
	pos  int
}

func (p *exprParser) peek() (token.Token, bool) {
	if p.pos >= len(p.toks) {
		return token.Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *exprParser) end() source.Span {
	return p.toks[len(p.toks)-1].Span
}

func (p *exprParser) add() (int64, bool) {
	sum, ok := p.mul()
	if !ok {
		return 0, false
	}
	for t, more := p.peek(); more && (t.Kind == token.Plus || t.Kind == token.Minus); t, more = p.peek() {
		p.pos++
		rhs, ok := p.mul()
		if !ok {
			return 0, false
		}
		op := checkedAdd
		if t.Kind == token.Minus {
			op = checkedSub
		}
		if sum, ok = op(sum, rhs); !ok {
			return 0, p.overflow(t)
		}
	}
	return sum, true
}

func (p *exprParser) mul() (int64, bool) {
	acc, ok := p.unary()
	if !ok {
		return 0, false
	}
	for t, more := p.peek(); more && (t.Kind == token.Star || t.Kind == token.Slash || t.Kind == token.Percent); t, more = p.peek() {
		p.pos++
		rhs, ok := p.unary()
		if !ok {
			return 0, false
		}
		switch t.Kind {
		case token.Star:
			if acc, ok = checkedMul(acc, rhs); !ok {
				return 0, p.overflow(t)
			}
		default:
			if rhs == 0 {
				diag.ReportError(p.e.reporter, diag.SymDivisionByZero, t.Span,
					"division by zero in constant expression").Emit()
				return 0, false
			}
			if acc == math.MinInt64 && rhs == -1 {
				return 0, p.overflow(t)
			}
			if t.Kind == token.Slash {
				acc /= rhs
			} else {
				acc %= rhs
			}
		}
	}
	return acc, true
}

func (p *exprParser) unary() (int64, bool) {
	if t, ok := p.peek(); ok && t.Kind == token.Minus {
		p.pos++
		v, ok := p.unary()
		if !ok {
			return 0, false
		}
		if v == math.MinInt64 {
			return 0, p.overflow(t)
		}
		return -v, true
	}
	return p.term()
}

// overflow reports an operation whose result does not fit in int64.
// Always returns false.
func (p *exprParser) overflow(op token.Token) bool {
	diag.ReportError(p.e.reporter, diag.SymBadConstExpr, op.Span,
		"constant expression overflows").Emit()
	return false
}

func checkedAdd(a, b int64) (int64, bool) {
	c := a + b
	return c, (a^c)&(b^c) >= 0
}

func checkedSub(a, b int64) (int64, bool) {
	c := a - b
	return c, (a^b)&(a^c) >= 0
}

func checkedMul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	return c, c/b == a
}

func (p *exprParser) term() (int64, bool) {
	t, ok := p.peek()
	if !ok {
		diag.ReportError(p.e.reporter, diag.SymBadConstExpr, p.end(),
			"constant expression ends unexpectedly").Emit()
		return 0, false
	}
	p.pos++
	switch t.Kind {
	case token.Number:
		v, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			diag.ReportErrorf(p.e.reporter, diag.SymBadConstExpr, t.Span,
				"%s is not an integer", t.Text).Emit()
			return 0, false
		}
		return v, true

	case token.Ident:
		if next, ok := p.peek(); ok && next.Kind == token.LParen {
			diag.ReportErrorf(p.e.reporter, diag.SymBadConstExpr, t.Span,
				"%s(...) cannot be used in arithmetic", t.Text).Emit()
			return 0, false
		}
		id, declared := p.e.table.consts[t.Text]
		if !declared {
			diag.ReportErrorf(p.e.reporter, diag.SymUnresolved, t.Span,
				"unresolved name %s", t.Text).Emit()
			return 0, false
		}
		switch p.e.constant(id) {
		case outValue:
			return p.e.table.Symbols.Get(id).Value, true
		case outOpaque:
			sym := p.e.table.Symbols.Get(id)
			diag.ReportErrorf(p.e.reporter, diag.SymConstantIsOpaque, t.Span,
				"constant %s has no compile-time integer value", t.Text).
				WithNote(sym.Decl, t.Text+" is declared here").
				Emit()
			return 0, false
		default:
			return 0, false
		}

	case token.LParen:
		v, ok := p.add()
		if !ok {
			return 0, false
		}
		if c, more := p.peek(); !more || c.Kind != token.RParen {
			diag.ReportError(p.e.reporter, diag.SymBadConstExpr, t.Span,
				"unclosed parenthesis in constant expression").Emit()
			return 0, false
		}
		p.pos++
		return v, true

	default:
		diag.ReportErrorf(p.e.reporter, diag.SymBadConstExpr, t.Span,
			"unexpected %q in constant expression", t.Text).Emit()
		return 0, false
	}
}
