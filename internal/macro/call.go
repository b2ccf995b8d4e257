package macro

import (
	"strconv"

	"rmspp/internal/diag"
	"rmspp/internal/source"
	"rmspp/internal/token"
)

// arg is one evaluated macro argument.
type arg struct {
	Value float64
	Span  source.Span
}

// call is a parsed macro invocation: #NAME(args) [{ attrs }].
type call struct {
	Open  token.Token
	Args  []arg
	Attrs []token.Token
	Span  source.Span
}

// parseArgs reads "(a, b, ...)" right after toks[i]. It returns the index
// after the closing parenthesis. hasParens is false when no '(' follows on
// the same line.
func (x *expander) parseArgs(toks []token.Token, i int) (args []arg, next int, hasParens, ok bool) {
	open := toks[i]
	j := i + 1
	if j >= len(toks) || toks[j].Kind != token.LParen || toks[j].NewlineBefore() {
		return nil, i + 1, false, true
	}

	var group []token.Token
	ok = true
	depth := 0
	for k := j; k < len(toks); k++ {
		t := toks[k]
		if t.Kind == token.EOF || (k > j && t.NewlineBefore()) {
			break
		}
		switch {
		case t.Kind == token.LParen:
			depth++
			if depth == 1 {
				continue
			}
		case t.Kind == token.RParen:
			depth--
			if depth == 0 {
				if len(group) > 0 || len(args) > 0 {
					a, good := x.evalArg(open, group)
					ok = ok && good
					args = append(args, a)
				}
				return args, k + 1, true, ok
			}
		case t.Kind == token.Comma && depth == 1:
			a, good := x.evalArg(open, group)
			ok = ok && good
			args = append(args, a)
			group = nil
			continue
		}
		group = append(group, t)
	}
	diag.ReportError(x.reporter, diag.MacBadArgument, open.Span.Cover(toks[j].Span),
		"unclosed argument list of "+open.Text).Emit()
	return nil, j + 1, true, false
}

// evalArg accepts a number, a negated number or a constant with a known
// integer value.
func (x *expander) evalArg(open token.Token, group []token.Token) (arg, bool) {
	if len(group) == 0 {
		diag.ReportError(x.reporter, diag.MacBadArgument, open.Span,
			"empty argument in "+open.Text).Emit()
		return arg{}, false
	}
	sp := group[0].Span.Cover(group[len(group)-1].Span)
	sign := 1.0
	if len(group) == 2 && group[0].Kind == token.Minus {
		sign = -1
		group = group[1:]
	}
	if len(group) == 1 {
		t := group[0]
		switch t.Kind {
		case token.Number:
			if v, err := strconv.ParseFloat(t.Text, 64); err == nil {
				return arg{Value: sign * v, Span: sp}, true
			}
		case token.Ident:
			if v, ok := x.table.IntValue(t.Text); ok {
				return arg{Value: sign * float64(v), Span: sp}, true
			}
			if x.table.Const(t.Text) == nil {
				diag.ReportErrorf(x.reporter, diag.SymUnresolved, t.Span,
					"unresolved name %s", t.Text).Emit()
				return arg{}, false
			}
			diag.ReportErrorf(x.reporter, diag.MacBadArgument, t.Span,
				"constant %s has no compile-time integer value", t.Text).Emit()
			return arg{}, false
		}
	}
	diag.ReportError(x.reporter, diag.MacBadArgument, sp,
		"macro arguments must be numbers or constants").Emit()
	return arg{}, false
}

// parseAttrs reads an optional "{ ... }" block at toks[i]. It returns the
// tokens between the braces and the index after '}'.
func parseAttrs(toks []token.Token, i int) (attrs []token.Token, next int, ok bool) {
	if i >= len(toks) || toks[i].Kind != token.LBrace {
		return nil, i, true
	}
	depth := 0
	for k := i; k < len(toks); k++ {
		switch toks[k].Kind {
		case token.LBrace:
			depth++
		case token.RBrace:
			depth--
			if depth == 0 {
				return toks[i+1 : k], k + 1, true
			}
		case token.EOF:
			return nil, i, false
		}
	}
	return nil, i, false
}
