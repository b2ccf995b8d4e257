package block

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"rmspp/internal/diag"
	"rmspp/internal/source"
	"rmspp/internal/token"
)

// frame - открытый блок на стеке структурера.
type frame struct {
	blk *Block
	run []token.Token // токены, ещё не упакованные в Literal
}

func (f *frame) flush() {
	if len(f.run) == 0 {
		return
	}
	f.blk.Children = append(f.blk.Children, NewLiteral(f.run))
	f.run = nil
}

type structurer struct {
	reporter diag.Reporter
	stack    []*frame
}

func (s *structurer) top() *frame { return s.stack[len(s.stack)-1] }

// Structure builds the block tree of one document from a lexed token stream.
// Consumed markers are replaced by Elided tokens, so Flatten of the result
// keeps the line structure of the input.
func Structure(file *source.File, toks []token.Token, reporter diag.Reporter) *Block {
	root := &Block{Kind: Root, Count: -1}
	if file != nil {
		end, err := safecast.Conv[uint32](len(file.Content))
		if err != nil {
			panic(fmt.Errorf("file length overflow: %w", err))
		}
		root.Span = source.Span{File: file.ID, End: end}
	}
	s := &structurer{reporter: reporter, stack: []*frame{{blk: root}}}

	var eof token.Token
	hasEOF := false
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == token.EOF {
			eof, hasEOF = t, true
			break
		}
		if t.Kind != token.Directive {
			s.top().run = append(s.top().run, t)
			continue
		}
		switch t.Directive() {
		case token.DirRepeat:
			i = s.openRepeat(toks, i)
		case token.DirEndRepeat:
			s.closeRepeat(t)
		case token.DirHeaderStart:
			i = s.header(toks, i)
		case token.DirHeaderEnd:
			s.strayHeaderEnd(t)
		default:
			s.top().run = append(s.top().run, t)
		}
	}

	for len(s.stack) > 1 {
		f := s.pop()
		diag.ReportError(s.reporter, diag.StrUnclosedBlock, f.blk.Open.Span,
			f.blk.Open.Text+" is never closed").
			WithNote(eof.Span, "input ends here").
			Emit()
	}
	if hasEOF {
		s.top().run = append(s.top().run, eof)
	}
	s.top().flush()
	return root
}

func (s *structurer) pop() *frame {
	f := s.top()
	s.stack = s.stack[:len(s.stack)-1]
	f.flush()
	return f
}

// openRepeat consumes "#REPEAT(args)" starting at toks[i] and returns the
// index of the last consumed token.
func (s *structurer) openRepeat(toks []token.Token, i int) int {
	open := toks[i]
	rep := &Block{Kind: Repeat, Open: open, Span: open.Span, Count: -1}
	parent := s.top()
	parent.run = append(parent.run, Elide(open))
	parent.flush()
	parent.blk.Children = append(parent.blk.Children, rep)
	s.stack = append(s.stack, &frame{blk: rep})

	j := i + 1
	if j >= len(toks) || toks[j].Kind != token.LParen || toks[j].NewlineBefore() {
		rep.Malformed = true
		diag.ReportError(s.reporter, diag.MacBadArgument, open.Span,
			open.Text+" requires a count in parentheses").Emit()
		return i
	}
	lparen := toks[j]
	depth := 0
	for k := j; k < len(toks); k++ {
		t := toks[k]
		if t.Kind == token.EOF || (k > j && t.NewlineBefore()) {
			break
		}
		switch t.Kind {
		case token.LParen:
			depth++
			if depth == 1 {
				continue
			}
		case token.RParen:
			depth--
			if depth == 0 {
				rep.Span = open.Span.Cover(t.Span)
				return k
			}
		}
		rep.Args = append(rep.Args, t)
	}
	rep.Malformed = true
	diag.ReportError(s.reporter, diag.MacBadArgument, open.Span.Cover(lparen.Span),
		"unclosed argument list of "+open.Text).Emit()
	return j + len(rep.Args)
}

func (s *structurer) closeRepeat(t token.Token) {
	if len(s.stack) == 1 {
		diag.ReportError(s.reporter, diag.StrCloseWithoutOpen, t.Span,
			t.Text+" without a matching #REPEAT: no open block").Emit()
		s.top().run = append(s.top().run, Elide(t))
		return
	}
	f := s.pop()
	f.blk.Close = Elide(t)
	f.blk.Span = f.blk.Span.Cover(t.Span)
}

func (s *structurer) strayHeaderEnd(t token.Token) {
	if len(s.stack) == 1 {
		diag.ReportError(s.reporter, diag.StrCloseWithoutOpen, t.Span,
			t.Text+" without a matching #HEADER_START: no open block").Emit()
	} else {
		open := s.top().blk.Open
		diag.ReportError(s.reporter, diag.StrMismatchedClose, t.Span,
			t.Text+" cannot close "+open.Text).
			WithNote(open.Span, open.Text+" opened here").
			Emit()
	}
	s.top().run = append(s.top().run, Elide(t))
}

var headerStart = []byte("#HEADER_START")

// header consumes "#HEADER_START raw #HEADER_END". The lexer has already
// collected the body into one Raw token.
func (s *structurer) header(toks []token.Token, i int) int {
	open := toks[i]
	h := &Block{Kind: Header, Open: open, Span: open.Span, Count: -1}
	f := s.top()
	f.run = append(f.run, Elide(open))

	if len(s.stack) > 1 {
		enclosing := f.blk.Open
		diag.ReportError(s.reporter, diag.StrHeaderNotAtRoot, open.Span,
			open.Text+" is only allowed at the top level").
			WithNote(enclosing.Span, "inside "+enclosing.Text+" opened here").
			Emit()
	}

	j := i + 1
	if j < len(toks) && toks[j].Kind == token.Raw {
		h.Raw = toks[j].Text
		if k := indexFold([]byte(h.Raw), headerStart); k >= 0 {
			sp := toks[j].Span
			if off, err := safecast.Conv[uint32](k); err == nil {
				sp.Start += off
				sp.End = sp.Start + uint32(len(headerStart))
			}
			diag.ReportError(s.reporter, diag.StrDirectiveInHeader, sp,
				"header blocks cannot be nested").
				WithNote(open.Span, "enclosing header opened here").
				Emit()
		}
		j++
	}

	if j < len(toks) && toks[j].Kind == token.Directive && toks[j].Directive() == token.DirHeaderEnd {
		h.Span = open.Span.Cover(toks[j].Span)
		f.flush()
		f.blk.Children = append(f.blk.Children, h)
		f.run = append(f.run, Elide(toks[j]))
		return j
	}

	diag.ReportError(s.reporter, diag.StrUnclosedBlock, open.Span,
		open.Text+" is never closed").Emit()
	f.flush()
	f.blk.Children = append(f.blk.Children, h)
	return j - 1
}

func indexFold(s, sub []byte) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i] == sub[0] && bytes.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}
