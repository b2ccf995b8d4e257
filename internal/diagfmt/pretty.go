package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rmspp/internal/diag"
	"rmspp/internal/source"
)

type palette struct {
	err, warn, info, note, loc, gutter, caret *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		loc:    mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() в порядке добавления.
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	PrettyItems(w, bag.Items(), fs, opts)
}

// PrettyItems is Pretty over a plain slice.
func PrettyItems(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i := range items {
		d := &items[i]
		start, _ := fs.Resolve(d.Primary)
		f := fs.Get(d.Primary.File)
		fmt.Fprintf(w, "%s: %s %s\n",
			p.loc.Sprintf("%s:%d:%d", displayPath(fs, f, opts.PathMode), start.Line, start.Col),
			p.severity(d.Severity).Sprintf("%s %s", d.Severity, d.Code.ID()),
			d.Message)
		snippet(w, fs, d.Primary, opts.Context, p)

		// заметки таймингов длинные и машинные, печатаем только по запросу
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			ns, _ := fs.Resolve(n.Span)
			nf := fs.Get(n.Span.File)
			fmt.Fprintf(w, "  %s %s: %s\n",
				p.note.Sprint("note:"),
				p.loc.Sprintf("%s:%d:%d", displayPath(fs, nf, opts.PathMode), ns.Line, ns.Col),
				n.Msg)
			snippet(w, fs, n.Span, 0, p)
		}
	}
}

// snippet prints the primary line with up to ctx lines around it and
// underlines span. Multi-line spans are underlined to the end of the
// first line.
func snippet(w io.Writer, fs *source.FileSet, span source.Span, ctx int8, p palette) {
	f := fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(span)
	first := start.Line
	if ctx > 0 && uint32(ctx) < first {
		first -= uint32(ctx)
	} else if ctx > 0 {
		first = 1
	}
	last := start.Line + uint32(max(ctx, 0))
	width := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		if ln > uint32(len(f.LineIdx))+1 {
			break
		}
		text := f.GetLine(ln)
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", width, ln), text)
		if ln != start.Line {
			continue
		}
		endCol := uint32(len(text)) + 1
		if end.Line == start.Line {
			endCol = end.Col
		}
		pad, marks := underline(text, start.Col, endCol)
		fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", width, ""), pad, p.caret.Sprint(marks))
	}
}

// underline returns the indentation and the ^~~ marks for columns
// [startCol, endCol) of line. Columns are 1-based byte offsets; widths are
// measured in terminal cells so wide runes line up.
func underline(line string, startCol, endCol uint32) (string, string) {
	s := min(int(startCol)-1, len(line))
	e := min(max(int(endCol)-1, s), len(line))

	var pad strings.Builder
	for _, r := range line[:s] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	n := runewidth.StringWidth(line[s:e])
	if n < 1 {
		return pad.String(), "^"
	}
	return pad.String(), "^" + strings.Repeat("~", n-1)
}
