// Package emit serializes a processed document.
package emit

import (
	"strings"

	"rmspp/internal/block"
	"rmspp/internal/diag"
	"rmspp/internal/lexer"
	"rmspp/internal/source"
	"rmspp/internal/token"
)

// Emit writes the header blocks, in source order, followed by the body.
// A header whose text is not already a sequence of comments is wrapped in
// a block comment. Elided placeholders print nothing; the output has no
// trailing newline.
func Emit(root *block.Block) string {
	var b strings.Builder
	for _, h := range block.Headers(root) {
		text := HeaderText(h.Raw)
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
	}

	body := Body(root)
	if body != "" {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(body)
	}
	return b.String()
}

// Body renders the non-header tokens of root with their leading trivia.
func Body(root *block.Block) string {
	var b strings.Builder
	for _, t := range block.Flatten(root) {
		for _, tv := range t.Leading {
			b.WriteString(tv.Text)
		}
		b.WriteString(t.Text)
	}
	return strings.TrimRight(strings.TrimLeft(b.String(), "\n"), " \t\n")
}

// HeaderText trims raw and wraps it in /* */ unless it only holds comments.
// Comment delimiters inside wrapped text are split so the wrapper cannot
// close early or nest.
func HeaderText(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" || onlyComments(text) {
		return text
	}
	return "/* " + delimiterEscaper.Replace(text) + " */"
}

var delimiterEscaper = strings.NewReplacer("*/", "* /", "/*", "/ *")

func onlyComments(text string) bool {
	f := &source.File{Path: "<header>", Content: []byte(text)}
	rep := &diag.CountingReporter{}
	toks := lexer.Tokenize(f, lexer.Options{Reporter: rep})
	return rep.Errors == 0 && len(toks) == 1 && toks[0].Kind == token.EOF
}
