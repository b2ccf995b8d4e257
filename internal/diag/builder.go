package diag

import "rmspp/internal/source"

// New builds a diagnostic without notes. Stages normally go through a
// Reporter; New is for code that fills a Bag directly (timings, tests).
func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

// NewError is New with SevError.
func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns a copy of d with one more secondary location, e.g. the
// opening #REPEAT of an unclosed block.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
