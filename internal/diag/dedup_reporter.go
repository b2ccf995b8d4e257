package diag

import "rmspp/internal/source"

type reportKey struct {
	code Code
	sev  Severity
	span source.Span
	msg  string
}

// DedupReporter drops a diagnostic that was already reported with the same
// code, severity, primary span and message. Tokens cloned by #REPEAT keep
// the span of the original, so an error inside #REPEAT(8) arrives eight
// times and is shown once. Notes are not part of the key.
type DedupReporter struct {
	next Reporter
	seen map[reportKey]struct{}
}

// NewDedupReporter wraps next. A nil next swallows everything.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[reportKey]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := reportKey{code: code, sev: sev, span: primary, msg: msg}
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}
