package token

import (
	"strings"

	"rmspp/internal/source"
)

// Token represents a single source token with its location and trivia.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Leading []Trivia
}

// Synth builds a generated token attributed to span.
func Synth(kind Kind, text string, span source.Span) Token {
	return Token{Kind: kind, Span: span, Text: text}
}

// Clone returns a copy that shares no memory with t.
func (t Token) Clone() Token {
	if t.Leading != nil {
		lead := make([]Trivia, len(t.Leading))
		copy(lead, t.Leading)
		t.Leading = lead
	}
	return t
}

// CloneTokens deep-copies a token slice.
func CloneTokens(toks []Token) []Token {
	if toks == nil {
		return nil
	}
	out := make([]Token, len(toks))
	for i := range toks {
		out[i] = toks[i].Clone()
	}
	return out
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// DirectiveName returns the upper-cased directive name without '#',
// or "" if t is not a directive.
func (t Token) DirectiveName() string {
	if t.Kind != Directive || len(t.Text) < 2 {
		return ""
	}
	return strings.ToUpper(t.Text[1:])
}

// NewlineBefore reports whether any leading trivia crosses a line break.
func (t Token) NewlineBefore() bool {
	for _, tv := range t.Leading {
		if tv.HasNewline() {
			return true
		}
	}
	return false
}

// LeadingText concatenates the leading trivia text.
func (t Token) LeadingText() string {
	switch len(t.Leading) {
	case 0:
		return ""
	case 1:
		return t.Leading[0].Text
	}
	var b strings.Builder
	for _, tv := range t.Leading {
		b.WriteString(tv.Text)
	}
	return b.String()
}
