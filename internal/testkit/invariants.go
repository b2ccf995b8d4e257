package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"rmspp/internal/source"
	"rmspp/internal/token"
)

// CheckTokenCoverage verifies that a lexed stream covers the file with no gaps:
//  1. trivia and tokens appear in offset order, each starting where the
//     previous one ended
//  2. every Text equals the source slice of its Span
//  3. the stream ends with EOF positioned at the end of the content
func CheckTokenCoverage(toks []token.Token, sf *source.File) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	if len(toks) == 0 {
		return fmt.Errorf("empty token stream")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var off uint32
	check := func(what string, sp source.Span, text string) error {
		if sp.File != sf.ID {
			return fmt.Errorf("%s %q: file mismatch: got=%d want=%d", what, text, sp.File, sf.ID)
		}
		if sp.Start != off {
			return fmt.Errorf("%s %q: gap or overlap at %d (span %v)", what, text, off, sp)
		}
		if sp.End < sp.Start || sp.End > lenContent {
			return fmt.Errorf("%s %q: span %v out of bounds", what, text, sp)
		}
		if got := sf.Text(sp); got != text {
			return fmt.Errorf("%s: text %q does not match source %q", what, text, got)
		}
		off = sp.End
		return nil
	}

	for i, tok := range toks {
		for _, tv := range tok.Leading {
			if err := check("trivia "+tv.Kind.String(), tv.Span, tv.Text); err != nil {
				return err
			}
		}
		if err := check("token "+tok.Kind.String(), tok.Span, tok.Text); err != nil {
			return err
		}
		if tok.Kind == token.EOF && i != len(toks)-1 {
			return fmt.Errorf("EOF at position %d of %d", i, len(toks))
		}
	}
	if last := toks[len(toks)-1]; last.Kind != token.EOF {
		return fmt.Errorf("stream does not end with EOF: %v", last.Kind)
	}
	if off != lenContent {
		return fmt.Errorf("stream ends at %d, content has %d bytes", off, lenContent)
	}
	return nil
}

// Render concatenates leading trivia and token text.
func Render(toks []token.Token) string {
	n := 0
	for _, t := range toks {
		n += len(t.Text) + len(t.LeadingText())
	}
	buf := make([]byte, 0, n)
	for _, t := range toks {
		buf = append(buf, t.LeadingText()...)
		buf = append(buf, t.Text...)
	}
	return string(buf)
}
