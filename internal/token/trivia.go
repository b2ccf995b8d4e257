package token

import "rmspp/internal/source"

// TriviaKind classifies non-significant source text.
type TriviaKind uint8

const (
	TriviaSpace TriviaKind = iota // spaces and tabs
	TriviaNewline                 // one or more '\n'
	TriviaLineComment             // // ... up to '\n'
	TriviaBlockComment            // /* ... */, nested
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaSpace:
		return "Space"
	case TriviaNewline:
		return "Newline"
	case TriviaLineComment:
		return "LineComment"
	case TriviaBlockComment:
		return "BlockComment"
	default:
		return "Trivia(?)"
	}
}

// Trivia is whitespace or a comment preceding a token.
type Trivia struct {
	Kind TriviaKind
	Span source.Span
	Text string
}

// IsComment reports whether the trivia is a line or block comment.
func (t Trivia) IsComment() bool {
	return t.Kind == TriviaLineComment || t.Kind == TriviaBlockComment
}

// HasNewline reports whether the trivia spans a line break. A line comment
// never contains its terminating '\n'; a block comment may.
func (t Trivia) HasNewline() bool {
	switch t.Kind {
	case TriviaNewline:
		return true
	case TriviaBlockComment:
		for i := 0; i < len(t.Text); i++ {
			if t.Text[i] == '\n' {
				return true
			}
		}
	}
	return false
}
