package symbols

import (
	"rmspp/internal/source"
	"rmspp/internal/token"
)

// SymbolKind classifies what a name stands for.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolConst
	SymbolArea
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolConst:
		return "const"
	case SymbolArea:
		return "area"
	default:
		return "invalid"
	}
}

// SymbolFlags encode the evaluation state of a constant.
type SymbolFlags uint8

const (
	// SymbolFlagEvaluated: Value holds the folded integer.
	SymbolFlagEvaluated SymbolFlags = 1 << iota
	// SymbolFlagOpaque: the definition is not a compile-time integer
	// (rnd(...), an engine name, a float) and is passed through as written.
	SymbolFlagOpaque
	// SymbolFlagFailed: evaluation reported an error already.
	SymbolFlagFailed
)

// Symbol is one constant or named area.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Flags SymbolFlags
	Decl  source.Span

	// Expr - токены определения константы (до конца строки).
	Expr []token.Token
	// Value is the folded constant value or the numeric ID of an area.
	Value int64
}

// Evaluated reports whether the constant has a known integer value.
func (s *Symbol) Evaluated() bool { return s.Flags&SymbolFlagEvaluated != 0 }

// Opaque reports whether the constant is passed through unevaluated.
func (s *Symbol) Opaque() bool { return s.Flags&SymbolFlagOpaque != 0 }
