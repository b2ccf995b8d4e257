package token

// DirectiveKind classifies directives that the preprocessor consumes.
// Everything else (#const, #define, #include_drs, ...) is native and is
// passed through to the engine.
type DirectiveKind uint8

const (
	DirNative DirectiveKind = iota
	DirRepeat
	DirEndRepeat
	DirHeaderStart
	DirHeaderEnd
	DirBreak
	DirEveryPlayer // #SET_PLACE_FOR_EVERY_PLAYER[(n)]
	DirPlace8      // #PLACE8
)

var directives = map[string]DirectiveKind{
	"REPEAT":                     DirRepeat,
	"END_REPEAT":                 DirEndRepeat,
	"HEADER_START":               DirHeaderStart,
	"HEADER_END":                 DirHeaderEnd,
	"BREAK":                      DirBreak,
	"SET_PLACE_FOR_EVERY_PLAYER": DirEveryPlayer,
	"PLACE8":                     DirPlace8,
}

// LookupDirective classifies an upper-cased directive name.
func LookupDirective(name string) DirectiveKind {
	if k, ok := directives[name]; ok {
		return k
	}
	return DirNative
}

// Directive returns the directive kind of t (DirNative for non-directives too).
func (t Token) Directive() DirectiveKind {
	return LookupDirective(t.DirectiveName())
}

// IsNativeDirective reports whether name is a directive understood by the
// game engine itself.
func IsNativeDirective(name string) bool {
	switch name {
	case "CONST", "DEFINE", "UNDEFINE", "INCLUDE", "INCLUDE_DRS", "INCLUDEXS":
		return true
	}
	return false
}
