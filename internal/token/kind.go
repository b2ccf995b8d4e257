package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token (e.g. unterminated string).
	Invalid Kind = iota
	// EOF marks the end of the input. It carries the trailing trivia.
	EOF

	// Ident is a word such as create_land, PLAYER_SETUP or 2v2_ARENA.
	Ident
	// Number is an integer or decimal literal.
	Number
	// Directive is '#' followed by a name: #const, #define, #REPEAT.
	Directive
	// String is a double-quoted literal.
	String
	// Raw is the opaque body of a header block.
	Raw
	// Text is any other character that has no meaning to the preprocessor.
	Text
	// Elided stands in for a consumed directive. It has no text and only
	// keeps the directive's leading trivia so line structure survives.
	Elided

	LParen  // (
	RParen  // )
	LBrace  // {
	RBrace  // }
	Comma   // ,
	Plus    // +
	Minus   // -
	Star    // *
	Slash   // /
	Percent // %
	Assign  // =
	Lt      // <
	Gt      // >
)

var kindNames = [...]string{
	Invalid:   "Invalid",
	EOF:       "EOF",
	Ident:     "Ident",
	Number:    "Number",
	Directive: "Directive",
	String:    "String",
	Raw:       "Raw",
	Text:      "Text",
	Elided:    "Elided",
	LParen:    "LParen",
	RParen:    "RParen",
	LBrace:    "LBrace",
	RBrace:    "RBrace",
	Comma:     "Comma",
	Plus:      "Plus",
	Minus:     "Minus",
	Star:      "Star",
	Slash:     "Slash",
	Percent:   "Percent",
	Assign:    "Assign",
	Lt:        "Lt",
	Gt:        "Gt",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsPunct reports whether k is one of the single-character punctuators.
func (k Kind) IsPunct() bool {
	return k >= LParen && k <= Gt
}

// IsWordLike reports whether two adjacent tokens of this kind would merge
// into one if written without a separator.
func (k Kind) IsWordLike() bool {
	switch k {
	case Ident, Number, Directive, String:
		return true
	default:
		return false
	}
}
