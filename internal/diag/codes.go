package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo                     Code = 1000
	LexUnterminatedBlockComment Code = 1001
	LexUnterminatedString       Code = 1002

	// Структура блоков
	StrInfo              Code = 2000
	StrCloseWithoutOpen  Code = 2001
	StrMismatchedClose   Code = 2002
	StrUnclosedBlock     Code = 2003
	StrHeaderNotAtRoot   Code = 2004
	StrDirectiveInHeader Code = 2005

	// Символы
	SymInfo               Code = 3000
	SymUnresolved         Code = 3001
	SymCyclicConstant     Code = 3002
	SymBadConstExpr       Code = 3003
	SymDivisionByZero     Code = 3004
	SymDuplicateConstant  Code = 3005
	SymConstantIsOpaque   Code = 3007
	SymAreaNameIsConstant Code = 3008

	// Макросы
	MacInfo              Code = 4000
	MacBadArgument       Code = 4001
	MacUnknownMacro      Code = 4002
	MacCoordOutOfRange   Code = 4003
	MacMisplaced         Code = 4004
	MacExpansionTooLarge Code = 4005

	// Ввод-вывод
	IOLoadFileError  Code = 5001
	IOWriteFileError Code = 5002

	// Конфигурация
	CfgInvalid Code = 6001

	// Наблюдаемость
	ObsTimings Code = 7001
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	LexInfo:                     "Lexical information",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexUnterminatedString:       "Unterminated string",

	StrInfo:              "Structure information",
	StrCloseWithoutOpen:  "Closing directive without an open block",
	StrMismatchedClose:   "Closing directive does not match the open block",
	StrUnclosedBlock:     "Block is never closed",
	StrHeaderNotAtRoot:   "Header block is only allowed at the top level",
	StrDirectiveInHeader: "Header block cannot be nested",

	SymInfo:               "Symbol information",
	SymUnresolved:         "Unresolved name",
	SymCyclicConstant:     "Cyclic constant definition",
	SymBadConstExpr:       "Malformed constant expression",
	SymDivisionByZero:     "Division by zero in constant expression",
	SymDuplicateConstant:  "Constant declared more than once",
	SymConstantIsOpaque:   "Constant has no compile-time value",
	SymAreaNameIsConstant: "Named area shadows a constant",

	MacInfo:              "Macro information",
	MacBadArgument:       "Invalid macro argument",
	MacUnknownMacro:      "Unknown macro",
	MacCoordOutOfRange:   "Generated coordinate is outside the map",
	MacMisplaced:         "Macro used outside of its context",
	MacExpansionTooLarge: "Expansion exceeds the size limit",

	IOLoadFileError:  "Failed to load file",
	IOWriteFileError: "Failed to write output",

	CfgInvalid: "Invalid configuration",

	ObsTimings: "Pipeline timings",
}

// ID returns the stable short form (LEX1001, STR2003, ...).
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("STR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SYM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("MAC%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

// Class names the error family a code belongs to.
func (c Code) Class() string {
	switch {
	case c >= 1000 && c < 2000:
		return "LexError"
	case c >= 2000 && c < 3000:
		return "StructureError"
	case c == SymUnresolved:
		return "UnresolvedSymbolError"
	case c == SymCyclicConstant:
		return "CyclicConstantError"
	case c == SymBadConstExpr, c == SymDivisionByZero, c == SymConstantIsOpaque:
		return "ConstantExpressionError"
	case c == SymDuplicateConstant, c == SymAreaNameIsConstant:
		return "SymbolConflict"
	case c >= 4000 && c < 5000:
		return "MacroArgumentError"
	case c >= 5000 && c < 6000:
		return "IOError"
	case c >= 6000 && c < 7000:
		return "ConfigError"
	}
	return "Info"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
