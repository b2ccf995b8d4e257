package symbols

import (
	"fmt"
	"sort"

	"fortio.org/safecast"

	"rmspp/internal/source"
)

// DefaultAreaBase is the first ID handed out to named areas. The engine
// reserves lower numbers for areas addressed by literal IDs.
const DefaultAreaBase = 20000

// Hints provide optional capacity suggestions for the symbol arena.
type Hints struct{ Symbols uint }

// Table holds the constants and named areas of one document. It is never
// shared between documents.
type Table struct {
	Symbols *Symbols

	consts   map[string]SymbolID
	areas    map[string]SymbolID
	areaBase int64
	nextArea int64
}

// NewTable builds a fresh table. areaBase <= 0 selects DefaultAreaBase.
func NewTable(areaBase int, h Hints) *Table {
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if areaBase <= 0 {
		areaBase = DefaultAreaBase
	}
	return &Table{
		Symbols:  NewSymbols(symCap),
		consts:   make(map[string]SymbolID),
		areas:    make(map[string]SymbolID),
		areaBase: int64(areaBase),
		nextArea: int64(areaBase),
	}
}

// AreaBase returns the first area ID of this table.
func (t *Table) AreaBase() int64 { return t.areaBase }

// DeclareConst records a constant. For a duplicate name the existing
// symbol is returned with isNew == false.
func (t *Table) DeclareConst(sym Symbol) (id SymbolID, isNew bool) {
	if id, ok := t.consts[sym.Name]; ok {
		return id, false
	}
	sym.Kind = SymbolConst
	id = t.Symbols.New(sym)
	t.consts[sym.Name] = id
	return id, true
}

// DeclareArea returns the ID of a named area, assigning the next sequential
// one on first sight. A repeated declaration reuses the existing ID.
func (t *Table) DeclareArea(name string, span source.Span) (value int64, isNew bool) {
	if id, ok := t.areas[name]; ok {
		return t.Symbols.Get(id).Value, false
	}
	value = t.nextArea
	t.nextArea++
	t.areas[name] = t.Symbols.New(Symbol{
		Name:  name,
		Kind:  SymbolArea,
		Flags: SymbolFlagEvaluated,
		Decl:  span,
		Value: value,
	})
	return value, true
}

// Const looks up a constant by name.
func (t *Table) Const(name string) *Symbol {
	return t.Symbols.Get(t.consts[name])
}

// Area looks up a named area by name.
func (t *Table) Area(name string) *Symbol {
	return t.Symbols.Get(t.areas[name])
}

// IntValue returns the folded value of a constant.
func (t *Table) IntValue(name string) (int64, bool) {
	sym := t.Const(name)
	if sym == nil || !sym.Evaluated() {
		return 0, false
	}
	return sym.Value, true
}

// Names returns every declared constant and area name, sorted.
func (t *Table) Names() []string {
	out := make([]string, 0, len(t.consts)+len(t.areas))
	for name := range t.consts {
		out = append(out, name)
	}
	for name := range t.areas {
		if _, dup := t.consts[name]; !dup {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// AreaCount reports how many named areas were assigned IDs.
func (t *Table) AreaCount() int { return len(t.areas) }
