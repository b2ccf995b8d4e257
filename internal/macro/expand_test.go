package macro_test

import (
	"fmt"
	"strings"
	"testing"

	"rmspp/internal/block"
	"rmspp/internal/diag"
	"rmspp/internal/lexer"
	"rmspp/internal/macro"
	"rmspp/internal/source"
	"rmspp/internal/symbols"
	"rmspp/internal/testkit"
	"rmspp/internal/token"
)

type expanded struct {
	root  *block.Block
	diags string
	text  string
}

func expandWith(t *testing.T, input string, opts macro.Options) expanded {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.rms", []byte(input)))
	bag := diag.NewBag(64)
	rep := diag.BagReporter{Bag: bag}
	root := block.Structure(file, lexer.Tokenize(file, lexer.Options{Reporter: rep}), rep)
	table := symbols.NewTable(0, symbols.Hints{})
	symbols.Resolve(root, table, rep)
	macro.Expand(root, table, rep, opts)
	return expanded{
		root:  root,
		diags: diag.FormatGoldenDiagnostics(bag.Items(), fs, true),
		text:  testkit.Render(block.Flatten(root)),
	}
}

func expand(t *testing.T, input string) expanded {
	t.Helper()
	return expandWith(t, input, macro.Options{})
}

func words(toks []token.Token) []string {
	var out []string
	for _, tok := range toks {
		if tok.Kind == token.Ident {
			out = append(out, tok.Text)
		}
	}
	return out
}

func TestRepeatExpansion(t *testing.T) {
	for n := 0; n <= 4; n++ {
		input := "#REPEAT(" + string(rune('0'+n)) + ")\nland\n#END_REPEAT"
		r := expand(t, input)
		if r.diags != "" {
			t.Fatalf("unexpected diagnostics:\n%s", r.diags)
		}
		want := strings.Repeat("\nland\n", n)
		if r.text != want {
			t.Errorf("n=%d: text = %q, want %q", n, r.text, want)
		}
	}
}

func TestNestedRepeatExpandsInnermostFirst(t *testing.T) {
	r := expand(t, "#const N 2\n#REPEAT(2)\na\n#REPEAT(N)\nb\n#END_REPEAT\n#END_REPEAT\nc")
	got := strings.Join(words(block.Flatten(r.root)), " ")
	if got != "N a b b a b b c" {
		t.Errorf("words = %q", got)
	}
	for _, b := range r.root.Children {
		if b.Kind == block.Repeat {
			t.Fatalf("repeat left in the tree")
		}
	}
}

func TestRepeatCopiesAreIndependent(t *testing.T) {
	r := expand(t, "#REPEAT(2)\nplace_land(rnd(1,5))\n#END_REPEAT")
	toks := r.root.Children[0].Tokens
	var first, second int = -1, -1
	for i, tok := range toks {
		if tok.Text == "place_land" {
			if first < 0 {
				first = i
			} else {
				second = i
			}
		}
	}
	if second < 0 {
		t.Fatalf("expected two copies: %q", r.text)
	}
	toks[first].Leading[0].Text = "\n\n"
	if toks[second].LeadingText() != "\n" {
		t.Errorf("copies share trivia")
	}
}

func TestExpansionLimit(t *testing.T) {
	r := expandWith(t, "#REPEAT(1000)\na b c\n#END_REPEAT", macro.Options{MaxTokens: 100})
	want := "error MAC4005 test.rms:1:1 expanding #REPEAT(1000) exceeds the limit of 100 tokens"
	if r.diags != want {
		t.Errorf("diagnostics:\n%s", r.diags)
	}
}

func TestCircleLands(t *testing.T) {
	r := expand(t, "#CIRCLE_LANDS(4, 10) { terrain_type GRASS }")
	if r.diags != "" {
		t.Fatalf("unexpected diagnostics:\n%s", r.diags)
	}
	land := func(x, y string) string {
		return "create_land {\nland_position " + x + " " + y + "\nterrain_type GRASS\n}"
	}
	want := land("60", "50") + "\n" + land("50", "60") + "\n" + land("40", "50") + "\n" + land("50", "40")
	if r.text != want {
		t.Errorf("text =\n%s\nwant\n%s", r.text, want)
	}
}

func TestSquareLandsWithoutAttributes(t *testing.T) {
	r := expand(t, "x\n#SQUARE_LANDS(2, 10)\ny")
	want := "x\ncreate_land {\nland_position 90 50\n}\ncreate_land {\nland_position 10 50\n}\ny"
	if r.text != want {
		t.Errorf("text =\n%s\nwant\n%s", r.text, want)
	}
}

func TestLabelMacros(t *testing.T) {
	r := expand(t, "#CIRCLE_LABELS(36, 120)")
	if r.diags != "" {
		t.Fatalf("unexpected diagnostics:\n%s", r.diags)
	}
	lines := strings.Split(r.text, "\n")
	if lines[0] != "start_random" || lines[1] != "percent_chance 1 #define P1_POINT_0" {
		t.Fatalf("unexpected start: %q", lines[:2])
	}
	if lines[101] != "end_random" || lines[102] != "start_random" || lines[len(lines)-1] != "end_random" {
		t.Fatalf("unexpected block layout")
	}
	total := 0
	for _, l := range lines[103 : len(lines)-1] {
		var p, off int
		if _, err := fmt.Sscanf(l, "percent_chance %d #define P2_OFFSET_%d", &p, &off); err != nil {
			t.Fatalf("bad line %q: %v", l, err)
		}
		total += p
	}
	if total != 100 {
		t.Errorf("player two weights sum to %d", total)
	}
}

func TestPositionMacros(t *testing.T) {
	p1 := expand(t, "#SQUARE_POSITION_P1(20)")
	if !strings.HasPrefix(p1.text, "if P1_POINT_0\nland_position ") || !strings.HasSuffix(p1.text, "\nendif") {
		t.Errorf("unexpected p1 layout:\n%s", p1.text)
	}
	if n := strings.Count(p1.text, "land_position"); n != 100 {
		t.Errorf("p1 has %d positions", n)
	}

	p2 := expand(t, "#MIGRA_POSITION_P2(10, 130)")
	if p2.diags != "" {
		t.Fatalf("unexpected diagnostics:\n%s", p2.diags)
	}
	if n := strings.Count(p2.text, "P1_POINT_"); n != 100 {
		t.Errorf("p2 has %d outer branches", n)
	}
	if !strings.Contains(p2.text, "if P1_POINT_0\nif P2_OFFSET_") {
		t.Errorf("p2 must nest the offset chain")
	}
}

func TestSlotMacros(t *testing.T) {
	labels := expand(t, "#POSITION_LABELS")
	if labels.diags != "" {
		t.Fatalf("unexpected diagnostics:\n%s", labels.diags)
	}
	if n := strings.Count(labels.text, "percent_chance 5 #define P1_SLOT_"); n != 20 {
		t.Errorf("labels define %d player one slots", n)
	}
	if !strings.HasSuffix(labels.text, "percent_chance 10 #define P2_POS_6\nend_random") {
		t.Errorf("unexpected labels tail:\n%s", labels.text)
	}

	p1 := expand(t, "#POSITION_P1()")
	if p1.diags != "" {
		t.Fatalf("unexpected diagnostics:\n%s", p1.diags)
	}
	for _, want := range []string{
		"if P1_SLOT_0\nland_position rnd(25,34) rnd(17,25)\n",
		"elseif P1_SLOT_10\nland_position rnd(66,75) rnd(75,83)\n",
	} {
		if !strings.Contains(p1.text, want) {
			t.Errorf("p1 lacks %q", want)
		}
	}

	p2 := expand(t, "#POSITION_P2")
	if n := strings.Count(p2.text, "P2_POS_"); n != 20*7 {
		t.Errorf("p2 has %d inner branches", n)
	}
	// слот 0: соперник начинается со слота 7
	if !strings.HasPrefix(p2.text, "if P1_SLOT_0\nif P2_POS_0\nland_position rnd(75,83) rnd(45,55)\n") {
		t.Errorf("unexpected p2 start:\n%.120s", p2.text)
	}

	if got := expand(t, "#POSITION_P1(3)").diags; got != "error MAC4001 test.rms:1:1 #POSITION_P1 takes 0 arguments, got 1" {
		t.Errorf("arity diagnostics = %q", got)
	}
}

func TestMacrosAreDeterministic(t *testing.T) {
	a := expand(t, "#CIRCLE_POSITION_P2(36, 120)").text
	b := expand(t, "#CIRCLE_POSITION_P2(36, 120)").text
	if a != b {
		t.Errorf("two runs differ")
	}
}

func TestMacroErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown macro", "#FOO(1)", "error MAC4002 test.rms:1:1 unknown macro #FOO"},
		{"arity", "#CIRCLE_LABELS(30)", "error MAC4001 test.rms:1:1 #CIRCLE_LABELS takes 2 arguments, got 1"},
		{"no arguments", "#SQUARE_LABELS", "error MAC4001 test.rms:1:1 #SQUARE_LABELS takes 2 arguments, got 0"},
		{"angle out of range", "#CIRCLE_LABELS(30, 80)", "error MAC4001 test.rms:1:20 angle 80 must be an integer in 90..135"},
		{"unresolved argument", "#CIRCLE_POSITION_P1(R)", "error SYM3001 test.rms:1:21 unresolved name R"},
		{"string argument", "#CIRCLE_POSITION_P1(\"x\")", "error MAC4001 test.rms:1:21 macro arguments must be numbers or constants"},
		{"off the map", "#CIRCLE_LANDS(4, 60)", "error MAC4003 test.rms:1:1 #CIRCLE_LANDS places a land at (110, 50), outside the map"},
		{"misplaced", "#PLACE8\nx", "error MAC4004 test.rms:1:1 #PLACE8 is only allowed inside create_object"},
		{"native directives pass", "#define X\n#include_drs random_map.def\n#const A 1", ""},
		{"directive without call", "#FOO bar", "error MAC4002 test.rms:1:1 unknown macro #FOO"},
		{"generator of another tool", "#ROCKGEN\ncreate_land { terrain_type GRASS }", "error MAC4002 test.rms:1:1 unknown macro #ROCKGEN"},
		{"lower-case unknown", "#undef X", "error MAC4002 test.rms:1:1 unknown macro #undef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expand(t, tt.input).diags; got != tt.want {
				t.Errorf("diagnostics mismatch:\nwant:\n%s\n\ngot:\n%s", tt.want, got)
			}
		})
	}
}

func TestEveryPlayerObjects(t *testing.T) {
	r := expand(t, "create_object VILLAGER {\n#SET_PLACE_FOR_EVERY_PLAYER\nnumber_of_objects 2\n}")
	if r.diags != "" {
		t.Fatalf("unexpected diagnostics:\n%s", r.diags)
	}
	obj := func(k string) string {
		return "create_object VILLAGER {\nnumber_of_objects 2\nplace_on_specific_land_id " + k + "\n}"
	}
	if want := obj("1") + "\n" + obj("2"); r.text != want {
		t.Errorf("text =\n%s\nwant\n%s", r.text, want)
	}
}

func TestPlace8AndExplicitCount(t *testing.T) {
	r := expand(t, "create_object SCOUT {\n#PLACE8\n}")
	if n := strings.Count(r.text, "place_on_specific_land_id"); n != 8 {
		t.Errorf("PLACE8 produced %d copies", n)
	}
	r = expand(t, "create_object SCOUT {\n#SET_PLACE_FOR_EVERY_PLAYER(3)\n}")
	if n := strings.Count(r.text, "create_object"); n != 3 {
		t.Errorf("explicit count produced %d copies", n)
	}
	r = expand(t, "create_object SCOUT {\nnumber_of_objects 1\n}")
	if r.text != "create_object SCOUT {\nnumber_of_objects 1\n}" {
		t.Errorf("plain objects must be untouched: %q", r.text)
	}
}

func TestPlayerCountIsBounded(t *testing.T) {
	r := expand(t, "create_object SCOUT {\n#SET_PLACE_FOR_EVERY_PLAYER(200)\n}")
	want := "error MAC4001 test.rms:2:1 #SET_PLACE_FOR_EVERY_PLAYER takes one integer player count in 1..8"
	if r.diags != want {
		t.Errorf("diagnostics:\n%s", r.diags)
	}

	r = expandWith(t, "create_object SCOUT {\nnumber_of_objects 1\n#PLACE8\n}", macro.Options{MaxTokens: 10})
	want = "error MAC4005 test.rms:1:1 placing the object for 8 players exceeds the limit of 10 tokens"
	if r.diags != want {
		t.Errorf("diagnostics:\n%s", r.diags)
	}
}
