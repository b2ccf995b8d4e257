package truncate_test

import (
	"testing"

	"rmspp/internal/block"
	"rmspp/internal/diag"
	"rmspp/internal/hoist"
	"rmspp/internal/lexer"
	"rmspp/internal/macro"
	"rmspp/internal/source"
	"rmspp/internal/symbols"
	"rmspp/internal/testkit"
	"rmspp/internal/token"
	"rmspp/internal/truncate"
)

func prepare(t *testing.T, input string) *block.Block {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.rms", []byte(input)))
	bag := diag.NewBag(32)
	rep := diag.BagReporter{Bag: bag}
	root := block.Structure(file, lexer.Tokenize(file, lexer.Options{Reporter: rep}), rep)
	table := symbols.NewTable(0, symbols.Hints{})
	symbols.Resolve(root, table, rep)
	macro.Expand(root, table, rep, macro.Options{})
	hoist.Hoist(root, table, hoist.Options{})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics:\n%s", diag.FormatGoldenDiagnostics(bag.Items(), fs, true))
	}
	return root
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{"no marker", "a\nb // c\n", "a\nb // c\n", false},
		{"cut", "a\nb\n#BREAK\nc\nd", "a\nb", true},
		{"lower case", "a #break b", "a", true},
		{"first marker wins", "a\n#BREAK\nb\n#BREAK\nc", "a", true},
		{"inside repeat", "#REPEAT(3)\na\n#BREAK\n#END_REPEAT", "\na", true},
		{"hoisted constants survive", "x rnd(1,2)\n#BREAK\ny rnd(3,4)",
			"#const C1 rnd(1,2)\n#const C2 rnd(3,4)\nx C1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := prepare(t, tt.input)
			found := truncate.Apply(root)
			if found != tt.found {
				t.Errorf("found = %v, want %v", found, tt.found)
			}
			if got := testkit.Render(block.Flatten(root)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyKeepsHeadersAndEOF(t *testing.T) {
	root := prepare(t, "a\n#BREAK\nb\n#HEADER_START\nby me\n#HEADER_END\nc")
	truncate.Apply(root)
	if n := len(block.Headers(root)); n != 1 {
		t.Errorf("headers = %d, want 1", n)
	}
	toks := block.Flatten(root)
	if last := toks[len(toks)-1]; last.Kind != token.EOF || last.LeadingText() != "" {
		t.Errorf("last token = %v %q", last.Kind, last.LeadingText())
	}
}
