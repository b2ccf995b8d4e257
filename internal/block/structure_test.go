package block_test

import (
	"testing"

	"rmspp/internal/block"
	"rmspp/internal/diag"
	"rmspp/internal/lexer"
	"rmspp/internal/source"
	"rmspp/internal/testkit"
	"rmspp/internal/token"
)

func structure(t *testing.T, input string) (*block.Block, string) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.rms", []byte(input)))
	bag := diag.NewBag(64)
	toks := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	root := block.Structure(file, toks, diag.BagReporter{Bag: bag})
	return root, diag.FormatGoldenDiagnostics(bag.Items(), fs, true)
}

func kindsOf(bs []*block.Block) []block.Kind {
	out := make([]block.Kind, len(bs))
	for i, b := range bs {
		out[i] = b.Kind
	}
	return out
}

func sameKinds(a, b []block.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlainTextIsOneLiteral(t *testing.T) {
	root, diags := structure(t, "create_land {\n  terrain_type GRASS\n}\n")
	if diags != "" {
		t.Fatalf("unexpected diagnostics:\n%s", diags)
	}
	if len(root.Children) != 1 || root.Children[0].Kind != block.Literal {
		t.Fatalf("children = %v", kindsOf(root.Children))
	}
	toks := root.Children[0].Tokens
	if toks[len(toks)-1].Kind != token.EOF {
		t.Errorf("EOF must end the root literal")
	}
}

func TestNestedRepeat(t *testing.T) {
	input := "#REPEAT(2)\na\n#REPEAT(N)\nb\n#END_REPEAT\n#END_REPEAT\nc"
	root, diags := structure(t, input)
	if diags != "" {
		t.Fatalf("unexpected diagnostics:\n%s", diags)
	}
	want := []block.Kind{block.Literal, block.Repeat, block.Literal}
	if got := kindsOf(root.Children); !sameKinds(got, want) {
		t.Fatalf("root children = %v, want %v", got, want)
	}
	outer := root.Children[1]
	if len(outer.Args) != 1 || outer.Args[0].Text != "2" || outer.Malformed {
		t.Errorf("outer args = %+v", outer.Args)
	}
	if got := kindsOf(outer.Children); !sameKinds(got, []block.Kind{block.Literal, block.Repeat}) {
		t.Fatalf("outer children = %v", got)
	}
	inner := outer.Children[1]
	if inner.Args[0].Text != "N" {
		t.Errorf("inner args = %+v", inner.Args)
	}
	if inner.Close.Kind != token.Elided || inner.Close.LeadingText() != "\n" {
		t.Errorf("inner close = %+v", inner.Close)
	}
	if inner.Count != -1 {
		t.Errorf("count must be unresolved, got %d", inner.Count)
	}
}

func TestFlattenKeepsLineStructure(t *testing.T) {
	root, _ := structure(t, "#REPEAT(2)\na\n#END_REPEAT\nc")
	if got := testkit.Render(block.Flatten(root)); got != "\na\n\nc" {
		t.Errorf("flatten = %q", got)
	}
}

func TestRepeatArgumentsWithParens(t *testing.T) {
	root, diags := structure(t, "#REPEAT((N + 1) * 2)\nx\n#END_REPEAT")
	if diags != "" {
		t.Fatalf("unexpected diagnostics:\n%s", diags)
	}
	rep := root.Children[1]
	if got := testkit.Render(rep.Args); got != "(N + 1) * 2" {
		t.Errorf("args = %q", got)
	}
}

func TestHeaderBlock(t *testing.T) {
	root, diags := structure(t, "#HEADER_START\nby someone\n#HEADER_END\nx")
	if diags != "" {
		t.Fatalf("unexpected diagnostics:\n%s", diags)
	}
	hs := block.Headers(root)
	if len(hs) != 1 || hs[0].Raw != "\nby someone\n" {
		t.Fatalf("headers = %+v", hs)
	}
	if got := testkit.Render(block.Flatten(root)); got != "\nx" {
		t.Errorf("body = %q", got)
	}
}

func TestStructureErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "close without open",
			input: "a\n#END_REPEAT\n",
			want:  "error STR2001 test.rms:2:1 #END_REPEAT without a matching #REPEAT: no open block",
		},
		{
			name:  "unclosed repeat",
			input: "#REPEAT(2)\na\n",
			want: "error STR2003 test.rms:1:1 #REPEAT is never closed\n" +
				"note STR2003 test.rms:3:1 input ends here",
		},
		{
			name:  "every open block is named",
			input: "#REPEAT(2)\n#REPEAT(3)\n",
			want: "error STR2003 test.rms:1:1 #REPEAT is never closed\n" +
				"error STR2003 test.rms:2:1 #REPEAT is never closed\n" +
				"note STR2003 test.rms:3:1 input ends here\n" +
				"note STR2003 test.rms:3:1 input ends here",
		},
		{
			name:  "mismatched close",
			input: "#repeat(2)\n#HEADER_END\n#END_REPEAT",
			want: "note STR2002 test.rms:1:1 #repeat opened here\n" +
				"error STR2002 test.rms:2:1 #HEADER_END cannot close #repeat",
		},
		{
			name:  "header inside repeat",
			input: "#REPEAT(2)\n#HEADER_START x #HEADER_END\n#END_REPEAT",
			want: "note STR2004 test.rms:1:1 inside #REPEAT opened here\n" +
				"error STR2004 test.rms:2:1 #HEADER_START is only allowed at the top level",
		},
		{
			name:  "unclosed header",
			input: "#HEADER_START\ntext",
			want:  "error STR2003 test.rms:1:1 #HEADER_START is never closed",
		},
		{
			name:  "nested header",
			input: "#HEADER_START\n#header_start\n#HEADER_END",
			want: "note STR2005 test.rms:1:1 enclosing header opened here\n" +
				"error STR2005 test.rms:2:1 header blocks cannot be nested",
		},
		{
			name:  "repeat without parentheses",
			input: "#REPEAT 3\n#END_REPEAT",
			want:  "error MAC4001 test.rms:1:1 #REPEAT requires a count in parentheses",
		},
		{
			name:  "unclosed argument list",
			input: "#REPEAT(3\nx\n#END_REPEAT",
			want:  "error MAC4001 test.rms:1:1 unclosed argument list of #REPEAT",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := structure(t, tt.input)
			if got != tt.want {
				t.Errorf("diagnostics mismatch:\nwant:\n%s\n\ngot:\n%s", tt.want, got)
			}
		})
	}
}

func TestMalformedRepeatKeepsBody(t *testing.T) {
	root, _ := structure(t, "#REPEAT(3\nx\n#END_REPEAT")
	rep := root.Children[1]
	if !rep.Malformed || len(rep.Args) != 1 {
		t.Fatalf("repeat = %+v", rep)
	}
	if len(rep.Children) != 1 || rep.Children[0].Tokens[0].Text != "x" {
		t.Errorf("body lost: %+v", rep.Children)
	}
}

func TestCloneIsDeep(t *testing.T) {
	root, _ := structure(t, "#REPEAT(2)\na b\n#END_REPEAT")
	rep := root.Children[1]
	c := rep.Clone()
	c.Children[0].Tokens[0].Text = "changed"
	c.Children[0].Tokens[0].Leading[0].Text = "  "
	if rep.Children[0].Tokens[0].Text != "a" || rep.Children[0].Tokens[0].LeadingText() != "\n" {
		t.Errorf("clone shares memory with the original")
	}
}
