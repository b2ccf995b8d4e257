package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"rmspp/internal/diag"
	"rmspp/internal/source"
)

func prettyOne(t *testing.T, content string, d func(source.FileID) diag.Diagnostic, opts PrettyOpts) string {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.rms", []byte(content))
	bag := diag.NewBag(4)
	bag.Add(d(id))
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, opts)
	return buf.String()
}

func TestPrettySnippet(t *testing.T) {
	content := "create_land {\n  base_size rnd(1,\n}\n"
	out := prettyOne(t, content, func(id source.FileID) diag.Diagnostic {
		return diag.New(diag.SevError, diag.MacBadArgument, source.Span{File: id, Start: 26, End: 29}, "bad call")
	}, PrettyOpts{})

	want := "test.rms:2:13: ERROR MAC4001 bad call\n" +
		"2 |   base_size rnd(1,\n" +
		"  |             ^~~\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestPrettyContextLines(t *testing.T) {
	content := "a\nb\nc\nd\n"
	out := prettyOne(t, content, func(id source.FileID) diag.Diagnostic {
		return diag.New(diag.SevWarning, diag.SymDuplicateConstant, source.Span{File: id, Start: 4, End: 5}, "dup")
	}, PrettyOpts{Context: 1})

	want := "test.rms:3:1: WARNING SYM3005 dup\n" +
		"2 | b\n" +
		"3 | c\n" +
		"  | ^\n" +
		"4 | d\n"
	if out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestPrettyNotes(t *testing.T) {
	content := "#const A B\n#const B A\n"
	mk := func(id source.FileID) diag.Diagnostic {
		return diag.New(diag.SevError, diag.SymCyclicConstant, source.Span{File: id, Start: 7, End: 8}, "cycle").
			WithNote(source.Span{File: id, Start: 18, End: 19}, "B is declared here")
	}
	hidden := prettyOne(t, content, mk, PrettyOpts{})
	if strings.Contains(hidden, "note:") {
		t.Errorf("notes must be hidden by default:\n%s", hidden)
	}
	shown := prettyOne(t, content, mk, PrettyOpts{ShowNotes: true})
	if !strings.Contains(shown, "  note: test.rms:2:8: B is declared here\n") {
		t.Errorf("missing note:\n%s", shown)
	}
}

func TestPrettyColor(t *testing.T) {
	out := prettyOne(t, "x", func(id source.FileID) diag.Diagnostic {
		return diag.New(diag.SevError, diag.SymUnresolved, source.Span{File: id, Start: 0, End: 1}, "unresolved name x")
	}, PrettyOpts{Color: true})
	if !strings.Contains(out, "\x1b[") {
		t.Errorf("expected ANSI escapes, got %q", out)
	}
}

func TestPathModes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("/home/user/maps/src/arena.rms", []byte("x\n"))
	fs.SetBaseDir("/home/user/maps")
	bag := diag.NewBag(1)
	bag.Add(diag.New(diag.SevError, diag.SymUnresolved, source.Span{File: id, End: 1}, "unresolved"))

	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/home/user/maps/src/arena.rms:1:1"},
		{PathModeRelative, "src/arena.rms:1:1"},
		{PathModeBasename, "arena.rms:1:1"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
		if !strings.HasPrefix(buf.String(), tt.want) {
			t.Errorf("mode %d: got %q, want prefix %q", tt.mode, buf.String(), tt.want)
		}
	}
}

func TestUnderlineWideRunes(t *testing.T) {
	// «земля» занимает по одной ячейке на руну, но по два байта
	pad, marks := underline("земля x", 12, 13)
	if pad != strings.Repeat(" ", 6) || marks != "^" {
		t.Errorf("pad=%q marks=%q", pad, marks)
	}
	pad, marks = underline("\tab", 2, 4)
	if pad != "\t" || marks != "^~" {
		t.Errorf("tab: pad=%q marks=%q", pad, marks)
	}
	pad, marks = underline("日本 x", 8, 9)
	if pad != strings.Repeat(" ", 5) || marks != "^" {
		t.Errorf("cjk: pad=%q marks=%q", pad, marks)
	}
}
