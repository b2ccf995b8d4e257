package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("map.rms", []byte("create_land {}"), 0)
	id2 := fs.Add("map.rms", []byte("create_player_lands {}"), 0)
	if id1 == id2 {
		t.Fatalf("expected distinct ids, got %d twice", id1)
	}

	latest, ok := fs.GetLatest("map.rms")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d,%v; want %d,true", latest, ok, id2)
	}
	// старая версия остаётся доступной
	if got := string(fs.Get(id1).Content); got != "create_land {}" {
		t.Errorf("old content = %q", got)
	}
	if fs.Len() != 2 {
		t.Errorf("Len() = %d, want 2", fs.Len())
	}
}

func TestAddVirtualNormalizes(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		flags FileFlags
	}{
		{"plain", "a\nb", "a\nb", FileVirtual},
		{"bom", "\xEF\xBB\xBFa", "a", FileVirtual | FileHadBOM},
		{"crlf", "a\r\nb\r\n", "a\nb\n", FileVirtual | FileNormalizedCRLF},
		{"lone cr kept", "a\rb", "a\rb", FileVirtual},
		// "e" + combining acute -> precomposed é
		{"nfc", "cafe\u0301", "caf\u00e9", FileVirtual | FileNormalizedNFC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewFileSet()
			f := fs.Get(fs.AddVirtual("v.rms", []byte(tt.in)))
			if string(f.Content) != tt.want {
				t.Errorf("content = %q, want %q", f.Content, tt.want)
			}
			if f.Flags != tt.flags {
				t.Errorf("flags = %b, want %b", f.Flags, tt.flags)
			}
		})
	}
}

func TestLineIndexAndResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.rms", []byte("ab\ncd\n\nef"))
	f := fs.Get(id)

	wantIdx := []uint32{2, 5, 6}
	if len(f.LineIdx) != len(wantIdx) {
		t.Fatalf("LineIdx = %v, want %v", f.LineIdx, wantIdx)
	}
	for i := range wantIdx {
		if f.LineIdx[i] != wantIdx[i] {
			t.Fatalf("LineIdx = %v, want %v", f.LineIdx, wantIdx)
		}
	}

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{1, LineCol{1, 2}},
		{2, LineCol{1, 3}}, // сам '\n' принадлежит первой строке
		{3, LineCol{2, 1}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{9, LineCol{4, 3}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("Resolve(%d) = %+v, want %+v", tt.off, start, tt.want)
		}
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("a.rms", []byte("first\nsecond\n\nlast")))

	cases := map[uint32]string{
		0: "",
		1: "first",
		2: "second",
		3: "",
		4: "last",
		5: "",
	}
	for line, want := range cases {
		if got := f.GetLine(line); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", line, got, want)
		}
	}
}

func TestFileText(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("a.rms", []byte("#const X 5")))
	if got := f.Text(Span{Start: 7, End: 8}); got != "X" {
		t.Errorf("Text = %q, want X", got)
	}
	if got := f.Text(Span{Start: 3, End: 100}); got != "" {
		t.Errorf("out of range Text = %q, want empty", got)
	}
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.rms")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBF<PLAYER_SETUP>\r\nrandom_placement\r\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	f := fs.Get(id)
	if string(f.Content) != "<PLAYER_SETUP>\nrandom_placement\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b, want BOM and CRLF bits", f.Flags)
	}
	if f.Flags&FileVirtual != 0 {
		t.Errorf("disk file must not be virtual")
	}

	if _, err := fs.Load(filepath.Join(dir, "missing.rms")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Errorf("Cover = %v", got)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Errorf("cross-file Cover changed span: %v", got)
	}
	if !a.StartPoint().Empty() || a.Len() != 4 {
		t.Errorf("StartPoint/Len mismatch")
	}
}
