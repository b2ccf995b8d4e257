package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rmspp/internal/diagfmt"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeScript(t *testing.T, dir, name, text string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBuildWritesOutDir(t *testing.T) {
	dir := t.TempDir()
	in := writeScript(t, dir, "arena.rms", "#REPEAT(2)\nplace_land(rnd(1,5))\n#END_REPEAT\n")
	out := filepath.Join(dir, "out")

	_, stderr, err := execute(t, "build", "--ui", "off", "--color", "off", "-o", out, in)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, stderr)
	}
	data, err := os.ReadFile(filepath.Join(out, "arena.rms"))
	if err != nil {
		t.Fatal(err)
	}
	want := "#const C1 rnd(1,5)\n#const C2 rnd(1,5)\nplace_land(C1)\nplace_land(C2)"
	if string(data) != want {
		t.Errorf("output:\n%q\nwant:\n%q", data, want)
	}
}

func TestDiagJSONFailsOnErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeScript(t, dir, "good.rms", "a")
	bad := writeScript(t, dir, "bad.rms", "#END_REPEAT")

	stdout, _, err := execute(t, "diag", "--format", "json", good, bad)
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if out.Count != 1 || out.Diagnostics[0].Code != "STR2001" {
		t.Errorf("diagnostics = %+v", out.Diagnostics)
	}
	if !strings.HasSuffix(out.Diagnostics[0].Location.File, "bad.rms") {
		t.Errorf("file = %s", out.Diagnostics[0].Location.File)
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := execute(t, "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if payload["tool"] != "rmspp" || payload["version"] == "" {
		t.Errorf("payload = %v", payload)
	}
}

func TestReadUIMode(t *testing.T) {
	for _, v := range []string{"", "auto", "ON", " off "} {
		if _, err := readUIMode(v); err != nil {
			t.Errorf("readUIMode(%q): %v", v, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Error("expected an error")
	}
}
