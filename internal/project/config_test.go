package project

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"RMSPP_AREA_BASE", "RMSPP_HOIST_PREFIX", "RMSPP_JOBS", "RMSPP_OUT_DIR"} {
		t.Setenv(k, "")
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "rmspp.toml")
	write(t, path, "area_base = 500\nhoist_prefix = \"R\"\nout_dir = \"out\"\ncache = true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AreaBase != 500 || cfg.HoistPrefix != "R" || cfg.OutDir != "out" || !cfg.Cache {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.MaxDiagnostics != DefaultMaxDiagnostics || cfg.MaxTokens != DefaultMaxTokens {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "rmspp.yaml")
	write(t, path, "jobs: 3\nmax_diagnostics: 10\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Jobs != 3 || cfg.MaxDiagnostics != 10 || cfg.AreaBase != DefaultAreaBase {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	write(t, bad, "area_base = \"x\"")
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "failed to parse TOML") {
		t.Errorf("got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	write(t, invalid, "hoist_prefix: \"1x\"\njobs: -2\n")
	_, err := Load(invalid)
	if err == nil || !strings.Contains(err.Error(), "hoist_prefix") || !strings.Contains(err.Error(), "jobs") {
		t.Errorf("got %v", err)
	}

	other := filepath.Join(dir, "rmspp.ini")
	write(t, other, "")
	if _, err := Load(other); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("RMSPP_AREA_BASE", "700")
	t.Setenv("RMSPP_HOIST_PREFIX", "RND")
	path := filepath.Join(t.TempDir(), "rmspp.toml")
	write(t, path, "area_base = 500\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AreaBase != 700 || cfg.HoistPrefix != "RND" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "rmspp.yaml"), "jobs: 1\n")
	nested := filepath.Join(root, "maps", "arena")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, ok, err := FindConfig(nested)
	if err != nil || !ok {
		t.Fatalf("FindConfig: ok=%v err=%v", ok, err)
	}
	if filepath.Base(path) != "rmspp.yaml" {
		t.Errorf("found %q", path)
	}

	write(t, filepath.Join(root, "rmspp.toml"), "")
	path, _, _ = FindConfig(nested)
	if filepath.Base(path) != "rmspp.toml" {
		t.Errorf("toml must win over yaml, found %q", path)
	}
}

func TestFingerprint(t *testing.T) {
	a, b := Defaults(), Defaults()
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("equal configs must have equal fingerprints")
	}
	b.OutDir = "elsewhere"
	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("out_dir does not change output")
	}
	b.HoistPrefix = "R"
	if a.Fingerprint() == b.Fingerprint() {
		t.Errorf("hoist_prefix changes output")
	}
}
