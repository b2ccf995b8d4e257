package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"rmspp/internal/buildpipeline"
	"rmspp/internal/diag"
	"rmspp/internal/driver"
	"rmspp/internal/project"
)

func process(t *testing.T, input string, opts driver.Options) (*driver.Result, string) {
	t.Helper()
	res := driver.ProcessSource(context.Background(), "test.rms", []byte(input), opts)
	return res, diag.FormatGoldenDiagnostics(res.Diagnostics(), res.FileSet, false)
}

func TestProcessSource(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		diags string
	}{
		{
			name:  "repeat with random calls",
			input: "#REPEAT(3)\nplace_land(rnd(1,5))\n#END_REPEAT",
			want: "#const C1 rnd(1,5)\n#const C2 rnd(1,5)\n#const C3 rnd(1,5)\n" +
				"place_land(C1)\nplace_land(C2)\nplace_land(C3)",
		},
		{
			name:  "comments and spacing",
			input: "<LAND_GENERATION>\r\ncreate_land {\r\n  terrain_type   GRASS // base\r\n}\r\n",
			want:  "<LAND_GENERATION>\ncreate_land {\nterrain_type GRASS\n}",
		},
		{
			name:  "areas get numbers",
			input: "create_actor_area 10 10 west 5\navoid_actor_area west",
			want:  "create_actor_area 10 10 20000 5\navoid_actor_area 20000",
		},
		{
			name:  "unmatched end repeat",
			input: "#END_REPEAT",
			want:  "",
			diags: "error STR2001 test.rms:1:1 #END_REPEAT without a matching #REPEAT: no open block",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, diags := process(t, tt.input, driver.Options{})
			if diags != tt.diags {
				t.Fatalf("diagnostics:\n%s\nwant:\n%s", diags, tt.diags)
			}
			if res.Output != tt.want {
				t.Errorf("output:\n%q\nwant:\n%q", res.Output, tt.want)
			}
		})
	}
}

func TestCyclicConstants(t *testing.T) {
	res, _ := process(t, "#const A B\n#const B A\nx A", driver.Options{})
	if !res.Failed() || res.Output != "" {
		t.Fatalf("cycle must fail with empty output, got %q", res.Output)
	}
	var found bool
	for _, d := range res.Diagnostics() {
		if d.Code == diag.SymCyclicConstant {
			found = true
			if !strings.Contains(d.Message, "A") || !strings.Contains(d.Message, "B") {
				t.Errorf("message must name the cycle: %q", d.Message)
			}
		}
	}
	if !found {
		t.Fatalf("no SYM3002 in %v", res.Diagnostics())
	}
}

func TestFirstFailingStageStopsThePipeline(t *testing.T) {
	// без остановки resolve сообщил бы о неизвестной зоне
	_, diags := process(t, "#END_REPEAT\navoid_actor_area nowhere", driver.Options{})
	if strings.Count(diags, "\n") != 0 || !strings.Contains(diags, "STR2001") {
		t.Fatalf("want a single STR2001, got:\n%s", diags)
	}
}

func TestRepeatIsConcatenation(t *testing.T) {
	const body = "create_land { base_size 5 }"
	for n := range 5 {
		input := "#REPEAT(" + string(rune('0'+n)) + ")\n" + body + "\n#END_REPEAT"
		res, diags := process(t, input, driver.Options{})
		if diags != "" {
			t.Fatalf("n=%d: %s", n, diags)
		}
		want := strings.TrimSuffix(strings.Repeat(body+"\n", n), "\n")
		if res.Output != want {
			t.Errorf("n=%d: got %q, want %q", n, res.Output, want)
		}
	}
}

func TestOutputIsAFixedPoint(t *testing.T) {
	inputs := []string{
		"<PLAYER_SETUP>\n  random_placement /* x */\n",
		"#REPEAT(2)\ncreate_object GOLD { number_of_objects rnd(3,7) }\n#END_REPEAT\n",
		"#const N 2\n#REPEAT(N)\na\n#END_REPEAT\n#BREAK\ntail",
	}
	for _, input := range inputs {
		first, diags := process(t, input, driver.Options{})
		if diags != "" {
			t.Fatalf("%q: %s", input, diags)
		}
		second, diags := process(t, first.Output, driver.Options{})
		if diags != "" {
			t.Fatalf("reprocessing %q: %s", first.Output, diags)
		}
		if second.Output != first.Output {
			t.Errorf("not a fixed point:\n%q\n%q", first.Output, second.Output)
		}
		if second.Hoisted != 0 {
			t.Errorf("second pass hoisted %d constants", second.Hoisted)
		}
	}
}

func TestTruncatedOutputIsAPrefix(t *testing.T) {
	head := "a rnd(1,2)\nb\n"
	tail := "c rnd(3,4)\nd"
	full, _ := process(t, head+tail, driver.Options{})
	cut, _ := process(t, head+"#BREAK\n"+tail, driver.Options{})
	if !cut.Truncated || full.Truncated {
		t.Fatalf("Truncated flags: cut=%v full=%v", cut.Truncated, full.Truncated)
	}
	if !strings.HasPrefix(full.Output, cut.Output) {
		t.Errorf("%q is not a prefix of %q", cut.Output, full.Output)
	}
	// константы объявлены до обрезки и переживают её
	if !strings.Contains(cut.Output, "#const C2 rnd(3,4)") {
		t.Errorf("hoisted constant lost: %q", cut.Output)
	}
}

func TestHoistedNamesAreUnique(t *testing.T) {
	res, _ := process(t, "#REPEAT(4)\nx rnd(1,9)\n#END_REPEAT\ny rnd(1,9)", driver.Options{})
	if res.Hoisted != 5 {
		t.Fatalf("Hoisted = %d, want 5", res.Hoisted)
	}
	seen := map[string]bool{}
	for _, line := range strings.Split(res.Output, "\n") {
		if !strings.HasPrefix(line, "#const ") {
			continue
		}
		name := strings.Fields(line)[1]
		if seen[name] {
			t.Errorf("duplicate constant %s", name)
		}
		seen[name] = true
	}
	if len(seen) != 5 {
		t.Errorf("declared %d constants, want 5", len(seen))
	}
}

func TestConfigShapesOutput(t *testing.T) {
	cfg := project.Config{AreaBase: 500, HoistPrefix: "R"}
	res, diags := process(t, "actor_area a\nx rnd(1,2)", driver.Options{Config: cfg})
	if diags != "" {
		t.Fatal(diags)
	}
	want := "#const R1 rnd(1,2)\nactor_area 500\nx R1"
	if res.Output != want {
		t.Errorf("got %q, want %q", res.Output, want)
	}
}

func TestTimingsDiagnostic(t *testing.T) {
	res, _ := process(t, "a", driver.Options{Timings: true})
	if res.Failed() {
		t.Fatalf("timings must not fail the document")
	}
	items := res.Diagnostics()
	if len(items) != 1 || items[0].Code != diag.ObsTimings || items[0].Severity != diag.SevInfo {
		t.Fatalf("want one OBS7001 info, got %v", items)
	}
	if len(items[0].Notes) == 0 || !strings.Contains(items[0].Notes[0].Msg, `"phases"`) {
		t.Errorf("timing note must carry the JSON report: %v", items[0].Notes)
	}
	if len(res.Timing.Phases) != len(buildpipeline.Stages)-1 {
		t.Errorf("phases = %d, want %d", len(res.Timing.Phases), len(buildpipeline.Stages)-1)
	}
}

func TestProgressEvents(t *testing.T) {
	var got []string
	sink := buildpipeline.FuncSink(func(ev buildpipeline.Event) {
		got = append(got, string(ev.Stage)+":"+string(ev.Status))
	})
	driver.ProcessSource(context.Background(), "p.rms", []byte("#END_REPEAT"), driver.Options{Progress: sink})
	want := "lex:working structure:working structure:error"
	if strings.Join(got, " ") != want {
		t.Errorf("events = %q, want %q", strings.Join(got, " "), want)
	}
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(text), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestProcessFilesKeepsOrderAndIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.rms", "a rnd(1,2)"),
		filepath.Join(dir, "missing.rms"),
		writeFile(t, dir, "b.rms", "#REPEAT(2)\nb\n#END_REPEAT"),
	}
	var mu sync.Mutex
	finished := map[string]buildpipeline.Status{}
	sink := buildpipeline.FuncSink(func(ev buildpipeline.Event) {
		if ev.Status.Finished() {
			mu.Lock()
			finished[ev.File] = ev.Status
			mu.Unlock()
		}
	})
	cfg := project.Config{Jobs: 2}
	results, err := driver.ProcessFiles(context.Background(), paths, driver.Options{Config: cfg, Progress: sink})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Output != "#const C1 rnd(1,2)\na C1" {
		t.Errorf("a.rms = %q", results[0].Output)
	}
	if results[2].Output != "b\nb" {
		t.Errorf("b.rms = %q", results[2].Output)
	}
	missing := results[1]
	if !missing.Failed() || missing.Diagnostics()[0].Code != diag.IOLoadFileError {
		t.Errorf("missing file: %v", missing.Diagnostics())
	}
	for i, p := range paths {
		if results[i].Path != p {
			t.Errorf("result %d is %s, want %s", i, results[i].Path, p)
		}
	}
	if finished[paths[1]] != buildpipeline.StatusError || finished[paths[0]] != buildpipeline.StatusDone {
		t.Errorf("final statuses: %v", finished)
	}
}

func TestProcessFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.rms", "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := driver.ProcessFiles(ctx, []string{p}, driver.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCacheHit(t *testing.T) {
	dir := t.TempDir()
	cache, err := driver.OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	p := writeFile(t, dir, "a.rms", "#REPEAT(2)\nx rnd(1,3)\n#END_REPEAT\n#BREAK\ny")
	opts := driver.Options{Cache: cache}

	first := driver.ProcessFile(context.Background(), p, opts)
	if first.Cached || first.Failed() {
		t.Fatalf("first run: cached=%v diags=%v", first.Cached, first.Diagnostics())
	}
	second := driver.ProcessFile(context.Background(), p, opts)
	if !second.Cached {
		t.Fatalf("second run missed the cache")
	}
	if second.Output != first.Output || second.Hoisted != 2 || !second.Truncated {
		t.Errorf("cached result differs: %+v", second)
	}

	// другой префикс меняет отпечаток конфигурации
	other := driver.ProcessFile(context.Background(), p,
		driver.Options{Cache: cache, Config: project.Config{HoistPrefix: "Z"}})
	if other.Cached || !strings.Contains(other.Output, "#const Z1") {
		t.Errorf("config change must miss the cache: cached=%v %q", other.Cached, other.Output)
	}
}

func TestCacheSkipsDocumentsWithWarnings(t *testing.T) {
	dir := t.TempDir()
	cache, err := driver.OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	p := writeFile(t, dir, "w.rms", "#const A 1\n#const A 2\nx A")
	opts := driver.Options{Cache: cache}
	first := driver.ProcessFile(context.Background(), p, opts)
	if len(first.Diagnostics()) == 0 {
		t.Fatalf("expected a warning")
	}
	second := driver.ProcessFile(context.Background(), p, opts)
	if second.Cached {
		t.Errorf("document with warnings must not be cached")
	}
	if len(second.Diagnostics()) != len(first.Diagnostics()) {
		t.Errorf("warnings lost on the second run")
	}
}

func TestTokenize(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "t.rms", "create_land { }")
	res, err := driver.Tokenize(p, 10)
	if err != nil {
		t.Fatal(err)
	}
	if n := len(res.Tokens); n != 4 {
		t.Errorf("tokens = %d, want 4 with EOF", n)
	}
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	res, _ := process(t, "#REPEAT(2)\na\n#END_REPEAT", driver.Options{})
	res.Path = "maps/arena.rms"
	dst, err := driver.WriteOutput(res, filepath.Join(dir, "out"))
	if err != nil {
		t.Fatal(err)
	}
	if dst != filepath.Join(dir, "out", "arena.rms") {
		t.Errorf("dst = %s", dst)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "a\na" {
		t.Errorf("written %q, %v", data, err)
	}
}

func TestWriteOutputFailure(t *testing.T) {
	dir := t.TempDir()
	// каталог вывода занят обычным файлом
	blocker := writeFile(t, dir, "out", "")
	res, _ := process(t, "a", driver.Options{})
	if _, err := driver.WriteOutput(res, blocker); err == nil {
		t.Fatal("expected an error")
	}
	if !res.Failed() || res.Diagnostics()[0].Code != diag.IOWriteFileError {
		t.Errorf("diagnostics = %v", res.Diagnostics())
	}
}

func TestRepeatedErrorIsReportedOnce(t *testing.T) {
	res, _ := process(t, "#REPEAT(3)\n#FOO(1)\n#END_REPEAT", driver.Options{})
	n := 0
	for _, d := range res.Diagnostics() {
		if d.Code == diag.MacUnknownMacro {
			n++
		}
	}
	if n != 1 {
		t.Errorf("MAC4002 reported %d times, want 1", n)
	}
}

func TestBadDocumentsProduceNoOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  diag.Code
	}{
		{"unknown generator", "#ROCKGEN\ncreate_land { terrain_type GRASS }", diag.MacUnknownMacro},
		{"overflowing constant", "#const X 9223372036854775807 * 2\n#REPEAT(X)\nx\n#END_REPEAT", diag.SymBadConstExpr},
		{"too many players", "create_object SCOUT {\n#SET_PLACE_FOR_EVERY_PLAYER(200)\n}", diag.MacBadArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, diags := process(t, tt.input, driver.Options{})
			if !res.Failed() || res.Output != "" {
				t.Fatalf("expected a failed document, got %q", res.Output)
			}
			if !strings.Contains(diags, tt.code.ID()) {
				t.Errorf("diagnostics lack %s:\n%s", tt.code.ID(), diags)
			}
		})
	}
}

func TestSlotLabelsExpand(t *testing.T) {
	res, diags := process(t, "<PLAYER_SETUP>\n#POSITION_LABELS", driver.Options{})
	if res.Failed() {
		t.Fatalf("unexpected failure:\n%s", diags)
	}
	if strings.Contains(res.Output, "#POSITION_LABELS") || !strings.Contains(res.Output, "#define P1_SLOT_19") {
		t.Errorf("output:\n%s", res.Output)
	}
}

func TestHeaderCannotEscapeItsComment(t *testing.T) {
	res, diags := process(t, "#HEADER_START\nhello */ world\n#HEADER_END\nx", driver.Options{})
	if diags != "" {
		t.Fatalf("unexpected diagnostics:\n%s", diags)
	}
	if want := "/* hello * / world */\nx"; res.Output != want {
		t.Errorf("output = %q, want %q", res.Output, want)
	}
}
