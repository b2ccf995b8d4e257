package ui

import (
	"strings"
	"testing"

	"rmspp/internal/buildpipeline"
)

func newTestModel(files ...string) *progressModel {
	return NewProgressModel("build", files, nil).(*progressModel)
}

func TestPercentFollowsStages(t *testing.T) {
	m := newTestModel("a.rms", "b.rms")
	if got := m.percent(); got != 0 {
		t.Fatalf("initial percent = %v", got)
	}
	m.applyEvent(buildpipeline.Event{File: "a.rms", Stage: buildpipeline.StageHoist, Status: buildpipeline.StatusWorking})
	want := buildpipeline.StageHoist.Fraction() / 2
	if got := m.percent(); got != want {
		t.Errorf("percent = %v, want %v", got, want)
	}
	m.applyEvent(buildpipeline.Event{File: "a.rms", Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusDone})
	m.applyEvent(buildpipeline.Event{File: "b.rms", Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusCached})
	if got := m.percent(); got != 1 {
		t.Errorf("percent = %v, want 1", got)
	}
}

func TestFinishedItemsIgnoreLateEvents(t *testing.T) {
	m := newTestModel("a.rms")
	m.applyEvent(buildpipeline.Event{File: "a.rms", Stage: buildpipeline.StageLoad, Status: buildpipeline.StatusError})
	m.applyEvent(buildpipeline.Event{File: "a.rms", Stage: buildpipeline.StageLex, Status: buildpipeline.StatusWorking})
	if m.items[0].status != buildpipeline.StatusError {
		t.Errorf("status = %s", m.items[0].status)
	}
}

func TestViewShowsStageLabels(t *testing.T) {
	m := newTestModel("a.rms", "b.rms")
	m.applyEvent(buildpipeline.Event{File: "a.rms", Stage: buildpipeline.StageMinify, Status: buildpipeline.StatusWorking})
	view := m.View()
	for _, want := range []string{"minify", "queued", "a.rms", "b.rms"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"maps/arena.rms", 40, "maps/arena.rms"},
		{"maps/arena.rms", 8, "maps/..."},
		{"maps/arena.rms", 3, "map"},
		{"карты/арена.rms", 9, "карты/..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
