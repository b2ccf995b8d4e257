// Package buildpipeline is the progress vocabulary shared by the driver,
// which reports per-document stage events, and the UI that draws them.
package buildpipeline

import "time"

// Stage is one step of the per-document pipeline.
type Stage string

const (
	StageLoad      Stage = "load"
	StageLex       Stage = "lex"
	StageStructure Stage = "structure"
	StageResolve   Stage = "resolve"
	StageExpand    Stage = "expand"
	StageHoist     Stage = "hoist"
	StageTruncate  Stage = "truncate"
	StageMinify    Stage = "minify"
	StageEmit      Stage = "emit"
)

// Stages lists the document stages in execution order.
var Stages = []Stage{
	StageLoad, StageLex, StageStructure, StageResolve, StageExpand,
	StageHoist, StageTruncate, StageMinify, StageEmit,
}

// Fraction returns how far through the pipeline a document at stage is,
// in (0, 1]. Unknown stages report 0.
func (s Stage) Fraction() float64 {
	for i, st := range Stages {
		if st == s {
			return float64(i+1) / float64(len(Stages)+1)
		}
	}
	return 0
}

// Status is the state of a document within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusCached  Status = "cached"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Finished reports whether no further events follow for the document.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusError || s == StatusCached
}

// Event reports progress for one document (or for the batch when File is
// empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: documents of a batch report from different goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// EmitQueued marks every file as queued.
func EmitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, f := range files {
		sink.OnEvent(Event{File: f, Status: StatusQueued})
	}
}
