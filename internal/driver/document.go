package driver

import (
	"rmspp/internal/block"
	"rmspp/internal/buildpipeline"
	"rmspp/internal/diag"
	"rmspp/internal/observ"
	"rmspp/internal/project"
	"rmspp/internal/source"
	"rmspp/internal/symbols"
	"rmspp/internal/token"
)

// Options configure the pipeline. Config carries the settings that shape
// the output; the rest only changes how a run is observed.
type Options struct {
	Config project.Config
	// Timings appends an OBS7001 info diagnostic with per-stage durations.
	Timings  bool
	Progress buildpipeline.ProgressSink
	// Cache, when set, stores outputs of clean documents on disk.
	Cache *DiskCache
}

func (o Options) withDefaults() Options {
	project.ApplyDefaults(&o.Config)
	return o
}

// Document is the state of one script while it moves through the stages.
// It is owned by a single goroutine.
type Document struct {
	FileSet *source.FileSet
	File    *source.File
	Tokens  []token.Token
	Root    *block.Block
	Table   *symbols.Table
	Bag     *diag.Bag
}

// NewDocument wraps text in a fresh FileSet.
func NewDocument(name string, text []byte, maxDiagnostics int) *Document {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, text)
	return &Document{FileSet: fs, File: fs.Get(id), Bag: diag.NewBag(maxDiagnostics)}
}

// Result is what the pipeline produced for one document. Output is empty
// whenever Bag holds an error.
type Result struct {
	Path      string
	Output    string
	FileSet   *source.FileSet
	Bag       *diag.Bag
	Timing    observ.Report
	Hoisted   int
	Truncated bool
	Cached    bool
}

// Failed reports whether the document produced errors.
func (r *Result) Failed() bool {
	return r == nil || r.Bag.HasErrors()
}

// Diagnostics returns the document's diagnostics in report order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	if r == nil || r.Bag == nil {
		return nil
	}
	return r.Bag.Items()
}
