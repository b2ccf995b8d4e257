package driver

import (
	"context"
	"fmt"
	"os"
	"time"

	"rmspp/internal/block"
	"rmspp/internal/buildpipeline"
	"rmspp/internal/diag"
	"rmspp/internal/emit"
	"rmspp/internal/hoist"
	"rmspp/internal/lexer"
	"rmspp/internal/macro"
	"rmspp/internal/minify"
	"rmspp/internal/observ"
	"rmspp/internal/project"
	"rmspp/internal/source"
	"rmspp/internal/symbols"
	"rmspp/internal/trace"
	"rmspp/internal/truncate"
)

// ProcessSource runs the pipeline over in-memory text. name is used in
// diagnostics only.
func ProcessSource(ctx context.Context, name string, text []byte, opts Options) *Result {
	opts = opts.withDefaults()
	return Process(ctx, NewDocument(name, text, opts.Config.MaxDiagnostics), opts)
}

// ProcessFile loads path and runs the pipeline. A file that cannot be read
// yields a Result with an IO5001 error.
func ProcessFile(ctx context.Context, path string, opts Options) *Result {
	opts = opts.withDefaults()
	emitEvent(opts.Progress, path, buildpipeline.StageLoad, buildpipeline.StatusWorking, nil, 0)

	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		// пустой виртуальный файл, чтобы у диагностики была позиция
		id = fs.AddVirtual(path, nil)
		bag := diag.NewBag(opts.Config.MaxDiagnostics)
		diag.ReportError(diag.BagReporter{Bag: bag}, diag.IOLoadFileError,
			source.Span{File: id}, "failed to load file: "+describe(err)).Emit()
		emitEvent(opts.Progress, path, buildpipeline.StageLoad, buildpipeline.StatusError, err, 0)
		return &Result{Path: path, FileSet: fs, Bag: bag}
	}
	doc := &Document{FileSet: fs, File: fs.Get(id), Bag: diag.NewBag(opts.Config.MaxDiagnostics)}

	key := project.Combine(project.Digest(doc.File.Hash), opts.Config.Fingerprint())
	if res, ok := cached(opts.Cache, key, doc); ok {
		emitEvent(opts.Progress, path, buildpipeline.StageEmit, buildpipeline.StatusCached, nil, 0)
		return res
	}
	res := Process(ctx, doc, opts)
	store(opts.Cache, key, res)
	return res
}

func describe(err error) string {
	if pe, ok := err.(*os.PathError); ok {
		return pe.Err.Error()
	}
	return err.Error()
}

// Process runs every stage over doc and stops after the first stage that
// reports an error. Stages never look at ctx: a started document always
// runs to the end.
func Process(ctx context.Context, doc *Document, opts Options) *Result {
	opts = opts.withDefaults()
	path := doc.File.Path
	tracer := trace.FromContext(ctx)
	fileSpan := trace.Begin(tracer, trace.ScopeFile, "file:"+path, trace.ParentSpan(ctx))

	counter := &diag.CountingReporter{Next: diag.BagReporter{Bag: doc.Bag}}
	// копии #REPEAT делят спаны, одна ошибка не должна печататься n раз
	rep := diag.NewDedupReporter(counter)
	res := &Result{Path: path, FileSet: doc.FileSet, Bag: doc.Bag}
	r := &runner{
		path:     path,
		tracer:   tracer,
		parent:   fileSpan.ID(),
		timer:    observ.NewTimer(),
		progress: opts.Progress,
		counter:  counter,
	}
	cfg := opts.Config

	ok := r.stage(buildpipeline.StageLex, func() string {
		doc.Tokens = lexer.Tokenize(doc.File, lexer.Options{Reporter: rep})
		return fmt.Sprintf("%d tokens", len(doc.Tokens))
	}) && r.stage(buildpipeline.StageStructure, func() string {
		doc.Root = block.Structure(doc.File, doc.Tokens, rep)
		return fmt.Sprintf("%d headers", len(block.Headers(doc.Root)))
	}) && r.stage(buildpipeline.StageResolve, func() string {
		doc.Table = symbols.NewTable(cfg.AreaBase, symbols.Hints{})
		symbols.Resolve(doc.Root, doc.Table, rep)
		return fmt.Sprintf("%d areas", doc.Table.AreaCount())
	}) && r.stage(buildpipeline.StageExpand, func() string {
		macro.Expand(doc.Root, doc.Table, rep, macro.Options{MaxTokens: cfg.MaxTokens})
		return ""
	}) && r.stage(buildpipeline.StageHoist, func() string {
		res.Hoisted = hoist.Hoist(doc.Root, doc.Table, hoist.Options{Prefix: cfg.HoistPrefix})
		return fmt.Sprintf("%d constants", res.Hoisted)
	}) && r.stage(buildpipeline.StageTruncate, func() string {
		res.Truncated = truncate.Apply(doc.Root)
		if res.Truncated {
			return "cut at #BREAK"
		}
		return ""
	}) && r.stage(buildpipeline.StageMinify, func() string {
		minify.Apply(doc.Root)
		return ""
	}) && r.stage(buildpipeline.StageEmit, func() string {
		res.Output = emit.Emit(doc.Root)
		return fmt.Sprintf("%d bytes", len(res.Output))
	})

	if !ok {
		res.Output = ""
		res.Hoisted = 0
		res.Truncated = false
	}
	res.Timing = r.timer.Report()
	if opts.Timings {
		appendTimingDiagnostic(doc.Bag, doc.File.ID, timingPayload{Path: path, Report: res.Timing})
	}

	status := buildpipeline.StatusDone
	detail := "ok"
	if !ok {
		status = buildpipeline.StatusError
		detail = fmt.Sprintf("%d errors", counter.Errors)
	}
	emitEvent(opts.Progress, path, r.last, status, nil, time.Duration(res.Timing.TotalMS*float64(time.Millisecond)))
	fileSpan.End(detail)
	return res
}

type runner struct {
	path     string
	tracer   trace.Tracer
	parent   uint64
	timer    *observ.Timer
	progress buildpipeline.ProgressSink
	counter  *diag.CountingReporter
	last     buildpipeline.Stage
}

// stage runs fn as one traced, timed stage and reports whether the
// pipeline may go on.
func (r *runner) stage(st buildpipeline.Stage, fn func() string) bool {
	r.last = st
	emitEvent(r.progress, r.path, st, buildpipeline.StatusWorking, nil, 0)
	span := trace.Begin(r.tracer, trace.ScopeStage, string(st), r.parent)
	idx := r.timer.Begin(string(st))
	note := fn()
	r.timer.End(idx, note)
	span.End(note)
	return r.counter.Errors == 0
}

func emitEvent(sink buildpipeline.ProgressSink, file string, st buildpipeline.Stage, status buildpipeline.Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(buildpipeline.Event{File: file, Stage: st, Status: status, Err: err, Elapsed: elapsed})
}
