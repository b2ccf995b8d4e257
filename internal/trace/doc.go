// Package trace records what the preprocessor is doing while it runs.
//
// Enable it from the command line:
//
//	rmspp build --trace=- --trace-level=stage map.rms
//
// Tracers:
//
//   - Nop: used when tracing is off
//   - StreamTracer: writes each event as it happens (text or NDJSON)
//   - RingTracer: keeps the last events in memory for a crash dump
//   - MultiTracer: fans out to several tracers
//
// Levels (off|error|driver|file|stage) pick the finest scope that is still
// emitted: driver is one event pair per command, file one pair per input
// document, stage one pair per pipeline stage of a document.
//
// The tracer travels through the pipeline in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeStage, "expand", parent)
//	defer span.End("")
package trace
