package driver

import (
	"context"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"rmspp/internal/buildpipeline"
	"rmspp/internal/trace"
)

// ProcessFiles runs ProcessFile for every path with at most
// opts.Config.Jobs documents in flight (GOMAXPROCS when zero). Results are
// in the order of paths. A failing document never stops the others; the
// returned error is only the context's, when it was cancelled before all
// documents started. Documents that never started have a nil slot.
func ProcessFiles(ctx context.Context, paths []string, opts Options) ([]*Result, error) {
	opts = opts.withDefaults()
	results := make([]*Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	tracer := trace.FromContext(ctx)
	batch := trace.Begin(tracer, trace.ScopeDriver, "process", trace.ParentSpan(ctx))
	defer batch.End("")
	ctx = trace.WithParent(ctx, batch.ID())

	buildpipeline.EmitQueued(opts.Progress, paths)

	jobs := opts.Config.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	// каждая горутина пишет только в свой слот results
	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ProcessFile(ctx, path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	for _, r := range results {
		if r == nil {
			return results, ctx.Err()
		}
	}
	batch.WithExtra("files", strconv.Itoa(len(paths)))
	return results, nil
}
