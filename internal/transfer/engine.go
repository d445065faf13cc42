package transfer

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Engine schedules the per-part work of a multipart transfer. The two
// implementations are interchangeable: for the same part function they
// produce the same transferred bytes and equivalent progress totals, and
// differ only in how the parts are scheduled.
type Engine interface {
	// Run invokes fn once for each part index in [0, parts) and returns
	// the first error encountered, if any.
	Run(ctx context.Context, parts int, fn func(ctx context.Context, part int) error) error
}

// poolEngine runs parts on a bounded pool of worker goroutines.
type poolEngine struct {
	limit int
}

// NewPoolEngine returns an Engine that runs up to concurrency parts at a
// time on worker goroutines. Values below one are clamped to one.
func NewPoolEngine(concurrency int) Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &poolEngine{limit: concurrency}
}

func (e *poolEngine) Run(ctx context.Context, parts int, fn func(ctx context.Context, part int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for part := 0; part < parts; part++ {
		g.Go(func() error {
			return fn(gctx, part)
		})
	}
	return g.Wait() //nolint:wrapcheck // callers wrap with operation context
}

// serialEngine runs parts one at a time on the calling goroutine, checking
// the context at each part boundary.
type serialEngine struct{}

// NewSerialEngine returns an Engine that transfers parts sequentially
// without spawning workers.
func NewSerialEngine() Engine {
	return serialEngine{}
}

func (serialEngine) Run(ctx context.Context, parts int, fn func(ctx context.Context, part int) error) error {
	for part := 0; part < parts; part++ {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // context error is self-describing
		}
		if err := fn(ctx, part); err != nil {
			return err
		}
	}
	return nil
}

// EngineFor returns the engine matching the plan and scheduling model:
// a worker pool sized by the plan's concurrency when parallel is true,
// otherwise the sequential engine.
func EngineFor(plan Plan, parallel bool) Engine {
	if parallel {
		return NewPoolEngine(plan.Concurrency)
	}
	return NewSerialEngine()
}
