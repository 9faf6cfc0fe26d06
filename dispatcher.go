package scanline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Progress is reported after every row written to the surface.
type Progress struct {
	// Row is the index of the row that was just written.
	Row int

	// RowsDone is the number of rows written so far in the session.
	RowsDone int

	// TotalRows is the surface height.
	TotalRows int

	// Elapsed is the time since the session started.
	Elapsed time.Duration
}

// Stats summarizes the most recent session of a Dispatcher.
type Stats struct {
	Width    int
	Height   int
	Workers  int
	Rows     int
	Elapsed  time.Duration
	Err      error
	Finished time.Time
}

// Dispatcher runs parallel scanline render sessions.
//
// A session probes the scene size, partitions the rows, starts one worker per
// range and composites the rows each worker streams back into the output
// surface. Only one session runs at a time.
//
// Thread safety: Dispatcher is safe for concurrent use. Concurrent
// RunSession calls fail with ErrSessionInProgress.
type Dispatcher struct {
	factory UnitFactory
	opts    options
	surface *Surface

	mu     sync.Mutex
	cancel context.CancelFunc // non-nil while a session runs
	idle   chan struct{}      // closed when the running session returns
	closed bool
	stats  Stats
}

// NewDispatcher creates a dispatcher whose workers build render units with
// factory.
//
// The default configuration resolves the worker count from
// runtime.GOMAXPROCS, bounds every worker call by DefaultRowTimeout and
// renders into a fresh Surface.
func NewDispatcher(factory UnitFactory, opts ...Option) *Dispatcher {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	d := &Dispatcher{
		factory: factory,
		opts:    o,
		surface: o.surface,
	}
	if d.surface == nil {
		d.surface = NewSurface(0, 0)
	}
	return d
}

// logger returns the WithLogger logger, or the package logger as it is set
// when the call is made.
func (d *Dispatcher) logger() *slog.Logger {
	if d.opts.logger != nil {
		return d.opts.logger
	}
	return Logger()
}

// Surface returns the output surface. Its contents are only complete once
// RunSession has returned nil.
func (d *Dispatcher) Surface() *Surface {
	return d.surface
}

// LastStats returns the statistics of the most recently finished session.
func (d *Dispatcher) LastStats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Running reports whether a session is in progress.
func (d *Dispatcher) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// RunSession renders sceneInput into the surface.
//
// workers selects the number of concurrent workers; when it is not positive
// the dispatcher's configured count is used, then the concurrency hint, then
// DefaultWorkers.
//
// Any worker failure aborts the whole session: every live worker is disposed
// and the cause is returned wrapped in a *SessionError. Rows written before
// the failure stay in the surface but no further rows are written. When the
// scene input is rejected the surface is not touched.
func (d *Dispatcher) RunSession(ctx context.Context, sceneInput string, workers int) error {
	ctx, finish, err := d.begin(ctx)
	if err != nil {
		return err
	}

	log := d.logger()
	start := time.Now()
	stats := Stats{}
	err = d.run(ctx, log, sceneInput, workers, start, &stats)
	stats.Elapsed = time.Since(start)
	stats.Finished = time.Now()

	if err != nil {
		err = &SessionError{Err: err}
		stats.Err = err
		log.Info("scanline: session failed", "elapsed", stats.Elapsed, "err", err)
	} else {
		log.Info("scanline: session finished",
			"width", stats.Width, "height", stats.Height,
			"workers", stats.Workers, "elapsed", stats.Elapsed)
	}

	finish(stats)
	return err
}

// Shutdown aborts the running session, if any, waits for its workers to be
// disposed and rejects all later sessions with ErrDispatcherClosed.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	d.closed = true
	cancel, idle := d.cancel, d.idle
	d.mu.Unlock()

	if cancel != nil {
		cancel()
		<-idle
	}
}

// begin marks a session as running and derives its context.
func (d *Dispatcher) begin(parent context.Context) (context.Context, func(Stats), error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, nil, ErrDispatcherClosed
	}
	if d.cancel != nil {
		return nil, nil, ErrSessionInProgress
	}

	ctx, cancel := context.WithCancel(parent)
	if d.opts.sessionTimeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, d.opts.sessionTimeout)
		inner := cancel
		cancel = func() {
			cancelTimeout()
			inner()
		}
	}

	idle := make(chan struct{})
	d.cancel = cancel
	d.idle = idle

	finish := func(stats Stats) {
		cancel()
		d.mu.Lock()
		d.stats = stats
		d.cancel = nil
		d.idle = nil
		d.mu.Unlock()
		close(idle)
	}
	return ctx, finish, nil
}

// run executes the session steps.
func (d *Dispatcher) run(ctx context.Context, log *slog.Logger, sceneInput string, workers int, start time.Time, stats *Stats) error {
	dims, err := d.probe(ctx, log, sceneInput)
	if err != nil {
		return err
	}

	n := workers
	if n <= 0 {
		n = d.opts.workers
	}
	n = ResolveWorkers(n, d.opts.hint)

	ranges, err := Plan(dims.Height, n)
	if err != nil {
		return err
	}

	d.surface.Resize(dims.Width, dims.Height)
	stats.Width, stats.Height, stats.Workers = dims.Width, dims.Height, len(ranges)

	log.Info("scanline: session started",
		"width", dims.Width, "height", dims.Height, "workers", len(ranges))

	proxies := make([]*WorkerProxy, len(ranges))
	for i := range proxies {
		proxies[i] = d.newProxy(log)
	}
	// Dispose is idempotent; this sweep only reaches proxies that did not
	// finish their own loop.
	defer d.disposeAll(log, proxies)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range ranges {
		p := proxies[i]
		g.Go(func() error {
			if err := d.callInit(gctx, p, r, sceneInput); err != nil {
				return err
			}
			return d.pull(gctx, log, p, dims.Height, start, &done)
		})
	}

	err = g.Wait()
	stats.Rows = int(done.Load())
	return err
}

// probe discovers the scene size with a throwaway worker.
func (d *Dispatcher) probe(ctx context.Context, log *slog.Logger, sceneInput string) (Dimensions, error) {
	p := d.newProxy(log)
	defer d.dispose(log, p)

	if err := d.callInit(ctx, p, RowRange{}, sceneInput); err != nil {
		return Dimensions{}, err
	}

	cctx, cancel := d.callContext(ctx)
	defer cancel()
	return p.QueryDimensions(cctx)
}

// pull streams rows from p into the surface until p is exhausted.
func (d *Dispatcher) pull(ctx context.Context, log *slog.Logger, p Proxy, total int, start time.Time, done *atomic.Int64) error {
	for {
		cctx, cancel := d.callContext(ctx)
		row, ok, err := p.NextRow(cctx)
		cancel()
		if err != nil {
			return err
		}
		if !ok {
			d.dispose(log, p)
			return nil
		}

		// A sibling failure cancels ctx; stop writing at that point.
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.surface.WriteRow(row.Index, row.Pixels); err != nil {
			return err
		}

		n := done.Add(1)
		if d.opts.progress != nil {
			d.opts.progress(Progress{
				Row:       row.Index,
				RowsDone:  int(n),
				TotalRows: total,
				Elapsed:   time.Since(start),
			})
		}
	}
}

// callInit initializes p under the per-call bound.
func (d *Dispatcher) callInit(ctx context.Context, p Proxy, r RowRange, sceneInput string) error {
	cctx, cancel := d.callContext(ctx)
	defer cancel()
	return p.Initialize(cctx, r, sceneInput)
}

// callContext derives the context for a single worker call.
func (d *Dispatcher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.opts.rowTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.opts.rowTimeout)
}

func (d *Dispatcher) newProxy(log *slog.Logger) *WorkerProxy {
	p := NewWorkerProxy(d.factory)
	p.teardownTimeout = d.opts.teardownTimeout
	p.log = log
	return p
}

// dispose tears p down. Teardown failures are logged and never replace the
// session result.
func (d *Dispatcher) dispose(log *slog.Logger, p Proxy) {
	if err := p.Dispose(); err != nil {
		var te *TeardownError
		if !errors.As(err, &te) {
			te = &TeardownError{Range: p.Range(), Err: err}
		}
		log.Warn("scanline: worker teardown failed", "range", te.Range.String(), "err", te.Err)
	}
}

// disposeAll disposes every proxy concurrently, so stalled workers cost one
// teardown bound in total rather than one each.
func (d *Dispatcher) disposeAll(log *slog.Logger, proxies []*WorkerProxy) {
	var wg sync.WaitGroup
	for _, p := range proxies {
		wg.Go(func() { d.dispose(log, p) })
	}
	wg.Wait()
}
