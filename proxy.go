package scanline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gogpu/scanline/internal/worker"
)

// Proxy is a handle to one isolated worker hosting a RenderUnit.
//
// Every call is a message to the worker: it suspends only the calling
// goroutine until the worker replies or ctx ends.
type Proxy interface {
	// Initialize starts the worker, builds the render unit from sceneInput
	// inside it and places the row cursor at r.Start.
	Initialize(ctx context.Context, r RowRange, sceneInput string) error

	// QueryDimensions returns the scene size declared by the render unit.
	QueryDimensions(ctx context.Context) (Dimensions, error)

	// NextRow renders the row at the cursor and advances the cursor.
	// It returns ok == false once the cursor reaches the end of the range,
	// and keeps doing so on every later call.
	NextRow(ctx context.Context) (row RenderedRow, ok bool, err error)

	// Dispose tears the worker down. Only the first call has an effect.
	Dispose() error

	// Range returns the rows assigned by Initialize.
	Range() RowRange
}

// WorkerProxy is a Proxy backed by a dedicated worker goroutine.
//
// Thread safety: WorkerProxy is driven by one pull loop and is not safe for
// concurrent use.
type WorkerProxy struct {
	factory         UnitFactory
	teardownTimeout time.Duration
	log             *slog.Logger

	w         *worker.Worker
	rng       RowRange
	next      int
	exhausted bool
	disposed  bool

	// unit lives on the worker goroutine; it is only accessed inside w.Call.
	unit RenderUnit
}

var _ Proxy = (*WorkerProxy)(nil)

// NewWorkerProxy returns an uninitialized proxy whose worker will build its
// render unit with factory.
func NewWorkerProxy(factory UnitFactory) *WorkerProxy {
	return &WorkerProxy{
		factory:         factory,
		teardownTimeout: DefaultTeardownTimeout,
		log:             Logger(),
	}
}

// Range implements Proxy.
func (p *WorkerProxy) Range() RowRange {
	return p.rng
}

// Initialize implements Proxy.
//
// A failure is returned as an *InitError and the worker is torn down
// before Initialize returns.
func (p *WorkerProxy) Initialize(ctx context.Context, r RowRange, sceneInput string) error {
	if p.disposed {
		return &InitError{Range: r, Err: ErrDisposed}
	}
	if p.w != nil {
		return &InitError{Range: r, Err: ErrAlreadyInitialized}
	}
	if r.Start < 0 || r.End < r.Start {
		return &InitError{Range: r, Err: fmt.Errorf("%w: row range %s", ErrInvalidPartition, r)}
	}
	if p.factory == nil {
		return &InitError{Range: r, Err: errors.New("no render unit factory")}
	}

	p.rng = r
	p.next = r.Start
	p.w = worker.New()

	factory := p.factory
	err := p.w.Call(ctx, func() error {
		unit, err := factory(sceneInput)
		if err != nil {
			return err
		}
		if unit == nil {
			return errors.New("render unit factory returned nil")
		}
		if d := unit.Dimensions(); d.Width < 0 || d.Height < 0 {
			return fmt.Errorf("render unit declared invalid dimensions %dx%d", d.Width, d.Height)
		}
		p.unit = unit
		return nil
	})
	if err != nil {
		if derr := p.Dispose(); derr != nil {
			p.log.Warn("scanline: dispose after failed initialize", "range", r.String(), "err", derr)
		}
		return &InitError{Range: r, Err: err}
	}

	p.log.Debug("scanline: worker initialized", "range", r.String())
	return nil
}

// QueryDimensions implements Proxy.
func (p *WorkerProxy) QueryDimensions(ctx context.Context) (Dimensions, error) {
	if err := p.ready(); err != nil {
		return Dimensions{}, err
	}

	var dims Dimensions
	err := p.w.Call(ctx, func() error {
		dims = p.unit.Dimensions()
		return nil
	})
	if err != nil {
		return Dimensions{}, err
	}
	return dims, nil
}

// NextRow implements Proxy.
//
// Exactly one row is rendered per call; nothing is computed ahead of the
// cursor. A render failure is returned as a *RowError and does not move the
// cursor.
func (p *WorkerProxy) NextRow(ctx context.Context) (RenderedRow, bool, error) {
	if p.exhausted {
		return RenderedRow{}, false, nil
	}
	if err := p.ready(); err != nil {
		return RenderedRow{}, false, err
	}
	if p.next >= p.rng.End {
		p.exhausted = true
		p.log.Debug("scanline: worker exhausted", "range", p.rng.String())
		return RenderedRow{}, false, nil
	}

	y := p.next
	var pixels []byte
	err := p.w.Call(ctx, func() error {
		row, err := p.unit.RenderRow(y)
		if err != nil {
			return err
		}
		if want := p.unit.Dimensions().Width * ChannelDepth; len(row) != want {
			return fmt.Errorf("%w: got %d bytes, want %d", ErrRowLength, len(row), want)
		}
		pixels = row
		return nil
	})
	if err != nil {
		return RenderedRow{}, false, &RowError{Row: y, Err: err}
	}

	p.next++
	return RenderedRow{Index: y, Pixels: pixels}, true, nil
}

// Dispose implements Proxy.
//
// If the render unit implements io.Closer it is closed on the worker
// goroutine first. Closing the unit and waiting for the worker to exit share
// one teardown deadline; when it passes Dispose reports a *TeardownError and
// abandons the goroutine.
func (p *WorkerProxy) Dispose() error {
	if p.disposed {
		return nil
	}
	p.disposed = true

	if p.w == nil {
		return nil
	}

	ctx := context.Background()
	if p.teardownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.teardownTimeout)
		defer cancel()
	}

	var closeErr error
	if p.w.IsRunning() {
		closeErr = p.w.Call(ctx, func() error {
			if c, ok := p.unit.(io.Closer); ok {
				return c.Close()
			}
			return nil
		})
	}

	if err := p.w.Shutdown(ctx); err != nil {
		return &TeardownError{Range: p.rng, Err: err}
	}
	if closeErr != nil {
		return &TeardownError{Range: p.rng, Err: closeErr}
	}

	p.log.Debug("scanline: worker disposed", "range", p.rng.String())
	return nil
}

// ready reports whether the proxy can accept render calls.
func (p *WorkerProxy) ready() error {
	switch {
	case p.disposed:
		return ErrDisposed
	case p.w == nil:
		return ErrNotInitialized
	}
	return nil
}
