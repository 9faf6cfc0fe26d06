package scanline

import (
	"log/slog"
	"testing"
	"time"
)

func TestDefaultOptions(t *testing.T) {
	d := NewDispatcher(nil)

	if d.opts.rowTimeout != DefaultRowTimeout {
		t.Errorf("rowTimeout = %v, want %v", d.opts.rowTimeout, DefaultRowTimeout)
	}
	if d.opts.teardownTimeout != DefaultTeardownTimeout {
		t.Errorf("teardownTimeout = %v, want %v", d.opts.teardownTimeout, DefaultTeardownTimeout)
	}
	if d.opts.sessionTimeout != 0 {
		t.Errorf("sessionTimeout = %v, want 0", d.opts.sessionTimeout)
	}
	if d.opts.hint == nil {
		t.Error("hint is nil, want PlatformConcurrency")
	}
	if d.Surface() == nil {
		t.Fatal("Surface() is nil")
	}
	if d.logger() != Logger() {
		t.Error("dispatcher should use the package logger by default")
	}
}

func TestOptions(t *testing.T) {
	s := NewSurface(1, 1)
	l := slog.New(slog.DiscardHandler)
	var called bool

	d := NewDispatcher(nil,
		WithWorkers(6),
		WithConcurrencyHint(func() int { return 2 }),
		WithSurface(s),
		WithLogger(l),
		WithRowTimeout(time.Second),
		WithSessionTimeout(time.Minute),
		WithTeardownTimeout(3*time.Second),
		WithProgress(func(Progress) { called = true }),
	)

	if d.opts.workers != 6 {
		t.Errorf("workers = %d, want 6", d.opts.workers)
	}
	if got := d.opts.hint(); got != 2 {
		t.Errorf("hint() = %d, want 2", got)
	}
	if d.Surface() != s {
		t.Error("WithSurface was not applied")
	}
	if d.logger() != l {
		t.Error("WithLogger was not applied")
	}
	if d.opts.rowTimeout != time.Second {
		t.Errorf("rowTimeout = %v, want 1s", d.opts.rowTimeout)
	}
	if d.opts.sessionTimeout != time.Minute {
		t.Errorf("sessionTimeout = %v, want 1m", d.opts.sessionTimeout)
	}
	if d.opts.teardownTimeout != 3*time.Second {
		t.Errorf("teardownTimeout = %v, want 3s", d.opts.teardownTimeout)
	}
	d.opts.progress(Progress{})
	if !called {
		t.Error("WithProgress callback not stored")
	}
}

func TestPlatformConcurrency(t *testing.T) {
	if n := PlatformConcurrency(); n < 1 {
		t.Errorf("PlatformConcurrency() = %d, want >= 1", n)
	}
}
