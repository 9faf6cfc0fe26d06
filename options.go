package scanline

import (
	"log/slog"
	"time"
)

// Defaults for dispatcher bounds.
const (
	// DefaultRowTimeout bounds every single Initialize and NextRow call.
	DefaultRowTimeout = 30 * time.Second

	// DefaultTeardownTimeout bounds the disposal of one worker.
	DefaultTeardownTimeout = 5 * time.Second
)

// Option configures a Dispatcher during creation.
// Use functional options to customize Dispatcher behavior.
//
// Example:
//
//	// Default configuration
//	d := scanline.NewDispatcher(raytrace.Factory)
//
//	// Eight workers and a one minute budget per session
//	d := scanline.NewDispatcher(raytrace.Factory,
//	    scanline.WithWorkers(8),
//	    scanline.WithSessionTimeout(time.Minute))
type Option func(*options)

// options holds optional configuration for Dispatcher creation.
type options struct {
	workers         int
	hint            func() int
	surface         *Surface
	logger          *slog.Logger
	rowTimeout      time.Duration
	sessionTimeout  time.Duration
	teardownTimeout time.Duration
	progress        func(Progress)
}

// defaultOptions returns the default dispatcher options.
func defaultOptions() options {
	return options{
		hint:            PlatformConcurrency,
		rowTimeout:      DefaultRowTimeout,
		teardownTimeout: DefaultTeardownTimeout,
	}
}

// WithWorkers sets the worker count used when RunSession is called without
// an explicit positive count. Zero defers to the concurrency hint.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithConcurrencyHint replaces the platform concurrency hint consulted when
// no worker count is given. A nil hint makes the dispatcher fall back to
// DefaultWorkers.
func WithConcurrencyHint(hint func() int) Option {
	return func(o *options) {
		o.hint = hint
	}
}

// WithSurface sets the output surface the dispatcher renders into.
// The surface is resized at the start of every session.
//
// Example:
//
//	s := scanline.NewSurface(0, 0)
//	d := scanline.NewDispatcher(factory, scanline.WithSurface(s))
func WithSurface(s *Surface) Option {
	return func(o *options) {
		o.surface = s
	}
}

// WithLogger sets the logger used by the dispatcher and its workers,
// overriding SetLogger. Without it each session uses the package logger
// current at its start.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithRowTimeout bounds each worker call (initialization and every row).
// A stalled worker fails the session once the bound expires.
// Zero or negative disables the bound.
func WithRowTimeout(d time.Duration) Option {
	return func(o *options) {
		o.rowTimeout = d
	}
}

// WithSessionTimeout bounds a whole session. Zero or negative means the
// session is only bounded by its context and the row timeout.
func WithSessionTimeout(d time.Duration) Option {
	return func(o *options) {
		o.sessionTimeout = d
	}
}

// WithTeardownTimeout bounds how long disposing one worker may take.
// Zero or negative waits for the worker indefinitely.
func WithTeardownTimeout(d time.Duration) Option {
	return func(o *options) {
		o.teardownTimeout = d
	}
}

// WithProgress registers a callback invoked after every row write.
// The callback is called concurrently from all pull loops, so it must be
// safe for concurrent use; it should return quickly.
func WithProgress(fn func(Progress)) Option {
	return func(o *options) {
		o.progress = fn
	}
}
