// Package worker provides isolated execution contexts for render units.
//
// A Worker is one dedicated goroutine with a private request queue. State
// created by a request (for example a render unit instance) is only ever
// touched by later requests on the same Worker, so callers never share
// mutable memory with it: they hand it a closure and wait for the reply.
//
// Thread safety: Worker is safe for concurrent use. Requests are executed
// strictly one at a time, in submission order.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	// ErrClosed is returned for requests submitted to a closed Worker.
	ErrClosed = errors.New("worker: closed")

	// ErrStalled is returned by Close when the goroutine did not exit in time.
	ErrStalled = errors.New("worker: goroutine did not exit before teardown deadline")
)

// PanicError reports a panic recovered while executing a request.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("worker: request panicked: %v", e.Value)
}

// Worker is a single goroutine that executes requests sent to it.
type Worker struct {
	// queue is unbuffered: a request is accepted only when the goroutine is
	// ready to run it, so nothing is ever computed ahead of the caller.
	queue chan func()

	// done signals the goroutine to stop.
	done chan struct{}

	// exited is closed when the goroutine has returned.
	exited chan struct{}

	// running indicates whether the worker is accepting requests.
	running atomic.Bool
}

// New starts a Worker. The goroutine waits for requests immediately.
func New() *Worker {
	w := &Worker{
		queue:  make(chan func()),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	w.running.Store(true)

	go w.loop()

	return w
}

// loop is the main loop of the worker goroutine.
func (w *Worker) loop() {
	defer close(w.exited)

	for {
		select {
		case <-w.done:
			return
		case req := <-w.queue:
			req()
		}
	}
}

// Call runs fn on the worker goroutine and waits for its result.
//
// Only the calling goroutine is suspended. If ctx ends before fn finishes,
// Call returns ctx.Err() and the result of fn is discarded once it completes.
// A panic inside fn is recovered and returned as a *PanicError.
func (w *Worker) Call(ctx context.Context, fn func() error) error {
	if !w.running.Load() {
		return ErrClosed
	}

	// Buffered so a late reply never blocks the worker goroutine.
	reply := make(chan error, 1)
	req := func() {
		defer func() {
			if r := recover(); r != nil {
				reply <- &PanicError{Value: r}
			}
		}()
		reply <- fn()
	}

	select {
	case w.queue <- req:
	case <-w.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker goroutine.
//
// A request that is currently executing is allowed to finish. Close waits at
// most timeout for the goroutine to exit (forever when timeout <= 0) and
// returns ErrStalled if it did not. Close is safe to call multiple times;
// only the first call does any work.
func (w *Worker) Close(timeout time.Duration) error {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return w.Shutdown(ctx)
}

// Shutdown stops the worker goroutine and waits for it to exit until ctx
// ends, returning ErrStalled in that case. Like Close, only the first call
// does any work.
func (w *Worker) Shutdown(ctx context.Context) error {
	if !w.running.CompareAndSwap(true, false) {
		return nil
	}

	close(w.done)

	select {
	case <-w.exited:
		return nil
	case <-ctx.Done():
		return ErrStalled
	}
}

// IsRunning returns true if the worker is still accepting requests.
func (w *Worker) IsRunning() bool {
	return w.running.Load()
}

// Exited returns a channel that is closed once the goroutine has returned.
func (w *Worker) Exited() <-chan struct{} {
	return w.exited
}
