package worker

import (
	"context"
	"errors"
	"testing"
	"time"
)

// =============================================================================
// Call Tests
// =============================================================================

func TestWorker_Call(t *testing.T) {
	w := New()
	t.Cleanup(func() { _ = w.Close(time.Second) })

	var got int
	err := w.Call(context.Background(), func() error {
		got = 42
		return nil
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got != 42 {
		t.Errorf("got = %d, want 42", got)
	}
}

func TestWorker_CallReturnsError(t *testing.T) {
	w := New()
	t.Cleanup(func() { _ = w.Close(time.Second) })

	want := errors.New("boom")
	if err := w.Call(context.Background(), func() error { return want }); !errors.Is(err, want) {
		t.Errorf("Call() error = %v, want %v", err, want)
	}
}

func TestWorker_CallOrder(t *testing.T) {
	w := New()
	t.Cleanup(func() { _ = w.Close(time.Second) })

	// State owned by the worker goroutine.
	var seq []int
	for i := range 10 {
		if err := w.Call(context.Background(), func() error {
			seq = append(seq, i)
			return nil
		}); err != nil {
			t.Fatalf("Call(%d) error = %v", i, err)
		}
	}

	for i, v := range seq {
		if v != i {
			t.Errorf("seq[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestWorker_CallRecoversPanic(t *testing.T) {
	w := New()
	t.Cleanup(func() { _ = w.Close(time.Second) })

	err := w.Call(context.Background(), func() error { panic("bad scene") })

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("Call() error = %v, want *PanicError", err)
	}
	if pe.Value != "bad scene" {
		t.Errorf("PanicError.Value = %v, want %q", pe.Value, "bad scene")
	}

	// The worker survives the panic.
	if err := w.Call(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("Call() after panic error = %v, want nil", err)
	}
}

func TestWorker_CallContextDeadline(t *testing.T) {
	w := New()
	release := make(chan struct{})
	t.Cleanup(func() {
		close(release)
		_ = w.Close(time.Second)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := w.Call(ctx, func() error {
		<-release
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Call() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestWorker_CallCanceledBeforeSubmit(t *testing.T) {
	w := New()
	t.Cleanup(func() { _ = w.Close(time.Second) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Call(ctx, func() error { return nil })
	// The select may still accept the request when the worker is idle.
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("Call() error = %v, want nil or context.Canceled", err)
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestWorker_Close(t *testing.T) {
	w := New()

	if !w.IsRunning() {
		t.Error("worker should be running after New")
	}
	if err := w.Close(time.Second); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if w.IsRunning() {
		t.Error("worker should not be running after Close")
	}

	select {
	case <-w.Exited():
	default:
		t.Error("Exited() should be closed after Close")
	}
}

func TestWorker_CloseIdempotent(t *testing.T) {
	w := New()

	for i := range 3 {
		if err := w.Close(time.Second); err != nil {
			t.Errorf("Close() #%d error = %v", i, err)
		}
	}
}

func TestWorker_CallAfterClose(t *testing.T) {
	w := New()
	_ = w.Close(time.Second)

	if err := w.Call(context.Background(), func() error { return nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("Call() after Close error = %v, want ErrClosed", err)
	}
}

func TestWorker_CloseStalled(t *testing.T) {
	w := New()
	release := make(chan struct{})
	started := make(chan struct{})

	go func() {
		_ = w.Call(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if err := w.Close(20 * time.Millisecond); !errors.Is(err, ErrStalled) {
		t.Errorf("Close() error = %v, want ErrStalled", err)
	}

	close(release)
	select {
	case <-w.Exited():
	case <-time.After(time.Second):
		t.Error("worker goroutine did not exit after the request finished")
	}
}

func TestWorker_ShutdownDeadline(t *testing.T) {
	w := New()
	release := make(chan struct{})
	started := make(chan struct{})
	defer close(release)

	go func() {
		_ = w.Call(context.Background(), func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// An already expired context does not wait at all.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	if err := w.Shutdown(ctx); !errors.Is(err, ErrStalled) {
		t.Errorf("Shutdown() error = %v, want ErrStalled", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Shutdown() with expired context took %v", elapsed)
	}
	if w.IsRunning() {
		t.Error("worker should not accept requests after Shutdown")
	}
	if err := w.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() error = %v, want nil", err)
	}
}
