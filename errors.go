package scanline

import (
	"errors"
	"fmt"
)

// Sentinel errors for the scanline package.
var (
	// ErrInvalidPartition is returned when the row count or worker count
	// cannot be partitioned.
	ErrInvalidPartition = errors.New("scanline: invalid partition")

	// ErrInit is returned when a worker cannot start or its render unit
	// rejects the scene input.
	ErrInit = errors.New("scanline: render unit initialization failed")

	// ErrRowCompute is returned when a render unit fails to produce a row.
	ErrRowCompute = errors.New("scanline: row computation failed")

	// ErrTeardown is returned when a worker cannot be disposed cleanly.
	ErrTeardown = errors.New("scanline: worker teardown failed")

	// ErrNotInitialized is returned by proxy calls made before Initialize.
	ErrNotInitialized = errors.New("scanline: proxy not initialized")

	// ErrAlreadyInitialized is returned when Initialize is called twice.
	ErrAlreadyInitialized = errors.New("scanline: proxy already initialized")

	// ErrDisposed is returned by proxy calls made after Dispose.
	ErrDisposed = errors.New("scanline: proxy disposed")

	// ErrRowBounds is returned when a row index falls outside the surface.
	ErrRowBounds = errors.New("scanline: row out of surface bounds")

	// ErrRowLength is returned when a row has the wrong number of bytes.
	ErrRowLength = errors.New("scanline: row pixel length mismatch")

	// ErrRowRewritten is returned when a surface row is written twice.
	ErrRowRewritten = errors.New("scanline: row already written")

	// ErrSessionInProgress is returned when a session is started while
	// another one is still running on the same Dispatcher.
	ErrSessionInProgress = errors.New("scanline: session already in progress")

	// ErrDispatcherClosed is returned for sessions started after Shutdown.
	ErrDispatcherClosed = errors.New("scanline: dispatcher closed")
)

// PartitionError describes a degenerate partition request.
type PartitionError struct {
	TotalRows int
	Workers   int
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("scanline: invalid partition of %d rows across %d workers", e.TotalRows, e.Workers)
}

func (e *PartitionError) Unwrap() error { return ErrInvalidPartition }

// InitError is returned when a Render Unit Proxy fails to initialize.
type InitError struct {
	Range RowRange
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("scanline: initialize worker for rows %s: %v", e.Range, e.Err)
}

func (e *InitError) Unwrap() []error { return []error{ErrInit, e.Err} }

// RowError is returned when a render unit fails while computing a row.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("scanline: render row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() []error { return []error{ErrRowCompute, e.Err} }

// TeardownError is returned when disposing a worker fails.
type TeardownError struct {
	Range RowRange
	Err   error
}

func (e *TeardownError) Error() string {
	return fmt.Sprintf("scanline: dispose worker for rows %s: %v", e.Range, e.Err)
}

func (e *TeardownError) Unwrap() []error { return []error{ErrTeardown, e.Err} }

// SessionError is the single terminal failure of a render session.
// Err is the primary cause; use errors.Is and errors.As to inspect it.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return "scanline: session failed: " + e.Err.Error()
}

func (e *SessionError) Unwrap() error { return e.Err }
