// Package scanline renders row-addressable scenes in parallel.
//
// # Overview
//
// scanline is the dispatch layer between an opaque render unit and an output
// surface. It partitions the rows of the target image into contiguous
// ranges, runs one isolated worker per range, pulls rendered rows from every
// worker one at a time and composites them into a shared Surface as they
// arrive.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/scanline"
//	    "github.com/gogpu/scanline/raytrace"
//	)
//
//	d := scanline.NewDispatcher(raytrace.Factory)
//	if err := d.RunSession(ctx, sceneYAML, 0); err != nil {
//	    log.Fatal(err)
//	}
//	img := d.Surface().ToImage()
//
// # Architecture
//
// The package is organized into:
//   - Plan: divides the row count into disjoint RowRange values
//   - RenderUnit: the three-operation contract of the external renderer
//   - WorkerProxy: one worker goroutine hosting one RenderUnit, driven by
//     Initialize, QueryDimensions, NextRow and Dispose messages
//   - Dispatcher: probes the scene size, fans out one pull loop per range
//     and waits for all of them
//   - Session: the Idle/InProgress state machine that guards UI affordances
//
// # Concurrency
//
// Workers share no mutable memory with the dispatcher or with each other.
// Rows from different workers arrive in any order; rows from one worker
// arrive in increasing order starting at the start of its range. Every row
// occupies its own bytes of the Surface, so the write path takes no lock.
//
// # Failure
//
// Any worker failure aborts the session. All live workers are disposed and
// a *SessionError is returned. Worker calls are bounded by a per-call
// timeout (DefaultRowTimeout) so a stalled render unit cannot hold a session
// open forever.
package scanline
