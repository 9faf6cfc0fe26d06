package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/scanline"
)

// printer formats counts with digit grouping.
var printer = message.NewPrinter(language.English)

// summary returns the one-line report shown after a session resolves.
func summary(res scanline.Result) string {
	s := res.Stats
	if res.Err != nil {
		return printer.Sprintf("render failed after %s: %v", formatDuration(res.Elapsed), res.Err)
	}

	pixels := s.Width * s.Height
	rate := ""
	if secs := res.Elapsed.Seconds(); secs > 0 {
		rate = fmt.Sprintf(", %s pixels/s", humanize.SIWithDigits(float64(pixels)/secs, 1, ""))
	}
	// Grouping would turn 2000x1000 into 2,000x1,000.
	size := fmt.Sprintf("%dx%d", s.Width, s.Height)
	return printer.Sprintf("rendered %s (%d rows) with %d workers in %s%s",
		size, s.Rows, s.Workers, formatDuration(res.Elapsed), rate)
}

// formatDuration rounds d for display.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(100 * time.Microsecond).String()
	default:
		return d.String()
	}
}

// progressPrinter draws a single updating progress line.
type progressPrinter struct {
	mu    sync.Mutex
	w     io.Writer
	last  time.Time // zero when no line is open
	every time.Duration
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, every: 100 * time.Millisecond}
}

// report is the dispatcher progress callback. It is called concurrently.
func (p *progressPrinter) report(pr scanline.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if pr.RowsDone < pr.TotalRows && now.Sub(p.last) < p.every {
		return
	}
	p.last = now

	pct := 0
	if pr.TotalRows > 0 {
		pct = pr.RowsDone * 100 / pr.TotalRows
	}
	eta := ""
	if pr.RowsDone > 0 && pr.RowsDone < pr.TotalRows {
		left := time.Duration(float64(pr.Elapsed) / float64(pr.RowsDone) * float64(pr.TotalRows-pr.RowsDone))
		eta = ", " + humanize.RelTime(now, now.Add(left), "left", "")
	}
	printer.Fprintf(p.w, "\r%3d%% %d/%d rows [%s elapsed%s]", pct, pr.RowsDone, pr.TotalRows, formatDuration(pr.Elapsed), eta)
}

// finish ends the open progress line, if any, so the next session starts a
// fresh one.
func (p *progressPrinter) finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.last.IsZero() {
		fmt.Fprintln(p.w)
		p.last = time.Time{}
	}
}
