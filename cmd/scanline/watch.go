package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watch re-renders the scene whenever its file changes, for as long as the
// auto-render toggle is on. The session turns the toggle off while a render
// runs, so changes during a render are dropped.
func (a *app) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Editors often replace the file, so watch its directory.
	target := filepath.Clean(a.cfg.scene)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "watching %s\n", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if !a.auto.Value() || !a.trigger.Enabled() {
				continue
			}
			go func() {
				if err := a.render(ctx); err != nil {
					fmt.Fprintf(a.out, "render failed: %v\n", err)
				}
			}()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(a.out, "watch error: %v\n", err)
		}
	}
}
