// Command scanline renders a YAML scene with the parallel scanline dispatcher.
//
// Usage:
//
//	scanline -scene world.yaml -out world.png [-workers 8] [-watch]
//
// With -watch the scene file is re-rendered whenever it changes. Changes
// made while a render is running are ignored.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/gogpu/scanline"
	"github.com/gogpu/scanline/internal/imageio"
	"github.com/gogpu/scanline/raytrace"
)

type config struct {
	scene          string
	output         string
	workers        int
	watch          bool
	verbose        bool
	quiet          bool
	rowTimeout     time.Duration
	sessionTimeout time.Duration
}

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	scanline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, os.Stderr); err != nil {
		log.Fatalf("scanline: %v", err)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (config, error) {
	var cfg config
	fs.StringVar(&cfg.scene, "scene", "", "scene description file (YAML)")
	fs.StringVar(&cfg.output, "out", "out.png", "output image (.png, .bmp, .tif)")
	fs.IntVar(&cfg.workers, "workers", 0, "number of workers (0 = GOMAXPROCS)")
	fs.BoolVar(&cfg.watch, "watch", false, "re-render when the scene file changes")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	fs.BoolVar(&cfg.quiet, "q", false, "no progress output")
	fs.DurationVar(&cfg.rowTimeout, "row-timeout", scanline.DefaultRowTimeout, "bound for a single worker call")
	fs.DurationVar(&cfg.sessionTimeout, "timeout", 0, "bound for a whole render (0 = none)")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.scene == "" && fs.NArg() > 0 {
		cfg.scene = fs.Arg(0)
	}
	if cfg.scene == "" {
		fmt.Fprintln(fs.Output(), "scanline: -scene is required")
		fs.Usage()
		return cfg, errors.New("missing scene")
	}
	if _, err := imageio.FormatFor(cfg.output); err != nil {
		fmt.Fprintf(fs.Output(), "scanline: %v\n", err)
		return cfg, err
	}
	return cfg, nil
}

// app wires the dispatcher, the session state machine and the CLI
// affordances together.
type app struct {
	cfg        config
	out        io.Writer
	dispatcher *scanline.Dispatcher
	session    *scanline.Session
	trigger    *scanline.Switch
	auto       *scanline.Switch
	progress   *progressPrinter
}

func newApp(cfg config, out io.Writer) *app {
	a := &app{
		cfg:     cfg,
		out:     out,
		trigger: scanline.NewSwitch(true),
		auto:    scanline.NewSwitch(cfg.watch),
	}

	opts := []scanline.Option{
		scanline.WithRowTimeout(cfg.rowTimeout),
		scanline.WithSessionTimeout(cfg.sessionTimeout),
	}
	if !cfg.quiet {
		a.progress = newProgressPrinter(out)
		opts = append(opts, scanline.WithProgress(a.progress.report))
	}

	a.dispatcher = scanline.NewDispatcher(raytrace.Factory, opts...)
	a.session = scanline.NewSession(a.dispatcher, a.trigger, a.auto)
	a.session.OnResolved(a.resolved)
	return a
}

func run(ctx context.Context, cfg config, out io.Writer) error {
	a := newApp(cfg, out)
	defer a.dispatcher.Shutdown()

	err := a.render(ctx)
	if !cfg.watch {
		return err
	}
	if err != nil {
		fmt.Fprintf(out, "render failed: %v\n", err)
	}
	return a.watch(ctx)
}

// render reads the scene file and requests one session.
func (a *app) render(ctx context.Context) error {
	src, err := os.ReadFile(a.cfg.scene)
	if err != nil {
		return err
	}

	started, err := a.session.Request(ctx, string(src), a.cfg.workers)
	if !started {
		return nil
	}
	if err != nil {
		return err
	}
	if err := imageio.Save(a.dispatcher.Surface(), a.cfg.output); err != nil {
		return fmt.Errorf("save %s: %w", a.cfg.output, err)
	}
	fmt.Fprintf(a.out, "wrote %s\n", a.cfg.output)
	return nil
}

// resolved reports the outcome of a session.
func (a *app) resolved(res scanline.Result) {
	if a.progress != nil {
		a.progress.finish()
	}
	fmt.Fprintln(a.out, summary(res))
}
