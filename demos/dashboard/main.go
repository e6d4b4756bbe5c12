// dashboard renders system statistics, a clock and the weather forecast on
// a 320x240 display, mirrored into a desktop window and optionally into PNG
// files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phanxgames/trellis"
	"github.com/phanxgames/trellis/config"
	"github.com/phanxgames/trellis/dashboard"
	"github.com/phanxgames/trellis/imagecache"
	"github.com/phanxgames/trellis/sysinfo"
	"github.com/phanxgames/trellis/weather"
	"github.com/phanxgames/trellis/window"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (default ~/.config/trellis/config.yaml)")
	headless := fs.Bool("headless", false, "do not open a window")
	pngDir := fs.String("png-dir", "", "write frames and snapshots to this directory")
	scriptPath := fs.String("script", "", "JSON button script to replay")
	debug := fs.Bool("debug", false, "log per-frame paint statistics")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromPath(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *pngDir != "" {
		cfg.Sinks.PNGDir = *pngDir
	}
	if *headless {
		cfg.Window.Enabled = false
	}
	if *debug {
		cfg.Logging.Debug = true
	}

	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if cfg.Logging.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := serve(cfg, *scriptPath, logger); err != nil {
		logger.Error("dashboard stopped", "err", err)
		return 1
	}
	return 0
}

func serve(cfg *config.Config, scriptPath string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := trellis.NewTaskScheduler(logger)
	defer sched.Close()

	d := trellis.NewDisplay(trellis.DisplayConfig{
		Width:         cfg.Display.Width,
		Height:        cfg.Display.Height,
		Scheduler:     sched,
		Logger:        logger,
		BannerTimeout: cfg.Display.BannerTimeout,
		FrameInterval: cfg.Display.FrameInterval,
		Debug:         cfg.Logging.Debug,
	})

	cache, err := imagecache.New(cfg.Cache.Dir, imagecache.WithLogger(logger))
	if err != nil {
		return err
	}

	sampler := sysinfo.NewSampler(nil, logger)
	sampler.TopN = cfg.System.TopProcesses
	src := dashboard.Sources{
		System: sampler,
		Images: cache,
		Exit:   stop,
	}
	var fetcher *weather.Fetcher
	if cfg.Weather.Enabled {
		fetcher = weather.NewFetcher(cfg.Weather.LocationID, cache, logger)
		if cfg.Weather.BaseURL != "" {
			fetcher.BaseURL = cfg.Weather.BaseURL
		}
		src.Weather = fetcher.Provider()
	}

	// Screens bind to the providers before any producer runs.
	dashboard.Build(d, src)
	if cfg.Display.ShowStats {
		for _, id := range []trellis.ScreenID{dashboard.ScreenMain, dashboard.ScreenSystem} {
			s, _ := d.Screen(id)
			trellis.NewStatsOverlay(s.Widget(), time.Second)
		}
	}

	start, err := dashboard.ParseScreen(cfg.Display.StartScreen)
	if err != nil {
		return err
	}
	if err := d.SwitchTo(start); err != nil {
		return err
	}

	if cfg.Sinks.PNGDir != "" {
		sink, err := trellis.NewPNGSink(cfg.Sinks.PNGDir)
		if err != nil {
			return err
		}
		defer sink.Close()
		d.AddSink(sink)
	}
	if scriptPath != "" {
		data, err := os.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		runner, err := trellis.LoadScript(data)
		if err != nil {
			return err
		}
		d.SetScript(runner)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return cache.Run(gctx) })

	sampler.Start(sched)
	if fetcher != nil {
		fetcher.Start(sched, cfg.Weather.Interval)
	}
	d.Start()
	defer d.Stop()
	logger.Info("dashboard running", "size", d.Size(), "start", cfg.Display.StartScreen)

	if cfg.Window.Enabled {
		win := window.New(d, window.Config{Title: cfg.Window.Title, Scale: cfg.Window.Scale})
		d.AddSink(win)
		g.Go(func() error {
			<-gctx.Done()
			win.Close()
			return nil
		})
		if err := win.Run(); err != nil {
			logger.Warn("window unavailable, running headless", "err", err)
		} else {
			stop()
		}
	}

	<-gctx.Done()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
