package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/roam/audio"
	"github.com/pthm-cable/roam/config"
	"github.com/pthm-cable/roam/game"
	"github.com/pthm-cable/roam/progression"
	"github.com/pthm-cable/roam/renderer"
	"github.com/pthm-cable/roam/sprite"
	"github.com/pthm-cable/roam/systems"
	"github.com/pthm-cable/roam/telemetry"
	"github.com/pthm-cable/roam/terminal"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without any display")
	term := flag.Bool("term", false, "Run in the terminal instead of a window")
	logFile := flag.String("log-file", "roam.log", "Log destination in terminal mode")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logPerf := flag.Int("log-perf", 0, "Log a perf table every N ticks in headless mode (0 = off)")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Save the pet roster here on exit")
	restorePath := flag.String("restore", "", "Resume from a saved pet roster instead of the configured pets")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Ticks per update call (higher = faster)")
	realtime := flag.Bool("realtime", false, "Pace headless ticks on the wall clock")

	flag.Parse()

	os.Exit(run(runFlags{
		configPath:     *configPath,
		headless:       *headless,
		term:           *term,
		logFile:        *logFile,
		logStats:       *logStats,
		logPerf:        *logPerf,
		statsWindow:    *statsWindow,
		outputDir:      *outputDir,
		snapshotDir:    *snapshotDir,
		restorePath:    *restorePath,
		seed:           *seed,
		maxTicks:       *maxTicks,
		stepsPerUpdate: *stepsPerUpdate,
		realtime:       *realtime,
	}))
}

type runFlags struct {
	configPath     string
	headless       bool
	term           bool
	logFile        string
	logStats       bool
	logPerf        int
	statsWindow    float64
	outputDir      string
	snapshotDir    string
	restorePath    string
	seed           int64
	maxTicks       int
	stepsPerUpdate int
	realtime       bool
}

// run returns the process exit code. Everything opened here is released by
// defers, so the game writes its CSV totals and roster snapshot on failure too.
func run(f runFlags) int {
	if err := config.Init(f.configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}
	cfg := config.Cfg()

	// Set up slog. tcell owns stdout in terminal mode, so logs go to a file.
	if f.term {
		lf, err := os.OpenFile(f.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Error("failed to open log file", "path", f.logFile, "error", err)
			return 1
		}
		defer lf.Close()
		game.SetLogWriter(lf)
		slog.SetDefault(slog.New(slog.NewTextHandler(lf, nil)))
	} else {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	rngSeed := f.seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	statsWindowSec := cfg.Telemetry.StatsWindow
	if f.statsWindow > 0 {
		statsWindowSec = f.statsWindow
	}

	// Headless runs step delays and uptime levels on simulated time
	var clock *systems.ManualClock
	var progressClock progression.Clock
	if f.headless && !f.realtime {
		clock = systems.NewManualClock(time.Now())
		progressClock = clock
	}

	levels, stopLevels, err := progression.FromConfig(cfg, progressClock)
	if err != nil {
		slog.Error("failed to set up progression", "error", err)
		return 1
	}
	defer stopLevels()

	opts := game.Options{
		Config:         cfg,
		Seed:           rngSeed,
		Assets:         sprite.NewCache(sprite.NewDirResolver(cfg.Sprite.AssetDir)),
		Levels:         levels,
		LogStats:       f.logStats,
		StatsWindowSec: statsWindowSec,
		OutputDir:      f.outputDir,
		SnapshotDir:    f.snapshotDir,
		StepsPerUpdate: f.stepsPerUpdate,
	}
	if clock != nil {
		opts.Clock = clock
	}

	if f.restorePath != "" {
		snap, err := telemetry.LoadSnapshot(f.restorePath)
		if err != nil {
			slog.Error("failed to load snapshot", "path", f.restorePath, "error", err)
			return 1
		}
		opts.Restore = snap
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch {
	case f.headless:
		if err := runHeadless(ctx, cfg, opts, clock, f.maxTicks, f.logPerf); err != nil {
			slog.Error("headless run failed", "error", err)
			return 1
		}

	case f.term:
		cue, closeCue := audio.New(cfg.Audio.Enabled, cfg.Audio.Frequency)
		defer closeCue()
		opts.Cue = cue

		g, err := game.New(opts)
		if err != nil {
			slog.Error("failed to create game", "error", err)
			return 1
		}
		defer g.Close()

		screen, err := tcell.NewScreen()
		if err != nil {
			slog.Error("failed to open terminal", "error", err)
			return 1
		}
		if err := terminal.Run(ctx, screen, g, cfg.Derived.TickPeriod, f.maxTicks); err != nil {
			slog.Error("terminal run failed", "error", err)
			return 1
		}

	default:
		cue, closeCue := audio.New(cfg.Audio.Enabled, cfg.Audio.Frequency)
		defer closeCue()
		opts.Cue = cue

		if err := renderer.Run(cfg, opts, f.maxTicks); err != nil {
			slog.Error("window run failed", "error", err)
			return 1
		}
	}
	return 0
}

// runHeadless ticks without any display. With a manual clock, delays and uptime
// levels advance one tick period per tick, so results only depend on the seed.
// A nil clock paces ticks on the wall clock instead.
func runHeadless(ctx context.Context, cfg *config.Config, opts game.Options, clock *systems.ManualClock, maxTicks, logPerf int) error {
	realtime := clock == nil

	g, err := game.New(opts)
	if err != nil {
		return err
	}
	defer g.Close()

	slog.Info("starting headless run",
		"seed", opts.Seed,
		"pets", len(g.Pets()),
		"max_ticks", maxTicks,
		"steps_per_update", g.StepsPerUpdate(),
		"realtime", realtime,
	)

	var ticker *time.Ticker
	if realtime {
		ticker = time.NewTicker(cfg.Derived.TickPeriod)
		defer ticker.Stop()
	}

	for {
		if realtime {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		for i := 0; i < g.StepsPerUpdate(); i++ {
			g.Step()
			if clock != nil {
				clock.Advance(cfg.Derived.TickPeriod)
			}
		}

		if logPerf > 0 && int(g.Tick())%logPerf < g.StepsPerUpdate() {
			g.LogPerf()
		}
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			g.LogPets()
			return nil
		}
	}
}
