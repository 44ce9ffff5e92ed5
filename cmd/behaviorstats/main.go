// Package main runs pets headless over many seeds and compares the observed
// walk transition frequencies with their configured probabilities.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/roam/config"
	"github.com/pthm-cable/roam/game"
	"github.com/pthm-cable/roam/systems"
	"github.com/pthm-cable/roam/telemetry"
)

// totals accumulates the window stats of one seed.
type totals struct {
	walkTicks int
	flips     int
	delays    int
	jumps     int
	landings  int
	airMeans  []float64
}

func (t *totals) add(s telemetry.WindowStats) {
	t.walkTicks += s.WalkTicks
	t.flips += s.Flips
	t.delays += s.Delays
	t.jumps += s.Jumps
	t.landings += s.Landings
	if s.Landings > 0 {
		t.airMeans = append(t.airMeans, s.AirTicksMean)
	}
}

// transition is one walk roll outcome and its per-walk-tick probability.
// Rolls are tried in order, so later ones only fire when earlier ones missed.
type transition struct {
	name  string
	p     float64
	count func(totals) int
}

var transitions = []transition{
	{"flip", systems.FlipChance, func(t totals) int { return t.flips }},
	{"delay", (1 - systems.FlipChance) * systems.DelayChance, func(t totals) int { return t.delays }},
	{"jump", (1 - systems.FlipChance) * (1 - systems.DelayChance) * systems.JumpChance, func(t totals) int { return t.jumps }},
}

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	seeds := flag.Int("seeds", 8, "Number of independent runs")
	pets := flag.Int("pets", 50, "Pets per run")
	ticks := flag.Int("ticks", 20000, "Ticks per run")
	sigma := flag.Float64("sigma", 4, "Tolerance in binomial standard deviations")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()

	start := time.Now()
	runs := make([]totals, *seeds)
	for i := range runs {
		runs[i] = run(cfg, int64(i*1000+42), *pets, *ticks)
		fmt.Fprintf(os.Stderr, "seed %d/%d done\n", i+1, *seeds)
	}

	var all totals
	for _, r := range runs {
		all.walkTicks += r.walkTicks
		all.flips += r.flips
		all.delays += r.delays
		all.jumps += r.jumps
		all.landings += r.landings
		all.airMeans = append(all.airMeans, r.airMeans...)
	}

	fmt.Printf("%d seeds x %d pets x %d ticks in %s, %d walking ticks\n\n",
		*seeds, *pets, *ticks, time.Since(start).Round(time.Millisecond), all.walkTicks)
	fmt.Printf("%-6s %8s %10s %10s %10s %8s  %s\n", "event", "count", "expected", "observed", "per-seed", "z", "")

	failed := false
	for _, tr := range transitions {
		n := tr.count(all)
		dist := distuv.Binomial{N: float64(all.walkTicks), P: tr.p}
		z := 0.0
		if sd := dist.StdDev(); sd > 0 {
			z = (float64(n) - dist.Mean()) / sd
		}

		rates := make([]float64, 0, len(runs))
		for _, r := range runs {
			if r.walkTicks > 0 {
				rates = append(rates, float64(tr.count(r))/float64(r.walkTicks))
			}
		}
		mean, std := stat.MeanStdDev(rates, nil)

		verdict := "ok"
		if math.Abs(z) > *sigma {
			verdict = "OUT OF TOLERANCE"
			failed = true
		}
		fmt.Printf("%-6s %8d %10.5f %10.5f %5.5f±%.5f %+7.2f  %s\n",
			tr.name, n, tr.p, float64(n)/float64(max(all.walkTicks, 1)), mean, std, z, verdict)
	}

	airMean, airStd := stat.MeanStdDev(all.airMeans, nil)
	fmt.Printf("\nlandings %d, airtime per window %.1f±%.1f ticks\n", all.landings, airMean, airStd)

	if failed {
		os.Exit(1)
	}
}

// run simulates one seed with evolution disabled and returns its totals.
func run(cfg *config.Config, seed int64, pets, ticks int) totals {
	var t totals
	clock := systems.NewManualClock(time.Unix(0, 0))

	g, err := game.New(game.Options{
		Config:        cfg,
		Seed:          seed,
		Clock:         clock,
		SkipInitial:   true,
		StatsCallback: t.add,
	})
	if err != nil {
		log.Fatalf("creating game: %v", err)
	}
	defer g.Close()

	names := []string{"pet"}
	if len(cfg.Pets) > 0 {
		names = names[:0]
		for _, p := range cfg.Pets {
			names = append(names, p.Name)
		}
	}
	for i := 0; i < pets; i++ {
		g.Spawn(names[i%len(names)], 0)
	}
	for i := 0; i < ticks; i++ {
		g.Step()
		clock.Advance(cfg.Derived.TickPeriod)
	}
	return t
}
