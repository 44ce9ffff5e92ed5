package progression

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// SampleInterval is how often the CPU is sampled in work mode.
const SampleInterval = 2 * time.Second

// Sampler returns the machine-wide CPU busy percentage (0-100) since its last call.
type Sampler func(ctx context.Context) (float64, error)

// CPUSampler reads the average busy percentage of all cores with gopsutil.
func CPUSampler(ctx context.Context) (float64, error) {
	// Interval 0 compares against the previous call instead of blocking.
	pct, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(pct) == 0 {
		return 0, nil
	}
	return pct[0], nil
}

// Work gains one level per interval of accumulated CPU-busy time: a machine at
// 50% load levels up half as fast as one at 100%.
type Work struct {
	base     Static
	interval time.Duration
	every    time.Duration
	sample   Sampler

	busy counter // busy seconds

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWork creates a work source that samples every `every`.
func NewWork(base Static, interval, every time.Duration, sample Sampler) *Work {
	return &Work{base: base, interval: interval, every: every, sample: sample}
}

// Start launches the sampler goroutine.
func (w *Work) Start() {
	if w.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.every)
		defer ticker.Stop()

		// Prime the sampler so the first tick measures a full period
		w.sample(ctx)

		warned := false
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pct, err := w.sample(ctx)
				if err != nil {
					if !warned {
						slog.Warn("cpu sampling failed", "error", err)
						warned = true
					}
					continue
				}
				w.Observe(pct, w.every)
			}
		}
	}()
}

// Stop ends sampling and waits for the goroutine to exit.
func (w *Work) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.cancel = nil
}

// Observe accounts a period of d at pct percent busy.
func (w *Work) Observe(pct float64, d time.Duration) {
	pct = min(max(pct, 0), 100)
	w.busy.add(pct / 100 * d.Seconds())
}

// Level implements Source.
func (w *Work) Level(name string) int {
	if w.interval <= 0 {
		return w.base[name]
	}
	return w.base[name] + int(w.busy.get()/w.interval.Seconds())
}
