package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/roam/topology"
)

// petRange is a contiguous run of slots stepped by one worker against the
// topology read at the start of the tick.
type petRange struct {
	from, to int
	topo     topology.Topology
}

// stepPool steps pets on persistent goroutines once the roster reaches
// parallel.threshold. Each slot is a distinct pet with its own random source,
// so ranges never share mutable state.
type stepPool struct {
	size int

	ranges  chan petRange
	stepped chan struct{}  // one signal per finished range
	quit    chan struct{}  // closed on shutdown
	wg      sync.WaitGroup // live workers
	started bool
}

func newStepPool() *stepPool {
	return &stepPool{size: runtime.GOMAXPROCS(0)}
}

// start spawns the workers on the first parallel tick.
func (p *stepPool) start(g *Game) {
	if p.started {
		return
	}

	p.ranges = make(chan petRange, p.size)
	p.stepped = make(chan struct{}, p.size)
	p.quit = make(chan struct{})
	p.started = true

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(g)
	}
}

// stop ends the workers and waits for them. Safe to call more than once.
func (p *stepPool) stop() {
	if !p.started {
		return
	}

	close(p.quit)
	p.wg.Wait()
	close(p.ranges)
	close(p.stepped)
	p.started = false
}

func (p *stepPool) run(g *Game) {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			return
		case r, ok := <-p.ranges:
			if !ok {
				return
			}
			g.stepChunk(r.from, r.to, r.topo)
			p.stepped <- struct{}{}
		}
	}
}

// stepParallel splits the tick's pets into one range per worker and blocks
// until every pet has been stepped.
func (g *Game) stepParallel(topo topology.Topology) {
	n := len(g.slots)
	if n == 0 {
		return
	}

	pool := g.parallel
	pool.start(g)

	per := (n + pool.size - 1) / pool.size
	sent := 0
	for from := 0; from < n; from += per {
		pool.ranges <- petRange{from: from, to: min(from+per, n), topo: topo}
		sent++
	}

	for ; sent > 0; sent-- {
		<-pool.stepped
	}
}

// stopParallelWorkers shuts the pool down when the game closes.
func (g *Game) stopParallelWorkers() {
	if g.parallel != nil {
		g.parallel.stop()
	}
}
