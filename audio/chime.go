// Package audio plays the evolution chime.
package audio

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

const (
	noteDuration = 120 * time.Millisecond
	attack       = 5 * time.Millisecond
	release      = 80 * time.Millisecond
	volume       = 0.3
)

// Chime plays a short rising two-note arpeggio on the default output device.
type Chime struct {
	mu          sync.Mutex
	freq        float64
	mixer       *beep.Mixer
	initialized bool
}

// NewChime creates a chime rooted at freq Hz. Nothing is opened until Init.
func NewChime(freq float64) *Chime {
	return &Chime{freq: freq, mixer: &beep.Mixer{}}
}

// Init opens the speaker. Safe to call more than once.
func (c *Chime) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Play queues one chime. Before Init it does nothing.
func (c *Chime) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Add(Arpeggio(c.freq, sampleRate))
	speaker.Unlock()
}

// Close silences pending chimes.
func (c *Chime) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

// Nop is a silent cue for headless runs and tests.
type Nop struct{}

// Play does nothing.
func (Nop) Play() {}

// New returns a working chime, or Nop when audio is disabled or the device
// cannot be opened.
func New(enabled bool, freq float64) (interface{ Play() }, func()) {
	if !enabled {
		return Nop{}, func() {}
	}
	c := NewChime(freq)
	if err := c.Init(); err != nil {
		slog.Warn("audio unavailable, evolution chime disabled", "error", err)
		return Nop{}, func() {}
	}
	return c, c.Close
}

// Arpeggio builds the chime: the root followed by its major third and fifth.
func Arpeggio(freq float64, rate beep.SampleRate) beep.Streamer {
	notes := []float64{freq, freq * 5 / 4, freq * 3 / 2}
	parts := make([]beep.Streamer, 0, len(notes))
	for _, f := range notes {
		parts = append(parts, newEnvelope(newSine(f, rate), noteDuration, attack, release, rate))
	}
	return &effects.Volume{
		Streamer: beep.Seq(parts...),
		Base:     2,
		Volume:   math.Log2(volume),
	}
}

// sine is an endless sine oscillator; envelopes bound its length.
type sine struct {
	step  float64
	phase float64
}

func newSine(freq float64, rate beep.SampleRate) *sine {
	return &sine{step: freq / float64(rate)}
}

func (s *sine) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		v := math.Sin(2 * math.Pi * s.phase)
		samples[i][0] = v
		samples[i][1] = v
		s.phase += s.step
		s.phase -= math.Floor(s.phase)
	}
	return len(samples), true
}

func (s *sine) Err() error { return nil }

// envelope applies a linear attack and release over a fixed length.
type envelope struct {
	streamer beep.Streamer
	pos      int
	total    int
	attack   int
	release  int
}

func newEnvelope(s beep.Streamer, length, att, rel time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(length)
	return beep.Take(total, &envelope{
		streamer: s,
		total:    total,
		attack:   rate.N(att),
		release:  rate.N(rel),
	})
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		gain := 1.0
		if e.pos < e.attack {
			gain = float64(e.pos) / float64(e.attack)
		}
		if left := e.total - e.pos; left < e.release {
			gain = min(gain, float64(max(left, 0))/float64(e.release))
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }
