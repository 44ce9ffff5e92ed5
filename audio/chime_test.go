package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func TestArpeggioLength(t *testing.T) {
	rate := beep.SampleRate(8000)
	samples := drain(Arpeggio(440, rate))

	want := 3 * rate.N(noteDuration)
	if len(samples) != want {
		t.Errorf("expected %d samples, got %d", want, len(samples))
	}
}

func TestArpeggioRange(t *testing.T) {
	rate := beep.SampleRate(8000)
	peak := 0.0
	for i, s := range drain(Arpeggio(880, rate)) {
		if s[0] != s[1] {
			t.Fatalf("sample %d: channels differ", i)
		}
		peak = max(peak, math.Abs(s[0]))
	}
	if peak > volume+1e-9 {
		t.Errorf("peak %f exceeds volume %f", peak, volume)
	}
	if peak < volume/2 {
		t.Errorf("peak %f suspiciously quiet", peak)
	}
}

func TestEnvelopeEdges(t *testing.T) {
	rate := beep.SampleRate(1000)
	env := newEnvelope(&constant{}, 100*time.Millisecond, 10*time.Millisecond, 20*time.Millisecond, rate)
	samples := drain(env)

	if len(samples) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(samples))
	}
	if samples[0][0] != 0 {
		t.Errorf("attack should start silent, got %f", samples[0][0])
	}
	if samples[50][0] != 1 {
		t.Errorf("sustain should be full, got %f", samples[50][0])
	}
	if samples[99][0] > 0.1 {
		t.Errorf("release should end near silence, got %f", samples[99][0])
	}
}

func TestChimeBeforeInit(t *testing.T) {
	c := NewChime(440)
	c.Play()
	c.Close()
}

func TestNewDisabled(t *testing.T) {
	cue, stop := New(false, 440)
	if _, ok := cue.(Nop); !ok {
		t.Errorf("expected Nop cue, got %T", cue)
	}
	stop()
}

type constant struct{}

func (constant) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{1, 1}
	}
	return len(samples), true
}

func (constant) Err() error { return nil }
