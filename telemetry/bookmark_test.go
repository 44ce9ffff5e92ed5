package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FirstEvolution(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if bms := bd.Check(WindowStats{WindowEndTick: 90}); hasBookmark(bms, BookmarkFirstEvolution) {
		t.Error("unexpected first_evolution without evolutions")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 180, Evolutions: 1}); !hasBookmark(bms, BookmarkFirstEvolution) {
		t.Error("expected first_evolution bookmark")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 270, Evolutions: 2}); hasBookmark(bms, BookmarkFirstEvolution) {
		t.Error("first_evolution should fire once")
	}
}

func TestBookmarkDetector_OffScreenRearms(t *testing.T) {
	bd := NewBookmarkDetector(10)

	seq := []struct {
		fallbacks int
		want      bool
	}{
		{0, false},
		{12, true},
		{30, false}, // still off screen
		{0, false},
		{4, true}, // left the screens again
	}
	for i, s := range seq {
		bms := bd.Check(WindowStats{WindowEndTick: int32(i * 90), FloorFallbacks: s.fallbacks})
		if got := hasBookmark(bms, BookmarkOffScreen); got != s.want {
			t.Errorf("window %d: off_screen = %v, want %v", i, got, s.want)
		}
	}
}

func TestBookmarkDetector_Restless(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Calm history: 1 transition per 100 walking ticks
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 90), WalkTicks: 1000, Flips: 6, Delays: 3, Jumps: 1})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 450, WalkTicks: 1000, Flips: 30, Delays: 10})
	if !hasBookmark(bms, BookmarkRestless) {
		t.Error("expected restless bookmark")
	}
}

func TestBookmarkDetector_Settled(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var fired int
	for i := 0; i < 8; i++ {
		bms := bd.Check(WindowStats{WindowEndTick: int32(i * 90), Pets: 3, Walking: 2, Delayed: 1})
		if hasBookmark(bms, BookmarkSettled) {
			fired++
			if i != settleWindows-1 {
				t.Errorf("settled fired at window %d, want %d", i, settleWindows-1)
			}
		}
	}
	if fired != 1 {
		t.Errorf("settled fired %d times, want 1", fired)
	}

	// A pet in the air resets the stretch
	bd.Check(WindowStats{Pets: 3, Walking: 2, Falling: 1})
	if bd.quietWindows != 0 {
		t.Errorf("expected quiet stretch reset, got %d", bd.quietWindows)
	}
}
