package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstEvolution BookmarkType = "first_evolution"
	BookmarkMissingSprite  BookmarkType = "missing_sprite"
	BookmarkOffScreen      BookmarkType = "off_screen"
	BookmarkRestless       BookmarkType = "restless"
	BookmarkSettled        BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `json:"type"`
	Tick        int32        `json:"tick"`
	Description string       `json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// settleWindows is how many consecutive quiet windows make a settled desktop.
const settleWindows = 5

// BookmarkDetector detects interesting moments in a session from window stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	evolved      bool // an evolution was already bookmarked
	spriteGap    bool // a missing sprite was already bookmarked
	offScreen    bool // pets are currently without a screen
	quietWindows int  // consecutive windows with every pet on the ground
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for a rolling average
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if !bd.evolved && stats.Evolutions > 0 {
		bd.evolved = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkFirstEvolution,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d evolution(s) completed", stats.Evolutions),
		})
	}

	if !bd.spriteGap && stats.AssetFallbacks > 0 {
		bd.spriteGap = true
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkMissingSprite,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d evolution(s) kept the previous sprite", stats.AssetFallbacks),
		})
	}

	// Off screen: fires on the first window with floor fallbacks, re-arms once clear
	if stats.FloorFallbacks > 0 && !bd.offScreen {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkOffScreen,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d pet-ticks without a screen below", stats.FloorFallbacks),
		})
	}
	bd.offScreen = stats.FloorFallbacks > 0

	if b := bd.checkRestless(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkRestless fires when the transition rate per walking tick is more than
// twice the rolling average. Usually a sign of many drags or a shrinking desktop.
func (bd *BookmarkDetector) checkRestless(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.WalkTicks < 100 {
		return nil
	}

	var transitions, walkTicks int
	for _, h := range history {
		transitions += h.Flips + h.Delays + h.Jumps
		walkTicks += h.WalkTicks
	}
	if walkTicks == 0 || transitions == 0 {
		return nil
	}

	avg := float64(transitions) / float64(walkTicks)
	current := float64(stats.Flips+stats.Delays+stats.Jumps) / float64(stats.WalkTicks)
	if current > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkRestless,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Transition rate %.4f is %.1fx average (%.4f)", current, current/avg, avg),
		}
	}
	return nil
}

// checkSettled fires once after every pet spent settleWindows windows on the
// ground, neither airborne, evolving nor held.
func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	grounded := stats.Walking + stats.Delayed
	if stats.Pets == 0 || grounded != stats.Pets || stats.DragStarts > 0 {
		bd.quietWindows = 0
		return nil
	}

	bd.quietWindows++
	if bd.quietWindows == settleWindows { // trigger exactly once per quiet stretch
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("All %d pets on the ground for %d windows", stats.Pets, settleWindows),
		}
	}
	return nil
}
