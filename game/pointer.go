package game

// GestureTarget receives drag gestures. *Game implements it.
type GestureTarget interface {
	PetAt(x, y float64) (uint32, bool)
	HandleGesture(id uint32, gs Gesture) bool
}

// Pointer is one sample of primary-button state in desktop coordinates.
type Pointer struct {
	X, Y     float64
	Down     bool
	Pressed  bool
	Released bool
}

// PointerTracker turns pointer samples into drag gestures for the pet under
// the cursor. Front ends feed it whatever their input layer reports.
type PointerTracker struct {
	dragging     bool
	dragID       uint32
	lastX, lastY float64

	selected    uint32
	hasSelected bool
}

// Apply feeds one pointer sample. A press over a pet starts a drag, motion while
// held moves it and the release drops it. Samples without motion send nothing.
func (pt *PointerTracker) Apply(t GestureTarget, p Pointer) {
	switch {
	case p.Pressed:
		id, ok := t.PetAt(p.X, p.Y)
		if !ok {
			pt.hasSelected = false
			return
		}
		pt.selected, pt.hasSelected = id, true
		pt.dragging, pt.dragID = true, id
		pt.lastX, pt.lastY = p.X, p.Y
		t.HandleGesture(id, Gesture{Kind: GestureDragStart, X: p.X, Y: p.Y})

	case pt.dragging && (p.Released || !p.Down):
		if p.X != pt.lastX || p.Y != pt.lastY {
			t.HandleGesture(pt.dragID, Gesture{Kind: GestureDragMove, X: p.X, Y: p.Y})
		}
		t.HandleGesture(pt.dragID, Gesture{Kind: GestureDragEnd})
		pt.dragging = false

	case pt.dragging && (p.X != pt.lastX || p.Y != pt.lastY):
		pt.lastX, pt.lastY = p.X, p.Y
		t.HandleGesture(pt.dragID, Gesture{Kind: GestureDragMove, X: p.X, Y: p.Y})
	}
}

// Dragging reports the pet being dragged, if any.
func (pt *PointerTracker) Dragging() (uint32, bool) { return pt.dragID, pt.dragging }

// Selected reports the last pet pressed, if any.
func (pt *PointerTracker) Selected() (uint32, bool) { return pt.selected, pt.hasSelected }

// ClearSelection drops the selection.
func (pt *PointerTracker) ClearSelection() { pt.hasSelected = false }
