// Package camera maps the virtual desktop into a preview window.
package camera

// Camera controls the viewport into the desktop. The world is the bounding
// rectangle of all screens; unlike a game world it has an origin that may be
// negative and it does not wrap.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = 1:1, 0.25 = a quarter of the desktop size)
	Zoom float32

	// Viewport dimensions (window size)
	ViewportW, ViewportH float32

	// World bounds
	MinX, MinY, MaxX, MaxY float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// fitMargin leaves a border around the desktop when fitting.
const fitMargin = 0.9

// New creates a camera that shows the whole world.
func New(viewportW, viewportH float32, minX, minY, maxX, maxY float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		MaxZoom:   4.0,
	}
	c.SetWorld(minX, minY, maxX, maxY)
	c.Fit()
	return c
}

// SetWorld replaces the world bounds, e.g. after a monitor is plugged in.
// The camera center is pulled back inside the new bounds.
func (c *Camera) SetWorld(minX, minY, maxX, maxY float32) {
	if maxX <= minX {
		maxX = minX + 1
	}
	if maxY <= minY {
		maxY = minY + 1
	}
	c.MinX, c.MinY, c.MaxX, c.MaxY = minX, minY, maxX, maxY
	c.updateMinZoom()
	c.X = clamp(c.X, minX, maxX)
	c.Y = clamp(c.Y, minY, maxY)
}

// fitZoom is the zoom at which the whole world fits the viewport.
func (c *Camera) fitZoom() float32 {
	zx := c.ViewportW / (c.MaxX - c.MinX)
	zy := c.ViewportH / (c.MaxY - c.MinY)
	return min(zx, zy) * fitMargin
}

func (c *Camera) updateMinZoom() {
	c.MinZoom = c.fitZoom()
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
}

// Fit centers the world and zooms out until all of it is visible.
func (c *Camera) Fit() {
	c.X = (c.MinX + c.MaxX) / 2
	c.Y = (c.MinY + c.MaxY) / 2
	c.Zoom = c.fitZoom()
}

// WorldToScreen converts world coordinates to window coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts window coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// IsVisible returns true if a w x h rectangle at (wx, wy) overlaps the view.
func (c *Camera) IsVisible(wx, wy, w, h float32) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return wx+w >= minX && wx <= maxX && wy+h >= minY && wy <= maxY
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.updateMinZoom()
}

// Pan moves the camera by the given delta in window pixels. The center stays
// inside the world.
func (c *Camera) Pan(dx, dy float32) {
	c.X = clamp(c.X+dx/c.Zoom, c.MinX, c.MaxX)
	c.Y = clamp(c.Y+dy/c.Zoom, c.MinY, c.MaxY)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the fitted view.
func (c *Camera) Reset() {
	c.Fit()
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
