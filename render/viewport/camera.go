// Package viewport maps world meters to screen pixels.
package viewport

import "github.com/milk9111/gustpath/common"

// Camera maps y-up world meters onto y-down screen pixels. X and Y are the
// world point shown at the center of the screen.
type Camera struct {
	X, Y           float64
	PixelsPerMeter float64
	Zoom           float64
	// Smoothness is the fraction of the remaining distance covered per
	// Follow call. Zero or one snaps.
	Smoothness float64

	Width, Height float64
}

func NewCamera(pixelsPerMeter, width, height float64) *Camera {
	return &Camera{
		PixelsPerMeter: pixelsPerMeter,
		Zoom:           1,
		Smoothness:     0.15,
		Width:          width,
		Height:         height,
	}
}

func (c *Camera) scale() float64 {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return c.PixelsPerMeter * zoom
}

func (c *Camera) Snap(x, y float64) {
	c.X, c.Y = x, y
}

// Follow eases the camera toward the target.
func (c *Camera) Follow(x, y float64) {
	if c.Smoothness <= 0 || c.Smoothness >= 1 {
		c.Snap(x, y)
		return
	}
	c.X = common.Lerp(c.X, x, c.Smoothness)
	c.Y = common.Lerp(c.Y, y, c.Smoothness)
}

// Clamp keeps the view inside the given world rectangle. An axis narrower
// than the view is centered instead.
func (c *Camera) Clamp(minX, minY, maxX, maxY float64) {
	s := c.scale()
	halfW := c.Width / 2 / s
	halfH := c.Height / 2 / s
	c.X = clampAxis(c.X, minX, maxX, halfW)
	c.Y = clampAxis(c.Y, minY, maxY, halfH)
}

func clampAxis(v, lo, hi, half float64) float64 {
	if hi-lo <= 2*half {
		return (lo + hi) / 2
	}
	return common.Clamp(v, lo+half, hi-half)
}

func (c *Camera) ToScreen(x, y float64) (float32, float32) {
	s := c.scale()
	sx := (x-c.X)*s + c.Width/2
	sy := c.Height/2 - (y-c.Y)*s
	return float32(sx), float32(sy)
}

func (c *Camera) ToWorld(sx, sy float64) (float64, float64) {
	s := c.scale()
	return (sx-c.Width/2)/s + c.X, (c.Height/2-sy)/s + c.Y
}

// Length converts a world distance to pixels.
func (c *Camera) Length(d float64) float32 {
	return float32(d * c.scale())
}
