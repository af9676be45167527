package builder

import (
	"math"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

// Zoom bounds and step for the canvas transform.
const (
	MinZoom  = 0.3
	MaxZoom  = 2.0
	ZoomStep = 0.1
)

// Canvas is the editor's view transform: pan offset and zoom factor.
// It is view state only and never touches graph data.
type Canvas struct {
	Zoom float64         `json:"zoom"`
	Pan  domain.Position `json:"pan"`
}

// NewCanvas returns the default view: zoom 1.0 at the origin.
func NewCanvas() Canvas {
	return Canvas{Zoom: 1.0}
}

// ZoomIn increases zoom by one step, clamped to MaxZoom.
func (c *Canvas) ZoomIn() {
	c.setZoom(c.Zoom + ZoomStep)
}

// ZoomOut decreases zoom by one step, clamped to MinZoom.
func (c *Canvas) ZoomOut() {
	c.setZoom(c.Zoom - ZoomStep)
}

func (c *Canvas) setZoom(z float64) {
	// Round to one decimal so repeated steps don't accumulate float drift.
	z = math.Round(z*10) / 10
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	c.Zoom = z
}

// PanBy shifts the pan offset.
func (c *Canvas) PanBy(dx, dy float64) {
	c.Pan.X += dx
	c.Pan.Y += dy
}

// ResetView restores zoom 1.0 and the origin pan.
func (c *Canvas) ResetView() {
	c.Zoom = 1.0
	c.Pan = domain.Position{}
}
