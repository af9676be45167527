package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kinoflow/kinoflow/pkg/domain"
)

func TestZoomClampsAtBounds(t *testing.T) {
	c := NewCanvas()
	assert.Equal(t, 1.0, c.Zoom)

	for i := 0; i < 20; i++ {
		c.ZoomIn()
	}
	assert.Equal(t, MaxZoom, c.Zoom)

	for i := 0; i < 40; i++ {
		c.ZoomOut()
	}
	assert.Equal(t, MinZoom, c.Zoom)
}

func TestZoomStepsHaveNoFloatDrift(t *testing.T) {
	c := NewCanvas()
	c.ZoomOut()
	c.ZoomOut()
	c.ZoomOut()
	// 1.0 - 3*0.1 must land exactly on 0.7, not 0.7000000000000001.
	assert.Equal(t, 0.7, c.Zoom)

	c.ZoomIn()
	assert.Equal(t, 0.8, c.Zoom)
}

func TestPanAndReset(t *testing.T) {
	c := NewCanvas()
	c.PanBy(10, -5)
	c.PanBy(2, 3)
	assert.Equal(t, domain.Position{X: 12, Y: -2}, c.Pan)

	c.ZoomIn()
	c.ResetView()
	assert.Equal(t, 1.0, c.Zoom)
	assert.Equal(t, domain.Position{}, c.Pan)
}
