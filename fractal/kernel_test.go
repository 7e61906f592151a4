package fractal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeCount(t *testing.T) {
	// the origin and -1 never escape
	assert.Equal(t, MaxIterations, EscapeCount(0, 0))
	assert.Equal(t, MaxIterations, EscapeCount(-1, 0))
	// already outside the radius
	assert.Equal(t, 0, EscapeCount(2, 2))
	// 1 -> 2
	assert.Equal(t, 1, EscapeCount(1, 0))
	// -1-1i -> -1+1i -> -1-3i
	assert.Equal(t, 2, EscapeCount(-1, -1))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, float32(0), Normalize(0))
	assert.Equal(t, float32(0.5), Normalize(256))
	assert.Equal(t, float32(511.0/512), Normalize(MaxIterations))
}

func TestPlanePoint(t *testing.T) {
	x, y := DefaultPlane.Point(250, 280, 0, 0)
	assert.Equal(t, -2.1, x)
	assert.Equal(t, -1.25, y)

	x, y = DefaultPlane.Point(250, 280, 125, 140)
	assert.InDelta(t, -0.7, x, 1e-12)
	assert.InDelta(t, 0, y, 1e-12)
}

func TestPlaneValid(t *testing.T) {
	assert.True(t, DefaultPlane.Valid())
	assert.False(t, Plane{MinX: 1, MaxX: 1, MinY: 0, MaxY: 1}.Valid())
	assert.False(t, Plane{MinX: 0, MaxX: 1, MinY: 1, MaxY: 0}.Valid())
}

func TestPixelFunc(t *testing.T) {
	p := Plane{MinX: -1, MaxX: 1, MinY: -1, MaxY: 1}
	pixel := p.PixelFunc(2, 2)
	// pixel (1, 1) maps to the origin
	assert.Equal(t, Normalize(MaxIterations), pixel(1, 1))
	// pixel (0, 0) maps to -1-1i: -1-1i -> -1+1i -> -1-3i, escaped after 2 steps
	assert.Equal(t, Normalize(2), pixel(0, 0))
}
