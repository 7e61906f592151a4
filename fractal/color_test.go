package fractal

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type values [][]float32

func (v values) Size() (int, int)        { return len(v), len(v[0]) }
func (v values) At(row, col int) float32 { return v[row][col] }

func TestWheel(t *testing.T) {
	w := Wheel()
	require.Len(t, w, WheelSize)
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, w[0])
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, w[510])
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, w[1020])
}

func TestPaletteColor(t *testing.T) {
	p := NewPalette(3)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, p.Color(Normalize(MaxIterations)))
	assert.Equal(t, p.wheel[0], p.Color(0))
	assert.Equal(t, p.wheel[30], p.Color(Normalize(10)))

	assert.Equal(t, 1, NewPalette(0).Density)
}

func TestRender(t *testing.T) {
	p := NewPalette(1)
	v := values{
		{Normalize(0), Normalize(1), Normalize(2)},
		{Normalize(MaxIterations), Normalize(4), Normalize(5)},
	}
	img := Render(v, p)
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	assert.Equal(t, p.wheel[2], img.RGBAAt(2, 0))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, img.RGBAAt(0, 1))
	assert.Equal(t, p.wheel[5], img.RGBAAt(2, 1))
}
