package fractal

import (
	"image"
	"image/color"
)

// WheelSize is the number of colors on the hue wheel: 255 steps along each of
// its six edges.
const WheelSize = 255 * 6

// Wheel returns the saturated hue wheel red, yellow, green, cyan, blue,
// magenta and back to red.
func Wheel() []color.RGBA {
	wheel := make([]color.RGBA, 0, WheelSize)
	for i := 0; i < 255; i++ {
		wheel = append(wheel, color.RGBA{255, uint8(i), 0, 255})
	}
	for i := 0; i < 255; i++ {
		wheel = append(wheel, color.RGBA{uint8(255 - i), 255, 0, 255})
	}
	for i := 0; i < 255; i++ {
		wheel = append(wheel, color.RGBA{0, 255, uint8(i), 255})
	}
	for i := 0; i < 255; i++ {
		wheel = append(wheel, color.RGBA{0, uint8(255 - i), 255, 255})
	}
	for i := 0; i < 255; i++ {
		wheel = append(wheel, color.RGBA{uint8(i), 0, 255, 255})
	}
	for i := 0; i < 255; i++ {
		wheel = append(wheel, color.RGBA{255, 0, uint8(255 - i), 255})
	}
	return wheel
}

// Palette maps normalized grid values to colors.
type Palette struct {
	wheel []color.RGBA

	// Density spreads successive escape counts further apart on the wheel.
	Density int
}

// NewPalette creates a palette with the given color density.
func NewPalette(density int) *Palette {
	if density <= 0 {
		density = 1
	}
	return &Palette{wheel: Wheel(), Density: density}
}

// Color returns the color of a normalized value. Points that never escaped
// are black.
func (p *Palette) Color(v float32) color.RGBA {
	count := int(float64(v)*Scale + 0.5)
	if count >= MaxIterations {
		return color.RGBA{0, 0, 0, 255}
	}
	return p.wheel[(count*p.Density)%len(p.wheel)]
}

// Values is a rectangular array of normalized values, such as an assembled grid.
type Values interface {
	Size() (height, width int)
	At(row, col int) float32
}

// Render colors every value. Row 0 is the top row of the image.
func Render(v Values, p *Palette) *image.RGBA {
	height, width := v.Size()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			img.SetRGBA(col, row, p.Color(v.At(row, col)))
		}
	}
	return img
}
