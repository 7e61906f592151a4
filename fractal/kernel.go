package fractal

// MaxIterations bounds the escape-time iteration. A point that has not
// escaped after MaxIterations steps is taken to be inside the set.
const MaxIterations = 511

// Scale normalizes an escape count into [0, 1).
const Scale = 512.0

// EscapeCount iterates z = z*z + c from z = c = (x, y) and returns the number
// of steps taken before |z| reaches 2, at most MaxIterations.
func EscapeCount(x, y float64) int {
	cx, cy := x, y
	it := 0
	for ; it < MaxIterations && x*x+y*y < 4; it++ {
		x, y = x*x-y*y+cx, 2*x*y+cy
	}
	return it
}

// Normalize maps an escape count to the value stored in the grid.
func Normalize(count int) float32 {
	return float32(float64(count) / Scale)
}

// Plane is the rectangle of the complex plane covered by an image.
type Plane struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// DefaultPlane shows the whole set.
var DefaultPlane = Plane{MinX: -2.1, MaxX: 0.7, MinY: -1.25, MaxY: 1.25}

// Valid reports whether the plane has a positive extent on both axes.
func (p Plane) Valid() bool {
	return p.MaxX > p.MinX && p.MaxY > p.MinY
}

// Point returns the complex plane coordinates of the top left corner of
// pixel (row, col) in an image of the given dimensions.
func (p Plane) Point(height, width, row, col int) (x, y float64) {
	dx := (p.MaxX - p.MinX) / float64(width)
	dy := (p.MaxY - p.MinY) / float64(height)
	return p.MinX + dx*float64(col), p.MinY + dy*float64(row)
}

// PixelFunc returns the function a worker evaluates for every pixel of an
// image of the given dimensions.
func (p Plane) PixelFunc(height, width int) func(row, col int) float32 {
	return func(row, col int) float32 {
		return Normalize(EscapeCount(p.Point(height, width, row, col)))
	}
}
