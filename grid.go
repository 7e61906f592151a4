package remotemandel

import "fmt"

// Grid is the assembled output: one normalized escape value per pixel, stored
// row-major in a single buffer. Only the coordinator owns a Grid.
type Grid struct {
	Width  int
	Height int

	values  []float32
	written []bool
	merged  int
}

// NewGrid creates an empty grid of the given dimensions.
func NewGrid(height, width int) *Grid {
	return &Grid{
		Width:   width,
		Height:  height,
		values:  make([]float32, height*width),
		written: make([]bool, height),
	}
}

// Size returns the grid dimensions.
func (g *Grid) Size() (height, width int) {
	return g.Height, g.Width
}

// At returns the value at (row, col).
func (g *Grid) At(row, col int) float32 {
	return g.values[row*g.Width+col]
}

// Row returns the values of a row. The slice aliases the grid buffer.
func (g *Grid) Row(row int) []float32 {
	off := row * g.Width
	return g.values[off : off+g.Width]
}

// Merge copies a computed chunk into the grid. The payload holds rows*Width
// values, row-major, starting at startRow. Rows that were already merged are
// never overwritten.
func (g *Grid) Merge(startRow, rows int, values []float32) error {
	if rows <= 0 || startRow < 0 || startRow+rows > g.Height {
		return fmt.Errorf("%w: rows [%d,%d) of %d", ErrOutOfRange, startRow, startRow+rows, g.Height)
	}
	if len(values) != rows*g.Width {
		return fmt.Errorf("%w: got %d values for %d rows of width %d", ErrOutOfRange, len(values), rows, g.Width)
	}
	for r := startRow; r < startRow+rows; r++ {
		if g.written[r] {
			return fmt.Errorf("%w: row %d", ErrRowWritten, r)
		}
	}
	copy(g.values[startRow*g.Width:], values)
	for r := startRow; r < startRow+rows; r++ {
		g.written[r] = true
	}
	g.merged += rows
	return nil
}

// RowsMerged returns how many rows have been merged so far.
func (g *Grid) RowsMerged() int {
	return g.merged
}

// Complete reports whether every row has been merged.
func (g *Grid) Complete() bool {
	return g.merged == g.Height
}
