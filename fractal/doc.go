// Package fractal holds the numeric and imaging parts of the renderer: the
// escape-time kernel, the mapping from pixels to the complex plane, the color
// palette and image file export.
package fractal
