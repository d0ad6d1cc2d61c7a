package pixelpanel

import (
	"github.com/flavioheleno/pixelpanel/rgb565"
)

// Display is the capability every panel back-end provides.
//
// Coordinates are in the panel's current logical orientation. Points and
// rectangles outside the panel are clipped, never reported as errors; the
// returned error only reflects transport failures.
type Display interface {
	// Width returns the logical width in pixels.
	Width() int
	// Height returns the logical height in pixels.
	Height() int
	// Fill sets every pixel to c.
	Fill(c rgb565.Color) error
	// Pixel sets the pixel at (x, y) to c.
	Pixel(x, y int, c rgb565.Color) error
	// Blit copies a w×h row-major block of packed pixels to (x, y).
	Blit(x, y, w, h int, data []uint16) error
}

// Rotation is a panel orientation in quarter turns.
type Rotation uint8

// Supported rotations.
const (
	Rotate0   Rotation = iota // Native orientation
	Rotate90                  // Width and height swapped
	Rotate180                 // Native size, flipped
	Rotate270                 // Width and height swapped, flipped
)

// Normalize maps any rotation onto [Rotate0, Rotate270].
func (r Rotation) Normalize() Rotation {
	return r % 4
}

// Swapped reports whether the rotation exchanges width and height.
func (r Rotation) Swapped() bool {
	r = r.Normalize()
	return r == Rotate90 || r == Rotate270
}
