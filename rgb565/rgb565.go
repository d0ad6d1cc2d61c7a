// Package rgb565 provides the 16-bit packed color format used by the color panels.
//
// A Color packs 5 bits of red, 6 bits of green and 5 bits of blue into a uint16,
// red in the most significant bits. Image stores one such value per pixel in
// row-major order, which is the exact layout streamed to the panel.
package rgb565

import (
	"image"
	"image/color"
)

// Color is a 16-bit packed RGB color (RRRRRGGG GGGBBBBB).
type Color uint16

// Common colors.
const (
	Black     Color = 0x0000
	White     Color = 0xFFFF
	Red       Color = 0xF800
	Green     Color = 0x07E0
	Blue      Color = 0x001F
	Cyan      Color = 0x07FF
	Magenta   Color = 0xF81F
	Yellow    Color = 0xFFE0
	Orange    Color = 0xFD20
	Purple    Color = 0x8010
	Gray      Color = 0x8410
	DarkGray  Color = 0x4208
	LightGray Color = 0xC618
)

// New packs 8-bit channel values into a Color, dropping the low bits.
func New(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b>>3))
}

// RGBA implements color.Color.
// Each channel is expanded to 16 bits by replicating its high bits into the low bits.
func (c Color) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1F
	g6 := uint32(c>>5) & 0x3F
	b5 := uint32(c) & 0x1F
	r8 := r5<<3 | r5>>2
	g8 := g6<<2 | g6>>4
	b8 := b5<<3 | b5>>2
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xFFFF
}

func toRGB565(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return New(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Model converts colors to Color.
var Model = color.ModelFunc(toRGB565)

// Image is a row-major RGB565 image. It implements draw.Image.
type Image struct {
	Pix    []uint16        // Pixel data, one packed value per pixel
	Stride int             // Pixels per row
	Rect   image.Rectangle // Image bounds
}

// NewImage creates an Image with the specified bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]uint16, w*h),
		Stride: w,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the packed color of the pixel at (x, y), or Black outside the bounds.
func (p *Image) RGB565At(x, y int) Color {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return Black
	}
	return Color(p.Pix[p.PixOffset(x, y)])
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, Model.Convert(c).(Color))
}

// SetRGB565 sets the pixel at (x, y) without color conversion.
// Points outside the bounds are ignored.
func (p *Image) SetRGB565(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = uint16(c)
}

// Fill sets every pixel to c.
func (p *Image) Fill(c Color) {
	for i := range p.Pix {
		p.Pix[i] = uint16(c)
	}
}

// PixOffset returns the index of the pixel at (x, y) in Pix.
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x - p.Rect.Min.X)
}
