package canvas

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Glyph describes one character of a Font.
//
// The bitmap is a bit stream starting at Font.Bitmap[Offset]: Width×Height
// bits, row-major, most significant bit first, with no padding between rows.
type Glyph struct {
	Offset   uint16
	Width    uint8
	Height   uint8
	XAdvance uint8
	XOffset  int8 // From the cursor to the left edge
	YOffset  int8 // From the baseline to the top edge
}

// Font is an immutable bitmap font covering the characters First to Last.
//
// The cursor marks the baseline when drawing with a Font, and the top-left
// corner of the cell when drawing with the built-in font.
type Font struct {
	Bitmap   []byte
	Glyphs   []Glyph // Glyphs[r-First] describes r
	First    rune
	Last     rune
	YAdvance uint8 // Line height
}

// Glyph returns the descriptor for r, or false if r is outside the font.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	if r < f.First || r > f.Last || int(r-f.First) >= len(f.Glyphs) {
		return Glyph{}, false
	}
	return f.Glyphs[r-f.First], true
}

// Built-in font metrics.
const (
	builtinFirst    = 32
	builtinLast     = 126
	builtinCols     = 5
	builtinRows     = 8
	builtinAdvance  = 6
	builtinYAdvance = 8
)

// builtin is a 5×7 font for printable ASCII. Each character is five column
// bytes, left to right, bit 0 on top.
var builtin = [...]byte{
	0x00, 0x00, 0x00, 0x00, 0x00, // ' '
	0x00, 0x00, 0x5F, 0x00, 0x00, // !
	0x00, 0x07, 0x00, 0x07, 0x00, // "
	0x14, 0x7F, 0x14, 0x7F, 0x14, // #
	0x24, 0x2A, 0x7F, 0x2A, 0x12, // $
	0x23, 0x13, 0x08, 0x64, 0x62, // %
	0x36, 0x49, 0x55, 0x22, 0x50, // &
	0x00, 0x05, 0x03, 0x00, 0x00, // '
	0x00, 0x1C, 0x22, 0x41, 0x00, // (
	0x00, 0x41, 0x22, 0x1C, 0x00, // )
	0x08, 0x2A, 0x1C, 0x2A, 0x08, // *
	0x08, 0x08, 0x3E, 0x08, 0x08, // +
	0x00, 0x50, 0x30, 0x00, 0x00, // ,
	0x08, 0x08, 0x08, 0x08, 0x08, // -
	0x00, 0x60, 0x60, 0x00, 0x00, // .
	0x20, 0x10, 0x08, 0x04, 0x02, // /
	0x3E, 0x51, 0x49, 0x45, 0x3E, // 0
	0x00, 0x42, 0x7F, 0x40, 0x00, // 1
	0x42, 0x61, 0x51, 0x49, 0x46, // 2
	0x21, 0x41, 0x45, 0x4B, 0x31, // 3
	0x18, 0x14, 0x12, 0x7F, 0x10, // 4
	0x27, 0x45, 0x45, 0x45, 0x39, // 5
	0x3C, 0x4A, 0x49, 0x49, 0x30, // 6
	0x01, 0x71, 0x09, 0x05, 0x03, // 7
	0x36, 0x49, 0x49, 0x49, 0x36, // 8
	0x06, 0x49, 0x49, 0x29, 0x1E, // 9
	0x00, 0x36, 0x36, 0x00, 0x00, // :
	0x00, 0x56, 0x36, 0x00, 0x00, // ;
	0x00, 0x08, 0x14, 0x22, 0x41, // <
	0x14, 0x14, 0x14, 0x14, 0x14, // =
	0x41, 0x22, 0x14, 0x08, 0x00, // >
	0x02, 0x01, 0x51, 0x09, 0x06, // ?
	0x32, 0x49, 0x79, 0x41, 0x3E, // @
	0x7E, 0x11, 0x11, 0x11, 0x7E, // A
	0x7F, 0x49, 0x49, 0x49, 0x36, // B
	0x3E, 0x41, 0x41, 0x41, 0x22, // C
	0x7F, 0x41, 0x41, 0x22, 0x1C, // D
	0x7F, 0x49, 0x49, 0x49, 0x41, // E
	0x7F, 0x09, 0x09, 0x01, 0x01, // F
	0x3E, 0x41, 0x41, 0x51, 0x32, // G
	0x7F, 0x08, 0x08, 0x08, 0x7F, // H
	0x00, 0x41, 0x7F, 0x41, 0x00, // I
	0x20, 0x40, 0x41, 0x3F, 0x01, // J
	0x7F, 0x08, 0x14, 0x22, 0x41, // K
	0x7F, 0x40, 0x40, 0x40, 0x40, // L
	0x7F, 0x02, 0x04, 0x02, 0x7F, // M
	0x7F, 0x04, 0x08, 0x10, 0x7F, // N
	0x3E, 0x41, 0x41, 0x41, 0x3E, // O
	0x7F, 0x09, 0x09, 0x09, 0x06, // P
	0x3E, 0x41, 0x51, 0x21, 0x5E, // Q
	0x7F, 0x09, 0x19, 0x29, 0x46, // R
	0x46, 0x49, 0x49, 0x49, 0x31, // S
	0x01, 0x01, 0x7F, 0x01, 0x01, // T
	0x3F, 0x40, 0x40, 0x40, 0x3F, // U
	0x1F, 0x20, 0x40, 0x20, 0x1F, // V
	0x7F, 0x20, 0x18, 0x20, 0x7F, // W
	0x63, 0x14, 0x08, 0x14, 0x63, // X
	0x03, 0x04, 0x78, 0x04, 0x03, // Y
	0x61, 0x51, 0x49, 0x45, 0x43, // Z
	0x00, 0x00, 0x7F, 0x41, 0x41, // [
	0x02, 0x04, 0x08, 0x10, 0x20, // \
	0x41, 0x41, 0x7F, 0x00, 0x00, // ]
	0x04, 0x02, 0x01, 0x02, 0x04, // ^
	0x40, 0x40, 0x40, 0x40, 0x40, // _
	0x00, 0x01, 0x02, 0x04, 0x00, // `
	0x20, 0x54, 0x54, 0x54, 0x78, // a
	0x7F, 0x48, 0x44, 0x44, 0x38, // b
	0x38, 0x44, 0x44, 0x44, 0x20, // c
	0x38, 0x44, 0x44, 0x48, 0x7F, // d
	0x38, 0x54, 0x54, 0x54, 0x18, // e
	0x08, 0x7E, 0x09, 0x01, 0x02, // f
	0x08, 0x14, 0x54, 0x54, 0x3C, // g
	0x7F, 0x08, 0x04, 0x04, 0x78, // h
	0x00, 0x44, 0x7D, 0x40, 0x00, // i
	0x20, 0x40, 0x44, 0x3D, 0x00, // j
	0x00, 0x7F, 0x10, 0x28, 0x44, // k
	0x00, 0x41, 0x7F, 0x40, 0x00, // l
	0x7C, 0x04, 0x18, 0x04, 0x78, // m
	0x7C, 0x08, 0x04, 0x04, 0x78, // n
	0x38, 0x44, 0x44, 0x44, 0x38, // o
	0x7C, 0x14, 0x14, 0x14, 0x08, // p
	0x08, 0x14, 0x14, 0x18, 0x7C, // q
	0x7C, 0x08, 0x04, 0x04, 0x08, // r
	0x48, 0x54, 0x54, 0x54, 0x20, // s
	0x04, 0x3F, 0x44, 0x40, 0x20, // t
	0x3C, 0x40, 0x40, 0x20, 0x7C, // u
	0x1C, 0x20, 0x40, 0x20, 0x1C, // v
	0x3C, 0x40, 0x30, 0x40, 0x3C, // w
	0x44, 0x28, 0x10, 0x28, 0x44, // x
	0x0C, 0x50, 0x50, 0x50, 0x3C, // y
	0x44, 0x64, 0x54, 0x4C, 0x44, // z
	0x00, 0x08, 0x36, 0x41, 0x00, // {
	0x00, 0x00, 0x7F, 0x00, 0x00, // |
	0x00, 0x41, 0x36, 0x08, 0x00, // }
	0x08, 0x08, 0x2A, 0x1C, 0x08, // ~
}

// FromFace rasterizes the characters first to last of face into a Font.
// Pixels with at least half coverage are set. Characters face does not
// provide get an empty glyph with no advance.
func FromFace(face font.Face, first, last rune) (*Font, error) {
	if first > last {
		return nil, fmt.Errorf("canvas: empty character range %q-%q", first, last)
	}
	m := face.Metrics()
	lh := m.Height.Ceil()
	if lh > 255 {
		return nil, fmt.Errorf("canvas: line height %d does not fit a font", lh)
	}
	f := &Font{
		First:    first,
		Last:     last,
		YAdvance: uint8(lh),
		Glyphs:   make([]Glyph, 0, last-first+1),
	}
	for r := first; r <= last; r++ {
		g, err := f.appendGlyph(face, r)
		if err != nil {
			return nil, err
		}
		f.Glyphs = append(f.Glyphs, g)
	}
	return f, nil
}

// appendGlyph rasterizes r onto the end of f.Bitmap and returns its
// descriptor.
func (f *Font) appendGlyph(face font.Face, r rune) (Glyph, error) {
	dr, mask, mp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return Glyph{Offset: uint16(len(f.Bitmap))}, nil
	}
	w, h := dr.Dx(), dr.Dy()
	switch {
	case w > 255 || h > 255 || adv.Round() > 255:
		return Glyph{}, fmt.Errorf("canvas: glyph %q is too large", r)
	case dr.Min.X < -128 || dr.Min.X > 127 || dr.Min.Y < -128 || dr.Min.Y > 127:
		return Glyph{}, fmt.Errorf("canvas: glyph %q offset out of range", r)
	case len(f.Bitmap)+(w*h+7)/8 > 0xFFFF:
		return Glyph{}, fmt.Errorf("canvas: bitmap overflow at glyph %q", r)
	}
	g := Glyph{
		Offset:   uint16(len(f.Bitmap)),
		Width:    uint8(w),
		Height:   uint8(h),
		XAdvance: uint8(adv.Round()),
		XOffset:  int8(dr.Min.X),
		YOffset:  int8(dr.Min.Y),
	}
	var acc byte
	n := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			acc <<= 1
			if covered(mask, mp.Add(image.Pt(x, y))) {
				acc |= 1
			}
			if n++; n == 8 {
				f.Bitmap = append(f.Bitmap, acc)
				acc, n = 0, 0
			}
		}
	}
	if n > 0 {
		f.Bitmap = append(f.Bitmap, acc<<(8-n))
	}
	return g, nil
}

func covered(mask image.Image, p image.Point) bool {
	_, _, _, a := mask.At(p.X, p.Y).RGBA()
	return a >= 0x8000
}
