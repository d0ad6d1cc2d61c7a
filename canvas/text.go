package canvas

import (
	"fmt"

	"github.com/flavioheleno/pixelpanel/rgb565"
)

// SetCursor moves the text cursor. It may lie outside the canvas.
func (c *Canvas) SetCursor(x, y int) {
	c.cursorX, c.cursorY = x, y
}

// Cursor returns the text cursor position.
func (c *Canvas) Cursor() (x, y int) {
	return c.cursorX, c.cursorY
}

// SetTextColor sets the foreground color of text.
func (c *Canvas) SetTextColor(col rgb565.Color) {
	c.fg = col
}

// SetTextBackground sets the color drawn behind glyph pixels. Text is
// transparent when it matches the foreground color.
func (c *Canvas) SetTextBackground(col rgb565.Color) {
	c.bg = col
}

// SetTextSize sets the horizontal and vertical glyph scale. Values below 1
// are raised to 1.
func (c *Canvas) SetTextSize(sx, sy int) {
	c.sizeX, c.sizeY = max(sx, 1), max(sy, 1)
}

// SetTextWrap enables or disables wrapping at the right edge.
func (c *Canvas) SetTextWrap(wrap bool) {
	c.wrap = wrap
}

// SetFont selects the font used for text; nil selects the built-in 5×7 font.
func (c *Canvas) SetFont(f *Font) {
	c.font = f
}

// lineHeight returns the unscaled line advance of the active font.
func (c *Canvas) lineHeight() int {
	if c.font != nil {
		return int(c.font.YAdvance)
	}
	return builtinYAdvance
}

// advance returns the unscaled horizontal advance of r, or false if the
// active font cannot draw it.
func (c *Canvas) advance(r rune) (int, bool) {
	if c.font != nil {
		g, ok := c.font.Glyph(r)
		return int(g.XAdvance), ok
	}
	if r < builtinFirst || r > builtinLast {
		return 0, false
	}
	return builtinAdvance, true
}

func (c *Canvas) newline() {
	c.cursorX = 0
	c.cursorY += c.lineHeight() * c.sizeY
}

// WriteChar draws r at the cursor and advances it.
//
// '\n' moves to the start of the next line and '\r' to the start of the
// current one. With wrapping enabled a character that would cross the right
// edge starts a new line first. Characters the font does not cover are
// skipped without moving the cursor.
func (c *Canvas) WriteChar(r rune) {
	switch r {
	case '\n':
		c.newline()
		return
	case '\r':
		c.cursorX = 0
		return
	}
	adv, ok := c.advance(r)
	if !ok {
		return
	}
	if c.wrap && c.cursorX+adv*c.sizeX > c.Width() {
		c.newline()
	}
	c.DrawChar(c.cursorX, c.cursorY, r, c.fg, c.bg, c.sizeX, c.sizeY)
	c.cursorX += adv * c.sizeX
}

// Print writes every character of s in order. s is decoded as UTF-8: a raw
// byte of 0x80 or above is not a valid character and is skipped, so write
// such characters as runes (for example "\u00b0" rather than "\xb0").
func (c *Canvas) Print(s string) {
	for _, r := range s {
		c.WriteChar(r)
	}
}

// Printf formats according to a format specifier and prints the result.
func (c *Canvas) Printf(format string, args ...interface{}) {
	c.Print(fmt.Sprintf(format, args...))
}

// DrawChar draws r at (x, y) without touching the cursor. Each glyph pixel
// becomes an sx×sy cell; background cells are drawn only when bg differs
// from fg.
func (c *Canvas) DrawChar(x, y int, r rune, fg, bg rgb565.Color, sx, sy int) {
	sx, sy = max(sx, 1), max(sy, 1)
	if c.font != nil {
		c.drawGlyph(x, y, r, fg, bg, sx, sy)
		return
	}
	if r < builtinFirst || r > builtinLast {
		return
	}
	cols := builtin[(r-builtinFirst)*builtinCols:][:builtinCols]
	for i, line := range cols {
		for j := 0; j < builtinRows; j++ {
			switch {
			case line&1 != 0:
				c.cell(x+i*sx, y+j*sy, sx, sy, fg)
			case bg != fg:
				c.cell(x+i*sx, y+j*sy, sx, sy, bg)
			}
			line >>= 1
		}
	}
}

// drawGlyph renders a glyph of the active font with its origin on the
// baseline at (x, y).
func (c *Canvas) drawGlyph(x, y int, r rune, fg, bg rgb565.Color, sx, sy int) {
	g, ok := c.font.Glyph(r)
	if !ok {
		return
	}
	bm := c.font.Bitmap
	off := int(g.Offset)
	var bits byte
	n := 0
	for yy := 0; yy < int(g.Height); yy++ {
		for xx := 0; xx < int(g.Width); xx++ {
			if n&7 == 0 {
				bits = bm[off]
				off++
			}
			n++
			px := x + (int(g.XOffset)+xx)*sx
			py := y + (int(g.YOffset)+yy)*sy
			switch {
			case bits&0x80 != 0:
				c.cell(px, py, sx, sy, fg)
			case bg != fg:
				c.cell(px, py, sx, sy, bg)
			}
			bits <<= 1
		}
	}
}

func (c *Canvas) cell(x, y, sx, sy int, col rgb565.Color) {
	if sx == 1 && sy == 1 {
		c.SetPixel(x, y, col)
		return
	}
	c.FillRect(x, y, sx, sy, col)
}

// ScrollUp moves the framebuffer content up by n rows and fills the exposed
// rows at the bottom with the clear color. It does nothing in direct mode.
func (c *Canvas) ScrollUp(n int) {
	if c.fb == nil || n <= 0 {
		return
	}
	w, h := c.fb.Rect.Dx(), c.fb.Rect.Dy()
	n = min(n, h)
	copy(c.fb.Pix, c.fb.Pix[n*w:])
	exposed := c.fb.Pix[(h-n)*w:]
	for i := range exposed {
		exposed[i] = uint16(c.clearColor)
	}
	c.dirty = true
}
