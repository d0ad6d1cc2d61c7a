// Package canvas implements a software rasterizer and text engine on top of
// a pixelpanel.Display.
//
// A Canvas works in one of two modes. Without a framebuffer every primitive
// is forwarded to the display immediately. After CreateFramebuffer the
// primitives only touch host memory and set a dirty flag; Flush transfers the
// whole frame in a single Blit when, and only when, something changed.
//
// Drawing never fails: coordinates outside the canvas are clipped and empty
// spans are skipped. In direct mode the first display error is kept and
// returned by Err; later direct calls are dropped until ResetErr is called.
//
// A Canvas is not safe for concurrent use.
package canvas

import (
	"image"

	"github.com/flavioheleno/pixelpanel"
	"github.com/flavioheleno/pixelpanel/rgb565"
)

// pusher is implemented by displays whose Blit only updates a resident
// buffer, such as ssd1306.Dev.
type pusher interface {
	Push() error
}

// Canvas is a drawing surface bound to one display.
type Canvas struct {
	d   pixelpanel.Display
	fb  *rgb565.Image
	err error

	dirty      bool
	clearColor rgb565.Color

	// Text state
	cursorX, cursorY int
	fg, bg           rgb565.Color
	sizeX, sizeY     int
	wrap             bool
	font             *Font

	// Row scratch for direct-mode spans
	row []uint16
}

// New returns a Canvas in direct mode drawing on d.
func New(d pixelpanel.Display) *Canvas {
	return &Canvas{
		d:     d,
		fg:    rgb565.White,
		bg:    rgb565.Black,
		sizeX: 1,
		sizeY: 1,
		wrap:  true,
	}
}

// Width returns the canvas width: the framebuffer's if present, otherwise
// the display's current logical width.
func (c *Canvas) Width() int {
	if c.fb != nil {
		return c.fb.Rect.Dx()
	}
	return c.d.Width()
}

// Height returns the canvas height.
func (c *Canvas) Height() int {
	if c.fb != nil {
		return c.fb.Rect.Dy()
	}
	return c.d.Height()
}

// CreateFramebuffer allocates a framebuffer matching the display's current
// size and clears it. It does nothing if one already exists.
//
// The framebuffer keeps its size if the display is rotated afterwards.
func (c *Canvas) CreateFramebuffer() {
	if c.fb != nil {
		return
	}
	c.fb = rgb565.NewImage(image.Rect(0, 0, c.d.Width(), c.d.Height()))
	c.Clear()
}

// DestroyFramebuffer releases the framebuffer and returns to direct mode.
// Unflushed changes are lost.
func (c *Canvas) DestroyFramebuffer() {
	c.fb = nil
	c.dirty = false
}

// HasFramebuffer reports whether the canvas draws into a framebuffer.
func (c *Canvas) HasFramebuffer() bool {
	return c.fb != nil
}

// Image returns the framebuffer, or nil in direct mode.
// Writes made through it are not tracked; call Invalidate afterwards.
func (c *Canvas) Image() *rgb565.Image {
	return c.fb
}

// Invalidate marks the framebuffer as changed.
func (c *Canvas) Invalidate() {
	if c.fb != nil {
		c.dirty = true
	}
}

// Dirty reports whether the framebuffer holds changes not yet flushed.
func (c *Canvas) Dirty() bool {
	return c.dirty
}

// Err returns the first error reported by the display in direct mode.
func (c *Canvas) Err() error {
	return c.err
}

// ResetErr clears the error kept by direct mode so drawing reaches the
// display again.
func (c *Canvas) ResetErr() {
	c.err = nil
}

// Flush transfers the framebuffer to the display with a single Blit if it is
// dirty, then pushes it if the display keeps a resident buffer.
//
// On error the canvas stays dirty so the next Flush retries the transfer.
func (c *Canvas) Flush() error {
	if c.fb == nil || !c.dirty {
		return nil
	}
	r := c.fb.Rect
	if err := c.d.Blit(0, 0, r.Dx(), r.Dy(), c.fb.Pix); err != nil {
		return err
	}
	if p, ok := c.d.(pusher); ok {
		if err := p.Push(); err != nil {
			return err
		}
	}
	c.dirty = false
	return nil
}

// direct runs fn against the display unless an earlier call failed.
func (c *Canvas) direct(fn func() error) {
	if c.err != nil {
		return
	}
	c.err = fn()
}

// SetClearColor sets the color used by Clear and ScrollUp.
func (c *Canvas) SetClearColor(col rgb565.Color) {
	c.clearColor = col
}

// Clear fills the canvas with the clear color.
func (c *Canvas) Clear() {
	c.Fill(c.clearColor)
}

// Fill sets every pixel to col.
func (c *Canvas) Fill(col rgb565.Color) {
	if c.fb != nil {
		c.fb.Fill(col)
		c.dirty = true
		return
	}
	c.direct(func() error { return c.d.Fill(col) })
}

// SetPixel sets the pixel at (x, y). Points outside the canvas are ignored.
func (c *Canvas) SetPixel(x, y int, col rgb565.Color) {
	if x < 0 || y < 0 || x >= c.Width() || y >= c.Height() {
		return
	}
	if c.fb != nil {
		c.fb.Pix[c.fb.PixOffset(x, y)] = uint16(col)
		c.dirty = true
		return
	}
	c.direct(func() error { return c.d.Pixel(x, y, col) })
}

// span writes a clipped, non-empty w×h block of col. Direct mode sends a
// single column Blit for vertical runs and one Blit per row otherwise.
func (c *Canvas) span(x, y, w, h int, col rgb565.Color) {
	if c.fb != nil {
		for yy := y; yy < y+h; yy++ {
			off := c.fb.PixOffset(x, yy)
			row := c.fb.Pix[off : off+w]
			for i := range row {
				row[i] = uint16(col)
			}
		}
		c.dirty = true
		return
	}
	if w == 1 {
		buf := c.scratch(h, col)
		c.direct(func() error { return c.d.Blit(x, y, 1, h, buf) })
		return
	}
	buf := c.scratch(w, col)
	for yy := y; yy < y+h; yy++ {
		c.direct(func() error { return c.d.Blit(x, yy, w, 1, buf) })
	}
}

// scratch returns n copies of col backed by a reused buffer.
func (c *Canvas) scratch(n int, col rgb565.Color) []uint16 {
	if cap(c.row) < n {
		c.row = make([]uint16, n)
	}
	buf := c.row[:n]
	for i := range buf {
		buf[i] = uint16(col)
	}
	return buf
}
