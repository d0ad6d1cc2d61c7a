// Package drawer adapts any periph.io display.Drawer into a
// pixelpanel.Display.
//
// Drawing goes to a resident RGB565 image; Push hands the image to the
// underlying driver, which converts it to the panel's own color model. This
// makes drivers from periph.io/x/devices usable with the canvas package.
package drawer

import (
	"fmt"
	"image"

	"github.com/flavioheleno/pixelpanel"
	"github.com/flavioheleno/pixelpanel/rgb565"
	"periph.io/x/conn/v3/display"
)

// Display is a pixelpanel.Display backed by a display.Drawer.
type Display struct {
	d   display.Drawer
	img *rgb565.Image
}

var _ pixelpanel.Display = (*Display)(nil)

// New wraps d. The resident image covers d.Bounds().
func New(d display.Drawer) *Display {
	return &Display{d: d, img: rgb565.NewImage(d.Bounds())}
}

// Width returns the panel width.
func (p *Display) Width() int {
	return p.img.Rect.Dx()
}

// Height returns the panel height.
func (p *Display) Height() int {
	return p.img.Rect.Dy()
}

// Fill sets every pixel of the resident image.
func (p *Display) Fill(c rgb565.Color) error {
	p.img.Fill(c)
	return nil
}

// Pixel sets one pixel of the resident image; (0, 0) is the top-left corner
// of the panel. Points outside the panel are ignored.
func (p *Display) Pixel(x, y int, c rgb565.Color) error {
	origin := p.img.Rect.Min
	p.img.SetRGB565(origin.X+x, origin.Y+y, c)
	return nil
}

// Blit copies a w×h row-major block into the resident image, clipped to
// the panel.
func (p *Display) Blit(x, y, w, h int, data []uint16) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(data) < w*h {
		return fmt.Errorf("drawer: blit of %dx%d needs %d pixels, got %d", w, h, w*h, len(data))
	}
	r := image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, p.Width(), p.Height()))
	for yy := r.Min.Y; yy < r.Max.Y; yy++ {
		src := data[(yy-y)*w+(r.Min.X-x):][:r.Dx()]
		off := p.img.PixOffset(p.img.Rect.Min.X+r.Min.X, p.img.Rect.Min.Y+yy)
		copy(p.img.Pix[off:off+r.Dx()], src)
	}
	return nil
}

// Push draws the resident image on the panel.
func (p *Display) Push() error {
	if err := p.d.Draw(p.img.Rect, p.img, p.img.Rect.Min); err != nil {
		return pixelpanel.Wrap(pixelpanel.IOError, "drawer: push", err)
	}
	return nil
}

// Halt halts the underlying driver.
func (p *Display) Halt() error {
	return p.d.Halt()
}

func (p *Display) String() string {
	return fmt.Sprintf("drawer.Display{%s}", p.d)
}
