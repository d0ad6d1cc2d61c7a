package canvas

import (
	"image"

	"github.com/flavioheleno/pixelpanel/rgb565"
	xdraw "golang.org/x/image/draw"
)

// Line draws a line from (x0, y0) to (x1, y1) inclusive using Bresenham's
// algorithm. The walk always advances along the dominant axis.
func (c *Canvas) Line(x0, y0, x1, y1 int, col rgb565.Color) {
	steep := abs(y1-y0) > abs(x1-x0)
	if steep {
		x0, y0 = y0, x0
		x1, y1 = y1, x1
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}

	dx := x1 - x0
	dy := abs(y1 - y0)
	err := dx / 2
	ystep := -1
	if y0 < y1 {
		ystep = 1
	}

	for ; x0 <= x1; x0++ {
		if steep {
			c.SetPixel(y0, x0, col)
		} else {
			c.SetPixel(x0, y0, col)
		}
		err -= dy
		if err < 0 {
			y0 += ystep
			err += dx
		}
	}
}

// HLine draws a horizontal run of n pixels starting at (x, y).
func (c *Canvas) HLine(x, y, n int, col rgb565.Color) {
	if y < 0 || y >= c.Height() {
		return
	}
	x0 := max(x, 0)
	x1 := min(x+n, c.Width())
	if x0 >= x1 {
		return
	}
	c.span(x0, y, x1-x0, 1, col)
}

// VLine draws a vertical run of n pixels starting at (x, y).
func (c *Canvas) VLine(x, y, n int, col rgb565.Color) {
	if x < 0 || x >= c.Width() {
		return
	}
	y0 := max(y, 0)
	y1 := min(y+n, c.Height())
	if y0 >= y1 {
		return
	}
	c.span(x, y0, 1, y1-y0, col)
}

// Rect draws the outline of the w×h rectangle at (x, y).
func (c *Canvas) Rect(x, y, w, h int, col rgb565.Color) {
	c.HLine(x, y, w, col)
	c.HLine(x, y+h-1, w, col)
	c.VLine(x, y, h, col)
	c.VLine(x+w-1, y, h, col)
}

// FillRect fills the w×h rectangle at (x, y), clipped to the canvas.
func (c *Canvas) FillRect(x, y, w, h int, col rgb565.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	r := image.Rect(x, y, x+w, y+h).Intersect(image.Rect(0, 0, c.Width(), c.Height()))
	if r.Empty() {
		return
	}
	c.span(r.Min.X, r.Min.Y, r.Dx(), r.Dy(), col)
}

// Circle draws the outline of a circle of radius r centred on (x0, y0)
// using the midpoint algorithm.
func (c *Canvas) Circle(x0, y0, r int, col rgb565.Color) {
	f := 1 - r
	ddFx := 1
	ddFy := -2 * r
	x, y := 0, r

	c.SetPixel(x0, y0+r, col)
	c.SetPixel(x0, y0-r, col)
	c.SetPixel(x0+r, y0, col)
	c.SetPixel(x0-r, y0, col)

	for x < y {
		if f >= 0 {
			y--
			ddFy += 2
			f += ddFy
		}
		x++
		ddFx += 2
		f += ddFx

		c.SetPixel(x0+x, y0+y, col)
		c.SetPixel(x0-x, y0+y, col)
		c.SetPixel(x0+x, y0-y, col)
		c.SetPixel(x0-x, y0-y, col)
		c.SetPixel(x0+y, y0+x, col)
		c.SetPixel(x0-y, y0+x, col)
		c.SetPixel(x0+y, y0-x, col)
		c.SetPixel(x0-y, y0-x, col)
	}
}

// FillCircle fills a circle of radius r centred on (x0, y0) with vertical
// spans: the central diameter first, then four symmetric spans per step.
func (c *Canvas) FillCircle(x0, y0, r int, col rgb565.Color) {
	c.VLine(x0, y0-r, 2*r+1, col)

	f := 1 - r
	ddFx := 1
	ddFy := -2 * r
	x, y := 0, r

	for x < y {
		if f >= 0 {
			y--
			ddFy += 2
			f += ddFy
		}
		x++
		ddFx += 2
		f += ddFx

		c.VLine(x0+x, y0-y, 2*y+1, col)
		c.VLine(x0-x, y0-y, 2*y+1, col)
		c.VLine(x0+y, y0-x, 2*x+1, col)
		c.VLine(x0-y, y0-x, 2*x+1, col)
	}
}

// DrawImage scales src to fill dst with nearest-neighbour sampling.
// In direct mode the scaled image is sent as one Blit.
func (c *Canvas) DrawImage(dst image.Rectangle, src image.Image) {
	bounds := image.Rect(0, 0, c.Width(), c.Height())
	if dst.Intersect(bounds).Empty() {
		return
	}
	if c.fb != nil {
		xdraw.NearestNeighbor.Scale(c.fb, dst, src, src.Bounds(), xdraw.Src, nil)
		c.dirty = true
		return
	}
	tmp := rgb565.NewImage(dst)
	xdraw.NearestNeighbor.Scale(tmp, dst, src, src.Bounds(), xdraw.Src, nil)
	c.direct(func() error {
		return c.d.Blit(dst.Min.X, dst.Min.Y, dst.Dx(), dst.Dy(), tmp.Pix)
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
