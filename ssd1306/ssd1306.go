// Package ssd1306 controls a SSD1306 monochrome OLED display via I²C.
//
// The SSD1306 stores pixels in pages: each byte covers one column and eight
// rows, bit 0 on top. The driver keeps a resident copy of the display RAM in
// host memory; drawing only touches that copy and Push transfers it.
//
// See the examples for how to use this package.
package ssd1306

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/flavioheleno/pixelpanel"
	"github.com/flavioheleno/pixelpanel/bus"
	"github.com/flavioheleno/pixelpanel/initseq"
	"github.com/flavioheleno/pixelpanel/rgb565"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the usual I²C address of SSD1306 modules (SA0 low).
const DefaultAddr = 0x3C

// Command opcodes.
const (
	setColumnAddr   = 0x21
	setPageAddr     = 0x22
	scrollRight     = 0x26
	scrollLeft      = 0x27
	stopScroll      = 0x2E
	startScroll     = 0x2F
	setStartLine    = 0x40
	setContrast     = 0x81
	chargePump      = 0x8D
	followRAM       = 0xA4
	normalDisplay   = 0xA6
	invertDisplay   = 0xA7
	setMuxRatio     = 0xA8
	displayOff      = 0xAE
	displayOn       = 0xAF
	setMemoryMode   = 0x20
	setSegRemap     = 0xA0
	setComScanDec   = 0xC8
	setDispOffset   = 0xD3
	setClockDiv     = 0xD5
	setPrecharge    = 0xD9
	setComPins      = 0xDA
	setVcomDeselect = 0xDB
)

var errHalted = errors.New("ssd1306: halted")

// Opts is the configuration for the SSD1306 display.
type Opts struct {
	// Display dimensions in pixels
	W int // Width (default: 128, must be ≤128)
	H int // Height (default: 64, must be a multiple of 8 and ≤64)

	// I²C address, used by NewI2C (default: DefaultAddr)
	Addr uint16

	// Logger (default: logrus standard logger)
	Logger logrus.FieldLogger
}

// Dev is the device handle for the SSD1306 display.
type Dev struct {
	// Communication
	b   bus.Bus
	log logrus.FieldLogger

	// Display geometry
	w, h int

	// Page-ordered copy of the display RAM
	buffer []byte

	// State
	halted bool
}

var _ pixelpanel.Display = (*Dev)(nil)

// NewI2C creates a new SSD1306 device on an I²C bus.
//
// opts can be nil to use defaults (128x64 display at DefaultAddr).
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	addr := uint16(DefaultAddr)
	if opts != nil && opts.Addr != 0 {
		addr = opts.Addr
	}
	return New(bus.NewI2C(b, addr), opts)
}

// New creates a new SSD1306 device on an already configured bus, clears the
// panel and turns it on.
func New(b bus.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	w, h := opts.W, opts.H
	if w == 0 {
		w = 128
	}
	if h == 0 {
		h = 64
	}
	if w < 0 || w > 128 {
		return nil, errors.New("ssd1306: width must be between 1 and 128")
	}
	if h < 8 || h > 64 || h%8 != 0 {
		return nil, errors.New("ssd1306: height must be a multiple of 8 between 8 and 64")
	}

	d := &Dev{
		b:      b,
		log:    opts.Logger,
		w:      w,
		h:      h,
		buffer: make([]byte, w*h/8),
	}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

// initCommands returns the bring-up sequence for a panel of height h.
func initCommands(h int) []initseq.Command {
	comPins := byte(0x02)
	if h == 64 {
		comPins = 0x12
	}
	return []initseq.Command{
		{Op: displayOff},
		{Op: setMemoryMode, Args: []byte{0x00}}, // Horizontal addressing
		{Op: setStartLine},
		{Op: setSegRemap | 0x01}, // Column 127 mapped to SEG0
		{Op: setMuxRatio, Args: []byte{byte(h - 1)}},
		{Op: setComScanDec},
		{Op: setDispOffset, Args: []byte{0x00}},
		{Op: setComPins, Args: []byte{comPins}},
		{Op: setClockDiv, Args: []byte{0x80}},
		{Op: setPrecharge, Args: []byte{0xF1}},
		{Op: setVcomDeselect, Args: []byte{0x30}},
		{Op: setContrast, Args: []byte{0xFF}},
		{Op: followRAM},
		{Op: normalDisplay},
		{Op: chargePump, Args: []byte{0x14}},
		{Op: stopScroll},
	}
}

// init sends the initialization sequence, then pushes a blank frame before
// turning the panel on so no stale RAM content flashes up.
func (d *Dev) init() error {
	if err := initseq.Run(initseq.SenderFunc(d.sendCommand), initCommands(d.h), 0); err != nil {
		return pixelpanel.Wrap(pixelpanel.IOError, "ssd1306: init", err)
	}
	if err := d.Fill(rgb565.Black); err != nil {
		return err
	}
	if err := d.Push(); err != nil {
		return pixelpanel.Wrap(pixelpanel.IOError, "ssd1306: init", err)
	}
	if err := d.sendCommand(displayOn, nil); err != nil {
		return pixelpanel.Wrap(pixelpanel.IOError, "ssd1306: init", err)
	}
	d.log.Infof("ssd1306 initialized (%dx%d)", d.w, d.h)
	return nil
}

// sendCommand sends op and then each argument as its own command byte.
func (d *Dev) sendCommand(op byte, args []byte) error {
	d.log.WithField("op", fmt.Sprintf("%#02x", op)).Debugf("ssd1306: command % x", args)
	return bus.Session(d.b, func() error {
		if err := d.b.WriteCommand(op); err != nil {
			return err
		}
		for _, a := range args {
			if err := d.b.WriteCommand(a); err != nil {
				return err
			}
		}
		return nil
	})
}

// Width returns the panel width.
func (d *Dev) Width() int {
	return d.w
}

// Height returns the panel height.
func (d *Dev) Height() int {
	return d.h
}

// Fill sets every pixel of the resident buffer. Any non-zero color is on.
func (d *Dev) Fill(c rgb565.Color) error {
	v := byte(0x00)
	if c != 0 {
		v = 0xFF
	}
	for i := range d.buffer {
		d.buffer[i] = v
	}
	return nil
}

// Pixel sets the pixel at (x, y) in the resident buffer. Points outside the
// panel are ignored.
func (d *Dev) Pixel(x, y int, c rgb565.Color) error {
	d.set(x, y, c != 0)
	return nil
}

func (d *Dev) set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= d.w || y >= d.h {
		return
	}
	idx := x + (y/8)*d.w
	mask := byte(1) << uint(y&7)
	if on {
		d.buffer[idx] |= mask
	} else {
		d.buffer[idx] &^= mask
	}
}

// Blit writes a w×h row-major block of pixels at (x, y) into the resident
// buffer, one pixel at a time.
func (d *Dev) Blit(x, y, w, h int, data []uint16) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(data) < w*h {
		return fmt.Errorf("ssd1306: blit of %dx%d needs %d pixels, got %d", w, h, w*h, len(data))
	}
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			d.set(x+dx, y+dy, data[dy*w+dx] != 0)
		}
	}
	return nil
}

// Push transfers the resident buffer to the display RAM.
func (d *Dev) Push() error {
	if d.halted {
		return errHalted
	}
	if err := d.sendCommand(setColumnAddr, []byte{0, byte(d.w - 1)}); err != nil {
		return err
	}
	if err := d.sendCommand(setPageAddr, []byte{0, byte(d.h/8 - 1)}); err != nil {
		return err
	}
	return bus.Session(d.b, func() error {
		return d.b.WriteData(d.buffer)
	})
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return color.Palette{rgb565.Black, rgb565.White}
}

// Bounds returns the image bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.w, d.h)
}

// Draw renders src into the resident buffer and pushes it.
// The dst rectangle specifies the destination region on the display.
// The src image is positioned at src point sp within the destination.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errHalted
	}
	r := dst.Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	sp = sp.Add(r.Min.Sub(dst.Min))
	pal := d.ColorModel().(color.Palette)
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			on := pal.Index(src.At(sp.X+x, sp.Y+y)) == 1
			d.set(r.Min.X+x, r.Min.Y+y, on)
		}
	}
	return d.Push()
}

// SetContrast sets the display contrast (0-255).
func (d *Dev) SetContrast(contrast byte) error {
	if d.halted {
		return errHalted
	}
	return d.sendCommand(setContrast, []byte{contrast})
}

// Invert inverts the display colors (black becomes white and vice versa).
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return errHalted
	}
	mode := byte(normalDisplay)
	if invert {
		mode = invertDisplay
	}
	return d.sendCommand(mode, nil)
}

// Halt powers off the display.
// After calling Halt, the display will not respond to further commands
// until the device is re-initialized.
func (d *Dev) Halt() error {
	d.halted = true
	return d.sendCommand(displayOff, nil)
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ssd1306.Dev{%dx%d}", d.w, d.h)
}

// ScrollInterval is the number of frames between scroll steps.
type ScrollInterval byte

const (
	Scroll2Frames   ScrollInterval = 0x07
	Scroll3Frames   ScrollInterval = 0x04
	Scroll4Frames   ScrollInterval = 0x05
	Scroll5Frames   ScrollInterval = 0x00
	Scroll25Frames  ScrollInterval = 0x06
	Scroll64Frames  ScrollInterval = 0x01
	Scroll128Frames ScrollInterval = 0x02
	Scroll256Frames ScrollInterval = 0x03
)

// ScrollHorizontal starts continuous horizontal scrolling of pages
// startPage through endPage. If right is true, scrolls right; otherwise
// scrolls left. The resident buffer is not affected.
func (d *Dev) ScrollHorizontal(startPage, endPage byte, interval ScrollInterval, right bool) error {
	if d.halted {
		return errHalted
	}
	pages := d.h / 8
	if int(startPage) >= pages || int(endPage) >= pages || startPage > endPage {
		return errors.New("ssd1306: scroll page out of range")
	}
	op := byte(scrollLeft)
	if right {
		op = scrollRight
	}
	if err := d.sendCommand(op, []byte{0x00, startPage, byte(interval), endPage, 0x00, 0xFF}); err != nil {
		return err
	}
	return d.sendCommand(startScroll, nil)
}

// StopScroll stops scrolling. Display RAM must be rewritten afterwards.
func (d *Dev) StopScroll() error {
	if d.halted {
		return errHalted
	}
	return d.sendCommand(stopScroll, nil)
}
