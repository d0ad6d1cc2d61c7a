// Package ili9341 controls an ILI9341 TFT display via SPI.
//
// The ILI9341 is a 240x320 controller with a 16-bit RGB565 write path and
// per-pixel column/row address registers.
//
// See the examples for how to use this package.
package ili9341

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/flavioheleno/pixelpanel"
	"github.com/flavioheleno/pixelpanel/bus"
	"github.com/flavioheleno/pixelpanel/initseq"
	"github.com/flavioheleno/pixelpanel/rgb565"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Native panel geometry.
const (
	NativeWidth  = 240
	NativeHeight = 320
)

// maxRowWords is the longest row in any orientation; it sizes the scratch
// buffers used to stream fills and image rows.
const maxRowWords = NativeHeight

var errHalted = errors.New("ili9341: halted")

// sleep is replaced in tests.
var sleep = time.Sleep

// Opts is the configuration for the ILI9341 display.
type Opts struct {
	// Initial orientation, applied after the init table
	Rotation pixelpanel.Rotation

	// Optional hardware reset pin
	RST gpio.PinOut

	// Register sequence replayed at bring-up (default: InitTable)
	InitTable []byte
	// Pause after delayed table commands (default: DefaultSettle)
	Settle time.Duration

	// Logger (default: logrus standard logger)
	Logger logrus.FieldLogger
}

// Dev is the device handle for the ILI9341 display.
type Dev struct {
	// Communication
	b   bus.Bus
	rst gpio.PinOut
	log logrus.FieldLogger

	// Bring-up sequence
	cmds   []initseq.Command
	settle time.Duration

	// Display geometry
	w, h     int
	rotation pixelpanel.Rotation

	// State
	halted bool
}

var _ pixelpanel.Display = (*Dev)(nil)

// NewSPI creates a new ILI9341 device connected via SPI.
//
// The SPI port is configured for 40MHz, Mode3 (CPOL=1, CPHA=1), 8-bit transfers.
// The dc (Data/Command) GPIO pin must be provided; cs may be nil when the port
// drives chip select itself.
//
// opts can be nil to use defaults.
func NewSPI(p spi.Port, dc, cs gpio.PinOut, opts *Opts) (*Dev, error) {
	b, err := bus.NewSPI(p, dc, &bus.SPIOpts{
		Freq: 40 * physic.MegaHertz,
		Mode: spi.Mode3,
		CS:   cs,
	})
	if err != nil {
		return nil, err
	}
	return New(b, opts)
}

// New creates a new ILI9341 device on an already configured bus and runs
// the bring-up sequence.
func New(b bus.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{}
	}
	table := opts.InitTable
	if table == nil {
		table = InitTable
	}
	cmds, err := initseq.Decode(table)
	if err != nil {
		return nil, fmt.Errorf("ili9341: %w", err)
	}
	d := &Dev{
		b:      b,
		rst:    opts.RST,
		log:    opts.Logger,
		cmds:   cmds,
		settle: opts.Settle,
		w:      NativeWidth,
		h:      NativeHeight,
	}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}
	if d.settle == 0 {
		d.settle = DefaultSettle
	}
	if err := d.init(opts.Rotation); err != nil {
		return nil, err
	}
	return d, nil
}

// init resets the controller and replays the init table.
func (d *Dev) init(r pixelpanel.Rotation) error {
	if err := d.reset(); err != nil {
		return err
	}
	if err := initseq.Run(initseq.SenderFunc(d.sendCommand), d.cmds, d.settle); err != nil {
		return pixelpanel.Wrap(pixelpanel.IOError, "ili9341: init", err)
	}
	d.w, d.h = NativeWidth, NativeHeight
	if r.Normalize() != pixelpanel.Rotate0 {
		if err := d.SetRotation(r); err != nil {
			return err
		}
	}
	d.log.Infof("ili9341 initialized (%dx%d)", d.w, d.h)
	return nil
}

// reset pulses the RST pin, if provided.
func (d *Dev) reset() error {
	if d.rst == nil {
		return nil
	}
	if err := d.rst.Out(gpio.Low); err != nil {
		return pixelpanel.Wrap(pixelpanel.HardwareFault, "ili9341: pull RST low", err)
	}
	sleep(5 * time.Millisecond)
	if err := d.rst.Out(gpio.High); err != nil {
		return pixelpanel.Wrap(pixelpanel.HardwareFault, "ili9341: pull RST high", err)
	}
	sleep(150 * time.Millisecond)
	return nil
}

// sendCommand sends one command and its arguments in its own bus session.
func (d *Dev) sendCommand(op byte, args []byte) error {
	d.log.WithField("op", fmt.Sprintf("%#02x", op)).Debugf("ili9341: command % x", args)
	return bus.Session(d.b, func() error {
		return d.command(op, args)
	})
}

// command writes op in command framing followed by args in data framing.
// The caller holds the bus session.
func (d *Dev) command(op byte, args []byte) error {
	if err := d.b.WriteCommand(op); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	return d.b.WriteData(args)
}

// Width returns the logical width for the current rotation.
func (d *Dev) Width() int {
	return d.w
}

// Height returns the logical height for the current rotation.
func (d *Dev) Height() int {
	return d.h
}

// Rotation returns the current orientation.
func (d *Dev) Rotation() pixelpanel.Rotation {
	return d.rotation
}

// Fill sets every pixel of the panel to c.
//
// A single row-sized buffer is filled once and streamed repeatedly, so memory
// use does not depend on the panel size.
func (d *Dev) Fill(c rgb565.Color) error {
	if d.halted {
		return errHalted
	}
	return bus.Session(d.b, func() error {
		if err := d.setWindow(0, 0, d.w, d.h); err != nil {
			return err
		}
		var row [maxRowWords]uint16
		for i := range row {
			row[i] = uint16(c)
		}
		for total := d.w * d.h; total > 0; {
			n := total
			if n > maxRowWords {
				n = maxRowWords
			}
			if err := d.b.WriteData16(row[:n]); err != nil {
				return err
			}
			total -= n
		}
		return nil
	})
}

// Pixel sets the pixel at (x, y). Points outside the panel are ignored.
func (d *Dev) Pixel(x, y int, c rgb565.Color) error {
	return d.Blit(x, y, 1, 1, []uint16{uint16(c)})
}

// Blit writes a w×h row-major block of packed pixels at (x, y).
//
// The block is clipped to the panel; empty blocks are ignored. data must hold
// at least w*h pixels.
func (d *Dev) Blit(x, y, w, h int, data []uint16) error {
	if d.halted {
		return errHalted
	}
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(data) < w*h {
		return fmt.Errorf("ili9341: blit of %dx%d needs %d pixels, got %d", w, h, w*h, len(data))
	}
	r := image.Rect(x, y, x+w, y+h).Intersect(d.Bounds())
	if r.Empty() {
		return nil
	}
	return bus.Session(d.b, func() error {
		if err := d.setWindow(r.Min.X, r.Min.Y, r.Dx(), r.Dy()); err != nil {
			return err
		}
		if r.Dx() == w {
			start := (r.Min.Y - y) * w
			return d.b.WriteData16(data[start : start+w*r.Dy()])
		}
		for yy := r.Min.Y; yy < r.Max.Y; yy++ {
			off := (yy-y)*w + (r.Min.X - x)
			if err := d.b.WriteData16(data[off : off+r.Dx()]); err != nil {
				return err
			}
		}
		return nil
	})
}

// madctlByRotation maps each rotation to its memory access control byte.
var madctlByRotation = [4]byte{
	madMX | madBGR,
	madMV | madBGR,
	madMY | madBGR,
	madMX | madMY | madMV | madBGR,
}

// SetRotation changes the orientation used by subsequent drawing.
//
// r is taken modulo 4. Pixels already on the panel are not moved.
func (d *Dev) SetRotation(r pixelpanel.Rotation) error {
	if d.halted {
		return errHalted
	}
	r = r.Normalize()
	if err := d.sendCommand(MADCTL, []byte{madctlByRotation[r]}); err != nil {
		return err
	}
	d.rotation = r
	d.w, d.h = NativeWidth, NativeHeight
	if r.Swapped() {
		d.w, d.h = NativeHeight, NativeWidth
	}
	return nil
}

// Invert inverts the display colors.
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return errHalted
	}
	op := byte(INVOFF)
	if invert {
		op = INVON
	}
	return d.sendCommand(op, nil)
}

// Halt turns the display off and puts the controller to sleep.
// After calling Halt, the display will not respond to further commands
// until the device is re-initialized.
func (d *Dev) Halt() error {
	d.halted = true
	if err := d.sendCommand(DISPOFF, nil); err != nil {
		return err
	}
	return d.sendCommand(SLPIN, nil)
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds returns the image bounds of the display in the current orientation.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.w, d.h)
}

// Draw draws src onto the display.
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
	return bus.Session(d.b, func() error {
		if err := d.setWindow(r.Min.X, r.Min.Y, r.Dx(), r.Dy()); err != nil {
			return err
		}
		var row [maxRowWords]uint16
		for y := 0; y < r.Dy(); y++ {
			for x := 0; x < r.Dx(); x++ {
				row[x] = uint16(rgb565.Model.Convert(src.At(sp.X+x, sp.Y+y)).(rgb565.Color))
			}
			if err := d.b.WriteData16(row[:r.Dx()]); err != nil {
				return err
			}
		}
		return nil
	})
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("ili9341.Dev{%dx%d}", d.w, d.h)
}
