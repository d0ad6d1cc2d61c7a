package ssd1306

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/flavioheleno/pixelpanel"
	"github.com/flavioheleno/pixelpanel/bus/bustest"
	"github.com/flavioheleno/pixelpanel/rgb565"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func newTestDev(w, h int) (*Dev, *bustest.Record) {
	rec := &bustest.Record{}
	return &Dev{
		b:      rec,
		log:    quietLogger(),
		w:      w,
		h:      h,
		buffer: make([]byte, w*h/8),
	}, rec
}

func TestOptsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Opts
		wantErr bool
	}{
		{"nil opts", nil, false},
		{"128x32", &Opts{W: 128, H: 32}, false},
		{"64x48", &Opts{W: 64, H: 48}, false},
		{"too wide", &Opts{W: 129, H: 64}, true},
		{"negative width", &Opts{W: -1, H: 64}, true},
		{"too tall", &Opts{W: 128, H: 72}, true},
		{"partial page", &Opts{W: 128, H: 30}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opts != nil {
				tt.opts.Logger = quietLogger()
			}
			_, err := New(&bustest.Record{}, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInitSequence(t *testing.T) {
	tests := []struct {
		h       int
		comPins byte
	}{
		{64, 0x12},
		{32, 0x02},
	}

	for _, tt := range tests {
		rec := &bustest.Record{}
		d, err := New(rec, &Opts{W: 128, H: tt.h, Logger: quietLogger()})
		if err != nil {
			t.Fatal(err)
		}
		want := []byte{
			0xAE,
			0x20, 0x00,
			0x40,
			0xA1,
			0xA8, byte(tt.h - 1),
			0xC8,
			0xD3, 0x00,
			0xDA, tt.comPins,
			0xD5, 0x80,
			0xD9, 0xF1,
			0xDB, 0x30,
			0x81, 0xFF,
			0xA4,
			0xA6,
			0x8D, 0x14,
			0x2E,
			0x21, 0x00, 0x7F,
			0x22, 0x00, byte(tt.h/8 - 1),
			0xAF,
		}
		if got := rec.Commands(); !bytes.Equal(got, want) {
			t.Errorf("h=%d: commands\n got % x\nwant % x", tt.h, got, want)
		}

		// The blank frame goes out before display on.
		last := rec.Ops[len(rec.Ops)-5]
		if last.Kind != bustest.Data || len(last.Bytes) != 128*tt.h/8 || bytes.Count(last.Bytes, []byte{0}) != len(last.Bytes) {
			t.Errorf("h=%d: expected blank frame before display on, got %v", tt.h, last.Kind)
		}
		if !rec.Balanced() {
			t.Errorf("h=%d: bus left selected", tt.h)
		}
		if d.Width() != 128 || d.Height() != tt.h {
			t.Errorf("size = %dx%d", d.Width(), d.Height())
		}
	}
}

func TestNewI2CWire(t *testing.T) {
	rec := &i2ctest.Record{}
	if _, err := NewI2C(rec, &Opts{W: 128, H: 32, Addr: 0x3D, Logger: quietLogger()}); err != nil {
		t.Fatal(err)
	}
	if len(rec.Ops) == 0 {
		t.Fatal("no transactions")
	}
	data := 0
	for i, op := range rec.Ops {
		if op.Addr != 0x3D {
			t.Errorf("op %d addr = %#x, want 0x3d", i, op.Addr)
		}
		switch op.W[0] {
		case 0x80:
			if len(op.W) != 2 {
				t.Errorf("op %d: command transaction of %d bytes", i, len(op.W))
			}
		case 0x40:
			data++
			if len(op.W) != 1+128*32/8 {
				t.Errorf("op %d: data transaction of %d bytes, want %d", i, len(op.W), 1+128*32/8)
			}
		default:
			t.Errorf("op %d: unexpected control byte %#x", i, op.W[0])
		}
	}
	if data != 1 {
		t.Errorf("%d data transactions, want 1", data)
	}
}

func TestNewBusFailure(t *testing.T) {
	rec := &bustest.Record{Err: errors.New("nack")}
	_, err := New(rec, &Opts{Logger: quietLogger()})
	if !pixelpanel.IsKind(err, pixelpanel.IOError) {
		t.Errorf("New() error = %v, want IOError kind", err)
	}
}

func TestPixelPageLayout(t *testing.T) {
	d, rec := newTestDev(128, 32)

	tests := []struct {
		x, y int
		idx  int
		mask byte
	}{
		{0, 0, 0, 0x01},
		{0, 7, 0, 0x80},
		{5, 8, 128 + 5, 0x01},
		{127, 31, 3*128 + 127, 0x80},
		{10, 19, 2*128 + 10, 0x08},
	}
	for _, tt := range tests {
		_ = d.Pixel(tt.x, tt.y, rgb565.White)
		if d.buffer[tt.idx]&tt.mask == 0 {
			t.Errorf("Pixel(%d, %d) did not set byte %d mask %#02x", tt.x, tt.y, tt.idx, tt.mask)
		}
		_ = d.Pixel(tt.x, tt.y, rgb565.Black)
		if d.buffer[tt.idx]&tt.mask != 0 {
			t.Errorf("Pixel(%d, %d) black did not clear bit", tt.x, tt.y)
		}
	}
	if len(rec.Ops) != 0 {
		t.Errorf("Pixel touched the bus: %v", rec.Ops)
	}
}

func TestPixelOutOfRange(t *testing.T) {
	d, _ := newTestDev(128, 32)
	for _, p := range []image.Point{{-1, 0}, {0, -1}, {128, 0}, {0, 32}} {
		_ = d.Pixel(p.X, p.Y, rgb565.White)
	}
	for i, b := range d.buffer {
		if b != 0 {
			t.Fatalf("byte %d = %#02x after out-of-range writes", i, b)
		}
	}
}

func TestFill(t *testing.T) {
	d, rec := newTestDev(128, 64)

	// Any non-zero color lights the pixel.
	_ = d.Fill(rgb565.New(0, 0, 8))
	for i, b := range d.buffer {
		if b != 0xFF {
			t.Fatalf("byte %d = %#02x, want 0xff", i, b)
		}
	}
	_ = d.Fill(rgb565.Black)
	for i, b := range d.buffer {
		if b != 0x00 {
			t.Fatalf("byte %d = %#02x, want 0x00", i, b)
		}
	}
	if len(rec.Ops) != 0 {
		t.Errorf("Fill touched the bus: %v", rec.Ops)
	}
}

func TestBlit(t *testing.T) {
	d, _ := newTestDev(16, 16)

	data := []uint16{
		1, 0,
		0, 1,
	}
	if err := d.Blit(15, 7, 2, 2, data); err != nil {
		t.Fatal(err)
	}
	// (15,7) on, (16,7) clipped, (15,8) off, (16,8) clipped.
	if d.buffer[15] != 0x80 {
		t.Errorf("page 0 col 15 = %#02x, want 0x80", d.buffer[15])
	}
	if d.buffer[16+15] != 0x00 {
		t.Errorf("page 1 col 15 = %#02x, want 0x00", d.buffer[16+15])
	}
	if err := d.Blit(0, 0, 2, 2, data[:3]); err == nil {
		t.Error("short data should fail")
	}
}

func TestPush(t *testing.T) {
	d, rec := newTestDev(128, 32)
	_ = d.Pixel(0, 0, rgb565.White)

	if err := d.Push(); err != nil {
		t.Fatal(err)
	}
	if got, want := rec.Commands(), []byte{0x21, 0x00, 0x7F, 0x22, 0x00, 0x03}; !bytes.Equal(got, want) {
		t.Errorf("commands = % x, want % x", got, want)
	}
	data := rec.Ops[len(rec.Ops)-2]
	if data.Kind != bustest.Data || len(data.Bytes) != 512 || data.Bytes[0] != 0x01 {
		t.Errorf("data op = %v", data.Kind)
	}
	if !rec.Balanced() {
		t.Error("bus left selected")
	}
}

func TestDraw(t *testing.T) {
	d, rec := newTestDev(8, 8)

	src := image.NewGray(image.Rect(0, 0, 8, 8))
	src.SetGray(2, 3, color.Gray{Y: 0xFF})
	src.SetGray(4, 4, color.Gray{Y: 0x10})

	if err := d.Draw(d.Bounds(), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if d.buffer[2] != 0x08 {
		t.Errorf("col 2 = %#02x, want 0x08", d.buffer[2])
	}
	if d.buffer[4] != 0x00 {
		t.Errorf("dark pixel lit: col 4 = %#02x", d.buffer[4])
	}
	if rec.Count(bustest.Data) != 1 {
		t.Error("Draw did not push")
	}
}

func TestSetContrastAndInvert(t *testing.T) {
	d, rec := newTestDev(128, 64)
	_ = d.SetContrast(0x7F)
	_ = d.Invert(true)
	_ = d.Invert(false)
	if got, want := rec.Commands(), []byte{0x81, 0x7F, 0xA7, 0xA6}; !bytes.Equal(got, want) {
		t.Errorf("commands = % x, want % x", got, want)
	}
}

func TestScrollHorizontal(t *testing.T) {
	d, rec := newTestDev(128, 32)

	if err := d.ScrollHorizontal(0, 3, Scroll5Frames, true); err != nil {
		t.Fatal(err)
	}
	if got, want := rec.Commands(), []byte{0x26, 0x00, 0x00, 0x00, 0x03, 0x00, 0xFF, 0x2F}; !bytes.Equal(got, want) {
		t.Errorf("commands = % x, want % x", got, want)
	}
	if err := d.ScrollHorizontal(0, 4, Scroll5Frames, false); err == nil {
		t.Error("page 4 on a 32-row panel should be rejected")
	}
	if err := d.ScrollHorizontal(2, 1, Scroll5Frames, false); err == nil {
		t.Error("reversed page range should be rejected")
	}

	rec.Reset()
	_ = d.StopScroll()
	if got := rec.Commands(); !bytes.Equal(got, []byte{0x2E}) {
		t.Errorf("StopScroll commands = % x", got)
	}
}

func TestDevHalt(t *testing.T) {
	d, rec := newTestDev(128, 64)

	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if got := rec.Commands(); !bytes.Equal(got, []byte{0xAE}) {
		t.Errorf("Halt commands = % x", got)
	}
	if err := d.Push(); err == nil {
		t.Error("Push should fail when halted")
	}
	if err := d.SetContrast(0); err == nil {
		t.Error("SetContrast should fail when halted")
	}
	if err := d.Invert(true); err == nil {
		t.Error("Invert should fail when halted")
	}
	if err := d.ScrollHorizontal(0, 0, Scroll2Frames, false); err == nil {
		t.Error("ScrollHorizontal should fail when halted")
	}
}

func TestDevString(t *testing.T) {
	d, _ := newTestDev(128, 32)
	if got := d.String(); got != "ssd1306.Dev{128x32}" {
		t.Errorf("String() = %q", got)
	}
	if got := d.Bounds(); got != image.Rect(0, 0, 128, 32) {
		t.Errorf("Bounds() = %v", got)
	}
}
