package bus

import (
	"fmt"

	"github.com/flavioheleno/pixelpanel"
	"periph.io/x/conn/v3/i2c"
)

// Control bytes prefixed to every I²C transaction.
const (
	ctrlCommand = 0x80 // Co=1, D/C#=0: one command byte follows
	ctrlData    = 0x40 // Co=0, D/C#=1: data bytes until stop
)

// I2C is a Bus over a two-wire bus using SSD1306-style control bytes.
//
// Each command byte travels in its own transaction; each data write is a
// single transaction, however long.
type I2C struct {
	d   i2c.Dev
	buf []byte
}

// NewI2C returns a transport for the device at addr on b.
func NewI2C(b i2c.Bus, addr uint16) *I2C {
	return &I2C{d: i2c.Dev{Bus: b, Addr: addr}}
}

// Select is a no-op; addressing selects the device.
func (t *I2C) Select() error { return nil }

// Deselect is a no-op.
func (t *I2C) Deselect() error { return nil }

// WriteCommand sends b in one transaction.
func (t *I2C) WriteCommand(b byte) error {
	return t.tx([]byte{ctrlCommand, b})
}

// WriteData sends p in one transaction.
func (t *I2C) WriteData(p []byte) error {
	t.buf = append(t.buf[:0], ctrlData)
	t.buf = append(t.buf, p...)
	return t.tx(t.buf)
}

// WriteData16 sends p big-endian in one transaction.
func (t *I2C) WriteData16(p []uint16) error {
	n := 1 + 2*len(p)
	if cap(t.buf) < n {
		t.buf = make([]byte, n)
	}
	t.buf = t.buf[:n]
	t.buf[0] = ctrlData
	putWords(t.buf[1:], p)
	return t.tx(t.buf)
}

func (t *I2C) tx(w []byte) error {
	return pixelpanel.Wrap(pixelpanel.IOError, "bus: i2c tx", t.d.Tx(w, nil))
}

func (t *I2C) String() string {
	return fmt.Sprintf("bus.I2C{%s}", &t.d)
}
