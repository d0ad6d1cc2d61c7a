package bus

import (
	"errors"
	"fmt"

	"github.com/flavioheleno/pixelpanel"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// SPIOpts configures an SPI transport.
type SPIOpts struct {
	Freq physic.Frequency // Clock frequency (default: 10MHz)
	Mode spi.Mode         // Clock polarity and phase (default: Mode0)

	// Optional chip select pin, active low. Leave nil when the SPI port
	// drives chip select in hardware.
	CS gpio.PinOut
}

// SPI is a Bus over a 4-wire SPI port with a Data/Command pin.
//
// The D/C pin is driven low for command bytes and high for data bytes.
// Transfers larger than the port's maximum transaction size are split.
type SPI struct {
	c     conn.Conn
	dc    gpio.PinOut
	cs    gpio.PinOut
	maxTx int
	buf   []byte
}

// NewSPI connects to p in 8-bit mode and returns a transport using dc for framing.
//
// opts can be nil to use defaults (10MHz, Mode0, hardware chip select).
func NewSPI(p spi.Port, dc gpio.PinOut, opts *SPIOpts) (*SPI, error) {
	if dc == nil {
		return nil, errors.New("bus: dc pin is required")
	}
	if opts == nil {
		opts = &SPIOpts{}
	}
	f := opts.Freq
	if f == 0 {
		f = 10 * physic.MegaHertz
	}
	c, err := p.Connect(f, opts.Mode, 8)
	if err != nil {
		return nil, pixelpanel.Wrap(pixelpanel.IOError, "bus: spi connect", err)
	}
	return newSPI(c, dc, opts.CS), nil
}

func newSPI(c conn.Conn, dc, cs gpio.PinOut) *SPI {
	maxTx := maxChunk
	if l, ok := c.(conn.Limits); ok {
		if m := l.MaxTxSize(); m > 0 && m < maxTx {
			maxTx = m
		}
	}
	// Keep 16-bit words whole within a transaction.
	maxTx &^= 1
	if maxTx < 2 {
		maxTx = 2
	}
	return &SPI{
		c:     c,
		dc:    dc,
		cs:    cs,
		maxTx: maxTx,
		buf:   make([]byte, maxTx),
	}
}

// Select drives chip select low, if a pin was provided.
func (s *SPI) Select() error {
	if s.cs == nil {
		return nil
	}
	return pixelpanel.Wrap(pixelpanel.IOError, "bus: select", s.cs.Out(gpio.Low))
}

// Deselect drives chip select high, if a pin was provided.
func (s *SPI) Deselect() error {
	if s.cs == nil {
		return nil
	}
	return pixelpanel.Wrap(pixelpanel.IOError, "bus: deselect", s.cs.Out(gpio.High))
}

// WriteCommand sends b with D/C low.
func (s *SPI) WriteCommand(b byte) error {
	if err := s.dc.Out(gpio.Low); err != nil {
		return pixelpanel.Wrap(pixelpanel.IOError, "bus: dc", err)
	}
	s.buf[0] = b
	return s.tx(s.buf[:1])
}

// WriteData sends p with D/C high.
func (s *SPI) WriteData(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if err := s.dc.Out(gpio.High); err != nil {
		return pixelpanel.Wrap(pixelpanel.IOError, "bus: dc", err)
	}
	for len(p) > 0 {
		n := len(p)
		if n > s.maxTx {
			n = s.maxTx
		}
		if err := s.tx(p[:n]); err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// WriteData16 sends p with D/C high, each word big-endian.
func (s *SPI) WriteData16(p []uint16) error {
	if len(p) == 0 {
		return nil
	}
	if err := s.dc.Out(gpio.High); err != nil {
		return pixelpanel.Wrap(pixelpanel.IOError, "bus: dc", err)
	}
	for len(p) > 0 {
		n := putWords(s.buf, p)
		if err := s.tx(s.buf[:2*n]); err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

func (s *SPI) tx(w []byte) error {
	return pixelpanel.Wrap(pixelpanel.IOError, "bus: spi tx", s.c.Tx(w, nil))
}

func (s *SPI) String() string {
	return fmt.Sprintf("bus.SPI{%s}", s.c)
}
