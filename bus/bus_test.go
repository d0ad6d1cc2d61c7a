package bus

import (
	"bytes"
	"errors"
	"testing"

	"github.com/flavioheleno/pixelpanel"
	"github.com/flavioheleno/pixelpanel/bus/bustest"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

type transfer struct {
	dc gpio.Level
	w  []byte
}

// recordConn is an spi.Conn capturing each transaction with the D/C level seen at that time.
type recordConn struct {
	dc  *gpiotest.Pin
	max int
	err error
	txs []transfer
}

func (r *recordConn) String() string      { return "recordConn" }
func (r *recordConn) Duplex() conn.Duplex { return conn.Half }
func (r *recordConn) MaxTxSize() int      { return r.max }
func (r *recordConn) TxPackets(p []spi.Packet) error {
	return errors.New("recordConn: packets not supported")
}

func (r *recordConn) Tx(w, read []byte) error {
	if r.err != nil {
		return r.err
	}
	r.txs = append(r.txs, transfer{dc: r.dc.Read(), w: append([]byte(nil), w...)})
	return nil
}

type recordPort struct {
	c    *recordConn
	f    physic.Frequency
	mode spi.Mode
	bits int
}

func (p *recordPort) String() string                      { return "recordPort" }
func (p *recordPort) LimitSpeed(f physic.Frequency) error { return nil }
func (p *recordPort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	p.f, p.mode, p.bits = f, mode, bits
	return p.c, nil
}

func TestNewSPIDefaults(t *testing.T) {
	dc := &gpiotest.Pin{N: "DC"}
	port := &recordPort{c: &recordConn{dc: dc}}

	s, err := NewSPI(port, dc, nil)
	if err != nil {
		t.Fatalf("NewSPI() error = %v", err)
	}
	if port.f != 10*physic.MegaHertz || port.mode != spi.Mode0 || port.bits != 8 {
		t.Errorf("Connect(%s, %v, %d), want 10MHz, Mode0, 8", port.f, port.mode, port.bits)
	}
	if s.maxTx != maxChunk {
		t.Errorf("maxTx = %d, want %d when the port reports no limit", s.maxTx, maxChunk)
	}

	if _, err := NewSPI(port, nil, nil); err == nil {
		t.Error("NewSPI without dc pin should fail")
	}
}

func TestSPIFraming(t *testing.T) {
	dc := &gpiotest.Pin{N: "DC"}
	rc := &recordConn{dc: dc}
	s := newSPI(rc, dc, nil)

	if err := s.WriteCommand(0x2A); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteData([]byte{0x00, 0x0A}); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteData16([]uint16{0xF800, 0x07E0}); err != nil {
		t.Fatal(err)
	}

	want := []transfer{
		{gpio.Low, []byte{0x2A}},
		{gpio.High, []byte{0x00, 0x0A}},
		{gpio.High, []byte{0xF8, 0x00, 0x07, 0xE0}},
	}
	if len(rc.txs) != len(want) {
		t.Fatalf("got %d transfers, want %d", len(rc.txs), len(want))
	}
	for i := range want {
		if rc.txs[i].dc != want[i].dc || !bytes.Equal(rc.txs[i].w, want[i].w) {
			t.Errorf("transfer %d = {%v % x}, want {%v % x}", i, rc.txs[i].dc, rc.txs[i].w, want[i].dc, want[i].w)
		}
	}
}

func TestSPIChunking(t *testing.T) {
	dc := &gpiotest.Pin{N: "DC"}
	rc := &recordConn{dc: dc, max: 7}
	s := newSPI(rc, dc, nil)

	if s.maxTx != 6 {
		t.Fatalf("maxTx = %d, want 6 (rounded down to whole words)", s.maxTx)
	}

	words := []uint16{1, 2, 3, 4, 5, 6, 7}
	if err := s.WriteData16(words); err != nil {
		t.Fatal(err)
	}
	if len(rc.txs) != 3 {
		t.Fatalf("got %d transfers, want 3", len(rc.txs))
	}
	var all []byte
	for _, tx := range rc.txs {
		if len(tx.w) > 6 {
			t.Errorf("transfer of %d bytes exceeds limit", len(tx.w))
		}
		all = append(all, tx.w...)
	}
	want := []byte{0, 1, 0, 2, 0, 3, 0, 4, 0, 5, 0, 6, 0, 7}
	if !bytes.Equal(all, want) {
		t.Errorf("stream = % x, want % x", all, want)
	}

	rc.txs = nil
	if err := s.WriteData(make([]byte, 13)); err != nil {
		t.Fatal(err)
	}
	if len(rc.txs) != 3 {
		t.Errorf("WriteData(13 bytes) made %d transfers, want 3", len(rc.txs))
	}
}

func TestSPIChipSelect(t *testing.T) {
	dc := &gpiotest.Pin{N: "DC"}
	cs := &gpiotest.Pin{N: "CS", L: gpio.High}
	s := newSPI(&recordConn{dc: dc}, dc, cs)

	if err := s.Select(); err != nil {
		t.Fatal(err)
	}
	if cs.Read() != gpio.Low {
		t.Error("Select() did not drive CS low")
	}
	if err := s.Deselect(); err != nil {
		t.Fatal(err)
	}
	if cs.Read() != gpio.High {
		t.Error("Deselect() did not drive CS high")
	}
}

func TestSPIErrorKind(t *testing.T) {
	dc := &gpiotest.Pin{N: "DC"}
	s := newSPI(&recordConn{dc: dc, err: errors.New("bus gone")}, dc, nil)

	err := s.WriteCommand(0x00)
	if !pixelpanel.IsKind(err, pixelpanel.IOError) {
		t.Errorf("WriteCommand error = %v, want IOError kind", err)
	}
}

func TestI2CFraming(t *testing.T) {
	rec := &i2ctest.Record{}
	b := NewI2C(rec, 0x3C)

	if err := b.WriteCommand(0xAE); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteData([]byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteData16([]uint16{0xABCD}); err != nil {
		t.Fatal(err)
	}

	want := [][]byte{
		{0x80, 0xAE},
		{0x40, 1, 2, 3},
		{0x40, 0xAB, 0xCD},
	}
	if len(rec.Ops) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(rec.Ops), len(want))
	}
	for i, op := range rec.Ops {
		if op.Addr != 0x3C {
			t.Errorf("op %d addr = %#x, want 0x3c", i, op.Addr)
		}
		if !bytes.Equal(op.W, want[i]) {
			t.Errorf("op %d = % x, want % x", i, op.W, want[i])
		}
	}
}

func TestSessionReleasesOnError(t *testing.T) {
	rec := &bustest.Record{}
	boom := errors.New("boom")

	err := Session(rec, func() error {
		if err := rec.WriteCommand(0x2C); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Session() = %v, want %v", err, boom)
	}
	if !rec.Balanced() {
		t.Errorf("bus left selected: %v", rec.Ops)
	}
	if rec.Ops[0].Kind != bustest.Select || rec.Ops[len(rec.Ops)-1].Kind != bustest.Deselect {
		t.Errorf("ops = %v, want select ... deselect", rec.Ops)
	}
}

func TestSessionPanicStillDeselects(t *testing.T) {
	rec := &bustest.Record{}
	func() {
		defer func() { _ = recover() }()
		_ = Session(rec, func() error { panic("driver bug") })
	}()
	if !rec.Balanced() {
		t.Errorf("bus left selected after panic: %v", rec.Ops)
	}
}
