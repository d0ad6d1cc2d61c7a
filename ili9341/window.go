package ili9341

import "encoding/binary"

// packRange packs an inclusive address range as the controller expects it:
// start in the high half, end in the low half, big-endian on the wire.
func packRange(start, end int) [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(uint16(start))<<16|uint32(uint16(end)))
	return b
}

// setWindow selects the w×h rectangle at (x, y) as the target of the next
// pixel stream and opens RAM write. Exactly w*h words must follow.
// The caller holds the bus session.
func (d *Dev) setWindow(x, y, w, h int) error {
	cols := packRange(x, x+w-1)
	rows := packRange(y, y+h-1)
	if err := d.command(CASET, cols[:]); err != nil {
		return err
	}
	if err := d.command(PASET, rows[:]); err != nil {
		return err
	}
	return d.command(RAMWR, nil)
}
