// Package bus is the pixel transport used by the panel back-ends.
//
// A Bus frames bytes as either commands or data and streams them to the panel
// controller. All writes block until the transaction completes and assume the
// device has been selected, see Session.
package bus

import "encoding/binary"

// Bus is the transport capability consumed by the panel back-ends.
type Bus interface {
	// Select asserts the device for the duration of one logical operation.
	Select() error
	// Deselect releases the device.
	Deselect() error
	// WriteCommand sends one byte in command framing.
	WriteCommand(b byte) error
	// WriteData sends bytes in data framing.
	WriteData(p []byte) error
	// WriteData16 sends 16-bit words in data framing, most significant byte first.
	WriteData16(p []uint16) error
}

// Session selects b, runs fn and deselects b on every return path.
// The first error wins; a deselect failure is reported only when fn succeeded.
func Session(b Bus, fn func() error) (err error) {
	if err := b.Select(); err != nil {
		return err
	}
	defer func() {
		if derr := b.Deselect(); err == nil {
			err = derr
		}
	}()
	return fn()
}

// maxChunk bounds the scratch buffer used to frame data transfers.
const maxChunk = 4096

// putWords encodes words big-endian into dst and returns the number of words written.
func putWords(dst []byte, words []uint16) int {
	n := len(dst) / 2
	if n > len(words) {
		n = len(words)
	}
	for i, w := range words[:n] {
		binary.BigEndian.PutUint16(dst[2*i:], w)
	}
	return n
}
