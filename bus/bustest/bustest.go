// Package bustest is meant to be used to test drivers over a fake bus.
package bustest

import (
	"fmt"
	"sync"
)

// OpKind identifies a recorded bus call.
type OpKind int

// Recorded operations.
const (
	Select OpKind = iota
	Deselect
	Command
	Data
	Data16
)

func (k OpKind) String() string {
	switch k {
	case Select:
		return "select"
	case Deselect:
		return "deselect"
	case Command:
		return "cmd"
	case Data:
		return "data"
	case Data16:
		return "data16"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is one recorded call.
type Op struct {
	Kind  OpKind
	Bytes []byte   // Command byte or data bytes
	Words []uint16 // Data16 words
}

func (o Op) String() string {
	switch o.Kind {
	case Command, Data:
		return fmt.Sprintf("%s % x", o.Kind, o.Bytes)
	case Data16:
		return fmt.Sprintf("%s %04x", o.Kind, o.Words)
	default:
		return o.Kind.String()
	}
}

// Record implements bus.Bus and records every call.
//
// Set Err to make every write fail; FailAfter > 0 makes writes fail once that
// many writes have succeeded.
type Record struct {
	sync.Mutex
	Ops       []Op
	Err       error
	FailAfter int

	writes int
}

// Select implements bus.Bus.
func (r *Record) Select() error {
	r.Lock()
	defer r.Unlock()
	r.Ops = append(r.Ops, Op{Kind: Select})
	return nil
}

// Deselect implements bus.Bus.
func (r *Record) Deselect() error {
	r.Lock()
	defer r.Unlock()
	r.Ops = append(r.Ops, Op{Kind: Deselect})
	return nil
}

// WriteCommand implements bus.Bus.
func (r *Record) WriteCommand(b byte) error {
	r.Lock()
	defer r.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	r.Ops = append(r.Ops, Op{Kind: Command, Bytes: []byte{b}})
	return nil
}

// WriteData implements bus.Bus.
func (r *Record) WriteData(p []byte) error {
	r.Lock()
	defer r.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	r.Ops = append(r.Ops, Op{Kind: Data, Bytes: append([]byte(nil), p...)})
	return nil
}

// WriteData16 implements bus.Bus.
func (r *Record) WriteData16(p []uint16) error {
	r.Lock()
	defer r.Unlock()
	if err := r.fail(); err != nil {
		return err
	}
	r.Ops = append(r.Ops, Op{Kind: Data16, Words: append([]uint16(nil), p...)})
	return nil
}

// Reset forgets all recorded operations.
func (r *Record) Reset() {
	r.Lock()
	defer r.Unlock()
	r.Ops = nil
	r.writes = 0
}

// Commands returns the command bytes in call order.
func (r *Record) Commands() []byte {
	r.Lock()
	defer r.Unlock()
	var out []byte
	for _, o := range r.Ops {
		if o.Kind == Command {
			out = append(out, o.Bytes[0])
		}
	}
	return out
}

// Words returns all Data16 words concatenated.
func (r *Record) Words() []uint16 {
	r.Lock()
	defer r.Unlock()
	var out []uint16
	for _, o := range r.Ops {
		if o.Kind == Data16 {
			out = append(out, o.Words...)
		}
	}
	return out
}

// Count returns how many operations of kind k were recorded.
func (r *Record) Count(k OpKind) int {
	r.Lock()
	defer r.Unlock()
	n := 0
	for _, o := range r.Ops {
		if o.Kind == k {
			n++
		}
	}
	return n
}

// Balanced reports whether every Select is followed by a Deselect before the next Select.
func (r *Record) Balanced() bool {
	r.Lock()
	defer r.Unlock()
	depth := 0
	for _, o := range r.Ops {
		switch o.Kind {
		case Select:
			if depth != 0 {
				return false
			}
			depth++
		case Deselect:
			if depth != 1 {
				return false
			}
			depth--
		}
	}
	return depth == 0
}

func (r *Record) fail() error {
	if r.Err != nil {
		if r.FailAfter <= 0 || r.writes >= r.FailAfter {
			return r.Err
		}
	}
	r.writes++
	return nil
}
