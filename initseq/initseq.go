// Package initseq decodes and replays controller initialization tables.
//
// A table is a compact byte sequence:
//
//	[count] ( [opcode] [desc] [arg]*desc&0x7F ) × count
//
// Bit 7 of desc requests a settle delay after the command; bits 0-6 give the
// number of argument bytes (0-127). Tables are decoded once into a list of
// Command records and the records are replayed by Run; the interpreter never
// looks at table bytes.
package initseq

import (
	"errors"
	"fmt"
	"time"
)

const (
	delayFlag = 0x80
	argsMask  = 0x7F

	// MaxArgs is the largest argument count a descriptor can express.
	MaxArgs = argsMask
	// MaxCommands is the largest command count a table can express.
	MaxCommands = 0xFF
)

var (
	// ErrTruncated is returned when a table ends before its declared commands do.
	ErrTruncated = errors.New("initseq: truncated table")
	// ErrTrailing is returned when bytes follow the last declared command.
	ErrTrailing = errors.New("initseq: trailing bytes after last command")
)

// Command is one decoded table entry.
type Command struct {
	Op    byte
	Args  []byte
	Delay bool // Settle after sending
}

func (c Command) String() string {
	s := fmt.Sprintf("%#02x % x", c.Op, c.Args)
	if c.Delay {
		s += " +delay"
	}
	return s
}

// Decode parses a table into commands.
//
// The table must hold exactly the number of commands its count byte declares.
// Argument slices alias table, which is expected to be immutable.
func Decode(table []byte) ([]Command, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: missing count byte", ErrTruncated)
	}
	n := int(table[0])
	cmds := make([]Command, 0, n)
	i := 1
	for k := 0; k < n; k++ {
		if i+2 > len(table) {
			return nil, fmt.Errorf("%w: command %d at offset %d", ErrTruncated, k, i)
		}
		op, desc := table[i], table[i+1]
		i += 2
		argc := int(desc & argsMask)
		if i+argc > len(table) {
			return nil, fmt.Errorf("%w: command %d (%#02x) wants %d args at offset %d", ErrTruncated, k, op, argc, i)
		}
		cmds = append(cmds, Command{
			Op:    op,
			Args:  table[i : i+argc : i+argc],
			Delay: desc&delayFlag != 0,
		})
		i += argc
	}
	if i != len(table) {
		return nil, fmt.Errorf("%w: %d extra at offset %d", ErrTrailing, len(table)-i, i)
	}
	return cmds, nil
}

// Encode serializes commands into the table format.
func Encode(cmds []Command) ([]byte, error) {
	if len(cmds) > MaxCommands {
		return nil, fmt.Errorf("initseq: %d commands exceed the maximum of %d", len(cmds), MaxCommands)
	}
	size := 1
	for _, c := range cmds {
		size += 2 + len(c.Args)
	}
	out := make([]byte, 0, size)
	out = append(out, byte(len(cmds)))
	for _, c := range cmds {
		if len(c.Args) > MaxArgs {
			return nil, fmt.Errorf("initseq: command %#02x has %d args, maximum is %d", c.Op, len(c.Args), MaxArgs)
		}
		desc := byte(len(c.Args))
		if c.Delay {
			desc |= delayFlag
		}
		out = append(out, c.Op, desc)
		out = append(out, c.Args...)
	}
	return out, nil
}

// Sender issues one command with its arguments in the controller's framing.
type Sender interface {
	SendCommand(op byte, args []byte) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(op byte, args []byte) error

// SendCommand calls f(op, args).
func (f SenderFunc) SendCommand(op byte, args []byte) error {
	return f(op, args)
}

// sleep is replaced in tests.
var sleep = time.Sleep

// Run sends cmds in order, exactly once, blocking for settle after each
// command flagged with Delay. The first send error stops the sequence.
func Run(s Sender, cmds []Command, settle time.Duration) error {
	for _, c := range cmds {
		if err := s.SendCommand(c.Op, c.Args); err != nil {
			return fmt.Errorf("initseq: command %#02x: %w", c.Op, err)
		}
		if c.Delay {
			sleep(settle)
		}
	}
	return nil
}
