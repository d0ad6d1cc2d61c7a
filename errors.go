package pixelpanel

import (
	"errors"
	"fmt"
)

// Kind classifies device and connectivity failures.
type Kind uint8

// Failure kinds.
const (
	Unknown Kind = iota
	HardwareFault
	IOError
	ConnectionFailed
	Timeout
)

func (k Kind) String() string {
	switch k {
	case HardwareFault:
		return "hardware fault"
	case IOError:
		return "i/o error"
	case ConnectionFailed:
		return "connection failed"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is returned by bring-up, bus and connectivity operations.
type Error struct {
	Kind Kind
	Op   string // e.g. "ili9341: init"
	Err  error
}

// Errorf builds an *Error of kind k for operation op.
func Errorf(k Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap returns nil if err is nil, err itself if it already is an *Error,
// and an *Error of kind k otherwise.
func Wrap(k Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: k, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether any error in err's chain is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
