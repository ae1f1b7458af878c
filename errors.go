package stusb4500

import (
	"errors"
	"fmt"

	"github.com/oxplot/go-stusb4500/pdo"
)

var (
	// ErrInvalidPDO is returned when a PDO other than a Fixed supply PDO is
	// written or read back.
	ErrInvalidPDO = pdo.ErrInvalid

	// ErrOutOfRange is returned when a PDO count, channel, address or field
	// value is outside of what the device accepts.
	ErrOutOfRange = pdo.ErrOutOfRange

	// ErrPollTimeout is returned when an NVM command is still busy after the
	// number of polls set by WithMaxPolls.
	ErrPollTimeout = errors.New("stusb4500: nvm command did not complete")
)

// TransportError wraps an error returned by the I²C bus.
type TransportError struct {
	Op       string // "select", "read" or "write"
	Register Register
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("stusb4500: %s %s: %v", e.Op, e.Register, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PollTimeoutError is returned when an NVM command does not finish within
// the configured number of polls.
type PollTimeoutError struct {
	State NVMState
	Polls int
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("stusb4500: nvm command did not complete after %d polls while %s", e.Polls, e.State)
}

// Is reports ErrPollTimeout as a match.
func (e *PollTimeoutError) Is(target error) bool {
	return target == ErrPollTimeout
}

// NVMSizeError is returned when an NVM image does not have exactly NVMSize
// bytes.
type NVMSizeError struct {
	Size int
}

func (e *NVMSizeError) Error() string {
	return fmt.Sprintf("stusb4500: nvm image has %d bytes instead of %d", e.Size, NVMSize)
}
