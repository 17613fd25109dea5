package sim

import "errors"

// Error taxonomy shared by every package of the core. Callers wrap these with
// fmt.Errorf("%w: ...") and test with errors.Is.
var (
	// ErrConfig reports an invalid or missing configuration value.
	ErrConfig = errors.New("configuration error")
	// ErrTimeParse reports a malformed time or duration string.
	ErrTimeParse = errors.New("time parse error")
	// ErrInit reports a failure while bootstrapping a block.
	ErrInit = errors.New("block initialization error")
	// ErrClockExhausted reports an attempt to advance the clock past its stop time.
	ErrClockExhausted = errors.New("clock exhausted")
	// ErrComm reports a failed collective operation.
	ErrComm = errors.New("communication error")
	// ErrIO reports a failure in the stream collaborator.
	ErrIO = errors.New("stream error")
)

// Code is the run-level error signal. Codes from every block and every phase
// are OR-combined; any non-zero value is fatal.
type Code uint32

const (
	CodeOK             Code = 0
	CodeConfig         Code = 1 << 0
	CodeTimeParse      Code = 1 << 1
	CodeInit           Code = 1 << 2
	CodeClockExhausted Code = 1 << 3
	CodeComm           Code = 1 << 4
	CodeIO             Code = 1 << 5
	CodeOther          Code = 1 << 7
)

var codeTable = []struct {
	err  error
	code Code
}{
	{ErrConfig, CodeConfig},
	{ErrTimeParse, CodeTimeParse},
	{ErrInit, CodeInit},
	{ErrClockExhausted, CodeClockExhausted},
	{ErrComm, CodeComm},
	{ErrIO, CodeIO},
}

// CodeOf maps an error onto its Code bits. A nil error maps to CodeOK and an
// error outside the taxonomy maps to CodeOther.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var c Code
	for _, entry := range codeTable {
		if errors.Is(err, entry.err) {
			c |= entry.code
		}
	}
	if c == CodeOK {
		return CodeOther
	}
	return c
}

// Failed reports whether any error bit is set.
func (c Code) Failed() bool { return c != CodeOK }
