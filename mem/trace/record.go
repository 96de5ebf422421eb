// Package trace replays memory access traces against a cache engine.
package trace

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/cachesim/mem/addressing"
)

var (
	// ErrUnrecognizedOperation is returned for an operation other than l/s.
	ErrUnrecognizedOperation = errors.New("unrecognized operation")

	// ErrMalformedRecord is returned for a record without an address.
	ErrMalformedRecord = errors.New("malformed record")
)

// Operation is the kind of memory access in a record. Loads and stores are
// simulated the same way.
type Operation int

// The operations a trace may contain.
const (
	Load Operation = iota
	Store
)

func (o Operation) String() string {
	if o == Store {
		return "s"
	}

	return "l"
}

// ParseOperation accepts "l" and "s" in either case.
func ParseOperation(token string) (Operation, error) {
	switch token {
	case "l", "L":
		return Load, nil
	case "s", "S":
		return Store, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnrecognizedOperation, token)
	}
}

// RawRecord is one line of trace text.
type RawRecord struct {
	LineNumber int
	Text       string
}

// A Record is a validated trace entry.
type Record struct {
	Op      Operation
	Address addressing.Address
}

// ParseRecord validates "<op> <address>". Fields after the address, such as
// an access size, are ignored.
func ParseRecord(raw RawRecord) (Record, error) {
	fields := strings.Fields(raw.Text)
	if len(fields) == 0 {
		return Record{}, fmt.Errorf("%w: empty record", ErrMalformedRecord)
	}

	op, err := ParseOperation(fields[0])
	if err != nil {
		return Record{}, err
	}

	if len(fields) < 2 {
		return Record{}, fmt.Errorf("%w: missing address", ErrMalformedRecord)
	}

	addr, err := addressing.ParseAddress(fields[1])
	if err != nil {
		return Record{}, err
	}

	return Record{Op: op, Address: addr}, nil
}

// A RecordError tells which record stopped a run.
type RecordError struct {
	LineNumber int
	Text       string
	Err        error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("trace line %d (%q): %v", e.LineNumber, e.Text, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
