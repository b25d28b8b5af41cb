// Package errors reports every bad row, record or setting of an input at once, each tagged with where it was found
package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Located is a failure found at Location, like "Line 4" of a statement or the "card_ending" field of a record
type Located struct {
	Location string
	Err      error
}

func (l Located) Error() string {
	return l.Location + ": " + l.Err.Error()
}

// Cause returns the failure without its location
func (l Located) Cause() error {
	return l.Err
}

func (l Located) Unwrap() error {
	return l.Err
}

// Errors is a batch of failures from one input, reported one per line
type Errors []error

// At records err found at location. Failures already batched keep their own locations nested under location.
func (e *Errors) At(location string, err error) {
	if err == nil {
		return
	}
	if batch, ok := err.(Errors); ok {
		for _, err := range batch {
			*e = append(*e, Located{Location: location, Err: err})
		}
		return
	}
	*e = append(*e, Located{Location: location, Err: err})
}

// Atf is At with a formatted location
func (e *Errors) Atf(err error, format string, args ...interface{}) {
	if err != nil {
		e.At(fmt.Sprintf(format, args...), err)
	}
}

// Check records a failure described by format when failed is true. Returns failed.
func (e *Errors) Check(failed bool, format string, args ...interface{}) bool {
	if failed {
		*e = append(*e, errors.Errorf(format, args...))
	}
	return failed
}

// Add records err with no location of its own, merging another batch into this one. Returns true if err is nil.
func (e *Errors) Add(err error) bool {
	if batch, ok := err.(Errors); ok {
		*e = append(*e, batch...)
	} else if err != nil {
		*e = append(*e, err)
	}
	return err == nil
}

// Err returns nil for an empty batch, the failure itself for a batch of one, or else the whole batch
func (e Errors) Err() error {
	switch len(e) {
	case 0:
		return nil
	case 1:
		return e[0]
	default:
		return e
	}
}

// Unwrap exposes the batch to errors.Is and errors.As
func (e Errors) Unwrap() []error {
	return e
}

func (e Errors) Error() string {
	lines := make([]string, 0, len(e))
	for _, err := range e {
		lines = append(lines, err.Error())
	}
	return strings.Join(lines, "\n")
}
