package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTicker   = errors.New("invalid ticker")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidPrice    = errors.New("invalid price")

	// ErrNotFound is returned when a ticker is absent from a store, or when a
	// provider does not know a symbol. It is recoverable.
	ErrNotFound = errors.New("not found")

	// ErrTransport marks provider failures below the application level:
	// connection errors, timeouts and 5xx responses.
	ErrTransport = errors.New("transport error")
)

// ValidationError rejects input before any mutation happens.
type ValidationError struct {
	Ticker Ticker
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Ticker != "" {
		return fmt.Sprintf("%s: invalid %s %q: %s", e.Ticker, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// FetchError is the per-ticker failure recorded in a batch result.
type FetchError struct {
	Ticker Ticker
	Op     string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Op, e.Ticker, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistenceError reports that a store could not be read or written. When it
// is returned from a mutation, the mutation was rolled back in memory.
type PersistenceError struct {
	Path string
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
