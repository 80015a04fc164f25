package options

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOptions indicates the store holds no settings.
	ErrNoOptions = errors.New("no options stored")

	// ErrInvalidKey indicates a storage key that does not follow the key scheme.
	ErrInvalidKey = errors.New("invalid options key")

	// ErrRetryExhausted is returned when every load attempt failed.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")
)

// StoreError wraps a failure of a store operation.
type StoreError struct {
	Store string
	Op    string
	Err   error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("options store %s: %s: %v", e.Store, e.Op, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(store, op string, err error) error {
	StoreErrors.WithLabelValues(store, op).Inc()
	return &StoreError{Store: store, Op: op, Err: err}
}
