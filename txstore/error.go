// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txstore

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrInvalidInput indicates a malformed or out of range argument, such
	// as a key or address for another network or bad hex.
	ErrInvalidInput ErrorCode = iota

	// ErrSignedTx indicates an attempt to change the inputs or outputs of
	// a transaction that already carries signatures.
	ErrSignedTx

	// ErrUnsignedTx indicates an attempt to publish a transaction with an
	// unsigned input.
	ErrUnsignedTx

	// ErrNoChainService indicates an operation that needs the chain
	// service on a store created without one.
	ErrNoChainService

	// ErrMissingPrevOut indicates an input spending an output its
	// previous transaction does not have.
	ErrMissingPrevOut

	// ErrMissingKey indicates an input whose previous output pays to an
	// address none of the given keys controls.
	ErrMissingKey

	// lastErr is used for testing, making it possible to iterate over
	// the error codes in order to check that they all have proper
	// translations in errorCodeStrings.
	lastErr
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrInvalidInput:   "ErrInvalidInput",
	ErrSignedTx:       "ErrSignedTx",
	ErrUnsignedTx:     "ErrUnsignedTx",
	ErrNoChainService: "ErrNoChainService",
	ErrMissingPrevOut: "ErrMissingPrevOut",
	ErrMissingKey:     "ErrMissingKey",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error provides a single type for errors that can happen during store
// operation.
type Error struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error, optional
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying error, if any.
func (e Error) Unwrap() error {
	return e.Err
}

func storeError(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// IsError returns whether err is an Error with a matching error code.
func IsError(err error, code ErrorCode) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode == code
}
