// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdata

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrBlobTooLarge indicates a data blob does not fit the two byte
	// length prefix.
	ErrBlobTooLarge ErrorCode = iota

	// ErrNoNulldataOutput indicates a transaction has no nulldata output.
	ErrNoNulldataOutput

	// ErrMultipleNulldataOutputs indicates a transaction has more than one
	// nulldata output, so it is not clear which one carries data.
	ErrMultipleNulldataOutputs

	// ErrExistingNulldataOutput indicates an attempt to add a nulldata
	// output to a transaction that already has one.
	ErrExistingNulldataOutput

	// ErrMaxNulldataExceeded indicates a nulldata payload over the size
	// limit.
	ErrMaxNulldataExceeded

	// ErrNotNulldata indicates an output passed as nulldata is not one.
	ErrNotNulldata

	// ErrInvalidPayloadSize indicates a hash160 data payload that is not
	// exactly 20 bytes.
	ErrInvalidPayloadSize

	// ErrOutputIndex indicates an output index out of range.
	ErrOutputIndex

	// ErrNotHash160Data indicates an output whose script is not
	// pay-to-pubkey-hash shaped.
	ErrNotHash160Data

	// ErrTruncatedBlob indicates the length prefix promises more data than
	// the transaction carries.
	ErrTruncatedBlob

	// ErrNoBroadcastMessage indicates a blob that is not a broadcast
	// message envelope.
	ErrNoBroadcastMessage

	// ErrInvalidMessage indicates an envelope whose message body does not
	// decompress to valid UTF-8.
	ErrInvalidMessage

	// ErrMessageSignature indicates an envelope whose signature does not
	// match the embedded sender.
	ErrMessageSignature

	// lastErr is used for testing, making it possible to iterate over
	// the error codes in order to check that they all have proper
	// translations in errorCodeStrings.
	lastErr
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrBlobTooLarge:            "ErrBlobTooLarge",
	ErrNoNulldataOutput:        "ErrNoNulldataOutput",
	ErrMultipleNulldataOutputs: "ErrMultipleNulldataOutputs",
	ErrExistingNulldataOutput:  "ErrExistingNulldataOutput",
	ErrMaxNulldataExceeded:     "ErrMaxNulldataExceeded",
	ErrNotNulldata:             "ErrNotNulldata",
	ErrInvalidPayloadSize:      "ErrInvalidPayloadSize",
	ErrOutputIndex:             "ErrOutputIndex",
	ErrNotHash160Data:          "ErrNotHash160Data",
	ErrTruncatedBlob:           "ErrTruncatedBlob",
	ErrNoBroadcastMessage:      "ErrNoBroadcastMessage",
	ErrInvalidMessage:          "ErrInvalidMessage",
	ErrMessageSignature:        "ErrMessageSignature",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error is a typed error for all errors arising while encoding or decoding
// transaction data.
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

func newError(c ErrorCode, desc string, err error) Error {
	return Error{ErrorCode: c, Description: desc, Err: err}
}

// IsError returns whether err is an Error with a matching error code.
func IsError(err error, code ErrorCode) bool {
	var e Error
	return errors.As(err, &e) && e.ErrorCode == code
}
