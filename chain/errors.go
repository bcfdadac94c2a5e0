// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransactionNotFound is returned when the back end does not know
	// the requested transaction.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrNoBackEnds is returned when a failover service is created without
	// any back ends.
	ErrNoBackEnds = errors.New("no chain back ends configured")
)

// RejectReason classifies why the network refused a broadcast transaction.
type RejectReason uint32

const (
	// RejectUnknown is used when the rejection message matches none of
	// the known reasons.
	RejectUnknown RejectReason = iota

	// RejectMissingInputs means an input is unknown or already spent.
	RejectMissingInputs

	// RejectAlreadyConfirmed means the transaction is already in a block.
	RejectAlreadyConfirmed

	// RejectAlreadyInMempool means the transaction is already pending.
	RejectAlreadyInMempool

	// RejectInsufficientFee means the fee is below the relay minimum.
	RejectInsufficientFee

	// RejectDust means an output is below the dust threshold.
	RejectDust

	// RejectNonStandard means the transaction violates policy rules.
	RejectNonStandard

	// RejectInvalid means the transaction breaks consensus rules, for
	// example a bad signature.
	RejectInvalid

	// errSentinel is used to indicate the end of the reasons.
	errSentinel
)

// rejectReasonPatterns maps each reason to the message fragments bitcoind,
// btcd and esplora use for it. Matching is done with matchErrStr.
var rejectReasonPatterns = []struct {
	reason   RejectReason
	patterns []string
}{
	{RejectAlreadyConfirmed, []string{
		"transaction already in block chain",
		"txn-already-known",
		"already exists",
	}},
	{RejectAlreadyInMempool, []string{
		"txn-already-in-mempool",
		"already in mempool",
		"already have transaction",
	}},
	{RejectMissingInputs, []string{
		"missing inputs",
		"bad-txns-inputs-missingorspent",
		"orphan transaction",
		"already spent",
	}},
	{RejectInsufficientFee, []string{
		"insufficient fee",
		"min relay fee not met",
		"mempool min fee not met",
		"insufficient priority",
	}},
	{RejectDust, []string{
		"dust",
	}},
	{RejectNonStandard, []string{
		"non-standard",
		"nonstandard",
		"scriptpubkey",
		"multi-op-return",
	}},
	{RejectInvalid, []string{
		"mandatory-script-verify-flag-failed",
		"signature",
		"bad-txns",
	}},
}

// String returns a human readable name for the reason.
func (r RejectReason) String() string {
	switch r {
	case RejectUnknown:
		return "unknown"
	case RejectMissingInputs:
		return "missing inputs"
	case RejectAlreadyConfirmed:
		return "already confirmed"
	case RejectAlreadyInMempool:
		return "already in mempool"
	case RejectInsufficientFee:
		return "insufficient fee"
	case RejectDust:
		return "dust output"
	case RejectNonStandard:
		return "non-standard"
	case RejectInvalid:
		return "invalid"
	}

	return "unknown error"
}

// BroadcastRejectedError is returned by Broadcast when the back end was
// reachable but refused the transaction.
type BroadcastRejectedError struct {
	Reason RejectReason
	Err    error
}

// Error implements the error interface.
func (e *BroadcastRejectedError) Error() string {
	return fmt.Sprintf("transaction rejected (%v): %v", e.Reason, e.Err)
}

// Unwrap returns the back end error.
func (e *BroadcastRejectedError) Unwrap() error {
	return e.Err
}

// IsBroadcastRejected returns the rejection wrapped in err, if any.
func IsBroadcastRejected(err error) (*BroadcastRejectedError, bool) {
	var rejected *BroadcastRejectedError
	if errors.As(err, &rejected) {
		return rejected, true
	}
	return nil, false
}

// rejectReason classifies a rejection message.
func rejectReason(err error) RejectReason {
	for _, entry := range rejectReasonPatterns {
		for _, pattern := range entry.patterns {
			if matchErrStr(err, pattern) {
				return entry.reason
			}
		}
	}
	return RejectUnknown
}

// newBroadcastRejectedError wraps a rejection message from a back end.
func newBroadcastRejectedError(err error) *BroadcastRejectedError {
	return &BroadcastRejectedError{
		Reason: rejectReason(err),
		Err:    err,
	}
}

// matchErrStr takes an error returned from a back end and matches it against
// the specified string. If the expected string pattern is found in the error
// passed, return true. Both the error strings are normalized before matching.
func matchErrStr(err error, s string) bool {
	// Replace all dashes found in the error string with spaces.
	strippedErrStr := strings.ReplaceAll(err.Error(), "-", " ")

	// Replace all dashes found in the error string with spaces.
	strippedMatchStr := strings.ReplaceAll(s, "-", " ")

	// Match against the lowercase.
	return strings.Contains(
		strings.ToLower(strippedErrStr),
		strings.ToLower(strippedMatchStr),
	)
}
