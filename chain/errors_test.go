// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMatchErrStr checks that `matchErrStr` can correctly replace the dashes
// with spaces and turn title cases into lowercases for a given error and match
// it against the specified string pattern.
func TestMatchErrStr(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		matchStr string
		matched  bool
	}{
		{
			name:     "error without dashes",
			err:      errors.New("missing input"),
			matchStr: "missing input",
			matched:  true,
		},
		{
			name:     "error with dashes",
			err:      errors.New("missing-input"),
			matchStr: "missing input",
			matched:  true,
		},
		{
			name:     "match str with dashes",
			err:      errors.New("missing-input"),
			matchStr: "missing-input",
			matched:  true,
		},
		{
			name:     "error with title case and dash",
			err:      errors.New("Missing-Input"),
			matchStr: "missing input",
			matched:  true,
		},
		{
			name:     "match str with title case and dash",
			err:      errors.New("missing-input"),
			matchStr: "Missing-Input",
			matched:  true,
		},
		{
			name:     "unmatched error",
			err:      errors.New("missing input"),
			matchStr: "missingorspent",
			matched:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			matched := matchErrStr(tc.err, tc.matchStr)
			require.Equal(t, tc.matched, matched)
		})
	}
}

// TestRejectReasonStringer checks that every reason has a name.
func TestRejectReasonStringer(t *testing.T) {
	t.Parallel()

	rt := require.New(t)

	for i := uint32(0); i < uint32(errSentinel); i++ {
		reason := RejectReason(i)
		rt.NotEqualf(reason.String(), "unknown error", "reason %d is "+
			"not defined, make sure to update it inside the String "+
			"method", i)
	}
}

// TestRejectReason checks the classification of back end rejection messages.
func TestRejectReason(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		msg    string
		reason RejectReason
	}{
		{"-27: Transaction already in block chain", RejectAlreadyConfirmed},
		{"txn-already-in-mempool", RejectAlreadyInMempool},
		{"bad-txns-inputs-missingorspent", RejectMissingInputs},
		{"-25: Missing inputs", RejectMissingInputs},
		{"min relay fee not met, 100 < 141", RejectInsufficientFee},
		{"dust", RejectDust},
		{"scriptpubkey", RejectNonStandard},
		{"non-mandatory-script-verify-flag (Signature must be zero)",
			RejectInvalid},
		{"something else entirely", RejectUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.msg, func(t *testing.T) {
			err := newBroadcastRejectedError(errors.New(tc.msg))
			require.Equal(t, tc.reason, err.Reason)
			require.Contains(t, err.Error(), tc.msg)

			wrapped := fmt.Errorf("broadcast: %w", err)
			rejected, ok := IsBroadcastRejected(wrapped)
			require.True(t, ok)
			require.Same(t, err, rejected)
		})
	}

	_, ok := IsBroadcastRejected(ErrTransactionNotFound)
	require.False(t, ok)
}
