// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestErrorCodeStringer tests that all error codes have a text
// representation and that the text representation is still correct.
func TestErrorCodeStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrInvalidInput, "ErrInvalidInput"},
		{ErrSignedTx, "ErrSignedTx"},
		{ErrUnsignedTx, "ErrUnsignedTx"},
		{ErrNoChainService, "ErrNoChainService"},
		{ErrMissingPrevOut, "ErrMissingPrevOut"},
		{ErrMissingKey, "ErrMissingKey"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	require.Equal(t, int(lastErr), len(tests)-1,
		"wrong number of errorCodeStrings")

	for i, test := range tests {
		require.Equal(t, test.want, test.in.String(), "String #%d", i)
	}
}

// TestError tests the error output and unwrapping of the Error type.
func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("bad checksum")
	err := storeError(ErrInvalidInput, "invalid key", cause)
	require.Equal(t, "invalid key: bad checksum", err.Error())
	require.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("sign: %w", err)
	require.True(t, IsError(wrapped, ErrInvalidInput))
	require.False(t, IsError(wrapped, ErrSignedTx))
	require.False(t, IsError(cause, ErrInvalidInput))

	require.Equal(t, "no inputs",
		storeError(ErrUnsignedTx, "no inputs", nil).Error())
}
