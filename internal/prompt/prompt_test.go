// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prompt

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecret(t *testing.T) {
	t.Parallel()

	reader := bufio.NewReader(strings.NewReader("\n  \nkey one\nkey two"))
	read := func() ([]byte, error) {
		return readLine(reader)
	}

	var out bytes.Buffer
	got, err := secret(&out, "Key", read)
	require.NoError(t, err)
	require.Equal(t, "key one", string(got))
	require.Equal(t, "Key: Key: Key: ", out.String())

	got, err = secret(&out, "Key", read)
	require.NoError(t, err)
	require.Equal(t, "key two", string(got))

	_, err = secret(&out, "Key", read)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
