// Copyright (c) 2015-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package prompt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Secret prompts the user for a secret such as a private key. On a terminal
// the input is not echoed. Otherwise one line is read from reader, so
// secrets can be piped in. The prompt is repeated until a non-empty value is
// entered.
func Secret(reader *bufio.Reader, prefix string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return secret(os.Stderr, prefix, func() ([]byte, error) {
			return readLine(reader)
		})
	}
	return secret(os.Stderr, prefix, func() ([]byte, error) {
		pass, err := term.ReadPassword(fd)
		fmt.Fprint(os.Stderr, "\n")
		return pass, err
	})
}

func secret(w io.Writer, prefix string,
	read func() ([]byte, error)) ([]byte, error) {

	for {
		fmt.Fprintf(w, "%s: ", prefix)
		pass, err := read()
		if err != nil {
			return nil, err
		}
		pass = bytes.TrimSpace(pass)
		if len(pass) == 0 {
			continue
		}
		return pass, nil
	}
}

// readLine reads one line, returning io.ErrUnexpectedEOF when the input ends
// without any data.
func readLine(reader *bufio.Reader) ([]byte, error) {
	line, err := reader.ReadBytes('\n')
	switch {
	case err == io.EOF && len(line) == 0:
		return nil, io.ErrUnexpectedEOF
	case err != nil && err != io.EOF:
		return nil, err
	}
	return line, nil
}
