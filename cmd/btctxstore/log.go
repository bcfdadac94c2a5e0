// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/btcsuite/btctxstore/build"
	"github.com/btcsuite/btctxstore/chain"
	"github.com/btcsuite/btctxstore/txstore"
)

// logWriter is the shared backend of every subsystem logger. Command output
// owns stdout, so log lines only go to the log file.
var logWriter = build.NewRotatingLogWriter()

// log is the logger of the command line tool itself.
var log = build.NewSubLogger("TXCL", logWriter.GenSubLogger)

func init() {
	logWriter.DisableStdout()

	chain.UseLogger(build.NewSubLogger(
		chain.Subsystem, logWriter.GenSubLogger,
	))
	txstore.UseLogger(build.NewSubLogger(
		txstore.Subsystem, logWriter.GenSubLogger,
	))
}
