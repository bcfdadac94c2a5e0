// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/btcsuite/btctxstore/chain"
	"github.com/btcsuite/btctxstore/netparams"
	"github.com/jessevdk/go-flags"
)

// app holds the state of one command line invocation.
type app struct {
	cfg *config
	ctx context.Context
	out io.Writer
	in  *bufio.Reader

	params   *netparams.Params
	chainSvc chain.Interface
}

func newApp(out io.Writer, in io.Reader) *app {
	return &app{
		cfg: defaultConfig(),
		ctx: context.Background(),
		out: out,
		in:  bufio.NewReader(in),
	}
}

// run parses args and executes the selected command.
func (a *app) run(ctx context.Context, args []string) error {
	a.ctx = ctx
	defer a.close()

	parser := flags.NewParser(a.cfg, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "btctxstore"
	parser.SubcommandsOptional = false
	if err := addCommands(parser, a); err != nil {
		return err
	}

	_, err := parser.ParseArgs(args)
	return err
}

// close releases the chain service connections and the log file.
func (a *app) close() {
	if a.chainSvc != nil {
		chain.Shutdown(a.chainSvc)
	}
	if err := logWriter.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "unable to close log file: %v\n", err)
	}
}

func main() {
	ctx, stop := interruptContext(context.Background())
	err := newApp(os.Stdout, os.Stdin).run(ctx, os.Args[1:])
	stop()

	if err == nil {
		return
	}

	var flagsErr *flags.Error
	if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
		fmt.Fprintln(os.Stdout, err)
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
