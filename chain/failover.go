// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/txauthor"
)

// FailoverService spreads calls over several back ends. Every call goes to a
// randomly chosen back end and, if that fails, is retried once on a
// different one.
//
// Rejected broadcasts and canceled contexts are not retried since another
// back end would give the same answer.
type FailoverService struct {
	services []Interface

	// pick returns a random index in [0, n).
	pick func(n int) int
}

// A compile-time check to ensure that FailoverService satisfies the
// chain.Interface interface.
var _ Interface = (*FailoverService)(nil)

// NewFailoverService creates a failover service over services.
func NewFailoverService(services ...Interface) (*FailoverService, error) {
	if len(services) == 0 {
		return nil, ErrNoBackEnds
	}

	return &FailoverService{
		services: services,
		pick:     rand.IntN,
	}, nil
}

// BackEnd returns the names of the wrapped back ends.
func (f *FailoverService) BackEnd() string {
	names := make([]string, 0, len(f.services))
	for _, s := range f.services {
		names = append(names, s.BackEnd())
	}
	return "failover(" + strings.Join(names, ",") + ")"
}

// GetTransaction implements Interface.
func (f *FailoverService) GetTransaction(ctx context.Context,
	txid *chainhash.Hash) (*wire.MsgTx, error) {

	return failover(ctx, f, "GetTransaction",
		func(s Interface) (*wire.MsgTx, error) {
			return s.GetTransaction(ctx, txid)
		},
	)
}

// SpendableOutputs implements Interface.
func (f *FailoverService) SpendableOutputs(ctx context.Context,
	addrs []btcutil.Address) ([]txauthor.Spendable, error) {

	return failover(ctx, f, "SpendableOutputs",
		func(s Interface) ([]txauthor.Spendable, error) {
			return s.SpendableOutputs(ctx, addrs)
		},
	)
}

// Broadcast implements Interface.
func (f *FailoverService) Broadcast(ctx context.Context, tx *wire.MsgTx) error {
	_, err := failover(ctx, f, "Broadcast",
		func(s Interface) (struct{}, error) {
			return struct{}{}, s.Broadcast(ctx, tx)
		},
	)
	return err
}

// Confirmations implements Interface.
func (f *FailoverService) Confirmations(ctx context.Context,
	txid *chainhash.Hash) (int64, error) {

	return failover(ctx, f, "Confirmations",
		func(s Interface) (int64, error) {
			return s.Confirmations(ctx, txid)
		},
	)
}

// failover runs call on a random back end and retries once on another.
func failover[T any](ctx context.Context, f *FailoverService, method string,
	call func(Interface) (T, error)) (T, error) {

	n := len(f.services)
	first := f.pick(n)
	result, err := call(f.services[first])
	if err == nil || n == 1 || !retryable(ctx, err) {
		return result, err
	}

	// Pick uniformly among the other back ends.
	second := (first + 1 + f.pick(n-1)) % n

	log.Warnf("%s failed on %s back end: %v, retrying on %s", method,
		f.services[first].BackEnd(), err, f.services[second].BackEnd())

	return call(f.services[second])
}

// retryable reports whether err may be specific to one back end.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if _, ok := IsBroadcastRejected(err); ok {
		return false
	}
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
