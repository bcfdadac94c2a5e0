// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/txauthor"
	"github.com/stretchr/testify/mock"
)

// A compile-time check to ensure mockService satisfies Interface.
var _ Interface = (*mockService)(nil)

// mockService is a mock implementation of Interface for use in tests.
type mockService struct {
	mock.Mock

	name string
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

func (m *mockService) GetTransaction(ctx context.Context,
	txid *chainhash.Hash) (*wire.MsgTx, error) {

	args := m.Called(ctx, txid)
	tx, _ := args.Get(0).(*wire.MsgTx)
	return tx, args.Error(1)
}

func (m *mockService) SpendableOutputs(ctx context.Context,
	addrs []btcutil.Address) ([]txauthor.Spendable, error) {

	args := m.Called(ctx, addrs)
	spendables, _ := args.Get(0).([]txauthor.Spendable)
	return spendables, args.Error(1)
}

func (m *mockService) Broadcast(ctx context.Context, tx *wire.MsgTx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockService) Confirmations(ctx context.Context,
	txid *chainhash.Hash) (int64, error) {

	args := m.Called(ctx, txid)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockService) BackEnd() string {
	return m.name
}
