// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/chain"
	"github.com/btcsuite/btctxstore/txauthor"
)

// mockChainClient is an in-memory chain service. Funding transactions are
// created with fund, broadcasts are recorded and become retrievable.
type mockChainClient struct {
	mu sync.Mutex

	txs           map[chainhash.Hash]*wire.MsgTx
	utxos         map[string][]txauthor.Spendable
	confirmations map[chainhash.Hash]int64
	fetches       map[chainhash.Hash]int
	broadcast     []*wire.MsgTx

	// broadcastErr is returned by Broadcast when set.
	broadcastErr error

	fundings uint32
}

var _ chain.Interface = (*mockChainClient)(nil)

func newMockChainClient() *mockChainClient {
	return &mockChainClient{
		txs:           make(map[chainhash.Hash]*wire.MsgTx),
		utxos:         make(map[string][]txauthor.Spendable),
		confirmations: make(map[chainhash.Hash]int64),
		fetches:       make(map[chainhash.Hash]int),
	}
}

// fund creates a transaction paying every value to addr and makes its
// outputs spendable.
func (m *mockChainClient) fund(addr btcutil.Address,
	values ...btcutil.Amount) *wire.MsgTx {

	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		panic(err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.fundings++
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(
		wire.NewOutPoint(&chainhash.Hash{0xff}, m.fundings),
		[]byte{0x51}, nil,
	))
	for _, value := range values {
		tx.AddTxOut(wire.NewTxOut(int64(value), pkScript))
	}

	txid := tx.TxHash()
	m.txs[txid] = tx
	for i, value := range values {
		m.utxos[addr.EncodeAddress()] = append(
			m.utxos[addr.EncodeAddress()], txauthor.Spendable{
				OutPoint: *wire.NewOutPoint(&txid, uint32(i)),
				Value:    value,
				PkScript: pkScript,
			},
		)
	}

	return tx
}

func (m *mockChainClient) GetTransaction(_ context.Context,
	txid *chainhash.Hash) (*wire.MsgTx, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetches[*txid]++
	tx, ok := m.txs[*txid]
	if !ok {
		return nil, fmt.Errorf("%w: %v", chain.ErrTransactionNotFound,
			txid)
	}
	return tx.Copy(), nil
}

func (m *mockChainClient) SpendableOutputs(_ context.Context,
	addrs []btcutil.Address) ([]txauthor.Spendable, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	var spendables []txauthor.Spendable
	for _, addr := range addrs {
		spendables = append(spendables,
			m.utxos[addr.EncodeAddress()]...)
	}
	return spendables, nil
}

func (m *mockChainClient) Broadcast(_ context.Context, tx *wire.MsgTx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.broadcastErr != nil {
		return m.broadcastErr
	}
	m.broadcast = append(m.broadcast, tx)
	m.txs[tx.TxHash()] = tx
	return nil
}

func (m *mockChainClient) Confirmations(_ context.Context,
	txid *chainhash.Hash) (int64, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.confirmations[*txid], nil
}

func (m *mockChainClient) BackEnd() string {
	return "mock"
}

// broadcasts returns the broadcast transactions.
func (m *mockChainClient) broadcasts() []*wire.MsgTx {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]*wire.MsgTx(nil), m.broadcast...)
}

// fetchCount returns how often txid was fetched.
func (m *mockChainClient) fetchCount(txid chainhash.Hash) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.fetches[txid]
}
