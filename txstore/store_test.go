// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txstore

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/chain"
	"github.com/btcsuite/btctxstore/msgsign"
	"github.com/btcsuite/btctxstore/txauthor"
	"github.com/btcsuite/btctxstore/txdata"
	"github.com/btcsuite/btctxstore/txrules"
	"github.com/davecgh/go-spew/spew"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

var testParams = &chaincfg.RegressionNetParams

// testWIF derives a deterministic key from seed.
func testWIF(t *testing.T, seed string, compressed bool) *btcutil.WIF {
	t.Helper()

	privKey, _ := btcec.PrivKeyFromBytes(chainhash.HashB([]byte(seed)))
	wif, err := btcutil.NewWIF(privKey, testParams, compressed)
	require.NoError(t, err)
	return wif
}

// testAddress returns the address wif signs for.
func testAddress(t *testing.T, wif *btcutil.WIF) *btcutil.AddressPubKeyHash {
	t.Helper()

	addr, err := msgsign.WIFAddress(wif, testParams)
	require.NoError(t, err)
	return addr
}

// payScript returns the output script paying addr.
func payScript(t *testing.T, addr btcutil.Address) []byte {
	t.Helper()

	pkScript, err := txscript.PayToAddrScript(addr)
	require.NoError(t, err)
	return pkScript
}

// newTestStore creates a store with the default rules.
func newTestStore(t *testing.T, chainSvc chain.Interface,
	dryRun bool) *Store {

	t.Helper()

	s, err := New(&Config{
		ChainParams: testParams,
		Chain:       chainSvc,
		DryRun:      dryRun,
		Rules:       txrules.DefaultConfig(),
	})
	require.NoError(t, err)
	return s
}

// TestNew checks config validation.
func TestNew(t *testing.T) {
	t.Parallel()

	badRules := txrules.DefaultConfig()
	badRules.MaxOutputs = 0

	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name:    "nil config",
			wantErr: true,
		},
		{
			name:    "missing params",
			cfg:     &Config{Rules: txrules.DefaultConfig()},
			wantErr: true,
		},
		{
			name: "invalid rules",
			cfg: &Config{
				ChainParams: testParams,
				Rules:       badRules,
			},
			wantErr: true,
		},
		{
			name: "negative fetch limit",
			cfg: &Config{
				ChainParams:          testParams,
				Rules:                txrules.DefaultConfig(),
				MaxConcurrentFetches: -1,
			},
			wantErr: true,
		},
		{
			name: "offline",
			cfg: &Config{
				ChainParams: testParams,
				Rules:       txrules.DefaultConfig(),
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			s, err := New(test.cfg)
			if test.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, DefaultMaxConcurrentFetches,
				s.cfg.MaxConcurrentFetches)
			require.Equal(t, testParams, s.ChainParams())
			require.Equal(t, txrules.DefaultConfig(), s.Rules())
		})
	}
}

// TestStoreNulldata stores data with the default options and reads it back.
func TestStoreNulldata(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newMockChainClient()
	wif := testWIF(t, "alice", true)
	addr := testAddress(t, wif)
	m.fund(addr, 100000)

	s := newTestStore(t, m, false)
	txid, err := s.StoreNulldata(
		ctx, []byte("hello"), []*btcutil.WIF{wif}, StoreOptions{},
	)
	require.NoError(t, err)

	published := m.broadcasts()
	require.Len(t, published, 1)
	tx := published[0]
	require.Equal(t, *txid, tx.TxHash(), spew.Sdump(tx))

	require.Len(t, tx.TxIn, 1)
	require.Len(t, tx.TxOut, 2)
	require.True(t, txdata.IsNulldata(tx.TxOut[0].PkScript))
	require.EqualValues(t, 90000, tx.TxOut[1].Value)
	require.Equal(t, payScript(t, addr), tx.TxOut[1].PkScript)

	data, err := s.RetrieveNulldata(ctx, txid)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)
}

// TestStoreHash160DataOptions checks extra outputs, the change address,
// the fee and the lock time, funded by an uncompressed key.
func TestStoreHash160DataOptions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newMockChainClient()
	alice := testWIF(t, "alice", true)
	bob := testWIF(t, "bob", false)
	carol := testAddress(t, testWIF(t, "carol", true))
	m.fund(testAddress(t, bob), 30000, 40000)

	s := newTestStore(t, m, false)
	payment, err := s.PayToAddrOutput(carol, 20000)
	require.NoError(t, err)

	data := bytes.Repeat([]byte{0xab}, txrules.Hash160DataSize)
	txid, err := s.StoreHash160Data(ctx, data,
		[]*btcutil.WIF{alice, bob}, StoreOptions{
			TxOptions: TxOptions{
				ChangeAddress: fn.Some[btcutil.Address](carol),
				Fee:           fn.Some(btcutil.Amount(5000)),
			},
			Outputs:  []*wire.TxOut{payment},
			LockTime: 7,
		},
	)
	require.NoError(t, err)

	tx := m.broadcasts()[0]
	require.EqualValues(t, 7, tx.LockTime)
	require.Len(t, tx.TxIn, 1)
	require.Len(t, tx.TxOut, 3)
	require.EqualValues(t, 20000, tx.TxOut[0].Value)
	require.EqualValues(t, txrules.DefaultDustLimit, tx.TxOut[1].Value)
	require.EqualValues(t, 40000-20000-548-5000, tx.TxOut[2].Value)
	require.Equal(t, payScript(t, carol), tx.TxOut[2].PkScript)

	got, err := s.RetrieveHash160Data(ctx, txid, 1)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

// TestStoreDataBlob stores a blob spanning several outputs.
func TestStoreDataBlob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newMockChainClient()
	wif := testWIF(t, "alice", true)
	m.fund(testAddress(t, wif), 100000)

	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}

	s := newTestStore(t, m, false)
	txid, err := s.StoreDataBlob(ctx, data, []*btcutil.WIF{wif},
		StoreOptions{})
	require.NoError(t, err)

	tx := m.broadcasts()[0]
	require.Len(t, tx.TxOut, txdata.BlobOutputCount(len(data))+1)
	require.EqualValues(t, 100000-4*548-10000,
		tx.TxOut[len(tx.TxOut)-1].Value)

	got, err := s.RetrieveDataBlob(ctx, txid)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

// TestStoreBroadcast stores a message signed by one key and funded by
// another.
func TestStoreBroadcast(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newMockChainClient()
	sender := testWIF(t, "alice", true)
	funder := testWIF(t, "bob", true)
	m.fund(testAddress(t, funder), 100000)

	s := newTestStore(t, m, false)
	txid, err := s.StoreBroadcast(ctx, "hello wörld", sender,
		[]*btcutil.WIF{funder}, StoreOptions{})
	require.NoError(t, err)

	msg, err := s.RetrieveBroadcast(ctx, txid)
	require.NoError(t, err)
	require.Equal(t, "hello wörld", msg.Text)
	require.Equal(t, testAddress(t, sender).EncodeAddress(),
		msg.Sender.EncodeAddress())
	require.True(t, msgsign.Verify(msg.Sender, msg.Signature,
		[]byte(msg.Text), testParams))
}

// TestAddInputsSignPublish walks a transaction through the separate steps
// and checks the signed state rules.
func TestAddInputsSignPublish(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newMockChainClient()
	wif := testWIF(t, "alice", true)
	wifs := []*btcutil.WIF{wif}
	m.fund(testAddress(t, wif), 50000)

	s := newTestStore(t, m, false)
	tx, err := s.AddNulldata(s.CreateTx(nil, nil, 0), []byte{1, 2, 3})
	require.NoError(t, err)

	funded, err := s.AddInputs(ctx, tx, wifs, TxOptions{SkipSigning: true})
	require.NoError(t, err)
	require.Empty(t, tx.TxIn, "input transaction modified")
	require.Len(t, funded.TxIn, 1)
	require.Empty(t, funded.TxIn[0].SignatureScript)

	_, err = s.Publish(ctx, funded)
	require.True(t, IsError(err, ErrUnsignedTx), err)

	signed, err := s.SignTx(ctx, funded, wifs)
	require.NoError(t, err)
	require.Empty(t, funded.TxIn[0].SignatureScript,
		"unsigned transaction modified")

	_, err = s.AddNulldata(signed, []byte{4})
	require.True(t, IsError(err, ErrSignedTx), err)
	_, err = s.AddInputs(ctx, signed, wifs, TxOptions{})
	require.True(t, IsError(err, ErrSignedTx), err)

	txid, err := s.Publish(ctx, signed)
	require.NoError(t, err)
	require.Equal(t, signed.TxHash(), *txid)
	require.Len(t, m.broadcasts(), 1)

	// A second nulldata output is refused.
	_, err = s.AddNulldata(tx, []byte{4})
	require.True(t, txdata.IsError(err, txdata.ErrExistingNulldataOutput))
}

// TestAddInputsExistingInputs checks that outputs already spent by the
// transaction are not selected again and that previous transactions are
// fetched once.
func TestAddInputsExistingInputs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newMockChainClient()
	wif := testWIF(t, "alice", true)
	funding := m.fund(testAddress(t, wif), 50000, 60000)
	fundingHash := funding.TxHash()

	s := newTestStore(t, m, false)
	tx := s.CreateTx([]TxInput{{Hash: fundingHash, Index: 0}}, nil, 0)

	signed, err := s.AddInputs(ctx, tx, []*btcutil.WIF{wif}, TxOptions{})
	require.NoError(t, err)
	require.Len(t, signed.TxIn, 2)
	require.Equal(t, *wire.NewOutPoint(&fundingHash, 0),
		signed.TxIn[0].PreviousOutPoint)
	require.Equal(t, *wire.NewOutPoint(&fundingHash, 1),
		signed.TxIn[1].PreviousOutPoint)

	// The existing input is not counted, so the selected output pays
	// the fee and the rest is change.
	require.Len(t, signed.TxOut, 1)
	require.EqualValues(t, 50000, signed.TxOut[0].Value)

	require.Equal(t, 1, m.fetchCount(fundingHash))
}

// TestAddInputsAlternateAddress checks that outputs paying the other
// serialization of a key are found and signed.
func TestAddInputsAlternateAddress(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newMockChainClient()
	wif := testWIF(t, "dave", true)
	uncompressed, err := msgsign.PubKeyAddress(
		wif.PrivKey.PubKey(), false, testParams,
	)
	require.NoError(t, err)
	m.fund(uncompressed, 30000)

	s := newTestStore(t, m, false)
	_, err = s.Send(ctx, []*btcutil.WIF{wif}, nil, TxOptions{})
	require.NoError(t, err)

	// Change goes to the key's own compressed address.
	tx := m.broadcasts()[0]
	require.Equal(t, payScript(t, testAddress(t, wif)),
		tx.TxOut[0].PkScript)
	require.EqualValues(t, 20000, tx.TxOut[0].Value)
}

// TestFoldDustChange checks that dust change is dropped only when the rules
// say so.
func TestFoldDustChange(t *testing.T) {
	t.Parallel()

	for _, fold := range []bool{false, true} {
		m := newMockChainClient()
		wif := testWIF(t, "alice", true)
		m.fund(testAddress(t, wif), 10100)

		rules := txrules.DefaultConfig()
		rules.FoldDustChange = fold
		s, err := New(&Config{
			ChainParams: testParams,
			Chain:       m,
			Rules:       rules,
		})
		require.NoError(t, err)

		tx, err := s.AddNulldata(s.CreateTx(nil, nil, 0), []byte{1})
		require.NoError(t, err)
		signed, err := s.AddInputs(context.Background(), tx,
			[]*btcutil.WIF{wif}, TxOptions{})
		require.NoError(t, err)

		if fold {
			require.Len(t, signed.TxOut, 1)
		} else {
			require.Len(t, signed.TxOut, 2)
			require.EqualValues(t, 100, signed.TxOut[1].Value)
		}
	}
}

// TestInsufficientFunds checks the funding shortfall error.
func TestInsufficientFunds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newMockChainClient()
	wif := testWIF(t, "alice", true)
	m.fund(testAddress(t, wif), 5000)

	s := newTestStore(t, m, false)
	payment, err := s.PayToAddrOutput(
		testAddress(t, testWIF(t, "bob", true)), 20000,
	)
	require.NoError(t, err)

	_, err = s.Send(ctx, []*btcutil.WIF{wif}, []*wire.TxOut{payment},
		TxOptions{})

	var insufficient *txauthor.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	require.EqualValues(t, 30000, insufficient.Required)
	require.EqualValues(t, 5000, insufficient.Available)
	require.Empty(t, m.broadcasts())
}

// TestSignTxErrors checks the failures of signing.
func TestSignTxErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newMockChainClient()
	alice := testWIF(t, "alice", true)
	bob := testWIF(t, "bob", true)
	funding := m.fund(testAddress(t, alice), 50000).TxHash()

	s := newTestStore(t, m, false)

	mainnetKey, err := btcutil.NewWIF(
		alice.PrivKey, &chaincfg.MainNetParams, true,
	)
	require.NoError(t, err)

	tests := []struct {
		name  string
		tx    *wire.MsgTx
		wifs  []*btcutil.WIF
		check func(t *testing.T, err error)
	}{
		{
			name: "no inputs",
			tx:   s.CreateTx(nil, nil, 0),
			wifs: []*btcutil.WIF{alice},
			check: func(t *testing.T, err error) {
				require.True(t, IsError(err, ErrInvalidInput))
			},
		},
		{
			name: "no keys",
			tx: s.CreateTx([]TxInput{{funding, 0}}, nil,
				0),
			check: func(t *testing.T, err error) {
				require.True(t, IsError(err, ErrInvalidInput))
			},
		},
		{
			name: "key for another network",
			tx: s.CreateTx([]TxInput{{funding, 0}}, nil,
				0),
			wifs: []*btcutil.WIF{mainnetKey},
			check: func(t *testing.T, err error) {
				require.True(t, IsError(err, ErrInvalidInput))
			},
		},
		{
			name: "wrong key",
			tx: s.CreateTx([]TxInput{{funding, 0}}, nil,
				0),
			wifs: []*btcutil.WIF{bob},
			check: func(t *testing.T, err error) {
				require.True(t, IsError(err, ErrMissingKey),
					err)
			},
		},
		{
			name: "unknown previous transaction",
			tx: s.CreateTx([]TxInput{{chainhash.Hash{0x42}, 0}},
				nil, 0),
			wifs: []*btcutil.WIF{alice},
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err,
					chain.ErrTransactionNotFound)
			},
		},
		{
			name: "missing previous output",
			tx: s.CreateTx([]TxInput{{funding, 5}}, nil,
				0),
			wifs: []*btcutil.WIF{alice},
			check: func(t *testing.T, err error) {
				require.True(t, IsError(err,
					ErrMissingPrevOut))
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := s.SignTx(ctx, test.tx, test.wifs)
			require.Error(t, err)
			test.check(t, err)
		})
	}
}

// TestPublish checks dry runs, rejections and stores without a chain
// service.
func TestPublish(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// The signature script content does not matter to Publish.
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(
		wire.NewOutPoint(&chainhash.Hash{0x01}, 0), []byte{0x51}, nil,
	))
	wantTxid := tx.TxHash()

	t.Run("dry run", func(t *testing.T) {
		t.Parallel()

		m := newMockChainClient()
		txid, err := newTestStore(t, m, true).Publish(ctx, tx)
		require.NoError(t, err)
		require.Equal(t, wantTxid, *txid)
		require.Empty(t, m.broadcasts())
	})

	t.Run("dry run without chain", func(t *testing.T) {
		t.Parallel()

		txid, err := newTestStore(t, nil, true).Publish(ctx, tx)
		require.NoError(t, err)
		require.Equal(t, wantTxid, *txid)
	})

	t.Run("without chain", func(t *testing.T) {
		t.Parallel()

		_, err := newTestStore(t, nil, false).Publish(ctx, tx)
		require.True(t, IsError(err, ErrNoChainService))
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()

		m := newMockChainClient()
		m.broadcastErr = &chain.BroadcastRejectedError{
			Reason: chain.RejectDust,
			Err:    errors.New("dust"),
		}
		_, err := newTestStore(t, m, false).Publish(ctx, tx)
		rejected, ok := chain.IsBroadcastRejected(err)
		require.True(t, ok)
		require.Equal(t, chain.RejectDust, rejected.Reason)
	})

	t.Run("no inputs", func(t *testing.T) {
		t.Parallel()

		m := newMockChainClient()
		_, err := newTestStore(t, m, false).Publish(
			ctx, wire.NewMsgTx(wire.TxVersion),
		)
		require.True(t, IsError(err, ErrUnsignedTx))
	})
}

// TestOfflineStore checks that chain operations fail cleanly without a
// chain service.
func TestOfflineStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t, nil, false)
	wif := testWIF(t, "alice", true)

	_, err := s.RetrieveTx(ctx, &chainhash.Hash{})
	require.True(t, IsError(err, ErrNoChainService))

	_, err = s.Confirms(ctx, &chainhash.Hash{})
	require.True(t, IsError(err, ErrNoChainService))

	_, err = s.AddInputs(ctx, s.CreateTx(nil, nil, 0),
		[]*btcutil.WIF{wif}, TxOptions{})
	require.True(t, IsError(err, ErrNoChainService))

	_, err = s.SplitUTXOs(ctx, wif, 1000, 100, 3)
	require.True(t, IsError(err, ErrNoChainService))

	// Offline operations still work.
	tx, err := s.AddDataBlob(s.CreateTx(nil, nil, 0), []byte("offline"))
	require.NoError(t, err)
	data, err := s.GetDataBlob(tx)
	require.NoError(t, err)
	require.Equal(t, []byte("offline"), data)
}

// TestRetrieve checks the read-only chain operations.
func TestRetrieve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := newMockChainClient()
	wif := testWIF(t, "alice", true)
	addr := testAddress(t, wif)
	funding := m.fund(addr, 1000, 2000)
	fundingHash := funding.TxHash()
	m.confirmations[fundingHash] = 3

	s := newTestStore(t, m, false)

	tx, err := s.RetrieveTx(ctx, &fundingHash)
	require.NoError(t, err)
	require.Equal(t, fundingHash, tx.TxHash())

	utxos, err := s.RetrieveUTXOs(ctx, []btcutil.Address{addr})
	require.NoError(t, err)
	require.Len(t, utxos, 2)
	require.EqualValues(t, 3000, txauthor.SumSpendables(utxos))

	mainnet, err := btcutil.NewAddressPubKeyHash(
		addr.Hash160()[:], &chaincfg.MainNetParams,
	)
	require.NoError(t, err)
	_, err = s.RetrieveUTXOs(ctx, []btcutil.Address{mainnet})
	require.True(t, IsError(err, ErrInvalidInput))

	confs, err := s.Confirms(ctx, &fundingHash)
	require.NoError(t, err)
	require.EqualValues(t, 3, confs)

	confs, err = s.Confirms(ctx, &chainhash.Hash{0x99})
	require.NoError(t, err)
	require.Zero(t, confs)
}

// TestPayToAddrOutput checks output validation.
func TestPayToAddrOutput(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, nil, false)
	addr := testAddress(t, testWIF(t, "alice", true))

	out, err := s.PayToAddrOutput(addr, txrules.DefaultDustLimit)
	require.NoError(t, err)
	require.Equal(t, payScript(t, addr), out.PkScript)

	_, err = s.PayToAddrOutput(addr, txrules.DefaultDustLimit-1)
	require.True(t, IsError(err, ErrInvalidInput))
	require.ErrorIs(t, err, txrules.ErrOutputIsDust)

	_, err = s.PayToAddrOutput(addr, -1)
	require.ErrorIs(t, err, txrules.ErrAmountNegative)

	mainnet, err := btcutil.NewAddressPubKeyHash(
		addr.Hash160()[:], &chaincfg.MainNetParams,
	)
	require.NoError(t, err)
	_, err = s.PayToAddrOutput(mainnet, 10000)
	require.True(t, IsError(err, ErrInvalidInput))
}
