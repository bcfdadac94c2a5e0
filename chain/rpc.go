// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/txauthor"
	"github.com/davecgh/go-spew/spew"
)

// maxListUnspentConfs is the upper confirmation bound passed to
// listunspent.
const maxListUnspentConfs = 9999999

// RPCConfig defines the config options used when initializing the RPC
// service.
type RPCConfig struct {
	// Host is the host:port of the node's RPC server.
	Host string

	// User and Pass authenticate the RPC connection.
	User string
	Pass string

	// Certificates is the PEM encoded RPC certificate. Required unless
	// DisableTLS is set.
	Certificates []byte

	// DisableTLS connects over plain HTTP.
	DisableTLS bool

	// ChainParams defines a Bitcoin network by its parameters.
	ChainParams *chaincfg.Params
}

// validate checks the required config options are set.
func (r *RPCConfig) validate() error {
	if r == nil {
		return errors.New("missing rpc config")
	}

	// Make sure the chain params are configed.
	if r.ChainParams == nil {
		return errors.New("missing chain params config")
	}

	if r.Host == "" {
		return errors.New("missing rpc host")
	}

	// If disableTLS is false, the remote RPC certificate must be provided
	// in the certs slice.
	if !r.DisableTLS && r.Certificates == nil {
		return errors.New("must provide certs when TLS is enabled")
	}

	return nil
}

// RPCService is a chain service backed by the JSON-RPC server of a btcd or
// bitcoind node. Requests are sent with HTTP POST so no persistent
// connection is held.
//
// SpendableOutputs uses listunspent, so the node must run a wallet that
// watches the queried addresses.
type RPCService struct {
	client      *rpcclient.Client
	chainParams *chaincfg.Params
}

// A compile-time check to ensure that RPCService satisfies the chain.Interface
// interface.
var _ Interface = (*RPCService)(nil)

// NewRPCService creates an RPC service for the server described by cfg.
func NewRPCService(cfg *RPCConfig) (*RPCService, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	connConfig := &rpcclient.ConnConfig{
		Host:         cfg.Host,
		User:         cfg.User,
		Pass:         cfg.Pass,
		Certificates: cfg.Certificates,
		DisableTLS:   cfg.DisableTLS,
		HTTPPostMode: true,
	}
	client, err := rpcclient.New(connConfig, nil)
	if err != nil {
		return nil, err
	}

	return &RPCService{
		client:      client,
		chainParams: cfg.ChainParams,
	}, nil
}

// BackEnd returns the name of the driver.
func (s *RPCService) BackEnd() string {
	return BackEndRPC
}

// Shutdown stops the underlying client.
func (s *RPCService) Shutdown() {
	s.client.Shutdown()
}

// GetTransaction fetches a raw transaction with getrawtransaction.
func (s *RPCService) GetTransaction(ctx context.Context,
	txid *chainhash.Hash) (*wire.MsgTx, error) {

	tx, err := receive(ctx, func() (*btcutil.Tx, error) {
		return s.client.GetRawTransaction(txid)
	})
	if err != nil {
		return nil, mapLookupErr(txid, err)
	}

	return tx.MsgTx(), nil
}

// SpendableOutputs lists the unspent outputs of addrs with listunspent.
func (s *RPCService) SpendableOutputs(ctx context.Context,
	addrs []btcutil.Address) ([]txauthor.Spendable, error) {

	if len(addrs) == 0 {
		return nil, nil
	}

	unspent, err := receive(ctx, func() ([]btcjson.ListUnspentResult, error) {
		return s.client.ListUnspentMinMaxAddresses(
			0, maxListUnspentConfs, addrs,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("listunspent: %w", err)
	}

	spendables := make([]txauthor.Spendable, 0, len(unspent))
	for _, u := range unspent {
		spendable, err := spendableFromListUnspent(&u)
		if err != nil {
			return nil, err
		}
		spendables = append(spendables, *spendable)
	}

	log.Debugf("Found %d unspent outputs for %d addresses",
		len(spendables), len(addrs))

	return spendables, nil
}

// Broadcast submits tx with sendrawtransaction.
func (s *RPCService) Broadcast(ctx context.Context, tx *wire.MsgTx) error {
	log.Tracef("Broadcasting transaction %v", newLogClosure(func() string {
		return spew.Sdump(tx)
	}))

	txid, err := receive(ctx, func() (*chainhash.Hash, error) {
		return s.client.SendRawTransaction(tx, false)
	})
	if err != nil {
		var rpcErr *btcjson.RPCError
		if errors.As(err, &rpcErr) {
			return newBroadcastRejectedError(err)
		}
		return err
	}

	log.Infof("Broadcast transaction %v", txid)

	return nil
}

// Confirmations returns the confirmation count reported by the verbose form
// of getrawtransaction. Unknown transactions have zero confirmations.
func (s *RPCService) Confirmations(ctx context.Context,
	txid *chainhash.Hash) (int64, error) {

	result, err := receive(ctx, func() (*btcjson.TxRawResult, error) {
		return s.client.GetRawTransactionVerbose(txid)
	})
	err = mapLookupErr(txid, err)
	switch {
	case errors.Is(err, ErrTransactionNotFound):
		return 0, nil

	case err != nil:
		return 0, err
	}

	return int64(result.Confirmations), nil
}

// spendableFromListUnspent converts a listunspent entry.
func spendableFromListUnspent(u *btcjson.ListUnspentResult) (
	*txauthor.Spendable, error) {

	hash, err := chainhash.NewHashFromStr(u.TxID)
	if err != nil {
		return nil, fmt.Errorf("invalid txid %q: %w", u.TxID, err)
	}
	value, err := btcutil.NewAmount(u.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount for %v:%d: %w", u.TxID,
			u.Vout, err)
	}
	pkScript, err := hex.DecodeString(u.ScriptPubKey)
	if err != nil {
		return nil, fmt.Errorf("invalid script for %v:%d: %w", u.TxID,
			u.Vout, err)
	}

	return &txauthor.Spendable{
		OutPoint: *wire.NewOutPoint(hash, u.Vout),
		Value:    value,
		PkScript: pkScript,
	}, nil
}

// mapLookupErr maps the RPC error for an unknown transaction to
// ErrTransactionNotFound.
func mapLookupErr(txid *chainhash.Hash, err error) error {
	if err == nil {
		return nil
	}

	var rpcErr *btcjson.RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == btcjson.ErrRPCNoTxInfo {
		return fmt.Errorf("%w: %v", ErrTransactionNotFound, txid)
	}

	return err
}

// receive runs a blocking client call and returns early when ctx is done.
// The call itself keeps running until the client's HTTP request finishes.
func receive[T any](ctx context.Context, call func() (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}

	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	resultChan := make(chan result, 1)
	go func() {
		value, err := call()
		resultChan <- result{value, err}
	}()

	select {
	case r := <-resultChan:
		return r.value, r.err

	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
