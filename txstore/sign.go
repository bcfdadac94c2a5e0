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
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/txauthor"
	"github.com/davecgh/go-spew/spew"
	"golang.org/x/sync/errgroup"
)

// SignTx signs every input of tx with wifs and returns the signed copy. The
// previous transactions are fetched from the chain service and the result is
// checked with the script engine.
func (s *Store) SignTx(ctx context.Context, tx *wire.MsgTx,
	wifs []*btcutil.WIF) (*wire.MsgTx, error) {

	if tx == nil || len(tx.TxIn) == 0 {
		return nil, storeError(ErrInvalidInput, "transaction has no "+
			"inputs", nil)
	}

	keys, err := newKeyring(wifs, s.cfg.ChainParams)
	if err != nil {
		return nil, err
	}

	prevScripts, prevValues, err := s.prevOutputs(ctx, tx)
	if err != nil {
		return nil, err
	}

	signed := tx.Copy()
	err = txauthor.AddAllInputScripts(signed, prevScripts, keys)
	if err != nil {
		return nil, err
	}

	err = txauthor.ValidateSignedTx(signed, prevScripts, prevValues)
	if err != nil {
		log.Debugf("Invalid signed transaction: %v", spew.Sdump(signed))
		return nil, err
	}

	log.Debugf("Signed %d inputs of transaction %v", len(signed.TxIn),
		signed.TxHash())

	return signed, nil
}

// prevOutputs returns the script and value of the output every input of tx
// spends.
func (s *Store) prevOutputs(ctx context.Context, tx *wire.MsgTx) ([][]byte,
	[]btcutil.Amount, error) {

	prevTxs, err := s.fetchPrevTxs(ctx, tx)
	if err != nil {
		return nil, nil, err
	}

	scripts := make([][]byte, len(tx.TxIn))
	values := make([]btcutil.Amount, len(tx.TxIn))
	for i, in := range tx.TxIn {
		op := in.PreviousOutPoint
		prevTx := prevTxs[op.Hash]
		if op.Index >= uint32(len(prevTx.TxOut)) {
			return nil, nil, storeError(ErrMissingPrevOut,
				fmt.Sprintf("input %d spends %v but the "+
					"transaction has %d outputs", i, op,
					len(prevTx.TxOut)), nil)
		}

		prevOut := prevTx.TxOut[op.Index]
		scripts[i] = prevOut.PkScript
		values[i] = btcutil.Amount(prevOut.Value)
	}

	return scripts, values, nil
}

// fetchPrevTxs fetches every distinct transaction the inputs of tx spend.
// Lookups run concurrently, bounded by MaxConcurrentFetches.
func (s *Store) fetchPrevTxs(ctx context.Context,
	tx *wire.MsgTx) (map[chainhash.Hash]*wire.MsgTx, error) {

	chainSvc, err := s.chainService()
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		prevTxs = make(map[chainhash.Hash]*wire.MsgTx)
		pending = make(map[chainhash.Hash]struct{})
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentFetches)

	for _, in := range tx.TxIn {
		hash := in.PreviousOutPoint.Hash
		if _, ok := pending[hash]; ok {
			continue
		}
		pending[hash] = struct{}{}

		g.Go(func() error {
			prevTx, err := chainSvc.GetTransaction(gctx, &hash)
			if err != nil {
				return fmt.Errorf("unable to fetch previous "+
					"transaction %v: %w", hash, err)
			}
			if prevTx.TxHash() != hash {
				return fmt.Errorf("chain service returned "+
					"transaction %v for %v", prevTx.TxHash(),
					hash)
			}

			mu.Lock()
			prevTxs[hash] = prevTx
			mu.Unlock()

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Tracef("Fetched %d previous transactions", len(prevTxs))

	return prevTxs, nil
}
