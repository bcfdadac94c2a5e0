// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txstore

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btctxstore/txauthor"
)

// SplitUTXOs splits the outputs of wif's address into outputs worth at
// least limit, paying each batch transaction fee and creating at most
// maxOutputs outputs per transaction. The batch transactions are published
// in order, or only built in dry run mode, and their ids are returned.
func (s *Store) SplitUTXOs(ctx context.Context, wif *btcutil.WIF,
	limit, fee btcutil.Amount, maxOutputs int) ([]chainhash.Hash, error) {

	switch {
	case limit <= 0 || limit > btcutil.MaxSatoshi:
		return nil, storeError(ErrInvalidInput, fmt.Sprintf("invalid "+
			"split limit %v", limit), nil)
	case fee < 0 || fee > btcutil.MaxSatoshi:
		return nil, storeError(ErrInvalidInput, fmt.Sprintf("invalid "+
			"fee %v", fee), nil)
	case maxOutputs < 1:
		return nil, storeError(ErrInvalidInput, fmt.Sprintf("invalid "+
			"max outputs %d", maxOutputs), nil)
	}

	chainSvc, err := s.chainService()
	if err != nil {
		return nil, err
	}
	keys, err := newKeyring([]*btcutil.WIF{wif}, s.cfg.ChainParams)
	if err != nil {
		return nil, err
	}

	addr := keys.defaultAddress()
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, err
	}

	spendables, err := chainSvc.SpendableOutputs(
		ctx, []btcutil.Address{addr},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch spendable outputs: %w",
			err)
	}

	var txids []chainhash.Hash
	for {
		batch, remaining, err := txauthor.PlanSplit(
			spendables, limit, fee, maxOutputs,
		)
		if err != nil {
			return txids, err
		}
		if batch == nil {
			break
		}

		tx := batch.Transaction(pkScript)
		prevScripts, prevValues := batch.PrevScripts()
		err = txauthor.AddAllInputScripts(tx, prevScripts, keys)
		if err != nil {
			return txids, err
		}
		err = txauthor.ValidateSignedTx(tx, prevScripts, prevValues)
		if err != nil {
			return txids, err
		}

		txid, err := s.Publish(ctx, tx)
		if err != nil {
			return txids, err
		}
		txids = append(txids, *txid)

		log.Infof("Split %v from %d outputs into %d outputs in %v",
			batch.TotalInput(), len(batch.Inputs),
			len(batch.OutputValues), txid)

		spendables = remaining
	}

	return txids, nil
}
