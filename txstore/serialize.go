// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txstore

import (
	"bytes"
	"context"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
)

// SerializeTx returns the hex encoded serialization of tx.
func SerializeTx(tx *wire.MsgTx) (string, error) {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())
	if err := tx.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// DeserializeTx decodes a hex encoded transaction.
func DeserializeTx(rawTx string) (*wire.MsgTx, error) {
	serialized, err := hex.DecodeString(rawTx)
	if err != nil {
		return nil, storeError(ErrInvalidInput, "invalid transaction "+
			"hex", err)
	}

	// Transactions without inputs look like segwit transactions to the
	// witness decoder, so the legacy form is tried first and only
	// accepted when it consumes every byte.
	tx := wire.NewMsgTx(wire.TxVersion)
	r := bytes.NewReader(serialized)
	if err := tx.DeserializeNoWitness(r); err == nil && r.Len() == 0 {
		return tx, nil
	}

	tx = wire.NewMsgTx(wire.TxVersion)
	r = bytes.NewReader(serialized)
	if err := tx.Deserialize(r); err != nil {
		return nil, storeError(ErrInvalidInput, "invalid transaction",
			err)
	}
	if r.Len() != 0 {
		return nil, storeError(ErrInvalidInput, "trailing bytes after "+
			"transaction", nil)
	}
	return tx, nil
}

// ExportPSBT converts the unsigned transaction tx into a PSBT for an
// external signer. Every input carries its full previous transaction.
func (s *Store) ExportPSBT(ctx context.Context,
	tx *wire.MsgTx) (*psbt.Packet, error) {

	if err := checkUnsigned(tx); err != nil {
		return nil, err
	}
	if len(tx.TxIn) == 0 {
		return nil, storeError(ErrInvalidInput, "transaction has no "+
			"inputs", nil)
	}

	prevTxs, err := s.fetchPrevTxs(ctx, tx)
	if err != nil {
		return nil, err
	}

	packet, err := psbt.NewFromUnsignedTx(tx.Copy())
	if err != nil {
		return nil, storeError(ErrInvalidInput, "unable to create psbt",
			err)
	}
	for i, in := range tx.TxIn {
		op := in.PreviousOutPoint
		prevTx := prevTxs[op.Hash]
		if op.Index >= uint32(len(prevTx.TxOut)) {
			return nil, storeError(ErrMissingPrevOut,
				"input spends a missing output", nil)
		}
		packet.Inputs[i].NonWitnessUtxo = prevTx
	}

	if err := packet.SanityCheck(); err != nil {
		return nil, err
	}

	return packet, nil
}
