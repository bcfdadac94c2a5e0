// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdata

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/txrules"
)

// Hash160DataOutput returns a pay-to-pubkey-hash output of the given value
// whose 20 byte hash slot holds data instead of a real key hash.
func Hash160DataOutput(data []byte, value btcutil.Amount) (*wire.TxOut, error) {
	if len(data) != txrules.Hash160DataSize {
		str := fmt.Sprintf("hash160 data must be %d bytes, got %d",
			txrules.Hash160DataSize, len(data))
		return nil, newError(ErrInvalidPayloadSize, str, nil)
	}

	script, err := txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(data).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	if err != nil {
		return nil, err
	}
	return wire.NewTxOut(int64(value), script), nil
}

// Hash160Data returns the 20 byte payload of output index of tx.
func Hash160Data(tx *wire.MsgTx, index int) ([]byte, error) {
	if index < 0 || index >= len(tx.TxOut) {
		str := fmt.Sprintf("output index %d out of range [0, %d)",
			index, len(tx.TxOut))
		return nil, newError(ErrOutputIndex, str, nil)
	}

	pkScript := tx.TxOut[index].PkScript
	if txscript.GetScriptClass(pkScript) != txscript.PubKeyHashTy {
		str := fmt.Sprintf("output %d is not a hash160 data output",
			index)
		return nil, newError(ErrNotHash160Data, str, nil)
	}

	// OP_DUP OP_HASH160 OP_DATA_20 <hash> OP_EQUALVERIFY OP_CHECKSIG
	data := make([]byte, txrules.Hash160DataSize)
	copy(data, pkScript[3:3+txrules.Hash160DataSize])
	return data, nil
}
