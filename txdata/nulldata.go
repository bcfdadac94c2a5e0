// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdata

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/txrules"
)

// IsNulldata returns whether pkScript is an OP_RETURN data carrier.
func IsNulldata(pkScript []byte) bool {
	return txscript.GetScriptClass(pkScript) == txscript.NullDataTy
}

// NulldataOutput returns a zero value output whose script is OP_RETURN
// followed by a single push of data.
func NulldataOutput(data []byte) (*wire.TxOut, error) {
	if len(data) > txrules.MaxNulldataSize {
		str := fmt.Sprintf("nulldata of %d bytes exceeds the %d byte "+
			"limit", len(data), txrules.MaxNulldataSize)
		return nil, newError(ErrMaxNulldataExceeded, str, nil)
	}

	// The payload is pushed with an explicit OP_DATA_N opcode instead of
	// the minimal small integer forms, so a single 0x00 byte stays
	// distinguishable from an empty payload.
	script := make([]byte, 0, 2+len(data))
	script = append(script, txscript.OP_RETURN)
	if len(data) == 0 {
		script = append(script, txscript.OP_0)
	} else {
		script = append(script, byte(txscript.OP_DATA_1-1+len(data)))
		script = append(script, data...)
	}
	return wire.NewTxOut(0, script), nil
}

// nulldataIndex returns the index of the only nulldata output of tx, or -1
// when there is none.
func nulldataIndex(tx *wire.MsgTx) (int, error) {
	index := -1
	for i, out := range tx.TxOut {
		if !IsNulldata(out.PkScript) {
			continue
		}
		if index >= 0 {
			str := fmt.Sprintf("nulldata outputs at %d and %d",
				index, i)
			return -1, newError(ErrMultipleNulldataOutputs, str, nil)
		}
		index = i
	}
	return index, nil
}

// Nulldata returns the index and payload of the nulldata output of tx.
func Nulldata(tx *wire.MsgTx) (int, []byte, error) {
	index, err := nulldataIndex(tx)
	if err != nil {
		return -1, nil, err
	}
	if index < 0 {
		return -1, nil, newError(ErrNoNulldataOutput,
			"transaction has no nulldata output", nil)
	}

	data, err := nulldataPayload(tx.TxOut[index].PkScript)
	if err != nil {
		return -1, nil, err
	}
	return index, data, nil
}

// AddNulldata appends out to tx. A transaction carries at most one nulldata
// output.
func AddNulldata(tx *wire.MsgTx, out *wire.TxOut) error {
	if !IsNulldata(out.PkScript) {
		return newError(ErrNotNulldata, "output is not nulldata", nil)
	}

	index, err := nulldataIndex(tx)
	if err != nil {
		return err
	}
	if index >= 0 {
		str := fmt.Sprintf("transaction already has nulldata output "+
			"%d", index)
		return newError(ErrExistingNulldataOutput, str, nil)
	}

	tx.AddTxOut(out)
	return nil
}

// nulldataPayload extracts the pushed data from an OP_RETURN script. Other
// encoders push single small bytes with the small integer opcodes, so those
// are mapped back to the byte they encode.
func nulldataPayload(pkScript []byte) ([]byte, error) {
	tokenizer := txscript.MakeScriptTokenizer(0, pkScript)
	if !tokenizer.Next() || tokenizer.Opcode() != txscript.OP_RETURN {
		return nil, newError(ErrNotNulldata, "script does not start "+
			"with OP_RETURN", nil)
	}

	// A bare OP_RETURN carries an empty payload.
	if !tokenizer.Next() {
		if err := tokenizer.Err(); err != nil {
			return nil, newError(ErrNotNulldata, "malformed "+
				"nulldata script", err)
		}
		return []byte{}, nil
	}

	var data []byte
	switch op := tokenizer.Opcode(); {
	case op == txscript.OP_0:
		data = []byte{}
	case op >= txscript.OP_1 && op <= txscript.OP_16:
		data = []byte{op - (txscript.OP_1 - 1)}
	default:
		data = append([]byte{}, tokenizer.Data()...)
	}

	if tokenizer.Next() || tokenizer.Err() != nil {
		return nil, newError(ErrNotNulldata, "nulldata script has "+
			"trailing data", tokenizer.Err())
	}
	return data, nil
}
