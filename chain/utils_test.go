// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"
)

// testTxid is a transaction id the mocks do not inspect.
var testTxid = chainhash.Hash{0x02}

// testTx returns a small transaction spending a fixed outpoint. The lock
// time makes transactions built from different seeds distinct.
func testTx(seed uint32) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(wire.NewTxIn(
		wire.NewOutPoint(&chainhash.Hash{0x01}, 0), nil, nil,
	))
	tx.AddTxOut(wire.NewTxOut(10000, []byte{
		0x76, 0xa9, 0x14,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0x88, 0xac,
	}))
	tx.LockTime = seed
	return tx
}

// txHex serializes tx as hex.
func txHex(t *testing.T, tx *wire.MsgTx) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, tx.Serialize(&buf))
	return hex.EncodeToString(buf.Bytes())
}
