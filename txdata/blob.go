// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdata

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/txrules"
)

// blobPrefixSize is the size of the big endian length written in front of
// every blob.
const blobPrefixSize = 2

// BlobOutputCount returns how many outputs a blob of size bytes needs: one
// nulldata output holding the length prefix and the first bytes, then one
// hash160 data output per started 20 byte chunk of the remainder. The length
// prefix counts against the 40 byte nulldata payload, so only 38 data bytes
// fit inline.
func BlobOutputCount(size int) int {
	rest := size + blobPrefixSize - txrules.MaxNulldataSize
	if rest <= 0 {
		return 1
	}
	chunks := (rest + txrules.Hash160DataSize - 1) / txrules.Hash160DataSize
	return 1 + chunks
}

// BlobOutputs encodes data as a nulldata output followed by hash160 data
// outputs worth dust each. The last chunk is zero padded, the length prefix
// lets DecodeBlob drop the padding.
func BlobOutputs(data []byte, dust btcutil.Amount) ([]*wire.TxOut, error) {
	if len(data) > txrules.MaxBlobSize {
		str := fmt.Sprintf("blob of %d bytes exceeds the %d byte limit",
			len(data), txrules.MaxBlobSize)
		return nil, newError(ErrBlobTooLarge, str, nil)
	}

	stream := make([]byte, blobPrefixSize+len(data))
	binary.BigEndian.PutUint16(stream, uint16(len(data)))
	copy(stream[blobPrefixSize:], data)

	head := stream
	if len(head) > txrules.MaxNulldataSize {
		head = stream[:txrules.MaxNulldataSize]
	}
	nulldata, err := NulldataOutput(head)
	if err != nil {
		return nil, err
	}

	outputs := make([]*wire.TxOut, 0, BlobOutputCount(len(data)))
	outputs = append(outputs, nulldata)

	rest := stream[len(head):]
	for len(rest) > 0 {
		chunk := make([]byte, txrules.Hash160DataSize)
		n := copy(chunk, rest)
		rest = rest[n:]

		out, err := Hash160DataOutput(chunk, dust)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}

	return outputs, nil
}

// AddBlob appends the outputs encoding data to tx. A transaction that
// already has a nulldata output is refused.
func AddBlob(tx *wire.MsgTx, data []byte, dust btcutil.Amount) error {
	index, err := nulldataIndex(tx)
	if err != nil {
		return err
	}
	if index >= 0 {
		str := fmt.Sprintf("transaction already has nulldata output "+
			"%d", index)
		return newError(ErrExistingNulldataOutput, str, nil)
	}

	outputs, err := BlobOutputs(data, dust)
	if err != nil {
		return err
	}
	for _, out := range outputs {
		tx.AddTxOut(out)
	}
	return nil
}

// DecodeBlob reassembles the blob stored in tx by AddBlob. Hash160 data
// outputs are read in order starting right after the nulldata output until
// the recorded length is reached.
func DecodeBlob(tx *wire.MsgTx) ([]byte, error) {
	index, head, err := Nulldata(tx)
	if err != nil {
		return nil, err
	}
	if len(head) < blobPrefixSize {
		return nil, newError(ErrTruncatedBlob, "nulldata too short "+
			"for a blob length prefix", nil)
	}

	size := int(binary.BigEndian.Uint16(head))
	blob := make([]byte, 0, size+txrules.Hash160DataSize)
	blob = append(blob, head[blobPrefixSize:]...)

	for i := index + 1; len(blob) < size; i++ {
		if i >= len(tx.TxOut) {
			str := fmt.Sprintf("blob promises %d bytes, "+
				"transaction carries %d", size, len(blob))
			return nil, newError(ErrTruncatedBlob, str, nil)
		}
		chunk, err := Hash160Data(tx, i)
		if err != nil {
			return nil, err
		}
		blob = append(blob, chunk...)
	}

	return blob[:size], nil
}
