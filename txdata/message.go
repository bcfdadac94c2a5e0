// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txdata

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/msgsign"
	"github.com/btcsuite/btctxstore/txrules"
	"github.com/klauspost/compress/zlib"
)

// Broadcast message envelope layout. The padding puts the sender hash at
// blob offset 78 so that, after the two byte length prefix and the 38 bytes
// stored inline, it fills the third hash160 data output exactly.
const (
	messageTag        = "btxm01"
	messageTagSize    = len(messageTag)
	messageSigOffset  = messageTagSize
	messagePadOffset  = messageSigOffset + msgsign.SignatureSize
	messagePadSize    = 7
	messageHashOffset = messagePadOffset + messagePadSize
	messageHeaderSize = messageHashOffset + txrules.Hash160DataSize

	// maxMessageSize bounds the decompressed message body.
	maxMessageSize = 1 << 20
)

// Message is a decoded broadcast message.
type Message struct {
	// Sender is the address whose key signed Text.
	Sender *btcutil.AddressPubKeyHash

	// Text is the UTF-8 message.
	Text string

	// Signature is the recoverable signature of Text.
	Signature []byte
}

// EncodeMessage builds a broadcast message envelope for message, signed by
// wif. The message body is zlib compressed.
func EncodeMessage(message string, wif *btcutil.WIF,
	params *chaincfg.Params) ([]byte, error) {

	if !utf8.ValidString(message) {
		return nil, newError(ErrInvalidMessage, "message is not "+
			"valid UTF-8", nil)
	}

	sig, err := msgsign.Sign([]byte(message), wif, params)
	if err != nil {
		return nil, err
	}
	sender, err := msgsign.WIFAddress(wif, params)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(messageTag)
	buf.Write(sig)
	buf.Write(make([]byte, messagePadSize))
	buf.Write(sender.ScriptAddress())

	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte(message)); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	if buf.Len() > txrules.MaxBlobSize {
		str := fmt.Sprintf("encoded message of %d bytes exceeds the "+
			"%d byte blob limit", buf.Len(), txrules.MaxBlobSize)
		return nil, newError(ErrBlobTooLarge, str, nil)
	}
	return buf.Bytes(), nil
}

// DecodeMessage parses a broadcast message envelope and checks that its
// signature belongs to the embedded sender.
func DecodeMessage(blob []byte, params *chaincfg.Params) (*Message, error) {
	if len(blob) < messageHeaderSize ||
		string(blob[:messageTagSize]) != messageTag {

		return nil, newError(ErrNoBroadcastMessage, "blob is not a "+
			"broadcast message", nil)
	}
	pad := blob[messagePadOffset:messageHashOffset]
	if !bytes.Equal(pad, make([]byte, messagePadSize)) {
		return nil, newError(ErrNoBroadcastMessage, "broadcast "+
			"message padding is not zero", nil)
	}

	zr, err := zlib.NewReader(bytes.NewReader(blob[messageHeaderSize:]))
	if err != nil {
		return nil, newError(ErrInvalidMessage, "unable to read "+
			"message body", err)
	}
	defer zr.Close()

	text, err := io.ReadAll(io.LimitReader(zr, maxMessageSize+1))
	if err != nil {
		return nil, newError(ErrInvalidMessage, "unable to "+
			"decompress message body", err)
	}
	if len(text) > maxMessageSize {
		return nil, newError(ErrInvalidMessage, "message body too "+
			"large", nil)
	}
	if !utf8.Valid(text) {
		return nil, newError(ErrInvalidMessage, "message is not "+
			"valid UTF-8", nil)
	}

	sender, err := btcutil.NewAddressPubKeyHash(
		blob[messageHashOffset:messageHeaderSize], params,
	)
	if err != nil {
		return nil, err
	}
	sig := append([]byte(nil), blob[messageSigOffset:messagePadOffset]...)
	if !msgsign.Verify(sender, sig, text, params) {
		str := fmt.Sprintf("signature does not match sender %v",
			sender)
		return nil, newError(ErrMessageSignature, str, nil)
	}

	return &Message{
		Sender:    sender,
		Text:      string(text),
		Signature: sig,
	}, nil
}

// AddMessage appends a broadcast message to tx as a data blob.
func AddMessage(tx *wire.MsgTx, message string, wif *btcutil.WIF,
	params *chaincfg.Params, dust btcutil.Amount) error {

	blob, err := EncodeMessage(message, wif, params)
	if err != nil {
		return err
	}
	return AddBlob(tx, blob, dust)
}

// DecodeMessageTx decodes the broadcast message carried by tx.
func DecodeMessageTx(tx *wire.MsgTx, params *chaincfg.Params) (*Message, error) {
	blob, err := DecodeBlob(tx)
	if err != nil {
		return nil, err
	}
	return DecodeMessage(blob, params)
}
