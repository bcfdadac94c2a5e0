// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txstore

import (
	"context"
	"unicode/utf8"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/msgsign"
	"github.com/btcsuite/btctxstore/txdata"
)

// addFunc adds data outputs to an unsigned transaction in place.
type addFunc func(tx *wire.MsgTx) error

// addOutputs applies add to a copy of the unsigned transaction tx.
func addOutputs(tx *wire.MsgTx, add addFunc) (*wire.MsgTx, error) {
	if err := checkUnsigned(tx); err != nil {
		return nil, err
	}

	modified := tx.Copy()
	if err := add(modified); err != nil {
		return nil, err
	}
	return modified, nil
}

// storeOutputs creates a transaction with the extra outputs of opts, adds
// the data outputs, funds, signs and publishes it.
func (s *Store) storeOutputs(ctx context.Context, wifs []*btcutil.WIF,
	opts StoreOptions, add addFunc) (*chainhash.Hash, error) {

	tx, err := addOutputs(s.CreateTx(nil, opts.Outputs, opts.LockTime), add)
	if err != nil {
		return nil, err
	}

	txOpts := opts.TxOptions
	txOpts.SkipSigning = false
	tx, err = s.AddInputs(ctx, tx, wifs, txOpts)
	if err != nil {
		return nil, err
	}

	return s.Publish(ctx, tx)
}

// AddNulldata returns a copy of tx with a nulldata output carrying data.
func (s *Store) AddNulldata(tx *wire.MsgTx, data []byte) (*wire.MsgTx,
	error) {

	return addOutputs(tx, nulldataAdder(data))
}

// GetNulldata returns the payload of the nulldata output of tx.
func (s *Store) GetNulldata(tx *wire.MsgTx) ([]byte, error) {
	_, data, err := txdata.Nulldata(tx)
	return data, err
}

// StoreNulldata publishes a transaction carrying data in a nulldata output,
// funded by wifs.
func (s *Store) StoreNulldata(ctx context.Context, data []byte,
	wifs []*btcutil.WIF, opts StoreOptions) (*chainhash.Hash, error) {

	return s.storeOutputs(ctx, wifs, opts, nulldataAdder(data))
}

// RetrieveNulldata fetches txid and returns its nulldata payload.
func (s *Store) RetrieveNulldata(ctx context.Context,
	txid *chainhash.Hash) ([]byte, error) {

	tx, err := s.RetrieveTx(ctx, txid)
	if err != nil {
		return nil, err
	}
	return s.GetNulldata(tx)
}

func nulldataAdder(data []byte) addFunc {
	return func(tx *wire.MsgTx) error {
		out, err := txdata.NulldataOutput(data)
		if err != nil {
			return err
		}
		return txdata.AddNulldata(tx, out)
	}
}

// AddHash160Data returns a copy of tx with a hash160 data output carrying
// the 20 bytes of data, worth the dust limit.
func (s *Store) AddHash160Data(tx *wire.MsgTx, data []byte) (*wire.MsgTx,
	error) {

	return addOutputs(tx, s.hash160DataAdder(data))
}

// GetHash160Data returns the payload of output index of tx.
func (s *Store) GetHash160Data(tx *wire.MsgTx, index int) ([]byte, error) {
	return txdata.Hash160Data(tx, index)
}

// StoreHash160Data publishes a transaction carrying data in a hash160 data
// output, funded by wifs.
func (s *Store) StoreHash160Data(ctx context.Context, data []byte,
	wifs []*btcutil.WIF, opts StoreOptions) (*chainhash.Hash, error) {

	return s.storeOutputs(ctx, wifs, opts, s.hash160DataAdder(data))
}

// RetrieveHash160Data fetches txid and returns the payload of its output
// index.
func (s *Store) RetrieveHash160Data(ctx context.Context,
	txid *chainhash.Hash, index int) ([]byte, error) {

	tx, err := s.RetrieveTx(ctx, txid)
	if err != nil {
		return nil, err
	}
	return s.GetHash160Data(tx, index)
}

func (s *Store) hash160DataAdder(data []byte) addFunc {
	return func(tx *wire.MsgTx) error {
		out, err := txdata.Hash160DataOutput(
			data, s.cfg.Rules.DustLimit,
		)
		if err != nil {
			return err
		}
		tx.AddTxOut(out)
		return nil
	}
}

// AddDataBlob returns a copy of tx with data stored as a data blob.
func (s *Store) AddDataBlob(tx *wire.MsgTx, data []byte) (*wire.MsgTx,
	error) {

	return addOutputs(tx, s.blobAdder(data))
}

// GetDataBlob reassembles the data blob of tx.
func (s *Store) GetDataBlob(tx *wire.MsgTx) ([]byte, error) {
	return txdata.DecodeBlob(tx)
}

// StoreDataBlob publishes a transaction carrying data as a data blob,
// funded by wifs.
func (s *Store) StoreDataBlob(ctx context.Context, data []byte,
	wifs []*btcutil.WIF, opts StoreOptions) (*chainhash.Hash, error) {

	return s.storeOutputs(ctx, wifs, opts, s.blobAdder(data))
}

// RetrieveDataBlob fetches txid and reassembles its data blob.
func (s *Store) RetrieveDataBlob(ctx context.Context,
	txid *chainhash.Hash) ([]byte, error) {

	tx, err := s.RetrieveTx(ctx, txid)
	if err != nil {
		return nil, err
	}
	return s.GetDataBlob(tx)
}

func (s *Store) blobAdder(data []byte) addFunc {
	return func(tx *wire.MsgTx) error {
		return txdata.AddBlob(tx, data, s.cfg.Rules.DustLimit)
	}
}

// AddBroadcast returns a copy of tx carrying message signed by sender.
func (s *Store) AddBroadcast(tx *wire.MsgTx, message string,
	sender *btcutil.WIF) (*wire.MsgTx, error) {

	add, err := s.broadcastAdder(message, sender)
	if err != nil {
		return nil, err
	}
	return addOutputs(tx, add)
}

// GetBroadcast decodes and verifies the broadcast message of tx.
func (s *Store) GetBroadcast(tx *wire.MsgTx) (*txdata.Message, error) {
	return txdata.DecodeMessageTx(tx, s.cfg.ChainParams)
}

// StoreBroadcast publishes a transaction carrying message signed by sender,
// funded by wifs.
func (s *Store) StoreBroadcast(ctx context.Context, message string,
	sender *btcutil.WIF, wifs []*btcutil.WIF,
	opts StoreOptions) (*chainhash.Hash, error) {

	add, err := s.broadcastAdder(message, sender)
	if err != nil {
		return nil, err
	}
	return s.storeOutputs(ctx, wifs, opts, add)
}

// RetrieveBroadcast fetches txid and decodes its broadcast message.
func (s *Store) RetrieveBroadcast(ctx context.Context,
	txid *chainhash.Hash) (*txdata.Message, error) {

	tx, err := s.RetrieveTx(ctx, txid)
	if err != nil {
		return nil, err
	}
	return s.GetBroadcast(tx)
}

func (s *Store) broadcastAdder(message string,
	sender *btcutil.WIF) (addFunc, error) {

	if err := s.checkWIF(sender); err != nil {
		return nil, err
	}

	return func(tx *wire.MsgTx) error {
		return txdata.AddMessage(
			tx, message, sender, s.cfg.ChainParams,
			s.cfg.Rules.DustLimit,
		)
	}, nil
}

// SignData signs data with wif and returns the base64 encoded recoverable
// signature.
func (s *Store) SignData(wif *btcutil.WIF, data []byte) (string, error) {
	if err := s.checkWIF(wif); err != nil {
		return "", err
	}

	sig, err := msgsign.Sign(data, wif, s.cfg.ChainParams)
	if err != nil {
		return "", err
	}
	return msgsign.EncodeSignature(sig), nil
}

// VerifySignature reports whether signature, base64 encoded, is a
// signature of data by address. Malformed arguments verify as false.
func (s *Store) VerifySignature(address, signature string,
	data []byte) bool {

	addr, err := s.DecodeAddress(address)
	if err != nil {
		return false
	}
	sig, err := msgsign.DecodeSignature(signature)
	if err != nil {
		return false
	}
	return msgsign.Verify(addr, sig, data, s.cfg.ChainParams)
}

// SignUnicode signs the UTF-8 encoding of message.
func (s *Store) SignUnicode(wif *btcutil.WIF, message string) (string,
	error) {

	if !utf8.ValidString(message) {
		return "", storeError(ErrInvalidInput, "message is not valid "+
			"UTF-8", nil)
	}
	return s.SignData(wif, []byte(message))
}

// VerifySignatureUnicode verifies a signature of the UTF-8 encoding of
// message.
func (s *Store) VerifySignatureUnicode(address, signature,
	message string) bool {

	if !utf8.ValidString(message) {
		return false
	}
	return s.VerifySignature(address, signature, []byte(message))
}
