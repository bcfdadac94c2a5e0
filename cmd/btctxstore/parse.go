// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/internal/cfgutil"
	"github.com/btcsuite/btctxstore/internal/prompt"
	"github.com/btcsuite/btctxstore/txstore"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// secret returns value, or prompts for it when value is "-".
func (a *app) secret(value, name string) (string, error) {
	if value != "-" {
		return value, nil
	}
	secret, err := prompt.Secret(a.in, name)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// decodeWIF decodes a key argument, prompting for it when it is "-".
func (a *app) decodeWIF(s *txstore.Store, wif string) (*btcutil.WIF, error) {
	wif, err := a.secret(wif, "Private key (WIF)")
	if err != nil {
		return nil, err
	}
	return s.DecodeWIF(wif)
}

// decodeWIFs decodes every key argument.
func (a *app) decodeWIFs(s *txstore.Store,
	wifs []string) ([]*btcutil.WIF, error) {

	keys := make([]*btcutil.WIF, 0, len(wifs))
	for _, wif := range wifs {
		key, err := a.decodeWIF(s, wif)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// decodeHex decodes a hex argument.
func decodeHex(name, value string) ([]byte, error) {
	data, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %s: %w", name, err)
	}
	return data, nil
}

// parseTxid parses a transaction id argument.
func parseTxid(value string) (*chainhash.Hash, error) {
	txid, err := chainhash.NewHashFromStr(value)
	if err != nil {
		return nil, fmt.Errorf("invalid txid %q: %w", value, err)
	}
	return txid, nil
}

// parseAmount parses a satoshi or BTC amount argument.
func parseAmount(value string) (btcutil.Amount, error) {
	var amount cfgutil.AmountFlag
	if err := amount.UnmarshalFlag(value); err != nil {
		return 0, err
	}
	return amount.Amount, nil
}

// parseInput parses a txid:index outpoint.
func parseInput(value string) (txstore.TxInput, error) {
	txidStr, indexStr, ok := strings.Cut(value, ":")
	if !ok {
		return txstore.TxInput{}, fmt.Errorf("invalid input %q, want "+
			"txid:index", value)
	}
	txid, err := parseTxid(txidStr)
	if err != nil {
		return txstore.TxInput{}, err
	}
	index, err := strconv.ParseUint(indexStr, 10, 32)
	if err != nil {
		return txstore.TxInput{}, fmt.Errorf("invalid input index "+
			"%q: %w", indexStr, err)
	}
	return txstore.TxInput{Hash: *txid, Index: uint32(index)}, nil
}

// parseOutput parses an address:amount payment.
func parseOutput(s *txstore.Store, value string) (*wire.TxOut, error) {
	i := strings.LastIndex(value, ":")
	if i < 0 {
		return nil, fmt.Errorf("invalid output %q, want "+
			"address:amount", value)
	}
	addr, err := s.DecodeAddress(value[:i])
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(value[i+1:])
	if err != nil {
		return nil, err
	}
	return s.PayToAddrOutput(addr, amount)
}

// parseOutputs parses every address:amount payment.
func parseOutputs(s *txstore.Store, values []string) ([]*wire.TxOut,
	error) {

	outputs := make([]*wire.TxOut, 0, len(values))
	for _, value := range values {
		out, err := parseOutput(s, value)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// txFlags are the funding options of commands that build and publish a
// transaction.
type txFlags struct {
	Change   string   `long:"change" description:"Change address, defaults to the address of the first key"`
	Outputs  []string `long:"output" description:"Extra address:amount payment, may be repeated"`
	LockTime uint32   `long:"locktime" description:"Transaction lock time"`
}

// txOptions converts the change flag.
func (f *txFlags) txOptions(s *txstore.Store) (txstore.TxOptions, error) {
	var opts txstore.TxOptions
	if f.Change == "" {
		return opts, nil
	}
	addr, err := s.DecodeAddress(f.Change)
	if err != nil {
		return opts, err
	}
	opts.ChangeAddress = fn.Some(addr)
	return opts, nil
}

// storeOptions converts every flag.
func (f *txFlags) storeOptions(s *txstore.Store) (txstore.StoreOptions,
	error) {

	txOpts, err := f.txOptions(s)
	if err != nil {
		return txstore.StoreOptions{}, err
	}
	outputs, err := parseOutputs(s, f.Outputs)
	if err != nil {
		return txstore.StoreOptions{}, err
	}
	return txstore.StoreOptions{
		TxOptions: txOpts,
		Outputs:   outputs,
		LockTime:  f.LockTime,
	}, nil
}

// println writes a result line.
func (a *app) println(v any) error {
	_, err := fmt.Fprintln(a.out, v)
	return err
}

// printTx writes the hex serialization of tx.
func (a *app) printTx(tx *wire.MsgTx) error {
	rawTx, err := txstore.SerializeTx(tx)
	if err != nil {
		return err
	}
	return a.println(rawTx)
}

// printJSON writes v as indented JSON.
func (a *app) printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return a.println(string(out))
}
