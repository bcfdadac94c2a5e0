// Copyright (c) 2016-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txauthor provides transaction funding and signing code for data
// carrying transactions.
package txauthor

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// ErrUnsupportedScript is returned when asked to sign an input whose previous
// output is not a legacy script.
var ErrUnsupportedScript = errors.New("only legacy pay-to-pubkey-hash " +
	"inputs can be signed")

// SumOutputValues sums up the list of TxOuts and returns an Amount.
func SumOutputValues(outputs []*wire.TxOut) (totalOutput btcutil.Amount) {
	for _, txOut := range outputs {
		totalOutput += btcutil.Amount(txOut.Value)
	}
	return totalOutput
}

// InputSourceError describes the failure to provide enough input value from
// unspent transaction outputs to meet a target amount.
type InputSourceError interface {
	error
	InputSourceError()
}

// AuthoredTx holds the state of a newly-created transaction and the change
// output (if one was added).
type AuthoredTx struct {
	Tx              *wire.MsgTx
	PrevScripts     [][]byte
	PrevInputValues []btcutil.Amount
	TotalInput      btcutil.Amount
	ChangeIndex     int // negative if no change
}

// ChangeSource provides the change output script and the policy for small
// change amounts.
type ChangeSource struct {
	// NewScript is a closure that produces the change output script.
	NewScript func() ([]byte, error)

	// DustLimit is compared against the change amount when FoldDust is
	// set.
	DustLimit btcutil.Amount

	// FoldDust leaves change below DustLimit to the fee instead of
	// adding an output for it.
	FoldDust bool
}

// ChangeOutput returns the output paying total minus required to script.
// The output is created even when its value is dust or zero.
func ChangeOutput(total, required btcutil.Amount,
	script []byte) (*wire.TxOut, error) {

	if total < required {
		return nil, &InsufficientFundsError{
			Required:  required,
			Available: total,
		}
	}
	return wire.NewTxOut(int64(total-required), script), nil
}

// NewUnsignedTransaction creates an unsigned transaction paying to the given
// outputs plus a flat fee. Inputs are chosen with SelectInputs and one change
// output receiving the surplus is appended after the outputs.
//
// If the spendables cannot pay for every output and the fee, an
// *InsufficientFundsError is returned.
func NewUnsignedTransaction(outputs []*wire.TxOut, fee btcutil.Amount,
	spendables []Spendable, changeSource *ChangeSource) (*AuthoredTx, error) {

	if fee < 0 {
		return nil, fmt.Errorf("negative fee %v", fee)
	}

	required := SumOutputValues(outputs) + fee
	selected, total := SelectInputs(spendables, required)
	if total < required {
		return nil, &InsufficientFundsError{
			Required:  required,
			Available: total,
		}
	}

	txIn := make([]*wire.TxIn, 0, len(selected))
	inputValues := make([]btcutil.Amount, 0, len(selected))
	scripts := make([][]byte, 0, len(selected))
	for _, input := range selected {
		outPoint := input.OutPoint
		txIn = append(txIn, wire.NewTxIn(&outPoint, nil, nil))
		inputValues = append(inputValues, input.Value)
		scripts = append(scripts, input.PkScript)
	}

	l := len(outputs)
	unsignedTransaction := &wire.MsgTx{
		Version:  wire.TxVersion,
		TxIn:     txIn,
		TxOut:    outputs[:l:l],
		LockTime: 0,
	}

	changeIndex := -1
	change := total - required
	if !changeSource.FoldDust || change >= changeSource.DustLimit {
		changeScript, err := changeSource.NewScript()
		if err != nil {
			return nil, err
		}
		changeOutput, err := ChangeOutput(total, required, changeScript)
		if err != nil {
			return nil, err
		}
		unsignedTransaction.TxOut = append(
			unsignedTransaction.TxOut, changeOutput,
		)
		changeIndex = l
	}

	return &AuthoredTx{
		Tx:              unsignedTransaction,
		PrevScripts:     scripts,
		PrevInputValues: inputValues,
		TotalInput:      total,
		ChangeIndex:     changeIndex,
	}, nil
}

// SecretsSource provides private keys and redeem scripts necessary for
// constructing transaction input signatures.  Secrets are looked up by the
// corresponding Address for the previous output script.  Addresses for lookup
// are created using the source's blockchain parameters and means a single
// SecretsSource can only manage secrets for a single chain.
type SecretsSource interface {
	txscript.KeyDB
	txscript.ScriptDB
	ChainParams() *chaincfg.Params
}

// AddAllInputScripts modifies a transaction by adding input scripts for each
// input.  Previous output scripts being redeemed by each input are passed in
// prevPkScripts and the slice length must match the number of inputs.
// Private keys are looked up using a SecretsSource based on the previous
// output script. Only legacy scripts are supported.
func AddAllInputScripts(tx *wire.MsgTx, prevPkScripts [][]byte,
	secrets SecretsSource) error {

	inputs := tx.TxIn
	chainParams := secrets.ChainParams()

	if len(inputs) != len(prevPkScripts) {
		return errors.New("tx.TxIn and prevPkScripts slices must " +
			"have equal length")
	}

	for i := range inputs {
		pkScript := prevPkScripts[i]

		switch {
		case txscript.IsPayToScriptHash(pkScript),
			txscript.IsPayToWitnessPubKeyHash(pkScript),
			txscript.IsPayToWitnessScriptHash(pkScript),
			txscript.IsPayToTaproot(pkScript):

			return fmt.Errorf("input %d: %w", i, ErrUnsupportedScript)
		}

		sigScript := inputs[i].SignatureScript
		script, err := txscript.SignTxOutput(chainParams, tx, i,
			pkScript, txscript.SigHashAll, secrets, secrets,
			sigScript)
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		inputs[i].SignatureScript = script
	}

	return nil
}

// AddAllInputScripts modifies an authored transaction by adding inputs scripts
// for each input of an authored transaction.  Private keys and redeem scripts
// are looked up using a SecretsSource based on the previous output script.
func (tx *AuthoredTx) AddAllInputScripts(secrets SecretsSource) error {
	return AddAllInputScripts(tx.Tx, tx.PrevScripts, secrets)
}

// TXPrevOutFetcher creates a txscript.PrevOutFetcher from a given slice of
// previous pk scripts and input values.
func TXPrevOutFetcher(tx *wire.MsgTx, prevPkScripts [][]byte,
	inputValues []btcutil.Amount) (*txscript.MultiPrevOutFetcher, error) {

	if len(tx.TxIn) != len(prevPkScripts) {
		return nil, errors.New("tx.TxIn and prevPkScripts slices " +
			"must have equal length")
	}
	if len(tx.TxIn) != len(inputValues) {
		return nil, errors.New("tx.TxIn and inputValues slices " +
			"must have equal length")
	}

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for idx, txin := range tx.TxIn {
		fetcher.AddPrevOut(txin.PreviousOutPoint, &wire.TxOut{
			Value:    int64(inputValues[idx]),
			PkScript: prevPkScripts[idx],
		})
	}

	return fetcher, nil
}

// ValidateSignedTx runs the script engine over every input of a signed
// transaction.
func ValidateSignedTx(tx *wire.MsgTx, prevScripts [][]byte,
	inputValues []btcutil.Amount) error {

	inputFetcher, err := TXPrevOutFetcher(tx, prevScripts, inputValues)
	if err != nil {
		return err
	}
	hashCache := txscript.NewTxSigHashes(tx, inputFetcher)

	for i, prevScript := range prevScripts {
		vm, err := txscript.NewEngine(
			prevScript, tx, i, txscript.StandardVerifyFlags, nil,
			hashCache, int64(inputValues[i]), inputFetcher,
		)
		if err != nil {
			return fmt.Errorf("cannot create script engine: %w", err)
		}
		if err := vm.Execute(); err != nil {
			return fmt.Errorf("cannot validate input %d: %w", i, err)
		}
	}

	return nil
}
