// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txstore stores data in and retrieves data from Bitcoin
// transactions. It assembles, funds, signs and publishes the transactions
// through a chain service.
package txstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/chain"
	"github.com/btcsuite/btctxstore/txauthor"
	"github.com/btcsuite/btctxstore/txrules"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// DefaultMaxConcurrentFetches bounds the previous transactions SignTx
// fetches at the same time.
const DefaultMaxConcurrentFetches = 8

// Config holds the settings of a Store.
type Config struct {
	// ChainParams is the network keys and addresses must belong to.
	ChainParams *chaincfg.Params

	// Chain is the chain service. It may be nil, in which case only the
	// offline operations are available.
	Chain chain.Interface

	// DryRun builds and signs transactions as usual but never broadcasts
	// them.
	DryRun bool

	// Rules is the transaction policy.
	Rules txrules.Config

	// MaxConcurrentFetches bounds concurrent previous transaction
	// lookups. Zero selects DefaultMaxConcurrentFetches.
	MaxConcurrentFetches int
}

// validate checks the required config options are set.
func (c *Config) validate() error {
	if c == nil {
		return errors.New("missing store config")
	}
	if c.ChainParams == nil {
		return errors.New("missing chain params config")
	}
	if c.MaxConcurrentFetches < 0 {
		return fmt.Errorf("max concurrent fetches must not be "+
			"negative: %d", c.MaxConcurrentFetches)
	}
	return c.Rules.Validate()
}

// Store is the entry point for every transaction and data operation. It
// holds no state besides its configuration and is safe for concurrent use
// if the chain service is.
type Store struct {
	cfg Config
}

// New creates a store from cfg.
func New(cfg *Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Store{cfg: *cfg}
	if s.cfg.MaxConcurrentFetches == 0 {
		s.cfg.MaxConcurrentFetches = DefaultMaxConcurrentFetches
	}

	return s, nil
}

// ChainParams returns the network of the store.
func (s *Store) ChainParams() *chaincfg.Params {
	return s.cfg.ChainParams
}

// Rules returns the transaction policy of the store.
func (s *Store) Rules() txrules.Config {
	return s.cfg.Rules
}

// chainService returns the chain service or ErrNoChainService.
func (s *Store) chainService() (chain.Interface, error) {
	if s.cfg.Chain == nil {
		return nil, storeError(ErrNoChainService, "operation needs a "+
			"chain service", nil)
	}
	return s.cfg.Chain, nil
}

// TxInput references a previous output to spend.
type TxInput struct {
	Hash  chainhash.Hash
	Index uint32
}

// TxOptions are the optional parameters of funding a transaction.
type TxOptions struct {
	// ChangeAddress receives the change. Defaults to the address of the
	// first key.
	ChangeAddress fn.Option[btcutil.Address]

	// Fee is the flat fee. Defaults to the fee of the store's rules.
	Fee fn.Option[btcutil.Amount]

	// SkipSigning leaves the added inputs unsigned.
	SkipSigning bool
}

// StoreOptions are the optional parameters of the Store* operations.
type StoreOptions struct {
	TxOptions

	// Outputs are extra outputs paid by the transaction, placed before
	// the data outputs.
	Outputs []*wire.TxOut

	// LockTime is the lock time of the transaction.
	LockTime uint32
}

// CreateTx creates an unsigned transaction spending inputs and paying
// outputs.
func (s *Store) CreateTx(inputs []TxInput, outputs []*wire.TxOut,
	lockTime uint32) *wire.MsgTx {

	tx := wire.NewMsgTx(wire.TxVersion)
	for _, in := range inputs {
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&in.Hash, in.Index),
			nil, nil))
	}
	for _, out := range outputs {
		tx.AddTxOut(out)
	}
	tx.LockTime = lockTime

	return tx
}

// PayToAddrOutput creates an output paying value to addr. Dust payments are
// refused.
func (s *Store) PayToAddrOutput(addr btcutil.Address,
	value btcutil.Amount) (*wire.TxOut, error) {

	if err := s.checkAddress(addr); err != nil {
		return nil, err
	}

	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, storeError(ErrInvalidInput, "unsupported address",
			err)
	}

	out := wire.NewTxOut(int64(value), pkScript)
	if err := txrules.CheckOutput(out, s.cfg.Rules.DustLimit); err != nil {
		return nil, storeError(ErrInvalidInput, fmt.Sprintf("invalid "+
			"output of %v to %v", value, addr), err)
	}

	return out, nil
}

// AddInputs funds tx with outputs of the addresses of wifs. Inputs are
// appended to the existing inputs of tx and a change output is appended
// after its outputs. The inputs are signed unless opts.SkipSigning is set.
//
// The values of inputs tx already has are not known and do not count
// towards the outputs and the fee.
func (s *Store) AddInputs(ctx context.Context, tx *wire.MsgTx,
	wifs []*btcutil.WIF, opts TxOptions) (*wire.MsgTx, error) {

	chainSvc, err := s.chainService()
	if err != nil {
		return nil, err
	}
	if err := checkUnsigned(tx); err != nil {
		return nil, err
	}

	keys, err := newKeyring(wifs, s.cfg.ChainParams)
	if err != nil {
		return nil, err
	}

	fee := opts.Fee.UnwrapOr(s.cfg.Rules.Fee)
	if fee < 0 || fee > btcutil.MaxSatoshi {
		return nil, storeError(ErrInvalidInput, fmt.Sprintf("invalid "+
			"fee %v", fee), nil)
	}

	changeAddr := opts.ChangeAddress.UnwrapOr(keys.defaultAddress())
	if err := s.checkAddress(changeAddr); err != nil {
		return nil, err
	}

	spendables, err := chainSvc.SpendableOutputs(ctx, keys.addresses())
	if err != nil {
		return nil, fmt.Errorf("unable to fetch spendable outputs: %w",
			err)
	}
	spendables = excludeSpent(tx, spendables)

	funded := tx.Copy()
	authored, err := txauthor.NewUnsignedTransaction(
		funded.TxOut, fee, spendables, &txauthor.ChangeSource{
			NewScript: func() ([]byte, error) {
				return txscript.PayToAddrScript(changeAddr)
			},
			DustLimit: s.cfg.Rules.DustLimit,
			FoldDust:  s.cfg.Rules.FoldDustChange,
		},
	)
	if err != nil {
		return nil, err
	}

	funded.TxIn = append(funded.TxIn, authored.Tx.TxIn...)
	funded.TxOut = authored.Tx.TxOut

	log.Debugf("Funded transaction with %d inputs worth %v, fee %v",
		len(authored.Tx.TxIn), authored.TotalInput, fee)

	if opts.SkipSigning {
		return funded, nil
	}

	return s.SignTx(ctx, funded, wifs)
}

// Publish broadcasts a fully signed transaction and returns its id. In dry
// run mode nothing is broadcast.
func (s *Store) Publish(ctx context.Context,
	tx *wire.MsgTx) (*chainhash.Hash, error) {

	if err := checkSigned(tx); err != nil {
		return nil, err
	}

	txid := tx.TxHash()
	if s.cfg.DryRun {
		log.Infof("Dry run, not broadcasting transaction %v", txid)
		return &txid, nil
	}

	chainSvc, err := s.chainService()
	if err != nil {
		return nil, err
	}
	if err := chainSvc.Broadcast(ctx, tx); err != nil {
		return nil, fmt.Errorf("unable to broadcast %v: %w", txid, err)
	}

	log.Infof("Published transaction %v", txid)

	return &txid, nil
}

// Send pays outputs with funds of wifs and publishes the transaction.
func (s *Store) Send(ctx context.Context, wifs []*btcutil.WIF,
	outputs []*wire.TxOut, opts TxOptions) (*chainhash.Hash, error) {

	opts.SkipSigning = false
	tx, err := s.AddInputs(ctx, s.CreateTx(nil, outputs, 0), wifs, opts)
	if err != nil {
		return nil, err
	}
	return s.Publish(ctx, tx)
}

// RetrieveTx fetches a transaction from the chain service.
func (s *Store) RetrieveTx(ctx context.Context,
	txid *chainhash.Hash) (*wire.MsgTx, error) {

	chainSvc, err := s.chainService()
	if err != nil {
		return nil, err
	}
	return chainSvc.GetTransaction(ctx, txid)
}

// RetrieveUTXOs lists the unspent outputs of addrs.
func (s *Store) RetrieveUTXOs(ctx context.Context,
	addrs []btcutil.Address) ([]txauthor.Spendable, error) {

	chainSvc, err := s.chainService()
	if err != nil {
		return nil, err
	}
	for _, addr := range addrs {
		if err := s.checkAddress(addr); err != nil {
			return nil, err
		}
	}
	return chainSvc.SpendableOutputs(ctx, addrs)
}

// Confirms returns the number of confirmations of txid, zero if it is not
// confirmed or unknown.
func (s *Store) Confirms(ctx context.Context,
	txid *chainhash.Hash) (int64, error) {

	chainSvc, err := s.chainService()
	if err != nil {
		return 0, err
	}
	return chainSvc.Confirmations(ctx, txid)
}

// checkAddress checks that addr belongs to the store's network.
func (s *Store) checkAddress(addr btcutil.Address) error {
	if addr == nil {
		return storeError(ErrInvalidInput, "missing address", nil)
	}
	if !addr.IsForNet(s.cfg.ChainParams) {
		return storeError(ErrInvalidInput, fmt.Sprintf("address %v is "+
			"not for %v", addr, s.cfg.ChainParams.Name), nil)
	}
	return nil
}

// isSignedInput reports whether in carries a signature.
func isSignedInput(in *wire.TxIn) bool {
	return len(in.SignatureScript) > 0 || len(in.Witness) > 0
}

// checkUnsigned returns ErrSignedTx if any input of tx is signed.
func checkUnsigned(tx *wire.MsgTx) error {
	if tx == nil {
		return storeError(ErrInvalidInput, "missing transaction", nil)
	}
	for i, in := range tx.TxIn {
		if isSignedInput(in) {
			return storeError(ErrSignedTx, fmt.Sprintf("input %d "+
				"is already signed", i), nil)
		}
	}
	return nil
}

// checkSigned returns ErrUnsignedTx if tx has no inputs or any unsigned
// input.
func checkSigned(tx *wire.MsgTx) error {
	if tx == nil {
		return storeError(ErrInvalidInput, "missing transaction", nil)
	}
	if len(tx.TxIn) == 0 {
		return storeError(ErrUnsignedTx, "transaction has no inputs",
			nil)
	}
	for i, in := range tx.TxIn {
		if !isSignedInput(in) {
			return storeError(ErrUnsignedTx, fmt.Sprintf("input %d "+
				"is not signed", i), nil)
		}
	}
	return nil
}

// excludeSpent drops the spendables tx already spends.
func excludeSpent(tx *wire.MsgTx,
	spendables []txauthor.Spendable) []txauthor.Spendable {

	if len(tx.TxIn) == 0 {
		return spendables
	}

	spent := make(map[wire.OutPoint]struct{}, len(tx.TxIn))
	for _, in := range tx.TxIn {
		spent[in.PreviousOutPoint] = struct{}{}
	}

	unspent := make([]txauthor.Spendable, 0, len(spendables))
	for _, s := range spendables {
		if _, ok := spent[s.OutPoint]; !ok {
			unspent = append(unspent, s)
		}
	}
	return unspent
}
