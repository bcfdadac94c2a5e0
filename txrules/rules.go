// Copyright (c) 2016-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txrules

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

const (
	// DefaultDustLimit is the value given to hash160 data outputs and the
	// smallest output value considered spendable.
	DefaultDustLimit btcutil.Amount = 548

	// DefaultFee is the flat fee paid by every transaction the store
	// builds when the caller does not supply one.
	DefaultFee btcutil.Amount = 10000

	// DefaultMaxOutputs is the maximum number of outputs in a single
	// splitter transaction.
	DefaultMaxOutputs = 100

	// MaxNulldataSize is the largest payload a nulldata output may carry.
	MaxNulldataSize = 40

	// Hash160DataSize is the exact payload size of a hash160 data output.
	Hash160DataSize = 20

	// MaxBlobSize is the largest data blob that fits the two byte length
	// prefix.
	MaxBlobSize = 0xffff
)

// Transaction rule violations
var (
	ErrAmountNegative   = errors.New("transaction output amount is negative")
	ErrAmountExceedsMax = errors.New("transaction output amount exceeds maximum value")
	ErrOutputIsDust     = errors.New("transaction output is dust")
)

// Config violations
var (
	ErrInvalidDustLimit  = errors.New("dust limit must be positive")
	ErrFeeNegative       = errors.New("fee must not be negative")
	ErrInvalidMaxOutputs = errors.New("max outputs must be at least one")
)

// Config is the set of policy values threaded through transaction
// construction.
type Config struct {
	// DustLimit is the value of hash160 data outputs and the threshold
	// below which outputs are dust.
	DustLimit btcutil.Amount

	// Fee is the flat fee used when a call does not specify one.
	Fee btcutil.Amount

	// MaxOutputs bounds the outputs of each splitter batch.
	MaxOutputs int

	// FoldDustChange drops a change output worth less than DustLimit and
	// leaves its value to the miner. When false a change output is always
	// added, even if it is dust or zero.
	FoldDustChange bool
}

// DefaultConfig returns the default policy.
func DefaultConfig() Config {
	return Config{
		DustLimit:  DefaultDustLimit,
		Fee:        DefaultFee,
		MaxOutputs: DefaultMaxOutputs,
	}
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	switch {
	case c.DustLimit <= 0:
		return fmt.Errorf("%w: %v", ErrInvalidDustLimit, c.DustLimit)
	case c.DustLimit > btcutil.MaxSatoshi:
		return fmt.Errorf("dust limit: %w", ErrAmountExceedsMax)
	case c.Fee < 0:
		return fmt.Errorf("%w: %v", ErrFeeNegative, c.Fee)
	case c.Fee > btcutil.MaxSatoshi:
		return fmt.Errorf("fee: %w", ErrAmountExceedsMax)
	case c.MaxOutputs < 1:
		return fmt.Errorf("%w: %d", ErrInvalidMaxOutputs, c.MaxOutputs)
	}
	return nil
}

// IsDustAmount determines whether an output value is below the dust limit.
func IsDustAmount(amount, dustLimit btcutil.Amount) bool {
	return amount < dustLimit
}

// IsDustOutput determines whether a transaction output is considered dust.
func IsDustOutput(output *wire.TxOut, dustLimit btcutil.Amount) bool {
	// Unspendable outputs which solely carry data are not checked for dust.
	if txscript.GetScriptClass(output.PkScript) == txscript.NullDataTy {
		return false
	}

	// All other unspendable outputs are considered dust.
	if txscript.IsUnspendable(output.PkScript) {
		return true
	}

	return IsDustAmount(btcutil.Amount(output.Value), dustLimit)
}

// CheckOutput performs simple consensus and policy tests on a transaction
// output.
func CheckOutput(output *wire.TxOut, dustLimit btcutil.Amount) error {
	if output.Value < 0 {
		return ErrAmountNegative
	}
	if output.Value > btcutil.MaxSatoshi {
		return ErrAmountExceedsMax
	}
	if IsDustOutput(output, dustLimit) {
		return ErrOutputIsDust
	}
	return nil
}
