// Copyright (c) 2015-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

// AmountFlag embeds a btcutil.Amount and implements the flags.Marshaler and
// Unmarshaler interfaces so it can be used as a config struct field.
//
// A plain integer is read as satoshis. A value with a " BTC" suffix or a
// decimal point is read as bitcoin.
type AmountFlag struct {
	btcutil.Amount
}

// NewAmountFlag creates an AmountFlag with a default btcutil.Amount.
func NewAmountFlag(defaultValue btcutil.Amount) *AmountFlag {
	return &AmountFlag{defaultValue}
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (a *AmountFlag) MarshalFlag() (string, error) {
	return strconv.FormatInt(int64(a.Amount), 10), nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface.
func (a *AmountFlag) UnmarshalFlag(value string) error {
	value = strings.TrimSpace(value)

	btc, isBTC := strings.CutSuffix(value, "BTC")
	if isBTC || strings.Contains(value, ".") {
		valueF64, err := strconv.ParseFloat(strings.TrimSpace(btc), 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", value, err)
		}
		amount, err := btcutil.NewAmount(valueF64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", value, err)
		}
		if amount < 0 {
			return fmt.Errorf("negative amount %q", value)
		}
		a.Amount = amount
		return nil
	}

	sats, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", value, err)
	}
	if sats < 0 || sats > btcutil.MaxSatoshi {
		return fmt.Errorf("amount %q out of range", value)
	}
	a.Amount = btcutil.Amount(sats)
	return nil
}
