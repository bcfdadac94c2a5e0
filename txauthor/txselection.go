// Copyright (c) 2016-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// Spendable is an unspent output that one of the signing keys controls.
type Spendable struct {
	OutPoint wire.OutPoint
	Value    btcutil.Amount
	PkScript []byte
}

// String returns the outpoint and value for logging.
func (s Spendable) String() string {
	return fmt.Sprintf("%v (%v)", s.OutPoint, s.Value)
}

// SumSpendables sums up the values of spendables.
func SumSpendables(spendables []Spendable) (total btcutil.Amount) {
	for _, s := range spendables {
		total += s.Value
	}
	return total
}

// InsufficientFundsError is returned when the selected inputs cannot cover
// the outputs plus the fee. Both amounts are reported so callers can tell the
// user how much is missing.
type InsufficientFundsError struct {
	Required  btcutil.Amount
	Available btcutil.Amount
}

// InputSourceError marks InsufficientFundsError as an InputSourceError.
func (*InsufficientFundsError) InputSourceError() {}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds available to construct "+
		"transaction: required %v, available %v", e.Required,
		e.Available)
}

// SelectInputs picks spendables largest first until their total reaches
// target. It never fails: when everything together is not enough, all
// spendables are returned and the caller compares the total with target.
func SelectInputs(spendables []Spendable,
	target btcutil.Amount) ([]Spendable, btcutil.Amount) {

	sorted := make([]Spendable, len(spendables))
	copy(sorted, spendables)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})

	var total btcutil.Amount
	selected := make([]Spendable, 0, len(sorted))
	for _, s := range sorted {
		if total >= target {
			break
		}
		selected = append(selected, s)
		total += s.Value
	}

	return selected, total
}
