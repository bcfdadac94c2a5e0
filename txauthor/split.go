// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txauthor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
)

// Split parameter errors.
var (
	ErrSplitLimit        = errors.New("split limit out of range")
	ErrSplitFee          = errors.New("split fee out of range")
	ErrSplitOutputs      = errors.New("split needs at least one output")
	ErrSplitConservation = errors.New("split outputs do not add up")
)

// SplitBatch is one planned splitter transaction: the inputs it spends and
// the values of its outputs, all paid to the same address.
type SplitBatch struct {
	Inputs       []Spendable
	OutputValues []btcutil.Amount
	Fee          btcutil.Amount
}

// TotalInput returns the value spent by the batch.
func (b *SplitBatch) TotalInput() btcutil.Amount {
	return SumSpendables(b.Inputs)
}

// Transaction builds the unsigned transaction for the batch, paying every
// output to pkScript.
func (b *SplitBatch) Transaction(pkScript []byte) *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	for _, input := range b.Inputs {
		outPoint := input.OutPoint
		tx.AddTxIn(wire.NewTxIn(&outPoint, nil, nil))
	}
	for _, value := range b.OutputValues {
		tx.AddTxOut(wire.NewTxOut(int64(value), pkScript))
	}
	return tx
}

// PrevScripts returns the previous output scripts of the batch inputs in
// input order.
func (b *SplitBatch) PrevScripts() ([][]byte, []btcutil.Amount) {
	scripts := make([][]byte, len(b.Inputs))
	values := make([]btcutil.Amount, len(b.Inputs))
	for i, input := range b.Inputs {
		scripts[i] = input.PkScript
		values[i] = input.Value
	}
	return scripts, values
}

// PlanSplit plans the next splitter batch. Only spendables worth more than
// both the fee and the limit are considered. When those are together worth
// less than fee + 2*limit there is nothing useful to split and a nil batch is
// returned.
//
// Otherwise the smallest eligible spendables are taken until they cover
// limit*maxOutputs + fee or run out. What is left after the fee is divided
// evenly over min(maxOutputs, (total-fee)/limit) outputs and the division
// remainder goes to the first output.
//
// The returned remaining slice is spendables without the inputs the batch
// spends.
func PlanSplit(spendables []Spendable, limit, fee btcutil.Amount,
	maxOutputs int) (*SplitBatch, []Spendable, error) {

	switch {
	case limit <= 0 || limit > btcutil.MaxSatoshi:
		return nil, nil, fmt.Errorf("%w: %v", ErrSplitLimit, limit)
	case fee < 0 || fee > btcutil.MaxSatoshi:
		return nil, nil, fmt.Errorf("%w: %v", ErrSplitFee, fee)
	case maxOutputs < 1:
		return nil, nil, fmt.Errorf("%w: %d", ErrSplitOutputs, maxOutputs)
	}

	eligible := make([]Spendable, 0, len(spendables))
	for _, s := range spendables {
		if s.Value > fee && s.Value > limit {
			eligible = append(eligible, s)
		}
	}
	if SumSpendables(eligible) < fee+2*limit {
		return nil, spendables, nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Value < eligible[j].Value
	})

	// The target saturates instead of overflowing for large output counts.
	target := btcutil.Amount(math.MaxInt64)
	if btcutil.Amount(maxOutputs) <= (target-fee)/limit {
		target = limit*btcutil.Amount(maxOutputs) + fee
	}
	var (
		inputs []Spendable
		total  btcutil.Amount
	)
	for _, s := range eligible {
		inputs = append(inputs, s)
		total += s.Value
		if total >= target {
			break
		}
	}

	outputsTotal := total - fee
	count := int64(outputsTotal / limit)
	if count > int64(maxOutputs) {
		count = int64(maxOutputs)
	}
	if count < 1 {
		return nil, nil, fmt.Errorf("%w: %v left after fee with "+
			"limit %v", ErrSplitConservation, outputsTotal, limit)
	}

	value := outputsTotal / btcutil.Amount(count)
	values := make([]btcutil.Amount, count)
	for i := range values {
		values[i] = value
	}
	values[0] += outputsTotal - value*btcutil.Amount(count)

	var sum btcutil.Amount
	for _, v := range values {
		sum += v
	}
	if sum != outputsTotal {
		return nil, nil, fmt.Errorf("%w: %v != %v",
			ErrSplitConservation, sum, outputsTotal)
	}

	taken := make(map[wire.OutPoint]struct{}, len(inputs))
	for _, input := range inputs {
		taken[input.OutPoint] = struct{}{}
	}
	remaining := make([]Spendable, 0, len(spendables)-len(inputs))
	for _, s := range spendables {
		if _, ok := taken[s.OutPoint]; !ok {
			remaining = append(remaining, s)
		}
	}

	return &SplitBatch{
		Inputs:       inputs,
		OutputValues: values,
		Fee:          fee,
	}, remaining, nil
}
