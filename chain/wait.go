// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// DefaultPollJitter is the jitter scaler used by WaitForConfirmations.
const DefaultPollJitter = 0.2

// ErrInvalidPollInterval is returned for a non-positive poll interval or a
// negative jitter.
var ErrInvalidPollInterval = errors.New("invalid poll interval")

// calculateMinMax calculates the min and max poll delays. The jitter is
// calculated as,
// - min: duration * (1 - scaler) or 0 if scaler > 1,
// - max: duration * (1 + scaler).
func calculateMinMax(d time.Duration, scaler float64) (int64, int64, error) {
	if d <= 0 || scaler < 0 {
		return 0, 0, ErrInvalidPollInterval
	}

	min := math.Floor(float64(d) * (1 - scaler))
	max := math.Ceil(float64(d) * (1 + scaler))

	// If the scaler is greater than 1, we would use a zero min instead of
	// a negative one.
	if 1-scaler < 0 {
		min = 0
	}

	return int64(min), int64(max), nil
}

// jitterDelay returns a random duration in [min, max).
func jitterDelay(min, max int64) time.Duration {
	if max == min {
		return time.Duration(min)
	}

	return time.Duration(rand.Int64N(max-min) + min) //nolint:gosec
}

// WaitForConfirmations polls svc until txid has at least target
// confirmations and returns the last count seen. Polls are spaced interval
// apart with DefaultPollJitter applied so several waiters do not hit the
// back end in lockstep.
func WaitForConfirmations(ctx context.Context, svc Interface,
	txid *chainhash.Hash, target int64, interval time.Duration) (int64,
	error) {

	min, max, err := calculateMinMax(interval, DefaultPollJitter)
	if err != nil {
		return 0, err
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
		case <-ctx.Done():
			return 0, ctx.Err()
		}

		confs, err := svc.Confirmations(ctx, txid)
		if err != nil {
			return 0, err
		}
		log.Debugf("Transaction %v has %d/%d confirmations", txid, confs,
			target)

		if confs >= target {
			return confs, nil
		}

		timer.Reset(jitterDelay(min, max))
	}
}
