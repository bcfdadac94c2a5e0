// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package msgsign

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// orderAsFieldVal is the group order N as a field element. It is added to R
// when the recovery id says the x coordinate overflowed the order.
var orderAsFieldVal = func() secp256k1.FieldVal {
	var f secp256k1.FieldVal
	f.SetByteSlice(secp256k1.Params().N.Bytes())
	return f
}()

// parseRS extracts R and S from a recoverable signature. Both must be in
// [1, N-1].
func parseRS(sig []byte) (r, s secp256k1.ModNScalar, err error) {
	if len(sig) != SignatureSize {
		return r, s, ErrInvalidSignatureLength
	}
	if overflow := r.SetByteSlice(sig[1:33]); overflow || r.IsZero() {
		return r, s, ErrPointRecoveryFailed
	}
	if overflow := s.SetByteSlice(sig[33:65]); overflow || s.IsZero() {
		return r, s, ErrPointRecoveryFailed
	}
	return r, s, nil
}

// recoverPubKey performs public key recovery as described in SEC1 section
// 4.1.6. The metadata byte selects which of the candidate points R the
// signature was made with, and the key is Q = r^-1 (sR - eG).
func recoverPubKey(sig, digest []byte) (*btcec.PublicKey, bool, error) {
	if len(sig) != SignatureSize {
		return nil, false, ErrInvalidSignatureLength
	}
	meta := sig[0]
	if meta < compactSigMagicOffset || meta > maxMetadataByte {
		return nil, false, ErrInvalidSignatureParameter
	}
	recid := (meta - compactSigMagicOffset) & 3
	compressed := (meta-compactSigMagicOffset)&compactSigCompPubKey != 0

	r, s, err := parseRS(sig)
	if err != nil {
		return nil, false, err
	}

	// x = r + (recid / 2) * N. The sum must stay below the field prime.
	var fieldR secp256k1.FieldVal
	if overflow := fieldR.SetByteSlice(sig[1:33]); overflow {
		return nil, false, ErrPointRecoveryFailed
	}
	if recid&2 != 0 {
		if fieldR.IsGtOrEqPrimeMinusOrder() {
			return nil, false, ErrPointRecoveryFailed
		}
		fieldR.Add(&orderAsFieldVal)
	}
	fieldR.Normalize()

	// The low bit of the recovery id is the parity of R's y coordinate.
	var point secp256k1.JacobianPoint
	point.X.Set(&fieldR)
	if !secp256k1.DecompressY(&point.X, recid&1 == 1, &point.Y) {
		return nil, false, ErrPointRecoveryFailed
	}
	point.Y.Normalize()
	point.Z.SetInt(1)

	// e is the digest interpreted as a scalar, reduced mod N.
	var e secp256k1.ModNScalar
	e.SetByteSlice(digest)

	// u1 = -e/r, u2 = s/r, Q = u1*G + u2*R.
	w := new(secp256k1.ModNScalar).InverseValNonConst(&r)
	u1 := new(secp256k1.ModNScalar).Mul2(&e, w).Negate()
	u2 := new(secp256k1.ModNScalar).Mul2(&s, w)

	var u1G, u2R, q secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(u1, &u1G)
	secp256k1.ScalarMultNonConst(u2, &point, &u2R)
	secp256k1.AddNonConst(&u1G, &u2R, &q)

	if (q.X.IsZero() && q.Y.IsZero()) || q.Z.IsZero() {
		return nil, false, ErrPointRecoveryFailed
	}
	q.ToAffine()

	return secp256k1.NewPublicKey(&q.X, &q.Y), compressed, nil
}
