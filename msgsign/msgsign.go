// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package msgsign implements Bitcoin signed messages: the domain separated
// message digest, 65 byte recoverable signatures, and verification against
// a pay-to-pubkey-hash address using only the signature and the message.
package msgsign

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const (
	// SignatureSize is the size of a recoverable signature: one metadata
	// byte followed by the 32 byte R and S values.
	SignatureSize = 65

	// signedMessagePrefix is hashed in front of every message so a
	// signature can never be replayed as a transaction signature.
	signedMessagePrefix = "Bitcoin Signed Message:\n"

	// compactSigMagicOffset is the lowest valid metadata byte.
	compactSigMagicOffset = 27

	// compactSigCompPubKey is added to the metadata byte when the signer
	// address uses the compressed public key.
	compactSigCompPubKey = 4

	maxMetadataByte = compactSigMagicOffset + compactSigCompPubKey + 3
)

// Signature verification failures. Verify only reports success or failure,
// these are what the internal check distinguishes.
var (
	ErrInvalidSignatureLength    = errors.New("signature must be 65 bytes")
	ErrInvalidSignatureParameter = errors.New("signature metadata byte out of range")
	ErrPointRecoveryFailed       = errors.New("unable to recover public key point")
	ErrECDSAVerifyFailed         = errors.New("ecdsa verification failed")
	ErrAddressMismatch           = errors.New("recovered address does not match")
)

// ErrSignatureEncodingFailed is returned by Sign when no recovery id yields
// the signer's own address.
var ErrSignatureEncodingFailed = errors.New("unable to encode recoverable signature")

// MessageDigest returns the double SHA256 digest of data framed with the
// signed message prefix and the varint encoded data length.
func MessageDigest(data []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(signedMessagePrefix) + wire.MaxVarIntPayload + len(data) + 1)

	// Writes to a bytes.Buffer cannot fail.
	_ = wire.WriteVarString(&buf, 0, signedMessagePrefix)
	_ = wire.WriteVarInt(&buf, 0, uint64(len(data)))
	buf.Write(data)

	return chainhash.DoubleHashB(buf.Bytes())
}

// PubKeyAddress returns the pay-to-pubkey-hash address of pub, hashing
// either its compressed or its uncompressed serialization.
func PubKeyAddress(pub *btcec.PublicKey, compressed bool,
	params *chaincfg.Params) (*btcutil.AddressPubKeyHash, error) {

	var serialized []byte
	if compressed {
		serialized = pub.SerializeCompressed()
	} else {
		serialized = pub.SerializeUncompressed()
	}
	return btcutil.NewAddressPubKeyHash(btcutil.Hash160(serialized), params)
}

// WIFAddress returns the address a WIF key signs for.
func WIFAddress(wif *btcutil.WIF,
	params *chaincfg.Params) (*btcutil.AddressPubKeyHash, error) {

	return PubKeyAddress(wif.PrivKey.PubKey(), wif.CompressPubKey, params)
}

// Sign produces a 65 byte recoverable signature of data. The ECDSA nonce is
// derived per RFC 6979 so signing the same data with the same key always
// yields the same signature.
func Sign(data []byte, wif *btcutil.WIF, params *chaincfg.Params) ([]byte, error) {
	addr, err := WIFAddress(wif, params)
	if err != nil {
		return nil, err
	}

	digest := MessageDigest(data)
	sig := ecdsa.Sign(wif.PrivKey, digest)
	r, s := sig.R(), sig.S()

	candidate := make([]byte, SignatureSize)
	r.PutBytesUnchecked(candidate[1:33])
	s.PutBytesUnchecked(candidate[33:65])

	for recid := byte(0); recid < 4; recid++ {
		for _, compressed := range []bool{true, false} {
			candidate[0] = compactSigMagicOffset + recid
			if compressed {
				candidate[0] += compactSigCompPubKey
			}
			if checkSignature(addr, candidate, digest, params) == nil {
				return candidate, nil
			}
		}
	}

	return nil, ErrSignatureEncodingFailed
}

// Verify reports whether sig is a valid signature of data by the key behind
// addr. It never panics and treats every malformed input as a failed check.
func Verify(addr btcutil.Address, sig, data []byte, params *chaincfg.Params) bool {
	if addr == nil || params == nil || !addr.IsForNet(params) {
		return false
	}
	return checkSignature(addr, sig, MessageDigest(data), params) == nil
}

// RecoverPubKey returns the public key that produced sig over data and
// whether the signer used its compressed form.
func RecoverPubKey(sig, data []byte) (*btcec.PublicKey, bool, error) {
	return recoverPubKey(sig, MessageDigest(data))
}

// checkSignature recovers the signing key from sig, verifies the ECDSA
// signature with it and compares the derived address against addr.
func checkSignature(addr btcutil.Address, sig, digest []byte,
	params *chaincfg.Params) error {

	pub, compressed, err := recoverPubKey(sig, digest)
	if err != nil {
		return err
	}

	r, s, err := parseRS(sig)
	if err != nil {
		return err
	}
	if !ecdsa.NewSignature(&r, &s).Verify(digest, pub) {
		return ErrECDSAVerifyFailed
	}

	derived, err := PubKeyAddress(pub, compressed, params)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAddressMismatch, err)
	}
	if derived.EncodeAddress() != addr.EncodeAddress() {
		return ErrAddressMismatch
	}
	return nil
}

// EncodeSignature returns the base64 transport form of a signature.
func EncodeSignature(sig []byte) string {
	return base64.StdEncoding.EncodeToString(sig)
}

// DecodeSignature parses the base64 transport form of a signature.
func DecodeSignature(s string) ([]byte, error) {
	sig, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(sig) != SignatureSize {
		return nil, ErrInvalidSignatureLength
	}
	return sig, nil
}
