// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txstore

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btctxstore/msgsign"
	"github.com/btcsuite/btctxstore/txauthor"
)

// keyringEntry is a key and the serialization its address hashes.
type keyringEntry struct {
	key        *btcec.PrivateKey
	compressed bool
}

// keyring is an implementation of txauthor.SecretsSource over a set of WIF
// keys. Every key is reachable through both its compressed and its
// uncompressed pay-to-pubkey-hash address.
type keyring struct {
	params  *chaincfg.Params
	entries map[string]keyringEntry

	// addrs lists the own address of every key first, followed by the
	// alternate forms.
	addrs []btcutil.Address
}

// A compile-time check to ensure keyring satisfies txauthor.SecretsSource.
var _ txauthor.SecretsSource = (*keyring)(nil)

// newKeyring creates a keyring from wifs, which must not be empty and must
// belong to params.
func newKeyring(wifs []*btcutil.WIF, params *chaincfg.Params) (*keyring,
	error) {

	if len(wifs) == 0 {
		return nil, storeError(ErrInvalidInput, "no keys given", nil)
	}

	k := &keyring{
		params:  params,
		entries: make(map[string]keyringEntry, 2*len(wifs)),
	}

	var alternates []btcutil.Address
	for i, wif := range wifs {
		if wif == nil || !wif.IsForNet(params) {
			return nil, storeError(ErrInvalidInput, fmt.Sprintf(
				"key %d is not for %v", i, params.Name), nil)
		}

		for _, compressed := range []bool{
			wif.CompressPubKey, !wif.CompressPubKey,
		} {
			addr, err := msgsign.PubKeyAddress(
				wif.PrivKey.PubKey(), compressed, params,
			)
			if err != nil {
				return nil, err
			}

			encoded := addr.EncodeAddress()
			if _, ok := k.entries[encoded]; ok {
				continue
			}
			k.entries[encoded] = keyringEntry{
				key:        wif.PrivKey,
				compressed: compressed,
			}

			if compressed == wif.CompressPubKey {
				k.addrs = append(k.addrs, addr)
			} else {
				alternates = append(alternates, addr)
			}
		}
	}
	k.addrs = append(k.addrs, alternates...)

	return k, nil
}

// GetKey returns the key for addr and whether its address hashes the
// compressed public key.
func (k *keyring) GetKey(addr btcutil.Address) (*btcec.PrivateKey, bool,
	error) {

	entry, ok := k.entries[addr.EncodeAddress()]
	if !ok {
		return nil, false, storeError(ErrMissingKey, fmt.Sprintf("no "+
			"key for address %v", addr), nil)
	}
	return entry.key, entry.compressed, nil
}

// GetScript is part of txauthor.SecretsSource. Script addresses are not
// supported.
func (k *keyring) GetScript(addr btcutil.Address) ([]byte, error) {
	return nil, storeError(ErrMissingKey, fmt.Sprintf("no script for "+
		"address %v", addr), nil)
}

// ChainParams returns the network of the keys.
func (k *keyring) ChainParams() *chaincfg.Params {
	return k.params
}

// addresses returns every address the keyring can sign for.
func (k *keyring) addresses() []btcutil.Address {
	return k.addrs
}

// defaultAddress returns the own address of the first key.
func (k *keyring) defaultAddress() btcutil.Address {
	return k.addrs[0]
}
