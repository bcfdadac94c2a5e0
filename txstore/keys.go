// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txstore

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btctxstore/msgsign"
)

// CreateWallet creates a BIP32 master node from seed and returns its
// serialized extended private key. An empty seed selects a random one.
func (s *Store) CreateWallet(seed []byte) (string, error) {
	master, err := s.masterNode(seed)
	if err != nil {
		return "", err
	}
	return master.String(), nil
}

// ValidateWallet reports whether hwif is an extended private key for the
// store's network.
func (s *Store) ValidateWallet(hwif string) bool {
	_, err := s.decodeWallet(hwif)
	return err == nil
}

// GetKey returns the key of the extended private key hwif.
func (s *Store) GetKey(hwif string) (*btcutil.WIF, error) {
	node, err := s.decodeWallet(hwif)
	if err != nil {
		return nil, err
	}

	privKey, err := node.ECPrivKey()
	if err != nil {
		return nil, storeError(ErrInvalidInput, "invalid wallet", err)
	}
	return btcutil.NewWIF(privKey, s.cfg.ChainParams, true)
}

// CreateKey returns the key of a master node created from seed. An empty
// seed selects a random one.
func (s *Store) CreateKey(seed []byte) (*btcutil.WIF, error) {
	master, err := s.masterNode(seed)
	if err != nil {
		return nil, err
	}

	privKey, err := master.ECPrivKey()
	if err != nil {
		return nil, err
	}
	return btcutil.NewWIF(privKey, s.cfg.ChainParams, true)
}

// ValidateKey reports whether wif is a key for the store's network.
func (s *Store) ValidateKey(wif string) bool {
	_, err := s.DecodeWIF(wif)
	return err == nil
}

// GetAddress returns the pay-to-pubkey-hash address of wif.
func (s *Store) GetAddress(wif *btcutil.WIF) (*btcutil.AddressPubKeyHash,
	error) {

	if err := s.checkWIF(wif); err != nil {
		return nil, err
	}
	return msgsign.WIFAddress(wif, s.cfg.ChainParams)
}

// ValidateAddress reports whether address is an address of the store's
// network.
func (s *Store) ValidateAddress(address string) bool {
	_, err := s.DecodeAddress(address)
	return err == nil
}

// DecodeWIF decodes a key and checks its network.
func (s *Store) DecodeWIF(wif string) (*btcutil.WIF, error) {
	decoded, err := btcutil.DecodeWIF(wif)
	if err != nil {
		return nil, storeError(ErrInvalidInput, "invalid key", err)
	}
	if err := s.checkWIF(decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

// DecodeAddress decodes an address and checks its network.
func (s *Store) DecodeAddress(address string) (btcutil.Address, error) {
	addr, err := btcutil.DecodeAddress(address, s.cfg.ChainParams)
	if err != nil {
		return nil, storeError(ErrInvalidInput, fmt.Sprintf("invalid "+
			"address %q", address), err)
	}
	if err := s.checkAddress(addr); err != nil {
		return nil, err
	}
	return addr, nil
}

// checkWIF checks that wif belongs to the store's network.
func (s *Store) checkWIF(wif *btcutil.WIF) error {
	if wif == nil {
		return storeError(ErrInvalidInput, "missing key", nil)
	}
	if !wif.IsForNet(s.cfg.ChainParams) {
		return storeError(ErrInvalidInput, fmt.Sprintf("key is not "+
			"for %v", s.cfg.ChainParams.Name), nil)
	}
	return nil
}

// masterNode derives a BIP32 master node from seed, or from a random seed
// if it is empty.
func (s *Store) masterNode(seed []byte) (*hdkeychain.ExtendedKey, error) {
	if len(seed) == 0 {
		var err error
		seed, err = hdkeychain.GenerateSeed(hdkeychain.RecommendedSeedLen)
		if err != nil {
			return nil, err
		}
	}

	master, err := hdkeychain.NewMaster(seed, s.cfg.ChainParams)
	if err != nil {
		return nil, storeError(ErrInvalidInput, "invalid seed", err)
	}
	return master, nil
}

// decodeWallet decodes an extended private key of the store's network.
func (s *Store) decodeWallet(hwif string) (*hdkeychain.ExtendedKey, error) {
	node, err := hdkeychain.NewKeyFromString(hwif)
	if err != nil {
		return nil, storeError(ErrInvalidInput, "invalid wallet", err)
	}
	if !node.IsForNet(s.cfg.ChainParams) {
		return nil, storeError(ErrInvalidInput, fmt.Sprintf("wallet is "+
			"not for %v", s.cfg.ChainParams.Name), nil)
	}
	if !node.IsPrivate() {
		return nil, storeError(ErrInvalidInput, "wallet is not an "+
			"extended private key", nil)
	}
	return node, nil
}
