// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txstore

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btctxstore/msgsign"
	"github.com/btcsuite/btctxstore/txrules"
	"github.com/stretchr/testify/require"
)

const (
	// bip32Seed, bip32Master and bip32MasterPub are test vector 1 of
	// BIP32.
	bip32Seed   = "000102030405060708090a0b0c0d0e0f"
	bip32Master = "xprv9s21ZrQH143K3QTDL4LXw2F7HEK3wJUD2nW2nRk4stbPy6c" +
		"q3jPPqjiChkVvvNKmPGJxWUtg6LnF5kejMRNNU3TGtRBeJgk33yuGBxrMPHi"
	bip32MasterPub = "xpub661MyMwAqRbcFtXgS5sYJABqqG9YLmC4Q1Rdap9gSE8" +
		"NqtwybGhePY2gZ29ESFjqJoCu1Rupje8YtGqsefD265TMg7usUDFdp6W1EGMcet8"
	bip32MasterKey = "e8f32e723decf4051aefac8e2c93c9c5b214313817cdb01a" +
		"1494b917c8436b35"
)

func newMainnetStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(&Config{
		ChainParams: &chaincfg.MainNetParams,
		Rules:       txrules.DefaultConfig(),
	})
	require.NoError(t, err)
	return s
}

// TestCreateWallet checks wallet creation against the BIP32 test vector.
func TestCreateWallet(t *testing.T) {
	t.Parallel()

	s := newMainnetStore(t)
	seed, err := hex.DecodeString(bip32Seed)
	require.NoError(t, err)

	hwif, err := s.CreateWallet(seed)
	require.NoError(t, err)
	require.Equal(t, bip32Master, hwif)
	require.True(t, s.ValidateWallet(hwif))

	wif, err := s.GetKey(hwif)
	require.NoError(t, err)
	require.True(t, wif.CompressPubKey)
	require.Equal(t, bip32MasterKey, hex.EncodeToString(
		wif.PrivKey.Serialize(),
	))

	key, err := s.CreateKey(seed)
	require.NoError(t, err)
	require.Equal(t, wif.String(), key.String())

	// Random wallets differ.
	a, err := s.CreateWallet(nil)
	require.NoError(t, err)
	b, err := s.CreateWallet(nil)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.True(t, s.ValidateWallet(a))

	_, err = s.CreateWallet([]byte("too short"))
	require.True(t, IsError(err, ErrInvalidInput))
}

// TestValidateWallet checks network and privacy checks of wallets.
func TestValidateWallet(t *testing.T) {
	t.Parallel()

	mainnet := newMainnetStore(t)
	regtest := newTestStore(t, nil, false)

	require.False(t, regtest.ValidateWallet(bip32Master))
	require.False(t, mainnet.ValidateWallet(bip32MasterPub))
	require.False(t, mainnet.ValidateWallet("not a wallet"))

	_, err := regtest.GetKey(bip32Master)
	require.True(t, IsError(err, ErrInvalidInput))
	_, err = mainnet.GetKey(bip32MasterPub)
	require.True(t, IsError(err, ErrInvalidInput))

	hwif, err := regtest.CreateWallet(nil)
	require.NoError(t, err)
	require.True(t, regtest.ValidateWallet(hwif))
	require.False(t, mainnet.ValidateWallet(hwif))
}

// TestKeysAndAddresses checks key and address decoding.
func TestKeysAndAddresses(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, nil, false)
	wif := testWIF(t, "alice", false)

	addr, err := s.GetAddress(wif)
	require.NoError(t, err)
	want, err := msgsign.WIFAddress(wif, testParams)
	require.NoError(t, err)
	require.Equal(t, want.EncodeAddress(), addr.EncodeAddress())

	require.True(t, s.ValidateKey(wif.String()))
	require.False(t, s.ValidateKey("garbage"))
	require.True(t, s.ValidateAddress(addr.EncodeAddress()))
	require.False(t, s.ValidateAddress("garbage"))

	decoded, err := s.DecodeWIF(wif.String())
	require.NoError(t, err)
	require.False(t, decoded.CompressPubKey)

	mainnetWIF, err := btcutil.NewWIF(
		wif.PrivKey, &chaincfg.MainNetParams, true,
	)
	require.NoError(t, err)
	_, err = s.DecodeWIF(mainnetWIF.String())
	require.True(t, IsError(err, ErrInvalidInput))
	_, err = s.GetAddress(mainnetWIF)
	require.True(t, IsError(err, ErrInvalidInput))

	mainnetAddr, err := btcutil.NewAddressPubKeyHash(
		addr.Hash160()[:], &chaincfg.MainNetParams,
	)
	require.NoError(t, err)
	require.False(t, s.ValidateAddress(mainnetAddr.EncodeAddress()))
	_, err = s.DecodeAddress(mainnetAddr.EncodeAddress())
	require.True(t, IsError(err, ErrInvalidInput))
}

// TestSignData checks signing and verification through the store.
func TestSignData(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, nil, false)

	for _, compressed := range []bool{true, false} {
		wif := testWIF(t, "alice", compressed)
		addr := testAddress(t, wif).EncodeAddress()
		data := []byte{0xde, 0xad, 0xbe, 0xef}

		sig, err := s.SignData(wif, data)
		require.NoError(t, err)
		require.True(t, s.VerifySignature(addr, sig, data))

		require.False(t, s.VerifySignature(addr, sig, []byte{0xde}))
		other := testAddress(t, testWIF(t, "bob", compressed))
		require.False(t, s.VerifySignature(
			other.EncodeAddress(), sig, data,
		))
		require.False(t, s.VerifySignature("garbage", sig, data))
		require.False(t, s.VerifySignature(addr, "!!", data))

		usig, err := s.SignUnicode(wif, "grüße")
		require.NoError(t, err)
		require.True(t, s.VerifySignatureUnicode(addr, usig, "grüße"))
		require.False(t, s.VerifySignatureUnicode(addr, usig, "gruße"))
		require.True(t, s.VerifySignature(
			addr, usig, []byte("grüße"),
		))
	}

	_, err := s.SignUnicode(testWIF(t, "alice", true), "\xff")
	require.True(t, IsError(err, ErrInvalidInput))

	mainnetWIF, err := btcutil.NewWIF(
		testWIF(t, "alice", true).PrivKey, &chaincfg.MainNetParams,
		true,
	)
	require.NoError(t, err)
	_, err = s.SignData(mainnetWIF, []byte{1})
	require.True(t, IsError(err, ErrInvalidInput))
}
