// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/jessevdk/go-flags"
)

// command describes one subcommand of the tool.
type command struct {
	name  string
	short string
	data  flags.Commander
}

// commands returns every subcommand bound to a.
func commands(a *app) []command {
	return []command{
		// Keys and wallets.
		{"createwallet", "Create a BIP32 wallet", &createWalletCmd{app: a}},
		{"getkey", "Get the key of a wallet", &getKeyCmd{app: a}},
		{"createkey", "Create a key", &createKeyCmd{app: a}},
		{"getaddress", "Get the address of a key", &getAddressCmd{app: a}},
		{"validatewallet", "Check a wallet", &validateWalletCmd{app: a}},
		{"validatekey", "Check a key", &validateKeyCmd{app: a}},
		{"validateaddress", "Check an address", &validateAddressCmd{app: a}},

		// Message signing.
		{"signdata", "Sign hex data", &signDataCmd{app: a}},
		{"verifysignature", "Verify a signature of hex data", &verifySignatureCmd{app: a}},
		{"signunicode", "Sign a text message", &signUnicodeCmd{app: a}},
		{"verifyunicode", "Verify a signature of a text message", &verifyUnicodeCmd{app: a}},

		// Transactions.
		{"createtx", "Create an unsigned transaction", &createTxCmd{app: a}},
		{"addinputs", "Fund a transaction", &addInputsCmd{app: a}},
		{"signtx", "Sign a transaction", &signTxCmd{app: a}},
		{"publish", "Broadcast a signed transaction", &publishCmd{app: a}},
		{"send", "Pay addresses and broadcast", &sendCmd{app: a}},
		{"retrievetx", "Fetch a transaction", &retrieveTxCmd{app: a}},
		{"retrieveutxos", "List unspent outputs of addresses", &retrieveUTXOsCmd{app: a}},
		{"exportpsbt", "Convert an unsigned transaction to a PSBT", &exportPSBTCmd{app: a}},
		{"confirms", "Get the confirmations of a transaction", &confirmsCmd{app: a}},
		{"splitutxos", "Split the outputs of a key", &splitUTXOsCmd{app: a}},

		// Nulldata.
		{"addnulldata", "Add a nulldata output", &addNulldataCmd{app: a}},
		{"getnulldata", "Read the nulldata output", &getNulldataCmd{app: a}},
		{"storenulldata", "Publish data in a nulldata output", &storeNulldataCmd{app: a}},
		{"retrievenulldata", "Fetch nulldata", &retrieveNulldataCmd{app: a}},

		// Hash160 data.
		{"addhash160data", "Add a hash160 data output", &addHash160DataCmd{app: a}},
		{"gethash160data", "Read a hash160 data output", &getHash160DataCmd{app: a}},
		{"storehash160data", "Publish data in a hash160 data output", &storeHash160DataCmd{app: a}},
		{"retrievehash160data", "Fetch hash160 data", &retrieveHash160DataCmd{app: a}},

		// Data blobs.
		{"adddatablob", "Add a data blob", &addDataBlobCmd{app: a}},
		{"getdatablob", "Read the data blob", &getDataBlobCmd{app: a}},
		{"storedatablob", "Publish a data blob", &storeDataBlobCmd{app: a}},
		{"retrievedatablob", "Fetch a data blob", &retrieveDataBlobCmd{app: a}},

		// Broadcast messages.
		{"addbroadcast", "Add a signed broadcast message", &addBroadcastCmd{app: a}},
		{"getbroadcast", "Read the broadcast message", &getBroadcastCmd{app: a}},
		{"storebroadcast", "Publish a signed broadcast message", &storeBroadcastCmd{app: a}},
		{"retrievebroadcast", "Fetch a broadcast message", &retrieveBroadcastCmd{app: a}},
	}
}

// addCommands registers every subcommand on parser.
func addCommands(parser *flags.Parser, a *app) error {
	for _, c := range commands(a) {
		_, err := parser.AddCommand(c.name, c.short, c.short, c.data)
		if err != nil {
			return err
		}
	}
	return nil
}
