// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netparams

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg"
)

// Params is used to group parameters for various networks such as the main
// network and test networks.
type Params struct {
	*chaincfg.Params

	// RPCServerPort is the default JSON-RPC port of a full node.
	RPCServerPort string

	// EsploraURL is the default Esplora REST endpoint. It is empty when
	// the network has no public indexer.
	EsploraURL string
}

// MainNetParams contains parameters specific to the main network
// (wire.MainNet).
var MainNetParams = Params{
	Params:        &chaincfg.MainNetParams,
	RPCServerPort: "8332",
	EsploraURL:    "https://blockstream.info/api",
}

// TestNet3Params contains parameters specific to the test network (version
// 3) (wire.TestNet3).
var TestNet3Params = Params{
	Params:        &chaincfg.TestNet3Params,
	RPCServerPort: "18332",
	EsploraURL:    "https://blockstream.info/testnet/api",
}

// RegressionNetParams contains parameters specific to the regression test
// network (wire.TestNet).
var RegressionNetParams = Params{
	Params:        &chaincfg.RegressionNetParams,
	RPCServerPort: "18443",
}

// Select returns the parameters of the network chosen by the command line
// network flags. At most one network flag may be set.
func Select(testnet, regtest bool) (*Params, error) {
	switch {
	case testnet && regtest:
		return nil, fmt.Errorf("multiple bitcoin networks may not be " +
			"used simultaneously")
	case testnet:
		return &TestNet3Params, nil
	case regtest:
		return &RegressionNetParams, nil
	default:
		return &MainNetParams, nil
	}
}
