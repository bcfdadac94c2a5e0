// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/txauthor"
)

// Back end names accepted by NewService.
const (
	BackEndRPC     = "rpc"
	BackEndEsplora = "esplora"
	BackEndAuto    = "auto"
)

// BackEnds returns a list of the available back ends.
func BackEnds() []string {
	return []string{
		BackEndRPC,
		BackEndEsplora,
		BackEndAuto,
	}
}

// Interface is the blockchain access the transaction store needs. It can be
// backed by a node's RPC server or a block explorer, as long as we write a
// driver for it.
type Interface interface {
	// GetTransaction returns the transaction with the given id, or
	// ErrTransactionNotFound.
	GetTransaction(ctx context.Context, txid *chainhash.Hash) (*wire.MsgTx, error)

	// SpendableOutputs returns the unspent outputs paying to addrs.
	SpendableOutputs(ctx context.Context,
		addrs []btcutil.Address) ([]txauthor.Spendable, error)

	// Broadcast submits a signed transaction to the network. A
	// transaction the network refuses yields a *BroadcastRejectedError.
	Broadcast(ctx context.Context, tx *wire.MsgTx) error

	// Confirmations returns the number of confirmations of a transaction,
	// zero when it is unconfirmed or unknown.
	Confirmations(ctx context.Context, txid *chainhash.Hash) (int64, error)

	// BackEnd returns the name of the driver.
	BackEnd() string
}

// Config selects and configures a chain service.
type Config struct {
	// BackEnd is one of BackEnds().
	BackEnd string

	// ChainParams is the network the service talks to.
	ChainParams *chaincfg.Params

	// RPC configures the node RPC back end. Optional for esplora.
	RPC *RPCConfig

	// EsploraURL is the base URL of an Esplora REST API. Optional for
	// rpc.
	EsploraURL string
}

// NewService creates the chain service cfg describes. The auto back end
// wraps every configured back end in a FailoverService.
func NewService(cfg *Config) (Interface, error) {
	if cfg == nil || cfg.ChainParams == nil {
		return nil, errors.New("missing chain params config")
	}

	switch cfg.BackEnd {
	case BackEndRPC:
		if cfg.RPC == nil {
			return nil, errors.New("missing rpc config")
		}
		rpcCfg := *cfg.RPC
		rpcCfg.ChainParams = cfg.ChainParams
		return NewRPCService(&rpcCfg)

	case BackEndEsplora:
		return NewEsploraService(cfg.EsploraURL, cfg.ChainParams, nil)

	case BackEndAuto:
		var services []Interface
		if cfg.RPC != nil {
			rpcCfg := *cfg.RPC
			rpcCfg.ChainParams = cfg.ChainParams
			rpc, err := NewRPCService(&rpcCfg)
			if err != nil {
				return nil, err
			}
			services = append(services, rpc)
		}
		if cfg.EsploraURL != "" {
			esplora, err := NewEsploraService(
				cfg.EsploraURL, cfg.ChainParams, nil,
			)
			if err != nil {
				return nil, err
			}
			services = append(services, esplora)
		}
		return NewFailoverService(services...)

	default:
		return nil, fmt.Errorf("unknown chain back end %q, want one "+
			"of %v", cfg.BackEnd, BackEnds())
	}
}

// Shutdown stops the RPC clients held by svc, including those wrapped by a
// FailoverService. Other back ends hold no connections.
func Shutdown(svc Interface) {
	switch s := svc.(type) {
	case *RPCService:
		s.Shutdown()

	case *FailoverService:
		for _, inner := range s.services {
			Shutdown(inner)
		}
	}
}
