// Copyright (c) 2013-2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btctxstore/chain"
	"github.com/btcsuite/btctxstore/internal/cfgutil"
	"github.com/btcsuite/btctxstore/internal/prompt"
	"github.com/btcsuite/btctxstore/netparams"
	"github.com/btcsuite/btctxstore/txrules"
	"github.com/btcsuite/btctxstore/txstore"
)

const (
	defaultLogLevel    = "info"
	defaultLogFilename = "btctxstore.log"
	defaultMaxLogFiles = 3

	// defaultMaxLogFileSize is the log file size in KB at which it is
	// rolled.
	defaultMaxLogFileSize = 10 * 1024
)

var (
	btcdDataDir        = btcutil.AppDataDir("btcd", false)
	defaultAppDataDir  = btcutil.AppDataDir("btctxstore", false)
	defaultLogDir      = filepath.Join(defaultAppDataDir, "logs")
	defaultRPCCertFile = filepath.Join(btcdDataDir, "rpc.cert")
)

// config defines the global options shared by every command.
type config struct {
	TestNet3 bool `long:"testnet" description:"Use the test network (version 3)"`
	RegTest  bool `long:"regtest" description:"Use the regression test network"`
	DryRun   bool `long:"dryrun" description:"Build and sign transactions without broadcasting them"`

	BackEnd    string `long:"backend" description:"Chain back end; auto fails over between every configured back end" choice:"auto" choice:"rpc" choice:"esplora"`
	RPCConnect string `short:"c" long:"rpcconnect" description:"Hostname[:port] of the node RPC server"`
	RPCUser    string `short:"u" long:"rpcuser" description:"Node RPC username"`
	RPCPass    string `short:"P" long:"rpcpass" default-mask:"-" description:"Node RPC password, - to prompt"`
	RPCCert    string `long:"rpccert" description:"Node RPC TLS certificate"`
	NoTLS      bool   `long:"notls" description:"Disable TLS for the node RPC connection"`
	EsploraURL string `long:"esplora" description:"Esplora REST API base URL, defaults to a public indexer for the network"`

	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	LogDir     string `long:"logdir" description:"Directory to log output, empty to disable the log file"`

	Fee        *cfgutil.AmountFlag `long:"fee" description:"Flat fee of every transaction, in satoshis or with a BTC suffix"`
	DustLimit  *cfgutil.AmountFlag `long:"dustlimit" description:"Value of data outputs and the smallest spendable output"`
	FoldDust   bool                `long:"folddust" description:"Leave change below the dust limit to the miner instead of creating an output"`
	MaxOutputs int                 `long:"maxoutputs" description:"Maximum number of outputs of each splitutxos transaction"`
}

// defaultConfig returns a config with every default applied.
func defaultConfig() *config {
	return &config{
		BackEnd:    chain.BackEndAuto,
		RPCCert:    defaultRPCCertFile,
		DebugLevel: defaultLogLevel,
		LogDir:     defaultLogDir,
		Fee:        cfgutil.NewAmountFlag(txrules.DefaultFee),
		DustLimit:  cfgutil.NewAmountFlag(txrules.DefaultDustLimit),
		MaxOutputs: txrules.DefaultMaxOutputs,
	}
}

// rules returns the transaction policy the flags select.
func (c *config) rules() txrules.Config {
	return txrules.Config{
		DustLimit:      c.DustLimit.Amount,
		Fee:            c.Fee.Amount,
		MaxOutputs:     c.MaxOutputs,
		FoldDustChange: c.FoldDust,
	}
}

// setup selects the network and starts logging. It runs once, before the
// first store is created.
func (a *app) setup() error {
	if a.params != nil {
		return nil
	}

	params, err := netparams.Select(a.cfg.TestNet3, a.cfg.RegTest)
	if err != nil {
		return err
	}

	if a.cfg.LogDir != "" {
		logFile := filepath.Join(
			cfgutil.CleanAndExpandPath(a.cfg.LogDir), params.Name,
			defaultLogFilename,
		)
		err := logWriter.InitLogRotator(
			logFile, defaultMaxLogFileSize, defaultMaxLogFiles,
		)
		if err != nil {
			return err
		}
	}
	if err := logWriter.ParseAndSetDebugLevels(a.cfg.DebugLevel); err != nil {
		return err
	}

	a.params = params
	return nil
}

// store returns a store for the selected network. Only online stores are
// connected to a chain service.
func (a *app) store(online bool) (*txstore.Store, error) {
	if err := a.setup(); err != nil {
		return nil, err
	}

	cfg := &txstore.Config{
		ChainParams: a.params.Params,
		DryRun:      a.cfg.DryRun,
		Rules:       a.cfg.rules(),
	}
	if online {
		chainSvc, err := a.chainService()
		if err != nil {
			return nil, err
		}
		cfg.Chain = chainSvc
	}

	return txstore.New(cfg)
}

// chainService creates the chain service the back end flags describe. The
// node RPC back end is configured when it is selected explicitly or a
// node was given. The network's public Esplora indexer is used unless
// another URL was given.
func (a *app) chainService() (chain.Interface, error) {
	if a.chainSvc != nil {
		return a.chainSvc, nil
	}

	chainCfg := &chain.Config{
		BackEnd:     a.cfg.BackEnd,
		ChainParams: a.params.Params,
		EsploraURL:  a.cfg.EsploraURL,
	}
	if chainCfg.EsploraURL == "" {
		chainCfg.EsploraURL = a.params.EsploraURL
	}
	if a.cfg.BackEnd == chain.BackEndRPC || a.cfg.RPCConnect != "" {
		rpcCfg, err := a.rpcConfig()
		if err != nil {
			return nil, err
		}
		chainCfg.RPC = rpcCfg
	}

	chainSvc, err := chain.NewService(chainCfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create chain service: %w", err)
	}
	log.Infof("Using chain back end %v", chainSvc.BackEnd())

	a.chainSvc = chainSvc
	return chainSvc, nil
}

// rpcConfig builds the node RPC configuration, prompting for the password
// when requested.
func (a *app) rpcConfig() (*chain.RPCConfig, error) {
	host := a.cfg.RPCConnect
	if host == "" {
		host = "localhost"
	}
	host, err := cfgutil.NormalizeAddress(host, a.params.RPCServerPort)
	if err != nil {
		return nil, fmt.Errorf("invalid RPC network address %q: %w",
			a.cfg.RPCConnect, err)
	}

	pass := a.cfg.RPCPass
	if pass == "-" {
		secret, err := prompt.Secret(a.in, "Node RPC password")
		if err != nil {
			return nil, err
		}
		pass = string(secret)
	}

	rpcCfg := &chain.RPCConfig{
		Host:        host,
		User:        a.cfg.RPCUser,
		Pass:        pass,
		DisableTLS:  a.cfg.NoTLS,
		ChainParams: a.params.Params,
	}
	if a.cfg.NoTLS {
		return rpcCfg, nil
	}

	certFile := cfgutil.CleanAndExpandPath(a.cfg.RPCCert)
	exists, err := cfgutil.FileExists(certFile)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("RPC certificate file %q not found",
			certFile)
	}
	rpcCfg.Certificates, err = os.ReadFile(certFile)
	if err != nil {
		return nil, err
	}

	return rpcCfg, nil
}
