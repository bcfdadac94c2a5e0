// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btctxstore/chain"
	"github.com/btcsuite/btctxstore/txstore"
)

type createTxCmd struct {
	app *app

	Inputs   []string `long:"input" description:"txid:index to spend, may be repeated"`
	Outputs  []string `long:"output" description:"address:amount payment, may be repeated"`
	LockTime uint32   `long:"locktime" description:"Transaction lock time"`
}

func (c *createTxCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}

	inputs := make([]txstore.TxInput, 0, len(c.Inputs))
	for _, value := range c.Inputs {
		in, err := parseInput(value)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}
	outputs, err := parseOutputs(s, c.Outputs)
	if err != nil {
		return err
	}

	return c.app.printTx(s.CreateTx(inputs, outputs, c.LockTime))
}

type addInputsCmd struct {
	app *app

	Change string `long:"change" description:"Change address, defaults to the address of the first key"`
	NoSign bool   `long:"nosign" description:"Leave the transaction unsigned"`

	Args struct {
		RawTx string   `positional-arg-name:"rawtx"`
		WIFs  []string `positional-arg-name:"wif" description:"Keys whose outputs fund the transaction, - to prompt" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *addInputsCmd) Execute(_ []string) error {
	s, err := c.app.store(true)
	if err != nil {
		return err
	}
	tx, err := txstore.DeserializeTx(c.Args.RawTx)
	if err != nil {
		return err
	}
	wifs, err := c.app.decodeWIFs(s, c.Args.WIFs)
	if err != nil {
		return err
	}

	flags := txFlags{Change: c.Change}
	opts, err := flags.txOptions(s)
	if err != nil {
		return err
	}
	opts.SkipSigning = c.NoSign

	tx, err = s.AddInputs(c.app.ctx, tx, wifs, opts)
	if err != nil {
		return err
	}
	return c.app.printTx(tx)
}

type signTxCmd struct {
	app *app

	Args struct {
		RawTx string   `positional-arg-name:"rawtx"`
		WIFs  []string `positional-arg-name:"wif" description:"Signing keys, - to prompt" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *signTxCmd) Execute(_ []string) error {
	s, err := c.app.store(true)
	if err != nil {
		return err
	}
	tx, err := txstore.DeserializeTx(c.Args.RawTx)
	if err != nil {
		return err
	}
	wifs, err := c.app.decodeWIFs(s, c.Args.WIFs)
	if err != nil {
		return err
	}
	tx, err = s.SignTx(c.app.ctx, tx, wifs)
	if err != nil {
		return err
	}
	return c.app.printTx(tx)
}

type publishCmd struct {
	app *app

	Args struct {
		RawTx string `positional-arg-name:"rawtx"`
	} `positional-args:"yes" required:"yes"`
}

func (c *publishCmd) Execute(_ []string) error {
	s, err := c.app.store(true)
	if err != nil {
		return err
	}
	tx, err := txstore.DeserializeTx(c.Args.RawTx)
	if err != nil {
		return err
	}
	txid, err := s.Publish(c.app.ctx, tx)
	if err != nil {
		return err
	}
	return c.app.println(txid)
}

type sendCmd struct {
	app *app

	Change  string   `long:"change" description:"Change address, defaults to the address of the first key"`
	Outputs []string `long:"output" description:"address:amount payment, may be repeated" required:"yes"`

	Args struct {
		WIFs []string `positional-arg-name:"wif" description:"Keys whose outputs fund the payment, - to prompt" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *sendCmd) Execute(_ []string) error {
	s, err := c.app.store(true)
	if err != nil {
		return err
	}
	flags := txFlags{Change: c.Change}
	opts, err := flags.txOptions(s)
	if err != nil {
		return err
	}
	outputs, err := parseOutputs(s, c.Outputs)
	if err != nil {
		return err
	}
	wifs, err := c.app.decodeWIFs(s, c.Args.WIFs)
	if err != nil {
		return err
	}
	txid, err := s.Send(c.app.ctx, wifs, outputs, opts)
	if err != nil {
		return err
	}
	return c.app.println(txid)
}

type retrieveTxCmd struct {
	app *app

	Args struct {
		Txid string `positional-arg-name:"txid"`
	} `positional-args:"yes" required:"yes"`
}

func (c *retrieveTxCmd) Execute(_ []string) error {
	s, err := c.app.store(true)
	if err != nil {
		return err
	}
	txid, err := parseTxid(c.Args.Txid)
	if err != nil {
		return err
	}
	tx, err := s.RetrieveTx(c.app.ctx, txid)
	if err != nil {
		return err
	}
	return c.app.printTx(tx)
}

// utxo is the JSON form of a spendable output.
type utxo struct {
	Txid   string `json:"txid"`
	Vout   uint32 `json:"vout"`
	Value  int64  `json:"value"`
	Script string `json:"script"`
}

type retrieveUTXOsCmd struct {
	app *app

	Args struct {
		Addresses []string `positional-arg-name:"address" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *retrieveUTXOsCmd) Execute(_ []string) error {
	s, err := c.app.store(true)
	if err != nil {
		return err
	}

	addrs := make([]btcutil.Address, 0, len(c.Args.Addresses))
	for _, address := range c.Args.Addresses {
		addr, err := s.DecodeAddress(address)
		if err != nil {
			return err
		}
		addrs = append(addrs, addr)
	}

	spendables, err := s.RetrieveUTXOs(c.app.ctx, addrs)
	if err != nil {
		return err
	}

	utxos := make([]utxo, 0, len(spendables))
	for _, sp := range spendables {
		utxos = append(utxos, utxo{
			Txid:   sp.OutPoint.Hash.String(),
			Vout:   sp.OutPoint.Index,
			Value:  int64(sp.Value),
			Script: hex.EncodeToString(sp.PkScript),
		})
	}
	return c.app.printJSON(utxos)
}

type exportPSBTCmd struct {
	app *app

	Args struct {
		RawTx string `positional-arg-name:"rawtx"`
	} `positional-args:"yes" required:"yes"`
}

func (c *exportPSBTCmd) Execute(_ []string) error {
	s, err := c.app.store(true)
	if err != nil {
		return err
	}
	tx, err := txstore.DeserializeTx(c.Args.RawTx)
	if err != nil {
		return err
	}
	packet, err := s.ExportPSBT(c.app.ctx, tx)
	if err != nil {
		return err
	}
	encoded, err := packet.B64Encode()
	if err != nil {
		return err
	}
	return c.app.println(encoded)
}

type confirmsCmd struct {
	app *app

	Wait     int64         `long:"wait" description:"Block until the transaction has this many confirmations"`
	Interval time.Duration `long:"interval" default:"30s" description:"Polling interval while waiting"`

	Args struct {
		Txid string `positional-arg-name:"txid"`
	} `positional-args:"yes" required:"yes"`
}

func (c *confirmsCmd) Execute(_ []string) error {
	s, err := c.app.store(true)
	if err != nil {
		return err
	}
	txid, err := parseTxid(c.Args.Txid)
	if err != nil {
		return err
	}

	if c.Wait <= 0 {
		confs, err := s.Confirms(c.app.ctx, txid)
		if err != nil {
			return err
		}
		return c.app.println(confs)
	}

	chainSvc, err := c.app.chainService()
	if err != nil {
		return err
	}
	confs, err := chain.WaitForConfirmations(
		c.app.ctx, chainSvc, txid, c.Wait, c.Interval,
	)
	if err != nil {
		return err
	}
	return c.app.println(confs)
}

type splitUTXOsCmd struct {
	app *app

	Args struct {
		WIF   string `positional-arg-name:"wif" description:"Key whose outputs are split, - to prompt"`
		Limit string `positional-arg-name:"limit" description:"Smallest value of the new outputs"`
	} `positional-args:"yes" required:"yes"`
}

func (c *splitUTXOsCmd) Execute(_ []string) error {
	s, err := c.app.store(true)
	if err != nil {
		return err
	}
	limit, err := parseAmount(c.Args.Limit)
	if err != nil {
		return err
	}
	wif, err := c.app.decodeWIF(s, c.Args.WIF)
	if err != nil {
		return err
	}

	rules := s.Rules()
	txids, err := s.SplitUTXOs(
		c.app.ctx, wif, limit, rules.Fee, rules.MaxOutputs,
	)
	for _, txid := range txids {
		if err := c.app.println(txid); err != nil {
			return err
		}
	}
	return err
}
