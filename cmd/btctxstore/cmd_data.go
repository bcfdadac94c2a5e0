// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/msgsign"
	"github.com/btcsuite/btctxstore/txdata"
	"github.com/btcsuite/btctxstore/txstore"
)

// addData runs an Add* operation on a hex transaction argument.
func (a *app) addData(rawTx string,
	add func(*txstore.Store, *wire.MsgTx) (*wire.MsgTx, error)) error {

	s, err := a.store(false)
	if err != nil {
		return err
	}
	tx, err := txstore.DeserializeTx(rawTx)
	if err != nil {
		return err
	}
	tx, err = add(s, tx)
	if err != nil {
		return err
	}
	return a.printTx(tx)
}

// getData runs a Get* operation on a hex transaction argument and prints
// the payload as hex.
func (a *app) getData(rawTx string,
	get func(*txstore.Store, *wire.MsgTx) ([]byte, error)) error {

	s, err := a.store(false)
	if err != nil {
		return err
	}
	tx, err := txstore.DeserializeTx(rawTx)
	if err != nil {
		return err
	}
	data, err := get(s, tx)
	if err != nil {
		return err
	}
	return a.println(hex.EncodeToString(data))
}

// storeData runs a Store* operation funded by the key arguments and prints
// the transaction id.
func (a *app) storeData(wifArgs []string, flags *txFlags,
	store func(context.Context, *txstore.Store, []*btcutil.WIF,
		txstore.StoreOptions) (*chainhash.Hash, error)) error {

	s, err := a.store(true)
	if err != nil {
		return err
	}
	opts, err := flags.storeOptions(s)
	if err != nil {
		return err
	}
	wifs, err := a.decodeWIFs(s, wifArgs)
	if err != nil {
		return err
	}
	txid, err := store(a.ctx, s, wifs, opts)
	if err != nil {
		return err
	}
	return a.println(txid)
}

// retrieveData runs a Retrieve* operation and prints the payload as hex.
func (a *app) retrieveData(txidArg string,
	retrieve func(context.Context, *txstore.Store,
		*chainhash.Hash) ([]byte, error)) error {

	s, err := a.store(true)
	if err != nil {
		return err
	}
	txid, err := parseTxid(txidArg)
	if err != nil {
		return err
	}
	data, err := retrieve(a.ctx, s, txid)
	if err != nil {
		return err
	}
	return a.println(hex.EncodeToString(data))
}

type addNulldataCmd struct {
	app *app

	Args struct {
		RawTx string `positional-arg-name:"rawtx"`
		Data  string `positional-arg-name:"hexdata"`
	} `positional-args:"yes" required:"yes"`
}

func (c *addNulldataCmd) Execute(_ []string) error {
	data, err := decodeHex("data", c.Args.Data)
	if err != nil {
		return err
	}
	return c.app.addData(c.Args.RawTx, func(s *txstore.Store,
		tx *wire.MsgTx) (*wire.MsgTx, error) {

		return s.AddNulldata(tx, data)
	})
}

type getNulldataCmd struct {
	app *app

	Args struct {
		RawTx string `positional-arg-name:"rawtx"`
	} `positional-args:"yes" required:"yes"`
}

func (c *getNulldataCmd) Execute(_ []string) error {
	return c.app.getData(c.Args.RawTx, (*txstore.Store).GetNulldata)
}

type storeNulldataCmd struct {
	app *app

	Funding txFlags `group:"Funding Options"`

	Args struct {
		Data string   `positional-arg-name:"hexdata"`
		WIFs []string `positional-arg-name:"wif" description:"Funding keys, - to prompt" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *storeNulldataCmd) Execute(_ []string) error {
	data, err := decodeHex("data", c.Args.Data)
	if err != nil {
		return err
	}
	return c.app.storeData(c.Args.WIFs, &c.Funding, func(
		ctx context.Context, s *txstore.Store, wifs []*btcutil.WIF,
		opts txstore.StoreOptions) (*chainhash.Hash, error) {

		return s.StoreNulldata(ctx, data, wifs, opts)
	})
}

type retrieveNulldataCmd struct {
	app *app

	Args struct {
		Txid string `positional-arg-name:"txid"`
	} `positional-args:"yes" required:"yes"`
}

func (c *retrieveNulldataCmd) Execute(_ []string) error {
	return c.app.retrieveData(c.Args.Txid, func(ctx context.Context,
		s *txstore.Store, txid *chainhash.Hash) ([]byte, error) {

		return s.RetrieveNulldata(ctx, txid)
	})
}

type addHash160DataCmd struct {
	app *app

	Args struct {
		RawTx string `positional-arg-name:"rawtx"`
		Data  string `positional-arg-name:"hexdata"`
	} `positional-args:"yes" required:"yes"`
}

func (c *addHash160DataCmd) Execute(_ []string) error {
	data, err := decodeHex("data", c.Args.Data)
	if err != nil {
		return err
	}
	return c.app.addData(c.Args.RawTx, func(s *txstore.Store,
		tx *wire.MsgTx) (*wire.MsgTx, error) {

		return s.AddHash160Data(tx, data)
	})
}

type getHash160DataCmd struct {
	app *app

	Args struct {
		RawTx string `positional-arg-name:"rawtx"`
		Index int    `positional-arg-name:"index"`
	} `positional-args:"yes" required:"yes"`
}

func (c *getHash160DataCmd) Execute(_ []string) error {
	return c.app.getData(c.Args.RawTx, func(s *txstore.Store,
		tx *wire.MsgTx) ([]byte, error) {

		return s.GetHash160Data(tx, c.Args.Index)
	})
}

type storeHash160DataCmd struct {
	app *app

	Funding txFlags `group:"Funding Options"`

	Args struct {
		Data string   `positional-arg-name:"hexdata"`
		WIFs []string `positional-arg-name:"wif" description:"Funding keys, - to prompt" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *storeHash160DataCmd) Execute(_ []string) error {
	data, err := decodeHex("data", c.Args.Data)
	if err != nil {
		return err
	}
	return c.app.storeData(c.Args.WIFs, &c.Funding, func(
		ctx context.Context, s *txstore.Store, wifs []*btcutil.WIF,
		opts txstore.StoreOptions) (*chainhash.Hash, error) {

		return s.StoreHash160Data(ctx, data, wifs, opts)
	})
}

type retrieveHash160DataCmd struct {
	app *app

	Args struct {
		Txid  string `positional-arg-name:"txid"`
		Index int    `positional-arg-name:"index"`
	} `positional-args:"yes" required:"yes"`
}

func (c *retrieveHash160DataCmd) Execute(_ []string) error {
	return c.app.retrieveData(c.Args.Txid, func(ctx context.Context,
		s *txstore.Store, txid *chainhash.Hash) ([]byte, error) {

		return s.RetrieveHash160Data(ctx, txid, c.Args.Index)
	})
}

type addDataBlobCmd struct {
	app *app

	Args struct {
		RawTx string `positional-arg-name:"rawtx"`
		Data  string `positional-arg-name:"hexdata"`
	} `positional-args:"yes" required:"yes"`
}

func (c *addDataBlobCmd) Execute(_ []string) error {
	data, err := decodeHex("data", c.Args.Data)
	if err != nil {
		return err
	}
	return c.app.addData(c.Args.RawTx, func(s *txstore.Store,
		tx *wire.MsgTx) (*wire.MsgTx, error) {

		return s.AddDataBlob(tx, data)
	})
}

type getDataBlobCmd struct {
	app *app

	Args struct {
		RawTx string `positional-arg-name:"rawtx"`
	} `positional-args:"yes" required:"yes"`
}

func (c *getDataBlobCmd) Execute(_ []string) error {
	return c.app.getData(c.Args.RawTx, (*txstore.Store).GetDataBlob)
}

type storeDataBlobCmd struct {
	app *app

	Funding txFlags `group:"Funding Options"`

	Args struct {
		Data string   `positional-arg-name:"hexdata"`
		WIFs []string `positional-arg-name:"wif" description:"Funding keys, - to prompt" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *storeDataBlobCmd) Execute(_ []string) error {
	data, err := decodeHex("data", c.Args.Data)
	if err != nil {
		return err
	}
	return c.app.storeData(c.Args.WIFs, &c.Funding, func(
		ctx context.Context, s *txstore.Store, wifs []*btcutil.WIF,
		opts txstore.StoreOptions) (*chainhash.Hash, error) {

		return s.StoreDataBlob(ctx, data, wifs, opts)
	})
}

type retrieveDataBlobCmd struct {
	app *app

	Args struct {
		Txid string `positional-arg-name:"txid"`
	} `positional-args:"yes" required:"yes"`
}

func (c *retrieveDataBlobCmd) Execute(_ []string) error {
	return c.app.retrieveData(c.Args.Txid, func(ctx context.Context,
		s *txstore.Store, txid *chainhash.Hash) ([]byte, error) {

		return s.RetrieveDataBlob(ctx, txid)
	})
}

// broadcastMessage is the JSON form of a verified broadcast message.
type broadcastMessage struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

func (a *app) printMessage(msg *txdata.Message) error {
	return a.printJSON(broadcastMessage{
		Sender:    msg.Sender.EncodeAddress(),
		Message:   msg.Text,
		Signature: msgsign.EncodeSignature(msg.Signature),
	})
}

type addBroadcastCmd struct {
	app *app

	Args struct {
		RawTx   string `positional-arg-name:"rawtx"`
		Message string `positional-arg-name:"message"`
		Sender  string `positional-arg-name:"senderwif" description:"Key signing the message, - to prompt"`
	} `positional-args:"yes" required:"yes"`
}

func (c *addBroadcastCmd) Execute(_ []string) error {
	return c.app.addData(c.Args.RawTx, func(s *txstore.Store,
		tx *wire.MsgTx) (*wire.MsgTx, error) {

		sender, err := c.app.decodeWIF(s, c.Args.Sender)
		if err != nil {
			return nil, err
		}
		return s.AddBroadcast(tx, c.Args.Message, sender)
	})
}

type getBroadcastCmd struct {
	app *app

	Args struct {
		RawTx string `positional-arg-name:"rawtx"`
	} `positional-args:"yes" required:"yes"`
}

func (c *getBroadcastCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	tx, err := txstore.DeserializeTx(c.Args.RawTx)
	if err != nil {
		return err
	}
	msg, err := s.GetBroadcast(tx)
	if err != nil {
		return err
	}
	return c.app.printMessage(msg)
}

type storeBroadcastCmd struct {
	app *app

	Funding txFlags `group:"Funding Options"`

	Args struct {
		Message string   `positional-arg-name:"message"`
		Sender  string   `positional-arg-name:"senderwif" description:"Key signing the message, - to prompt"`
		WIFs    []string `positional-arg-name:"wif" description:"Funding keys, - to prompt" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

func (c *storeBroadcastCmd) Execute(_ []string) error {
	return c.app.storeData(c.Args.WIFs, &c.Funding, func(
		ctx context.Context, s *txstore.Store, wifs []*btcutil.WIF,
		opts txstore.StoreOptions) (*chainhash.Hash, error) {

		sender, err := c.app.decodeWIF(s, c.Args.Sender)
		if err != nil {
			return nil, err
		}
		return s.StoreBroadcast(ctx, c.Args.Message, sender, wifs, opts)
	})
}

type retrieveBroadcastCmd struct {
	app *app

	Args struct {
		Txid string `positional-arg-name:"txid"`
	} `positional-args:"yes" required:"yes"`
}

func (c *retrieveBroadcastCmd) Execute(_ []string) error {
	s, err := c.app.store(true)
	if err != nil {
		return err
	}
	txid, err := parseTxid(c.Args.Txid)
	if err != nil {
		return err
	}
	msg, err := s.RetrieveBroadcast(c.app.ctx, txid)
	if err != nil {
		return err
	}
	return c.app.printMessage(msg)
}
