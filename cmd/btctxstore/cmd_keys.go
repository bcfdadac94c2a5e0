// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

type createWalletCmd struct {
	app *app

	Seed string `long:"seed" description:"Hex encoded seed, random if not given"`
}

func (c *createWalletCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	seed, err := decodeHex("seed", c.Seed)
	if err != nil {
		return err
	}
	hwif, err := s.CreateWallet(seed)
	if err != nil {
		return err
	}
	return c.app.println(hwif)
}

type getKeyCmd struct {
	app *app

	Args struct {
		Wallet string `positional-arg-name:"hwif" description:"Extended private key, - to prompt"`
	} `positional-args:"yes" required:"yes"`
}

func (c *getKeyCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	hwif, err := c.app.secret(c.Args.Wallet, "Wallet (extended private key)")
	if err != nil {
		return err
	}
	wif, err := s.GetKey(hwif)
	if err != nil {
		return err
	}
	return c.app.println(wif)
}

type createKeyCmd struct {
	app *app

	Seed string `long:"seed" description:"Hex encoded seed, random if not given"`
}

func (c *createKeyCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	seed, err := decodeHex("seed", c.Seed)
	if err != nil {
		return err
	}
	wif, err := s.CreateKey(seed)
	if err != nil {
		return err
	}
	return c.app.println(wif)
}

type getAddressCmd struct {
	app *app

	Args struct {
		WIF string `positional-arg-name:"wif" description:"Private key, - to prompt"`
	} `positional-args:"yes" required:"yes"`
}

func (c *getAddressCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	wif, err := c.app.decodeWIF(s, c.Args.WIF)
	if err != nil {
		return err
	}
	addr, err := s.GetAddress(wif)
	if err != nil {
		return err
	}
	return c.app.println(addr.EncodeAddress())
}

type validateWalletCmd struct {
	app *app

	Args struct {
		Wallet string `positional-arg-name:"hwif"`
	} `positional-args:"yes" required:"yes"`
}

func (c *validateWalletCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	return c.app.println(s.ValidateWallet(c.Args.Wallet))
}

type validateKeyCmd struct {
	app *app

	Args struct {
		WIF string `positional-arg-name:"wif"`
	} `positional-args:"yes" required:"yes"`
}

func (c *validateKeyCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	return c.app.println(s.ValidateKey(c.Args.WIF))
}

type validateAddressCmd struct {
	app *app

	Args struct {
		Address string `positional-arg-name:"address"`
	} `positional-args:"yes" required:"yes"`
}

func (c *validateAddressCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	return c.app.println(s.ValidateAddress(c.Args.Address))
}

type signDataCmd struct {
	app *app

	Args struct {
		WIF  string `positional-arg-name:"wif" description:"Private key, - to prompt"`
		Data string `positional-arg-name:"hexdata"`
	} `positional-args:"yes" required:"yes"`
}

func (c *signDataCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	data, err := decodeHex("data", c.Args.Data)
	if err != nil {
		return err
	}
	wif, err := c.app.decodeWIF(s, c.Args.WIF)
	if err != nil {
		return err
	}
	sig, err := s.SignData(wif, data)
	if err != nil {
		return err
	}
	return c.app.println(sig)
}

type verifySignatureCmd struct {
	app *app

	Args struct {
		Address   string `positional-arg-name:"address"`
		Signature string `positional-arg-name:"signature"`
		Data      string `positional-arg-name:"hexdata"`
	} `positional-args:"yes" required:"yes"`
}

func (c *verifySignatureCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	data, err := decodeHex("data", c.Args.Data)
	if err != nil {
		return err
	}
	return c.app.println(s.VerifySignature(
		c.Args.Address, c.Args.Signature, data,
	))
}

type signUnicodeCmd struct {
	app *app

	Args struct {
		WIF     string `positional-arg-name:"wif" description:"Private key, - to prompt"`
		Message string `positional-arg-name:"message"`
	} `positional-args:"yes" required:"yes"`
}

func (c *signUnicodeCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	wif, err := c.app.decodeWIF(s, c.Args.WIF)
	if err != nil {
		return err
	}
	sig, err := s.SignUnicode(wif, c.Args.Message)
	if err != nil {
		return err
	}
	return c.app.println(sig)
}

type verifyUnicodeCmd struct {
	app *app

	Args struct {
		Address   string `positional-arg-name:"address"`
		Signature string `positional-arg-name:"signature"`
		Message   string `positional-arg-name:"message"`
	} `positional-args:"yes" required:"yes"`
}

func (c *verifyUnicodeCmd) Execute(_ []string) error {
	s, err := c.app.store(false)
	if err != nil {
		return err
	}
	return c.app.println(s.VerifySignatureUnicode(
		c.Args.Address, c.Args.Signature, c.Args.Message,
	))
}
