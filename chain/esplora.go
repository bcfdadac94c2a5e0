// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btctxstore/txauthor"
)

const (
	// defaultEsploraTimeout bounds every request of the default client.
	defaultEsploraTimeout = 30 * time.Second

	// maxEsploraResponse bounds the size of a response body we read.
	maxEsploraResponse = 4 << 20
)

// errEsploraNotFound is returned by get for a 404 response.
var errEsploraNotFound = errors.New("not found")

// esploraUtxo is an entry of the /address/:address/utxo response.
type esploraUtxo struct {
	TxID  string `json:"txid"`
	Vout  uint32 `json:"vout"`
	Value int64  `json:"value"`
}

// esploraStatus is the /tx/:txid/status response.
type esploraStatus struct {
	Confirmed   bool  `json:"confirmed"`
	BlockHeight int64 `json:"block_height"`
}

// EsploraService is a chain service backed by an Esplora REST API such as
// the one served by blockstream.info and mempool.space.
type EsploraService struct {
	baseURL     string
	client      *http.Client
	chainParams *chaincfg.Params
}

// A compile-time check to ensure that EsploraService satisfies the
// chain.Interface interface.
var _ Interface = (*EsploraService)(nil)

// NewEsploraService creates a service for the API rooted at baseURL. A nil
// client selects an http.Client with a default timeout.
func NewEsploraService(baseURL string, chainParams *chaincfg.Params,
	client *http.Client) (*EsploraService, error) {

	if chainParams == nil {
		return nil, errors.New("missing chain params config")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid esplora url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid esplora url %q: scheme must "+
			"be http or https", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: defaultEsploraTimeout}
	}

	return &EsploraService{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		client:      client,
		chainParams: chainParams,
	}, nil
}

// BackEnd returns the name of the driver.
func (s *EsploraService) BackEnd() string {
	return BackEndEsplora
}

// GetTransaction fetches the raw transaction from /tx/:txid/hex.
func (s *EsploraService) GetTransaction(ctx context.Context,
	txid *chainhash.Hash) (*wire.MsgTx, error) {

	body, err := s.get(ctx, "/tx/"+txid.String()+"/hex")
	if errors.Is(err, errEsploraNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrTransactionNotFound, txid)
	}
	if err != nil {
		return nil, err
	}

	serialized, err := hex.DecodeString(strings.TrimSpace(string(body)))
	if err != nil {
		return nil, fmt.Errorf("invalid transaction hex: %w", err)
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(serialized)); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}

	return tx, nil
}

// SpendableOutputs queries /address/:address/utxo for every address. The
// output script is derived from the address since the API omits it.
func (s *EsploraService) SpendableOutputs(ctx context.Context,
	addrs []btcutil.Address) ([]txauthor.Spendable, error) {

	var spendables []txauthor.Spendable
	for _, addr := range addrs {
		if !addr.IsForNet(s.chainParams) {
			return nil, fmt.Errorf("address %v is not for %v", addr,
				s.chainParams.Name)
		}
		pkScript, err := txscript.PayToAddrScript(addr)
		if err != nil {
			return nil, err
		}

		body, err := s.get(ctx, "/address/"+addr.EncodeAddress()+"/utxo")
		if err != nil {
			return nil, err
		}
		var utxos []esploraUtxo
		if err := json.Unmarshal(body, &utxos); err != nil {
			return nil, fmt.Errorf("invalid utxo response: %w", err)
		}

		for _, u := range utxos {
			hash, err := chainhash.NewHashFromStr(u.TxID)
			if err != nil {
				return nil, fmt.Errorf("invalid txid %q: %w",
					u.TxID, err)
			}
			spendables = append(spendables, txauthor.Spendable{
				OutPoint: *wire.NewOutPoint(hash, u.Vout),
				Value:    btcutil.Amount(u.Value),
				PkScript: pkScript,
			})
		}
	}

	log.Debugf("Found %d unspent outputs for %d addresses",
		len(spendables), len(addrs))

	return spendables, nil
}

// Broadcast posts the serialized transaction to /tx.
func (s *EsploraService) Broadcast(ctx context.Context, tx *wire.MsgTx) error {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize() * 2)
	if err := tx.Serialize(hex.NewEncoder(&buf)); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseURL+"/tx", &buf,
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain")

	body, status, err := s.do(req)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusOK:
		log.Infof("Broadcast transaction %v", strings.TrimSpace(
			string(body)))
		return nil

	// Esplora answers 400 with the node's rejection message.
	case status == http.StatusBadRequest:
		return newBroadcastRejectedError(
			errors.New(strings.TrimSpace(string(body))),
		)

	default:
		return fmt.Errorf("esplora broadcast: unexpected status %d: %s",
			status, strings.TrimSpace(string(body)))
	}
}

// Confirmations derives the confirmation count from /tx/:txid/status and
// /blocks/tip/height.
func (s *EsploraService) Confirmations(ctx context.Context,
	txid *chainhash.Hash) (int64, error) {

	body, err := s.get(ctx, "/tx/"+txid.String()+"/status")
	switch {
	case errors.Is(err, errEsploraNotFound):
		return 0, nil

	case err != nil:
		return 0, err
	}

	var status esploraStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return 0, fmt.Errorf("invalid status response: %w", err)
	}
	if !status.Confirmed {
		return 0, nil
	}

	body, err = s.get(ctx, "/blocks/tip/height")
	if err != nil {
		return 0, err
	}
	tip, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid tip height: %w", err)
	}
	if tip < status.BlockHeight {
		return 0, fmt.Errorf("tip height %d below block height %d",
			tip, status.BlockHeight)
	}

	return tip - status.BlockHeight + 1, nil
}

// get performs a GET request for path and returns the body of a 200
// response.
func (s *EsploraService) get(ctx context.Context, path string) ([]byte,
	error) {

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, s.baseURL+path, nil,
	)
	if err != nil {
		return nil, err
	}

	body, status, err := s.do(req)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return body, nil

	case http.StatusNotFound:
		return nil, errEsploraNotFound

	default:
		return nil, fmt.Errorf("esplora GET %s: unexpected status %d: "+
			"%s", path, status, strings.TrimSpace(string(body)))
	}
}

// do sends req and reads a bounded response body.
func (s *EsploraService) do(req *http.Request) ([]byte, int, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEsploraResponse))
	if err != nil {
		return nil, 0, err
	}

	return body, resp.StatusCode, nil
}
