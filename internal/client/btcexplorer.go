package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/peerswap/walletcore/internal/model"
)

// BitcoinExplorerClient talks to an Esplora-style block explorer API for
// UTXO lookup and raw transaction broadcast.
type BitcoinExplorerClient struct {
	baseURL string
	client  *http.Client
}

// NewBitcoinExplorerClient creates a client for a block-explorer API.
func NewBitcoinExplorerClient(baseURL string, timeout time.Duration) *BitcoinExplorerClient {
	return &BitcoinExplorerClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type utxoStatus struct {
	Confirmed bool `json:"confirmed"`
}

type explorerUTXO struct {
	TxID   string     `json:"txid"`
	Vout   uint32     `json:"vout"`
	Value  int64      `json:"value"`
	Status utxoStatus `json:"status"`
}

// UTXOs returns the confirmed unspent outputs for an address.
func (c *BitcoinExplorerClient) UTXOs(ctx context.Context, address string) ([]model.UTXO, error) {
	endpoint := fmt.Sprintf("%s/address/%s/utxo", c.baseURL, address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.BackendError{Op: "utxo lookup", Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &model.BackendError{Op: "utxo lookup", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.BackendError{Op: "utxo lookup", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var raw []explorerUTXO
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &model.BackendError{Op: "utxo lookup", Err: err}
	}

	utxos := make([]model.UTXO, 0, len(raw))
	for _, u := range raw {
		if !u.Status.Confirmed {
			continue
		}
		utxos = append(utxos, model.UTXO{TxID: u.TxID, Vout: u.Vout, Value: u.Value})
	}
	return utxos, nil
}

// Broadcast submits a raw signed transaction and returns the network txid.
func (c *BitcoinExplorerClient) Broadcast(ctx context.Context, rawTx []byte) (string, error) {
	body := bytes.NewBufferString(hex.EncodeToString(rawTx))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tx", body)
	if err != nil {
		return "", &model.BackendError{Op: "broadcast", Err: err}
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &model.BackendError{Op: "broadcast", Err: err}
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &model.BackendError{Op: "broadcast", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &model.BackendError{Op: "broadcast", Err: fmt.Errorf("status %d: %s", resp.StatusCode, out)}
	}

	return string(bytes.TrimSpace(out)), nil
}
