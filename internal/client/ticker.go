package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/peerswap/walletcore/internal/model"
)

// TickerClient fetches market prices used for synthetic fallback quotes.
type TickerClient struct {
	baseURL string
	client  *http.Client
}

// NewTickerClient creates a new market ticker client.
func NewTickerClient(baseURL string, timeout time.Duration) *TickerClient {
	return &TickerClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Ticker is the market snapshot for one asset pair.
type Ticker struct {
	Price     float64 `json:"current_price"`
	Volume24h float64 `json:"total_volume"`
}

// Ticker returns the current price and 24h volume for an asset id quoted
// in the given currency.
func (c *TickerClient) Ticker(ctx context.Context, assetID, vsCurrency string) (*Ticker, error) {
	q := url.Values{}
	q.Set("ids", assetID)
	q.Set("vs_currency", vsCurrency)

	endpoint := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.BackendError{Op: "ticker", Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &model.BackendError{Op: "ticker", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.BackendError{Op: "ticker", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var tickers []Ticker
	if err := json.NewDecoder(resp.Body).Decode(&tickers); err != nil {
		return nil, &model.BackendError{Op: "ticker", Err: err}
	}
	if len(tickers) == 0 {
		return nil, &model.BackendError{Op: "ticker", Err: fmt.Errorf("no market data for %s", assetID)}
	}

	return &tickers[0], nil
}
