package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/peerswap/walletcore/internal/model"
)

// AggregatorClient asks the external swap aggregator for quotes and submits
// orders there. An empty quote response is not an error: the orchestrator
// falls back to a synthetic ticker-based quote.
type AggregatorClient struct {
	baseURL string
	client  *http.Client
}

// NewAggregatorClient creates a client for the swap aggregator API.
func NewAggregatorClient(baseURL string, timeout time.Duration) *AggregatorClient {
	return &AggregatorClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type aggregatorQuote struct {
	FromToken   string  `json:"fromToken"`
	ToToken     string  `json:"toToken"`
	FromAmount  string  `json:"fromAmount"`
	ToAmount    string  `json:"toAmount"`
	Price       float64 `json:"price"`
	PriceImpact float64 `json:"priceImpact"`
}

// Quote fetches a quote. Returns (nil, nil) when the aggregator has no route.
func (c *AggregatorClient) Quote(ctx context.Context, fromToken, toToken, amount string, slippage float64) (*model.SwapQuote, error) {
	if c.baseURL == "" {
		return nil, nil
	}

	q := url.Values{}
	q.Set("from", fromToken)
	q.Set("to", toToken)
	q.Set("amount", amount)
	q.Set("slippage", strconv.FormatFloat(slippage, 'f', -1, 64))

	endpoint := fmt.Sprintf("%s/quote?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.BackendError{Op: "aggregator quote", Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &model.BackendError{Op: "aggregator quote", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &model.BackendError{Op: "aggregator quote", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var body aggregatorQuote
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &model.BackendError{Op: "aggregator quote", Err: err}
	}
	if body.ToAmount == "" {
		return nil, nil
	}

	return &model.SwapQuote{
		FromToken:   fromToken,
		ToToken:     toToken,
		FromAmount:  amount,
		ToAmount:    body.ToAmount,
		Price:       body.Price,
		PriceImpact: body.PriceImpact,
		Slippage:    slippage,
		Source:      model.QuoteSourceAggregator,
	}, nil
}

type submitRequest struct {
	FromToken   string `json:"fromToken"`
	ToToken     string `json:"toToken"`
	FromAmount  string `json:"fromAmount"`
	ToAmount    string `json:"toAmount"`
	FromAddress string `json:"fromAddress"`
	ToAddress   string `json:"toAddress"`
}

type submitResponse struct {
	OrderID string `json:"orderId"`
}

// Submit sends an order to the aggregator. The wallet's own address is both
// source and destination: the aggregator settles back to the sender.
func (c *AggregatorClient) Submit(ctx context.Context, quote *model.SwapQuote, walletAddress string) (string, error) {
	body, err := json.Marshal(submitRequest{
		FromToken:   quote.FromToken,
		ToToken:     quote.ToToken,
		FromAmount:  quote.FromAmount,
		ToAmount:    quote.ToAmount,
		FromAddress: walletAddress,
		ToAddress:   walletAddress,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", &model.BackendError{Op: "aggregator submit", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &model.BackendError{Op: "aggregator submit", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", &model.BackendError{Op: "aggregator submit", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &model.BackendError{Op: "aggregator submit", Err: err}
	}
	return out.OrderID, nil
}
