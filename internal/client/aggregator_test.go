package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peerswap/walletcore/internal/model"
)

func TestAggregatorQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		require.Equal(t, "ETH", r.URL.Query().Get("from"))
		json.NewEncoder(w).Encode(aggregatorQuote{
			FromToken: "ETH", ToToken: "USDT",
			FromAmount: "1", ToAmount: "2970",
			Price: 3000, PriceImpact: 0.3,
		})
	}))
	defer srv.Close()

	c := NewAggregatorClient(srv.URL, time.Second)
	quote, err := c.Quote(context.Background(), "ETH", "USDT", "1", 0.01)
	require.NoError(t, err)
	require.Equal(t, model.QuoteSourceAggregator, quote.Source)
	require.Equal(t, "2970", quote.ToAmount)
	require.Equal(t, 0.01, quote.Slippage)
}

func TestAggregatorQuoteNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewAggregatorClient(srv.URL, time.Second)
	quote, err := c.Quote(context.Background(), "ETH", "OBSCURE", "1", 0.01)
	require.NoError(t, err)
	require.Nil(t, quote)

	// An unconfigured aggregator behaves the same as no route.
	c = NewAggregatorClient("", time.Second)
	quote, err = c.Quote(context.Background(), "ETH", "USDT", "1", 0.01)
	require.NoError(t, err)
	require.Nil(t, quote)
}

func TestAggregatorSubmitSettlesToSender(t *testing.T) {
	var got submitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(submitResponse{OrderID: "order-9"})
	}))
	defer srv.Close()

	c := NewAggregatorClient(srv.URL, time.Second)
	orderID, err := c.Submit(context.Background(), &model.SwapQuote{
		FromToken: "ETH", ToToken: "USDT", FromAmount: "1", ToAmount: "2970",
	}, "0xabc")
	require.NoError(t, err)
	require.Equal(t, "order-9", orderID)
	require.Equal(t, "0xabc", got.FromAddress)
	require.Equal(t, "0xabc", got.ToAddress)
}

func TestAggregatorSubmitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewAggregatorClient(srv.URL, time.Second)
	_, err := c.Submit(context.Background(), &model.SwapQuote{}, "0xabc")

	var backend *model.BackendError
	require.ErrorAs(t, err, &backend)
}
