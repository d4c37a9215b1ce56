package swap

import (
	"context"
	"errors"
	"math/big"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peerswap/walletcore/internal/client"
	"github.com/peerswap/walletcore/internal/model"
	"github.com/peerswap/walletcore/internal/signer"
	"github.com/peerswap/walletcore/internal/store"
)

type stubAggregator struct {
	quote     *model.SwapQuote
	err       error
	submitted string
	submitErr error
}

func (s *stubAggregator) Quote(ctx context.Context, fromToken, toToken, amount string, slippage float64) (*model.SwapQuote, error) {
	return s.quote, s.err
}

func (s *stubAggregator) Submit(ctx context.Context, quote *model.SwapQuote, walletAddress string) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	return s.submitted, nil
}

type stubTicker struct {
	price  float64
	volume float64
	err    error
}

func (s *stubTicker) Ticker(ctx context.Context, assetID, vsCurrency string) (*client.Ticker, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &client.Ticker{Price: s.price, Volume24h: s.volume}, nil
}

// stubSigner satisfies the chain signer surface with a fixed balance.
type stubSigner struct {
	chain     model.Chain
	balance   *big.Int
	lastAsset string
}

func (s *stubSigner) Chain() model.Chain { return s.chain }
func (s *stubSigner) Address(ctx context.Context, phrase string) (string, error) {
	return "stub", nil
}
func (s *stubSigner) Balance(ctx context.Context, address, asset string) (*big.Int, error) {
	s.lastAsset = asset
	return s.balance, nil
}
func (s *stubSigner) Sign(ctx context.Context, phrase string, req any) (*model.SignedTx, error) {
	return nil, &model.SigningError{Chain: s.chain, Reason: "stub"}
}
func (s *stubSigner) Broadcast(ctx context.Context, raw []byte) (string, error) {
	return "", &model.SigningError{Chain: s.chain, Reason: "stub"}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func ethWallet() *model.WalletRecord {
	return &model.WalletRecord{ID: "w1", ChainID: "ethereum", Address: "0xabc", IsActive: true}
}

func TestQuotePrefersAggregator(t *testing.T) {
	agg := &stubAggregator{quote: &model.SwapQuote{
		FromToken: "ETH", ToToken: "USDT", ToAmount: "3000", Source: model.QuoteSourceAggregator,
	}}
	o := NewOrchestrator(nil, agg, &stubTicker{}, newTestStore(t), nil)

	quote, err := o.Quote(context.Background(), "ETH", "USDT", "1", 0.01)
	require.NoError(t, err)
	require.Equal(t, model.QuoteSourceAggregator, quote.Source)
	require.Equal(t, "3000", quote.ToAmount)
}

func TestQuoteSyntheticFallback(t *testing.T) {
	// No aggregator route; price 2.0, deep book.
	o := NewOrchestrator(nil, &stubAggregator{}, &stubTicker{price: 2.0, volume: 1e6}, newTestStore(t), nil)

	quote, err := o.Quote(context.Background(), "ETH", "USDT", "100", 0.01)
	require.NoError(t, err)
	require.Equal(t, model.QuoteSourceFallback, quote.Source)

	// 100 * 2.0 with a 1% haircut.
	toAmount, err := strconv.ParseFloat(quote.ToAmount, 64)
	require.NoError(t, err)
	require.InDelta(t, 198.0, toAmount, 1e-9)

	// notional 200 over 1e6 daily volume.
	require.InDelta(t, 0.02, quote.PriceImpact, 1e-9)
}

func TestQuoteSyntheticFallbackOnAggregatorError(t *testing.T) {
	agg := &stubAggregator{err: errors.New("aggregator down")}
	o := NewOrchestrator(nil, agg, &stubTicker{price: 1.5, volume: 1e6}, newTestStore(t), nil)

	quote, err := o.Quote(context.Background(), "ETH", "USDT", "10", 0)
	require.NoError(t, err)
	require.Equal(t, model.QuoteSourceFallback, quote.Source)
}

func TestQuotePriceImpactCapped(t *testing.T) {
	// notional = 1000 against a 100-unit daily volume: way past the cap.
	o := NewOrchestrator(nil, nil, &stubTicker{price: 10, volume: 100}, newTestStore(t), nil)

	quote, err := o.Quote(context.Background(), "ETH", "USDT", "100", 0)
	require.NoError(t, err)
	require.Equal(t, 5.0, quote.PriceImpact)
}

func TestQuoteRejectsBadInput(t *testing.T) {
	o := NewOrchestrator(nil, nil, &stubTicker{price: 2.0, volume: 1e6}, newTestStore(t), nil)

	_, err := o.Quote(context.Background(), "ETH", "USDT", "not-a-number", 0)
	require.Error(t, err)

	o = NewOrchestrator(nil, nil, &stubTicker{price: 0}, newTestStore(t), nil)
	_, err = o.Quote(context.Background(), "ETH", "USDT", "1", 0)
	require.Error(t, err)
}

func TestNewOrderDirection(t *testing.T) {
	sell := NewOrder("ETH", "USDT", "1", "3000")
	require.Equal(t, model.OrderSell, sell.Direction)
	require.Equal(t, model.OrderStatusPending, sell.Status)
	require.NotEmpty(t, sell.ID)

	buy := NewOrder("USDT", "ETH", "3000", "1")
	require.Equal(t, model.OrderBuy, buy.Direction)
}

func TestExecuteAggregatorRoute(t *testing.T) {
	agg := &stubAggregator{
		quote: &model.SwapQuote{
			FromToken: "ETH", ToToken: "USDT",
			FromAmount: "1", ToAmount: "3000",
			Source: model.QuoteSourceAggregator,
		},
		submitted: "order-123",
	}
	st := newTestStore(t)
	o := NewOrchestrator(nil, agg, &stubTicker{}, st, nil)

	order, err := o.Execute(context.Background(), ethWallet(), "ETH", "USDT", "1", 0.01, "u1")
	require.NoError(t, err)
	require.Equal(t, model.OrderStatusSubmitted, order.Status)
	require.Equal(t, "order-123", order.TxID)

	history, err := st.History("u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, model.OrderStatusSubmitted, history[0].Status)
}

func TestExecuteAggregatorSubmitFailure(t *testing.T) {
	agg := &stubAggregator{
		quote: &model.SwapQuote{
			FromToken: "ETH", ToToken: "USDT",
			FromAmount: "1", ToAmount: "3000",
			Source: model.QuoteSourceAggregator,
		},
		submitErr: errors.New("order rejected upstream"),
	}
	st := newTestStore(t)
	o := NewOrchestrator(nil, agg, &stubTicker{}, st, nil)

	_, err := o.Execute(context.Background(), ethWallet(), "ETH", "USDT", "1", 0.01, "u1")
	require.Error(t, err)

	history, err := st.History("u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, model.OrderStatusFailed, history[0].Status)
}

func TestExecuteFallbackInsufficientFunds(t *testing.T) {
	// Wallet holds 1 wei; the order needs 1 ETH.
	signers := signer.NewRegistry(&stubSigner{chain: model.ChainEthereum, balance: big.NewInt(1)})
	st := newTestStore(t)
	o := NewOrchestrator(signers, nil, &stubTicker{price: 3000, volume: 1e9}, st, nil)

	_, err := o.Execute(context.Background(), ethWallet(), "ETH", "USDT", "1", 0.01, "u1")

	var insufficient *model.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, model.ChainEthereum, insufficient.Chain)

	history, err := st.History("u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, model.OrderStatusRejected, history[0].Status)
}

// Selling a token must check the token balance, not the native coin;
// selling the native coin still queries with an empty asset.
func TestExecuteFallbackChecksSoldAsset(t *testing.T) {
	chainSigner := &stubSigner{chain: model.ChainEthereum, balance: big.NewInt(1)}
	signers := signer.NewRegistry(chainSigner)
	st := newTestStore(t)
	o := NewOrchestrator(signers, nil, &stubTicker{price: 1, volume: 1e9}, st, nil)

	_, err := o.Execute(context.Background(), ethWallet(), "USDC", "ETH", "1", 0.01, "u1")
	var insufficient *model.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, "USDC", chainSigner.lastAsset)

	_, err = o.Execute(context.Background(), ethWallet(), "eth", "USDT", "1", 0.01, "u2")
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, "", chainSigner.lastAsset)
}

func TestExecuteFallbackIsGated(t *testing.T) {
	// Funds suffice, but there is no route to submit to: the order is
	// rejected loudly instead of fabricating a transaction.
	balance, _ := new(big.Int).SetString("2000000000000000000", 10)
	signers := signer.NewRegistry(&stubSigner{chain: model.ChainEthereum, balance: balance})
	st := newTestStore(t)
	o := NewOrchestrator(signers, nil, &stubTicker{price: 3000, volume: 1e9}, st, nil)

	order, err := o.Execute(context.Background(), ethWallet(), "ETH", "USDT", "1", 0.01, "u1")
	require.Nil(t, order)

	var signing *model.SigningError
	require.ErrorAs(t, err, &signing)

	history, err := st.History("u1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, model.OrderStatusRejected, history[0].Status)
}
