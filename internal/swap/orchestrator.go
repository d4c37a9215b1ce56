// Package swap drives quote retrieval and the order lifecycle, asking the
// wallet manager for key material and a chain signer for signatures.
package swap

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peerswap/walletcore/internal/client"
	"github.com/peerswap/walletcore/internal/common"
	"github.com/peerswap/walletcore/internal/model"
	"github.com/peerswap/walletcore/internal/signer"
	"github.com/peerswap/walletcore/internal/store"
)

// maxPriceImpact caps the synthetic-quote price impact estimate, percent.
const maxPriceImpact = 5.0

// Aggregator is the external swap-quote provider.
type Aggregator interface {
	Quote(ctx context.Context, fromToken, toToken, amount string, slippage float64) (*model.SwapQuote, error)
	Submit(ctx context.Context, quote *model.SwapQuote, walletAddress string) (string, error)
}

// Ticker supplies market prices for synthetic fallback quotes.
type Ticker interface {
	Ticker(ctx context.Context, assetID, vsCurrency string) (*client.Ticker, error)
}

// quoteAssets marks the tokens treated as the quote side when inferring
// order direction.
var quoteAssets = map[string]bool{"USDT": true, "USDC": true, "DAI": true}

// Orchestrator glues quotes, orders, wallets and signers together.
type Orchestrator struct {
	signers    *signer.Registry
	aggregator Aggregator
	ticker     Ticker
	store      *store.Store
	log        *zap.Logger
}

// NewOrchestrator creates a swap orchestrator. log may be nil.
func NewOrchestrator(signers *signer.Registry, aggregator Aggregator, ticker Ticker, st *store.Store, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		signers:    signers,
		aggregator: aggregator,
		ticker:     ticker,
		store:      st,
		log:        log,
	}
}

// Quote asks the aggregator first and falls back to a synthetic quote built
// from the market ticker when the aggregator has no route. Slippage is a
// fraction (0.01 = 1%) applied as a multiplicative haircut on the output.
func (o *Orchestrator) Quote(ctx context.Context, fromToken, toToken, amount string, slippage float64) (*model.SwapQuote, error) {
	if o.aggregator != nil {
		quote, err := o.aggregator.Quote(ctx, fromToken, toToken, amount, slippage)
		if err != nil {
			o.log.Warn("aggregator quote failed, using fallback", zap.Error(err))
		} else if quote != nil {
			return quote, nil
		}
	}

	return o.syntheticQuote(ctx, fromToken, toToken, amount, slippage)
}

func (o *Orchestrator) syntheticQuote(ctx context.Context, fromToken, toToken, amount string, slippage float64) (*model.SwapQuote, error) {
	tick, err := o.ticker.Ticker(ctx, fromToken, toToken)
	if err != nil {
		return nil, err
	}
	if tick.Price <= 0 {
		return nil, fmt.Errorf("no market price for %s/%s", fromToken, toToken)
	}

	amt, err := strconv.ParseFloat(amount, 64)
	if err != nil || amt <= 0 {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}

	notional := amt * tick.Price
	toAmount := notional * (1 - slippage)

	priceImpact := 0.0
	if tick.Volume24h > 0 {
		priceImpact = notional / tick.Volume24h * 100
		if priceImpact > maxPriceImpact {
			priceImpact = maxPriceImpact
		}
	}

	return &model.SwapQuote{
		FromToken:   fromToken,
		ToToken:     toToken,
		FromAmount:  amount,
		ToAmount:    strconv.FormatFloat(toAmount, 'f', -1, 64),
		Price:       tick.Price,
		PriceImpact: priceImpact,
		Slippage:    slippage,
		Source:      model.QuoteSourceFallback,
	}, nil
}

// NewOrder constructs a pending execution order. Direction is inferred: a
// swap out of a quote asset buys the other side, anything else is a sell.
func NewOrder(fromToken, toToken, fromAmount, toAmount string) model.ExecutionOrder {
	direction := model.OrderSell
	if quoteAssets[fromToken] {
		direction = model.OrderBuy
	}
	now := time.Now().UTC()
	return model.ExecutionOrder{
		ID:         uuid.NewString(),
		Direction:  direction,
		FromToken:  fromToken,
		ToToken:    toToken,
		FromAmount: fromAmount,
		ToAmount:   toAmount,
		Status:     model.OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Execute runs one swap end to end. Aggregator-routed quotes are submitted
// there directly, with the wallet's own address as both source and
// destination. Without an aggregator route the balance check still runs and
// fails early, but execution stops loudly: this subsystem has no trade
// destination to sign against, and fabricating a transaction id would hide
// that. Every outcome lands in the order history.
func (o *Orchestrator) Execute(ctx context.Context, w *model.WalletRecord, fromToken, toToken, amount string, slippage float64, userID string) (*model.ExecutionOrder, error) {
	quote, err := o.Quote(ctx, fromToken, toToken, amount, slippage)
	if err != nil {
		return nil, err
	}

	order := NewOrder(fromToken, toToken, quote.FromAmount, quote.ToAmount)

	if quote.Source == model.QuoteSourceAggregator {
		orderID, err := o.aggregator.Submit(ctx, quote, w.Address)
		if err != nil {
			order.Status = model.OrderStatusFailed
			o.push(userID, order)
			return nil, err
		}
		order.Status = model.OrderStatusSubmitted
		order.TxID = orderID
		order.UpdatedAt = time.Now().UTC()
		o.push(userID, order)
		return &order, nil
	}

	chain, err := w.Chain()
	if err != nil {
		return nil, err
	}
	chainSigner, err := o.signers.For(chain)
	if err != nil {
		return nil, err
	}

	// The funds check runs before anything is constructed or signed, against
	// the asset actually being sold: the native coin when fromToken is the
	// chain's own symbol, the token balance otherwise.
	asset := ""
	if !strings.EqualFold(fromToken, chain.Params().Symbol) {
		asset = fromToken
	}
	have, err := chainSigner.Balance(ctx, w.Address, asset)
	if err != nil {
		return nil, err
	}
	need, err := common.ParseToBaseUnits(amount, chain.Params().Decimals)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if have.Cmp(need) < 0 {
		order.Status = model.OrderStatusRejected
		o.push(userID, order)
		return nil, &model.InsufficientFundsError{Chain: chain, Need: need, Have: have}
	}

	order.Status = model.OrderStatusRejected
	order.UpdatedAt = time.Now().UTC()
	o.push(userID, order)
	return nil, &model.SigningError{
		Chain:  chain,
		Reason: "direct on-chain swap execution requires an aggregator route",
	}
}

// History returns the user's order log, newest first, capped at 50 entries.
func (o *Orchestrator) History(userID string) ([]model.ExecutionOrder, error) {
	return o.store.History(userID)
}

func (o *Orchestrator) push(userID string, order model.ExecutionOrder) {
	if err := o.store.PushOrder(userID, order); err != nil {
		o.log.Warn("recording order failed", zap.String("order", order.ID), zap.Error(err))
	}
}
