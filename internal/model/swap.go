package model

import "time"

// QuoteSource says where a swap quote came from.
type QuoteSource string

const (
	QuoteSourceAggregator QuoteSource = "aggregator"
	QuoteSourceFallback   QuoteSource = "fallback"
)

// SwapQuote is a priced exchange of FromToken for ToToken. Amounts are
// decimal strings in human units.
type SwapQuote struct {
	FromToken   string      `json:"fromToken"`
	ToToken     string      `json:"toToken"`
	FromAmount  string      `json:"fromAmount"`
	ToAmount    string      `json:"toAmount"`
	Price       float64     `json:"price"`
	PriceImpact float64     `json:"priceImpact"` // percent, capped at 5
	Slippage    float64     `json:"slippage"`
	Source      QuoteSource `json:"source"`
}

// OrderStatus is the lifecycle state of an execution order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusSubmitted OrderStatus = "submitted"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusFailed    OrderStatus = "failed"
)

// OrderDirection is inferred from which side is the base asset.
type OrderDirection string

const (
	OrderBuy  OrderDirection = "buy"
	OrderSell OrderDirection = "sell"
)

// ExecutionOrder is one entry in the append-only swap history.
type ExecutionOrder struct {
	ID         string         `json:"id"`
	Direction  OrderDirection `json:"direction"`
	FromToken  string         `json:"fromToken"`
	ToToken    string         `json:"toToken"`
	FromAmount string         `json:"fromAmount"`
	ToAmount   string         `json:"toAmount"`
	Status     OrderStatus    `json:"status"`
	TxID       string         `json:"txId,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}
