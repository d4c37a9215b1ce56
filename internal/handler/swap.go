package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/peerswap/walletcore/internal/model"
	"github.com/peerswap/walletcore/internal/swap"
	"github.com/peerswap/walletcore/internal/wallet"
)

// SwapHandler exposes swap quoting and execution over HTTP.
type SwapHandler struct {
	manager      *wallet.Manager
	orchestrator *swap.Orchestrator
}

// NewSwapHandler creates a SwapHandler.
func NewSwapHandler(manager *wallet.Manager, orchestrator *swap.Orchestrator) *SwapHandler {
	return &SwapHandler{manager: manager, orchestrator: orchestrator}
}

// Quote handles GET /swap/quote
// @Summary      Swap quote
// @Description  Prices a token swap via the aggregator, falling back to a ticker-based estimate when no route exists.
// @Tags         swap
// @Produce      json
// @Param        from      query     string  true   "Token to sell"
// @Param        to        query     string  true   "Token to buy"
// @Param        amount    query     string  true   "Amount to sell, human units"
// @Param        slippage  query     number  false  "Slippage tolerance as a fraction, default 0.01"
// @Success      200       {object}  model.SwapQuote
// @Router       /swap/quote [get]
func (h *SwapHandler) Quote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	from, to, amount := q.Get("from"), q.Get("to"), q.Get("amount")
	if from == "" || to == "" || amount == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "from, to and amount are required"})
		return
	}

	slippage := 0.01
	if s := q.Get("slippage"); s != "" {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil || parsed < 0 || parsed >= 1 {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "slippage must be a fraction in [0, 1)"})
			return
		}
		slippage = parsed
	}

	quote, err := h.orchestrator.Quote(r.Context(), from, to, amount, slippage)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// Execute handles POST /swap/execute
// @Summary      Execute swap
// @Description  Quotes and submits a swap for the user's wallet on the chain. The outcome is recorded in order history.
// @Tags         swap
// @Accept       json
// @Produce      json
// @Param        request  body      model.SwapExecuteRequest  true  "Swap data"
// @Success      200      {object}  model.ExecutionOrder
// @Router       /swap/execute [post]
func (h *SwapHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SwapExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	chain, err := model.ParseChain(req.Chain)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	record, err := h.manager.WalletByChain(r.Context(), req.UserID, chain)
	if err != nil {
		writeError(w, err)
		return
	}
	if record == nil {
		writeError(w, fmt.Errorf("no %s wallet: %w", chain, model.ErrNotFound))
		return
	}

	slippage := req.Slippage
	if slippage <= 0 {
		slippage = 0.01
	}

	order, err := h.orchestrator.Execute(r.Context(), record, req.FromToken, req.ToToken, req.Amount, slippage, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// History handles GET /swap/history
// @Summary      Swap order history
// @Description  Lists the user's past orders, newest first, capped at 50.
// @Tags         swap
// @Produce      json
// @Param        userId  query    string  true  "User identifier"
// @Success      200     {array}  model.ExecutionOrder
// @Router       /swap/history [get]
func (h *SwapHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "userId is required"})
		return
	}

	orders, err := h.orchestrator.History(userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
