package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/skip2/go-qrcode"

	"github.com/peerswap/walletcore/internal/common"
	"github.com/peerswap/walletcore/internal/model"
	"github.com/peerswap/walletcore/internal/signer"
	"github.com/peerswap/walletcore/internal/wallet"
)

// qrSize is the edge length in pixels of receive-address QR codes.
const qrSize = 256

// WalletHandler exposes wallet lifecycle operations over HTTP.
type WalletHandler struct {
	manager *wallet.Manager
	signers *signer.Registry
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(manager *wallet.Manager, signers *signer.Registry) *WalletHandler {
	return &WalletHandler{manager: manager, signers: signers}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto HTTP statuses with a consistent body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var insufficient *model.InsufficientFundsError
	var signing *model.SigningError
	switch {
	case errors.Is(err, model.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrWalletExists):
		status = http.StatusConflict
	case errors.Is(err, model.ErrFormat):
		status = http.StatusBadRequest
	case errors.As(err, &insufficient):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &signing):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

// Generate handles POST /wallets/generate
// @Summary      Generate new wallet
// @Description  Generates a wallet for the chain, optionally reusing an existing recovery phrase. The phrase is returned once.
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.GenerateWalletRequest  true  "Generation data"
// @Success      200      {object}  model.GenerateWalletResponse
// @Router       /wallets/generate [post]
func (h *WalletHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.GenerateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	chain, err := model.ParseChain(req.Chain)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	record, phrase, err := h.manager.Generate(r.Context(), chain, req.Password, req.UserID, req.ExistingMnemonic)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateWalletResponse{Wallet: record, Mnemonic: phrase})
}

// Import handles POST /wallets/import
// @Summary      Import wallet from recovery phrase
// @Description  Restores a wallet from a mnemonic. When expectedAddress is set, the derived address must match it exactly.
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.ImportWalletRequest  true  "Import data"
// @Success      200      {object}  model.WalletRecord
// @Router       /wallets/import [post]
func (h *WalletHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.ImportWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	chain, err := model.ParseChain(req.Chain)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	record, err := h.manager.Import(r.Context(), chain, req.Mnemonic, req.Password, req.UserID, req.ExpectedAddress)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// List handles GET /wallets
// @Summary      List wallets
// @Description  Lists the user's wallets. Encrypted material never leaves the vault fields.
// @Tags         wallets
// @Produce      json
// @Param        userId  query     string  true  "User identifier"
// @Success      200     {array}   model.WalletRecord
// @Router       /wallets [get]
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "userId is required"})
		return
	}

	wallets, err := h.manager.Wallets(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, wallets)
}

// RevealMnemonic handles POST /wallets/mnemonic
// @Summary      Reveal recovery phrase
// @Description  Decrypts and returns the stored mnemonic. Requires the vault password.
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.RevealMnemonicRequest  true  "Reveal data"
// @Success      200      {object}  model.RevealMnemonicResponse
// @Router       /wallets/mnemonic [post]
func (h *WalletHandler) RevealMnemonic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.RevealMnemonicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	phrase, err := h.manager.Mnemonic(r.Context(), req.WalletID, req.Password, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.RevealMnemonicResponse{Mnemonic: phrase})
}

// Availability handles GET /wallets/availability
// @Summary      Wallet availability state
// @Description  Reports the most capable state for the chain, restoring from remote backup when only the backup copy exists.
// @Tags         wallets
// @Produce      json
// @Param        userId  query     string  true  "User identifier"
// @Param        chain   query     string  true  "Chain name"
// @Success      200     {object}  model.AvailabilityResponse
// @Router       /wallets/availability [get]
func (h *WalletHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	chain, err := model.ParseChain(r.URL.Query().Get("chain"))
	if userID == "" || err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "userId and a valid chain are required"})
		return
	}

	availability, record, err := h.manager.Availability(r.Context(), chain, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AvailabilityResponse{
		Chain:        string(chain),
		Availability: availability.String(),
		Wallet:       record,
	})
}

// Receive handles GET /wallets/receive
// @Summary      Receive address QR code
// @Description  Renders the wallet's receive address as a PNG QR code.
// @Tags         wallets
// @Produce      png
// @Param        userId  query  string  true  "User identifier"
// @Param        chain   query  string  true  "Chain name"
// @Success      200
// @Router       /wallets/receive [get]
func (h *WalletHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	chain, err := model.ParseChain(r.URL.Query().Get("chain"))
	if userID == "" || err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "userId and a valid chain are required"})
		return
	}

	record, err := h.manager.WalletByChain(r.Context(), userID, chain)
	if err != nil {
		writeError(w, err)
		return
	}
	if record == nil {
		writeError(w, fmt.Errorf("no %s wallet: %w", chain, model.ErrNotFound))
		return
	}

	png, err := qrcode.Encode(record.Address, qrcode.Medium, qrSize)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// Balance handles GET /wallets/balance
// @Summary      Wallet balance
// @Description  Returns the confirmed on-chain balance in human units.
// @Tags         wallets
// @Produce      json
// @Param        userId  query     string  true   "User identifier"
// @Param        chain   query     string  true   "Chain name"
// @Param        asset   query     string  false  "Token identifier, empty for the native coin"
// @Success      200     {object}  model.BalanceResponse
// @Router       /wallets/balance [get]
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	chain, err := model.ParseChain(r.URL.Query().Get("chain"))
	if userID == "" || err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "userId and a valid chain are required"})
		return
	}
	asset := r.URL.Query().Get("asset")

	record, err := h.manager.WalletByChain(r.Context(), userID, chain)
	if err != nil {
		writeError(w, err)
		return
	}
	if record == nil {
		writeError(w, fmt.Errorf("no %s wallet: %w", chain, model.ErrNotFound))
		return
	}

	chainSigner, err := h.signers.For(chain)
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := chainSigner.Balance(r.Context(), record.Address, asset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.BalanceResponse{
		Chain:   string(chain),
		Address: record.Address,
		Balance: common.FormatBaseUnits(balance, chain.Params().Decimals),
		Asset:   asset,
	})
}

// Send handles POST /wallets/send
// @Summary      Send funds
// @Description  Signs a transfer with the wallet's key and broadcasts it. The recovery phrase is decrypted only for the duration of the call.
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request  body      model.SendRequest  true  "Transfer data"
// @Success      200      {object}  model.SendResponse
// @Router       /wallets/send [post]
func (h *WalletHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SendRequest
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

	phrase, err := h.manager.Mnemonic(r.Context(), record.ID, req.Password, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	chainSigner, err := h.signers.For(chain)
	if err != nil {
		writeError(w, err)
		return
	}

	signReq, err := h.buildSignRequest(r.Context(), chain, record.Address, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	signed, err := chainSigner.Sign(r.Context(), phrase, signReq)
	if err != nil {
		writeError(w, err)
		return
	}

	txID, err := chainSigner.Broadcast(r.Context(), signed.Raw)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.SendResponse{TxID: txID})
}

// buildSignRequest shapes the generic transfer into the chain's request type.
func (h *WalletHandler) buildSignRequest(ctx context.Context, chain model.Chain, address string, req *model.SendRequest) (any, error) {
	amount, err := common.ParseToBaseUnits(req.Amount, chain.Params().Decimals)
	if err != nil {
		return nil, err
	}

	switch chain {
	case model.ChainBitcoin:
		chainSigner, err := h.signers.For(chain)
		if err != nil {
			return nil, err
		}
		btc, ok := chainSigner.(*signer.BitcoinSigner)
		if !ok {
			return nil, &model.SigningError{Chain: chain, Reason: "bitcoin signer unavailable"}
		}
		utxos, err := btc.UTXOs(ctx, address)
		if err != nil {
			return nil, err
		}
		feeRate := req.FeeRate
		if feeRate <= 0 {
			feeRate = 1
		}
		return &model.BitcoinSignRequest{
			To:      req.ToAddress,
			Amount:  amount.Int64(),
			FeeRate: feeRate,
			UTXOs:   utxos,
		}, nil
	case model.ChainEthereum, model.ChainBNB:
		chainSigner, err := h.signers.For(chain)
		if err != nil {
			return nil, err
		}
		evm, ok := chainSigner.(*signer.EVMSigner)
		if !ok {
			return nil, &model.SigningError{Chain: chain, Reason: "evm signer unavailable"}
		}
		nonce, gasPrice, err := evm.PendingParams(ctx, address)
		if err != nil {
			return nil, err
		}
		return &model.EVMSignRequest{
			To:            req.ToAddress,
			Value:         amount,
			TokenContract: req.Asset,
			Nonce:         nonce,
			GasPrice:      gasPrice,
		}, nil
	case model.ChainSolana:
		return &model.SolanaSignRequest{
			To:       req.ToAddress,
			Lamports: amount.Uint64(),
		}, nil
	default:
		return nil, &model.SigningError{Chain: chain, Reason: "transfers not supported"}
	}
}

// Unlock handles POST /session/unlock
// @Summary      Unlock session
// @Description  Verifies the password against a stored vault and opens the session.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request  body  model.SessionRequest  true  "Session data"
// @Success      204
// @Router       /session/unlock [post]
func (h *WalletHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.manager.Unlock(r.Context(), req.UserID, req.Password); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Lock handles POST /session/lock
// @Summary      Lock session
// @Tags         session
// @Accept       json
// @Success      204
// @Router       /session/lock [post]
func (h *WalletHandler) Lock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	h.manager.Lock(req.UserID)
	w.WriteHeader(http.StatusNoContent)
}
