package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/peerswap/walletcore/internal/handler"
	"github.com/peerswap/walletcore/internal/signer"
	"github.com/peerswap/walletcore/internal/swap"
	"github.com/peerswap/walletcore/internal/wallet"
)

// SetupRouter sets up router with handlers
func SetupRouter(manager *wallet.Manager, signers *signer.Registry, orchestrator *swap.Orchestrator) http.Handler {
	walletHandler := handler.NewWalletHandler(manager, signers)
	swapHandler := handler.NewSwapHandler(manager, orchestrator)

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Wallet endpoints
	mux.HandleFunc("/wallets", walletHandler.List)
	mux.HandleFunc("/wallets/generate", walletHandler.Generate)
	mux.HandleFunc("/wallets/import", walletHandler.Import)
	mux.HandleFunc("/wallets/mnemonic", walletHandler.RevealMnemonic)
	mux.HandleFunc("/wallets/availability", walletHandler.Availability)
	mux.HandleFunc("/wallets/receive", walletHandler.Receive)
	mux.HandleFunc("/wallets/balance", walletHandler.Balance)
	mux.HandleFunc("/wallets/send", walletHandler.Send)

	// Session endpoints
	mux.HandleFunc("/session/unlock", walletHandler.Unlock)
	mux.HandleFunc("/session/lock", walletHandler.Lock)

	// Swap endpoints
	mux.HandleFunc("/swap/quote", swapHandler.Quote)
	mux.HandleFunc("/swap/execute", swapHandler.Execute)
	mux.HandleFunc("/swap/history", swapHandler.History)

	return mux
}
