// walletd serves the wallet subsystem over HTTP.
// Usage: go run ./cmd/walletd
package main

import (
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/peerswap/walletcore/internal/api"
	"github.com/peerswap/walletcore/internal/client"
	"github.com/peerswap/walletcore/internal/config"
	"github.com/peerswap/walletcore/internal/model"
	"github.com/peerswap/walletcore/internal/signer"
	"github.com/peerswap/walletcore/internal/store"
	"github.com/peerswap/walletcore/internal/swap"
	"github.com/peerswap/walletcore/internal/wallet"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	if err := config.Init(); err != nil {
		log.Fatal("config", zap.Error(err))
	}
	cfg := config.Get()

	st, err := store.Open(cfg.StorePath, cfg.StorePrefix)
	if err != nil {
		log.Fatal("opening store", zap.Error(err))
	}
	defer st.Close()

	var backup wallet.Backup
	if cfg.BackupURL != "" {
		backup = client.NewBackupClient(cfg.BackupURL, cfg.BackupAPIKey, cfg.RequestTimeout)
	}
	manager := wallet.NewManager(st, backup, log)

	ethSigner, err := signer.NewEVMSigner(model.ChainEthereum, cfg.EthereumRPCURL)
	if err != nil {
		log.Fatal("ethereum signer", zap.Error(err))
	}
	bnbSigner, err := signer.NewEVMSigner(model.ChainBNB, cfg.BNBRPCURL)
	if err != nil {
		log.Fatal("bnb signer", zap.Error(err))
	}
	signers := signer.NewRegistry(
		signer.NewBitcoinSigner(client.NewBitcoinExplorerClient(cfg.BitcoinExplorerURL, cfg.RequestTimeout)),
		ethSigner,
		bnbSigner,
		signer.NewSolanaSigner(cfg.SolanaRPCURL),
		signer.NewTronSigner(),
	)

	var aggregator swap.Aggregator
	if cfg.AggregatorURL != "" {
		aggregator = client.NewAggregatorClient(cfg.AggregatorURL, cfg.RequestTimeout)
	}
	ticker := client.NewTickerClient(cfg.TickerURL, cfg.RequestTimeout)
	orchestrator := swap.NewOrchestrator(signers, aggregator, ticker, st, log)

	router := api.SetupRouter(manager, signers, orchestrator)

	log.Info("listening", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal("server", zap.Error(err))
	}
}
