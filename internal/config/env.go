package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config contains all configuration parameters for the wallet core.
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	StorePath string `envconfig:"STORE_PATH" default:"walletcore.db"`
	// StorePrefix namespaces per-user collections in the local store.
	StorePrefix string `envconfig:"STORE_PREFIX" default:"ps"`

	BackupURL    string `envconfig:"BACKUP_URL"`
	BackupAPIKey string `envconfig:"BACKUP_API_KEY"`

	BitcoinExplorerURL string `envconfig:"BITCOIN_EXPLORER_URL" default:"https://blockstream.info/api"`
	EthereumRPCURL     string `envconfig:"ETHEREUM_RPC_URL" default:"https://eth.llamarpc.com"`
	BNBRPCURL          string `envconfig:"BNB_RPC_URL" default:"https://bsc-dataseed.binance.org"`
	SolanaRPCURL       string `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`

	AggregatorURL string `envconfig:"AGGREGATOR_URL"`
	TickerURL     string `envconfig:"TICKER_URL" default:"https://api.coingecko.com/api/v3"`

	// RequestTimeout bounds every outbound network call so a slow backend
	// cannot stall wallet activation.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	cfg = &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}
