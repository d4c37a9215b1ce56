package model

// GenerateWalletRequest represents request for POST /wallets/generate
type GenerateWalletRequest struct {
	UserID           string `json:"userId" binding:"required"`
	Chain            string `json:"chain" binding:"required"`
	Password         string `json:"password" binding:"required"`
	ExistingMnemonic string `json:"existingMnemonic,omitempty"`
}

// GenerateWalletResponse represents response for POST /wallets/generate.
// Mnemonic is returned exactly once, at creation time.
type GenerateWalletResponse struct {
	Wallet   *WalletRecord `json:"wallet"`
	Mnemonic string        `json:"mnemonic,omitempty"`
}

// ImportWalletRequest represents request for POST /wallets/import
type ImportWalletRequest struct {
	UserID          string `json:"userId" binding:"required"`
	Chain           string `json:"chain" binding:"required"`
	Password        string `json:"password" binding:"required"`
	Mnemonic        string `json:"mnemonic" binding:"required"`
	ExpectedAddress string `json:"expectedAddress,omitempty"`
}

// RevealMnemonicRequest represents request for POST /wallets/mnemonic
type RevealMnemonicRequest struct {
	UserID   string `json:"userId" binding:"required"`
	WalletID string `json:"walletId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RevealMnemonicResponse represents response for POST /wallets/mnemonic
type RevealMnemonicResponse struct {
	Mnemonic string `json:"mnemonic"`
}

// SessionRequest represents request for POST /session/unlock and /session/lock
type SessionRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password,omitempty"`
}

// AvailabilityResponse represents response for GET /wallets/availability
type AvailabilityResponse struct {
	Chain        string        `json:"chain"`
	Availability string        `json:"availability"`
	Wallet       *WalletRecord `json:"wallet,omitempty"`
}

// SendRequest represents request for POST /wallets/send. Amount is a decimal
// string in human units; fee parameters are chain specific and optional.
type SendRequest struct {
	UserID    string `json:"userId" binding:"required"`
	Chain     string `json:"chain" binding:"required"`
	Password  string `json:"password" binding:"required"`
	ToAddress string `json:"toAddress" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Asset     string `json:"asset,omitempty"`
	FeeRate   int64  `json:"feeRate,omitempty"`
}

// SendResponse represents response for POST /wallets/send
type SendResponse struct {
	TxID string `json:"txId"`
}

// BalanceResponse represents response for GET /wallets/balance
type BalanceResponse struct {
	Chain   string `json:"chain"`
	Address string `json:"address"`
	Balance string `json:"balance"`
	Asset   string `json:"asset,omitempty"`
}

// SwapExecuteRequest represents request for POST /swap/execute
type SwapExecuteRequest struct {
	UserID    string  `json:"userId" binding:"required"`
	Chain     string  `json:"chain" binding:"required"`
	FromToken string  `json:"fromToken" binding:"required"`
	ToToken   string  `json:"toToken" binding:"required"`
	Amount    string  `json:"amount" binding:"required"`
	Slippage  float64 `json:"slippage,omitempty"`
}
