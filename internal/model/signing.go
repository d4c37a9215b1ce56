package model

import "math/big"

// All amounts below are integers in the chain's base unit (satoshis, wei,
// lamports). Decimal formatting is strictly a caller concern.

// UTXO is an unspent output supplied by the caller as a Bitcoin input.
type UTXO struct {
	TxID  string `json:"txid"`
	Vout  uint32 `json:"vout"`
	Value int64  `json:"value"` // satoshis
}

// BitcoinSignRequest builds one payment output plus change if above dust.
type BitcoinSignRequest struct {
	To      string
	Amount  int64 // satoshis
	FeeRate int64 // satoshis per vByte
	UTXOs   []UTXO
}

// EVMSignRequest covers native transfer (TokenContract empty) and the fixed
// ABI transfer(address,uint256) call (TokenContract set).
type EVMSignRequest struct {
	To            string
	Value         *big.Int // wei, or token base units for token transfers
	TokenContract string
	Nonce         uint64
	GasPrice      *big.Int // wei
	GasLimit      uint64   // 0 means the per-request default
}

// SolanaSignRequest is a native SOL transfer.
type SolanaSignRequest struct {
	To       string
	Lamports uint64
}

// SignedTx is the outcome of offline signing, before any broadcast.
type SignedTx struct {
	Raw  []byte
	TxID string
}
