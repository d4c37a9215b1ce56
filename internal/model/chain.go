package model

import (
	"fmt"
	"strings"
)

// Chain identifies a supported blockchain. The set is closed: every chain the
// wallet can derive keys for has exactly one value here, and all per-chain
// policy (curve, derivation path, address scheme, decimals) hangs off this
// type instead of free-form string matching.
type Chain string

const (
	ChainBitcoin  Chain = "bitcoin"
	ChainEthereum Chain = "ethereum"
	ChainBNB      Chain = "bnb"
	ChainTron     Chain = "tron"
	ChainXRP      Chain = "xrp"
	ChainSolana   Chain = "solana"
)

// Curve is the signature curve a chain derives keys on.
type Curve string

const (
	CurveSecp256k1 Curve = "secp256k1"
	CurveEd25519   Curve = "ed25519"
)

// hardened marks a derivation path index as hardened (BIP-32 convention).
const hardened = 0x80000000

// ChainParams holds the fixed per-chain derivation and unit conventions.
// The Path values are part of the data format: changing one silently breaks
// address continuity for every existing wallet on that chain.
type ChainParams struct {
	Name     string // display name
	Symbol   string // native asset symbol
	Curve    Curve
	Path     []uint32 // full derivation path, hardened bits included
	PathStr  string
	Decimals int  // native asset decimals (base unit exponent)
	EVM      bool // shares the EVM account/address model
}

var chainParams = map[Chain]ChainParams{
	ChainBitcoin: {
		Name:     "Bitcoin",
		Symbol:   "BTC",
		Curve:    CurveSecp256k1,
		Path:     []uint32{hardened + 84, hardened + 0, hardened + 0, 0, 0},
		PathStr:  "m/84'/0'/0'/0/0",
		Decimals: 8,
	},
	ChainEthereum: {
		Name:     "Ethereum",
		Symbol:   "ETH",
		Curve:    CurveSecp256k1,
		Path:     []uint32{hardened + 44, hardened + 60, hardened + 0, 0, 0},
		PathStr:  "m/44'/60'/0'/0/0",
		Decimals: 18,
		EVM:      true,
	},
	ChainBNB: {
		Name:     "BNB Smart Chain",
		Symbol:   "BNB",
		Curve:    CurveSecp256k1,
		Path:     []uint32{hardened + 44, hardened + 60, hardened + 0, 0, 0},
		PathStr:  "m/44'/60'/0'/0/0",
		Decimals: 18,
		EVM:      true,
	},
	ChainTron: {
		Name:     "Tron",
		Symbol:   "TRX",
		Curve:    CurveSecp256k1,
		Path:     []uint32{hardened + 44, hardened + 195, hardened + 0, 0, 0},
		PathStr:  "m/44'/195'/0'/0/0",
		Decimals: 6,
	},
	ChainXRP: {
		Name:     "XRP Ledger",
		Symbol:   "XRP",
		Curve:    CurveSecp256k1,
		Path:     []uint32{hardened + 44, hardened + 144, hardened + 0, 0, 0},
		PathStr:  "m/44'/144'/0'/0/0",
		Decimals: 6,
	},
	ChainSolana: {
		// SLIP-0010 hardened-only path; no change/index segments.
		Name:     "Solana",
		Symbol:   "SOL",
		Curve:    CurveEd25519,
		Path:     []uint32{hardened + 44, hardened + 501, hardened + 0, hardened + 0},
		PathStr:  "m/44'/501'/0'/0'",
		Decimals: 9,
	},
}

// chainAliases maps historical free-form chain ids (as stored by older
// records) onto the canonical enum. Lookup is case-insensitive.
var chainAliases = map[string]Chain{
	"bitcoin (segwit)": ChainBitcoin,
	"btc":              ChainBitcoin,
	"eth":              ChainEthereum,
	"binance":          ChainBNB,
	"bsc":              ChainBNB,
	"trx":              ChainTron,
	"ripple":           ChainXRP,
	"sol":              ChainSolana,
}

// Params returns the fixed conventions for the chain.
func (c Chain) Params() ChainParams {
	p, ok := chainParams[c]
	if !ok {
		panic(fmt.Sprintf("unknown chain %q", string(c)))
	}
	return p
}

// Valid reports whether c is one of the supported chains.
func (c Chain) Valid() bool {
	_, ok := chainParams[c]
	return ok
}

// String returns the canonical chain id.
func (c Chain) String() string { return string(c) }

// Chains returns every supported chain in a stable order.
func Chains() []Chain {
	return []Chain{ChainBitcoin, ChainEthereum, ChainBNB, ChainTron, ChainXRP, ChainSolana}
}

// ParseChain resolves a chain id or known alias to the canonical enum value.
func ParseChain(id string) (Chain, error) {
	norm := strings.ToLower(strings.TrimSpace(id))
	if c := Chain(norm); c.Valid() {
		return c, nil
	}
	if c, ok := chainAliases[norm]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unsupported chain %q", id)
}
