package model

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/peerswap/walletcore/internal/common"
)

// ErrAuthentication is returned for every vault decryption failure. A wrong
// password and a tampered ciphertext must stay indistinguishable to the
// caller, so this is the only error decryption may surface.
var ErrAuthentication = errors.New("invalid password or corrupted data")

// ErrFormat is returned when a legacy vault payload has an unrecognized shape.
var ErrFormat = errors.New("unrecognized vault format")

// ErrNotFound is returned when a requested wallet or mnemonic does not exist.
var ErrNotFound = errors.New("wallet not found")

// ErrWalletExists is returned when a user already has an active wallet on
// the requested chain.
var ErrWalletExists = errors.New("wallet already exists")

// InsufficientFundsError reports a balance short of amount plus fee. Need and
// Have are integers in the chain's base unit; Error renders them in human
// units for display.
type InsufficientFundsError struct {
	Chain Chain
	Need  *big.Int
	Have  *big.Int
}

func (e *InsufficientFundsError) Error() string {
	p := e.Chain.Params()
	short := new(big.Int).Sub(e.Need, e.Have)
	return fmt.Sprintf("insufficient %s balance: short %s %s (need %s, have %s)",
		p.Symbol,
		common.FormatBaseUnits(short, p.Decimals), p.Symbol,
		common.FormatBaseUnits(e.Need, p.Decimals),
		common.FormatBaseUnits(e.Have, p.Decimals))
}

// SigningError reports an unsupported wallet type or a malformed signing
// request. Incomplete signers fail loudly with this instead of no-opping.
type SigningError struct {
	Chain  Chain
	Reason string
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("cannot sign for %s: %s", e.Chain, e.Reason)
}

// BackendError wraps a remote store or RPC failure. Read paths treat it as a
// degraded state, never as fatal.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend unavailable during %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
