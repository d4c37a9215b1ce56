// Package signer holds one signer per chain behind a common capability
// surface. Amounts at this boundary are integers in the chain's base unit;
// human formatting is strictly a caller concern.
package signer

import (
	"context"
	"math/big"

	"github.com/peerswap/walletcore/internal/derivation"
	"github.com/peerswap/walletcore/internal/mnemonic"
	"github.com/peerswap/walletcore/internal/model"
)

// ChainSigner is the per-chain capability surface. Sign works fully offline;
// Broadcast is the only call that touches the network besides Balance.
type ChainSigner interface {
	Chain() model.Chain
	// Address recomputes the wallet address from a recovery phrase.
	Address(ctx context.Context, phrase string) (string, error)
	// Balance returns the confirmed balance in base units. asset is empty
	// for the native coin or a token identifier the chain understands.
	Balance(ctx context.Context, address, asset string) (*big.Int, error)
	// Sign builds and signs a chain-appropriate transaction. req is the
	// chain's request type from the model package; anything else is a
	// SigningError before any bytes are produced.
	Sign(ctx context.Context, phrase string, req any) (*model.SignedTx, error)
	// Broadcast submits a signed raw transaction, returning the network txid.
	Broadcast(ctx context.Context, raw []byte) (string, error)
}

// Registry resolves the signer for a chain.
type Registry struct {
	signers map[model.Chain]ChainSigner
}

// NewRegistry builds a registry from the given signers.
func NewRegistry(signers ...ChainSigner) *Registry {
	m := make(map[model.Chain]ChainSigner, len(signers))
	for _, s := range signers {
		m[s.Chain()] = s
	}
	return &Registry{signers: m}
}

// For returns the signer for a chain, or a loud SigningError so callers
// never mistake an unsupported chain for success.
func (r *Registry) For(chain model.Chain) (ChainSigner, error) {
	s, ok := r.signers[chain]
	if !ok {
		return nil, &model.SigningError{Chain: chain, Reason: "no signer registered"}
	}
	return s, nil
}

// deriveForChain recomputes key material from a recovery phrase. The phrase
// and seed live only for the duration of the call chain.
func deriveForChain(ctx context.Context, phrase string, chain model.Chain) (*derivation.Derived, error) {
	seed, err := mnemonic.ToSeed(ctx, phrase)
	if err != nil {
		return nil, err
	}
	defer clear(seed)
	return derivation.Derive(seed, chain)
}
