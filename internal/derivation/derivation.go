// Package derivation turns a BIP-39 seed into per-chain key material and
// addresses. All functions are pure: identical inputs yield byte-identical
// keys and addresses on any platform.
package derivation

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/peerswap/walletcore/internal/model"
)

// Derived is the key material for one chain. PrivateKey is the 32-byte
// secp256k1 scalar, or the 32-byte ed25519 seed for SLIP-0010 chains.
// PublicKey is the compressed secp256k1 point or the raw ed25519 key.
type Derived struct {
	PrivateKey []byte
	PublicKey  []byte
	Address    string
}

// Derive computes (privateKey, publicKey, address) for a chain from a
// 64-byte seed, following the chain's fixed path and address scheme.
func Derive(seed []byte, chain model.Chain) (*Derived, error) {
	if !chain.Valid() {
		return nil, fmt.Errorf("unsupported chain %q", chain)
	}
	if len(seed) != 64 {
		return nil, fmt.Errorf("seed must be 64 bytes, got %d", len(seed))
	}

	switch chain.Params().Curve {
	case model.CurveSecp256k1:
		return deriveSecp256k1(seed, chain)
	case model.CurveEd25519:
		return deriveEd25519(seed, chain)
	default:
		return nil, fmt.Errorf("unsupported curve for chain %q", chain)
	}
}

// DeriveAll derives every supported chain from one seed. Chains share no
// mutable state, so the fan-out runs them concurrently.
func DeriveAll(ctx context.Context, seed []byte) (map[model.Chain]*Derived, error) {
	out := make(map[model.Chain]*Derived, len(model.Chains()))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, chain := range model.Chains() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := Derive(seed, chain)
			if err != nil {
				return fmt.Errorf("derive %s: %w", chain, err)
			}
			mu.Lock()
			out[chain] = d
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
