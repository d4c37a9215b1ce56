// Package mnemonic generates BIP-39 recovery phrases and expands them into
// deterministic seeds. Phrases are never persisted here; they exist only
// transiently in memory during derivation and signing.
package mnemonic

import (
	"context"
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// DefaultEntropyBits yields a 12-word phrase.
const DefaultEntropyBits = 128

// Generate produces a fresh recovery phrase from the standard wordlist using
// a cryptographically secure random source.
func Generate(entropyBits int) (string, error) {
	if entropyBits == 0 {
		entropyBits = DefaultEntropyBits
	}
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}

	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	return phrase, nil
}

// Validate checks a phrase against the wordlist and checksum.
func Validate(phrase string) bool {
	return bip39.IsMnemonicValid(phrase)
}

// ToSeed deterministically expands a phrase into a 512-bit seed. The PBKDF2
// expansion is deliberately non-trivial, so it runs off the calling
// goroutine and honors ctx cancellation.
func ToSeed(ctx context.Context, phrase string) ([]byte, error) {
	type result struct {
		seed []byte
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		seed, err := bip39.NewSeedWithErrorChecking(phrase, "")
		if err != nil {
			ch <- result{nil, fmt.Errorf("failed to expand mnemonic: %w", err)}
			return
		}
		ch <- result{seed, nil}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.seed, r.err
	}
}
