// Generates a wallet completely offline: fresh mnemonic, one address per
// supported chain. Nothing is stored or sent anywhere; the mnemonic is
// printed once and it is the caller's job to keep it safe.
// Usage: go run ./cmd/walletgen [-words 12|24] [-chain bitcoin]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/peerswap/walletcore/internal/derivation"
	"github.com/peerswap/walletcore/internal/mnemonic"
	"github.com/peerswap/walletcore/internal/model"
)

func main() {
	words := flag.Int("words", 12, "mnemonic length, 12 or 24 words")
	chainID := flag.String("chain", "", "derive a single chain instead of all")
	flag.Parse()

	entropyBits := 128
	switch *words {
	case 12:
	case 24:
		entropyBits = 256
	default:
		fmt.Fprintln(os.Stderr, "-words must be 12 or 24")
		os.Exit(1)
	}

	phrase, err := mnemonic.Generate(entropyBits)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mnemonic generation failed:", err)
		os.Exit(1)
	}

	seed, err := mnemonic.ToSeed(context.Background(), phrase)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	chains := model.Chains()
	if *chainID != "" {
		chain, err := model.ParseChain(*chainID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		chains = []model.Chain{chain}
	}

	fmt.Println("mnemonic:", phrase)
	fmt.Println()
	for _, chain := range chains {
		derived, err := derivation.Derive(seed, chain)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", chain, err)
			os.Exit(1)
		}
		fmt.Printf("%-10s %s\n", chain, derived.Address)
	}
}
