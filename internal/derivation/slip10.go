package derivation

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/peerswap/walletcore/internal/model"
)

// SLIP-0010 ed25519 derivation. Structurally different from BIP-32: every
// path segment must be hardened and the chain is plain HMAC-SHA512 over
// 32-byte keys, so this deliberately shares no code with the secp256k1 path.

var slip10MasterKey = []byte("ed25519 seed")

func deriveEd25519(seed []byte, chain model.Chain) (*Derived, error) {
	key, err := slip10Derive(seed, chain.Params().Path)
	if err != nil {
		return nil, err
	}

	priv := ed25519.NewKeyFromSeed(key)
	pub := priv.Public().(ed25519.PublicKey)

	return &Derived{
		PrivateKey: key,
		PublicKey:  []byte(pub),
		Address:    base58.Encode(pub),
	}, nil
}

// slip10Derive walks a hardened-only path from the seed's master node.
func slip10Derive(seed []byte, path []uint32) ([]byte, error) {
	mac := hmac.New(sha512.New, slip10MasterKey)
	mac.Write(seed)
	sum := mac.Sum(nil)
	key, chainCode := sum[:32], sum[32:]

	for _, index := range path {
		if index < hardenedOffset {
			return nil, fmt.Errorf("slip10: index %d is not hardened", index)
		}

		var data [37]byte
		data[0] = 0x00
		copy(data[1:33], key)
		binary.BigEndian.PutUint32(data[33:], index)

		mac = hmac.New(sha512.New, chainCode)
		mac.Write(data[:])
		sum = mac.Sum(nil)
		key, chainCode = sum[:32], sum[32:]
	}

	out := make([]byte, 32)
	copy(out, key)
	return out, nil
}

const hardenedOffset = 0x80000000
