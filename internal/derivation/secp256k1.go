package derivation

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	ethcommon "github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/mr-tron/base58"

	"github.com/peerswap/walletcore/internal/model"
)

const tronAddressPrefix = 0x41

// xrpAlphabet is the base58 dialect used by the XRP Ledger.
var xrpAlphabet = base58.NewAlphabet("rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz")

func deriveSecp256k1(seed []byte, chain model.Chain) (*Derived, error) {
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	key := master
	for _, step := range chain.Params().Path {
		key, err = key.Derive(step)
		if err != nil {
			return nil, fmt.Errorf("failed to derive %s: %w", chain.Params().PathStr, err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("failed to get private key: %w", err)
	}
	pub := priv.PubKey()

	address, err := secpAddress(chain, pub.SerializeCompressed(), pub.SerializeUncompressed())
	if err != nil {
		return nil, err
	}

	return &Derived{
		PrivateKey: priv.Serialize(),
		PublicKey:  pub.SerializeCompressed(),
		Address:    address,
	}, nil
}

func secpAddress(chain model.Chain, compressed, uncompressed []byte) (string, error) {
	switch {
	case chain == model.ChainBitcoin:
		return p2wpkhAddress(compressed)
	case chain.Params().EVM:
		return evmAddress(uncompressed), nil
	case chain == model.ChainTron:
		return tronAddress(uncompressed), nil
	case chain == model.ChainXRP:
		return xrpAddress(compressed), nil
	default:
		return "", fmt.Errorf("no address scheme for chain %q", chain)
	}
}

// p2wpkhAddress encodes a native-segwit bech32 address (bc1q...).
func p2wpkhAddress(compressedPub []byte) (string, error) {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(compressedPub), &chaincfg.MainNetParams)
	if err != nil {
		return "", fmt.Errorf("failed to build p2wpkh address: %w", err)
	}
	return addr.EncodeAddress(), nil
}

// evmAddress is the EIP-55 checksummed hex of the last 20 bytes of
// keccak256 over the uncompressed public key point.
func evmAddress(uncompressedPub []byte) string {
	hash := ethcrypto.Keccak256(uncompressedPub[1:])
	return ethcommon.BytesToAddress(hash[12:]).Hex()
}

// tronAddress is base58check over 0x41 || keccak-derived 20 bytes.
func tronAddress(uncompressedPub []byte) string {
	hash := ethcrypto.Keccak256(uncompressedPub[1:])
	payload := append([]byte{tronAddressPrefix}, hash[12:]...)
	return base58.Encode(append(payload, checksum(payload)...))
}

// xrpAddress is base58 (XRP alphabet) over 0x00 || RIPEMD160(SHA256(pub))
// plus a 4-byte double-SHA256 checksum.
func xrpAddress(compressedPub []byte) string {
	payload := append([]byte{0x00}, btcutil.Hash160(compressedPub)...)
	return base58.EncodeAlphabet(append(payload, checksum(payload)...), xrpAlphabet)
}

// checksum is the first four bytes of a double SHA-256.
func checksum(payload []byte) []byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	return second[:4]
}
