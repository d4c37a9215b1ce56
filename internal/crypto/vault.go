// Package crypto implements the password-based vault: scrypt key derivation
// and AES-256-GCM authenticated encryption of wallet secrets.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"

	"github.com/peerswap/walletcore/internal/model"
)

const (
	saltLen  = 16
	nonceLen = 12
)

// DeriveKey derives an encryption key from a password. The password is
// normalized to NFKD first so the same text always derives the same key
// regardless of input encoding quirks. scrypt is memory-hard and deliberately
// slow; never call this on a latency-sensitive path.
func DeriveKey(password string, salt []byte, params model.KdfParams) ([]byte, error) {
	normalized := norm.NFKD.String(password)
	key, err := scrypt.Key([]byte(normalized), salt, params.N, params.R, params.P, params.DkLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext under a password into a self-describing vault.
// Salt and nonce are freshly random on every call and never reused.
func Encrypt(plaintext []byte, password string) (*model.EncryptedVault, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	params := model.DefaultKdfParams()
	key, err := DeriveKey(password, salt, params)
	if err != nil {
		return nil, err
	}
	defer clear(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	return &model.EncryptedVault{
		Version:    model.VaultVersion,
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(nonce),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		KDF:        "scrypt",
		KDFParams:  params,
	}, nil
}

// Decrypt opens a vault with the supplied password, re-deriving the key from
// the vault's own salt and cost parameters.
//
// Contract: every failure mode (wrong password, tampered ciphertext,
// corrupted fields) surfaces as the same model.ErrAuthentication, so a caller
// cannot be used as a password-guessing oracle.
func Decrypt(vault *model.EncryptedVault, password string) ([]byte, error) {
	if vault == nil {
		return nil, model.ErrAuthentication
	}

	salt, err := base64.StdEncoding.DecodeString(vault.Salt)
	if err != nil {
		return nil, model.ErrAuthentication
	}

	nonce, err := base64.StdEncoding.DecodeString(vault.IV)
	if err != nil {
		return nil, model.ErrAuthentication
	}

	ciphertext, err := base64.StdEncoding.DecodeString(vault.CipherText)
	if err != nil {
		return nil, model.ErrAuthentication
	}

	params := vault.KDFParams
	if params.N == 0 || params.DkLen == 0 {
		return nil, model.ErrAuthentication
	}

	key, err := DeriveKey(password, salt, params)
	if err != nil {
		return nil, model.ErrAuthentication
	}
	defer clear(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, model.ErrAuthentication
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, model.ErrAuthentication
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return aesGCM, nil
}
