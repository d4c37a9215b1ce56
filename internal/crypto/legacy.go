package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/peerswap/walletcore/internal/model"
)

// Legacy vaults predate the versioned container: the payload was a bare
// base64 string of nonce||ciphertext, and the key was derived with a fixed
// salt computed from the user id instead of a random one.

// legacySalt reproduces the fixed per-user salt of the pre-versioning format.
func legacySalt(userID string) []byte {
	sum := sha256.Sum256([]byte("wallet-salt:" + userID))
	return sum[:saltLen]
}

// MigrateLegacy re-encrypts a pre-versioning payload into the current vault
// format. Input already in the current format is returned unchanged, so the
// migration is idempotent. Unrecognized shapes fail with model.ErrFormat
// before anything is decrypted or written.
func MigrateLegacy(raw json.RawMessage, password, userID string) (*model.EncryptedVault, error) {
	// Current format: an object carrying version == 1.
	var vault model.EncryptedVault
	if err := json.Unmarshal(raw, &vault); err == nil && vault.Version == model.VaultVersion {
		return &vault, nil
	}

	// Legacy format: a bare JSON string.
	var payload string
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: neither current vault nor legacy payload", model.ErrFormat)
	}

	blob, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(blob) <= nonceLen {
		return nil, fmt.Errorf("%w: malformed legacy payload", model.ErrFormat)
	}
	nonce, ciphertext := blob[:nonceLen], blob[nonceLen:]

	key, err := DeriveKey(password, legacySalt(userID), model.DefaultKdfParams())
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
	defer clear(plaintext)

	return Encrypt(plaintext, password)
}

// SealLegacy produces a pre-versioning payload. Kept for migration tests and
// the one-off recrypt tool; new code must never store this format.
func SealLegacy(plaintext []byte, password, userID string) (string, error) {
	key, err := DeriveKey(password, legacySalt(userID), model.DefaultKdfParams())
	if err != nil {
		return "", err
	}
	defer clear(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := aesGCM.Seal(nil, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(append(nonce, sealed...)), nil
}
