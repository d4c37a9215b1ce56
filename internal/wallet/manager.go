// Package wallet orchestrates mnemonic generation, vault encryption, chain
// key derivation and storage into the wallet lifecycle.
package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peerswap/walletcore/internal/crypto"
	"github.com/peerswap/walletcore/internal/derivation"
	"github.com/peerswap/walletcore/internal/mnemonic"
	"github.com/peerswap/walletcore/internal/model"
	"github.com/peerswap/walletcore/internal/store"
)

// Backup is the remote backup table. Backup failures never block wallet
// creation and restore failures never fail a read path.
type Backup interface {
	Fetch(ctx context.Context, userID string) ([]model.WalletRecord, error)
	Upsert(ctx context.Context, userID string, w *model.WalletRecord) error
}

// Manager owns the per-user wallet collections and the availability state
// machine. All persisted writes go through the store's per-user locks.
type Manager struct {
	store  *store.Store
	backup Backup // nil when no remote backend is configured
	log    *zap.Logger

	sessions *sessionSet
}

// NewManager creates a wallet manager. backup may be nil; log may be nil.
func NewManager(st *store.Store, backup Backup, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store:    st,
		backup:   backup,
		log:      log,
		sessions: newSessionSet(),
	}
}

// Generate creates a wallet for (userID, chain). When existingMnemonic is
// non-empty the new wallet is a sibling of an existing one and shares its
// recovery phrase; otherwise a fresh phrase is generated.
//
// The plaintext mnemonic is returned exactly once, for the caller to present
// for user backup. It is never retrievable this way again: afterwards only
// Mnemonic with the correct password can reproduce it.
func (m *Manager) Generate(ctx context.Context, chain model.Chain, password, userID, existingMnemonic string) (*model.WalletRecord, string, error) {
	if !chain.Valid() {
		return nil, "", fmt.Errorf("unsupported chain %q", chain)
	}

	// Cheap pre-check; the store re-checks under the user's lock because key
	// derivation below is slow enough for two creations to interleave.
	existing, err := m.WalletByChain(ctx, userID, chain)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", fmt.Errorf("%w for %s", model.ErrWalletExists, chain)
	}

	phrase := existingMnemonic
	if phrase == "" {
		phrase, err = mnemonic.Generate(mnemonic.DefaultEntropyBits)
		if err != nil {
			return nil, "", err
		}
	} else if !mnemonic.Validate(phrase) {
		return nil, "", fmt.Errorf("invalid mnemonic")
	}

	rec, err := m.buildRecord(ctx, chain, phrase, password, model.WalletTypeGenerated)
	if err != nil {
		return nil, "", err
	}

	if err := m.store.AppendWalletIfChainAbsent(userID, *rec); err != nil {
		return nil, "", err
	}

	m.SaveToRemote(ctx, rec, userID)

	return rec, phrase, nil
}

// Import stores a wallet recovered from a user-supplied mnemonic. When
// expectedAddress is non-empty (an address already on file for the user) the
// derived address must reproduce it exactly; a mismatch is rejected before
// anything is written.
func (m *Manager) Import(ctx context.Context, chain model.Chain, phrase, password, userID, expectedAddress string) (*model.WalletRecord, error) {
	if !mnemonic.Validate(phrase) {
		return nil, fmt.Errorf("invalid mnemonic")
	}

	rec, err := m.buildRecord(ctx, chain, phrase, password, model.WalletTypeImported)
	if err != nil {
		return nil, err
	}

	if expectedAddress != "" && rec.Address != expectedAddress {
		return nil, fmt.Errorf("mnemonic does not reproduce the expected address %s", expectedAddress)
	}

	if err := m.store.AppendWalletIfChainAbsent(userID, *rec); err != nil {
		return nil, err
	}

	m.SaveToRemote(ctx, rec, userID)

	return rec, nil
}

// buildRecord derives the chain key from the phrase and assembles a record
// with the private key and mnemonic encrypted as independent vaults under
// one password.
func (m *Manager) buildRecord(ctx context.Context, chain model.Chain, phrase, password string, typ model.WalletType) (*model.WalletRecord, error) {
	seed, err := mnemonic.ToSeed(ctx, phrase)
	if err != nil {
		return nil, err
	}
	defer clear(seed)

	derived, err := derivation.Derive(seed, chain)
	if err != nil {
		return nil, err
	}
	defer clear(derived.PrivateKey)

	encKey, err := crypto.Encrypt(derived.PrivateKey, password)
	if err != nil {
		return nil, err
	}

	encPhrase, err := crypto.Encrypt([]byte(phrase), password)
	if err != nil {
		return nil, err
	}

	return &model.WalletRecord{
		ID:                  uuid.NewString(),
		ChainID:             chain.String(),
		Address:             derived.Address,
		WalletType:          typ,
		EncryptedPrivateKey: encKey,
		EncryptedMnemonic:   encPhrase,
		CreatedAt:           time.Now().UTC(),
		IsActive:            true,
	}, nil
}

// Wallets returns the user's local collection, migrating any legacy
// unprefixed data on first access.
func (m *Manager) Wallets(ctx context.Context, userID string) ([]model.WalletRecord, error) {
	return m.store.Wallets(userID)
}

// WalletByChain returns the user's active wallet for a chain, or nil.
func (m *Manager) WalletByChain(ctx context.Context, userID string, chain model.Chain) (*model.WalletRecord, error) {
	wallets, err := m.store.Wallets(userID)
	if err != nil {
		return nil, err
	}
	for i := range wallets {
		c, err := wallets[i].Chain()
		if err != nil {
			continue
		}
		if c == chain && wallets[i].IsActive {
			return &wallets[i], nil
		}
	}
	return nil, nil
}

// Mnemonic decrypts and returns a wallet's recovery phrase. Returns
// model.ErrNotFound when the wallet or its mnemonic ciphertext is absent; a
// wrong password surfaces the generic authentication error.
func (m *Manager) Mnemonic(ctx context.Context, walletID, password, userID string) (string, error) {
	wallets, err := m.store.Wallets(userID)
	if err != nil {
		return "", err
	}

	for i := range wallets {
		if wallets[i].ID != walletID {
			continue
		}
		if wallets[i].EncryptedMnemonic == nil {
			return "", model.ErrNotFound
		}
		plain, err := crypto.Decrypt(wallets[i].EncryptedMnemonic, password)
		if err != nil {
			return "", err
		}
		return string(plain), nil
	}
	return "", model.ErrNotFound
}

// PrivateKey decrypts a wallet's raw private key for signing. Same contract
// as Mnemonic. The caller must clear the returned bytes after use.
func (m *Manager) PrivateKey(ctx context.Context, walletID, password, userID string) ([]byte, error) {
	wallets, err := m.store.Wallets(userID)
	if err != nil {
		return nil, err
	}

	for i := range wallets {
		if wallets[i].ID != walletID {
			continue
		}
		if wallets[i].EncryptedPrivateKey == nil {
			return nil, model.ErrNotFound
		}
		return crypto.Decrypt(wallets[i].EncryptedPrivateKey, password)
	}
	return nil, model.ErrNotFound
}

// LoadFromRemote pulls backup rows, merges them into local storage and
// returns them. Remote restore is advisory: any backend failure returns an
// empty list, never an error.
func (m *Manager) LoadFromRemote(ctx context.Context, userID string) []model.WalletRecord {
	if m.backup == nil {
		return nil
	}

	remote, err := m.backup.Fetch(ctx, userID)
	if err != nil {
		m.log.Warn("remote restore failed", zap.String("user", userID), zap.Error(err))
		return nil
	}
	if len(remote) == 0 {
		return nil
	}

	local, err := m.store.Wallets(userID)
	if err != nil {
		m.log.Warn("local read during restore failed", zap.String("user", userID), zap.Error(err))
		return remote
	}

	seen := make(map[string]bool, len(local))
	for i := range local {
		seen[local[i].ID] = true
	}
	merged := local
	for i := range remote {
		if !seen[remote[i].ID] {
			merged = append(merged, remote[i])
		}
	}

	if err := m.store.SaveWallets(userID, merged); err != nil {
		m.log.Warn("persisting restored wallets failed", zap.String("user", userID), zap.Error(err))
	}

	return remote
}

// SaveToRemote mirrors one wallet to the backup table, upserting by id.
// Failures are logged and swallowed: backup must never block wallet creation.
func (m *Manager) SaveToRemote(ctx context.Context, w *model.WalletRecord, userID string) {
	if m.backup == nil {
		return
	}

	if err := m.backup.Upsert(ctx, userID, w); err != nil {
		m.log.Warn("remote backup failed",
			zap.String("user", userID),
			zap.String("wallet", w.ID),
			zap.Error(err))
		return
	}

	if !w.IsBackedUp {
		w.IsBackedUp = true
		if err := m.store.ReplaceWallet(userID, *w); err != nil {
			m.log.Warn("marking wallet backed up failed", zap.String("wallet", w.ID), zap.Error(err))
		}
	}
}
