package wallet

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/peerswap/walletcore/internal/crypto"
	"github.com/peerswap/walletcore/internal/model"
)

// profileAddressKey is the settings key holding an address known from
// profile metadata for a chain, used by the AddressKnownNoBlob check.
func profileAddressKey(chain model.Chain) string {
	return "profile_address/" + chain.String()
}

// sessionSet tracks which users currently hold an unlocked session. The
// password itself is never stored here; unlocking only proves the caller
// presented one that decrypts a vault.
type sessionSet struct {
	mu sync.Mutex
	m  map[string]bool
}

func newSessionSet() *sessionSet {
	return &sessionSet{m: make(map[string]bool)}
}

func (s *sessionSet) set(userID string, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v {
		s.m[userID] = true
	} else {
		delete(s.m, userID)
	}
}

func (s *sessionSet) unlocked(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[userID]
}

// Unlock verifies the password against one of the user's vaults and marks
// the session unlocked. Decryption mutates no persisted state.
func (m *Manager) Unlock(ctx context.Context, userID, password string) error {
	wallets, err := m.store.Wallets(userID)
	if err != nil {
		return err
	}

	for i := range wallets {
		vault := wallets[i].EncryptedMnemonic
		if vault == nil {
			vault = wallets[i].EncryptedPrivateKey
		}
		if vault == nil {
			continue
		}
		plain, err := crypto.Decrypt(vault, password)
		if err != nil {
			return err
		}
		clear(plain)
		m.sessions.set(userID, true)
		return nil
	}
	return model.ErrNotFound
}

// Lock ends the user's unlocked session.
func (m *Manager) Lock(userID string) {
	m.sessions.set(userID, false)
}

// SetProfileAddress records an address known for the user from profile
// metadata, enabling the import-required check.
func (m *Manager) SetProfileAddress(userID string, chain model.Chain, address string) error {
	return m.store.SetSetting(userID, profileAddressKey(chain), address)
}

// Availability evaluates the wallet state for one chain, in this fixed
// priority order:
//
//  1. Unlocked: local record and an active decrypted session.
//  2. LocalEncryptedNoPassword: local record, signing needs a password.
//  3. RemoteOnly: a backup row exists; silently restored to local storage
//     so the next evaluation lands on LocalEncryptedNoPassword.
//  4. AddressKnownNoBlob: only a profile address is on file; the user must
//     import a mnemonic reproducing it.
//  5. NoWallet: creation required.
//
// The remote check must run before declaring import or creation required;
// skipping it would prompt users who already have cloud-backed keys.
func (m *Manager) Availability(ctx context.Context, chain model.Chain, userID string) (model.Availability, *model.WalletRecord, error) {
	local, err := m.WalletByChain(ctx, userID, chain)
	if err != nil {
		return model.NoWallet, nil, err
	}
	if local != nil {
		if m.sessions.unlocked(userID) {
			return model.Unlocked, local, nil
		}
		return model.LocalEncryptedNoPassword, local, nil
	}

	for _, rec := range m.LoadFromRemote(ctx, userID) {
		c, err := rec.Chain()
		if err != nil {
			continue
		}
		if c == chain && rec.IsActive {
			m.log.Info("wallet restored from remote backup",
				zap.String("user", userID), zap.String("chain", chain.String()))
			restored := rec
			return model.RemoteOnly, &restored, nil
		}
	}

	profileAddr, err := m.store.Setting(userID, profileAddressKey(chain))
	if err != nil {
		return model.NoWallet, nil, err
	}
	if profileAddr != "" {
		return model.AddressKnownNoBlob, nil, nil
	}

	return model.NoWallet, nil, nil
}
