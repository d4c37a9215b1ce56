// Package store is the namespaced local keyed store backing the wallet
// subsystem. Collections are per-user: wallets/{prefix}_{userID},
// settings/{prefix}_{userID}, swap_history/{prefix}_{userID}.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/peerswap/walletcore/internal/model"
)

// maxOrderHistory caps the per-user swap history at the newest entries.
const maxOrderHistory = 50

// Store wraps a LevelDB instance. Collection writes are read-modify-write of
// a whole JSON value, so every mutation for a user is serialized through a
// per-user mutex; two concurrent appends can never lose a record.
type Store struct {
	db     *leveldb.DB
	prefix string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open opens (or creates) the store at path.
func Open(path, prefix string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return &Store{
		db:     db,
		prefix: prefix,
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

func (s *Store) walletsKey(userID string) []byte {
	return []byte("wallets/" + s.prefix + "_" + userID)
}

// legacyWalletsKey is the unprefixed location older builds wrote to.
func (s *Store) legacyWalletsKey(userID string) []byte {
	return []byte("wallets/" + userID)
}

func (s *Store) settingsKey(userID string) []byte {
	return []byte("settings/" + s.prefix + "_" + userID)
}

func (s *Store) historyKey(userID string) []byte {
	return []byte("swap_history/" + s.prefix + "_" + userID)
}

func (s *Store) getJSON(key []byte, out any) (bool, error) {
	raw, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) putJSON(key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.db.Put(key, raw, nil); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Wallets reads a user's wallet collection. If only the legacy unprefixed
// location holds data, it is migrated into the current location and the
// legacy copy removed; a second call finds nothing left to migrate.
func (s *Store) Wallets(userID string) ([]model.WalletRecord, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var wallets []model.WalletRecord
	found, err := s.getJSON(s.walletsKey(userID), &wallets)
	if err != nil {
		return nil, err
	}
	if found {
		return wallets, nil
	}

	// One-shot legacy migration.
	found, err = s.getJSON(s.legacyWalletsKey(userID), &wallets)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	if err := s.putJSON(s.walletsKey(userID), wallets); err != nil {
		return nil, err
	}
	if err := s.db.Delete(s.legacyWalletsKey(userID), nil); err != nil {
		return nil, fmt.Errorf("failed to remove legacy wallets: %w", err)
	}
	return wallets, nil
}

// AppendWallet atomically adds a record to the user's collection.
func (s *Store) AppendWallet(userID string, rec model.WalletRecord) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var wallets []model.WalletRecord
	if _, err := s.getJSON(s.walletsKey(userID), &wallets); err != nil {
		return err
	}
	wallets = append(wallets, rec)
	return s.putJSON(s.walletsKey(userID), wallets)
}

// AppendWalletIfChainAbsent adds a record only if the user holds no active
// wallet on the same chain. The check and the append run under the user's
// lock, so two concurrent creations for one chain cannot both land.
func (s *Store) AppendWalletIfChainAbsent(userID string, rec model.WalletRecord) error {
	chain, err := rec.Chain()
	if err != nil {
		return err
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var wallets []model.WalletRecord
	if _, err := s.getJSON(s.walletsKey(userID), &wallets); err != nil {
		return err
	}
	for i := range wallets {
		c, err := wallets[i].Chain()
		if err != nil {
			continue
		}
		if c == chain && wallets[i].IsActive {
			return fmt.Errorf("%w for %s", model.ErrWalletExists, chain)
		}
	}
	wallets = append(wallets, rec)
	return s.putJSON(s.walletsKey(userID), wallets)
}

// ReplaceWallet atomically replaces the record with the same id. The whole
// record is written as a value; ciphertext fields are never patched in place.
func (s *Store) ReplaceWallet(userID string, rec model.WalletRecord) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var wallets []model.WalletRecord
	found, err := s.getJSON(s.walletsKey(userID), &wallets)
	if err != nil {
		return err
	}
	if !found {
		return model.ErrNotFound
	}
	for i := range wallets {
		if wallets[i].ID == rec.ID {
			wallets[i] = rec
			return s.putJSON(s.walletsKey(userID), wallets)
		}
	}
	return model.ErrNotFound
}

// SaveWallets overwrites the user's whole collection (remote restore path).
func (s *Store) SaveWallets(userID string, wallets []model.WalletRecord) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.putJSON(s.walletsKey(userID), wallets)
}

// Setting reads one key from the user's settings collection.
func (s *Store) Setting(userID, key string) (string, error) {
	settings := map[string]string{}
	if _, err := s.getJSON(s.settingsKey(userID), &settings); err != nil {
		return "", err
	}
	return settings[key], nil
}

// SetSetting writes one key into the user's settings collection.
func (s *Store) SetSetting(userID, key, value string) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	settings := map[string]string{}
	if _, err := s.getJSON(s.settingsKey(userID), &settings); err != nil {
		return err
	}
	settings[key] = value
	return s.putJSON(s.settingsKey(userID), settings)
}

// History returns the user's swap orders, newest first.
func (s *Store) History(userID string) ([]model.ExecutionOrder, error) {
	var orders []model.ExecutionOrder
	if _, err := s.getJSON(s.historyKey(userID), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// PushOrder prepends an order to the history, keeping the newest 50.
func (s *Store) PushOrder(userID string, order model.ExecutionOrder) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	var orders []model.ExecutionOrder
	if _, err := s.getJSON(s.historyKey(userID), &orders); err != nil {
		return err
	}
	orders = append([]model.ExecutionOrder{order}, orders...)
	if len(orders) > maxOrderHistory {
		orders = orders[:maxOrderHistory]
	}
	return s.putJSON(s.historyKey(userID), orders)
}
