package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/peerswap/walletcore/internal/model"
)

const backupTable = "wallet_backups"

// BackupClient talks to the hosted backup table over its REST interface.
// One row per wallet; booleans travel as the literal strings "true"/"false"
// for backend compatibility.
type BackupClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewBackupClient creates a client for the remote backup store.
func NewBackupClient(baseURL, apiKey string, timeout time.Duration) *BackupClient {
	return &BackupClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// backupRow is the wire shape of one backup table row.
type backupRow struct {
	ID                  string `json:"id"`
	UserID              string `json:"user_id"`
	ChainID             string `json:"chain_id"`
	Address             string `json:"address"`
	WalletType          string `json:"wallet_type"`
	EncryptedPrivateKey string `json:"encrypted_private_key,omitempty"`
	EncryptedMnemonic   string `json:"encrypted_mnemonic,omitempty"`
	IsActive            string `json:"is_active"`
	IsBackedUp          string `json:"is_backed_up"`
	AssetType           string `json:"asset_type,omitempty"`
	BaseChainWalletID   string `json:"base_chain_wallet_id,omitempty"`
	Balance             string `json:"balance,omitempty"`
	CreatedAt           string `json:"created_at"`
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func rowFromRecord(userID string, w *model.WalletRecord) (*backupRow, error) {
	row := &backupRow{
		ID:                w.ID,
		UserID:            userID,
		ChainID:           w.ChainID,
		Address:           w.Address,
		WalletType:        string(w.WalletType),
		IsActive:          boolString(w.IsActive),
		IsBackedUp:        boolString(w.IsBackedUp),
		AssetType:         w.AssetType,
		BaseChainWalletID: w.BaseChainWalletID,
		Balance:           w.Balance,
		CreatedAt:         w.CreatedAt.UTC().Format(time.RFC3339),
	}

	if w.EncryptedPrivateKey != nil {
		raw, err := json.Marshal(w.EncryptedPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encode private key vault: %w", err)
		}
		row.EncryptedPrivateKey = string(raw)
	}
	if w.EncryptedMnemonic != nil {
		raw, err := json.Marshal(w.EncryptedMnemonic)
		if err != nil {
			return nil, fmt.Errorf("failed to encode mnemonic vault: %w", err)
		}
		row.EncryptedMnemonic = string(raw)
	}
	return row, nil
}

// toRecord normalizes a row's snake_case fields back to the local shape.
// Unparseable vault columns are dropped rather than failing the restore.
func (r *backupRow) toRecord() model.WalletRecord {
	rec := model.WalletRecord{
		ID:                r.ID,
		ChainID:           r.ChainID,
		Address:           r.Address,
		WalletType:        model.WalletType(r.WalletType),
		IsActive:          r.IsActive == "true",
		IsBackedUp:        r.IsBackedUp == "true",
		AssetType:         r.AssetType,
		BaseChainWalletID: r.BaseChainWalletID,
		Balance:           r.Balance,
	}
	if t, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
		rec.CreatedAt = t
	}
	if r.EncryptedPrivateKey != "" {
		var v model.EncryptedVault
		if err := json.Unmarshal([]byte(r.EncryptedPrivateKey), &v); err == nil {
			rec.EncryptedPrivateKey = &v
		}
	}
	if r.EncryptedMnemonic != "" {
		var v model.EncryptedVault
		if err := json.Unmarshal([]byte(r.EncryptedMnemonic), &v); err == nil {
			rec.EncryptedMnemonic = &v
		}
	}
	return rec
}

// Fetch returns every backup row for the user.
func (c *BackupClient) Fetch(ctx context.Context, userID string) ([]model.WalletRecord, error) {
	endpoint := fmt.Sprintf("%s/%s?user_id=eq.%s", c.baseURL, backupTable, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.BackendError{Op: "backup fetch", Err: err}
	}
	c.auth(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &model.BackendError{Op: "backup fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.BackendError{Op: "backup fetch", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var rows []backupRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, &model.BackendError{Op: "backup fetch", Err: err}
	}

	records := make([]model.WalletRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].toRecord())
	}
	return records, nil
}

// Upsert writes one row keyed by wallet id, replacing any existing row.
func (c *BackupClient) Upsert(ctx context.Context, userID string, w *model.WalletRecord) error {
	row, err := rowFromRecord(userID, w)
	if err != nil {
		return err
	}

	body, err := json.Marshal([]*backupRow{row})
	if err != nil {
		return fmt.Errorf("failed to encode backup row: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s?on_conflict=id", c.baseURL, backupTable)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &model.BackendError{Op: "backup upsert", Err: err}
	}
	c.auth(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := c.client.Do(req)
	if err != nil {
		return &model.BackendError{Op: "backup upsert", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &model.BackendError{Op: "backup upsert", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return nil
}

func (c *BackupClient) auth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
