package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/peerswap/walletcore/internal/model"
)

func testVault() *model.EncryptedVault {
	return &model.EncryptedVault{
		Version:    model.VaultVersion,
		CipherText: "Y2lwaGVy",
		IV:         "bm9uY2U=",
		Salt:       "c2FsdA==",
		KDF:        "scrypt",
		KDFParams:  model.DefaultKdfParams(),
	}
}

func TestBackupUpsertWireFormat(t *testing.T) {
	var gotPath, gotPrefer, gotAPIKey string
	var gotRows []backupRow

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotPrefer = r.Header.Get("Prefer")
		gotAPIKey = r.Header.Get("apikey")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &gotRows))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewBackupClient(srv.URL, "secret-key", time.Second)
	rec := &model.WalletRecord{
		ID:                "w1",
		ChainID:           "bitcoin",
		Address:           "bc1q...",
		WalletType:        model.WalletTypeGenerated,
		EncryptedMnemonic: testVault(),
		CreatedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		IsActive:          true,
	}

	require.NoError(t, c.Upsert(context.Background(), "u1", rec))

	require.Equal(t, "/wallet_backups?on_conflict=id", gotPath)
	require.Equal(t, "resolution=merge-duplicates", gotPrefer)
	require.Equal(t, "secret-key", gotAPIKey)
	require.Len(t, gotRows, 1)

	row := gotRows[0]
	require.Equal(t, "u1", row.UserID)
	// Booleans travel as strings.
	require.Equal(t, "true", row.IsActive)
	require.Equal(t, "false", row.IsBackedUp)
	// The vault rides inside the column as a JSON string.
	var vault model.EncryptedVault
	require.NoError(t, json.Unmarshal([]byte(row.EncryptedMnemonic), &vault))
	require.Equal(t, model.VaultVersion, vault.Version)
	require.Equal(t, "2026-03-01T12:00:00Z", row.CreatedAt)
}

func TestBackupFetchRoundTrip(t *testing.T) {
	vaultJSON, err := json.Marshal(testVault())
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
		json.NewEncoder(w).Encode([]backupRow{{
			ID:                "w1",
			UserID:            "u1",
			ChainID:           "bitcoin",
			Address:           "bc1q...",
			WalletType:        "generated",
			EncryptedMnemonic: string(vaultJSON),
			IsActive:          "true",
			IsBackedUp:        "true",
			CreatedAt:         "2026-03-01T12:00:00Z",
		}})
	}))
	defer srv.Close()

	c := NewBackupClient(srv.URL, "", time.Second)
	records, err := c.Fetch(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	require.Equal(t, "w1", rec.ID)
	require.True(t, rec.IsActive)
	require.True(t, rec.IsBackedUp)
	require.NotNil(t, rec.EncryptedMnemonic)
	require.Equal(t, model.VaultVersion, rec.EncryptedMnemonic.Version)
	require.Equal(t, 2026, rec.CreatedAt.Year())
}

func TestBackupFetchBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewBackupClient(srv.URL, "", time.Second)
	_, err := c.Fetch(context.Background(), "u1")

	var backend *model.BackendError
	require.ErrorAs(t, err, &backend)
}

func TestBackupFetchDropsBrokenVaultColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]backupRow{{
			ID:                "w1",
			ChainID:           "bitcoin",
			EncryptedMnemonic: "not json",
			IsActive:          "true",
		}})
	}))
	defer srv.Close()

	c := NewBackupClient(srv.URL, "", time.Second)
	records, err := c.Fetch(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Nil(t, records[0].EncryptedMnemonic)
}
