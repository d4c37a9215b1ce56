package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peerswap/walletcore/internal/signer"
	"github.com/peerswap/walletcore/internal/store"
	"github.com/peerswap/walletcore/internal/swap"
	"github.com/peerswap/walletcore/internal/wallet"
)

func newTestHandlers(t *testing.T) (*WalletHandler, *SwapHandler) {
	t.Helper()
	st, err := store.Open(t.TempDir(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	manager := wallet.NewManager(st, nil, nil)
	signers := signer.NewRegistry()
	orchestrator := swap.NewOrchestrator(signers, nil, nil, st, nil)
	return NewWalletHandler(manager, signers), NewSwapHandler(manager, orchestrator)
}

// A valid request for a chain the user holds no wallet on must answer 404,
// never crash the handler.
func TestReceiveUnknownWallet(t *testing.T) {
	walletHandler, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/wallets/receive?userId=u1&chain=bitcoin", nil)
	walletHandler.Receive(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "no bitcoin wallet")
}

func TestBalanceUnknownWallet(t *testing.T) {
	walletHandler, _ := newTestHandlers(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/wallets/balance?userId=u1&chain=ethereum", nil)
	walletHandler.Balance(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendUnknownWallet(t *testing.T) {
	walletHandler, _ := newTestHandlers(t)

	body := `{"userId":"u1","chain":"bitcoin","password":"pw","toAddress":"x","amount":"1"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/wallets/send", strings.NewReader(body))
	walletHandler.Send(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSwapExecuteUnknownWallet(t *testing.T) {
	_, swapHandler := newTestHandlers(t)

	body := `{"userId":"u1","chain":"ethereum","fromToken":"ETH","toToken":"USDT","amount":"1"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/swap/execute", strings.NewReader(body))
	swapHandler.Execute(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
