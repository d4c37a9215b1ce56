package derivation

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/peerswap/walletcore/internal/model"
)

// Seed of the all-abandon reference phrase with an empty passphrase.
func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := hex.DecodeString(
		"5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc1" +
			"9a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4")
	require.NoError(t, err)
	return seed
}

func TestDeriveKnownAddresses(t *testing.T) {
	seed := testSeed(t)

	tests := []struct {
		chain   model.Chain
		address string
	}{
		{model.ChainBitcoin, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"},
		{model.ChainEthereum, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"},
		{model.ChainBNB, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94"},
		{model.ChainTron, "TUEZSdKsoDHQMeZwihtdoBiN46zxhGWYdH"},
		{model.ChainXRP, "rHsMGQEkVNJmpGWs8XUBoTBiAAbwxZN5v3"},
		{model.ChainSolana, "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk"},
	}

	for _, tc := range tests {
		t.Run(string(tc.chain), func(t *testing.T) {
			d, err := Derive(seed, tc.chain)
			require.NoError(t, err)
			require.Equal(t, tc.address, d.Address)
			require.Len(t, d.PrivateKey, 32)
			require.NotEmpty(t, d.PublicKey)
		})
	}
}

func TestDeriveKnownPrivateKeys(t *testing.T) {
	seed := testSeed(t)

	btc, err := Derive(seed, model.ChainBitcoin)
	require.NoError(t, err)
	require.Equal(t,
		"4604b4b710fe91f584fff084e1a9159fe4f8408fff380596a604948474ce4fa3",
		hex.EncodeToString(btc.PrivateKey))

	eth, err := Derive(seed, model.ChainEthereum)
	require.NoError(t, err)
	require.Equal(t,
		"1ab42cc412b618bdea3a599e3c9bae199ebf030895b039e9db1e30dafb12b727",
		hex.EncodeToString(eth.PrivateKey))

	sol, err := Derive(seed, model.ChainSolana)
	require.NoError(t, err)
	require.Equal(t,
		"37df573b3ac4ad5b522e064e25b63ea16bcbe79d449e81a0268d1047948bb445",
		hex.EncodeToString(sol.PrivateKey))
}

func TestDeriveDeterministic(t *testing.T) {
	seed := testSeed(t)
	for _, chain := range model.Chains() {
		a, err := Derive(seed, chain)
		require.NoError(t, err)
		b, err := Derive(seed, chain)
		require.NoError(t, err)
		require.Equal(t, a.PrivateKey, b.PrivateKey, chain)
		require.Equal(t, a.Address, b.Address, chain)
	}
}

func TestDeriveAddressFormats(t *testing.T) {
	seed := testSeed(t)

	btc, err := Derive(seed, model.ChainBitcoin)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(btc.Address, "bc1q"))

	tron, err := Derive(seed, model.ChainTron)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(tron.Address, "T"))
	require.Len(t, tron.Address, 34)

	xrp, err := Derive(seed, model.ChainXRP)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(xrp.Address, "r"))
}

func TestDeriveRejectsBadInput(t *testing.T) {
	_, err := Derive(make([]byte, 32), model.ChainBitcoin)
	require.Error(t, err)

	_, err = Derive(make([]byte, 64), model.Chain("dogecoin"))
	require.Error(t, err)
}

func TestDeriveAll(t *testing.T) {
	seed := testSeed(t)

	all, err := DeriveAll(context.Background(), seed)
	require.NoError(t, err)
	require.Len(t, all, len(model.Chains()))

	for _, chain := range model.Chains() {
		single, err := Derive(seed, chain)
		require.NoError(t, err)
		require.Equal(t, single.Address, all[chain].Address)
	}
}

func TestDeriveAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := DeriveAll(ctx, testSeed(t))
	require.Error(t, err)
}

func TestSlip10HardenedOnly(t *testing.T) {
	_, err := slip10Derive(testSeed(t), []uint32{44, 501})
	require.Error(t, err)
}
