package mnemonic

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGenerate(t *testing.T) {
	phrase, err := Generate(0)
	require.NoError(t, err)
	require.Len(t, strings.Fields(phrase), 12)
	require.True(t, Validate(phrase))

	phrase24, err := Generate(256)
	require.NoError(t, err)
	require.Len(t, strings.Fields(phrase24), 24)
	require.True(t, Validate(phrase24))
}

func TestGenerateUnique(t *testing.T) {
	a, err := Generate(128)
	require.NoError(t, err)
	b, err := Generate(128)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestValidate(t *testing.T) {
	require.True(t, Validate(testPhrase))
	require.False(t, Validate("abandon abandon abandon"))
	require.False(t, Validate("notaword abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"))
}

func TestToSeedVector(t *testing.T) {
	seed, err := ToSeed(context.Background(), testPhrase)
	require.NoError(t, err)

	// BIP-39 reference vector for the all-abandon phrase, empty passphrase.
	require.Equal(t,
		"5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc1"+
			"9a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4",
		hex.EncodeToString(seed))
}

func TestToSeedInvalidPhrase(t *testing.T) {
	_, err := ToSeed(context.Background(), "definitely not a mnemonic")
	require.Error(t, err)
}

func TestToSeedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ToSeed(ctx, testPhrase)
	require.ErrorIs(t, err, context.Canceled)
}
