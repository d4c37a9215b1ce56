package signer

import (
	"bytes"
	"context"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/peerswap/walletcore/internal/model"
)

const testPhrase = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

const testUTXOTxID = "aa00000000000000000000000000000000000000000000000000000000000001"

// recipient for outgoing payments in tests; any valid mainnet address works.
const testRecipient = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"

type stubExplorer struct {
	utxos []model.UTXO
	txid  string
}

func (s *stubExplorer) UTXOs(ctx context.Context, address string) ([]model.UTXO, error) {
	return s.utxos, nil
}

func (s *stubExplorer) Broadcast(ctx context.Context, rawTx []byte) (string, error) {
	return s.txid, nil
}

func TestEstimateFee(t *testing.T) {
	// 10.5 + 68 + 31 = 109.5 vbytes at 10 sat/vb rounds up to 1095.
	require.Equal(t, int64(1095), EstimateFee(1, 1, 10))
	require.Equal(t, int64(110), EstimateFee(1, 1, 1))
	require.Equal(t, int64(141), EstimateFee(1, 2, 1))
	require.Equal(t, int64(2395), EstimateFee(2, 3, 10))
}

func TestBitcoinSignWithChange(t *testing.T) {
	s := NewBitcoinSigner(&stubExplorer{})

	signed, err := s.Sign(context.Background(), testPhrase, &model.BitcoinSignRequest{
		To:      testRecipient,
		Amount:  20000,
		FeeRate: 2,
		UTXOs:   []model.UTXO{{TxID: testUTXOTxID, Vout: 0, Value: 100000}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, signed.Raw)
	require.Len(t, signed.TxID, 64)

	var tx wire.MsgTx
	require.NoError(t, tx.Deserialize(bytes.NewReader(signed.Raw)))
	require.Len(t, tx.TxIn, 1)
	require.NotEmpty(t, tx.TxIn[0].Witness)
	require.Len(t, tx.TxOut, 2)
	require.Equal(t, int64(20000), tx.TxOut[0].Value)
	// change = 100000 - 20000 - ceil(140.5*2)
	require.Equal(t, int64(100000-20000-281), tx.TxOut[1].Value)
}

func TestBitcoinSignDustChangeDropped(t *testing.T) {
	s := NewBitcoinSigner(&stubExplorer{})

	// change would be 21000 - 20500 - 141 = 359, at or below dust, so the
	// transaction carries a single output and the remainder goes to fee.
	signed, err := s.Sign(context.Background(), testPhrase, &model.BitcoinSignRequest{
		To:      testRecipient,
		Amount:  20500,
		FeeRate: 1,
		UTXOs:   []model.UTXO{{TxID: testUTXOTxID, Vout: 0, Value: 21000}},
	})
	require.NoError(t, err)

	var tx wire.MsgTx
	require.NoError(t, tx.Deserialize(bytes.NewReader(signed.Raw)))
	require.Len(t, tx.TxOut, 1)
	require.Equal(t, int64(20500), tx.TxOut[0].Value)
}

func TestBitcoinSignInsufficientFunds(t *testing.T) {
	s := NewBitcoinSigner(&stubExplorer{})

	signed, err := s.Sign(context.Background(), testPhrase, &model.BitcoinSignRequest{
		To:      testRecipient,
		Amount:  900,
		FeeRate: 10,
		UTXOs:   []model.UTXO{{TxID: testUTXOTxID, Vout: 0, Value: 1000}},
	})
	require.Nil(t, signed)

	var insufficient *model.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	require.Equal(t, model.ChainBitcoin, insufficient.Chain)
	// need = amount + single-output fee = 900 + 1095
	require.Equal(t, int64(1995), insufficient.Need.Int64())
	require.Equal(t, int64(1000), insufficient.Have.Int64())
}

func TestBitcoinSignRejectsBadRequests(t *testing.T) {
	s := NewBitcoinSigner(&stubExplorer{})
	ctx := context.Background()

	_, err := s.Sign(ctx, testPhrase, &model.EVMSignRequest{})
	var signing *model.SigningError
	require.ErrorAs(t, err, &signing)

	_, err = s.Sign(ctx, testPhrase, &model.BitcoinSignRequest{
		To: testRecipient, Amount: 1000, FeeRate: 1,
	})
	require.ErrorAs(t, err, &signing)

	_, err = s.Sign(ctx, testPhrase, &model.BitcoinSignRequest{
		To: testRecipient, Amount: 0, FeeRate: 1,
		UTXOs: []model.UTXO{{TxID: testUTXOTxID, Vout: 0, Value: 5000}},
	})
	require.ErrorAs(t, err, &signing)
}

func TestBitcoinBalanceSumsUTXOs(t *testing.T) {
	s := NewBitcoinSigner(&stubExplorer{utxos: []model.UTXO{
		{TxID: testUTXOTxID, Vout: 0, Value: 1500},
		{TxID: testUTXOTxID, Vout: 1, Value: 2500},
	}})

	balance, err := s.Balance(context.Background(), "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", "")
	require.NoError(t, err)
	require.Equal(t, int64(4000), balance.Int64())
}

func TestBitcoinAddress(t *testing.T) {
	s := NewBitcoinSigner(&stubExplorer{})
	addr, err := s.Address(context.Background(), testPhrase)
	require.NoError(t, err)
	require.Equal(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", addr)
}

func TestRegistryUnknownChain(t *testing.T) {
	r := NewRegistry(NewBitcoinSigner(&stubExplorer{}))

	got, err := r.For(model.ChainBitcoin)
	require.NoError(t, err)
	require.Equal(t, model.ChainBitcoin, got.Chain())

	_, err = r.For(model.ChainSolana)
	var signing *model.SigningError
	require.ErrorAs(t, err, &signing)
}
