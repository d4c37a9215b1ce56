package signer

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/peerswap/walletcore/internal/model"
)

// DustThreshold is the smallest change output worth creating, in satoshis.
// Change at or below it is dropped, paid to the network as extra fee.
const DustThreshold = 546

// BitcoinExplorer is the block-explorer API the signer uses for UTXO lookup
// and broadcast.
type BitcoinExplorer interface {
	UTXOs(ctx context.Context, address string) ([]model.UTXO, error)
	Broadcast(ctx context.Context, rawTx []byte) (string, error)
}

// BitcoinSigner signs native-segwit (P2WPKH) payments.
type BitcoinSigner struct {
	explorer BitcoinExplorer
	params   *chaincfg.Params
}

// NewBitcoinSigner creates a Bitcoin signer over an explorer client.
func NewBitcoinSigner(explorer BitcoinExplorer) *BitcoinSigner {
	return &BitcoinSigner{explorer: explorer, params: &chaincfg.MainNetParams}
}

func (s *BitcoinSigner) Chain() model.Chain { return model.ChainBitcoin }

func (s *BitcoinSigner) Address(ctx context.Context, phrase string) (string, error) {
	d, err := deriveForChain(ctx, phrase, model.ChainBitcoin)
	if err != nil {
		return "", err
	}
	clear(d.PrivateKey)
	return d.Address, nil
}

// UTXOs returns the confirmed spendable outputs for the address.
func (s *BitcoinSigner) UTXOs(ctx context.Context, address string) ([]model.UTXO, error) {
	return s.explorer.UTXOs(ctx, address)
}

// Balance sums the confirmed UTXO set for the address. asset is ignored:
// Bitcoin has no token layer here.
func (s *BitcoinSigner) Balance(ctx context.Context, address, asset string) (*big.Int, error) {
	utxos, err := s.explorer.UTXOs(ctx, address)
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	for _, u := range utxos {
		total.Add(total, big.NewInt(u.Value))
	}
	return total, nil
}

// EstimateVBytes approximates the virtual size of a native-segwit
// transaction: 10.5 overhead + 68 per input + 31 per output.
func EstimateVBytes(inputs, outputs int) float64 {
	return 10.5 + 68*float64(inputs) + 31*float64(outputs)
}

// EstimateFee is ceil(vBytes * feeRate) in satoshis.
func EstimateFee(inputs, outputs int, feeRate int64) int64 {
	return int64(math.Ceil(EstimateVBytes(inputs, outputs) * float64(feeRate)))
}

// Sign builds and signs a P2WPKH payment from the caller-supplied UTXO set.
// The funds check runs before any transaction bytes are constructed, so an
// underfunded request never yields a signed-but-unusable transaction.
func (s *BitcoinSigner) Sign(ctx context.Context, phrase string, req any) (*model.SignedTx, error) {
	r, ok := req.(*model.BitcoinSignRequest)
	if !ok {
		return nil, &model.SigningError{Chain: model.ChainBitcoin, Reason: fmt.Sprintf("unexpected request type %T", req)}
	}
	if len(r.UTXOs) == 0 {
		return nil, &model.SigningError{Chain: model.ChainBitcoin, Reason: "no inputs supplied"}
	}
	if r.Amount <= 0 || r.FeeRate <= 0 {
		return nil, &model.SigningError{Chain: model.ChainBitcoin, Reason: "amount and feeRate must be positive"}
	}

	var totalIn int64
	for _, u := range r.UTXOs {
		totalIn += u.Value
	}

	// Funds check against the cheapest possible shape (single output).
	feeOne := EstimateFee(len(r.UTXOs), 1, r.FeeRate)
	if totalIn < r.Amount+feeOne {
		return nil, &model.InsufficientFundsError{
			Chain: model.ChainBitcoin,
			Need:  big.NewInt(r.Amount + feeOne),
			Have:  big.NewInt(totalIn),
		}
	}

	d, err := deriveForChain(ctx, phrase, model.ChainBitcoin)
	if err != nil {
		return nil, err
	}
	defer clear(d.PrivateKey)

	privKey, _ := btcec.PrivKeyFromBytes(d.PrivateKey)
	ownScript, err := payToAddrScript(d.Address, s.params)
	if err != nil {
		return nil, err
	}
	payScript, err := payToAddrScript(r.To, s.params)
	if err != nil {
		return nil, &model.SigningError{Chain: model.ChainBitcoin, Reason: fmt.Sprintf("bad recipient address: %v", err)}
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(r.UTXOs))
	for _, u := range r.UTXOs {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, &model.SigningError{Chain: model.ChainBitcoin, Reason: fmt.Sprintf("bad utxo txid: %v", err)}
		}
		op := wire.NewOutPoint(hash, u.Vout)
		tx.AddTxIn(wire.NewTxIn(op, nil, nil))
		prevOuts[*op] = wire.NewTxOut(u.Value, ownScript)
	}

	tx.AddTxOut(wire.NewTxOut(r.Amount, payScript))

	// A change output only exists above the dust threshold; dust-sized
	// change goes to the network as fee instead.
	feeTwo := EstimateFee(len(r.UTXOs), 2, r.FeeRate)
	if change := totalIn - r.Amount - feeTwo; change > DustThreshold {
		tx.AddTxOut(wire.NewTxOut(change, ownScript))
	}

	fetcher := txscript.NewMultiPrevOutFetcher(prevOuts)
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)
	for i, txIn := range tx.TxIn {
		prev := prevOuts[txIn.PreviousOutPoint]
		witness, err := txscript.WitnessSignature(tx, sigHashes, i, prev.Value,
			ownScript, txscript.SigHashAll, privKey, true)
		if err != nil {
			return nil, fmt.Errorf("failed to sign input %d: %w", i, err)
		}
		txIn.Witness = witness
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return &model.SignedTx{Raw: buf.Bytes(), TxID: tx.TxHash().String()}, nil
}

func (s *BitcoinSigner) Broadcast(ctx context.Context, raw []byte) (string, error) {
	return s.explorer.Broadcast(ctx, raw)
}

func payToAddrScript(address string, params *chaincfg.Params) ([]byte, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(addr)
}
