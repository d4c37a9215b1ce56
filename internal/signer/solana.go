package signer

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/peerswap/walletcore/internal/model"
)

// SolanaSigner signs native SOL transfers with the SLIP-0010 derived
// ed25519 key.
type SolanaSigner struct {
	rpcClient *rpc.Client
}

// NewSolanaSigner creates a Solana signer over the given RPC endpoint.
func NewSolanaSigner(rpcURL string) *SolanaSigner {
	return &SolanaSigner{rpcClient: rpc.New(rpcURL)}
}

func (s *SolanaSigner) Chain() model.Chain { return model.ChainSolana }

func (s *SolanaSigner) Address(ctx context.Context, phrase string) (string, error) {
	d, err := deriveForChain(ctx, phrase, model.ChainSolana)
	if err != nil {
		return "", err
	}
	clear(d.PrivateKey)
	return d.Address, nil
}

// Balance returns the SOL balance in lamports. asset is ignored; SPL token
// balances are not part of this signer.
func (s *SolanaSigner) Balance(ctx context.Context, address, asset string) (*big.Int, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid Solana address: %w", err)
	}

	balance, err := s.rpcClient.GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, &model.BackendError{Op: "solana balance", Err: err}
	}
	return new(big.Int).SetUint64(balance.Value), nil
}

// Sign builds a real system-program transfer instruction over a recent
// blockhash and signs it. The blockhash fetch is the only network call.
func (s *SolanaSigner) Sign(ctx context.Context, phrase string, req any) (*model.SignedTx, error) {
	r, ok := req.(*model.SolanaSignRequest)
	if !ok {
		return nil, &model.SigningError{Chain: model.ChainSolana, Reason: fmt.Sprintf("unexpected request type %T", req)}
	}
	if r.Lamports == 0 {
		return nil, &model.SigningError{Chain: model.ChainSolana, Reason: "lamports must be positive"}
	}

	toPubkey, err := solana.PublicKeyFromBase58(r.To)
	if err != nil {
		return nil, &model.SigningError{Chain: model.ChainSolana, Reason: fmt.Sprintf("bad recipient address: %v", err)}
	}

	d, err := deriveForChain(ctx, phrase, model.ChainSolana)
	if err != nil {
		return nil, err
	}
	defer clear(d.PrivateKey)

	wallet := solana.PrivateKey(ed25519.NewKeyFromSeed(d.PrivateKey))
	fromPubkey := wallet.PublicKey()

	recent, err := s.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, &model.BackendError{Op: "solana blockhash", Err: err}
	}

	transferInstruction := system.NewTransferInstruction(
		r.Lamports,
		fromPubkey,
		toPubkey,
	).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{transferInstruction},
		recent.Value.Blockhash,
		solana.TransactionPayer(fromPubkey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	sigs, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if fromPubkey.Equals(key) {
			return &wallet
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	return &model.SignedTx{Raw: raw, TxID: sigs[0].String()}, nil
}

// Broadcast decodes the raw transaction and submits it.
func (s *SolanaSigner) Broadcast(ctx context.Context, raw []byte) (string, error) {
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode transaction: %w", err)
	}

	sig, err := s.rpcClient.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return "", &model.BackendError{Op: "solana broadcast", Err: err}
	}
	return sig.String(), nil
}
