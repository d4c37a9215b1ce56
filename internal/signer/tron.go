package signer

import (
	"context"
	"math/big"

	"github.com/peerswap/walletcore/internal/model"
)

// TronSigner honors the ChainSigner contract for Tron but implements no
// transaction logic: fee and unit policy has no source of truth yet, so
// every operation except address derivation fails loudly instead of
// silently no-opping.
type TronSigner struct{}

// NewTronSigner creates the Tron signer stub.
func NewTronSigner() *TronSigner { return &TronSigner{} }

func (s *TronSigner) Chain() model.Chain { return model.ChainTron }

// Address works: derivation is fully specified even though signing is not.
func (s *TronSigner) Address(ctx context.Context, phrase string) (string, error) {
	d, err := deriveForChain(ctx, phrase, model.ChainTron)
	if err != nil {
		return "", err
	}
	clear(d.PrivateKey)
	return d.Address, nil
}

func (s *TronSigner) Balance(ctx context.Context, address, asset string) (*big.Int, error) {
	return nil, &model.SigningError{Chain: model.ChainTron, Reason: "balance lookup not implemented"}
}

func (s *TronSigner) Sign(ctx context.Context, phrase string, req any) (*model.SignedTx, error) {
	return nil, &model.SigningError{Chain: model.ChainTron, Reason: "transaction signing not implemented"}
}

func (s *TronSigner) Broadcast(ctx context.Context, raw []byte) (string, error) {
	return "", &model.SigningError{Chain: model.ChainTron, Reason: "broadcast not implemented"}
}
