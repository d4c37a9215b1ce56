package signer

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	ethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/peerswap/walletcore/internal/model"
)

// Default gas limits for the two supported call shapes.
const (
	gasLimitNative = 21000
	gasLimitToken  = 65000
)

// transferSelector is the first four bytes of keccak256("transfer(address,uint256)").
var transferSelector = []byte{0xa9, 0x05, 0x9c, 0xbb}

// balanceOfSelector is the first four bytes of keccak256("balanceOf(address)").
var balanceOfSelector = []byte{0x70, 0xa0, 0x82, 0x31}

// evmEndpoint is one entry in the static per-chain RPC registry.
type evmEndpoint struct {
	chainID *big.Int
	rpcURL  string
}

// EVMSigner signs native-coin and fixed-ABI token transfers for one EVM
// chain. Signing is fully offline; only Balance and Broadcast dial the RPC.
type EVMSigner struct {
	chain    model.Chain
	endpoint evmEndpoint
}

// evmRegistry fixes the chain id per supported EVM chain. RPC URLs are
// supplied at construction; chain ids are protocol constants.
var evmRegistry = map[model.Chain]*big.Int{
	model.ChainEthereum: big.NewInt(1),
	model.ChainBNB:      big.NewInt(56),
}

// NewEVMSigner creates a signer for one EVM-family chain.
func NewEVMSigner(chain model.Chain, rpcURL string) (*EVMSigner, error) {
	chainID, ok := evmRegistry[chain]
	if !ok {
		return nil, &model.SigningError{Chain: chain, Reason: "not an EVM chain"}
	}
	return &EVMSigner{
		chain:    chain,
		endpoint: evmEndpoint{chainID: chainID, rpcURL: rpcURL},
	}, nil
}

func (s *EVMSigner) Chain() model.Chain { return s.chain }

func (s *EVMSigner) Address(ctx context.Context, phrase string) (string, error) {
	d, err := deriveForChain(ctx, phrase, s.chain)
	if err != nil {
		return "", err
	}
	clear(d.PrivateKey)
	return d.Address, nil
}

// Balance returns the native balance, or the ERC-20 balance when asset is a
// token contract address.
func (s *EVMSigner) Balance(ctx context.Context, address, asset string) (*big.Int, error) {
	client, err := ethclient.DialContext(ctx, s.endpoint.rpcURL)
	if err != nil {
		return nil, &model.BackendError{Op: "evm dial", Err: err}
	}
	defer client.Close()

	account := ethcommon.HexToAddress(address)

	if asset == "" {
		bal, err := client.BalanceAt(ctx, account, nil)
		if err != nil {
			return nil, &model.BackendError{Op: "evm balance", Err: err}
		}
		return bal, nil
	}

	contract := ethcommon.HexToAddress(asset)
	data := append(append([]byte{}, balanceOfSelector...), ethcommon.LeftPadBytes(account.Bytes(), 32)...)
	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, &model.BackendError{Op: "token balance", Err: err}
	}
	return new(big.Int).SetBytes(out), nil
}

// PendingParams fetches the account's pending nonce and the node's suggested
// gas price, for callers assembling a request before the offline Sign.
func (s *EVMSigner) PendingParams(ctx context.Context, address string) (uint64, *big.Int, error) {
	client, err := ethclient.DialContext(ctx, s.endpoint.rpcURL)
	if err != nil {
		return 0, nil, &model.BackendError{Op: "evm dial", Err: err}
	}
	defer client.Close()

	nonce, err := client.PendingNonceAt(ctx, ethcommon.HexToAddress(address))
	if err != nil {
		return 0, nil, &model.BackendError{Op: "evm nonce", Err: err}
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return 0, nil, &model.BackendError{Op: "evm gas price", Err: err}
	}
	return nonce, gasPrice, nil
}

// Sign builds either a native transfer or the fixed transfer(address,uint256)
// call, signs it offline under EIP-155 and returns the RLP bytes.
func (s *EVMSigner) Sign(ctx context.Context, phrase string, req any) (*model.SignedTx, error) {
	r, ok := req.(*model.EVMSignRequest)
	if !ok {
		return nil, &model.SigningError{Chain: s.chain, Reason: fmt.Sprintf("unexpected request type %T", req)}
	}
	if r.Value == nil || r.Value.Sign() <= 0 {
		return nil, &model.SigningError{Chain: s.chain, Reason: "value must be positive"}
	}
	if r.GasPrice == nil || r.GasPrice.Sign() <= 0 {
		return nil, &model.SigningError{Chain: s.chain, Reason: "gasPrice must be positive"}
	}
	if !ethcommon.IsHexAddress(r.To) {
		return nil, &model.SigningError{Chain: s.chain, Reason: "bad recipient address"}
	}

	d, err := deriveForChain(ctx, phrase, s.chain)
	if err != nil {
		return nil, err
	}
	defer clear(d.PrivateKey)

	priv, err := ethcrypto.ToECDSA(d.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}

	var inner *types.LegacyTx
	if r.TokenContract == "" {
		gas := r.GasLimit
		if gas == 0 {
			gas = gasLimitNative
		}
		to := ethcommon.HexToAddress(r.To)
		inner = &types.LegacyTx{
			Nonce:    r.Nonce,
			GasPrice: r.GasPrice,
			Gas:      gas,
			To:       &to,
			Value:    r.Value,
		}
	} else {
		if !ethcommon.IsHexAddress(r.TokenContract) {
			return nil, &model.SigningError{Chain: s.chain, Reason: "bad token contract address"}
		}
		gas := r.GasLimit
		if gas == 0 {
			gas = gasLimitToken
		}
		contract := ethcommon.HexToAddress(r.TokenContract)
		data := append(append([]byte{}, transferSelector...),
			append(ethcommon.LeftPadBytes(ethcommon.HexToAddress(r.To).Bytes(), 32),
				ethcommon.LeftPadBytes(r.Value.Bytes(), 32)...)...)
		inner = &types.LegacyTx{
			Nonce:    r.Nonce,
			GasPrice: r.GasPrice,
			Gas:      gas,
			To:       &contract,
			Value:    big.NewInt(0),
			Data:     data,
		}
	}

	signed, err := types.SignNewTx(priv, types.LatestSignerForChainID(s.endpoint.chainID), inner)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	return &model.SignedTx{Raw: raw, TxID: signed.Hash().Hex()}, nil
}

// Broadcast submits raw RLP bytes via eth_sendRawTransaction.
func (s *EVMSigner) Broadcast(ctx context.Context, raw []byte) (string, error) {
	client, err := ethrpc.DialContext(ctx, s.endpoint.rpcURL)
	if err != nil {
		return "", &model.BackendError{Op: "evm dial", Err: err}
	}
	defer client.Close()

	var txHash ethcommon.Hash
	if err := client.CallContext(ctx, &txHash, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		return "", &model.BackendError{Op: "evm broadcast", Err: err}
	}
	return txHash.Hex(), nil
}
