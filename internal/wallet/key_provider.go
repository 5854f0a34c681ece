package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyBackend is the node access a KeyProvider needs to build and broadcast
// transactions. *ethclient.Client satisfies it.
type KeyBackend interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// ErrChainMismatch is returned when the node reports a chain other than the
// one the key provider was configured for.
var ErrChainMismatch = errors.New("chain id mismatch")

// KeyProvider signs locally with a single private key.
type KeyProvider struct {
	key     *ecdsa.PrivateKey
	address common.Address
	backend KeyBackend
	chainID *big.Int

	authorized atomic.Bool

	// nonce assignment must not interleave between concurrent sends
	sendMu sync.Mutex
}

var _ Provider = (*KeyProvider)(nil)

// KeyOption configures KeyProvider.
type KeyOption func(*KeyProvider)

// WithAutoAuthorize exposes the key account without a prior RequestAccounts.
func WithAutoAuthorize() KeyOption {
	return func(p *KeyProvider) {
		p.authorized.Store(true)
	}
}

// WithChainID pins the chain transactions are signed for. Sends fail with
// ErrChainMismatch when the node is on another chain.
func WithChainID(id int64) KeyOption {
	return func(p *KeyProvider) {
		if id > 0 {
			p.chainID = big.NewInt(id)
		}
	}
}

// NewKeyProvider creates a provider from a hex encoded private key.
func NewKeyProvider(hexKey string, backend KeyBackend, opts ...KeyOption) (*KeyProvider, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	p := &KeyProvider{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		backend: backend,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Address returns the key's account.
func (p *KeyProvider) Address() common.Address {
	return p.address
}

// Accounts returns the key account once authorized.
func (p *KeyProvider) Accounts(ctx context.Context) ([]string, error) {
	if !p.authorized.Load() {
		return nil, nil
	}
	return []string{p.address.Hex()}, nil
}

// RequestAccounts authorizes and returns the key account.
func (p *KeyProvider) RequestAccounts(ctx context.Context) ([]string, error) {
	p.authorized.Store(true)
	return []string{p.address.Hex()}, nil
}

// SendTransaction builds, signs and broadcasts a legacy EIP-155 transaction.
func (p *KeyProvider) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	if msg.From != (common.Address{}) && msg.From != p.address {
		return common.Hash{}, fmt.Errorf("cannot sign for %s", msg.From.Hex())
	}
	msg.From = p.address

	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	chainID, err := p.backend.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("chain id: %w", err)
	}
	if p.chainID != nil && p.chainID.Cmp(chainID) != 0 {
		return common.Hash{}, fmt.Errorf("%w: node is on %s, configured %s", ErrChainMismatch, chainID, p.chainID)
	}
	nonce, err := p.backend.PendingNonceAt(ctx, p.address)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pending nonce: %w", err)
	}
	gasPrice := msg.GasPrice
	if gasPrice == nil {
		if gasPrice, err = p.backend.SuggestGasPrice(ctx); err != nil {
			return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
		}
	}
	gas := msg.Gas
	if gas == 0 {
		if gas, err = p.backend.EstimateGas(ctx, msg); err != nil {
			return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
		}
	}
	value := msg.Value
	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       msg.To,
		Value:    value,
		Data:     msg.Data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), p.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign transaction: %w", err)
	}
	if err := p.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("send transaction: %w", err)
	}

	log.Debugf("sent tx %s nonce=%d gas=%d", signed.Hash().Hex(), nonce, gas)
	return signed.Hash(), nil
}
