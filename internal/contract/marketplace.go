// Package contract binds the marketplace contract: read-only queries and
// two-phase (broadcast, then confirm) state-changing calls.
package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	logging "github.com/op/go-logging"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/observability"
)

var log = logging.MustGetLogger("contract")

// Backend is the chain access a Marketplace needs. *ethclient.Client satisfies it.
type Backend interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	ReceiptSource
}

// Signer submits transactions on behalf of one account.
type Signer interface {
	Address() common.Address
	// SendTransaction signs and broadcasts msg, returning its hash.
	SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error)
}

// Marketplace is a handle on the deployed contract. A handle without a
// signer can only query.
type Marketplace struct {
	address   common.Address
	backend   Backend
	signer    Signer
	confirmer *Confirmer
	metrics   *observability.Metrics
}

// Option configures Marketplace.
type Option func(*Marketplace)

// WithConfirmer sets the confirmation waiter.
func WithConfirmer(c *Confirmer) Option {
	return func(m *Marketplace) {
		m.confirmer = c
	}
}

// WithMetrics records transaction outcomes.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Marketplace) {
		m.metrics = metrics
	}
}

// NewMarketplace creates a read-only handle on the contract at address.
func NewMarketplace(address common.Address, backend Backend, opts ...Option) *Marketplace {
	m := &Marketplace{
		address: address,
		backend: backend,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.confirmer == nil {
		m.confirmer = NewConfirmer(backend, DefaultPollInterval, m.metrics)
	}
	return m
}

// Address returns the contract address.
func (m *Marketplace) Address() common.Address {
	return m.address
}

// WithSigner returns a copy of m bound to signer. m itself is unchanged.
func (m *Marketplace) WithSigner(signer Signer) *Marketplace {
	bound := *m
	bound.signer = signer
	return &bound
}

// Signer returns the bound signer, or nil for a read-only handle.
func (m *Marketplace) Signer() Signer {
	return m.signer
}

// GetListingFee returns the fee, in wei, charged for creating a listing.
func (m *Marketplace) GetListingFee(ctx context.Context) (*big.Int, error) {
	out, err := m.call(ctx, common.Address{}, methodListingPrice)
	if err != nil {
		return nil, err
	}
	fee := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return fee, nil
}

// CreateListing mints a token pointing at locator and lists it at price
// (human units). The listing fee is attached as value.
func (m *Marketplace) CreateListing(ctx context.Context, locator, price string) (*Receipt, error) {
	wei, err := domain.ToSmallestUnit(price)
	if err != nil {
		return nil, err
	}
	fee, err := m.GetListingFee(ctx)
	if err != nil {
		return nil, fmt.Errorf("get listing fee: %w", err)
	}
	return m.transact(ctx, methodCreateToken, fee, locator, wei)
}

// CreateSale buys tokenID, paying price (human units).
func (m *Marketplace) CreateSale(ctx context.Context, tokenID int64, price string) (*Receipt, error) {
	wei, err := domain.ToSmallestUnit(price)
	if err != nil {
		return nil, err
	}
	return m.transact(ctx, methodMarketSale, wei, big.NewInt(tokenID))
}

// ResellToken relists an owned token at price (human units). The listing
// fee is attached as value.
func (m *Marketplace) ResellToken(ctx context.Context, tokenID int64, price string) (*Receipt, error) {
	wei, err := domain.ToSmallestUnit(price)
	if err != nil {
		return nil, err
	}
	fee, err := m.GetListingFee(ctx)
	if err != nil {
		return nil, fmt.Errorf("get listing fee: %w", err)
	}
	return m.transact(ctx, methodResellToken, fee, big.NewInt(tokenID), wei)
}

// QueryAllListings returns every unsold market item.
func (m *Marketplace) QueryAllListings(ctx context.Context) ([]Record, error) {
	return m.queryRecords(ctx, common.Address{}, methodMarketItems)
}

// QueryOwnedListings returns the items the signer listed and has not sold.
func (m *Marketplace) QueryOwnedListings(ctx context.Context) ([]Record, error) {
	if m.signer == nil {
		return nil, domain.ErrNotConnected
	}
	return m.queryRecords(ctx, m.signer.Address(), methodItemsListed)
}

// QueryOwnedTokens returns the items the signer owns.
func (m *Marketplace) QueryOwnedTokens(ctx context.Context) ([]Record, error) {
	if m.signer == nil {
		return nil, domain.ErrNotConnected
	}
	return m.queryRecords(ctx, m.signer.Address(), methodMyNFTs)
}

// TokenURI returns the metadata locator of tokenID.
func (m *Marketplace) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	out, err := m.call(ctx, common.Address{}, methodTokenURI, tokenID)
	if err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (m *Marketplace) queryRecords(ctx context.Context, from common.Address, method string) ([]Record, error) {
	out, err := m.call(ctx, from, method)
	if err != nil {
		return nil, err
	}
	tuples := *abi.ConvertType(out[0], new([]marketItemTuple)).(*[]marketItemTuple)

	records := make([]Record, 0, len(tuples))
	for _, t := range tuples {
		records = append(records, t.record())
	}
	return records, nil
}

func (m *Marketplace) call(ctx context.Context, from common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{From: from, To: &m.address, Data: data}
	raw, err := m.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	out, err := parsedABI.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return out, nil
}

// transact broadcasts a call and waits for its confirmation. Every failure
// is returned as *TxError.
func (m *Marketplace) transact(ctx context.Context, method string, value *big.Int, args ...interface{}) (rcpt *Receipt, err error) {
	defer func() {
		m.metrics.RecordTransaction(method, err)
	}()

	if m.signer == nil {
		return nil, &TxError{Method: method, Err: domain.ErrNotConnected}
	}

	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, &TxError{Method: method, Err: fmt.Errorf("pack: %w", err)}
	}

	msg := ethereum.CallMsg{
		From:  m.signer.Address(),
		To:    &m.address,
		Value: value,
		Data:  data,
	}

	hash, err := m.signer.SendTransaction(ctx, msg)
	if err != nil {
		return nil, &TxError{Method: method, Err: err}
	}
	log.Infof("%s broadcast: tx=%s from=%s", method, hash.Hex(), msg.From.Hex())

	receipt, err := m.confirmer.Wait(ctx, hash)
	if err != nil {
		return nil, &TxError{Method: method, Hash: hash, Err: err}
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, &TxError{Method: method, Hash: hash, Err: ErrReverted}
	}

	rcpt = &Receipt{
		Method: method,
		TxHash: hash,
	}
	if receipt.BlockNumber != nil {
		rcpt.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if id := m.createdTokenID(receipt); id != nil {
		rcpt.TokenID = id.Int64()
	}
	log.Infof("%s confirmed: tx=%s block=%d", method, hash.Hex(), rcpt.BlockNumber)
	return rcpt, nil
}

// createdTokenID extracts the token id from a MarketItemCreated log.
func (m *Marketplace) createdTokenID(receipt *types.Receipt) *big.Int {
	eventID := parsedABI.Events[eventItemCreated].ID
	for _, l := range receipt.Logs {
		if l == nil || l.Address != m.address || len(l.Topics) < 2 {
			continue
		}
		if l.Topics[0] != eventID {
			continue
		}
		return new(big.Int).SetBytes(l.Topics[1].Bytes())
	}
	return nil
}
