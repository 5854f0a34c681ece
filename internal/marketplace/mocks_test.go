package marketplace

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"

	"nft-marketplace/internal/contract"
	"nft-marketplace/internal/domain"
)

type mockWallet struct {
	mock.Mock
}

func (m *mockWallet) RequestConnection(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockWallet) Signer() (contract.Signer, error) {
	args := m.Called()
	signer, _ := args.Get(0).(contract.Signer)
	return signer, args.Error(1)
}

type stubSigner struct {
	addr common.Address
}

func (s stubSigner) Address() common.Address { return s.addr }

func (s stubSigner) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	return common.Hash{}, nil
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) GetListingFee(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	fee, _ := args.Get(0).(*big.Int)
	return fee, args.Error(1)
}

func (m *mockGateway) CreateListing(ctx context.Context, locator, price string) (*contract.Receipt, error) {
	args := m.Called(ctx, locator, price)
	rcpt, _ := args.Get(0).(*contract.Receipt)
	return rcpt, args.Error(1)
}

func (m *mockGateway) CreateSale(ctx context.Context, tokenID int64, price string) (*contract.Receipt, error) {
	args := m.Called(ctx, tokenID, price)
	rcpt, _ := args.Get(0).(*contract.Receipt)
	return rcpt, args.Error(1)
}

func (m *mockGateway) ResellToken(ctx context.Context, tokenID int64, price string) (*contract.Receipt, error) {
	args := m.Called(ctx, tokenID, price)
	rcpt, _ := args.Get(0).(*contract.Receipt)
	return rcpt, args.Error(1)
}

func (m *mockGateway) QueryAllListings(ctx context.Context) ([]contract.Record, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]contract.Record)
	return records, args.Error(1)
}

func (m *mockGateway) QueryOwnedListings(ctx context.Context) ([]contract.Record, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]contract.Record)
	return records, args.Error(1)
}

func (m *mockGateway) QueryOwnedTokens(ctx context.Context) ([]contract.Record, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]contract.Record)
	return records, args.Error(1)
}

// mockBinder is the read-only handle; Bind hands out bound.
type mockBinder struct {
	mockGateway
	bound *mockGateway
}

func (m *mockBinder) Bind(signer contract.Signer) Gateway {
	m.Called(signer)
	return m.bound
}

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, doc domain.MetadataDocument) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, records []contract.Record) ([]domain.MarketItem, error) {
	args := m.Called(ctx, records)
	items, _ := args.Get(0).([]domain.MarketItem)
	return items, args.Error(1)
}
