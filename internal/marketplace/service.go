// Package marketplace is the single entry point presentation layers use.
// It coordinates the wallet session, metadata store, contract gateway and
// catalog aggregator.
package marketplace

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	logging "github.com/op/go-logging"

	"nft-marketplace/internal/contract"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/observability"
	"nft-marketplace/internal/storage"
)

var log = logging.MustGetLogger("marketplace")

// ErrInvalidKind is returned by BrowseMine for an unknown listing kind.
var ErrInvalidKind = errors.New("invalid listing kind")

// Session exposes the current wallet account.
type Session interface {
	Account() domain.Account
	State() domain.ConnectionState
	Subscribe(fn func(domain.Account)) (unsubscribe func())
}

// Wallet connects the user and hands out signers.
type Wallet interface {
	RequestConnection(ctx context.Context) error
	Signer() (contract.Signer, error)
}

// Gateway is the contract surface the facade drives.
type Gateway interface {
	GetListingFee(ctx context.Context) (*big.Int, error)
	CreateListing(ctx context.Context, locator, price string) (*contract.Receipt, error)
	CreateSale(ctx context.Context, tokenID int64, price string) (*contract.Receipt, error)
	ResellToken(ctx context.Context, tokenID int64, price string) (*contract.Receipt, error)
	QueryAllListings(ctx context.Context) ([]contract.Record, error)
	QueryOwnedListings(ctx context.Context) ([]contract.Record, error)
	QueryOwnedTokens(ctx context.Context) ([]contract.Record, error)
}

// Binder is a read-only Gateway that can produce signing handles.
type Binder interface {
	Gateway
	Bind(signer contract.Signer) Gateway
}

// Uploader stores metadata documents.
type Uploader interface {
	Upload(ctx context.Context, doc domain.MetadataDocument) (string, error)
}

// Resolver turns on-chain records into market items.
type Resolver interface {
	Resolve(ctx context.Context, records []contract.Record) ([]domain.MarketItem, error)
}

// Service implements the user-level marketplace operations.
type Service struct {
	session  Session
	wallet   Wallet
	contract Binder
	uploader Uploader
	resolver Resolver

	journal      storage.TransactionStore
	observations storage.PriceObservationStore
	metrics      *observability.Metrics
	now          func() time.Time

	mu          sync.Mutex
	signing     Gateway // cached until the account changes
	unsubscribe func()
}

// Options for creating Service.
type Options struct {
	// Required collaborators
	Session  Session
	Wallet   Wallet
	Contract Binder
	Metadata Uploader
	Catalog  Resolver

	// Optional persistence; nil disables it
	Journal      storage.TransactionStore
	Observations storage.PriceObservationStore

	Metrics *observability.Metrics
	Now     func() time.Time
}

// New creates a Service and subscribes it to account changes.
func New(opts Options) *Service {
	s := &Service{
		session:      opts.Session,
		wallet:       opts.Wallet,
		contract:     opts.Contract,
		uploader:     opts.Metadata,
		resolver:     opts.Catalog,
		journal:      opts.Journal,
		observations: opts.Observations,
		metrics:      opts.Metrics,
		now:          opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.unsubscribe = s.session.Subscribe(func(account domain.Account) {
		s.invalidate()
		log.Infof("account changed to %q, signing handle dropped", account)
	})
	return s
}

// Close detaches the service from the session.
func (s *Service) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Account returns the connected account; empty when disconnected.
func (s *Service) Account() domain.Account {
	return s.session.Account()
}

// State returns the wallet connection state.
func (s *Service) State() domain.ConnectionState {
	return s.session.State()
}

// Currency returns the display symbol of the native currency.
func (s *Service) Currency() string {
	return domain.Currency
}

// Connect prompts the wallet for an account.
func (s *Service) Connect(ctx context.Context) (err error) {
	defer s.track("connect", time.Now(), &err)
	return s.wallet.RequestConnection(ctx)
}

func (s *Service) invalidate() {
	s.mu.Lock()
	s.signing = nil
	s.mu.Unlock()
}

// signer returns the cached signing handle, binding a new one if needed.
func (s *Service) signer() (Gateway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.signing != nil {
		return s.signing, nil
	}
	if s.session.State() != domain.StateConnected {
		return nil, domain.ErrNotConnected
	}

	signer, err := s.wallet.Signer()
	if err != nil {
		return nil, err
	}
	s.signing = s.contract.Bind(signer)
	return s.signing, nil
}

func (s *Service) track(operation string, start time.Time, err *error) {
	s.metrics.RecordOperation(operation, time.Since(start).Seconds(), *err)
}

// ContractBinder adapts a contract handle to Binder.
func ContractBinder(m *contract.Marketplace) Binder {
	return marketplaceBinder{m}
}

type marketplaceBinder struct {
	*contract.Marketplace
}

func (b marketplaceBinder) Bind(signer contract.Signer) Gateway {
	return b.Marketplace.WithSigner(signer)
}
