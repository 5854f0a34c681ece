package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"nft-marketplace/internal/contract"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/observability"
)

// User-facing advisories.
const (
	AdviceInstallWallet = "Please install a wallet to use the marketplace."
	AdviceDeclined      = "Wallet connection was declined."
)

// Advisor delivers advisory text to the user.
type Advisor func(message string)

// Connector establishes the wallet session.
type Connector struct {
	provider Provider
	session  *Session
	advise   Advisor
	metrics  *observability.Metrics
}

// ConnectorOption configures Connector.
type ConnectorOption func(*Connector)

// WithAdvisor sets where advisories go. The default logs them.
func WithAdvisor(a Advisor) ConnectorOption {
	return func(c *Connector) {
		c.advise = a
	}
}

// WithMetrics records connection outcomes.
func WithMetrics(m *observability.Metrics) ConnectorOption {
	return func(c *Connector) {
		c.metrics = m
	}
}

// NewConnector creates a Connector. provider may be nil when no wallet is
// available.
func NewConnector(provider Provider, session *Session, opts ...ConnectorOption) *Connector {
	c := &Connector{
		provider: provider,
		session:  session,
		advise: func(message string) {
			log.Warning(message)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the connector writes to.
func (c *Connector) Session() *Session {
	return c.session
}

// CheckExistingConnection adopts an already authorized account without
// prompting the user.
func (c *Connector) CheckExistingConnection(ctx context.Context) error {
	if c.provider == nil {
		c.advise(AdviceInstallWallet)
		c.metrics.RecordConnection("missing_wallet")
		return nil
	}

	accounts, err := c.provider.Accounts(ctx)
	if err != nil {
		c.metrics.RecordConnection("error")
		return fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) == 0 {
		log.Info("no accounts found")
		c.metrics.RecordConnection("none")
		return nil
	}

	c.session.Init(domain.Account(accounts[0]))
	c.metrics.RecordConnection("restored")
	log.Infof("restored wallet session for %s", accounts[0])
	return nil
}

// RequestConnection prompts the user to authorize an account. A missing
// wallet or a declined prompt produce an advisory, not an error.
func (c *Connector) RequestConnection(ctx context.Context) error {
	if c.provider == nil {
		c.advise(AdviceInstallWallet)
		c.metrics.RecordConnection("missing_wallet")
		return nil
	}

	prev := c.session.beginConnect()

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		c.session.abortConnect(prev)
		if errors.Is(err, domain.ErrUserDeclined) {
			c.advise(AdviceDeclined)
			c.metrics.RecordConnection("declined")
			return nil
		}
		c.metrics.RecordConnection("error")
		return fmt.Errorf("request accounts: %w", err)
	}
	if len(accounts) == 0 {
		c.session.abortConnect(prev)
		c.metrics.RecordConnection("none")
		log.Info("no accounts found")
		return nil
	}

	c.session.Update(domain.Account(accounts[0]))
	c.metrics.RecordConnection("connected")
	log.Infof("wallet connected: %s", accounts[0])
	return nil
}

// Signer returns a signer for the current account.
func (c *Connector) Signer() (contract.Signer, error) {
	account := c.session.Account()
	if account.IsEmpty() || c.provider == nil {
		return nil, domain.ErrNotConnected
	}
	if !common.IsHexAddress(account.String()) {
		return nil, fmt.Errorf("account %q is not an address", account)
	}
	return &accountSigner{
		provider: c.provider,
		address:  common.HexToAddress(account.String()),
	}, nil
}

// accountSigner sends through the provider as one fixed account.
type accountSigner struct {
	provider Provider
	address  common.Address
}

func (s *accountSigner) Address() common.Address {
	return s.address
}

func (s *accountSigner) SendTransaction(ctx context.Context, msg ethereum.CallMsg) (common.Hash, error) {
	msg.From = s.address
	return s.provider.SendTransaction(ctx, msg)
}
