// Package app assembles the marketplace components from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	logging "github.com/op/go-logging"

	"nft-marketplace/internal/catalog"
	"nft-marketplace/internal/config"
	"nft-marketplace/internal/contract"
	"nft-marketplace/internal/ethrpc"
	"nft-marketplace/internal/marketplace"
	"nft-marketplace/internal/metadata"
	"nft-marketplace/internal/observability"
	"nft-marketplace/internal/storage"
	chstore "nft-marketplace/internal/storage/clickhouse"
	"nft-marketplace/internal/storage/memory"
	"nft-marketplace/internal/storage/migrations"
	pgstore "nft-marketplace/internal/storage/postgres"
	"nft-marketplace/internal/wallet"
)

var log = logging.MustGetLogger("app")

// ErrNoMetadataStore is returned by Build when persistent metadata storage
// is required but no IPFS API is configured.
var ErrNoMetadataStore = errors.New("no IPFS API configured; metadata would not outlive this process")

// App holds the wired components.
type App struct {
	Config    config.Config
	Metrics   *observability.Metrics
	Session   *wallet.Session
	Connector *wallet.Connector
	Contract  *contract.Marketplace
	Service   *marketplace.Service
	Metadata  *metadata.Client

	// Gateway is non-nil when metadata lives in memory and must be served
	// by this process under /ipfs/.
	Gateway http.Handler

	confirmer *contract.Confirmer
	closers   []func()
}

// BuildOption adjusts Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	requireIPFS bool
}

// RequireIPFS makes Build fail instead of falling back to in-memory
// metadata. Processes that do not serve /ipfs/ themselves need it.
func RequireIPFS() BuildOption {
	return func(o *buildOptions) {
		o.requireIPFS = true
	}
}

// Stores groups the optional persistence.
type Stores struct {
	Journal      storage.TransactionStore
	Observations storage.PriceObservationStore
}

// Build dials the node, wires every component and restores an existing
// wallet connection without prompting.
func Build(ctx context.Context, cfg config.Config, advisor wallet.Advisor, opts ...BuildOption) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}
	if bo.requireIPFS && cfg.IPFS.APIURL == "" {
		return nil, ErrNoMetadataStore
	}

	a := &App{
		Config:  cfg,
		Metrics: observability.NewMetrics(""),
		Session: wallet.NewSession(),
	}

	node, err := ethclient.DialContext(ctx, cfg.RPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.RPCEndpoint, err)
	}
	a.closers = append(a.closers, node.Close)

	provider, err := newProvider(cfg, node, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	connOpts := []wallet.ConnectorOption{wallet.WithMetrics(a.Metrics)}
	if advisor != nil {
		connOpts = append(connOpts, wallet.WithAdvisor(advisor))
	}
	a.Connector = wallet.NewConnector(provider, a.Session, connOpts...)

	a.confirmer = contract.NewConfirmer(node, cfg.ConfirmPollInterval, a.Metrics)
	a.Contract = contract.NewMarketplace(
		common.HexToAddress(cfg.ContractAddress),
		node,
		contract.WithConfirmer(a.confirmer),
		contract.WithMetrics(a.Metrics),
	)

	var backend metadata.Backend
	gatewayURL := cfg.IPFS.GatewayURL
	if cfg.IPFS.APIURL != "" {
		backend = metadata.NewIPFSBackend(cfg.IPFS.APIURL, &http.Client{Timeout: 60 * time.Second})
	} else {
		mem := metadata.NewMemoryBackend()
		backend = mem
		a.Gateway = mem
		gatewayURL = LocalGatewayURL(cfg.HTTPAddr)
		log.Warningf("no IPFS API configured, metadata is kept in memory and served from %s", gatewayURL)
	}
	docs := metadata.NewClient(backend, gatewayURL, metadata.WithMetrics(a.Metrics))
	a.Metadata = docs

	var aggOpts []catalog.Option
	if cfg.MaxResolveConcurrency > 0 {
		aggOpts = append(aggOpts, catalog.WithMaxConcurrency(cfg.MaxResolveConcurrency))
	}
	aggOpts = append(aggOpts, catalog.WithMetrics(a.Metrics))
	agg := catalog.NewAggregator(a.Contract, docs, aggOpts...)

	stores, closeStores, err := CreateStores(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, closeStores)

	a.Service = marketplace.New(marketplace.Options{
		Session:      a.Session,
		Wallet:       a.Connector,
		Contract:     marketplace.ContractBinder(a.Contract),
		Metadata:     docs,
		Catalog:      agg,
		Journal:      stores.Journal,
		Observations: stores.Observations,
		Metrics:      a.Metrics,
	})
	a.closers = append(a.closers, a.Service.Close)

	if err := a.Connector.CheckExistingConnection(ctx); err != nil {
		log.Warningf("check existing connection: %v", err)
	}
	return a, nil
}

// FollowHeads subscribes to new block headers and wakes pending receipt
// waits on each one. It returns when ctx is done.
func (a *App) FollowHeads(ctx context.Context) error {
	if a.Config.WSEndpoint == "" {
		return nil
	}

	wsCfg := ethrpc.DefaultWSConfig()
	ws, err := ethrpc.NewWSClient(ctx, a.Config.WSEndpoint, &wsCfg)
	if err != nil {
		return fmt.Errorf("connect %s: %w", a.Config.WSEndpoint, err)
	}
	defer ws.Close()

	heads, err := ws.SubscribeNewHeads(ctx)
	if err != nil {
		return fmt.Errorf("subscribe newHeads: %w", err)
	}
	log.Infof("following new heads on %s", a.Config.WSEndpoint)
	a.confirmer.Follow(ctx, heads)
	return nil
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// LocalGatewayURL is the base URL under which this process serves /ipfs/
// when listening on addr. Wildcard hosts map to the loopback address.
func LocalGatewayURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func newProvider(cfg config.Config, node *ethclient.Client, metrics *observability.Metrics) (wallet.Provider, error) {
	switch cfg.Wallet.Mode {
	case config.WalletRPC:
		opts := []ethrpc.ClientOption{ethrpc.WithMetrics(metrics)}
		if cfg.RPCRateLimit > 0 {
			opts = append(opts, ethrpc.WithRateLimit(cfg.RPCRateLimit, int(cfg.RPCRateLimit)+1))
		}
		return wallet.NewRPCProvider(ethrpc.NewHTTPClient(cfg.Wallet.RPCEndpoint, opts...)), nil
	case config.WalletKey:
		opts := []wallet.KeyOption{wallet.WithChainID(cfg.ChainID)}
		if cfg.Wallet.AutoAuthorize {
			opts = append(opts, wallet.WithAutoAuthorize())
		}
		p, err := wallet.NewKeyProvider(cfg.Wallet.PrivateKey, node, opts...)
		if err != nil {
			return nil, fmt.Errorf("load wallet key: %w", err)
		}
		return p, nil
	default:
		return nil, nil
	}
}

// CreateStores opens the journal and observation stores selected by cfg.
// A store whose DSN is empty is disabled.
func CreateStores(ctx context.Context, cfg config.Config) (Stores, func(), error) {
	if cfg.UseMemory {
		return Stores{
			Journal:      memory.NewTransactionStore(),
			Observations: memory.NewPriceObservationStore(),
		}, func() {}, nil
	}

	var (
		stores  Stores
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return Stores{}, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return Stores{}, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.Journal = pgstore.NewTransactionStore(pool)
	}

	if cfg.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			cleanup()
			return Stores{}, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		stores.Observations = chstore.NewPriceObservationStore(conn)
	}

	return stores, cleanup, nil
}
