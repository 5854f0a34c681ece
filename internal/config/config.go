// Package config loads server and CLI settings.
//
// Sources are applied in order, later ones winning: built-in defaults, a YAML
// file, a .env file, the process environment (MARKET_* variables) and finally
// command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MARKET_"

// Wallet modes.
const (
	WalletRPC  = "rpc"  // external wallet speaking EIP-1193 JSON-RPC
	WalletKey  = "key"  // local private key
	WalletNone = "none" // browse only
)

// Config holds all settings.
type Config struct {
	RPCEndpoint     string `yaml:"rpc_endpoint"`
	WSEndpoint      string `yaml:"ws_endpoint"`
	ContractAddress string `yaml:"contract_address"`
	ChainID         int64  `yaml:"chain_id"`

	Wallet WalletConfig `yaml:"wallet"`
	IPFS   IPFSConfig   `yaml:"ipfs"`

	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
	UseMemory     bool   `yaml:"use_memory"`

	HTTPAddr string `yaml:"http_addr"`
	LogLevel string `yaml:"log_level"`

	RPCRateLimit          float64       `yaml:"rpc_rate_limit"`
	MaxResolveConcurrency int           `yaml:"max_resolve_concurrency"`
	ConfirmPollInterval   time.Duration `yaml:"confirm_poll_interval"`
}

// WalletConfig selects and configures the wallet provider.
type WalletConfig struct {
	Mode          string `yaml:"mode"`
	RPCEndpoint   string `yaml:"rpc_endpoint"`
	PrivateKey    string `yaml:"private_key"`
	AutoAuthorize bool   `yaml:"auto_authorize"`
}

// IPFSConfig locates the metadata store.
type IPFSConfig struct {
	APIURL     string `yaml:"api_url"`
	GatewayURL string `yaml:"gateway_url"`
}

// Default returns the settings of a local development chain.
func Default() Config {
	return Config{
		RPCEndpoint: "http://127.0.0.1:8545",
		ChainID:     31337,
		Wallet: WalletConfig{
			Mode: WalletNone,
		},
		IPFS: IPFSConfig{
			GatewayURL: "http://127.0.0.1:8080",
		},
		UseMemory:           true,
		HTTPAddr:            ":8088",
		LogLevel:            "INFO",
		RPCRateLimit:        0,
		ConfirmPollInterval: 2 * time.Second,
	}
}

// Options tell Load where to look.
type Options struct {
	// ConfigPath is the YAML file; empty skips it.
	ConfigPath string
	// EnvFile is the dotenv file; a missing file is ignored.
	EnvFile string
	// Environ defaults to os.Environ.
	Environ []string
	// Flags, when set, are applied last. Only flags set explicitly override.
	Flags *flag.FlagSet
}

// Load assembles a Config from every source and validates it.
func Load(opts Options) (Config, error) {
	cfg := Default()

	if opts.ConfigPath != "" {
		data, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", opts.ConfigPath, err)
		}
	}

	env := map[string]string{}
	if opts.EnvFile != "" {
		dotenv, err := godotenv.Read(opts.EnvFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", opts.EnvFile, err)
		}
		for k, v := range dotenv {
			env[k] = v
		}
	}
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}

	if opts.Flags != nil {
		if err := applyFlags(&cfg, opts.Flags); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, env map[string]string) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(env[EnvPrefix+name]); v != "" {
			*dst = v
		}
	}
	str("RPC_ENDPOINT", &cfg.RPCEndpoint)
	str("WS_ENDPOINT", &cfg.WSEndpoint)
	str("CONTRACT_ADDRESS", &cfg.ContractAddress)
	str("WALLET_MODE", &cfg.Wallet.Mode)
	str("WALLET_RPC_ENDPOINT", &cfg.Wallet.RPCEndpoint)
	str("WALLET_PRIVATE_KEY", &cfg.Wallet.PrivateKey)
	str("IPFS_API_URL", &cfg.IPFS.APIURL)
	str("IPFS_GATEWAY_URL", &cfg.IPFS.GatewayURL)
	str("POSTGRES_DSN", &cfg.PostgresDSN)
	str("CLICKHOUSE_DSN", &cfg.ClickHouseDSN)
	str("HTTP_ADDR", &cfg.HTTPAddr)
	str("LOG_LEVEL", &cfg.LogLevel)

	for name, set := range map[string]func(string) error{
		"CHAIN_ID": func(v string) (err error) {
			cfg.ChainID, err = strconv.ParseInt(v, 10, 64)
			return
		},
		"USE_MEMORY": func(v string) (err error) {
			cfg.UseMemory, err = strconv.ParseBool(v)
			return
		},
		"WALLET_AUTO_AUTHORIZE": func(v string) (err error) {
			cfg.Wallet.AutoAuthorize, err = strconv.ParseBool(v)
			return
		},
		"RPC_RATE_LIMIT": func(v string) (err error) {
			cfg.RPCRateLimit, err = strconv.ParseFloat(v, 64)
			return
		},
		"MAX_RESOLVE_CONCURRENCY": func(v string) (err error) {
			cfg.MaxResolveConcurrency, err = strconv.Atoi(v)
			return
		},
		"CONFIRM_POLL_INTERVAL": func(v string) (err error) {
			cfg.ConfirmPollInterval, err = time.ParseDuration(v)
			return
		},
	} {
		v := strings.TrimSpace(env[EnvPrefix+name])
		if v == "" {
			continue
		}
		if err := set(v); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
	}
	return nil
}

// RegisterFlags defines the command-line flags Load understands on fs.
func RegisterFlags(fs *flag.FlagSet) {
	d := Default()
	fs.String("config", "", "YAML config file")
	fs.String("env-file", ".env", "dotenv file")
	fs.String("rpc-endpoint", d.RPCEndpoint, "Ethereum JSON-RPC HTTP endpoint")
	fs.String("ws-endpoint", d.WSEndpoint, "Ethereum JSON-RPC WebSocket endpoint (newHeads)")
	fs.String("contract-address", d.ContractAddress, "Marketplace contract address")
	fs.Int64("chain-id", d.ChainID, "Chain ID the node must report before the local key signs")
	fs.String("wallet-mode", d.Wallet.Mode, "Wallet provider: rpc, key, none")
	fs.String("wallet-rpc-endpoint", d.Wallet.RPCEndpoint, "Wallet JSON-RPC endpoint (wallet-mode=rpc)")
	fs.String("ipfs-api-url", d.IPFS.APIURL, "IPFS HTTP RPC URL; empty uses the in-memory store")
	fs.String("ipfs-gateway-url", d.IPFS.GatewayURL, "IPFS gateway base URL")
	fs.String("postgres-dsn", d.PostgresDSN, "PostgreSQL connection string (transaction journal)")
	fs.String("clickhouse-dsn", d.ClickHouseDSN, "ClickHouse connection string (price observations)")
	fs.Bool("use-memory", d.UseMemory, "Use in-memory storage")
	fs.String("http-addr", d.HTTPAddr, "HTTP listen address")
	fs.String("log-level", d.LogLevel, "Log level: DEBUG, INFO, WARNING, ERROR")
	fs.Float64("rpc-rate-limit", d.RPCRateLimit, "Max RPC requests per second (0 = unlimited)")
	fs.Int("max-resolve-concurrency", d.MaxResolveConcurrency, "Max concurrent metadata fetches (0 = unlimited)")
	fs.Duration("confirm-poll-interval", d.ConfirmPollInterval, "Receipt polling interval")
}

// FlagString returns the value of a registered string flag, or "".
func FlagString(fs *flag.FlagSet, name string) string {
	if f := fs.Lookup(name); f != nil {
		return f.Value.String()
	}
	return ""
}

func applyFlags(cfg *Config, fs *flag.FlagSet) error {
	var firstErr error
	fs.Visit(func(f *flag.Flag) {
		if firstErr != nil {
			return
		}
		v := f.Value.String()
		var err error
		switch f.Name {
		case "rpc-endpoint":
			cfg.RPCEndpoint = v
		case "ws-endpoint":
			cfg.WSEndpoint = v
		case "contract-address":
			cfg.ContractAddress = v
		case "chain-id":
			cfg.ChainID, err = strconv.ParseInt(v, 10, 64)
		case "wallet-mode":
			cfg.Wallet.Mode = v
		case "wallet-rpc-endpoint":
			cfg.Wallet.RPCEndpoint = v
		case "ipfs-api-url":
			cfg.IPFS.APIURL = v
		case "ipfs-gateway-url":
			cfg.IPFS.GatewayURL = v
		case "postgres-dsn":
			cfg.PostgresDSN = v
		case "clickhouse-dsn":
			cfg.ClickHouseDSN = v
		case "use-memory":
			cfg.UseMemory, err = strconv.ParseBool(v)
		case "http-addr":
			cfg.HTTPAddr = v
		case "log-level":
			cfg.LogLevel = v
		case "rpc-rate-limit":
			cfg.RPCRateLimit, err = strconv.ParseFloat(v, 64)
		case "max-resolve-concurrency":
			cfg.MaxResolveConcurrency, err = strconv.Atoi(v)
		case "confirm-poll-interval":
			cfg.ConfirmPollInterval, err = time.ParseDuration(v)
		}
		if err != nil {
			firstErr = fmt.Errorf("flag -%s: %w", f.Name, err)
		}
	})
	return firstErr
}

// Validate checks required fields and cross-field constraints.
func (c Config) Validate() error {
	if c.RPCEndpoint == "" {
		return errors.New("rpc_endpoint is required")
	}
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("contract_address %q is not a hex address", c.ContractAddress)
	}
	switch c.Wallet.Mode {
	case WalletNone:
	case WalletRPC:
		if c.Wallet.RPCEndpoint == "" {
			return errors.New("wallet.rpc_endpoint is required for wallet mode rpc")
		}
	case WalletKey:
		if c.Wallet.PrivateKey == "" {
			return errors.New("wallet.private_key is required for wallet mode key")
		}
		if c.ChainID <= 0 {
			return errors.New("chain_id is required for wallet mode key")
		}
	default:
		return fmt.Errorf("unknown wallet mode %q", c.Wallet.Mode)
	}
	if c.IPFS.GatewayURL == "" {
		return errors.New("ipfs.gateway_url is required")
	}
	if !c.UseMemory && c.PostgresDSN == "" && c.ClickHouseDSN == "" {
		return errors.New("postgres_dsn or clickhouse_dsn is required unless use_memory is set")
	}
	if c.RPCRateLimit < 0 {
		return errors.New("rpc_rate_limit must not be negative")
	}
	if c.MaxResolveConcurrency < 0 {
		return errors.New("max_resolve_concurrency must not be negative")
	}
	if c.ConfirmPollInterval <= 0 {
		return errors.New("confirm_poll_interval must be positive")
	}
	return nil
}
