package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"nft-marketplace/internal/storage"
)

// applicationName tags journal sessions in pg_stat_activity.
const applicationName = "nft-marketplace"

// Pool is the journal's connection pool.
type Pool struct {
	*pgxpool.Pool
}

// PoolOption adjusts the pool configuration before connecting.
type PoolOption func(*pgxpool.Config)

// WithMaxConns caps open connections. Non-positive values keep the pgx default.
func WithMaxConns(n int32) PoolOption {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// NewPool connects and pings before returning.
func NewPool(ctx context.Context, dsn string, opts ...PoolOption) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

const uniqueViolation = "23505"

// mapError turns driver errors into storage sentinels; anything else is
// wrapped with what.
func mapError(err error, what string) error {
	var pgErr *pgconn.PgError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return storage.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return storage.ErrDuplicateKey
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}

func priceOrZero(p string) string {
	if p == "" {
		return "0"
	}
	return p
}

// trimPrice strips the zero padding NUMERIC(78,18) adds on the way out.
func trimPrice(p string) string {
	if !strings.Contains(p, ".") {
		return p
	}
	p = strings.TrimRight(p, "0")
	return strings.TrimSuffix(p, ".")
}
