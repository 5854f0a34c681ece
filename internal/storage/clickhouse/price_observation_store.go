package clickhouse

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/storage"
)

// PriceObservationStore implements storage.PriceObservationStore using ClickHouse.
type PriceObservationStore struct {
	conn *Conn
}

// NewPriceObservationStore creates a new PriceObservationStore.
func NewPriceObservationStore(conn *Conn) *PriceObservationStore {
	return &PriceObservationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceObservationStore = (*PriceObservationStore)(nil)

// InsertBulk adds multiple observations. Fails entire batch on duplicate observation_id.
func (s *PriceObservationStore) InsertBulk(ctx context.Context, observations []*domain.PriceObservation) error {
	if len(observations) == 0 {
		return nil
	}

	// Check for intra-batch duplicates and parse prices up front
	prices := make([]decimal.Decimal, len(observations))
	seen := make(map[string]struct{}, len(observations))
	ids := make([]string, 0, len(observations))
	for i, o := range observations {
		if o == nil || o.ObservationID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[o.ObservationID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[o.ObservationID] = struct{}{}
		ids = append(ids, o.ObservationID)

		price, err := decimal.NewFromString(o.Price)
		if err != nil {
			return fmt.Errorf("%w: price %q: %v", storage.ErrInvalidInput, o.Price, err)
		}
		prices[i] = price
	}

	// MergeTree does not enforce uniqueness; check existing rows explicitly
	exists, err := s.anyExists(ctx, ids)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_observations (
			observation_id, token_id, seller, price, observed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for i, o := range observations {
		err = batch.Append(
			o.ObservationID, o.TokenID, o.Seller, prices[i], uint64(o.ObservedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTokenID retrieves all observations of a token, ordered by observed_at ASC.
func (s *PriceObservationStore) GetByTokenID(ctx context.Context, tokenID int64) ([]*domain.PriceObservation, error) {
	query := `
		SELECT observation_id, token_id, seller, price, observed_at
		FROM price_observations
		WHERE token_id = ?
		ORDER BY observed_at ASC, observation_id ASC
	`

	rows, err := s.conn.Query(ctx, query, tokenID)
	if err != nil {
		return nil, fmt.Errorf("query by token id: %w", err)
	}
	defer rows.Close()

	return scanPriceObservations(rows)
}

func (s *PriceObservationStore) anyExists(ctx context.Context, ids []string) (bool, error) {
	query := `
		SELECT count(*) FROM price_observations
		WHERE observation_id IN ?
	`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, ids).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanPriceObservations(rows chRows) ([]*domain.PriceObservation, error) {
	observations := make([]*domain.PriceObservation, 0)

	for rows.Next() {
		var (
			o          domain.PriceObservation
			price      decimal.Decimal
			observedAt uint64
		)

		if err := rows.Scan(&o.ObservationID, &o.TokenID, &o.Seller, &price, &observedAt); err != nil {
			return nil, fmt.Errorf("scan price observation row: %w", err)
		}

		o.Price = price.String()
		o.ObservedAt = int64(observedAt)
		observations = append(observations, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price observation rows: %w", err)
	}

	return observations, nil
}
