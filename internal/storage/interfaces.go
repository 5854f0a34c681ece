package storage

import (
	"context"

	"nft-marketplace/internal/domain"
)

// TransactionStore provides access to the transaction journal.
type TransactionStore interface {
	// Insert appends an entry. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, t *domain.Transaction) error

	// GetByID retrieves an entry by id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)

	// GetByAccount retrieves all entries of an account, ordered by created_at ASC, id ASC.
	GetByAccount(ctx context.Context, account string) ([]*domain.Transaction, error)
}

// PriceObservationStore provides access to price_observations storage.
type PriceObservationStore interface {
	// InsertBulk adds multiple observations. Fails entire batch on any duplicate observation_id.
	InsertBulk(ctx context.Context, observations []*domain.PriceObservation) error

	// GetByTokenID retrieves all observations of a token, ordered by observed_at ASC.
	GetByTokenID(ctx context.Context, tokenID int64) ([]*domain.PriceObservation, error)
}
