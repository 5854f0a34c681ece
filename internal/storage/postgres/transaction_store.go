package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert appends an entry. Returns ErrDuplicateKey if id exists.
func (s *TransactionStore) Insert(ctx context.Context, t *domain.Transaction) error {
	if t == nil || t.ID == "" || !t.Operation.IsValid() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO transactions (
			id, operation, account, token_id, price, metadata_locator,
			tx_hash, block_number, status, error, created_at
		) VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID,
		string(t.Operation),
		t.Account,
		t.TokenID,
		priceOrZero(t.Price),
		t.MetadataLocator,
		t.TxHash,
		int64(t.BlockNumber),
		string(t.Status),
		t.Error,
		t.CreatedAt,
	)
	return mapError(err, "insert transaction")
}

// GetByID retrieves an entry by id. Returns ErrNotFound if not exists.
func (s *TransactionStore) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `
		SELECT id::text, operation, account, token_id, price::text, metadata_locator,
			tx_hash, block_number, status, error, created_at
		FROM transactions
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	t, err := scanTransaction(row)
	if err != nil {
		return nil, mapError(err, "get transaction by id")
	}
	return t, nil
}

// GetByAccount retrieves all entries of an account, ordered by created_at ASC, id ASC.
func (s *TransactionStore) GetByAccount(ctx context.Context, account string) ([]*domain.Transaction, error) {
	query := `
		SELECT id::text, operation, account, token_id, price::text, metadata_locator,
			tx_hash, block_number, status, error, created_at
		FROM transactions
		WHERE account = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, account)
	if err != nil {
		return nil, fmt.Errorf("query transactions by account: %w", err)
	}
	defer rows.Close()

	result := make([]*domain.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return result, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t           domain.Transaction
		operation   string
		status      string
		blockNumber int64
	)
	err := row.Scan(
		&t.ID,
		&operation,
		&t.Account,
		&t.TokenID,
		&t.Price,
		&t.MetadataLocator,
		&t.TxHash,
		&blockNumber,
		&status,
		&t.Error,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Operation = domain.TxOperation(operation)
	t.Status = domain.TxStatus(status)
	t.BlockNumber = uint64(blockNumber)
	t.Price = trimPrice(t.Price)
	return &t, nil
}
