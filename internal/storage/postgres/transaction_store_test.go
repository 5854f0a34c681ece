package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/storage"
)

func TestTransactionStore_InsertAndGetByID(t *testing.T) {
	pool := setupTestDB(t)

	store := NewTransactionStore(pool)
	ctx := context.Background()

	tx := &domain.Transaction{
		ID:              uuid.NewString(),
		Operation:       domain.OpMintAndList,
		Account:         "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		TokenID:         7,
		Price:           "1.5",
		MetadataLocator: "https://gw/ipfs/bafy",
		TxHash:          "0xabc",
		BlockNumber:     42,
		Status:          domain.TxConfirmed,
		CreatedAt:       1704067200000,
	}

	require.NoError(t, store.Insert(ctx, tx))

	got, err := store.GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, *tx, *got)
}

func TestTransactionStore_DuplicateID(t *testing.T) {
	pool := setupTestDB(t)

	store := NewTransactionStore(pool)
	ctx := context.Background()

	tx := &domain.Transaction{
		ID:        uuid.NewString(),
		Operation: domain.OpPurchase,
		Account:   "0xabc",
		Price:     "2",
		Status:    domain.TxFailed,
		Error:     "execution reverted",
		CreatedAt: 1704067200000,
	}
	require.NoError(t, store.Insert(ctx, tx))

	err := store.Insert(ctx, tx)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTransactionStore_GetByIDNotFound(t *testing.T) {
	pool := setupTestDB(t)

	_, err := NewTransactionStore(pool).GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTransactionStore_GetByAccount(t *testing.T) {
	pool := setupTestDB(t)

	store := NewTransactionStore(pool)
	ctx := context.Background()

	times := []int64{3000, 1000, 2000}
	for _, ts := range times {
		require.NoError(t, store.Insert(ctx, &domain.Transaction{
			ID:        uuid.NewString(),
			Operation: domain.OpPurchase,
			Account:   "0xabc",
			TokenID:   ts / 1000,
			Price:     "0.000000000000000001",
			Status:    domain.TxConfirmed,
			CreatedAt: ts,
		}))
	}
	require.NoError(t, store.Insert(ctx, &domain.Transaction{
		ID:        uuid.NewString(),
		Operation: domain.OpResell,
		Account:   "0xother",
		Price:     "1",
		Status:    domain.TxConfirmed,
		CreatedAt: 500,
	}))

	got, err := store.GetByAccount(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(1000), got[0].CreatedAt)
	assert.Equal(t, int64(2000), got[1].CreatedAt)
	assert.Equal(t, int64(3000), got[2].CreatedAt)
	assert.Equal(t, "0.000000000000000001", got[0].Price)

	none, err := store.GetByAccount(ctx, "0xnobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTrimPrice(t *testing.T) {
	cases := map[string]string{
		"1.500000000000000000": "1.5",
		"2.000000000000000000": "2",
		"0.000000000000000001": "0.000000000000000001",
		"10":                   "10",
	}
	for in, want := range cases {
		assert.Equal(t, want, trimPrice(in), in)
	}
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil, "x"))
	assert.ErrorIs(t, mapError(fmt.Errorf("scan: %w", pgx.ErrNoRows), "get"), storage.ErrNotFound)
	assert.ErrorIs(t, mapError(&pgconn.PgError{Code: "23505"}, "insert"), storage.ErrDuplicateKey)

	boom := errors.New("connection reset")
	err := mapError(boom, "insert transaction")
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "insert transaction: connection reset")
}
