package memory

import (
	"context"
	"errors"
	"testing"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/storage"
)

func TestPriceObservationStore_InsertBulkAndGet(t *testing.T) {
	store := NewPriceObservationStore()
	ctx := context.Background()

	obs := []*domain.PriceObservation{
		{ObservationID: "o2", TokenID: 1, Seller: "0xabc", Price: "1.6", ObservedAt: 2000},
		{ObservationID: "o1", TokenID: 1, Seller: "0xabc", Price: "1.5", ObservedAt: 1000},
		{ObservationID: "o3", TokenID: 2, Seller: "0xdef", Price: "0.1", ObservedAt: 1500},
	}

	if err := store.InsertBulk(ctx, obs); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByTokenID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByTokenID failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(result))
	}
	if result[0].ObservationID != "o1" || result[1].ObservationID != "o2" {
		t.Errorf("expected observed_at ordering, got %s, %s", result[0].ObservationID, result[1].ObservationID)
	}
}

func TestPriceObservationStore_DuplicateFailsBatch(t *testing.T) {
	store := NewPriceObservationStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.PriceObservation{
		{ObservationID: "o1", TokenID: 1, ObservedAt: 1000},
	}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.PriceObservation{
		{ObservationID: "o2", TokenID: 1, ObservedAt: 2000},
		{ObservationID: "o1", TokenID: 1, ObservedAt: 1000},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	result, _ := store.GetByTokenID(ctx, 1)
	if len(result) != 1 {
		t.Errorf("failed batch must not be partially applied, have %d rows", len(result))
	}
}

func TestPriceObservationStore_IntraBatchDuplicate(t *testing.T) {
	store := NewPriceObservationStore()

	err := store.InsertBulk(context.Background(), []*domain.PriceObservation{
		{ObservationID: "o1", TokenID: 1},
		{ObservationID: "o1", TokenID: 1},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestPriceObservationStore_EmptyBatch(t *testing.T) {
	store := NewPriceObservationStore()

	if err := store.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}
