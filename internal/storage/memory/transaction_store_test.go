package memory

import (
	"context"
	"errors"
	"testing"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/storage"
)

func TestTransactionStore_InsertAndGetByID(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	tx := &domain.Transaction{
		ID:          "tx1",
		Operation:   domain.OpPurchase,
		Account:     "0xabc",
		TokenID:     3,
		Price:       "1.5",
		TxHash:      "0xhash",
		BlockNumber: 12,
		Status:      domain.TxConfirmed,
		CreatedAt:   1704067200000,
	}

	if err := store.Insert(ctx, tx); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByID(ctx, "tx1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if *result != *tx {
		t.Errorf("round trip mismatch: got %+v, want %+v", *result, *tx)
	}

	// Stored value must not alias the caller's struct
	tx.Price = "999"
	result, _ = store.GetByID(ctx, "tx1")
	if result.Price != "1.5" {
		t.Errorf("store aliased caller value: price = %s", result.Price)
	}
}

func TestTransactionStore_DuplicateID(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	tx := &domain.Transaction{ID: "tx1", Operation: domain.OpMintAndList, Status: domain.TxConfirmed}
	if err := store.Insert(ctx, tx); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	err := store.Insert(ctx, tx)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestTransactionStore_InvalidInput(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	cases := []*domain.Transaction{
		nil,
		{Operation: domain.OpPurchase},
		{ID: "tx1", Operation: "BURN"},
	}
	for _, tx := range cases {
		if err := store.Insert(ctx, tx); !errors.Is(err, storage.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for %+v, got %v", tx, err)
		}
	}
}

func TestTransactionStore_NotFound(t *testing.T) {
	store := NewTransactionStore()

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTransactionStore_GetByAccountOrdering(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	entries := []*domain.Transaction{
		{ID: "c", Operation: domain.OpPurchase, Account: "0xabc", CreatedAt: 300},
		{ID: "b", Operation: domain.OpPurchase, Account: "0xabc", CreatedAt: 100},
		{ID: "a", Operation: domain.OpResell, Account: "0xabc", CreatedAt: 100},
		{ID: "x", Operation: domain.OpPurchase, Account: "0xother", CreatedAt: 50},
	}
	for _, e := range entries {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByAccount(ctx, "0xabc")
	if err != nil {
		t.Fatalf("GetByAccount failed: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(result) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(result))
	}
	for i, id := range want {
		if result[i].ID != id {
			t.Errorf("entry %d: got %s, want %s", i, result[i].ID, id)
		}
	}

	empty, err := store.GetByAccount(ctx, "0xnobody")
	if err != nil {
		t.Fatalf("GetByAccount failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", empty)
	}
}
