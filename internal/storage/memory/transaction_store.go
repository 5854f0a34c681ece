package memory

import (
	"context"
	"sort"
	"sync"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu        sync.RWMutex
	byID      map[string]*domain.Transaction
	byAccount map[string][]*domain.Transaction
}

// NewTransactionStore creates a new in-memory transaction journal.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		byID:      make(map[string]*domain.Transaction),
		byAccount: make(map[string][]*domain.Transaction),
	}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert appends an entry. Returns ErrDuplicateKey if id exists.
func (s *TransactionStore) Insert(_ context.Context, t *domain.Transaction) error {
	if t == nil || t.ID == "" || !t.Operation.IsValid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[t.ID]; exists {
		return storage.ErrDuplicateKey
	}

	txCopy := *t
	s.byID[t.ID] = &txCopy
	s.byAccount[t.Account] = append(s.byAccount[t.Account], &txCopy)
	return nil
}

// GetByID retrieves an entry by id. Returns ErrNotFound if not exists.
func (s *TransactionStore) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.byID[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	txCopy := *t
	return &txCopy, nil
}

// GetByAccount retrieves all entries of an account, ordered by created_at ASC, id ASC.
func (s *TransactionStore) GetByAccount(_ context.Context, account string) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.byAccount[account]
	result := make([]*domain.Transaction, 0, len(entries))
	for _, t := range entries {
		txCopy := *t
		result = append(result, &txCopy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}
