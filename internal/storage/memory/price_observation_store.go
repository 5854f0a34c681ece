package memory

import (
	"context"
	"sort"
	"sync"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/storage"
)

// PriceObservationStore is an in-memory implementation of storage.PriceObservationStore.
type PriceObservationStore struct {
	mu      sync.RWMutex
	ids     map[string]struct{}
	byToken map[int64][]*domain.PriceObservation
}

// NewPriceObservationStore creates a new in-memory price observation store.
func NewPriceObservationStore() *PriceObservationStore {
	return &PriceObservationStore{
		ids:     make(map[string]struct{}),
		byToken: make(map[int64][]*domain.PriceObservation),
	}
}

// Compile-time interface check.
var _ storage.PriceObservationStore = (*PriceObservationStore)(nil)

// InsertBulk adds multiple observations. Fails entire batch on any duplicate.
func (s *PriceObservationStore) InsertBulk(_ context.Context, observations []*domain.PriceObservation) error {
	if len(observations) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before writing anything
	seen := make(map[string]struct{}, len(observations))
	for _, o := range observations {
		if o == nil || o.ObservationID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.ids[o.ObservationID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := seen[o.ObservationID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[o.ObservationID] = struct{}{}
	}

	for _, o := range observations {
		obsCopy := *o
		s.ids[o.ObservationID] = struct{}{}
		s.byToken[o.TokenID] = append(s.byToken[o.TokenID], &obsCopy)
	}
	return nil
}

// GetByTokenID retrieves all observations of a token, ordered by observed_at ASC.
func (s *PriceObservationStore) GetByTokenID(_ context.Context, tokenID int64) ([]*domain.PriceObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.byToken[tokenID]
	result := make([]*domain.PriceObservation, 0, len(entries))
	for _, o := range entries {
		obsCopy := *o
		result = append(result, &obsCopy)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].ObservedAt < result[j].ObservedAt
	})

	return result, nil
}
