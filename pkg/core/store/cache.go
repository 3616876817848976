// Package store holds generated financial models for the lifetime of the
// process and, optionally, appends a record of every run to Postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"strategic_finance/pkg/models"
)

// ErrModelNotFound is returned by Get for an unknown identifier.
var ErrModelNotFound = errors.New("model not found")

// Store maps model identifiers to models. There is no eviction and no TTL.
// Models returned by Get are shared and must be treated as read-only.
type Store interface {
	Put(ctx context.Context, model *models.FinancialModel) error
	Get(ctx context.Context, id string) (*models.FinancialModel, error)
	Len(ctx context.Context) (int, error)
	Close() error
}

// MemoryStore is the default Store: a map guarded by an RWMutex.
type MemoryStore struct {
	mu     sync.RWMutex
	models map[string]*models.FinancialModel
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-process cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		models: make(map[string]*models.FinancialModel),
	}
}

// Put inserts or replaces the model under its ModelID.
func (s *MemoryStore) Put(_ context.Context, model *models.FinancialModel) error {
	if model == nil || model.ModelID == "" {
		return fmt.Errorf("model ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[model.ModelID] = model
	return nil
}

// Get retrieves a model by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*models.FinancialModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.models[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	return m, nil
}

// Len reports how many models are cached.
func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.models), nil
}

// Close drops every cached model.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = make(map[string]*models.FinancialModel)
	return nil
}
