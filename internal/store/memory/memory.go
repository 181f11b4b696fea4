// Package memory provides an in-process LedgerStore used as the default
// backend and as the test double for the service and HTTP layers.
package memory

import (
	"context"
	"sync"

	"smartsaku/internal/core"
	"smartsaku/internal/store"
)

type Store struct {
	mu      sync.Mutex
	ledgers map[string]core.Ledger
}

func New() *Store {
	return &Store{ledgers: make(map[string]core.Ledger)}
}

// Get returns a copy of the stored ledger so callers cannot mutate shared
// state.
func (s *Store) Get(_ context.Context, ownerID string) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ledger, ok := s.ledgers[ownerID]
	if !ok {
		return core.Ledger{}, store.ErrLedgerNotFound
	}
	return ledger.Clone(), nil
}

func (s *Store) CreateOrGet(_ context.Context, ownerID string) (core.Ledger, error) {
	if ownerID == "" {
		return core.Ledger{}, core.ErrEmptyOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if ledger, ok := s.ledgers[ownerID]; ok {
		return ledger.Clone(), nil
	}
	ledger := core.NewLedger(ownerID)
	s.ledgers[ownerID] = ledger.Clone()
	return ledger, nil
}

func (s *Store) Save(_ context.Context, ledger core.Ledger) error {
	if ledger.OwnerID == "" {
		return core.ErrEmptyOwner
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledgers[ledger.OwnerID] = ledger.Clone()
	return nil
}
