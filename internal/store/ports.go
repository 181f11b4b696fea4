// Package store defines the ledger persistence port implemented by the
// memory and sqlite backends.
package store

import (
	"context"
	"errors"

	"smartsaku/internal/core"
)

// ErrLedgerNotFound reports that an owner has no ledger document yet.
var ErrLedgerNotFound = errors.New("ledger not found")

// LedgerStore is keyed storage of one Ledger per owner. The whole document
// is the unit of persistence: Save replaces the stored ledger, and after a
// successful Save a Get for the same owner observes the write. No
// cross-document transactionality is provided; concurrent writers to the
// same owner race with last-writer-wins semantics.
type LedgerStore interface {
	// Get returns the ledger for ownerID, or ErrLedgerNotFound.
	Get(ctx context.Context, ownerID string) (core.Ledger, error)

	// CreateOrGet returns the existing ledger for ownerID, creating and
	// persisting an empty one if absent. Idempotent.
	CreateOrGet(ctx context.Context, ownerID string) (core.Ledger, error)

	// Save persists the full ledger document.
	Save(ctx context.Context, ledger core.Ledger) error
}
