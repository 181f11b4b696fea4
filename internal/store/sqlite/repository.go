// Package sqlite persists ledgers in SQLite, one JSON document per owner.
// The document is the unit of persistence: Save upserts the whole row, so a
// ledger write either fully succeeds or leaves the previous document intact.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"smartsaku/internal/core"
	"smartsaku/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get implements store.LedgerStore.
func (r *Repository) Get(ctx context.Context, ownerID string) (core.Ledger, error) {
	var doc []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM ledgers WHERE owner_id = ?`, ownerID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Ledger{}, store.ErrLedgerNotFound
	}
	if err != nil {
		return core.Ledger{}, fmt.Errorf("query ledger: %w", err)
	}

	ledger, err := decodeLedger(ownerID, doc)
	if err != nil {
		return core.Ledger{}, fmt.Errorf("decode ledger document: %w", err)
	}
	return ledger, nil
}

// CreateOrGet implements store.LedgerStore.
func (r *Repository) CreateOrGet(ctx context.Context, ownerID string) (core.Ledger, error) {
	if ownerID == "" {
		return core.Ledger{}, core.ErrEmptyOwner
	}

	ledger, err := r.Get(ctx, ownerID)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, store.ErrLedgerNotFound) {
		return core.Ledger{}, err
	}

	ledger = core.NewLedger(ownerID)
	if err := r.Save(ctx, ledger); err != nil {
		return core.Ledger{}, err
	}

	slog.InfoContext(ctx, "Ledger created", "owner_id", ownerID)
	return ledger, nil
}

// Save implements store.LedgerStore.
func (r *Repository) Save(ctx context.Context, ledger core.Ledger) error {
	if ledger.OwnerID == "" {
		return core.ErrEmptyOwner
	}

	doc, err := encodeLedger(ledger)
	if err != nil {
		return fmt.Errorf("encode ledger document: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ledgers (owner_id, document, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (owner_id) DO UPDATE SET
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP`,
		ledger.OwnerID, doc)
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	slog.DebugContext(ctx, "Ledger saved",
		"owner_id", ledger.OwnerID,
		"incomes", len(ledger.Incomes),
		"expenses", len(ledger.Expenses))
	return nil
}
