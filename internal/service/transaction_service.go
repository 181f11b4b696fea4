// Package service orchestrates ledger operations across the store and the
// message broker. Persistence is authoritative; event publishing is
// best-effort and never fails a request.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"smartsaku/internal/amqp"
	"smartsaku/internal/core"
	"smartsaku/internal/store"
)

// ErrRecordNotFound means the owner's ledger exists but the named record
// does not. A missing ledger surfaces as store.ErrLedgerNotFound instead.
var ErrRecordNotFound = errors.New("transaction not found")

// EventPublisher publishes record-change notifications. A nil publisher
// disables eventing without changing service behavior.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, msg *amqp.RecordEventMessage) error
}

// RecordPatch carries the fields of a partial update. Nil fields keep the
// stored value.
type RecordPatch struct {
	Amount      *core.Money
	Category    *string
	Description *string
	OccurredAt  *time.Time
}

// TransactionService implements the ledger operations behind the HTTP API
// and the insights worker.
type TransactionService struct {
	store      store.LedgerStore
	publisher  EventPublisher
	thresholds core.LevelThresholds
}

func NewTransactionService(ledgers store.LedgerStore, publisher EventPublisher, thresholds core.LevelThresholds) *TransactionService {
	return &TransactionService{
		store:      ledgers,
		publisher:  publisher,
		thresholds: thresholds,
	}
}

// AddRecord validates and appends a record to the owner's ledger, creating
// the ledger on first use. The stored record gets a fresh ID; a zero
// OccurredAt defaults to the current time.
func (s *TransactionService) AddRecord(ctx context.Context, ownerID string, kind core.Kind, rec core.Record) (core.Record, error) {
	if !kind.Valid() {
		return core.Record{}, core.ErrInvalidKind
	}
	rec = rec.Normalize()
	if err := rec.Validate(); err != nil {
		return core.Record{}, err
	}

	ledger, err := s.store.CreateOrGet(ctx, ownerID)
	if err != nil {
		return core.Record{}, fmt.Errorf("load ledger: %w", err)
	}

	rec.ID = uuid.NewString()
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}

	ledger.SetRecords(kind, append(ledger.Records(kind), rec))
	if err := s.store.Save(ctx, ledger); err != nil {
		return core.Record{}, fmt.Errorf("save ledger: %w", err)
	}

	s.publishEvent(ctx, ownerID, kind, rec.ID, amqp.ActionCreated)

	return rec, nil
}

// ListRecords returns the owner's records of the given kind in insertion
// order. A missing ledger is store.ErrLedgerNotFound.
func (s *TransactionService) ListRecords(ctx context.Context, ownerID string, kind core.Kind) ([]core.Record, error) {
	if !kind.Valid() {
		return nil, core.ErrInvalidKind
	}

	ledger, err := s.store.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return ledger.Records(kind), nil
}

// UpdateRecord merges the patch into the named record and validates the
// result before saving. Failed validation leaves the ledger unchanged.
func (s *TransactionService) UpdateRecord(ctx context.Context, ownerID string, kind core.Kind, recordID string, patch RecordPatch) (core.Record, error) {
	if !kind.Valid() {
		return core.Record{}, core.ErrInvalidKind
	}

	ledger, err := s.store.Get(ctx, ownerID)
	if err != nil {
		return core.Record{}, err
	}

	records := ledger.Records(kind)
	idx := -1
	for i, r := range records {
		if r.ID == recordID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.Record{}, ErrRecordNotFound
	}

	updated := records[idx]
	if patch.Amount != nil {
		updated.Amount = *patch.Amount
	}
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.OccurredAt != nil {
		updated.OccurredAt = *patch.OccurredAt
	}

	updated = updated.Normalize()
	if err := updated.Validate(); err != nil {
		return core.Record{}, err
	}

	records[idx] = updated
	ledger.SetRecords(kind, records)
	if err := s.store.Save(ctx, ledger); err != nil {
		return core.Record{}, fmt.Errorf("save ledger: %w", err)
	}

	s.publishEvent(ctx, ownerID, kind, recordID, amqp.ActionUpdated)

	return updated, nil
}

// DeleteRecord removes the named record. Deleting an absent record is
// ErrRecordNotFound, even if the ledger exists.
func (s *TransactionService) DeleteRecord(ctx context.Context, ownerID string, kind core.Kind, recordID string) error {
	if !kind.Valid() {
		return core.ErrInvalidKind
	}

	ledger, err := s.store.Get(ctx, ownerID)
	if err != nil {
		return err
	}

	records := ledger.Records(kind)
	idx := -1
	for i, r := range records {
		if r.ID == recordID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrRecordNotFound
	}

	ledger.SetRecords(kind, append(records[:idx:idx], records[idx+1:]...))
	if err := s.store.Save(ctx, ledger); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	s.publishEvent(ctx, ownerID, kind, recordID, amqp.ActionDeleted)

	return nil
}

// Summary aggregates the owner's ledger into totals, category breakdowns
// and a savings level. An owner with no ledger gets the empty summary
// rather than an error.
func (s *TransactionService) Summary(ctx context.Context, ownerID string) (core.Summary, error) {
	ledger, err := s.store.Get(ctx, ownerID)
	if errors.Is(err, store.ErrLedgerNotFound) {
		ledger = core.NewLedger(ownerID)
	} else if err != nil {
		return core.Summary{}, fmt.Errorf("load ledger: %w", err)
	}

	return core.ComputeSummary(ledger, s.thresholds), nil
}

// RecentExpenses returns the owner's daily expense totals for the trailing
// window ending today, oldest day first.
func (s *TransactionService) RecentExpenses(ctx context.Context, ownerID string, days int) ([]core.Money, error) {
	ledger, err := s.store.Get(ctx, ownerID)
	if errors.Is(err, store.ErrLedgerNotFound) {
		ledger = core.NewLedger(ownerID)
	} else if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	return core.LastDaysExpenseSeries(ledger, time.Now().UTC(), days), nil
}

func (s *TransactionService) publishEvent(ctx context.Context, ownerID string, kind core.Kind, recordID, action string) {
	if s.publisher == nil {
		return
	}

	msg := amqp.NewRecordEventMessage(ownerID, kind.String(), recordID, action)
	if err := s.publisher.PublishRecordEvent(ctx, msg); err != nil {
		// Don't fail the request - the ledger change is already saved.
		slog.ErrorContext(ctx, "Failed to publish record event",
			"owner_id", ownerID,
			"kind", kind,
			"record_id", recordID,
			"action", action,
			"error", err)
	}
}
