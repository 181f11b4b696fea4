package memory

import (
	"context"
	"errors"
	"testing"

	"smartsaku/internal/core"
	"smartsaku/internal/store"
)

func TestGetMissingLedger(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), "u1")
	if !errors.Is(err, store.ErrLedgerNotFound) {
		t.Fatalf("expected ErrLedgerNotFound, got %v", err)
	}
}

func TestCreateOrGetIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.CreateOrGet(ctx, "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first.Expenses = append(first.Expenses, core.Record{ID: "e1", Amount: core.Money{Cents: 100}, Category: "food"})
	if err := s.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second CreateOrGet must return the existing ledger, not a fresh one.
	second, err := s.CreateOrGet(ctx, "u1")
	if err != nil {
		t.Fatalf("create again: %v", err)
	}
	if len(second.Expenses) != 1 {
		t.Fatalf("second CreateOrGet lost records: %+v", second)
	}
}

func TestReadAfterWrite(t *testing.T) {
	s := New()
	ctx := context.Background()

	ledger := core.NewLedger("u1")
	ledger.Incomes = []core.Record{{ID: "i1", Amount: core.Money{Cents: 500}, Category: "salary"}}
	if err := s.Save(ctx, ledger); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Incomes) != 1 || got.Incomes[0].ID != "i1" {
		t.Fatalf("read-after-write mismatch: %+v", got)
	}
}

func TestReturnedLedgerIsIsolated(t *testing.T) {
	s := New()
	ctx := context.Background()

	ledger := core.NewLedger("u1")
	ledger.Expenses = []core.Record{{ID: "e1", Category: "food", Amount: core.Money{Cents: 100}}}
	if err := s.Save(ctx, ledger); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, _ := s.Get(ctx, "u1")
	got.Expenses[0].Category = "mutated"

	again, _ := s.Get(ctx, "u1")
	if again.Expenses[0].Category != "food" {
		t.Fatalf("mutation of a returned ledger leaked into the store")
	}
}

func TestEmptyOwnerRejected(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.CreateOrGet(ctx, ""); !errors.Is(err, core.ErrEmptyOwner) {
		t.Fatalf("CreateOrGet: expected ErrEmptyOwner, got %v", err)
	}
	if err := s.Save(ctx, core.Ledger{}); !errors.Is(err, core.ErrEmptyOwner) {
		t.Fatalf("Save: expected ErrEmptyOwner, got %v", err)
	}
}
