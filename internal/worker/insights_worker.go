// Package worker consumes record events and derives spending insights for
// the owners whose ledgers changed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"smartsaku/internal/advisor"
	"smartsaku/internal/amqp"
	"smartsaku/internal/core"
	"smartsaku/internal/store"
)

// InsightsWorker recomputes an owner's summary whenever one of their
// records changes and logs a spending insight. When the balance is negative
// and an advisor is configured, it also asks for a recommendation.
type InsightsWorker struct {
	store      store.LedgerStore
	advisor    *advisor.Client
	thresholds core.LevelThresholds

	mu     sync.Mutex
	active map[string]time.Time // owners seen since the last sweep
}

func NewInsightsWorker(ledgers store.LedgerStore, adv *advisor.Client, thresholds core.LevelThresholds) *InsightsWorker {
	return &InsightsWorker{
		store:      ledgers,
		advisor:    adv,
		thresholds: thresholds,
		active:     make(map[string]time.Time),
	}
}

// HandleRecordEvent processes a single record event from AMQP.
func (w *InsightsWorker) HandleRecordEvent(ctx context.Context, msg *amqp.RecordEventMessage) error {
	slog.InfoContext(ctx, "Processing record event",
		"owner_id", msg.OwnerID,
		"kind", msg.Kind,
		"record_id", msg.RecordID,
		"action", msg.Action)

	ledger, err := w.store.Get(ctx, msg.OwnerID)
	if errors.Is(err, store.ErrLedgerNotFound) {
		// The ledger can be gone by the time a deletion event arrives.
		slog.WarnContext(ctx, "Ledger missing for record event", "owner_id", msg.OwnerID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	summary := core.ComputeSummary(ledger, w.thresholds)

	slog.InfoContext(ctx, "Ledger insight",
		"owner_id", summary.OwnerID,
		"balance", core.FormatRupiah(summary.Totals.Balance),
		"total_income", core.FormatRupiah(summary.Totals.TotalIncome),
		"total_expense", core.FormatRupiah(summary.Totals.TotalExpense),
		"level", summary.Level,
		"transactions", summary.TransactionCount)

	if summary.Totals.Balance.Cents < 0 {
		w.adviseOverspending(ctx, summary)
	}

	w.mu.Lock()
	w.active[msg.OwnerID] = time.Now()
	w.mu.Unlock()

	return nil
}

// adviseOverspending asks the chat advisor for a saving tip. Advice is
// best-effort: failures are logged and swallowed.
func (w *InsightsWorker) adviseOverspending(ctx context.Context, summary core.Summary) {
	if w.advisor == nil || !w.advisor.ChatEnabled() {
		return
	}

	prompt := fmt.Sprintf("My balance is %s this month, how do I save more?",
		core.FormatRupiah(summary.Totals.Balance))
	reply, err := w.advisor.Chat(ctx, prompt)
	if err != nil {
		slog.WarnContext(ctx, "Advisor recommendation failed",
			"owner_id", summary.OwnerID, "error", err)
		return
	}

	slog.InfoContext(ctx, "Overspending recommendation",
		"owner_id", summary.OwnerID,
		"recommendation", reply)
}

// SweepActiveOwners logs a periodic digest for owners active since the last
// sweep and resets the active set. Returns how many owners were covered.
func (w *InsightsWorker) SweepActiveOwners(ctx context.Context) int {
	w.mu.Lock()
	owners := make([]string, 0, len(w.active))
	for owner := range w.active {
		owners = append(owners, owner)
	}
	w.active = make(map[string]time.Time)
	w.mu.Unlock()

	for _, owner := range owners {
		ledger, err := w.store.Get(ctx, owner)
		if err != nil {
			slog.WarnContext(ctx, "Sweep skipped owner", "owner_id", owner, "error", err)
			continue
		}
		summary := core.ComputeSummary(ledger, w.thresholds)
		slog.InfoContext(ctx, "Periodic digest",
			"owner_id", owner,
			"balance", core.FormatRupiah(summary.Totals.Balance),
			"level", summary.Level)
	}

	return len(owners)
}

// RunSweeper runs SweepActiveOwners on the given interval until the context
// is cancelled.
func (w *InsightsWorker) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.SweepActiveOwners(ctx)
		}
	}
}
