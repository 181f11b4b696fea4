package sqlite

import (
	"encoding/json"
	"time"

	"smartsaku/internal/core"
)

// ledgerDocument is the stored JSON shape. Amounts are kept in cents so the
// document round-trips without float noise.
type ledgerDocument struct {
	Incomes  []recordDocument `json:"incomes"`
	Expenses []recordDocument `json:"expenses"`
}

type recordDocument struct {
	ID          string    `json:"id"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func encodeLedger(l core.Ledger) ([]byte, error) {
	doc := ledgerDocument{
		Incomes:  encodeRecords(l.Incomes),
		Expenses: encodeRecords(l.Expenses),
	}
	return json.Marshal(doc)
}

func decodeLedger(ownerID string, data []byte) (core.Ledger, error) {
	var doc ledgerDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.Ledger{}, err
	}
	return core.Ledger{
		OwnerID:  ownerID,
		Incomes:  decodeRecords(doc.Incomes),
		Expenses: decodeRecords(doc.Expenses),
	}, nil
}

func encodeRecords(records []core.Record) []recordDocument {
	out := make([]recordDocument, len(records))
	for i, r := range records {
		out[i] = recordDocument{
			ID:          r.ID,
			AmountCents: r.Amount.Cents,
			Category:    r.Category,
			Description: r.Description,
			OccurredAt:  r.OccurredAt,
		}
	}
	return out
}

func decodeRecords(docs []recordDocument) []core.Record {
	if len(docs) == 0 {
		return nil
	}
	out := make([]core.Record, len(docs))
	for i, d := range docs {
		out[i] = core.Record{
			ID:          d.ID,
			Amount:      core.Money{Cents: d.AmountCents},
			Category:    d.Category,
			Description: d.Description,
			OccurredAt:  d.OccurredAt,
		}
	}
	return out
}
