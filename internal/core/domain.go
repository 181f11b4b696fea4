package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "incomes"
	KindExpense Kind = "expenses"

	// MaxCategoryLength bounds the category field, matching the stored schema.
	MaxCategoryLength = 50
	// MaxDescriptionLength bounds the optional free-text note.
	MaxDescriptionLength = 200
)

type (
	// Kind selects one of the two record sequences inside a Ledger.
	Kind string

	Money struct {
		Cents int64
	}

	// Record is a single income or expense entry inside a Ledger.
	Record struct {
		ID          string
		Amount      Money
		Category    string
		Description string
		OccurredAt  time.Time
	}

	// Ledger is the per-owner document holding both record sequences.
	// Sequences keep insertion order; record IDs are unique per sequence.
	Ledger struct {
		OwnerID  string
		Incomes  []Record
		Expenses []Record
	}
)

var (
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyCategory      = errors.New("empty category")
	ErrCategoryTooLong    = errors.New("category too long")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrEmptyOwner         = errors.New("empty owner id")
)

// ParseKind maps the two recognized path values onto the Kind enum.
// Anything else is ErrInvalidKind, regardless of owner or record existence.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense:
		return true
	default:
		return false
	}
}

func (k Kind) String() string { return string(k) }

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r Record) Validate() error {
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	cat := strings.TrimSpace(r.Category)
	if cat == "" {
		return ErrEmptyCategory
	}
	if len(cat) > MaxCategoryLength {
		return ErrCategoryTooLong
	}
	if len(r.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// Normalize returns the record with category and description trimmed. This
// is how records are stored, so exact-match category grouping sees "food"
// and " food" as one category.
func (r Record) Normalize() Record {
	r.Category = strings.TrimSpace(r.Category)
	r.Description = strings.TrimSpace(r.Description)
	return r
}

// NewLedger returns an empty ledger for the given owner.
func NewLedger(ownerID string) Ledger {
	return Ledger{OwnerID: ownerID}
}

// Records returns the sequence selected by kind.
func (l Ledger) Records(kind Kind) []Record {
	switch kind {
	case KindIncome:
		return l.Incomes
	case KindExpense:
		return l.Expenses
	default:
		return nil
	}
}

// SetRecords replaces the sequence selected by kind.
func (l *Ledger) SetRecords(kind Kind, records []Record) {
	switch kind {
	case KindIncome:
		l.Incomes = records
	case KindExpense:
		l.Expenses = records
	}
}

// FindRecord locates a record by ID within the named sequence.
func (l Ledger) FindRecord(kind Kind, recordID string) (Record, bool) {
	for _, r := range l.Records(kind) {
		if r.ID == recordID {
			return r, true
		}
	}
	return Record{}, false
}

// Clone deep-copies the ledger so callers cannot mutate stored state.
func (l Ledger) Clone() Ledger {
	out := Ledger{OwnerID: l.OwnerID}
	if l.Incomes != nil {
		out.Incomes = append([]Record(nil), l.Incomes...)
	}
	if l.Expenses != nil {
		out.Expenses = append([]Record(nil), l.Expenses...)
	}
	return out
}
