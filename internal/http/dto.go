package http

import (
	"time"

	"smartsaku/internal/core"
)

// transactionRequest is the POST payload for a new record. Amounts travel
// as JSON numbers in rupiah units.
type transactionRequest struct {
	Amount   float64    `json:"amount" validate:"required,gt=0"`
	Category string     `json:"category" validate:"required,max=50"`
	Note     string     `json:"note" validate:"max=200"`
	Date     *time.Time `json:"date"`
}

// transactionUpdateRequest is the PUT payload. Absent fields keep the
// stored value.
type transactionUpdateRequest struct {
	Amount   *float64   `json:"amount" validate:"omitempty,gt=0"`
	Category *string    `json:"category" validate:"omitempty,min=1,max=50"`
	Note     *string    `json:"note" validate:"omitempty,max=200"`
	Date     *time.Time `json:"date"`
}

type transactionResponse struct {
	ID       string    `json:"id"`
	Amount   float64   `json:"amount"`
	Category string    `json:"category"`
	Note     string    `json:"note,omitempty"`
	Date     time.Time `json:"date"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type transactionEnvelope struct {
	Message     string              `json:"message"`
	Transaction transactionResponse `json:"transaction"`
}

type categoryAmountResponse struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type summaryResponse struct {
	UserID             string                   `json:"userId"`
	TotalIncome        float64                  `json:"totalIncome"`
	TotalExpense       float64                  `json:"totalExpense"`
	Balance            float64                  `json:"balance"`
	Level              string                   `json:"level"`
	IncomesByCategory  []categoryAmountResponse `json:"incomesByCategory"`
	ExpensesByCategory []categoryAmountResponse `json:"expensesByCategory"`
	TransactionCount   int                      `json:"transactionCount"`
}

type predictionResponse struct {
	Prediction float64 `json:"prediction"`
	Formatted  string  `json:"formatted"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toTransactionResponse(r core.Record) transactionResponse {
	return transactionResponse{
		ID:       r.ID,
		Amount:   r.Amount.Float(),
		Category: r.Category,
		Note:     r.Description,
		Date:     r.OccurredAt,
	}
}

func toTransactionResponses(records []core.Record) []transactionResponse {
	out := make([]transactionResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toTransactionResponse(r))
	}
	return out
}

func toCategoryAmounts(breakdown []core.CategoryAmount) []categoryAmountResponse {
	out := make([]categoryAmountResponse, 0, len(breakdown))
	for _, c := range breakdown {
		out = append(out, categoryAmountResponse{Category: c.Name, Amount: c.Amount.Float()})
	}
	return out
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		UserID:             s.OwnerID,
		TotalIncome:        s.Totals.TotalIncome.Float(),
		TotalExpense:       s.Totals.TotalExpense.Float(),
		Balance:            s.Totals.Balance.Float(),
		Level:              s.Level,
		IncomesByCategory:  toCategoryAmounts(s.IncomesByCategory),
		ExpensesByCategory: toCategoryAmounts(s.ExpenseByCategory),
		TransactionCount:   s.TransactionCount,
	}
}
