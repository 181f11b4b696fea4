package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"smartsaku/internal/advisor"
	"smartsaku/internal/core"
	"smartsaku/internal/service"
	"smartsaku/internal/store/memory"
)

func newTestServer(t *testing.T, adv *advisor.Client) *Server {
	t.Helper()

	svc := service.NewTransactionService(memory.New(), nil, core.DefaultLevelThresholds())
	s := NewServer(Options{
		Addr:    ":0",
		Service: svc,
		Advisor: adv,
	})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, nil)

	if rec := doRequest(s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := doRequest(s, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Fatalf("readyz = %d", rec.Code)
	}
}

func TestAddTransaction(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, http.MethodPost, "/api/users/u1/expenses",
		`{"amount": 50000, "category": "food", "note": "lunch"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}

	env := decodeBody[transactionEnvelope](t, rec)
	if env.Message != "Transaction added" {
		t.Fatalf("message = %q", env.Message)
	}
	if env.Transaction.ID == "" {
		t.Fatal("transaction ID missing")
	}
	if env.Transaction.Amount != 50000 {
		t.Fatalf("amount = %v", env.Transaction.Amount)
	}
	if env.Transaction.Note != "lunch" {
		t.Fatalf("note = %q", env.Transaction.Note)
	}
}

func TestAddTransactionInvalidKind(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, http.MethodPost, "/api/users/u1/savings",
		`{"amount": 100, "category": "x"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", rec.Code)
	}

	msg := decodeBody[messageResponse](t, rec)
	if msg.Message != "Invalid transaction type." {
		t.Fatalf("message = %q", msg.Message)
	}
}

func TestAddTransactionRejectsBadPayload(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"zero amount", `{"amount": 0, "category": "food"}`},
		{"negative amount", `{"amount": -10, "category": "food"}`},
		{"missing category", `{"amount": 100}`},
		{"category too long", `{"amount": 100, "category": "` + strings.Repeat("x", 51) + `"}`},
		{"malformed json", `{amount:`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, http.MethodPost, "/api/users/u1/expenses", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListTransactions(t *testing.T) {
	s := newTestServer(t, nil)

	doRequest(s, http.MethodPost, "/api/users/u1/incomes", `{"amount": 1000000, "category": "salary"}`)
	doRequest(s, http.MethodPost, "/api/users/u1/expenses", `{"amount": 300000, "category": "rent"}`)

	rec := doRequest(s, http.MethodGet, "/api/users/u1/incomes", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}

	list := decodeBody[[]transactionResponse](t, rec)
	if len(list) != 1 || list[0].Category != "salary" {
		t.Fatalf("list = %+v", list)
	}
}

func TestListTransactionsUnknownUser(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/api/users/ghost/expenses", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d", rec.Code)
	}

	msg := decodeBody[messageResponse](t, rec)
	if msg.Message != "Data not found" {
		t.Fatalf("message = %q", msg.Message)
	}
}

func TestUpdateTransactionPartialPatch(t *testing.T) {
	s := newTestServer(t, nil)

	created := decodeBody[transactionEnvelope](t,
		doRequest(s, http.MethodPost, "/api/users/u1/expenses", `{"amount": 50000, "category": "food"}`))

	rec := doRequest(s, http.MethodPut, "/api/users/u1/expenses/"+created.Transaction.ID,
		`{"amount": 80000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}

	env := decodeBody[transactionEnvelope](t, rec)
	if env.Transaction.Amount != 80000 {
		t.Fatalf("amount = %v, want 80000", env.Transaction.Amount)
	}
	if env.Transaction.Category != "food" {
		t.Fatalf("category = %q, want unchanged", env.Transaction.Category)
	}
}

func TestUpdateTransactionNotFound(t *testing.T) {
	s := newTestServer(t, nil)

	doRequest(s, http.MethodPost, "/api/users/u1/expenses", `{"amount": 1, "category": "x"}`)

	rec := doRequest(s, http.MethodPut, "/api/users/u1/expenses/missing", `{"amount": 10}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d", rec.Code)
	}
	msg := decodeBody[messageResponse](t, rec)
	if msg.Message != "Transaction not found" {
		t.Fatalf("message = %q", msg.Message)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestServer(t, nil)

	created := decodeBody[transactionEnvelope](t,
		doRequest(s, http.MethodPost, "/api/users/u1/incomes", `{"amount": 100, "category": "gift"}`))

	rec := doRequest(s, http.MethodDelete, "/api/users/u1/incomes/"+created.Transaction.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}

	// Second delete is a 404.
	rec = doRequest(s, http.MethodDelete, "/api/users/u1/incomes/"+created.Transaction.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete code = %d", rec.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	doRequest(s, http.MethodPost, "/api/users/u1/incomes", `{"amount": 1000000, "category": "salary"}`)
	doRequest(s, http.MethodPost, "/api/users/u1/expenses", `{"amount": 300000, "category": "rent"}`)

	rec := doRequest(s, http.MethodGet, "/api/users/u1/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}

	sum := decodeBody[summaryResponse](t, rec)
	if sum.Balance != 700000 {
		t.Fatalf("balance = %v, want 700000", sum.Balance)
	}
	if sum.Level != core.LevelRookie {
		t.Fatalf("level = %q", sum.Level)
	}
	if sum.TransactionCount != 2 {
		t.Fatalf("count = %d", sum.TransactionCount)
	}
}

func TestSummaryUnknownUserIsEmpty(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/api/users/ghost/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}

	sum := decodeBody[summaryResponse](t, rec)
	if sum.Balance != 0 || sum.TransactionCount != 0 {
		t.Fatalf("summary = %+v, want empty", sum)
	}
}

func TestSummaryCacheInvalidatedByMutation(t *testing.T) {
	s := newTestServer(t, nil)

	doRequest(s, http.MethodPost, "/api/users/u1/incomes", `{"amount": 100, "category": "gift"}`)
	doRequest(s, http.MethodGet, "/api/users/u1/summary", "") // warm the cache
	doRequest(s, http.MethodPost, "/api/users/u1/incomes", `{"amount": 100, "category": "gift"}`)

	sum := decodeBody[summaryResponse](t, doRequest(s, http.MethodGet, "/api/users/u1/summary", ""))
	if sum.TotalIncome != 200 {
		t.Fatalf("totalIncome = %v, want 200 after invalidation", sum.TotalIncome)
	}
}

func TestChatEndpoint(t *testing.T) {
	script := filepath.Join(t.TempDir(), "chat.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'loaded'\necho 'Spend less on snacks.'\n"), 0755); err != nil {
		t.Fatal(err)
	}
	adv := advisor.NewClient("/bin/sh", script, "", 5*time.Second)
	s := newTestServer(t, adv)

	rec := doRequest(s, http.MethodPost, "/chat", `{"message": "help me save"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}

	reply := decodeBody[chatResponse](t, rec)
	if reply.Reply != "Spend less on snacks." {
		t.Fatalf("reply = %q", reply.Reply)
	}
}

func TestChatUnavailableWithoutAdvisor(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, http.MethodPost, "/chat", `{"message": "hi"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestChatRequiresMessage(t *testing.T) {
	script := filepath.Join(t.TempDir(), "chat.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho x\necho y\n"), 0755); err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, advisor.NewClient("/bin/sh", script, "", 5*time.Second))

	rec := doRequest(s, http.MethodPost, "/chat", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestPredictionEndpoint(t *testing.T) {
	script := filepath.Join(t.TempDir(), "predict.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'loaded'\necho '42500.50'\n"), 0755); err != nil {
		t.Fatal(err)
	}
	adv := advisor.NewClient("/bin/sh", "", script, 5*time.Second)
	s := newTestServer(t, adv)

	rec := doRequest(s, http.MethodGet, "/api/users/u1/prediction", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", rec.Code, rec.Body.String())
	}

	pred := decodeBody[predictionResponse](t, rec)
	if pred.Prediction != 42500.50 {
		t.Fatalf("prediction = %v", pred.Prediction)
	}
	if pred.Formatted != "Rp42500.50" {
		t.Fatalf("formatted = %q", pred.Formatted)
	}
}

func TestPredictionUnavailableWithoutAdvisor(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/api/users/u1/prediction", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	s := newTestServer(t, nil)

	rec := doRequest(s, http.MethodGet, "/healthz", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}
