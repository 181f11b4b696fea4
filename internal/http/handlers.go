package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"smartsaku/internal/advisor"
	"smartsaku/internal/core"
	"smartsaku/internal/service"
	"smartsaku/internal/store"
)

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// mapServiceError translates domain errors onto the API's status codes and
// legacy message strings.
func (s *Server) mapServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidKind):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid transaction type."})
	case errors.Is(err, store.ErrLedgerNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Data not found"})
	case errors.Is(err, service.ErrRecordNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Transaction not found"})
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrCategoryTooLong),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, core.ErrEmptyOwner):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: err.Error()})
	}
}

func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return s.validate.Struct(dst)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(r.PathValue("kind"))
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	records, err := s.service.ListRecords(r.Context(), r.PathValue("userID"), kind)
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponses(records))
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(r.PathValue("kind"))
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	var req transactionRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid transaction payload."})
		return
	}

	amount, err := core.MoneyFromFloat(req.Amount)
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	rec := core.Record{
		Amount:      amount,
		Category:    req.Category,
		Description: req.Note,
	}
	if req.Date != nil {
		rec.OccurredAt = *req.Date
	}

	userID := r.PathValue("userID")
	saved, err := s.service.AddRecord(r.Context(), userID, kind, rec)
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	s.summaryCache.Delete(userID)

	writeJSON(w, http.StatusCreated, transactionEnvelope{
		Message:     "Transaction added",
		Transaction: toTransactionResponse(saved),
	})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(r.PathValue("kind"))
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	var req transactionUpdateRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Invalid transaction payload."})
		return
	}

	patch := service.RecordPatch{
		Category:    req.Category,
		Description: req.Note,
		OccurredAt:  req.Date,
	}
	if req.Amount != nil {
		amount, err := core.MoneyFromFloat(*req.Amount)
		if err != nil {
			s.mapServiceError(w, r, err)
			return
		}
		patch.Amount = &amount
	}

	userID := r.PathValue("userID")
	updated, err := s.service.UpdateRecord(r.Context(), userID, kind, r.PathValue("transactionID"), patch)
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	s.summaryCache.Delete(userID)

	writeJSON(w, http.StatusOK, transactionEnvelope{
		Message:     "Transaction updated",
		Transaction: toTransactionResponse(updated),
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	kind, err := core.ParseKind(r.PathValue("kind"))
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	userID := r.PathValue("userID")
	if err := s.service.DeleteRecord(r.Context(), userID, kind, r.PathValue("transactionID")); err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	s.summaryCache.Delete(userID)

	writeJSON(w, http.StatusOK, messageResponse{Message: "Transaction deleted"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	if cached, ok := s.summaryCache.Get(userID); ok {
		writeJSON(w, http.StatusOK, toSummaryResponse(cached))
		return
	}

	summary, err := s.service.Summary(r.Context(), userID)
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	s.summaryCache.Set(userID, summary)
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil || !s.advisor.PredictionEnabled() {
		writeJSON(w, http.StatusServiceUnavailable, messageResponse{Message: "Prediction is not available."})
		return
	}

	history, err := s.service.RecentExpenses(r.Context(), r.PathValue("userID"), advisor.PredictionWindowDays)
	if err != nil {
		s.mapServiceError(w, r, err)
		return
	}

	predicted, err := s.advisor.PredictNextDay(r.Context(), history)
	if err != nil {
		slog.ErrorContext(r.Context(), "Prediction failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Prediction failed."})
		return
	}

	writeJSON(w, http.StatusOK, predictionResponse{
		Prediction: predicted.Float(),
		Formatted:  core.FormatRupiah(predicted),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.advisor == nil || !s.advisor.ChatEnabled() {
		writeJSON(w, http.StatusServiceUnavailable, messageResponse{Message: "Chat is not available."})
		return
	}

	var req chatRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Message is required."})
		return
	}

	reply, err := s.advisor.Chat(r.Context(), req.Message)
	if err != nil {
		slog.ErrorContext(r.Context(), "Chat failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Something went wrong."})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
