package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/billax/billax/internal/auth"
	"github.com/billax/billax/internal/handler/dto"
	"github.com/billax/billax/internal/plaid"
	"github.com/billax/billax/internal/service"
)

// TransactionHandler handles HTTP requests for transactions.
type TransactionHandler struct {
	svc    *service.TransactionService
	logger *slog.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc *service.TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{
		svc:    svc,
		logger: logger,
	}
}

// Sync handles POST /api/v1/transactions/sync. Without dates the last 90
// days are pulled.
func (h *TransactionHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.SyncTransactionsRequest
	if r.ContentLength > 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	result, err := h.svc.Sync(r.Context(), userID, service.SyncInput{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Count:     req.Count,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("transactions_synced",
		"user_id", userID,
		"fetched", result.TotalFetched,
	)

	writeJSON(w, http.StatusOK, result)
}

// List handles GET /api/v1/transactions with limit, offset, account_id,
// start_date and end_date query parameters.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	query := r.URL.Query()

	input := service.ListInput{
		Limit:     parseIntParam(query.Get("limit"), 50),
		Offset:    parseIntParam(query.Get("offset"), 0),
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
		AccountID: query.Get("account_id"),
	}

	result, err := h.svc.List(r.Context(), userID, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTransactionListResponse(result.Transactions))
}

// ListByChannel handles GET /api/v1/transactions/type/{channel}.
func (h *TransactionHandler) ListByChannel(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	channel := chi.URLParam(r, "channel")

	transactions, err := h.svc.ListByChannel(r.Context(), userID, channel)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTransactionListResponse(transactions))
}

// Get handles GET /api/v1/transactions/{id}.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	transaction, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTransactionResponse(transaction))
}

// Summary handles GET /api/v1/transactions/summary.
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	summary, err := h.svc.Summary(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Delete handles DELETE /api/v1/transactions/{id}.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll handles DELETE /api/v1/transactions.
func (h *TransactionHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := h.svc.DeleteAll(r.Context(), userID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseIntParam parses a non-negative integer query parameter.
func parseIntParam(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}

// handleServiceError maps transaction service errors to HTTP responses.
func (h *TransactionHandler) handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *plaid.APIError

	switch {
	case errors.Is(err, service.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, "TRANSACTION_NOT_FOUND", "Transaction not found")
	case errors.Is(err, service.ErrInvalidDateRange):
		writeError(w, http.StatusBadRequest, "INVALID_DATE_RANGE", "Dates must be YYYY-MM-DD and start before end")
	case errors.Is(err, service.ErrNotLinked):
		writeError(w, http.StatusBadRequest, "NOT_LINKED", "No bank account connected")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.As(err, &apiErr):
		h.logger.Error("plaid_api_error",
			"error_type", apiErr.ErrorType,
			"error_code", apiErr.ErrorCode,
			"request_id", apiErr.RequestID,
		)
		writeError(w, http.StatusBadGateway, "PLAID_ERROR", "Bank provider request failed")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
