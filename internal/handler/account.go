package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/billax/billax/internal/auth"
	"github.com/billax/billax/internal/handler/dto"
	"github.com/billax/billax/internal/plaid"
	"github.com/billax/billax/internal/service"
)

// AccountHandler handles HTTP requests for bank accounts.
type AccountHandler struct {
	svc    *service.AccountService
	logger *slog.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		svc:    svc,
		logger: logger,
	}
}

// Sync handles POST /api/v1/accounts/sync. Pulls current account data from
// Plaid and upserts it locally.
func (h *AccountHandler) Sync(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	accounts, err := h.svc.Sync(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("accounts_synced", "user_id", userID, "count", len(accounts))

	writeJSON(w, http.StatusOK, dto.ToAccountListResponse(accounts))
}

// List handles GET /api/v1/accounts. Responds 404 when the user has no
// synced accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	accounts, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToAccountListResponse(accounts))
}

// ListByType handles GET /api/v1/accounts/type/{type}.
func (h *AccountHandler) ListByType(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	accountType := chi.URLParam(r, "type")

	accounts, err := h.svc.ListByType(r.Context(), userID, accountType)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToAccountListResponse(accounts))
}

// Get handles GET /api/v1/accounts/{id}.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	account, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAccountResponse(account))
}

// Summary handles GET /api/v1/accounts/summary.
func (h *AccountHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	summary, err := h.svc.Summary(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Delete handles DELETE /api/v1/accounts/{id}.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteAll handles DELETE /api/v1/accounts.
func (h *AccountHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := h.svc.DeleteAll(r.Context(), userID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps account service errors to HTTP responses.
func (h *AccountHandler) handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *plaid.APIError

	switch {
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found")
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
