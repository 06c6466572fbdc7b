package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/billax/billax/internal/auth"
	"github.com/billax/billax/internal/handler/dto"
	"github.com/billax/billax/internal/plaid"
	"github.com/billax/billax/internal/service"
)

// PlaidHandler handles HTTP requests for the Plaid Link flow.
type PlaidHandler struct {
	svc    *service.PlaidService
	logger *slog.Logger
}

// NewPlaidHandler creates a new PlaidHandler.
func NewPlaidHandler(svc *service.PlaidService, logger *slog.Logger) *PlaidHandler {
	return &PlaidHandler{
		svc:    svc,
		logger: logger,
	}
}

// CreateLinkToken handles POST /api/v1/plaid/create-link-token.
func (h *PlaidHandler) CreateLinkToken(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	token, err := h.svc.CreateLinkToken(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LinkTokenResponse{LinkToken: token})
}

// CreateSandboxToken handles POST /api/v1/plaid/create-public-token.
// Shortcut for testing without the Link frontend widget.
func (h *PlaidHandler) CreateSandboxToken(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	token, err := h.svc.CreateSandboxPublicToken(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PublicTokenResponse{PublicToken: token})
}

// ExchangeToken handles POST /api/v1/plaid/exchange-public-token.
func (h *PlaidHandler) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.ExchangeTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PublicToken == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TOKEN", "public_token is required")
		return
	}

	if err := h.svc.ExchangePublicToken(r.Context(), userID, req.PublicToken); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("plaid_linked", "user_id", userID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Bank account connected successfully"})
}

// Status handles GET /api/v1/plaid/status.
func (h *PlaidHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	linked, err := h.svc.Linked(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PlaidStatusResponse{Connected: linked})
}

// Disconnect handles POST /api/v1/plaid/disconnect. Removes the access
// token and every synced account.
func (h *PlaidHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	if err := h.svc.Disconnect(r.Context(), userID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("plaid_disconnected", "user_id", userID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Bank connection removed"})
}

// handleServiceError maps Plaid service errors to HTTP responses.
func (h *PlaidHandler) handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *plaid.APIError

	switch {
	case errors.Is(err, service.ErrAlreadyLinked):
		writeError(w, http.StatusConflict, "ALREADY_LINKED", "A bank account is already connected")
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
