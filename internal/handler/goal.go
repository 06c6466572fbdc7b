package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/billax/billax/internal/auth"
	"github.com/billax/billax/internal/handler/dto"
	"github.com/billax/billax/internal/service"
)

// GoalHandler handles HTTP requests for financial goals.
type GoalHandler struct {
	svc    *service.GoalService
	logger *slog.Logger
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(svc *service.GoalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/goals.
func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var req dto.CreateGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	goal, err := h.svc.Create(r.Context(), userID, service.CreateGoalInput{
		Title:           req.Title,
		Description:     req.Description,
		TargetAmount:    req.TargetAmount,
		Deadline:        req.Deadline,
		Category:        req.Category,
		LinkedAccountID: req.LinkedAccountID,
		LinkedAmount:    req.LinkedAmount,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("goal_created", "goal_id", goal.ID, "user_id", userID)

	writeJSON(w, http.StatusCreated, dto.ToGoalResponse(goal))
}

// List handles GET /api/v1/goals with optional status and category filters.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	query := r.URL.Query()

	goals, err := h.svc.List(r.Context(), userID, query.Get("status"), query.Get("category"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGoalListResponse(goals))
}

// Get handles GET /api/v1/goals/{id}.
func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	goal, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGoalResponse(goal))
}

// Update handles PUT /api/v1/goals/{id}.
func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.UpdateGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	goal, err := h.svc.Update(r.Context(), userID, id, service.UpdateGoalInput{
		Title:           req.Title,
		Description:     req.Description,
		TargetAmount:    req.TargetAmount,
		Deadline:        req.Deadline,
		Category:        req.Category,
		Status:          req.Status,
		LinkedAccountID: req.LinkedAccountID,
		LinkedAmount:    req.LinkedAmount,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("goal_updated", "goal_id", goal.ID, "user_id", userID)

	writeJSON(w, http.StatusOK, dto.ToGoalResponse(goal))
}

// Delete handles DELETE /api/v1/goals/{id}.
func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("goal_deleted", "goal_id", id, "user_id", userID)

	w.WriteHeader(http.StatusNoContent)
}

// UpdateProgress handles PUT /api/v1/goals/{id}/progress.
func (h *GoalHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.GoalProgressRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	goal, err := h.svc.UpdateProgress(r.Context(), userID, id, req.Amount, req.ProgressType)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGoalResponse(goal))
}

// GetProgress handles GET /api/v1/goals/{id}/progress.
func (h *GoalHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	goal, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGoalProgressDetail(goal))
}

// ListByCategory handles GET /api/v1/goals/category/{category}.
func (h *GoalHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	category := chi.URLParam(r, "category")

	goals, err := h.svc.List(r.Context(), userID, "", category)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGoalListResponse(goals))
}

// Categories handles GET /api/v1/goals/categories.
func (h *GoalHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories := h.svc.Categories()

	data := make([]dto.GoalCategoryResponse, len(categories))
	for i, c := range categories {
		data[i] = dto.GoalCategoryResponse{Value: c.Value, Label: c.Label}
	}

	writeJSON(w, http.StatusOK, data)
}

// Overdue handles GET /api/v1/goals/overdue.
func (h *GoalHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	goals, err := h.svc.Overdue(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGoalListResponse(goals))
}

// NearDeadline handles GET /api/v1/goals/near-deadline?days=N.
func (h *GoalHandler) NearDeadline(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	days := 7
	if d := r.URL.Query().Get("days"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_DAYS", "days must be an integer between 1 and 30")
			return
		}
		days = parsed
	}

	goals, err := h.svc.NearDeadline(r.Context(), userID, days)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGoalListResponse(goals))
}

// Search handles GET /api/v1/goals/search with q, status, category,
// min_amount and max_amount query parameters.
func (h *GoalHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	query := r.URL.Query()

	input := service.SearchGoalsInput{
		Search:   query.Get("q"),
		Status:   query.Get("status"),
		Category: query.Get("category"),
	}

	var ok bool
	if input.MinAmount, ok = parseFloatParam(query.Get("min_amount")); !ok {
		writeError(w, http.StatusBadRequest, "INVALID_AMOUNT_RANGE", "min_amount must be a number")
		return
	}
	if input.MaxAmount, ok = parseFloatParam(query.Get("max_amount")); !ok {
		writeError(w, http.StatusBadRequest, "INVALID_AMOUNT_RANGE", "max_amount must be a number")
		return
	}

	goals, err := h.svc.Search(r.Context(), userID, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToGoalListResponse(goals))
}

// Statistics handles GET /api/v1/goals/statistics.
func (h *GoalHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	stats, err := h.svc.Statistics(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// parseFloatParam parses an optional float query parameter.
func parseFloatParam(value string) (*float64, bool) {
	if value == "" {
		return nil, true
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, false
	}
	return &parsed, true
}

// handleServiceError maps goal service errors to HTTP responses.
func (h *GoalHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrGoalNotFound):
		writeError(w, http.StatusNotFound, "GOAL_NOT_FOUND", "Goal not found")
	case errors.Is(err, service.ErrGoalTitleRequired):
		writeError(w, http.StatusBadRequest, "TITLE_REQUIRED", "Title is required")
	case errors.Is(err, service.ErrInvalidTargetAmount):
		writeError(w, http.StatusBadRequest, "INVALID_TARGET_AMOUNT", "Target amount must be greater than 0")
	case errors.Is(err, service.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than 0")
	case errors.Is(err, service.ErrDeadlineInPast):
		writeError(w, http.StatusUnprocessableEntity, "DEADLINE_IN_PAST", "Deadline cannot be in the past")
	case errors.Is(err, service.ErrInvalidDeadline):
		writeError(w, http.StatusBadRequest, "INVALID_DEADLINE", "Deadline must be YYYY-MM-DD")
	case errors.Is(err, service.ErrInvalidCategory):
		writeError(w, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown goal category")
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Unknown goal status")
	case errors.Is(err, service.ErrInvalidProgressType):
		writeError(w, http.StatusBadRequest, "INVALID_PROGRESS_TYPE", "Progress type must be manual or linked")
	case errors.Is(err, service.ErrNoLinkedAccount):
		writeError(w, http.StatusBadRequest, "NO_LINKED_ACCOUNT", "Goal has no linked account")
	case errors.Is(err, service.ErrOverReserved):
		writeError(w, http.StatusUnprocessableEntity, "OVER_RESERVED", "Cannot reserve more than the linked account's available balance")
	case errors.Is(err, service.ErrInvalidDays):
		writeError(w, http.StatusBadRequest, "INVALID_DAYS", "days must be an integer between 1 and 30")
	case errors.Is(err, service.ErrInvalidAmountRange):
		writeError(w, http.StatusBadRequest, "INVALID_AMOUNT_RANGE", "Invalid amount range")
	case errors.Is(err, service.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Linked account not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
