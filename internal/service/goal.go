package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/billax/billax/internal/metrics"
	"github.com/billax/billax/internal/model"
	"github.com/billax/billax/internal/repository"
)

// Goal service errors.
var (
	ErrGoalNotFound        = errors.New("goal not found")
	ErrGoalTitleRequired   = errors.New("title is required")
	ErrInvalidTargetAmount = errors.New("target amount must be greater than 0")
	ErrInvalidAmount       = errors.New("amount must be greater than 0")
	ErrDeadlineInPast      = errors.New("deadline cannot be in the past")
	ErrInvalidDeadline     = errors.New("invalid deadline format, use YYYY-MM-DD")
	ErrInvalidCategory     = errors.New("invalid goal category")
	ErrInvalidStatus       = errors.New("invalid goal status")
	ErrInvalidProgressType = errors.New("progress type must be manual or linked")
	ErrNoLinkedAccount     = errors.New("goal does not have a linked account")
	ErrOverReserved        = errors.New("cannot reserve more than the linked account's available balance")
	ErrInvalidDays         = errors.New("days must be between 1 and 30")
	ErrInvalidAmountRange  = errors.New("invalid amount range")
)

// GoalCategory is a selectable goal category.
type GoalCategory struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// goalCategories is the fixed category list.
var goalCategories = []GoalCategory{
	{Value: "savings", Label: "Savings"},
	{Value: "investment", Label: "Investment"},
	{Value: "debt", Label: "Debt"},
	{Value: "emergency", Label: "Emergency Fund"},
	{Value: "vacation", Label: "Vacation"},
	{Value: "education", Label: "Education"},
	{Value: "bills", Label: "Bills"},
	{Value: "other", Label: "Other"},
}

func validCategory(category string) bool {
	for _, c := range goalCategories {
		if c.Value == category {
			return true
		}
	}
	return false
}

// GoalService handles savings goal business logic.
type GoalService struct {
	repo    *repository.Repository
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewGoalService creates a new GoalService.
func NewGoalService(repo *repository.Repository, logger *slog.Logger, recorder metrics.Recorder) *GoalService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &GoalService{
		repo:    repo,
		logger:  logger,
		metrics: recorder,
	}
}

// Categories returns the fixed category list.
func (s *GoalService) Categories() []GoalCategory {
	return goalCategories
}

// CreateGoalInput defines input for creating a goal.
type CreateGoalInput struct {
	Title        string
	Description  string
	TargetAmount float64
	// Deadline is YYYY-MM-DD, empty for none.
	Deadline        string
	Category        string
	LinkedAccountID string
	LinkedAmount    *float64
}

func parseDeadline(deadline string, now time.Time) (*time.Time, error) {
	if deadline == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, deadline)
	if err != nil {
		return nil, ErrInvalidDeadline
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today) {
		return nil, ErrDeadlineInPast
	}
	return &d, nil
}

// checkLinkedReserve verifies the account belongs to the user and the total
// reserved across goals would not exceed the account's available balance.
func (s *GoalService) checkLinkedReserve(ctx context.Context, userID, accountID string, amount float64, excludeGoalID string) error {
	account, err := s.repo.GetAccountByID(ctx, userID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return ErrAccountNotFound
		}
		return err
	}

	reserved, err := s.repo.SumLinkedAmount(ctx, userID, accountID, excludeGoalID)
	if err != nil {
		return err
	}

	available := 0.0
	if account.AvailableBalance != nil {
		available = *account.AvailableBalance
	}
	if reserved+amount > available {
		return ErrOverReserved
	}
	return nil
}

// Create validates the input and stores a new goal.
func (s *GoalService) Create(ctx context.Context, userID string, input CreateGoalInput) (*model.Goal, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrGoalTitleRequired
	}
	if input.TargetAmount <= 0 {
		return nil, ErrInvalidTargetAmount
	}
	if input.Category != "" && !validCategory(input.Category) {
		return nil, ErrInvalidCategory
	}

	deadline, err := parseDeadline(input.Deadline, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if input.LinkedAccountID != "" && input.LinkedAmount != nil {
		if err := s.checkLinkedReserve(ctx, userID, input.LinkedAccountID, *input.LinkedAmount, ""); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	goal := &model.Goal{
		ID:              ulid.Make().String(),
		UserID:          userID,
		Title:           title,
		Description:     strings.TrimSpace(input.Description),
		TargetAmount:    input.TargetAmount,
		Deadline:        deadline,
		Category:        input.Category,
		Status:          model.GoalStatusActive,
		LinkedAccountID: input.LinkedAccountID,
		LinkedAmount:    input.LinkedAmount,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateGoal(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	s.logger.Info("goal created",
		slog.String("user_id", userID),
		slog.String("goal_id", goal.ID),
	)
	return goal, nil
}

// List returns the user's goals, optionally filtered by status and category.
func (s *GoalService) List(ctx context.Context, userID string, status, category string) ([]*model.Goal, error) {
	if status != "" && !model.GoalStatus(status).IsValid() {
		return nil, ErrInvalidStatus
	}
	if category != "" && !validCategory(category) {
		return nil, ErrInvalidCategory
	}
	return s.repo.ListGoals(ctx, userID, repository.GoalFilter{
		Status:   model.GoalStatus(status),
		Category: category,
	})
}

// Get returns one goal owned by the user.
func (s *GoalService) Get(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	goal, err := s.repo.GetGoalByID(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

// UpdateGoalInput defines input for updating a goal. Nil pointers leave
// the field untouched; empty strings clear optional text fields.
type UpdateGoalInput struct {
	Title           *string
	Description     *string
	TargetAmount    *float64
	Deadline        *string
	Category        *string
	Status          *string
	LinkedAccountID *string
	LinkedAmount    *float64
}

// Update applies partial changes to a goal with full validation.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, input UpdateGoalInput) (*model.Goal, error) {
	goal, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrGoalTitleRequired
		}
		goal.Title = title
	}
	if input.Description != nil {
		goal.Description = strings.TrimSpace(*input.Description)
	}
	if input.TargetAmount != nil {
		if *input.TargetAmount <= 0 {
			return nil, ErrInvalidTargetAmount
		}
		goal.TargetAmount = *input.TargetAmount
	}
	if input.Deadline != nil {
		deadline, err := parseDeadline(*input.Deadline, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		goal.Deadline = deadline
	}
	if input.Category != nil {
		if *input.Category != "" && !validCategory(*input.Category) {
			return nil, ErrInvalidCategory
		}
		goal.Category = *input.Category
	}
	if input.Status != nil {
		if !model.GoalStatus(*input.Status).IsValid() {
			return nil, ErrInvalidStatus
		}
		goal.Status = model.GoalStatus(*input.Status)
	}
	if input.LinkedAccountID != nil {
		goal.LinkedAccountID = *input.LinkedAccountID
	}
	if input.LinkedAmount != nil {
		goal.LinkedAmount = input.LinkedAmount
	}

	if goal.LinkedAccountID != "" && goal.LinkedAmount != nil &&
		(input.LinkedAccountID != nil || input.LinkedAmount != nil) {
		if err := s.checkLinkedReserve(ctx, userID, goal.LinkedAccountID, *goal.LinkedAmount, goalID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateGoal(ctx, goal); err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

// Delete removes a goal owned by the user.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	if err := s.repo.DeleteGoal(ctx, userID, goalID); err != nil {
		if errors.Is(err, repository.ErrGoalNotFound) {
			return ErrGoalNotFound
		}
		return err
	}
	return nil
}

// UpdateProgress adds amount to the goal's manual or linked bucket. Linked
// progress is bounded by the linked account's available balance. The goal
// auto-completes at 100%.
func (s *GoalService) UpdateProgress(ctx context.Context, userID, goalID string, amount float64, progressType string) (*model.Goal, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if progressType != model.GoalProgressManual && progressType != model.GoalProgressLinked {
		return nil, ErrInvalidProgressType
	}

	goal, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if progressType == model.GoalProgressLinked {
		if goal.LinkedAccountID == "" {
			return nil, ErrNoLinkedAccount
		}
		linked := 0.0
		if goal.LinkedAmount != nil {
			linked = *goal.LinkedAmount
		}
		if err := s.checkLinkedReserve(ctx, userID, goal.LinkedAccountID, linked+amount, goalID); err != nil {
			return nil, err
		}
	}

	goal.ApplyProgress(amount, progressType)

	if err := s.repo.UpdateGoal(ctx, goal); err != nil {
		return nil, err
	}

	if goal.Status == model.GoalStatusCompleted {
		s.logger.Info("goal completed",
			slog.String("user_id", userID),
			slog.String("goal_id", goalID),
		)
	}
	return goal, nil
}

// Overdue returns the user's active goals whose deadline passed.
func (s *GoalService) Overdue(ctx context.Context, userID string) ([]*model.Goal, error) {
	return s.repo.ListOverdueGoals(ctx, userID)
}

// NearDeadline returns active goals whose deadline falls within days
// (1 to 30).
func (s *GoalService) NearDeadline(ctx context.Context, userID string, days int) ([]*model.Goal, error) {
	if days < 1 || days > 30 {
		return nil, ErrInvalidDays
	}
	return s.repo.ListGoalsNearDeadline(ctx, userID, days)
}

// SearchGoalsInput defines goal search filters.
type SearchGoalsInput struct {
	Search    string
	Status    string
	Category  string
	MinAmount *float64
	MaxAmount *float64
}

// Search returns goals matching the filters. Amount bounds are applied on
// the target amount.
func (s *GoalService) Search(ctx context.Context, userID string, input SearchGoalsInput) ([]*model.Goal, error) {
	if input.Status != "" && !model.GoalStatus(input.Status).IsValid() {
		return nil, ErrInvalidStatus
	}
	if input.Category != "" && !validCategory(input.Category) {
		return nil, ErrInvalidCategory
	}
	if input.MinAmount != nil && *input.MinAmount < 0 {
		return nil, ErrInvalidAmountRange
	}
	if input.MaxAmount != nil && *input.MaxAmount < 0 {
		return nil, ErrInvalidAmountRange
	}
	if input.MinAmount != nil && input.MaxAmount != nil && *input.MinAmount > *input.MaxAmount {
		return nil, ErrInvalidAmountRange
	}

	goals, err := s.repo.ListGoals(ctx, userID, repository.GoalFilter{
		Status:   model.GoalStatus(input.Status),
		Category: input.Category,
		Search:   input.Search,
	})
	if err != nil {
		return nil, err
	}
	return FilterGoalsByAmount(goals, input.MinAmount, input.MaxAmount), nil
}

// FilterGoalsByAmount keeps goals whose target amount lies in the bounds.
func FilterGoalsByAmount(goals []*model.Goal, min, max *float64) []*model.Goal {
	if min == nil && max == nil {
		return goals
	}
	filtered := make([]*model.Goal, 0, len(goals))
	for _, g := range goals {
		if min != nil && g.TargetAmount < *min {
			continue
		}
		if max != nil && g.TargetAmount > *max {
			continue
		}
		filtered = append(filtered, g)
	}
	return filtered
}

// CategoryStats aggregates goals in one category.
type CategoryStats struct {
	Count        int     `json:"count"`
	TotalTarget  float64 `json:"total_target"`
	TotalCurrent float64 `json:"total_current"`
	Completed    int     `json:"completed"`
}

// StatusStats aggregates goals in one status.
type StatusStats struct {
	Count        int     `json:"count"`
	TotalTarget  float64 `json:"total_target"`
	TotalCurrent float64 `json:"total_current"`
}

// GoalsStatistics is the aggregate view over a user's goals.
type GoalsStatistics struct {
	TotalGoals      int                      `json:"total_goals"`
	ActiveGoals     int                      `json:"active_goals"`
	CompletedGoals  int                      `json:"completed_goals"`
	TotalTarget     float64                  `json:"total_target"`
	TotalCurrent    float64                  `json:"total_current"`
	OverallProgress float64                  `json:"overall_progress"`
	ByCategory      map[string]CategoryStats `json:"by_category"`
	ByStatus        map[string]StatusStats   `json:"by_status"`
}

// Statistics aggregates the user's goals by category and status.
func (s *GoalService) Statistics(ctx context.Context, userID string) (*GoalsStatistics, error) {
	goals, err := s.repo.ListGoals(ctx, userID, repository.GoalFilter{})
	if err != nil {
		return nil, err
	}
	return ComputeGoalsStatistics(goals), nil
}

// ComputeGoalsStatistics computes the aggregate view. Pure so it can be
// tested without a database.
func ComputeGoalsStatistics(goals []*model.Goal) *GoalsStatistics {
	stats := &GoalsStatistics{
		TotalGoals: len(goals),
		ByCategory: make(map[string]CategoryStats),
		ByStatus:   make(map[string]StatusStats),
	}

	for _, g := range goals {
		stats.TotalTarget += g.TargetAmount
		stats.TotalCurrent += g.CurrentAmount

		switch g.Status {
		case model.GoalStatusActive:
			stats.ActiveGoals++
		case model.GoalStatusCompleted:
			stats.CompletedGoals++
		}

		category := g.Category
		if category == "" {
			category = "other"
		}
		cs := stats.ByCategory[category]
		cs.Count++
		cs.TotalTarget += g.TargetAmount
		cs.TotalCurrent += g.CurrentAmount
		if g.Status == model.GoalStatusCompleted {
			cs.Completed++
		}
		stats.ByCategory[category] = cs

		ss := stats.ByStatus[string(g.Status)]
		ss.Count++
		ss.TotalTarget += g.TargetAmount
		ss.TotalCurrent += g.CurrentAmount
		stats.ByStatus[string(g.Status)] = ss
	}

	if stats.TotalTarget > 0 {
		stats.OverallProgress = stats.TotalCurrent / stats.TotalTarget * 100
		if stats.OverallProgress > 100 {
			stats.OverallProgress = 100
		}
	}
	return stats
}
