package dto

import (
	"time"

	"github.com/billax/billax/internal/model"
)

// CreateGoalRequest represents the request body for creating a goal.
type CreateGoalRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	TargetAmount float64 `json:"target_amount"`
	// Deadline is YYYY-MM-DD, empty for no deadline.
	Deadline        string   `json:"deadline,omitempty"`
	Category        string   `json:"category,omitempty"`
	LinkedAccountID string   `json:"linked_account_id,omitempty"`
	LinkedAmount    *float64 `json:"linked_amount,omitempty"`
}

// UpdateGoalRequest represents the request body for a partial goal update.
// Absent fields are left untouched.
type UpdateGoalRequest struct {
	Title           *string  `json:"title,omitempty"`
	Description     *string  `json:"description,omitempty"`
	TargetAmount    *float64 `json:"target_amount,omitempty"`
	Deadline        *string  `json:"deadline,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Status          *string  `json:"status,omitempty"`
	LinkedAccountID *string  `json:"linked_account_id,omitempty"`
	LinkedAmount    *float64 `json:"linked_amount,omitempty"`
}

// GoalProgressRequest represents the request body for a progress update.
type GoalProgressRequest struct {
	Amount       float64 `json:"amount"`
	ProgressType string  `json:"progress_type,omitempty"`
}

// GoalResponse represents a goal in API responses.
type GoalResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	TargetAmount    float64   `json:"target_amount"`
	CurrentAmount   float64   `json:"current_amount"`
	LinkedAmount    *float64  `json:"linked_amount,omitempty"`
	LinkedAccountID string    `json:"linked_account_id,omitempty"`
	Deadline        string    `json:"deadline,omitempty"`
	Category        string    `json:"category,omitempty"`
	Status          string    `json:"status"`
	Progress        float64   `json:"progress"`
	DaysRemaining   *int      `json:"days_remaining,omitempty"`
	IsOverdue       bool      `json:"is_overdue"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GoalListResponse represents a list of goals.
type GoalListResponse struct {
	Data  []GoalResponse `json:"data"`
	Count int            `json:"count"`
}

// GoalProgressDetailResponse breaks a goal's progress into its buckets.
type GoalProgressDetailResponse struct {
	GoalID          string   `json:"goal_id"`
	TargetAmount    float64  `json:"target_amount"`
	CurrentAmount   float64  `json:"current_amount"`
	LinkedAmount    *float64 `json:"linked_amount,omitempty"`
	Progress        float64  `json:"progress"`
	RemainingAmount float64  `json:"remaining_amount"`
	DaysRemaining   *int     `json:"days_remaining,omitempty"`
	IsOverdue       bool     `json:"is_overdue"`
	Status          string   `json:"status"`
}

// ToGoalProgressDetail converts a Goal model to its progress breakdown.
func ToGoalProgressDetail(g *model.Goal) GoalProgressDetailResponse {
	total := g.CurrentAmount
	if g.LinkedAmount != nil {
		total += *g.LinkedAmount
	}
	remaining := g.TargetAmount - total
	if remaining < 0 {
		remaining = 0
	}
	return GoalProgressDetailResponse{
		GoalID:          g.ID,
		TargetAmount:    g.TargetAmount,
		CurrentAmount:   g.CurrentAmount,
		LinkedAmount:    g.LinkedAmount,
		Progress:        g.Progress(),
		RemainingAmount: remaining,
		DaysRemaining:   g.DaysRemaining(),
		IsOverdue:       g.IsOverdue(),
		Status:          string(g.Status),
	}
}

// GoalCategoryResponse represents a selectable goal category.
type GoalCategoryResponse struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ToGoalResponse converts a Goal model to GoalResponse DTO.
func ToGoalResponse(g *model.Goal) GoalResponse {
	resp := GoalResponse{
		ID:              g.ID,
		Title:           g.Title,
		Description:     g.Description,
		TargetAmount:    g.TargetAmount,
		CurrentAmount:   g.CurrentAmount,
		LinkedAmount:    g.LinkedAmount,
		LinkedAccountID: g.LinkedAccountID,
		Category:        g.Category,
		Status:          string(g.Status),
		Progress:        g.Progress(),
		DaysRemaining:   g.DaysRemaining(),
		IsOverdue:       g.IsOverdue(),
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
	if g.Deadline != nil {
		resp.Deadline = g.Deadline.Format(time.DateOnly)
	}
	return resp
}

// ToGoalListResponse converts a slice of Goal models.
func ToGoalListResponse(goals []*model.Goal) GoalListResponse {
	data := make([]GoalResponse, len(goals))
	for i, g := range goals {
		data[i] = ToGoalResponse(g)
	}
	return GoalListResponse{Data: data, Count: len(data)}
}
