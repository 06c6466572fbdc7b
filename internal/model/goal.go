package model

import (
	"math"
	"time"
)

// GoalStatus represents the lifecycle state of a goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusCancelled GoalStatus = "cancelled"
)

// IsValid checks if the goal status is a known value.
func (s GoalStatus) IsValid() bool {
	return s == GoalStatusActive || s == GoalStatusCompleted || s == GoalStatusCancelled
}

// GoalProgressManual and GoalProgressLinked select which bucket a progress
// update lands in.
const (
	GoalProgressManual = "manual"
	GoalProgressLinked = "linked"
)

// Goal represents a financial savings goal.
// Progress accumulates in two buckets: CurrentAmount (manual contributions)
// and LinkedAmount (funds reserved against a linked bank account).
type Goal struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	TargetAmount  float64    `json:"target_amount"`
	CurrentAmount float64    `json:"current_amount"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Category      string     `json:"category,omitempty"`
	Status        GoalStatus `json:"status"`

	LinkedAccountID string   `json:"linked_account_id,omitempty"`
	LinkedAmount    *float64 `json:"linked_amount,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Progress returns the completion percentage, capped at 100.
// Linked funds count toward progress alongside manual contributions.
func (g *Goal) Progress() float64 {
	if g.TargetAmount == 0 {
		return 0
	}
	total := g.CurrentAmount
	if g.LinkedAmount != nil {
		total += *g.LinkedAmount
	}
	return math.Min(total/g.TargetAmount*100, 100)
}

// DaysRemaining returns the number of days until the deadline,
// or nil when no deadline is set. Negative values mean the deadline passed.
func (g *Goal) DaysRemaining() *int {
	if g.Deadline == nil {
		return nil
	}
	days := int(math.Ceil(time.Until(*g.Deadline).Hours() / 24))
	return &days
}

// ApplyProgress adds amount to the selected bucket and marks the goal
// completed once progress reaches 100%.
func (g *Goal) ApplyProgress(amount float64, progressType string) {
	if progressType == GoalProgressLinked {
		current := 0.0
		if g.LinkedAmount != nil {
			current = *g.LinkedAmount
		}
		updated := current + amount
		g.LinkedAmount = &updated
	} else {
		g.CurrentAmount += amount
	}
	if g.Progress() >= 100 {
		g.Status = GoalStatusCompleted
	}
	g.UpdatedAt = time.Now().UTC()
}

// IsOverdue returns true for active goals whose deadline has passed.
func (g *Goal) IsOverdue() bool {
	if g.Deadline == nil {
		return false
	}
	return time.Now().After(*g.Deadline) && g.Status == GoalStatusActive
}
