package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/billax/billax/internal/model"
)

// ErrGoalNotFound is returned when a goal lookup matches nothing.
var ErrGoalNotFound = errors.New("goal not found")

const goalColumns = `id, user_id, title, COALESCE(description, ''), target_amount,
	current_amount, deadline, COALESCE(category, ''), status,
	COALESCE(linked_account_id, ''), linked_amount, created_at, updated_at`

func scanGoal(row pgx.Row) (*model.Goal, error) {
	var g model.Goal
	err := row.Scan(
		&g.ID,
		&g.UserID,
		&g.Title,
		&g.Description,
		&g.TargetAmount,
		&g.CurrentAmount,
		&g.Deadline,
		&g.Category,
		&g.Status,
		&g.LinkedAccountID,
		&g.LinkedAmount,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func collectGoals(rows pgx.Rows) ([]*model.Goal, error) {
	defer rows.Close()

	var goals []*model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// CreateGoal inserts a new goal.
func (r *Repository) CreateGoal(ctx context.Context, g *model.Goal) error {
	query := `
		INSERT INTO goals (id, user_id, title, description, target_amount, current_amount,
			deadline, category, status, linked_account_id, linked_amount, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), $9, NULLIF($10, ''), $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		g.ID,
		g.UserID,
		g.Title,
		g.Description,
		g.TargetAmount,
		g.CurrentAmount,
		g.Deadline,
		g.Category,
		g.Status,
		g.LinkedAccountID,
		g.LinkedAmount,
		g.CreatedAt,
		g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// GoalFilter narrows ListGoals results.
type GoalFilter struct {
	Status   model.GoalStatus
	Category string
	// Search matches title and description, case-insensitive.
	Search string
}

// ListGoals returns the user's goals, newest first.
func (r *Repository) ListGoals(ctx context.Context, userID string, filter GoalFilter) ([]*model.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1`
	args := []any{userID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return collectGoals(rows)
}

// ListOverdueGoals returns active goals whose deadline has passed.
func (r *Repository) ListOverdueGoals(ctx context.Context, userID string) ([]*model.Goal, error) {
	query := `SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1 AND status = $2 AND deadline IS NOT NULL AND deadline < NOW()
		ORDER BY deadline`

	rows, err := r.pool.Query(ctx, query, userID, model.GoalStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue goals: %w", err)
	}
	return collectGoals(rows)
}

// ListGoalsNearDeadline returns active goals whose deadline falls within
// the next given number of days.
func (r *Repository) ListGoalsNearDeadline(ctx context.Context, userID string, days int) ([]*model.Goal, error) {
	query := `SELECT ` + goalColumns + `
		FROM goals
		WHERE user_id = $1 AND status = $2 AND deadline IS NOT NULL
			AND deadline >= NOW() AND deadline < NOW() + ($3 * INTERVAL '1 day')
		ORDER BY deadline`

	rows, err := r.pool.Query(ctx, query, userID, model.GoalStatusActive, days)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals near deadline: %w", err)
	}
	return collectGoals(rows)
}

// GetGoalByID retrieves a single goal scoped to its owner.
func (r *Repository) GetGoalByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 AND id = $2`

	g, err := scanGoal(r.pool.QueryRow(ctx, query, userID, goalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

// UpdateGoal persists mutable goal fields.
func (r *Repository) UpdateGoal(ctx context.Context, g *model.Goal) error {
	query := `
		UPDATE goals SET
			title = $3,
			description = NULLIF($4, ''),
			target_amount = $5,
			current_amount = $6,
			deadline = $7,
			category = NULLIF($8, ''),
			status = $9,
			linked_account_id = NULLIF($10, ''),
			linked_amount = $11,
			updated_at = NOW()
		WHERE user_id = $1 AND id = $2
	`

	tag, err := r.pool.Exec(ctx, query,
		g.UserID,
		g.ID,
		g.Title,
		g.Description,
		g.TargetAmount,
		g.CurrentAmount,
		g.Deadline,
		g.Category,
		g.Status,
		g.LinkedAccountID,
		g.LinkedAmount,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// DeleteGoal removes a goal owned by the user.
func (r *Repository) DeleteGoal(ctx context.Context, userID, goalID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM goals WHERE user_id = $1 AND id = $2`, userID, goalID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

// SumLinkedAmount returns the total amount the user's goals have reserved
// against one account, optionally excluding a goal (when updating it).
func (r *Repository) SumLinkedAmount(ctx context.Context, userID, accountID, excludeGoalID string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(linked_amount), 0)
		FROM goals
		WHERE user_id = $1 AND linked_account_id = $2 AND id <> $3
	`

	var total float64
	if err := r.pool.QueryRow(ctx, query, userID, accountID, excludeGoalID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum linked amounts: %w", err)
	}
	return total, nil
}
