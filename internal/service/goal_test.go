package service

import (
	"errors"
	"testing"
	"time"

	"github.com/billax/billax/internal/model"
)

func TestParseDeadline(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

	t.Run("empty is nil", func(t *testing.T) {
		t.Parallel()

		d, err := parseDeadline("", now)
		if err != nil || d != nil {
			t.Errorf("parseDeadline(\"\") = %v, %v", d, err)
		}
	})

	t.Run("future accepted", func(t *testing.T) {
		t.Parallel()

		d, err := parseDeadline("2024-12-31", now)
		if err != nil {
			t.Fatalf("parseDeadline() error = %v", err)
		}
		if d.Format(dateLayout) != "2024-12-31" {
			t.Errorf("deadline = %v", d)
		}
	})

	t.Run("today accepted", func(t *testing.T) {
		t.Parallel()

		if _, err := parseDeadline("2024-06-01", now); err != nil {
			t.Errorf("today's deadline should be valid, got %v", err)
		}
	})

	t.Run("past rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := parseDeadline("2024-05-31", now); !errors.Is(err, ErrDeadlineInPast) {
			t.Errorf("parseDeadline() error = %v, want ErrDeadlineInPast", err)
		}
	})

	t.Run("bad format rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := parseDeadline("31/12/2024", now); !errors.Is(err, ErrInvalidDeadline) {
			t.Errorf("parseDeadline() error = %v, want ErrInvalidDeadline", err)
		}
	})
}

func TestValidCategory(t *testing.T) {
	t.Parallel()

	for _, c := range []string{"savings", "investment", "debt", "emergency", "vacation", "education", "bills", "other"} {
		if !validCategory(c) {
			t.Errorf("%q should be a valid category", c)
		}
	}
	if validCategory("lottery") {
		t.Error("unknown category should be invalid")
	}
}

func TestFilterGoalsByAmount(t *testing.T) {
	t.Parallel()

	goals := []*model.Goal{
		{ID: "a", TargetAmount: 100},
		{ID: "b", TargetAmount: 500},
		{ID: "c", TargetAmount: 1000},
	}

	if got := FilterGoalsByAmount(goals, nil, nil); len(got) != 3 {
		t.Errorf("no bounds should keep all goals, got %d", len(got))
	}
	if got := FilterGoalsByAmount(goals, floatPtr(200), nil); len(got) != 2 {
		t.Errorf("min bound: got %d goals", len(got))
	}
	if got := FilterGoalsByAmount(goals, nil, floatPtr(600)); len(got) != 2 {
		t.Errorf("max bound: got %d goals", len(got))
	}
	got := FilterGoalsByAmount(goals, floatPtr(200), floatPtr(600))
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("both bounds: got %+v", got)
	}
}

func TestComputeGoalsStatistics(t *testing.T) {
	t.Parallel()

	goals := []*model.Goal{
		{Category: "savings", Status: model.GoalStatusActive, TargetAmount: 1000, CurrentAmount: 250},
		{Category: "savings", Status: model.GoalStatusCompleted, TargetAmount: 500, CurrentAmount: 500},
		{Category: "", Status: model.GoalStatusCancelled, TargetAmount: 200, CurrentAmount: 50},
	}

	stats := ComputeGoalsStatistics(goals)

	if stats.TotalGoals != 3 || stats.ActiveGoals != 1 || stats.CompletedGoals != 1 {
		t.Errorf("counts wrong: %+v", stats)
	}
	if stats.TotalTarget != 1700 || stats.TotalCurrent != 800 {
		t.Errorf("totals wrong: target=%f current=%f", stats.TotalTarget, stats.TotalCurrent)
	}

	savings := stats.ByCategory["savings"]
	if savings.Count != 2 || savings.Completed != 1 || savings.TotalTarget != 1500 {
		t.Errorf("savings stats = %+v", savings)
	}
	// Uncategorized goals land in "other"
	if stats.ByCategory["other"].Count != 1 {
		t.Errorf("other stats = %+v", stats.ByCategory["other"])
	}

	if stats.ByStatus["active"].Count != 1 || stats.ByStatus["cancelled"].Count != 1 {
		t.Errorf("status stats = %+v", stats.ByStatus)
	}

	wantProgress := 800.0 / 1700.0 * 100
	if diff := stats.OverallProgress - wantProgress; diff > 0.001 || diff < -0.001 {
		t.Errorf("OverallProgress = %f, want %f", stats.OverallProgress, wantProgress)
	}
}

func TestComputeGoalsStatistics_Empty(t *testing.T) {
	t.Parallel()

	stats := ComputeGoalsStatistics(nil)
	if stats.TotalGoals != 0 || stats.OverallProgress != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
}
