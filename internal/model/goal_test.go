package model

import (
	"testing"
	"time"
)

func floatPtr(v float64) *float64 { return &v }

func TestGoal_Progress(t *testing.T) {
	t.Parallel()

	g := &Goal{TargetAmount: 1000, CurrentAmount: 250}
	if got := g.Progress(); got != 25 {
		t.Errorf("expected 25%%, got %v", got)
	}

	// Linked funds count toward progress.
	g.LinkedAmount = floatPtr(250)
	if got := g.Progress(); got != 50 {
		t.Errorf("expected 50%% with linked amount, got %v", got)
	}

	// Progress is capped at 100.
	g.CurrentAmount = 2000
	if got := g.Progress(); got != 100 {
		t.Errorf("expected cap at 100%%, got %v", got)
	}
}

func TestGoal_Progress_ZeroTarget(t *testing.T) {
	t.Parallel()

	g := &Goal{TargetAmount: 0, CurrentAmount: 100}
	if got := g.Progress(); got != 0 {
		t.Errorf("expected 0%% for zero target, got %v", got)
	}
}

func TestGoal_ApplyProgress_CompletesGoal(t *testing.T) {
	t.Parallel()

	g := &Goal{TargetAmount: 100, CurrentAmount: 90, Status: GoalStatusActive}
	g.ApplyProgress(10, GoalProgressManual)

	if g.CurrentAmount != 100 {
		t.Errorf("expected current amount 100, got %v", g.CurrentAmount)
	}
	if g.Status != GoalStatusCompleted {
		t.Errorf("expected goal to complete, got status %s", g.Status)
	}
}

func TestGoal_ApplyProgress_Linked(t *testing.T) {
	t.Parallel()

	g := &Goal{TargetAmount: 1000, Status: GoalStatusActive}
	g.ApplyProgress(100, GoalProgressLinked)
	g.ApplyProgress(50, GoalProgressLinked)

	if g.LinkedAmount == nil || *g.LinkedAmount != 150 {
		t.Errorf("expected linked amount 150, got %v", g.LinkedAmount)
	}
	if g.CurrentAmount != 0 {
		t.Errorf("linked progress should not touch current amount, got %v", g.CurrentAmount)
	}
	if g.Status != GoalStatusActive {
		t.Errorf("expected goal to stay active, got %s", g.Status)
	}
}

func TestGoal_IsOverdue(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)

	cases := []struct {
		name string
		goal Goal
		want bool
	}{
		{"no deadline", Goal{Status: GoalStatusActive}, false},
		{"future deadline", Goal{Status: GoalStatusActive, Deadline: &future}, false},
		{"past deadline active", Goal{Status: GoalStatusActive, Deadline: &past}, true},
		{"past deadline completed", Goal{Status: GoalStatusCompleted, Deadline: &past}, false},
	}

	for _, tc := range cases {
		if got := tc.goal.IsOverdue(); got != tc.want {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestGoalStatus_IsValid(t *testing.T) {
	t.Parallel()

	for _, s := range []GoalStatus{GoalStatusActive, GoalStatusCompleted, GoalStatusCancelled} {
		if !s.IsValid() {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if GoalStatus("archived").IsValid() {
		t.Error("expected 'archived' to be invalid")
	}
}

func TestAccount_SpendableBalance(t *testing.T) {
	t.Parallel()

	a := &Account{AvailableBalance: floatPtr(120), CurrentBalance: floatPtr(150)}
	if got := a.SpendableBalance(); got != 120 {
		t.Errorf("expected available balance to win, got %v", got)
	}

	a.AvailableBalance = nil
	if got := a.SpendableBalance(); got != 150 {
		t.Errorf("expected fallback to current balance, got %v", got)
	}

	a.CurrentBalance = nil
	if got := a.SpendableBalance(); got != 0 {
		t.Errorf("expected zero with no balances, got %v", got)
	}
}
