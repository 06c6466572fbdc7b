package service

import (
	"testing"

	"github.com/billax/billax/internal/model"
)

func floatPtr(f float64) *float64 { return &f }

func TestSummarizeAccounts(t *testing.T) {
	t.Parallel()

	accounts := []*model.Account{
		{Type: "depository", CurrentBalance: floatPtr(1000), AvailableBalance: floatPtr(900)},
		{Type: "depository", CurrentBalance: floatPtr(500), AvailableBalance: floatPtr(500)},
		{Type: "credit", CurrentBalance: floatPtr(-200), Limit: floatPtr(2000)},
	}

	summary := SummarizeAccounts(accounts)

	if summary.TotalAccounts != 3 {
		t.Errorf("TotalAccounts = %d, want 3", summary.TotalAccounts)
	}
	if summary.TotalBalance != 1300 {
		t.Errorf("TotalBalance = %f, want 1300", summary.TotalBalance)
	}

	depository := summary.AccountsByType["depository"]
	if depository.Count != 2 || depository.TotalBalance != 1500 {
		t.Errorf("depository summary = %+v", depository)
	}
	credit := summary.AccountsByType["credit"]
	if credit.Count != 1 || credit.TotalBalance != -200 {
		t.Errorf("credit summary = %+v", credit)
	}

	if summary.AccountsByStatus.Active.Count != 2 {
		t.Errorf("active count = %d, want 2", summary.AccountsByStatus.Active.Count)
	}
	if summary.AccountsByStatus.Pending.Count != 1 {
		t.Errorf("pending count = %d, want 1", summary.AccountsByStatus.Pending.Count)
	}
	if summary.AccountsByStatus.Pending.TotalBalance != -200 {
		t.Errorf("pending balance = %f, want -200", summary.AccountsByStatus.Pending.TotalBalance)
	}

	if summary.BalanceTrend.Available != 1400 {
		t.Errorf("trend available = %f, want 1400", summary.BalanceTrend.Available)
	}
	if summary.BalanceTrend.Current != 1300 {
		t.Errorf("trend current = %f, want 1300", summary.BalanceTrend.Current)
	}
	if summary.BalanceTrend.Limit != 2000 {
		t.Errorf("trend limit = %f, want 2000", summary.BalanceTrend.Limit)
	}
}

func TestSummarizeAccounts_NilBalances(t *testing.T) {
	t.Parallel()

	summary := SummarizeAccounts([]*model.Account{{Type: "depository"}})

	if summary.TotalBalance != 0 {
		t.Errorf("TotalBalance = %f, want 0", summary.TotalBalance)
	}
	// Zero balance counts as active
	if summary.AccountsByStatus.Active.Count != 1 {
		t.Errorf("active count = %d, want 1", summary.AccountsByStatus.Active.Count)
	}
}
