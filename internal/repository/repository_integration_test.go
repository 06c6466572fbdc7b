package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/billax/billax/internal/model"
	"github.com/billax/billax/internal/testutil"
)

// setupRepo connects to the test database, resets the schema, and
// serializes access across packages. Skips unless TEST_DATABASE_URL is set.
func setupRepo(t *testing.T) *Repository {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "TEST_DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	repo, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	t.Cleanup(func() { _ = unlock() })

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo
}

func createUser(t *testing.T, repo *Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t, testutil.UniqueEmail("it"))
	if err := repo.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestUserLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	user := createUser(t, repo)

	got, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Email != user.Email {
		t.Errorf("email = %q, want %q", got.Email, user.Email)
	}

	byEmail, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("id = %q, want %q", byEmail.ID, user.ID)
	}

	// Duplicate email rejected
	dup := testutil.NewTestUser(t, user.Email)
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Errorf("duplicate email error = %v, want ErrEmailExists", err)
	}

	// Plaid token round trip, including clearing
	if err := repo.SetPlaidAccessToken(ctx, user.ID, "access-token-1"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	got, _ = repo.GetUserByID(ctx, user.ID)
	if !got.PlaidLinked() {
		t.Error("user should be linked after setting token")
	}
	if err := repo.SetPlaidAccessToken(ctx, user.ID, ""); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	got, _ = repo.GetUserByID(ctx, user.ID)
	if got.PlaidLinked() {
		t.Error("user should not be linked after clearing token")
	}
}

func TestAccountUpsert(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	user := createUser(t, repo)
	account := testutil.NewTestAccount(t, user.ID)

	if err := repo.UpsertAccount(ctx, account); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Second upsert with the same plaid_account_id updates in place
	updated := *account
	updated.ID = ulid.Make().String()
	newBalance := 2000.0
	updated.CurrentBalance = &newBalance
	if err := repo.UpsertAccount(ctx, &updated); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	accounts, err := repo.ListAccountsByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("len = %d, want 1 (upsert should not duplicate)", len(accounts))
	}
	if accounts[0].CurrentBalance == nil || *accounts[0].CurrentBalance != 2000.0 {
		t.Errorf("current balance not updated: %v", accounts[0].CurrentBalance)
	}

	deleted, err := repo.DeleteAccountsByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}

func TestTransactionUpsertAndSummary(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	user := createUser(t, repo)

	now := time.Now().UTC()
	mk := func(amount float64, pending bool) *model.Transaction {
		return &model.Transaction{
			ID:                 ulid.Make().String(),
			PlaidTransactionID: testutil.UniqueID("plaid-tx"),
			AccountID:          "plaid-acc-1",
			UserID:             user.ID,
			Name:               "TEST TX",
			Amount:             amount,
			Date:               now,
			Categories:         []string{"Food and Drink", "Restaurants"},
			PaymentChannel:     "in store",
			Pending:            pending,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
	}

	if err := repo.UpsertTransaction(ctx, mk(25.50, false)); err != nil {
		t.Fatalf("upsert outflow: %v", err)
	}
	if err := repo.UpsertTransaction(ctx, mk(-100, false)); err != nil {
		t.Fatalf("upsert inflow: %v", err)
	}
	if err := repo.UpsertTransaction(ctx, mk(10, true)); err != nil {
		t.Fatalf("upsert pending: %v", err)
	}

	summary, err := repo.GetTransactionSummary(ctx, user.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Count != 3 {
		t.Errorf("count = %d, want 3", summary.Count)
	}
	if summary.TotalSpent != 35.50 {
		t.Errorf("total spent = %v, want 35.50", summary.TotalSpent)
	}
	if summary.TotalReceived != 100 {
		t.Errorf("total received = %v, want 100", summary.TotalReceived)
	}
	if summary.PendingCount != 1 {
		t.Errorf("pending = %d, want 1", summary.PendingCount)
	}

	// Categories round trip through text[]
	list, err := repo.ListTransactions(ctx, user.ID, TransactionFilter{Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if len(list[0].Categories) != 2 {
		t.Errorf("categories = %v, want 2 entries", list[0].Categories)
	}
}

func TestGoalLinkedAmounts(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	user := createUser(t, repo)
	account := testutil.NewTestAccount(t, user.ID)
	if err := repo.UpsertAccount(ctx, account); err != nil {
		t.Fatalf("account: %v", err)
	}

	linked := 300.0
	goal := testutil.NewTestGoal(t, user.ID)
	goal.LinkedAccountID = account.ID
	goal.LinkedAmount = &linked
	if err := repo.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	other := testutil.NewTestGoal(t, user.ID)
	otherLinked := 150.0
	other.LinkedAccountID = account.ID
	other.LinkedAmount = &otherLinked
	if err := repo.CreateGoal(ctx, other); err != nil {
		t.Fatalf("create second goal: %v", err)
	}

	sum, err := repo.SumLinkedAmount(ctx, user.ID, account.ID, "")
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum != 450 {
		t.Errorf("sum = %v, want 450", sum)
	}

	// Excluding one goal drops its share
	sum, err = repo.SumLinkedAmount(ctx, user.ID, account.ID, goal.ID)
	if err != nil {
		t.Fatalf("sum excluding: %v", err)
	}
	if sum != 150 {
		t.Errorf("sum = %v, want 150", sum)
	}
}

func TestChatHistoryOrder(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	user := createUser(t, repo)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		c := &model.Chat{
			ID:        ulid.Make().String(),
			UserID:    user.ID,
			Message:   "question",
			Response:  "answer",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.CreateChat(ctx, c); err != nil {
			t.Fatalf("create chat: %v", err)
		}
	}

	chats, err := repo.ListChatsByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(chats) != 3 {
		t.Fatalf("len = %d, want 3", len(chats))
	}
	for i := 1; i < len(chats); i++ {
		if chats[i].CreatedAt.Before(chats[i-1].CreatedAt) {
			t.Errorf("history not in chronological order at %d", i)
		}
	}

	deleted, err := repo.DeleteChatsByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}
}
