package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/billax/billax/internal/ai"
	"github.com/billax/billax/internal/cache"
	"github.com/billax/billax/internal/metrics"
	"github.com/billax/billax/internal/model"
	"github.com/billax/billax/internal/repository"
)

// Chat service errors.
var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageRequired = errors.New("message is required")
)

const contextTimestampLayout = "2006-01-02 15:04:05"

// ChatService runs the financial assistant: it assembles the user's
// financial context, replays the conversation, and stores each exchange.
type ChatService struct {
	repo    *repository.Repository
	cache   *cache.Cache
	ai      *ai.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewChatService creates a new ChatService.
func NewChatService(repo *repository.Repository, c *cache.Cache, aiClient *ai.Client, logger *slog.Logger, recorder metrics.Recorder) *ChatService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ChatService{
		repo:    repo,
		cache:   c,
		ai:      aiClient,
		logger:  logger,
		metrics: recorder,
	}
}

// buildFinancialContext assembles the account and transaction snapshot fed
// to the model. A selected account narrows both lists to that account.
// Failures degrade to a context with a note instead of failing the chat.
func (s *ChatService) buildFinancialContext(ctx context.Context, userID, selectedAccountID string) ai.FinancialContext {
	fc := ai.FinancialContext{
		Timestamp:         time.Now().UTC().Format(contextTimestampLayout),
		SelectedAccountID: selectedAccountID,
	}

	if found, err := s.cache.GetFinancialContext(ctx, userID, selectedAccountID, &fc); err == nil && found {
		return fc
	}

	accounts, err := s.repo.ListAccountsByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load accounts for chat context", slog.String("error", err.Error()))
		fc.Note = "financial data unavailable"
		return fc
	}
	if len(accounts) == 0 {
		fc.Note = "no linked accounts"
		return fc
	}

	filter := repository.TransactionFilter{}
	if selectedAccountID != "" {
		var selected *model.Account
		for _, a := range accounts {
			if a.ID == selectedAccountID || a.PlaidAccountID == selectedAccountID {
				selected = a
				break
			}
		}
		if selected != nil {
			accounts = []*model.Account{selected}
			filter.AccountID = selected.PlaidAccountID
		}
	}

	for _, a := range accounts {
		fc.Accounts = append(fc.Accounts, ai.AccountSnapshot{
			Name:             a.Name,
			Mask:             a.Mask,
			Type:             a.Type,
			AvailableBalance: a.AvailableBalance,
			CurrentBalance:   a.CurrentBalance,
		})
	}

	txs, err := s.repo.ListTransactions(ctx, userID, filter)
	if err != nil {
		s.logger.Warn("failed to load transactions for chat context", slog.String("error", err.Error()))
	}
	for _, t := range txs {
		fc.Transactions = append(fc.Transactions, ai.TransactionSnapshot{
			Name:         t.Name,
			MerchantName: t.MerchantName,
			Amount:       t.Amount,
			Date:         t.Date.Format(dateLayout),
		})
	}

	if err := s.cache.SetFinancialContext(ctx, userID, selectedAccountID, fc); err != nil {
		s.logger.Warn("failed to cache financial context", slog.String("error", err.Error()))
	}
	return fc
}

// SendMessage runs one assistant round trip: build context, replay
// history, call the model, clean and store the reply. Without an API key
// a canned fallback reply is stored instead.
func (s *ChatService) SendMessage(ctx context.Context, userID, message, selectedAccountID string) (*model.Chat, error) {
	if message == "" {
		return nil, ErrMessageRequired
	}

	start := time.Now()
	fc := s.buildFinancialContext(ctx, userID, selectedAccountID)

	var response string
	if !s.ai.Enabled() {
		response = ai.FallbackResponse(message)
		s.metrics.IncChatMessage("fallback")
	} else {
		// With a single account in context, anchor the question to it so
		// the model does not answer with totals.
		userMessage := message
		if len(fc.Accounts) == 1 {
			userMessage = fmt.Sprintf("For the account %s, %s", fc.Accounts[0].Name, message)
		}

		messages := []ai.Message{{Role: "system", Content: ai.BuildSystemPrompt(fc)}}

		history, err := s.repo.ListChatsByUser(ctx, userID)
		if err != nil {
			s.logger.Warn("failed to load chat history", slog.String("error", err.Error()))
		}
		for _, h := range history {
			messages = append(messages,
				ai.Message{Role: "user", Content: h.Message},
				ai.Message{Role: "assistant", Content: h.Response},
			)
		}
		messages = append(messages, ai.Message{Role: "user", Content: userMessage})

		raw, err := s.ai.Complete(ctx, messages)
		if err != nil {
			s.metrics.IncChatMessage("failure")
			return nil, fmt.Errorf("assistant request failed: %w", err)
		}
		response = ai.CleanResponse(raw)
		s.metrics.IncChatMessage("success")
	}

	now := time.Now().UTC()
	chat := &model.Chat{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Message:   message,
		Response:  response,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to store chat: %w", err)
	}

	s.metrics.ObserveChatDuration(time.Since(start))
	return chat, nil
}

// History returns the user's conversation, oldest first.
func (s *ChatService) History(ctx context.Context, userID string) ([]*model.Chat, error) {
	return s.repo.ListChatsByUser(ctx, userID)
}

// Delete removes one exchange owned by the user.
func (s *ChatService) Delete(ctx context.Context, userID, chatID string) error {
	if err := s.repo.DeleteChat(ctx, userID, chatID); err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			return ErrChatNotFound
		}
		return err
	}
	return nil
}

// DeleteAll clears the user's whole conversation.
func (s *ChatService) DeleteAll(ctx context.Context, userID string) error {
	_, err := s.repo.DeleteChatsByUser(ctx, userID)
	return err
}
