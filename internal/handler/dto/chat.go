package dto

import (
	"time"

	"github.com/billax/billax/internal/model"
)

// SendMessageRequest represents the request body for a chat message.
type SendMessageRequest struct {
	Message string `json:"message"`
	// AccountID narrows the assistant's context to one account.
	AccountID string `json:"account_id,omitempty"`
}

// ChatResponse represents one chat exchange in API responses.
type ChatResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatListResponse represents the chat history.
type ChatListResponse struct {
	Data  []ChatResponse `json:"data"`
	Count int            `json:"count"`
}

// ToChatResponse converts a Chat model to ChatResponse DTO.
func ToChatResponse(c *model.Chat) ChatResponse {
	return ChatResponse{
		ID:        c.ID,
		Message:   c.Message,
		Response:  c.Response,
		CreatedAt: c.CreatedAt,
	}
}

// ToChatListResponse converts a slice of Chat models.
func ToChatListResponse(chats []*model.Chat) ChatListResponse {
	data := make([]ChatResponse, len(chats))
	for i, c := range chats {
		data[i] = ToChatResponse(c)
	}
	return ChatListResponse{Data: data, Count: len(data)}
}
