package model

import "time"

// Chat represents one exchange in a user's conversation with the
// financial assistant: the user message and the assistant's reply.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
