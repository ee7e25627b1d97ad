package domain

import "time"

// Notification types.
const (
	NotificationNewAnswer      = "new_answer"
	NotificationAnswerAccepted = "answer_accepted"
	NotificationVoteReceived   = "vote_received"
)

// Notification is an in-app notification for a user. ReadAt is nil while
// the notification is unread.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	ReadAt    *time.Time        `json:"read_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
