package domain

import "time"

// Vote target types.
const (
	VoteTargetQuestion = "question"
	VoteTargetAnswer   = "answer"
)

// Vote types. A repeated vote of the same type toggles the vote off.
const (
	VoteUp     = "up"
	VoteDown   = "down"
	VoteCancel = "cancel"
)

// Vote is a single up/down vote by a user on a question or answer.
type Vote struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	VoteType   string    `json:"vote_type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
