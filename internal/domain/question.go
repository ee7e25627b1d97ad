package domain

import "time"

// Question is a community question. Category and tags drive expert matching.
type Question struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"author_id"`
	Title       string    `json:"title"`
	Content     string    `json:"content,omitempty"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags,omitempty"`
	Urgency     string    `json:"urgency,omitempty"`
	ViewCount   int       `json:"view_count"`
	AnswerCount int       `json:"answer_count"`
	VoteScore   int       `json:"vote_score"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
