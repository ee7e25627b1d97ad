package domain

import "time"

// Answer is a reply to a question. QualityScore is computed once at write
// time from content heuristics and author reputation.
//
// ResponseTimeHours is nil when the answer predates response tracking;
// quality evaluation then skips the speed bonus entirely.
type Answer struct {
	ID                string     `json:"id"`
	QuestionID        string     `json:"question_id"`
	AuthorID          string     `json:"author_id"`
	Content           string     `json:"content"`
	ResponseTimeHours *float64   `json:"response_time_hours,omitempty"`
	QualityScore      int        `json:"quality_score"`
	VoteScore         int        `json:"vote_score"`
	IsHelpful         bool       `json:"is_helpful"`
	IsAccepted        bool       `json:"is_accepted"`
	AcceptedAt        *time.Time `json:"accepted_at,omitempty"`
	Author            *User      `json:"author,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
