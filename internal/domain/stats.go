package domain

import "time"

// StatsOverview holds the raw community counters.
type StatsOverview struct {
	TotalUsers        int `json:"total_users"`
	TotalQuestions    int `json:"total_questions"`
	TotalAnswers      int `json:"total_answers"`
	TotalVotes        int `json:"total_votes"`
	ResolvedQuestions int `json:"resolved_questions"`
	AcceptedAnswers   int `json:"accepted_answers"`
	HelpfulAnswers    int `json:"helpful_answers"`
	TotalViews        int `json:"total_views"`
}

// CategoryCount is the number of questions in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// VoteStats breaks votes down by direction.
type VoteStats struct {
	Total        int `json:"total"`
	Up           int `json:"up"`
	Down         int `json:"down"`
	RatioPercent int `json:"ratio_percent"`
}

// CommunityStats is the full stats snapshot served to clients. The
// per-question averages are derived from the overview counters.
type CommunityStats struct {
	Overview              StatsOverview   `json:"overview"`
	AvgAnswersPerQuestion float64         `json:"avg_answers_per_question"`
	AvgViewsPerQuestion   int             `json:"avg_views_per_question"`
	Categories            []CategoryCount `json:"categories"`
	Votes                 VoteStats       `json:"votes"`
	TopUsers              []User          `json:"top_users"`
	PopularQuestions      []Question      `json:"popular_questions"`
	GeneratedAt           time.Time       `json:"generated_at"`
}
