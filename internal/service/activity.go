package service

import (
	"math"

	"viet-kconnect/internal/domain"
)

// ActivityAnalyzer derives an engagement summary from a user's aggregate
// counters. Pure, no error cases: missing counters are just zero.
type ActivityAnalyzer struct{}

// Activity tiers.
const (
	ActivityHigh   = "high"
	ActivityMedium = "medium"
	ActivityLow    = "low"
)

// ActivitySummary is the derived engagement profile for a user.
type ActivitySummary struct {
	ActivityLevel        string   `json:"activity_level"`
	CommunityEngagement  int      `json:"community_engagement"`
	ExpertiseAreas       []string `json:"expertise_areas"`
	TrustGrowthPotential int      `json:"trust_growth_potential"`
	RecommendedActions   []string `json:"recommended_actions"`
}

// AnalyzeUserActivity classifies activity volume, computes the helpful
// answer percentage, and suggests next actions in a fixed check order.
func (ActivityAnalyzer) AnalyzeUserActivity(user domain.User) ActivitySummary {
	summary := ActivitySummary{
		ActivityLevel:      ActivityLow,
		ExpertiseAreas:     []string{},
		RecommendedActions: []string{},
	}

	totalActivity := user.QuestionCount + user.AnswerCount
	switch {
	case totalActivity >= 50:
		summary.ActivityLevel = ActivityHigh
	case totalActivity >= 20:
		summary.ActivityLevel = ActivityMedium
	}

	// Engagement divides only when there are answers at all; no floored
	// denominator here, unlike the matching engine's helpfulness ratio.
	if user.AnswerCount > 0 {
		ratio := float64(user.HelpfulAnswerCount) / float64(user.AnswerCount)
		summary.CommunityEngagement = int(math.Round(ratio * 100))
	}

	if len(user.Specialties) > 0 {
		summary.ExpertiseAreas = append([]string(nil), user.Specialties...)
	}

	growth := user.ResidenceYears*50 + totalActivity*5
	if headroom := 1000 - user.TrustScore; headroom < growth {
		growth = headroom
	}
	summary.TrustGrowthPotential = growth

	// Recommended actions appear in check order, not severity order.
	if summary.ActivityLevel == ActivityLow {
		summary.RecommendedActions = append(summary.RecommendedActions, "더 많은 질문과 답변 참여")
	}
	if summary.CommunityEngagement < 70 {
		summary.RecommendedActions = append(summary.RecommendedActions, "도움되는 답변 작성하기")
	}
	if !user.IsVerified() {
		summary.RecommendedActions = append(summary.RecommendedActions, "이메일 인증 완료")
	}
	if len(summary.ExpertiseAreas) == 0 {
		summary.RecommendedActions = append(summary.RecommendedActions, "전문 분야 설정")
	}

	return summary
}
