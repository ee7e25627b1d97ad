package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"viet-kconnect/internal/domain"
	"viet-kconnect/internal/repository"
)

// MatchService runs the matching engine over the expert pool and shapes
// the result for API consumers.
type MatchService struct {
	logger  *zap.Logger
	experts repository.ExpertRepository
	engine  MatchingEngine
}

func NewMatchService(logger *zap.Logger, experts repository.ExpertRepository, engine MatchingEngine) *MatchService {
	if engine.now == nil {
		engine = NewMatchingEngine()
	}
	return &MatchService{logger: logger, experts: experts, engine: engine}
}

var ErrMatchRequest = errors.New("question and category are required")

// MatchRequest is the caller-supplied question to match experts for.
type MatchRequest struct {
	Question string   `json:"question"`
	Category string   `json:"category"`
	Urgency  string   `json:"urgency"`
	Tags     []string `json:"tags"`
}

// MatchingCriteria echoes the fixed score weights so clients can render
// an explanation of how matches were ranked.
type MatchingCriteria struct {
	SpecialtyMatch string `json:"specialty_match"`
	TrustScore     string `json:"trust_score"`
	ResidenceYears string `json:"residence_years"`
	HelpfulRatio   string `json:"helpful_ratio"`
	BadgeBonus     string `json:"badge_bonus"`
	RecentActivity string `json:"recent_activity"`
}

// MatchAnalysis summarizes a matching run.
type MatchAnalysis struct {
	TotalExpertsAnalyzed int              `json:"total_experts_analyzed"`
	MatchesFound         int              `json:"matches_found"`
	AvgMatchScore        int              `json:"avg_match_score"`
	CategoryExperts      int              `json:"category_experts"`
	MatchingCriteria     MatchingCriteria `json:"matching_criteria"`
}

// ExpertCard is an expert match enriched with display strings.
type ExpertCard struct {
	Expert                domain.User `json:"expert"`
	Score                 int         `json:"score"`
	MatchReasons          []string    `json:"match_reasons"`
	EstimatedResponseTime string      `json:"estimated_response_time"`
	MatchConfidence       string      `json:"match_confidence"`
	SuccessRate           string      `json:"success_rate"`
}

// QuestionSummary echoes the matched question back to the client.
type QuestionSummary struct {
	Category     string   `json:"category"`
	Urgency      string   `json:"urgency"`
	Tags         []string `json:"tags"`
	AIConfidence string   `json:"ai_confidence"`
}

// MatchResponse is the full matching result envelope.
type MatchResponse struct {
	Matches         []ExpertCard    `json:"matches"`
	Analysis        MatchAnalysis   `json:"analysis"`
	QuestionSummary QuestionSummary `json:"question_summary"`
}

const expertPoolLimit = 200

// MatchExperts scores the expert pool against the request and returns
// the enriched matches with run analysis.
func (s *MatchService) MatchExperts(ctx context.Context, req MatchRequest) (MatchResponse, error) {
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.Category) == "" {
		return MatchResponse{}, ErrMatchRequest
	}
	if s.experts == nil {
		return MatchResponse{}, errors.New("match service not configured")
	}

	pool, err := s.experts.ListCandidates(ctx, expertPoolLimit)
	if err != nil {
		return MatchResponse{}, err
	}

	urgency := normalizeUrgency(req.Urgency)
	question := domain.Question{
		Title:    req.Question,
		Category: req.Category,
		Tags:     req.Tags,
		Urgency:  urgency,
	}
	matches, err := s.engine.FindExpertMatches(&question, pool)
	if err != nil {
		return MatchResponse{}, err
	}

	cards := make([]ExpertCard, 0, len(matches))
	for _, m := range matches {
		cards = append(cards, ExpertCard{
			Expert:                m.Expert,
			Score:                 m.Score,
			MatchReasons:          m.MatchReasons,
			EstimatedResponseTime: fmt.Sprintf("%g시간", m.Expert.AvgResponseTimeHours),
			MatchConfidence:       fmt.Sprintf("%d%%", m.Score),
			SuccessRate:           fmt.Sprintf("%g%%", m.Expert.ResponseRate),
		})
	}

	confidence := "medium"
	if len(matches) > 0 {
		confidence = "high"
	}

	if s.logger != nil {
		s.logger.Info("expert matching run",
			zap.String("category", req.Category),
			zap.Int("pool_size", len(pool)),
			zap.Int("matches", len(matches)))
	}

	return MatchResponse{
		Matches:         cards,
		Analysis:        s.buildAnalysis(req.Category, pool, matches),
		QuestionSummary: QuestionSummary{Category: req.Category, Urgency: urgency, Tags: req.Tags, AIConfidence: confidence},
	}, nil
}

func (s *MatchService) buildAnalysis(category string, pool []domain.User, matches []ExpertMatch) MatchAnalysis {
	avg := 0
	if len(matches) > 0 {
		sum := 0
		for _, m := range matches {
			sum += m.Score
		}
		avg = int(math.Round(float64(sum) / float64(len(matches))))
	}

	categoryExperts := 0
	lowerCategory := strings.ToLower(category)
	for _, expert := range pool {
		for _, specialty := range expert.Specialties {
			if specialty != "" && strings.Contains(lowerCategory, strings.ToLower(specialty)) {
				categoryExperts++
				break
			}
		}
	}

	return MatchAnalysis{
		TotalExpertsAnalyzed: len(pool),
		MatchesFound:         len(matches),
		AvgMatchScore:        avg,
		CategoryExperts:      categoryExperts,
		MatchingCriteria: MatchingCriteria{
			SpecialtyMatch: "40%",
			TrustScore:     "20%",
			ResidenceYears: "15%",
			HelpfulRatio:   "10%",
			BadgeBonus:     "10%",
			RecentActivity: "5%",
		},
	}
}
