package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"viet-kconnect/internal/domain"
	"viet-kconnect/internal/repository"
)

// Window and sizes for the highlighted sections of the stats snapshot.
const (
	statsPopularWindow = 7 * 24 * time.Hour
	statsTopUserLimit  = 5
	statsPopularLimit  = 5
)

// StatsService assembles the community stats snapshot from the
// aggregate queries and derives the per-question averages.
type StatsService struct {
	logger *zap.Logger
	stats  repository.StatsRepository
	now    func() time.Time
}

func NewStatsService(logger *zap.Logger, stats repository.StatsRepository) *StatsService {
	return &StatsService{
		logger: logger,
		stats:  stats,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Community builds the full stats snapshot. The highlight sections are
// best effort: a failed top-user or popular-question query degrades to
// an empty list instead of failing the whole snapshot.
func (s *StatsService) Community(ctx context.Context) (domain.CommunityStats, error) {
	if s.stats == nil {
		return domain.CommunityStats{}, errors.New("stats service not configured")
	}

	overview, err := s.stats.Overview(ctx)
	if err != nil {
		return domain.CommunityStats{}, err
	}
	categories, err := s.stats.CategoryCounts(ctx)
	if err != nil {
		return domain.CommunityStats{}, err
	}
	up, down, err := s.stats.VoteBreakdown(ctx)
	if err != nil {
		return domain.CommunityStats{}, err
	}

	now := s.now()
	result := domain.CommunityStats{
		Overview:    overview,
		Categories:  categories,
		Votes:       voteStats(up, down),
		GeneratedAt: now,
	}
	if overview.TotalQuestions > 0 {
		answers := float64(overview.TotalAnswers) / float64(overview.TotalQuestions)
		result.AvgAnswersPerQuestion = math.Round(answers*10) / 10
		views := float64(overview.TotalViews) / float64(overview.TotalQuestions)
		result.AvgViewsPerQuestion = int(math.Round(views))
	}

	if topUsers, err := s.stats.TopUsers(ctx, statsTopUserLimit); err == nil {
		result.TopUsers = topUsers
	} else if s.logger != nil {
		s.logger.Warn("top users query failed", zap.Error(err))
	}
	if popular, err := s.stats.PopularQuestions(ctx, now.Add(-statsPopularWindow), statsPopularLimit); err == nil {
		result.PopularQuestions = popular
	} else if s.logger != nil {
		s.logger.Warn("popular questions query failed", zap.Error(err))
	}
	return result, nil
}

func voteStats(up, down int) domain.VoteStats {
	stats := domain.VoteStats{
		Total: up + down,
		Up:    up,
		Down:  down,
	}
	if stats.Total > 0 {
		stats.RatioPercent = int(math.Round(float64(up) / float64(stats.Total) * 100))
	}
	return stats
}
