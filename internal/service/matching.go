package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"viet-kconnect/internal/domain"
)

// MatchingEngine ranks candidate experts for a question using an additive
// point system. It is stateless apart from the injected clock and safe to
// share between requests.
type MatchingEngine struct {
	now func() time.Time
}

// NewMatchingEngine creates an engine with the real clock.
func NewMatchingEngine() MatchingEngine {
	return MatchingEngine{now: time.Now}
}

// NewMatchingEngineWithClock creates an engine with a fixed clock, used to
// make the recency component deterministic under test.
func NewMatchingEngineWithClock(now func() time.Time) MatchingEngine {
	return MatchingEngine{now: now}
}

// ExpertMatch is one ranked candidate with the criteria that contributed.
type ExpertMatch struct {
	Expert       domain.User `json:"expert"`
	Score        int         `json:"score"`
	MatchReasons []string    `json:"match_reasons"`
}

// ErrNilQuestion is returned when the question argument is nil. Missing
// fields on a non-nil question are never an error.
var ErrNilQuestion = errors.New("matching: question is required")

// Point allocation per criterion. The theoretical maximum sum is 100.
const (
	specialtyMatchPoints = 40.0
	trustScorePoints     = 20.0
	residencePointsPerYr = 3.0
	residencePointsMax   = 15.0
	helpfulnessPoints    = 10.0
	badgeExpertPoints    = 5.0
	badgeVerifiedPoints  = 3.0
	badgeHelpfulPoints   = 2.0
	trustScoreScale      = 1000.0
	minMatchScore        = 30
	maxMatches           = 5
)

// FindExpertMatches scores every candidate, sorts descending (stable, so
// ties keep input order), keeps the top 5 and then drops entries below the
// 30 point floor. The floor runs after the cut: a sixth-place candidate
// never re-enters even if a kept one falls below 30.
func (e MatchingEngine) FindExpertMatches(question *domain.Question, candidates []domain.User) ([]ExpertMatch, error) {
	if question == nil {
		return nil, ErrNilQuestion
	}
	now := e.now
	if now == nil {
		now = time.Now
	}

	matches := make([]ExpertMatch, 0, len(candidates))
	for _, expert := range candidates {
		matches = append(matches, ExpertMatch{
			Expert:       expert,
			Score:        e.scoreCandidate(question, expert, now()),
			MatchReasons: matchReasons(question, expert),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > maxMatches {
		matches = matches[:maxMatches]
	}

	out := make([]ExpertMatch, 0, len(matches))
	for _, m := range matches {
		if m.Score >= minMatchScore {
			out = append(out, m)
		}
	}
	return out, nil
}

func (e MatchingEngine) scoreCandidate(question *domain.Question, expert domain.User, now time.Time) int {
	score := 0.0

	// 1. Specialty match, binary: any specialty as a case-insensitive
	// substring of the category, the title or any tag.
	if len(expert.Specialties) > 0 && question.Category != "" {
		if specialtyMatchesQuestion(expert.Specialties, question) {
			score += specialtyMatchPoints
		}
	}

	// 2. Trust score, continuous over the 0-1000 scale.
	score += math.Min(float64(expert.TrustScore)/trustScoreScale*trustScorePoints, trustScorePoints)

	// 3. Residence years, 3 points per year capped at 15.
	score += math.Min(float64(expert.ResidenceYears)*residencePointsPerYr, residencePointsMax)

	// 4. Helpful answer ratio. The denominator floors to 1, so a record
	// with helpful answers but zero total answers still earns points.
	// Inconsistent data, but the thresholds were tuned against this.
	answers := expert.AnswerCount
	if answers < 1 {
		answers = 1
	}
	score += float64(expert.HelpfulAnswerCount) / float64(answers) * helpfulnessPoints

	// 5. Badges, independently additive up to 10.
	if expert.Badges.Expert {
		score += badgeExpertPoints
	}
	if expert.Badges.Verified {
		score += badgeVerifiedPoints
	}
	if expert.Badges.Helpful {
		score += badgeHelpfulPoints
	}

	// 6. Recency, mutually exclusive tiers. A zero LastActive sits decades
	// in the past and earns nothing.
	days := now.Sub(expert.LastActive).Hours() / 24
	switch {
	case days <= 7:
		score += 5
	case days <= 30:
		score += 3
	case days <= 90:
		score += 1
	}

	return int(math.Round(score))
}

func specialtyMatchesQuestion(specialties []string, question *domain.Question) bool {
	category := strings.ToLower(question.Category)
	title := strings.ToLower(question.Title)
	for _, specialty := range specialties {
		s := strings.ToLower(specialty)
		if strings.Contains(category, s) || strings.Contains(title, s) {
			return true
		}
		for _, tag := range question.Tags {
			if strings.Contains(strings.ToLower(tag), s) {
				return true
			}
		}
	}
	return false
}

// matchReasons re-checks five independent gates; it is not derived from the
// score, so a high-scoring match can still have an empty reasons list. The
// specialty gate here looks at the category only, not title or tags.
func matchReasons(question *domain.Question, expert domain.User) []string {
	reasons := make([]string, 0, 5)

	category := strings.ToLower(question.Category)
	for _, specialty := range expert.Specialties {
		if strings.Contains(category, strings.ToLower(specialty)) {
			reasons = append(reasons, fmt.Sprintf("%s 전문가", question.Category))
			break
		}
	}
	if expert.ResidenceYears >= 5 {
		reasons = append(reasons, fmt.Sprintf("한국 거주 %d년 경험", expert.ResidenceYears))
	}
	if expert.Badges.Expert {
		reasons = append(reasons, "인증된 전문가")
	}
	if expert.TrustScore >= 800 {
		reasons = append(reasons, "높은 신뢰도")
	}
	if expert.HelpfulAnswerCount >= 50 {
		reasons = append(reasons, "활발한 답변 활동")
	}
	return reasons
}
