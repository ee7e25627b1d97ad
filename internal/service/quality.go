package service

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"viet-kconnect/internal/domain"
)

// QualityEvaluator rates a single answer 0-100 from content heuristics and
// author reputation. Pure and stateless.
type QualityEvaluator struct{}

// ErrNilAnswer is returned when the answer argument is nil.
var ErrNilAnswer = errors.New("quality: answer is required")

var (
	numberingPattern  = regexp.MustCompile(`\d+\.|•|▪|→`)
	formattingPattern = regexp.MustCompile(`\*\*|\n\n|###|##`)

	// Procedural vocabulary typical of useful how-to answers.
	expertKeywords = []string{"서류", "신청", "절차", "방법", "팁", "주의", "경험", "추천"}

	// Vietnam/Korea specific terms (apostille, consular confirmation,
	// notarized translation, ...).
	vietnamKeywords = []string{"베트남", "아포스티유", "영사확인", "번역공증", "한국어"}
)

// EvaluateAnswerQuality sums seven weighted components, rounds, and clamps
// to 100. The clamp is mandatory: the component maxima add up to exactly
// 100, but rounding of the continuous trust term could otherwise overshoot.
func (QualityEvaluator) EvaluateAnswerQuality(answer *domain.Answer) (int, error) {
	if answer == nil {
		return 0, ErrNilAnswer
	}

	score := 0.0

	// 1. Length tiers, highest match only (max 20).
	switch length := utf8.RuneCountInString(answer.Content); {
	case length >= 500:
		score += 20
	case length >= 200:
		score += 15
	case length >= 100:
		score += 10
	case length >= 50:
		score += 5
	}

	// 2. Structure, two independent flags (max 15).
	if numberingPattern.MatchString(answer.Content) {
		score += 10
	}
	if formattingPattern.MatchString(answer.Content) {
		score += 5
	}

	content := strings.ToLower(answer.Content)

	// 3. Procedural keyword density, 2 points per distinct term (max 15).
	score += math.Min(float64(countDistinctKeywords(content, expertKeywords))*2, 15)

	// 4. Locale keyword density, 2 points per distinct term (max 10).
	score += math.Min(float64(countDistinctKeywords(content, vietnamKeywords))*2, 10)

	// 5. Author trust, continuous (max 20).
	var trustScore int
	var badges domain.Badges
	if answer.Author != nil {
		trustScore = answer.Author.TrustScore
		badges = answer.Author.Badges
	}
	score += math.Min(float64(trustScore)/trustScoreScale*20, 20)

	// 6. Author badge. Expert takes precedence over verified; they are not
	// additive here, unlike the matching engine's badge component.
	if badges.Expert {
		score += 10
	} else if badges.Verified {
		score += 5
	}

	// 7. Response speed tiers (max 10). Unknown response time earns nothing.
	if answer.ResponseTimeHours != nil {
		switch hours := *answer.ResponseTimeHours; {
		case hours <= 1:
			score += 10
		case hours <= 6:
			score += 7
		case hours <= 24:
			score += 5
		case hours <= 72:
			score += 3
		}
	}

	total := int(math.Round(score))
	if total > 100 {
		total = 100
	}
	return total, nil
}

func countDistinctKeywords(content string, vocabulary []string) int {
	count := 0
	for _, keyword := range vocabulary {
		if strings.Contains(content, strings.ToLower(keyword)) {
			count++
		}
	}
	return count
}
