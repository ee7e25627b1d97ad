package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"viet-kconnect/internal/domain"
	"viet-kconnect/internal/repository"
)

// QuestionService coordinates question CRUD, voting and the trust-score
// side effects of community actions.
type QuestionService struct {
	logger        *zap.Logger
	questions     repository.QuestionRepository
	votes         repository.VoteRepository
	users         repository.UserRepository
	notifications *NotificationService
	limiter       ActionRateLimiter
}

func NewQuestionService(
	logger *zap.Logger,
	questions repository.QuestionRepository,
	votes repository.VoteRepository,
	users repository.UserRepository,
	notifications *NotificationService,
	limiter ActionRateLimiter,
) *QuestionService {
	if limiter == nil {
		limiter = NewActionRateLimiter()
	}
	return &QuestionService{
		logger:        logger,
		questions:     questions,
		votes:         votes,
		users:         users,
		notifications: notifications,
		limiter:       limiter,
	}
}

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidQuestion  = errors.New("invalid question")
	ErrSelfVote         = errors.New("cannot vote on own post")
	ErrInvalidVote      = errors.New("invalid vote type")
	ErrNoVoteToCancel   = errors.New("no vote to cancel")
	ErrSearchQuery      = errors.New("search query must be at least 2 characters")
)

// Trust-score deltas for community actions.
const (
	trustDeltaUpvote   = 2
	trustDeltaDownvote = -1
	trustDeltaHelpful  = 5
	trustDeltaAccepted = 15
)

type CreateQuestionInput struct {
	AuthorID string
	Title    string
	Content  string
	Category string
	Tags     []string
	Urgency  string
}

// CreateQuestion validates and stores a question, bumping the author's
// question counter and activity timestamp.
func (s *QuestionService) CreateQuestion(ctx context.Context, input CreateQuestionInput) (domain.Question, error) {
	if s.questions == nil {
		return domain.Question{}, errors.New("question service not configured")
	}

	title := strings.TrimSpace(input.Title)
	category := strings.TrimSpace(input.Category)
	if title == "" || category == "" {
		return domain.Question{}, ErrInvalidQuestion
	}

	if s.limiter != nil && !s.limiter.Allow(input.AuthorID, ActionPost) {
		return domain.Question{}, ErrRateLimited
	}

	now := time.Now().UTC()
	question := domain.Question{
		ID:        uuid.NewString(),
		AuthorID:  input.AuthorID,
		Title:     title,
		Content:   strings.TrimSpace(input.Content),
		Category:  category,
		Tags:      normalizeSpecialties(input.Tags),
		Urgency:   normalizeUrgency(input.Urgency),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return domain.Question{}, err
	}

	if s.users != nil {
		if err := s.users.IncrementQuestionCount(ctx, input.AuthorID); err != nil && s.logger != nil {
			s.logger.Warn("increment question count failed", zap.Error(err))
		}
		if err := s.users.TouchLastActive(ctx, input.AuthorID, now); err != nil && s.logger != nil {
			s.logger.Warn("touch last active failed", zap.Error(err))
		}
	}
	return question, nil
}

// GetQuestion loads a question and counts the view.
func (s *QuestionService) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	if s.questions == nil {
		return domain.Question{}, errors.New("question service not configured")
	}
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Question{}, ErrQuestionNotFound
		}
		return domain.Question{}, err
	}
	if err := s.questions.IncrementViewCount(ctx, id); err != nil && s.logger != nil {
		s.logger.Warn("increment view count failed", zap.Error(err))
	}
	question.ViewCount++
	return question, nil
}

// ListQuestions returns a filtered page of questions.
func (s *QuestionService) ListQuestions(ctx context.Context, filter repository.QuestionFilter) ([]domain.Question, error) {
	if s.questions == nil {
		return nil, errors.New("question service not configured")
	}
	return s.questions.List(ctx, filter)
}

// SearchQuestions runs a text search over titles, contents and tags.
// Queries shorter than two characters are rejected to keep scans cheap.
func (s *QuestionService) SearchQuestions(ctx context.Context, query string, filter repository.QuestionFilter) ([]domain.Question, error) {
	if s.questions == nil {
		return nil, errors.New("question service not configured")
	}
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < 2 {
		return nil, ErrSearchQuery
	}
	filter.Search = query
	return s.questions.List(ctx, filter)
}

// VoteResult reports the score delta and the vote state after a toggle.
// TrustChange mirrors the vote operations applied, so removing a vote
// undoes exactly the trust it granted.
type VoteResult struct {
	VoteType    string `json:"vote_type,omitempty"`
	ScoreChange int    `json:"score_change"`
	TrustChange int    `json:"-"`
}

// VoteQuestion applies an up/down/cancel toggle on a question. Repeating
// the same vote cancels it; switching sides swings the score by two.
func (s *QuestionService) VoteQuestion(ctx context.Context, questionID, userID, voteType string) (VoteResult, error) {
	if s.questions == nil || s.votes == nil {
		return VoteResult{}, errors.New("question service not configured")
	}

	question, err := s.questions.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return VoteResult{}, ErrQuestionNotFound
		}
		return VoteResult{}, err
	}
	if question.AuthorID == userID {
		return VoteResult{}, ErrSelfVote
	}

	result, err := applyVoteToggle(ctx, s.votes, userID, domain.VoteTargetQuestion, questionID, voteType)
	if err != nil {
		return VoteResult{}, err
	}

	if result.ScoreChange != 0 {
		if err := s.questions.AdjustVoteScore(ctx, questionID, result.ScoreChange); err != nil {
			return VoteResult{}, err
		}
		s.applyTrustDelta(ctx, question.AuthorID, result.TrustChange)
	}
	if s.notifications != nil {
		if err := s.notifications.NotifyVoteReceived(ctx, question.AuthorID, domain.VoteTargetQuestion, questionID, result.VoteType); err != nil && s.logger != nil {
			s.logger.Warn("vote notification failed", zap.Error(err))
		}
	}
	return result, nil
}

// applyVoteToggle runs the toggle state machine shared by question and
// answer votes and returns the resulting score delta.
func applyVoteToggle(ctx context.Context, votes repository.VoteRepository, userID, targetType, targetID, voteType string) (VoteResult, error) {
	if voteType != domain.VoteUp && voteType != domain.VoteDown && voteType != domain.VoteCancel {
		return VoteResult{}, ErrInvalidVote
	}

	existing, err := votes.Get(ctx, userID, targetType, targetID)
	hasExisting := err == nil
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return VoteResult{}, err
	}

	switch {
	case voteType == domain.VoteCancel:
		if !hasExisting {
			return VoteResult{}, ErrNoVoteToCancel
		}
		if err := votes.Delete(ctx, existing.ID); err != nil {
			return VoteResult{}, err
		}
		return VoteResult{
			ScoreChange: scoreDelta(existing.VoteType, -1),
			TrustChange: trustDelta(existing.VoteType, -1),
		}, nil

	case hasExisting && existing.VoteType == voteType:
		// Same vote again toggles it off.
		if err := votes.Delete(ctx, existing.ID); err != nil {
			return VoteResult{}, err
		}
		return VoteResult{
			ScoreChange: scoreDelta(voteType, -1),
			TrustChange: trustDelta(voteType, -1),
		}, nil

	case hasExisting:
		if err := votes.UpdateType(ctx, existing.ID, voteType); err != nil {
			return VoteResult{}, err
		}
		return VoteResult{
			VoteType:    voteType,
			ScoreChange: scoreDelta(voteType, 2),
			TrustChange: trustDelta(existing.VoteType, -1) + trustDelta(voteType, 1),
		}, nil

	default:
		now := time.Now().UTC()
		vote := domain.Vote{
			ID:         uuid.NewString(),
			UserID:     userID,
			TargetType: targetType,
			TargetID:   targetID,
			VoteType:   voteType,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := votes.Create(ctx, vote); err != nil {
			return VoteResult{}, err
		}
		return VoteResult{
			VoteType:    voteType,
			ScoreChange: scoreDelta(voteType, 1),
			TrustChange: trustDelta(voteType, 1),
		}, nil
	}
}

func scoreDelta(voteType string, sign int) int {
	if voteType == domain.VoteUp {
		return sign
	}
	return -sign
}

// trustDelta is the author trust granted by adding (sign 1) or removing
// (sign -1) a vote. A switch is a removal plus an addition.
func trustDelta(voteType string, sign int) int {
	if voteType == domain.VoteUp {
		return sign * trustDeltaUpvote
	}
	return sign * trustDeltaDownvote
}

func (s *QuestionService) applyTrustDelta(ctx context.Context, authorID string, delta int) {
	if s.users == nil || delta == 0 {
		return
	}
	if err := s.users.AdjustTrustScore(ctx, authorID, delta); err != nil && s.logger != nil {
		s.logger.Warn("adjust trust score failed", zap.Error(err))
	}
}

func normalizeUrgency(urgency string) string {
	switch strings.ToLower(strings.TrimSpace(urgency)) {
	case "high":
		return "high"
	case "low":
		return "low"
	default:
		return "normal"
	}
}
