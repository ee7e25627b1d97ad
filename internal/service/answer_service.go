package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"viet-kconnect/internal/domain"
	"viet-kconnect/internal/repository"
)

// AnswerService coordinates answers: creation with write-time quality
// scoring, acceptance, and voting.
type AnswerService struct {
	logger        *zap.Logger
	answers       repository.AnswerRepository
	questions     repository.QuestionRepository
	votes         repository.VoteRepository
	users         repository.UserRepository
	notifications *NotificationService
	limiter       ActionRateLimiter
	evaluator     QualityEvaluator
}

func NewAnswerService(
	logger *zap.Logger,
	answers repository.AnswerRepository,
	questions repository.QuestionRepository,
	votes repository.VoteRepository,
	users repository.UserRepository,
	notifications *NotificationService,
	limiter ActionRateLimiter,
) *AnswerService {
	if limiter == nil {
		limiter = NewActionRateLimiter()
	}
	return &AnswerService{
		logger:        logger,
		answers:       answers,
		questions:     questions,
		votes:         votes,
		users:         users,
		notifications: notifications,
		limiter:       limiter,
		evaluator:     QualityEvaluator{},
	}
}

var (
	ErrAnswerNotFound   = errors.New("answer not found")
	ErrInvalidAnswer    = errors.New("invalid answer")
	ErrNotQuestionOwner = errors.New("only the question author can accept")
	ErrAlreadyAccepted  = errors.New("answer already accepted")
	ErrAlreadyHelpful   = errors.New("answer already marked helpful")
)

type CreateAnswerInput struct {
	QuestionID string
	AuthorID   string
	Content    string
}

// CreateAnswer stores an answer. Response time is measured from the
// question's creation, and the quality score is evaluated once here so
// listings can sort by it without rescoring.
func (s *AnswerService) CreateAnswer(ctx context.Context, input CreateAnswerInput) (domain.Answer, error) {
	if s.answers == nil || s.questions == nil {
		return domain.Answer{}, errors.New("answer service not configured")
	}

	content := strings.TrimSpace(input.Content)
	if content == "" {
		return domain.Answer{}, ErrInvalidAnswer
	}

	question, err := s.questions.GetByID(ctx, input.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Answer{}, ErrQuestionNotFound
		}
		return domain.Answer{}, err
	}

	if s.limiter != nil && !s.limiter.Allow(input.AuthorID, ActionPost) {
		return domain.Answer{}, ErrRateLimited
	}

	now := time.Now().UTC()
	responseTime := now.Sub(question.CreatedAt).Hours()
	answer := domain.Answer{
		ID:                uuid.NewString(),
		QuestionID:        question.ID,
		AuthorID:          input.AuthorID,
		Content:           content,
		ResponseTimeHours: &responseTime,
		CreatedAt:         now,
	}

	if s.users != nil {
		if author, err := s.users.GetByID(ctx, input.AuthorID); err == nil {
			answer.Author = &author
		}
	}
	score, err := s.evaluator.EvaluateAnswerQuality(&answer)
	if err != nil {
		return domain.Answer{}, err
	}
	answer.QualityScore = score

	if err := s.answers.Create(ctx, answer); err != nil {
		return domain.Answer{}, err
	}
	if err := s.questions.IncrementAnswerCount(ctx, question.ID); err != nil && s.logger != nil {
		s.logger.Warn("increment answer count failed", zap.Error(err))
	}
	if s.users != nil {
		if err := s.users.IncrementAnswerCount(ctx, input.AuthorID); err != nil && s.logger != nil {
			s.logger.Warn("increment user answer count failed", zap.Error(err))
		}
		if err := s.users.TouchLastActive(ctx, input.AuthorID, now); err != nil && s.logger != nil {
			s.logger.Warn("touch last active failed", zap.Error(err))
		}
	}
	if s.notifications != nil {
		if err := s.notifications.NotifyNewAnswer(ctx, question, answer); err != nil && s.logger != nil {
			s.logger.Warn("new answer notification failed", zap.Error(err))
		}
	}
	return answer, nil
}

// GetAnswer loads one answer with its author.
func (s *AnswerService) GetAnswer(ctx context.Context, id string) (domain.Answer, error) {
	if s.answers == nil {
		return domain.Answer{}, errors.New("answer service not configured")
	}
	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Answer{}, ErrAnswerNotFound
		}
		return domain.Answer{}, err
	}
	return answer, nil
}

// ListAnswers returns a question's answers, accepted first then by quality.
func (s *AnswerService) ListAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	if s.answers == nil {
		return nil, errors.New("answer service not configured")
	}
	return s.answers.ListByQuestion(ctx, questionID)
}

// AcceptAnswer marks an answer accepted. Only the question author may
// accept; the answer author earns a trust bonus and the helpful counter.
func (s *AnswerService) AcceptAnswer(ctx context.Context, answerID, callerID string) (domain.Answer, error) {
	if s.answers == nil || s.questions == nil {
		return domain.Answer{}, errors.New("answer service not configured")
	}

	answer, err := s.GetAnswer(ctx, answerID)
	if err != nil {
		return domain.Answer{}, err
	}
	if answer.IsAccepted {
		return domain.Answer{}, ErrAlreadyAccepted
	}

	question, err := s.questions.GetByID(ctx, answer.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Answer{}, ErrQuestionNotFound
		}
		return domain.Answer{}, err
	}
	if question.AuthorID != callerID {
		return domain.Answer{}, ErrNotQuestionOwner
	}

	now := time.Now().UTC()
	if err := s.answers.MarkAccepted(ctx, answer.ID, now); err != nil {
		return domain.Answer{}, err
	}
	if err := s.questions.MarkResolved(ctx, question.ID); err != nil && s.logger != nil {
		s.logger.Warn("mark resolved failed", zap.Error(err))
	}
	if s.users != nil {
		if err := s.users.IncrementHelpfulAnswerCount(ctx, answer.AuthorID); err != nil && s.logger != nil {
			s.logger.Warn("increment helpful count failed", zap.Error(err))
		}
		if err := s.users.AdjustTrustScore(ctx, answer.AuthorID, trustDeltaAccepted); err != nil && s.logger != nil {
			s.logger.Warn("adjust trust score failed", zap.Error(err))
		}
	}
	if s.notifications != nil {
		if err := s.notifications.NotifyAnswerAccepted(ctx, question, answer); err != nil && s.logger != nil {
			s.logger.Warn("accepted notification failed", zap.Error(err))
		}
	}

	answer.IsAccepted = true
	answer.AcceptedAt = &now
	return answer, nil
}

// MarkHelpful flags an answer as helpful. Any user except the answer's
// own author may mark it, once; the author earns the helpful counter and
// a trust bonus.
func (s *AnswerService) MarkHelpful(ctx context.Context, answerID, callerID string) (domain.Answer, error) {
	if s.answers == nil {
		return domain.Answer{}, errors.New("answer service not configured")
	}

	answer, err := s.GetAnswer(ctx, answerID)
	if err != nil {
		return domain.Answer{}, err
	}
	if answer.AuthorID == callerID {
		return domain.Answer{}, ErrSelfVote
	}
	if answer.IsHelpful {
		return domain.Answer{}, ErrAlreadyHelpful
	}

	if err := s.answers.MarkHelpful(ctx, answer.ID); err != nil {
		return domain.Answer{}, err
	}
	if s.users != nil {
		if err := s.users.IncrementHelpfulAnswerCount(ctx, answer.AuthorID); err != nil && s.logger != nil {
			s.logger.Warn("increment helpful count failed", zap.Error(err))
		}
		if err := s.users.AdjustTrustScore(ctx, answer.AuthorID, trustDeltaHelpful); err != nil && s.logger != nil {
			s.logger.Warn("adjust trust score failed", zap.Error(err))
		}
	}

	answer.IsHelpful = true
	return answer, nil
}

// VoteAnswer applies an up/down/cancel toggle on an answer.
func (s *AnswerService) VoteAnswer(ctx context.Context, answerID, userID, voteType string) (VoteResult, error) {
	if s.answers == nil || s.votes == nil {
		return VoteResult{}, errors.New("answer service not configured")
	}

	answer, err := s.GetAnswer(ctx, answerID)
	if err != nil {
		return VoteResult{}, err
	}
	if answer.AuthorID == userID {
		return VoteResult{}, ErrSelfVote
	}

	result, err := applyVoteToggle(ctx, s.votes, userID, domain.VoteTargetAnswer, answerID, voteType)
	if err != nil {
		return VoteResult{}, err
	}

	if result.ScoreChange != 0 {
		if err := s.answers.AdjustVoteScore(ctx, answerID, result.ScoreChange); err != nil {
			return VoteResult{}, err
		}
		if s.users != nil && result.TrustChange != 0 {
			if err := s.users.AdjustTrustScore(ctx, answer.AuthorID, result.TrustChange); err != nil && s.logger != nil {
				s.logger.Warn("adjust trust score failed", zap.Error(err))
			}
		}
	}
	if s.notifications != nil {
		if err := s.notifications.NotifyVoteReceived(ctx, answer.AuthorID, domain.VoteTargetAnswer, answerID, result.VoteType); err != nil && s.logger != nil {
			s.logger.Warn("vote notification failed", zap.Error(err))
		}
	}
	return result, nil
}

// EvaluateQuality rescans a stored answer with the current heuristics,
// without persisting the new score.
func (s *AnswerService) EvaluateQuality(ctx context.Context, answerID string) (int, error) {
	answer, err := s.GetAnswer(ctx, answerID)
	if err != nil {
		return 0, err
	}
	return s.evaluator.EvaluateAnswerQuality(&answer)
}
