package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"viet-kconnect/internal/domain"
	"viet-kconnect/internal/email"
	"viet-kconnect/internal/repository"
)

// NotificationService creates and serves in-app notifications. Email
// delivery is best effort: a failed send never fails the triggering action.
type NotificationService struct {
	logger        *zap.Logger
	notifications repository.NotificationRepository
	users         repository.UserRepository
	emailSender   email.Sender
}

func NewNotificationService(logger *zap.Logger, notifications repository.NotificationRepository, users repository.UserRepository, emailSender email.Sender) *NotificationService {
	return &NotificationService{
		logger:        logger,
		notifications: notifications,
		users:         users,
		emailSender:   emailSender,
	}
}

var ErrNotificationsUnavailable = errors.New("notifications not configured")

// NotifyNewAnswer tells a question author that someone answered.
func (s *NotificationService) NotifyNewAnswer(ctx context.Context, question domain.Question, answer domain.Answer) error {
	// Answering your own question makes no noise.
	if question.AuthorID == answer.AuthorID {
		return nil
	}
	return s.deliver(ctx, domain.Notification{
		UserID:  question.AuthorID,
		Type:    domain.NotificationNewAnswer,
		Title:   "새 답변이 등록되었습니다",
		Message: question.Title,
		Data: map[string]string{
			"question_id": question.ID,
			"answer_id":   answer.ID,
		},
	})
}

// NotifyAnswerAccepted tells an answer author their answer was accepted.
func (s *NotificationService) NotifyAnswerAccepted(ctx context.Context, question domain.Question, answer domain.Answer) error {
	if question.AuthorID == answer.AuthorID {
		return nil
	}
	return s.deliver(ctx, domain.Notification{
		UserID:  answer.AuthorID,
		Type:    domain.NotificationAnswerAccepted,
		Title:   "답변이 채택되었습니다",
		Message: question.Title,
		Data: map[string]string{
			"question_id": question.ID,
			"answer_id":   answer.ID,
		},
	})
}

// NotifyVoteReceived tells an author their post was upvoted. Downvotes and
// cancels stay silent.
func (s *NotificationService) NotifyVoteReceived(ctx context.Context, authorID, targetType, targetID, voteType string) error {
	if voteType != domain.VoteUp {
		return nil
	}
	return s.deliver(ctx, domain.Notification{
		UserID:  authorID,
		Type:    domain.NotificationVoteReceived,
		Title:   "추천을 받았습니다",
		Message: "",
		Data: map[string]string{
			"target_type": targetType,
			"target_id":   targetID,
		},
	})
}

func (s *NotificationService) deliver(ctx context.Context, n domain.Notification) error {
	if s.notifications == nil {
		return ErrNotificationsUnavailable
	}
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	if err := s.notifications.Create(ctx, n); err != nil {
		return err
	}

	if s.emailSender == nil || s.users == nil {
		return nil
	}
	user, err := s.users.GetByID(ctx, n.UserID)
	if err != nil || !user.IsVerified() {
		return nil
	}
	if err := s.emailSender.SendNotification(ctx, user.Email, n.Title, n.Message); err != nil {
		if s.logger != nil {
			s.logger.Warn("notification email failed", zap.Error(err), zap.String("user_id", n.UserID))
		}
	}
	return nil
}

// List returns a page of the user's notifications.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if s.notifications == nil {
		return nil, ErrNotificationsUnavailable
	}
	return s.notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

// UnreadCount returns how many notifications the user has not read.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if s.notifications == nil {
		return 0, ErrNotificationsUnavailable
	}
	return s.notifications.UnreadCount(ctx, userID)
}

// MarkRead marks one notification read; marking an already-read or foreign
// notification is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if s.notifications == nil {
		return ErrNotificationsUnavailable
	}
	return s.notifications.MarkRead(ctx, id, userID, time.Now().UTC())
}

// MarkAllRead marks every unread notification of the user read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if s.notifications == nil {
		return ErrNotificationsUnavailable
	}
	return s.notifications.MarkAllRead(ctx, userID, time.Now().UTC())
}
