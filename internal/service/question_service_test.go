package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"viet-kconnect/internal/domain"
	"viet-kconnect/internal/repository"
)

type mockQuestionRepo struct {
	questions  map[string]domain.Question
	lastFilter repository.QuestionFilter
}

func newMockQuestionRepo() *mockQuestionRepo {
	return &mockQuestionRepo{questions: make(map[string]domain.Question)}
}

func (m *mockQuestionRepo) Create(_ context.Context, question domain.Question) error {
	m.questions[question.ID] = question
	return nil
}

func (m *mockQuestionRepo) GetByID(_ context.Context, id string) (domain.Question, error) {
	question, ok := m.questions[id]
	if !ok {
		return domain.Question{}, pgx.ErrNoRows
	}
	return question, nil
}

func (m *mockQuestionRepo) List(_ context.Context, filter repository.QuestionFilter) ([]domain.Question, error) {
	m.lastFilter = filter
	out := make([]domain.Question, 0, len(m.questions))
	for _, q := range m.questions {
		if filter.Category != "" && q.Category != filter.Category {
			continue
		}
		if filter.Search != "" && !strings.Contains(q.Title, filter.Search) && !strings.Contains(q.Content, filter.Search) {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (m *mockQuestionRepo) IncrementViewCount(_ context.Context, id string) error {
	q, ok := m.questions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	q.ViewCount++
	m.questions[id] = q
	return nil
}

func (m *mockQuestionRepo) IncrementAnswerCount(_ context.Context, id string) error {
	q, ok := m.questions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	q.AnswerCount++
	m.questions[id] = q
	return nil
}

func (m *mockQuestionRepo) AdjustVoteScore(_ context.Context, id string, delta int) error {
	q, ok := m.questions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	q.VoteScore += delta
	m.questions[id] = q
	return nil
}

func (m *mockQuestionRepo) MarkResolved(_ context.Context, id string) error {
	q, ok := m.questions[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now().UTC()
	q.ResolvedAt = &now
	m.questions[id] = q
	return nil
}

type mockVoteRepo struct {
	votes map[string]domain.Vote
}

func newMockVoteRepo() *mockVoteRepo {
	return &mockVoteRepo{votes: make(map[string]domain.Vote)}
}

func (m *mockVoteRepo) Get(_ context.Context, userID, targetType, targetID string) (domain.Vote, error) {
	for _, v := range m.votes {
		if v.UserID == userID && v.TargetType == targetType && v.TargetID == targetID {
			return v, nil
		}
	}
	return domain.Vote{}, pgx.ErrNoRows
}

func (m *mockVoteRepo) Create(_ context.Context, vote domain.Vote) error {
	m.votes[vote.ID] = vote
	return nil
}

func (m *mockVoteRepo) UpdateType(_ context.Context, id, voteType string) error {
	v, ok := m.votes[id]
	if !ok {
		return pgx.ErrNoRows
	}
	v.VoteType = voteType
	m.votes[id] = v
	return nil
}

func (m *mockVoteRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.votes[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.votes, id)
	return nil
}

type mockNotificationRepo struct {
	created []domain.Notification
}

func (m *mockNotificationRepo) Create(_ context.Context, n domain.Notification) error {
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, _, _ int) ([]domain.Notification, error) {
	out := make([]domain.Notification, 0)
	for _, n := range m.created {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *mockNotificationRepo) UnreadCount(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range m.created {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string, at time.Time) error {
	for i, n := range m.created {
		if n.ID == id && n.UserID == userID {
			m.created[i].ReadAt = &at
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string, at time.Time) error {
	for i, n := range m.created {
		if n.UserID == userID && n.ReadAt == nil {
			m.created[i].ReadAt = &at
		}
	}
	return nil
}

func newQuestionFixture(users *mockUserRepo, questions *mockQuestionRepo, votes *mockVoteRepo) *QuestionService {
	return NewQuestionService(zap.NewNop(), questions, votes, users, nil, nil)
}

func TestQuestionServiceCreateQuestion(t *testing.T) {
	users := newMockUserRepo()
	questions := newMockQuestionRepo()
	svc := newQuestionFixture(users, questions, newMockVoteRepo())

	author := domain.User{ID: "u1", Email: "user@example.com", CreatedAt: time.Now().UTC()}
	if err := users.Create(context.Background(), author); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	question, err := svc.CreateQuestion(context.Background(), CreateQuestionInput{
		AuthorID: "u1",
		Title:    "비자 연장 어떻게 하나요?",
		Content:  "E-7 비자 연장 절차가 궁금합니다.",
		Category: "비자",
		Tags:     []string{"E-7", "연장"},
		Urgency:  "urgent",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if question.ID == "" {
		t.Fatalf("expected question id assigned")
	}
	if question.Urgency != "normal" {
		t.Fatalf("expected unknown urgency normalized to normal, got %s", question.Urgency)
	}

	stored, err := users.GetByID(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected author, got %v", err)
	}
	if stored.QuestionCount != 1 {
		t.Fatalf("expected question counter bumped, got %d", stored.QuestionCount)
	}
}

func TestQuestionServiceCreateQuestion_Validation(t *testing.T) {
	svc := newQuestionFixture(newMockUserRepo(), newMockQuestionRepo(), newMockVoteRepo())

	if _, err := svc.CreateQuestion(context.Background(), CreateQuestionInput{
		AuthorID: "u1",
		Title:    "  ",
		Category: "비자",
	}); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion for blank title, got %v", err)
	}
	if _, err := svc.CreateQuestion(context.Background(), CreateQuestionInput{
		AuthorID: "u1",
		Title:    "제목",
		Category: "",
	}); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion for blank category, got %v", err)
	}
}

func TestQuestionServiceCreateQuestion_RateLimited(t *testing.T) {
	users := newMockUserRepo()
	limiter := &mockLimiter{allow: false}
	svc := NewQuestionService(zap.NewNop(), newMockQuestionRepo(), newMockVoteRepo(), users, nil, limiter)

	_, err := svc.CreateQuestion(context.Background(), CreateQuestionInput{
		AuthorID: "u1",
		Title:    "제목",
		Category: "비자",
	})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if limiter.lastAct != ActionPost {
		t.Fatalf("expected post action, got %s", limiter.lastAct)
	}
}

func TestQuestionServiceGetQuestion_IncrementsViews(t *testing.T) {
	questions := newMockQuestionRepo()
	svc := newQuestionFixture(newMockUserRepo(), questions, newMockVoteRepo())

	questions.questions["q1"] = domain.Question{ID: "q1", AuthorID: "u1", Title: "제목", Category: "비자"}

	if _, err := svc.GetQuestion(context.Background(), "q1"); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if questions.questions["q1"].ViewCount != 1 {
		t.Fatalf("expected view count 1, got %d", questions.questions["q1"].ViewCount)
	}

	if _, err := svc.GetQuestion(context.Background(), "missing"); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestQuestionServiceVoteQuestion_Toggle(t *testing.T) {
	users := newMockUserRepo()
	questions := newMockQuestionRepo()
	votes := newMockVoteRepo()
	svc := newQuestionFixture(users, questions, votes)

	author := domain.User{ID: "author", Email: "author@example.com", TrustScore: 100, CreatedAt: time.Now().UTC()}
	if err := users.Create(context.Background(), author); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	questions.questions["q1"] = domain.Question{ID: "q1", AuthorID: "author", Title: "제목", Category: "비자"}

	// First upvote adds one point.
	res, err := svc.VoteQuestion(context.Background(), "q1", "voter", domain.VoteUp)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.ScoreChange != 1 || res.VoteType != domain.VoteUp {
		t.Fatalf("unexpected result: %+v", res)
	}
	if questions.questions["q1"].VoteScore != 1 {
		t.Fatalf("expected vote score 1, got %d", questions.questions["q1"].VoteScore)
	}

	// Switching to a downvote swings the score by two.
	res, err = svc.VoteQuestion(context.Background(), "q1", "voter", domain.VoteDown)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.ScoreChange != -2 {
		t.Fatalf("expected score change -2 on switch, got %d", res.ScoreChange)
	}
	if questions.questions["q1"].VoteScore != -1 {
		t.Fatalf("expected vote score -1, got %d", questions.questions["q1"].VoteScore)
	}

	// Repeating the downvote toggles it off.
	res, err = svc.VoteQuestion(context.Background(), "q1", "voter", domain.VoteDown)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.ScoreChange != 1 || res.VoteType != "" {
		t.Fatalf("expected cancel result, got %+v", res)
	}
	if questions.questions["q1"].VoteScore != 0 {
		t.Fatalf("expected vote score 0, got %d", questions.questions["q1"].VoteScore)
	}
}

func TestQuestionServiceVoteQuestion_SelfVote(t *testing.T) {
	questions := newMockQuestionRepo()
	svc := newQuestionFixture(newMockUserRepo(), questions, newMockVoteRepo())

	questions.questions["q1"] = domain.Question{ID: "q1", AuthorID: "u1", Title: "제목", Category: "비자"}

	if _, err := svc.VoteQuestion(context.Background(), "q1", "u1", domain.VoteUp); !errors.Is(err, ErrSelfVote) {
		t.Fatalf("expected ErrSelfVote, got %v", err)
	}
}

func TestQuestionServiceVoteQuestion_InvalidAndCancel(t *testing.T) {
	questions := newMockQuestionRepo()
	svc := newQuestionFixture(newMockUserRepo(), questions, newMockVoteRepo())

	questions.questions["q1"] = domain.Question{ID: "q1", AuthorID: "author", Title: "제목", Category: "비자"}

	if _, err := svc.VoteQuestion(context.Background(), "q1", "voter", "sideways"); !errors.Is(err, ErrInvalidVote) {
		t.Fatalf("expected ErrInvalidVote, got %v", err)
	}
	if _, err := svc.VoteQuestion(context.Background(), "q1", "voter", domain.VoteCancel); !errors.Is(err, ErrNoVoteToCancel) {
		t.Fatalf("expected ErrNoVoteToCancel, got %v", err)
	}
}

func TestQuestionServiceVoteQuestion_TrustDeltas(t *testing.T) {
	users := newMockUserRepo()
	questions := newMockQuestionRepo()
	svc := newQuestionFixture(users, questions, newMockVoteRepo())

	author := domain.User{ID: "author", Email: "author@example.com", TrustScore: 100, CreatedAt: time.Now().UTC()}
	if err := users.Create(context.Background(), author); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	questions.questions["q1"] = domain.Question{ID: "q1", AuthorID: "author", Title: "제목", Category: "비자"}

	if _, err := svc.VoteQuestion(context.Background(), "q1", "voter", domain.VoteUp); err != nil {
		t.Fatalf("upvote failed: %v", err)
	}
	if users.trustDeltas["author"] != 2 {
		t.Fatalf("expected +2 trust for upvote, got %d", users.trustDeltas["author"])
	}

	if _, err := svc.VoteQuestion(context.Background(), "q1", "voter2", domain.VoteDown); err != nil {
		t.Fatalf("downvote failed: %v", err)
	}
	if users.trustDeltas["author"] != 1 {
		t.Fatalf("expected net +1 trust after downvote, got %d", users.trustDeltas["author"])
	}
}

func TestQuestionServiceVoteQuestion_TrustUndoneOnCancel(t *testing.T) {
	users := newMockUserRepo()
	questions := newMockQuestionRepo()
	svc := newQuestionFixture(users, questions, newMockVoteRepo())

	author := domain.User{ID: "author", Email: "author@example.com", TrustScore: 500, CreatedAt: time.Now().UTC()}
	if err := users.Create(context.Background(), author); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	questions.questions["q1"] = domain.Question{ID: "q1", AuthorID: "author", Title: "제목", Category: "비자"}

	// A downvote costs the author one trust point; cancelling it must
	// give back exactly that point, leaving no way to farm trust with
	// vote/cancel cycles.
	if _, err := svc.VoteQuestion(context.Background(), "q1", "voter", domain.VoteDown); err != nil {
		t.Fatalf("downvote failed: %v", err)
	}
	if users.trustDeltas["author"] != -1 {
		t.Fatalf("expected -1 trust after downvote, got %d", users.trustDeltas["author"])
	}
	if _, err := svc.VoteQuestion(context.Background(), "q1", "voter", domain.VoteCancel); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if users.trustDeltas["author"] != 0 {
		t.Fatalf("expected trust restored to 0 after cancel, got %d", users.trustDeltas["author"])
	}

	// An upvote toggled off the same way is also trust neutral.
	if _, err := svc.VoteQuestion(context.Background(), "q1", "voter", domain.VoteUp); err != nil {
		t.Fatalf("upvote failed: %v", err)
	}
	if _, err := svc.VoteQuestion(context.Background(), "q1", "voter", domain.VoteUp); err != nil {
		t.Fatalf("upvote toggle failed: %v", err)
	}
	if users.trustDeltas["author"] != 0 {
		t.Fatalf("expected trust neutral after up/toggle, got %d", users.trustDeltas["author"])
	}
}

func TestQuestionServiceVoteQuestion_TrustMatchesVoteState(t *testing.T) {
	users := newMockUserRepo()
	questions := newMockQuestionRepo()
	svc := newQuestionFixture(users, questions, newMockVoteRepo())

	author := domain.User{ID: "author", Email: "author@example.com", TrustScore: 500, CreatedAt: time.Now().UTC()}
	if err := users.Create(context.Background(), author); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	questions.questions["q1"] = domain.Question{ID: "q1", AuthorID: "author", Title: "제목", Category: "비자"}

	// down then switch to up: the removal refunds -1 and the upvote
	// grants +2, so the author ends exactly where a plain upvote lands.
	if _, err := svc.VoteQuestion(context.Background(), "q1", "voter", domain.VoteDown); err != nil {
		t.Fatalf("downvote failed: %v", err)
	}
	if _, err := svc.VoteQuestion(context.Background(), "q1", "voter", domain.VoteUp); err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	if users.trustDeltas["author"] != 2 {
		t.Fatalf("expected +2 trust after down/up switch, got %d", users.trustDeltas["author"])
	}
}

func TestQuestionServiceSearchQuestions(t *testing.T) {
	questions := newMockQuestionRepo()
	svc := newQuestionFixture(newMockUserRepo(), questions, newMockVoteRepo())

	if _, err := svc.SearchQuestions(context.Background(), " 비 ", repository.QuestionFilter{}); !errors.Is(err, ErrSearchQuery) {
		t.Fatalf("expected ErrSearchQuery for short query, got %v", err)
	}

	questions.questions["q1"] = domain.Question{ID: "q1", Title: "비자 연장", Category: "비자"}
	if _, err := svc.SearchQuestions(context.Background(), "비자 연장", repository.QuestionFilter{Category: "비자"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if questions.lastFilter.Search != "비자 연장" {
		t.Fatalf("expected search term passed to the filter, got %q", questions.lastFilter.Search)
	}
	if questions.lastFilter.Category != "비자" {
		t.Fatalf("expected category preserved, got %q", questions.lastFilter.Category)
	}
}
