package http

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viet-kconnect/internal/domain"
	"viet-kconnect/internal/service"
)

type mockExpertRepo struct {
	experts []domain.User
}

func (m *mockExpertRepo) ListCandidates(_ context.Context, _ int) ([]domain.User, error) {
	return m.experts, nil
}

func setupMatchRouter(experts []domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewMatchService(zap.NewNop(), &mockExpertRepo{experts: experts}, service.NewMatchingEngine())
	h := NewMatchHandler(zap.NewNop(), svc)
	r := gin.New()
	r.POST("/experts/match", h.MatchExperts)
	return r
}

func TestMatchHandlerRequiresQuestionAndCategory(t *testing.T) {
	r := setupMatchRouter(nil)

	rec := performRequest(r, http.MethodPost, "/experts/match", map[string]string{
		"category": "비자",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without question, got %d", rec.Code)
	}

	rec = performRequest(r, http.MethodPost, "/experts/match", map[string]string{
		"question": "비자 연장 어떻게 하나요?",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 without category, got %d", rec.Code)
	}
}

func TestMatchHandlerReturnsEnvelope(t *testing.T) {
	expert := domain.User{
		ID:                 "e1",
		DisplayName:        "전문가",
		TrustScore:         900,
		ResidenceYears:     5,
		Specialties:        []string{"비자"},
		AnswerCount:        50,
		HelpfulAnswerCount: 40,
	}
	r := setupMatchRouter([]domain.User{expert})

	rec := performRequest(r, http.MethodPost, "/experts/match", map[string]any{
		"question": "E-7 비자 연장 어떻게 하나요?",
		"category": "비자",
		"tags":     []string{"E-7"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Data service.MatchResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.Analysis.TotalExpertsAnalyzed != 1 {
		t.Fatalf("expected analysis over 1 expert, got %+v", body.Data.Analysis)
	}
	if len(body.Data.Matches) != 1 {
		t.Fatalf("expected one match, got %d", len(body.Data.Matches))
	}
	if body.Data.QuestionSummary.AIConfidence != "high" {
		t.Fatalf("expected high confidence, got %s", body.Data.QuestionSummary.AIConfidence)
	}
}
