package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"viet-kconnect/internal/service"
)

// NewRouter configures the Gin engine with middlewares and routes.
func NewRouter(
	logger *zap.Logger,
	jwtServ *service.JWTService,
	userH *UserHandler,
	questionH *QuestionHandler,
	answerH *AnswerHandler,
	matchH *MatchHandler,
	notifH *NotificationHandler,
	categoryH *CategoryHandler,
	statsH *StatsHandler,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/users", userH.Register)

	auth := r.Group("/auth")
	auth.POST("/login", userH.Login)
	auth.POST("/otp/request", userH.RequestOTP)
	auth.POST("/otp/verify", userH.VerifyOTP)
	auth.POST("/oauth", userH.OAuthLogin)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	// Public reads.
	r.GET("/questions", questionH.ListQuestions)
	r.GET("/questions/:id", questionH.GetQuestion)
	r.GET("/questions/:id/answers", answerH.ListAnswers)
	r.GET("/search", questionH.Search)
	r.GET("/stats", statsH.Community)
	r.GET("/categories", categoryH.List)
	r.GET("/categories/:slug", categoryH.GetBySlug)
	r.POST("/experts/match", matchH.MatchExperts)

	// Authenticated writes.
	authed := r.Group("/", JWTAuthMiddleware(jwtServ))
	authed.PUT("/users/me/profile", userH.UpdateProfile)
	authed.GET("/users/me/activity", userH.Activity)
	authed.POST("/questions", questionH.CreateQuestion)
	authed.POST("/questions/:id/vote", questionH.VoteQuestion)
	authed.POST("/questions/:id/answers", answerH.CreateAnswer)
	authed.POST("/answers/:id/vote", answerH.VoteAnswer)
	authed.POST("/answers/:id/accept", answerH.AcceptAnswer)
	authed.POST("/answers/:id/helpful", answerH.MarkHelpful)
	authed.GET("/answers/:id/quality", answerH.AnswerQuality)
	authed.GET("/notifications", notifH.List)
	authed.POST("/notifications/:id/read", notifH.MarkRead)
	authed.POST("/notifications/read-all", notifH.MarkAllRead)

	return r
}

// zapLoggerMiddleware logs one line per request with zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware forces Content-Type: application/json on responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
