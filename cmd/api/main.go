package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"viet-kconnect/internal/config"
	"viet-kconnect/internal/db"
	"viet-kconnect/internal/email"
	apihttp "viet-kconnect/internal/http"
	"viet-kconnect/internal/repository"
	"viet-kconnect/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	expertRepo := repository.NewPgExpertRepository(pool)
	questionRepo := repository.NewPgQuestionRepository(pool)
	answerRepo := repository.NewPgAnswerRepository(pool)
	voteRepo := repository.NewPgVoteRepository(pool)
	notificationRepo := repository.NewPgNotificationRepository(pool)
	categoryRepo := repository.NewPgCategoryRepository(pool)
	statsRepo := repository.NewPgStatsRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		limiter    service.ActionRateLimiter
		tokenStore service.RefreshTokenStore
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisActionRateLimiter(redisClient)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	notificationSvc := service.NewNotificationService(logger, notificationRepo, userRepo, emailSender)
	userSvc := service.NewUserService(logger, userRepo, emailSender, limiter)
	questionSvc := service.NewQuestionService(logger, questionRepo, voteRepo, userRepo, notificationSvc, limiter)
	answerSvc := service.NewAnswerService(logger, answerRepo, questionRepo, voteRepo, userRepo, notificationSvc, limiter)
	matchSvc := service.NewMatchService(logger, expertRepo, service.NewMatchingEngine())
	statsSvc := service.NewStatsService(logger, statsRepo)

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	questionHandler := apihttp.NewQuestionHandler(logger, questionSvc)
	answerHandler := apihttp.NewAnswerHandler(logger, answerSvc)
	matchHandler := apihttp.NewMatchHandler(logger, matchSvc)
	notificationHandler := apihttp.NewNotificationHandler(logger, notificationSvc)
	categoryHandler := apihttp.NewCategoryHandler(logger, categoryRepo)
	statsHandler := apihttp.NewStatsHandler(logger, statsSvc)

	router := apihttp.NewRouter(logger, jwtSvc, userHandler, questionHandler, answerHandler, matchHandler, notificationHandler, categoryHandler, statsHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
