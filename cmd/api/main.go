package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mirrorbrain/internal/config"
	"mirrorbrain/internal/db"
	apihttp "mirrorbrain/internal/http"
	"mirrorbrain/internal/repository"
	"mirrorbrain/internal/service"
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

	brainRepo := repository.NewPgBrainRepository(pool)
	if err := brainRepo.EnsureSchema(ctx); err != nil {
		logger.Fatal("brain schema", zap.Error(err))
	}

	consentRepo, err := repository.OpenSqliteConsentRepository(cfg.ConsentDBPath)
	if err != nil {
		logger.Fatal("consent db open", zap.Error(err))
	}
	defer consentRepo.Close()

	var (
		limiter     service.SubmitRateLimiter
		cache       service.LeaderboardCache
		redisClient *redis.Client
	)
	cache = service.NewMemoryLeaderboardCache(time.Duration(cfg.LeaderboardTTL) * time.Second)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisSubmitRateLimiter(redisClient, time.Duration(cfg.SubmitRateWindow)*time.Second, cfg.SubmitRateMax)
			cache = service.NewRedisLeaderboardCache(redisClient, time.Duration(cfg.LeaderboardTTL)*time.Second)
		}
		cancel()
	}

	claimSvc := service.NewClaimTokenService(cfg.JWTSecret, time.Duration(cfg.ClaimTTLHours)*time.Hour)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured, claim tokens disabled")
	}
	twinEngine := service.NewTwinEngine()

	quizHandler := apihttp.NewQuizHandler(logger, brainRepo, claimSvc, limiter, cache)
	brainHandler := apihttp.NewBrainHandler(logger, brainRepo, claimSvc, cache)
	resonanceHandler := apihttp.NewResonanceHandler(logger, brainRepo)
	twinHandler := apihttp.NewTwinHandler(logger, brainRepo, twinEngine)
	famousHandler := apihttp.NewFamousHandler()
	consentHandler := apihttp.NewConsentHandler(logger, consentRepo, cfg.AdminKeyHash)

	router := apihttp.NewRouter(logger, cfg.AppVersion, quizHandler, brainHandler, resonanceHandler, twinHandler, famousHandler, consentHandler)

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
