package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"blog-api/internal/config"
	"blog-api/internal/db"
	apihttp "blog-api/internal/http"
	"blog-api/internal/repository"
	"blog-api/internal/service"
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

	// Sin secreto de firma el proceso no debe aceptar tráfico.
	tokenSvc, err := service.NewTokenService(cfg.SecretKey, cfg.TokenIssuer)
	if err != nil {
		logger.Fatal("token service", zap.Error(err))
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory rate limit", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		}
		cancel()
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	rateLimiter, err := apihttp.NewRateLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		logger.Fatal("rate limiter", zap.Error(err))
	}

	accountRepo := repository.NewPgAccountRepository(pool)
	blogRepo := repository.NewPgBlogRepository(pool)
	resolver := service.NewIdentityResolver(logger, accountRepo)

	authHandler := apihttp.NewAuthHandler(logger, resolver, tokenSvc)
	userHandler := apihttp.NewUserHandler(logger, accountRepo)
	blogHandler := apihttp.NewBlogHandler(logger, blogRepo)
	router := apihttp.NewRouter(logger, apihttp.RouterOptions{
		RateLimiter: rateLimiter,
		EnableHSTS:  cfg.EnableHSTS,
		Health:      poolHealth(pool),
	}, tokenSvc, authHandler, userHandler, blogHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           apihttp.WithCORS(router, cfg.FrontendURLs),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

func poolHealth(pool *pgxpool.Pool) apihttp.HealthFunc {
	return func(ctx context.Context) error {
		return db.Ping(ctx, pool)
	}
}
