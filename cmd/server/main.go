package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"chapterly/internal/app"
	"chapterly/internal/config"
	"chapterly/internal/ratelimit"
	"chapterly/internal/server"
	"chapterly/internal/util"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	coverTTL, err := config.ParseCoverURLTTL(cfg.CoverURLTTL)
	if err != nil {
		log.Fatalf("failed to parse cover URL TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := app.New(app.Config{
		DatabaseURL:    cfg.DatabaseURL,
		SessionBackend: cfg.SessionBackend,
		SessionTTL:     sessionTTL,
		JWTSecret:      cfg.JWTSecret,
		RedisAddr:      cfg.RedisAddr,
		RedisPassword:  cfg.RedisPassword,
		MinioEndpoint:  cfg.MinioEndpoint,
		MinioAccessKey: cfg.MinioAccessKey,
		MinioSecretKey: cfg.MinioSecretKey,
		MinioBucket:    cfg.MinioBucket,
		MinioUseSSL:    cfg.MinioUseSSL,
		CoverURLTTL:    coverTTL,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	loginLimiter, err := buildLimiter(cfg, cfg.LoginRateLimitPerMinute, "chapterly:ratelimit:login")
	if err != nil {
		log.Fatalf("failed to init login rate limiter: %v", err)
	}
	signupLimiter, err := buildLimiter(cfg, cfg.SignupRateLimitPerMinute, "chapterly:ratelimit:signup")
	if err != nil {
		log.Fatalf("failed to init signup rate limiter: %v", err)
	}

	httpServer := server.New(server.Config{
		App:               appCore,
		LoginLimiter:      loginLimiter,
		SignupLimiter:     signupLimiter,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

// buildLimiter returns nil when the per-minute limit is 0, which
// disables limiting for that endpoint.
func buildLimiter(cfg config.FileConfig, perMinute int, prefix string) (*ratelimit.FixedWindowLimiter, error) {
	if perMinute <= 0 {
		return nil, nil
	}
	if cfg.RedisAddr != "" {
		return ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, perMinute, time.Minute)
	}
	return ratelimit.NewFixedWindowLimiter(perMinute, time.Minute)
}
