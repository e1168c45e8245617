package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/fundflow/fundflow-api/internal/config"
	"github.com/fundflow/fundflow-api/internal/domain/audit"
	"github.com/fundflow/fundflow-api/internal/domain/auth"
	"github.com/fundflow/fundflow-api/internal/domain/campaign"
	"github.com/fundflow/fundflow-api/internal/domain/compliance"
	"github.com/fundflow/fundflow-api/internal/domain/notification"
	"github.com/fundflow/fundflow-api/internal/domain/user"
	"github.com/fundflow/fundflow-api/internal/domain/wallet"
	"github.com/fundflow/fundflow-api/internal/middleware"
	"github.com/fundflow/fundflow-api/internal/pkg/database"
	"github.com/fundflow/fundflow-api/internal/pkg/jwt"
	"github.com/fundflow/fundflow-api/internal/pkg/logger"
	"github.com/fundflow/fundflow-api/internal/pkg/response"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("starting FundFlow API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	campaignRepo := campaign.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	complianceRepo := compliance.NewRepository(db)
	notificationRepo := notification.NewRepository(db)
	auditRepo := audit.NewRepository(db)

	// ---------- Services ----------
	auditService := audit.NewService(auditRepo)
	notificationService := notification.NewService(notificationRepo)
	notifier := notification.NewClient(notificationService)

	authService := auth.NewService(userRepo, jwtService)
	complianceService := compliance.NewService(complianceRepo, campaignRepo, auditService)

	// wallet mirrors contributions onto the campaign running total;
	// campaign cancellation refunds through the wallet; compliance gates
	// campaign approval
	walletService := wallet.NewService(walletRepo, campaignRepo, notifier, auditService, redisClient)
	campaignService := campaign.NewService(campaignRepo, complianceService, walletService, notifier, auditService)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	campaignHandler := campaign.NewHandler(campaignService)
	walletHandler := wallet.NewHandler(walletService)
	complianceHandler := compliance.NewHandler(complianceService)
	notificationHandler := notification.NewHandler(notificationService)
	auditHandler := audit.NewHandler(auditService)

	// ---------- Middleware ----------
	authMiddleware := middleware.Auth(jwtService)
	moderatorMiddleware := middleware.RequireModerator()
	adminMiddleware := middleware.RequireAdmin()

	// ---------- Router ----------
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/campaigns", campaignHandler.Routes(authMiddleware, moderatorMiddleware))
		r.Mount("/wallet", walletHandler.Routes(authMiddleware, adminMiddleware))
		r.Mount("/compliance", complianceHandler.Routes(authMiddleware, moderatorMiddleware, adminMiddleware))
		r.Mount("/notifications", notificationHandler.Routes(authMiddleware))
		r.Mount("/audit", auditHandler.Routes(authMiddleware, adminMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
