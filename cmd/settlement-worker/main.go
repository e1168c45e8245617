package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/fundflow/fundflow-api/internal/config"
	"github.com/fundflow/fundflow-api/internal/domain/audit"
	"github.com/fundflow/fundflow-api/internal/domain/campaign"
	"github.com/fundflow/fundflow-api/internal/domain/notification"
	"github.com/fundflow/fundflow-api/internal/domain/wallet"
	"github.com/fundflow/fundflow-api/internal/pkg/database"
	"github.com/fundflow/fundflow-api/internal/pkg/logger"
)

// The settlement worker sweeps pending bank withdrawals that have sat in
// the queue long enough and settles them. Running it out of process keeps
// settlement latency off the API's request path.
func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Dur("interval", cfg.SettlementInterval).
		Dur("min_age", cfg.SettlementMinAge).
		Msg("starting settlement worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	walletRepo := wallet.NewRepository(db)
	campaignRepo := campaign.NewRepository(db)
	auditService := audit.NewService(audit.NewRepository(db))
	notificationRepo := notification.NewRepository(db)
	notifier := notification.NewClient(notification.NewService(notificationRepo))

	walletService := wallet.NewService(walletRepo, campaignRepo, notifier, auditService, nil)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.SettlementInterval),
		gocron.NewTask(func() {
			settlePendingWithdrawals(walletService, cfg.SettlementMinAge)
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule settlement job")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			pruneOldNotifications(notificationRepo)
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule notification prune job")
	}

	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down settlement worker...")
	if err := scheduler.Shutdown(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown error")
	}
}

func settlePendingWithdrawals(svc *wallet.Service, minAge time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-minAge)
	pending, err := svc.ListPendingWithdrawals(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("failed to list pending withdrawals")
		return
	}
	if len(pending) == 0 {
		return
	}

	settled := 0
	for _, txn := range pending {
		if err := svc.CompleteTransaction(ctx, txn.ID); err != nil {
			log.Error().Err(err).
				Str("transaction_id", txn.ID.String()).
				Msg("failed to settle withdrawal")
			continue
		}
		settled++
	}

	log.Info().
		Int("pending", len(pending)).
		Int("settled", settled).
		Msg("settlement sweep finished")
}

const notificationRetention = 90 * 24 * time.Hour

func pruneOldNotifications(repo notification.Repository) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	deleted, err := repo.DeleteOlderThan(ctx, notificationRetention)
	if err != nil {
		log.Error().Err(err).Msg("failed to prune old notifications")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("pruned old notifications")
	}
}
