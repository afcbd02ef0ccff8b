// Command server runs the civic issue tracker API.
//
// @title        CivicDesk Issue Tracker API
// @version      1.0
// @description  Citizen-reported municipal issue tracking with paid entitlements.
// @BasePath     /
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/civicdesk/issue-tracker/internal/api"
	"github.com/civicdesk/issue-tracker/internal/core/service"
	"github.com/civicdesk/issue-tracker/internal/infrastructure/config"
	mongodb "github.com/civicdesk/issue-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/civicdesk/issue-tracker/internal/infrastructure/db/redis"
	"github.com/civicdesk/issue-tracker/internal/infrastructure/gateway"
	"github.com/civicdesk/issue-tracker/internal/infrastructure/queue"
	"github.com/civicdesk/issue-tracker/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Repositories ---
	issueRepo := mongodb.NewIssueRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	paymentRepo := mongodb.NewPaymentRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	if err := issueRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("issue index creation failed")
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user index creation failed")
	}

	// --- Audit stream ---
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditRepo, log)
	dispatcher.Start(ctx)

	// --- Services ---
	quota := service.NewQuotaGuard(issueRepo, cfg.FreeIssueLimit)
	issueService := service.NewIssueService(issueRepo, userRepo, quota, dispatcher, log)

	checkoutGateway := gateway.NewClient(gateway.Config{
		BaseURL: cfg.Checkout.BaseURL,
		APIKey:  cfg.Checkout.APIKey,
	})
	replayGuard := redisdb.NewReplayGuard(rdb)
	paymentService := service.NewPaymentService(
		userRepo, issueRepo, paymentRepo,
		checkoutGateway, replayGuard, dispatcher,
		service.PaymentConfig{
			Currency:   cfg.Checkout.Currency,
			SuccessURL: cfg.Checkout.SuccessURL,
			CancelURL:  cfg.Checkout.CancelURL,
		},
		log,
	)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)

	// --- HTTP ---
	e := api.NewRouter(db, rdb, api.Services{
		Issues:   issueService,
		Payments: paymentService,
		Auth:     authService,
	}, cfg.JWTSecret, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	log.Info().Msg("server stopped")
}
