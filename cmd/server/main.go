// Package main provides the campaign tracker API server binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/forbiddennorth/hexcrawl/internal/api"
	"github.com/forbiddennorth/hexcrawl/internal/config"
	"github.com/forbiddennorth/hexcrawl/internal/game/calendar"
	"github.com/forbiddennorth/hexcrawl/internal/game/dice"
	"github.com/forbiddennorth/hexcrawl/internal/observability"
	"github.com/forbiddennorth/hexcrawl/internal/server"
	"github.com/forbiddennorth/hexcrawl/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	diceRoller := dice.NewLoggedRoller(dice.NewCryptoSource(), observability.Component(logger, "dice"))

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	db := pool.DB()

	// Sessions started before cmd/seed ran still get a usable calendar.
	calRepo := postgres.NewCalendarRepository(db)
	if err := calRepo.SeedIfEmpty(ctx, calendar.DefaultMonths(), calendar.DefaultEra); err != nil {
		logger.Fatal("seeding default calendar", zap.Error(err))
	}
	coldGearRepo := postgres.NewColdGearRepository(db)
	if err := coldGearRepo.SeedIfEmpty(ctx, postgres.DefaultColdGear()); err != nil {
		logger.Fatal("seeding default cold gear", zap.Error(err))
	}

	apiServer := api.NewServer(
		postgres.NewCampaignRepository(db),
		postgres.NewTerrainRepository(db),
		calRepo,
		postgres.NewLogRepository(db),
		postgres.NewSessionRepository(db),
		postgres.NewEncounterRepository(db),
		coldGearRepo,
		diceRoller,
		api.NewHistory(cfg.Server.UndoDepth),
		observability.Component(logger, "api"),
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      apiServer.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			logger.Info("http server listening", zap.String("addr", cfg.Server.Addr()))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("serving http on %s: %w", cfg.Server.Addr(), err)
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", zap.Error(err))
			}
		},
	})

	healthDone := make(chan struct{})
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				case <-healthDone:
					return nil
				}
			}
		},
		StopFn: func() {
			close(healthDone)
			pool.Close()
		},
	})

	logger.Info("campaign tracker initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("addr", cfg.Server.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
