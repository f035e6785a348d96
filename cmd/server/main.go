// Command server runs the contest HTTP API and the competition clock.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aimd54/design-contest/internal/api"
	"github.com/aimd54/design-contest/internal/cache"
	"github.com/aimd54/design-contest/internal/config"
	"github.com/aimd54/design-contest/internal/mattermost"
	"github.com/aimd54/design-contest/internal/repository"
	"github.com/aimd54/design-contest/internal/service/assignment"
	"github.com/aimd54/design-contest/internal/service/contest"
	"github.com/aimd54/design-contest/internal/service/leaderboard"
	"github.com/aimd54/design-contest/internal/service/orchestrator"
	"github.com/aimd54/design-contest/internal/service/scoring"
	"github.com/aimd54/design-contest/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	db, err := repository.NewDB(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	// Postgres schemas come from `contestctl migrate up`; sqlite is auto-migrated for local runs.
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}

	orch := orchestrator.NewService(
		&cfg.Orchestrator,
		db,
		assignment.NewEngine(cfg.Contest.ReviewsPerUser, log),
		scoring.NewEngine(log),
		log,
	).WithNotifier(mattermost.NewClient(&cfg.Mattermost, log))

	var cacheCheck api.CacheChecker
	if cfg.Database.Redis.Enabled() {
		redisCache, err := cache.NewRedisCache(&cfg.Database.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = redisCache.Close() }()
		orch = orch.WithLocker(redisCache)
		cacheCheck = redisCache
		log.Info().Str("host", cfg.Database.Redis.Host).Msg("Orchestrator tick lock enabled")
	}

	if err := orch.Start(); err != nil {
		return err
	}
	defer orch.Stop()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsPath := ""
	if cfg.Metrics.Prometheus.Enabled {
		metricsPath = cfg.Metrics.Prometheus.Path
	}

	server := api.NewServer(&api.Options{
		Address:     fmt.Sprintf(":%d", cfg.Server.Port),
		JWTSecret:   cfg.Auth.JWTSecret,
		MetricsPath: metricsPath,
		Users:       repository.NewUserRepository(db),
		Contest:     contest.NewService(db, log),
		Leaderboard: leaderboard.NewService(repository.NewConfigRepository(db), repository.NewVoteRepository(db), log),
		DB:          db,
		Cache:       cacheCheck,
		Log:         log,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		log.Info().Str("signal", sig.String()).Msg("Start shutdown")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	log.Info().Msg("Server stopped")
	return nil
}
