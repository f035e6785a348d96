// Command contestctl runs the contest's administrative tasks.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aimd54/design-contest/internal/cache"
	"github.com/aimd54/design-contest/internal/config"
	"github.com/aimd54/design-contest/internal/repository"
	"github.com/aimd54/design-contest/pkg/logger"
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	cfg, err := config.Load(os.Getenv("CONTEST_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	db, err := repository.NewDB(&cfg.Database, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to database")
		return 1
	}
	defer db.Close()

	cli := &commandLine{
		db:  db,
		cfg: cfg,
		log: log,
		out: os.Stdout,
		now: time.Now,
	}

	if cfg.Database.Redis.Enabled() {
		redisCache, err := cache.NewRedisCache(&cfg.Database.Redis)
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to redis")
			return 1
		}
		defer redisCache.Close()
		cli.locker = redisCache
	}

	if err := cli.run(os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		return 1
	}
	return 0
}
