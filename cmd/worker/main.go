// Command worker consumes the account event stream and removes stored
// avatars of deleted accounts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"devconnector/internal/config"
	"devconnector/internal/logging"
	"devconnector/internal/queue"
	"devconnector/internal/redis"
	"devconnector/internal/service"
	"devconnector/internal/storage"
	"devconnector/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)
	logger := logging.For("worker_main")
	if !cfg.EnvFileLoaded {
		logger.Info().Msg("no .env file loaded, using environment variables")
	}

	if cfg.RedisURL == "" {
		logger.Fatal().Msg("REDIS_URL is required for the worker")
	}
	rdb, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis unavailable")
	}
	defer rdb.Close()

	var avatars worker.AvatarRemover
	if cfg.MediaEnabled() {
		bucket, err := storage.NewBucket(ctx, storage.R2Options(cfg))
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object storage")
		}
		avatars = service.NewAvatarService(bucket)
	} else {
		logger.Warn().Msg("R2 not configured, avatar objects will not be removed")
	}

	manager := worker.NewManager(queue.NewConsumer(rdb), worker.NewHandler(avatars), worker.DefaultManagerConfig())
	if err := manager.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start workers")
	}

	<-ctx.Done()
	manager.Stop()
}
