package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/iho/smartlink/internal/app"
	"github.com/iho/smartlink/internal/infrastructure/config"
	"github.com/iho/smartlink/internal/infrastructure/logger"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
	"github.com/iho/smartlink/internal/infrastructure/notifier"
)

const serviceName = "smartlink-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Service: serviceName})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	redisOpt, err := app.QueueRedisOpt(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid redis configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := asynq.NewServer(redisOpt, serverConfig(cfg, log))
	mux := asynq.NewServeMux()
	notifier.NewHandler(notifier.NewLogDeliverer(log), metrics.New(), log).Register(mux)

	if err := srv.Start(mux); err != nil {
		log.Fatal().Err(err).Msg("failed to start worker")
	}
	log.Info().Int("concurrency", cfg.WorkerConcurrency).Msg("worker started")

	<-ctx.Done()

	log.Info().Msg("shutting down worker...")
	srv.Shutdown()
	log.Info().Msg("worker stopped")
}

func serverConfig(cfg *config.Config, log zerolog.Logger) asynq.Config {
	return asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      notifier.Queues(),
		Logger:      notifier.NewAsynqLogger(log),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("task", task.Type()).Msg("task failed")
		}),
	}
}
