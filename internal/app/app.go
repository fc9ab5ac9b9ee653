// Package app assembles the process-wide dependencies shared by the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	postgresRepo "github.com/iho/smartlink/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/smartlink/internal/adapter/repository/redis"
	"github.com/iho/smartlink/internal/infrastructure/auth"
	"github.com/iho/smartlink/internal/infrastructure/config"
	"github.com/iho/smartlink/internal/infrastructure/metrics"
	"github.com/iho/smartlink/internal/infrastructure/notifier"
	"github.com/iho/smartlink/internal/infrastructure/payeer"
	"github.com/iho/smartlink/internal/infrastructure/postgres"
	"github.com/iho/smartlink/internal/infrastructure/redis"
	"github.com/iho/smartlink/internal/usecase"
)

// App holds connections and services. Close releases the connections.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *metrics.Metrics

	Pool   *pgxpool.Pool
	Redis  *goredis.Client
	Queue  *asynq.Client
	Locker *redisRepo.Locker

	Idempotency *redisRepo.IdempotencyStore
	// Tokens is nil when JWT_SECRET is unset.
	Tokens *auth.JWTManager

	Campaigns       *usecase.CampaignUseCase
	AdSlots         *usecase.AdSlotUseCase
	AdServing       *usecase.AdServingUseCase
	Deposits        *usecase.DepositUseCase
	Withdrawals     *usecase.WithdrawalUseCase
	Referrals       *usecase.ReferralUseCase
	TransactionLogs *usecase.TransactionLogUseCase
	Analytics       *usecase.AnalyticsUseCase
	Ledger          *usecase.LedgerUseCase
}

// New connects to PostgreSQL and Redis and builds the services. name identifies the
// process to both servers.
func New(ctx context.Context, cfg *config.Config, name string, m *metrics.Metrics, logger zerolog.Logger) (*App, error) {
	selector, err := usecase.NewCampaignSelector(cfg.AdSelectionStrategy)
	if err != nil {
		return nil, err
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		ApplicationName: name,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL, name)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info().Msg("connected to redis")

	queueOpt, err := QueueRedisOpt(cfg.RedisURL)
	if err != nil {
		pool.Close()
		redisClient.Close()
		return nil, err
	}
	queue := asynq.NewClient(queueOpt)

	a := &App{
		Config:      cfg,
		Logger:      logger,
		Metrics:     m,
		Pool:        pool,
		Redis:       redisClient,
		Queue:       queue,
		Locker:      redisRepo.NewLocker(redisClient),
		Idempotency: redisRepo.NewIdempotencyStore(redisClient),
	}
	if cfg.JWTSecret != "" {
		a.Tokens = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	repos := usecase.Repositories{
		Users:       postgresRepo.NewUserRepository(pool),
		Campaigns:   postgresRepo.NewCampaignRepository(pool),
		AdSlots:     postgresRepo.NewAdSlotRepository(pool),
		Sites:       postgresRepo.NewSiteRepository(pool),
		Creatives:   postgresRepo.NewCreativeRepository(pool),
		Withdrawals: postgresRepo.NewWithdrawalRepository(pool),
		Logs:        postgresRepo.NewTransactionLogRepository(pool),
		Referrals:   postgresRepo.NewReferralRepository(pool),
		Analytics:   postgresRepo.NewAnalyticsRepository(pool),
		Ledger:      postgresRepo.NewLedgerRepository(pool),
	}
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(logger).WithMetrics(m)
	idGen := postgresRepo.NewULIDGenerator()
	notify := notifier.NewQueueNotifier(queue, logger)
	gateway := payeer.NewClient(payeer.Config{
		MerchantID: cfg.PayeerMerchantID,
		SecretKey:  cfg.PayeerSecretKey,
		BaseURL:    cfg.PayeerBaseURL,
		Currency:   cfg.SettlementCurrency,
	})

	a.Campaigns = usecase.NewCampaignUseCase(txManager, retrier, repos, idGen, notify, m, logger)
	a.Campaigns.SetLowBudgetThreshold(cfg.LowBudgetThreshold)
	a.AdSlots = usecase.NewAdSlotUseCase(repos)
	a.AdServing = usecase.NewAdServingUseCase(txManager, retrier, repos, selector, idGen, m, logger)
	a.Referrals = usecase.NewReferralUseCase(txManager, retrier, repos, idGen, notify, cfg.ReferralRate, m, logger)
	a.Deposits = usecase.NewDepositUseCase(txManager, retrier, repos, gateway, a.Referrals, idGen, notify, m, logger)
	a.Withdrawals = usecase.NewWithdrawalUseCase(txManager, retrier, repos, idGen, notify, m, logger)
	a.TransactionLogs = usecase.NewTransactionLogUseCase(repos.Logs)
	a.Analytics = usecase.NewAnalyticsUseCase(repos)
	a.Ledger = usecase.NewLedgerUseCase(repos.Ledger, logger)

	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	if err := a.Queue.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to close task queue client")
	}
	if err := a.Redis.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("failed to close redis client")
	}
	a.Pool.Close()
}

// QueueRedisOpt derives the asynq connection from the shared Redis URL.
func QueueRedisOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opts, err := redis.ParseOptions(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}, nil
}
