package integration

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/adapter/repository/postgres"
	"github.com/iho/smartlink/internal/infrastructure/payeer"
	"github.com/iho/smartlink/internal/usecase"
)

const payeerSecret = "integration-secret"

type services struct {
	gateway     *payeer.Client
	campaigns   *usecase.CampaignUseCase
	adServing   *usecase.AdServingUseCase
	deposits    *usecase.DepositUseCase
	withdrawals *usecase.WithdrawalUseCase
	ledger      *usecase.LedgerUseCase
	users       *postgres.UserRepository
	campaignDB  *postgres.CampaignRepository
}

func newServices(pool *pgxpool.Pool) *services {
	log := zerolog.Nop()
	repos := usecase.Repositories{
		Users:       postgres.NewUserRepository(pool),
		Campaigns:   postgres.NewCampaignRepository(pool),
		AdSlots:     postgres.NewAdSlotRepository(pool),
		Sites:       postgres.NewSiteRepository(pool),
		Creatives:   postgres.NewCreativeRepository(pool),
		Withdrawals: postgres.NewWithdrawalRepository(pool),
		Logs:        postgres.NewTransactionLogRepository(pool),
		Referrals:   postgres.NewReferralRepository(pool),
		Analytics:   postgres.NewAnalyticsRepository(pool),
		Ledger:      postgres.NewLedgerRepository(pool),
	}
	txManager := postgres.NewTxManager(pool)
	retrier := postgres.NewRetrier(log)
	idGen := postgres.NewULIDGenerator()
	gateway := payeer.NewClient(payeer.Config{MerchantID: "shop", SecretKey: payeerSecret, Currency: "USD"})

	referrals := usecase.NewReferralUseCase(txManager, retrier, repos, idGen, nil, decimal.RequireFromString("0.01"), nil, log)

	return &services{
		gateway:     gateway,
		campaigns:   usecase.NewCampaignUseCase(txManager, retrier, repos, idGen, nil, nil, log),
		adServing:   usecase.NewAdServingUseCase(txManager, retrier, repos, usecase.UniformSelector{}, idGen, nil, log),
		deposits:    usecase.NewDepositUseCase(txManager, retrier, repos, gateway, referrals, idGen, nil, nil, log),
		withdrawals: usecase.NewWithdrawalUseCase(txManager, retrier, repos, idGen, nil, nil, log),
		ledger:      usecase.NewLedgerUseCase(repos.Ledger, log),
		users:       postgres.NewUserRepository(pool),
		campaignDB:  postgres.NewCampaignRepository(pool),
	}
}
