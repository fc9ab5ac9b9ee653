package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultSettlementCurrency is the only currency the ledger accepts.
	DefaultSettlementCurrency = "USD"

	// DefaultLowBudgetThreshold is the spent/budget ratio that triggers a warning.
	DefaultLowBudgetThreshold = "0.9"

	// maxBatchSize bounds list queries used by batch jobs and reports.
	maxBatchSize = 1000
)
