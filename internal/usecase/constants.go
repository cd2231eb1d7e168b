package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyInFlight is stored under a claimed key until the response
	// is known.
	IdempotencyInFlight = "processing"

	// DefaultFraudThreshold is the highest fraud score a payment may carry.
	DefaultFraudThreshold = 0.8

	// DefaultFraudScoringTimeout bounds one call to the fraud scorer.
	DefaultFraudScoringTimeout = 2 * time.Second

	// DefaultFallbackCurrency fills a canonical payment without a currency.
	DefaultFallbackCurrency = "USD"
)
