package usecase

import "time"

const (
	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// IdempotencyPending is stored under a key while its first request is still running
	IdempotencyPending = "processing"

	// SagaCacheTTL bounds how long a finished saga stays cached
	SagaCacheTTL = time.Hour

	// StaleSagaAge is how long a saga may sit in requested before its command is republished
	StaleSagaAge = 2 * time.Minute

	// compensationSuffix is appended to the failure reason once a debit was reversed
	compensationSuffix = "; debit reversed"
)
