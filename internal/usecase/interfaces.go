package usecase

import (
	"context"
	"time"

	"github.com/iho/gobank/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	// Save upserts the account keyed by its number. Last writer wins.
	Save(ctx context.Context, account *domain.Account) error
	FindByNumber(ctx context.Context, number domain.AccountNumber) (*domain.Account, error)
	FindByCPF(ctx context.Context, cpf domain.CPF) (*domain.Account, error)
	ExistsByCPF(ctx context.Context, cpf domain.CPF) (bool, error)
	Delete(ctx context.Context, number domain.AccountNumber) error
}

// EventPublisher publishes events on the event channel.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
	PublishMany(ctx context.Context, events []domain.Event) error
}

// SagaStore persists transfer saga state keyed by transfer id.
type SagaStore interface {
	// Create inserts the saga. An existing row with the same id is left untouched.
	Create(ctx context.Context, saga *domain.TransferSaga) error
	Get(ctx context.Context, transferID string) (*domain.TransferSaga, error)
	UpdateStatus(ctx context.Context, transferID string, status domain.SagaStatus, reason string) error
	// ListStale returns sagas still in status that were last updated before olderThan.
	ListStale(ctx context.Context, status domain.SagaStatus, olderThan time.Time, limit int) ([]*domain.TransferSaga, error)
}

// AccountLocker serializes work on accounts across processes.
type AccountLocker interface {
	// Lock acquires the locks in the given order and returns a function releasing all of them.
	Lock(ctx context.Context, numbers ...domain.AccountNumber) (func(context.Context), error)
}

// SagaMetrics records saga outcomes.
type SagaMetrics interface {
	SagaFinished(status domain.SagaStatus, duration time.Duration)
	SagaDuplicate()
	// SagaDeferred counts deliveries left for the republisher without an outcome.
	SagaDeferred()
	TransferRequested()
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a claim whose request did not succeed.
	Release(ctx context.Context, key string) error
}

// SagaCache keeps finished sagas close to the API. Only terminal sagas are
// stored since they never change again.
type SagaCache interface {
	Get(ctx context.Context, transferID string) (*domain.TransferSaga, error)
	Set(ctx context.Context, saga *domain.TransferSaga) error
}
