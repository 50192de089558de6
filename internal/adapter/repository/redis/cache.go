package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/gobank/internal/domain"
)

const sagaCachePrefix = "gobank:saga:"

// SagaCache implements usecase.SagaCache using Redis.
type SagaCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewSagaCache creates a new SagaCache.
func NewSagaCache(client redis.UniversalClient, ttl time.Duration) *SagaCache {
	return &SagaCache{
		client: client,
		ttl:    ttl,
	}
}

type cachedSaga struct {
	TransferID  string    `json:"transfer_id"`
	FromAccount string    `json:"from_account"`
	ToAccount   string    `json:"to_account"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Get returns the cached saga or domain.ErrTransferNotFound on a miss.
func (c *SagaCache) Get(ctx context.Context, transferID string) (*domain.TransferSaga, error) {
	raw, err := c.client.Get(ctx, sagaCachePrefix+transferID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrTransferNotFound
	}

	if err != nil {
		return nil, err
	}

	var doc cachedSaga
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode cached saga %s: %w", transferID, err)
	}

	return doc.toDomain()
}

// Set caches a terminal saga. Sagas still in flight are ignored.
func (c *SagaCache) Set(ctx context.Context, saga *domain.TransferSaga) error {
	if !saga.Status.IsTerminal() {
		return nil
	}

	raw, err := json.Marshal(cachedSaga{
		TransferID:  saga.TransferID,
		FromAccount: saga.FromAccount.String(),
		ToAccount:   saga.ToAccount.String(),
		Amount:      saga.Amount.String(),
		Status:      string(saga.Status),
		Reason:      saga.Reason,
		CreatedAt:   saga.CreatedAt,
		UpdatedAt:   saga.UpdatedAt,
	})
	if err != nil {
		return err
	}

	return c.client.Set(ctx, sagaCachePrefix+saga.TransferID, raw, c.ttl).Err()
}

func (d cachedSaga) toDomain() (*domain.TransferSaga, error) {
	from, err := domain.ParseAccountNumber(d.FromAccount)
	if err != nil {
		return nil, err
	}

	to, err := domain.ParseAccountNumber(d.ToAccount)
	if err != nil {
		return nil, err
	}

	amount, err := domain.ParseMoney(d.Amount)
	if err != nil {
		return nil, err
	}

	status, err := domain.ParseSagaStatus(d.Status)
	if err != nil {
		return nil, err
	}

	return &domain.TransferSaga{
		TransferID:  d.TransferID,
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
		Status:      status,
		Reason:      d.Reason,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}
