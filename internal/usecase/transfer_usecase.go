package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/domain"
)

// TransferUseCase accepts transfer requests and hands them to the worker.
type TransferUseCase struct {
	accountRepo AccountRepository
	publisher   EventPublisher
	sagaStore   SagaStore
	idGen       IDGenerator
	metrics     SagaMetrics
	cache       SagaCache
	log         zerolog.Logger
}

// NewTransferUseCase creates a new TransferUseCase. sagaStore and metrics may be nil.
func NewTransferUseCase(
	accountRepo AccountRepository,
	publisher EventPublisher,
	sagaStore SagaStore,
	idGen IDGenerator,
	metrics SagaMetrics,
	log zerolog.Logger,
) *TransferUseCase {
	return &TransferUseCase{
		accountRepo: accountRepo,
		publisher:   publisher,
		sagaStore:   sagaStore,
		idGen:       idGen,
		metrics:     metrics,
		log:         log.With().Str("component", "transfer_usecase").Logger(),
	}
}

// WithSagaCache puts a read-through cache of finished sagas in front of the store.
func (uc *TransferUseCase) WithSagaCache(cache SagaCache) *TransferUseCase {
	uc.cache = cache
	return uc
}

// RequestTransferInput represents a transfer intent as received from a client.
type RequestTransferInput struct {
	FromAccount string
	ToAccount   string
	Amount      string
}

// TransferReceipt is the immediate answer to a transfer request.
type TransferReceipt struct {
	TransferID  string
	FromAccount domain.AccountNumber
	ToAccount   domain.AccountNumber
	Amount      domain.Money
	Status      string
}

// RequestTransfer validates the request, checks both accounts exist, emits a
// TransferRequested command and returns without waiting for execution.
// Account status and funds are only checked by the worker.
//
// With a saga store the recorded requested row is the source of truth: a
// failed publish is left to RepublishStale and the transfer is still accepted.
// Without one a failed publish is returned to the caller.
func (uc *TransferUseCase) RequestTransfer(ctx context.Context, input RequestTransferInput) (*TransferReceipt, error) {
	req, err := parseTransferRequest(input.FromAccount, input.ToAccount, input.Amount)
	if err != nil {
		return nil, err
	}

	for _, number := range []domain.AccountNumber{req.From, req.To} {
		if _, err := uc.accountRepo.FindByNumber(ctx, number); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	transferID := uc.idGen.Generate()

	if uc.sagaStore != nil {
		saga := &domain.TransferSaga{
			TransferID:  transferID,
			FromAccount: req.From,
			ToAccount:   req.To,
			Amount:      req.Amount,
			Status:      domain.SagaStatusRequested,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := uc.sagaStore.Create(ctx, saga); err != nil {
			return nil, fmt.Errorf("record transfer %s: %w", transferID, err)
		}
	}

	cmd := domain.TransferRequested{
		EventEnvelope: domain.NewEnvelope(uc.idGen.Generate(), domain.EventTypeTransferRequested, now),
		TransferDetails: domain.TransferDetails{
			TransferID:  transferID,
			FromAccount: req.From.String(),
			ToAccount:   req.To.String(),
			Amount:      req.Amount.String(),
		},
	}

	if err := uc.publisher.Publish(ctx, cmd); err != nil {
		if uc.sagaStore == nil {
			return nil, fmt.Errorf("publish transfer %s: %w", transferID, err)
		}

		uc.log.Warn().
			Err(err).
			Str("transfer_id", transferID).
			Msg("transfer command not published, left for republish")
	}

	if uc.metrics != nil {
		uc.metrics.TransferRequested()
	}

	return &TransferReceipt{
		TransferID:  transferID,
		FromAccount: req.From,
		ToAccount:   req.To,
		Amount:      req.Amount,
		Status:      domain.TransferStatusProcessing,
	}, nil
}

// GetTransfer returns the recorded state of a transfer. Without a saga store
// every lookup reports ErrTransferNotFound.
func (uc *TransferUseCase) GetTransfer(ctx context.Context, transferID string) (*domain.TransferSaga, error) {
	if uc.sagaStore == nil || transferID == "" {
		return nil, domain.ErrTransferNotFound
	}

	if uc.cache != nil {
		if saga, err := uc.cache.Get(ctx, transferID); err == nil {
			return saga, nil
		}
	}

	saga, err := uc.sagaStore.Get(ctx, transferID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil && saga.Status.IsTerminal() {
		// A cache write failure only costs a store read next time.
		_ = uc.cache.Set(ctx, saga)
	}

	return saga, nil
}

// RepublishStale re-emits the command of every saga stuck in requested for
// longer than maxAge. The worker deduplicates by transfer id.
func (uc *TransferUseCase) RepublishStale(ctx context.Context, maxAge time.Duration, limit int) (int, error) {
	if uc.sagaStore == nil {
		return 0, nil
	}

	now := time.Now().UTC()

	sagas, err := uc.sagaStore.ListStale(ctx, domain.SagaStatusRequested, now.Add(-maxAge), limit)
	if err != nil {
		return 0, err
	}

	events := make([]domain.Event, 0, len(sagas))
	for _, saga := range sagas {
		events = append(events, domain.TransferRequested{
			EventEnvelope:   domain.NewEnvelope(uc.idGen.Generate(), domain.EventTypeTransferRequested, now),
			TransferDetails: saga.Details(),
		})
	}

	if len(events) == 0 {
		return 0, nil
	}

	if err := uc.publisher.PublishMany(ctx, events); err != nil {
		return 0, err
	}

	for _, saga := range sagas {
		// Touch updated_at so the row is not picked up again on the next tick.
		if err := uc.sagaStore.UpdateStatus(ctx, saga.TransferID, domain.SagaStatusRequested, saga.Reason); err != nil {
			return len(events), err
		}
	}

	return len(events), nil
}

func parseTransferRequest(from, to, amount string) (domain.TransferRequest, error) {
	var (
		req  domain.TransferRequest
		errs []error
		err  error
	)

	if req.From, err = domain.ParseAccountNumber(from); err != nil {
		errs = append(errs, err)
	}

	if req.To, err = domain.ParseAccountNumber(to); err != nil {
		errs = append(errs, err)
	}

	if req.Amount, err = domain.ParseMoney(amount); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return req, errors.Join(errs...)
	}

	return req, req.Validate()
}
