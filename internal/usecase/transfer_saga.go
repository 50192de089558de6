package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/domain"
)

// TransferSagaDeps wires a TransferSaga. Sagas, Locker and Metrics are optional:
// without Sagas every redelivery executes the transfer again, without Locker
// concurrent transfers on one account may overwrite each other's balance.
type TransferSagaDeps struct {
	Accounts  AccountRepository
	Publisher EventPublisher
	Sagas     SagaStore
	Locker    AccountLocker
	IDs       IDGenerator
	Metrics   SagaMetrics
	Logger    zerolog.Logger
}

// TransferSaga executes TransferRequested commands: debit source, credit
// destination, emit the outcome. It never reports an error to the transport;
// every command ends in a TransferCompleted or TransferFailed attempt.
type TransferSaga struct {
	accounts  AccountRepository
	publisher EventPublisher
	sagas     SagaStore
	locker    AccountLocker
	ids       IDGenerator
	metrics   SagaMetrics
	log       zerolog.Logger
	now       func() time.Time
}

// NewTransferSaga creates a new TransferSaga.
func NewTransferSaga(deps TransferSagaDeps) *TransferSaga {
	return &TransferSaga{
		accounts:  deps.Accounts,
		publisher: deps.Publisher,
		sagas:     deps.Sagas,
		locker:    deps.Locker,
		ids:       deps.IDs,
		metrics:   deps.Metrics,
		log:       deps.Logger.With().Str("component", "transfer_saga").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// sagaRun is the state of one delivery.
type sagaRun struct {
	details domain.TransferDetails
	req     domain.TransferRequest
	tracked bool
	started time.Time
	log     zerolog.Logger
}

// Handle processes one delivered command body.
func (s *TransferSaga) Handle(ctx context.Context, body []byte) {
	run := &sagaRun{started: time.Now()}

	cmd, err := domain.DecodeTransferRequested(body)
	run.details = cmd.TransferDetails
	run.log = s.log.With().Str("transfer_id", cmd.TransferID).Logger()

	if err == nil {
		if run.req, err = parseTransferRequest(cmd.FromAccount, cmd.ToAccount, cmd.Amount); err != nil {
			err = fmt.Errorf("%w: %w", domain.ErrMalformedCommand, err)
		}
	}

	if err != nil {
		s.rejectMalformed(ctx, run, err)
		return
	}

	unlock, err := s.lock(ctx, run.req.From, run.req.To)
	if err != nil {
		s.retryLater(ctx, run, fmt.Errorf("lock accounts: %w", err))
		return
	}
	defer unlock(context.WithoutCancel(ctx))

	resumeFrom, proceed := s.begin(ctx, run)
	if !proceed {
		return
	}

	switch resumeFrom {
	case domain.SagaStatusDebited:
		run.log.Info().Msg("resuming transfer after debit")
		s.resumeCredit(ctx, run)
	case domain.SagaStatusCredited:
		run.log.Info().Msg("resuming transfer after credit")
		s.complete(ctx, run)
	default:
		s.execute(ctx, run)
	}
}

// begin loads or creates the saga row and reports whether the transfer should
// run, and from which status. With a saga store configured no account is
// touched unless the row could be read or created.
func (s *TransferSaga) begin(ctx context.Context, run *sagaRun) (domain.SagaStatus, bool) {
	if s.sagas == nil {
		return "", true
	}

	saga, err := s.sagas.Get(ctx, run.details.TransferID)

	switch {
	case errors.Is(err, domain.ErrTransferNotFound):
		now := s.now()
		saga = &domain.TransferSaga{
			TransferID:  run.details.TransferID,
			FromAccount: run.req.From,
			ToAccount:   run.req.To,
			Amount:      run.req.Amount,
			Status:      domain.SagaStatusProcessing,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.sagas.Create(ctx, saga); err != nil {
			s.retryLater(ctx, run, fmt.Errorf("record saga: %w", err))
			return "", false
		}

		run.tracked = true

		return domain.SagaStatusProcessing, true
	case err != nil:
		s.retryLater(ctx, run, fmt.Errorf("load saga: %w", err))
		return "", false
	}

	run.tracked = true

	if saga.FromAccount != run.req.From || saga.ToAccount != run.req.To || !saga.Amount.Equal(run.req.Amount) {
		run.log.Warn().Msg("command differs from recorded transfer, using recorded details")
		run.req = domain.TransferRequest{From: saga.FromAccount, To: saga.ToAccount, Amount: saga.Amount}
		run.details = saga.Details()
	}

	if saga.Status.IsTerminal() {
		s.replay(ctx, run, saga)
		return saga.Status, false
	}

	if saga.Status == domain.SagaStatusDebited || saga.Status == domain.SagaStatusCredited {
		return saga.Status, true
	}

	s.mark(ctx, run, domain.SagaStatusProcessing, "")

	return domain.SagaStatusProcessing, true
}

// replay re-emits the outcome of a finished saga.
func (s *TransferSaga) replay(ctx context.Context, run *sagaRun, saga *domain.TransferSaga) {
	run.log.Info().Str("status", string(saga.Status)).Msg("duplicate delivery, re-emitting outcome")

	if s.metrics != nil {
		s.metrics.SagaDuplicate()
	}

	if saga.Status.Succeeded() {
		s.publish(ctx, run, s.completedEvent(run))
	} else {
		s.publish(ctx, run, s.failedEvent(run, saga.Reason))
	}
}

// rejectMalformed settles a command that could not be parsed. A recorded saga
// with the same id keeps a single outcome: a finished one is replayed, an open
// one is marked failed so a republished command cannot complete it later.
func (s *TransferSaga) rejectMalformed(ctx context.Context, run *sagaRun, cause error) {
	if s.sagas != nil && run.details.TransferID != domain.UnknownTransferID {
		saga, err := s.sagas.Get(ctx, run.details.TransferID)

		switch {
		case err == nil && saga.Status.IsTerminal():
			run.details = saga.Details()
			s.replay(ctx, run, saga)
			return
		case err == nil:
			run.tracked = true
		case !errors.Is(err, domain.ErrTransferNotFound):
			s.retryLater(ctx, run, fmt.Errorf("load saga: %w", err))
			return
		}
	}

	s.fail(ctx, run, cause)
}

// retryLater drops the delivery without an outcome and before any account is
// touched. The saga row stays requested and RepublishStale sends the command
// again. Without a saga store nothing would retry it, so the transfer fails.
func (s *TransferSaga) retryLater(ctx context.Context, run *sagaRun, cause error) {
	if s.sagas == nil {
		s.fail(ctx, run, cause)
		return
	}

	run.log.Warn().Err(cause).Msg("transfer deferred until republish")

	// A command that never had a row, e.g. one published by hand, gets one so
	// the sweep can find it. Existing rows are left as they are.
	if run.req.From != "" {
		now := s.now()
		if err := s.sagas.Create(ctx, &domain.TransferSaga{
			TransferID:  run.details.TransferID,
			FromAccount: run.req.From,
			ToAccount:   run.req.To,
			Amount:      run.req.Amount,
			Status:      domain.SagaStatusRequested,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			run.log.Error().Err(err).Msg("deferred transfer not recorded, it will not be retried")
		}
	}

	if s.metrics != nil {
		s.metrics.SagaDeferred()
	}
}

// execute runs the full debit/credit sequence. Both balance changes are
// validated in memory before anything is persisted.
func (s *TransferSaga) execute(ctx context.Context, run *sagaRun) {
	source, err := s.accounts.FindByNumber(ctx, run.req.From)
	if err != nil {
		s.fail(ctx, run, err)
		return
	}

	destination, err := s.accounts.FindByNumber(ctx, run.req.To)
	if err != nil {
		s.fail(ctx, run, err)
		return
	}

	now := s.now()

	if err := source.Withdraw(run.req.Amount, now); err != nil {
		s.fail(ctx, run, err)
		return
	}

	if err := destination.Deposit(run.req.Amount, now); err != nil {
		s.fail(ctx, run, err)
		return
	}

	if err := s.accounts.Save(ctx, source); err != nil {
		s.fail(ctx, run, fmt.Errorf("save source account: %w", err))
		return
	}

	s.mark(ctx, run, domain.SagaStatusDebited, "")

	s.credit(ctx, run, destination)
}

// resumeCredit continues a saga whose debit was already persisted.
func (s *TransferSaga) resumeCredit(ctx context.Context, run *sagaRun) {
	destination, err := s.accounts.FindByNumber(ctx, run.req.To)
	if err != nil {
		s.compensate(ctx, run, err)
		return
	}

	if err := destination.Deposit(run.req.Amount, s.now()); err != nil {
		s.compensate(ctx, run, err)
		return
	}

	s.credit(ctx, run, destination)
}

func (s *TransferSaga) credit(ctx context.Context, run *sagaRun, destination *domain.Account) {
	if err := s.accounts.Save(ctx, destination); err != nil {
		s.compensate(ctx, run, fmt.Errorf("save destination account: %w", err))
		return
	}

	s.mark(ctx, run, domain.SagaStatusCredited, "")

	s.complete(ctx, run)
}

func (s *TransferSaga) complete(ctx context.Context, run *sagaRun) {
	s.publish(ctx, run, s.completedEvent(run))
	s.mark(ctx, run, domain.SagaStatusCompleted, "")
	s.finished(run, domain.SagaStatusCompleted)

	run.log.Info().
		Str("from_account", run.details.FromAccount).
		Str("to_account", run.details.ToAccount).
		Str("amount", run.details.Amount).
		Msg("transfer completed")
}

// compensate refunds the source after its debit was persisted but the credit
// could not be.
func (s *TransferSaga) compensate(ctx context.Context, run *sagaRun, cause error) {
	run.log.Warn().Err(cause).Msg("credit failed after debit, compensating")

	err := s.refundSource(ctx, run)
	if err != nil {
		reason := fmt.Sprintf("%v; compensation failed: %v", cause, err)
		run.log.Error().Err(err).Msg("compensation failed, source account left debited")

		s.mark(ctx, run, domain.SagaStatusCompensationFailed, reason)
		s.publish(ctx, run, s.failedEvent(run, reason))
		s.finished(run, domain.SagaStatusCompensationFailed)

		return
	}

	reason := cause.Error() + compensationSuffix

	s.mark(ctx, run, domain.SagaStatusCompensated, reason)
	s.publish(ctx, run, s.failedEvent(run, reason))
	s.finished(run, domain.SagaStatusCompensated)
}

func (s *TransferSaga) refundSource(ctx context.Context, run *sagaRun) error {
	source, err := s.accounts.FindByNumber(ctx, run.req.From)
	if err != nil {
		return err
	}

	if err := source.Refund(run.req.Amount, s.now()); err != nil {
		return err
	}

	return s.accounts.Save(ctx, source)
}

func (s *TransferSaga) fail(ctx context.Context, run *sagaRun, cause error) {
	run.log.Warn().Err(cause).Msg("transfer failed")

	s.mark(ctx, run, domain.SagaStatusFailed, cause.Error())
	s.publish(ctx, run, s.failedEvent(run, cause.Error()))
	s.finished(run, domain.SagaStatusFailed)
}

func (s *TransferSaga) mark(ctx context.Context, run *sagaRun, status domain.SagaStatus, reason string) {
	if !run.tracked {
		return
	}

	if err := s.sagas.UpdateStatus(ctx, run.details.TransferID, status, reason); err != nil {
		run.log.Error().Err(err).Str("status", string(status)).Msg("failed to record saga status")
	}
}

func (s *TransferSaga) publish(ctx context.Context, run *sagaRun, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		run.log.Error().Err(err).Str("event_type", string(event.Envelope().EventType)).Msg("failed to publish outcome")
	}
}

func (s *TransferSaga) finished(run *sagaRun, status domain.SagaStatus) {
	if s.metrics != nil {
		s.metrics.SagaFinished(status, time.Since(run.started))
	}
}

func (s *TransferSaga) completedEvent(run *sagaRun) domain.TransferCompleted {
	return domain.TransferCompleted{
		EventEnvelope:   domain.NewEnvelope(s.ids.Generate(), domain.EventTypeTransferCompleted, s.now()),
		TransferDetails: run.details,
	}
}

func (s *TransferSaga) failedEvent(run *sagaRun, reason string) domain.TransferFailed {
	return domain.TransferFailed{
		EventEnvelope:   domain.NewEnvelope(s.ids.Generate(), domain.EventTypeTransferFailed, s.now()),
		TransferDetails: run.details,
		Reason:          reason,
	}
}

// lock takes both account locks in sorted order so two transfers touching the
// same pair cannot deadlock.
func (s *TransferSaga) lock(ctx context.Context, from, to domain.AccountNumber) (func(context.Context), error) {
	if s.locker == nil {
		return func(context.Context) {}, nil
	}

	numbers := []domain.AccountNumber{from, to}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })

	return s.locker.Lock(ctx, numbers...)
}
