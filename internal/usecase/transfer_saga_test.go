package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
	"github.com/iho/gobank/internal/usecase/mocks"
)

type sagaFixture struct {
	accounts  *memAccounts
	publisher *recordingPublisher
	sagas     *memSagas
	store     usecase.SagaStore
	saga      *usecase.TransferSaga
}

type sagaOption func(*usecase.TransferSagaDeps, *sagaFixture)

func withSagaStore() sagaOption {
	return func(d *usecase.TransferSagaDeps, f *sagaFixture) {
		f.sagas = newMemSagas()
		f.store = f.sagas
		d.Sagas = f.sagas
	}
}

func withFlakySagas(store *flakySagas) sagaOption {
	return func(d *usecase.TransferSagaDeps, f *sagaFixture) {
		f.sagas = store.memSagas
		f.store = store
		d.Sagas = store
	}
}

func withLocker(l usecase.AccountLocker) sagaOption {
	return func(d *usecase.TransferSagaDeps, _ *sagaFixture) {
		d.Locker = l
	}
}

func withMetrics(m usecase.SagaMetrics) sagaOption {
	return func(d *usecase.TransferSagaDeps, _ *sagaFixture) {
		d.Metrics = m
	}
}

func newSagaFixture(opts ...sagaOption) *sagaFixture {
	f := &sagaFixture{
		accounts:  newMemAccounts(),
		publisher: &recordingPublisher{},
	}

	deps := usecase.TransferSagaDeps{
		Accounts:  f.accounts,
		Publisher: f.publisher,
		IDs:       &seqIDs{},
		Logger:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&deps, f)
	}

	f.saga = usecase.NewTransferSaga(deps)

	return f
}

// producer is the request side sharing the fixture's accounts, publisher and store.
func (f *sagaFixture) producer() *usecase.TransferUseCase {
	return usecase.NewTransferUseCase(f.accounts, f.publisher, f.store, &seqIDs{}, nil, zerolog.Nop())
}

// commands returns the encoded TransferRequested commands published so far.
func (f *sagaFixture) commands(t *testing.T) [][]byte {
	t.Helper()

	var bodies [][]byte
	for _, e := range f.publisher.published() {
		cmd, ok := e.(domain.TransferRequested)
		if !ok {
			continue
		}
		body, err := json.Marshal(cmd)
		require.NoError(t, err)
		bodies = append(bodies, body)
	}

	return bodies
}

// outcomes returns the terminal events published so far.
func (f *sagaFixture) outcomes() []domain.Event {
	var out []domain.Event
	for _, e := range f.publisher.published() {
		switch e.(type) {
		case domain.TransferCompleted, domain.TransferFailed:
			out = append(out, e)
		}
	}

	return out
}

func transferBody(t *testing.T, id string, from, to domain.AccountNumber, amount string) []byte {
	t.Helper()

	body, err := json.Marshal(domain.TransferRequested{
		EventEnvelope: domain.NewEnvelope("evt-"+id, domain.EventTypeTransferRequested, time.Now()),
		TransferDetails: domain.TransferDetails{
			TransferID:  id,
			FromAccount: from.String(),
			ToAccount:   to.String(),
			Amount:      amount,
		},
	})
	require.NoError(t, err)

	return body
}

func TestTransferSaga_Completes(t *testing.T) {
	f := newSagaFixture()
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)

	f.saga.Handle(context.Background(), transferBody(t, "t-1", src, dst, "150.00"))

	assert.Equal(t, "850.00", f.accounts.balance(t, src))
	assert.Equal(t, "650.00", f.accounts.balance(t, dst))

	events := f.publisher.published()
	require.Len(t, events, 1)

	completed, ok := events[0].(domain.TransferCompleted)
	require.True(t, ok, "expected TransferCompleted, got %T", events[0])
	assert.Equal(t, domain.TransferDetails{
		TransferID:  "t-1",
		FromAccount: src.String(),
		ToAccount:   dst.String(),
		Amount:      "150.00",
	}, completed.TransferDetails)
	assert.Equal(t, domain.RoutingKeyTransferCompleted, completed.RoutingKey())
	assert.NotEmpty(t, completed.EventID)
}

func TestTransferSaga_InsufficientFunds(t *testing.T) {
	f := newSagaFixture(withSagaStore())
	src := f.accounts.add(t, "100.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)

	f.saga.Handle(context.Background(), transferBody(t, "t-2", src, dst, "150.00"))

	assert.Equal(t, "100.00", f.accounts.balance(t, src))
	assert.Equal(t, "500.00", f.accounts.balance(t, dst))
	assert.Zero(t, f.accounts.saveCount())

	events := f.publisher.published()
	require.Len(t, events, 1)

	failed, ok := events[0].(domain.TransferFailed)
	require.True(t, ok, "expected TransferFailed, got %T", events[0])
	assert.Contains(t, failed.Reason, "insufficient funds")
	assert.Equal(t, "t-2", failed.TransferID)
	assert.Equal(t, domain.SagaStatusFailed, f.sagas.status("t-2"))
}

func TestTransferSaga_FailsWithoutPersisting(t *testing.T) {
	tests := []struct {
		name      string
		srcStatus domain.AccountStatus
		dstStatus domain.AccountStatus
		missing   bool
		reason    string
	}{
		{name: "inactive source", srcStatus: domain.AccountStatusBlocked, dstStatus: domain.AccountStatusActive, reason: "not active"},
		{name: "inactive destination", srcStatus: domain.AccountStatusActive, dstStatus: domain.AccountStatusAnalysis, reason: "not active"},
		{name: "missing destination", srcStatus: domain.AccountStatusActive, missing: true, reason: "account not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSagaFixture()
			src := f.accounts.add(t, "100.00", tt.srcStatus)

			dst := domain.GenerateAccountNumber()
			if !tt.missing {
				dst = f.accounts.add(t, "0", tt.dstStatus)
			}

			f.saga.Handle(context.Background(), transferBody(t, "t-x", src, dst, "10"))

			assert.Equal(t, "100.00", f.accounts.balance(t, src))
			assert.Zero(t, f.accounts.saveCount())

			events := f.publisher.published()
			require.Len(t, events, 1)

			failed, ok := events[0].(domain.TransferFailed)
			require.True(t, ok)
			assert.Contains(t, failed.Reason, tt.reason)
		})
	}
}

func TestTransferSaga_MalformedCommand(t *testing.T) {
	f := newSagaFixture(withSagaStore())

	f.saga.Handle(context.Background(), []byte(`{"amount": "oops"`))

	events := f.publisher.published()
	require.Len(t, events, 1)

	failed, ok := events[0].(domain.TransferFailed)
	require.True(t, ok)
	assert.Equal(t, domain.UnknownTransferID, failed.TransferID)
	assert.Equal(t, "0", failed.Amount)
	assert.Contains(t, failed.Reason, domain.ErrMalformedCommand.Error())
	assert.Zero(t, f.accounts.saveCount())

	_, err := f.sagas.Get(context.Background(), domain.UnknownTransferID)
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
}

func TestTransferSaga_SameAccountCommand(t *testing.T) {
	f := newSagaFixture()
	src := f.accounts.add(t, "100.00", domain.AccountStatusActive)

	f.saga.Handle(context.Background(), transferBody(t, "t-same", src, src, "10"))

	events := f.publisher.published()
	require.Len(t, events, 1)

	failed, ok := events[0].(domain.TransferFailed)
	require.True(t, ok)
	assert.Contains(t, failed.Reason, domain.ErrSameAccount.Error())
	assert.Equal(t, "100.00", f.accounts.balance(t, src))
}

// Without a saga store every redelivery runs the whole transfer again.
func TestTransferSaga_RedeliveryReexecutesWithoutSagaStore(t *testing.T) {
	f := newSagaFixture()
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)
	body := transferBody(t, "t-dup", src, dst, "150.00")

	f.saga.Handle(context.Background(), body)
	f.saga.Handle(context.Background(), body)

	assert.Equal(t, "700.00", f.accounts.balance(t, src))
	assert.Equal(t, "800.00", f.accounts.balance(t, dst))
	assert.Equal(t, 4, f.accounts.saveCount())

	events := f.publisher.published()
	require.Len(t, events, 2)

	for _, e := range events {
		assert.IsType(t, domain.TransferCompleted{}, e)
	}
}

func TestTransferSaga_RedeliveryReemitsStoredOutcome(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	metrics := mocks.NewMockSagaMetrics(ctrl)
	metrics.EXPECT().SagaFinished(domain.SagaStatusCompleted, gomock.Any()).Times(1)
	metrics.EXPECT().SagaDuplicate().Times(1)

	f := newSagaFixture(withSagaStore(), withMetrics(metrics))
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)
	body := transferBody(t, "t-dup", src, dst, "150.00")

	f.saga.Handle(context.Background(), body)
	f.saga.Handle(context.Background(), body)

	assert.Equal(t, "850.00", f.accounts.balance(t, src))
	assert.Equal(t, "650.00", f.accounts.balance(t, dst))
	assert.Equal(t, 2, f.accounts.saveCount())
	assert.Equal(t, domain.SagaStatusCompleted, f.sagas.status("t-dup"))

	events := f.publisher.published()
	require.Len(t, events, 2)
	assert.IsType(t, domain.TransferCompleted{}, events[1])
	assert.Equal(t, "t-dup", events[1].(domain.TransferCompleted).TransferID)
}

func TestTransferSaga_RedeliveryOfFailedTransfer(t *testing.T) {
	f := newSagaFixture(withSagaStore())
	src := f.accounts.add(t, "100.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "0", domain.AccountStatusActive)
	body := transferBody(t, "t-f", src, dst, "150.00")

	f.saga.Handle(context.Background(), body)

	// funds arrive before the redelivery; the stored outcome still wins
	acc, _ := f.accounts.FindByNumber(context.Background(), src)
	acc.Balance = domain.MustMoney("1000")
	require.NoError(t, f.accounts.Save(context.Background(), acc))

	f.saga.Handle(context.Background(), body)

	assert.Equal(t, "1000.00", f.accounts.balance(t, src))

	events := f.publisher.published()
	require.Len(t, events, 2)

	again, ok := events[1].(domain.TransferFailed)
	require.True(t, ok)
	assert.Contains(t, again.Reason, "insufficient funds")
}

func TestTransferSaga_ResumesAfterDebit(t *testing.T) {
	f := newSagaFixture(withSagaStore())
	src := f.accounts.add(t, "850.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)

	ctx := context.Background()
	require.NoError(t, f.sagas.Create(ctx, &domain.TransferSaga{
		TransferID:  "t-r",
		FromAccount: src,
		ToAccount:   dst,
		Amount:      domain.MustMoney("150.00"),
		Status:      domain.SagaStatusDebited,
	}))

	f.saga.Handle(ctx, transferBody(t, "t-r", src, dst, "150.00"))

	assert.Equal(t, "850.00", f.accounts.balance(t, src))
	assert.Equal(t, "650.00", f.accounts.balance(t, dst))
	assert.Equal(t, domain.SagaStatusCompleted, f.sagas.status("t-r"))

	events := f.publisher.published()
	require.Len(t, events, 1)
	assert.IsType(t, domain.TransferCompleted{}, events[0])
}

func TestTransferSaga_ProducerRecordedSagaRuns(t *testing.T) {
	f := newSagaFixture(withSagaStore())
	src := f.accounts.add(t, "10.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "0", domain.AccountStatusActive)

	ctx := context.Background()
	require.NoError(t, f.sagas.Create(ctx, &domain.TransferSaga{
		TransferID:  "t-p",
		FromAccount: src,
		ToAccount:   dst,
		Amount:      domain.MustMoney("10"),
		Status:      domain.SagaStatusRequested,
	}))

	f.saga.Handle(ctx, transferBody(t, "t-p", src, dst, "10"))

	assert.Equal(t, "0.00", f.accounts.balance(t, src))
	assert.Equal(t, "10.00", f.accounts.balance(t, dst))
	assert.Equal(t, domain.SagaStatusCompleted, f.sagas.status("t-p"))
}

func TestTransferSaga_CompensatesWhenCreditNotPersisted(t *testing.T) {
	f := newSagaFixture(withSagaStore())
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)

	storeDown := errors.New("store unavailable")
	f.accounts.saveHook = func(a *domain.Account) error {
		if a.Number == dst {
			return storeDown
		}
		return nil
	}

	f.saga.Handle(context.Background(), transferBody(t, "t-c", src, dst, "150.00"))

	assert.Equal(t, "1000.00", f.accounts.balance(t, src))
	assert.Equal(t, "500.00", f.accounts.balance(t, dst))
	assert.Equal(t, domain.SagaStatusCompensated, f.sagas.status("t-c"))

	events := f.publisher.published()
	require.Len(t, events, 1)

	failed, ok := events[0].(domain.TransferFailed)
	require.True(t, ok)
	assert.Contains(t, failed.Reason, "store unavailable")
	assert.True(t, strings.HasSuffix(failed.Reason, "debit reversed"), failed.Reason)
}

func TestTransferSaga_CompensationFailure(t *testing.T) {
	f := newSagaFixture(withSagaStore())
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)

	f.accounts.saveHook = func(a *domain.Account) error {
		if a.Number == dst || (a.Number == src && a.Balance.String() == "1000.00") {
			return errors.New("write rejected")
		}
		return nil
	}

	f.saga.Handle(context.Background(), transferBody(t, "t-cf", src, dst, "150.00"))

	assert.Equal(t, "850.00", f.accounts.balance(t, src))
	assert.Equal(t, domain.SagaStatusCompensationFailed, f.sagas.status("t-cf"))

	events := f.publisher.published()
	require.Len(t, events, 1)
	assert.Contains(t, events[0].(domain.TransferFailed).Reason, "compensation failed")
}

func TestTransferSaga_SourceSaveFailure(t *testing.T) {
	f := newSagaFixture()
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)

	f.accounts.saveHook = func(*domain.Account) error { return errors.New("connection refused") }

	f.saga.Handle(context.Background(), transferBody(t, "t-s", src, dst, "150.00"))

	assert.Equal(t, "1000.00", f.accounts.balance(t, src))
	assert.Equal(t, "500.00", f.accounts.balance(t, dst))

	events := f.publisher.published()
	require.Len(t, events, 1)
	assert.Contains(t, events[0].(domain.TransferFailed).Reason, "connection refused")
}

func TestTransferSaga_PublishFailureIsSwallowed(t *testing.T) {
	f := newSagaFixture()
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)
	f.publisher.err = errors.New("broker down")

	require.NotPanics(t, func() {
		f.saga.Handle(context.Background(), transferBody(t, "t-p", src, dst, "150.00"))
	})

	assert.Equal(t, "850.00", f.accounts.balance(t, src))
	assert.Equal(t, "650.00", f.accounts.balance(t, dst))
}

func TestTransferSaga_LocksAccountsInSortedOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	locker := mocks.NewMockAccountLocker(ctrl)
	f := newSagaFixture(withLocker(locker))

	a := f.accounts.add(t, "100.00", domain.AccountStatusActive)
	b := f.accounts.add(t, "100.00", domain.AccountStatusActive)

	first, second := a, b
	if second < first {
		first, second = second, first
	}

	unlocked := false
	locker.EXPECT().
		Lock(gomock.Any(), first, second).
		Return(func(context.Context) { unlocked = true }, nil)

	f.saga.Handle(context.Background(), transferBody(t, "t-l", b, a, "10"))

	assert.True(t, unlocked)
	assert.Equal(t, "110.00", f.accounts.balance(t, a))
}

func TestTransferSaga_LockFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	locker := mocks.NewMockAccountLocker(ctrl)
	locker.EXPECT().Lock(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("lock timeout"))

	f := newSagaFixture(withLocker(locker))
	a := f.accounts.add(t, "100.00", domain.AccountStatusActive)
	b := f.accounts.add(t, "100.00", domain.AccountStatusActive)

	f.saga.Handle(context.Background(), transferBody(t, "t-lf", a, b, "10"))

	assert.Zero(t, f.accounts.saveCount())

	events := f.publisher.published()
	require.Len(t, events, 1)
	assert.Contains(t, events[0].(domain.TransferFailed).Reason, "lock timeout")
}

func TestTransferSaga_ConcurrentTransfersConserveMoneyWithLocker(t *testing.T) {
	f := newSagaFixture(withLocker(newMemLocker()))
	a := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	b := f.accounts.add(t, "1000.00", domain.AccountStatusActive)

	bodies := make([][]byte, 50)
	for i := range bodies {
		from, to := a, b
		if i%2 == 1 {
			from, to = b, a
		}

		bodies[i] = transferBody(t, fmt.Sprintf("t-%d", i), from, to, "7")
	}

	var wg sync.WaitGroup
	for _, body := range bodies {
		wg.Add(1)

		go func() {
			defer wg.Done()
			f.saga.Handle(context.Background(), body)
		}()
	}

	wg.Wait()

	// 25 transfers each way
	assert.Equal(t, "1000.00", f.accounts.balance(t, a))
	assert.Equal(t, "1000.00", f.accounts.balance(t, b))
	assert.Len(t, f.publisher.published(), 50)
}

func TestTransferSaga_StoreOutageDefersUntilRepublish(t *testing.T) {
	ctrl := gomock.NewController(t)
	metrics := mocks.NewMockSagaMetrics(ctrl)
	metrics.EXPECT().SagaDeferred().Times(1)
	metrics.EXPECT().SagaFinished(domain.SagaStatusCompleted, gomock.Any()).Times(1)
	metrics.EXPECT().SagaDuplicate().Times(1)

	store := &flakySagas{memSagas: newMemSagas(), getFails: 1}
	f := newSagaFixture(withFlakySagas(store), withMetrics(metrics))
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)
	ctx := context.Background()

	receipt, err := f.producer().RequestTransfer(ctx, usecase.RequestTransferInput{
		FromAccount: src.String(),
		ToAccount:   dst.String(),
		Amount:      "150.00",
	})
	require.NoError(t, err)

	cmds := f.commands(t)
	require.Len(t, cmds, 1)

	// The saga store cannot be read, so nothing is touched and no outcome is sent.
	f.saga.Handle(ctx, cmds[0])

	assert.Equal(t, "1000.00", f.accounts.balance(t, src))
	assert.Equal(t, "500.00", f.accounts.balance(t, dst))
	assert.Zero(t, f.accounts.saveCount())
	assert.Empty(t, f.outcomes())
	assert.Equal(t, domain.SagaStatusRequested, f.sagas.status(receipt.TransferID))

	n, err := f.producer().RepublishStale(ctx, 0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	cmds = f.commands(t)
	require.Len(t, cmds, 2)

	f.saga.Handle(ctx, cmds[1])
	// The broker may still redeliver the first copy.
	f.saga.Handle(ctx, cmds[0])

	assert.Equal(t, "850.00", f.accounts.balance(t, src))
	assert.Equal(t, "650.00", f.accounts.balance(t, dst))
	assert.Equal(t, domain.SagaStatusCompleted, f.sagas.status(receipt.TransferID))

	outcomes := f.outcomes()
	require.Len(t, outcomes, 2)
	for _, e := range outcomes {
		completed, ok := e.(domain.TransferCompleted)
		require.True(t, ok, "expected TransferCompleted, got %T", e)
		assert.Equal(t, receipt.TransferID, completed.TransferID)
	}
}

func TestTransferSaga_StoreCreateFailureDefers(t *testing.T) {
	store := &flakySagas{memSagas: newMemSagas(), createFails: 1}
	f := newSagaFixture(withFlakySagas(store))
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)
	ctx := context.Background()

	// A command with no row: the first insert fails, the deferral records it.
	f.saga.Handle(ctx, transferBody(t, "t-create", src, dst, "150.00"))

	assert.Equal(t, "1000.00", f.accounts.balance(t, src))
	assert.Zero(t, f.accounts.saveCount())
	assert.Empty(t, f.outcomes())
	assert.Equal(t, domain.SagaStatusRequested, f.sagas.status("t-create"))

	n, err := f.producer().RepublishStale(ctx, 0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	cmds := f.commands(t)
	require.Len(t, cmds, 1)
	f.saga.Handle(ctx, cmds[0])

	assert.Equal(t, "850.00", f.accounts.balance(t, src))
	assert.Equal(t, "650.00", f.accounts.balance(t, dst))
	require.Len(t, f.outcomes(), 1)
	assert.IsType(t, domain.TransferCompleted{}, f.outcomes()[0])
}

func TestTransferSaga_LockFailureWithStoreHasSingleOutcome(t *testing.T) {
	locker := &flakyLocker{memLocker: newMemLocker(), fails: 1}
	f := newSagaFixture(withSagaStore(), withLocker(locker))
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)
	ctx := context.Background()

	f.saga.Handle(ctx, transferBody(t, "t-lock", src, dst, "150.00"))

	assert.Empty(t, f.outcomes(), "a lock timeout must not produce an outcome")
	assert.Equal(t, domain.SagaStatusRequested, f.sagas.status("t-lock"))
	assert.Zero(t, f.accounts.saveCount())

	n, err := f.producer().RepublishStale(ctx, 0, 10)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	cmds := f.commands(t)
	require.Len(t, cmds, 1)
	f.saga.Handle(ctx, cmds[0])

	outcomes := f.outcomes()
	require.Len(t, outcomes, 1)
	assert.IsType(t, domain.TransferCompleted{}, outcomes[0])
	assert.Equal(t, "850.00", f.accounts.balance(t, src))
	assert.Equal(t, domain.SagaStatusCompleted, f.sagas.status("t-lock"))
}

func TestTransferSaga_MalformedCommandFailsOpenRow(t *testing.T) {
	f := newSagaFixture(withSagaStore())
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)
	ctx := context.Background()

	receipt, err := f.producer().RequestTransfer(ctx, usecase.RequestTransferInput{
		FromAccount: src.String(),
		ToAccount:   dst.String(),
		Amount:      "150.00",
	})
	require.NoError(t, err)

	f.saga.Handle(ctx, transferBody(t, receipt.TransferID, src, dst, "abc"))

	outcomes := f.outcomes()
	require.Len(t, outcomes, 1)
	assert.IsType(t, domain.TransferFailed{}, outcomes[0])
	assert.Equal(t, domain.SagaStatusFailed, f.sagas.status(receipt.TransferID))

	// The row is closed, so nothing is swept and the valid copy replays the failure.
	n, err := f.producer().RepublishStale(ctx, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, n)

	cmds := f.commands(t)
	require.Len(t, cmds, 1)
	f.saga.Handle(ctx, cmds[0])

	assert.Equal(t, "1000.00", f.accounts.balance(t, src))
	outcomes = f.outcomes()
	require.Len(t, outcomes, 2)
	assert.IsType(t, domain.TransferFailed{}, outcomes[1])
}

func TestTransferSaga_MalformedCopyOfCompletedTransferReplays(t *testing.T) {
	f := newSagaFixture(withSagaStore())
	src := f.accounts.add(t, "1000.00", domain.AccountStatusActive)
	dst := f.accounts.add(t, "500.00", domain.AccountStatusActive)
	ctx := context.Background()

	f.saga.Handle(ctx, transferBody(t, "t-done", src, dst, "150.00"))
	f.saga.Handle(ctx, transferBody(t, "t-done", src, dst, "abc"))

	outcomes := f.outcomes()
	require.Len(t, outcomes, 2)
	assert.IsType(t, domain.TransferCompleted{}, outcomes[0])

	replayed, ok := outcomes[1].(domain.TransferCompleted)
	require.True(t, ok, "expected TransferCompleted, got %T", outcomes[1])
	assert.Equal(t, "150.00", replayed.Amount)
	assert.Equal(t, domain.SagaStatusCompleted, f.sagas.status("t-done"))
	assert.Equal(t, "850.00", f.accounts.balance(t, src))
}
