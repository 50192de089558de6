package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/iho/gobank/internal/domain"
)

// memAccounts is an in-memory AccountRepository. Stored accounts are copies,
// like a document store.
type memAccounts struct {
	mu       sync.Mutex
	accounts map[domain.AccountNumber]domain.Account
	saves    int
	saveHook func(*domain.Account) error
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: map[domain.AccountNumber]domain.Account{}}
}

func (r *memAccounts) add(t *testing.T, balance string, status domain.AccountStatus) domain.AccountNumber {
	t.Helper()

	acc, err := domain.NewAccount("Test Holder", domain.CPF("52998224725"), domain.MustMoney(balance), time.Now())
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}

	acc.Status = status

	r.mu.Lock()
	r.accounts[acc.Number] = *acc
	r.mu.Unlock()

	return acc.Number
}

func (r *memAccounts) balance(t *testing.T, n domain.AccountNumber) string {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[n]
	if !ok {
		t.Fatalf("account %s missing", n)
	}

	return acc.Balance.String()
}

func (r *memAccounts) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saves
}

func (r *memAccounts) Save(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveHook != nil {
		if err := r.saveHook(account); err != nil {
			return err
		}
	}

	r.saves++
	r.accounts[account.Number] = *account

	return nil
}

func (r *memAccounts) FindByNumber(_ context.Context, n domain.AccountNumber) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[n]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, n)
	}

	return &acc, nil
}

func (r *memAccounts) FindByCPF(_ context.Context, cpf domain.CPF) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, acc := range r.accounts {
		if acc.CPF == cpf {
			return &acc, nil
		}
	}

	return nil, domain.ErrAccountNotFound
}

func (r *memAccounts) ExistsByCPF(ctx context.Context, cpf domain.CPF) (bool, error) {
	_, err := r.FindByCPF(ctx, cpf)
	return err == nil, nil
}

func (r *memAccounts) Delete(_ context.Context, n domain.AccountNumber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.accounts, n)

	return nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}

	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) PublishMany(ctx context.Context, events []domain.Event) error {
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}

	return nil
}

func (p *recordingPublisher) published() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]domain.Event(nil), p.events...)
}

func (p *recordingPublisher) count(t domain.EventType) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, e := range p.events {
		if e.Envelope().EventType == t {
			n++
		}
	}

	return n
}

// memSagas is an in-memory SagaStore.
type memSagas struct {
	mu    sync.Mutex
	sagas map[string]domain.TransferSaga
}

func newMemSagas() *memSagas {
	return &memSagas{sagas: map[string]domain.TransferSaga{}}
}

func (s *memSagas) Create(_ context.Context, saga *domain.TransferSaga) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sagas[saga.TransferID]; !ok {
		s.sagas[saga.TransferID] = *saga
	}

	return nil
}

func (s *memSagas) Get(_ context.Context, id string) (*domain.TransferSaga, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	saga, ok := s.sagas[id]
	if !ok {
		return nil, domain.ErrTransferNotFound
	}

	return &saga, nil
}

func (s *memSagas) UpdateStatus(_ context.Context, id string, status domain.SagaStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saga, ok := s.sagas[id]
	if !ok {
		return domain.ErrTransferNotFound
	}

	saga.Status = status
	saga.Reason = reason
	saga.UpdatedAt = time.Now().UTC()
	s.sagas[id] = saga

	return nil
}

func (s *memSagas) ListStale(_ context.Context, status domain.SagaStatus, olderThan time.Time, limit int) ([]*domain.TransferSaga, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.TransferSaga
	for _, saga := range s.sagas {
		if saga.Status == status && saga.UpdatedAt.Before(olderThan) && len(out) < limit {
			out = append(out, &saga)
		}
	}

	return out, nil
}

func (s *memSagas) status(id string) domain.SagaStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sagas[id].Status
}

// memLocker is a process-local AccountLocker.
type memLocker struct {
	mu    sync.Mutex
	locks map[domain.AccountNumber]*sync.Mutex
}

func newMemLocker() *memLocker {
	return &memLocker{locks: map[domain.AccountNumber]*sync.Mutex{}}
}

func (l *memLocker) Lock(_ context.Context, numbers ...domain.AccountNumber) (func(context.Context), error) {
	held := make([]*sync.Mutex, 0, len(numbers))

	for _, n := range numbers {
		l.mu.Lock()
		m, ok := l.locks[n]
		if !ok {
			m = &sync.Mutex{}
			l.locks[n] = m
		}
		l.mu.Unlock()

		m.Lock()
		held = append(held, m)
	}

	return func(context.Context) {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}, nil
}

// seqIDs generates predictable ids.
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++

	return fmt.Sprintf("id-%04d", g.n)
}

// flakySagas is a memSagas whose next Get or Create calls fail.
type flakySagas struct {
	*memSagas

	mu          sync.Mutex
	getFails    int
	createFails int
}

func (s *flakySagas) Get(ctx context.Context, id string) (*domain.TransferSaga, error) {
	s.mu.Lock()
	if s.getFails > 0 {
		s.getFails--
		s.mu.Unlock()
		return nil, errors.New("saga store unavailable")
	}
	s.mu.Unlock()

	return s.memSagas.Get(ctx, id)
}

func (s *flakySagas) Create(ctx context.Context, saga *domain.TransferSaga) error {
	s.mu.Lock()
	if s.createFails > 0 {
		s.createFails--
		s.mu.Unlock()
		return errors.New("saga store unavailable")
	}
	s.mu.Unlock()

	return s.memSagas.Create(ctx, saga)
}

// flakyLocker refuses the first fails calls, then behaves like memLocker.
type flakyLocker struct {
	*memLocker

	mu    sync.Mutex
	fails int
}

func (l *flakyLocker) Lock(ctx context.Context, numbers ...domain.AccountNumber) (func(context.Context), error) {
	l.mu.Lock()
	if l.fails > 0 {
		l.fails--
		l.mu.Unlock()
		return nil, domain.ErrAccountLocked
	}
	l.mu.Unlock()

	return l.memLocker.Lock(ctx, numbers...)
}
