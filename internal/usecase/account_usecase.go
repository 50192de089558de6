package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/domain"
)

// AccountUseCase handles the synchronous single-account operations.
type AccountUseCase struct {
	accountRepo AccountRepository
	publisher   EventPublisher
	locker      AccountLocker
	idGen       IDGenerator
	log         zerolog.Logger
}

// NewAccountUseCase creates a new AccountUseCase. locker may be nil.
func NewAccountUseCase(
	accountRepo AccountRepository,
	publisher EventPublisher,
	locker AccountLocker,
	idGen IDGenerator,
	log zerolog.Logger,
) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		publisher:   publisher,
		locker:      locker,
		idGen:       idGen,
		log:         log.With().Str("component", "account_usecase").Logger(),
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	HolderName     string
	CPF            string
	InitialBalance string
}

// CreateAccount opens a new account in analysis. A CPF can own one account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	cpf, err := domain.ParseCPF(input.CPF)
	if err != nil {
		return nil, err
	}

	initial := domain.Money{}
	if input.InitialBalance != "" {
		if initial, err = domain.ParseMoney(input.InitialBalance); err != nil {
			return nil, err
		}
	}

	exists, err := uc.accountRepo.ExistsByCPF(ctx, cpf)
	if err != nil {
		return nil, err
	}

	if exists {
		return nil, domain.ErrCPFAlreadyRegistered
	}

	now := time.Now().UTC()

	account, err := domain.NewAccount(input.HolderName, cpf, initial, now)
	if err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	uc.publish(ctx, domain.AccountCreated{
		EventEnvelope:  uc.envelope(domain.EventTypeAccountCreated, now),
		AccountNumber:  account.Number.String(),
		HolderName:     account.HolderName,
		CPF:            account.CPF.String(),
		InitialBalance: account.Balance.String(),
	})

	return account, nil
}

// GetAccount retrieves an account by number.
func (uc *AccountUseCase) GetAccount(ctx context.Context, number string) (*domain.Account, error) {
	n, err := domain.ParseAccountNumber(number)
	if err != nil {
		return nil, err
	}

	return uc.accountRepo.FindByNumber(ctx, n)
}

// GetAccountByCPF retrieves the account owned by cpf.
func (uc *AccountUseCase) GetAccountByCPF(ctx context.Context, cpf string) (*domain.Account, error) {
	c, err := domain.ParseCPF(cpf)
	if err != nil {
		return nil, err
	}

	return uc.accountRepo.FindByCPF(ctx, c)
}

func (uc *AccountUseCase) Approve(ctx context.Context, number string) (*domain.Account, error) {
	return uc.mutate(ctx, number, (*domain.Account).Approve, func(a *domain.Account, at time.Time) domain.Event {
		return domain.AccountApproved{
			EventEnvelope: uc.envelope(domain.EventTypeAccountApproved, at),
			AccountNumber: a.Number.String(),
		}
	})
}

func (uc *AccountUseCase) Reject(ctx context.Context, number, reason string) (*domain.Account, error) {
	return uc.mutate(ctx, number, (*domain.Account).Reject, func(a *domain.Account, at time.Time) domain.Event {
		return domain.AccountRejected{
			EventEnvelope: uc.envelope(domain.EventTypeAccountRejected, at),
			AccountNumber: a.Number.String(),
			Reason:        reason,
		}
	})
}

func (uc *AccountUseCase) Block(ctx context.Context, number, reason string) (*domain.Account, error) {
	return uc.mutate(ctx, number, (*domain.Account).Block, func(a *domain.Account, at time.Time) domain.Event {
		return domain.AccountBlocked{
			EventEnvelope: uc.envelope(domain.EventTypeAccountBlocked, at),
			AccountNumber: a.Number.String(),
			Reason:        reason,
		}
	})
}

func (uc *AccountUseCase) Unblock(ctx context.Context, number string) (*domain.Account, error) {
	return uc.mutate(ctx, number, (*domain.Account).Unblock, nil)
}

func (uc *AccountUseCase) Reactivate(ctx context.Context, number string) (*domain.Account, error) {
	return uc.mutate(ctx, number, (*domain.Account).Reactivate, nil)
}

func (uc *AccountUseCase) Close(ctx context.Context, number string) (*domain.Account, error) {
	return uc.mutate(ctx, number, (*domain.Account).Close, func(a *domain.Account, at time.Time) domain.Event {
		return domain.AccountClosed{
			EventEnvelope: uc.envelope(domain.EventTypeAccountClosed, at),
			AccountNumber: a.Number.String(),
		}
	})
}

// DeleteAccount removes a closed account.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, number string) error {
	n, err := domain.ParseAccountNumber(number)
	if err != nil {
		return err
	}

	unlock, err := uc.lock(ctx, n)
	if err != nil {
		return err
	}
	defer unlock(context.WithoutCancel(ctx))

	account, err := uc.accountRepo.FindByNumber(ctx, n)
	if err != nil {
		return err
	}

	if account.Status != domain.AccountStatusClosed {
		return fmt.Errorf("%w: account %s must be closed before deletion", domain.ErrInvalidStatusTransition, n)
	}

	return uc.accountRepo.Delete(ctx, n)
}

// BalanceChange is the result of a deposit or withdrawal.
type BalanceChange struct {
	Account    *domain.Account
	Amount     domain.Money
	OldBalance domain.Money
	NewBalance domain.Money
}

// Deposit credits an active account.
func (uc *AccountUseCase) Deposit(ctx context.Context, number, amount string) (*BalanceChange, error) {
	return uc.move(ctx, number, amount, (*domain.Account).Deposit, domain.EventTypeMoneyDeposited)
}

// Withdraw debits an active account with sufficient funds.
func (uc *AccountUseCase) Withdraw(ctx context.Context, number, amount string) (*BalanceChange, error) {
	return uc.move(ctx, number, amount, (*domain.Account).Withdraw, domain.EventTypeMoneyWithdrawn)
}

func (uc *AccountUseCase) move(
	ctx context.Context,
	number, amount string,
	apply func(*domain.Account, domain.Money, time.Time) error,
	eventType domain.EventType,
) (*BalanceChange, error) {
	m, err := domain.ParseMoney(amount)
	if err != nil {
		return nil, err
	}

	change := &BalanceChange{Amount: m}

	account, err := uc.mutate(ctx, number,
		func(a *domain.Account, at time.Time) error {
			change.OldBalance = a.Balance
			return apply(a, m, at)
		},
		func(a *domain.Account, at time.Time) domain.Event {
			moved := domain.MoneyMoved{
				AccountNumber: a.Number.String(),
				Amount:        m.String(),
				NewBalance:    a.Balance.String(),
			}
			if eventType == domain.EventTypeMoneyWithdrawn {
				return domain.MoneyWithdrawn{EventEnvelope: uc.envelope(eventType, at), MoneyMoved: moved}
			}
			return domain.MoneyDeposited{EventEnvelope: uc.envelope(eventType, at), MoneyMoved: moved}
		},
	)
	if err != nil {
		return nil, err
	}

	change.Account = account
	change.NewBalance = account.Balance

	return change, nil
}

// mutate loads the account under its lock, applies op, saves it and
// publishes the event built by event, if any.
func (uc *AccountUseCase) mutate(
	ctx context.Context,
	number string,
	op func(*domain.Account, time.Time) error,
	event func(*domain.Account, time.Time) domain.Event,
) (*domain.Account, error) {
	n, err := domain.ParseAccountNumber(number)
	if err != nil {
		return nil, err
	}

	unlock, err := uc.lock(ctx, n)
	if err != nil {
		return nil, err
	}
	defer unlock(context.WithoutCancel(ctx))

	account, err := uc.accountRepo.FindByNumber(ctx, n)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := op(account, now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	if event != nil {
		uc.publish(ctx, event(account, now))
	}

	return account, nil
}

func (uc *AccountUseCase) lock(ctx context.Context, n domain.AccountNumber) (func(context.Context), error) {
	if uc.locker == nil {
		return func(context.Context) {}, nil
	}

	return uc.locker.Lock(ctx, n)
}

func (uc *AccountUseCase) envelope(t domain.EventType, at time.Time) domain.EventEnvelope {
	return domain.NewEnvelope(uc.idGen.Generate(), t, at)
}

// publish is best effort: the account state is already saved.
func (uc *AccountUseCase) publish(ctx context.Context, event domain.Event) {
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.log.Error().Err(err).Str("event_type", string(event.Envelope().EventType)).Msg("failed to publish account event")
	}
}
