package domain

import (
	"fmt"
	"time"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusAnalysis AccountStatus = "analysis"
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
	AccountStatusBlocked  AccountStatus = "blocked"
	AccountStatusClosed   AccountStatus = "closed"
)

// ParseAccountStatus converts a stored status string back to an AccountStatus.
func ParseAccountStatus(s string) (AccountStatus, error) {
	switch st := AccountStatus(s); st {
	case AccountStatusAnalysis, AccountStatusActive, AccountStatusInactive, AccountStatusBlocked, AccountStatusClosed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAccountStatus, s)
	}
}

// Account is the aggregate that owns a balance. Balance never goes negative
// and only moves while the account is active.
type Account struct {
	Number     AccountNumber
	HolderName string
	CPF        CPF
	Balance    Money
	Status     AccountStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewAccount opens an account in analysis with the given initial balance.
func NewAccount(holderName string, cpf CPF, initial Money, now time.Time) (*Account, error) {
	if err := ValidateHolderName(holderName); err != nil {
		return nil, err
	}

	return &Account{
		Number:     GenerateAccountNumber(),
		HolderName: holderName,
		CPF:        cpf,
		Balance:    initial,
		Status:     AccountStatusAnalysis,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Deposit credits amount to an active account.
func (a *Account) Deposit(amount Money, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if a.Status != AccountStatusActive {
		return a.notActive()
	}

	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = now

	return nil
}

// Withdraw debits amount from an active account with sufficient funds.
func (a *Account) Withdraw(amount Money, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if a.Status != AccountStatusActive {
		return a.notActive()
	}

	balance, err := a.Balance.Sub(amount)
	if err != nil {
		return fmt.Errorf("account %s: %w", a.Number, err)
	}

	a.Balance = balance
	a.UpdatedAt = now

	return nil
}

// Refund credits back an amount previously withdrawn by a transfer that could
// not complete. It ignores the active requirement so a status change that
// happened mid-transfer cannot strand the funds, but a closed account rejects it.
func (a *Account) Refund(amount Money, now time.Time) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if a.Status == AccountStatusClosed {
		return fmt.Errorf("account %s: %w", a.Number, ErrAccountClosed)
	}

	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = now

	return nil
}

// Approve activates an account under analysis or blocked.
func (a *Account) Approve(now time.Time) error {
	return a.transition(now, AccountStatusActive, AccountStatusAnalysis, AccountStatusBlocked)
}

// Reject moves an account under analysis to inactive.
func (a *Account) Reject(now time.Time) error {
	return a.transition(now, AccountStatusInactive, AccountStatusAnalysis)
}

// Reactivate activates an inactive or blocked account.
func (a *Account) Reactivate(now time.Time) error {
	return a.transition(now, AccountStatusActive, AccountStatusInactive, AccountStatusBlocked)
}

// Block blocks any account that is not already blocked.
func (a *Account) Block(now time.Time) error {
	if a.Status == AccountStatusBlocked {
		return a.invalidTransition(AccountStatusBlocked)
	}

	a.setStatus(AccountStatusBlocked, now)

	return nil
}

// Unblock activates any account that is not already active.
func (a *Account) Unblock(now time.Time) error {
	if a.Status == AccountStatusActive {
		return a.invalidTransition(AccountStatusActive)
	}

	a.setStatus(AccountStatusActive, now)

	return nil
}

// Close closes any account that is not already closed.
func (a *Account) Close(now time.Time) error {
	if a.Status == AccountStatusClosed {
		return a.invalidTransition(AccountStatusClosed)
	}

	a.setStatus(AccountStatusClosed, now)

	return nil
}

func (a *Account) transition(now time.Time, to AccountStatus, from ...AccountStatus) error {
	for _, allowed := range from {
		if a.Status == allowed {
			a.setStatus(to, now)
			return nil
		}
	}

	return a.invalidTransition(to)
}

func (a *Account) setStatus(status AccountStatus, now time.Time) {
	a.Status = status
	a.UpdatedAt = now
}

func (a *Account) invalidTransition(to AccountStatus) error {
	return fmt.Errorf("%w: account %s cannot move from %s to %s", ErrInvalidStatusTransition, a.Number, a.Status, to)
}

func (a *Account) notActive() error {
	return fmt.Errorf("%w: account %s is %s", ErrAccountNotActive, a.Number, a.Status)
}
