package domain

import (
	"fmt"
	"time"
)

// TransferStatusProcessing is the only answer the producer ever gives.
const TransferStatusProcessing = "processing"

// TransferRequest is a validated transfer intent.
type TransferRequest struct {
	From   AccountNumber
	To     AccountNumber
	Amount Money
}

// Validate checks the request shape. Account existence, status and funds are
// not checked here.
func (r TransferRequest) Validate() error {
	if r.From == r.To {
		return ErrSameAccount
	}

	return ValidateTransferAmount(r.Amount)
}

// SagaStatus is the persisted progress of one transfer.
type SagaStatus string

const (
	SagaStatusRequested          SagaStatus = "requested"
	SagaStatusProcessing         SagaStatus = "processing"
	SagaStatusDebited            SagaStatus = "debited"
	SagaStatusCredited           SagaStatus = "credited"
	SagaStatusCompleted          SagaStatus = "completed"
	SagaStatusFailed             SagaStatus = "failed"
	SagaStatusCompensated        SagaStatus = "compensated"
	SagaStatusCompensationFailed SagaStatus = "compensation_failed"
)

// ParseSagaStatus converts a stored status string.
func ParseSagaStatus(s string) (SagaStatus, error) {
	switch st := SagaStatus(s); st {
	case SagaStatusRequested, SagaStatusProcessing, SagaStatusDebited, SagaStatusCredited,
		SagaStatusCompleted, SagaStatusFailed, SagaStatusCompensated, SagaStatusCompensationFailed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSagaStatus, s)
	}
}

// IsTerminal reports whether the saga has an outcome and must not run again.
func (s SagaStatus) IsTerminal() bool {
	switch s {
	case SagaStatusCompleted, SagaStatusFailed, SagaStatusCompensated, SagaStatusCompensationFailed:
		return true
	default:
		return false
	}
}

// Succeeded reports whether a terminal saga ended in TransferCompleted.
func (s SagaStatus) Succeeded() bool {
	return s == SagaStatusCompleted
}

// TransferSaga is the persisted state of one transfer, keyed by transfer id.
type TransferSaga struct {
	TransferID  string
	FromAccount AccountNumber
	ToAccount   AccountNumber
	Amount      Money
	Status      SagaStatus
	Reason      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Details returns the wire fields of the saga's transfer.
func (s *TransferSaga) Details() TransferDetails {
	return TransferDetails{
		TransferID:  s.TransferID,
		FromAccount: s.FromAccount.String(),
		ToAccount:   s.ToAccount.String(),
		Amount:      s.Amount.String(),
	}
}
