package dto

import (
	"time"

	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	AccountNumber string    `json:"account_number"`
	HolderName    string    `json:"holder_name"`
	CPF           string    `json:"cpf"`
	Balance       string    `json:"balance"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		AccountNumber: a.Number.String(),
		HolderName:    a.HolderName,
		CPF:           a.CPF.Formatted(),
		Balance:       a.Balance.String(),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// BalanceChangeResponse is returned by deposits and withdrawals.
type BalanceChangeResponse struct {
	AccountNumber string `json:"account_number"`
	Amount        string `json:"amount"`
	OldBalance    string `json:"old_balance"`
	NewBalance    string `json:"new_balance"`
}

// BalanceChangeFromUseCase converts a balance change to response.
func BalanceChangeFromUseCase(c *usecase.BalanceChange) *BalanceChangeResponse {
	return &BalanceChangeResponse{
		AccountNumber: c.Account.Number.String(),
		Amount:        c.Amount.String(),
		OldBalance:    c.OldBalance.String(),
		NewBalance:    c.NewBalance.String(),
	}
}

// TransferAcceptedResponse is the immediate answer to a transfer request.
type TransferAcceptedResponse struct {
	TransferID  string `json:"transfer_id"`
	FromAccount string `json:"from_account"`
	ToAccount   string `json:"to_account"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
}

// TransferAcceptedFromReceipt converts a receipt to response.
func TransferAcceptedFromReceipt(r *usecase.TransferReceipt) *TransferAcceptedResponse {
	return &TransferAcceptedResponse{
		TransferID:  r.TransferID,
		FromAccount: r.FromAccount.String(),
		ToAccount:   r.ToAccount.String(),
		Amount:      r.Amount.String(),
		Status:      r.Status,
	}
}

// TransferStatusResponse represents the recorded progress of a transfer.
type TransferStatusResponse struct {
	TransferID  string    `json:"transfer_id"`
	FromAccount string    `json:"from_account"`
	ToAccount   string    `json:"to_account"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TransferStatusFromSaga converts a saga to response.
func TransferStatusFromSaga(s *domain.TransferSaga) *TransferStatusResponse {
	return &TransferStatusResponse{
		TransferID:  s.TransferID,
		FromAccount: s.FromAccount.String(),
		ToAccount:   s.ToAccount.String(),
		Amount:      s.Amount.String(),
		Status:      string(s.Status),
		Reason:      s.Reason,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
