package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/iho/gobank/internal/usecase"
)

// Amount accepts both "150.00" and 150.00 on the wire.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}

		*a = Amount(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number: %w", err)
	}

	*a = Amount(n.String())

	return nil
}

// CreateAccountRequest represents a request to open an account.
type CreateAccountRequest struct {
	HolderName     string `json:"holder_name"     validate:"required,min=3,max=100"`
	CPF            string `json:"cpf"             validate:"required,cpf"`
	InitialBalance Amount `json:"initial_balance" validate:"nonnegative_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		HolderName:     r.HolderName,
		CPF:            r.CPF,
		InitialBalance: string(r.InitialBalance),
	}
}

// TransferRequest represents a transfer intent.
type TransferRequest struct {
	FromAccount string `json:"from_account" validate:"required,account_number"`
	ToAccount   string `json:"to_account"   validate:"required,account_number,nefield=FromAccount"`
	Amount      Amount `json:"amount"       validate:"required,positive_amount"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.RequestTransferInput {
	return usecase.RequestTransferInput{
		FromAccount: r.FromAccount,
		ToAccount:   r.ToAccount,
		Amount:      string(r.Amount),
	}
}

// AmountRequest carries the amount of a deposit or withdrawal.
type AmountRequest struct {
	Amount Amount `json:"amount" validate:"required,positive_amount"`
}

// ReasonRequest carries the optional reason of a reject or block.
type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}
