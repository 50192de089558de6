package domain

import "errors"

var (
	// Money errors
	ErrNegativeAmount    = errors.New("amount cannot be negative")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrMalformedAmount   = errors.New("amount is not a valid decimal")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Account errors
	ErrAccountNotFound         = errors.New("account not found")
	ErrAccountNotActive        = errors.New("account is not active")
	ErrAccountClosed           = errors.New("account is closed")
	ErrInvalidStatusTransition = errors.New("invalid account status transition")
	ErrInvalidAccountNumber    = errors.New("invalid account number")
	ErrInvalidCPF              = errors.New("invalid CPF")
	ErrInvalidHolderName       = errors.New("invalid holder name")
	ErrCPFAlreadyRegistered    = errors.New("CPF already registered")
	ErrUnknownAccountStatus    = errors.New("unknown account status")
	ErrAccountLocked           = errors.New("account is locked by another operation")

	// Transfer errors
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrTransferNotFound  = errors.New("transfer not found")
	ErrMalformedCommand  = errors.New("malformed transfer command")
	ErrUnknownSagaStatus = errors.New("unknown saga status")
	ErrSagaFinished      = errors.New("transfer saga already finished")
)
