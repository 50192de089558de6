package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	AccountNumberPrefix = "ACC-"
	AccountNumberLength = 40
)

// AccountNumber identifies an account. It never changes once assigned.
type AccountNumber string

// GenerateAccountNumber returns a fresh "ACC-<uuid>" number.
func GenerateAccountNumber() AccountNumber {
	return AccountNumber(AccountNumberPrefix + uuid.NewString())
}

// ParseAccountNumber validates the fixed prefix and total length.
func ParseAccountNumber(s string) (AccountNumber, error) {
	if !strings.HasPrefix(s, AccountNumberPrefix) {
		return "", fmt.Errorf("%w: must start with %q", ErrInvalidAccountNumber, AccountNumberPrefix)
	}

	if len(s) != AccountNumberLength {
		return "", fmt.Errorf("%w: must be %d characters long", ErrInvalidAccountNumber, AccountNumberLength)
	}

	return AccountNumber(s), nil
}

func (n AccountNumber) String() string {
	return string(n)
}
