package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validation constants
const (
	MinHolderNameLength = 3
	MaxHolderNameLength = 100
	MaxTransferAmount   = "1000000000" // 1 billion
)

// ValidateHolderName validates the account holder name.
func ValidateHolderName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))

	if n < MinHolderNameLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidHolderName, MinHolderNameLength)
	}

	if n > MaxHolderNameLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidHolderName, MaxHolderNameLength)
	}

	return nil
}

// ValidateTransferAmount checks that amount is positive and within the
// single-transfer ceiling.
func ValidateTransferAmount(amount Money) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}

	if amount.GreaterThan(MustMoney(MaxTransferAmount)) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxTransferAmount)
	}

	return nil
}
