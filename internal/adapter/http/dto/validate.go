package dto

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/iho/gobank/internal/domain"
)

// ErrValidation wraps every request validation failure.
var ErrValidation = errors.New("validation failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})

	_ = v.RegisterValidation("nonnegative_amount", func(fl validator.FieldLevel) bool {
		str := fl.Field().String()
		if str == "" {
			return true
		}

		d, err := decimal.NewFromString(str)
		return err == nil && !d.IsNegative()
	})

	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseCPF(fl.Field().String())
		return err == nil
	})

	_ = v.RegisterValidation("account_number", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseAccountNumber(fl.Field().String())
		return err == nil
	})

	return v
}

// Validate checks payload against its validate tags and reports the first
// failing field.
func Validate(payload any) error {
	validateOnce.Do(func() {
		validate = newValidator()
	})

	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return formatFieldError(fieldErrs[0])
	}

	return fmt.Errorf("%w: %v", ErrValidation, err)
}

func formatFieldError(fe validator.FieldError) error {
	field := toSnakeCase(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: '%s' is required", ErrValidation, field)
	case "min":
		return fmt.Errorf("%w: '%s' must be at least %s characters", ErrValidation, field, fe.Param())
	case "max":
		return fmt.Errorf("%w: '%s' must be at most %s characters", ErrValidation, field, fe.Param())
	case "positive_amount":
		return fmt.Errorf("%w: '%s' must be a positive decimal amount", ErrValidation, field)
	case "nonnegative_amount":
		return fmt.Errorf("%w: '%s' must be a non-negative decimal amount", ErrValidation, field)
	case "cpf":
		return fmt.Errorf("%w: '%s' is not a valid CPF", ErrValidation, field)
	case "account_number":
		return fmt.Errorf("%w: '%s' is not a valid account number", ErrValidation, field)
	case "nefield":
		return fmt.Errorf("%w: '%s' must differ from '%s'", ErrValidation, field, toSnakeCase(fe.Param()))
	default:
		return fmt.Errorf("%w: '%s' failed on '%s'", ErrValidation, field, fe.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}

			r = unicode.ToLower(r)
		}

		b.WriteRune(r)
	}

	return b.String()
}
