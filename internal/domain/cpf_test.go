package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCPF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  CPF
		valid bool
	}{
		{name: "digits only", input: "52998224725", want: "52998224725", valid: true},
		{name: "formatted", input: "529.982.247-25", want: "52998224725", valid: true},
		{name: "another valid", input: "123.456.789-09", want: "12345678909", valid: true},
		{name: "wrong check digit", input: "52998224726"},
		{name: "all same digits", input: "111.111.111-11"},
		{name: "too short", input: "1234567890"},
		{name: "letters", input: "5299822472a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCPF(tt.input)
			if !tt.valid {
				if !errors.Is(err, ErrInvalidCPF) {
					t.Fatalf("expected ErrInvalidCPF, got %v", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestCPF_Formatted(t *testing.T) {
	t.Parallel()

	if got := CPF("12345678909").Formatted(); got != "123.456.789-09" {
		t.Fatalf("got %s", got)
	}
}

func TestParseAccountNumber(t *testing.T) {
	t.Parallel()

	generated := GenerateAccountNumber()
	if len(generated) != AccountNumberLength {
		t.Fatalf("generated number has length %d", len(generated))
	}

	if _, err := ParseAccountNumber(generated.String()); err != nil {
		t.Fatalf("generated number rejected: %v", err)
	}

	bad := []string{
		"",
		"ACC-123",
		"XYZ-" + strings.TrimPrefix(generated.String(), AccountNumberPrefix),
		generated.String() + "0",
	}

	for _, s := range bad {
		if _, err := ParseAccountNumber(s); !errors.Is(err, ErrInvalidAccountNumber) {
			t.Fatalf("%q: expected ErrInvalidAccountNumber, got %v", s, err)
		}
	}

	if GenerateAccountNumber() == generated {
		t.Fatal("numbers must be unique")
	}
}
