package domain

import (
	"strings"
)

// CPF is a Brazilian individual taxpayer number, stored as 11 digits.
type CPF string

var cpfStripper = strings.NewReplacer(".", "", "-", "", " ", "")

// ParseCPF strips punctuation and validates the two check digits.
func ParseCPF(s string) (CPF, error) {
	cleaned := cpfStripper.Replace(s)

	if len(cleaned) != 11 {
		return "", ErrInvalidCPF
	}

	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", ErrInvalidCPF
		}
	}

	if strings.Count(cleaned, cleaned[:1]) == len(cleaned) {
		return "", ErrInvalidCPF
	}

	if cleaned[9] != cpfCheckDigit(cleaned[:9]) || cleaned[10] != cpfCheckDigit(cleaned[:10]) {
		return "", ErrInvalidCPF
	}

	return CPF(cleaned), nil
}

// cpfCheckDigit computes the next check digit for the given prefix of 9 or 10 digits.
func cpfCheckDigit(digits string) byte {
	weight := len(digits) + 1
	sum := 0

	for i := range len(digits) {
		sum += int(digits[i]-'0') * (weight - i)
	}

	d := (sum * 10) % 11
	if d == 10 {
		d = 0
	}

	return byte('0' + d)
}

// Formatted renders the CPF as 123.456.789-09.
func (c CPF) Formatted() string {
	s := string(c)
	if len(s) != 11 {
		return s
	}

	return s[:3] + "." + s[3:6] + "." + s[6:9] + "-" + s[9:]
}

func (c CPF) String() string {
	return string(c)
}
