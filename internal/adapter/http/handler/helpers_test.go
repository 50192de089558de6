package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"transfer not found", domain.ErrTransferNotFound, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: 'cpf' is required", dto.ErrValidation), http.StatusBadRequest},
		{"invalid cpf", domain.ErrInvalidCPF, http.StatusBadRequest},
		{"malformed amount", domain.ErrMalformedAmount, http.StatusBadRequest},
		{"same account", domain.ErrSameAccount, http.StatusBadRequest},
		{"duplicate cpf", domain.ErrCPFAlreadyRegistered, http.StatusConflict},
		{"wrapped transition", fmt.Errorf("%w: closed -> active", domain.ErrInvalidStatusTransition), http.StatusConflict},
		{"locked", domain.ErrAccountLocked, http.StatusConflict},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity},
		{"not active", domain.ErrAccountNotActive, http.StatusUnprocessableEntity},
		{"closed", domain.ErrAccountClosed, http.StatusUnprocessableEntity},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, "bad", "details")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %s", ct)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Error != "bad" || resp.Message != "details" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestDecodeRequest(t *testing.T) {
	t.Run("empty body rejected", func(t *testing.T) {
		var req dto.AmountRequest
		r := httptest.NewRequest(http.MethodPost, "/", nil)

		err := decodeRequest(httptest.NewRecorder(), r, &req, false)
		if !errors.Is(err, dto.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("empty body allowed", func(t *testing.T) {
		var req dto.ReasonRequest
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))

		if err := decodeRequest(httptest.NewRecorder(), r, &req, true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		var req dto.ReasonRequest
		big := `{"reason":"` + strings.Repeat("x", maxBodyBytes) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))

		err := decodeRequest(httptest.NewRecorder(), r, &req, false)
		if !errors.Is(err, dto.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})
}
