package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, number string) (*domain.Account, error)
	GetAccountByCPF(ctx context.Context, cpf string) (*domain.Account, error)
	Approve(ctx context.Context, number string) (*domain.Account, error)
	Reject(ctx context.Context, number, reason string) (*domain.Account, error)
	Block(ctx context.Context, number, reason string) (*domain.Account, error)
	Unblock(ctx context.Context, number string) (*domain.Account, error)
	Reactivate(ctx context.Context, number string) (*domain.Account, error)
	Close(ctx context.Context, number string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, number string) error
	Deposit(ctx context.Context, number, amount string) (*usecase.BalanceChange, error)
	Withdraw(ctx context.Context, number, amount string) (*usecase.BalanceChange, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create opens a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := decodeRequest(w, r, &req, false); err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by number.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.accountUC.GetAccount(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Lookup retrieves the account owned by the cpf query parameter.
func (h *AccountHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	cpf := r.URL.Query().Get("cpf")
	if cpf == "" {
		writeError(w, http.StatusBadRequest, "missing cpf query parameter", "")
		return
	}

	account, err := h.accountUC.GetAccountByCPF(r.Context(), cpf)
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Approve moves an account out of analysis.
func (h *AccountHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountUC.Approve)
}

// Unblock reactivates a blocked account.
func (h *AccountHandler) Unblock(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountUC.Unblock)
}

// Reactivate reactivates an inactive account.
func (h *AccountHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountUC.Reactivate)
}

// Close closes an account.
func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.accountUC.Close)
}

// Reject rejects an account in analysis. The body may carry a reason.
func (h *AccountHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transitionWithReason(w, r, h.accountUC.Reject)
}

// Block blocks an account. The body may carry a reason.
func (h *AccountHandler) Block(w http.ResponseWriter, r *http.Request) {
	h.transitionWithReason(w, r, h.accountUC.Block)
}

// Delete removes a closed account.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.accountUC.DeleteAccount(r.Context(), chi.URLParam(r, "number")); err != nil {
		writeDomainError(w, "failed to delete account", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Deposit credits an active account.
func (h *AccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.accountUC.Deposit)
}

// Withdraw debits an active account.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.accountUC.Withdraw)
}

func (h *AccountHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, string) (*domain.Account, error),
) {
	account, err := op(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		writeDomainError(w, "failed to update account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

func (h *AccountHandler) transitionWithReason(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, string, string) (*domain.Account, error),
) {
	var req dto.ReasonRequest
	if err := decodeRequest(w, r, &req, true); err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	account, err := op(r.Context(), chi.URLParam(r, "number"), req.Reason)
	if err != nil {
		writeDomainError(w, "failed to update account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

func (h *AccountHandler) move(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, string, string) (*usecase.BalanceChange, error),
) {
	var req dto.AmountRequest
	if err := decodeRequest(w, r, &req, false); err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	change, err := op(r.Context(), chi.URLParam(r, "number"), string(req.Amount))
	if err != nil {
		writeDomainError(w, "failed to move money", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceChangeFromUseCase(change))
}
