package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gobank/internal/adapter/http/dto"
	"github.com/iho/gobank/internal/domain"
	"github.com/iho/gobank/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	RequestTransfer(ctx context.Context, input usecase.RequestTransferInput) (*usecase.TransferReceipt, error)
	GetTransfer(ctx context.Context, transferID string) (*domain.TransferSaga, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create accepts a transfer for asynchronous execution.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := decodeRequest(w, r, &req, false); err != nil {
		writeDomainError(w, "invalid request", err)
		return
	}

	receipt, err := h.transferUC.RequestTransfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to request transfer", err)
		return
	}

	writeJSON(w, http.StatusAccepted, dto.TransferAcceptedFromReceipt(receipt))
}

// Get reports the recorded progress of a transfer.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	saga, err := h.transferUC.GetTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferStatusFromSaga(saga))
}
