package handler

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gosettle/internal/adapter/http/dto"
	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
)

const maxMessageBytes = 64 << 10

// PaymentService defines the behavior needed by PaymentHandler.
type PaymentService interface {
	CreatePayment(ctx context.Context, input usecase.CreatePaymentInput) (*usecase.PaymentResult, error)
	ConvertLegacyMessage(ctx context.Context, raw string) (*usecase.ConversionResult, error)
	GetTransaction(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactionsForAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
	GetEntries(ctx context.Context, transactionID string) ([]*domain.Entry, error)
}

// PaymentHandler handles payment and conversion requests.
type PaymentHandler struct {
	paymentUC PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentUC PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// Create runs a payment. A settled payment answers 201; a rejected or
// failed one answers with the status of its failure kind and the same
// body shape.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.paymentUC.CreatePayment(r.Context(), req.ToUseCaseInput())
	if err != nil {
		if result == nil {
			writeError(w, http.StatusInternalServerError, "failed to create payment", "")
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.PaymentFromResult(result))
		return
	}

	status := http.StatusCreated
	if result.Status != domain.TransactionStatusCompleted {
		status = statusForKind(result.FailureKind)
	}

	writeJSON(w, status, dto.PaymentFromResult(result))
}

// Convert turns an MT103 message into a pacs.008 document. The message
// is read from a JSON body or, for text/plain, from the raw body. Clients
// accepting only application/xml receive the bare document.
func (h *PaymentHandler) Convert(w http.ResponseWriter, r *http.Request) {
	raw, err := readMessage(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.paymentUC.ConvertLegacyMessage(r.Context(), raw)
	if err != nil {
		writeDomainError(w, "failed to convert message", err)
		return
	}

	if r.Header.Get("Accept") == "application/xml" {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, result.SettlementXML)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConversionFromResult(result))
}

// Get retrieves a transaction by ID.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	txn, err := h.paymentUC.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get transaction", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(txn))
}

// ListEntries lists the ledger entries of a transaction.
func (h *PaymentHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.paymentUC.GetEntries(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListByAccount lists the transactions of an account, newest first.
func (h *PaymentHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageQuery(r)
	transactions, err := h.paymentUC.ListTransactionsForAccount(r.Context(), chi.URLParam(r, "id"), limit, offset)
	if err != nil {
		writeDomainError(w, "failed to list transactions", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions))
}

func readMessage(w http.ResponseWriter, r *http.Request) (string, error) {
	body := http.MaxBytesReader(w, r.Body, maxMessageBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/plain" {
		raw, err := io.ReadAll(body)
		return string(raw), err
	}

	var req dto.ConvertMessageRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return "", err
	}
	return req.Message, nil
}
