package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:           r.Name,
		Currency:       r.Currency,
		InitialBalance: r.InitialBalance,
	}
}

// CreatePaymentRequest represents a request to pay between two accounts.
type CreatePaymentRequest struct {
	SenderAccountID   string          `json:"sender_account_id"`
	ReceiverAccountID string          `json:"receiver_account_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
}

// ToUseCaseInput converts to use case input. The currency is upper-cased.
func (r *CreatePaymentRequest) ToUseCaseInput() usecase.CreatePaymentInput {
	return usecase.CreatePaymentInput{
		SenderAccountID:   r.SenderAccountID,
		ReceiverAccountID: r.ReceiverAccountID,
		Amount:            r.Amount,
		Currency:          strings.ToUpper(strings.TrimSpace(r.Currency)),
	}
}

// ConvertMessageRequest carries a raw MT103 message.
type ConvertMessageRequest struct {
	Message string `json:"message"`
}
