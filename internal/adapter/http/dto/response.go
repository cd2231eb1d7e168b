package dto

import (
	"time"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	Balance   string    `json:"balance"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Currency:  a.Currency,
		Balance:   a.Balance.StringFixed(2),
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Count    int                `json:"count"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

// TransactionResponse represents a ledger transaction.
type TransactionResponse struct {
	ID                string    `json:"id"`
	SenderAccountID   string    `json:"sender_account_id"`
	ReceiverAccountID string    `json:"receiver_account_id"`
	Amount            string    `json:"amount"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	FailureReason     string    `json:"failure_reason,omitempty"`
	Reference         string    `json:"reference"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:                t.ID,
		SenderAccountID:   t.SenderAccountID,
		ReceiverAccountID: t.ReceiverAccountID,
		Amount:            t.Amount.StringFixed(2),
		Currency:          t.Currency,
		Status:            string(t.Status),
		FailureReason:     t.FailureReason,
		Reference:         t.Reference,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// EntryResponse represents an entry in API responses.
type EntryResponse struct {
	ID                     string    `json:"id"`
	AccountID              string    `json:"account_id"`
	TransactionID          string    `json:"transaction_id"`
	Amount                 string    `json:"amount"`
	AccountPreviousBalance string    `json:"account_previous_balance"`
	AccountCurrentBalance  string    `json:"account_current_balance"`
	AccountVersion         int64     `json:"account_version"`
	CreatedAt              time.Time `json:"created_at"`
}

// EntryFromDomain converts domain entry to response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:                     e.ID,
		AccountID:              e.AccountID,
		TransactionID:          e.TransactionID,
		Amount:                 e.Amount.StringFixed(2),
		AccountPreviousBalance: e.AccountPreviousBalance.StringFixed(2),
		AccountCurrentBalance:  e.AccountCurrentBalance.StringFixed(2),
		AccountVersion:         e.AccountVersion,
		CreatedAt:              e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// PaymentSummaryResponse is the observable summary of a payment.
type PaymentSummaryResponse struct {
	Reference         string     `json:"reference"`
	UETR              string     `json:"uetr"`
	SenderAccountID   string     `json:"sender_account_id"`
	SenderName        string     `json:"sender_name"`
	ReceiverAccountID string     `json:"receiver_account_id"`
	ReceiverName      string     `json:"receiver_name"`
	Amount            string     `json:"amount"`
	Currency          string     `json:"currency"`
	ValueDate         string     `json:"value_date"`
	Charges           string     `json:"charges"`
	LifecycleStatus   string     `json:"lifecycle_status"`
	FraudScore        float64    `json:"fraud_score"`
	TransformedAt     *time.Time `json:"transformed_at,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
}

// PaymentResponse represents the outcome of a payment request.
type PaymentResponse struct {
	TransactionID string                  `json:"transaction_id,omitempty"`
	Status        string                  `json:"status"`
	Message       string                  `json:"message"`
	SettlementXML string                  `json:"settlement_xml,omitempty"`
	Summary       *PaymentSummaryResponse `json:"summary,omitempty"`
}

// PaymentFromResult converts a payment result to a response.
func PaymentFromResult(r *usecase.PaymentResult) *PaymentResponse {
	resp := &PaymentResponse{
		TransactionID: r.TransactionID,
		Status:        string(r.Status),
		Message:       r.Message,
		SettlementXML: r.SettlementXML,
	}

	if s := r.Summary; s != nil {
		resp.Summary = &PaymentSummaryResponse{
			Reference:         s.Reference,
			UETR:              s.UETR,
			SenderAccountID:   s.SenderAccountID,
			SenderName:        s.SenderName,
			ReceiverAccountID: s.ReceiverAccountID,
			ReceiverName:      s.ReceiverName,
			Amount:            s.Amount.StringFixed(2),
			Currency:          s.Currency,
			ValueDate:         s.ValueDate.Format(time.DateOnly),
			Charges:           string(s.Charges),
			LifecycleStatus:   string(s.LifecycleStatus),
			FraudScore:        s.FraudScore,
			TransformedAt:     s.TransformedAt,
			SentAt:            s.SentAt,
		}
	}

	return resp
}

// ConversionResponse represents a converted legacy message.
type ConversionResponse struct {
	SettlementXML   string                   `json:"settlement_xml"`
	LifecycleStatus string                   `json:"lifecycle_status"`
	Payment         *domain.CanonicalPayment `json:"payment"`
}

// ConversionFromResult converts a conversion result to a response.
func ConversionFromResult(r *usecase.ConversionResult) *ConversionResponse {
	return &ConversionResponse{
		SettlementXML:   r.SettlementXML,
		LifecycleStatus: string(r.LifecycleStatus),
		Payment:         r.Payment,
	}
}

// ConsistencyResponse reports the ledger consistency check.
type ConsistencyResponse struct {
	Status                 string `json:"status"`
	Consistent             bool   `json:"consistent"`
	TotalEntryAmount       string `json:"total_entry_amount"`
	UnbalancedTransactions int64  `json:"unbalanced_transactions"`
}

// ConsistencyFromReport converts a consistency report to a response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	status := "consistent"
	if !r.Consistent {
		status = "inconsistent"
	}
	return &ConsistencyResponse{
		Status:                 status,
		Consistent:             r.Consistent,
		TotalEntryAmount:       r.TotalEntryAmount.String(),
		UnbalancedTransactions: r.UnbalancedTransactions,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
