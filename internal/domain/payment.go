package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountMarker prefixes a party account reference.
const AccountMarker = "/"

// BankOperationCredit is the bank operation code for a plain credit transfer.
const BankOperationCredit = "CRED"

// ChargeBearer says who pays the transfer fees.
type ChargeBearer string

const (
	ChargesOurs        ChargeBearer = "OUR"
	ChargesShared      ChargeBearer = "SHA"
	ChargesBeneficiary ChargeBearer = "BEN"
)

// LifecycleStatus tracks a canonical payment through conversion.
type LifecycleStatus string

const (
	LifecycleReceived    LifecycleStatus = "RECEIVED"
	LifecycleTransformed LifecycleStatus = "TRANSFORMED"
	LifecycleSent        LifecycleStatus = "SENT"
)

// Party is the ordering or beneficiary side of a payment.
type Party struct {
	Name    string `json:"name,omitempty"`
	Account string `json:"account,omitempty"`
	Address string `json:"address,omitempty"`
}

// IsEmpty reports whether neither a name nor an account is present.
func (p Party) IsEmpty() bool {
	return strings.TrimSpace(p.Name) == "" && strings.TrimSpace(p.Account) == ""
}

// AccountID returns the account reference without its marker.
func (p Party) AccountID() string {
	return strings.TrimPrefix(strings.TrimSpace(p.Account), AccountMarker)
}

// CanonicalPayment is the normalized form every payment passes through
// before a settlement message is generated.
type CanonicalPayment struct {
	Reference         string          `json:"reference"`
	UETR              string          `json:"uetr"`
	BankOperationCode string          `json:"bank_operation_code,omitempty"`
	ValueDate         time.Time       `json:"value_date"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	OrderingParty     Party           `json:"ordering_party"`
	BeneficiaryParty  Party           `json:"beneficiary_party"`
	Charges           ChargeBearer    `json:"charges"`
	Status            LifecycleStatus `json:"status"`
	ReceivedAt        time.Time       `json:"received_at"`
	TransformedAt     *time.Time      `json:"transformed_at,omitempty"`
	SentAt            *time.Time      `json:"sent_at,omitempty"`
}

// MarkTransformed records that a settlement message was generated.
func (p *CanonicalPayment) MarkTransformed(now time.Time) {
	t := now.UTC()
	p.Status = LifecycleTransformed
	p.TransformedAt = &t
}

// MarkSent records that the settlement completed.
func (p *CanonicalPayment) MarkSent(now time.Time) {
	t := now.UTC()
	p.Status = LifecycleSent
	p.SentAt = &t
}

// Notification is a message delivered to one party of a payment.
type Notification struct {
	TransactionID string
	AccountID     string
	Recipient     string
	Subject       string
	Body          string
}
