package usecase

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
)

// CreatePaymentInput represents input for creating a payment.
type CreatePaymentInput struct {
	SenderAccountID   string
	ReceiverAccountID string
	Amount            decimal.Decimal
	Currency          string
}

// ToCanonical builds a canonical payment from a structured request so it
// can follow the same pipeline as a parsed legacy message.
func ToCanonical(input CreatePaymentInput, sender, receiver *domain.Account, now time.Time) *domain.CanonicalPayment {
	now = now.UTC()
	return &domain.CanonicalPayment{
		BankOperationCode: domain.BankOperationCredit,
		ValueDate:         now.Truncate(24 * time.Hour),
		Amount:            input.Amount,
		Currency:          strings.ToUpper(strings.TrimSpace(input.Currency)),
		OrderingParty:     domain.Party{Name: sender.Name, Account: domain.AccountMarker + sender.ID},
		BeneficiaryParty:  domain.Party{Name: receiver.Name, Account: domain.AccountMarker + receiver.ID},
		Charges:           domain.ChargesOurs,
		Status:            domain.LifecycleReceived,
		ReceivedAt:        now,
	}
}
