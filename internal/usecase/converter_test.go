package usecase_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
)

func TestToCanonical(t *testing.T) {
	now := time.Date(2025, 2, 3, 18, 30, 0, 0, time.FixedZone("EST", -5*3600))
	sender := &domain.Account{ID: "acc-alice", Name: "Alice"}
	receiver := &domain.Account{ID: "acc-bob", Name: "Bob"}

	p := usecase.ToCanonical(usecase.CreatePaymentInput{
		SenderAccountID:   sender.ID,
		ReceiverAccountID: receiver.ID,
		Amount:            decimal.RequireFromString("12.50"),
		Currency:          " usd ",
	}, sender, receiver, now)

	assert.Empty(t, p.Reference, "reference is left to enrichment")
	assert.Empty(t, p.UETR, "UETR is left to enrichment")
	assert.Equal(t, domain.BankOperationCredit, p.BankOperationCode)
	assert.Equal(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), p.ValueDate)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, domain.Party{Name: "Alice", Account: "/acc-alice"}, p.OrderingParty)
	assert.Equal(t, domain.Party{Name: "Bob", Account: "/acc-bob"}, p.BeneficiaryParty)
	assert.Equal(t, "acc-alice", p.OrderingParty.AccountID())
	assert.Equal(t, domain.ChargesOurs, p.Charges)
	assert.Equal(t, domain.LifecycleReceived, p.Status)
	assert.Equal(t, now.UTC(), p.ReceivedAt)
}
