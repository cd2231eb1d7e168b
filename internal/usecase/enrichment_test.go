package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/usecase"
	"github.com/iho/gosettle/internal/usecase/mocks"
)

var enrichNow = time.Date(2025, 6, 1, 15, 45, 0, 0, time.UTC)

func newEnricher(repo usecase.AccountRepository, logger zerolog.Logger) *usecase.Enricher {
	return usecase.NewEnricher(usecase.EnricherConfig{
		AccountRepo: repo,
		IDGen:       mocks.NewMockIDGenerator(),
		Logger:      logger,
		Now:         func() time.Time { return enrichNow },
	})
}

func validPayment() *domain.CanonicalPayment {
	return &domain.CanonicalPayment{
		Reference:        "REF-1",
		Amount:           decimal.NewFromInt(10),
		Currency:         "EUR",
		OrderingParty:    domain.Party{Name: "ALICE", Account: "/111"},
		BeneficiaryParty: domain.Party{Name: "BOB", Account: "/222"},
	}
}

func TestEnricher_EnrichFillsMissingFields(t *testing.T) {
	e := newEnricher(nil, zerolog.Nop())
	p := &domain.CanonicalPayment{Amount: decimal.NewFromInt(1)}

	e.Enrich(p)

	assert.Equal(t, "mock-id-1", p.Reference)
	_, err := uuid.Parse(p.UETR)
	assert.NoError(t, err, "UETR must be a UUID")
	assert.Equal(t, domain.LifecycleReceived, p.Status)
	assert.Equal(t, domain.ChargesOurs, p.Charges)
	assert.Equal(t, usecase.DefaultFallbackCurrency, p.Currency)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), p.ValueDate)
}

func TestEnricher_EnrichKeepsPresentFields(t *testing.T) {
	e := newEnricher(nil, zerolog.Nop())
	valueDate := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	p := validPayment()
	p.UETR = "eb6305c9-1f7f-49de-aed0-16487c27b42d"
	p.Charges = domain.ChargesShared
	p.Status = domain.LifecycleTransformed
	p.ValueDate = valueDate

	e.Enrich(p)

	assert.Equal(t, "REF-1", p.Reference)
	assert.Equal(t, "eb6305c9-1f7f-49de-aed0-16487c27b42d", p.UETR)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, domain.ChargesShared, p.Charges)
	assert.Equal(t, domain.LifecycleTransformed, p.Status)
	assert.Equal(t, valueDate, p.ValueDate)
}

func TestEnricher_EnrichTwiceIsStable(t *testing.T) {
	e := newEnricher(nil, zerolog.Nop())
	p := &domain.CanonicalPayment{Amount: decimal.NewFromInt(1)}

	e.Enrich(p)
	first := *p
	e.Enrich(p)

	assert.Equal(t, first, *p)
}

func TestEnricher_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(p *domain.CanonicalPayment)
		wantField string
		wantErr   error
	}{
		{
			name:   "valid payment",
			mutate: func(*domain.CanonicalPayment) {},
		},
		{
			name:      "zero amount",
			mutate:    func(p *domain.CanonicalPayment) { p.Amount = decimal.Zero },
			wantField: "amount",
			wantErr:   domain.ErrInvalidAmount,
		},
		{
			name:      "negative amount",
			mutate:    func(p *domain.CanonicalPayment) { p.Amount = decimal.NewFromInt(-5) },
			wantField: "amount",
			wantErr:   domain.ErrInvalidAmount,
		},
		{
			name:      "short currency",
			mutate:    func(p *domain.CanonicalPayment) { p.Currency = "EU" },
			wantField: "currency",
			wantErr:   domain.ErrInvalidCurrency,
		},
		{
			name:      "missing ordering party",
			mutate:    func(p *domain.CanonicalPayment) { p.OrderingParty = domain.Party{} },
			wantField: "ordering_party",
			wantErr:   domain.ErrMissingParty,
		},
		{
			name:      "missing beneficiary party",
			mutate:    func(p *domain.CanonicalPayment) { p.BeneficiaryParty = domain.Party{} },
			wantField: "beneficiary_party",
			wantErr:   domain.ErrMissingParty,
		},
		{
			name: "first violation wins",
			mutate: func(p *domain.CanonicalPayment) {
				p.Amount = decimal.Zero
				p.OrderingParty = domain.Party{}
			},
			wantField: "amount",
			wantErr:   domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnricher(nil, zerolog.Nop())
			p := validPayment()
			tt.mutate(p)

			err := e.Validate(context.Background(), p)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
		})
	}
}

func TestEnricher_ValidateWarnsOnUnknownLedgerAccount(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	known := &domain.Account{ID: "01HZX3Q4N0A7K9W2V5R8T6Y1M3", Name: "ALICE"}
	e := newEnricher(mocks.NewMockAccountRepository(known), logger)

	p := validPayment()
	p.OrderingParty.Account = "/" + known.ID
	p.BeneficiaryParty.Account = "/01HZX3Q4N0A7K9W2V5R8T6Y1M4"

	require.NoError(t, e.Validate(context.Background(), p))
	assert.Contains(t, buf.String(), "party account not found on ledger")
	assert.Contains(t, buf.String(), "beneficiary_party")
	assert.NotContains(t, buf.String(), "ordering_party")
}

func TestEnricher_ValidateSkipsOffLedgerAccounts(t *testing.T) {
	var buf bytes.Buffer
	repo := mocks.NewMockAccountRepository()
	repo.GetByIDFunc = func(ctx context.Context, id string) (*domain.Account, error) {
		t.Fatalf("unexpected lookup of %s", id)
		return nil, nil
	}
	e := newEnricher(repo, zerolog.New(&buf))

	require.NoError(t, e.Validate(context.Background(), validPayment()))
	assert.Empty(t, buf.String())
}
