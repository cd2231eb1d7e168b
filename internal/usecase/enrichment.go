package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/iho/gosettle/internal/domain"
)

// EnricherConfig holds the collaborators of an Enricher.
type EnricherConfig struct {
	// AccountRepo resolves ledger accounts named by a party. Optional.
	AccountRepo      AccountRepository
	IDGen            IDGenerator
	FallbackCurrency string
	Logger           zerolog.Logger
	Now              func() time.Time
}

// Enricher fills the fields a legacy message lacks and rejects payments
// that cannot be settled.
type Enricher struct {
	accountRepo      AccountRepository
	idGen            IDGenerator
	fallbackCurrency string
	logger           zerolog.Logger
	now              func() time.Time
}

// NewEnricher creates a new Enricher.
func NewEnricher(cfg EnricherConfig) *Enricher {
	if cfg.FallbackCurrency == "" {
		cfg.FallbackCurrency = DefaultFallbackCurrency
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Enricher{
		accountRepo:      cfg.AccountRepo,
		idGen:            cfg.IDGen,
		fallbackCurrency: strings.ToUpper(cfg.FallbackCurrency),
		logger:           cfg.Logger,
		now:              cfg.Now,
	}
}

// Enrich applies defaults to absent fields only.
func (e *Enricher) Enrich(p *domain.CanonicalPayment) {
	if strings.TrimSpace(p.Reference) == "" {
		p.Reference = e.idGen.Generate()
	}
	if strings.TrimSpace(p.UETR) == "" {
		p.UETR = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = domain.LifecycleReceived
	}
	if p.Charges == "" {
		p.Charges = domain.ChargesOurs
	}
	if strings.TrimSpace(p.Currency) == "" {
		p.Currency = e.fallbackCurrency
	}
	if p.ValueDate.IsZero() {
		p.ValueDate = e.now().UTC().Truncate(24 * time.Hour)
	}
}

// Validate stops at the first violation.
func (e *Enricher) Validate(ctx context.Context, p *domain.CanonicalPayment) error {
	if !p.Amount.IsPositive() {
		return &domain.ValidationError{Field: "amount", Err: domain.ErrInvalidAmount}
	}
	if err := domain.ValidateCurrencyFormat(p.Currency); err != nil {
		return &domain.ValidationError{Field: "currency", Err: err}
	}
	if p.OrderingParty.IsEmpty() {
		return &domain.ValidationError{Field: "ordering_party", Err: domain.ErrMissingParty}
	}
	if p.BeneficiaryParty.IsEmpty() {
		return &domain.ValidationError{Field: "beneficiary_party", Err: domain.ErrMissingParty}
	}

	e.checkLedgerAccount(ctx, "ordering_party", p.OrderingParty)
	e.checkLedgerAccount(ctx, "beneficiary_party", p.BeneficiaryParty)

	return nil
}

// checkLedgerAccount looks up accounts that carry a ledger ID. Off-ledger
// counterparties are allowed, so a miss is only logged.
func (e *Enricher) checkLedgerAccount(ctx context.Context, role string, party domain.Party) {
	if e.accountRepo == nil {
		return
	}

	id := party.AccountID()
	if _, err := ulid.ParseStrict(id); err != nil {
		return
	}

	_, err := e.accountRepo.GetByID(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAccountNotFound):
		e.logger.Warn().Str("party", role).Str("account_id", id).Msg("party account not found on ledger")
	default:
		e.logger.Warn().Err(err).Str("party", role).Str("account_id", id).Msg("party account lookup failed")
	}
}
