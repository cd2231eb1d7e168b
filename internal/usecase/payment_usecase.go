package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
	"github.com/iho/gosettle/internal/mt103"
)

// PaymentUseCaseConfig holds the collaborators of a PaymentUseCase.
type PaymentUseCaseConfig struct {
	TxManager       TransactionManager
	AccountRepo     AccountRepository
	TransactionRepo TransactionRepository
	EntryRepo       EntryRepository
	// OutboxRepo receives one row per dispatched event. Optional.
	OutboxRepo     OutboxRepository
	IDGen          IDGenerator
	Dispatcher     EventDispatcher
	Enricher       *Enricher
	Generator      MessageGenerator
	FraudScorer    FraudScorer
	FraudThreshold float64
	ScoringTimeout time.Duration
	// Retrier reruns the unit of work on retryable storage errors. Optional.
	Retrier Retrier
	Metrics Metrics
	Logger  zerolog.Logger
	Now     func() time.Time
}

// PaymentUseCase runs payments from request to settlement.
type PaymentUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	entryRepo       EntryRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	dispatcher      EventDispatcher
	enricher        *Enricher
	generator       MessageGenerator
	fraudScorer     FraudScorer
	fraudThreshold  float64
	scoringTimeout  time.Duration
	retrier         Retrier
	metrics         Metrics
	logger          zerolog.Logger
	now             func() time.Time
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(cfg PaymentUseCaseConfig) *PaymentUseCase {
	if cfg.FraudThreshold <= 0 {
		cfg.FraudThreshold = DefaultFraudThreshold
	}
	if cfg.ScoringTimeout <= 0 {
		cfg.ScoringTimeout = DefaultFraudScoringTimeout
	}
	if cfg.Metrics == nil {
		cfg.Metrics = nopMetrics{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &PaymentUseCase{
		txManager:       cfg.TxManager,
		accountRepo:     cfg.AccountRepo,
		transactionRepo: cfg.TransactionRepo,
		entryRepo:       cfg.EntryRepo,
		outboxRepo:      cfg.OutboxRepo,
		idGen:           cfg.IDGen,
		dispatcher:      cfg.Dispatcher,
		enricher:        cfg.Enricher,
		generator:       cfg.Generator,
		fraudScorer:     cfg.FraudScorer,
		fraudThreshold:  cfg.FraudThreshold,
		scoringTimeout:  cfg.ScoringTimeout,
		retrier:         cfg.Retrier,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		now:             cfg.Now,
	}
}

// PaymentSummary is a lightweight view of a processed payment.
type PaymentSummary struct {
	Reference         string
	UETR              string
	SenderAccountID   string
	SenderName        string
	ReceiverAccountID string
	ReceiverName      string
	Amount            decimal.Decimal
	Currency          string
	ValueDate         time.Time
	Charges           domain.ChargeBearer
	LifecycleStatus   domain.LifecycleStatus
	FraudScore        float64
	TransformedAt     *time.Time
	SentAt            *time.Time
}

// PaymentResult is returned for every payment, accepted or not.
type PaymentResult struct {
	TransactionID string
	Status        domain.TransactionStatus
	Summary       *PaymentSummary
	SettlementXML string
	Message       string
	// FailureKind classifies why a failed payment was not settled.
	FailureKind domain.Kind
}

// ConversionResult is the outcome of converting a legacy message.
type ConversionResult struct {
	SettlementXML   string
	Payment         *domain.CanonicalPayment
	LifecycleStatus domain.LifecycleStatus
}

const genericFailureMessage = "payment could not be processed"

// CreatePayment validates, converts and settles a payment. Rejections and
// settlement failures come back as a failed result with a nil error; only
// unexpected failures also return an error.
func (uc *PaymentUseCase) CreatePayment(ctx context.Context, input CreatePaymentInput) (*PaymentResult, error) {
	start := time.Now()

	result, err := uc.createPayment(ctx, input)
	if err != nil {
		uc.logger.Error().Err(err).
			Str("sender_account_id", input.SenderAccountID).
			Str("receiver_account_id", input.ReceiverAccountID).
			Msg("payment failed unexpectedly")
		result = &PaymentResult{Status: domain.TransactionStatusFailed, Message: genericFailureMessage}
	}

	uc.metrics.PaymentProcessed(string(result.Status), input.Amount)
	uc.metrics.ObservePayment(time.Since(start))

	return result, err
}

func (uc *PaymentUseCase) createPayment(ctx context.Context, input CreatePaymentInput) (*PaymentResult, error) {
	sender, receiver, score, err := uc.screen(ctx, input)
	if err != nil {
		return uc.reject(input, err)
	}

	now := uc.now().UTC()
	canonical := ToCanonical(input, sender, receiver, now)
	uc.enricher.Enrich(canonical)
	if err := uc.enricher.Validate(ctx, canonical); err != nil {
		return uc.reject(input, err)
	}

	settlementXML, err := uc.generator.Generate(canonical)
	if err != nil {
		return nil, fmt.Errorf("generate settlement message: %w", err)
	}
	canonical.MarkTransformed(uc.now())

	txn, events, err := domain.NewPendingTransaction(domain.NewTransactionParams{
		ID:            uc.idGen.Generate(),
		Sender:        sender,
		Receiver:      receiver,
		Amount:        canonical.Amount,
		Currency:      canonical.Currency,
		Reference:     canonical.Reference,
		SettlementXML: settlementXML,
		Now:           now,
	})
	if err != nil {
		return uc.reject(input, err)
	}

	failure := domain.KindBusinessRule
	if err := uc.commit(ctx, txn, events); err != nil {
		var herr *HandlerError
		if !errors.As(err, &herr) {
			return nil, fmt.Errorf("commit transaction %s: %w", txn.ID, err)
		}

		uc.logger.Warn().Err(herr.Err).
			Str("transaction_id", txn.ID).
			Str("handler", herr.Handler).
			Msg("settlement aborted")
		failure = settlementFailureKind(herr.Err)

		if err := uc.recordFailure(ctx, txn, herr.Err); err != nil {
			return nil, fmt.Errorf("record failure of %s: %w", txn.ID, err)
		}
	}

	final, err := uc.transactionRepo.GetByID(ctx, txn.ID)
	if err != nil {
		return nil, fmt.Errorf("reload transaction %s: %w", txn.ID, err)
	}

	result := &PaymentResult{
		TransactionID: final.ID,
		Status:        final.Status,
		SettlementXML: settlementXML,
		Message:       resultMessage(final),
	}
	switch final.Status {
	case domain.TransactionStatusCompleted:
		canonical.MarkSent(uc.now())
	case domain.TransactionStatusFailed:
		result.FailureKind = failure
	}
	result.Summary = summarize(canonical, sender, receiver, score)

	return result, nil
}

// settlementFailureKind classifies a fatal handler failure. Errors without
// a caller-facing kind count as business rule failures.
func settlementFailureKind(err error) domain.Kind {
	switch kind := domain.KindOf(err); kind {
	case domain.KindValidation, domain.KindNotFound, domain.KindBusinessRule:
		return kind
	default:
		return domain.KindBusinessRule
	}
}

// screen runs the checks that must pass before anything is written.
func (uc *PaymentUseCase) screen(ctx context.Context, input CreatePaymentInput) (*domain.Account, *domain.Account, float64, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, nil, 0, &domain.ValidationError{Field: "amount", Err: err}
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, nil, 0, &domain.ValidationError{Field: "currency", Err: err}
	}
	if input.SenderAccountID == input.ReceiverAccountID {
		return nil, nil, 0, &domain.ValidationError{Field: "receiver_account_id", Err: domain.ErrSameAccount}
	}

	sender, err := uc.accountRepo.GetByID(ctx, input.SenderAccountID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("sender %s: %w", input.SenderAccountID, err)
	}
	receiver, err := uc.accountRepo.GetByID(ctx, input.ReceiverAccountID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("receiver %s: %w", input.ReceiverAccountID, err)
	}

	if err := sender.ValidateDebit(input.Amount); err != nil {
		return nil, nil, 0, err
	}

	score, err := uc.score(ctx, input)
	if err != nil {
		return nil, nil, 0, err
	}
	if score > uc.fraudThreshold {
		return nil, nil, score, &domain.BusinessRuleError{
			Err:    domain.ErrFraudSuspected,
			Detail: fmt.Sprintf("score %.2f above %.2f", score, uc.fraudThreshold),
		}
	}

	return sender, receiver, score, nil
}

func (uc *PaymentUseCase) score(ctx context.Context, input CreatePaymentInput) (float64, error) {
	if uc.fraudScorer == nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, uc.scoringTimeout)
	defer cancel()

	score, err := uc.fraudScorer.Score(ctx, FraudCheck{
		SenderAccountID:   input.SenderAccountID,
		ReceiverAccountID: input.ReceiverAccountID,
		Amount:            input.Amount,
		Currency:          input.Currency,
	})
	if err != nil {
		return 0, &domain.BusinessRuleError{Err: domain.ErrFraudSuspected, Detail: "scoring unavailable: " + err.Error()}
	}
	return score, nil
}

// reject turns an expected failure into a failed result. Anything else
// is passed through as an error.
func (uc *PaymentUseCase) reject(input CreatePaymentInput, err error) (*PaymentResult, error) {
	if domain.KindOf(err) == domain.KindUnknown {
		return nil, err
	}

	uc.logger.Info().
		Str("sender_account_id", input.SenderAccountID).
		Str("receiver_account_id", input.ReceiverAccountID).
		Str("reason", err.Error()).
		Msg("payment rejected")

	return &PaymentResult{
		Status:      domain.TransactionStatusFailed,
		Message:     err.Error(),
		FailureKind: domain.KindOf(err),
	}, nil
}

// commit persists txn and dispatches its events in one unit of work.
// Best-effort handlers run once even when the unit of work is retried.
func (uc *PaymentUseCase) commit(ctx context.Context, txn *domain.Transaction, events []domain.Event) error {
	ctx = WithDeliveryLog(ctx)
	return uc.inUnitOfWork(ctx, func(tx Transaction) error {
		if err := uc.transactionRepo.Create(ctx, tx, txn); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		if err := uc.dispatcher.Dispatch(ctx, tx, events); err != nil {
			return err
		}

		if uc.outboxRepo != nil {
			for _, event := range events {
				if err := uc.outboxRepo.Create(ctx, tx, domain.NewOutboxEvent(uc.idGen.Generate(), event, uc.now())); err != nil {
					return fmt.Errorf("create outbox event: %w", err)
				}
			}
		}

		return nil
	})
}

// recordFailure stores txn as failed after its unit of work was rolled
// back. Balances are not touched.
func (uc *PaymentUseCase) recordFailure(ctx context.Context, txn *domain.Transaction, cause error) error {
	failed := txn.Clone()
	if err := failed.MarkFailed(cause.Error(), uc.now()); err != nil {
		return err
	}

	return uc.inUnitOfWork(ctx, func(tx Transaction) error {
		return uc.transactionRepo.Create(ctx, tx, failed)
	})
}

func (uc *PaymentUseCase) inUnitOfWork(ctx context.Context, fn func(tx Transaction) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	op := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin: %w", err)
		}
		defer tx.Rollback(ctx)

		if err := fn(tx); err != nil {
			return err
		}

		return tx.Commit(ctx)
	}

	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}

// ConvertLegacyMessage turns raw MT103 text into a pacs.008 document
// without touching the ledger.
func (uc *PaymentUseCase) ConvertLegacyMessage(ctx context.Context, raw string) (*ConversionResult, error) {
	result, err := uc.convertLegacyMessage(ctx, raw)
	uc.metrics.LegacyConverted(err == nil)
	return result, err
}

func (uc *PaymentUseCase) convertLegacyMessage(ctx context.Context, raw string) (*ConversionResult, error) {
	payment, err := mt103.Parse(raw, uc.now())
	if err != nil {
		return nil, err
	}

	uc.enricher.Enrich(payment)
	if err := uc.enricher.Validate(ctx, payment); err != nil {
		return nil, err
	}

	settlementXML, err := uc.generator.Generate(payment)
	if err != nil {
		return nil, fmt.Errorf("generate settlement message: %w", err)
	}
	payment.MarkTransformed(uc.now())

	uc.logger.Info().
		Str("reference", payment.Reference).
		Str("uetr", payment.UETR).
		Msg("legacy message converted")

	return &ConversionResult{
		SettlementXML:   settlementXML,
		Payment:         payment,
		LifecycleStatus: payment.Status,
	}, nil
}

// GetTransaction retrieves a transaction by ID.
func (uc *PaymentUseCase) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return uc.transactionRepo.GetByID(ctx, id)
}

// ListTransactionsForAccount lists an account's transactions, newest first.
func (uc *PaymentUseCase) ListTransactionsForAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	limit, offset, _ = domain.ValidatePagination(limit, offset)
	return uc.transactionRepo.ListByAccount(ctx, accountID, limit, offset)
}

// GetEntries returns the ledger entries written by a transaction.
func (uc *PaymentUseCase) GetEntries(ctx context.Context, transactionID string) ([]*domain.Entry, error) {
	if _, err := uc.transactionRepo.GetByID(ctx, transactionID); err != nil {
		return nil, err
	}
	return uc.entryRepo.GetByTransaction(ctx, transactionID)
}

func summarize(p *domain.CanonicalPayment, sender, receiver *domain.Account, score float64) *PaymentSummary {
	return &PaymentSummary{
		Reference:         p.Reference,
		UETR:              p.UETR,
		SenderAccountID:   sender.ID,
		SenderName:        sender.Name,
		ReceiverAccountID: receiver.ID,
		ReceiverName:      receiver.Name,
		Amount:            p.Amount,
		Currency:          p.Currency,
		ValueDate:         p.ValueDate,
		Charges:           p.Charges,
		LifecycleStatus:   p.Status,
		FraudScore:        score,
		TransformedAt:     p.TransformedAt,
		SentAt:            p.SentAt,
	}
}

func resultMessage(txn *domain.Transaction) string {
	switch txn.Status {
	case domain.TransactionStatusCompleted:
		return "payment completed"
	case domain.TransactionStatusFailed:
		return "payment failed: " + txn.FailureReason
	default:
		return "payment " + string(txn.Status)
	}
}
