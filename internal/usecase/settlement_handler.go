package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gosettle/internal/domain"
)

// SettlementHandler moves the funds of a requested payment. Its failure
// aborts the unit of work.
type SettlementHandler struct {
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	entryRepo       EntryRepository
	idGen           IDGenerator
	logger          zerolog.Logger
	now             func() time.Time
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *SettlementHandler {
	return &SettlementHandler{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		entryRepo:       entryRepo,
		idGen:           idGen,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// Handle settles the transaction named by a PaymentRequested event.
// A completed transaction is left untouched.
func (h *SettlementHandler) Handle(ctx context.Context, tx Transaction, event domain.Event) error {
	req, ok := event.(*domain.PaymentRequested)
	if !ok {
		return fmt.Errorf("settlement: unsupported event %s", event.EventType())
	}

	txn, err := h.transactionRepo.GetByIDForUpdate(ctx, tx, req.TransactionID)
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", req.TransactionID, err)
	}

	switch txn.Status {
	case domain.TransactionStatusCompleted:
		h.logger.Debug().Str("transaction_id", txn.ID).Msg("transaction already settled")
		return nil
	case domain.TransactionStatusProcessing, domain.TransactionStatusFailed:
		return &domain.BusinessRuleError{Err: domain.ErrDuplicateProcessing, Detail: "transaction is " + string(txn.Status)}
	}

	if err := txn.MarkProcessing(h.now()); err != nil {
		return err
	}
	if err := h.transactionRepo.Update(ctx, tx, txn); err != nil {
		return fmt.Errorf("mark transaction %s processing: %w", txn.ID, err)
	}

	if err := h.settle(ctx, tx, txn); err != nil {
		h.markFailed(ctx, tx, txn, err)
		return err
	}

	h.logger.Info().
		Str("transaction_id", txn.ID).
		Str("amount", txn.Amount.String()).
		Str("currency", txn.Currency).
		Msg("transaction settled")

	return nil
}

func (h *SettlementHandler) settle(ctx context.Context, tx Transaction, txn *domain.Transaction) error {
	accounts, err := h.accountRepo.GetByIDsForUpdate(ctx, tx, []string{txn.SenderAccountID, txn.ReceiverAccountID})
	if err != nil {
		return fmt.Errorf("lock accounts: %w", err)
	}

	var sender, receiver *domain.Account
	for _, acc := range accounts {
		switch acc.ID {
		case txn.SenderAccountID:
			sender = acc
		case txn.ReceiverAccountID:
			receiver = acc
		}
	}
	if sender == nil {
		return fmt.Errorf("sender %s: %w", txn.SenderAccountID, domain.ErrAccountNotFound)
	}
	if receiver == nil {
		return fmt.Errorf("receiver %s: %w", txn.ReceiverAccountID, domain.ErrAccountNotFound)
	}

	if err := sender.ValidateDebit(txn.Amount); err != nil {
		return err
	}

	now := h.now()
	senderBalance := sender.ApplyDebit(txn.Amount)
	receiverBalance := receiver.ApplyCredit(txn.Amount)

	if err := h.accountRepo.UpdateBalance(ctx, tx, sender.ID, senderBalance, now); err != nil {
		return fmt.Errorf("debit %s: %w", sender.ID, err)
	}
	if err := h.accountRepo.UpdateBalance(ctx, tx, receiver.ID, receiverBalance, now); err != nil {
		return fmt.Errorf("credit %s: %w", receiver.ID, err)
	}

	entries := []*domain.Entry{
		{
			ID:                     h.idGen.Generate(),
			AccountID:              sender.ID,
			TransactionID:          txn.ID,
			Amount:                 txn.Amount.Neg(),
			AccountPreviousBalance: sender.Balance,
			AccountCurrentBalance:  senderBalance,
			AccountVersion:         sender.Version + 1,
			CreatedAt:              now,
		},
		{
			ID:                     h.idGen.Generate(),
			AccountID:              receiver.ID,
			TransactionID:          txn.ID,
			Amount:                 txn.Amount,
			AccountPreviousBalance: receiver.Balance,
			AccountCurrentBalance:  receiverBalance,
			AccountVersion:         receiver.Version + 1,
			CreatedAt:              now,
		},
	}
	for _, entry := range entries {
		if err := h.entryRepo.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("write entry: %w", err)
		}
	}

	if err := txn.MarkCompleted(now); err != nil {
		return err
	}
	if err := h.transactionRepo.Update(ctx, tx, txn); err != nil {
		return fmt.Errorf("mark transaction %s completed: %w", txn.ID, err)
	}

	return nil
}

// markFailed records cause on the transaction. The unit of work is about
// to be rolled back, so a failure here is only logged.
func (h *SettlementHandler) markFailed(ctx context.Context, tx Transaction, txn *domain.Transaction, cause error) {
	if txn.Status.IsTerminal() {
		return
	}
	if err := txn.MarkFailed(cause.Error(), h.now()); err != nil {
		h.logger.Warn().Err(err).Str("transaction_id", txn.ID).Msg("cannot mark transaction failed")
		return
	}
	if err := h.transactionRepo.Update(ctx, tx, txn); err != nil {
		h.logger.Warn().Err(err).Str("transaction_id", txn.ID).Msg("cannot persist failed transaction")
	}
}
