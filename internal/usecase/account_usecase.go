package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
	auditSink   AuditSink
}

// NewAccountUseCase creates a new AccountUseCase. auditSink may be nil.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator, auditSink AuditSink) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
		auditSink:   auditSink,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name           string
	Currency       string
	InitialBalance decimal.Decimal
}

// CreateAccount creates a new account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountName(input.Name); err != nil {
		return nil, &domain.ValidationError{Field: "name", Err: err}
	}
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, &domain.ValidationError{Field: "currency", Err: err}
	}
	if input.InitialBalance.IsNegative() {
		return nil, &domain.ValidationError{Field: "initial_balance", Err: fmt.Errorf("%w: initial balance is negative", domain.ErrInvalidAmount)}
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Name:      strings.TrimSpace(input.Name),
		Currency:  strings.ToUpper(strings.TrimSpace(input.Currency)),
		Balance:   input.InitialBalance,
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.auditSink != nil {
		// Audit is best-effort; the account already exists.
		_ = uc.auditSink.Record(ctx, &domain.AuditLog{
			ID:           uc.idGen.Generate(),
			Action:       string(domain.AuditActionAccountCreate),
			ResourceType: "account",
			ResourceID:   account.ID,
			AfterState:   domain.MarshalState(account),
			Status:       string(domain.AuditStatusSuccess),
			CreatedAt:    now,
		})
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.accountRepo.List(ctx, input.Limit, input.Offset)
}
