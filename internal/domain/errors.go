package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")

	// Transaction errors
	ErrSameAccount         = errors.New("cannot transfer to same account")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransition   = errors.New("invalid transaction status transition")
	ErrDuplicateProcessing = errors.New("transaction already processed")
	ErrFraudSuspected      = errors.New("fraud score exceeds threshold")

	// Message errors
	ErrEmptyMessage   = errors.New("legacy message is empty")
	ErrMalformedField = errors.New("malformed message field")
	ErrMissingParty   = errors.New("party needs a name or an account")
)

// Kind classifies an error for callers that map failures to responses.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindBusinessRule
	KindNotFound
	KindBestEffort
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusinessRule:
		return "business_rule"
	case KindNotFound:
		return "not_found"
	case KindBestEffort:
		return "best_effort"
	default:
		return "unknown"
	}
}

// ValidationError reports malformed or incomplete input on a named field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BusinessRuleError reports well-formed input that the ledger refuses.
type BusinessRuleError struct {
	Err    error
	Detail string
}

func (e *BusinessRuleError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Detail
}

func (e *BusinessRuleError) Unwrap() error { return e.Err }

// BestEffortError wraps a failure of a handler whose errors are never fatal.
type BestEffortError struct {
	Handler string
	Err     error
}

func (e *BestEffortError) Error() string { return e.Handler + ": " + e.Err.Error() }

func (e *BestEffortError) Unwrap() error { return e.Err }

// KindOf returns the classification of err. Typed errors win over sentinels.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var (
		ve *ValidationError
		be *BusinessRuleError
		ee *BestEffortError
	)
	switch {
	case errors.As(err, &ee):
		return KindBestEffort
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &be):
		return KindBusinessRule
	}

	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrTransactionNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrDuplicateProcessing),
		errors.Is(err, ErrFraudSuspected), errors.Is(err, ErrInvalidTransition):
		return KindBusinessRule
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrSameAccount),
		errors.Is(err, ErrInvalidCurrency), errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrMalformedField), errors.Is(err, ErrMissingParty),
		errors.Is(err, ErrInvalidAccountName), errors.Is(err, ErrAmountTooLarge):
		return KindValidation
	}
	return KindUnknown
}
