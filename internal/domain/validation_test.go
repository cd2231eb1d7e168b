package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateAccountName(t *testing.T) {
	t.Parallel()

	t.Run("valid name", func(t *testing.T) {
		if err := ValidateAccountName("Alice Operating"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		err := ValidateAccountName("   ")
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		tooLong := strings.Repeat("a", MaxAccountNameLength+1)
		err := ValidateAccountName(tooLong)
		if !errors.Is(err, ErrInvalidAccountName) {
			t.Fatalf("expected ErrInvalidAccountName, got %v", err)
		}
	})

	t.Run("names with punctuation and keywords accepted", func(t *testing.T) {
		for _, name := range []string{"Update Logistics", "O'Neil; Ltd", "Müller & Söhne GmbH"} {
			if err := ValidateAccountName(name); err != nil {
				t.Fatalf("expected %q to be valid, got %v", name, err)
			}
		}
	})

	t.Run("length counts characters", func(t *testing.T) {
		if err := ValidateAccountName(strings.Repeat("é", MaxAccountNameLength)); err != nil {
			t.Fatalf("expected %d two-byte characters to fit, got %v", MaxAccountNameLength, err)
		}
	})

	t.Run("control characters rejected", func(t *testing.T) {
		for _, name := range []string{"Alice\x00", "Alice\nBob", "Bell\a"} {
			if err := ValidateAccountName(name); !errors.Is(err, ErrInvalidAccountName) {
				t.Fatalf("expected ErrInvalidAccountName for %q, got %v", name, err)
			}
		}
	})
}

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency("usd"); err != nil {
		t.Fatalf("expected uppercase conversion to succeed, got %v", err)
	}

	if err := ValidateCurrency("XYZ"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestValidateCurrencyFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		currency string
		valid    bool
	}{
		{"USD", true},
		{"xyz", true},
		{"", false},
		{"US", false},
		{"USDT", false},
		{"U5D", false},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			err := ValidateCurrencyFormat(tt.currency)
			if tt.valid && err != nil {
				t.Fatalf("expected %q to be valid, got %v", tt.currency, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidCurrency) {
				t.Fatalf("expected ErrInvalidCurrency for %q, got %v", tt.currency, err)
			}
		})
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	valid := decimal.NewFromFloat(100.25)
	if err := ValidateAmount(valid); err != nil {
		t.Fatalf("expected valid amount, got %v", err)
	}

	if err := ValidateAmount(decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-5)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
	}

	huge := decimal.RequireFromString(MaxTransferAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(huge); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidatePagination(t *testing.T) {
	t.Parallel()

	limit, offset, err := ValidatePagination(0, -10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 50 || offset != 0 {
		t.Fatalf("expected defaults (50,0), got (%d,%d)", limit, offset)
	}

	limit, _, _ = ValidatePagination(5000, 0)
	if limit != 1000 {
		t.Fatalf("expected limit clamp to 1000, got %d", limit)
	}
}
