// Package mt103 reads SWIFT MT103 customer credit transfers into the
// canonical payment form.
package mt103

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gosettle/internal/domain"
)

// Field tags
const (
	TagReference         = "20"
	TagBankOperationCode = "23B"
	TagValueDateAmount   = "32A"
	TagOrderingK         = "50K"
	TagOrderingA         = "50A"
	TagOrderingF         = "50F"
	TagBeneficiary       = "59"
	TagBeneficiaryA      = "59A"
	TagBeneficiaryF      = "59F"
	TagCharges           = "71A"
)

var (
	tagLine = regexp.MustCompile(`^:(\d{2}[A-Z]?):(.*)$`)

	orderingTags    = []string{TagOrderingK, TagOrderingA, TagOrderingF}
	beneficiaryTags = []string{TagBeneficiary, TagBeneficiaryA, TagBeneficiaryF}
)

// Parse extracts a canonical payment from raw MT103 text. The result is
// stamped as received at now.
func Parse(raw string, now time.Time) (*domain.CanonicalPayment, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &domain.ValidationError{Field: "message", Err: domain.ErrEmptyMessage}
	}

	fields := splitFields(raw)

	payment := &domain.CanonicalPayment{
		Reference:         strings.TrimSpace(fields[TagReference]),
		BankOperationCode: strings.TrimSpace(fields[TagBankOperationCode]),
		Charges:           domain.ChargesOurs,
		Status:            domain.LifecycleReceived,
		ReceivedAt:        now.UTC(),
	}

	if composite, ok := fields[TagValueDateAmount]; ok {
		valueDate, currency, amount, err := ParseValueDateAmount(composite)
		if err != nil {
			return nil, err
		}
		payment.ValueDate = valueDate
		payment.Currency = currency
		payment.Amount = amount
	}

	if value, ok := firstOf(fields, orderingTags); ok {
		payment.OrderingParty = ParseParty(value)
	}
	if value, ok := firstOf(fields, beneficiaryTags); ok {
		payment.BeneficiaryParty = ParseParty(value)
	}

	if value, ok := fields[TagCharges]; ok {
		charges, err := parseCharges(value)
		if err != nil {
			return nil, err
		}
		payment.Charges = charges
	}

	return payment, nil
}

// splitFields maps each tag to its value. Continuation lines belong to the
// preceding tag; a repeated tag keeps its first value.
func splitFields(raw string) map[string]string {
	fields := make(map[string]string)
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	var (
		current string
		buf     []string
	)
	flush := func() {
		if current == "" {
			return
		}
		if _, seen := fields[current]; !seen {
			fields[current] = strings.Join(buf, "\n")
		}
		current, buf = "", nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-}") {
			break
		}
		if m := tagLine.FindStringSubmatch(trimmed); m != nil {
			flush()
			current = m[1]
			buf = []string{m[2]}
			continue
		}
		if current != "" {
			buf = append(buf, trimmed)
		}
	}
	flush()

	return fields
}

func firstOf(fields map[string]string, tags []string) (string, bool) {
	for _, tag := range tags {
		if v, ok := fields[tag]; ok {
			return v, true
		}
	}
	return "", false
}

// ParseValueDateAmount splits a :32A: value into value date, currency and
// amount. Commas mark the end of the amount and are removed before
// parsing, so "1,234," reads as 1234.
func ParseValueDateAmount(value string) (time.Time, string, decimal.Decimal, error) {
	compact := strings.Join(strings.Fields(value), "")
	if len(compact) < 10 {
		return time.Time{}, "", decimal.Zero, malformed(TagValueDateAmount, "too short: %q", compact)
	}

	date, err := parseDate(compact[:6])
	if err != nil {
		return time.Time{}, "", decimal.Zero, err
	}

	currency := strings.ToUpper(compact[6:9])

	rawAmount := strings.ReplaceAll(compact[9:], ",", "")
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return time.Time{}, "", decimal.Zero, malformed(TagValueDateAmount, "amount %q", compact[9:])
	}

	return date, currency, amount, nil
}

// parseDate reads YYMMDD. Years below 50 belong to the 2000s.
func parseDate(s string) (time.Time, error) {
	yy, errY := strconv.Atoi(s[0:2])
	mm, errM := strconv.Atoi(s[2:4])
	dd, errD := strconv.Atoi(s[4:6])
	if errY != nil || errM != nil || errD != nil {
		return time.Time{}, malformed(TagValueDateAmount, "date %q", s)
	}

	year := 1900 + yy
	if yy < 50 {
		year = 2000 + yy
	}

	date := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != mm || date.Day() != dd {
		return time.Time{}, malformed(TagValueDateAmount, "date %q", s)
	}
	return date, nil
}

// ParseParty reads a party block. The first token starting with the
// account marker is the account, the first other token is the name and
// every remaining token is joined into the address.
func ParseParty(value string) domain.Party {
	var (
		party   domain.Party
		address []string
	)

	for _, token := range strings.Fields(value) {
		switch {
		case party.Account == "" && strings.HasPrefix(token, domain.AccountMarker):
			party.Account = token
		case party.Name == "":
			party.Name = token
		default:
			address = append(address, token)
		}
	}

	party.Address = strings.Join(address, " ")
	return party
}

func parseCharges(value string) (domain.ChargeBearer, error) {
	code := domain.ChargeBearer(strings.ToUpper(strings.TrimSpace(value)))
	switch code {
	case "":
		return domain.ChargesOurs, nil
	case domain.ChargesOurs, domain.ChargesShared, domain.ChargesBeneficiary:
		return code, nil
	default:
		return "", malformed(TagCharges, "unknown charges code %q", value)
	}
}

func malformed(tag, format string, args ...any) error {
	return &domain.ValidationError{
		Field: ":" + tag + ":",
		Err:   fmt.Errorf("%w: "+format, append([]any{domain.ErrMalformedField}, args...)...),
	}
}
