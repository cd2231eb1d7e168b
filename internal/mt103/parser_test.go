package mt103

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gosettle/internal/domain"
)

var parseTime = time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)

const sample = ":20:TRX1\n" +
	":32A:250101USD500,\n" +
	":50K:/111\n" +
	"ALICE\n" +
	":59:/222\n" +
	"BOB\n" +
	":71A:OUR\n"

func TestParse_RoundTripSample(t *testing.T) {
	p, err := Parse(sample, parseTime)
	require.NoError(t, err)

	assert.Equal(t, "TRX1", p.Reference)
	assert.True(t, p.Amount.Equal(decimal.RequireFromString("500.00")), "amount %s", p.Amount)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.ValueDate)
	assert.Equal(t, domain.Party{Name: "ALICE", Account: "/111"}, p.OrderingParty)
	assert.Equal(t, domain.Party{Name: "BOB", Account: "/222"}, p.BeneficiaryParty)
	assert.Equal(t, domain.ChargesOurs, p.Charges)
	assert.Equal(t, domain.LifecycleReceived, p.Status)
	assert.Equal(t, parseTime, p.ReceivedAt)
	assert.Nil(t, p.TransformedAt)
}

func TestParse_FullBlock(t *testing.T) {
	raw := "{4:\r\n" +
		":20:REF-77\r\n" +
		":23B:CRED\r\n" +
		":32A:991231EUR1234,56\r\n" +
		":50A:/DE89370400440532013000\r\n" +
		"ACME GMBH\r\n" +
		"HAUPTSTR 1\r\n" +
		":59F:/GB29NWBK60161331926819\r\n" +
		"JANE 10 DOWNING ST\r\n" +
		":70:INVOICE 42\r\n" +
		":71A:SHA\r\n" +
		"-}"

	p, err := Parse(raw, parseTime)
	require.NoError(t, err)

	assert.Equal(t, "REF-77", p.Reference)
	assert.Equal(t, "CRED", p.BankOperationCode)
	assert.Equal(t, time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC), p.ValueDate)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, "123456", p.Amount.String())
	assert.Equal(t, domain.Party{Name: "ACME", Account: "/DE89370400440532013000", Address: "GMBH HAUPTSTR 1"}, p.OrderingParty)
	assert.Equal(t, domain.Party{Name: "JANE", Account: "/GB29NWBK60161331926819", Address: "10 DOWNING ST"}, p.BeneficiaryParty)
	assert.Equal(t, domain.ChargesShared, p.Charges)
}

func TestParse_DefaultsChargesWhenAbsent(t *testing.T) {
	p, err := Parse(":20:X\n:32A:250101USD1,\n", parseTime)
	require.NoError(t, err)
	assert.Equal(t, domain.ChargesOurs, p.Charges)
	assert.True(t, p.OrderingParty.IsEmpty())
}

func TestParse_FirstTagOccurrenceWins(t *testing.T) {
	p, err := Parse(":20:FIRST\n:20:SECOND\n", parseTime)
	require.NoError(t, err)
	assert.Equal(t, "FIRST", p.Reference)
}

func TestParse_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t\r\n"} {
		_, err := Parse(raw, parseTime)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrEmptyMessage))
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	}
}

func TestParse_MalformedComposite(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"too short", "2501USD"},
		{"bad month", "251301USD5,"},
		{"bad day", "250230USD5,"},
		{"non numeric date", "25AB01USD5,"},
		{"bad amount", "250101USDabc"},
		{"missing amount", "250101USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(":20:X\n:32A:"+tt.value+"\n", parseTime)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMalformedField)

			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, ":32A:", ve.Field)
		})
	}
}

func TestParse_UnknownCharges(t *testing.T) {
	_, err := Parse(":20:X\n:71A:XYZ\n", parseTime)
	assert.ErrorIs(t, err, domain.ErrMalformedField)
}

func TestParseValueDateAmount_Pivot(t *testing.T) {
	tests := []struct {
		value string
		year  int
	}{
		{"000101USD1,", 2000},
		{"490101USD1,", 2049},
		{"500101USD1,", 1950},
		{"990101USD1,", 1999},
	}

	for _, tt := range tests {
		date, _, _, err := ParseValueDateAmount(tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.year, date.Year(), tt.value)
	}
}

func TestParseValueDateAmount_RemovesCommas(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"250101USD500,", "500"},
		{"250101USD1,234,", "1234"},
		{"250101USD1234,56", "123456"},
		{"250101USD250.50", "250.5"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			_, _, amount, err := ParseValueDateAmount(tt.value)
			require.NoError(t, err)
			assert.True(t, amount.Equal(decimal.RequireFromString(tt.want)), "amount %s", amount)
		})
	}
}

func TestParseValueDateAmount_OnlyCommas(t *testing.T) {
	_, _, _, err := ParseValueDateAmount("250101USD,")
	assert.ErrorIs(t, err, domain.ErrMalformedField)
}

func TestParseValueDateAmount_IgnoresWhitespace(t *testing.T) {
	date, currency, amount, err := ParseValueDateAmount(" 250101 usd 500, ")
	require.NoError(t, err)
	assert.Equal(t, 2025, date.Year())
	assert.Equal(t, "USD", currency)
	assert.Equal(t, "500", amount.String())
}

func TestParseParty(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  domain.Party
	}{
		{"account then name", "/111\nALICE", domain.Party{Account: "/111", Name: "ALICE"}},
		{"name only", "ALICE", domain.Party{Name: "ALICE"}},
		{"account only", "/111", domain.Party{Account: "/111"}},
		{"name before account", "ALICE /111", domain.Party{Name: "ALICE", Account: "/111"}},
		{"address tokens", "/1\nALICE\n1 MAIN ST\nSPRINGFIELD", domain.Party{Account: "/1", Name: "ALICE", Address: "1 MAIN ST SPRINGFIELD"}},
		{"second marker goes to address", "/1 ALICE /2", domain.Party{Account: "/1", Name: "ALICE", Address: "/2"}},
		{"empty", "  ", domain.Party{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseParty(tt.value))
		})
	}
}
