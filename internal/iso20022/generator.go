package iso20022

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iho/gosettle/internal/domain"
)

const (
	creationLayout   = "2006-01-02T15:04:05.000Z"
	dateLayout       = "2006-01-02"
	settlementMethod = "CLRG"
)

var ErrNilPayment = errors.New("payment is nil")

// chargeBearers maps MT103 charge codes to ChrgBr values.
var chargeBearers = map[domain.ChargeBearer]string{
	domain.ChargesOurs:        "DEBT",
	domain.ChargesShared:      "SHAR",
	domain.ChargesBeneficiary: "CRED",
}

// Generator renders one pacs.008 document per payment.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a Generator. A nil clock means time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Generate returns the XML document for p. It does not modify p.
func (g *Generator) Generate(p *domain.CanonicalPayment) (string, error) {
	if p == nil {
		return "", ErrNilPayment
	}

	created := g.now().UTC()
	amount := p.Amount.StringFixed(2)

	settlementDate := p.ValueDate
	if settlementDate.IsZero() {
		settlementDate = created
	}

	doc := Document{
		Xmlns: Namespace,
		Transfer: FIToFICustomerCreditTransfer{
			GroupHeader: GroupHeader{
				MessageID:            p.Reference,
				CreationDateTime:     created.Format(creationLayout),
				NumberOfTransactions: "1",
				ControlSum:           amount,
				Settlement:           SettlementInstruction{Method: settlementMethod},
			},
			Transaction: CreditTransferTransaction{
				PaymentID: PaymentIdentification{
					InstructionID: p.Reference,
					EndToEndID:    p.Reference,
					UETR:          p.UETR,
				},
				SettlementAmount:      CurrencyAndAmount{Currency: p.Currency, Value: amount},
				SettlementDate:        settlementDate.Format(dateLayout),
				InstructedAmount:      CurrencyAndAmount{Currency: p.Currency, Value: amount},
				ChargeBearer:          chargeBearer(p.Charges),
				Debtor:                partyIdentification(p.OrderingParty),
				DebtorAccount:         cashAccount(p.OrderingParty),
				Creditor:              partyIdentification(p.BeneficiaryParty),
				CreditorAccount:       cashAccount(p.BeneficiaryParty),
				RemittanceInformation: RemittanceInformation{Unstructured: remittance(p)},
			},
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal pacs.008: %w", err)
	}

	return xml.Header + string(out), nil
}

func chargeBearer(c domain.ChargeBearer) string {
	if v, ok := chargeBearers[c]; ok {
		return v
	}
	return chargeBearers[domain.ChargesOurs]
}

func partyIdentification(p domain.Party) PartyIdentification {
	id := PartyIdentification{Name: p.Name}
	if addr := strings.TrimSpace(p.Address); addr != "" {
		id.PostalAddress = &PostalAddress{AddressLines: []string{addr}}
	}
	return id
}

func cashAccount(p domain.Party) *CashAccount {
	account := p.AccountID()
	if account == "" {
		return nil
	}
	return &CashAccount{ID: AccountIdentification{Other: GenericAccountIdentification{ID: account}}}
}

func remittance(p *domain.CanonicalPayment) string {
	charges := p.Charges
	if charges == "" {
		charges = domain.ChargesOurs
	}
	op := p.BankOperationCode
	if op == "" {
		op = domain.BankOperationCredit
	}
	return fmt.Sprintf("CHARGES %s BANK OPERATION %s", charges, op)
}
