// Package iso20022 renders canonical payments as pacs.008
// FIToFICustomerCreditTransfer documents.
package iso20022

import "encoding/xml"

// MessageType represents ISO 20022 message types.
type MessageType string

const (
	Pacs008 MessageType = "pacs.008.001.08" // FIToFICustomerCreditTransfer
)

// Namespace is the default namespace of a generated document.
const Namespace = "urn:iso:std:iso:20022:tech:xsd:" + string(Pacs008)

// Document is the root element of a pacs.008 message.
type Document struct {
	XMLName  xml.Name                     `xml:"Document"`
	Xmlns    string                       `xml:"xmlns,attr"`
	Transfer FIToFICustomerCreditTransfer `xml:"FIToFICstmrCdtTrf"`
}

type FIToFICustomerCreditTransfer struct {
	GroupHeader GroupHeader               `xml:"GrpHdr"`
	Transaction CreditTransferTransaction `xml:"CdtTrfTxInf"`
}

type GroupHeader struct {
	MessageID            string                `xml:"MsgId"`
	CreationDateTime     string                `xml:"CreDtTm"`
	NumberOfTransactions string                `xml:"NbOfTxs"`
	ControlSum           string                `xml:"CtrlSum"`
	Settlement           SettlementInstruction `xml:"SttlmInf"`
}

type SettlementInstruction struct {
	Method string `xml:"SttlmMtd"`
}

type CreditTransferTransaction struct {
	PaymentID             PaymentIdentification `xml:"PmtId"`
	SettlementAmount      CurrencyAndAmount     `xml:"IntrBkSttlmAmt"`
	SettlementDate        string                `xml:"IntrBkSttlmDt"`
	InstructedAmount      CurrencyAndAmount     `xml:"InstdAmt"`
	ChargeBearer          string                `xml:"ChrgBr"`
	Debtor                PartyIdentification   `xml:"Dbtr"`
	DebtorAccount         *CashAccount          `xml:"DbtrAcct,omitempty"`
	Creditor              PartyIdentification   `xml:"Cdtr"`
	CreditorAccount       *CashAccount          `xml:"CdtrAcct,omitempty"`
	RemittanceInformation RemittanceInformation `xml:"RmtInf"`
}

type PaymentIdentification struct {
	InstructionID string `xml:"InstrId"`
	EndToEndID    string `xml:"EndToEndId"`
	UETR          string `xml:"UETR,omitempty"`
}

type CurrencyAndAmount struct {
	Currency string `xml:"Ccy,attr"`
	Value    string `xml:",chardata"`
}

type PartyIdentification struct {
	Name          string         `xml:"Nm,omitempty"`
	PostalAddress *PostalAddress `xml:"PstlAdr,omitempty"`
}

type PostalAddress struct {
	AddressLines []string `xml:"AdrLine"`
}

type CashAccount struct {
	ID AccountIdentification `xml:"Id"`
}

type AccountIdentification struct {
	Other GenericAccountIdentification `xml:"Othr"`
}

type GenericAccountIdentification struct {
	ID string `xml:"Id"`
}

type RemittanceInformation struct {
	Unstructured string `xml:"Ustrd"`
}
