package documents

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceSnapshot is the read-only view of a saved invoice handed to the renderer and mailer.
type InvoiceSnapshot struct {
	BusinessId       string          `json:"business_id"`
	InvoiceId        int             `json:"invoice_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	Event            string          `json:"event"`
	CustomerName     string          `json:"customer_name"`
	CustomerEmail    string          `json:"customer_email"`
	InvoiceDate      time.Time       `json:"invoice_date"`
	DueDate          time.Time       `json:"due_date"`
	Currency         string          `json:"currency"`
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
	Status           string          `json:"status"`
	GstType          string          `json:"gst_type"`
	Items            []SnapshotItem  `json:"items"`
	BaseAmount       decimal.Decimal `json:"base_amount"`
	Cgst             decimal.Decimal `json:"cgst"`
	Sgst             decimal.Decimal `json:"sgst"`
	Igst             decimal.Decimal `json:"igst"`
	TdsAmount        decimal.Decimal `json:"tds_amount"`
	TcsAmount        decimal.Decimal `json:"tcs_amount"`
	Remittance       decimal.Decimal `json:"remittance_charges"`
	InvoiceTotal     decimal.Decimal `json:"invoice_total"`
	ReceivableAmount decimal.Decimal `json:"receivable_amount"`
	ReceivedAmount   decimal.Decimal `json:"received_amount"`
	InrEquivalent    decimal.Decimal `json:"inr_equivalent"`
	CorrelationId    string          `json:"correlation_id"`
}

type SnapshotItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// FileName is the object name used for the rendered attachment.
func (s InvoiceSnapshot) FileName() string {
	return fmt.Sprintf("%s.xlsx", s.InvoiceNumber)
}

// Summary is the one-line text used as the notification subject.
func (s InvoiceSnapshot) Summary() string {
	return fmt.Sprintf("Invoice %s for %s %s (%s)", s.InvoiceNumber, s.Currency, s.ReceivableAmount.StringFixed(2), s.Status)
}
