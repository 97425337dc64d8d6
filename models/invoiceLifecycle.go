package models

import (
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/shopspring/decimal"
)

// StatusChange describes one edit for the lifecycle to rule on.
type StatusChange struct {
	Current         InvoiceStatus
	Requested       *InvoiceStatus
	AmountsChanged  bool
	PaymentSupplied bool
	Received        decimal.Decimal
	Receivable      decimal.Decimal
}

type StatusDecision struct {
	Status   InvoiceStatus
	Received decimal.Decimal
	Demoted  bool
}

// InferStatus derives a status from the money received so far.
func InferStatus(received decimal.Decimal, receivable decimal.Decimal) InvoiceStatus {
	if !received.IsPositive() {
		return InvoiceStatusUnpaid
	}
	if received.GreaterThanOrEqual(receivable) {
		return InvoiceStatusPaid
	}
	return InvoiceStatusPartial
}

// ResolveStatus applies the transition rules. Amounts must already be recomputed.
func ResolveStatus(c StatusChange) (StatusDecision, error) {
	if c.Current == "" {
		c.Current = InvoiceStatusUnpaid
	}
	if c.Received.IsNegative() {
		return StatusDecision{}, utils.NewValidationError("received amount cannot be negative")
	}
	if c.Receivable.IsNegative() {
		return StatusDecision{}, utils.NewValidationError("receivable amount cannot be negative (deductions exceed invoice total)")
	}

	// an amount edit on a paid invoice reopens it
	if c.Current == InvoiceStatusPaid && c.AmountsChanged {
		return StatusDecision{Status: InvoiceStatusUnpaid, Received: decimal.Zero, Demoted: true}, nil
	}

	target := c.Current
	switch {
	case c.Requested != nil:
		if !c.Requested.IsValid() {
			return StatusDecision{}, utils.NewValidationError("invalid invoice status %q", string(*c.Requested))
		}
		target = *c.Requested
	case c.PaymentSupplied:
		target = InferStatus(c.Received, c.Receivable)
	case c.AmountsChanged && (c.Current == InvoiceStatusUnpaid || c.Current == InvoiceStatusPartial):
		target = InferStatus(c.Received, c.Receivable)
	}

	if err := CheckTransition(c.Current, target); err != nil {
		return StatusDecision{}, err
	}
	if err := checkReceivedForStatus(target, c.Received, c.Receivable); err != nil {
		return StatusDecision{}, err
	}
	return StatusDecision{Status: target, Received: c.Received}, nil
}

// CheckTransition rejects illegal moves between states.
func CheckTransition(from InvoiceStatus, to InvoiceStatus) error {
	if from == to {
		return nil
	}
	switch from {
	case InvoiceStatusPaid:
		return utils.NewValidationError("a Paid invoice cannot change to %s unless its amounts change", to)
	case InvoiceStatusPartial:
		if to != InvoiceStatusPaid {
			return utils.NewValidationError("a Partial invoice can only move to Paid, not %s", to)
		}
	case InvoiceStatusVoid:
		if to != InvoiceStatusUnpaid {
			return utils.NewValidationError("a Void invoice cannot be marked %s; reopen it as Unpaid first", to)
		}
	}
	return nil
}

func checkReceivedForStatus(status InvoiceStatus, received decimal.Decimal, receivable decimal.Decimal) error {
	switch status {
	case InvoiceStatusPaid:
		if received.LessThan(receivable) {
			return utils.NewValidationError("cannot mark as Paid: received %s is short of receivable %s by %s",
				received.StringFixed(2), receivable.StringFixed(2), receivable.Sub(received).StringFixed(2))
		}
	case InvoiceStatusPartial:
		if !received.IsPositive() || received.GreaterThanOrEqual(receivable) {
			return utils.NewValidationError("Partial requires a received amount between 0 and %s, got %s",
				receivable.StringFixed(2), received.StringFixed(2))
		}
	case InvoiceStatusUnpaid, InvoiceStatusVoid:
		if received.IsPositive() {
			return utils.NewValidationError("an invoice with %s received cannot be %s", received.StringFixed(2), status)
		}
	}
	return nil
}
