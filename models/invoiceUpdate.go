package models

import (
	"context"
	"strings"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/currency"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceUpdate is a partial edit; nil fields are left as stored.
type InvoiceUpdate struct {
	CustomerId         *int              `json:"customer_id"`
	ClientName         *string           `json:"client_name" validate:"omitempty,max=150"`
	ClientEmail        *string           `json:"client_email" validate:"omitempty,email"`
	ClientCountry      *string           `json:"client_country" validate:"omitempty,max=60"`
	ClientState        *string           `json:"client_state" validate:"omitempty,max=60"`
	PlaceOfSupply      *string           `json:"place_of_supply" validate:"omitempty,max=60"`
	ServiceDescription *string           `json:"service_description" validate:"omitempty,max=255"`
	EngagementType     *string           `json:"engagement_type" validate:"omitempty,max=50"`
	PeriodMonth        *int              `json:"period_month" validate:"omitempty,min=1,max=12"`
	PeriodYear         *int              `json:"period_year" validate:"omitempty,min=2000,max=2100"`
	InvoiceDate        *time.Time        `json:"invoice_date"`
	DueDate            *time.Time        `json:"due_date"`
	Currency           *string           `json:"currency"`
	ExchangeRate       *decimal.Decimal  `json:"exchange_rate"`
	BaseAmount         *decimal.Decimal  `json:"base_amount"`
	Items              *[]NewInvoiceItem `json:"items"`
	GstPercentage      *decimal.Decimal  `json:"gst_percentage"`
	TdsPercentage      *decimal.Decimal  `json:"tds_percentage"`
	TcsPercentage      *decimal.Decimal  `json:"tcs_percentage"`
	RemittanceCharges  *decimal.Decimal  `json:"remittance_charges"`
	Status             *InvoiceStatus    `json:"status"`
	ReceivedAmount     *decimal.Decimal  `json:"received_amount"`
	Notes              *string           `json:"notes"`
}

func (input *InvoiceUpdate) validate() error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.Currency != nil {
		c := currency.Normalize(*input.Currency)
		if !currency.IsSupported(c) {
			return utils.NewValidationError("currency %s is not supported", c)
		}
		input.Currency = &c
	}
	for field, v := range map[string]*decimal.Decimal{
		"gst_percentage": input.GstPercentage,
		"tds_percentage": input.TdsPercentage,
		"tcs_percentage": input.TcsPercentage,
	} {
		if v == nil {
			continue
		}
		if err := validatePercentage(field, *v); err != nil {
			return err
		}
	}
	for field, v := range map[string]*decimal.Decimal{
		"remittance_charges": input.RemittanceCharges,
		"exchange_rate":      input.ExchangeRate,
		"base_amount":        input.BaseAmount,
		"received_amount":    input.ReceivedAmount,
	} {
		if v == nil {
			continue
		}
		if err := validateNonNegative(field, *v); err != nil {
			return err
		}
	}
	if input.Items != nil {
		if len(*input.Items) == 0 {
			return utils.NewValidationError("an invoice needs at least one item")
		}
		for i, item := range *input.Items {
			if err := utils.ValidateStruct(&item); err != nil {
				return err
			}
			if item.Quantity.IsNegative() || item.Rate.IsNegative() {
				return utils.NewValidationError("item %d: quantity and rate cannot be negative", i+1)
			}
		}
	}
	return nil
}

// amountFields are the inputs whose edit invalidates a prior payment. The exchange rate is not one of
// them: it only moves the INR equivalent, never the receivable.
type amountFields struct {
	base, gst, tds, tcs, remittance, receivable decimal.Decimal
	supplyLocation                              string
}

func amountFieldsOf(inv *Invoice) amountFields {
	supply := normalizeState(inv.PlaceOfSupply)
	if supply == "" {
		supply = normalizeState(inv.ClientState)
	}
	return amountFields{
		base:           inv.BaseAmount,
		gst:            inv.GstPercentage,
		tds:            inv.TdsPercentage,
		tcs:            inv.TcsPercentage,
		remittance:     inv.RemittanceCharges,
		receivable:     inv.ReceivableAmount,
		supplyLocation: supply,
	}
}

func (a amountFields) equal(b amountFields) bool {
	return a.base.Equal(b.base) && a.gst.Equal(b.gst) && a.tds.Equal(b.tds) && a.tcs.Equal(b.tcs) &&
		a.remittance.Equal(b.remittance) && a.receivable.Equal(b.receivable) &&
		a.supplyLocation == b.supplyLocation
}

func sameItems(stored []InvoiceItem, next []InvoiceItem) bool {
	if len(stored) != len(next) {
		return false
	}
	for i := range stored {
		if stored[i].Description != next[i].Description ||
			!stored[i].Quantity.Equal(next[i].Quantity) ||
			!stored[i].Rate.Equal(next[i].Rate) {
			return false
		}
	}
	return true
}

// UpdateInvoice applies a partial edit. Amount-affecting edits recompute every derived field before
// the lifecycle decides the status; a Paid invoice whose amounts change falls back to Unpaid.
func UpdateInvoice(ctx context.Context, id int, input *InvoiceUpdate) (*Invoice, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "UpdateInvoice")
	defer span.End()
	span.SetAttributes(attribute.String("business_id", businessId), attribute.Int("invoice_id", id))

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	inv, err := lockInvoice(tx, businessId, id)
	if err != nil {
		return nil, err
	}
	prior := inv.Status
	before := amountFieldsOf(inv)

	if err := applyCustomerChange(tx, inv, input); err != nil {
		return nil, err
	}
	applyDescriptiveFields(inv, input)
	if inv.DueDate.Before(inv.InvoiceDate) {
		return nil, utils.NewValidationError("due date cannot be before invoice date")
	}

	replaceItems, err := applyAmountFields(inv, input)
	if err != nil {
		return nil, err
	}

	inv.recompute(ctx)
	amountsChanged := !before.equal(amountFieldsOf(inv)) || replaceItems

	change := StatusChange{
		Current:        prior,
		Requested:      input.Status,
		AmountsChanged: amountsChanged,
		Received:       inv.ReceivedAmount,
		Receivable:     inv.ReceivableAmount,
	}
	if input.ReceivedAmount != nil {
		change.PaymentSupplied = true
		change.Received = *input.ReceivedAmount
	}
	decision, err := ResolveStatus(change)
	if err != nil {
		return nil, err
	}
	inv.applyStatus(decision)

	if err := tx.Omit(clause.Associations).Save(inv).Error; err != nil {
		return nil, err
	}
	if replaceItems {
		if err := saveInvoiceItems(tx, inv); err != nil {
			return nil, err
		}
	}

	reason := StatusReasonEdited
	if decision.Demoted {
		reason = StatusReasonAmountsEdited
	}
	if err := createStatusHistory(tx, inv, prior, reason); err != nil {
		return nil, err
	}
	if err := SyncRevenueForInvoice(tx, inv); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	reconcileInvoiceState(ctx, inv)
	enqueueDocument(ctx, inv, "invoice.updated")
	return inv, nil
}

func applyCustomerChange(tx *gorm.DB, inv *Invoice, input *InvoiceUpdate) error {
	if input.CustomerId != nil && *input.CustomerId > 0 && *input.CustomerId != inv.CustomerId {
		inv.ClientName = ""
		inv.ClientEmail = ""
		inv.ClientCountry = ""
		inv.ClientState = ""
		return resolveInvoiceCustomer(tx, inv.BusinessId, &NewInvoice{CustomerId: *input.CustomerId}, inv)
	}
	if input.ClientName == nil {
		return nil
	}
	name := collapseSpaces(*input.ClientName)
	if name == "" {
		return utils.NewValidationError("client name cannot be blank")
	}
	if strings.EqualFold(name, inv.ClientName) {
		return nil
	}
	customer, _, err := findOrCreateCustomer(tx, inv.BusinessId, Customer{
		Name:    name,
		Email:   utils.DereferencePtr(input.ClientEmail, inv.ClientEmail),
		Country: utils.DereferencePtr(input.ClientCountry, inv.ClientCountry),
		State:   utils.DereferencePtr(input.ClientState, inv.ClientState),
	})
	if err != nil {
		return err
	}
	inv.CustomerId = customer.ID
	inv.ClientName = customer.Name
	return nil
}

func applyDescriptiveFields(inv *Invoice, input *InvoiceUpdate) {
	if input.ClientEmail != nil {
		inv.ClientEmail = strings.TrimSpace(*input.ClientEmail)
	}
	if input.ClientCountry != nil {
		inv.ClientCountry = strings.TrimSpace(*input.ClientCountry)
	}
	if input.ClientState != nil {
		inv.ClientState = strings.TrimSpace(*input.ClientState)
	}
	if input.PlaceOfSupply != nil {
		inv.PlaceOfSupply = strings.TrimSpace(*input.PlaceOfSupply)
	}
	if input.ServiceDescription != nil && strings.TrimSpace(*input.ServiceDescription) != "" {
		inv.ServiceDescription = strings.TrimSpace(*input.ServiceDescription)
		inv.ServiceCategory = ClassifyService(inv.ServiceDescription)
	}
	if input.EngagementType != nil {
		inv.EngagementType = strings.TrimSpace(*input.EngagementType)
	}
	if input.PeriodMonth != nil {
		inv.PeriodMonth = *input.PeriodMonth
	}
	if input.PeriodYear != nil {
		inv.PeriodYear = *input.PeriodYear
	}
	if input.InvoiceDate != nil {
		inv.InvoiceDate = dateOnly(*input.InvoiceDate)
		if input.DueDate == nil {
			inv.DueDate = defaultDueDate(inv.InvoiceDate)
		}
	}
	if input.DueDate != nil {
		inv.DueDate = dateOnly(*input.DueDate)
	}
	if input.Notes != nil {
		inv.Notes = *input.Notes
	}
}

// applyAmountFields copies the amount inputs and reports whether the item rows must be rewritten.
func applyAmountFields(inv *Invoice, input *InvoiceUpdate) (bool, error) {
	replaceItems := false
	switch {
	case input.Items != nil:
		items, total := mapInvoiceItems(*input.Items)
		replaceItems = !sameItems(inv.Items, items)
		inv.Items = items
		inv.BaseAmount = roundMoney(total)
	case input.BaseAmount != nil:
		base := roundMoney(*input.BaseAmount)
		if !base.Equal(inv.BaseAmount) {
			if len(inv.Items) > 1 {
				return false, utils.NewValidationError("base amount is the sum of %d items; edit the items instead", len(inv.Items))
			}
			inv.BaseAmount = base
			inv.Items = []InvoiceItem{{
				Description: inv.ServiceDescription,
				Quantity:    decimal.NewFromInt(1),
				Rate:        base,
				Amount:      base,
			}}
			replaceItems = true
		}
	}
	if !inv.BaseAmount.IsPositive() {
		return false, utils.NewValidationError("base amount must be greater than 0")
	}

	if input.GstPercentage != nil {
		inv.GstPercentage = *input.GstPercentage
	}
	if input.TdsPercentage != nil {
		inv.TdsPercentage = *input.TdsPercentage
	}
	if input.TcsPercentage != nil {
		inv.TcsPercentage = *input.TcsPercentage
	}
	if input.RemittanceCharges != nil {
		inv.RemittanceCharges = roundMoney(*input.RemittanceCharges)
	}
	if input.Currency != nil && *input.Currency != inv.Currency {
		inv.Currency = *input.Currency
		// a new currency without an explicit rate is looked up again
		inv.ExchangeRate = decimal.Zero
	}
	if input.ExchangeRate != nil {
		inv.ExchangeRate = *input.ExchangeRate
	}
	return replaceItems, nil
}

func saveInvoiceItems(tx *gorm.DB, inv *Invoice) error {
	if err := tx.Where("invoice_id = ?", inv.ID).Delete(&InvoiceItem{}).Error; err != nil {
		return err
	}
	for i := range inv.Items {
		inv.Items[i].ID = 0
		inv.Items[i].InvoiceId = inv.ID
	}
	return tx.Create(&inv.Items).Error
}

// VoidInvoice cancels an invoice with nothing received. It can be reopened later as Unpaid.
func VoidInvoice(ctx context.Context, id int, reason string) (*Invoice, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	inv, err := lockInvoice(tx, businessId, id)
	if err != nil {
		return nil, err
	}
	if inv.Status == InvoiceStatusVoid {
		return nil, utils.NewValidationError("invoice %s is already void", inv.InvoiceNumber)
	}
	prior := inv.Status
	target := InvoiceStatusVoid
	decision, err := ResolveStatus(StatusChange{
		Current:    prior,
		Requested:  &target,
		Received:   inv.ReceivedAmount,
		Receivable: inv.ReceivableAmount,
	})
	if err != nil {
		return nil, err
	}
	inv.applyStatus(decision)
	if err := saveInvoiceStatus(tx, inv); err != nil {
		return nil, err
	}

	historyReason := StatusReasonVoided
	if r := strings.TrimSpace(reason); r != "" {
		historyReason += ": " + r
	}
	if len(historyReason) > 255 {
		historyReason = historyReason[:255]
	}
	if err := createStatusHistory(tx, inv, prior, historyReason); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	reconcileInvoiceState(ctx, inv)
	enqueueDocument(ctx, inv, "invoice.voided")
	return inv, nil
}
