package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/currency"
	"github.com/URVIL2512/Finance-Suite-sub001/documents"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Invoice struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	BusinessId         string          `gorm:"size:64;not null;uniqueIndex:idx_invoices_business_number,priority:1;index:idx_invoices_business_date,priority:1" json:"business_id"`
	InvoiceNumber      string          `gorm:"size:50;not null;uniqueIndex:idx_invoices_business_number,priority:2" json:"invoice_number"`
	SequenceNo         int             `gorm:"not null;default:0" json:"sequence_no"`
	InvoiceYear        int             `gorm:"index;not null" json:"invoice_year"`
	CustomerId         int             `gorm:"index" json:"customer_id"`
	ClientName         string          `gorm:"size:150;not null" json:"client_name"`
	ClientEmail        string          `gorm:"size:100" json:"client_email"`
	ClientCountry      string          `gorm:"size:60" json:"client_country"`
	ClientState        string          `gorm:"size:60" json:"client_state"`
	PlaceOfSupply      string          `gorm:"size:60" json:"place_of_supply"`
	ServiceDescription string          `gorm:"size:255;not null" json:"service_description"`
	ServiceCategory    ServiceCategory `gorm:"size:50;not null" json:"service_category"`
	EngagementType     string          `gorm:"size:50" json:"engagement_type"`
	PeriodMonth        int             `gorm:"default:0" json:"period_month"`
	PeriodYear         int             `gorm:"default:0" json:"period_year"`
	InvoiceDate        time.Time       `gorm:"not null;index:idx_invoices_business_date,priority:2" json:"invoice_date"`
	DueDate            time.Time       `gorm:"not null" json:"due_date"`
	Currency           string          `gorm:"size:3;not null" json:"currency"`
	ExchangeRate       decimal.Decimal `gorm:"type:decimal(20,6);default:1" json:"exchange_rate"`
	InrEquivalent      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inr_equivalent"`
	BaseAmount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_amount"`
	GstPercentage      decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"gst_percentage"`
	GstType            GstType         `gorm:"size:10;not null" json:"gst_type"`
	Cgst               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cgst"`
	Sgst               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sgst"`
	Igst               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"igst"`
	TotalGst           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_gst"`
	TdsPercentage      decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"tds_percentage"`
	TdsAmount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tds_amount"`
	TcsPercentage      decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"tcs_percentage"`
	TcsAmount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tcs_amount"`
	RemittanceCharges  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"remittance_charges"`
	SubTotal           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sub_total"`
	InvoiceTotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"invoice_total"`
	ReceivableAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"receivable_amount"`
	Status             InvoiceStatus   `gorm:"size:20;not null;index" json:"status"`
	PaidAmount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	ReceivedAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"received_amount"`
	RevenueId          *int            `gorm:"index" json:"revenue_id"`
	SourceRevenueId    *int            `gorm:"index" json:"source_revenue_id"`
	ImportBatchId      string          `gorm:"size:36;index" json:"import_batch_id,omitempty"`
	Notes              string          `gorm:"type:text" json:"notes"`
	Items              []InvoiceItem   `gorm:"foreignKey:InvoiceId" json:"items"`
	Payments           []InvoicePayment `gorm:"foreignKey:InvoiceId" json:"payments,omitempty"`
	Revenue            *Revenue        `gorm:"-" json:"revenue,omitempty"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	InvoiceId   int             `gorm:"index;not null" json:"invoice_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);default:1" json:"quantity"`
	Rate        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvoiceItem struct {
	Description string          `json:"description" binding:"required" validate:"required,max=255"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

type NewInvoice struct {
	CustomerId         int              `json:"customer_id"`
	ClientName         string           `json:"client_name" validate:"required_without=CustomerId,max=150"`
	ClientEmail        string           `json:"client_email" validate:"omitempty,email"`
	ClientCountry      string           `json:"client_country" validate:"max=60"`
	ClientState        string           `json:"client_state" validate:"max=60"`
	PlaceOfSupply      string           `json:"place_of_supply" validate:"max=60"`
	ServiceDescription string           `json:"service_description" validate:"max=255"`
	EngagementType     string           `json:"engagement_type" validate:"max=50"`
	PeriodMonth        int              `json:"period_month" validate:"min=0,max=12"`
	PeriodYear         int              `json:"period_year" validate:"omitempty,min=2000,max=2100"`
	InvoiceNumber      string           `json:"invoice_number" validate:"max=50"`
	InvoiceDate        time.Time        `json:"invoice_date" binding:"required" validate:"required"`
	DueDate            *time.Time       `json:"due_date"`
	Currency           string           `json:"currency" validate:"omitempty,len=3"`
	ExchangeRate       decimal.Decimal  `json:"exchange_rate"`
	BaseAmount         decimal.Decimal  `json:"base_amount"`
	Items              []NewInvoiceItem `json:"items" validate:"dive"`
	GstPercentage      decimal.Decimal  `json:"gst_percentage"`
	TdsPercentage      decimal.Decimal  `json:"tds_percentage"`
	TcsPercentage      decimal.Decimal  `json:"tcs_percentage"`
	RemittanceCharges  decimal.Decimal  `json:"remittance_charges"`
	Status             *InvoiceStatus   `json:"status"`
	ReceivedAmount     *decimal.Decimal `json:"received_amount"`
	Notes              string           `json:"notes"`
	SourceRevenueId    *int             `json:"source_revenue_id"`

	importBatchId string
	statusReason  string
	// paidInFull lets a Paid status without a received amount stand for the full receivable
	paidInFull bool
}

type InvoiceFilter struct {
	Status     *InvoiceStatus
	ClientName *string
	FromDate   *time.Time
	ToDate     *time.Time
	Year       *int
	Limit      int
	Offset     int
}

func validatePercentage(field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(decimalOneHundred) {
		return utils.NewValidationError("%s must be between 0 and 100", field)
	}
	return nil
}

func validateNonNegative(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return utils.NewValidationError("%s cannot be negative", field)
	}
	return nil
}

func (input *NewInvoice) validate() error {
	input.ClientName = collapseSpaces(input.ClientName)
	input.ServiceDescription = strings.TrimSpace(input.ServiceDescription)
	input.Currency = currency.Normalize(input.Currency)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.Currency != "" && !currency.IsSupported(input.Currency) {
		return utils.NewValidationError("currency %s is not supported", input.Currency)
	}
	for field, v := range map[string]decimal.Decimal{
		"gst_percentage": input.GstPercentage,
		"tds_percentage": input.TdsPercentage,
		"tcs_percentage": input.TcsPercentage,
	} {
		if err := validatePercentage(field, v); err != nil {
			return err
		}
	}
	for field, v := range map[string]decimal.Decimal{
		"remittance_charges": input.RemittanceCharges,
		"exchange_rate":      input.ExchangeRate,
		"base_amount":        input.BaseAmount,
	} {
		if err := validateNonNegative(field, v); err != nil {
			return err
		}
	}
	for i, item := range input.Items {
		if item.Quantity.IsNegative() || item.Rate.IsNegative() {
			return utils.NewValidationError("item %d: quantity and rate cannot be negative", i+1)
		}
	}
	if input.DueDate != nil && input.DueDate.Before(input.InvoiceDate) {
		return utils.NewValidationError("due date cannot be before invoice date")
	}
	return nil
}

// mapInvoiceItems builds item rows and their sum. A zero quantity counts as 1.
func mapInvoiceItems(items []NewInvoiceItem) ([]InvoiceItem, decimal.Decimal) {
	total := decimal.Zero
	var out []InvoiceItem
	for _, item := range items {
		qty := item.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		amount := roundMoney(qty.Mul(item.Rate))
		out = append(out, InvoiceItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    qty,
			Rate:        item.Rate,
			Amount:      amount,
		})
		total = total.Add(amount)
	}
	return out, total
}

// recompute derives every tax and amount field plus the home-currency equivalent.
// A zero ExchangeRate on a foreign-currency invoice is looked up.
func (inv *Invoice) recompute(ctx context.Context) {
	home := config.HomeCurrency()
	if inv.Currency == "" {
		inv.Currency = home
	}
	taxes := CalculateTaxes(TaxInput{
		BaseAmount:    inv.BaseAmount,
		GstPercentage: inv.GstPercentage,
		TdsPercentage: inv.TdsPercentage,
		TcsPercentage: inv.TcsPercentage,
		ClientCountry: inv.ClientCountry,
		Currency:      inv.Currency,
		PlaceOfSupply: inv.PlaceOfSupply,
		ClientState:   inv.ClientState,
		HomeState:     config.HomeState(),
	})
	inv.Cgst = taxes.Cgst
	inv.Sgst = taxes.Sgst
	inv.Igst = taxes.Igst
	inv.TotalGst = taxes.TotalGst
	inv.GstType = taxes.GstType
	inv.TdsAmount = taxes.TdsAmount
	inv.TcsAmount = taxes.TcsAmount
	if taxes.IsForeign {
		inv.GstPercentage = decimal.Zero
		inv.TdsPercentage = decimal.Zero
		inv.TcsPercentage = decimal.Zero
	}

	amounts := ComposeAmounts(inv.BaseAmount, inv.TotalGst, inv.TdsAmount, inv.TcsAmount, inv.RemittanceCharges)
	inv.SubTotal = amounts.SubTotal
	inv.InvoiceTotal = amounts.InvoiceTotal
	inv.ReceivableAmount = amounts.ReceivableAmount

	if inv.Currency == home {
		inv.ExchangeRate = decimal.NewFromInt(1)
	} else if !inv.ExchangeRate.IsPositive() {
		inv.ExchangeRate = getRateConverter().Rate(ctx, inv.Currency, home)
	}
	inv.InrEquivalent = roundMoney(inv.ReceivableAmount.Mul(inv.ExchangeRate))
}

func (inv *Invoice) applyStatus(d StatusDecision) {
	inv.Status = d.Status
	inv.ReceivedAmount = roundMoney(d.Received)
	inv.PaidAmount = inv.ReceivedAmount
}

func defaultDueDate(invoiceDate time.Time) time.Time {
	return invoiceDate.AddDate(0, 0, config.PaymentTermsDays())
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func correlationId(ctx context.Context) string {
	id, _ := utils.GetCorrelationIdFromContext(ctx)
	return id
}

// CreateInvoice validates, computes and stores a new invoice, then syncs its revenue record.
func CreateInvoice(ctx context.Context, input *NewInvoice) (*Invoice, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "CreateInvoice")
	defer span.End()
	span.SetAttributes(attribute.String("business_id", businessId))

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	inv, err := createInvoiceTx(ctx, tx, businessId, input, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	reconcileInvoiceState(ctx, inv)
	enqueueDocument(ctx, inv, "invoice.created")
	return inv, nil
}

// createInvoiceTx does the work of CreateInvoice inside tx. numbers, when set, allocates
// invoice numbers from a batch counter instead of the stored counter row.
func createInvoiceTx(ctx context.Context, tx *gorm.DB, businessId string, input *NewInvoice, numbers *batchNumbering) (*Invoice, error) {
	inv := Invoice{
		BusinessId:         businessId,
		ClientName:         input.ClientName,
		ClientEmail:        strings.TrimSpace(input.ClientEmail),
		ClientCountry:      strings.TrimSpace(input.ClientCountry),
		ClientState:        strings.TrimSpace(input.ClientState),
		PlaceOfSupply:      strings.TrimSpace(input.PlaceOfSupply),
		ServiceDescription: input.ServiceDescription,
		EngagementType:     strings.TrimSpace(input.EngagementType),
		PeriodMonth:        input.PeriodMonth,
		PeriodYear:         input.PeriodYear,
		InvoiceDate:        dateOnly(input.InvoiceDate),
		Currency:           input.Currency,
		ExchangeRate:       input.ExchangeRate,
		BaseAmount:         roundMoney(input.BaseAmount),
		GstPercentage:      input.GstPercentage,
		TdsPercentage:      input.TdsPercentage,
		TcsPercentage:      input.TcsPercentage,
		RemittanceCharges:  roundMoney(input.RemittanceCharges),
		SourceRevenueId:    input.SourceRevenueId,
		ImportBatchId:      input.importBatchId,
		Notes:              input.Notes,
	}
	inv.InvoiceYear = inv.InvoiceDate.Year()
	if input.DueDate != nil {
		inv.DueDate = dateOnly(*input.DueDate)
	} else {
		inv.DueDate = defaultDueDate(inv.InvoiceDate)
	}
	if inv.PeriodMonth == 0 {
		inv.PeriodMonth = int(inv.InvoiceDate.Month())
	}
	if inv.PeriodYear == 0 {
		inv.PeriodYear = inv.InvoiceDate.Year()
	}

	if err := resolveInvoiceCustomer(tx, businessId, input, &inv); err != nil {
		return nil, err
	}
	if inv.ServiceDescription == "" && len(input.Items) > 0 {
		inv.ServiceDescription = strings.TrimSpace(input.Items[0].Description)
	}
	if inv.ServiceDescription == "" {
		return nil, utils.NewValidationError("service description is required")
	}
	inv.ServiceCategory = ClassifyService(inv.ServiceDescription)

	if len(input.Items) > 0 {
		items, total := mapInvoiceItems(input.Items)
		inv.Items = items
		inv.BaseAmount = roundMoney(total)
	} else {
		inv.Items = []InvoiceItem{{
			Description: inv.ServiceDescription,
			Quantity:    decimal.NewFromInt(1),
			Rate:        inv.BaseAmount,
			Amount:      inv.BaseAmount,
		}}
	}
	if !inv.BaseAmount.IsPositive() {
		return nil, utils.NewValidationError("base amount must be greater than 0")
	}

	if input.SourceRevenueId != nil {
		if err := claimSourceRevenue(tx, businessId, *input.SourceRevenueId); err != nil {
			return nil, err
		}
	}

	inv.recompute(ctx)

	change := StatusChange{
		Current:    InvoiceStatusUnpaid,
		Requested:  input.Status,
		Received:   decimal.Zero,
		Receivable: inv.ReceivableAmount,
	}
	if input.ReceivedAmount != nil {
		change.PaymentSupplied = true
		change.Received = *input.ReceivedAmount
	} else if input.paidInFull && input.Status != nil && *input.Status == InvoiceStatusPaid {
		change.PaymentSupplied = true
		change.Received = inv.ReceivableAmount
	}
	decision, err := ResolveStatus(change)
	if err != nil {
		return nil, err
	}
	inv.applyStatus(decision)

	if err := assignInvoiceNumber(tx, &inv, input.InvoiceNumber, numbers); err != nil {
		return nil, err
	}

	if err := tx.Omit("Payments").Create(&inv).Error; err != nil {
		return nil, utils.TranslateDuplicate(err, "invoice number "+inv.InvoiceNumber+" already exists")
	}

	reason := input.statusReason
	if reason == "" {
		reason = StatusReasonCreated
	}
	if err := createStatusHistory(tx, &inv, "", reason); err != nil {
		return nil, err
	}
	if err := SyncRevenueForInvoice(tx, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

func resolveInvoiceCustomer(tx *gorm.DB, businessId string, input *NewInvoice, inv *Invoice) error {
	if input.CustomerId > 0 {
		customer, err := utils.FetchModelTx[Customer](tx, businessId, input.CustomerId)
		if err != nil {
			if utils.IsNotFound(err) {
				return utils.NewValidationError("customer not found")
			}
			return err
		}
		inv.CustomerId = customer.ID
		if inv.ClientName == "" {
			inv.ClientName = customer.Name
		}
		if inv.ClientEmail == "" {
			inv.ClientEmail = customer.Email
		}
		if inv.ClientCountry == "" {
			inv.ClientCountry = customer.Country
		}
		if inv.ClientState == "" {
			inv.ClientState = customer.State
		}
		return nil
	}
	customer, _, err := findOrCreateCustomer(tx, businessId, Customer{
		Name:    inv.ClientName,
		Email:   inv.ClientEmail,
		Country: inv.ClientCountry,
		State:   inv.ClientState,
	})
	if err != nil {
		return err
	}
	inv.CustomerId = customer.ID
	inv.ClientName = customer.Name
	return nil
}

// reconcileInvoiceState re-reads a committed invoice. A stored status or received amount that differs
// from what was written is forced back, unless a later edit has already moved the row on.
func reconcileInvoiceState(ctx context.Context, inv *Invoice) {
	db := config.GetDB().WithContext(ctx)
	var stored Invoice
	err := db.Select("id", "status", "received_amount", "updated_at").
		Where("business_id = ?", inv.BusinessId).First(&stored, inv.ID).Error
	if err != nil {
		config.LogError(config.GetLogger(), "Invoice", "reconcileInvoiceState", "re-read invoice", inv.ID, err)
		return
	}
	if stored.Status == inv.Status && stored.ReceivedAmount.Equal(inv.ReceivedAmount) {
		return
	}
	data := map[string]interface{}{
		"invoice_id":      inv.ID,
		"expected":        inv.Status,
		"stored":          stored.Status,
		"expected_amount": inv.ReceivedAmount.String(),
		"stored_amount":   stored.ReceivedAmount.String(),
	}
	if stored.UpdatedAt.After(inv.UpdatedAt) {
		config.LogWarn(config.GetLogger(), "Invoice", "reconcileInvoiceState", "invoice moved on by a later edit", data, nil)
		return
	}
	config.LogWarn(config.GetLogger(), "Invoice", "reconcileInvoiceState", StatusReasonConsistency, data, nil)
	if err := saveInvoiceStatus(db, inv); err != nil {
		config.LogError(config.GetLogger(), "Invoice", "reconcileInvoiceState", "force status", inv.ID, err)
	}
}

func GetInvoice(ctx context.Context, id int) (*Invoice, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	db := config.GetDB().WithContext(ctx)
	var inv Invoice
	err = db.Preload("Items").Preload("Payments", func(q *gorm.DB) *gorm.DB {
		return q.Order("payment_date, id")
	}).Where("business_id = ?", businessId).First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if err := attachRevenues(db, businessId, []*Invoice{&inv}); err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListInvoices returns invoices newest first with items and the linked revenue populated.
func ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*Invoice, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	db := config.GetDB().WithContext(ctx)
	q := db.Model(&Invoice{}).Where("business_id = ?", businessId)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.ClientName != nil && strings.TrimSpace(*filter.ClientName) != "" {
		q = q.Where("LOWER(client_name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(*filter.ClientName))+"%")
	}
	if filter.FromDate != nil {
		q = q.Where("invoice_date >= ?", dateOnly(*filter.FromDate))
	}
	if filter.ToDate != nil {
		q = q.Where("invoice_date < ?", dateOnly(*filter.ToDate).AddDate(0, 0, 1))
	}
	if filter.Year != nil {
		q = q.Where("invoice_year = ?", *filter.Year)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	limit = min(limit, 500)

	var results []*Invoice
	err = q.Preload("Items").
		Order("invoice_date DESC").Order("id DESC").
		Limit(limit).Offset(max(filter.Offset, 0)).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	if err := attachRevenues(db, businessId, results); err != nil {
		return nil, err
	}
	return results, nil
}

func attachRevenues(db *gorm.DB, businessId string, invoices []*Invoice) error {
	var ids []int
	for _, inv := range invoices {
		if inv.RevenueId != nil {
			ids = append(ids, *inv.RevenueId)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	var revenues []*Revenue
	if err := db.Where("business_id = ? AND id IN ?", businessId, utils.UniqueSlice(ids)).Find(&revenues).Error; err != nil {
		return err
	}
	byId := make(map[int]*Revenue, len(revenues))
	for _, r := range revenues {
		byId[r.ID] = r
	}
	for _, inv := range invoices {
		if inv.RevenueId != nil {
			inv.Revenue = byId[*inv.RevenueId]
		}
	}
	return nil
}

func lockInvoice(tx *gorm.DB, businessId string, id int) (*Invoice, error) {
	var inv Invoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		Where("business_id = ?", businessId).
		First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// Snapshot copies the fields the document pipeline needs.
func (inv *Invoice) Snapshot(event string) documents.InvoiceSnapshot {
	s := documents.InvoiceSnapshot{
		BusinessId:       inv.BusinessId,
		InvoiceId:        inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		Event:            event,
		CustomerName:     inv.ClientName,
		CustomerEmail:    inv.ClientEmail,
		InvoiceDate:      inv.InvoiceDate,
		DueDate:          inv.DueDate,
		Currency:         inv.Currency,
		ExchangeRate:     inv.ExchangeRate,
		Status:           string(inv.Status),
		GstType:          string(inv.GstType),
		BaseAmount:       inv.BaseAmount,
		Cgst:             inv.Cgst,
		Sgst:             inv.Sgst,
		Igst:             inv.Igst,
		TdsAmount:        inv.TdsAmount,
		TcsAmount:        inv.TcsAmount,
		Remittance:       inv.RemittanceCharges,
		InvoiceTotal:     inv.InvoiceTotal,
		ReceivableAmount: inv.ReceivableAmount,
		ReceivedAmount:   inv.ReceivedAmount,
		InrEquivalent:    inv.InrEquivalent,
	}
	for _, item := range inv.Items {
		s.Items = append(s.Items, documents.SnapshotItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      item.Amount,
		})
	}
	return s
}
