package models

import (
	"context"
	"errors"
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

// Revenue is a ledger entry in home currency. Entries are entered by hand or mirrored from Paid invoices.
type Revenue struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	BusinessId         string          `gorm:"size:64;not null;index:idx_revenues_business_date,priority:1" json:"business_id"`
	InvoiceId          *int            `gorm:"index" json:"invoice_id"`
	InvoiceGenerated   *bool           `gorm:"not null;default:false" json:"invoice_generated"`
	CustomerId         int             `gorm:"index" json:"customer_id"`
	ClientName         string          `gorm:"size:150;not null" json:"client_name"`
	ServiceDescription string          `gorm:"size:255;not null" json:"service_description"`
	ServiceCategory    ServiceCategory `gorm:"size:50;not null" json:"service_category"`
	EngagementType     string          `gorm:"size:50" json:"engagement_type"`
	RevenueDate        time.Time       `gorm:"not null;index:idx_revenues_business_date,priority:2" json:"revenue_date"`
	Currency           string          `gorm:"size:3;not null" json:"currency"`
	OriginalCurrency   string          `gorm:"size:3" json:"original_currency"`
	ExchangeRate       decimal.Decimal `gorm:"type:decimal(20,6);default:1" json:"exchange_rate"`
	BaseAmount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_amount"`
	GstPercentage      decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"gst_percentage"`
	GstType            GstType         `gorm:"size:10" json:"gst_type"`
	Cgst               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cgst"`
	Sgst               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sgst"`
	Igst               decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"igst"`
	TotalGst           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_gst"`
	TdsPercentage      decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"tds_percentage"`
	TdsAmount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tds_amount"`
	TcsPercentage      decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"tcs_percentage"`
	TcsAmount          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tcs_amount"`
	RemittanceCharges  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"remittance_charges"`
	InvoiceTotal       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"invoice_total"`
	ReceivableAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"receivable_amount"`
	ReceivedAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"received_amount"`
	Notes              string          `gorm:"type:text" json:"notes"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewRevenue struct {
	CustomerId         int              `json:"customer_id"`
	ClientName         string           `json:"client_name" validate:"required_without=CustomerId,max=150"`
	ServiceDescription string           `json:"service_description" binding:"required" validate:"required,max=255"`
	EngagementType     string           `json:"engagement_type" validate:"max=50"`
	RevenueDate        time.Time        `json:"revenue_date" binding:"required" validate:"required"`
	Currency           string           `json:"currency" validate:"omitempty,len=3"`
	ExchangeRate       decimal.Decimal  `json:"exchange_rate"`
	BaseAmount         decimal.Decimal  `json:"base_amount"`
	GstPercentage      decimal.Decimal  `json:"gst_percentage"`
	TdsPercentage      decimal.Decimal  `json:"tds_percentage"`
	TcsPercentage      decimal.Decimal  `json:"tcs_percentage"`
	RemittanceCharges  decimal.Decimal  `json:"remittance_charges"`
	ReceivedAmount     *decimal.Decimal `json:"received_amount"`
	Notes              string           `json:"notes"`
}

type RevenueFilter struct {
	InvoiceGenerated *bool
	Category         *ServiceCategory
	Year             *int
	Limit            int
	Offset           int
}

func (input *NewRevenue) validate() error {
	input.ClientName = collapseSpaces(input.ClientName)
	input.ServiceDescription = strings.TrimSpace(input.ServiceDescription)
	input.Currency = currency.Normalize(input.Currency)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.Currency != "" && !currency.IsSupported(input.Currency) {
		return utils.NewValidationError("currency %s is not supported", input.Currency)
	}
	if !input.BaseAmount.IsPositive() {
		return utils.NewValidationError("base amount must be greater than 0")
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
	if err := validateNonNegative("remittance_charges", input.RemittanceCharges); err != nil {
		return err
	}
	if err := validateNonNegative("exchange_rate", input.ExchangeRate); err != nil {
		return err
	}
	if input.ReceivedAmount != nil {
		return validateNonNegative("received_amount", *input.ReceivedAmount)
	}
	return nil
}

// fillFromInvoice copies the amounts of inv converted to home currency.
func (rev *Revenue) fillFromInvoice(inv *Invoice) {
	rate := inv.ExchangeRate
	if !rate.IsPositive() {
		rate = decimal.NewFromInt(1)
	}
	home := func(d decimal.Decimal) decimal.Decimal { return roundMoney(d.Mul(rate)) }

	rev.BusinessId = inv.BusinessId
	rev.CustomerId = inv.CustomerId
	rev.ClientName = inv.ClientName
	rev.ServiceDescription = inv.ServiceDescription
	rev.ServiceCategory = ClassifyService(inv.ServiceDescription)
	rev.EngagementType = inv.EngagementType
	rev.RevenueDate = inv.InvoiceDate
	rev.Currency = config.HomeCurrency()
	rev.OriginalCurrency = inv.Currency
	rev.ExchangeRate = rate
	rev.GstPercentage = inv.GstPercentage
	rev.GstType = inv.GstType
	rev.TdsPercentage = inv.TdsPercentage
	rev.TcsPercentage = inv.TcsPercentage
	rev.BaseAmount = home(inv.BaseAmount)
	rev.Cgst = home(inv.Cgst)
	rev.Sgst = home(inv.Sgst)
	rev.Igst = home(inv.Igst)
	rev.TotalGst = rev.Cgst.Add(rev.Sgst).Add(rev.Igst)
	rev.TdsAmount = home(inv.TdsAmount)
	rev.TcsAmount = home(inv.TcsAmount)
	rev.RemittanceCharges = home(inv.RemittanceCharges)
	rev.InvoiceTotal = home(inv.InvoiceTotal)
	if inv.InrEquivalent.IsPositive() {
		rev.ReceivableAmount = roundMoney(inv.InrEquivalent)
	} else {
		rev.ReceivableAmount = home(inv.ReceivableAmount)
	}
	rev.ReceivedAmount = home(inv.ReceivedAmount)
}

func CreateRevenue(ctx context.Context, input *NewRevenue) (*Revenue, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
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

	// the computation runs through an unsaved invoice so both records share one tax path
	draft := Invoice{
		BusinessId:         businessId,
		ClientName:         input.ClientName,
		ServiceDescription: input.ServiceDescription,
		EngagementType:     strings.TrimSpace(input.EngagementType),
		InvoiceDate:        dateOnly(input.RevenueDate),
		Currency:           input.Currency,
		ExchangeRate:       input.ExchangeRate,
		BaseAmount:         roundMoney(input.BaseAmount),
		GstPercentage:      input.GstPercentage,
		TdsPercentage:      input.TdsPercentage,
		TcsPercentage:      input.TcsPercentage,
		RemittanceCharges:  roundMoney(input.RemittanceCharges),
	}
	if err := resolveInvoiceCustomer(tx, businessId, &NewInvoice{CustomerId: input.CustomerId}, &draft); err != nil {
		return nil, err
	}
	draft.recompute(ctx)
	if input.ReceivedAmount != nil {
		draft.ReceivedAmount = roundMoney(*input.ReceivedAmount)
	} else {
		draft.ReceivedAmount = draft.ReceivableAmount
	}

	rev := Revenue{InvoiceGenerated: utils.NewFalse(), Notes: input.Notes}
	rev.fillFromInvoice(&draft)
	if err := tx.Create(&rev).Error; err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &rev, nil
}

func GetRevenue(ctx context.Context, id int) (*Revenue, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Revenue](ctx, businessId, id)
}

func ListRevenues(ctx context.Context, filter RevenueFilter) ([]*Revenue, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	q := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
	if filter.InvoiceGenerated != nil {
		q = q.Where("invoice_generated = ?", *filter.InvoiceGenerated)
	}
	if filter.Category != nil {
		q = q.Where("service_category = ?", *filter.Category)
	}
	if filter.Year != nil {
		from, to := utils.YearRange(*filter.Year)
		q = q.Where("revenue_date >= ? AND revenue_date < ?", from, to)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	var results []*Revenue
	err = q.Order("revenue_date DESC").Order("id DESC").
		Limit(min(limit, 500)).Offset(max(filter.Offset, 0)).
		Find(&results).Error
	return results, err
}

func lockRevenue(tx *gorm.DB, businessId string, id int) (*Revenue, error) {
	var rev Revenue
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("business_id = ?", businessId).First(&rev, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &rev, nil
}

// claimSourceRevenue marks a ledger entry as consumed by a new invoice.
func claimSourceRevenue(tx *gorm.DB, businessId string, id int) error {
	rev, err := lockRevenue(tx, businessId, id)
	if err != nil {
		if utils.IsNotFound(err) {
			return utils.NewValidationError("revenue entry %d not found", id)
		}
		return err
	}
	if utils.DereferencePtr(rev.InvoiceGenerated) || rev.InvoiceId != nil {
		return utils.NewConflictError("revenue entry %d has already been invoiced", id)
	}
	return tx.Model(&Revenue{}).Where("business_id = ? AND id = ?", businessId, id).
		Update("invoice_generated", true).Error
}

// releaseRevenues clears the invoiced flag on the entries an invoice was generated from or mirrored to,
// and detaches the mirrored one.
func releaseRevenues(tx *gorm.DB, inv *Invoice) error {
	ids := []int{}
	if inv.SourceRevenueId != nil {
		ids = append(ids, *inv.SourceRevenueId)
	}
	if inv.RevenueId != nil {
		ids = append(ids, *inv.RevenueId)
	}
	if len(ids) > 0 {
		if err := tx.Model(&Revenue{}).Where("business_id = ? AND id IN ?", inv.BusinessId, utils.UniqueSlice(ids)).
			Update("invoice_generated", false).Error; err != nil {
			return err
		}
	}
	return tx.Model(&Revenue{}).Where("business_id = ? AND invoice_id = ?", inv.BusinessId, inv.ID).
		Update("invoice_id", nil).Error
}

// findSyncTarget picks the revenue a Paid invoice writes to: its own link, then any entry already
// pointing back at it. The entry an invoice was generated from is never a target.
func findSyncTarget(tx *gorm.DB, inv *Invoice) (*Revenue, error) {
	if inv.RevenueId != nil {
		rev, err := lockRevenue(tx, inv.BusinessId, *inv.RevenueId)
		if err == nil {
			return rev, nil
		}
		if !utils.IsNotFound(err) {
			return nil, err
		}
	}
	var rev Revenue
	err := tx.Where("business_id = ? AND invoice_id = ?", inv.BusinessId, inv.ID).Order("id").First(&rev).Error
	if err == nil {
		return &rev, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}

// SyncRevenueForInvoice mirrors a Paid invoice into exactly one revenue entry. Invoices in any other
// status leave their entry untouched. Running it twice for the same state changes nothing.
func SyncRevenueForInvoice(tx *gorm.DB, inv *Invoice) error {
	if inv.Status != InvoiceStatusPaid {
		return nil
	}
	rev, err := findSyncTarget(tx, inv)
	if err != nil {
		return err
	}
	created := rev == nil
	if created {
		rev = &Revenue{}
	}
	rev.fillFromInvoice(inv)
	rev.InvoiceId = &inv.ID
	rev.InvoiceGenerated = utils.NewTrue()
	if created {
		err = tx.Create(rev).Error
	} else {
		err = tx.Save(rev).Error
	}
	if err != nil {
		return err
	}
	if created && inv.SourceRevenueId != nil {
		if err := tx.Model(&Revenue{}).Where("business_id = ? AND id = ?", inv.BusinessId, *inv.SourceRevenueId).
			Update("invoice_generated", true).Error; err != nil {
			return err
		}
	}

	if inv.RevenueId == nil || *inv.RevenueId != rev.ID {
		if err := tx.Model(&Invoice{}).Where("business_id = ? AND id = ?", inv.BusinessId, inv.ID).
			UpdateColumn("revenue_id", rev.ID).Error; err != nil {
			return err
		}
		inv.RevenueId = &rev.ID
	}
	inv.Revenue = rev
	return nil
}

// CreateInvoiceFromRevenue turns a not-yet-invoiced ledger entry into an Unpaid invoice.
func CreateInvoiceFromRevenue(ctx context.Context, revenueId int) (*Invoice, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "CreateInvoiceFromRevenue")
	defer span.End()
	span.SetAttributes(attribute.String("business_id", businessId), attribute.Int("revenue_id", revenueId))

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	rev, err := lockRevenue(tx, businessId, revenueId)
	if err != nil {
		return nil, err
	}
	if utils.DereferencePtr(rev.InvoiceGenerated) || rev.InvoiceId != nil {
		return nil, utils.NewConflictError("revenue entry %d has already been invoiced", revenueId)
	}

	input := revenueInvoiceInput(rev)
	if err := input.validate(); err != nil {
		return nil, err
	}
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

// revenueInvoiceInput rebuilds invoice input from an entry. Amounts go back to the original
// currency when the entry was recorded in one.
func revenueInvoiceInput(rev *Revenue) *NewInvoice {
	cur := rev.OriginalCurrency
	rate := rev.ExchangeRate
	base := rev.BaseAmount
	remittance := rev.RemittanceCharges
	if cur == "" || cur == config.HomeCurrency() || !rate.IsPositive() {
		cur = config.HomeCurrency()
		rate = decimal.NewFromInt(1)
	} else {
		base = roundMoney(base.Div(rate))
		remittance = roundMoney(remittance.Div(rate))
	}
	id := rev.ID
	return &NewInvoice{
		CustomerId:         rev.CustomerId,
		ClientName:         rev.ClientName,
		ServiceDescription: rev.ServiceDescription,
		EngagementType:     rev.EngagementType,
		InvoiceDate:        rev.RevenueDate,
		Currency:           cur,
		ExchangeRate:       rate,
		BaseAmount:         base,
		GstPercentage:      rev.GstPercentage,
		TdsPercentage:      rev.TdsPercentage,
		TcsPercentage:      rev.TcsPercentage,
		RemittanceCharges:  remittance,
		Notes:              rev.Notes,
		SourceRevenueId:    &id,
	}
}
