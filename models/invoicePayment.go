package models

import (
	"context"
	"strings"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type InvoicePayment struct {
	ID              int             `gorm:"primary_key" json:"id"`
	BusinessId      string          `gorm:"size:64;index;not null" json:"business_id"`
	InvoiceId       int             `gorm:"index;not null" json:"invoice_id"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentMode     PaymentMode     `gorm:"size:20;not null" json:"payment_mode"`
	ReferenceNumber string          `gorm:"size:100" json:"reference_number"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewInvoicePayment struct {
	PaymentDate     time.Time       `json:"payment_date" binding:"required" validate:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	PaymentMode     PaymentMode     `json:"payment_mode"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	Notes           string          `json:"notes"`
}

func (input *NewInvoicePayment) validate() error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if !input.Amount.IsPositive() {
		return utils.NewValidationError("payment amount must be greater than 0")
	}
	if input.PaymentMode == "" {
		input.PaymentMode = PaymentModeBankTransfer
	}
	if !input.PaymentMode.IsValid() {
		return utils.NewValidationError("invalid payment mode %q", string(input.PaymentMode))
	}
	input.ReferenceNumber = strings.TrimSpace(input.ReferenceNumber)
	return nil
}

// RecordInvoicePayment adds a payment to the received amount and lets the lifecycle infer the new status.
func RecordInvoicePayment(ctx context.Context, invoiceId int, input *NewInvoicePayment) (*Invoice, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "RecordInvoicePayment")
	defer span.End()
	span.SetAttributes(attribute.String("business_id", businessId), attribute.Int("invoice_id", invoiceId))

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback().Error
			panic(r)
		}
	}()
	defer func() { _ = tx.Rollback().Error }()

	inv, err := lockInvoice(tx, businessId, invoiceId)
	if err != nil {
		return nil, err
	}
	switch inv.Status {
	case InvoiceStatusVoid:
		return nil, utils.NewValidationError("cannot record a payment on a Void invoice")
	case InvoiceStatusPaid:
		return nil, utils.NewValidationError("invoice %s is already paid", inv.InvoiceNumber)
	}

	amount := roundMoney(input.Amount)
	prior := inv.Status
	decision, err := ResolveStatus(StatusChange{
		Current:         inv.Status,
		PaymentSupplied: true,
		Received:        inv.ReceivedAmount.Add(amount),
		Receivable:      inv.ReceivableAmount,
	})
	if err != nil {
		return nil, err
	}
	inv.applyStatus(decision)

	payment := InvoicePayment{
		BusinessId:      businessId,
		InvoiceId:       inv.ID,
		PaymentDate:     dateOnly(input.PaymentDate),
		Amount:          amount,
		PaymentMode:     input.PaymentMode,
		ReferenceNumber: input.ReferenceNumber,
		Notes:           input.Notes,
	}
	if err := tx.Create(&payment).Error; err != nil {
		return nil, err
	}
	if err := saveInvoiceStatus(tx, inv); err != nil {
		return nil, err
	}
	if err := createStatusHistory(tx, inv, prior, StatusReasonPayment); err != nil {
		return nil, err
	}
	if err := SyncRevenueForInvoice(tx, inv); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	reconcileInvoiceState(ctx, inv)
	enqueueDocument(ctx, inv, "invoice.payment_recorded")
	return inv, nil
}

// saveInvoiceStatus writes the lifecycle columns and stamps inv.UpdatedAt with the value stored.
func saveInvoiceStatus(tx *gorm.DB, inv *Invoice) error {
	now := time.Now()
	err := tx.Model(&Invoice{}).Where("business_id = ? AND id = ?", inv.BusinessId, inv.ID).
		Updates(map[string]interface{}{
			"status":          inv.Status,
			"received_amount": inv.ReceivedAmount,
			"paid_amount":     inv.PaidAmount,
			"updated_at":      now,
		}).Error
	if err != nil {
		return err
	}
	inv.UpdatedAt = now
	return nil
}

func GetInvoicePayments(ctx context.Context, invoiceId int) ([]*InvoicePayment, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	var payments []*InvoicePayment
	err = config.GetDB().WithContext(ctx).
		Where("business_id = ? AND invoice_id = ?", businessId, invoiceId).
		Order("payment_date").Order("id").
		Find(&payments).Error
	return payments, err
}
