package models

import (
	"context"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"gorm.io/gorm"
)

const systemUserName = "System"

type InvoiceStatusHistory struct {
	ID         int           `gorm:"primary_key" json:"id"`
	BusinessId string        `gorm:"size:64;index;not null" json:"business_id"`
	InvoiceId  int           `gorm:"index;not null" json:"invoice_id"`
	FromStatus InvoiceStatus `gorm:"size:20" json:"from_status"`
	ToStatus   InvoiceStatus `gorm:"size:20;not null" json:"to_status"`
	Reason     string        `gorm:"size:255" json:"reason"`
	UserId     int           `gorm:"index" json:"user_id"`
	UserName   string        `gorm:"size:100" json:"user_name"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// createStatusHistory records a move from `from` to the invoice's current status.
// An empty from marks the first status of a new invoice.
func createStatusHistory(tx *gorm.DB, inv *Invoice, from InvoiceStatus, reason string) error {
	if from == inv.Status {
		return nil
	}
	ctx := tx.Statement.Context
	userId, _ := utils.GetUserIdFromContext(ctx)
	userName, ok := utils.GetUserNameFromContext(ctx)
	if !ok || userName == "" {
		userName = systemUserName
	}
	history := InvoiceStatusHistory{
		BusinessId: inv.BusinessId,
		InvoiceId:  inv.ID,
		FromStatus: from,
		ToStatus:   inv.Status,
		Reason:     reason,
		UserId:     userId,
		UserName:   userName,
	}
	return tx.Create(&history).Error
}

func GetInvoiceStatusHistory(ctx context.Context, invoiceId int) ([]*InvoiceStatusHistory, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	var results []*InvoiceStatusHistory
	err = config.GetDB().WithContext(ctx).
		Where("business_id = ? AND invoice_id = ?", businessId, invoiceId).
		Order("id").Find(&results).Error
	return results, err
}
