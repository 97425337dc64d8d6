package models

import (
	"context"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"gorm.io/gorm"
)

// DeleteInvoice hard-deletes an invoice with its items, payments and history. Linked revenue entries
// are kept but released: the invoiced flag is cleared and the back-reference removed.
func DeleteInvoice(ctx context.Context, id int) (*Invoice, error) {
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

	inv, err := deleteInvoiceTx(tx, businessId, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return inv, nil
}

// BulkDeleteInvoices deletes every id in one transaction; a missing id aborts the whole batch.
func BulkDeleteInvoices(ctx context.Context, ids []int) ([]int, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	ids = utils.UniqueSlice(ids)
	if len(ids) == 0 {
		return nil, utils.NewValidationError("no invoice ids given")
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

	deleted := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, err := deleteInvoiceTx(tx, businessId, id); err != nil {
			if utils.IsNotFound(err) {
				return nil, utils.NewValidationError("invoice %d not found", id)
			}
			return nil, err
		}
		deleted = append(deleted, id)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return deleted, nil
}

func deleteInvoiceTx(tx *gorm.DB, businessId string, id int) (*Invoice, error) {
	inv, err := lockInvoice(tx, businessId, id)
	if err != nil {
		return nil, err
	}
	if err := releaseRevenues(tx, inv); err != nil {
		return nil, err
	}
	if err := tx.Where("business_id = ? AND invoice_id = ?", businessId, id).Delete(&InvoicePayment{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("invoice_id = ?", id).Delete(&InvoiceItem{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("business_id = ? AND invoice_id = ?", businessId, id).Delete(&InvoiceStatusHistory{}).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("business_id = ?", businessId).Delete(&Invoice{}, id).Error; err != nil {
		return nil, err
	}
	return inv, nil
}
