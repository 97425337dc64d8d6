package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ServiceItem struct {
	ID            int             `gorm:"primary_key" json:"id"`
	BusinessId    string          `gorm:"size:64;index;not null" json:"business_id"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Category      ServiceCategory `gorm:"size:50;not null" json:"category"`
	SacCode       string          `gorm:"size:10" json:"sac_code"`
	DefaultRate   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"default_rate"`
	GstPercentage decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"gst_percentage"`
	IsPlaceholder *bool           `gorm:"not null;default:false" json:"is_placeholder"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewServiceItem struct {
	Name          string          `json:"name" binding:"required" validate:"required,max=255"`
	SacCode       string          `json:"sac_code" validate:"omitempty,numeric,max=10"`
	DefaultRate   decimal.Decimal `json:"default_rate"`
	GstPercentage decimal.Decimal `json:"gst_percentage"`
}

func CreateServiceItem(ctx context.Context, input *NewServiceItem) (*ServiceItem, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	input.Name = collapseSpaces(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := validatePercentage("gst_percentage", input.GstPercentage); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[ServiceItem](ctx, businessId, "name", input.Name, 0); err != nil {
		return nil, err
	}
	item := ServiceItem{
		BusinessId:    businessId,
		Name:          input.Name,
		Category:      ClassifyService(input.Name),
		SacCode:       input.SacCode,
		DefaultRate:   input.DefaultRate,
		GstPercentage: input.GstPercentage,
		IsPlaceholder: utils.NewFalse(),
	}
	if err := config.GetDB().WithContext(ctx).Create(&item).Error; err != nil {
		return nil, utils.TranslateDuplicate(err, "service item already exists")
	}
	return &item, nil
}

func GetServiceItems(ctx context.Context) ([]*ServiceItem, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	var results []*ServiceItem
	err = config.GetDB().WithContext(ctx).Where("business_id = ?", businessId).Order("name").Find(&results).Error
	return results, err
}

func findOrCreateServiceItem(tx *gorm.DB, businessId string, name string) (*ServiceItem, bool, error) {
	name = collapseSpaces(name)
	if name == "" {
		return nil, false, utils.NewValidationError("service is required")
	}
	var item ServiceItem
	err := tx.Where("business_id = ? AND LOWER(name) = ?", businessId, strings.ToLower(name)).First(&item).Error
	if err == nil {
		return &item, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	item = ServiceItem{
		BusinessId:    businessId,
		Name:          name,
		Category:      ClassifyService(name),
		DefaultRate:   decimal.Zero,
		GstPercentage: decimal.Zero,
		IsPlaceholder: utils.NewTrue(),
	}
	if err := tx.Create(&item).Error; err != nil {
		return nil, false, err
	}
	return &item, true, nil
}
