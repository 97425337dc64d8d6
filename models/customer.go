package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/URVIL2512/Finance-Suite-sub001/utils"
	"gorm.io/gorm"
)

const placeholderContact = "To be updated"

type Customer struct {
	ID            int       `gorm:"primary_key" json:"id"`
	BusinessId    string    `gorm:"size:64;index;not null" json:"business_id"`
	Name          string    `gorm:"size:150;not null" json:"name"`
	ContactPerson string    `gorm:"size:100" json:"contact_person"`
	Email         string    `gorm:"size:100" json:"email"`
	Phone         string    `gorm:"size:20" json:"phone"`
	Country       string    `gorm:"size:60" json:"country"`
	State         string    `gorm:"size:60" json:"state"`
	Gstin         string    `gorm:"size:15" json:"gstin"`
	Address       string    `gorm:"type:text" json:"address"`
	IsPlaceholder *bool     `gorm:"not null;default:false" json:"is_placeholder"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name          string `json:"name" binding:"required" validate:"required,max=150"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"omitempty,phone"`
	Country       string `json:"country" validate:"max=60"`
	State         string `json:"state" validate:"max=60"`
	Gstin         string `json:"gstin" validate:"omitempty,len=15,alphanum"`
	Address       string `json:"address"`
}

func (input *NewCustomer) validate(ctx context.Context, businessId string, id int) error {
	input.Name = strings.TrimSpace(input.Name)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	return utils.ValidateUnique[Customer](ctx, businessId, "name", input.Name, id)
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, businessId, 0); err != nil {
		return nil, err
	}
	customer := Customer{
		BusinessId:    businessId,
		Name:          input.Name,
		ContactPerson: input.ContactPerson,
		Email:         input.Email,
		Phone:         normalizePhone(input.Phone),
		Country:       input.Country,
		State:         input.State,
		Gstin:         strings.ToUpper(input.Gstin),
		Address:       input.Address,
		IsPlaceholder: utils.NewFalse(),
	}
	if err := config.GetDB().WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, utils.TranslateDuplicate(err, "customer already exists")
	}
	return &customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	return utils.FetchModel[Customer](ctx, businessId, id)
}

func GetCustomers(ctx context.Context, name *string) ([]*Customer, error) {
	businessId, err := utils.RequireBusinessId(ctx)
	if err != nil {
		return nil, err
	}
	var results []*Customer
	q := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
	if name != nil && len(*name) > 0 {
		q = q.Where("name LIKE ?", "%"+*name+"%")
	}
	if err := q.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func normalizePhone(phone string) string {
	if strings.TrimSpace(phone) == "" {
		return ""
	}
	return utils.FormatPhoneNumber(phone, utils.CountryCode)
}

func findCustomerByName(tx *gorm.DB, businessId string, name string) (*Customer, error) {
	var customer Customer
	err := tx.Where("business_id = ? AND LOWER(name) = ?", businessId, strings.ToLower(strings.TrimSpace(name))).
		First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// findOrCreateCustomer resolves a client by name; missing clients are created as placeholders
// carrying whatever contact data the caller has.
func findOrCreateCustomer(tx *gorm.DB, businessId string, seed Customer) (*Customer, bool, error) {
	seed.Name = collapseSpaces(seed.Name)
	if seed.Name == "" {
		return nil, false, utils.NewValidationError("client name is required")
	}
	existing, err := findCustomerByName(tx, businessId, seed.Name)
	if err == nil {
		return existing, false, nil
	}
	if !utils.IsNotFound(err) {
		return nil, false, err
	}

	customer := Customer{
		BusinessId:    businessId,
		Name:          seed.Name,
		ContactPerson: seed.ContactPerson,
		Email:         seed.Email,
		Phone:         normalizePhone(seed.Phone),
		Country:       seed.Country,
		State:         seed.State,
		Address:       seed.Address,
		IsPlaceholder: utils.NewTrue(),
	}
	if customer.ContactPerson == "" {
		customer.ContactPerson = placeholderContact
	}
	if customer.Address == "" {
		customer.Address = placeholderContact
	}
	if customer.Email != "" && !utils.IsValidEmail(customer.Email) {
		customer.Email = ""
	}
	if err := tx.Create(&customer).Error; err != nil {
		if utils.IsDuplicateKeyErr(err) {
			existing, ferr := findCustomerByName(tx, businessId, seed.Name)
			return existing, false, ferr
		}
		return nil, false, err
	}
	return &customer, true, nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
