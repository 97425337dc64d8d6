package utils

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/URVIL2512/Finance-Suite-sub001/config"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			return v == "" || ValidatePhoneNumber(v, CountryCode) == nil
		})
	})
	return validate
}

// IsValidEmail checks a single address with the validator's email rule.
func IsValidEmail(email string) bool {
	return Validator().Var(email, "required,email") == nil
}

// ValidateStruct runs the validate tags on input and returns a ValidationError listing failed fields.
func ValidateStruct(input interface{}) error {
	if err := Validator().Struct(input); err != nil {
		var parts []string
		for field, tag := range ProcessValidationErrors(err) {
			parts = append(parts, field+" ("+tag+")")
		}
		sort.Strings(parts)
		return NewValidationError("invalid input: %s", strings.Join(parts, ", "))
	}
	return nil
}

func ValidateUnique[T any](ctx context.Context, businessId string, column string, value interface{}, exceptId interface{}) error {
	var count int64
	var err error
	if reflect.ValueOf(exceptId).IsZero() {
		count, err = ResourceCountWhere[T](ctx, businessId, column+" = ?", value)
	} else {
		count, err = ResourceCountWhere[T](ctx, businessId, column+" = ? AND NOT id = ?", value, exceptId)
	}
	if err != nil {
		return err
	}
	if count > 0 {
		return NewConflictError("duplicate %s", column)
	}
	return nil
}

// count records, using WHERE business_id = ? AND $condition
func ResourceCountWhere[T any](ctx context.Context, businessId string, condition string, value ...interface{}) (int64, error) {
	var model T
	q := config.GetDB().WithContext(ctx).Model(&model)
	if businessId != "" {
		q = q.Where("business_id = ?", businessId)
	}
	var count int64
	if err := q.Where(condition, value...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
