package utils

import (
	"context"
	"errors"

	"github.com/URVIL2512/Finance-Suite-sub001/appctx"
)

var (
	ContextKeyBusinessId      = appctx.ContextKeyBusinessId
	ContextKeyUserId          = appctx.ContextKeyUserId
	ContextKeyUserName        = appctx.ContextKeyUserName
	ContextKeyCorrelationId   = appctx.ContextKeyCorrelationId
	ContextKeySkipTenantScope = appctx.ContextKeySkipTenantScope
)

var ErrBusinessIdRequired = errors.New("business id is required")

func GetBusinessIdFromContext(ctx context.Context) (string, bool) {
	v, ok := appctx.GetString(ctx, ContextKeyBusinessId)
	return v, ok && v != ""
}

// RequireBusinessId returns the business id or a ValidationError.
func RequireBusinessId(ctx context.Context) (string, error) {
	businessId, ok := GetBusinessIdFromContext(ctx)
	if !ok {
		return "", NewValidationError(ErrBusinessIdRequired.Error())
	}
	return businessId, nil
}

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserName)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetBusinessIdInContext(ctx context.Context, businessId string) context.Context {
	return appctx.Set(ctx, ContextKeyBusinessId, businessId)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return appctx.Set(ctx, ContextKeyUserName, userName)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

// WithoutTenantScope marks ctx so the tenant scope plugin leaves queries untouched.
func WithoutTenantScope(ctx context.Context) context.Context {
	return appctx.Set(ctx, ContextKeySkipTenantScope, true)
}
